/*
 * Copyright 2025 Ted Dunning
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package codec

import (
	"bufio"
	"fmt"
	"io"
)

// List writes a parenthesised listing of src meant for people rather than for
// LoadText, one signal per line:
//
//	(
//	  (Y 320us)
//	  (N 1s 0ms 340us)
//	)
func List(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	bw.WriteString("(\n")
	for i, n := 1, int(src.Count()); i <= n; i++ {
		sig, err := src.Get(uint16(i))
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "  (%s %s)\n", yesNo(sig.IsOn), Duration(sig.Duration))
	}
	bw.WriteString(")\n")
	return bw.Flush()
}

// Duration renders us with the leading zero units left out.
func Duration(us uint32) string {
	s, ms, rest := us/1_000_000, us/1000%1000, us%1000
	switch {
	case s > 0:
		return fmt.Sprintf("%ds %dms %dus", s, ms, rest)
	case ms > 0:
		return fmt.Sprintf("%dms %dus", ms, rest)
	}
	return fmt.Sprintf("%dus", rest)
}
