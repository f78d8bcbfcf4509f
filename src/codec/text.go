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
	"strconv"
	"strings"

	"sigrec/src/timing"
)

// SaveText writes src to w in the text layout.
func SaveText(w io.Writer, src Source) error {
	bw := bufio.NewWriter(w)
	n := src.Count()
	fmt.Fprintf(bw, "%d\n", n)
	for i := 1; i <= int(n); i++ {
		sig, err := src.Get(uint16(i))
		if err != nil {
			return err
		}
		p := timing.Split(sig.Duration)
		fmt.Fprintf(bw, "%s %d %d %d %d\n", yesNo(sig.IsOn), p.KiloS, p.S, p.MilliS, p.MicroS)
	}
	return bw.Flush()
}

// LoadText replaces the contents of dst with signals read from r in the text
// layout. Tokens may be separated by any white space.
func LoadText(r io.Reader, dst Destination) error {
	sc := bufio.NewScanner(r)
	sc.Split(bufio.ScanWords)
	next := func() (string, error) {
		if sc.Scan() {
			return sc.Text(), nil
		}
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	number := func() (uint16, error) {
		tok, err := next()
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseUint(tok, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("%w: bad number %q", ErrFormat, tok)
		}
		return uint16(v), nil
	}

	dst.Clear()
	count, err := number()
	if err != nil {
		return err
	}
	for i := 1; i <= int(count); i++ {
		tok, err := next()
		if err != nil {
			return err
		}
		isOn, ok := parseYesNo(tok)
		if !ok {
			return fmt.Errorf("%w: signal %d: bad state %q", ErrFormat, i, tok)
		}
		var p timing.Parts
		for _, field := range []*uint16{&p.KiloS, &p.S, &p.MilliS, &p.MicroS} {
			if *field, err = number(); err != nil {
				return err
			}
		}
		us, ok := timing.Join(p)
		if !ok {
			return fmt.Errorf("%w: signal %d: bad duration %+v", ErrFormat, i, p)
		}
		if !dst.Add(signalOf(isOn, us)) {
			return ErrFull
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "Y"
	}
	return "N"
}

func parseYesNo(s string) (bool, bool) {
	switch strings.ToUpper(s) {
	case "Y", "YES":
		return true, true
	case "N", "NO":
		return false, true
	}
	return false, false
}
