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
	"encoding/binary"
	"fmt"
	"io"

	"sigrec/src/signal"
)

// RecordSize is the size of one signal in the binary layout.
const RecordSize = 5

// SaveBinary writes src to w in the binary layout.
func SaveBinary(w io.Writer, src Source) error {
	var buf [RecordSize]byte
	n := src.Count()
	binary.LittleEndian.PutUint16(buf[:2], n)
	if _, err := w.Write(buf[:2]); err != nil {
		return err
	}
	for i := 1; i <= int(n); i++ {
		sig, err := src.Get(uint16(i))
		if err != nil {
			return err
		}
		buf[0] = 0
		if sig.IsOn {
			buf[0] = 1
		}
		binary.LittleEndian.PutUint32(buf[1:], sig.Duration)
		if _, err := w.Write(buf[:]); err != nil {
			return err
		}
	}
	return nil
}

// LoadBinary replaces the contents of dst with signals read from r in the
// binary layout. A short stream yields io.ErrUnexpectedEOF.
func LoadBinary(r io.Reader, dst Destination) error {
	var buf [RecordSize]byte
	dst.Clear()
	if _, err := io.ReadFull(r, buf[:2]); err != nil {
		return unexpected(err)
	}
	n := binary.LittleEndian.Uint16(buf[:2])
	for i := 1; i <= int(n); i++ {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return unexpected(err)
		}
		if buf[0] > 1 {
			return fmt.Errorf("%w: signal %d: bad state byte %#x", ErrFormat, i, buf[0])
		}
		if !dst.Add(signalOf(buf[0] == 1, binary.LittleEndian.Uint32(buf[1:]))) {
			return ErrFull
		}
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func signalOf(isOn bool, us uint32) signal.Signal {
	return signal.Signal{IsOn: isOn, Duration: us}
}
