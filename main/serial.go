//go:build rp2040

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

package main

import (
	"machine"
	"time"
)

// serialReader blocks until the USB serial port has input. Carriage returns
// become newlines since terminals send them for the enter key.
type serialReader struct{}

func (serialReader) Read(p []byte) (int, error) {
	for machine.Serial.Buffered() == 0 {
		time.Sleep(10 * time.Millisecond)
	}
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return n, err
		}
		if b == '\r' {
			b = '\n'
		}
		crlfWriter{}.Write([]byte{b})
		p[n] = b
		n++
	}
	return n, nil
}

// crlfWriter writes to the USB serial port with newlines expanded.
type crlfWriter struct{}

func (crlfWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			machine.Serial.WriteByte('\r')
		}
		machine.Serial.WriteByte(b)
	}
	return len(p), nil
}
