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

/*
Package codec writes recorded signals to streams and loads them back.

Two layouts are supported. The text layout is length prefixed and meant to be
typed or pasted into a serial console:

	2
	Y 0 0 0 320
	N 0 0 1 340

The count comes first, then one line per signal with a Y/N state and the
duration split into kiloseconds, seconds, milliseconds and microseconds. The
binary layout is the same information in fixed width little endian fields:

	<count: uint16> (<state: uint8> <duration µs: uint32>) * count

Both loaders clear the destination first and stop with an error as soon as
the input is malformed or the destination fills up.
*/
package codec

import (
	"errors"

	"sigrec/src/signal"
)

var (
	ErrFormat = errors.New("codec: malformed input")
	ErrFull   = errors.New("codec: store is full")
)

// Source is the read side of a signal store.
type Source interface {
	Count() uint16
	Get(index uint16) (signal.Signal, error)
}

// Destination is the write side of a signal store.
type Destination interface {
	Clear()
	Add(sig signal.Signal) bool
}
