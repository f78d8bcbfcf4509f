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

// Package replay plays a recording back through a carrier keyer.
package replay

import (
	"errors"

	"sigrec/src/signal"
)

var ErrEmpty = errors.New("replay: nothing recorded")

// Keyer switches a carrier and waits. Wait is called with the duration of
// every signal in turn, so a Keyer that sleeps imprecisely accumulates error
// over a long recording.
type Keyer interface {
	SetCarrier(on bool)
	Wait(us uint32)
}

// Source is the read side of a signal store.
type Source interface {
	Count() uint16
	Get(index uint16) (signal.Signal, error)
}

// Play keys every signal of src in order and leaves the carrier off. The
// total time played is returned in microseconds.
func Play(src Source, k Keyer) (uint64, error) {
	n := int(src.Count())
	if n == 0 {
		return 0, ErrEmpty
	}
	defer k.SetCarrier(false)

	var total uint64
	on := false
	k.SetCarrier(false)
	for i := 1; i <= n; i++ {
		sig, err := src.Get(uint16(i))
		if err != nil {
			return total, err
		}
		if sig.IsOn != on {
			on = sig.IsOn
			k.SetCarrier(on)
		}
		k.Wait(sig.Duration)
		total += uint64(sig.Duration)
	}
	return total, nil
}
