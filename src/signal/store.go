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

// Package signal holds recorded line states and the fixed-size store they are
// accumulated in.
package signal

import "errors"

// ErrIndex is returned when a signal is requested outside [1, Count()].
var ErrIndex = errors.New("signal: index out of range")

// Signal is a state that held on the line for Duration microseconds.
type Signal struct {
	IsOn     bool
	Duration uint32
}

// MaxSignals is the largest number of signals a store can index.
const MaxSignals = 0xffff

/*
Store is an append-only sequence of signals kept in memory the caller owns.

Nothing here allocates. The region handed to Init is used as-is for the
lifetime of the store, so a typical setup is a statically sized array:

	var buf [512]signal.Signal
	var store signal.Store
	store.Init(buf[:])

Positions are 1-based, so Get(1) is the oldest signal and Get(Count()) the
newest.

Add is called from the edge interrupt while a recording is running. Nothing is
locked, so Get, Each and Clear must only be used once the recording has been
stopped.
*/
type Store struct {
	region []Signal
	count  uint16
}

// NewStore returns a store over region. It is the same as calling Init on a
// zero Store.
func NewStore(region []Signal) *Store {
	s := &Store{}
	s.Init(region)
	return s
}

// Init attaches the store to region and clears it. Capacity is the length of
// region, capped at MaxSignals.
func (s *Store) Init(region []Signal) {
	if len(region) > MaxSignals {
		region = region[:MaxSignals]
	}
	s.region = region
	s.Clear()
}

// Clear forgets all stored signals. The backing memory is left as it is.
func (s *Store) Clear() {
	s.count = 0
}

// Add appends sig. It returns false, and changes nothing, if the store is
// full.
//
//go:inline
func (s *Store) Add(sig Signal) bool {
	if int(s.count) >= len(s.region) {
		return false
	}
	s.region[s.count] = sig
	s.count++
	return true
}

// Get returns a copy of the signal at 1-based position index.
//
// Not safe while recording.
func (s *Store) Get(index uint16) (Signal, error) {
	if index == 0 || index > s.count {
		return Signal{}, ErrIndex
	}
	return s.region[index-1], nil
}

// Count returns the number of stored signals.
func (s *Store) Count() uint16 {
	return s.count
}

// Capacity returns the maximum number of signals the store can hold.
func (s *Store) Capacity() uint16 {
	return uint16(len(s.region))
}

// Each calls fn for every stored signal in order, stopping early if fn
// returns false.
//
// Not safe while recording.
func (s *Store) Each(fn func(index uint16, sig Signal) bool) {
	for i := uint16(0); i < s.count; i++ {
		if !fn(i+1, s.region[i]) {
			return
		}
	}
}

// Total returns the sum of all stored durations in microseconds.
func (s *Store) Total() uint64 {
	var total uint64
	for _, sig := range s.region[:s.count] {
		total += uint64(sig.Duration)
	}
	return total
}
