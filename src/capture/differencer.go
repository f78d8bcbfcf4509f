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

package capture

import (
	"sync/atomic"

	"sigrec/src/signal"
	"sigrec/src/timing"
)

// RawEdge is one detected transition: the state the line changed to and the
// absolute time it happened. It only exists between the clock and the
// differencer.
type RawEdge struct {
	IsOn      bool
	Timestamp uint32
}

// Sink receives finished signals. *signal.Store satisfies it.
type Sink interface {
	Add(signal.Signal) bool
}

/*
Differencer turns a stream of edges into signals. Each signal describes the
state that held between two consecutive edges, so it carries the polarity of
the earlier edge and the modular difference of the two timestamps.

The first edge after Reset only primes the differencer. Polarity is taken on
trust; if the caller forgets to flip the capture polarity, two same-state
signals in a row are recorded as-is.
*/
type Differencer struct {
	sink        Sink
	hasPrevious bool
	previous    RawEdge
	dropped     atomic.Uint32
}

// NewDifferencer returns a differencer that emits into sink.
func NewDifferencer(sink Sink) *Differencer {
	return &Differencer{sink: sink}
}

// Reset forgets the previous edge and the drop count.
func (d *Differencer) Reset() {
	d.hasPrevious = false
	d.previous = RawEdge{}
	d.dropped.Store(0)
}

// Push handles one edge. When the sink is full the signal is lost but the
// edge still becomes the new reference, so later signals stay correct.
func (d *Differencer) Push(e RawEdge) {
	if d.hasPrevious {
		sig := signal.Signal{
			IsOn:     d.previous.IsOn,
			Duration: timing.Sub(e.Timestamp, d.previous.Timestamp),
		}
		if !d.sink.Add(sig) {
			d.dropped.Add(1)
		}
	}
	d.previous = e
	d.hasPrevious = true
}

// Dropped returns how many signals the sink refused since the last Reset.
func (d *Differencer) Dropped() uint32 {
	return d.dropped.Load()
}
