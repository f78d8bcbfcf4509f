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

	"sigrec/src/timing"
)

/*
Clock rebuilds the absolute time of an edge from two halves.

The coarse half is the epoch, a microsecond count that the period interrupt
advances by PeriodUs each time the hardware counter wraps. The fine half is the
counter value the capture hardware latched at the instant of the edge, in
[0, Range). Both are combined without ever asking what time it is now, so the
latency of the edge interrupt does not leak into the timestamp.

This only works if the epoch seen by the edge handler belongs to the same
period as the latched value. The bindings guarantee this by giving the period
interrupt a lower priority than the edge interrupt: a wrap that happens after
the latch is serviced after the edge, and a wrap that happened before the latch
has already been serviced.

The epoch is written by one interrupt and read by another so it lives in an
atomic cell.
*/
type Clock struct {
	epoch     atomic.Uint32
	periodUs  uint32
	fineRange uint32
}

// Configure sets the period and fine counter range. fineRange must be
// non-zero; Recorder.Prepare rejects configurations where it is not.
func (c *Clock) Configure(periodUs, fineRange uint32) {
	c.periodUs = periodUs
	c.fineRange = fineRange
}

// Reset sets the epoch back to zero.
func (c *Clock) Reset() {
	c.epoch.Store(0)
}

// Advance moves the epoch on by one period. Called from the period interrupt.
func (c *Clock) Advance() {
	c.epoch.Store(timing.Add(c.epoch.Load(), c.periodUs))
}

// Epoch returns the current epoch.
func (c *Clock) Epoch() uint32 {
	return c.epoch.Load()
}

// Timestamp returns the absolute time in microseconds of an edge whose fine
// counter value was latched as fine.
func (c *Clock) Timestamp(fine uint32) uint32 {
	return timing.Add(c.epoch.Load(), timing.Scale(c.periodUs, fine, c.fineRange))
}
