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

import "sigrec/src/timing"

/*
Hardware is the timer and capture unit the recorder drives. It needs one
counter that runs from 0 to top and wraps, a way to latch that counter when the
input line changes, a polarity select for which edge latches, and two
interrupts: one on counter wrap (period) and one on latch (edge).

Implementations must deliver the period interrupt at a lower priority than the
edge interrupt, so a period handler never runs between a latch and the edge
handler that reads it.
*/
type Hardware interface {
	// ClockHz returns the frequency of the clock feeding the counter
	// before division.
	ClockHz() uint32
	// Limits returns the divider and counter bounds of the timer.
	Limits() timing.Limits

	// SetTimer installs a divider and the counter top value. The counter
	// runs through top+1 values per period.
	SetTimer(div timing.Divider, top uint32) error
	// SetCaptureMode puts the capture unit in input-capture mode on the
	// monitored line.
	SetCaptureMode() error

	// SetRunning starts or halts the counter.
	SetRunning(run bool)
	// ResetCounter sets the counter to zero.
	ResetCounter()
	// ClearCapture drops any latched-but-unserviced edge.
	ClearCapture()
	// SetEdgeInterrupt enables or disables the edge interrupt.
	SetEdgeInterrupt(enabled bool)

	// SetRisingEdge selects which edge latches the counter next.
	SetRisingEdge(rising bool)
	// RisingEdge reports the currently selected edge.
	RisingEdge() bool
	// Latched returns the counter value captured by the last edge.
	Latched() uint32

	// OnPeriod and OnEdge register the interrupt handlers. Handlers run to
	// completion and must not block or allocate.
	OnPeriod(handler func())
	OnEdge(handler func())

	// DisableInterrupts masks both handlers and returns the previous mask
	// state for RestoreInterrupts.
	DisableInterrupts() uintptr
	RestoreInterrupts(state uintptr)
}
