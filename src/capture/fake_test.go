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
	"errors"

	"sigrec/src/timing"
)

// fakeHardware simulates a timer with a latching capture unit. Time is kept
// in counter ticks; advance moves the line forward and fires wraps and
// latches in the order a prioritized interrupt controller would.
type fakeHardware struct {
	clockHz uint32
	limits  timing.Limits

	div         timing.Divider
	top         uint32
	captureMode bool
	running     bool
	edgeEnabled bool
	rising      bool
	latched     uint32
	pending     bool

	onPeriod, onEdge func()

	masked    bool
	maskCalls int
	timerErr  error

	now     uint64 // ticks since ResetCounter
	periods uint64 // wraps delivered since ResetCounter
	flips   int
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{
		clockHz: 1_000_000,
		limits:  timing.Limits{MinDiv: 1, MaxDiv: 255, FracBits: 4, MaxRange: 1 << 16},
	}
}

func (f *fakeHardware) ClockHz() uint32        { return f.clockHz }
func (f *fakeHardware) Limits() timing.Limits { return f.limits }

func (f *fakeHardware) SetTimer(div timing.Divider, top uint32) error {
	if f.timerErr != nil {
		return f.timerErr
	}
	if top+1 > f.limits.MaxRange {
		return errors.New("fake: top too large")
	}
	f.div = div
	f.top = top
	return nil
}

func (f *fakeHardware) SetCaptureMode() error {
	f.captureMode = true
	return nil
}

func (f *fakeHardware) SetRunning(run bool) { f.running = run }

func (f *fakeHardware) ResetCounter() {
	f.now = 0
	f.periods = 0
}

func (f *fakeHardware) ClearCapture()                 { f.pending = false }
func (f *fakeHardware) SetEdgeInterrupt(enabled bool) { f.edgeEnabled = enabled }

func (f *fakeHardware) SetRisingEdge(rising bool) {
	if rising != f.rising {
		f.flips++
	}
	f.rising = rising
}

func (f *fakeHardware) RisingEdge() bool { return f.rising }
func (f *fakeHardware) Latched() uint32  { return f.latched }

func (f *fakeHardware) OnPeriod(handler func()) { f.onPeriod = handler }
func (f *fakeHardware) OnEdge(handler func())   { f.onEdge = handler }

func (f *fakeHardware) DisableInterrupts() uintptr {
	f.maskCalls++
	was := f.masked
	f.masked = true
	if was {
		return 1
	}
	return 0
}

func (f *fakeHardware) RestoreInterrupts(state uintptr) {
	f.masked = state != 0
}

func (f *fakeHardware) rangeTicks() uint64 {
	return uint64(f.top) + 1
}

// runTo advances the counter to tick t, delivering every wrap on the way.
func (f *fakeHardware) runTo(t uint64) {
	if !f.running {
		return
	}
	for (f.periods+1)*f.rangeTicks() <= t {
		f.periods++
		if f.onPeriod != nil && !f.masked {
			f.onPeriod()
		}
	}
	f.now = t
}

// edgeAt advances to tick t and latches an edge there. Only edges matching
// the selected polarity latch, like real capture hardware.
func (f *fakeHardware) edgeAt(t uint64, rising bool) {
	f.runTo(t)
	if !f.running || rising != f.rising {
		return
	}
	f.latched = uint32(t % f.rangeTicks())
	f.pending = true
	if f.edgeEnabled && !f.masked && f.onEdge != nil {
		f.pending = false
		f.onEdge()
	}
}
