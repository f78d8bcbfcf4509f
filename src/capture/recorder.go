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

// Package capture turns edge-capture interrupts into recorded signals.
package capture

import (
	"errors"
	"fmt"

	"sigrec/src/signal"
	"sigrec/src/timing"
)

// ErrConfig wraps every configuration problem reported by Prepare.
var ErrConfig = errors.New("capture: invalid configuration")

type State uint8

const (
	Unconfigured State = iota
	Prepared
	Recording
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Prepared:
		return "prepared"
	case Recording:
		return "recording"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Config selects the timebase of a recording.
type Config struct {
	PeriodUs        uint32 // epoch step, one counter period
	Resolution      uint32 // requested counter values per period
	FirstEdgeRising bool   // polarity of the first edge to capture
}

// DefaultConfig is a 10ms period at 0.2µs resolution with the first edge
// falling, which suits IR receivers that idle high.
func DefaultConfig() Config {
	return Config{
		PeriodUs:   10_000,
		Resolution: 50_000,
	}
}

/*
Recorder owns the capture hardware and the state machine around it:

	Unconfigured --Prepare--> Prepared --Start--> Recording
	                          Prepared <--Stop--- Recording

Prepare may be repeated while Prepared. Start outside Prepared and Stop
outside Recording do nothing; there is nobody to report the mistake to.

The recorder is the only state the interrupt handlers touch and it reaches
them through the closures registered in Prepare. Only one recorder should be
armed on a given piece of hardware.

Methods other than the handlers are meant to be called from foreground code.
*/
type Recorder struct {
	hw      Hardware
	store   *signal.Store
	cfg     Config
	setting timing.Setting
	state   State
	clock   Clock
	diff    Differencer
}

// NewRecorder returns an unconfigured recorder that fills store from hw.
func NewRecorder(hw Hardware, store *signal.Store, cfg Config) *Recorder {
	r := &Recorder{
		hw:    hw,
		store: store,
		cfg:   cfg,
	}
	r.diff.sink = store
	return r
}

// Prepare validates the configuration, programs the timer and registers the
// interrupt handlers with the edge interrupt still disabled. It does nothing
// while recording.
func (r *Recorder) Prepare() error {
	if r.state == Recording {
		return nil
	}
	setting, err := timing.Plan(r.hw.ClockHz(), r.cfg.PeriodUs, r.cfg.Resolution, r.hw.Limits())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}

	r.state = Unconfigured
	r.hw.SetEdgeInterrupt(false)
	r.hw.SetRunning(false)
	if err := r.hw.SetCaptureMode(); err != nil {
		return fmt.Errorf("capture: set capture mode: %w", err)
	}
	if err := r.hw.SetTimer(setting.Divider, setting.Range-1); err != nil {
		return fmt.Errorf("capture: set timer: %w", err)
	}
	r.clock.Configure(setting.PeriodUs, setting.Range)
	r.hw.OnPeriod(r.handlePeriod)
	r.hw.OnEdge(r.handleEdge)
	r.hw.SetRisingEdge(r.cfg.FirstEdgeRising)

	r.setting = setting
	r.state = Prepared
	return nil
}

// Start clears the store and begins recording. It only acts when Prepared.
func (r *Recorder) Start() {
	if r.state != Prepared {
		return
	}
	r.store.Clear()
	r.clock.Reset()
	r.diff.Reset()
	// a previous session may have stopped between edges
	r.hw.SetRisingEdge(r.cfg.FirstEdgeRising)
	r.hw.ResetCounter()
	r.hw.ClearCapture()

	r.state = Recording
	r.hw.SetEdgeInterrupt(true)
	r.hw.SetRunning(true)
}

// Stop ends the recording and keeps what was stored. It only acts when
// Recording.
func (r *Recorder) Stop() {
	if r.state != Recording {
		return
	}
	// an edge must not slip in between the interrupt disable and the halt
	mask := r.hw.DisableInterrupts()
	r.hw.SetEdgeInterrupt(false)
	r.hw.SetRunning(false)
	r.hw.RestoreInterrupts(mask)
	r.state = Prepared
}

// SetConfig replaces the configuration. The recorder has to be prepared
// again before the next Start. Ignored while recording.
func (r *Recorder) SetConfig(cfg Config) {
	if r.state == Recording {
		return
	}
	r.cfg = cfg
	r.state = Unconfigured
}

func (r *Recorder) Config() Config { return r.cfg }

func (r *Recorder) State() State { return r.state }

// Setting returns the timer setting chosen by the last successful Prepare.
func (r *Recorder) Setting() timing.Setting { return r.setting }

// Store returns the store being filled. See signal.Store for when it is
// safe to read.
func (r *Recorder) Store() *signal.Store { return r.store }

// Dropped returns the number of signals lost to a full store in the current
// or last recording.
func (r *Recorder) Dropped() uint32 { return r.diff.Dropped() }

func (r *Recorder) handlePeriod() {
	r.clock.Advance()
}

func (r *Recorder) handleEdge() {
	fine := r.hw.Latched()
	rising := r.hw.RisingEdge()
	r.hw.SetRisingEdge(!rising)
	r.diff.Push(RawEdge{IsOn: rising, Timestamp: r.clock.Timestamp(fine)})
}
