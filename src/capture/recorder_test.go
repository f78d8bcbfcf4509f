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
	"testing"

	"sigrec/src/signal"
	"sigrec/src/timing"
)

// microsecond ticks, 1ms period
var testConfig = Config{PeriodUs: 1000, Resolution: 1000}

func newTestRecorder(capacity int, cfg Config) (*Recorder, *fakeHardware) {
	hw := newFakeHardware()
	store := signal.NewStore(make([]signal.Signal, capacity))
	return NewRecorder(hw, store, cfg), hw
}

func Test_prepare(t *testing.T) {
	r, hw := newTestRecorder(8, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if r.State() != Prepared {
		t.Errorf("State() = %v, want prepared", r.State())
	}
	if hw.top != 999 || hw.div != (timing.Divider{Int: 1, FracBits: 4}) {
		t.Errorf("timer top = %d, div = %+v", hw.top, hw.div)
	}
	if !hw.captureMode || hw.edgeEnabled || hw.running {
		t.Errorf("captureMode = %v, edgeEnabled = %v, running = %v", hw.captureMode, hw.edgeEnabled, hw.running)
	}
	if hw.onEdge == nil || hw.onPeriod == nil {
		t.Errorf("handlers not registered")
	}
	if hw.rising {
		t.Errorf("initial polarity is rising, want falling")
	}
	if s := r.Setting(); s.Range != 1000 || s.PeriodUs != 1000 {
		t.Errorf("Setting() = %+v", s)
	}
	// preparing twice is allowed
	if err := r.Prepare(); err != nil || r.State() != Prepared {
		t.Errorf("second Prepare() = %v, state %v", err, r.State())
	}
}

func Test_record(t *testing.T) {
	r, hw := newTestRecorder(16, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	if r.State() != Recording || !hw.running || !hw.edgeEnabled {
		t.Fatalf("Start() left state %v, running %v, edge %v", r.State(), hw.running, hw.edgeEnabled)
	}

	// idle high, then falling, rising, ... with two wraps before 2100
	hw.edgeAt(150, false)
	hw.edgeAt(470, true)
	hw.edgeAt(810, false)
	hw.edgeAt(2100, true)
	hw.edgeAt(2350, false)
	r.Stop()

	want := []signal.Signal{{IsOn: false, Duration: 320}, {IsOn: true, Duration: 340}, {IsOn: false, Duration: 1290}, {IsOn: true, Duration: 250}}
	store := r.Store()
	if store.Count() != uint16(len(want)) {
		t.Fatalf("Count() = %d, want %d", store.Count(), len(want))
	}
	for i, w := range want {
		got, err := store.Get(uint16(i + 1))
		if err != nil || got != w {
			t.Errorf("Get(%d) = %+v, %v, want %+v", i+1, got, err, w)
		}
	}
	if hw.flips != 5 {
		t.Errorf("polarity flipped %d times, want 5", hw.flips)
	}
}

func Test_edgesOnPeriodBoundary(t *testing.T) {
	r, hw := newTestRecorder(16, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	hw.edgeAt(999, false)
	hw.edgeAt(1000, true)
	hw.edgeAt(3000, false)
	hw.edgeAt(3001, true)
	r.Stop()
	want := []signal.Signal{{IsOn: false, Duration: 1}, {IsOn: true, Duration: 2000}, {IsOn: false, Duration: 1}}
	for i, w := range want {
		got, _ := r.Store().Get(uint16(i + 1))
		if got != w {
			t.Errorf("signal %d = %+v, want %+v", i+1, got, w)
		}
	}
}

func Test_startUnconfigured(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	r.Start()
	if r.State() != Unconfigured {
		t.Errorf("State() = %v, want unconfigured", r.State())
	}
	if hw.running || hw.edgeEnabled {
		t.Errorf("Start() touched the hardware")
	}
	hw.edgeAt(100, false)
	if r.Store().Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Store().Count())
	}
	r.Stop()
	if hw.maskCalls != 0 {
		t.Errorf("Stop() while unconfigured masked interrupts")
	}
}

func Test_stopTwice(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	hw.edgeAt(10, false)
	hw.edgeAt(20, true)
	r.Stop()
	r.Stop()
	if r.State() != Prepared {
		t.Errorf("State() = %v, want prepared", r.State())
	}
	if hw.maskCalls != 1 || hw.masked {
		t.Errorf("maskCalls = %d, masked = %v", hw.maskCalls, hw.masked)
	}
	if hw.running || hw.edgeEnabled {
		t.Errorf("Stop() left running = %v, edge = %v", hw.running, hw.edgeEnabled)
	}
	// edges after Stop are not recorded and the store survives
	hw.edgeAt(30, false)
	if r.Store().Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Store().Count())
	}
}

func Test_stopFromPrepared(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Stop()
	if r.State() != Prepared || hw.maskCalls != 0 {
		t.Errorf("Stop() from prepared: state %v, maskCalls %d", r.State(), hw.maskCalls)
	}
}

func Test_restartClears(t *testing.T) {
	r, hw := newTestRecorder(8, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	hw.edgeAt(100, false)
	hw.edgeAt(200, true)
	hw.edgeAt(5300, false)
	// stopped between a falling and a rising edge: polarity is rising now
	r.Stop()
	if r.Store().Count() != 2 {
		t.Fatalf("Count() = %d, want 2", r.Store().Count())
	}

	r.Start()
	if r.Store().Count() != 0 {
		t.Errorf("Start() did not clear the store")
	}
	if hw.rising {
		t.Errorf("Start() did not restore the initial polarity")
	}
	hw.edgeAt(50, false)
	hw.edgeAt(80, true)
	r.Stop()
	// epoch restarted at zero and the first edge was only a reference
	got, err := r.Store().Get(1)
	if err != nil || got != (signal.Signal{IsOn: false, Duration: 30}) || r.Store().Count() != 1 {
		t.Errorf("after restart Get(1) = %+v, %v, Count() = %d", got, err, r.Store().Count())
	}
}

func Test_storeFullDuringRecording(t *testing.T) {
	r, hw := newTestRecorder(2, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	rising := false
	for i := uint64(1); i <= 6; i++ {
		hw.edgeAt(i*100, rising)
		rising = !rising
	}
	r.Stop()
	if r.Store().Count() != 2 {
		t.Errorf("Count() = %d, want 2", r.Store().Count())
	}
	if r.Dropped() != 3 {
		t.Errorf("Dropped() = %d, want 3", r.Dropped())
	}
}

func Test_prepareRejects(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"zero period", Config{PeriodUs: 0, Resolution: 1000}, timing.ErrZeroPeriod},
		{"zero range", Config{PeriodUs: 1000, Resolution: 0}, timing.ErrZeroResolution},
		{"range wider than counter", Config{PeriodUs: 1000, Resolution: 1 << 20}, timing.ErrRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, hw := newTestRecorder(4, tt.cfg)
			err := r.Prepare()
			if !errors.Is(err, ErrConfig) || !errors.Is(err, tt.want) {
				t.Errorf("Prepare() error = %v, want %v", err, tt.want)
			}
			if r.State() != Unconfigured {
				t.Errorf("State() = %v, want unconfigured", r.State())
			}
			r.Start()
			if hw.running {
				t.Errorf("Start() after failed Prepare started the timer")
			}
		})
	}
}

func Test_prepareTimerError(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	hw.timerErr = errors.New("busy")
	if err := r.Prepare(); err == nil {
		t.Fatalf("Prepare() succeeded with a failing timer")
	}
	if r.State() != Unconfigured {
		t.Errorf("State() = %v, want unconfigured", r.State())
	}
}

func Test_prepareWhileRecording(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.Start()
	r.SetConfig(Config{PeriodUs: 2000, Resolution: 2000})
	if err := r.Prepare(); err != nil {
		t.Errorf("Prepare() while recording = %v", err)
	}
	if r.State() != Recording || !hw.running || r.Config() != testConfig {
		t.Errorf("Prepare()/SetConfig() disturbed a running recording")
	}
}

func Test_setConfigRequiresPrepare(t *testing.T) {
	r, hw := newTestRecorder(4, testConfig)
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	r.SetConfig(Config{PeriodUs: 2000, Resolution: 500, FirstEdgeRising: true})
	r.Start()
	if hw.running {
		t.Errorf("Start() ran with an unprepared configuration")
	}
	if err := r.Prepare(); err != nil {
		t.Fatal(err)
	}
	if hw.top != 499 || !hw.rising {
		t.Errorf("top = %d, rising = %v", hw.top, hw.rising)
	}
}

func Test_stateString(t *testing.T) {
	for s, want := range map[State]string{
		Unconfigured: "unconfigured",
		Prepared:     "prepared",
		Recording:    "recording",
		State(9):     "state(9)",
	} {
		if s.String() != want {
			t.Errorf("String() = %q, want %q", s.String(), want)
		}
	}
}
