//go:build linux

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
Package cdev runs the recorder on a Linux GPIO line through the character
device interface.

There is no capture timer to program, but the kernel stamps every edge event
with the monotonic clock as the interrupt happens, which is just as good. The
line is treated as a timer counting nanoseconds: SetTimer picks how many
nanoseconds make a tick and how many ticks make a period, and an edge latches
its timestamp measured in ticks modulo the period. Period callbacks are
delivered in order right before the edge that follows them, so the epoch is
always current when the edge handler runs.
*/
package cdev

import (
	"errors"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"

	"sigrec/src/timing"
)

var ErrDivider = errors.New("cdev: divider not supported")

// Line implements capture.Hardware on one GPIO input line.
type Line struct {
	line *gpiocdev.Line
	now  func() time.Duration

	mask sync.Mutex // held while handlers run, and by DisableInterrupts
	mu   sync.Mutex // guards the fields below

	tickNs     uint64
	rangeTicks uint64
	running    bool
	start      time.Duration // timestamp of counter zero
	cutoff     time.Duration // events stamped earlier are stale
	stopped    uint64        // ticks counted before the last SetRunning(false)
	periods    uint64        // period callbacks delivered since counter zero

	edgeEnabled bool
	rising      bool
	latched     uint32

	onPeriod, onEdge func()
}

// Open requests offset on chip (e.g. "gpiochip0") as an input reporting
// both edges.
func Open(chip string, offset int, pullUp bool) (*Line, error) {
	l := newLine(monotonic)
	opts := []gpiocdev.LineReqOption{
		gpiocdev.WithConsumer("sigrec"),
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(l.handle),
	}
	if pullUp {
		opts = append(opts, gpiocdev.WithPullUp)
	}
	line, err := gpiocdev.RequestLine(chip, offset, opts...)
	if err != nil {
		return nil, err
	}
	l.line = line
	return l, nil
}

func newLine(now func() time.Duration) *Line {
	return &Line{now: now, tickNs: 1, rangeTicks: 1}
}

func (l *Line) Close() error {
	return l.line.Close()
}

// ClockHz is the rate of the event timestamps.
func (l *Line) ClockHz() uint32 { return 1_000_000_000 }

// Limits allow any whole nanosecond tick and a 31 bit range.
func (l *Line) Limits() timing.Limits {
	return timing.Limits{MinDiv: 1, MaxDiv: 1 << 20, FracBits: 0, MaxRange: 1 << 31}
}

func (l *Line) SetTimer(div timing.Divider, top uint32) error {
	if div.Frac != 0 || div.Int == 0 {
		return ErrDivider
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tickNs = uint64(div.Int)
	l.rangeTicks = uint64(top) + 1
	return nil
}

func (l *Line) SetCaptureMode() error { return nil }

func (l *Line) SetRunning(run bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if run == l.running {
		return
	}
	now := l.now()
	if run {
		// resume where the counter stopped
		l.start = now - time.Duration(l.stopped*l.tickNs)
		l.cutoff = now
	} else {
		l.stopped = l.ticks(now)
	}
	l.running = run
}

func (l *Line) ResetCounter() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start = l.now()
	l.cutoff = l.start
	l.stopped = 0
	l.periods = 0
}

// ClearCapture discards events the kernel stamped before now but has not
// delivered yet.
func (l *Line) ClearCapture() {
	l.mu.Lock()
	l.cutoff = l.now()
	l.mu.Unlock()
}

func (l *Line) SetEdgeInterrupt(enabled bool) {
	l.mu.Lock()
	l.edgeEnabled = enabled
	l.mu.Unlock()
}

func (l *Line) SetRisingEdge(rising bool) {
	l.mu.Lock()
	l.rising = rising
	l.mu.Unlock()
}

func (l *Line) RisingEdge() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rising
}

func (l *Line) Latched() uint32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.latched
}

func (l *Line) OnPeriod(handler func()) {
	l.mu.Lock()
	l.onPeriod = handler
	l.mu.Unlock()
}

func (l *Line) OnEdge(handler func()) {
	l.mu.Lock()
	l.onEdge = handler
	l.mu.Unlock()
}

// DisableInterrupts holds off event delivery until RestoreInterrupts.
func (l *Line) DisableInterrupts() uintptr {
	l.mask.Lock()
	return 0
}

func (l *Line) RestoreInterrupts(uintptr) {
	l.mask.Unlock()
}

func (l *Line) ticks(t time.Duration) uint64 {
	if t < l.start {
		return 0
	}
	return uint64(t-l.start) / l.tickNs
}

// handle plays the part of the interrupt controller. Handlers run with the
// mask held and the registers unlocked, as they call back into Line.
func (l *Line) handle(evt gpiocdev.LineEvent) {
	l.mask.Lock()
	defer l.mask.Unlock()

	l.mu.Lock()
	if !l.running || evt.Timestamp < l.cutoff {
		l.mu.Unlock()
		return
	}
	ticks := l.ticks(evt.Timestamp)
	var wraps uint64
	if n := ticks / l.rangeTicks; n > l.periods {
		wraps = n - l.periods
		l.periods = n
	}
	onPeriod, onEdge := l.onPeriod, l.onEdge
	fire := false
	if (evt.Type == gpiocdev.LineEventRisingEdge) == l.rising {
		l.latched = uint32(ticks % l.rangeTicks)
		fire = l.edgeEnabled && onEdge != nil
	}
	l.mu.Unlock()

	for ; onPeriod != nil && wraps > 0; wraps-- {
		onPeriod()
	}
	if fire {
		onEdge()
	}
}

func monotonic() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		panic(err)
	}
	return time.Duration(ts.Nano())
}
