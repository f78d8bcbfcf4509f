//go:build rp2040

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

package pico

import (
	"device/rp"
	"errors"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"

	pio "github.com/tinygo-org/pio/rp2-pio"

	"sigrec/src/machine_x"
	"sigrec/src/timing"
)

/*
The capture unit the recorder needs does not exist as such on the RP2040, so
it is assembled from three peripherals:

- a PWM slice free runs as the fine counter. TOP is range-1 and its wrap
interrupt is the period interrupt. With an external timebase the slice counts
rising edges on its B pin instead of the system clock.

- a PIO state machine runs the edge program and pushes a word into its RX
FIFO on every edge of the selected polarity. The program alternates between
rising and falling by itself.

- DMA channel "drain" is paced by the RX FIFO. It moves the word out of the
FIFO and chains to channel "latch", which copies the PWM counter into memory
and chains back to drain. Completion of latch is the edge interrupt.

The counter is copied a few bus cycles after the edge, always the same
number, so the latched value is as good as a hardware capture. The edge
interrupt runs at a higher priority than the period interrupt so that the
epoch never moves between the latch and the handler reading it.
*/

//go:generate pioasm -o go edge.pio edge_pio.go

var (
	ErrBusy    = errors.New("pico: capture hardware already in use")
	ErrNoDMA   = errors.New("pico: no free DMA channel")
	ErrDivider = errors.New("pico: divider not supported by PWM")
)

// NVIC priorities, lower is more urgent. Only the top two bits count.
const (
	edgePriority   = 0x40
	periodPriority = 0x80
)

// CaptureConfig says which pins and peripherals the recorder uses.
type CaptureConfig struct {
	Input      machine.Pin // demodulated receiver output
	Slice      uint8       // PWM slice used as the fine counter
	ExternalHz uint32      // when non-zero, count the B pin of Slice at this rate
}

func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{Input: machine.GPIO15, Slice: 0}
}

// Capture implements capture.Hardware. There can only be one.
type Capture struct {
	cfg    CaptureConfig
	slice  machine_x.Slice
	sm     pio.StateMachine
	offset uint8
	drain  DmaChannel
	latch  DmaChannel
	ready  bool

	sink    volatile.Register32 // FIFO words land here and are ignored
	latched volatile.Register32

	rising    bool
	delivered bool // an edge handler is running

	onPeriod, onEdge func()
}

var active *Capture

// NewCapture claims the interrupts for cfg. Peripherals are claimed lazily
// by SetCaptureMode.
func NewCapture(cfg CaptureConfig) (*Capture, error) {
	if active != nil {
		return nil, ErrBusy
	}
	c := &Capture{cfg: cfg, slice: machine_x.PWM(cfg.Slice)}
	active = c

	wrap := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, handleWrap)
	wrap.SetPriority(periodPriority)
	wrap.Enable()
	edge := interrupt.New(rp.IRQ_DMA_IRQ_0, handleLatch)
	edge.SetPriority(edgePriority)
	edge.Enable()
	return c, nil
}

func (c *Capture) ClockHz() uint32 {
	if c.cfg.ExternalHz != 0 {
		return c.cfg.ExternalHz
	}
	return machine.CPUFrequency()
}

// Limits of a PWM slice: an 8.4 divider and a 16 bit counter.
func (c *Capture) Limits() timing.Limits {
	return timing.Limits{MinDiv: 1, MaxDiv: 255, FracBits: 4, MaxRange: 1 << 16}
}

func (c *Capture) SetTimer(div timing.Divider, top uint32) error {
	if div.FracBits != 4 || div.Int < 1 || div.Int > 255 || div.Frac > 15 || top > 0xffff {
		return ErrDivider
	}
	c.slice.Enable(false)
	c.slice.SetWrapInterrupt(false)
	c.slice.SetClockDiv(uint8(div.Int), uint8(div.Frac))
	c.slice.SetTop(uint16(top))
	if c.cfg.ExternalHz != 0 {
		machine.Pin(2*c.cfg.Slice + 1).Configure(machine.PinConfig{Mode: machine.PinPWM})
		c.slice.SetDivMode(machine_x.DivRise)
	} else {
		c.slice.SetDivMode(machine_x.DivFree)
	}
	c.slice.ClearWrap()
	c.slice.SetWrapInterrupt(true)
	return nil
}

// SetCaptureMode loads the edge program and links the DMA channels. Later
// calls do nothing.
func (c *Capture) SetCaptureMode() error {
	if c.ready {
		return nil
	}
	c.cfg.Input.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	sm, err := pio.PIO0.ClaimStateMachine()
	if err != nil {
		ErrorFlag.Set(NoStateMachine)
		return err
	}
	offset, err := sm.PIO().AddProgram(edgeInstructions, edgeOrigin)
	if err != nil {
		sm.Unclaim()
		ErrorFlag.Set(NoStateMachine)
		return err
	}
	cfg := edgeProgramDefaultConfig(offset)
	cfg.SetInPins(c.cfg.Input)
	sm.Init(offset+edgeoffset_falling, cfg)
	sm.ClearFIFOs()
	sm.SetEnabled(true)
	c.sm, c.offset = sm, offset

	drain, ok := ClaimChannel()
	if !ok {
		ErrorFlag.Set(NoDMA)
		return ErrNoDMA
	}
	latch, ok := ClaimChannel()
	if !ok {
		drain.Unclaim()
		ErrorFlag.Set(NoDMA)
		return ErrNoDMA
	}
	c.drain, c.latch = drain, latch

	// latch: counter -> c.latched, then wake drain again
	lc := DefaultDMAConfig(latch.ChannelIndex())
	lc.SetReadIncrement(false)
	lc.SetWriteIncrement(false)
	lc.SetHighPriority(true)
	lc.SetChainTo(drain.ChannelIndex())
	lc.SetEnable(true)
	latch.HW().READ_ADDR.Set(c.slice.CounterAddr())
	latch.HW().WRITE_ADDR.Set(addressOf(&c.latched))
	latch.HW().TRANS_COUNT.Set(1)
	latch.HW().AL1_CTRL.Set(lc.CTRL)

	// drain: RX FIFO -> c.sink, paced by the FIFO, then latch
	dc := DefaultDMAConfig(drain.ChannelIndex())
	dc.SetReadIncrement(false)
	dc.SetWriteIncrement(false)
	dc.SetHighPriority(true)
	dc.SetIRQQuiet(true)
	dc.SetTREQ_SEL(dmaPIO_RxDREQ(sm))
	dc.SetChainTo(latch.ChannelIndex())
	dc.SetEnable(true)
	drain.HW().READ_ADDR.Set(addressOf(sm.RxReg()))
	drain.HW().WRITE_ADDR.Set(addressOf(&c.sink))
	drain.HW().TRANS_COUNT.Set(1)
	drain.HW().CTRL_TRIG.Set(dc.CTRL)

	c.ready = true
	return nil
}

func (c *Capture) SetRunning(run bool) { c.slice.Enable(run) }

func (c *Capture) ResetCounter() {
	c.slice.SetCounter(0)
	c.slice.ClearWrap()
}

func (c *Capture) ClearCapture() {
	c.sm.ClearFIFOs()
	c.latch.AckInterrupt()
	c.latched.Set(0)
}

func (c *Capture) SetEdgeInterrupt(enabled bool) { c.latch.SetInterrupt(enabled) }

// SetRisingEdge selects the polarity of the next edge. Right after an edge
// the program is already waiting for the opposite one, so only a change
// away from that needs a jump.
func (c *Capture) SetRisingEdge(rising bool) {
	natural := c.delivered && rising != c.rising
	c.delivered = false
	c.rising = rising
	if natural || !c.ready {
		return
	}
	entry := uint8(edgeoffset_falling)
	if rising {
		entry = edgeoffset_rising
	}
	c.sm.SetEnabled(false)
	c.sm.Jmp(c.offset+entry, pio.JmpAlways)
	c.sm.SetEnabled(true)
}

func (c *Capture) RisingEdge() bool { return c.rising }
func (c *Capture) Latched() uint32  { return c.latched.Get() }

func (c *Capture) OnPeriod(handler func()) { c.onPeriod = handler }
func (c *Capture) OnEdge(handler func())   { c.onEdge = handler }

func (c *Capture) DisableInterrupts() uintptr {
	return uintptr(interrupt.Disable())
}

func (c *Capture) RestoreInterrupts(state uintptr) {
	interrupt.Restore(interrupt.State(state))
}

func handleWrap(interrupt.Interrupt) {
	c := active
	c.slice.ClearWrap()
	if c.onPeriod != nil {
		c.onPeriod()
	}
}

func handleLatch(interrupt.Interrupt) {
	c := active
	c.latch.AckInterrupt()
	c.delivered = true
	if c.onEdge != nil {
		c.onEdge()
	}
	c.delivered = false
}
