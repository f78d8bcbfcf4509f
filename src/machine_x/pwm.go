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

// Package machine_x has the register level PWM access that the machine
// package does not expose: counting external edges, reading and presetting
// the counter, and the wrap interrupt.
package machine_x

import (
	"device/rp"
	"runtime/volatile"
	"unsafe"
)

// DivMode selects what advances a slice counter.
type DivMode uint32

const (
	DivFree DivMode = rp.PWM_CH0_CSR_DIVMODE_DIV  // free running at the divided system clock
	DivRise DivMode = rp.PWM_CH0_CSR_DIVMODE_RISE // rising edges on the B pin
)

const Slices = 8

// one PWM slice. See rp.PWM_Type.
//
//goland:noinspection GoSnakeCaseUsage
type sliceHW struct {
	CSR volatile.Register32
	DIV volatile.Register32
	CTR volatile.Register32
	CC  volatile.Register32
	TOP volatile.Register32
}

// Slice is a handle on one of the eight PWM slices.
type Slice struct {
	hw  *sliceHW
	idx uint8
}

func PWM(index uint8) Slice {
	if index >= Slices {
		panic("invalid PWM slice")
	}
	slices := (*[Slices]sliceHW)(unsafe.Pointer(rp.PWM))
	return Slice{hw: &slices[index], idx: index}
}

// SliceOf returns the slice that pin belongs to. Odd pins are B inputs.
func SliceOf(pin uint8) uint8 {
	return (pin >> 1) & (Slices - 1)
}

func (s Slice) Index() uint8 { return s.idx }

func (s Slice) SetDivMode(mode DivMode) {
	s.hw.CSR.ReplaceBits(uint32(mode), rp.PWM_CH0_CSR_DIVMODE_Msk>>rp.PWM_CH0_CSR_DIVMODE_Pos,
		rp.PWM_CH0_CSR_DIVMODE_Pos)
}

// SetClockDiv sets the 8.4 fractional divider. An integer part of 0 divides
// by 256.
func (s Slice) SetClockDiv(whole, frac uint8) {
	s.hw.DIV.Set(uint32(whole)<<rp.PWM_CH0_DIV_INT_Pos | uint32(frac&0xf)<<rp.PWM_CH0_DIV_FRAC_Pos)
}

func (s Slice) SetTop(top uint16) { s.hw.TOP.Set(uint32(top)) }

func (s Slice) Counter() uint32 { return s.hw.CTR.Get() }

func (s Slice) SetCounter(v uint16) { s.hw.CTR.Set(uint32(v)) }

// CounterAddr is the bus address of the counter, for DMA.
func (s Slice) CounterAddr() uint32 {
	return uint32(uintptr(unsafe.Pointer(&s.hw.CTR)))
}

func (s Slice) Enable(enable bool) {
	s.hw.CSR.ReplaceBits(boolToBit(enable), 1, rp.PWM_CH0_CSR_EN_Pos)
}

func (s Slice) Enabled() bool {
	return s.hw.CSR.HasBits(rp.PWM_CH0_CSR_EN_Msk)
}

// SetWrapInterrupt routes the wrap of this slice to IRQ_PWM_IRQ_WRAP.
func (s Slice) SetWrapInterrupt(enable bool) {
	rp.PWM.INTE.ReplaceBits(boolToBit(enable), 1, s.idx)
}

// ClearWrap acknowledges a pending wrap.
func (s Slice) ClearWrap() {
	rp.PWM.INTR.Set(1 << s.idx)
}

func (s Slice) WrapPending() bool {
	return rp.PWM.INTS.HasBits(1 << s.idx)
}

//go:inline
func boolToBit(a bool) uint32 {
	if a {
		return 1
	}
	return 0
}
