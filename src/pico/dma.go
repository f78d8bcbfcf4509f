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
	"runtime/volatile"
	"unsafe"

	pio "github.com/tinygo-org/pio/rp2-pio"
)

const dmaChannels = 12

var dmaClaimed uint16

// DmaChannel is one of the twelve RP2040 DMA channels.
type DmaChannel struct {
	hw  *dmaChannelHW
	idx uint8
}

// ClaimChannel returns the first DMA channel nobody else has claimed.
func ClaimChannel() (DmaChannel, bool) {
	for i := uint8(0); i < dmaChannels; i++ {
		if dmaClaimed&(1<<i) == 0 {
			dmaClaimed |= 1 << i
			hw := (*[dmaChannels]dmaChannelHW)(unsafe.Pointer(rp.DMA))
			return DmaChannel{hw: &hw[i], idx: i}, true
		}
	}
	return DmaChannel{}, false
}

func (ch DmaChannel) Unclaim() { dmaClaimed &^= 1 << ch.idx }

func (ch DmaChannel) ChannelIndex() uint8 { return ch.idx }

func (ch DmaChannel) HW() *dmaChannelHW { return ch.hw }

// Single DMA channel. See rp.DMA_Type.
//
//goland:noinspection GoSnakeCaseUsage
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	AL1_CTRL    volatile.Register32
	_           [11]volatile.Register32 // other aliases
}

// Abort stops the channel and waits for in-flight transfers to drain.
func (ch DmaChannel) Abort() {
	mask := uint32(1) << ch.idx
	rp.DMA.CHAN_ABORT.Set(mask)
	for rp.DMA.CHAN_ABORT.Get()&mask != 0 {
	}
}

// SetInterrupt routes completion of this channel to DMA_IRQ_0.
func (ch DmaChannel) SetInterrupt(enable bool) {
	if enable {
		rp.DMA.INTE0.SetBits(1 << ch.idx)
	} else {
		rp.DMA.INTE0.ClearBits(1 << ch.idx)
	}
}

// AckInterrupt clears a pending completion, raised or not.
func (ch DmaChannel) AckInterrupt() {
	rp.DMA.INTR.Set(1 << ch.idx)
}

// dmaPIO_RxDREQ returns the Rx DREQ signal for a PIO state machine.
//
//goland:noinspection GoSnakeCaseUsage
func dmaPIO_RxDREQ(sm pio.StateMachine) uint32 {
	return _DREQ_PIO0_RX0 + uint32(sm.PIO().BlockIndex())*8 + uint32(sm.StateMachineIndex())
}

// 2.5.3.1. System DREQ Table
//
//goland:noinspection GoSnakeCaseUsage
const _DREQ_PIO0_RX0 = 0x4

type DmaTxSize uint32

const (
	DmaTxSize8 DmaTxSize = iota
	DmaTxSize16
	DmaTxSize32
)

type dmaChannelConfig struct {
	CTRL uint32
}

// DefaultDMAConfig is an unpaced, unchained 32 bit copy with read increment.
func DefaultDMAConfig(channel uint8) (cc dmaChannelConfig) {
	cc.SetChainTo(channel)
	cc.SetTREQ_SEL(rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_PERMANENT)
	cc.SetReadIncrement(true)
	cc.SetTransferDataSize(DmaTxSize32)
	return cc
}

// SetTREQ_SEL selects the transfer request signal that paces the channel.
func (cc *dmaChannelConfig) SetTREQ_SEL(dreq uint32) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Msk)) | (dreq << rp.DMA_CH0_CTRL_TRIG_TREQ_SEL_Pos)
}

// SetChainTo triggers chainTo when this channel completes. Chaining to
// itself disables chaining.
func (cc *dmaChannelConfig) SetChainTo(chainTo uint8) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Msk)) | (uint32(chainTo) << rp.DMA_CH0_CTRL_TRIG_CHAIN_TO_Pos)
}

func (cc *dmaChannelConfig) SetTransferDataSize(size DmaTxSize) {
	cc.CTRL = (cc.CTRL & ^uint32(rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Msk)) | (uint32(size) << rp.DMA_CH0_CTRL_TRIG_DATA_SIZE_Pos)
}

func (cc *dmaChannelConfig) SetReadIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_READ_Pos, incr)
}

func (cc *dmaChannelConfig) SetWriteIncrement(incr bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_INCR_WRITE_Pos, incr)
}

func (cc *dmaChannelConfig) SetIRQQuiet(irqQuiet bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_IRQ_QUIET_Pos, irqQuiet)
}

func (cc *dmaChannelConfig) SetHighPriority(highPriority bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_HIGH_PRIORITY_Pos, highPriority)
}

func (cc *dmaChannelConfig) SetEnable(enable bool) {
	setBitPos(&cc.CTRL, rp.DMA_CH0_CTRL_TRIG_EN_Pos, enable)
}

func setBitPos(cc *uint32, pos uint32, bit bool) {
	if bit {
		*cc |= 1 << pos
	} else {
		*cc &^= 1 << pos
	}
}

func addressOf(r *volatile.Register32) uint32 {
	return uint32(uintptr(unsafe.Pointer(r)))
}
