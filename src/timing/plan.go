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

package timing

import (
	"errors"
	"math/bits"
)

var (
	ErrZeroPeriod     = errors.New("timing: period length is zero")
	ErrZeroResolution = errors.New("timing: fine counter range is zero")
	ErrRange          = errors.New("timing: fine counter range exceeds counter width")
	ErrDivider        = errors.New("timing: required divider is outside the hardware limits")
	ErrOverflow       = errors.New("timing: clock and period too large")
)

// Divider is a clock divider of the form Int + Frac/2^FracBits.
type Divider struct {
	Int      uint32
	Frac     uint32
	FracBits uint8
}

// Ratio returns the divider as a floating point number.
func (d Divider) Ratio() float64 {
	return float64(d.Int) + float64(d.Frac)/float64(uint32(1)<<d.FracBits)
}

// Limits describes what a timer can be programmed to do.
type Limits struct {
	MinDiv, MaxDiv uint32 // bounds on the integer part of the divider, inclusive
	FracBits       uint8  // number of fractional divider bits, 0 for integer prescalers
	MaxRange       uint32 // number of distinct counter values, e.g. 1<<16
}

// Setting is a concrete timer configuration.
type Setting struct {
	Divider  Divider
	Range    uint32  // fine counter values per period (top = Range-1)
	PeriodUs uint32  // nominal period; the epoch advances by this much
	ErrorPPM float64 // realized period relative to PeriodUs, 0 when exact
}

/*
Plan finds a divider and counter range such that one full counter period at
clockHz lasts periodUs microseconds while the counter spans about
resolution values.

The divider is n/2^f, so the constraint for an exact period is

	n * range * 10^6 = clockHz * periodUs * 2^f

We first look for the largest range no bigger than the requested resolution
(and no smaller than half of it) that satisfies this exactly. An exact period
matters because the epoch advances by a fixed whole number of microseconds;
any mismatch accumulates as drift over a recording. If nothing exact exists,
the requested range is kept and the divider is rounded, with the resulting
drift reported in ErrorPPM.
*/
func Plan(clockHz, periodUs, resolution uint32, lim Limits) (Setting, error) {
	if periodUs == 0 {
		return Setting{}, ErrZeroPeriod
	}
	if resolution == 0 {
		return Setting{}, ErrZeroResolution
	}
	if lim.MaxRange != 0 && resolution > lim.MaxRange {
		return Setting{}, ErrRange
	}
	hi, target := bits.Mul64(uint64(clockHz), uint64(periodUs))
	if hi != 0 || target > (1<<64-1)>>lim.FracBits {
		return Setting{}, ErrOverflow
	}
	target <<= lim.FracBits

	lowest := resolution / 2
	if lowest == 0 {
		lowest = 1
	}
	for r := resolution; r >= lowest; r-- {
		unit := uint64(r) * 1_000_000
		if target%unit != 0 {
			continue
		}
		if d, ok := divider(target/unit, lim); ok {
			return Setting{Divider: d, Range: r, PeriodUs: periodUs}, nil
		}
	}

	unit := uint64(resolution) * 1_000_000
	n := (target + unit/2) / unit
	d, ok := divider(n, lim)
	if !ok {
		return Setting{}, ErrDivider
	}
	realized := float64(n) * float64(unit)
	return Setting{
		Divider:  d,
		Range:    resolution,
		PeriodUs: periodUs,
		ErrorPPM: (realized - float64(target)) / float64(target) * 1e6,
	}, nil
}

// divider converts a raw n/2^f value into a Divider and checks it against lim.
func divider(n uint64, lim Limits) (Divider, bool) {
	whole := n >> lim.FracBits
	if whole < uint64(lim.MinDiv) || whole > uint64(lim.MaxDiv) {
		return Divider{}, false
	}
	return Divider{
		Int:      uint32(whole),
		Frac:     uint32(n & (1<<lim.FracBits - 1)),
		FracBits: lim.FracBits,
	}, true
}
