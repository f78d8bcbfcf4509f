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
	"fmt"
	"math"
)

// SynthConfig holds the divider settings that make a Si5351 clock generator
// produce a requested frequency. The recorder uses it to derive an external
// timebase for the fine counter.
type SynthConfig struct {
	Xtal, PLL, F float64 // crystal, PLL and realized output frequencies (Hz)

	// PLL feedback multiplier PllA + PllB/PllC
	PllA, PllB, PllC uint32
	// output multisynth divider MsA + MsB/MsC
	MsA, MsB, MsC uint32
	// final power of two output divider
	R uint32

	Eps float64 // requested minus realized frequency (Hz)
}

/*
NewSynthConfig computes PLL and multisynth parameters such that

	xtal * (PllA + PllB/PllC) / (MsA + MsB/MsC) / R ≈ f

xtal is the crystal frequency (25 or 27MHz typically). If pll is zero a
suitable PLL frequency in 600..900MHz is chosen.
*/
func NewSynthConfig(xtal, pll, f float64) (SynthConfig, error) {
	if xtal < 10e6 || xtal > 27e6 {
		return SynthConfig{}, errors.New("timing: invalid synthesizer crystal frequency")
	}
	if f > 200e6 {
		return SynthConfig{}, errors.New("timing: synthesizer output frequency > 200MHz")
	}

	switch {
	case f > 150e6:
		pll = 4 * f
	case f >= 100e6:
		pll = 6 * f
	case pll == 0:
		if f < 5e6 {
			pll = 600e6
		} else {
			pll = 800e6
		}
	case pll < 600e6 || pll > 900e6:
		return SynthConfig{}, errors.New("timing: synthesizer PLL frequency out of range")
	}

	z := pll / xtal
	if z < 15 || z > 90 {
		return SynthConfig{}, fmt.Errorf("timing: PLL feedback ratio %.3f out of range", z)
	}
	b, c, _ := NearestFraction(uint64(z*1e12), 1_000_000_000_000, 1<<20)
	r := SynthConfig{
		Xtal: xtal,
		PLL:  pll,
		PllA: uint32(b / c),
		PllB: uint32(b % c),
		PllC: uint32(c),
	}

	z = xtal * (float64(r.PllA) + float64(r.PllB)/float64(r.PllC)) / f
	if !near(z, 4, 1e-9) && !near(z, 6, 1e-9) && z < 8 {
		return SynthConfig{}, fmt.Errorf("timing: multisynth ratio too small: %.5g", z)
	}
	r.R = 1
	for z/float64(r.R) > 2048 && r.R <= 128 {
		r.R *= 2
	}
	if r.R > 128 {
		return SynthConfig{}, errors.New("timing: output divider too big, frequency too low")
	}
	b, c, _ = NearestFraction(uint64(z*1e12/float64(r.R)), 1_000_000_000_000, 1<<20)
	r.MsA = uint32(b / c)
	r.MsB = uint32(b % c)
	r.MsC = uint32(c)

	r.F = xtal * (float64(r.PllA) + float64(r.PllB)/float64(r.PllC)) /
		(float64(r.MsA) + float64(r.MsB)/float64(r.MsC)) / float64(r.R)
	r.Eps = f - r.F
	if math.Abs(r.Eps)/f > 1e-9 {
		return SynthConfig{}, fmt.Errorf("timing: synthesizer frequency error %.3g Hz", r.Eps)
	}
	return r, nil
}

// ClockHz is the realized output frequency rounded to whole hertz, the
// form Plan takes a counter clock in.
func (c SynthConfig) ClockHz() uint32 {
	return uint32(c.F + 0.5)
}

func near(a float64, b float64, eps float64) bool {
	return math.Abs(a-b) <= eps
}
