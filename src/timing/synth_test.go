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
	"math"
	"testing"
)

func Test_synthTimebases(t *testing.T) {
	// typical fine counter timebases
	for _, f := range []float64{1e6, 2e6, 4e6, 5e6, 10e6, 12.5e6, 28.125e6} {
		config, err := NewSynthConfig(25e6, 0, f)
		if err != nil {
			t.Errorf("NewSynthConfig(%.0f): %s", f, err)
			continue
		}
		if math.Abs(config.Eps)/f > 1e-9 {
			t.Errorf("big discrepancy: %.4f, %.2f vs %.2f", config.Eps, config.F, f)
		}
		if config.R != 1 {
			t.Errorf("NewSynthConfig(%.0f) needs R = %d, want 1", f, config.R)
		}
	}
}

func Test_synthFeedsPlan(t *testing.T) {
	// an external timebase must give the PWM counter an exact period
	tests := []struct {
		f    float64
		want Setting
	}{
		{5e6, Setting{Divider: Divider{Int: 1, FracBits: 4}, Range: 50_000, PeriodUs: 10_000}},
		{12.5e6, Setting{Divider: Divider{Int: 2, Frac: 8, FracBits: 4}, Range: 50_000, PeriodUs: 10_000}},
	}
	for _, tt := range tests {
		config, err := NewSynthConfig(25e6, 0, tt.f)
		if err != nil {
			t.Fatalf("NewSynthConfig(%.0f): %s", tt.f, err)
		}
		if hz := config.ClockHz(); float64(hz) != tt.f {
			t.Errorf("ClockHz() = %d, want %.0f", hz, tt.f)
		}
		got, err := Plan(config.ClockHz(), 10_000, 50_000, rp2040PWM)
		if err != nil {
			t.Fatalf("Plan(%d): %v", config.ClockHz(), err)
		}
		if got != tt.want {
			t.Errorf("Plan(%d) = %+v, want %+v", config.ClockHz(), got, tt.want)
		}
	}
}

func Test_synthOutputDivider(t *testing.T) {
	// 600MHz / 100kHz = 6000, which needs R = 4 to get the multisynth under 2048
	config, err := NewSynthConfig(25e6, 0, 100e3)
	if err != nil {
		t.Fatalf("NewSynthConfig: %s", err)
	}
	if config.R != 4 {
		t.Errorf("R = %d, want 4", config.R)
	}
	if math.Abs(config.Eps) > 1e-3 {
		t.Errorf("Eps = %.6f", config.Eps)
	}
}

func Test_synthRange(t *testing.T) {
	for f := 1.0; f < 2200; f += 50 {
		if _, err := NewSynthConfig(25e6, 0, f); err == nil {
			t.Errorf("expected error for low frequency %.3f", f)
		}
	}
	if _, err := NewSynthConfig(25e6, 0, 250e6); err == nil {
		t.Errorf("expected error for 250MHz")
	}
	if _, err := NewSynthConfig(40e6, 0, 1e6); err == nil {
		t.Errorf("expected error for 40MHz crystal")
	}
	if _, err := NewSynthConfig(25e6, 500e6, 1e6); err == nil {
		t.Errorf("expected error for 500MHz PLL")
	}
}
