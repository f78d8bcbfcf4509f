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
	"errors"
	"fmt"

	"github.com/chiefMarlin/tinygo-drivers/si5351"
	"tinygo.org/x/drivers"

	"sigrec/src/timing"
)

var ErrTimebaseDivider = errors.New("pico: timebase needs an output divider")

// StartTimebase programs CLK0 of a Si5351 on bus to run at hz from a crystal
// at xtal. Wire CLK0 to the B pin of the capture slice and pass the returned
// frequency as CaptureConfig.ExternalHz.
func StartTimebase(bus drivers.I2C, xtal, hz float64) (uint32, error) {
	cfg, err := timing.NewSynthConfig(xtal, 0, hz)
	if err != nil {
		ErrorFlag.Set(TimebaseFailed)
		return 0, err
	}
	if cfg.R != 1 {
		ErrorFlag.Set(TimebaseFailed)
		return 0, ErrTimebaseDivider
	}

	clockgen := si5351.New(bus)
	connected, err := clockgen.Connected()
	if err != nil || !connected {
		ErrorFlag.Set(NoTimebase)
		return 0, fmt.Errorf("pico: no Si5351 on the bus: %v", err)
	}
	if err := clockgen.Configure(); err != nil {
		ErrorFlag.Set(TimebaseFailed)
		return 0, err
	}
	err = clockgen.ConfigurePLL(si5351.PLL_A, uint8(cfg.PllA), cfg.PllB, cfg.PllC)
	if err != nil {
		ErrorFlag.Set(TimebaseFailed)
		return 0, fmt.Errorf("pico: configure PLL: %w", err)
	}
	err = clockgen.ConfigureMultisynth(0, si5351.PLL_A, cfg.MsA, cfg.MsB, cfg.MsC)
	if err != nil {
		ErrorFlag.Set(TimebaseFailed)
		return 0, fmt.Errorf("pico: configure output: %w", err)
	}
	if err := clockgen.EnableOutputs(); err != nil {
		ErrorFlag.Set(TimebaseFailed)
		return 0, err
	}
	fmt.Printf("timebase: PLL %.1f MHz, CLK0 %.3f kHz\n", cfg.PLL/1e6, cfg.F/1e3)
	return cfg.ClockHz(), nil
}
