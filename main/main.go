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

package main

import (
	"fmt"
	"machine"
	"time"

	"sigrec/src/capture"
	"sigrec/src/console"
	"sigrec/src/pico"
	"sigrec/src/signal"
)

const (
	capacity  = 8192
	carrierHz = 38_000

	// set timebaseHz to count a Si5351 on I2C0 instead of the system clock
	timebaseHz = 0
	xtalHz     = 25e6
)

var region [capacity]signal.Signal

func main() {
	// give the USB serial port time to come up
	time.Sleep(1000 * time.Millisecond)

	cc := pico.DefaultCaptureConfig()
	if timebaseHz != 0 {
		if err := machine.I2C0.Configure(machine.I2CConfig{}); err != nil {
			panic("Failed to configure I2C0")
		}
		hz, err := pico.StartTimebase(machine.I2C0, xtalHz, timebaseHz)
		if err != nil {
			fmt.Printf("timebase unavailable, using system clock: %v\n", err)
		} else {
			cc.ExternalHz = hz
		}
	}

	hw, err := pico.NewCapture(cc)
	if err != nil {
		panic("failed setup: " + err.Error())
	}
	rec := capture.NewRecorder(hw, signal.NewStore(region[:]), capture.DefaultConfig())
	if err := rec.Prepare(); err != nil {
		fmt.Printf("prepare failed: %v\n", err)
	}

	tx, err := pico.NewTransmitter(machine.PWM7, machine.GPIO14, carrierHz)
	if err != nil {
		panic("failed transmitter setup: " + err.Error())
	}

	fmt.Printf("setup complete %s, %d signals of storage\n",
		pico.StatusMessage(pico.ErrorFlag.Get()), capacity)
	con := console.New(rec, tx, crlfWriter{})
	for {
		if err := con.Run(serialReader{}); err != nil {
			fmt.Printf("console: %v\n", err)
		}
	}
}
