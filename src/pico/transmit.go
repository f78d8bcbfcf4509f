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
	"machine"
)

// PWM is the part of a machine PWM group the transmitter needs.
type PWM interface {
	Configure(config machine.PWMConfig) error
	Channel(pin machine.Pin) (uint8, error)
	Set(channel uint8, value uint32)
	Top() uint32
}

// restart the schedule when a wait begins this long after the last one ended
const scheduleSlack = 1000

// Transmitter keys a carrier on an IR LED for replay.Play. Waits are
// scheduled back to back from the end of the previous wait so that a long
// replay does not drift.
type Transmitter struct {
	pwm     PWM
	channel uint8
	duty    uint32
	mark    uint64
}

// NewTransmitter sets up pwm to drive pin with a carrierHz square wave at one
// third duty cycle. pin must belong to pwm.
func NewTransmitter(pwm PWM, pin machine.Pin, carrierHz uint32) (*Transmitter, error) {
	err := pwm.Configure(machine.PWMConfig{Period: 1e9 / uint64(carrierHz)})
	if err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(pin)
	if err != nil {
		return nil, err
	}
	t := &Transmitter{pwm: pwm, channel: ch, duty: pwm.Top() / 3}
	t.SetCarrier(false)
	return t, nil
}

func (t *Transmitter) SetCarrier(on bool) {
	if on {
		t.pwm.Set(t.channel, t.duty)
	} else {
		t.pwm.Set(t.channel, 0)
	}
}

func (t *Transmitter) Wait(us uint32) {
	now := MicroTime()
	if now > t.mark+scheduleSlack {
		t.mark = now
	}
	t.mark += uint64(us)
	for MicroTime() < t.mark {
	}
}
