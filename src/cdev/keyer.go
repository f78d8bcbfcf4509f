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

package cdev

import (
	"errors"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// outputLine is the part of gpiocdev.Line a Keyer drives.
type outputLine interface {
	SetValue(value int) error
	Reconfigure(options ...gpiocdev.LineConfigOption) error
	Close() error
}

// Keyer drives an output line high for on signals, for an IR LED module
// that modulates by itself or for a logic analyzer. It implements
// replay.Keyer.
//
// replay.Keyer has no error path, so the first failed write is kept and
// reported by Err.
type Keyer struct {
	line outputLine
	mark time.Time
	err  error
}

func OpenKeyer(chip string, offset int) (*Keyer, error) {
	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithConsumer("sigrec"),
		gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &Keyer{line: line}, nil
}

func (k *Keyer) SetCarrier(on bool) {
	v := 0
	if on {
		v = 1
	}
	if err := k.line.SetValue(v); err != nil && k.err == nil {
		k.err = err
	}
}

// Err returns the first error from SetCarrier, if any.
func (k *Keyer) Err() error { return k.err }

// Wait sleeps until us after the end of the previous wait, or after now if
// that is long past.
func (k *Keyer) Wait(us uint32) {
	now := time.Now()
	if now.Sub(k.mark) > time.Millisecond {
		k.mark = now
	}
	k.mark = k.mark.Add(time.Duration(us) * time.Microsecond)
	time.Sleep(time.Until(k.mark))
}

// Close returns the line to an input and releases it.
func (k *Keyer) Close() error {
	return errors.Join(k.line.Reconfigure(gpiocdev.AsInput), k.line.Close())
}
