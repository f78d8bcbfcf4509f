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
	"fmt"
	"runtime/volatile"
)

// Status codes left in ErrorFlag for the firmware to report.
const (
	StatusOK = iota
	NoStateMachine
	NoDMA
	NoTimebase
	TimebaseFailed
)

func StatusMessage(code uint32) string {
	switch code {
	case StatusOK:
		return "OK"
	case NoStateMachine:
		return "No PIO State Machine"
	case NoDMA:
		return "No DMA Channel"
	case NoTimebase:
		return "No Timebase"
	case TimebaseFailed:
		return "Timebase Failed"
	default:
		return fmt.Sprintf("Unknown status %d", code)
	}
}

var ErrorFlag volatile.Register32
