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

/*
All times in the recorder are microsecond counts held in a uint32. That clock
wraps every 2^32 µs (a bit under 72 minutes) so nothing here ever compares two
timestamps directly. Durations are always computed as modular differences and
the reconstruction of a timestamp is a modular sum. As long as the true
interval between two edges is shorter than one full wrap, the difference is
exact even when the clock rolled over in between.
*/

// Sub returns the number of microseconds from earlier to later, modulo 2^32.
func Sub(later, earlier uint32) uint32 {
	return later - earlier
}

// Add returns t advanced by d microseconds, modulo 2^32.
func Add(t, d uint32) uint32 {
	return t + d
}

// Scale converts a fine counter value in [0, fineRange) into microseconds
// within a period of periodUs. The product is formed in 64 bits so a 16 bit
// counter against a multi-second period cannot overflow.
//
// fineRange must not be zero.
func Scale(periodUs, fine, fineRange uint32) uint32 {
	return uint32(uint64(periodUs) * uint64(fine) / uint64(fineRange))
}

// Parts is a duration broken into decimal units. Every part except KiloS is
// below 1000.
type Parts struct {
	KiloS, S, MilliS, MicroS uint16
}

// Split breaks a microsecond count into kiloseconds, seconds, milliseconds
// and microseconds.
func Split(us uint32) Parts {
	return Parts{
		KiloS:  uint16(us / 1_000_000_000),
		S:      uint16(us / 1_000_000 % 1000),
		MilliS: uint16(us / 1000 % 1000),
		MicroS: uint16(us % 1000),
	}
}

// Join is the inverse of Split. It reports false if a sub-unit is out of
// range or the total does not fit in 32 bits.
func Join(p Parts) (uint32, bool) {
	if p.S >= 1000 || p.MilliS >= 1000 || p.MicroS >= 1000 {
		return 0, false
	}
	us := ((uint64(p.KiloS)*1000+uint64(p.S))*1000+uint64(p.MilliS))*1000 + uint64(p.MicroS)
	if us > 0xffff_ffff {
		return 0, false
	}
	return uint32(us), true
}
