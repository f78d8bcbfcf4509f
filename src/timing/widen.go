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
Widen turns two reads of a counter split over a high and a low word into one
consistent value, even when the low word rolled over between the reads. The
reads must be taken in the order hi1, lo1, hi2, lo2 and must be close enough
together that the low word advances by much less than half of scale.

The RP2040 microsecond timer is the typical user: its raw high and low
registers can only be read one at a time.
*/
func Widen(scale uint64, hi1, lo1, hi2, lo2 uint32) uint64 {
	if hi1 == hi2 {
		// any carry came after lo1
		return uint64(hi1)*scale + uint64(lo1)
	}
	if lo1 < lo2 {
		// the carry came before lo1
		return uint64(hi2)*scale + uint64(lo1)
	}
	return uint64(hi1)*scale + uint64(lo1)
}
