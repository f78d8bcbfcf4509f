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

import "testing"

func Test_widen(t *testing.T) {
	scale := uint64(0x10000)
	type testCase struct {
		hi1, lo1, hi2, lo2 uint32
		want               uint64
	}
	tests := []testCase{
		{100, 40, 100, 45, 100*scale + 40},
		// carry between lo1 and lo2
		{100, 0xfff5, 101, 45, 100*scale + 0xfff5},
		// carry between hi1 and lo1
		{100, 40, 101, 45, 101*scale + 40},
		{0xffff_ffff, 7, 0xffff_ffff, 9, 0xffff_ffff*scale + 7},
	}
	for _, test := range tests {
		v := Widen(scale, test.hi1, test.lo1, test.hi2, test.lo2)
		if v != test.want {
			t.Errorf("Widen(%#x, %d, %d, %d, %d) = %d, want %d",
				scale, test.hi1, test.lo1, test.hi2, test.lo2, v, test.want)
		}
	}

	// the RP2040 timer splits at 32 bits
	if v := Widen(1<<32, 1, 0xffff_fffe, 2, 3); v != 1<<32|0xffff_fffe {
		t.Errorf("Widen(1<<32, ...) = %#x, want %#x", v, uint64(1<<32|0xffff_fffe))
	}
}
