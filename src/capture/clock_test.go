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

package capture

import "testing"

func Test_clockDeterminism(t *testing.T) {
	var c Clock
	c.Configure(1000, 1000)
	c.Reset()
	for i := 0; i < 5; i++ {
		c.Advance()
	}
	if c.Epoch() != 5000 {
		t.Fatalf("Epoch() = %d, want 5000", c.Epoch())
	}
	tests := []struct {
		fine, want uint32
	}{
		{500, 5500},
		{0, 5000},
		{999, 5999},
	}
	for _, tt := range tests {
		if v := c.Timestamp(tt.fine); v != tt.want {
			t.Errorf("Timestamp(%d) = %d, want %d", tt.fine, v, tt.want)
		}
	}
}

func Test_clockScaling(t *testing.T) {
	var c Clock
	// 10ms period counted in 50000 ticks of 0.2µs
	c.Configure(10_000, 50_000)
	c.Advance()
	if v := c.Timestamp(25_000); v != 15_000 {
		t.Errorf("Timestamp(25000) = %d, want 15000", v)
	}
	if v := c.Timestamp(49_999); v != 19_999 {
		t.Errorf("Timestamp(49999) = %d, want 19999", v)
	}
}

func Test_clockWraps(t *testing.T) {
	var c Clock
	c.Configure(1000, 1000)
	c.epoch.Store(0xffff_ffff - 999)
	before := c.Timestamp(500)
	if before != 0xffff_fe0c {
		t.Errorf("Timestamp(500) = %#x, want 0xfffffe0c", before)
	}
	c.Advance()
	if c.Epoch() != 0 {
		t.Errorf("Epoch() after wrap = %#x, want 0", c.Epoch())
	}
	after := c.Timestamp(500)
	if after != 500 {
		t.Errorf("Timestamp(500) = %d, want 500", after)
	}

	var buf testSink
	d := NewDifferencer(&buf)
	d.Push(RawEdge{true, before})
	d.Push(RawEdge{false, after})
	if len(buf.got) != 1 || buf.got[0].Duration != 1000 {
		t.Errorf("duration across wrap = %+v, want 1000", buf.got)
	}
}

func Test_clockReset(t *testing.T) {
	var c Clock
	c.Configure(250, 100)
	c.Advance()
	c.Advance()
	c.Reset()
	if v := c.Timestamp(40); v != 100 {
		t.Errorf("Timestamp(40) after Reset = %d, want 100", v)
	}
}
