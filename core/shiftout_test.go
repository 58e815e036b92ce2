package core

import "testing"

// capturePin records every level written to it.
type capturePin struct {
	levels []bool
}

func (p *capturePin) Set(value bool) {
	p.levels = append(p.levels, value)
}

// decodeShifted replays captured data/clock writes and returns the bits the
// register chain would have sampled on each rising clock edge.
func decodeShifted(data, clock *capturePin) []bool {
	var out []bool
	level := false
	di := 0
	for _, c := range clock.levels {
		// One data write happens between the falling and rising edge.
		if c && !level {
			if di < len(data.levels) {
				out = append(out, data.levels[di])
				di++
			}
		}
		level = c
	}
	return out
}

func TestShiftOutLSBFirst(t *testing.T) {
	data := &capturePin{}
	clock := &capturePin{}
	s := newGPIOShift(data, clock)

	s.ShiftOut(0b1011, 4)

	got := decodeShifted(data, clock)
	want := []bool{true, true, false, true} // bit 0 first
	if len(got) != len(want) {
		t.Fatalf("sampled %d bits, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("bit %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestShiftOutBitCount(t *testing.T) {
	cases := []uint8{1, 4, 8}
	for _, bits := range cases {
		data := &capturePin{}
		clock := &capturePin{}
		s := newGPIOShift(data, clock)

		s.ShiftOut(0xff, bits)

		if got := len(data.levels); got != int(bits) {
			t.Errorf("bits=%d: %d data writes, want %d", bits, got, bits)
		}
		// Two clock writes per bit: low then high.
		if got := len(clock.levels); got != 2*int(bits) {
			t.Errorf("bits=%d: %d clock writes, want %d", bits, got, 2*int(bits))
		}
	}
}

func TestShiftOutClockIdlesHigh(t *testing.T) {
	data := &capturePin{}
	clock := &capturePin{}
	s := newGPIOShift(data, clock)

	s.ShiftOut(0x05, 4)

	if last := clock.levels[len(clock.levels)-1]; !last {
		t.Error("clock must end on the rising edge that registers the final bit")
	}
}
