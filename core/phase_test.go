package core

import (
	"math/bits"
	"testing"
)

func TestPhasePeriodicity(t *testing.T) {
	modes := []PhaseMode{WaveStep, FullStep, HalfStep}

	for _, mode := range modes {
		n := mode.CycleLength()
		for k := int32(-3 * n); k < 3*n; k++ {
			if got, want := mode.Pattern(k+n), mode.Pattern(k); got != want {
				t.Errorf("mode %d: Pattern(%d)=%#04b, Pattern(%d)=%#04b, want equal",
					mode, k+n, got, k, want)
			}
		}
	}
}

func TestPhaseNegativeCounters(t *testing.T) {
	// Walking backwards from zero must traverse the cycle in reverse.
	for _, mode := range []PhaseMode{WaveStep, FullStep, HalfStep} {
		n := mode.CycleLength()
		if got, want := mode.Pattern(-1), mode.Pattern(n-1); got != want {
			t.Errorf("mode %d: Pattern(-1)=%#04b, want %#04b", mode, got, want)
		}
		if got, want := mode.Pattern(-n), mode.Pattern(0); got != want {
			t.Errorf("mode %d: Pattern(-%d)=%#04b, want %#04b", mode, n, got, want)
		}
	}
}

func TestPhaseCycleLengths(t *testing.T) {
	cases := []struct {
		mode PhaseMode
		want int32
	}{
		{WaveStep, 4},
		{FullStep, 4},
		{HalfStep, 8},
	}
	for _, tc := range cases {
		if got := tc.mode.CycleLength(); got != tc.want {
			t.Errorf("mode %d: CycleLength()=%d, want %d", tc.mode, got, tc.want)
		}
	}
}

func TestPhaseCoilCounts(t *testing.T) {
	// Wave step drives exactly one coil, full step exactly two, half step
	// alternates between one and two starting from one.
	for k := int32(0); k < 4; k++ {
		if n := bits.OnesCount8(WaveStep.Pattern(k)); n != 1 {
			t.Errorf("wave Pattern(%d) drives %d coils, want 1", k, n)
		}
		if n := bits.OnesCount8(FullStep.Pattern(k)); n != 2 {
			t.Errorf("full Pattern(%d) drives %d coils, want 2", k, n)
		}
	}
	for k := int32(0); k < 8; k++ {
		want := 1 + int(k%2)
		if n := bits.OnesCount8(HalfStep.Pattern(k)); n != want {
			t.Errorf("half Pattern(%d) drives %d coils, want %d", k, n, want)
		}
	}
}

func TestPhasePatternsFitStepLines(t *testing.T) {
	// Every pattern must fit in the default four step lines.
	for _, mode := range []PhaseMode{WaveStep, FullStep, HalfStep} {
		for k := int32(0); k < mode.CycleLength(); k++ {
			if p := mode.Pattern(k); p > 0x0f {
				t.Errorf("mode %d: Pattern(%d)=%#08b exceeds 4 bits", mode, k, p)
			}
		}
	}
}

func TestPhaseAdjacentPatternsOverlap(t *testing.T) {
	// Consecutive half-step patterns must share a coil, otherwise the rotor
	// loses synchronization between steps.
	for k := int32(0); k <= HalfStep.CycleLength(); k++ {
		a, b := HalfStep.Pattern(k), HalfStep.Pattern(k+1)
		if a&b == 0 {
			t.Errorf("half step patterns %d and %d share no coil: %#04b %#04b", k, k+1, a, b)
		}
	}
}
