package core

// PhaseMode selects the coil energization sequence a motor's driver stage
// cycles through. The cycle length is the modulus applied to a motor's
// position counter when looking up its output pattern, so a counter is both
// the net step offset since the last home and, reduced, a phase index.
type PhaseMode uint8

const (
	// WaveStep energizes one coil at a time. 4-step cycle, lowest power.
	WaveStep PhaseMode = iota

	// FullStep energizes two adjacent coils. 4-step cycle, full torque.
	FullStep

	// HalfStep alternates between one and two coils. 8-step cycle, doubles
	// positional resolution at the cost of uneven torque.
	HalfStep
)

// Coil patterns, bit 0 = first parallel output of a stage (74HC595 Q0).
var (
	wavePatterns = [4]uint8{0b0001, 0b0010, 0b0100, 0b1000}
	fullPatterns = [4]uint8{0b0011, 0b0110, 0b1100, 0b1001}
	halfPatterns = [8]uint8{0b0001, 0b0011, 0b0010, 0b0110, 0b0100, 0b1100, 0b1000, 0b1001}
)

// CycleLength returns the number of patterns in the mode's cycle.
func (m PhaseMode) CycleLength() int32 {
	if m == HalfStep {
		return int32(len(halfPatterns))
	}
	return int32(len(wavePatterns))
}

// Pattern returns the coil pattern for a signed position counter. The
// counter is reduced with a floored modulo so that negative positions walk
// the cycle backwards instead of indexing out of range.
func (m PhaseMode) Pattern(counter int32) uint8 {
	n := m.CycleLength()
	idx := counter % n
	if idx < 0 {
		idx += n
	}
	switch m {
	case FullStep:
		return fullPatterns[idx]
	case HalfStep:
		return halfPatterns[idx]
	default:
		return wavePatterns[idx]
	}
}
