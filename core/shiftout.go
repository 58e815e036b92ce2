package core

// ShiftWriter pushes one motor's pattern into the 74HC595 chain.
// Implementations must clock the least significant bit out first; the latch
// line stays with the caller so a frame commits atomically.
type ShiftWriter interface {
	// ShiftOut clocks the low bits of value onto the chain, LSB first.
	// bits is the per-motor serial width (1-8), fixed at configuration time,
	// so implementations skip bounds checks on this path.
	ShiftOut(value uint8, bits uint8)
}

// gpioShift is the default bit-banged ShiftWriter. Data and clock are
// pre-resolved FastPin handles: each bit is presented on the data line while
// the clock is low and registered by the chain on the rising edge.
type gpioShift struct {
	data  FastPin
	clock FastPin
}

func newGPIOShift(data, clock FastPin) *gpioShift {
	return &gpioShift{data: data, clock: clock}
}

func (s *gpioShift) ShiftOut(value uint8, bits uint8) {
	for i := uint8(0); i < bits; i++ {
		s.clock.Set(false)
		s.data.Set(value&(1<<i) != 0)
		s.clock.Set(true)
	}
}
