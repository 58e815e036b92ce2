package core

// ClockDriver provides the monotonic clock used to pace step frames.
// Platform code registers an implementation backed by a hardware timer.
type ClockDriver interface {
	// Micros returns microseconds since boot. Must be monotonic.
	Micros() uint64
}

// Global singleton used by core code.
var clockDriver ClockDriver

// SetClockDriver is called by target-specific code to register its clock.
func SetClockDriver(d ClockDriver) {
	clockDriver = d
}

// MustClock returns the configured clock or panics if missing.
func MustClock() ClockDriver {
	if clockDriver == nil {
		panic("clock driver not configured")
	}
	return clockDriver
}
