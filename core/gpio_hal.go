package core

// GPIOPin identifies a hardware GPIO pin number
type GPIOPin uint32

// FastPin is a pre-resolved output handle for hot-path pin writes. The data
// and clock lines of the shift chain toggle once per serialized bit, so
// implementations write the pin's output register directly with no lookups
// and no error return.
type FastPin interface {
	// Set drives the pin high (true) or low (false)
	Set(value bool)
}

// GPIODriver is the abstract GPIO interface that core code uses.
// Platform-specific implementations handle actual hardware control.
type GPIODriver interface {
	// ConfigureOutput configures a pin as a digital output
	// Returns error if pin is invalid or already in use
	ConfigureOutput(pin GPIOPin) error

	// SetPin sets the pin to high (true) or low (false)
	SetPin(pin GPIOPin, value bool) error

	// GetPin reads the current pin state
	GetPin(pin GPIOPin) (bool, error)

	// FastOutput returns a register-level output handle for a pin that has
	// already been configured as an output.
	FastOutput(pin GPIOPin) FastPin
}

// Global singleton used by core code.
var gpioDriver GPIODriver

// SetGPIODriver is called by target-specific code to register its driver.
func SetGPIODriver(d GPIODriver) {
	gpioDriver = d
}

// MustGPIO returns the configured driver or panics if missing.
func MustGPIO() GPIODriver {
	if gpioDriver == nil {
		panic("GPIO driver not configured")
	}
	return gpioDriver
}
