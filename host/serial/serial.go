// Package serial opens the console port of a stepbank firmware. The wire
// carries newline-delimited protocol lines, so the port surface is a plain
// byte stream; reads time out so callers can poll while the firmware is
// busy stepping.
package serial

import (
	"io"
)

// Port is the byte stream to a firmware console. Implementations return
// (0, nil) from Read on timeout rather than blocking forever.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3")
	Device string

	// Baud rate (ignored for USB CDC consoles)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns a default configuration for a stepbank console
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 500, // moves can take a while; replies arrive when done
	}
}
