// Package mcu is the host-side client for a stepbank firmware attached over
// a serial console. It formats protocol commands, sends them and waits for
// the firmware's reply line.
package mcu

import (
	"errors"
	"fmt"
	"strconv"

	"stepbank/host/serial"
	"stepbank/protocol"
)

// maxReadAttempts bounds how many timed-out reads we tolerate while waiting
// for a reply. Moves block the firmware until they finish, so this is
// generous.
const maxReadAttempts = 600

// Bank is a connection to a stepbank firmware.
type Bank struct {
	port serial.Port
}

// Connect opens the serial device and returns a connected client.
func Connect(device string, baud int) (*Bank, error) {
	cfg := serial.DefaultConfig(device)
	if baud != 0 {
		cfg.Baud = baud
	}
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return &Bank{port: port}, nil
}

// ConnectPort wraps an already-open port, e.g. a mock in tests.
func ConnectPort(port serial.Port) *Bank {
	return &Bank{port: port}
}

// Close closes the underlying port.
func (b *Bank) Close() error {
	return b.port.Close()
}

// Do sends one command and returns the reply's detail payload.
func (b *Bank) Do(cmd protocol.Command) (string, error) {
	line := protocol.Format(cmd) + "\n"
	if _, err := b.port.Write([]byte(line)); err != nil {
		return "", fmt.Errorf("send %q: %w", protocol.Format(cmd), err)
	}
	reply, err := b.readLine()
	if err != nil {
		return "", err
	}
	return protocol.ParseReply(reply)
}

// readLine reads up to the next newline, tolerating timed-out reads while
// the firmware is busy stepping.
func (b *Bank) readLine() (string, error) {
	var line []byte
	buf := make([]byte, 64)
	for attempt := 0; attempt < maxReadAttempts; attempt++ {
		n, err := b.port.Read(buf)
		if err != nil {
			return "", fmt.Errorf("read reply: %w", err)
		}
		for _, c := range buf[:n] {
			if c == '\n' {
				return string(line), nil
			}
			if c != '\r' {
				line = append(line, c)
			}
		}
	}
	return "", errors.New("no reply from firmware")
}

// Ping checks that the firmware answers.
func (b *Bank) Ping() error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdPing})
	return err
}

// Count returns the number of motors in the bank.
func (b *Bank) Count() (int, error) {
	detail, err := b.Do(protocol.Command{Kind: protocol.CmdCount})
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(detail)
	if err != nil {
		return 0, fmt.Errorf("bad count reply %q: %w", detail, err)
	}
	return n, nil
}

// Move steps a single motor by a signed amount.
func (b *Bank) Move(index int, steps int32) error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdMove, Index: index, Steps: steps})
	return err
}

// MoveList runs a coordinated move, one signed delta per motor.
func (b *Bank) MoveList(deltas []int32) error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdMoveList, Deltas: deltas})
	return err
}

// Home returns every motor to position zero.
func (b *Bank) Home() error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdHome})
	return err
}

// SetSpeedRPM sets the step rate in revolutions per minute.
func (b *Bank) SetSpeedRPM(rpm uint32) error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdSpeedRPM, Value: rpm})
	return err
}

// SetSpeedRadPerSec sets the step rate in radians per second.
func (b *Bank) SetSpeedRadPerSec(rad uint32) error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdSpeedRadPerSec, Value: rad})
	return err
}

// Enable turns the chain's parallel outputs on.
func (b *Bank) Enable() error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdEnable})
	return err
}

// Disable tri-states the chain's parallel outputs.
func (b *Bank) Disable() error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdDisable})
	return err
}

// Clear pulses the chain's master-reclear line.
func (b *Bank) Clear() error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdClear})
	return err
}

// Resize reallocates the bank for n motors. All positions reset to zero.
func (b *Bank) Resize(n uint32) error {
	_, err := b.Do(protocol.Command{Kind: protocol.CmdResize, Value: n})
	return err
}
