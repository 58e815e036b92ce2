//go:build rp2040 || rp2350

package main

import (
	"machine"
	"strconv"
	"time"

	"stepbank/core"
	"stepbank/protocol"
	"stepbank/targets/pio"
)

// Board hookup: the 74HC595 chain hangs off three required lines plus the
// optional master-reclear and output-enable lines.
const (
	pinData   core.GPIOPin = 2 // DS of the first stage
	pinClock  core.GPIOPin = 3 // SHCP, shared
	pinLatch  core.GPIOPin = 4 // STCP, shared
	pinClear  core.GPIOPin = 5 // MR, shared, active low
	pinEnable core.GPIOPin = 6 // OE, shared, active low

	defaultSteppers    = 8
	defaultStepsPerRev = 200
)

var bank *core.Bank

func main() {
	// Register hardware drivers before any core construction.
	core.SetGPIODriver(NewRPGPIODriver())
	core.SetClockDriver(HardwareClock{})

	var err error
	bank, err = core.NewBank(core.Config{
		Steppers:    defaultSteppers,
		StepsPerRev: defaultStepsPerRev,
		Data:        pinData,
		Clock:       pinClock,
		Latch:       pinLatch,
		Clear:       pinClear,
		Enable:      pinEnable,
		Mode:        core.HalfStep,
	})
	if err != nil {
		// Configuration is compiled in; flash the LED to signal the fault.
		led := machine.LED
		led.Configure(machine.PinConfig{Mode: machine.PinOutput})
		for {
			led.High()
			time.Sleep(100 * time.Millisecond)
			led.Low()
			time.Sleep(100 * time.Millisecond)
		}
	}

	// Offload bit serialization to a PIO state machine. The bit-banged
	// default stays installed if the program fails to load.
	shifter := pio.NewShiftBackend(0, 0)
	if err := shifter.Init(uint8(pinData), uint8(pinClock), core.DefaultStepLines); err == nil {
		bank.SetShiftWriter(shifter)
	}

	// Start from a known chain state.
	bank.Clear()
	bank.Home()

	consoleLoop()
}

// consoleLoop reads newline-delimited commands from the USB CDC console and
// answers each with a single reply line. Moves run synchronously: the reply
// is sent when the motors have stopped.
func consoleLoop() {
	line := make([]byte, 0, 128)
	for {
		if machine.Serial.Buffered() == 0 {
			time.Sleep(100 * time.Microsecond)
			continue
		}
		c, err := machine.Serial.ReadByte()
		if err != nil {
			continue
		}
		if c != '\n' {
			if len(line) < cap(line) {
				line = append(line, c)
			}
			continue
		}

		reply := dispatch(string(line))
		line = line[:0]
		writeLine(reply)
	}
}

// dispatch parses and executes one command line.
func dispatch(line string) string {
	cmd, err := protocol.Parse(line)
	if err != nil {
		return protocol.ReplyError(err.Error())
	}

	switch cmd.Kind {
	case protocol.CmdPing:
		return protocol.ReplyOK("")

	case protocol.CmdCount:
		return protocol.ReplyOK(strconv.Itoa(bank.Steppers()))

	case protocol.CmdMove:
		bank.MoveOne(cmd.Index, cmd.Steps)
		return protocol.ReplyOK("")

	case protocol.CmdMoveList:
		bank.MoveMany(cmd.Deltas)
		return protocol.ReplyOK("")

	case protocol.CmdHome:
		bank.Home()
		return protocol.ReplyOK("")

	case protocol.CmdSpeedRPM:
		if err := bank.SetSpeedRPM(cmd.Value); err != nil {
			return protocol.ReplyError(err.Error())
		}
		return protocol.ReplyOK("")

	case protocol.CmdSpeedRadPerSec:
		if err := bank.SetSpeedRadPerSec(cmd.Value); err != nil {
			return protocol.ReplyError(err.Error())
		}
		return protocol.ReplyOK("")

	case protocol.CmdEnable:
		if !bank.Enable() {
			return protocol.ReplyError("no enable line")
		}
		return protocol.ReplyOK("")

	case protocol.CmdDisable:
		if !bank.Disable() {
			return protocol.ReplyError("no enable line")
		}
		return protocol.ReplyOK("")

	case protocol.CmdClear:
		if !bank.Clear() {
			return protocol.ReplyError("no clear line")
		}
		return protocol.ReplyOK("")

	case protocol.CmdResize:
		if !bank.Resize(int(cmd.Value)) {
			return protocol.ReplyError("resize failed")
		}
		return protocol.ReplyOK("")
	}

	return protocol.ReplyError("unhandled command")
}

func writeLine(s string) {
	_, _ = machine.Serial.Write([]byte(s))
	_, _ = machine.Serial.Write([]byte{'\n'})
}
