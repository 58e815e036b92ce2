//go:build rp2040 || rp2350

package pio

// PIO shift-out backend using the tinygo-org/pio package.
// A state machine clocks each motor's pattern into the 74HC595 chain with
// hardware-exact edge timing, replacing the bit-banged default serializer.

import (
	"errors"
	"machine"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"stepbank/core"
)

// buildShiftProgram assembles the shift-out program for a fixed bit count.
//
// Program flow per word pulled from the FIFO:
//  1. Pull the pattern into the OSR
//  2. Load the bit count into X
//  3. Per bit: clock low, present one data bit, clock high
//
// The OSR shifts right, so bits leave LSB first, matching the chain's
// expected order.
func buildShiftProgram(bits uint8) []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),                   // 0: pull block
		asm.Set(rp2pio.SetDestX, bits-1).Encode(),        // 1: set x, bits-1
		// bit_loop:
		asm.Set(rp2pio.SetDestPins, 0).Encode(),          // 2: set pins, 0 (clock low)
		asm.Out(rp2pio.OutDestPins, 1).Encode(),          // 3: out pins, 1 (data bit)
		asm.Set(rp2pio.SetDestPins, 1).Delay(1).Encode(), // 4: set pins, 1 [1] (clock high)
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),         // 5: jmp x--, 2
		// .wrap
	}
}

const shiftPIOOrigin = 0 // Load at offset 0 for correct jump addresses

// ShiftBackend implements core.ShiftWriter on a PIO state machine.
type ShiftBackend struct {
	pio      *rp2pio.PIO
	sm       rp2pio.StateMachine
	dataPin  machine.Pin
	clockPin machine.Pin
	bits     uint8
	offset   uint8
}

// NewShiftBackend creates a PIO-based shift writer.
// pioNum: 0 for PIO0, 1 for PIO1
// smNum: 0-3 for state machine number
func NewShiftBackend(pioNum, smNum uint8) *ShiftBackend {
	pioHW := rp2pio.PIO0
	if pioNum == 1 {
		pioHW = rp2pio.PIO1
	}
	return &ShiftBackend{
		pio: pioHW,
		sm:  pioHW.StateMachine(smNum),
	}
}

// Init claims the state machine and loads the shift program. bits is the
// per-motor serial width and must match the bank's configuration.
func (b *ShiftBackend) Init(dataPin, clockPin uint8, bits uint8) error {
	if bits == 0 || bits > 8 {
		return errors.New("bit count out of range")
	}
	b.dataPin = machine.Pin(dataPin)
	b.clockPin = machine.Pin(clockPin)
	b.bits = bits

	b.sm.TryClaim()

	program := buildShiftProgram(bits)
	offset, err := b.pio.AddProgram(program, shiftPIOOrigin)
	if err != nil {
		return err
	}
	b.offset = offset

	// Hand the pins to the PIO block.
	b.dataPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})
	b.clockPin.Configure(machine.PinConfig{Mode: b.pio.PinMode()})

	cfg := rp2pio.DefaultStateMachineConfig()

	// SET pins drive the clock, OUT pins the serial data.
	cfg.SetSetPins(b.clockPin, 1)
	cfg.SetOutPins(b.dataPin, 1)

	// Shift right (LSB first), explicit PULL, 32-bit threshold.
	cfg.SetOutShift(true, false, 32)

	// Wrap around the whole program.
	cfg.SetWrap(offset+uint8(len(program))-1, offset)

	// 1MHz shift clock: generous margin against the 74HC595's limits.
	cfg.SetClkDivIntFrac(125, 0)

	b.sm.Init(offset, cfg)

	b.sm.SetPindirsConsecutive(b.dataPin, 1, true)
	b.sm.SetPindirsConsecutive(b.clockPin, 1, true)
	b.sm.SetPinsConsecutive(b.dataPin, 1, false)
	b.sm.SetPinsConsecutive(b.clockPin, 1, false)

	b.sm.SetEnabled(true)

	return nil
}

// ShiftOut queues one motor's pattern. bits beyond the configured width are
// ignored; the program always shifts the width given to Init. The call
// returns only after the FIFO has drained, so the caller may raise the
// latch immediately afterwards.
func (b *ShiftBackend) ShiftOut(value uint8, bits uint8) {
	for b.sm.IsTxFIFOFull() {
		// Busy wait - should be very brief
	}
	b.sm.TxPut(uint32(value))

	// The state machine finishes the final bit a fixed few PIO cycles
	// after the FIFO empties; the latch write that follows is far slower.
	for !b.sm.IsTxFIFOEmpty() {
	}
}

// Stop halts the state machine and releases the FIFO contents.
func (b *ShiftBackend) Stop() {
	b.sm.SetEnabled(false)
	b.sm.ClearFIFOs()
	b.sm.Restart()
	b.sm.SetEnabled(true)
}

var _ core.ShiftWriter = (*ShiftBackend)(nil)
