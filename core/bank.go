// Multi-stepper bank driven through daisy-chained 74HC595 shift registers.
//
// One register stage per motor: serial data, shift clock and storage latch
// are shared lines, so any number of motors runs off a three pin budget.
// Every stage feeds a darlington array (ULN2803 or similar) that powers the
// motor coils. A "frame" is one full shift-and-latch cycle that commits the
// instantaneous phase pattern of every active motor at once.
package core

import "errors"

const (
	// maxSteppers bounds the position table; a chain longer than this is
	// almost certainly a configuration mistake.
	maxSteppers = 4096

	// DefaultStepLines is the serial width per motor: four coil lines per
	// register stage, leaving the stage's upper outputs free.
	DefaultStepLines = 4

	// defaultRPM is applied at construction until the caller sets a speed.
	defaultRPM = 60

	// clearPulseMicros holds the master-reclear line low long enough for
	// every stage in the chain to reset.
	clearPulseMicros = 10000

	// twoPiMicros is 2*pi scaled to microseconds, truncated. Kept as an
	// integer so rad/s speed math truncates the same way rpm math does.
	twoPiMicros = 6283185
)

// Config describes a bank of steppers behind one shift-register chain.
// Data, Clock and Latch are required. Clear and Enable are the chain's
// master-reclear and output-enable lines; leave them zero when not wired.
type Config struct {
	Steppers    int // number of motors (one register stage each)
	StepsPerRev int // full steps per revolution, used for speed math only

	Data  GPIOPin // serial data into the first stage (74HC595 DS)
	Clock GPIOPin // shift clock (SHCP)
	Latch GPIOPin // storage clock (STCP)

	Clear  GPIOPin // master reclear (MR, active low), optional
	Enable GPIOPin // output enable (OE, active low), optional

	StepLines uint8     // serial bits per motor, 1-8; 0 means DefaultStepLines
	Mode      PhaseMode // coil sequence; zero value is WaveStep
}

// Bank drives a chain of stepper driver stages. All methods must be called
// from a single goroutine: moves busy-wait on the frame clock and share the
// position table with no locking.
type Bank struct {
	mode        PhaseMode
	stepLines   uint8
	stepsPerRev uint32

	// One signed counter per motor: net step offset since the last home or
	// resize. Reduced modulo the phase cycle it is also the motor's phase
	// table index.
	positions []int32

	gpio    GPIODriver
	clock   ClockDriver
	shifter ShiftWriter

	latch     GPIOPin
	clearPin  GPIOPin
	enablePin GPIOPin
	hasClear  bool
	hasEnable bool

	stepDelay uint64 // minimum microseconds between frames
	lastFrame uint64 // clock watermark of the previous frame
}

// NewBank configures the chain's pins and returns a bank with every motor at
// position zero and the default speed applied. The GPIO and clock drivers
// must be registered before construction.
func NewBank(cfg Config) (*Bank, error) {
	if cfg.Steppers <= 0 || cfg.Steppers > maxSteppers {
		return nil, errors.New("stepper count out of range")
	}
	if cfg.StepsPerRev <= 0 {
		return nil, errors.New("steps per revolution must be positive")
	}
	if cfg.StepLines == 0 {
		cfg.StepLines = DefaultStepLines
	}
	if cfg.StepLines > 8 {
		return nil, errors.New("step lines exceed one register stage")
	}

	gpio := MustGPIO()
	clock := MustClock()

	for _, pin := range []GPIOPin{cfg.Data, cfg.Clock, cfg.Latch} {
		if err := gpio.ConfigureOutput(pin); err != nil {
			return nil, err
		}
	}

	b := &Bank{
		mode:        cfg.Mode,
		stepLines:   cfg.StepLines,
		stepsPerRev: uint32(cfg.StepsPerRev),
		positions:   make([]int32, cfg.Steppers),
		gpio:        gpio,
		clock:       clock,
		latch:       cfg.Latch,
	}

	// Latch idles low; it only rises to commit a frame.
	if err := gpio.SetPin(cfg.Latch, false); err != nil {
		return nil, err
	}

	// Optional control lines, both active low: reclear idles high,
	// output enable idles low so the stages drive their outputs.
	if cfg.Clear != 0 {
		if err := gpio.ConfigureOutput(cfg.Clear); err != nil {
			return nil, err
		}
		if err := gpio.SetPin(cfg.Clear, true); err != nil {
			return nil, err
		}
		b.clearPin = cfg.Clear
		b.hasClear = true
	}
	if cfg.Enable != 0 {
		if err := gpio.ConfigureOutput(cfg.Enable); err != nil {
			return nil, err
		}
		if err := gpio.SetPin(cfg.Enable, false); err != nil {
			return nil, err
		}
		b.enablePin = cfg.Enable
		b.hasEnable = true
	}

	b.shifter = newGPIOShift(gpio.FastOutput(cfg.Data), gpio.FastOutput(cfg.Clock))
	b.lastFrame = clock.Micros()
	if err := b.SetSpeedRPM(defaultRPM); err != nil {
		return nil, err
	}
	return b, nil
}

// SetShiftWriter replaces the default bit-banged serializer, e.g. with a
// hardware-assisted backend. The writer must match the bank's step line
// count and LSB-first bit order.
func (b *Bank) SetShiftWriter(w ShiftWriter) {
	b.shifter = w
}

// Steppers returns the number of motors in the bank.
func (b *Bank) Steppers() int {
	return len(b.positions)
}

// Position returns motor index's signed net step offset since the last home
// or resize. Out-of-range indices report zero.
func (b *Bank) Position(index int) int32 {
	if index < 0 || index >= len(b.positions) {
		return 0
	}
	return b.positions[index]
}

// PhaseIndex returns the phase-cycle index currently latched for a motor:
// its position counter reduced modulo the mode's cycle length.
func (b *Bank) PhaseIndex(index int) int32 {
	n := b.mode.CycleLength()
	idx := b.Position(index) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// StepInterval returns the configured minimum time between frames in
// microseconds.
func (b *Bank) StepInterval() uint64 {
	return b.stepDelay
}

// SetSpeedRPM sets the rotation speed in revolutions per minute.
// The delay computation truncates: step_delay * steps_per_rev * rpm = 60s.
func (b *Bank) SetSpeedRPM(rpm uint32) error {
	if rpm == 0 {
		return errors.New("speed must be positive")
	}
	b.stepDelay = 60 * 1000 * 1000 / uint64(b.stepsPerRev) / uint64(rpm)
	return nil
}

// SetSpeedRadPerSec sets the rotation speed in radians per second.
// The delay computation truncates: step_delay * steps_per_rev * rad/2pi = 1s.
func (b *Bank) SetSpeedRadPerSec(rad uint32) error {
	if rad == 0 {
		return errors.New("speed must be positive")
	}
	b.stepDelay = twoPiMicros / uint64(b.stepsPerRev) / uint64(rad)
	return nil
}

// Enable drives the chain's output-enable line active (low). Returns false
// when no enable line is wired.
func (b *Bank) Enable() bool {
	if !b.hasEnable {
		return false
	}
	_ = b.gpio.SetPin(b.enablePin, false)
	return true
}

// Disable tri-states every stage's parallel outputs, cutting coil drive.
// Returns false when no enable line is wired.
func (b *Bank) Disable() bool {
	if !b.hasEnable {
		return false
	}
	_ = b.gpio.SetPin(b.enablePin, true)
	return true
}

// Clear pulses the master-reclear line, zeroing every stage's shift and
// storage registers. The bank's position counters are untouched: the next
// frame re-latches the current phase patterns. Returns false when no clear
// line is wired.
func (b *Bank) Clear() bool {
	if !b.hasClear {
		return false
	}
	_ = b.gpio.SetPin(b.clearPin, false)
	b.spinFor(clearPulseMicros)
	_ = b.gpio.SetPin(b.clearPin, true)
	return true
}

// Resize reallocates the position table for n motors, all at zero. Any
// prior position information is lost; callers must treat the bank as
// unhomed afterwards. Returns false and leaves the bank unchanged when n is
// out of range.
func (b *Bank) Resize(n int) bool {
	if n <= 0 || n > maxSteppers {
		return false
	}
	b.positions = make([]int32, n)
	return true
}

// MoveOne steps a single motor by delta steps (signed), one frame per step.
// Out-of-range indices are silently ignored.
func (b *Bank) MoveOne(index int, delta int32) {
	if index < 0 || index >= len(b.positions) {
		return
	}
	for delta != 0 {
		if delta > 0 {
			delta--
			b.positions[index]++
		} else {
			delta++
			b.positions[index]--
		}
		b.transmitFrame(index + 1)
	}
}

// MoveMany advances every motor toward its relative displacement, at most
// one step per motor per frame, so the whole move completes in
// max(|delta|) frames. Motors share frames instead of moving serially.
// Deltas beyond the bank's motor count are ignored; the input slice is not
// modified. When every delta is zero a single frame covering the whole bank
// is still transmitted.
func (b *Bank) MoveMany(deltas []int32) {
	rem := make([]int32, len(deltas))
	copy(rem, deltas)
	if len(rem) > len(b.positions) {
		rem = rem[:len(b.positions)]
	}
	b.converge(rem, func(i int, dir int32) {
		b.positions[i] += dir
	})
}

// Home walks every motor back to position zero, using the position counters
// themselves as the remaining distance. Completes in max(|position|) frames.
func (b *Bank) Home() {
	b.converge(b.positions, nil)
}

// converge is the coordinated stepping loop shared by MoveMany and Home:
// each pass decrements the magnitude of every nonzero value in rem by one,
// applies the per-step effect, then transmits one frame covering motors up
// to the highest index that changed. When rem is the position table itself
// (homing) the decrement is the step effect and apply is nil.
func (b *Bank) converge(rem []int32, apply func(i int, dir int32)) {
	first := true
	for {
		moved := false
		maxChanged := 0
		for i := range rem {
			var dir int32
			switch {
			case rem[i] > 0:
				dir = 1
			case rem[i] < 0:
				dir = -1
			default:
				continue
			}
			rem[i] -= dir
			if apply != nil {
				apply(i, dir)
			}
			moved = true
			maxChanged = i
		}
		if !moved {
			if first {
				// Nothing to do: still emit one frame covering the whole
				// bank so the chain holds a freshly latched state.
				b.transmitFrame(0)
			}
			return
		}
		b.transmitFrame(maxChanged + 1)
		first = false
	}
}

// transmitFrame shifts the phase patterns of the leading active motors into
// the chain and pulses the latch to commit them. active <= 0 or beyond the
// bank means every motor.
//
// The window's last motor is shifted first so it lands furthest down the
// chain, keeping stage k aligned with motor k once the shift completes.
// Truncated frames rely on the stages beyond the window retaining phase
// patterns identical to what the partial shift pushes past them; only
// motors whose patterns are unchanged since the last full frame may be
// skipped.
func (b *Bank) transmitFrame(active int) {
	b.awaitGate()

	if active <= 0 || active > len(b.positions) {
		active = len(b.positions)
	}

	// Pin writes cannot fail past construction; outputs were validated.
	_ = b.gpio.SetPin(b.latch, false)
	for i := active - 1; i >= 0; i-- {
		b.shifter.ShiftOut(b.mode.Pattern(b.positions[i]), b.stepLines)
	}
	// Rising edge moves the shift registers into the storage registers and
	// onto the coils; drop the latch again for the next frame.
	_ = b.gpio.SetPin(b.latch, true)
	_ = b.gpio.SetPin(b.latch, false)
}

// awaitGate spins until the configured inter-frame delay has elapsed, then
// advances the watermark. A synchronous spin keeps sub-millisecond pacing
// free of scheduler jitter; callers are blocked for the full wait.
func (b *Bank) awaitGate() {
	for b.clock.Micros()-b.lastFrame < b.stepDelay {
	}
	b.lastFrame = b.clock.Micros()
}

// spinFor busy-waits for the given number of microseconds.
func (b *Bank) spinFor(micros uint64) {
	start := b.clock.Micros()
	for b.clock.Micros()-start < micros {
	}
}
