package ocho

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/valerio/go-ocho/ocho/addr"
	"github.com/valerio/go-ocho/ocho/audio"
	"github.com/valerio/go-ocho/ocho/cpu"
	"github.com/valerio/go-ocho/ocho/debug"
	"github.com/valerio/go-ocho/ocho/input"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/roms"
	"github.com/valerio/go-ocho/ocho/video"
)

// ErrIO wraps failures to read a ROM file.
var ErrIO = errors.New("i/o error")

// MaxProgramSize is the largest program the emulator accepts.
const MaxProgramSize = addr.MaxProgramSize

const (
	// debugMemoryBefore is how many bytes before PC the debug snapshot covers.
	debugMemoryBefore = 16
	debugMemorySize   = 48
)

// Chip8 owns a Machine and drives it one frame at a time.
// All methods are safe for concurrent use: input, stepping and frame reads are
// serialized by a single lock.
type Chip8 struct {
	mu sync.Mutex

	machine *cpu.Machine
	input   *input.Manager
	beeper  audio.Beeper
	config  Config
	rom     []byte

	cyclesPerFrame   int
	debuggerState    debug.DebuggerState
	frameCount       uint64
	instructionCount uint64
	lastErr          error
}

// New creates an emulator running the built-in demo program.
func New(config Config) (*Chip8, error) {
	return NewWithROM(roms.Demo, config)
}

// NewWithFile creates a new emulator instance and loads the file specified into it.
func NewWithFile(path string, config Config) (*Chip8, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}

	slog.Info("Loaded ROM", "path", path, "bytes", len(data))
	return NewWithROM(data, config)
}

// NewWithROM creates a new emulator instance running rom.
func NewWithROM(rom []byte, config Config) (*Chip8, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	machine := cpu.New(config.machineOptions()...)
	if err := machine.LoadProgram(rom); err != nil {
		return nil, err
	}

	e := &Chip8{
		machine:        machine,
		input:          input.NewManager(machine.Keypad()),
		beeper:         audio.NewLogBeeper(config.Logger),
		config:         config,
		rom:            append([]byte(nil), rom...),
		cyclesPerFrame: config.CyclesPerFrame(),
	}
	e.registerActions()

	return e, nil
}

// registerActions wires the emulator controls. Callbacks run with the lock held.
func (e *Chip8) registerActions() {
	e.input.On(action.EmulatorPauseToggle, event.Press, func() {
		if e.debuggerState == debug.DebuggerRunning {
			e.debuggerState = debug.DebuggerPaused
			slog.Info("Paused", "pc", fmt.Sprintf("%03X", e.machine.PC()))
		} else {
			e.debuggerState = debug.DebuggerRunning
			slog.Info("Resumed")
		}
	})
	e.input.On(action.EmulatorStepFrame, event.Press, func() {
		e.debuggerState = debug.DebuggerStepFrame
	})
	e.input.On(action.EmulatorStepInstruction, event.Press, func() {
		e.debuggerState = debug.DebuggerStepInstruction
	})
	e.input.On(action.EmulatorReset, event.Press, func() {
		e.reset()
	})
}

// SetBeeper replaces the device played when the sound timer expires.
func (e *Chip8) SetBeeper(b audio.Beeper) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.beeper = b
}

// RunUntilFrame runs the instructions of one 60Hz frame, honouring pause and
// single stepping. Errors of a halted machine are returned as is; unknown
// instructions under the skip policy are logged and do not stop the frame.
func (e *Chip8) RunUntilFrame() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.debuggerState {
	case debug.DebuggerPaused:
		return nil
	case debug.DebuggerStepInstruction:
		e.debuggerState = debug.DebuggerPaused
		return e.step()
	case debug.DebuggerStepFrame:
		e.debuggerState = debug.DebuggerPaused
	}

	for i := 0; i < e.cyclesPerFrame; i++ {
		if err := e.step(); err != nil {
			return err
		}
	}
	e.frameCount++

	return nil
}

func (e *Chip8) step() error {
	beep, err := e.machine.Step()
	if beep {
		e.beeper.Beep()
	}
	if err == nil {
		e.instructionCount++
		return nil
	}

	e.lastErr = err
	if errors.Is(err, cpu.ErrUnknownOpcode) && e.config.Quirks.UnknownOpcode == cpu.UnknownOpcodeSkip {
		e.instructionCount++
		slog.Warn("Skipped unknown instruction", "error", err)
		return nil
	}
	return err
}

// reset reloads the program. Must be called with the lock held.
func (e *Chip8) reset() {
	// the program was loaded once already, it fits
	_ = e.machine.LoadProgram(e.rom)
	e.lastErr = nil
	e.debuggerState = debug.DebuggerRunning
	slog.Info("Program reloaded")
}

// GetCurrentFrame returns a copy of the display and acknowledges the redraw
// flag, so the copy tells whether anything changed since the previous call.
func (e *Chip8) GetCurrentFrame() *video.FrameBuffer {
	e.mu.Lock()
	defer e.mu.Unlock()

	fb := e.machine.FrameBuffer()
	frame := fb.Clone()
	fb.ClearRedraw()
	return frame
}

// HandleAction forwards an input action to the keypad or the emulator controls.
func (e *Chip8) HandleAction(act action.Action, evt event.Type) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.input.Trigger(act, evt)
}

// ExtractDebugData snapshots the machine state for debug views.
func (e *Chip8) ExtractDebugData() *debug.CompleteDebugData {
	e.mu.Lock()
	defer e.mu.Unlock()

	m := e.machine
	pc := m.PC()

	// keep the same parity as pc so instructions decode aligned
	start := pc - min(pc, debugMemoryBefore)&^1

	return &debug.CompleteDebugData{
		CPU: &debug.CPUState{
			V:             m.Registers(),
			I:             m.I(),
			PC:            pc,
			SP:            m.SP(),
			Stack:         m.Stack(),
			DelayTimer:    m.DelayTimer(),
			SoundTimer:    m.SoundTimer(),
			Opcode:        m.CurrentOpcode(),
			Cycles:        m.Cycles(),
			WaitingForKey: m.WaitingForKey(),
		},
		Memory: &debug.MemorySnapshot{
			StartAddr: start,
			Bytes:     m.Memory().Snapshot(start, debugMemorySize),
		},
		Keys:          m.Keypad().State(),
		DebuggerState: e.debuggerState,
		LastError:     e.lastErr,
	}
}

// FrameCount returns the number of complete frames run.
func (e *Chip8) FrameCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

// InstructionCount returns the number of instructions executed, skipped ones included.
func (e *Chip8) InstructionCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.instructionCount
}

// DebuggerState returns whether the emulator is running, paused or stepping.
func (e *Chip8) DebuggerState() debug.DebuggerState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.debuggerState
}

// ProgramSize returns the size of the loaded program.
func (e *Chip8) ProgramSize() int {
	return len(e.rom)
}
