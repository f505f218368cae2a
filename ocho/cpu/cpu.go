package cpu

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/valerio/go-ocho/ocho/addr"
	"github.com/valerio/go-ocho/ocho/disasm"
	"github.com/valerio/go-ocho/ocho/memory"
	"github.com/valerio/go-ocho/ocho/video"
)

// Machine is the whole CHIP-8 virtual machine: memory, registers, stack,
// timers, keypad and display.
// It is not safe for concurrent use, callers that share it between goroutines
// must serialize Step with keypad writes and framebuffer reads.
type Machine struct {
	// registers
	v  [addr.RegisterCount]uint8
	i  uint16
	pc uint16
	sp uint8

	stack [addr.StackDepth]uint16

	delayTimer uint8
	soundTimer uint8

	ram    *memory.RAM
	keypad *memory.Keypad
	fb     *video.FrameBuffer

	// metadata
	currentOpcode uint16
	cycles        uint64
	waitingForKey bool

	quirks Quirks
	rng    *rand.Rand
	logger *slog.Logger
	trace  bool
}

// New returns a reset Machine with the font loaded and PC at the program start.
func New(opts ...Option) *Machine {
	m := &Machine{
		ram:    memory.New(),
		keypad: memory.NewKeypad(),
		fb:     video.NewFrameBuffer(),
		quirks: DefaultQuirks(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	m.Reset()
	return m
}

// Reset clears memory, registers, stack, timers, keypad and display, loads the
// font and points PC at the program start. The display is flagged for redraw.
func (m *Machine) Reset() {
	m.ram.Clear()
	// the font always fits, Load cannot fail here
	_ = m.ram.Load(addr.FontStart, fontSet[:])

	m.v = [addr.RegisterCount]uint8{}
	m.stack = [addr.StackDepth]uint16{}
	m.i = 0
	m.sp = 0
	m.pc = addr.ProgramStart

	m.delayTimer = 0
	m.soundTimer = 0

	m.keypad.Reset()
	// Clear also flags the display for redraw
	m.fb.Clear()

	m.currentOpcode = 0
	m.cycles = 0
	m.waitingForKey = false
}

// LoadProgram resets the machine and copies rom at the program start.
// A rom larger than the program memory is rejected with ErrRomTooLarge and the
// machine is left in its reset state.
func (m *Machine) LoadProgram(rom []byte) error {
	m.Reset()

	if len(rom) > addr.MaxProgramSize {
		return &RomSizeError{Size: len(rom), Limit: addr.MaxProgramSize}
	}

	return m.ram.Load(addr.ProgramStart, rom)
}

// Step runs a single fetch/decode/execute cycle followed by a timer tick.
// beep reports the sound timer going from 1 to 0 during this tick.
//
// A failing instruction leaves the machine untouched and does not tick the
// timers, with the exception of unknown instructions under UnknownOpcodeSkip,
// which are stepped over. Every error is returned as *OpcodeError.
func (m *Machine) Step() (beep bool, err error) {
	pc := m.pc

	opcode, err := m.ram.ReadWord(pc)
	if err != nil {
		return false, &OpcodeError{PC: pc, Fetch: true, Err: err}
	}
	m.currentOpcode = opcode

	if m.trace {
		m.log().Debug("exec", "pc", fmt.Sprintf("%03X", pc), "opcode", fmt.Sprintf("%04X", opcode), "asm", disasm.Disassemble(opcode))
	}

	if err := families[opcode>>12](m, instruction(opcode)); err != nil {
		if errors.Is(err, ErrUnknownOpcode) && m.quirks.UnknownOpcode == UnknownOpcodeSkip {
			m.pc += 2
			m.cycles++
			beep = m.tickTimers()
		}
		return beep, &OpcodeError{PC: pc, Opcode: opcode, Err: err}
	}

	m.cycles++
	return m.tickTimers(), nil
}

// log returns the configured logger, or the default one at the time of the call.
func (m *Machine) log() *slog.Logger {
	if m.logger != nil {
		return m.logger
	}
	return slog.Default()
}

// tickTimers decrements both timers once, returns true on the sound timer
// 1 -> 0 transition.
func (m *Machine) tickTimers() (beep bool) {
	if m.delayTimer > 0 {
		m.delayTimer--
	}

	if m.soundTimer > 0 {
		beep = m.soundTimer == 1
		m.soundTimer--
	}

	return beep
}

func (m *Machine) PC() uint16            { return m.pc }
func (m *Machine) I() uint16             { return m.i }
func (m *Machine) SP() uint8             { return m.sp }
func (m *Machine) V(index uint8) uint8   { return m.v[index&0x0F] }
func (m *Machine) DelayTimer() uint8     { return m.delayTimer }
func (m *Machine) SoundTimer() uint8     { return m.soundTimer }
func (m *Machine) CurrentOpcode() uint16 { return m.currentOpcode }
func (m *Machine) Cycles() uint64        { return m.cycles }
func (m *Machine) Quirks() Quirks        { return m.quirks }

// WaitingForKey reports whether the last step was an Fx0A with no key pressed.
func (m *Machine) WaitingForKey() bool { return m.waitingForKey }

// Registers returns a copy of V0..VF.
func (m *Machine) Registers() [addr.RegisterCount]uint8 {
	return m.v
}

// Stack returns a copy of the return addresses currently on the stack, oldest first.
func (m *Machine) Stack() []uint16 {
	out := make([]uint16, m.sp)
	copy(out, m.stack[:m.sp])
	return out
}

// Memory gives access to the machine memory, for debuggers and tests.
func (m *Machine) Memory() *memory.RAM { return m.ram }

// Keypad is written by the input layer before each step.
func (m *Machine) Keypad() *memory.Keypad { return m.keypad }

// FrameBuffer is the display. The machine sets its redraw flag and never clears it.
func (m *Machine) FrameBuffer() *video.FrameBuffer { return m.fb }
