package cpu

import "github.com/valerio/go-ocho/ocho/bit"

// instruction is a fetched 16 bit opcode with accessors for its operand fields.
type instruction uint16

// x is the register selected by the second nibble.
func (in instruction) x() uint8 { return bit.Nibble(uint16(in), 2) }

// y is the register selected by the third nibble.
func (in instruction) y() uint8 { return bit.Nibble(uint16(in), 1) }

// n is the lowest nibble.
func (in instruction) n() uint8 { return bit.Nibble(uint16(in), 0) }

// nn is the low byte, an 8 bit immediate.
func (in instruction) nn() uint8 { return bit.Low(uint16(in)) }

// nnn is the low 12 bits, an address.
func (in instruction) nnn() uint16 { return uint16(in) & 0x0FFF }

// family executes every instruction sharing the same top nibble.
// Each handler owns its PC update: +2, +4 for a taken skip, or a direct jump.
type family func(m *Machine, in instruction) error

// families is indexed by the top nibble of the opcode.
var families = [16]family{
	0x0: execSystem,
	0x1: execJump,
	0x2: execCall,
	0x3: execSkipEqualByte,
	0x4: execSkipNotEqualByte,
	0x5: execSkipEqualRegister,
	0x6: execLoadByte,
	0x7: execAddByte,
	0x8: execALU,
	0x9: execSkipNotEqualRegister,
	0xA: execLoadIndex,
	0xB: execJumpOffset,
	0xC: execRandom,
	0xD: execDraw,
	0xE: execKeySkip,
	0xF: execMisc,
}
