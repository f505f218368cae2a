package disasm

import (
	"fmt"

	"github.com/valerio/go-ocho/ocho/bit"
)

// InstructionLength is the size in bytes of every instruction.
const InstructionLength = 2

// DisassemblyLine represents a single disassembled instruction
type DisassemblyLine struct {
	Address     uint16
	Opcode      uint16
	Instruction string
	Length      int
}

// DisassembleRange decodes data two bytes at a time, the first byte sitting at
// address start. A trailing odd byte is ignored.
func DisassembleRange(start uint16, data []byte) []DisassemblyLine {
	lines := make([]DisassemblyLine, 0, len(data)/InstructionLength)
	for i := 0; i+1 < len(data); i += InstructionLength {
		opcode := bit.Combine(data[i], data[i+1])
		lines = append(lines, DisassemblyLine{
			Address:     start + uint16(i),
			Opcode:      opcode,
			Instruction: Disassemble(opcode),
			Length:      InstructionLength,
		})
	}
	return lines
}

// Disassemble returns the mnemonic form of a single opcode.
// Words that do not decode to an instruction are rendered as data (DW).
func Disassemble(opcode uint16) string {
	x := bit.Nibble(opcode, 2)
	y := bit.Nibble(opcode, 1)
	n := bit.Nibble(opcode, 0)
	nn := bit.Low(opcode)
	nnn := opcode & 0x0FFF

	switch bit.Nibble(opcode, 3) {
	case 0x0:
		switch opcode {
		case 0x00E0:
			return "CLS"
		case 0x00EE:
			return "RET"
		}
	case 0x1:
		return fmt.Sprintf("JP $%03X", nnn)
	case 0x2:
		return fmt.Sprintf("CALL $%03X", nnn)
	case 0x3:
		return fmt.Sprintf("SE V%X, $%02X", x, nn)
	case 0x4:
		return fmt.Sprintf("SNE V%X, $%02X", x, nn)
	case 0x5:
		if n == 0 {
			return fmt.Sprintf("SE V%X, V%X", x, y)
		}
	case 0x6:
		return fmt.Sprintf("LD V%X, $%02X", x, nn)
	case 0x7:
		return fmt.Sprintf("ADD V%X, $%02X", x, nn)
	case 0x8:
		if mnemonic, ok := aluMnemonics[n]; ok {
			return fmt.Sprintf("%s V%X, V%X", mnemonic, x, y)
		}
	case 0x9:
		if n == 0 {
			return fmt.Sprintf("SNE V%X, V%X", x, y)
		}
	case 0xA:
		return fmt.Sprintf("LD I, $%03X", nnn)
	case 0xB:
		return fmt.Sprintf("JP V0, $%03X", nnn)
	case 0xC:
		return fmt.Sprintf("RND V%X, $%02X", x, nn)
	case 0xD:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, n)
	case 0xE:
		switch nn {
		case 0x9E:
			return fmt.Sprintf("SKP V%X", x)
		case 0xA1:
			return fmt.Sprintf("SKNP V%X", x)
		}
	case 0xF:
		if template, ok := miscTemplates[nn]; ok {
			return fmt.Sprintf(template, x)
		}
	}

	return fmt.Sprintf("DW $%04X", opcode)
}

var aluMnemonics = map[uint8]string{
	0x0: "LD",
	0x1: "OR",
	0x2: "AND",
	0x3: "XOR",
	0x4: "ADD",
	0x5: "SUB",
	0x6: "SHR",
	0x7: "SUBN",
	0xE: "SHL",
}

var miscTemplates = map[uint8]string{
	0x07: "LD V%X, DT",
	0x0A: "LD V%X, K",
	0x15: "LD DT, V%X",
	0x18: "LD ST, V%X",
	0x1E: "ADD I, V%X",
	0x29: "LD F, V%X",
	0x33: "LD B, V%X",
	0x55: "LD [I], V%X",
	0x65: "LD V%X, [I]",
}
