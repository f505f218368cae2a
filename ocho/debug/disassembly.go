package debug

import "github.com/valerio/go-ocho/ocho/disasm"

type DisasmLine struct {
	Address     uint16
	Instruction string
	IsCurrent   bool
}

// CreateDisassembly decodes the snapshot two bytes at a time and returns up to
// maxLines lines, keeping the line at pc roughly centered.
// Instructions are always aligned on the snapshot start, which debuggers
// should place on an even distance from pc.
func CreateDisassembly(snapshot *MemorySnapshot, pc uint16, maxLines int) []DisasmLine {
	if snapshot == nil || maxLines <= 0 {
		return nil
	}

	decoded := disasm.DisassembleRange(snapshot.StartAddr, snapshot.Bytes)
	lines := make([]DisasmLine, 0, len(decoded))
	pcIndex := -1
	for _, d := range decoded {
		if d.Address == pc {
			pcIndex = len(lines)
		}
		lines = append(lines, DisasmLine{
			Address:     d.Address,
			Instruction: d.Instruction,
			IsCurrent:   d.Address == pc,
		})
	}

	if len(lines) <= maxLines {
		return lines
	}

	start := 0
	if pcIndex >= 0 {
		start = pcIndex - maxLines/2
	}
	start = max(0, min(start, len(lines)-maxLines))
	return lines[start : start+maxLines]
}
