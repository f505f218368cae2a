package debug

import "github.com/valerio/go-ocho/ocho/addr"

// CPUState contains all machine register information for debugging
type CPUState struct {
	V [addr.RegisterCount]uint8
	I uint16

	PC    uint16
	SP    uint8
	Stack []uint16

	DelayTimer uint8
	SoundTimer uint8

	Opcode        uint16
	Cycles        uint64
	WaitingForKey bool
}

// MemorySnapshot contains a snapshot of memory for disassembly
type MemorySnapshot struct {
	StartAddr uint16
	Bytes     []uint8
}

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepInstruction
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerRunning:
		return "running"
	case DebuggerPaused:
		return "paused"
	case DebuggerStepInstruction:
		return "step instruction"
	case DebuggerStepFrame:
		return "step frame"
	default:
		return "unknown"
	}
}

// CompleteDebugData contains all debug information needed by debug displays
type CompleteDebugData struct {
	CPU           *CPUState
	Memory        *MemorySnapshot
	Keys          [addr.KeyCount]bool
	DebuggerState DebuggerState
	// LastError is the last execution error reported by the machine, if any
	LastError error
}
