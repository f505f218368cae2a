package cpu

import (
	"errors"
	"fmt"

	"github.com/valerio/go-ocho/ocho/memory"
)

var (
	// ErrRomTooLarge is returned when a program does not fit in program memory.
	ErrRomTooLarge = errors.New("rom too large")
	// ErrUnknownOpcode is returned for instructions that do not decode.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow is returned by CALL when every stack slot is in use.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow is returned by RET with no matching CALL.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrOutOfBounds is returned when an address derived from the program falls
	// outside of memory.
	ErrOutOfBounds = memory.ErrOutOfBounds
)

// RomSizeError reports a program that exceeds the available program memory.
type RomSizeError struct {
	Size  int
	Limit int
}

func (e *RomSizeError) Error() string {
	return fmt.Sprintf("%v: %d bytes, limit is %d", ErrRomTooLarge, e.Size, e.Limit)
}

func (e *RomSizeError) Unwrap() error {
	return ErrRomTooLarge
}

// OpcodeError wraps any failure raised while fetching or executing an
// instruction, with the address and value of the instruction for diagnostics.
type OpcodeError struct {
	PC uint16
	// Opcode is unset when the instruction could not be fetched.
	Opcode uint16
	Fetch  bool
	Err    error
}

func (e *OpcodeError) Error() string {
	if e.Fetch {
		return fmt.Sprintf("fetch at 0x%03X: %v", e.PC, e.Err)
	}
	return fmt.Sprintf("opcode 0x%04X at 0x%03X: %v", e.Opcode, e.PC, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}
