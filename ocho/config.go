package ocho

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ocho/ocho/cpu"
	"github.com/valerio/go-ocho/ocho/timing"
)

// ErrInvalidConfig is returned by Config.Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds the emulator settings.
type Config struct {
	// InstructionsPerSecond is the CPU speed. Timers decrement once per
	// instruction, so this also sets how fast they expire.
	InstructionsPerSecond int
	Quirks                cpu.Quirks
	// Seed makes Cxnn reproducible, 0 picks a random seed.
	Seed uint64
	// Trace logs every executed instruction at debug level.
	Trace bool
	// Logger defaults to slog.Default, looked up on every use.
	Logger *slog.Logger
}

// DefaultConfig returns a 600Hz interpreter with the reference quirks.
func DefaultConfig() Config {
	return Config{
		InstructionsPerSecond: timing.DefaultInstructionsPerSecond,
		Quirks:                cpu.DefaultQuirks(),
	}
}

// Validate rejects settings the emulator cannot run with.
func (c Config) Validate() error {
	if c.InstructionsPerSecond <= 0 {
		return fmt.Errorf("%w: instructions per second must be positive, got %d", ErrInvalidConfig, c.InstructionsPerSecond)
	}
	switch c.Quirks.UnknownOpcode {
	case cpu.UnknownOpcodeHalt, cpu.UnknownOpcodeSkip:
	default:
		return fmt.Errorf("%w: unknown opcode policy %d", ErrInvalidConfig, c.Quirks.UnknownOpcode)
	}
	return nil
}

// CyclesPerFrame returns how many instructions run in each 60Hz frame.
func (c Config) CyclesPerFrame() int {
	return timing.CyclesPerFrame(c.InstructionsPerSecond)
}

func (c Config) machineOptions() []cpu.Option {
	opts := []cpu.Option{
		cpu.WithQuirks(c.Quirks),
		cpu.WithTrace(c.Trace),
	}
	if c.Logger != nil {
		opts = append(opts, cpu.WithLogger(c.Logger))
	}
	if c.Seed != 0 {
		opts = append(opts, cpu.WithSeed(c.Seed))
	}
	return opts
}
