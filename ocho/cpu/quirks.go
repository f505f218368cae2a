package cpu

import (
	"log/slog"
	"math/rand/v2"
)

// UnknownOpcodePolicy decides what Step does with an instruction that does not decode.
// Both policies report the condition through the returned error.
type UnknownOpcodePolicy int

const (
	// UnknownOpcodeHalt leaves the machine untouched, PC keeps pointing at the
	// offending instruction.
	UnknownOpcodeHalt UnknownOpcodePolicy = iota
	// UnknownOpcodeSkip treats the instruction as a no-op: PC advances by 2 and
	// the timers tick.
	UnknownOpcodeSkip
)

func (p UnknownOpcodePolicy) String() string {
	switch p {
	case UnknownOpcodeHalt:
		return "halt"
	case UnknownOpcodeSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Quirks selects between behaviours that historical interpreters disagree on.
type Quirks struct {
	// LoadStoreIncrementsI makes Fx55/Fx65 leave I pointing past the last
	// register copied (I += x+1), as the COSMAC VIP interpreter did.
	LoadStoreIncrementsI bool
	// ShiftUsesVY makes 8xy6/8xyE shift Vy into Vx instead of shifting Vx in place.
	ShiftUsesVY bool
	// ClipSprites drops sprite pixels past the right and bottom edges instead of
	// wrapping them around.
	ClipSprites bool
	// UnknownOpcode selects the unknown instruction policy.
	UnknownOpcode UnknownOpcodePolicy
}

// DefaultQuirks returns the reference behaviour: load/store increments I, shifts
// work on Vx, sprites wrap, unknown instructions halt.
func DefaultQuirks() Quirks {
	return Quirks{
		LoadStoreIncrementsI: true,
		UnknownOpcode:        UnknownOpcodeHalt,
	}
}

// Option configures a Machine at creation time.
type Option func(*Machine)

// WithQuirks sets the compatibility behaviour.
func WithQuirks(q Quirks) Option {
	return func(m *Machine) {
		m.quirks = q
	}
}

// WithRand sets the random source used by Cxnn.
func WithRand(r *rand.Rand) Option {
	return func(m *Machine) {
		m.rng = r
	}
}

// WithSeed seeds the random source used by Cxnn, for reproducible runs.
func WithSeed(seed uint64) Option {
	return func(m *Machine) {
		m.rng = rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
	}
}

// WithLogger sets the logger used for instruction traces. Without it traces go
// to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		m.logger = l
	}
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(m *Machine) {
		m.trace = enabled
	}
}
