package audio

import (
	"log/slog"
	"sync/atomic"
)

// Beeper plays the buzzer tone. Beep is called once per sound timer expiry.
type Beeper interface {
	Beep()
}

// BeeperFunc adapts a function to the Beeper interface.
type BeeperFunc func()

func (f BeeperFunc) Beep() { f() }

var _ Beeper = BeeperFunc(nil)

// LogBeeper stands in for a sound device, logging each beep at debug level.
type LogBeeper struct {
	logger *slog.Logger
	count  atomic.Uint64
}

// NewLogBeeper logs to logger, or to slog.Default when logger is nil.
func NewLogBeeper(logger *slog.Logger) *LogBeeper {
	return &LogBeeper{logger: logger}
}

func (b *LogBeeper) Beep() {
	n := b.count.Add(1)
	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Beep", "count", n)
}

// Count returns how many beeps were played.
func (b *LogBeeper) Count() uint64 {
	return b.count.Load()
}
