package timing

import "time"

// Limiter controls frame rate timing for emulation.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// Constants for CHIP-8 timing
const (
	// FrameRate is the refresh rate of the display and the timers.
	FrameRate = 60
	// DefaultInstructionsPerSecond gives 10 instructions per frame.
	DefaultInstructionsPerSecond = 600
)

// CyclesPerFrame returns how many instructions run in each frame at the given
// instruction rate, at least one.
func CyclesPerFrame(instructionsPerSecond int) int {
	return max(1, instructionsPerSecond/FrameRate)
}

// FrameDuration returns the target duration of a single frame.
func FrameDuration() time.Duration {
	return time.Second / FrameRate
}

// New returns the limiter registered under name: "ticker", "adaptive" or "none".
func New(name string) (Limiter, bool) {
	switch name {
	case "ticker":
		return NewTickerLimiter(), true
	case "adaptive":
		return NewAdaptiveLimiter(), true
	case "none":
		return NewNoOpLimiter(), true
	default:
		return nil, false
	}
}
