package timing

import (
	"log/slog"
	"time"
)

// AdaptiveLimiter uses precise timing with drift compensation.
// Combines sleep for efficiency with busy-waiting for accuracy.
type AdaptiveLimiter struct {
	targetFrameTime time.Duration
	nextFrameTime   time.Time
	frameCounter    int64
}

func NewAdaptiveLimiter() *AdaptiveLimiter {
	return &AdaptiveLimiter{
		targetFrameTime: FrameDuration(),
		nextFrameTime:   time.Now(),
	}
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	now := time.Now()
	sleepTime := a.nextFrameTime.Sub(now)

	switch {
	case sleepTime > 2*time.Millisecond:
		time.Sleep(sleepTime - time.Millisecond)
		a.spinUntil(a.nextFrameTime)
	case sleepTime > 0:
		// busy-wait for times under 2ms, higher accuracy.
		a.spinUntil(a.nextFrameTime)
	case sleepTime < -5*time.Millisecond:
		// too far behind, drop the missed frames
		a.nextFrameTime = now
	}

	a.nextFrameTime = a.nextFrameTime.Add(a.targetFrameTime)
	a.frameCounter++

	if a.frameCounter%FrameRate == 0 {
		drift := time.Since(a.nextFrameTime)
		if drift.Abs() > 10*time.Millisecond {
			a.nextFrameTime = a.nextFrameTime.Add(drift / 10)
			slog.Debug("Frame timing drift correction", "drift_ms", drift.Milliseconds(), "frames", a.frameCounter)
		}
	}
}

func (a *AdaptiveLimiter) spinUntil(deadline time.Time) {
	for time.Now().Before(deadline) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.nextFrameTime = time.Now()
	a.frameCounter = 0
}
