package backend

import (
	"github.com/valerio/go-ocho/ocho/debug"
	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/video"
)

// Backend represents a complete emulator platform (rendering + input + audio)
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, SDL window, etc.)
// - Translating platform-specific input events to Actions
// - Handling backend-specific features (snapshots, debug panels, etc.)
type Backend interface {
	// Init configures the backend with the provided configuration.
	// This is a required step before calling Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns the input events collected since the
	// previous call. The frame is a copy owned by the backend; its redraw flag
	// tells whether the content changed since the last frame.
	Update(frame *video.FrameBuffer) ([]InputEvent, error)

	// Cleanup resources when shutting down
	Cleanup() error
}

// ActionHandler is implemented by backends that react to emulator actions,
// such as toggling debug panels or changing the log level.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// DebugDataProvider gives backends access to the machine state for debug views.
type DebugDataProvider interface {
	ExtractDebugData() *debug.CompleteDebugData
}

// InputEvent is an action produced by a backend.
type InputEvent struct {
	Action action.Action
	Type   event.Type
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title         string
	Scale         int
	ShowDebug     bool              // Backends may ignore unsupported features
	DebugProvider DebugDataProvider // Optional, required by debug panels
}
