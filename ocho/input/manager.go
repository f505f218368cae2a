package input

import (
	"time"

	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
	"github.com/valerio/go-ocho/ocho/memory"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Manager handles input actions and their associated callbacks.
// Keypad actions are written straight to the keypad and never debounced,
// every other action goes to the callbacks registered with On.
type Manager struct {
	handlers      map[action.Action]map[event.Type][]func()
	lastTriggered map[action.Action]map[event.Type]time.Time
	keypad        *memory.Keypad
	now           func() time.Time
}

func NewManager(k *memory.Keypad) *Manager {
	return &Manager{
		handlers:      make(map[action.Action]map[event.Type][]func()),
		lastTriggered: make(map[action.Action]map[event.Type]time.Time),
		keypad:        k,
		now:           time.Now,
	}
}

// SetClock replaces the time source used for debouncing.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}

	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	// keypad, written directly to the machine
	if key, ok := action.KeyValue(act); ok {
		if m.keypad == nil {
			return
		}
		switch evt {
		case event.Press, event.Hold:
			m.keypad.Press(key)
		case event.Release:
			m.keypad.Release(key)
		}
		return
	}

	if m.debounced(act, evt) {
		return
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// debounced reports whether a Press or Release came too soon after the previous one.
func (m *Manager) debounced(act action.Action, evt event.Type) bool {
	if evt != event.Press && evt != event.Release {
		return false
	}

	now := m.now()
	if m.lastTriggered[act] == nil {
		m.lastTriggered[act] = make(map[event.Type]time.Time)
	}
	if last, ok := m.lastTriggered[act][evt]; ok && now.Sub(last) < debounceDuration {
		return true
	}
	m.lastTriggered[act][evt] = now
	return false
}
