package backend

import (
	"slices"

	"github.com/valerio/go-ocho/ocho/input/action"
	"github.com/valerio/go-ocho/ocho/input/event"
)

// KeyTracker collects keypad key transitions reported by a windowing system
// and hands them out once per frame.
// A key released in the same frame it was pressed is held until the next
// frame, so the program runs at least one frame with the key down.
type KeyTracker struct {
	events   []InputEvent
	held     map[action.Action]bool
	fresh    map[action.Action]bool // pressed since the last Flush
	deferred []action.Action
}

func NewKeyTracker() *KeyTracker {
	return &KeyTracker{
		held:  make(map[action.Action]bool),
		fresh: make(map[action.Action]bool),
	}
}

// Down records a key press. Repeats of a held key become Hold events.
func (k *KeyTracker) Down(act action.Action, repeat bool) {
	if repeat {
		if k.held[act] {
			k.events = append(k.events, InputEvent{Action: act, Type: event.Hold})
		}
		return
	}

	k.held[act] = true
	k.fresh[act] = true
	k.events = append(k.events, InputEvent{Action: act, Type: event.Press})
}

// Up records a key release.
func (k *KeyTracker) Up(act action.Action) {
	if !k.held[act] {
		return
	}

	if k.fresh[act] {
		if !slices.Contains(k.deferred, act) {
			k.deferred = append(k.deferred, act)
		}
		return
	}

	delete(k.held, act)
	k.events = append(k.events, InputEvent{Action: act, Type: event.Release})
}

// ReleaseAll releases every held key, for when the window loses focus and
// the key up events will never arrive.
func (k *KeyTracker) ReleaseAll() {
	keys := make([]action.Action, 0, len(k.held))
	for act := range k.held {
		keys = append(keys, act)
	}
	slices.Sort(keys)

	for _, act := range keys {
		k.Up(act)
	}
}

// Queue adds an event that needs no tracking, such as an emulator action.
func (k *KeyTracker) Queue(evt InputEvent) {
	k.events = append(k.events, evt)
}

// Flush returns the events collected since the previous call. Releases
// deferred in this frame are queued for the next one.
func (k *KeyTracker) Flush() []InputEvent {
	events := k.events
	k.events = nil
	clear(k.fresh)

	for _, act := range k.deferred {
		delete(k.held, act)
		k.events = append(k.events, InputEvent{Action: act, Type: event.Release})
	}
	k.deferred = k.deferred[:0]

	return events
}

// Held reports whether the key is down as far as the emulator knows.
func (k *KeyTracker) Held(act action.Action) bool {
	return k.held[act]
}
