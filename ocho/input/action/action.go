package action

import "fmt"

// Action represents input actions that can be performed in the emulator
type Action int

const (
	// CHIP-8 keypad, the value of each action is the key index
	Key0 Action = iota
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF

	// Emulator features
	EmulatorDebugToggle
	EmulatorSnapshot
	EmulatorPauseToggle
	EmulatorStepFrame
	EmulatorStepInstruction
	EmulatorReset
	EmulatorQuit

	// Debug controls
	DebugLogLevelIncrease
	DebugLogLevelDecrease
)

// Category groups actions by who consumes them.
type Category int

const (
	// CategoryGameInput actions drive the keypad
	CategoryGameInput Category = iota
	// CategoryEmulator actions control the emulator itself
	CategoryEmulator
	// CategoryDebug actions only affect debug output
	CategoryDebug
)

func (c Category) String() string {
	switch c {
	case CategoryGameInput:
		return "game"
	case CategoryEmulator:
		return "emulator"
	case CategoryDebug:
		return "debug"
	default:
		return "unknown"
	}
}

// Info describes an action for logs and help screens.
type Info struct {
	Description string
	Category    Category
}

var infos = map[Action]Info{
	EmulatorDebugToggle:     {Description: "Toggle debug panels", Category: CategoryEmulator},
	EmulatorSnapshot:        {Description: "Save a PNG snapshot", Category: CategoryEmulator},
	EmulatorPauseToggle:     {Description: "Pause/resume", Category: CategoryEmulator},
	EmulatorStepFrame:       {Description: "Step one frame", Category: CategoryEmulator},
	EmulatorStepInstruction: {Description: "Step one instruction", Category: CategoryEmulator},
	EmulatorReset:           {Description: "Reload the program", Category: CategoryEmulator},
	EmulatorQuit:            {Description: "Quit", Category: CategoryEmulator},
	DebugLogLevelIncrease:   {Description: "More verbose logs", Category: CategoryDebug},
	DebugLogLevelDecrease:   {Description: "Less verbose logs", Category: CategoryDebug},
}

// GetInfo returns the description and category of an action.
func GetInfo(act Action) Info {
	if key, ok := KeyValue(act); ok {
		return Info{Description: fmt.Sprintf("Keypad %X", key), Category: CategoryGameInput}
	}
	if info, ok := infos[act]; ok {
		return info
	}
	return Info{Description: fmt.Sprintf("Action(%d)", int(act)), Category: CategoryEmulator}
}

// KeyValue returns the keypad index of a keypad action.
func KeyValue(act Action) (uint8, bool) {
	if act < Key0 || act > KeyF {
		return 0, false
	}
	return uint8(act - Key0), true
}

// ForKey returns the keypad action for a key index, masked to its low nibble.
func ForKey(key uint8) Action {
	return Key0 + Action(key&0x0F)
}

func (a Action) String() string {
	return GetInfo(a).Description
}
