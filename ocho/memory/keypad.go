package memory

import "github.com/valerio/go-ocho/ocho/addr"

// Keypad is the 16 key hexadecimal keypad, keys 0x0 to 0xF.
// Indexes above 0xF are masked to their low nibble.
type Keypad struct {
	keys [addr.KeyCount]bool
}

// NewKeypad creates a keypad with no key pressed.
func NewKeypad() *Keypad {
	return &Keypad{}
}

// Press marks a key as held down.
func (k *Keypad) Press(key uint8) {
	k.keys[key&0x0F] = true
}

// Release marks a key as released.
func (k *Keypad) Release(key uint8) {
	k.keys[key&0x0F] = false
}

// IsPressed reports whether the key is currently held down.
func (k *Keypad) IsPressed(key uint8) bool {
	return k.keys[key&0x0F]
}

// FirstPressed returns the lowest index among the pressed keys.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i, pressed := range k.keys {
		if pressed {
			return uint8(i), true
		}
	}
	return 0, false
}

// State returns a copy of the whole keypad.
func (k *Keypad) State() [addr.KeyCount]bool {
	return k.keys
}

// Reset releases every key.
func (k *Keypad) Reset() {
	k.keys = [addr.KeyCount]bool{}
}
