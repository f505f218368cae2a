package memory

import (
	"errors"
	"fmt"

	"github.com/valerio/go-ocho/ocho/addr"
	"github.com/valerio/go-ocho/ocho/bit"
)

// ErrOutOfBounds is returned for any access outside of the addressable memory.
var ErrOutOfBounds = errors.New("memory access out of bounds")

// RAM is the 4KB addressable memory of the machine.
// Addresses are not wrapped: ROM-controlled values can point anywhere, so every
// access is checked and reported instead.
type RAM struct {
	data [addr.MemorySize]byte
}

// New returns a zeroed memory.
func New() *RAM {
	return &RAM{}
}

// Size returns the number of addressable bytes.
func (m *RAM) Size() int {
	return len(m.data)
}

// Clear zeroes the whole memory.
func (m *RAM) Clear() {
	m.data = [addr.MemorySize]byte{}
}

// CheckRange verifies that length bytes starting at start are all addressable.
func (m *RAM) CheckRange(start uint16, length int) error {
	if length < 0 || int(start)+length > len(m.data) {
		return fmt.Errorf("%w: 0x%04X+%d", ErrOutOfBounds, start, length)
	}
	return nil
}

func (m *RAM) Read(address uint16) (byte, error) {
	if err := m.CheckRange(address, 1); err != nil {
		return 0, err
	}
	return m.data[address], nil
}

func (m *RAM) Write(address uint16, value byte) error {
	if err := m.CheckRange(address, 1); err != nil {
		return err
	}
	m.data[address] = value
	return nil
}

// ReadWord returns the big endian 16 bit value at address and address+1.
func (m *RAM) ReadWord(address uint16) (uint16, error) {
	if err := m.CheckRange(address, 2); err != nil {
		return 0, err
	}
	return bit.Combine(m.data[address], m.data[address+1]), nil
}

// Bytes returns the memory slice [start, start+length).
// The slice aliases memory, callers must not keep it across writes.
func (m *RAM) Bytes(start uint16, length int) ([]byte, error) {
	if err := m.CheckRange(start, length); err != nil {
		return nil, err
	}
	return m.data[start : int(start)+length], nil
}

// Snapshot returns a copy of up to length bytes starting at start, truncated at
// the end of memory. Used by debug views, never fails.
func (m *RAM) Snapshot(start uint16, length int) []byte {
	if int(start) >= len(m.data) || length <= 0 {
		return nil
	}
	end := int(start) + length
	if end > len(m.data) {
		end = len(m.data)
	}
	out := make([]byte, end-int(start))
	copy(out, m.data[start:end])
	return out
}

// Load copies data into memory starting at offset.
func (m *RAM) Load(offset uint16, data []byte) error {
	if err := m.CheckRange(offset, len(data)); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}
