package cpu

import (
	"github.com/valerio/go-ocho/ocho/addr"
	"github.com/valerio/go-ocho/ocho/bit"
)

// skipIf advances PC past the next instruction when cond holds.
func (m *Machine) skipIf(cond bool) {
	if cond {
		m.pc += 4
		return
	}
	m.pc += 2
}

// setFlag writes VF. It must be the last register write of an instruction so
// that the flag wins when VF is also the destination.
func (m *Machine) setFlag(set bool) {
	if set {
		m.v[addr.FlagRegister] = 1
		return
	}
	m.v[addr.FlagRegister] = 0
}

func execSystem(m *Machine, in instruction) error {
	switch in {
	case 0x00E0:
		m.cls()
		return nil
	case 0x00EE:
		return m.ret()
	default:
		// 0nnn machine code routines are not supported
		return ErrUnknownOpcode
	}
}

// 00E0 - CLS
func (m *Machine) cls() {
	m.fb.Clear()
	m.pc += 2
}

// 00EE - RET
// The stored address already points past the CALL.
func (m *Machine) ret() error {
	if m.sp == 0 {
		return ErrStackUnderflow
	}
	m.sp--
	m.pc = m.stack[m.sp]
	return nil
}

// 1nnn - JP addr
func execJump(m *Machine, in instruction) error {
	m.pc = in.nnn()
	return nil
}

// 2nnn - CALL addr
func execCall(m *Machine, in instruction) error {
	if int(m.sp) >= len(m.stack) {
		return ErrStackOverflow
	}
	m.stack[m.sp] = m.pc + 2
	m.sp++
	m.pc = in.nnn()
	return nil
}

// 3xnn - SE Vx, byte
func execSkipEqualByte(m *Machine, in instruction) error {
	m.skipIf(m.v[in.x()] == in.nn())
	return nil
}

// 4xnn - SNE Vx, byte
func execSkipNotEqualByte(m *Machine, in instruction) error {
	m.skipIf(m.v[in.x()] != in.nn())
	return nil
}

// 5xy0 - SE Vx, Vy
func execSkipEqualRegister(m *Machine, in instruction) error {
	if in.n() != 0 {
		return ErrUnknownOpcode
	}
	m.skipIf(m.v[in.x()] == m.v[in.y()])
	return nil
}

// 6xnn - LD Vx, byte
func execLoadByte(m *Machine, in instruction) error {
	m.v[in.x()] = in.nn()
	m.pc += 2
	return nil
}

// 7xnn - ADD Vx, byte
// Wraps around, VF is not affected.
func execAddByte(m *Machine, in instruction) error {
	m.v[in.x()] += in.nn()
	m.pc += 2
	return nil
}

func execALU(m *Machine, in instruction) error {
	x, y := in.x(), in.y()

	switch in.n() {
	case 0x0:
		m.v[x] = m.v[y]
	case 0x1:
		m.v[x] |= m.v[y]
	case 0x2:
		m.v[x] &= m.v[y]
	case 0x3:
		m.v[x] ^= m.v[y]
	case 0x4:
		m.addRegisters(x, y)
	case 0x5:
		m.subRegisters(x, y)
	case 0x6:
		m.shr(x, y)
	case 0x7:
		m.subnRegisters(x, y)
	case 0xE:
		m.shl(x, y)
	default:
		return ErrUnknownOpcode
	}

	m.pc += 2
	return nil
}

// 8xy4 - ADD Vx, Vy
// VF = carry.
func (m *Machine) addRegisters(x, y uint8) {
	sum, carry := bit.CheckedAdd(m.v[x], m.v[y])
	m.v[x] = sum
	m.setFlag(carry)
}

// 8xy5 - SUB Vx, Vy
// VF = NOT borrow, the borrow happens when Vy > Vx.
func (m *Machine) subRegisters(x, y uint8) {
	diff, borrow := bit.CheckedSub(m.v[x], m.v[y])
	m.v[x] = diff
	m.setFlag(!borrow)
}

// 8xy7 - SUBN Vx, Vy
// Vx = Vy - Vx, VF = NOT borrow, the borrow happens when Vx > Vy.
func (m *Machine) subnRegisters(x, y uint8) {
	diff, borrow := bit.CheckedSub(m.v[y], m.v[x])
	m.v[x] = diff
	m.setFlag(!borrow)
}

// shiftSource is Vx, or Vy with the ShiftUsesVY quirk.
func (m *Machine) shiftSource(x, y uint8) uint8 {
	if m.quirks.ShiftUsesVY {
		return m.v[y]
	}
	return m.v[x]
}

// 8xy6 - SHR Vx {, Vy}
// VF = least significant bit before the shift.
func (m *Machine) shr(x, y uint8) {
	src := m.shiftSource(x, y)
	m.v[x] = src >> 1
	m.setFlag(src&0x01 == 1)
}

// 8xyE - SHL Vx {, Vy}
// VF = most significant bit before the shift.
func (m *Machine) shl(x, y uint8) {
	src := m.shiftSource(x, y)
	m.v[x] = src << 1
	m.setFlag(bit.IsSet(7, src))
}

// 9xy0 - SNE Vx, Vy
func execSkipNotEqualRegister(m *Machine, in instruction) error {
	if in.n() != 0 {
		return ErrUnknownOpcode
	}
	m.skipIf(m.v[in.x()] != m.v[in.y()])
	return nil
}

// Annn - LD I, addr
func execLoadIndex(m *Machine, in instruction) error {
	m.i = in.nnn()
	m.pc += 2
	return nil
}

// Bnnn - JP V0, addr
// The target may land past the end of memory, the next fetch reports it.
func execJumpOffset(m *Machine, in instruction) error {
	m.pc = in.nnn() + uint16(m.v[0])
	return nil
}

// Cxnn - RND Vx, byte
func execRandom(m *Machine, in instruction) error {
	m.v[in.x()] = uint8(m.rng.UintN(256)) & in.nn()
	m.pc += 2
	return nil
}

// Dxyn - DRW Vx, Vy, nibble
// VF = collision.
func execDraw(m *Machine, in instruction) error {
	rows, err := m.ram.Bytes(m.i, int(in.n()))
	if err != nil {
		return err
	}

	collision := m.fb.DrawSprite(m.v[in.x()], m.v[in.y()], rows, m.quirks.ClipSprites)
	m.setFlag(collision)
	m.pc += 2
	return nil
}

func execKeySkip(m *Machine, in instruction) error {
	key := m.v[in.x()]

	switch in.nn() {
	case 0x9E: // Ex9E - SKP Vx
		m.skipIf(m.keypad.IsPressed(key))
	case 0xA1: // ExA1 - SKNP Vx
		m.skipIf(!m.keypad.IsPressed(key))
	default:
		return ErrUnknownOpcode
	}
	return nil
}

func execMisc(m *Machine, in instruction) error {
	x := in.x()

	switch in.nn() {
	case 0x07: // Fx07 - LD Vx, DT
		m.v[x] = m.delayTimer
	case 0x0A: // Fx0A - LD Vx, K
		m.waitKey(x)
		return nil
	case 0x15: // Fx15 - LD DT, Vx
		m.delayTimer = m.v[x]
	case 0x18: // Fx18 - LD ST, Vx
		m.soundTimer = m.v[x]
	case 0x1E: // Fx1E - ADD I, Vx
		// 16 bit wraparound, VF is not affected
		m.i += uint16(m.v[x])
	case 0x29: // Fx29 - LD F, Vx
		m.i = addr.FontStart + uint16(m.v[x])*addr.FontGlyphSize
	case 0x33: // Fx33 - LD B, Vx
		if err := m.storeBCD(x); err != nil {
			return err
		}
	case 0x55: // Fx55 - LD [I], Vx
		if err := m.storeRegisters(x); err != nil {
			return err
		}
	case 0x65: // Fx65 - LD Vx, [I]
		if err := m.loadRegisters(x); err != nil {
			return err
		}
	default:
		return ErrUnknownOpcode
	}

	m.pc += 2
	return nil
}

// waitKey stores the lowest pressed key in Vx and moves on. With no key pressed
// PC stays put so the instruction runs again on the next step.
func (m *Machine) waitKey(x uint8) {
	key, pressed := m.keypad.FirstPressed()
	if !pressed {
		m.waitingForKey = true
		return
	}

	m.waitingForKey = false
	m.v[x] = key
	m.pc += 2
}

func (m *Machine) storeBCD(x uint8) error {
	dst, err := m.ram.Bytes(m.i, 3)
	if err != nil {
		return err
	}
	dst[0], dst[1], dst[2] = bit.BCD(m.v[x])
	return nil
}

func (m *Machine) storeRegisters(x uint8) error {
	count := int(x) + 1
	dst, err := m.ram.Bytes(m.i, count)
	if err != nil {
		return err
	}
	copy(dst, m.v[:count])

	if m.quirks.LoadStoreIncrementsI {
		m.i += uint16(count)
	}
	return nil
}

func (m *Machine) loadRegisters(x uint8) error {
	count := int(x) + 1
	src, err := m.ram.Bytes(m.i, count)
	if err != nil {
		return err
	}
	copy(m.v[:count], src)

	if m.quirks.LoadStoreIncrementsI {
		m.i += uint16(count)
	}
	return nil
}
