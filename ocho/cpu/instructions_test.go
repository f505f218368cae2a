package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructions_LoadAndAddByte(t *testing.T) {
	testCases := []struct {
		desc    string
		program []uint16
		reg     uint8
		want    uint8
	}{
		{desc: "LD sets the register", program: []uint16{0x6A42}, reg: 0xA, want: 0x42},
		{desc: "ADD adds the immediate", program: []uint16{0x6310, 0x7305}, reg: 3, want: 0x15},
		{desc: "ADD wraps around", program: []uint16{0x63FF, 0x7302}, reg: 3, want: 0x01},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, tC.program...)
			step(t, m, len(tC.program))
			assert.Equal(t, tC.want, m.V(tC.reg))
			assert.Equal(t, uint8(0), m.V(0xF))
		})
	}
}

func TestInstructions_AddByteLeavesFlag(t *testing.T) {
	m := newTestMachine(t, 0x6F07, 0x60FF, 0x7002)
	step(t, m, 3)
	assert.Equal(t, uint8(7), m.V(0xF))
}

func TestInstructions_ALU(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode uint16
		vx, vy uint8
		want   uint8
		flag   uint8
	}{
		{desc: "LD Vx, Vy", opcode: 0x8120, vx: 0x01, vy: 0x33, want: 0x33},
		{desc: "OR", opcode: 0x8121, vx: 0xF0, vy: 0x0F, want: 0xFF},
		{desc: "AND", opcode: 0x8122, vx: 0xF3, vy: 0x3F, want: 0x33},
		{desc: "XOR", opcode: 0x8123, vx: 0xFF, vy: 0x0F, want: 0xF0},
		{desc: "ADD with carry", opcode: 0x8124, vx: 0xF0, vy: 0x20, want: 0x10, flag: 1},
		{desc: "ADD without carry", opcode: 0x8124, vx: 0x01, vy: 0x01, want: 0x02, flag: 0},
		{desc: "SUB with borrow", opcode: 0x8125, vx: 0x01, vy: 0x02, want: 0xFF, flag: 0},
		{desc: "SUB without borrow", opcode: 0x8125, vx: 0x05, vy: 0x02, want: 0x03, flag: 1},
		{desc: "SUB equal operands", opcode: 0x8125, vx: 0x05, vy: 0x05, want: 0x00, flag: 1},
		{desc: "SUBN without borrow", opcode: 0x8127, vx: 0x02, vy: 0x05, want: 0x03, flag: 1},
		{desc: "SUBN with borrow", opcode: 0x8127, vx: 0x05, vy: 0x02, want: 0xFD, flag: 0},
		{desc: "SHR shifts out a one", opcode: 0x8126, vx: 0x81, vy: 0x00, want: 0x40, flag: 1},
		{desc: "SHR shifts out a zero", opcode: 0x8126, vx: 0x80, vy: 0x00, want: 0x40, flag: 0},
		{desc: "SHL shifts out a one", opcode: 0x812E, vx: 0x81, vy: 0x00, want: 0x02, flag: 1},
		{desc: "SHL shifts out a zero", opcode: 0x812E, vx: 0x41, vy: 0x00, want: 0x82, flag: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, tC.opcode)
			m.v[1] = tC.vx
			m.v[2] = tC.vy
			m.v[0xF] = 0xAA

			step(t, m, 1)

			assert.Equal(t, tC.want, m.V(1))
			assert.Equal(t, tC.vy, m.V(2))
			assert.Equal(t, uint16(0x202), m.PC())
			if tC.opcode&0x000F >= 4 {
				assert.Equal(t, tC.flag, m.V(0xF))
			} else {
				// logical ops leave VF alone
				assert.Equal(t, uint8(0xAA), m.V(0xF))
			}
		})
	}
}

func TestInstructions_FlagWinsWhenDestinationIsVF(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode uint16
		vf, vy uint8
		want   uint8
	}{
		{desc: "ADD VF, V1 with carry", opcode: 0x8F14, vf: 0xF0, vy: 0x20, want: 1},
		{desc: "ADD VF, V1 without carry", opcode: 0x8F14, vf: 0x01, vy: 0x01, want: 0},
		{desc: "SUB VF, V1 without borrow", opcode: 0x8F15, vf: 0x05, vy: 0x02, want: 1},
		{desc: "SUBN VF, V1 with borrow", opcode: 0x8F17, vf: 0x05, vy: 0x02, want: 0},
		{desc: "SHR VF", opcode: 0x8F16, vf: 0x02, want: 0},
		{desc: "SHL VF", opcode: 0x8F1E, vf: 0x80, want: 1},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, tC.opcode)
			m.v[0xF] = tC.vf
			m.v[1] = tC.vy
			step(t, m, 1)
			assert.Equal(t, tC.want, m.V(0xF))
		})
	}
}

func TestInstructions_ShiftQuirk(t *testing.T) {
	testCases := []struct {
		desc        string
		opcode      uint16
		shiftUsesVY bool
		want, flag  uint8
	}{
		{desc: "SHR in place", opcode: 0x8126, want: 0x40, flag: 1},
		{desc: "SHR from Vy", opcode: 0x8126, shiftUsesVY: true, want: 0x01, flag: 0},
		{desc: "SHL in place", opcode: 0x812E, want: 0x02, flag: 1},
		{desc: "SHL from Vy", opcode: 0x812E, shiftUsesVY: true, want: 0x04, flag: 0},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			q := DefaultQuirks()
			q.ShiftUsesVY = tC.shiftUsesVY
			m := newTestMachineWith(t, []Option{WithQuirks(q)}, tC.opcode)
			m.v[1] = 0x81
			m.v[2] = 0x02

			step(t, m, 1)

			assert.Equal(t, tC.want, m.V(1))
			assert.Equal(t, tC.flag, m.V(0xF))
			assert.Equal(t, uint8(0x02), m.V(2))
		})
	}
}

func TestInstructions_Skips(t *testing.T) {
	testCases := []struct {
		desc   string
		opcode uint16
		v1, v2 uint8
		keys   []uint8
		want   uint16
	}{
		{desc: "SE byte taken", opcode: 0x3142, v1: 0x42, want: 0x204},
		{desc: "SE byte not taken", opcode: 0x3142, v1: 0x41, want: 0x202},
		{desc: "SNE byte taken", opcode: 0x4142, v1: 0x41, want: 0x204},
		{desc: "SNE byte not taken", opcode: 0x4142, v1: 0x42, want: 0x202},
		{desc: "SE register taken", opcode: 0x5120, v1: 7, v2: 7, want: 0x204},
		{desc: "SE register not taken", opcode: 0x5120, v1: 7, v2: 8, want: 0x202},
		{desc: "SNE register taken", opcode: 0x9120, v1: 7, v2: 8, want: 0x204},
		{desc: "SNE register not taken", opcode: 0x9120, v1: 7, v2: 7, want: 0x202},
		{desc: "SKP taken", opcode: 0xE19E, v1: 0xA, keys: []uint8{0xA}, want: 0x204},
		{desc: "SKP not taken", opcode: 0xE19E, v1: 0xA, keys: []uint8{0xB}, want: 0x202},
		{desc: "SKP uses the low nibble of Vx", opcode: 0xE19E, v1: 0x1A, keys: []uint8{0xA}, want: 0x204},
		{desc: "SKNP taken", opcode: 0xE1A1, v1: 0xA, want: 0x204},
		{desc: "SKNP not taken", opcode: 0xE1A1, v1: 0xA, keys: []uint8{0xA}, want: 0x202},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, tC.opcode)
			m.v[1] = tC.v1
			m.v[2] = tC.v2
			for _, k := range tC.keys {
				m.Keypad().Press(k)
			}

			step(t, m, 1)
			assert.Equal(t, tC.want, m.PC())
		})
	}
}

func TestInstructions_CallReturn(t *testing.T) {
	// 0x200: CALL $300
	m := newTestMachine(t, 0x2300)
	// 0x300: RET
	require.NoError(t, m.Memory().Load(0x300, []byte{0x00, 0xEE}))

	step(t, m, 1)
	assert.Equal(t, uint16(0x300), m.PC())
	assert.Equal(t, uint8(1), m.SP())
	assert.Equal(t, []uint16{0x202}, m.Stack())

	step(t, m, 1)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0), m.SP())
}

func TestInstructions_Jumps(t *testing.T) {
	t.Run("JP", func(t *testing.T) {
		m := newTestMachine(t, 0x1ABC)
		step(t, m, 1)
		assert.Equal(t, uint16(0xABC), m.PC())
	})

	t.Run("JP V0", func(t *testing.T) {
		m := newTestMachine(t, 0x6004, 0xB300)
		step(t, m, 2)
		assert.Equal(t, uint16(0x304), m.PC())
	})
}

func TestInstructions_LoadIndex(t *testing.T) {
	m := newTestMachine(t, 0xA234)
	step(t, m, 1)
	assert.Equal(t, uint16(0x234), m.I())
}

func TestInstructions_Random(t *testing.T) {
	t.Run("masked by the immediate", func(t *testing.T) {
		for seed := uint64(0); seed < 32; seed++ {
			m := newTestMachineWith(t, []Option{WithSeed(seed)}, 0xC30F)
			step(t, m, 1)
			assert.LessOrEqual(t, m.V(3), uint8(0x0F))
		}
	})

	t.Run("zero mask", func(t *testing.T) {
		m := newTestMachine(t, 0x63FF, 0xC300)
		step(t, m, 2)
		assert.Equal(t, uint8(0), m.V(3))
	})
}

func TestInstructions_Draw(t *testing.T) {
	t.Run("drawing twice erases and reports a collision", func(t *testing.T) {
		// LD I, $000; DRW V0, V0, 5; DRW V0, V0, 5
		m := newTestMachine(t, 0xA000, 0xD005, 0xD005)
		step(t, m, 2)
		assert.Equal(t, uint8(0), m.V(0xF))
		assert.Positive(t, m.FrameBuffer().LitCount())

		step(t, m, 1)
		assert.Equal(t, uint8(1), m.V(0xF))
		assert.Equal(t, 0, m.FrameBuffer().LitCount())
	})

	t.Run("origin wraps around the screen", func(t *testing.T) {
		// LD V0, 65; LD V1, 33; LD I, $000; DRW V0, V1, 1
		m := newTestMachine(t, 0x6041, 0x6121, 0xA000, 0xD011)
		step(t, m, 4)
		// first row of glyph "0" is F0
		fb := m.FrameBuffer()
		for x := uint(1); x < 5; x++ {
			assert.Equal(t, uint8(1), fb.GetPixel(x, 1))
		}
		assert.Equal(t, 4, fb.LitCount())
	})

	t.Run("pixels past the edge wrap by default", func(t *testing.T) {
		// LD V0, 62; LD I, $000; DRW V0, V1, 1
		m := newTestMachine(t, 0x603E, 0xA000, 0xD011)
		step(t, m, 3)
		fb := m.FrameBuffer()
		assert.Equal(t, uint8(1), fb.GetPixel(62, 0))
		assert.Equal(t, uint8(1), fb.GetPixel(63, 0))
		assert.Equal(t, uint8(1), fb.GetPixel(0, 0))
		assert.Equal(t, uint8(1), fb.GetPixel(1, 0))
	})

	t.Run("pixels past the edge are dropped when clipping", func(t *testing.T) {
		q := DefaultQuirks()
		q.ClipSprites = true
		m := newTestMachineWith(t, []Option{WithQuirks(q)}, 0x603E, 0xA000, 0xD011)
		step(t, m, 3)
		fb := m.FrameBuffer()
		assert.Equal(t, uint8(1), fb.GetPixel(62, 0))
		assert.Equal(t, uint8(1), fb.GetPixel(63, 0))
		assert.Equal(t, 2, fb.LitCount())
	})

	t.Run("zero height sprite draws nothing", func(t *testing.T) {
		m := newTestMachine(t, 0xA000, 0xD010)
		step(t, m, 2)
		assert.Equal(t, 0, m.FrameBuffer().LitCount())
		assert.Equal(t, uint8(0), m.V(0xF))
	})

	t.Run("sprite past the end of memory", func(t *testing.T) {
		m := newTestMachine(t, 0xAFFE, 0xD015)
		step(t, m, 1)
		m.v[0xF] = 0x55

		_, err := m.Step()
		require.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, uint8(0x55), m.V(0xF))
		assert.Equal(t, 0, m.FrameBuffer().LitCount())
		assert.Equal(t, uint16(0x202), m.PC())
	})
}

func TestInstructions_WaitKey(t *testing.T) {
	m := newTestMachine(t, 0xF30A)
	m.delayTimer = 3

	step(t, m, 1)
	assert.Equal(t, uint16(0x200), m.PC())
	assert.True(t, m.WaitingForKey())
	// timers keep ticking while waiting
	assert.Equal(t, uint8(2), m.DelayTimer())

	step(t, m, 1)
	assert.Equal(t, uint16(0x200), m.PC())

	m.Keypad().Press(0x7)
	m.Keypad().Press(0x3)
	step(t, m, 1)
	assert.Equal(t, uint16(0x202), m.PC())
	assert.Equal(t, uint8(0x3), m.V(3))
	assert.False(t, m.WaitingForKey())
}

func TestInstructions_Timers(t *testing.T) {
	m := newTestMachine(t, 0x6509, 0xF515, 0xF607)
	step(t, m, 3)
	// DT was set to 9 and ticked once before being read
	assert.Equal(t, uint8(8), m.V(6))
}

func TestInstructions_AddIndex(t *testing.T) {
	testCases := []struct {
		desc string
		i    uint16
		vx   uint8
		want uint16
	}{
		{desc: "adds", i: 0x300, vx: 0x10, want: 0x310},
		{desc: "goes past 0xFFF", i: 0xFFF, vx: 0x01, want: 0x1000},
		{desc: "wraps at 16 bits", i: 0xFFFF, vx: 0x02, want: 0x0001},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, 0xF41E)
			m.i = tC.i
			m.v[4] = tC.vx
			m.v[0xF] = 0xAA
			step(t, m, 1)
			assert.Equal(t, tC.want, m.I())
			assert.Equal(t, uint8(0xAA), m.V(0xF))
		})
	}
}

func TestInstructions_FontGlyph(t *testing.T) {
	testCases := []struct {
		desc string
		vx   uint8
		want uint16
	}{
		{desc: "digit 0", vx: 0x0, want: 0},
		{desc: "digit A", vx: 0xA, want: 50},
		{desc: "digit F", vx: 0xF, want: 75},
		{desc: "high nibble is not masked", vx: 0x1F, want: 155},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			m := newTestMachine(t, 0xF529)
			m.v[5] = tC.vx
			step(t, m, 1)
			assert.Equal(t, tC.want, m.I())
		})
	}
}

func TestInstructions_BCD(t *testing.T) {
	for value := 0; value < 256; value++ {
		m := newTestMachine(t, 0xF633)
		m.i = 0x300
		m.v[6] = uint8(value)

		step(t, m, 1)

		want := []byte{byte(value / 100), byte(value / 10 % 10), byte(value % 10)}
		require.Equal(t, want, m.Memory().Snapshot(0x300, 3), "value %d", value)
		require.Equal(t, uint16(0x300), m.I())
	}
}

func TestInstructions_BCDOutOfBounds(t *testing.T) {
	m := newTestMachine(t, 0xF633)
	m.i = 0xFFE
	m.v[6] = 123

	_, err := m.Step()
	require.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, []byte{0, 0}, m.Memory().Snapshot(0xFFE, 2))
	assert.Equal(t, uint16(0x200), m.PC())
}

func TestInstructions_StoreLoadRegisters(t *testing.T) {
	testCases := []struct {
		desc      string
		increment bool
		wantI     uint16
	}{
		{desc: "increments I", increment: true, wantI: 0x303},
		{desc: "leaves I alone", increment: false, wantI: 0x300},
	}
	for _, tC := range testCases {
		t.Run(tC.desc, func(t *testing.T) {
			q := DefaultQuirks()
			q.LoadStoreIncrementsI = tC.increment

			t.Run("store", func(t *testing.T) {
				m := newTestMachineWith(t, []Option{WithQuirks(q)}, 0xF255)
				m.i = 0x300
				m.v[0], m.v[1], m.v[2], m.v[3] = 1, 2, 3, 4

				step(t, m, 1)

				assert.Equal(t, []byte{1, 2, 3, 0}, m.Memory().Snapshot(0x300, 4))
				assert.Equal(t, tC.wantI, m.I())
			})

			t.Run("load", func(t *testing.T) {
				m := newTestMachineWith(t, []Option{WithQuirks(q)}, 0xF265)
				require.NoError(t, m.Memory().Load(0x300, []byte{9, 8, 7, 6}))
				m.i = 0x300

				step(t, m, 1)

				assert.Equal(t, uint8(9), m.V(0))
				assert.Equal(t, uint8(8), m.V(1))
				assert.Equal(t, uint8(7), m.V(2))
				assert.Equal(t, uint8(0), m.V(3))
				assert.Equal(t, tC.wantI, m.I())
			})
		})
	}
}

func TestInstructions_StoreLoadOutOfBounds(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		m := newTestMachine(t, 0xF255)
		m.i = 0xFFE
		m.v[0], m.v[1], m.v[2] = 1, 2, 3

		_, err := m.Step()
		require.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, []byte{0, 0}, m.Memory().Snapshot(0xFFE, 2))
		assert.Equal(t, uint16(0xFFE), m.I())
	})

	t.Run("load", func(t *testing.T) {
		m := newTestMachine(t, 0xF265)
		require.NoError(t, m.Memory().Load(0xFFE, []byte{9, 9}))
		m.i = 0xFFE

		_, err := m.Step()
		require.ErrorIs(t, err, ErrOutOfBounds)
		assert.Equal(t, uint8(0), m.V(0))
		assert.Equal(t, uint16(0xFFE), m.I())
	})
}
