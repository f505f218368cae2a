package video

import "github.com/valerio/go-ocho/ocho/addr"

const (
	FramebufferWidth  = addr.ScreenWidth
	FramebufferHeight = addr.ScreenHeight
	FramebufferSize   = FramebufferWidth * FramebufferHeight
)

// Color is an RGBA color used by backends to paint the monochrome cells.
type Color uint32

const (
	OffColor Color = 0x000000FF
	OnColor  Color = 0xFFFFFFFF
)

// FrameBuffer is the monochrome 64x32 display, one byte per cell holding 0 or 1,
// stored row-major.
// The redraw flag is set whenever the content changes and is only cleared by
// the consumer that renders it.
type FrameBuffer struct {
	buffer []uint8
	redraw bool
}

// NewFrameBuffer creates a blank frame buffer.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		buffer: make([]uint8, FramebufferSize),
	}
}

func (fb *FrameBuffer) GetPixel(x, y uint) uint8 {
	return fb.buffer[y*FramebufferWidth+x]
}

// SetPixel sets a cell to on (any non zero value) or off.
func (fb *FrameBuffer) SetPixel(x, y uint, value uint8) {
	if value != 0 {
		value = 1
	}
	fb.buffer[y*FramebufferWidth+x] = value
	fb.redraw = true
}

// Clear turns every cell off.
func (fb *FrameBuffer) Clear() {
	clear(fb.buffer)
	fb.redraw = true
}

// DrawSprite XORs an 8 pixel wide sprite, one byte per row, at (x, y).
// The origin always wraps around the screen. Pixels falling past the right or
// bottom edge wrap too, unless clip is set, in which case they are dropped.
// Returns true if any lit pixel was turned off.
func (fb *FrameBuffer) DrawSprite(x, y uint8, rows []byte, clip bool) (collision bool) {
	originX := uint(x) % FramebufferWidth
	originY := uint(y) % FramebufferHeight

	for row, data := range rows {
		py := originY + uint(row)
		if py >= FramebufferHeight {
			if clip {
				break
			}
			py %= FramebufferHeight
		}

		for col := uint(0); col < addr.SpriteWidth; col++ {
			if data&(0x80>>col) == 0 {
				continue
			}

			px := originX + col
			if px >= FramebufferWidth {
				if clip {
					break
				}
				px %= FramebufferWidth
			}

			idx := py*FramebufferWidth + px
			if fb.buffer[idx] == 1 {
				collision = true
			}
			fb.buffer[idx] ^= 1
		}
	}

	fb.redraw = true
	return collision
}

// NeedsRedraw reports whether the content changed since the flag was last cleared.
func (fb *FrameBuffer) NeedsRedraw() bool {
	return fb.redraw
}

// ClearRedraw acknowledges a render. Only renderers should call it.
func (fb *FrameBuffer) ClearRedraw() {
	fb.redraw = false
}

// Clone returns an independent copy, redraw flag included.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	c := &FrameBuffer{
		buffer: make([]uint8, len(fb.buffer)),
		redraw: fb.redraw,
	}
	copy(c.buffer, fb.buffer)
	return c
}

// ToSlice returns the underlying cells.
func (fb *FrameBuffer) ToSlice() []uint8 {
	return fb.buffer
}

// LitCount returns how many cells are on.
func (fb *FrameBuffer) LitCount() int {
	n := 0
	for _, v := range fb.buffer {
		n += int(v)
	}
	return n
}

// ColorAt maps a cell to its display color.
func (fb *FrameBuffer) ColorAt(x, y uint) Color {
	if fb.GetPixel(x, y) != 0 {
		return OnColor
	}
	return OffColor
}
