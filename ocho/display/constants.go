package display

import "github.com/valerio/go-ocho/ocho/addr"

// RGBA pixel format constants
const (
	// RGBABytesPerPixel is the number of bytes per pixel in RGBA format
	RGBABytesPerPixel = 4
	// RGBARShift is the bit shift for the red component in RGBA format
	RGBARShift = 24
	// RGBAGShift is the bit shift for the green component in RGBA format
	RGBAGShift = 16
	// RGBABShift is the bit shift for the blue component in RGBA format
	RGBABShift = 8
	// RGBAAShift is the bit shift for the alpha component in RGBA format
	RGBAAShift = 0
	// RGBAColorMask is the mask for extracting color components
	RGBAColorMask = 0xFF
)

// Backend scaling and window constants
const (
	// DefaultPixelScale is the default scaling factor for CHIP-8 pixels
	DefaultPixelScale = 10
	// DefaultWindowWidth is the default window width (screen width * scale)
	DefaultWindowWidth = addr.ScreenWidth * DefaultPixelScale // 640
	// DefaultWindowHeight is the default window height (screen height * scale)
	DefaultWindowHeight = addr.ScreenHeight * DefaultPixelScale // 320
)

// Terminal layout constants
const (
	// TerminalScreenRows is the number of text rows used by the screen, two pixels per row
	TerminalScreenRows = addr.ScreenHeight / 2
	// TerminalSidebarWidth is the width of the registers and disassembly panels
	TerminalSidebarWidth = 28
	// TerminalLogRows is the height of the log panel
	TerminalLogRows = 8
)
