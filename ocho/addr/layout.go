package addr

// memory map
const (
	// FontStart is where the built-in hex font is loaded.
	FontStart uint16 = 0x000
	// FontGlyphSize is the number of bytes (rows) of a single font glyph.
	FontGlyphSize uint16 = 5
	// FontSize is the size of the whole font, 16 glyphs of 5 bytes.
	FontSize uint16 = 16 * FontGlyphSize
	// ProgramStart is where ROMs are loaded and where execution begins.
	// Everything below it was occupied by the original interpreter.
	ProgramStart uint16 = 0x200
	// MemorySize is the size of the addressable memory.
	MemorySize = 0x1000
	// MaxProgramSize is the largest ROM that fits between ProgramStart and the end of memory.
	MaxProgramSize = MemorySize - int(ProgramStart)
)

// machine limits
const (
	// StackDepth is the number of return addresses the call stack can hold.
	StackDepth = 16
	// RegisterCount is the number of general purpose V registers.
	RegisterCount = 16
	// FlagRegister is the index of VF, which doubles as carry/borrow/collision flag.
	FlagRegister = 0xF
	// KeyCount is the number of keys on the hex keypad.
	KeyCount = 16
)

// display
const (
	ScreenWidth  = 64
	ScreenHeight = 32
	// SpriteWidth is the fixed width, in pixels, of every sprite row.
	SpriteWidth = 8
)
