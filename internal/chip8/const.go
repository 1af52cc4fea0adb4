package chip8

// CHIP-8 memory layout constants.
//
//	0x000-0x1FF: Interpreter area, glyph table at FontAddress (512 bytes)
//	0x200-0xFFF: Program and work RAM (3584 bytes)
const (
	// MemorySize is the size of the addressable memory.
	MemorySize = 0x1000

	// MaxAddress is the highest valid memory address.
	MaxAddress = MemorySize - 1

	// ProgramStart is the address programs are loaded to and execution starts at.
	ProgramStart = 0x200

	// MaxProgramSize is the largest program that fits into memory after ProgramStart.
	MaxProgramSize = MemorySize - ProgramStart

	// FontAddress is the address of the first glyph of the built-in hexadecimal font.
	FontAddress = 0x50

	// GlyphSize is the number of bytes, and pixel rows, of a single font glyph.
	GlyphSize = 5
)

// Display dimensions.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
	DisplaySize   = DisplayWidth * DisplayHeight
)

const (
	// NumRegisters is the number of general-purpose V registers.
	NumRegisters = 16

	// FlagRegister is the index of VF, used as carry, borrow and collision flag.
	FlagRegister = 0xF

	// StackDepth is the number of return addresses the stack can hold.
	StackDepth = 16

	// NumKeys is the number of keys on the hexadecimal keypad.
	NumKeys = 16
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Opcode bit masks.
const (
	familyMask = 0xF000
	addrMask   = 0x0FFF
	byteMask   = 0x00FF
	nibbleMask = 0x000F
	xMask      = 0x0F00
	yMask      = 0x00F0
)
