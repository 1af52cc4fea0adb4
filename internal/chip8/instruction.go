package chip8

// Instruction is a decoded CHIP-8 opcode. The set of implementations is closed,
// every opcode decodes to exactly one of the variants declared in this file.
type Instruction interface {
	instruction()
}

// Sub-opcodes of the 0x0 family, selected by the low nibble.
const (
	SubClear  uint8 = 0x0
	SubReturn uint8 = 0xE
)

// ArithOp selects the operation of the 0x8 family, taken from the low nibble.
type ArithOp uint8

// Arithmetic and logic operations of the 8XY_ family.
const (
	OpAssign ArithOp = 0x0 // Vx = Vy
	OpOr     ArithOp = 0x1 // Vx |= Vy
	OpAnd    ArithOp = 0x2 // Vx &= Vy
	OpXor    ArithOp = 0x3 // Vx ^= Vy
	OpAdd    ArithOp = 0x4 // Vx += Vy, VF = carry
	OpSub    ArithOp = 0x5 // Vx -= Vy, VF = not borrow
	OpShr    ArithOp = 0x6 // Vx >>= 1, VF = shifted out bit
	OpSubn   ArithOp = 0x7 // Vx = Vy - Vx, VF = not borrow
	OpShl    ArithOp = 0xE // Vx <<= 1, VF = shifted out bit
)

// Sub-opcodes of the 0xE family, selected by the low nibble.
const (
	SubKeyNotPressed uint8 = 0x1 // EXA1
	SubKeyPressed    uint8 = 0xE // EX9E
)

// Sub-opcodes of the 0xF family, selected by the low byte.
const (
	MiscLoadDelay uint8 = 0x07 // Vx = DT
	MiscWaitKey   uint8 = 0x0A // Vx = first pressed key, repeat while none is pressed
	MiscSetDelay  uint8 = 0x15 // DT = Vx
	MiscSetSound  uint8 = 0x18 // ST = Vx
	MiscAddIndex  uint8 = 0x1E // I += Vx
	MiscGlyph     uint8 = 0x29 // I = glyph address of digit Vx
	MiscBCD       uint8 = 0x33 // [I..I+2] = BCD of Vx
	MiscStore     uint8 = 0x55 // [I..I+x] = V0..Vx
	MiscLoad      uint8 = 0x65 // V0..Vx = [I..I+x]
)

// ClearOrReturn is the 0x0 family, 00E0 clears the display and 00EE returns from a subroutine.
type ClearOrReturn struct {
	Sub uint8
}

// Jump is 1NNN.
type Jump struct {
	Addr uint16
}

// Call is 2NNN.
type Call struct {
	Addr uint16
}

// SkipEqualImm is 3XKK.
type SkipEqualImm struct {
	X     uint8
	Value uint8
}

// SkipNotEqualImm is 4XKK.
type SkipNotEqualImm struct {
	X     uint8
	Value uint8
}

// SkipEqualReg is 5XY0.
type SkipEqualReg struct {
	X uint8
	Y uint8
}

// LoadImm is 6XKK.
type LoadImm struct {
	X     uint8
	Value uint8
}

// AddImm is 7XKK.
type AddImm struct {
	X     uint8
	Value uint8
}

// Arithmetic is the 8XY_ family.
type Arithmetic struct {
	Op ArithOp
	X  uint8
	Y  uint8
}

// SkipNotEqualReg is 9XY0.
type SkipNotEqualReg struct {
	X uint8
	Y uint8
}

// LoadIndex is ANNN.
type LoadIndex struct {
	Addr uint16
}

// JumpOffset is BNNN.
type JumpOffset struct {
	Addr uint16
}

// Random is CXKK.
type Random struct {
	X    uint8
	Mask uint8
}

// Draw is DXYN. X and Y are register indices, the coordinates are read
// from the registers when the instruction executes.
type Draw struct {
	X      uint8
	Y      uint8
	Height uint8
}

// KeySkip is the 0xE family.
type KeySkip struct {
	X   uint8
	Sub uint8
}

// Misc is the 0xF family covering timers, key wait, index arithmetic, BCD and block transfers.
type Misc struct {
	X   uint8
	Sub uint8
}

// Unknown is any opcode that does not match a known family.
type Unknown struct {
	Opcode uint16
}

func (ClearOrReturn) instruction()   {}
func (Jump) instruction()            {}
func (Call) instruction()            {}
func (SkipEqualImm) instruction()    {}
func (SkipNotEqualImm) instruction() {}
func (SkipEqualReg) instruction()    {}
func (LoadImm) instruction()         {}
func (AddImm) instruction()          {}
func (Arithmetic) instruction()      {}
func (SkipNotEqualReg) instruction() {}
func (LoadIndex) instruction()       {}
func (JumpOffset) instruction()      {}
func (Random) instruction()          {}
func (Draw) instruction()            {}
func (KeySkip) instruction()         {}
func (Misc) instruction()            {}
func (Unknown) instruction()         {}

// Decode classifies a 16-bit opcode. It has no side effects and always returns
// the same instruction for the same opcode.
func Decode(opcode uint16) Instruction {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)
	kk := uint8(opcode & byteMask)
	addr := opcode & addrMask
	n := uint8(opcode & nibbleMask)

	switch opcode & familyMask {
	case 0x0000:
		return ClearOrReturn{Sub: n}
	case 0x1000:
		return Jump{Addr: addr}
	case 0x2000:
		return Call{Addr: addr}
	case 0x3000:
		return SkipEqualImm{X: x, Value: kk}
	case 0x4000:
		return SkipNotEqualImm{X: x, Value: kk}
	case 0x5000:
		return SkipEqualReg{X: x, Y: y}
	case 0x6000:
		return LoadImm{X: x, Value: kk}
	case 0x7000:
		return AddImm{X: x, Value: kk}
	case 0x8000:
		return Arithmetic{Op: ArithOp(n), X: x, Y: y}
	case 0x9000:
		return SkipNotEqualReg{X: x, Y: y}
	case 0xA000:
		return LoadIndex{Addr: addr}
	case 0xB000:
		return JumpOffset{Addr: addr}
	case 0xC000:
		return Random{X: x, Mask: kk}
	case 0xD000:
		return Draw{X: x, Y: y, Height: n}
	case 0xE000:
		return KeySkip{X: x, Sub: n}
	case 0xF000:
		return Misc{X: x, Sub: kk}
	}
	return Unknown{Opcode: opcode}
}

// extractRegisterX extracts the X register nibble from a CHIP-8 opcode.
func extractRegisterX(opcode uint16) uint8 {
	return uint8((opcode & xMask) >> 8)
}

// extractRegisterY extracts the Y register nibble from a CHIP-8 opcode.
func extractRegisterY(opcode uint16) uint8 {
	return uint8((opcode & yMask) >> 4)
}
