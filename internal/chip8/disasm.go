package chip8

import (
	"fmt"

	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassemble returns the assembler representation of an opcode, for example
// "jp $234" or "drw V0, V1, $5". Opcodes without a known instruction are
// returned as a data word.
func Disassemble(opcode uint16) string {
	ins := lookupInstruction(opcode)
	if ins == nil {
		return fmt.Sprintf(".word $%04X", opcode)
	}

	name := ins.Name
	if params := formatParams(name, opcode); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// lookupInstruction finds the instruction definition matching the opcode in the
// CHIP-8 opcode table of its family.
func lookupInstruction(opcode uint16) *chip8cpu.Instruction {
	firstNibble := (opcode & familyMask) >> 12
	for _, op := range chip8cpu.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// formatParams formats the parameters of an instruction.
func formatParams(name string, opcode uint16) string {
	switch name {
	case chip8cpu.Cls.Name, chip8cpu.Ret.Name:
		return ""
	case chip8cpu.Jp.Name:
		return formatJump(opcode)
	case chip8cpu.Call.Name:
		return fmt.Sprintf("$%03X", opcode&addrMask)
	case chip8cpu.Se.Name, chip8cpu.Sne.Name:
		return formatCompare(opcode)
	case chip8cpu.Ld.Name:
		return formatLoad(opcode)
	case chip8cpu.Add.Name:
		return formatAdd(opcode)
	case chip8cpu.Or.Name, chip8cpu.And.Name, chip8cpu.Xor.Name, chip8cpu.Sub.Name, chip8cpu.Subn.Name:
		return fmt.Sprintf("V%X, V%X", extractRegisterX(opcode), extractRegisterY(opcode))
	case chip8cpu.Shr.Name, chip8cpu.Shl.Name, chip8cpu.Skp.Name, chip8cpu.Sknp.Name:
		return fmt.Sprintf("V%X", extractRegisterX(opcode))
	case chip8cpu.Rnd.Name:
		return fmt.Sprintf("V%X, $%02X", extractRegisterX(opcode), opcode&byteMask)
	case chip8cpu.Drw.Name:
		return fmt.Sprintf("V%X, V%X, $%X", extractRegisterX(opcode), extractRegisterY(opcode), opcode&nibbleMask)
	}
	return ""
}

// formatJump formats JP addr and JP V0, addr.
func formatJump(opcode uint16) string {
	if opcode&familyMask == 0xB000 {
		return fmt.Sprintf("V0, $%03X", opcode&addrMask)
	}
	return fmt.Sprintf("$%03X", opcode&addrMask)
}

// formatCompare formats SE and SNE with an immediate or a register operand.
func formatCompare(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & familyMask {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&byteMask)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	}
	return ""
}

// formatLoad formats all LD variants.
func formatLoad(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & familyMask {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&byteMask)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&addrMask)
	case 0xF000:
		return formatMiscLoad(x, uint8(opcode&byteMask))
	}
	return ""
}

// formatMiscLoad formats the LD variants of the 0xF family.
func formatMiscLoad(x, sub uint8) string {
	switch sub {
	case MiscLoadDelay:
		return fmt.Sprintf("V%X, DT", x)
	case MiscWaitKey:
		return fmt.Sprintf("V%X, K", x)
	case MiscSetDelay:
		return fmt.Sprintf("DT, V%X", x)
	case MiscSetSound:
		return fmt.Sprintf("ST, V%X", x)
	case MiscGlyph:
		return fmt.Sprintf("F, V%X", x)
	case MiscBCD:
		return fmt.Sprintf("B, V%X", x)
	case MiscStore:
		return fmt.Sprintf("[I], V%X", x)
	case MiscLoad:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// formatAdd formats ADD Vx, byte, ADD Vx, Vy and ADD I, Vx.
func formatAdd(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & familyMask {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&byteMask)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}
