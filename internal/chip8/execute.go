package chip8

import "fmt"

// execute applies a decoded instruction to the machine state. The program counter
// has already been advanced past the instruction.
func (m *Machine) execute(ins Instruction) error {
	switch ins := ins.(type) {
	case ClearOrReturn:
		return m.clearOrReturn(ins)

	case Jump:
		m.pc = ins.Addr

	case Call:
		if int(m.sp) >= StackDepth {
			return fmt.Errorf("%w: call to $%03X", ErrStackOverflow, ins.Addr)
		}
		m.stack[m.sp] = m.pc
		m.sp++
		m.pc = ins.Addr

	case SkipEqualImm:
		m.skipIf(m.v[ins.X] == ins.Value)

	case SkipNotEqualImm:
		m.skipIf(m.v[ins.X] != ins.Value)

	case SkipEqualReg:
		m.skipIf(m.v[ins.X] == m.v[ins.Y])

	case SkipNotEqualReg:
		m.skipIf(m.v[ins.X] != m.v[ins.Y])

	case LoadImm:
		m.v[ins.X] = ins.Value

	case AddImm:
		m.v[ins.X] += ins.Value

	case Arithmetic:
		return m.arithmetic(ins)

	case LoadIndex:
		m.i = ins.Addr

	case JumpOffset:
		m.pc = ins.Addr + uint16(m.v[0])

	case Random:
		m.v[ins.X] = m.random() & ins.Mask

	case Draw:
		return m.draw(ins)

	case KeySkip:
		return m.keySkip(ins)

	case Misc:
		return m.misc(ins)

	default:
		return ErrUnknownOpcode
	}
	return nil
}

func (m *Machine) skipIf(condition bool) {
	if condition {
		m.pc += opcodeSize
	}
}

func (m *Machine) clearOrReturn(ins ClearOrReturn) error {
	switch ins.Sub {
	case SubClear:
		clear(m.display[:])
		m.dirty = true

	case SubReturn:
		if m.sp == 0 {
			return ErrStackUnderflow
		}
		m.sp--
		m.pc = m.stack[m.sp]

	default:
		return fmt.Errorf("%w: 0x0 family sub-opcode %X", ErrUnknownOpcode, ins.Sub)
	}
	return nil
}

// arithmetic executes the 8XY_ family. VF is written before the result, so an
// instruction using VF as destination keeps the result instead of the flag.
func (m *Machine) arithmetic(ins Arithmetic) error {
	vx := m.v[ins.X]
	vy := m.v[ins.Y]

	switch ins.Op {
	case OpAssign:
		m.v[ins.X] = vy

	case OpOr:
		m.v[ins.X] = vx | vy

	case OpAnd:
		m.v[ins.X] = vx & vy

	case OpXor:
		m.v[ins.X] = vx ^ vy

	case OpAdd:
		m.v[FlagRegister] = boolToFlag(uint16(vx)+uint16(vy) > 0xFF)
		m.v[ins.X] = vx + vy

	case OpSub:
		m.v[FlagRegister] = boolToFlag(vx > vy)
		m.v[ins.X] = vx - vy

	case OpShr:
		m.v[FlagRegister] = vx & 0x01
		m.v[ins.X] = vx >> 1

	case OpSubn:
		m.v[FlagRegister] = boolToFlag(vy > vx)
		m.v[ins.X] = vy - vx

	case OpShl:
		if m.quirks.LegacyShift {
			m.v[FlagRegister] = vx & 0x10
		} else {
			m.v[FlagRegister] = vx >> 7
		}
		m.v[ins.X] = vx << 1

	default:
		return fmt.Errorf("%w: arithmetic sub-opcode %X", ErrUnknownOpcode, uint8(ins.Op))
	}
	return nil
}

// draw XORs an 8 pixel wide sprite read from memory at I onto the display.
// The start position wraps around the display, pixels past the right or
// bottom edge are clipped. VF is set if any lit pixel was turned off.
func (m *Machine) draw(ins Draw) error {
	startX := int(m.v[ins.X]) % DisplayWidth
	startY := int(m.v[ins.Y]) % DisplayHeight
	m.v[FlagRegister] = 0

	for row := range int(ins.Height) {
		address := int(m.i) + row
		if address > MaxAddress {
			return fmt.Errorf("%w: sprite row at $%04X", ErrAddressOutOfRange, address)
		}
		y := startY + row
		if y >= DisplayHeight {
			break
		}

		sprite := m.memory[address]
		for bit := range 8 {
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			x := startX + bit
			if x >= DisplayWidth {
				break
			}

			cell := y*DisplayWidth + x
			if m.display[cell] == 1 {
				m.v[FlagRegister] = 1
			}
			m.display[cell] ^= 1
			m.dirty = true
		}
	}
	return nil
}

func (m *Machine) keySkip(ins KeySkip) error {
	key := m.v[ins.X]
	if key >= NumKeys {
		return fmt.Errorf("%w: V%X=%d", ErrKeyOutOfRange, ins.X, key)
	}

	switch ins.Sub {
	case SubKeyPressed:
		m.skipIf(m.keys[key])
	case SubKeyNotPressed:
		m.skipIf(!m.keys[key])
	default:
		return fmt.Errorf("%w: key sub-opcode %X", ErrUnknownOpcode, ins.Sub)
	}
	return nil
}

func (m *Machine) misc(ins Misc) error {
	vx := m.v[ins.X]

	switch ins.Sub {
	case MiscLoadDelay:
		m.v[ins.X] = m.delayTimer

	case MiscWaitKey:
		for key, pressed := range m.keys {
			if pressed {
				m.v[ins.X] = uint8(key)
				return nil
			}
		}
		// no key pressed, execute this instruction again in the next cycle
		m.pc -= opcodeSize

	case MiscSetDelay:
		m.delayTimer = vx

	case MiscSetSound:
		m.soundTimer = vx

	case MiscAddIndex:
		m.i += uint16(vx)

	case MiscGlyph:
		m.i = glyphAddress(vx)

	case MiscBCD:
		if err := m.checkRange(m.i, 3); err != nil {
			return err
		}
		m.memory[m.i] = vx / 100
		m.memory[m.i+1] = (vx / 10) % 10
		m.memory[m.i+2] = vx % 10

	case MiscStore:
		count := int(ins.X) + 1
		if err := m.checkRange(m.i, count); err != nil {
			return err
		}
		copy(m.memory[m.i:int(m.i)+count], m.v[:count])

	case MiscLoad:
		count := int(ins.X) + 1
		if err := m.checkRange(m.i, count); err != nil {
			return err
		}
		copy(m.v[:count], m.memory[m.i:int(m.i)+count])

	default:
		return fmt.Errorf("%w: misc sub-opcode %02X", ErrUnknownOpcode, ins.Sub)
	}
	return nil
}

// checkRange returns an error if the length bytes starting at address exceed memory.
func (m *Machine) checkRange(address uint16, length int) error {
	if int(address)+length-1 > MaxAddress {
		return fmt.Errorf("%w: %d bytes at $%04X", ErrAddressOutOfRange, length, address)
	}
	return nil
}

func boolToFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
