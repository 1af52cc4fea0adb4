package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestExecute_ClearDisplay(t *testing.T) {
	m := newTestMachine(t, 0x00E0)
	for i := range m.display {
		m.display[i] = byte(i % 2)
	}

	result := m.Step()
	assert.True(t, result.Fault == nil)
	assert.Equal(t, [DisplaySize]byte{}, m.display)
}

func TestExecute_CallReturn(t *testing.T) {
	// 0x200: call 0x206, 0x202: ld V0, 1, 0x204: jp 0x204, 0x206: ret
	m := newTestMachine(t, 0x2206, 0x6001, 0x1204, 0x00EE)

	m.Step()
	assert.Equal(t, uint16(0x206), m.pc)
	assert.Equal(t, uint8(1), m.sp)
	assert.Equal(t, uint16(0x202), m.stack[0])

	m.Step()
	assert.Equal(t, uint16(0x202), m.pc)
	assert.Equal(t, uint8(0), m.sp)

	m.Step()
	assert.Equal(t, uint8(1), m.v[0])
	m.Step()
	assert.Equal(t, uint16(0x204), m.pc)
}

func TestExecute_StackFaults(t *testing.T) {
	t.Run("return with empty stack", func(t *testing.T) {
		m := newTestMachine(t, 0x00EE)

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrStackUnderflow))
		assert.Equal(t, uint8(0), m.sp)
		assert.Equal(t, uint16(ProgramStart+2), m.pc)
	})

	t.Run("call with full stack", func(t *testing.T) {
		m := newTestMachine(t, 0x2200)
		for range StackDepth {
			result := m.Step()
			assert.True(t, result.Fault == nil)
		}
		assert.Equal(t, uint8(StackDepth), m.sp)

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrStackOverflow))
		assert.Equal(t, uint8(StackDepth), m.sp)
		assert.Equal(t, uint16(ProgramStart+2), m.pc)
	})

	t.Run("undefined sub-opcode", func(t *testing.T) {
		m := newTestMachine(t, 0x0123)

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrUnknownOpcode))
		assert.Equal(t, uint16(ProgramStart+2), m.pc)
	})
}

func TestExecute_Jump(t *testing.T) {
	m := newTestMachine(t, 0x1FFF)
	m.Step()
	assert.Equal(t, uint16(0xFFF), m.pc)

	m = newTestMachine(t, 0xB300)
	m.v[0] = 0x10
	m.Step()
	assert.Equal(t, uint16(0x310), m.pc)

	m = newTestMachine(t, 0xBFFF)
	m.v[0] = 0x02
	result := m.Step()
	assert.True(t, result.Fault == nil)
	assert.Equal(t, uint16(0x1001), m.pc)

	result = m.Step()
	assert.True(t, errors.Is(result.Fault, ErrAddressOutOfRange))
	assert.Equal(t, uint16(0x1001), m.pc)
}

func TestExecute_Skips(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		vx, vy  uint8
		skipped bool
	}{
		{"skip equal immediate taken", 0x3142, 0x42, 0, true},
		{"skip equal immediate not taken", 0x3142, 0x41, 0, false},
		{"skip not equal immediate taken", 0x4142, 0x41, 0, true},
		{"skip not equal immediate not taken", 0x4142, 0x42, 0, false},
		{"skip equal register taken", 0x5120, 7, 7, true},
		{"skip equal register not taken", 0x5120, 7, 8, false},
		{"skip not equal register taken", 0x9120, 7, 8, true},
		{"skip not equal register not taken", 0x9120, 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[1] = tt.vx
			m.v[2] = tt.vy

			m.Step()
			expected := uint16(ProgramStart + 2)
			if tt.skipped {
				expected += 2
			}
			assert.Equal(t, expected, m.pc)
		})
	}
}

func TestExecute_LoadAddImmediate(t *testing.T) {
	m := newTestMachine(t, 0x63F0, 0x7320)
	m.v[FlagRegister] = 0x55

	m.Step()
	assert.Equal(t, uint8(0xF0), m.v[3])

	m.Step()
	assert.Equal(t, uint8(0x10), m.v[3])
	assert.Equal(t, uint8(0x55), m.v[FlagRegister])
}

func TestExecute_Arithmetic(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		vx, vy   uint8
		expected uint8
		flag     uint8
	}{
		{"assign", 0x8120, 0x11, 0x22, 0x22, 0xAA},
		{"or", 0x8121, 0xF0, 0x0F, 0xFF, 0xAA},
		{"and", 0x8122, 0xF3, 0x3F, 0x33, 0xAA},
		{"xor", 0x8123, 0xFF, 0x0F, 0xF0, 0xAA},
		{"add with carry", 0x8124, 0xFF, 0x01, 0x00, 1},
		{"add without carry", 0x8124, 0x10, 0x20, 0x30, 0},
		{"add reaching 255", 0x8124, 0xFE, 0x01, 0xFF, 0},
		{"subtract with borrow", 0x8125, 0x01, 0x02, 0xFF, 0},
		{"subtract without borrow", 0x8125, 0x05, 0x02, 0x03, 1},
		{"subtract equal", 0x8125, 0x05, 0x05, 0x00, 0},
		{"shift right odd", 0x8126, 0x03, 0, 0x01, 1},
		{"shift right even", 0x8126, 0x04, 0, 0x02, 0},
		{"reverse subtract", 0x8127, 0x02, 0x05, 0x03, 1},
		{"reverse subtract wraps", 0x8127, 0x05, 0x02, 0xFD, 0},
		{"shift left high bit", 0x812E, 0x81, 0, 0x02, 1},
		{"shift left no high bit", 0x812E, 0x11, 0, 0x22, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[1] = tt.vx
			m.v[2] = tt.vy
			m.v[FlagRegister] = 0xAA

			result := m.Step()
			assert.True(t, result.Fault == nil)
			assert.Equal(t, tt.expected, m.v[1])
			assert.Equal(t, tt.flag, m.v[FlagRegister])
		})
	}
}

func TestExecute_ShiftLeftLegacyFlag(t *testing.T) {
	m := New(log.NewTestLogger(t), WithQuirks(Quirks{LegacyShift: true}))
	assert.NoError(t, m.LoadProgram([]byte{0x81, 0x2E, 0x81, 0x2E}))

	// legacy behavior stores bit 4 of Vx, not the carried out bit 7
	m.v[1] = 0x90
	m.Step()
	assert.Equal(t, uint8(0x20), m.v[1])
	assert.Equal(t, uint8(0x10), m.v[FlagRegister])

	m.v[1] = 0x80
	m.Step()
	assert.Equal(t, uint8(0x00), m.v[1])
	assert.Equal(t, uint8(0x00), m.v[FlagRegister])
}

func TestExecute_ArithmeticFlagAliasing(t *testing.T) {
	// VF as destination keeps the result since the flag is written first
	m := newTestMachine(t, 0x8F14)
	m.v[FlagRegister] = 0x10
	m.v[1] = 0x02

	m.Step()
	assert.Equal(t, uint8(0x12), m.v[FlagRegister])
}

func TestExecute_ArithmeticUnknown(t *testing.T) {
	m := newTestMachine(t, 0x8128)
	m.v[1] = 0x11
	m.v[2] = 0x22

	result := m.Step()
	assert.True(t, errors.Is(result.Fault, ErrUnknownOpcode))
	assert.Equal(t, uint8(0x11), m.v[1])
	assert.Equal(t, uint8(0), m.v[FlagRegister])
	assert.Equal(t, uint16(ProgramStart+2), m.pc)
	assert.Equal(t, uint64(1), m.Stats().Faults)
}

func TestExecute_LoadIndex(t *testing.T) {
	m := newTestMachine(t, 0xA123)
	m.Step()
	assert.Equal(t, uint16(0x123), m.i)
}

func TestExecute_Random(t *testing.T) {
	m := New(log.NewTestLogger(t), WithRandom(func() uint8 { return 0xAB }))
	assert.NoError(t, m.LoadProgram([]byte{0xC5, 0x0F, 0xC6, 0xFF}))

	m.Step()
	assert.Equal(t, uint8(0x0B), m.v[5])
	m.Step()
	assert.Equal(t, uint8(0xAB), m.v[6])
}

func TestExecute_Draw(t *testing.T) {
	t.Run("collision on second draw", func(t *testing.T) {
		m := newTestMachine(t, 0xD011, 0xD011)
		m.i = 0x300
		m.memory[0x300] = 0xFF
		m.v[0] = 10
		m.v[1] = 5

		m.Step()
		assert.Equal(t, uint8(0), m.v[FlagRegister])
		for x := 10; x < 18; x++ {
			assert.Equal(t, byte(1), m.display[5*DisplayWidth+x])
		}

		m.Step()
		assert.Equal(t, uint8(1), m.v[FlagRegister])
		assert.Equal(t, [DisplaySize]byte{}, m.display)
	})

	t.Run("glyph sprite", func(t *testing.T) {
		m := newTestMachine(t, 0xD005)
		m.i = FontAddress // glyph 0

		m.Step()
		row := func(y int) []byte {
			return m.display[y*DisplayWidth : y*DisplayWidth+4]
		}
		assert.Equal(t, []byte{1, 1, 1, 1}, row(0))
		assert.Equal(t, []byte{1, 0, 0, 1}, row(1))
		assert.Equal(t, []byte{1, 1, 1, 1}, row(4))
		assert.Equal(t, byte(0), m.display[5*DisplayWidth])
	})

	t.Run("start position wraps", func(t *testing.T) {
		m := newTestMachine(t, 0xD011)
		m.i = 0x300
		m.memory[0x300] = 0x80
		m.v[0] = DisplayWidth + 3
		m.v[1] = DisplayHeight + 2

		m.Step()
		assert.Equal(t, byte(1), m.display[2*DisplayWidth+3])
	})

	t.Run("clipped at edges", func(t *testing.T) {
		m := newTestMachine(t, 0xD013)
		m.i = 0x300
		m.memory[0x300] = 0xFF
		m.memory[0x301] = 0xFF
		m.memory[0x302] = 0xFF
		m.v[0] = DisplayWidth - 2
		m.v[1] = DisplayHeight - 1

		result := m.Step()
		assert.True(t, result.Fault == nil)

		lit := 0
		for _, cell := range m.display {
			lit += int(cell)
		}
		assert.Equal(t, 2, lit)
		assert.Equal(t, byte(1), m.display[DisplaySize-1])
		assert.Equal(t, byte(1), m.display[DisplaySize-2])
		assert.Equal(t, byte(0), m.display[0])
	})

	t.Run("sprite past end of memory", func(t *testing.T) {
		m := newTestMachine(t, 0xD013)
		m.i = MaxAddress
		m.memory[MaxAddress] = 0x80

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrAddressOutOfRange))
		assert.Equal(t, byte(1), m.display[0])
	})

	t.Run("zero height", func(t *testing.T) {
		m := newTestMachine(t, 0xD010)
		m.v[FlagRegister] = 1

		m.Step()
		assert.Equal(t, uint8(0), m.v[FlagRegister])
		assert.Equal(t, [DisplaySize]byte{}, m.display)
	})
}

func TestExecute_KeySkip(t *testing.T) {
	tests := []struct {
		name    string
		opcode  uint16
		pressed bool
		skipped bool
	}{
		{"skip pressed with key down", 0xE39E, true, true},
		{"skip pressed with key up", 0xE39E, false, false},
		{"skip not pressed with key down", 0xE3A1, true, false},
		{"skip not pressed with key up", 0xE3A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.opcode)
			m.v[3] = 0xC
			assert.NoError(t, m.SetKey(0xC, tt.pressed))

			m.Step()
			expected := uint16(ProgramStart + 2)
			if tt.skipped {
				expected += 2
			}
			assert.Equal(t, expected, m.pc)
		})
	}

	t.Run("key out of range", func(t *testing.T) {
		m := newTestMachine(t, 0xE39E)
		m.v[3] = 0x10

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrKeyOutOfRange))
		assert.Equal(t, uint16(ProgramStart+2), m.pc)
	})

	t.Run("undefined sub-opcode", func(t *testing.T) {
		m := newTestMachine(t, 0xE312)

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrUnknownOpcode))
	})
}

func TestExecute_WaitKey(t *testing.T) {
	m := newTestMachine(t, 0xF50A)

	m.Step()
	assert.Equal(t, uint16(ProgramStart), m.pc)
	m.Step()
	assert.Equal(t, uint16(ProgramStart), m.pc)

	assert.NoError(t, m.SetKey(0xB, true))
	assert.NoError(t, m.SetKey(0x7, true))
	m.Step()
	assert.Equal(t, uint8(0x7), m.v[5])
	assert.Equal(t, uint16(ProgramStart+2), m.pc)
}

func TestExecute_WaitKeyTimersRun(t *testing.T) {
	m := newTestMachine(t, 0xF50A)
	m.delayTimer = 2

	m.Step()
	m.Step()
	assert.Equal(t, uint8(0), m.delayTimer)
}

func TestExecute_Misc(t *testing.T) {
	t.Run("glyph address", func(t *testing.T) {
		m := newTestMachine(t, 0xF129)
		m.v[1] = 0xA

		m.Step()
		assert.Equal(t, uint16(FontAddress+5*0xA), m.i)
	})

	t.Run("glyph address of value above F", func(t *testing.T) {
		m := newTestMachine(t, 0xF129)
		m.v[1] = 0x1F

		m.Step()
		assert.Equal(t, uint16(FontAddress+5*0x1F), m.i)
	})

	t.Run("bcd", func(t *testing.T) {
		m := newTestMachine(t, 0xF233)
		m.v[2] = 234
		m.i = 0x300

		m.Step()
		assert.Equal(t, byte(2), m.memory[0x300])
		assert.Equal(t, byte(3), m.memory[0x301])
		assert.Equal(t, byte(4), m.memory[0x302])
	})

	t.Run("bcd past end of memory", func(t *testing.T) {
		m := newTestMachine(t, 0xF233)
		m.v[2] = 234
		m.i = MaxAddress - 1

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrAddressOutOfRange))
		assert.Equal(t, byte(0), m.memory[MaxAddress-1])
		assert.Equal(t, byte(0), m.memory[MaxAddress])
	})

	t.Run("store and load registers", func(t *testing.T) {
		m := newTestMachine(t, 0xF255, 0xF265)
		m.i = 0x400
		m.v[0], m.v[1], m.v[2], m.v[3] = 1, 2, 3, 4

		m.Step()
		assert.Equal(t, []byte{1, 2, 3, 0}, m.memory[0x400:0x404])
		assert.Equal(t, uint16(0x400), m.i)

		m.v = [NumRegisters]uint8{}
		m.Step()
		assert.Equal(t, uint8(1), m.v[0])
		assert.Equal(t, uint8(3), m.v[2])
		assert.Equal(t, uint8(0), m.v[3])
		assert.Equal(t, uint16(0x400), m.i)
	})

	t.Run("store past end of memory", func(t *testing.T) {
		m := newTestMachine(t, 0xFF55)
		m.i = MaxAddress - 3
		m.v[0] = 0x77

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrAddressOutOfRange))
		assert.Equal(t, byte(0), m.memory[MaxAddress-3])
	})

	t.Run("add to index", func(t *testing.T) {
		m := newTestMachine(t, 0xF31E)
		m.i = 0xFFE
		m.v[3] = 0x05

		m.Step()
		assert.Equal(t, uint16(0x1003), m.i)
		assert.Equal(t, uint8(0), m.v[FlagRegister])
	})

	t.Run("timers", func(t *testing.T) {
		m := newTestMachine(t, 0xF415, 0xF418)
		m.v[4] = 10

		m.Step()
		assert.Equal(t, uint8(9), m.delayTimer)
		m.Step()
		assert.Equal(t, uint8(8), m.delayTimer)
		assert.Equal(t, uint8(9), m.soundTimer)
	})

	t.Run("undefined sub-opcode", func(t *testing.T) {
		m := newTestMachine(t, 0xF1FF)
		m.v[1] = 0x42

		result := m.Step()
		assert.True(t, errors.Is(result.Fault, ErrUnknownOpcode))
		assert.Equal(t, uint8(0x42), m.v[1])
	})
}

func TestExecute_UnknownInstruction(t *testing.T) {
	m := newTestMachine(t)

	err := m.execute(Unknown{Opcode: 0xFFFF})
	assert.True(t, errors.Is(err, ErrUnknownOpcode))
}
