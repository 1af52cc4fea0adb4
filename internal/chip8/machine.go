package chip8

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/retroenv/retrogolib/log"
)

// Machine is a CHIP-8 interpreter. It exclusively owns all machine state,
// a zero Machine is not usable, use New.
type Machine struct {
	logger *log.Logger
	quirks Quirks
	random func() uint8

	memory [MemorySize]byte
	v      [NumRegisters]uint8
	i      uint16 // index register
	pc     uint16 // program counter

	stack [StackDepth]uint16
	sp    uint8 // number of used stack entries

	delayTimer uint8
	soundTimer uint8

	keys    [NumKeys]bool
	display [DisplaySize]byte
	dirty   bool // display changed since the last PollDisplayChanged

	stats Stats
}

// Quirks selects behavior variants that differ between interpreters.
type Quirks struct {
	// LegacyShift sets VF to Vx & 0x10 before a left shift instead of the
	// shifted out high bit. The flag is stored as 0x10 or 0, not as 1 or 0.
	LegacyShift bool
}

// Stats contains execution counters.
type Stats struct {
	Cycles uint64
	Beeps  uint64
	Faults uint64
}

// State is a snapshot of the CPU registers, used for debug output.
type State struct {
	V          [NumRegisters]uint8
	I          uint16
	PC         uint16
	SP         uint8
	Stack      [StackDepth]uint16
	DelayTimer uint8
	SoundTimer uint8
}

// String returns a multi line dump of the registers and the used stack entries.
func (s State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC=$%03X I=$%03X SP=%d DT=$%02X ST=$%02X\n", s.PC, s.I, s.SP, s.DelayTimer, s.SoundTimer)

	for i, value := range s.V {
		fmt.Fprintf(&b, "V%X=$%02X", i, value)
		if i%8 == 7 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
	}

	if s.SP > 0 {
		b.WriteString("Stack:")
		for _, address := range s.Stack[:s.SP] {
			fmt.Fprintf(&b, " $%03X", address)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// StepResult describes the outcome of a single cycle.
type StepResult struct {
	PC          uint16      // address the opcode was fetched from
	Opcode      uint16      // fetched opcode, 0 if the fetch faulted
	Instruction Instruction // decoded instruction, nil if the fetch faulted
	Beep        bool        // the sound timer expired in this cycle
	Fault       *Fault      // non-fatal execution error, nil if none occurred
}

// Option configures a machine.
type Option func(*Machine)

// WithQuirks sets the quirks to use.
func WithQuirks(quirks Quirks) Option {
	return func(m *Machine) {
		m.quirks = quirks
	}
}

// WithRandom sets the source of random bytes used by the CXKK instruction.
func WithRandom(random func() uint8) Option {
	return func(m *Machine) {
		m.random = random
	}
}

// New returns a new machine with the glyph set loaded and the program counter
// pointing at ProgramStart.
func New(logger *log.Logger, options ...Option) *Machine {
	m := &Machine{
		logger: logger,
		random: randomByte,
	}
	for _, option := range options {
		option(m)
	}
	m.Reset()
	return m
}

// Reset restores the state of a freshly created machine. Quirks, the random
// source and the statistics are kept.
func (m *Machine) Reset() {
	m.memory = [MemorySize]byte{}
	copy(m.memory[FontAddress:], font[:])

	m.v = [NumRegisters]uint8{}
	m.i = 0
	m.pc = ProgramStart
	m.stack = [StackDepth]uint16{}
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.keys = [NumKeys]bool{}
	m.display = [DisplaySize]byte{}
	m.dirty = true
}

// LoadProgram copies the program into memory starting at ProgramStart.
// The previous program area is cleared. Programs larger than MaxProgramSize
// are rejected without modifying memory.
func (m *Machine) LoadProgram(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, maximum is %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	clear(m.memory[ProgramStart:])
	copy(m.memory[ProgramStart:], program)

	m.logger.Debug("Program loaded",
		log.Int("size", len(program)),
		log.Hex("address", uint16(ProgramStart)))
	return nil
}

// SetKey sets the pressed state of the key with the given index 0-F.
func (m *Machine) SetKey(key int, pressed bool) error {
	if key < 0 || key >= NumKeys {
		return fmt.Errorf("%w: %d", ErrInvalidKey, key)
	}
	m.keys[key] = pressed
	return nil
}

// Display returns the framebuffer, DisplayWidth*DisplayHeight cells of 0 or 1
// in row-major order. The returned slice is a view into the machine and must
// not be modified.
func (m *Machine) Display() []byte {
	return m.display[:]
}

// PollDisplayChanged returns whether the display was cleared or drawn to since
// the last call.
func (m *Machine) PollDisplayChanged() bool {
	changed := m.dirty
	m.dirty = false
	return changed
}

// State returns a snapshot of the registers.
func (m *Machine) State() State {
	return State{
		V:          m.v,
		I:          m.i,
		PC:         m.pc,
		SP:         m.sp,
		Stack:      m.stack,
		DelayTimer: m.delayTimer,
		SoundTimer: m.soundTimer,
	}
}

// Stats returns the execution counters.
func (m *Machine) Stats() Stats {
	return m.stats
}

// ReadMemory returns the byte at the given address.
func (m *Machine) ReadMemory(address uint16) (byte, error) {
	if address > MaxAddress {
		return 0, fmt.Errorf("%w: $%04X", ErrAddressOutOfRange, address)
	}
	return m.memory[address], nil
}

// Step executes one fetch-decode-execute cycle and decrements the timers.
func (m *Machine) Step() StepResult {
	m.stats.Cycles++
	result := StepResult{PC: m.pc}

	opcode, err := m.fetch()
	if err != nil {
		result.Fault = m.fault(result.PC, 0, err)
	} else {
		result.Opcode = opcode
		result.Instruction = Decode(opcode)
		m.pc += opcodeSize

		if err := m.execute(result.Instruction); err != nil {
			result.Fault = m.fault(result.PC, opcode, err)
		}
	}

	result.Beep = m.tickTimers()
	return result
}

// fetch reads the big-endian opcode at the program counter.
func (m *Machine) fetch() (uint16, error) {
	if m.pc >= MaxAddress {
		return 0, fmt.Errorf("%w: fetch at $%04X", ErrAddressOutOfRange, m.pc)
	}
	return uint16(m.memory[m.pc])<<8 | uint16(m.memory[m.pc+1]), nil
}

// tickTimers decrements both timers and returns whether the sound timer expired.
func (m *Machine) tickTimers() bool {
	if m.delayTimer > 0 {
		m.delayTimer--
	}

	beep := false
	if m.soundTimer > 0 {
		beep = m.soundTimer == 1
		m.soundTimer--
	}
	if beep {
		m.stats.Beeps++
	}
	return beep
}

func (m *Machine) fault(pc, opcode uint16, err error) *Fault {
	m.stats.Faults++
	m.logger.Debug("Execution fault",
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.Err(err))
	return &Fault{PC: pc, Opcode: opcode, Err: err}
}

func randomByte() uint8 {
	return uint8(rand.IntN(256))
}
