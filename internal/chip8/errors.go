package chip8

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramTooLarge is returned when a program does not fit into memory after ProgramStart.
	ErrProgramTooLarge = errors.New("program too large")
	// ErrInvalidKey is returned when a key index outside of 0-F is set.
	ErrInvalidKey = errors.New("invalid key index")

	// ErrUnknownOpcode reports an opcode or sub-opcode without a defined meaning.
	ErrUnknownOpcode = errors.New("unknown opcode")
	// ErrStackOverflow reports a call with a full stack.
	ErrStackOverflow = errors.New("stack overflow")
	// ErrStackUnderflow reports a return with an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")
	// ErrAddressOutOfRange reports a memory access past MaxAddress.
	ErrAddressOutOfRange = errors.New("address out of range")
	// ErrKeyOutOfRange reports a key query for a register value above 0xF.
	ErrKeyOutOfRange = errors.New("key out of range")
)

// Fault is a non-fatal error that occurred while executing a single cycle.
// The machine skips the offending access and continues with the next cycle.
type Fault struct {
	PC     uint16 // address of the faulting instruction
	Opcode uint16
	Err    error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("opcode %04X at $%03X: %s", f.Opcode, f.PC, f.Err)
}

func (f *Fault) Unwrap() error {
	return f.Err
}
