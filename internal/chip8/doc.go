// Package chip8 implements the CHIP-8 interpreter core.
//
// # Machine Model
//
// The machine owns all of its state and is mutated only through its methods:
//   - 4KB of memory (0x000-MaxAddress), the hexadecimal glyph set is stored at FontAddress
//   - 16 general-purpose 8-bit registers V0-VF, VF doubles as carry/borrow/collision flag
//   - a 16-bit index register I and the program counter, which starts at ProgramStart
//   - a return stack of StackDepth entries
//   - delay and sound timers, decremented once per executed cycle
//   - 16 key flags written by the input collaborator
//   - a DisplayWidth x DisplayHeight monochrome framebuffer
//
// # Execution
//
// Step runs exactly one cycle: the opcode at PC is fetched, classified by Decode into one
// of the closed Instruction variants, PC is advanced by two and the instruction is executed.
// Timers are decremented afterwards and a beep is reported when the sound timer expires.
//
// Malformed programs never crash the interpreter. Unknown opcodes, stack misuse and memory
// accesses past MaxAddress are reported as a *Fault in the StepResult, the offending access
// is skipped and execution continues with the next cycle.
//
// # Usage Example
//
//	m := chip8.New(logger)
//	if err := m.LoadProgram(rom); err != nil {
//		return fmt.Errorf("loading program: %w", err)
//	}
//	for {
//		result := m.Step()
//		if result.Beep {
//			beeper.Beep()
//		}
//	}
package chip8
