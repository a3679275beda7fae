package cpu

import (
	"fmt"
	"io"
)

// Opcode is a line of assembled code with its source location.
type Opcode struct {
	LineNo    int      // Source line number, 1-based.
	Line      string   // Source text without comments.
	Words     []string // Tokens of the instruction.
	Code      Code     // Encoded instruction word.
	LinkLabel string   // Label to merge into the immediate, if any.
}

// Program is an assembled program.
// Opcodes are in program counter order.
type Program struct {
	Opcodes []Opcode
}

// Codes returns the instruction words of the program.
func (prog *Program) Codes() (codes []Code) {
	codes = make([]Code, len(prog.Opcodes))
	for n, op := range prog.Opcodes {
		codes[n] = op.Code
	}

	return
}

// Lines returns the source text of each instruction word.
func (prog *Program) Lines() (lines []string) {
	lines = make([]string, len(prog.Opcodes))
	for n, op := range prog.Opcodes {
		lines[n] = op.Line
	}

	return
}

// Debug returns the opcode at a program counter, or nil.
func (prog *Program) Debug(pc int) *Opcode {
	if pc < 0 || pc >= len(prog.Opcodes) {
		return nil
	}

	return &prog.Opcodes[pc]
}

// WriteHex writes one hexadecimal word per line.
func (prog *Program) WriteHex(w io.Writer) (err error) {
	for _, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "0x%08x\n", uint32(op.Code))
		if err != nil {
			return
		}
	}

	return
}

// WriteListing writes the program counter, word, and source of each opcode.
func (prog *Program) WriteListing(w io.Writer) (err error) {
	for pc, op := range prog.Opcodes {
		_, err = fmt.Fprintf(w, "%02d: %08x  %-20v ; %v\n", pc, uint32(op.Code), op.Code.String(), op.Line)
		if err != nil {
			return
		}
	}

	return
}
