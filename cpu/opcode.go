package cpu

import (
	"fmt"
	"strconv"
	"strings"
)

// Instruction word layout. The opcode is always the top 6 bits; the
// remaining 26 bits depend on the format of the opcode.
//
//	R-type      | op:6 | rd:5  | rs1:5 | rs2:5 | -:11        |
//	I-type      | op:6 | rd:5  | -:5   | imm16               |
//	J-type      | op:6 | addr26                              |
//	Branch-type | op:6 | rs:5  | imm21                       |
//	No-operand  | op:6 | -:26                                |
const (
	OPCODE_SHIFT = 26
	OPCODE_MASK  = 0x3f
	RD_SHIFT     = 21
	RS1_SHIFT    = 16
	RS2_SHIFT    = 11
	REG_MASK     = 0x1f
	IMM16_MASK   = 0xffff
	IMM21_MASK   = 0x1fffff
	ADDR26_MASK  = 0x3ffffff
)

// CodeOp is an opcode value.
//
//go:generate go tool stringer -linecomment -type=CodeOp
type CodeOp int

const (
	OP_LOAD  = CodeOp(1)  // LOAD
	OP_STORE = CodeOp(2)  // STORE
	OP_ADD   = CodeOp(3)  // ADD
	OP_SUB   = CodeOp(4)  // SUB
	OP_JMP   = CodeOp(5)  // JMP
	OP_JGT   = CodeOp(6)  // JGT
	OP_JLT   = CodeOp(7)  // JLT
	OP_JEQ   = CodeOp(8)  // JEQ
	OP_HALT  = CodeOp(63) // HALT
)

// opMap maps mnemonics to opcodes.
var opMap = map[string]CodeOp{
	"LOAD":  OP_LOAD,
	"STORE": OP_STORE,
	"ADD":   OP_ADD,
	"SUB":   OP_SUB,
	"JMP":   OP_JMP,
	"JGT":   OP_JGT,
	"JLT":   OP_JLT,
	"JEQ":   OP_JEQ,
	"HALT":  OP_HALT,
}

// OpcodeOf returns the opcode of a mnemonic.
func OpcodeOf(mnemonic string) (op CodeOp, ok bool) {
	op, ok = opMap[strings.ToUpper(mnemonic)]
	return
}

// Valid returns true if the opcode is in the opcode table.
func (op CodeOp) Valid() bool {
	return op.Format() != FORMAT_INVALID
}

// Format returns the field layout used by the opcode.
func (op CodeOp) Format() CodeFormat {
	switch op {
	case OP_ADD, OP_SUB:
		return FORMAT_R
	case OP_LOAD, OP_STORE:
		return FORMAT_I
	case OP_JMP:
		return FORMAT_J
	case OP_JGT, OP_JLT, OP_JEQ:
		return FORMAT_B
	case OP_HALT:
		return FORMAT_N
	}

	return FORMAT_INVALID
}

// CodeFormat is an instruction field layout.
//
//go:generate go tool stringer -linecomment -type=CodeFormat
type CodeFormat int

const (
	FORMAT_INVALID = CodeFormat(0) // invalid
	FORMAT_R       = CodeFormat(1) // R-type
	FORMAT_I       = CodeFormat(2) // I-type
	FORMAT_J       = CodeFormat(3) // J-type
	FORMAT_B       = CodeFormat(4) // Branch-type
	FORMAT_N       = CodeFormat(5) // No-operand
)

// Operands returns the number of assembly operands of the format.
func (format CodeFormat) Operands() int {
	switch format {
	case FORMAT_R:
		return 3
	case FORMAT_I, FORMAT_B:
		return 2
	case FORMAT_J:
		return 1
	}

	return 0
}

// ImmediateMask returns the width mask of the immediate field.
func (format CodeFormat) ImmediateMask() uint32 {
	switch format {
	case FORMAT_I:
		return IMM16_MASK
	case FORMAT_J:
		return ADDR26_MASK
	case FORMAT_B:
		return IMM21_MASK
	}

	return 0
}

// CodeReg is a register index.
type CodeReg int

const (
	REG_R0 = CodeReg(0) // R0
	REG_R1 = CodeReg(1) // R1
	REG_R2 = CodeReg(2) // R2
	REG_R3 = CodeReg(3) // R3
	REG_R4 = CodeReg(4) // R4
	REG_R5 = CodeReg(5) // R5
	REG_R6 = CodeReg(6) // R6
	REG_R7 = CodeReg(7) // R7

	REGISTER_COUNT = 8
)

// regMap maps register names to register indexes.
var regMap = map[string]CodeReg{
	"R0": REG_R0,
	"R1": REG_R1,
	"R2": REG_R2,
	"R3": REG_R3,
	"R4": REG_R4,
	"R5": REG_R5,
	"R6": REG_R6,
	"R7": REG_R7,
}

// RegisterOf returns the register index of a register name.
func RegisterOf(name string) (reg CodeReg, ok bool) {
	reg, ok = regMap[strings.ToUpper(name)]
	return
}

// Valid returns true if the register exists in the register file.
func (reg CodeReg) Valid() bool {
	return reg >= 0 && reg < REGISTER_COUNT
}

func (reg CodeReg) String() string {
	return fmt.Sprintf("R%d", int(reg))
}

// Code is a single 32-bit instruction word.
type Code uint32

// MakeCode creates an instruction word with only the opcode set.
func MakeCode(op CodeOp) Code {
	return Code((uint32(op) & OPCODE_MASK) << OPCODE_SHIFT)
}

// MakeCodeR creates an R-type instruction.
func MakeCodeR(op CodeOp, rd, rs1, rs2 CodeReg) Code {
	return MakeCode(op) |
		Code((uint32(rd)&REG_MASK)<<RD_SHIFT) |
		Code((uint32(rs1)&REG_MASK)<<RS1_SHIFT) |
		Code((uint32(rs2)&REG_MASK)<<RS2_SHIFT)
}

// MakeCodeI creates an I-type (load/store) instruction.
func MakeCodeI(op CodeOp, reg CodeReg, imm uint32) Code {
	return MakeCode(op) |
		Code((uint32(reg)&REG_MASK)<<RD_SHIFT) |
		Code(imm&IMM16_MASK)
}

// MakeCodeJ creates a J-type instruction.
func MakeCodeJ(op CodeOp, addr uint32) Code {
	return MakeCode(op) | Code(addr&ADDR26_MASK)
}

// MakeCodeB creates a Branch-type instruction.
func MakeCodeB(op CodeOp, rs CodeReg, imm uint32) Code {
	return MakeCode(op) |
		Code((uint32(rs)&REG_MASK)<<RD_SHIFT) |
		Code(imm&IMM21_MASK)
}

// Opcode returns the opcode field.
func (code Code) Opcode() CodeOp {
	return CodeOp((uint32(code) >> OPCODE_SHIFT) & OPCODE_MASK)
}

// Rd returns the register in bits 25:21.
// This is rd for R-type, rd or rs1 for I-type and rs for Branch-type.
func (code Code) Rd() CodeReg {
	return CodeReg((uint32(code) >> RD_SHIFT) & REG_MASK)
}

// Rs1 returns the register in bits 20:16.
func (code Code) Rs1() CodeReg {
	return CodeReg((uint32(code) >> RS1_SHIFT) & REG_MASK)
}

// Rs2 returns the register in bits 15:11.
func (code Code) Rs2() CodeReg {
	return CodeReg((uint32(code) >> RS2_SHIFT) & REG_MASK)
}

// Immediate returns the immediate field for the format of the opcode.
func (code Code) Immediate() uint32 {
	return uint32(code) & code.Opcode().Format().ImmediateMask()
}

// Link merges a resolved address into the immediate field.
func (code Code) Link(addr uint32) Code {
	return code | Code(addr&code.Opcode().Format().ImmediateMask())
}

// Decoded is the field view of an instruction word.
// Fields not used by the format are zero.
type Decoded struct {
	Opcode CodeOp
	Format CodeFormat
	Rd     CodeReg
	Rs1    CodeReg
	Rs2    CodeReg
	Imm    uint32
}

// Decode splits an instruction word into its fields.
// Decode is total; an unknown opcode yields FORMAT_INVALID and no fields.
func (code Code) Decode() (dec Decoded) {
	dec.Opcode = code.Opcode()
	dec.Format = dec.Opcode.Format()

	switch dec.Format {
	case FORMAT_R:
		dec.Rd = code.Rd()
		dec.Rs1 = code.Rs1()
		dec.Rs2 = code.Rs2()
	case FORMAT_I, FORMAT_B:
		dec.Rd = code.Rd()
		dec.Imm = code.Immediate()
	case FORMAT_J:
		dec.Imm = code.Immediate()
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() string {
	dec := code.Decode()

	switch dec.Format {
	case FORMAT_R:
		return fmt.Sprintf("%v %v, %v, %v", dec.Opcode, dec.Rd, dec.Rs1, dec.Rs2)
	case FORMAT_I, FORMAT_B:
		return fmt.Sprintf("%v %v, %d", dec.Opcode, dec.Rd, dec.Imm)
	case FORMAT_J:
		return fmt.Sprintf("%v %d", dec.Opcode, dec.Imm)
	case FORMAT_N:
		return dec.Opcode.String()
	}

	return fmt.Sprintf(".word 0x%08x", uint32(code))
}

// parseNumber parses a numeric literal with an optional base prefix.
func parseNumber(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
	}
	return
}

// Encode assembles a mnemonic and its operands into an instruction word.
func Encode(mnemonic string, operands ...string) (code Code, err error) {
	return encode(mnemonic, operands, parseNumber)
}

// encode assembles a mnemonic, resolving immediates with the value function.
func encode(mnemonic string, operands []string, value func(word string) (int64, error)) (code Code, err error) {
	op, ok := OpcodeOf(mnemonic)
	if !ok {
		err = ErrMnemonic(mnemonic)
		return
	}

	format := op.Format()
	if len(operands) != format.Operands() {
		err = fmt.Errorf("%w: %w", ErrOperandMalformed, ErrOperandCount{Mnemonic: op.String(), Want: format.Operands(), Got: len(operands)})
		return
	}

	regs := make([]CodeReg, 0, 3)
	register := func(word string) (ok bool) {
		reg, ok := RegisterOf(word)
		if !ok {
			err = ErrRegister(word)
			return
		}
		regs = append(regs, reg)
		return
	}

	var imm int64
	immediate := func(word string) (ok bool) {
		imm, err = value(word)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrOperandMalformed, err)
			return
		}
		return true
	}

	switch format {
	case FORMAT_R:
		if register(operands[0]) && register(operands[1]) && register(operands[2]) {
			code = MakeCodeR(op, regs[0], regs[1], regs[2])
		}
	case FORMAT_I:
		if register(operands[0]) && immediate(operands[1]) {
			code = MakeCodeI(op, regs[0], uint32(imm))
		}
	case FORMAT_J:
		if immediate(operands[0]) {
			code = MakeCodeJ(op, uint32(imm))
		}
	case FORMAT_B:
		if register(operands[0]) && immediate(operands[1]) {
			code = MakeCodeB(op, regs[0], uint32(imm))
		}
	case FORMAT_N:
		code = MakeCode(op)
	}

	return
}
