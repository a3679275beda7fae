package cpu

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		mnemonic string
		operands []string
		code     Code
	}){
		{"LOAD", []string{"R1", "10"}, 0x0420_000a},
		{"LOAD", []string{"R2", "20"}, 0x0440_0014},
		{"LOAD", []string{"R1", "-1"}, 0x0420_ffff},
		{"STORE", []string{"R0", "5"}, 0x0800_0005},
		{"ADD", []string{"R3", "R1", "R2"}, 0x0c61_1000},
		{"SUB", []string{"R7", "R7", "R7"}, 0x10e7_3800},
		{"JMP", []string{"3"}, 0x1400_0003},
		{"JGT", []string{"R1", "7"}, 0x1820_0007},
		{"JLT", []string{"R7", "1"}, 0x1ce0_0001},
		{"JEQ", []string{"R2", "0"}, 0x2040_0000},
		{"HALT", nil, 0xfc00_0000},
		{"halt", nil, 0xfc00_0000},
		{"load", []string{"r1", "0x10"}, 0x0420_0010},
	}

	for _, entry := range table {
		code, err := Encode(entry.mnemonic, entry.operands...)
		assert.NoError(err, entry.mnemonic)
		assert.Equal(entry.code, code, "%v %v", entry.mnemonic, entry.operands)
	}
}

func TestEncodeMasksImmediates(t *testing.T) {
	assert := assert.New(t)

	code, err := Encode("JMP", "-1")
	assert.NoError(err)
	assert.Equal(uint32(ADDR26_MASK), code.Immediate())
	assert.Equal(OP_JMP, code.Opcode())

	code, err = Encode("JEQ", "R1", "-1")
	assert.NoError(err)
	assert.Equal(uint32(IMM21_MASK), code.Immediate())
	assert.Equal(REG_R1, code.Rd())

	code, err = Encode("STORE", "R2", "0x12345")
	assert.NoError(err)
	assert.Equal(uint32(0x2345), code.Immediate())
	assert.Equal(REG_R2, code.Rd())
}

func TestEncodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := Encode("MUL", "R1", "R2", "R3")
	assert.ErrorIs(err, ErrInstructionUnknown)
	assert.Equal("illegal instruction: MUL", err.Error())

	_, err = Encode("ADD", "R1", "R2", "R8")
	assert.ErrorIs(err, ErrRegisterUnknown)
	assert.Contains(err.Error(), "R8")

	_, err = Encode("ADD", "R1", "R2")
	assert.ErrorIs(err, ErrOperandMalformed)
	var count ErrOperandCount
	assert.True(errors.As(err, &count))
	assert.Equal(3, count.Want)
	assert.Equal(2, count.Got)

	_, err = Encode("LOAD", "R1", "ten")
	assert.ErrorIs(err, ErrOperandMalformed)
	var number ErrParseNumber
	assert.True(errors.As(err, &number))
	assert.Equal(ErrParseNumber("ten"), number)

	_, err = Encode("HALT", "R1")
	assert.ErrorIs(err, ErrOperandMalformed)

	_, err = Encode("JMP")
	assert.ErrorIs(err, ErrOperandMalformed)
}

func TestDecodeRoundTrip(t *testing.T) {
	assert := assert.New(t)

	for name, op := range opMap {
		format := op.Format()
		for reg := REG_R0; reg < REGISTER_COUNT; reg++ {
			var operands []string
			expected := Decoded{Opcode: op, Format: format}
			imm := uint32(reg)*1000 + 1
			switch format {
			case FORMAT_R:
				rs1 := (reg + 1) % REGISTER_COUNT
				rs2 := (reg + 2) % REGISTER_COUNT
				operands = []string{reg.String(), rs1.String(), rs2.String()}
				expected.Rd, expected.Rs1, expected.Rs2 = reg, rs1, rs2
			case FORMAT_I, FORMAT_B:
				operands = []string{reg.String(), fmt.Sprintf("%d", imm)}
				expected.Rd, expected.Imm = reg, imm
			case FORMAT_J:
				operands = []string{fmt.Sprintf("%d", imm)}
				expected.Imm = imm
			}

			code, err := Encode(name, operands...)
			assert.NoError(err, name)
			assert.Equal(expected, code.Decode(), "%v %v", name, operands)
		}
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	assert := assert.New(t)

	for op := CodeOp(0); op <= OPCODE_MASK; op++ {
		code := MakeCode(op) | 0x03ff_ffff
		dec := code.Decode()
		assert.Equal(op, dec.Opcode)
		if op.Valid() {
			continue
		}
		assert.Equal(FORMAT_INVALID, dec.Format)
		assert.Equal(Decoded{Opcode: op}, dec)
		assert.Equal(fmt.Sprintf(".word 0x%08x", uint32(code)), code.String())
	}
}

func TestEnumString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		value fmt.Stringer
		text  string
	}){
		{OP_LOAD, "LOAD"},
		{OP_JEQ, "JEQ"},
		{OP_HALT, "HALT"},
		{CodeOp(0), "CodeOp(0)"},
		{CodeOp(9), "CodeOp(9)"},
		{FORMAT_INVALID, "invalid"},
		{FORMAT_R, "R-type"},
		{FORMAT_B, "Branch-type"},
		{FORMAT_N, "No-operand"},
		{CodeFormat(6), "CodeFormat(6)"},
		{MODE_USER, "USER"},
		{MODE_KERNEL, "KERNEL"},
		{Mode(2), "Mode(2)"},
		{FAULT_PROTECTED_MEMORY, "protected memory"},
		{FAULT_MEMORY_RANGE, "memory range"},
		{FaultKind(-1), "FaultKind(-1)"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.value.String())
	}
}

func TestCodeString(t *testing.T) {
	assert := assert.New(t)

	table := []string{
		"LOAD R1, 10",
		"STORE R0, 5",
		"ADD R3, R1, R2",
		"SUB R4, R5, R6",
		"JMP 12",
		"JGT R1, 7",
		"JLT R2, 0",
		"JEQ R3, 1",
		"HALT",
	}

	for _, text := range table {
		codes, _, err := Assemble(text)
		assert.NoError(err, text)
		assert.Equal(text, codes[0].String())
	}
}

func TestCodeLink(t *testing.T) {
	assert := assert.New(t)

	code := MakeCodeB(OP_JGT, REG_R3, 0)
	assert.Equal(MakeCodeB(OP_JGT, REG_R3, 9), code.Link(9))

	code = MakeCodeJ(OP_JMP, 0)
	assert.Equal(MakeCodeJ(OP_JMP, 42), code.Link(42))

	halt := MakeCode(OP_HALT)
	assert.Equal(halt, halt.Link(42))
}
