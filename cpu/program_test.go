package cpu

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Line: "LOAD R0, 0x10", Words: []string{"LOAD", "R0", "0x10"},
				Code: MakeCodeI(OP_LOAD, REG_R0, 0x10)},
			{LineNo: 3, Line: "LOAD R1, 0x20", Words: []string{"LOAD", "R1", "0x20"},
				Code: MakeCodeI(OP_LOAD, REG_R1, 0x20)},
			{LineNo: 4, Line: "ADD R0, R0, R1", Words: []string{"ADD", "R0", "R0", "R1"},
				Code: MakeCodeR(OP_ADD, REG_R0, REG_R0, REG_R1)},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg)
	assert.Equal(1, dbg.LineNo)

	dbg = prog.Debug(1)
	assert.NotNil(dbg)
	assert.Equal(3, dbg.LineNo)

	dbg = prog.Debug(2)
	assert.NotNil(dbg)
	assert.Equal(4, dbg.LineNo)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Line: "HALT", Words: []string{"HALT"}, Code: MakeCode(OP_HALT)},
		},
	}

	assert.Nil(prog.Debug(-1))
	assert.Nil(prog.Debug(1))
	assert.Nil((&Program{}).Debug(0))
}

func TestProgram_Output(t *testing.T) {
	assert := assert.New(t)

	prog, err := (&Assembler{}).Parse(bytes.NewBufferString("LOAD R1, 10\nADD R3, R1, R2 # sum\nHALT\n"))
	assert.NoError(err)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal([]Code{0x0420_000a, 0x0c61_1000, 0xfc00_0000}, prog.Codes())
	assert.Equal([]string{"LOAD R1, 10", "ADD R3, R1, R2", "HALT"}, prog.Lines())

	var hex bytes.Buffer
	assert.NoError(prog.WriteHex(&hex))
	assert.Equal("0x0420000a\n0x0c611000\n0xfc000000\n", hex.String())

	var listing bytes.Buffer
	assert.NoError(prog.WriteListing(&listing))
	assert.Equal(
		"00: 0420000a  LOAD R1, 10          ; LOAD R1, 10\n"+
			"01: 0c611000  ADD R3, R1, R2       ; ADD R3, R1, R2\n"+
			"02: fc000000  HALT                 ; HALT\n",
		listing.String())
}
