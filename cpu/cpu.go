package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"strings"
)

// Mode is the privilege level a program runs at.
//
//go:generate go tool stringer -linecomment -type=Mode
type Mode int

const (
	MODE_USER   = Mode(0) // USER
	MODE_KERNEL = Mode(1) // KERNEL
)

// ParseMode parses USER or KERNEL, in any case.
func ParseMode(text string) (mode Mode, err error) {
	switch strings.ToUpper(text) {
	case "USER":
		mode = MODE_USER
	case "KERNEL":
		mode = MODE_KERNEL
	default:
		err = ErrModeInvalid(text)
	}
	return
}

// Effect reports the state changed by one executed instruction.
type Effect struct {
	Pc        int       // Program counter after the instruction.
	Registers []CodeReg // Registers written.
	Address   int       // Memory address written, or -1.
	Halt      bool      // Set when the instruction stopped the program.
}

// Cpu is the simulation context for the register machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Config    Config                // Memory configuration.
	Mode      Mode                  // Privilege level of the program.
	Pc        int                   // Index of the next instruction.
	Register  [REGISTER_COUNT]int32 // Register bank.
	Memory    []int32               // Data memory.
	LastWrite int                   // Last written memory address, or -1.
	Codes     []Code                // Program store.
	Lines     []string              // Source line of each program word.

	Ticks int // Executed instructions counter.
}

// NewCpu creates a new CPU with the configured data memory.
func NewCpu(config Config) (cpu *Cpu) {
	cpu = &Cpu{
		Config: config,
		Memory: make([]int32, config.MemorySize),
	}
	cpu.Reset()

	return
}

// Defines returns the CPU constants as assembler equates.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"MEMORY_SIZE":        fmt.Sprintf("%d", cpu.Config.MemorySize),
		"PROTECTED_BOUNDARY": fmt.Sprintf("%d", cpu.Config.ProtectedBoundary),
		"REGISTER_COUNT":     fmt.Sprintf("%d", REGISTER_COUNT),
	})
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 6s: %v\n", "mode", cpu.Mode)
	text += fmt.Sprintf("% 6s: %02d\n", "pc", cpu.Pc)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 6s: %d\n", CodeReg(n), val)
	}

	return
}

// Reset clears the program, registers and memory.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.clear()
	cpu.Codes = nil
	cpu.Lines = nil
	cpu.Mode = MODE_USER
}

// clear zeroes the machine state, keeping the program.
func (cpu *Cpu) clear() {
	clear(cpu.Register[:])
	clear(cpu.Memory)
	cpu.Pc = 0
	cpu.LastWrite = -1
	cpu.Ticks = 0
}

// Load replaces the program store and zeroes the machine state.
// codes and lines are index aligned.
func (cpu *Cpu) Load(codes []Code, lines []string, mode Mode) (err error) {
	if len(codes) != len(lines) {
		err = ErrProgramLines
		return
	}

	cpu.clear()
	cpu.Codes = codes
	cpu.Lines = lines
	cpu.Mode = mode

	if cpu.Verbose {
		log.Printf("cpu: load %d words, %v mode", len(codes), mode)
	}

	return
}

// ReadInstructionAt fetches a program word.
// ErrPcRange marks the normal end of the program.
func (cpu *Cpu) ReadInstructionAt(pc int) (code Code, err error) {
	if pc < 0 || pc >= len(cpu.Codes) {
		err = ErrPcRange
		return
	}

	code = cpu.Codes[pc]
	return
}

// Line returns the source line at a program counter.
func (cpu *Cpu) Line(pc int) string {
	if pc < 0 || pc >= len(cpu.Lines) {
		return ""
	}

	return cpu.Lines[pc]
}

// fault builds the fault for the instruction at the program counter.
func (cpu *Cpu) fault(kind FaultKind, code Code, err error) *Fault {
	return &Fault{Kind: kind, Pc: cpu.Pc, Code: code, Err: err}
}

// register checks that a decoded register exists.
func (cpu *Cpu) register(code Code, regs ...CodeReg) (err error) {
	for _, reg := range regs {
		if !reg.Valid() {
			return cpu.fault(FAULT_ILLEGAL_INSTRUCTION, code, fmt.Errorf("%w: %w", ErrIllegalInstruction, ErrRegisterInvalid))
		}
	}

	return
}

// ExecuteOne executes a single decoded instruction at the program counter.
// A faulting instruction leaves the CPU state untouched.
func (cpu *Cpu) ExecuteOne(code Code) (effect Effect, err error) {
	if cpu.Verbose {
		log.Printf("%02d: %08x %v", cpu.Pc, uint32(code), code)
	}

	dec := code.Decode()

	next_pc := cpu.Pc + 1
	effect.Address = -1

	switch dec.Opcode {
	case OP_LOAD:
		err = cpu.register(code, dec.Rd)
		if err != nil {
			return
		}
		cpu.Register[dec.Rd] = int32(dec.Imm)
		effect.Registers = []CodeReg{dec.Rd}
	case OP_STORE:
		err = cpu.register(code, dec.Rd)
		if err != nil {
			return
		}
		addr := int(dec.Imm)
		if cpu.Mode != MODE_KERNEL && addr < cpu.Config.ProtectedBoundary {
			err = cpu.fault(FAULT_PROTECTED_MEMORY, code, ErrProtectedMemory)
			return
		}
		if addr >= len(cpu.Memory) {
			err = cpu.fault(FAULT_MEMORY_RANGE, code, ErrMemoryRange)
			return
		}
		cpu.Memory[addr] = cpu.Register[dec.Rd]
		cpu.LastWrite = addr
		effect.Address = addr
	case OP_ADD, OP_SUB:
		err = cpu.register(code, dec.Rd, dec.Rs1, dec.Rs2)
		if err != nil {
			return
		}
		if dec.Opcode == OP_ADD {
			cpu.Register[dec.Rd] = cpu.Register[dec.Rs1] + cpu.Register[dec.Rs2]
		} else {
			cpu.Register[dec.Rd] = cpu.Register[dec.Rs1] - cpu.Register[dec.Rs2]
		}
		effect.Registers = []CodeReg{dec.Rd}
	case OP_JMP:
		next_pc = int(dec.Imm)
	case OP_JGT, OP_JLT, OP_JEQ:
		err = cpu.register(code, dec.Rd)
		if err != nil {
			return
		}
		val := cpu.Register[dec.Rd]
		var taken bool
		switch dec.Opcode {
		case OP_JGT:
			taken = val > 0
		case OP_JLT:
			taken = val < 0
		case OP_JEQ:
			taken = val == 0
		}
		if taken {
			next_pc = int(dec.Imm)
		}
	case OP_HALT:
		if cpu.Mode != MODE_KERNEL {
			err = cpu.fault(FAULT_PRIVILEGED_INSTRUCTION, code, ErrPrivilegedInstruction)
			return
		}
		// HALT does not advance.
		next_pc = cpu.Pc
		effect.Halt = true
	default:
		err = cpu.fault(FAULT_ILLEGAL_INSTRUCTION, code, ErrOpcode(code))
		return
	}

	cpu.Pc = next_pc
	cpu.Ticks += 1
	effect.Pc = next_pc

	return
}
