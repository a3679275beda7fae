package cpu

import (
	"errors"

	"github.com/ezrec/secure32/translate"
)

var f = translate.From

var (
	// Assembly errors
	ErrInstructionUnknown = errors.New(f("unknown instruction"))
	ErrRegisterUnknown    = errors.New(f("unknown register"))
	ErrOperandMalformed   = errors.New(f("malformed operand"))
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))

	// Cpu errors
	ErrPcRange               = errors.New(f("program counter out of range"))
	ErrProgramLines          = errors.New(f("program and source lines differ in length"))
	ErrProtectedMemory       = errors.New(f("USER cannot write protected memory"))
	ErrPrivilegedInstruction = errors.New(f("HALT is kernel-only"))
	ErrIllegalInstruction    = errors.New(f("illegal instruction"))
	ErrRegisterInvalid       = errors.New(f("register invalid"))
	ErrMemoryRange           = errors.New(f("memory address out of range"))

	// Configuration errors
	ErrMemorySize        = errors.New(f("memory size invalid"))
	ErrProtectedBoundary = errors.New(f("protected boundary invalid"))
)

// ErrMnemonic is an unknown instruction mnemonic.
type ErrMnemonic string

func (err ErrMnemonic) Error() string {
	return f("illegal instruction: %v", string(err))
}

func (err ErrMnemonic) Is(target error) bool {
	return target == ErrInstructionUnknown
}

// ErrRegister is an unknown register name.
type ErrRegister string

func (err ErrRegister) Error() string {
	return f("unknown register: %v", string(err))
}

func (err ErrRegister) Is(target error) bool {
	return target == ErrRegisterUnknown
}

// ErrOpcode is an instruction word with no valid decoding.
type ErrOpcode Code

func (eo ErrOpcode) Error() string {
	return f("illegal instruction 0x%08x", uint32(eo))
}

func (eo ErrOpcode) Is(target error) bool {
	return target == ErrIllegalInstruction
}

type ErrModeInvalid string

func (err ErrModeInvalid) Error() string {
	return f("'%v' is not USER or KERNEL", string(err))
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrLabelMissing string

func (err ErrLabelMissing) Error() string {
	return f("label %v missing", string(err))
}

func (err ErrLabelMissing) Is(target error) bool {
	return target == ErrOperandMalformed
}

// ErrOperandCount is a wrong number of operands for a mnemonic.
type ErrOperandCount struct {
	Mnemonic string
	Want     int
	Got      int
}

func (err ErrOperandCount) Error() string {
	return f("%v takes %d operands, not %d", err.Mnemonic, err.Want, err.Got)
}

// ErrSyntax locates an assembly error in the source text.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// FaultKind classifies runtime faults.
//
//go:generate go tool stringer -linecomment -type=FaultKind
type FaultKind int

const (
	FAULT_PROTECTED_MEMORY       = FaultKind(0) // protected memory
	FAULT_PRIVILEGED_INSTRUCTION = FaultKind(1) // privileged instruction
	FAULT_ILLEGAL_INSTRUCTION    = FaultKind(2) // illegal instruction
	FAULT_MEMORY_RANGE           = FaultKind(3) // memory range
)

// Fault is a runtime fault raised while executing an instruction.
// The faulting instruction has no effect on the CPU state.
type Fault struct {
	Kind FaultKind
	Pc   int
	Code Code
	Err  error
}

func (fault *Fault) Error() string {
	return f("pc %d %v", fault.Pc, fault.Err)
}

func (fault *Fault) Unwrap() error {
	return fault.Err
}

// Security returns true for privilege violations.
func (fault *Fault) Security() bool {
	return fault.Kind == FAULT_PROTECTED_MEMORY || fault.Kind == FAULT_PRIVILEGED_INSTRUCTION
}

// Message returns the fault description without its location.
func (fault *Fault) Message() string {
	return fault.Err.Error()
}
