// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/secure32/cpu"
	"github.com/ezrec/secure32/internal"
)

// Stage is the pipeline stage marker.
//
//go:generate go tool stringer -linecomment -type=Stage
type Stage int

const (
	STAGE_IDLE    = Stage(0) // IDLE
	STAGE_FETCH   = Stage(1) // FETCH
	STAGE_DECODE  = Stage(2) // DECODE
	STAGE_EXECUTE = Stage(3) // EXECUTE
	STAGE_HALTED  = Stage(4) // HALTED
)

// Emulator state. CPU + staged execution controller.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently loaded program listing.
	Display  Display      // Optional state and notice receiver.

	Stage   Stage         // Stage last entered.
	Running bool          // Set while the program can make progress.
	Clock   bool          // Set while cycles follow each other continuously.
	Paused  bool          // Set to withhold the next stage.
	Trace   []string      // Executed instructions and faults.
	Fault   *cpu.Fault    // Fault that terminated the program, if any.
	Delay   time.Duration // Wall clock delay between stages.

	next Stage    // Stage scheduled by the last advance, or STAGE_IDLE.
	code cpu.Code // Instruction word of the current cycle.
}

// NewEmulator creates a new emulator.
func NewEmulator(config Config) (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(config.Cpu),
		Program: &cpu.Program{},
		Delay:   config.Delay(),
	}

	return
}

// Defines returns the assembler equates for a program run in the given mode.
func (emu *Emulator) Defines(mode cpu.Mode) iter.Seq2[string, string] {
	return internal.Concat2(emu.Cpu.Defines(), maps.All(map[string]string{
		"MODE":        fmt.Sprintf("%d", mode),
		"MODE_USER":   fmt.Sprintf("%d", cpu.MODE_USER),
		"MODE_KERNEL": fmt.Sprintf("%d", cpu.MODE_KERNEL),
	}))
}

// Load assembles a program and loads it in the given mode.
// On an assembler error the emulator state is unchanged.
func (emu *Emulator) Load(source io.Reader, mode cpu.Mode) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines(mode) {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		emu.notify(Notice{Kind: NOTICE_ASSEMBLER, Message: err.Error(), Err: err})
		return
	}

	return emu.LoadProgram(prog, mode)
}

// LoadProgram loads an assembled program, ready to FETCH at PC 0.
func (emu *Emulator) LoadProgram(prog *cpu.Program, mode cpu.Mode) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(prog.Codes(), prog.Lines(), mode)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Stage = STAGE_IDLE
	emu.Running = true
	emu.Clock = false
	emu.Paused = false
	emu.Trace = nil
	emu.Fault = nil
	emu.next = STAGE_IDLE
	emu.code = 0

	emu.refresh()

	return
}

// Reset returns to the empty IDLE state from any state.
func (emu *Emulator) Reset() {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	emu.Cpu.Reset()
	emu.Program = &cpu.Program{}
	emu.Stage = STAGE_IDLE
	emu.Running = false
	emu.Clock = false
	emu.Paused = false
	emu.Trace = nil
	emu.Fault = nil
	emu.next = STAGE_IDLE
	emu.code = 0

	emu.refresh()
}

// Step schedules exactly one FETCH, DECODE, EXECUTE cycle.
// A cycle interrupted by Pause restarts at FETCH of the same PC.
func (emu *Emulator) Step() {
	emu.Paused = false
	if !emu.Running {
		return
	}

	emu.Clock = false
	emu.next = STAGE_FETCH
}

// Run schedules cycles until the program halts, faults or is paused.
func (emu *Emulator) Run() {
	emu.Paused = false
	if !emu.Running {
		return
	}

	emu.Clock = true
	emu.next = STAGE_FETCH
}

// Pause withholds the next scheduled stage.
func (emu *Emulator) Pause() {
	emu.Paused = true
}

// SetSpeed sets the wall clock delay between stages, in milliseconds.
// Negative delays are treated as zero.
func (emu *Emulator) SetSpeed(delayMs int) {
	emu.Delay = time.Duration(max(delayMs, 0)) * time.Millisecond
}

// SetSlider sets the stage delay from a speed slider position.
func (emu *Emulator) SetSlider(position int) {
	emu.Delay = SliderDelay(position)
}

// Pending returns true if a stage advance is scheduled.
func (emu *Emulator) Pending() bool {
	return emu.next != STAGE_IDLE && emu.Running && !emu.Paused
}

// Advance enters the scheduled stage, and schedules the one after it.
// It returns false, and drops the scheduled stage, when paused or stopped.
func (emu *Emulator) Advance() (advanced bool) {
	stage := emu.next
	emu.next = STAGE_IDLE

	if stage == STAGE_IDLE || emu.Paused || !emu.Running {
		return
	}

	switch stage {
	case STAGE_FETCH:
		emu.fetch()
	case STAGE_DECODE:
		emu.decode()
	case STAGE_EXECUTE:
		emu.execute()
	}

	if emu.Verbose {
		log.Printf("emulator: %02d %v", emu.Cpu.Pc, emu.Stage)
	}

	emu.refresh()

	return true
}

func (emu *Emulator) fetch() {
	code, err := emu.Cpu.ReadInstructionAt(emu.Cpu.Pc)
	if errors.Is(err, cpu.ErrPcRange) {
		emu.halt()
		return
	}

	emu.code = code
	emu.Stage = STAGE_FETCH
	emu.next = STAGE_DECODE
}

func (emu *Emulator) decode() {
	emu.Stage = STAGE_DECODE
	emu.next = STAGE_EXECUTE

	if emu.Verbose {
		dec := emu.code.Decode()
		log.Printf("emulator: decode %v %v", dec.Format, emu.code)
	}
}

func (emu *Emulator) execute() {
	pc := emu.Cpu.Pc

	emu.Stage = STAGE_EXECUTE
	emu.Trace = append(emu.Trace, fmt.Sprintf("PC=%02d | %v", pc, emu.Cpu.Line(pc)))

	effect, err := emu.Cpu.ExecuteOne(emu.code)
	if err != nil {
		emu.fault(pc, err)
		return
	}

	if effect.Halt {
		emu.Trace = append(emu.Trace, "HALT")
		emu.halt()
		return
	}

	if emu.Clock {
		emu.next = STAGE_FETCH
	}
}

// halt is the normal termination.
func (emu *Emulator) halt() {
	emu.Stage = STAGE_HALTED
	emu.Running = false
	emu.Clock = false
	emu.next = STAGE_IDLE
}

// fault terminates the program and reports the fault.
func (emu *Emulator) fault(pc int, err error) {
	var fault *cpu.Fault
	if !errors.As(err, &fault) {
		fault = &cpu.Fault{Kind: cpu.FAULT_ILLEGAL_INSTRUCTION, Pc: pc, Code: emu.code, Err: err}
	}

	notice := Notice{Kind: NOTICE_FAULT, Message: fault.Message()}
	if fault.Security() {
		notice.Kind = NOTICE_SECURITY
		emu.Trace = append(emu.Trace, "SECURITY | "+fault.Message())
	} else {
		emu.Trace = append(emu.Trace, "FAULT | "+fault.Message())
	}

	emu.Fault = fault
	notice.Err = emu.Err()

	if emu.Verbose {
		log.Printf("emulator: %v", notice.Err)
	}

	emu.halt()
	emu.notify(notice)
}

// Err returns the fault that terminated the program, located in the source.
func (emu *Emulator) Err() (err error) {
	if emu.Fault == nil {
		return
	}

	if op := emu.Program.Debug(emu.Fault.Pc); op != nil {
		err = &ErrRuntime{LineNo: op.LineNo, Err: emu.Fault}
		return
	}

	err = emu.Fault
	return
}
