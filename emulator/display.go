package emulator

import (
	"slices"

	"github.com/ezrec/secure32/cpu"
)

// NoticeKind classifies display notifications.
//
//go:generate go tool stringer -linecomment -type=NoticeKind
type NoticeKind int

const (
	NOTICE_SECURITY  = NoticeKind(0) // Security Violation
	NOTICE_FAULT     = NoticeKind(1) // Fault
	NOTICE_ASSEMBLER = NoticeKind(2) // Assembler Error
)

// Notice is a blocking fault or error report for the display.
type Notice struct {
	Kind    NoticeKind
	Message string
	Err     error
}

// Snapshot is a read-only copy of the emulator state.
type Snapshot struct {
	Mode      cpu.Mode
	Registers [cpu.REGISTER_COUNT]int32
	Memory    []int32
	Pc        int
	Stage     Stage
	Running   bool
	Paused    bool
	LastWrite int // -1 when nothing was written.
	Ticks     int // Instructions executed since load.
	Trace     []string
	Lines     []string
	Fault     *cpu.Fault
}

// Display renders emulator state.
// Refresh is called after every state change, Notify for faults and errors.
type Display interface {
	Refresh(snap *Snapshot)
	Notify(notice Notice)
}

// Snapshot copies the current state.
func (emu *Emulator) Snapshot() (snap *Snapshot) {
	snap = &Snapshot{
		Mode:      emu.Cpu.Mode,
		Registers: emu.Cpu.Register,
		Memory:    slices.Clone(emu.Cpu.Memory),
		Pc:        emu.Cpu.Pc,
		Stage:     emu.Stage,
		Running:   emu.Running,
		Paused:    emu.Paused,
		LastWrite: emu.Cpu.LastWrite,
		Ticks:     emu.Cpu.Ticks,
		Trace:     slices.Clone(emu.Trace),
		Lines:     slices.Clone(emu.Cpu.Lines),
		Fault:     emu.Fault,
	}

	return
}

func (emu *Emulator) refresh() {
	if emu.Display == nil {
		return
	}

	emu.Display.Refresh(emu.Snapshot())
}

func (emu *Emulator) notify(notice Notice) {
	if emu.Display == nil {
		return
	}

	emu.Display.Notify(notice)
}
