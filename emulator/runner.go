package emulator

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/ezrec/secure32/cpu"
)

// Runner drives an Emulator from a single goroutine.
// Commands from other goroutines are applied between stages, and the
// scheduled stage is advanced after the emulator's delay.
type Runner struct {
	Verbose  bool
	Emulator *Emulator

	commands chan func(*Emulator)
}

// NewRunner creates a runner for an emulator.
func NewRunner(emu *Emulator) (run *Runner) {
	run = &Runner{
		Emulator: emu,
		commands: make(chan func(*Emulator)),
	}

	return
}

// Serve applies commands and advances stages until the context is done.
func (run *Runner) Serve(ctx context.Context) (err error) {
	emu := run.Emulator

	timer := time.NewTimer(emu.Delay)
	timer.Stop()
	armed := false

	defer timer.Stop()

	for {
		if armed && !emu.Pending() {
			timer.Stop()
			armed = false
		}
		if !armed && emu.Pending() {
			timer.Reset(emu.Delay)
			armed = true
		}

		select {
		case <-ctx.Done():
			if run.Verbose {
				log.Printf("runner: %v", ctx.Err())
			}
			err = ctx.Err()
			return
		case cmd := <-run.commands:
			cmd(emu)
		case <-timer.C:
			armed = false
			emu.Advance()
		}
	}
}

// Do applies a command on the serving goroutine.
// Do returns once the command has completed.
func (run *Runner) Do(ctx context.Context, cmd func(*Emulator)) (err error) {
	done := make(chan struct{})
	wrapped := func(emu *Emulator) {
		defer close(done)
		cmd(emu)
	}

	select {
	case run.commands <- wrapped:
	case <-ctx.Done():
		err = ctx.Err()
		return
	}

	<-done
	return
}

// Load assembles and loads a program.
func (run *Runner) Load(ctx context.Context, source io.Reader, mode cpu.Mode) (err error) {
	var loadErr error
	err = run.Do(ctx, func(emu *Emulator) {
		loadErr = emu.Load(source, mode)
	})
	if err != nil {
		return
	}

	err = loadErr
	return
}

// Step schedules one cycle.
func (run *Runner) Step(ctx context.Context) error {
	return run.Do(ctx, (*Emulator).Step)
}

// Run schedules continuous cycles.
func (run *Runner) Run(ctx context.Context) error {
	return run.Do(ctx, (*Emulator).Run)
}

// Pause withholds the next stage.
func (run *Runner) Pause(ctx context.Context) error {
	return run.Do(ctx, (*Emulator).Pause)
}

// Reset returns the emulator to IDLE.
func (run *Runner) Reset(ctx context.Context) error {
	return run.Do(ctx, (*Emulator).Reset)
}

// SetSpeed sets the stage delay in milliseconds.
func (run *Runner) SetSpeed(ctx context.Context, delayMs int) error {
	return run.Do(ctx, func(emu *Emulator) {
		emu.SetSpeed(delayMs)
	})
}

// SetSlider sets the stage delay from a speed slider position.
func (run *Runner) SetSlider(ctx context.Context, position int) error {
	return run.Do(ctx, func(emu *Emulator) {
		emu.SetSlider(position)
	})
}

// Snapshot copies the emulator state.
func (run *Runner) Snapshot(ctx context.Context) (snap *Snapshot, err error) {
	err = run.Do(ctx, func(emu *Emulator) {
		snap = emu.Snapshot()
	})
	return
}
