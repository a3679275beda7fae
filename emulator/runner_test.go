package emulator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/secure32/cpu"
)

// haltDisplay signals when the program stops running.
type haltDisplay struct {
	once   sync.Once
	halted chan struct{}
}

func (hd *haltDisplay) Refresh(snap *Snapshot) {
	if snap.Stage == STAGE_HALTED {
		hd.once.Do(func() { close(hd.halted) })
	}
}

func (hd *haltDisplay) Notify(notice Notice) {}

func startRunner(t *testing.T, delay time.Duration) (run *Runner, display *haltDisplay, cancel func()) {
	t.Helper()

	emu := NewEmulator(DefaultConfig())
	emu.Delay = delay
	display = &haltDisplay{halted: make(chan struct{})}
	emu.Display = display

	run = NewRunner(emu)

	ctx, ctxCancel := context.WithCancel(context.Background())
	served := make(chan error, 1)
	go func() {
		served <- run.Serve(ctx)
	}()

	cancel = func() {
		ctxCancel()
		assert.ErrorIs(t, <-served, context.Canceled)
	}

	return
}

func TestRunner(t *testing.T) {
	assert := assert.New(t)

	run, display, cancel := startRunner(t, time.Millisecond)
	defer cancel()

	ctx := context.Background()

	err := run.Load(ctx, strings.NewReader(strings.Join(kernelProgram, "\n")), cpu.MODE_KERNEL)
	assert.NoError(err)
	assert.NoError(run.Run(ctx))

	select {
	case <-display.halted:
	case <-time.After(10 * time.Second):
		t.Fatal("program did not halt")
	}

	snap, err := run.Snapshot(ctx)
	assert.NoError(err)
	assert.Equal(STAGE_HALTED, snap.Stage)
	assert.False(snap.Running)
	assert.Equal([cpu.REGISTER_COUNT]int32{0, 10, 20, 30, 0, 0, 0, 0}, snap.Registers)
	assert.Equal("HALT", snap.Trace[len(snap.Trace)-1])

	assert.NoError(run.Reset(ctx))
	snap, err = run.Snapshot(ctx)
	assert.NoError(err)
	assert.Equal(STAGE_IDLE, snap.Stage)
	assert.Empty(snap.Trace)
	assert.Empty(snap.Lines)
}

func TestRunnerLoadError(t *testing.T) {
	assert := assert.New(t)

	run, _, cancel := startRunner(t, time.Millisecond)
	defer cancel()

	err := run.Load(context.Background(), strings.NewReader("LOAD R9, 1"), cpu.MODE_USER)
	assert.ErrorIs(err, cpu.ErrRegisterUnknown)
}

func TestRunnerPause(t *testing.T) {
	assert := assert.New(t)

	// The delay is long enough that no stage advances during the test.
	run, _, cancel := startRunner(t, time.Hour)
	defer cancel()

	ctx := context.Background()

	err := run.Load(ctx, strings.NewReader(strings.Join(kernelProgram, "\n")), cpu.MODE_KERNEL)
	assert.NoError(err)
	assert.NoError(run.Step(ctx))
	assert.NoError(run.Pause(ctx))

	snap, err := run.Snapshot(ctx)
	assert.NoError(err)
	assert.True(snap.Paused)
	assert.True(snap.Running)
	assert.Equal(STAGE_IDLE, snap.Stage)

	assert.NoError(run.SetSlider(ctx, SLIDER_MAX))
	err = run.Do(ctx, func(emu *Emulator) {
		assert.Equal(100*time.Millisecond, emu.Delay)
		assert.False(emu.Pending())
	})
	assert.NoError(err)

	assert.NoError(run.SetSpeed(ctx, 300))
	err = run.Do(ctx, func(emu *Emulator) {
		assert.Equal(300*time.Millisecond, emu.Delay)
	})
	assert.NoError(err)

	// Switch to a fast clock, and complete the program.
	assert.NoError(run.SetSpeed(ctx, 0))
	assert.NoError(run.Run(ctx))
	assert.Eventually(func() bool {
		snap, err := run.Snapshot(ctx)
		return err == nil && snap.Stage == STAGE_HALTED
	}, 10*time.Second, time.Millisecond)
}

func TestRunnerNotServing(t *testing.T) {
	assert := assert.New(t)

	run := NewRunner(NewEmulator(DefaultConfig()))

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	assert.ErrorIs(run.Step(ctx), context.DeadlineExceeded)

	_, err := run.Snapshot(ctx)
	assert.ErrorIs(err, context.DeadlineExceeded)
}
