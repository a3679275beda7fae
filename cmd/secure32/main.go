// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/ezrec/secure32/cpu"
	"github.com/ezrec/secure32/emulator"
	"github.com/ezrec/secure32/translate"
)

// traceDisplay prints trace entries as they are recorded.
type traceDisplay struct {
	printed int
	halted  chan *emulator.Snapshot
}

func (td *traceDisplay) Refresh(snap *emulator.Snapshot) {
	if len(snap.Trace) < td.printed {
		td.printed = 0
	}
	for _, line := range snap.Trace[td.printed:] {
		fmt.Println(line)
	}
	td.printed = len(snap.Trace)

	if snap.Stage == emulator.STAGE_HALTED {
		select {
		case td.halted <- snap:
		default:
		}
	}
}

func (td *traceDisplay) Notify(notice emulator.Notice) {
	log.Printf("%v: %v", notice.Kind, notice.Err)
}

func main() {
	var config string
	var run bool
	var mode string
	var delay int
	var listing bool
	var verbose bool
	var lang string

	flag.StringVar(&config, "config", "", ".toml configuration file")
	flag.BoolVar(&run, "r", false, "Run the program, and print its trace")
	flag.StringVar(&mode, "m", "", "Execution mode, user or kernel")
	flag.IntVar(&delay, "d", -1, "Delay between stages in ms")
	flag.BoolVar(&listing, "l", false, "Print a listing instead of hex words")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.StringVar(&lang, "lang", "", "Message language")

	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatalf("usage: %v [options] file.asm", os.Args[0])
	}
	source := flag.Arg(0)

	if len(lang) != 0 {
		translate.SetLocales(lang)
	}

	cfg := emulator.DefaultConfig()
	if len(config) != 0 {
		inf, err := os.Open(config)
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
		cfg, err = emulator.LoadConfig(inf)
		inf.Close()
		if err != nil {
			log.Fatalf("%v: %v", config, err)
		}
	}

	if len(mode) != 0 {
		cfg.Mode = mode
	}
	if delay >= 0 {
		cfg.Clock.Slider = nil
		cfg.Clock.DelayMs = delay
	}

	err := cfg.Validate()
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}

	exec_mode, _ := cfg.ExecutionMode()

	emu := emulator.NewEmulator(cfg)
	emu.Verbose = verbose

	if !run {
		inf, err := os.Open(source)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: verbose}
		for equ, value := range emu.Defines(exec_mode) {
			asm.Predefine(equ, value)
		}

		prog, err := asm.Parse(inf)
		if err != nil {
			log.Fatalf("%v: %v", source, err)
		}

		if listing {
			err = prog.WriteListing(os.Stdout)
		} else {
			err = prog.WriteHex(os.Stdout)
		}
		if err != nil {
			log.Fatal(err)
		}
		return
	}

	display := &traceDisplay{halted: make(chan *emulator.Snapshot, 1)}
	emu.Display = display

	runner := emulator.NewRunner(emu)
	runner.Verbose = verbose

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	served := make(chan error, 1)
	go func() {
		served <- runner.Serve(ctx)
	}()

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	err = runner.Load(ctx, inf, exec_mode)
	inf.Close()
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	start := time.Now()
	err = runner.Run(ctx)
	if err != nil {
		log.Fatal(err)
	}

	var snap *emulator.Snapshot
	select {
	case snap = <-display.halted:
	case <-ctx.Done():
	}
	cancel()
	<-served

	if snap == nil {
		snap = emu.Snapshot()
	}

	if verbose {
		log.Printf("%v: %v mode, %v", source, exec_mode, time.Since(start))
	}

	fmt.Printf("% 6s: %v\n", "stage", snap.Stage)
	fmt.Printf("% 6s: %02d\n", "pc", snap.Pc)
	fmt.Printf("% 6s: %d\n", "ticks", snap.Ticks)
	for n, val := range snap.Registers {
		fmt.Printf("% 6s: %d\n", cpu.CodeReg(n), val)
	}

	if snap.Fault != nil {
		os.Exit(1)
	}
}
