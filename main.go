// main.go - command-line entry point
//
// Grounded on spec §6's CLI surface (batch flag, log file, diff-test
// reference, ftrace ELF, positional guest image) and on original_source's
// nemu main.c argument set. Flag parsing uses the standard library's flag
// package, matching spec §9's direction that the monitor's ambient stack
// carries no third-party CLI framework.

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
)

func main() {
	var (
		batch      = flag.Bool("b", false, "batch mode: run to completion without the interactive monitor")
		logPath    = flag.String("l", "", "write monitor/ftrace/strace output to this file instead of stdout")
		diffRef    = flag.String("d", "", "diff-test reference (unused placeholder; no reference implementation is linked in)")
		ftracePath = flag.String("f", "", "ELF file to resolve function-trace symbols against")
		strace     = flag.Bool("strace", false, "log every syscall name and its first three arguments")
		headless   = flag.Bool("headless", false, "disable the windowed framebuffer backend")
	)
	flag.Parse()

	_ = *diffRef // accepted for CLI compatibility; no differential reference is wired in

	img := flag.Arg(0)
	if img == "" {
		fmt.Fprintln(os.Stderr, "usage: rv32mon [-b] [-l logfile] [-f elf-for-ftrace] [-strace] [-headless] <image.elf>")
		os.Exit(2)
	}

	m := NewMachine()
	m.Strace = *strace

	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rv32mon: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		m.Log = f
		m.Serial.out = f
		m.Ftrace.log = f
	}

	entry, err := LoadImage(m.Bus, img, GUEST_RAM_BASE)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rv32mon: %v\n", err)
		os.Exit(1)
	}
	m.Reg.PC = entry
	m.elfPath = img

	if *ftracePath != "" {
		m.Ftrace.Init(*ftracePath)
	}

	tee := newLineTee(m.Log)
	m.Log = tee

	var fb FramebufferBackend
	if !*headless {
		fb = newDefaultFramebufferBackend()
		m.FB.SetBackend(fb)
		if ao, ok := fb.(interface{ AttachOverlay(func() []string) }); ok {
			ao.AttachOverlay(tee.Lines)
		}
	}

	mon := NewMonitor(m, os.Stdin)
	if !*headless {
		kbdHost := NewKeyboardHost(m.Kbd)
		mon.kbd = kbdHost
		m.PollInput = kbdHost.Poll
	}
	sup := NewRunSupervisor(m, mon, fb)

	if err := sup.Run(context.Background(), *batch); err != nil {
		fmt.Fprintf(os.Stderr, "rv32mon: %v\n", err)
		os.Exit(1)
	}

	if m.State == StateAbort {
		os.Exit(1)
	}
}
