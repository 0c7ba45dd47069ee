// run_supervisor.go - supervises the interpreter and video goroutines
//
// Grounded on the teacher's pattern of running the CPU loop and the video
// backend concurrently. golang.org/x/sync's errgroup replaces the teacher's
// ad hoc sync.WaitGroup + error channel: one goroutine's failure cancels the
// group's context and the others unwind cleanly instead of leaking.
//
// Keyboard input is NOT run as a concurrent goroutine here — spec §5's
// single-threaded cooperative scheduling model requires the monitor/
// interpreter loop to be the only reader of stdin at any moment, so
// KeyboardHost's raw-mode polling is scoped by Monitor itself around each
// "c"/"si" span (monitor_commands.go), not started for the process's whole
// lifetime from this supervisor.

package main

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// RunSupervisor owns the goroutines that make up one emulator run: the
// monitor/interpreter loop and, when built with a windowed framebuffer
// backend, the video pump.
type RunSupervisor struct {
	m   *Machine
	mon *Monitor
	fb  FramebufferBackend
}

func NewRunSupervisor(m *Machine, mon *Monitor, fb FramebufferBackend) *RunSupervisor {
	return &RunSupervisor{m: m, mon: mon, fb: fb}
}

// starter is implemented by framebuffer backends that own a goroutine
// (the windowed ebiten backend's event loop). The headless backend
// implements it as a no-op so this call never needs a build tag here.
type starter interface {
	Start()
}

// Run starts the framebuffer backend, runs the monitor loop to completion,
// then tears everything down. batch mode skips the framebuffer backend
// entirely since there is no window to drive.
//
// The monitor-completion goroutine cancels its own derived context before
// returning, so the context-wait goroutine below is guaranteed to unblock:
// errgroup's own context is cancelled only on a non-nil error or once Wait
// returns, and Wait cannot return until both goroutines finish — relying on
// that alone would deadlock on every normal exit (REPL "q", EOF, or batch
// completion), since s.mon.Run always returns a nil error.
func (s *RunSupervisor) Run(ctx context.Context, batch bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if !batch && s.fb != nil {
		if st, ok := s.fb.(starter); ok {
			st.Start()
		}
	}

	g.Go(func() error {
		s.mon.Run(batch)
		cancel()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return nil
	})

	return g.Wait()
}
