//go:build windows

// keyboard_host_windows.go - raw stdin keyboard capture on Windows
//
// Adapted from the teacher's terminal_host_windows.go: Windows has no
// syscall.SetNonblock, so this variant keeps a blocking-read goroutine, but
// scopes its lifetime to one Start/Stop span the same way the unix build
// scopes its raw-mode window — Monitor starts it only for the duration of a
// "c"/"si" span and stops it before reading the next REPL command line, so
// the goroutine and the REPL's own stdin read are never both active at
// once. Poll is a no-op here: this backend drains stdin on its own
// goroutine rather than per-step, but still exposes Poll so main.go can
// wire Machine.PollInput identically on every platform.

package main

import (
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

type KeyboardHost struct {
	kbd      *KeyboardDevice
	fd       int
	oldState *term.State
	started  bool
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewKeyboardHost(kbd *KeyboardDevice) *KeyboardHost {
	return &KeyboardHost{kbd: kbd}
}

func (h *KeyboardHost) Start() error {
	if h.started {
		return nil
	}
	h.fd = int(os.Stdin.Fd())
	old, err := term.MakeRaw(h.fd)
	if err != nil {
		return fmt.Errorf("keyboard_host: raw mode: %w", err)
	}
	h.oldState = old
	h.stopCh = make(chan struct{})
	h.done = make(chan struct{})
	h.stopOnce = sync.Once{}
	h.started = true

	go func() {
		defer close(h.done)
		buf := make([]byte, 1)
		for {
			select {
			case <-h.stopCh:
				return
			default:
			}
			n, err := os.Stdin.Read(buf)
			if n > 0 {
				if code, ok := byteToScancode(buf[0]); ok {
					h.kbd.PushEvent(true, code)
					h.kbd.PushEvent(false, code)
				}
			}
			if err != nil {
				return
			}
			if n == 0 {
				time.Sleep(5 * time.Millisecond)
			}
		}
	}()
	return nil
}

// Poll is a no-op: this backend drains stdin on its own Start-scoped
// goroutine instead of per-step, since Windows has no non-blocking read.
func (h *KeyboardHost) Poll() {}

func (h *KeyboardHost) Stop() {
	if !h.started {
		return
	}
	h.stopOnce.Do(func() { close(h.stopCh) })
	<-h.done
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
	}
	h.started = false
}
