//go:build !windows

// keyboard_host.go - reads raw host stdin and feeds the keyboard device
//
// Adapted from the teacher's terminal_host.go: puts stdin into raw,
// non-blocking mode via golang.org/x/term. Per spec §5's single-threaded
// cooperative scheduling model, there is no background goroutine here —
// Start/Stop are scoped around one "c"/"si" span by Monitor
// (monitor_commands.go), and Poll is called once per retired instruction
// from Machine.Run on that same thread, so the monitor's own cooked-mode
// stdin reads between commands and this raw-mode drain never contend for
// the descriptor at the same time. Each byte read is translated to a down
// event immediately followed by an up event — a terminal byte stream
// carries no separate key-release signal, so this is the closest honest
// approximation of a physical keyboard's down/up pair for a single polled
// byte.

package main

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/term"
)

// KeyboardHost drains raw stdin bytes into a KeyboardDevice's event queue.
type KeyboardHost struct {
	kbd         *KeyboardDevice
	fd          int
	oldState    *term.State
	nonblockSet bool
	started     bool
}

func NewKeyboardHost(kbd *KeyboardDevice) *KeyboardHost {
	return &KeyboardHost{kbd: kbd}
}

// Start puts stdin into raw, non-blocking mode. Idempotent: a second call
// while already started is a no-op. Call Stop to restore the terminal
// before anything else (e.g. the REPL prompt) reads stdin again.
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

	if err := syscall.SetNonblock(h.fd, true); err != nil {
		_ = term.Restore(h.fd, h.oldState)
		return fmt.Errorf("keyboard_host: nonblocking stdin: %w", err)
	}
	h.nonblockSet = true
	h.started = true
	return nil
}

// Poll drains every byte currently buffered on stdin without blocking,
// translating each to a keydown/keyup pair. A no-op unless Start has put
// the descriptor into raw, non-blocking mode — safe to call unconditionally
// once per step regardless of whether a keyboard host is attached or active.
func (h *KeyboardHost) Poll() {
	if !h.started {
		return
	}
	var buf [1]byte
	for {
		n, err := syscall.Read(h.fd, buf[:])
		if n <= 0 {
			return
		}
		if code, ok := byteToScancode(buf[0]); ok {
			h.kbd.PushEvent(true, code)
			h.kbd.PushEvent(false, code)
		}
		if err != nil {
			return
		}
	}
}

// Stop restores the terminal to its prior mode. Idempotent.
func (h *KeyboardHost) Stop() {
	if !h.started {
		return
	}
	if h.nonblockSet {
		_ = syscall.SetNonblock(h.fd, false)
		h.nonblockSet = false
	}
	if h.oldState != nil {
		_ = term.Restore(h.fd, h.oldState)
	}
	h.started = false
}

// byteToScancode maps an incoming stdin byte to an index into keyNames.
// Only the handful of keys the guest device table names are recognized;
// everything else is dropped rather than misreported.
func byteToScancode(b byte) (uint32, bool) {
	switch {
	case b >= 'a' && b <= 'z':
		return indexOfKeyName(string(rune(b - 'a' + 'A'))), true
	case b >= 'A' && b <= 'Z':
		return indexOfKeyName(string(rune(b))), true
	case b >= '0' && b <= '9':
		return indexOfKeyName(string(rune(b))), true
	case b == '\r' || b == '\n':
		return indexOfKeyName("RETURN"), true
	case b == ' ':
		return indexOfKeyName("SPACE"), true
	case b == 0x1b:
		return indexOfKeyName("ESCAPE"), true
	case b == 0x7f || b == 0x08:
		return indexOfKeyName("BACKSPACE"), true
	}
	return 0, false
}

func indexOfKeyName(name string) uint32 {
	for i, n := range keyNames {
		if n == name {
			return uint32(i)
		}
	}
	return 0
}
