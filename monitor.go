// monitor.go - Monitor REPL driver
//
// Grounded on debug_monitor.go's activate/appendOutput shape, reduced to a
// plain synchronous stdin-driven loop: this spec's monitor is a text REPL
// over the interpreter (§4.6), not an overlay debugger embedded in a running
// render loop, so there is no freeze/resume or CPU registry to manage —
// only one Machine exists per process.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Monitor drives the command-line debug REPL against a single Machine.
type Monitor struct {
	m      *Machine
	in     *bufio.Scanner
	out    io.Writer
	prompt string

	// kbd, when non-nil, is started before and stopped after every
	// "c"/"si" span (see runStepping in monitor_commands.go) so its raw-
	// mode stdin drain and this Monitor's own cooked-mode stdin reads are
	// never active at the same time — the single-reader invariant spec
	// §5's cooperative scheduling model requires.
	kbd *KeyboardHost
}

// NewMonitor builds a Monitor reading commands from in and writing to
// m.Log.
func NewMonitor(m *Machine, in io.Reader) *Monitor {
	return &Monitor{m: m, in: bufio.NewScanner(in), out: m.Log, prompt: "(rv32mon) "}
}

// Run drives the REPL until "q" or EOF. batch, per spec §4.6, skips
// reading from in entirely and issues a single "c".
func (mon *Monitor) Run(batch bool) {
	if batch {
		mon.Dispatch(MonitorCommand{Name: "c"})
		return
	}
	fmt.Fprint(mon.out, mon.prompt)
	for mon.in.Scan() {
		cmd := ParseCommand(mon.in.Text())
		if mon.Dispatch(cmd) {
			return
		}
		fmt.Fprint(mon.out, mon.prompt)
	}
}

const lineTeeCapacity = 6

// lineTee duplicates writes to an underlying writer while also buffering
// the last few complete lines, so the windowed framebuffer backend's
// overlay (monitor_overlay.go) can poll what the REPL has been printing
// without the monitor knowing a window exists.
type lineTee struct {
	w    io.Writer
	mu   sync.Mutex
	buf  []string
	part string
}

func newLineTee(w io.Writer) *lineTee {
	return &lineTee{w: w}
}

func (t *lineTee) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)

	t.mu.Lock()
	t.part += string(p)
	for {
		i := strings.IndexByte(t.part, '\n')
		if i < 0 {
			break
		}
		t.buf = append(t.buf, t.part[:i])
		if len(t.buf) > lineTeeCapacity {
			t.buf = t.buf[len(t.buf)-lineTeeCapacity:]
		}
		t.part = t.part[i+1:]
	}
	t.mu.Unlock()

	return n, err
}

// Lines returns a snapshot of the most recently completed output lines.
func (t *lineTee) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.buf))
	copy(out, t.buf)
	return out
}
