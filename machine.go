// machine.go - the single shared emulator context
//
// Per the design notes, global mutable state (registers, guest memory, file
// table, watchpoint pool, ring buffer, ftrace tables) is consolidated into
// one Machine value passed by reference; the monitor, interpreter and
// syscall dispatcher all borrow it rather than each owning a private copy.

package main

import (
	"fmt"
	"io"
	"os"
)

// Machine is the emulator's entire mutable state.
type Machine struct {
	Bus *SystemBus
	Reg RegisterFile

	State MachineState

	Ring   *InstructionRingBuffer
	Ftrace *FuncTracer
	WP     *WatchpointPool

	Files *FileTable

	Serial *SerialDevice
	RTC    *RTCDevice
	Kbd    *KeyboardDevice
	FB     *FramebufferDevice

	// Log is where monitor output, ftrace lines and strace lines go.
	Log io.Writer

	// Strace, when true, prints each syscall's name and first three args.
	Strace bool

	// PollInput, when non-nil, is called once per retired instruction by
	// Run. It exists so a host keyboard poller can drain pending bytes on
	// the single thread of control that also steps the interpreter,
	// rather than racing a separate goroutine against the monitor's own
	// stdin reads (see keyboard_host.go).
	PollInput func()

	// elfPath is the host path of the loaded guest image, reported in
	// fatal-error diagnostics.
	elfPath string
}

// NewMachine builds a fully wired Machine: memory, devices mapped onto the
// bus, the file table, ring buffer and watchpoint pool.
func NewMachine() *Machine {
	m := &Machine{
		Bus:   NewSystemBus(GUEST_RAM_BASE, DEFAULT_MEMORY_SIZE),
		State: StateStop,
		Ring:  NewInstructionRingBuffer(),
		WP:    NewWatchpointPool(),
		Log:   os.Stdout,
	}
	m.Ftrace = NewFuncTracer(m.Log)

	m.Serial = NewSerialDevice(os.Stdout)
	m.RTC = NewRTCDevice()
	m.Kbd = NewKeyboardDevice()
	m.FB = NewFramebufferDevice(m.Bus, 400, 300)
	m.Files = NewFileTable(m)

	m.Bus.MapIO(SERIAL_PORT, SERIAL_PORT+3, nil, m.Serial.HandleWrite)
	m.Bus.MapIO(RTC_LO, RTC_LO+3, m.RTC.HandleRead, nil)
	m.Bus.MapIO(RTC_HI, RTC_HI+3, m.RTC.HandleRead, nil)
	m.Bus.MapIO(KBD_PORT, KBD_PORT+3, m.Kbd.HandleRead, nil)
	m.FB.MapInto(m.Bus)

	return m
}

// raiseIntr implements §4.1's exception/interrupt delivery: sets mcause and
// mepc and returns mtvec. There are no asynchronous interrupts in this
// design; the only caller is ECALL (execSystem), which records the trap
// this way, discards the returned vector, and calls the syscall dispatcher
// directly.
func (m *Machine) raiseIntr(cause, epc uint32) uint32 {
	m.Reg.CSR[CSR_MCAUSE] = cause
	m.Reg.CSR[CSR_MEPC] = epc
	return m.Reg.CSR[CSR_MTVEC]
}

// fatal dumps the ring buffer and transitions to ABORT. Mirrors the C
// original's pattern of asserting and aborting on unrecoverable host-side
// conditions (out-of-range memory, unknown instruction, unknown syscall).
func (m *Machine) fatal(format string, args ...any) {
	fmt.Fprintf(m.Log, "fatal: "+format+"\n", args...)
	if m.elfPath != "" {
		fmt.Fprintf(m.Log, "fatal: running image %s\n", m.elfPath)
	}
	m.Ring.Dump(m.Log, m.Reg.PC)
	m.State = StateAbort
}
