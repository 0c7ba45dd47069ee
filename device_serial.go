// device_serial.go - write-only serial port, forwards bytes to host stdout
//
// Grounded on original_source/.../nanos-lite/src/device.c's serial_write,
// which forwards each byte via putch, and on the teacher's terminal_io.go
// pattern of a mutex-guarded device with an optional output callback.

package main

import (
	"io"
	"sync"
)

// SerialDevice is a write-only MMIO register: every byte written is
// forwarded immediately to the host output stream.
type SerialDevice struct {
	mu  sync.Mutex
	out io.Writer
}

func NewSerialDevice(out io.Writer) *SerialDevice {
	return &SerialDevice{out: out}
}

func (s *SerialDevice) HandleWrite(addr uint32, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.Write([]byte{byte(value)})
}

// Write implements io.Writer so the guest VFS can route stdout/stderr fd
// writes through the same device (§4.8).
func (s *SerialDevice) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}
