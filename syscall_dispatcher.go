// syscall_dispatcher.go - guest ECALL handling
//
// Grounded on original_source/.../nanos-lite/src/syscall.c's do_syscall:
// a7 is the syscall number, a0..a2 are args, a0 is overwritten with the
// return value. SYS_exit reloads /bin/nterm via naive_uload and never
// returns to the caller; SYS_brk always reports success with no real heap
// tracking (documented open question, preserved deliberately).

package main

import "fmt"

// dispatchSyscall reads a7/a0/a1/a2 from the register file, performs the
// syscall, and writes the result back to a0 — unless the syscall is
// SYS_exit or SYS_execve, which load a new image and never return to the
// trapping instruction stream.
func (m *Machine) dispatchSyscall() {
	const (
		regA0 = 10
		regA1 = 11
		regA2 = 12
		regA7 = 17
	)
	num := int(m.Reg.Get(regA7))
	a0, a1, a2 := m.Reg.Get(regA0), m.Reg.Get(regA1), m.Reg.Get(regA2)

	if m.Strace {
		fmt.Fprintf(m.Log, "strace: %s(%d, %d, %d)\n", syscallNames[num], a0, a1, a2)
	}

	switch num {
	case SYS_exit:
		m.reloadShell()
		return
	case SYS_yield:
		m.Reg.Set(regA0, 0)
	case SYS_open:
		name := m.readCString(a0)
		fd := m.Files.Open(name)
		m.Reg.Set(regA0, uint32(int32(fd)))
	case SYS_read:
		data, n := m.Files.Read(int(a0), int(a2))
		if n > 0 {
			m.writeGuestBytes(a1, data)
		}
		m.Reg.Set(regA0, uint32(int32(n)))
	case SYS_write:
		data := m.readGuestBytes(a1, a2)
		n := m.Files.Write(int(a0), data)
		m.Reg.Set(regA0, uint32(int32(n)))
	case SYS_close:
		m.Reg.Set(regA0, uint32(m.Files.Close(int(a0))))
	case SYS_lseek:
		off, err := m.Files.Lseek(int(a0), int32(a1), int(a2))
		if err != nil {
			m.Reg.Set(regA0, uint32(int32(-1)))
		} else {
			m.Reg.Set(regA0, off)
		}
	case SYS_brk:
		m.Reg.Set(regA0, 0) // unbounded-heap assumption; see DESIGN.md
	case SYS_execve:
		path := m.readCString(a0)
		m.loadAndStart(path)
		return
	case SYS_gettimeofday:
		m.writeTimeval(a0)
		m.Reg.Set(regA0, 0)
	default:
		m.fatal("unknown syscall number %d", num)
	}
}

func (m *Machine) readCString(addr uint32) string {
	var out []byte
	for i := 0; i < 256; i++ {
		b, err := m.Bus.Read8(addr + uint32(i))
		if err != nil || b == 0 {
			break
		}
		out = append(out, b)
	}
	return string(out)
}

func (m *Machine) readGuestBytes(addr uint32, n uint32) []byte {
	out := make([]byte, n)
	for i := uint32(0); i < n; i++ {
		b, err := m.Bus.Read8(addr + i)
		if err != nil {
			return out[:i]
		}
		out[i] = b
	}
	return out
}

func (m *Machine) writeGuestBytes(addr uint32, data []byte) {
	for i, b := range data {
		m.Bus.Write8(addr+uint32(i), b)
	}
}

// writeTimeval fills a guest {tv_sec, tv_usec} pair (two 32-bit words) from
// the RTC, matching sys_gettimeofday.
func (m *Machine) writeTimeval(addr uint32) {
	us := m.RTC.uptimeMicros()
	sec := uint32(us / 1_000_000)
	usec := uint32(us % 1_000_000)
	m.Bus.Write32(addr, sec)
	m.Bus.Write32(addr+4, usec)
}

// reloadShell implements SYS_exit: load and run /bin/nterm, never
// returning to the caller.
func (m *Machine) reloadShell() {
	m.loadAndStart(shellPath)
}

// loadAndStart loads path from the guest VFS's ramdisk backend and
// transfers control to its entry point, mirroring naive_uload's direct
// function-pointer invocation — here, simply resetting pc to the entry.
func (m *Machine) loadAndStart(path string) {
	fd := m.Files.Open(path)
	if fd < 0 {
		m.fatal("syscall: cannot reload %q: not found", path)
		return
	}
	entry, err := loadELFFromRAMDisk(m, fd)
	if err != nil {
		m.fatal("syscall: reload %q: %v", path, err)
		return
	}
	m.Reg = RegisterFile{}
	m.Reg.PC = entry
}
