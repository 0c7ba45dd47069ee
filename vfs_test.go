package main

import (
	"bytes"
	"testing"
)

func newTestMachine() *Machine {
	m := NewMachine()
	m.Log = &bytes.Buffer{}
	var out bytes.Buffer
	m.Serial = NewSerialDevice(&out)
	m.Files = NewFileTable(m)
	return m
}

func TestVFSReservedDescriptors(t *testing.T) {
	m := newTestMachine()
	if m.Files.Open("stdout") != FD_STDOUT {
		t.Fatal("stdout must be fd 1")
	}
	if m.Files.Open("stderr") != FD_STDERR {
		t.Fatal("stderr must be fd 2")
	}
	if m.Files.Open("fb") != FD_FB {
		t.Fatal("fb must be fd 3")
	}
}

func TestVFSOpenMissingFileReturnsMinusOne(t *testing.T) {
	m := newTestMachine()
	if fd := m.Files.Open("/bin/does-not-exist"); fd != -1 {
		t.Fatalf("expected -1 for missing file, got %d", fd)
	}
}

func TestVFSWriteToStdoutForwardsToSerial(t *testing.T) {
	m := newTestMachine()
	var captured bytes.Buffer
	m.Serial = NewSerialDevice(&captured)
	fd := m.Files.Open("stdout")
	n := m.Files.Write(fd, []byte("hi"))
	if n != 2 {
		t.Fatalf("expected 2 bytes written, got %d", n)
	}
	if captured.String() != "hi" {
		t.Fatalf("expected serial to capture %q, got %q", "hi", captured.String())
	}
}

func TestVFSDispInfoReportsFramebufferSize(t *testing.T) {
	m := newTestMachine()
	fd := m.Files.Open("/proc/dispinfo")
	if fd < 0 {
		t.Fatal("expected /proc/dispinfo to exist")
	}
	data, n := m.Files.Read(fd, 256)
	if n <= 0 {
		t.Fatal("expected dispinfo to return data")
	}
	s := string(data)
	if want := "WIDTH : 400\nHEIGHT : 300\n"; s != want {
		t.Fatalf("expected dispinfo %q, got %q", want, s)
	}
}

func TestVFSFramebufferIsWriteOnly(t *testing.T) {
	m := newTestMachine()
	fd := m.Files.Open("fb")
	if _, n := m.Files.Read(fd, 4); n != -1 {
		t.Fatalf("expected read from fb to fail, got n=%d", n)
	}
}

func TestVFSLseekClampsToFileSize(t *testing.T) {
	m := newTestMachine()
	fd := m.Files.Open("fb")
	size := int64(m.FB.Width() * m.FB.Height() * 4)

	off, err := m.Files.Lseek(fd, int32(size)+1000, SEEK_SET)
	if err != nil {
		t.Fatalf("lseek: %v", err)
	}
	if int64(off) != size {
		t.Fatalf("expected lseek to clamp to %d, got %d", size, off)
	}

	off, err = m.Files.Lseek(fd, -1000, SEEK_SET)
	if err != nil {
		t.Fatalf("lseek: %v", err)
	}
	if off != 0 {
		t.Fatalf("expected lseek to clamp negative offsets to 0, got %d", off)
	}
}

func TestVFSCloseAlwaysSucceeds(t *testing.T) {
	m := newTestMachine()
	if m.Files.Close(FD_STDOUT) != 0 {
		t.Fatal("expected close to always return 0")
	}
}

func TestVFSRamDiskShellOpensAndReadsRaw(t *testing.T) {
	m := newTestMachine()
	fd := m.Files.Open(shellPath)
	if fd < 0 {
		t.Fatalf("expected %s to resolve against the ramdisk manifest", shellPath)
	}
	raw := m.Files.RawBytes(fd)
	if len(raw) != 92 {
		t.Fatalf("expected a 92-byte shell image, got %d bytes", len(raw))
	}
	if string(raw[:4]) != "\x7fELF" {
		t.Fatalf("expected the shell image to start with the ELF magic, got %x", raw[:4])
	}
}
