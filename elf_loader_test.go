package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadImageFlatBinary(t *testing.T) {
	bus := NewSystemBus(GUEST_RAM_BASE, 0x10000)
	path := filepath.Join(t.TempDir(), "flat.bin")
	data := []byte{0x13, 0x00, 0x00, 0x00} // addi x0, x0, 0 - no ELF magic
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	entry, err := LoadImage(bus, path, GUEST_RAM_BASE)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if entry != GUEST_RAM_BASE {
		t.Fatalf("expected a flat image's entry to equal its load base, got 0x%x", entry)
	}

	word, err := bus.Read32(GUEST_RAM_BASE)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if word != 0x00000013 {
		t.Fatalf("expected flat image bytes copied verbatim, got 0x%08x", word)
	}
}

func TestLoadImageRecognizesELFMagic(t *testing.T) {
	bus := NewSystemBus(GUEST_RAM_BASE, 0x10000)
	entry, err := LoadImage(bus, "ramdisk.img", GUEST_RAM_BASE)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if entry != 0x80004000 {
		t.Fatalf("expected ramdisk.img's real ELF entry 0x80004000, got 0x%08x", entry)
	}
}

func TestLoadELFFromRAMDiskRoundTrip(t *testing.T) {
	m := newTestMachine()
	fd := m.Files.Open(shellPath)
	if fd < 0 {
		t.Fatalf("expected %s to resolve against the ramdisk manifest", shellPath)
	}

	entry, err := loadELFFromRAMDisk(m, fd)
	if err != nil {
		t.Fatalf("loadELFFromRAMDisk: %v", err)
	}
	if entry != 0x80004000 {
		t.Fatalf("expected entry 0x80004000, got 0x%08x", entry)
	}

	addi, err := m.Bus.Read32(entry)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if addi != 0x00100893 { // addi a7, x0, 1
		t.Fatalf("expected addi a7,x0,1 at the entry point, got 0x%08x", addi)
	}

	ecall, err := m.Bus.Read32(entry + 4)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if ecall != 0x00000073 {
		t.Fatalf("expected ecall following the addi, got 0x%08x", ecall)
	}

	bssWord, err := m.Bus.Read32(entry + 8)
	if err != nil {
		t.Fatalf("read32: %v", err)
	}
	if bssWord != 0 {
		t.Fatalf("expected the segment's bss tail to be zero-filled, got 0x%08x", bssWord)
	}
}

func TestSyscallExitReloadsShellInsteadOfFatal(t *testing.T) {
	m := newTestMachine()
	m.Reg.PC = GUEST_RAM_BASE
	m.Reg.Set(17, uint32(SYS_exit)) // a7
	m.dispatchSyscall()

	if m.State == StateAbort {
		t.Fatal("expected SYS_exit to reload the shell image, not abort")
	}
	if m.Reg.PC != 0x80004000 {
		t.Fatalf("expected pc reset to the shell's entry point, got 0x%08x", m.Reg.PC)
	}
}
