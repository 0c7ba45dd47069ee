// elf_loader.go - program header parsing and segment load
//
// Grounded on original_source/.../nanos-lite/src/loader.c. The original
// hand-parses the ELF header and program headers byte-by-byte and has a
// class-specific twin in ftrace.c for symbol loading (load_elf32/
// load_elf64). Per the REDESIGN FLAGS this module and ftrace.go both use
// debug/elf, which is class-agnostic by construction — the single library
// this repo reaches for in place of NEMU's hand-duplicated 32/64 parsers.
// No third-party ELF-parsing library appears anywhere in the example pack,
// so the standard library is the correct and only choice here. The
// PT_LOAD-copy loop itself is further collapsed into one loadSegments
// routine shared by the host-path and ramdisk-path entry points below,
// rather than duplicated per entry point.

package main

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"
)

const elfMagic = "\x7fELF"

// LoadImage loads the positional guest image argument (spec §6): either an
// ELF understood by LoadELF, or — when the file doesn't start with the ELF
// magic — a flat raw binary copied verbatim into RAM at baseAddr, with the
// entry point set to baseAddr. This is the same flat-load model the
// original NEMU uses for a bare .bin image with no ELF structure at all.
func LoadImage(bus *SystemBus, path string, baseAddr uint32) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("elf_loader: %w", err)
	}
	if len(data) >= len(elfMagic) && string(data[:len(elfMagic)]) == elfMagic {
		return LoadELF(bus, path)
	}
	if err := bus.LoadAt(baseAddr, data); err != nil {
		return 0, err
	}
	return baseAddr, nil
}

// loadSegments copies every PT_LOAD segment of f into guest memory via bus,
// zero-filling each segment's BSS tail. Shared by LoadELF (host filesystem)
// and loadELFFromRAMDisk (embedded ramdisk), which differ only in how they
// open the underlying *elf.File.
func loadSegments(f *elf.File, bus *SystemBus) error {
	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		if prog.Memsz < prog.Filesz {
			return fmt.Errorf("elf_loader: segment at 0x%x has memsz < filesz", prog.Vaddr)
		}
		if prog.Filesz > 0 {
			data := make([]byte, prog.Filesz)
			if _, err := prog.ReadAt(data, 0); err != nil {
				return fmt.Errorf("elf_loader: reading segment at 0x%x: %w", prog.Vaddr, err)
			}
			if err := bus.LoadAt(uint32(prog.Vaddr), data); err != nil {
				return err
			}
		}
		if bssLen := prog.Memsz - prog.Filesz; bssLen > 0 {
			if err := bus.ZeroRange(uint32(prog.Vaddr+prog.Filesz), uint32(bssLen)); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadELF parses the ELF at path and copies every PT_LOAD segment into
// guest memory via bus, zero-filling each segment's BSS tail. Returns the
// entry point.
func LoadELF(bus *SystemBus, path string) (uint32, error) {
	f, err := elf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("elf_loader: %w", err)
	}
	defer f.Close()

	if err := loadSegments(f, bus); err != nil {
		return 0, err
	}
	return uint32(f.Entry), nil
}

// loadELFFromRAMDisk loads an already-open ramdisk fd's contents as an ELF
// image, the in-memory counterpart to LoadELF used by SYS_exit/SYS_execve
// when reloading a guest program that lives only in the embedded ramdisk
// image rather than on the host filesystem.
func loadELFFromRAMDisk(m *Machine, fd int) (uint32, error) {
	raw := m.Files.RawBytes(fd)
	if raw == nil {
		return 0, fmt.Errorf("elf_loader: fd %d is not a ramdisk file", fd)
	}
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return 0, fmt.Errorf("elf_loader: %w", err)
	}
	defer f.Close()

	if err := loadSegments(f, m.Bus); err != nil {
		return 0, err
	}
	return uint32(f.Entry), nil
}

// loadELFFuncSymbols extracts every nonzero-size STT_FUNC symbol, the
// source table for ftrace's address-to-name lookup.
func loadELFFuncSymbols(path string) ([]funcSym, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("ftrace: no symbol table: %w", err)
	}

	var out []funcSym
	for _, s := range syms {
		if elf.ST_TYPE(s.Info) != elf.STT_FUNC || s.Size == 0 {
			continue
		}
		out = append(out, funcSym{name: s.Name, addr: uint32(s.Value), size: uint32(s.Size)})
	}
	return out, nil
}
