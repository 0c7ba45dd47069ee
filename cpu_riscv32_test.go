package main

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func newTestCPUMachine() *Machine {
	m := NewMachine()
	m.Log = &bytes.Buffer{}
	return m
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int32) uint32 {
	return uint32(imm)<<20&0xfff00000 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return funct7<<25 | rs2<<20 | rs1<<15 | funct3<<12 | rd<<7 | opcode
}

func writeWord(m *Machine, addr uint32, w uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], w)
	for i, v := range b {
		if err := m.Bus.Write8(addr+uint32(i), v); err != nil {
			panic(err)
		}
	}
}

func TestStepADDI(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = GUEST_RAM_BASE
	writeWord(m, GUEST_RAM_BASE, encodeI(opOpImm, 1, 0, 0, 5)) // addi x1, x0, 5
	m.Step()
	if m.Reg.Get(1) != 5 {
		t.Fatalf("expected x1==5, got %d", m.Reg.Get(1))
	}
	if m.Reg.PC != GUEST_RAM_BASE+4 {
		t.Fatalf("expected pc advanced by 4, got 0x%x", m.Reg.PC)
	}
}

func TestStepADDRegisters(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = GUEST_RAM_BASE
	m.Reg.Set(1, 3)
	m.Reg.Set(2, 4)
	writeWord(m, GUEST_RAM_BASE, encodeR(opOp, 3, 0, 1, 2, 0)) // add x3, x1, x2
	m.Step()
	if m.Reg.Get(3) != 7 {
		t.Fatalf("expected x3==7, got %d", m.Reg.Get(3))
	}
}

func TestStepX0NeverChanges(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = GUEST_RAM_BASE
	writeWord(m, GUEST_RAM_BASE, encodeI(opOpImm, 0, 0, 0, 123)) // addi x0, x0, 123
	m.Step()
	if m.Reg.Get(0) != 0 {
		t.Fatalf("expected x0==0, got %d", m.Reg.Get(0))
	}
}

func TestStepLoadStoreRoundTrip(t *testing.T) {
	m := newTestCPUMachine()
	base := GUEST_RAM_BASE + uint32(0x1000)
	m.Reg.PC = GUEST_RAM_BASE
	m.Reg.Set(1, base)
	m.Reg.Set(2, 0xdeadbeef)

	// SW x2, 0(x1): S-type immediate is split, so it needs its own encoding here.
	sw := uint32(0)<<25 | 2<<20 | 1<<15 | 2<<12 | 0<<7 | opStore
	writeWord(m, GUEST_RAM_BASE, sw)
	m.Step()

	lw := encodeI(opLoad, 3, 2, 1, 0) // lw x3, 0(x1)
	writeWord(m, GUEST_RAM_BASE+4, lw)
	m.Step()

	if m.Reg.Get(3) != 0xdeadbeef {
		t.Fatalf("expected x3==0xdeadbeef after load, got 0x%x", m.Reg.Get(3))
	}
}

func TestStepBranchTaken(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = GUEST_RAM_BASE
	m.Reg.Set(1, 5)
	m.Reg.Set(2, 5)
	// beq x1, x2, 8
	imm := uint32(8)
	beq := ((imm>>12)&1)<<31 | ((imm>>5)&0x3f)<<25 | 2<<20 | 1<<15 | 0<<12 | ((imm>>1)&0xf)<<8 | ((imm>>11)&1)<<7 | opBranch
	writeWord(m, GUEST_RAM_BASE, beq)
	m.Step()
	if m.Reg.PC != GUEST_RAM_BASE+8 {
		t.Fatalf("expected branch taken to pc+8, got 0x%x", m.Reg.PC)
	}
}

func TestStepJALLinksAndJumps(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = GUEST_RAM_BASE
	imm := uint32(0x100)
	jal := ((imm>>20)&1)<<31 | ((imm>>1)&0x3ff)<<21 | ((imm>>11)&1)<<20 | ((imm>>12)&0xff)<<12 | 1<<7 | opJAL
	writeWord(m, GUEST_RAM_BASE, jal)
	m.Step()
	if m.Reg.PC != GUEST_RAM_BASE+0x100 {
		t.Fatalf("expected jump to base+0x100, got 0x%x", m.Reg.PC)
	}
	if m.Reg.Get(1) != GUEST_RAM_BASE+4 {
		t.Fatalf("expected ra==base+4, got 0x%x", m.Reg.Get(1))
	}
}

func TestStepFatalOnBadFetchSetsAbort(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = 0 // outside the guest RAM window
	m.Step()
	if m.State != StateAbort {
		t.Fatalf("expected StateAbort after an out-of-range fetch, got %v", m.State)
	}
}

func TestRunStopsOnAbort(t *testing.T) {
	m := newTestCPUMachine()
	m.Reg.PC = 0
	m.Run(10)
	if m.State != StateAbort {
		t.Fatalf("expected Run to stop in StateAbort, got %v", m.State)
	}
}
