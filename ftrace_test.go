package main

import (
	"bytes"
	"testing"
)

func newTestTracer(syms []funcSym) *FuncTracer {
	var buf bytes.Buffer
	f := NewFuncTracer(&buf)
	f.syms = syms
	f.enabled = true
	return f
}

func TestFtraceLookupWithinRange(t *testing.T) {
	f := newTestTracer([]funcSym{
		{name: "main", addr: 0x1000, size: 0x40},
		{name: "helper", addr: 0x1040, size: 0x20},
	})
	if got := f.Lookup(0x1010); got != "main" {
		t.Fatalf("lookup 0x1010: got %q, want main", got)
	}
	if got := f.Lookup(0x1040); got != "helper" {
		t.Fatalf("lookup 0x1040: got %q, want helper", got)
	}
}

func TestFtraceLookupUnknownAddress(t *testing.T) {
	f := newTestTracer([]funcSym{{name: "main", addr: 0x1000, size: 0x10}})
	if got := f.Lookup(0x5000); got != "???" {
		t.Fatalf("lookup out of range: got %q, want ???", got)
	}
	if got := f.Lookup(0); got != "???" {
		t.Fatalf("lookup below lowest symbol: got %q, want ???", got)
	}
}

func TestFtraceJALAlwaysCalls(t *testing.T) {
	var buf bytes.Buffer
	f := NewFuncTracer(&buf)
	f.syms = []funcSym{{name: "target", addr: 0x2000, size: 0x10}}
	f.enabled = true

	f.OnJAL(0x1000, 0x2000)
	if f.depth != 1 {
		t.Fatalf("expected depth 1 after JAL, got %d", f.depth)
	}
	if buf.Len() == 0 {
		t.Fatal("expected a call line to be logged")
	}
}

func TestFtraceJALRClassification(t *testing.T) {
	var buf bytes.Buffer
	f := NewFuncTracer(&buf)
	f.enabled = true

	f.OnJALR(0x100, 1, 2, 0, 0x200) // rd==ra -> call
	if f.depth != 1 {
		t.Fatalf("expected call to increment depth, got %d", f.depth)
	}

	f.OnJALR(0x204, 0, 1, 0, 0x104) // rd==0, rs1==ra, imm==0 -> return
	if f.depth != 0 {
		t.Fatalf("expected return to decrement depth, got %d", f.depth)
	}
}

func TestFtraceDisabledWhenInitFails(t *testing.T) {
	var buf bytes.Buffer
	f := NewFuncTracer(&buf)
	f.Init("/nonexistent/path/to.elf")
	if f.Enabled() {
		t.Fatal("expected ftrace to remain disabled after a load failure")
	}
}
