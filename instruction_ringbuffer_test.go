package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRingBufferDumpBeforeWrap(t *testing.T) {
	r := NewInstructionRingBuffer()
	r.Add(0x100, "nop")
	r.Add(0x104, "addi x1, x0, 1")

	var buf bytes.Buffer
	r.Dump(&buf, 0x104)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "-->") {
		t.Fatalf("expected crash marker on second line, got %q", lines[1])
	}
	if !strings.HasPrefix(lines[0], "   ") {
		t.Fatalf("expected no marker on first line, got %q", lines[0])
	}
}

func TestRingBufferWrapsAndKeepsInsertionOrder(t *testing.T) {
	r := NewInstructionRingBuffer()
	for i := 0; i < ringBufferSize+3; i++ {
		r.Add(uint32(i), "x")
	}
	var buf bytes.Buffer
	r.Dump(&buf, 0xffffffff)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != ringBufferSize {
		t.Fatalf("expected %d lines after wraparound, got %d", ringBufferSize, len(lines))
	}
	// Oldest surviving pc should be 3 (0..2 were overwritten).
	if !strings.Contains(lines[0], "0x00000003") {
		t.Fatalf("expected oldest surviving entry to be pc=3, got %q", lines[0])
	}
}
