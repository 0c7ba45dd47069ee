// instruction_ringbuffer.go - last-N retired instructions, for crash dumps
//
// Grounded on original_source/.../nemu/src/cpu/iringbuf.c: a fixed 16-entry
// circular buffer of (pc, disasm) pairs, overwriting the oldest entry on
// each insert. Dump prints entries oldest-to-newest in insertion order,
// marking the row whose pc matches the crash pc.

package main

import (
	"fmt"
	"io"
)

const ringBufferSize = 16

type ringEntry struct {
	pc     uint32
	disasm string
}

// InstructionRingBuffer is a fixed-capacity trace of the most recently
// retired instructions, dumped verbatim on a fatal host error.
type InstructionRingBuffer struct {
	entries [ringBufferSize]ringEntry
	pos     int
	full    bool
}

func NewInstructionRingBuffer() *InstructionRingBuffer {
	return &InstructionRingBuffer{}
}

// Add appends one retired instruction, overwriting the oldest slot once the
// buffer has wrapped around.
func (r *InstructionRingBuffer) Add(pc uint32, disasm string) {
	r.entries[r.pos] = ringEntry{pc: pc, disasm: disasm}
	r.pos = (r.pos + 1) % ringBufferSize
	if r.pos == 0 {
		r.full = true
	}
}

// Dump writes every live entry in insertion order, marking the entry whose
// pc equals crashPC with "-->".
func (r *InstructionRingBuffer) Dump(w io.Writer, crashPC uint32) {
	start, count := 0, r.pos
	if r.full {
		start, count = r.pos, ringBufferSize
	}
	for i := 0; i < count; i++ {
		idx := (start + i) % ringBufferSize
		e := r.entries[idx]
		marker := "   "
		if e.pc == crashPC {
			marker = "-->"
		}
		fmt.Fprintf(w, "%s 0x%08x: %s\n", marker, e.pc, e.disasm)
	}
}
