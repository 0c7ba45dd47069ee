// disasm_riscv32.go - text disassembly for the instruction ring buffer and monitor

package main

import (
	"fmt"
	"strconv"
)

// disassemble renders one decoded instruction as a short mnemonic line, the
// same shape as the teacher's ring-buffer disasm text: "mnemonic operands".
// Unrecognized encodings render as "unknown" rather than failing — the ring
// buffer and ftrace must keep functioning on a malformed stream.
func disassemble(ins Instruction) string {
	r := func(i uint32) string { return "x" + strconv.Itoa(int(i)) }

	switch ins.Opcode {
	case opLUI:
		return fmt.Sprintf("lui     %s, 0x%x", r(ins.Rd), uint32(ins.Imm)>>12)
	case opAUIPC:
		return fmt.Sprintf("auipc   %s, 0x%x", r(ins.Rd), uint32(ins.Imm)>>12)
	case opJAL:
		return fmt.Sprintf("jal     %s, %d", r(ins.Rd), ins.Imm)
	case opJALR:
		return fmt.Sprintf("jalr    %s, %d(%s)", r(ins.Rd), ins.Imm, r(ins.Rs1))
	case opBranch:
		names := map[uint32]string{0: "beq", 1: "bne", 4: "blt", 5: "bge", 6: "bltu", 7: "bgeu"}
		name, ok := names[ins.Funct3]
		if !ok {
			return "unknown"
		}
		return fmt.Sprintf("%-7s %s, %s, %d", name, r(ins.Rs1), r(ins.Rs2), ins.Imm)
	case opLoad:
		names := map[uint32]string{0: "lb", 1: "lh", 2: "lw", 4: "lbu", 5: "lhu"}
		name, ok := names[ins.Funct3]
		if !ok {
			return "unknown"
		}
		return fmt.Sprintf("%-7s %s, %d(%s)", name, r(ins.Rd), ins.Imm, r(ins.Rs1))
	case opStore:
		names := map[uint32]string{0: "sb", 1: "sh", 2: "sw"}
		name, ok := names[ins.Funct3]
		if !ok {
			return "unknown"
		}
		return fmt.Sprintf("%-7s %s, %d(%s)", name, r(ins.Rs2), ins.Imm, r(ins.Rs1))
	case opOpImm:
		name := opImmMnemonic(ins.Funct3, ins.Funct7)
		return fmt.Sprintf("%-7s %s, %s, %d", name, r(ins.Rd), r(ins.Rs1), ins.Imm)
	case opOp:
		name := opMnemonic(ins.Funct3, ins.Funct7)
		return fmt.Sprintf("%-7s %s, %s, %s", name, r(ins.Rd), r(ins.Rs1), r(ins.Rs2))
	case opSystem:
		switch {
		case ins.Raw == 0x00000073:
			return "ecall"
		case ins.Raw == 0x30200073:
			return "mret"
		default:
			return "unknown"
		}
	default:
		return "unknown"
	}
}

func opImmMnemonic(funct3, funct7 uint32) string {
	switch funct3 {
	case 0:
		return "addi"
	case 2:
		return "slti"
	case 3:
		return "sltiu"
	case 4:
		return "xori"
	case 6:
		return "ori"
	case 7:
		return "andi"
	case 1:
		return "slli"
	case 5:
		if funct7&0x20 != 0 {
			return "srai"
		}
		return "srli"
	}
	return "unknown"
}

func opMnemonic(funct3, funct7 uint32) string {
	switch funct3 {
	case 0:
		if funct7&0x20 != 0 {
			return "sub"
		}
		return "add"
	case 1:
		return "sll"
	case 2:
		return "slt"
	case 3:
		return "sltu"
	case 4:
		return "xor"
	case 5:
		if funct7&0x20 != 0 {
			return "sra"
		}
		return "srl"
	case 6:
		return "or"
	case 7:
		return "and"
	}
	return "unknown"
}
