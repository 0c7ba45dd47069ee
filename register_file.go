// register_file.go - general-purpose register file, pc and CSR bank

package main

// regABINames is the ABI register-naming table (x0..x31), used both by the
// monitor's register dump and the expression evaluator's REG token lookup.
var regABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// RegisterFile holds the 32 general-purpose words, the program counter, and
// the small fixed-index CSR bank. x[0] is hardwired to zero: every write is
// silently discarded rather than stored.
type RegisterFile struct {
	X   [32]uint32
	PC  uint32
	CSR [CSR_COUNT]uint32
}

// Get reads register i (0..31). x0 always reads as zero.
func (r *RegisterFile) Get(i uint32) uint32 {
	if i == 0 {
		return 0
	}
	return r.X[i&31]
}

// Set writes register i. Writes to x0 are discarded, preserving the
// invariant that x[0] == 0 after every instruction.
func (r *RegisterFile) Set(i uint32, v uint32) {
	if i == 0 {
		return
	}
	r.X[i&31] = v
}

// lookupRegisterName resolves a bare register name (no leading '$') to its
// current value, accepting both the xN form and the ABI alias. Used by the
// expression evaluator's REG token.
func (r *RegisterFile) lookupRegisterName(name string) (uint32, bool) {
	if name == "pc" {
		return r.PC, true
	}
	switch name {
	case "mtvec":
		return r.CSR[CSR_MTVEC], true
	case "mepc":
		return r.CSR[CSR_MEPC], true
	case "mcause":
		return r.CSR[CSR_MCAUSE], true
	case "mstatus":
		return r.CSR[CSR_MSTATUS], true
	}
	for i, abi := range regABINames {
		if abi == name {
			return r.Get(uint32(i)), true
		}
	}
	if len(name) >= 2 && name[0] == 'x' {
		n, ok := parseUintDecimal(name[1:])
		if ok && n < 32 {
			return r.Get(uint32(n)), true
		}
	}
	return 0, false
}

func parseUintDecimal(s string) (uint32, bool) {
	if s == "" {
		return 0, false
	}
	var v uint32
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		v = v*10 + uint32(c-'0')
	}
	return v, true
}
