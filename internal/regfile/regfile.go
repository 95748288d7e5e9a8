// Package regfile implements the 32 general-purpose registers and the
// program counter. x0 is hard-wired to zero: writes to it are silently
// discarded and reads always return 0.
package regfile

import "fmt"

// ABINames maps a register index to its RISC-V calling-convention name,
// in the order the ISA manual lists them.
var ABINames = [32]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

// File holds the 32 general-purpose registers and the program counter.
type File struct {
	x  [32]uint64
	PC uint64
}

// Reset sets the register file to its power-on state: the stack
// pointer (x2) at the top of the memory image, every other GPR zero,
// and PC at the image's load address.
func Reset(base, size uint64) *File {
	f := &File{}
	f.x[2] = base + size - 4
	f.PC = base
	return f
}

// Get returns the value of register i. Reading x0 always yields 0.
func (f *File) Get(i uint32) uint64 {
	if i == 0 {
		return 0
	}
	return f.x[i]
}

// Set writes value into register i. Writes to x0 are discarded.
func (f *File) Set(i uint32, value uint64) {
	if i == 0 {
		return
	}
	f.x[i] = value
}

// Name returns the ABI name for register i, or a bare "xN" form if i
// is out of range.
func Name(i uint32) string {
	if int(i) < len(ABINames) {
		return ABINames[i]
	}
	return fmt.Sprintf("x%d", i)
}
