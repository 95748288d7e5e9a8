// Package decode implements the pure functions that turn a 32-bit
// RV64I-encoded instruction word into one of the six typed format
// records (R, I, S, B, U, J). No state, no side effects: everything
// here is a function of the raw word alone.
package decode

// Opcode groups, the low 7 bits of the raw instruction word.
const (
	OpcodeLoad    = 0b0000011
	OpcodeStore   = 0b0100011
	OpcodeBranch  = 0b1100011
	OpcodeJALR    = 0b1100111
	OpcodeJAL     = 0b1101111
	OpcodeOpImm   = 0b0010011 // ARITH-I
	OpcodeOp      = 0b0110011 // ARITH-R
	OpcodeOpImm32 = 0b0011011 // ARITH-IW
	OpcodeOp32    = 0b0111011 // ARITH-RW
	OpcodeLUI     = 0b0110111
	OpcodeAUIPC   = 0b0010111
	OpcodeFence   = 0b0001111
	OpcodeSystem  = 0b1110011 // ECALL / EBREAK / CSR*
)

// Opcode returns the low 7 bits of word, the field that selects the
// execution branch.
func Opcode(word uint32) uint32 {
	return word & 0x7f
}

// SignExtend reinterprets the low `bits` bits of value as a signed
// quantity and replicates its sign bit up to 64 bits. This is the
// single primitive every immediate-decoding path in this package (and
// every arithmetic path that needs it) routes through.
func SignExtend(value uint64, bits uint) int64 {
	shift := 64 - bits
	return int64(value<<shift) >> shift
}

// RType carries the fields of a register-register instruction.
type RType struct {
	Funct7 uint32
	Rs2    uint32
	Rs1    uint32
	Funct3 uint32
	Rd     uint32
}

// DecodeR extracts an RType record from word.
func DecodeR(word uint32) RType {
	return RType{
		Funct7: (word >> 25) & 0x7f,
		Rs2:    (word >> 20) & 0x1f,
		Rs1:    (word >> 15) & 0x1f,
		Funct3: (word >> 12) & 0x7,
		Rd:     (word >> 7) & 0x1f,
	}
}

// IType carries the fields of an immediate/load/jalr instruction. Imm
// is the sign-extended 12-bit immediate in bits[31:20].
type IType struct {
	Imm    int64
	Rs1    uint32
	Rd     uint32
	Funct3 uint32
}

// DecodeI extracts an IType record from word.
func DecodeI(word uint32) IType {
	raw := uint64(word>>20) & 0xfff
	return IType{
		Imm:    SignExtend(raw, 12),
		Rs1:    (word >> 15) & 0x1f,
		Rd:     (word >> 7) & 0x1f,
		Funct3: (word >> 12) & 0x7,
	}
}

// SType carries the fields of a store instruction. Imm is assembled
// from {bits[31:25], bits[11:7]} and sign-extended from 12 bits.
type SType struct {
	Imm    int64
	Rs2    uint32
	Rs1    uint32
	Funct3 uint32
}

// DecodeS extracts an SType record from word.
func DecodeS(word uint32) SType {
	imm11_5 := (word >> 25) & 0x7f
	imm4_0 := (word >> 7) & 0x1f
	raw := uint64(imm11_5<<5 | imm4_0)
	return SType{
		Imm:    SignExtend(raw, 12),
		Rs2:    (word >> 20) & 0x1f,
		Rs1:    (word >> 15) & 0x1f,
		Funct3: (word >> 12) & 0x7,
	}
}

// BType carries the fields of a branch instruction. Imm is assembled
// from {bit[31], bit[7], bits[30:25], bits[11:8], 0} and sign-extended
// from 13 bits.
type BType struct {
	Imm    int64
	Rs2    uint32
	Rs1    uint32
	Funct3 uint32
}

// DecodeB extracts a BType record from word.
func DecodeB(word uint32) BType {
	bit12 := (word >> 31) & 0x1
	bit11 := (word >> 7) & 0x1
	bits10_5 := (word >> 25) & 0x3f
	bits4_1 := (word >> 8) & 0xf
	raw := uint64(bit12<<12 | bit11<<11 | bits10_5<<5 | bits4_1<<1)
	return BType{
		Imm:    SignExtend(raw, 13),
		Rs2:    (word >> 20) & 0x1f,
		Rs1:    (word >> 15) & 0x1f,
		Funct3: (word >> 12) & 0x7,
	}
}

// UType carries the fields of a LUI/AUIPC instruction. Imm has
// bits[31:12] of word placed in bits[31:12] with the low 12 bits zero,
// sign-extended from 32 bits.
type UType struct {
	Imm int64
	Rd  uint32
}

// DecodeU extracts a UType record from word.
func DecodeU(word uint32) UType {
	raw := uint64(word & 0xfffff000)
	return UType{
		Imm: SignExtend(raw, 32),
		Rd:  (word >> 7) & 0x1f,
	}
}

// JType carries the fields of a JAL instruction. Imm is assembled from
// {bit[31], bits[19:12], bit[20], bits[30:21], 0} and sign-extended
// from 21 bits.
type JType struct {
	Imm int64
	Rd  uint32
}

// DecodeJ extracts a JType record from word.
func DecodeJ(word uint32) JType {
	bit20 := (word >> 31) & 0x1
	bits19_12 := (word >> 12) & 0xff
	bit11 := (word >> 20) & 0x1
	bits10_1 := (word >> 21) & 0x3ff
	raw := uint64(bit20<<20 | bits19_12<<12 | bit11<<11 | bits10_1<<1)
	return JType{
		Imm: SignExtend(raw, 21),
		Rd:  (word >> 7) & 0x1f,
	}
}
