// Package cpu implements the fetch-decode-execute loop that drives the
// simulated hart: it owns memory, the register file, and the CSR
// table, and applies RV64I + Zicsr instruction semantics to them one
// cycle at a time.
package cpu

import (
	"log/slog"

	"github.com/rv64isim/rv64i-sim/internal/csr"
	"github.com/rv64isim/rv64i-sim/internal/decode"
	"github.com/rv64isim/rv64i-sim/internal/fault"
	"github.com/rv64isim/rv64i-sim/internal/mmu"
	"github.com/rv64isim/rv64i-sim/internal/regfile"
)

// State is the run state of the execution engine.
type State int

const (
	Running State = iota
	Halted
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "halted"
}

// CPU is a single simulated hart: memory, registers, CSRs, and PC,
// bound together by the fetch-decode-execute loop.
type CPU struct {
	Mem *mmu.Memory
	Reg *regfile.File
	CSR *csr.File

	state   State
	log     *slog.Logger
	imgLen  uint64
	lastErr error
}

// New constructs a CPU with memory initialized from image and the
// register file/PC at their reset values. The length of image is kept
// to compute the termination window.
func New(image []byte, log *slog.Logger) *CPU {
	if log == nil {
		log = slog.Default()
	}
	return &CPU{
		Mem:    mmu.New(image),
		Reg:    regfile.Reset(mmu.Base, mmu.Size),
		CSR:    csr.New(),
		state:  Running,
		log:    log,
		imgLen: uint64(len(image)),
	}
}

// State returns the engine's current run state.
func (c *CPU) State() State { return c.state }

// Err returns the fault that halted the engine, if any.
func (c *CPU) Err() error { return c.lastErr }

// inRange reports whether PC is still inside the loaded program image.
func (c *CPU) inRange() bool {
	return c.Reg.PC >= mmu.Base && c.Reg.PC < mmu.Base+c.imgLen
}

// Run executes cycles until the engine halts or maxSteps is reached
// (0 means unbounded). It returns the number of cycles executed.
func (c *CPU) Run(maxSteps uint64) uint64 {
	var n uint64
	for c.state == Running {
		if maxSteps != 0 && n >= maxSteps {
			break
		}
		if !c.inRange() {
			c.log.Debug("pc left loaded region, halting", "pc", c.Reg.PC)
			c.state = Halted
			break
		}
		if err := c.Step(); err != nil {
			c.lastErr = err
			c.state = Halted
			if f, ok := fault.As(err); ok {
				c.log.Error("fault", "kind", f.Kind.String(), "pc", f.PC)
			}
			break
		}
		n++
	}
	return n
}

// Step executes a single fetch-decode-execute cycle. A fault raised
// while executing carries the address of the faulting instruction.
func (c *CPU) Step() error {
	pcBefore := c.Reg.PC
	word, err := c.Mem.Load(pcBefore, 32)
	if err != nil {
		return err
	}
	c.log.Debug("step", "pc", pcBefore, "word", word)

	opcode := decode.Opcode(uint32(word))
	c.Reg.PC = pcBefore + 4

	err = c.execute(opcode, uint32(word), pcBefore)
	if f, ok := fault.As(err); ok {
		f.PC = pcBefore
	}
	return err
}

func (c *CPU) execute(opcode uint32, word uint32, pcBefore uint64) error {
	switch opcode {
	case decode.OpcodeLUI:
		inst := decode.DecodeU(word)
		c.Reg.Set(inst.Rd, uint64(inst.Imm))
		return nil

	case decode.OpcodeAUIPC:
		inst := decode.DecodeU(word)
		c.Reg.Set(inst.Rd, pcBefore+uint64(inst.Imm))
		return nil

	case decode.OpcodeJAL:
		return c.execJAL(word, pcBefore)

	case decode.OpcodeJALR:
		return c.execJALR(word, pcBefore)

	case decode.OpcodeBranch:
		return c.execBranch(word, pcBefore)

	case decode.OpcodeLoad:
		return c.execLoad(word, pcBefore)

	case decode.OpcodeStore:
		return c.execStore(word, pcBefore)

	case decode.OpcodeOpImm:
		return c.execOpImm(word, pcBefore)

	case decode.OpcodeOp:
		return c.execOp(word, pcBefore)

	case decode.OpcodeOpImm32:
		return c.execOpImm32(word, pcBefore)

	case decode.OpcodeOp32:
		return c.execOp32(word, pcBefore)

	case decode.OpcodeFence:
		return nil

	case decode.OpcodeSystem:
		return c.execSystem(word, pcBefore)

	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized opcode 0x%02x", opcode)
	}
}

func (c *CPU) execJAL(word uint32, pcBefore uint64) error {
	inst := decode.DecodeJ(word)
	c.Reg.Set(inst.Rd, pcBefore+4)
	c.Reg.PC = pcBefore + uint64(inst.Imm)
	return nil
}

func (c *CPU) execJALR(word uint32, pcBefore uint64) error {
	inst := decode.DecodeI(word)
	target := (c.Reg.Get(inst.Rs1) + uint64(inst.Imm)) &^ 1
	c.Reg.Set(inst.Rd, pcBefore+4)
	c.Reg.PC = target
	return nil
}

func (c *CPU) execBranch(word uint32, pcBefore uint64) error {
	inst := decode.DecodeB(word)
	a, b := c.Reg.Get(inst.Rs1), c.Reg.Get(inst.Rs2)
	var taken bool
	switch inst.Funct3 {
	case 0b000: // BEQ
		taken = a == b
	case 0b001: // BNE
		taken = a != b
	case 0b100: // BLT
		taken = int64(a) < int64(b)
	case 0b101: // BGE
		taken = int64(a) >= int64(b)
	case 0b110: // BLTU
		taken = a < b
	case 0b111: // BGEU
		taken = a >= b
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized branch funct3 0b%03b", inst.Funct3)
	}
	if taken {
		c.Reg.PC = pcBefore + uint64(inst.Imm)
	}
	return nil
}

func (c *CPU) execLoad(word uint32, pcBefore uint64) error {
	inst := decode.DecodeI(word)
	ea := c.Reg.Get(inst.Rs1) + uint64(inst.Imm)

	var width uint
	var signExtend bool
	switch inst.Funct3 {
	case 0b000:
		width, signExtend = 8, true // LB
	case 0b001:
		width, signExtend = 16, true // LH
	case 0b010:
		width, signExtend = 32, true // LW
	case 0b011:
		width, signExtend = 64, false // LD
	case 0b100:
		width, signExtend = 8, false // LBU
	case 0b101:
		width, signExtend = 16, false // LHU
	case 0b110:
		width, signExtend = 32, false // LWU
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized load funct3 0b%03b", inst.Funct3)
	}

	raw, err := c.Mem.Load(ea, width)
	if err != nil {
		return err
	}
	if signExtend {
		c.Reg.Set(inst.Rd, uint64(decode.SignExtend(raw, width)))
	} else {
		c.Reg.Set(inst.Rd, raw)
	}
	return nil
}

func (c *CPU) execStore(word uint32, pcBefore uint64) error {
	inst := decode.DecodeS(word)
	ea := c.Reg.Get(inst.Rs1) + uint64(inst.Imm)
	v := c.Reg.Get(inst.Rs2)

	var width uint
	switch inst.Funct3 {
	case 0b000:
		width = 8 // SB
	case 0b001:
		width = 16 // SH
	case 0b010:
		width = 32 // SW
	case 0b011:
		width = 64 // SD
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized store funct3 0b%03b", inst.Funct3)
	}
	return c.Mem.Store(ea, width, v)
}

func (c *CPU) execOpImm(word uint32, pcBefore uint64) error {
	inst := decode.DecodeI(word)
	a := c.Reg.Get(inst.Rs1)
	imm := uint64(inst.Imm)

	var result uint64
	switch inst.Funct3 {
	case 0b000: // ADDI
		result = a + imm
	case 0b010: // SLTI
		result = boolToU64(int64(a) < inst.Imm)
	case 0b011: // SLTIU
		result = boolToU64(a < imm)
	case 0b100: // XORI
		result = a ^ imm
	case 0b110: // ORI
		result = a | imm
	case 0b111: // ANDI
		result = a & imm
	case 0b001: // SLLI
		result = a << (uint(word>>20) & 0x3f)
	case 0b101: // SRLI/SRAI, disambiguated by bit 30 of the raw word
		shamt := uint(word>>20) & 0x3f
		if word&(1<<30) != 0 {
			result = uint64(int64(a) >> shamt) // SRAI
		} else {
			result = a >> shamt // SRLI
		}
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized op-imm funct3 0b%03b", inst.Funct3)
	}
	c.Reg.Set(inst.Rd, result)
	return nil
}

func (c *CPU) execOp(word uint32, pcBefore uint64) error {
	inst := decode.DecodeR(word)
	a, b := c.Reg.Get(inst.Rs1), c.Reg.Get(inst.Rs2)
	shamt := uint(b & 0x3f)

	var result uint64
	switch {
	case inst.Funct3 == 0b000 && inst.Funct7 == 0x00: // ADD
		result = a + b
	case inst.Funct3 == 0b000 && inst.Funct7 == 0x20: // SUB
		result = a - b
	case inst.Funct3 == 0b001 && inst.Funct7 == 0x00: // SLL
		result = a << shamt
	case inst.Funct3 == 0b010 && inst.Funct7 == 0x00: // SLT
		result = boolToU64(int64(a) < int64(b))
	case inst.Funct3 == 0b011 && inst.Funct7 == 0x00: // SLTU
		result = boolToU64(a < b)
	case inst.Funct3 == 0b100 && inst.Funct7 == 0x00: // XOR
		result = a ^ b
	case inst.Funct3 == 0b101 && inst.Funct7 == 0x00: // SRL
		result = a >> shamt
	case inst.Funct3 == 0b101 && inst.Funct7 == 0x20: // SRA
		result = uint64(int64(a) >> shamt)
	case inst.Funct3 == 0b110 && inst.Funct7 == 0x00: // OR
		result = a | b
	case inst.Funct3 == 0b111 && inst.Funct7 == 0x00: // AND
		result = a & b
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized op funct3/funct7 0b%03b/0x%02x", inst.Funct3, inst.Funct7)
	}
	c.Reg.Set(inst.Rd, result)
	return nil
}

func (c *CPU) execOpImm32(word uint32, pcBefore uint64) error {
	inst := decode.DecodeI(word)
	a := uint32(c.Reg.Get(inst.Rs1))

	var result32 uint32
	switch inst.Funct3 {
	case 0b000: // ADDIW
		result32 = a + uint32(inst.Imm)
	case 0b001: // SLLIW
		result32 = a << (uint(word>>20) & 0x1f)
	case 0b101: // SRLIW/SRAIW
		shamt := uint(word>>20) & 0x1f
		if word&(1<<30) != 0 {
			result32 = uint32(int32(a) >> shamt) // SRAIW
		} else {
			result32 = a >> shamt // SRLIW
		}
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized op-imm-32 funct3 0b%03b", inst.Funct3)
	}
	c.Reg.Set(inst.Rd, uint64(decode.SignExtend(uint64(result32), 32)))
	return nil
}

func (c *CPU) execOp32(word uint32, pcBefore uint64) error {
	inst := decode.DecodeR(word)
	a, b := uint32(c.Reg.Get(inst.Rs1)), uint32(c.Reg.Get(inst.Rs2))
	shamt := uint(b & 0x1f)

	var result32 uint32
	switch {
	case inst.Funct3 == 0b000 && inst.Funct7 == 0x00: // ADDW
		result32 = a + b
	case inst.Funct3 == 0b000 && inst.Funct7 == 0x20: // SUBW
		result32 = a - b
	case inst.Funct3 == 0b001 && inst.Funct7 == 0x00: // SLLW
		result32 = a << shamt
	case inst.Funct3 == 0b101 && inst.Funct7 == 0x00: // SRLW
		result32 = a >> shamt
	case inst.Funct3 == 0b101 && inst.Funct7 == 0x20: // SRAW
		result32 = uint32(int32(a) >> shamt)
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized op-32 funct3/funct7 0b%03b/0x%02x", inst.Funct3, inst.Funct7)
	}
	c.Reg.Set(inst.Rd, uint64(decode.SignExtend(uint64(result32), 32)))
	return nil
}

func (c *CPU) execSystem(word uint32, pcBefore uint64) error {
	inst := decode.DecodeI(word)
	addr := uint64(inst.Imm) & 0xfff

	switch inst.Funct3 {
	case 0b000: // ECALL / EBREAK
		return nil
	case 0b001: // CSRRW
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, c.Reg.Get(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	case 0b010: // CSRRS
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, t|c.Reg.Get(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	case 0b011: // CSRRC
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, t&^c.Reg.Get(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	case 0b101: // CSRRWI
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, uint64(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	case 0b110: // CSRRSI
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, t|uint64(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	case 0b111: // CSRRCI
		t := c.CSR.Load(addr)
		c.CSR.Store(addr, t&^uint64(inst.Rs1))
		c.Reg.Set(inst.Rd, t)
	default:
		return fault.New(fault.IllegalInstruction, pcBefore, "unrecognized system funct3 0b%03b", inst.Funct3)
	}
	return nil
}

func boolToU64(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
