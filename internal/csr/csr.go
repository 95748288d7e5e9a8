// Package csr implements the control-and-status register file defined
// by the Zicsr extension: a 4096-entry table of 64-bit words with the
// supervisor-view aliasing rules layered on top of the machine-mode
// registers they delegate from.
package csr

// Named CSR addresses. Only the three aliased addresses (SIe, SIp,
// SStatus) have special load/store semantics; the rest are plain
// indices into the table, named here so callers can refer to them
// without bare hex literals.
const (
	MHartID = 0xf14

	MStatus  = 0x300
	MISA     = 0x301
	MEDeleg  = 0x302
	MIDeleg  = 0x303
	MIE      = 0x304
	MTVec    = 0x305
	MCounter = 0x306

	MScratch = 0x340
	MEPC     = 0x341
	MCause   = 0x342
	MTVal    = 0x343
	MIp      = 0x344

	SStatus  = 0x100
	SIe      = 0x104
	STVec    = 0x105
	SCounter = 0x106

	SScratch = 0x140
	SEPC     = 0x141
	SCause   = 0x142
	STVal    = 0x143
	SIp      = 0x144
	SATP     = 0x180
)

// Individual mstatus bit masks, combined below into the mask of bits
// sstatus exposes from mstatus.
const (
	maskSIE  = 1 << 1
	maskSPIE = 1 << 5
	maskUBE  = 1 << 6
	maskSPP  = 1 << 8
	maskFS   = 3 << 13
	maskXS   = 3 << 15
	maskSUM  = 1 << 18
	maskMXR  = 1 << 19
	maskUXL  = 3 << 32
	maskSD   = 1 << 63

	// sstatusMask is the set of mstatus bits visible through sstatus.
	sstatusMask = maskSIE | maskSPIE | maskUBE | maskSPP |
		maskFS | maskXS | maskSUM | maskMXR | maskUXL | maskSD
)

// numEntries is the size of the CSR table; CSR numbers are 12 bits.
const numEntries = 4096

// File is the CSR register table.
type File struct {
	csrs [numEntries]uint64
}

// New returns a zeroed CSR file.
func New() *File {
	return &File{}
}

// Load returns the value at addr, applying the sie/sip/sstatus
// aliasing rules.
func (f *File) Load(addr uint64) uint64 {
	switch addr {
	case SIe:
		return f.csrs[MIE] & f.csrs[MIDeleg]
	case SIp:
		return f.csrs[MIp] & f.csrs[MIDeleg]
	case SStatus:
		return f.csrs[MStatus] & sstatusMask
	default:
		return f.csrs[addr]
	}
}

// Store writes value at addr. On the three aliased addresses this
// updates only the delegated/masked bits of the backing machine
// register, but — per the source contract this implementation
// preserves — it also unconditionally writes value into the raw slot,
// so a later read of the raw address observes the literal value
// rather than the recomputed alias.
func (f *File) Store(addr uint64, value uint64) {
	switch addr {
	case SIe:
		f.csrs[MIE] = (f.csrs[MIE] &^ f.csrs[MIDeleg]) | (value & f.csrs[MIDeleg])
	case SIp:
		f.csrs[MIp] = (f.csrs[MIp] &^ f.csrs[MIDeleg]) | (value & f.csrs[MIDeleg])
	case SStatus:
		f.csrs[MStatus] = (f.csrs[MStatus] &^ uint64(sstatusMask)) | (value & sstatusMask)
	}
	f.csrs[addr] = value
}
