// Package mmu implements the simulator's flat virtual memory region: a
// contiguous byte array of fixed size at a fixed base address, with
// typed little-endian load/store primitives and range checking.
package mmu

import (
	"fmt"
	"io"

	"github.com/rv64isim/rv64i-sim/internal/fault"
)

const (
	// Base is the fixed virtual base address memory is mapped at.
	Base uint64 = 0x80000000
	// Size is the fixed length of the simulated memory region, 1 MiB.
	Size uint64 = 0x00100000
)

// Memory is a flat byte-addressable region of Size bytes mapped at
// [Base, Base+Size). It is the canonical representation; loads and
// stores are built by combining (OR/shift) and splitting (shift/mask)
// bytes at increasing addresses, byte k of a multi-byte word living at
// addr+k.
type Memory struct {
	bytes []byte
}

// New allocates a zeroed Memory region and copies image into the start
// of it. image must not be longer than Size.
func New(image []byte) *Memory {
	m := &Memory{bytes: make([]byte, Size)}
	copy(m.bytes, image)
	return m
}

// InRange reports whether every byte of a width-bit access starting at
// addr lies within [Base, Base+Size).
func InRange(addr uint64, width uint) bool {
	if addr < Base {
		return false
	}
	n := uint64(width / 8)
	if n == 0 {
		return false
	}
	end := addr + n - 1
	return end < Base+Size && end >= addr
}

// Load reads width bits (width ∈ {8,16,32,64}) at addr and returns
// their little-endian interpretation as a u64.
func (m *Memory) Load(addr uint64, width uint) (uint64, error) {
	n, err := byteCount(width)
	if err != nil {
		return 0, err
	}
	if !InRange(addr, width) {
		return 0, fault.New(fault.LoadAccessFault, addr, "load out of range: addr=0x%x width=%d", addr, width)
	}
	off := addr - Base
	var v uint64
	for k := uint64(0); k < n; k++ {
		v |= uint64(m.bytes[off+k]) << (8 * k)
	}
	return v, nil
}

// Store writes the low width bits of value, little-endian, at addr.
func (m *Memory) Store(addr uint64, width uint, value uint64) error {
	n, err := byteCount(width)
	if err != nil {
		return err
	}
	if !InRange(addr, width) {
		return fault.New(fault.LoadAccessFault, addr, "store out of range: addr=0x%x width=%d", addr, width)
	}
	off := addr - Base
	for k := uint64(0); k < n; k++ {
		m.bytes[off+k] = byte(value >> (8 * k))
	}
	return nil
}

func byteCount(width uint) (uint64, error) {
	switch width {
	case 8, 16, 32, 64:
		return uint64(width / 8), nil
	default:
		return 0, fault.New(fault.MisalignedAccess, 0, "unsupported access width: %d", width)
	}
}

// Dump writes a hex view of the populated region to w, sixteen bytes
// per line, prefixed with the virtual address of the line's first
// byte.
func (m *Memory) Dump(w io.Writer, length uint64) error {
	if length > Size {
		length = Size
	}
	for off := uint64(0); off < length; off += 16 {
		end := off + 16
		if end > length {
			end = length
		}
		if _, err := fmt.Fprintf(w, "%08x  ", Base+off); err != nil {
			return err
		}
		for i := off; i < end; i++ {
			if _, err := fmt.Fprintf(w, "%02x ", m.bytes[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	return nil
}

// Bytes returns the underlying byte slice. Callers must not retain
// mutations beyond the Memory's lifetime expectations; this exists for
// bulk inspection (e.g. rehydrating an image for comparison in tests).
func (m *Memory) Bytes() []byte {
	return m.bytes
}
