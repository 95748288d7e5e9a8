package csr_test

import (
	"testing"

	"github.com/rv64isim/rv64i-sim/internal/csr"
)

func TestPlainReadWrite(t *testing.T) {
	f := csr.New()
	f.Store(csr.MScratch, 0x1234)
	if got := f.Load(csr.MScratch); got != 0x1234 {
		t.Fatalf("got 0x%x want 0x1234", got)
	}
}

func TestSieDelegation(t *testing.T) {
	f := csr.New()
	f.Store(csr.MIDeleg, 0x0F)
	f.Store(csr.MIE, 0xFF)

	if got := f.Load(csr.SIe); got != 0x0F {
		t.Fatalf("sie read: got 0x%x want 0x0F", got)
	}

	// writing sie should only touch the delegated bits of mie
	f.Store(csr.SIe, 0x00)
	if got := f.Load(csr.MIE); got != 0xF0 {
		t.Fatalf("mie after sie write: got 0x%x want 0xF0", got)
	}
}

func TestSipDelegation(t *testing.T) {
	f := csr.New()
	f.Store(csr.MIDeleg, 0x03)
	f.Store(csr.MIp, 0x0B)

	if got := f.Load(csr.SIp); got != 0x03 {
		t.Fatalf("sip read: got 0x%x want 0x03", got)
	}

	f.Store(csr.SIp, 0xFF)
	if got := f.Load(csr.MIp); got != 0x0B|0x03 {
		t.Fatalf("mip after sip write: got 0x%x want 0x0B", got)
	}
}

func TestSstatusMask(t *testing.T) {
	f := csr.New()
	f.Store(csr.MStatus, ^uint64(0))
	got := f.Load(csr.SStatus)
	if got == 0 || got == ^uint64(0) {
		t.Fatalf("expected a masked subset of mstatus, got 0x%x", got)
	}
}
