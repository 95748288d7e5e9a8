package mmu_test

import (
	"testing"

	"github.com/rv64isim/rv64i-sim/internal/fault"
	"github.com/rv64isim/rv64i-sim/internal/mmu"
)

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		width uint
		value uint64
	}{
		{8, 0xAB},
		{16, 0xBEEF},
		{32, 0xDEADBEEF},
		{64, 0x0123456789ABCDEF},
	}

	for _, c := range cases {
		m := mmu.New(nil)
		if err := m.Store(mmu.Base+16, c.width, c.value); err != nil {
			t.Fatalf("store width=%d: %v", c.width, err)
		}
		got, err := m.Load(mmu.Base+16, c.width)
		if err != nil {
			t.Fatalf("load width=%d: %v", c.width, err)
		}
		mask := uint64(1)<<c.width - 1
		if c.width == 64 {
			mask = ^uint64(0)
		}
		if got != c.value&mask {
			t.Fatalf("width=%d: got 0x%x want 0x%x", c.width, got, c.value&mask)
		}
	}
}

func TestNarrowReadAfterWideWrite(t *testing.T) {
	m := mmu.New(nil)
	const v uint64 = 0x0123456789ABCDEF
	if err := m.Store(mmu.Base, 64, v); err != nil {
		t.Fatal(err)
	}
	for _, w := range []uint{8, 16, 32} {
		got, err := m.Load(mmu.Base, w)
		if err != nil {
			t.Fatal(err)
		}
		want := v & (uint64(1)<<w - 1)
		if got != want {
			t.Fatalf("width=%d: got 0x%x want 0x%x", w, got, want)
		}
	}
}

func TestLittleEndianLayout(t *testing.T) {
	m := mmu.New(nil)
	if err := m.Store(mmu.Base, 32, 0xAABBCCDD); err != nil {
		t.Fatal(err)
	}
	b := m.Bytes()
	if b[0] != 0xDD || b[1] != 0xCC || b[2] != 0xBB || b[3] != 0xAA {
		t.Fatalf("unexpected byte layout: % x", b[:4])
	}
}

func TestBoundary(t *testing.T) {
	m := mmu.New(nil)
	if _, err := m.Load(mmu.Base, 64); err != nil {
		t.Fatalf("load at base should succeed: %v", err)
	}
	if _, err := m.Load(mmu.Base+mmu.Size-8, 64); err != nil {
		t.Fatalf("load at last 8 bytes should succeed: %v", err)
	}
	if _, err := m.Load(mmu.Base-1, 8); err == nil {
		t.Fatal("one byte before base should fault")
	}
	if _, err := m.Load(mmu.Base+mmu.Size-7, 64); err == nil {
		t.Fatal("one byte past end should fault")
	}
}

func TestFaultKind(t *testing.T) {
	m := mmu.New(nil)
	_, err := m.Load(mmu.Base+mmu.Size, 8)
	f, ok := fault.As(err)
	if !ok {
		t.Fatalf("expected a *fault.Fault, got %v", err)
	}
	if f.Kind != fault.LoadAccessFault {
		t.Fatalf("got kind %v, want LoadAccessFault", f.Kind)
	}
}

func TestUnsupportedWidth(t *testing.T) {
	m := mmu.New(nil)
	if _, err := m.Load(mmu.Base, 24); err == nil {
		t.Fatal("expected misaligned access error for width=24")
	}
}

func TestImageLoadedAtReset(t *testing.T) {
	img := []byte{0x93, 0x0f, 0xa0, 0x02}
	m := mmu.New(img)
	got, err := m.Load(mmu.Base, 32)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x02a00f93 {
		t.Fatalf("got 0x%x want 0x02a00f93", got)
	}
	rest, err := m.Load(mmu.Base+4, 32)
	if err != nil {
		t.Fatal(err)
	}
	if rest != 0 {
		t.Fatalf("expected zeroed remainder, got 0x%x", rest)
	}
}
