package memmap

import (
	"encoding/binary"
	"errors"
	"slices"
	"testing"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/internal/phys"
)

var qemuMap = []Entry{
	{Base: 0x0, Length: 0x9fc00, Type: TypeUsable},
	{Base: 0x9fc00, Length: 0x400, Type: TypeReserved},
	{Base: 0xf0000, Length: 0x10000, Type: TypeReserved},
	{Base: 0x100000, Length: 0x1ee0000, Type: TypeUsable},
	{Base: 0x1fe0000, Length: 0x20000, Type: TypeReserved},
	{Base: 0xfffc0000, Length: 0x40000, Type: TypeReserved},
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want Type
	}{
		{0, TypeReserved},
		{TypeUsable, TypeUsable},
		{TypeACPIReclaimable, TypeACPIReclaimable},
		{TypeACPINVS, TypeACPINVS},
		{5, TypeReserved},
		{0xffff, TypeReserved},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Type(%d).Normalize() = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSort(t *testing.T) {
	entries := []Entry{
		{Base: 0x0, Length: 0x1000},
		{Base: 0x3000, Length: 0x1000},
		{Base: 0x2000, Length: 0x2000},
		{Base: 0x1000, Length: 0x1000},
	}
	Sort(entries)
	var bases []uint64
	for _, e := range entries {
		bases = append(bases, e.Base)
	}
	if want := []uint64{0x3000, 0x2000, 0x1000, 0x0}; !slices.Equal(bases, want) {
		t.Errorf("sorted bases = %#x, want %#x", bases, want)
	}
}

func TestRegionPacking(t *testing.T) {
	r := NewRegion(0x1234_5678, RegionACPINVS)
	if r.Start() != 0x1234_5000 {
		t.Errorf("Start() = %#x", r.Start())
	}
	if r.Type() != RegionACPINVS {
		t.Errorf("Type() = %v", r.Type())
	}
	if uint64(r)&0xfff != uint64(RegionACPINVS) {
		t.Errorf("raw = %#x", uint64(r))
	}
	if r := NewRegion(1<<60|0x2000, RegionReserved); r.Start() != 0x2000 {
		t.Errorf("start above 56 bits kept: %#x", r.Start())
	}
}

func checkMap(t *testing.T, got Map, want ...Region) {
	t.Helper()
	if !slices.Equal(got, want) {
		t.Fatalf("map = %v, want %v", got, want)
	}
}

func TestTranslateQEMU(t *testing.T) {
	m := Translate(qemuMap)
	checkMap(t, m,
		NewRegion(0x1fe0000, RegionReserved),
		NewRegion(0x100000, RegionAvailable),
		NewRegion(0x9f000, RegionReserved),
		NewRegion(0x0, RegionAvailable),
	)
	if got, want := m.Available(), uint64(0x9f000+0x1ee0000); got != want {
		t.Errorf("Available() = %#x, want %#x", got, want)
	}
	if m.End(0) != MapEnd || m.End(1) != 0x1fdffff {
		t.Errorf("ends = %#x, %#x", m.End(0), m.End(1))
	}
	if r, ok := m.Lookup(0x7c00); !ok || r.Type() != RegionAvailable {
		t.Errorf("Lookup(0x7c00) = %v, %v", r, ok)
	}
	if r, ok := m.Lookup(0xb8000); !ok || r.Type() != RegionReserved {
		t.Errorf("Lookup(0xb8000) = %v, %v", r, ok)
	}
}

func TestTranslatePrecedence(t *testing.T) {
	entries := []Entry{
		{Base: 0x1f8000, Length: 0x8000, Type: TypeACPINVS},
		{Base: 0x180000, Length: 0x10000, Type: TypeReserved},
		{Base: 0x100000, Length: 0x100000, Type: TypeUsable},
		{Base: 0x1f0000, Length: 0x10000, Type: TypeACPIReclaimable},
	}
	want := []Region{
		NewRegion(0x200000, RegionReserved),
		NewRegion(0x1f8000, RegionACPINVS),
		NewRegion(0x1f0000, RegionACPIReclaimable),
		NewRegion(0x190000, RegionAvailable),
		NewRegion(0x180000, RegionReserved),
		NewRegion(0x100000, RegionAvailable),
		NewRegion(0x0, RegionReserved),
	}
	checkMap(t, Translate(entries), want...)
	slices.Reverse(entries)
	checkMap(t, Translate(entries), want...)
}

func TestTranslateRounding(t *testing.T) {
	entries := []Entry{
		{Base: 0x1234, Length: 0x5678 - 0x1234, Type: TypeUsable},
		{Base: 0x5800, Length: 0x100, Type: 9},
		{Base: 0x9000, Length: 0x800, Type: TypeUsable},
	}
	checkMap(t, Translate(entries),
		NewRegion(0x5000, RegionReserved),
		NewRegion(0x2000, RegionAvailable),
		NewRegion(0x0, RegionReserved),
	)
}

func TestTranslateEmpty(t *testing.T) {
	checkMap(t, Translate(nil), NewRegion(0, RegionReserved))
	checkMap(t, Translate([]Entry{{Base: 0x1000, Length: 0, Type: TypeUsable}}), NewRegion(0, RegionReserved))
}

func TestTranslateInvariants(t *testing.T) {
	entries := append(slices.Clone(qemuMap),
		Entry{Base: 0x500, Length: 0x7000, Type: TypeACPIReclaimable},
		Entry{Base: 0x1000000, Length: 0x800000, Type: TypeACPINVS},
		Entry{Base: 0xffff_ffff_ffff_0000, Length: 0x10000, Type: TypeUsable},
		Entry{Base: 0x00ff_ffff_ffff_0000, Length: 0x20000, Type: TypeReserved},
	)
	m := Translate(entries)
	if m[len(m)-1].Start() != 0 {
		t.Errorf("lowest region starts at %#x", m[len(m)-1].Start())
	}
	for i := range m {
		if m[i].Start()%pageSize != 0 {
			t.Errorf("region %d not page aligned: %v", i, m[i])
		}
		if i > 0 {
			if m[i].Start() >= m[i-1].Start() {
				t.Errorf("regions %d and %d out of order: %v", i-1, i, m)
			}
			if m[i].Type() == m[i-1].Type() {
				t.Errorf("regions %d and %d not merged: %v", i-1, i, m)
			}
		}
	}
}

func newMemory(t *testing.T) emulator.Emulator {
	t.Helper()
	m := phys.New()
	t.Cleanup(func() { m.Close() })
	if err := m.MemMap(0x10000, 0x10000, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE); err != nil {
		t.Fatal(err)
	}
	return m
}

func TestStoreLoad(t *testing.T) {
	emu := newMemory(t)
	if err := Store(emu, 0x10000, qemuMap); err != nil {
		t.Fatalf("Store: %v", err)
	}
	raw, err := emu.MemRead(0x10000, 8+2*EntrySize)
	if err != nil {
		t.Fatal(err)
	}
	if n := binary.LittleEndian.Uint64(raw); n != uint64(len(qemuMap)) {
		t.Errorf("count = %d", n)
	}
	second := raw[8+EntrySize:]
	if binary.LittleEndian.Uint64(second[0:]) != 0x9fc00 ||
		binary.LittleEndian.Uint64(second[8:]) != 0x400 ||
		binary.LittleEndian.Uint32(second[16:]) != uint32(TypeReserved) {
		t.Errorf("second entry bytes = %x", second[:EntrySize])
	}

	entries, err := Load(emu, 0x10000)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !slices.Equal(entries, qemuMap) {
		t.Errorf("Load = %+v, want %+v", entries, qemuMap)
	}
}

func TestLoadErrors(t *testing.T) {
	emu := newMemory(t)
	emulator.ToPointer(emu, 0x10000).WriteUint64(MaxEntries + 1)
	if _, err := Load(emu, 0x10000); !errors.Is(err, ErrTooManyEntries) {
		t.Errorf("Load with huge count: %v", err)
	}
	// entries running off the end of mapped memory
	emulator.ToPointer(emu, 0x1fff0).WriteUint64(1)
	if _, err := Load(emu, 0x1fff0); !errors.Is(err, emulator.ErrMemUnmapped) {
		t.Errorf("Load past mapping: %v", err)
	}
	if err := Store(emu, 0x10000, make([]Entry, MaxEntries+1)); !errors.Is(err, ErrTooManyEntries) {
		t.Errorf("Store too many: %v", err)
	}
}
