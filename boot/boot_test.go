package boot

import (
	"errors"
	"slices"
	"testing"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/internal/phys"
	"github.com/wnxd/stage2/memmap"
	"github.com/wnxd/stage2/part"
)

func bootSector(t *testing.T) []byte {
	t.Helper()
	sector := make([]byte, part.SectorSize)
	sector[0], sector[1] = 0xeb, 0xfe
	table := part.Table{
		{Status: 0x80, Type: 0x83, LBAFirst: 2048, NumSectors: 8192},
	}
	if err := part.Format(sector, &table); err != nil {
		t.Fatal(err)
	}
	return sector
}

func newMachine(t *testing.T, h *Handoff) *Env {
	t.Helper()
	env, err := NewMachine(h)
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func TestMachine(t *testing.T) {
	entries := DefaultMemoryMap(32 << 20)
	env := newMachine(t, &Handoff{MemoryMap: entries, BootSector: bootSector(t)})

	got, err := env.MemoryMap()
	if err != nil {
		t.Fatalf("MemoryMap: %v", err)
	}
	sorted := slices.Clone(entries)
	slices.Reverse(sorted)
	if !slices.Equal(got, sorted) {
		t.Errorf("MemoryMap = %v, want %v", got, sorted)
	}

	regions, err := env.Regions()
	if err != nil {
		t.Fatalf("Regions: %v", err)
	}
	want := memmap.Map{
		memmap.NewRegion(0x2000000, memmap.RegionReserved),
		memmap.NewRegion(0x100000, memmap.RegionAvailable),
		memmap.NewRegion(0x9f000, memmap.RegionReserved),
		memmap.NewRegion(0, memmap.RegionAvailable),
	}
	if !slices.Equal(regions, want) {
		t.Errorf("Regions = %v, want %v", regions, want)
	}

	table, err := env.Partitions()
	if err != nil {
		t.Fatalf("Partitions: %v", err)
	}
	if i, ok := table.Active(); !ok || i != 0 || table[0].LBAFirst != 2048 {
		t.Errorf("Partitions = %v", table)
	}

	if env.StackPointer().Address() != 0x7c00 {
		t.Errorf("StackPointer = %#x", env.StackPointer().Address())
	}
	if b, err := env.ToPointer(BootSignatureAddr).ReadUint16(); err != nil || b != part.Signature {
		t.Errorf("boot signature = %#x, %v", b, err)
	}
}

func TestMemoryMapSorted(t *testing.T) {
	entries := []memmap.Entry{
		{Base: 0x100000, Length: 0x100000, Type: memmap.TypeUsable},
		{Base: 0, Length: 0x9fc00, Type: memmap.TypeUsable},
		{Base: 0x180000, Length: 0x80000, Type: memmap.TypeReserved},
		{Base: 0x9fc00, Length: 0x400, Type: memmap.TypeReserved},
	}
	env := newMachine(t, &Handoff{MemoryMap: entries})
	got, err := env.MemoryMap()
	if err != nil {
		t.Fatalf("MemoryMap: %v", err)
	}
	want := []memmap.Entry{entries[2], entries[0], entries[3], entries[1]}
	if !slices.Equal(got, want) {
		t.Errorf("MemoryMap = %v, want %v", got, want)
	}
}

func TestHandoffDirty(t *testing.T) {
	env := newMachine(t, &Handoff{MemoryMap: DefaultMemoryMap(4 << 20), Dirty: true})
	for _, addr := range []uint64{0x500, 0x7bfc, VideoBase, DisplayAddr + 6} {
		b, err := env.Emulator().MemRead(addr, 1)
		if err != nil {
			t.Fatal(err)
		}
		if b[0] != DirtyByte {
			t.Errorf("byte at %#x = %#x, want %#x", addr, b[0], DirtyByte)
		}
	}
	// what the first stage wrote is still intact
	if n, _ := env.ToPointer(MemMapCountAddr).ReadUint64(); n != 5 {
		t.Errorf("memory map count = %d, want 5", n)
	}
	// without a boot sector the shadow keeps whatever was there
	sector, _ := env.Emulator().MemRead(BootSectorAddr, part.SectorSize)
	for i, b := range sector {
		if b != DirtyByte {
			t.Fatalf("sector byte %d = %#x without a boot sector", i, b)
		}
	}
}

func TestHandoffBootSectorTooLarge(t *testing.T) {
	h := &Handoff{BootSector: make([]byte, part.SectorSize+1)}
	if _, err := NewMachine(h); !errors.Is(err, ErrBootSectorInvalid) {
		t.Errorf("NewMachine = %v, want %v", err, ErrBootSectorInvalid)
	}
}

func TestNewMissingRegion(t *testing.T) {
	m := phys.New()
	defer m.Close()
	if err := m.MemMap(0, ConventionalEnd, emulator.MEM_PROT_ALL); err != nil {
		t.Fatal(err)
	}
	if _, err := New(m); !errors.Is(err, ErrRegionMissing) {
		t.Errorf("New = %v, want %v", err, ErrRegionMissing)
	}
	if err := m.MemMap(VideoBase, VideoEnd-VideoBase, emulator.MEM_PROT_ALL); err != nil {
		t.Fatal(err)
	}
	if _, err := New(m); err != nil {
		t.Errorf("New = %v", err)
	}
}

func TestCovered(t *testing.T) {
	regions := []emulator.MemRegion{
		{Addr: 0x0000, Size: 0x1000},
		{Addr: 0x1000, Size: 0x1000},
		{Addr: 0x4000, Size: 0x1000},
	}
	tests := []struct {
		addr, size uint64
		want       bool
	}{
		{0x0, 0x10, true},
		{0x800, 0x1000, true},
		{0x1800, 0x1000, false},
		{0x3000, 0x10, false},
		{0x4ff0, 0x10, true},
		{0x4ff0, 0x20, false},
	}
	for _, tt := range tests {
		if got := covered(regions, tt.addr, tt.size); got != tt.want {
			t.Errorf("covered(%#x, %#x) = %v, want %v", tt.addr, tt.size, got, tt.want)
		}
	}
}
