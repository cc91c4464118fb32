package boot

import (
	"bytes"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/internal/phys"
	"github.com/wnxd/stage2/loader"
	"github.com/wnxd/stage2/mem"
	"github.com/wnxd/stage2/memmap"
	"github.com/wnxd/stage2/part"
)

// DirtyByte is what Handoff leaves in memory nobody wrote when Dirty is set.
const DirtyByte = 0xcc

// Handoff plays the first stage: it maps low memory and the video window,
// places the boot sector and stores the BIOS memory map.
type Handoff struct {
	MemoryMap  []memmap.Entry
	BootSector []byte
	Dirty      bool
}

func (h *Handoff) Install(emu emulator.Emulator) error {
	if len(h.BootSector) > part.SectorSize {
		return ErrBootSectorInvalid
	}
	for _, r := range []emulator.MemRegion{
		{Addr: 0, Size: ConventionalEnd, Prot: emulator.MEM_PROT_ALL},
		{Addr: VideoBase, Size: VideoEnd - VideoBase, Prot: emulator.MEM_PROT_READ | emulator.MEM_PROT_WRITE},
	} {
		if err := emu.MemMap(r.Addr, r.Size, r.Prot); err != nil {
			return err
		}
		if !h.Dirty {
			continue
		}
		p, err := emu.MemHost(r.Addr, r.Size, emulator.MEM_PROT_WRITE)
		if err != nil {
			return err
		}
		mem.Fill(p, DirtyByte, uintptr(r.Size))
	}
	if h.BootSector != nil {
		sector := loader.Region{
			Addr:     BootSectorAddr,
			Size:     part.SectorSize,
			Length:   uint64(len(h.BootSector)),
			ReaderAt: bytes.NewReader(h.BootSector),
		}
		if err := loader.Place(emu, sector); err != nil {
			return err
		}
	}
	return memmap.Store(emu, MemMapCountAddr, h.MemoryMap)
}

// DefaultMemoryMap is what a PC with ram bytes of memory reports, laid out
// the way QEMU's SeaBIOS does.
func DefaultMemoryMap(ram uint64) []memmap.Entry {
	entries := []memmap.Entry{
		{Base: 0, Length: 0x9fc00, Type: memmap.TypeUsable},
		{Base: 0x9fc00, Length: 0x400, Type: memmap.TypeReserved},
		{Base: 0xf0000, Length: 0x10000, Type: memmap.TypeReserved},
	}
	if ram > 0x100000 {
		entries = append(entries, memmap.Entry{Base: 0x100000, Length: ram - 0x100000, Type: memmap.TypeUsable})
	}
	return append(entries, memmap.Entry{Base: 0xfffc0000, Length: 0x40000, Type: memmap.TypeReserved})
}

// NewMachine builds a fresh physical memory, installs h on it and wraps it.
func NewMachine(h *Handoff) (*Env, error) {
	m := phys.New()
	err := h.Install(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	env, err := New(m)
	if err != nil {
		m.Close()
		return nil, err
	}
	return env, nil
}
