// Package boot describes the machine state a stage 2 entry point starts in.
// Env carries it explicitly instead of reaching for fixed addresses.
package boot

import (
	"fmt"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/memmap"
	"github.com/wnxd/stage2/part"
	"github.com/wnxd/stage2/vga"
)

type Env struct {
	emu     emulator.Emulator
	display *vga.Display
}

// New checks that emu holds every region the first stage hands over.
func New(emu emulator.Emulator) (*Env, error) {
	if emu.Arch() != emulator.ARCH_X86 {
		return nil, emulator.ErrArchUnsupported
	}
	regions, err := emu.MemRegions()
	if err != nil {
		return nil, err
	}
	for _, req := range required {
		if !covered(regions, req.addr, req.size) {
			return nil, fmt.Errorf("%w: %s at %#x", ErrRegionMissing, req.name, req.addr)
		}
	}
	return &Env{emu: emu, display: vga.New(emu)}, nil
}

// covered reports whether [addr, addr+size) lies in sorted, possibly adjacent regions.
func covered(regions []emulator.MemRegion, addr, size uint64) bool {
	end := addr + size
	for _, r := range regions {
		if r.Addr > addr {
			break
		} else if r.End() > addr {
			addr = r.End()
		}
		if addr >= end {
			return true
		}
	}
	return false
}

func (env *Env) Emulator() emulator.Emulator {
	return env.emu
}

func (env *Env) ToPointer(addr uint64) emulator.Pointer {
	return emulator.ToPointer(env.emu, addr)
}

func (env *Env) Display() *vga.Display {
	return env.display
}

func (env *Env) StackPointer() emulator.Pointer {
	return env.ToPointer(StackTop)
}

// MemoryMap returns the BIOS entries sorted by decreasing end address.
func (env *Env) MemoryMap() ([]memmap.Entry, error) {
	entries, err := memmap.Load(env.emu, MemMapCountAddr)
	if err != nil {
		return nil, err
	}
	memmap.Sort(entries)
	return entries, nil
}

func (env *Env) Regions() (memmap.Map, error) {
	entries, err := env.MemoryMap()
	if err != nil {
		return nil, err
	}
	return memmap.Translate(entries), nil
}

func (env *Env) Partitions() (part.Table, error) {
	return part.Load(env.emu, BootSectorAddr)
}

func (env *Env) Close() error {
	return env.emu.Close()
}
