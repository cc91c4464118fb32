// Package memmap reads the BIOS memory map the first stage collected and
// turns it into a compact, continuous list of typed regions.
package memmap

import (
	"cmp"
	"math"
	"slices"

	"github.com/wnxd/stage2/emulator"
)

type Type uint32

const (
	TypeUsable Type = iota + 1
	TypeReserved
	TypeACPIReclaimable
	TypeACPINVS
)

func (t Type) String() string {
	switch t {
	case TypeUsable:
		return "usable"
	case TypeReserved:
		return "reserved"
	case TypeACPIReclaimable:
		return "acpi-reclaimable"
	case TypeACPINVS:
		return "acpi-nvs"
	}
	return "unknown"
}

// Normalize maps types the firmware may report but we do not know to
// TypeReserved.
func (t Type) Normalize() Type {
	if t == 0 || t > TypeACPINVS {
		return TypeReserved
	}
	return t
}

// Entry is one BIOS memory map descriptor as stored in memory: 24 packed
// little-endian bytes.
type Entry struct {
	Base   uint64
	Length uint64
	Type   Type
	ACPI   uint32
}

const (
	EntrySize = 24
	// MaxEntries bounds the count read from memory; anything larger is taken
	// as a corrupt handoff.
	MaxEntries = 128
)

func (e Entry) End() uint64 {
	if e.Length > math.MaxUint64-e.Base {
		return math.MaxUint64
	}
	return e.Base + e.Length
}

// Sort orders entries by decreasing end address, and by decreasing base when
// ends are equal.
func Sort(entries []Entry) {
	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := cmp.Compare(b.End(), a.End()); c != 0 {
			return c
		}
		return cmp.Compare(b.Base, a.Base)
	})
}

// Load reads the count at addr and the entries that follow it.
func Load(emu emulator.Emulator, addr uint64) ([]Entry, error) {
	count, err := emulator.ToPointer(emu, addr).ReadUint64()
	if err != nil {
		return nil, err
	} else if count > MaxEntries {
		return nil, ErrTooManyEntries
	}
	entries := make([]Entry, count)
	for i := range entries {
		err = emulator.MemExtract(emu, addr+8+uint64(i)*EntrySize, &entries[i])
		if err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// Store writes entries in the layout Load expects.
func Store(emu emulator.Emulator, addr uint64, entries []Entry) error {
	if len(entries) > MaxEntries {
		return ErrTooManyEntries
	}
	err := emulator.ToPointer(emu, addr).WriteUint64(uint64(len(entries)))
	if err != nil {
		return err
	}
	for i := range entries {
		err = emulator.MemStore(emu, addr+8+uint64(i)*EntrySize, &entries[i])
		if err != nil {
			return err
		}
	}
	return nil
}
