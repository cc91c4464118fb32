package memmap

import (
	"fmt"
	"slices"

	"github.com/wnxd/stage2/emulator"
)

const (
	pageSize  = 0x1000
	addrLimit = 1 << 56
	startMask = (addrLimit - 1) &^ (pageSize - 1)

	// MapEnd is the inclusive end of the highest region.
	MapEnd = addrLimit - 1
)

type RegionType uint8

const (
	RegionAvailable RegionType = iota
	RegionReserved
	RegionACPIReclaimable
	RegionACPINVS

	regionTypeMask = 3
)

func (t RegionType) String() string {
	switch t {
	case RegionAvailable:
		return "available"
	case RegionReserved:
		return "reserved"
	case RegionACPIReclaimable:
		return "acpi-reclaimable"
	case RegionACPINVS:
		return "acpi-nvs"
	}
	return "unknown"
}

// precedence decides which type survives where entries overlap.
func (t RegionType) precedence() int {
	switch t {
	case RegionAvailable:
		return 0
	case RegionACPIReclaimable:
		return 1
	case RegionACPINVS:
		return 2
	}
	return 3
}

func (t Type) region() RegionType {
	return RegionType(t.Normalize() - 1)
}

// Region packs a page-aligned start address and a type into one word. A
// region has no end of its own: it ends where the next higher region starts.
type Region uint64

func NewRegion(start uint64, typ RegionType) Region {
	return Region(start&startMask | uint64(typ&regionTypeMask))
}

func (r Region) Start() uint64 {
	return uint64(r) & startMask
}

func (r Region) Type() RegionType {
	return RegionType(r & regionTypeMask)
}

func (r Region) String() string {
	return fmt.Sprintf("{B: 0x%08x | T: %v}", r.Start(), r.Type())
}

// Map lists regions by decreasing start address. The last region starts at 0
// and the first one ends at MapEnd.
type Map []Region

// End returns the inclusive end address of m[i].
func (m Map) End(i int) uint64 {
	if i == 0 {
		return MapEnd
	}
	return m[i-1].Start() - 1
}

// Lookup returns the region containing addr.
func (m Map) Lookup(addr uint64) (Region, bool) {
	for _, r := range m {
		if r.Start() <= addr {
			return r, addr <= MapEnd
		}
	}
	return 0, false
}

// Available sums the bytes of all available regions.
func (m Map) Available() uint64 {
	var total uint64
	for i, r := range m {
		if r.Type() == RegionAvailable {
			total += m.End(i) - r.Start() + 1
		}
	}
	return total
}

type span struct {
	start, end uint64
	typ        RegionType
}

// Translate turns raw BIOS entries, which may be unsorted, overlapping and
// leave holes, into a continuous Map. Available ranges shrink to whole pages
// and all other ranges grow to whole pages. Where ranges overlap, reserved
// beats ACPI NVS beats ACPI reclaimable beats available. Holes are reserved.
func Translate(entries []Entry) Map {
	spans := make([]span, 0, len(entries))
	bounds := []uint64{0, addrLimit}
	for _, e := range entries {
		if e.Length == 0 || e.Base >= addrLimit {
			continue
		}
		s := span{e.Base, min(e.End(), addrLimit), e.Type.region()}
		if s.typ == RegionAvailable {
			s.start = emulator.Align(s.start, pageSize)
			s.end = emulator.AlignDown(s.end, pageSize)
		} else {
			s.start = emulator.AlignDown(s.start, pageSize)
			s.end = min(emulator.Align(s.end, pageSize), addrLimit)
		}
		if s.start >= s.end {
			continue
		}
		spans = append(spans, s)
		bounds = append(bounds, s.start, s.end)
	}
	slices.Sort(bounds)
	bounds = slices.Compact(bounds)

	var m Map
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		typ, covered := RegionReserved, false
		for _, s := range spans {
			if s.start > lo || s.end < hi {
				continue
			}
			if !covered || s.typ.precedence() > typ.precedence() {
				typ, covered = s.typ, true
			}
		}
		if len(m) > 0 && m[len(m)-1].Type() == typ {
			continue
		}
		m = append(m, NewRegion(lo, typ))
	}
	slices.Reverse(m)
	return m
}
