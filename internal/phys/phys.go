// Package phys implements emulator.Emulator as the flat physical address
// space of a 32-bit x86 machine with paging disabled. Each mapped region is
// backed by its own page-aligned host allocation, so a guest address and the
// host address backing it agree modulo the page size.
package phys

import (
	"slices"
	"sync"
	"unsafe"

	"github.com/wnxd/stage2/emulator"
)

const (
	PageSize  = 0x1000
	AddrLimit = 1 << 32
)

var release = releaseMem

type region struct {
	emulator.MemRegion
	data []byte
}

type Memory struct {
	mu      sync.RWMutex
	regions []*region
	closed  bool
}

var _ emulator.Emulator = (*Memory)(nil)

func New() *Memory {
	return new(Memory)
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	var err error
	for _, r := range m.regions {
		if e := release(r.data); e != nil && err == nil {
			err = e
		}
	}
	m.regions = nil
	return err
}

func (m *Memory) Arch() emulator.Arch {
	return emulator.ARCH_X86
}

func (m *Memory) ByteOrder() emulator.ByteOrder {
	return emulator.BO_LITTLE_ENDIAN
}

func (m *Memory) PageSize() uint64 {
	return PageSize
}

func (m *Memory) MemMap(addr, size uint64, prot emulator.MemProt) error {
	if size == 0 || !emulator.IsAligned(addr, PageSize) || !emulator.IsAligned(size, PageSize) {
		return emulator.ErrArgumentInvalid
	} else if addr >= AddrLimit || size > AddrLimit-addr {
		return emulator.ErrArgumentInvalid
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return emulator.ErrEmulatorClosed
	}
	i := m.search(addr)
	if i > 0 && m.regions[i-1].End() > addr {
		return emulator.ErrMemOverlap
	} else if i < len(m.regions) && m.regions[i].Addr < addr+size {
		return emulator.ErrMemOverlap
	}
	data, err := allocate(int(size))
	if err != nil {
		return err
	}
	r := &region{emulator.MemRegion{Addr: addr, Size: size, Prot: prot}, data}
	m.regions = slices.Insert(m.regions, i, r)
	return nil
}

// MemUnmap releases whole regions. The range must start and end on region
// boundaries.
func (m *Memory) MemUnmap(addr, size uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	first, last, err := m.span(addr, size)
	if err != nil {
		return err
	}
	for _, r := range m.regions[first:last] {
		if e := release(r.data); e != nil && err == nil {
			err = e
		}
	}
	m.regions = slices.Delete(m.regions, first, last)
	return err
}

// MemProtect changes the protection of whole regions, like MemUnmap.
func (m *Memory) MemProtect(addr, size uint64, prot emulator.MemProt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	first, last, err := m.span(addr, size)
	if err != nil {
		return err
	}
	for _, r := range m.regions[first:last] {
		r.Prot = prot
	}
	return nil
}

func (m *Memory) MemRegions() ([]emulator.MemRegion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, emulator.ErrEmulatorClosed
	}
	regions := make([]emulator.MemRegion, len(m.regions))
	for i, r := range m.regions {
		regions[i] = r.MemRegion
	}
	return regions, nil
}

func (m *Memory) MemRead(addr, size uint64) ([]byte, error) {
	data := make([]byte, size)
	if size == 0 {
		return data, nil
	}
	err := m.MemReadPtr(addr, size, unsafe.Pointer(unsafe.SliceData(data)))
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (m *Memory) MemWrite(addr uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return m.MemWritePtr(addr, uint64(len(data)), unsafe.Pointer(unsafe.SliceData(data)))
}

func (m *Memory) MemReadPtr(addr, size uint64, ptr unsafe.Pointer) error {
	buf := unsafe.Slice((*byte)(ptr), size)
	return m.access(addr, size, emulator.MEM_PROT_READ, func(chunk []byte, off uint64) {
		copy(buf[off:], chunk)
	})
}

func (m *Memory) MemWritePtr(addr, size uint64, ptr unsafe.Pointer) error {
	buf := unsafe.Slice((*byte)(ptr), size)
	return m.access(addr, size, emulator.MEM_PROT_WRITE, func(chunk []byte, off uint64) {
		copy(chunk, buf[off:])
	})
}

func (m *Memory) MemHost(addr, size uint64, prot emulator.MemProt) (unsafe.Pointer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, emulator.ErrEmulatorClosed
	}
	r := m.find(addr)
	if r == nil || !r.Contains(addr, size) {
		return nil, emulator.NewAccessError(prot, addr, size, emulator.ErrMemUnmapped)
	} else if r.Prot&prot != prot {
		return nil, emulator.NewAccessError(prot, addr, size, emulator.ErrMemProtected)
	}
	off := addr - r.Addr
	if off == r.Size {
		return unsafe.Add(unsafe.Pointer(unsafe.SliceData(r.data)), off), nil
	}
	return unsafe.Pointer(&r.data[off]), nil
}

// access walks [addr, addr+size) across adjacent regions, calling fn with
// each backing chunk and its offset into the access.
func (m *Memory) access(addr, size uint64, prot emulator.MemProt, fn func(chunk []byte, off uint64)) error {
	if size == 0 {
		return nil
	} else if addr >= AddrLimit || size > AddrLimit-addr {
		return emulator.NewAccessError(prot, addr, size, emulator.ErrMemUnmapped)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return emulator.ErrEmulatorClosed
	}
	// validate the whole range before touching anything
	for cur, end := addr, addr+size; cur < end; {
		r := m.find(cur)
		if r == nil {
			return emulator.NewAccessError(prot, addr, size, emulator.ErrMemUnmapped)
		} else if r.Prot&prot != prot {
			return emulator.NewAccessError(prot, addr, size, emulator.ErrMemProtected)
		}
		cur = r.End()
	}
	for off := uint64(0); off < size; {
		r := m.find(addr + off)
		start := addr + off - r.Addr
		n := min(r.Size-start, size-off)
		fn(r.data[start:start+n], off)
		off += n
	}
	return nil
}

// search returns the index of the first region starting after addr.
func (m *Memory) search(addr uint64) int {
	i, _ := slices.BinarySearchFunc(m.regions, addr, func(r *region, addr uint64) int {
		if r.Addr <= addr {
			return -1
		}
		return 1
	})
	return i
}

func (m *Memory) find(addr uint64) *region {
	i := m.search(addr)
	if i == 0 {
		return nil
	}
	r := m.regions[i-1]
	if addr >= r.End() {
		return nil
	}
	return r
}

// span returns the index range of the regions exactly covering [addr, addr+size).
func (m *Memory) span(addr, size uint64) (int, int, error) {
	if m.closed {
		return 0, 0, emulator.ErrEmulatorClosed
	} else if size == 0 || size > AddrLimit-addr {
		return 0, 0, emulator.ErrArgumentInvalid
	}
	first := m.search(addr) - 1
	if first < 0 || m.regions[first].Addr != addr {
		return 0, 0, emulator.ErrArgumentInvalid
	}
	end := addr + size
	for last := first; last < len(m.regions); last++ {
		r := m.regions[last]
		if last > first && r.Addr != m.regions[last-1].End() {
			break
		} else if r.End() == end {
			return first, last + 1, nil
		} else if r.End() > end {
			break
		}
	}
	return 0, 0, emulator.ErrArgumentInvalid
}
