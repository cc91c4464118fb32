package emulator

import (
	"io"
	"unsafe"
)

// Emulator is a simulated physical address space. Addresses are guest
// physical addresses; nothing is translated.
type Emulator interface {
	io.Closer
	Arch() Arch
	ByteOrder() ByteOrder
	PageSize() uint64
	MemMap(addr, size uint64, prot MemProt) error
	MemUnmap(addr, size uint64) error
	MemProtect(addr, size uint64, prot MemProt) error
	MemRegions() ([]MemRegion, error)
	MemRead(addr, size uint64) ([]byte, error)
	MemWrite(addr uint64, data []byte) error
	MemReadPtr(addr, size uint64, ptr unsafe.Pointer) error
	MemWritePtr(addr, size uint64, ptr unsafe.Pointer) error
	// MemHost returns the host address backing [addr, addr+size). The range
	// must lie inside one mapped region that grants prot. The pointer stays
	// valid until the region is unmapped.
	MemHost(addr, size uint64, prot MemProt) (unsafe.Pointer, error)
}
