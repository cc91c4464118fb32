package boot

import "github.com/wnxd/stage2/vga"

// Fixed physical layout left behind by the first stage.
const (
	StackTop           = 0x7c00
	StackReserve       = 0x1000
	BootSectorAddr     = 0x7c00
	PartitionTableAddr = 0x7dbe
	BootSignatureAddr  = 0x7dfe
	MemMapCountAddr    = 0x10000
	MemMapEntriesAddr  = 0x10008
	DisplayAddr        = vga.Base

	ConventionalEnd = 0xa0000
	VideoBase       = 0xa0000
	VideoEnd        = 0xc0000
)

type requirement struct {
	name       string
	addr, size uint64
}

var required = []requirement{
	{"stack", StackTop - StackReserve, StackReserve},
	{"boot sector", BootSectorAddr, 0x200},
	{"memory map", MemMapCountAddr, 8},
	{"display", DisplayAddr, vga.Size},
}
