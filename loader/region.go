package loader

import (
	"bytes"
	"io"

	"github.com/wnxd/stage2/emulator"
)

// Region is a piece of an image: Length bytes read from ReaderAt land at Addr
// and the rest of Size is zero filled.
type Region struct {
	Addr, Size    uint64
	Length, Align uint64
	io.ReaderAt
}

func BytesRegion(addr uint64, data []byte) Region {
	return Region{
		Addr:     addr,
		Size:     uint64(len(data)),
		Length:   uint64(len(data)),
		ReaderAt: bytes.NewReader(data),
	}
}

func (r Region) End() uint64 {
	return r.Addr + r.Size
}

func (r Region) valid() bool {
	if r.Length > r.Size || (r.Length > 0 && r.ReaderAt == nil) {
		return false
	} else if r.Align != 0 && (r.Align&(r.Align-1) != 0 || !emulator.IsAligned(r.Addr, r.Align)) {
		return false
	}
	return true
}
