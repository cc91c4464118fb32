// Package loader places images into guest memory. It is the first caller of
// the mem primitives: file bytes are copied in and the remainder of each
// region is zero filled.
package loader

import (
	"io"
	"unsafe"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/mem"
)

type Image interface {
	Name() string
	Arch() emulator.Arch
	Regions() []Region
	EntryAddr() uint64
}

// Place writes one region. The destination must already be mapped writable.
func Place(emu emulator.Emulator, r Region) error {
	if !r.valid() {
		return ErrRegionInvalid
	} else if r.Size == 0 {
		return nil
	}
	dst, err := emu.MemHost(r.Addr, r.Size, emulator.MEM_PROT_WRITE)
	if err != nil {
		return err
	}
	if r.Length > 0 {
		buf := make([]byte, r.Length)
		n, err := r.ReadAt(buf, 0)
		if n < len(buf) {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return err
		} else if err != nil && err != io.EOF {
			return err
		}
		mem.Copy(dst, unsafe.Pointer(unsafe.SliceData(buf)), uintptr(r.Length))
	}
	mem.Fill(unsafe.Add(dst, r.Length), 0, uintptr(r.Size-r.Length))
	return nil
}

// Load places every region of img and returns its entry address.
func Load(emu emulator.Emulator, img Image) (uint64, error) {
	if img.Arch() != emu.Arch() {
		return 0, emulator.ErrArchMismatch
	}
	for _, r := range img.Regions() {
		if err := Place(emu, r); err != nil {
			return 0, err
		}
	}
	return img.EntryAddr(), nil
}
