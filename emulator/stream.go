package emulator

import (
	"encoding/binary"

	"github.com/wnxd/stage2/encoding"
)

type pointerStream struct {
	ptr Pointer
}

// PointerStream reads and writes guest memory sequentially from ptr.
func PointerStream(ptr Pointer) encoding.Stream {
	return &pointerStream{ptr}
}

func (ps *pointerStream) ByteOrder() binary.ByteOrder {
	return ps.ptr.emu.ByteOrder().Binary()
}

func (ps *pointerStream) Offset() uint64 {
	return ps.ptr.Address()
}

func (ps *pointerStream) Skip(n int) error {
	ps.ptr = ps.ptr.Add(uint64(n))
	return nil
}

func (ps *pointerStream) Read(b []byte) (int, error) {
	n, err := ps.ptr.ReadAt(b, 0)
	if err == nil {
		ps.Skip(n)
	}
	return n, err
}

func (ps *pointerStream) Write(b []byte) (int, error) {
	n, err := ps.ptr.WriteAt(b, 0)
	if err == nil {
		ps.Skip(n)
	}
	return n, err
}

// MemExtract decodes the packed value at addr into val.
func MemExtract(emu Emulator, addr uint64, val any) error {
	return encoding.Decode(PointerStream(ToPointer(emu, addr)), val)
}

// MemStore encodes val packed at addr.
func MemStore(emu Emulator, addr uint64, val any) error {
	return encoding.Encode(PointerStream(ToPointer(emu, addr)), val)
}
