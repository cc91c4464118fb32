package emulator

import (
	"unsafe"
)

type Pointer struct {
	emu  Emulator
	addr uint64
}

func ToPointer(emu Emulator, addr uint64) Pointer {
	return Pointer{emu, addr}
}

func (p Pointer) Emulator() Emulator {
	return p.emu
}

func (p Pointer) IsNil() bool {
	return p.addr == 0
}

func (p Pointer) Address() uint64 {
	return p.addr
}

func (p Pointer) Add(offset uint64) Pointer {
	return Pointer{p.emu, p.addr + offset}
}

func (p Pointer) Sub(offset uint64) Pointer {
	return Pointer{p.emu, p.addr - offset}
}

func (p Pointer) MemRead(size uint64) ([]byte, error) {
	return p.emu.MemRead(p.addr, size)
}

func (p Pointer) MemWrite(data []byte) error {
	return p.emu.MemWrite(p.addr, data)
}

func (p Pointer) MemReadPtr(size uint64, ptr unsafe.Pointer) error {
	return p.emu.MemReadPtr(p.addr, size, ptr)
}

func (p Pointer) MemWritePtr(size uint64, ptr unsafe.Pointer) error {
	return p.emu.MemWritePtr(p.addr, size, ptr)
}

func (p Pointer) Host(size uint64, prot MemProt) (unsafe.Pointer, error) {
	return p.emu.MemHost(p.addr, size, prot)
}

func (p Pointer) ReadUint16() (uint16, error) {
	var b [2]byte
	if err := p.MemReadPtr(2, unsafe.Pointer(&b)); err != nil {
		return 0, err
	}
	return p.emu.ByteOrder().Binary().Uint16(b[:]), nil
}

func (p Pointer) ReadUint32() (uint32, error) {
	var b [4]byte
	if err := p.MemReadPtr(4, unsafe.Pointer(&b)); err != nil {
		return 0, err
	}
	return p.emu.ByteOrder().Binary().Uint32(b[:]), nil
}

func (p Pointer) ReadUint64() (uint64, error) {
	var b [8]byte
	if err := p.MemReadPtr(8, unsafe.Pointer(&b)); err != nil {
		return 0, err
	}
	return p.emu.ByteOrder().Binary().Uint64(b[:]), nil
}

func (p Pointer) WriteUint16(v uint16) error {
	var b [2]byte
	p.emu.ByteOrder().Binary().PutUint16(b[:], v)
	return p.MemWritePtr(2, unsafe.Pointer(&b))
}

func (p Pointer) WriteUint32(v uint32) error {
	var b [4]byte
	p.emu.ByteOrder().Binary().PutUint32(b[:], v)
	return p.MemWritePtr(4, unsafe.Pointer(&b))
}

func (p Pointer) WriteUint64(v uint64) error {
	var b [8]byte
	p.emu.ByteOrder().Binary().PutUint64(b[:], v)
	return p.MemWritePtr(8, unsafe.Pointer(&b))
}

func (p Pointer) ReadAt(b []byte, off int64) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	err = p.emu.MemReadPtr(p.addr+uint64(off), uint64(len(b)), unsafe.Pointer(unsafe.SliceData(b)))
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p Pointer) WriteAt(b []byte, off int64) (n int, err error) {
	if len(b) == 0 {
		return 0, nil
	}
	err = p.emu.MemWritePtr(p.addr+uint64(off), uint64(len(b)), unsafe.Pointer(unsafe.SliceData(b)))
	if err != nil {
		return 0, err
	}
	return len(b), nil
}
