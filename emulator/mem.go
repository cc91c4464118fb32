package emulator

import (
	"encoding/binary"
	"strings"
)

type ByteOrder int

const (
	BO_LITTLE_ENDIAN ByteOrder = iota
	BO_BIG_ENDIAN
)

func (bo ByteOrder) Binary() binary.ByteOrder {
	if bo == BO_BIG_ENDIAN {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

type MemProt int

const (
	MEM_PROT_NONE MemProt = 0
	MEM_PROT_READ MemProt = 1 << (iota - 1)
	MEM_PROT_WRITE
	MEM_PROT_EXEC

	MEM_PROT_ALL = MEM_PROT_READ | MEM_PROT_WRITE | MEM_PROT_EXEC
)

func (p MemProt) String() string {
	if p == MEM_PROT_NONE {
		return "none"
	}
	var b strings.Builder
	for _, f := range []struct {
		prot MemProt
		c    byte
	}{{MEM_PROT_READ, 'r'}, {MEM_PROT_WRITE, 'w'}, {MEM_PROT_EXEC, 'x'}} {
		if p&f.prot != 0 {
			b.WriteByte(f.c)
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

type MemRegion struct {
	Addr, Size uint64
	Prot       MemProt
}

func (r MemRegion) End() uint64 {
	return r.Addr + r.Size
}

func (r MemRegion) Contains(addr, size uint64) bool {
	return addr >= r.Addr && addr <= r.End() && size <= r.End()-addr
}
