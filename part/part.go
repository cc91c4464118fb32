// Package part decodes the MBR partition table the firmware leaves in the
// boot sector shadow.
package part

import (
	"encoding/binary"
	"fmt"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/encoding"
)

const (
	SectorSize      = 512
	TableOffset     = 0x1be
	SignatureOffset = 0x1fe
	Signature       = 0xaa55
	EntrySize       = 16
	Count           = 4

	statusBootable = 0x80
)

// CHS is a packed cylinder/head/sector address.
type CHS [3]byte

func (c CHS) Head() uint8 {
	return c[0]
}

func (c CHS) Sector() uint8 {
	return c[1] & 0x3f
}

func (c CHS) Cylinder() uint16 {
	return uint16(c[1]&0xc0)<<2 | uint16(c[2])
}

func (c CHS) String() string {
	return fmt.Sprintf("%d/%d/%d", c.Cylinder(), c.Head(), c.Sector())
}

type Entry struct {
	Status     uint8
	First      CHS
	Type       uint8
	Last       CHS
	LBAFirst   uint32
	NumSectors uint32
}

func (e Entry) Bootable() bool {
	return e.Status&statusBootable != 0
}

func (e Entry) Empty() bool {
	return e.Type == 0 && e.NumSectors == 0
}

func (e Entry) String() string {
	return fmt.Sprintf("{type: %#02x, boot: %t, lba: %d, sectors: %d, chs: %v-%v}", e.Type, e.Bootable(), e.LBAFirst, e.NumSectors, e.First, e.Last)
}

type Table [Count]Entry

// Active returns the index of the first bootable entry.
func (t *Table) Active() (int, bool) {
	for i := range t {
		if t[i].Bootable() && !t[i].Empty() {
			return i, true
		}
	}
	return -1, false
}

// Parse decodes the partition table of a boot sector.
func Parse(sector []byte) (Table, error) {
	var table Table
	if len(sector) < SectorSize {
		return table, ErrShortSector
	} else if binary.LittleEndian.Uint16(sector[SignatureOffset:]) != Signature {
		return table, ErrBadSignature
	}
	err := encoding.Decode(encoding.BufferStream(sector[TableOffset:SignatureOffset], binary.LittleEndian), &table)
	return table, err
}

// Load reads the boot sector shadow at addr and parses it.
func Load(emu emulator.Emulator, addr uint64) (Table, error) {
	sector, err := emu.MemRead(addr, SectorSize)
	if err != nil {
		return Table{}, err
	}
	return Parse(sector)
}

// Format writes table and the signature into sector.
func Format(sector []byte, table *Table) error {
	if len(sector) < SectorSize {
		return ErrShortSector
	}
	err := encoding.Encode(encoding.BufferStream(sector[TableOffset:SignatureOffset], binary.LittleEndian), table)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(sector[SignatureOffset:], Signature)
	return nil
}
