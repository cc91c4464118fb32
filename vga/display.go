package vga

import (
	"strings"
	"unsafe"

	"github.com/wnxd/stage2/emulator"
	"github.com/wnxd/stage2/mem"
)

const (
	Base     = 0xb8000
	Cols     = 80
	Rows     = 25
	CellSize = 2
	Size     = Cols * Rows * CellSize
)

// Display is the text buffer at Base in guest memory.
type Display struct {
	ptr emulator.Pointer
}

func New(emu emulator.Emulator) *Display {
	return &Display{emulator.ToPointer(emu, Base)}
}

func (d *Display) Pointer() emulator.Pointer {
	return d.ptr
}

func (d *Display) Cell(row, col int) (Cell, error) {
	v, err := d.ptr.Add(offset(row, col)).ReadUint16()
	return Cell(v), err
}

func (d *Display) SetCell(row, col int, c Cell) error {
	return d.ptr.Add(offset(row, col)).WriteUint16(uint16(c))
}

// WriteString puts s on row starting at col, clipped to the row.
func (d *Display) WriteString(row, col int, s string, attr Attr) error {
	for i := 0; i < len(s) && col+i < Cols; i++ {
		if err := d.SetCell(row, col+i, NewCell(s[i], attr)); err != nil {
			return err
		}
	}
	return nil
}

// Clear zeroes the whole buffer.
func (d *Display) Clear() error {
	p, err := d.ptr.Host(Size, emulator.MEM_PROT_WRITE)
	if err != nil {
		return err
	}
	mem.Fill(p, 0, Size)
	return nil
}

// Scroll moves the buffer up by n rows and blanks the rows uncovered at the
// bottom with attr.
func (d *Display) Scroll(n int, attr Attr) error {
	p, err := d.ptr.Host(Size, emulator.MEM_PROT_READ|emulator.MEM_PROT_WRITE)
	if err != nil {
		return err
	}
	n = min(max(n, 0), Rows)
	if n == 0 {
		return nil
	}
	keep := uintptr((Rows - n) * Cols * CellSize)
	mem.Move(p, unsafe.Add(p, uintptr(n*Cols*CellSize)), keep)
	for row := Rows - n; row < Rows; row++ {
		for col := 0; col < Cols; col++ {
			if err = d.SetCell(row, col, NewCell(' ', attr)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Display) Snapshot() (Snapshot, error) {
	raw, err := d.ptr.MemRead(Size)
	if err != nil {
		return nil, err
	}
	order := d.ptr.Emulator().ByteOrder().Binary()
	s := make(Snapshot, Cols*Rows)
	for i := range s {
		s[i] = Cell(order.Uint16(raw[i*CellSize:]))
	}
	return s, nil
}

func offset(row, col int) uint64 {
	return uint64((row*Cols + col) * CellSize)
}

// Snapshot is a copy of the display, row-major.
type Snapshot []Cell

func (s Snapshot) At(row, col int) Cell {
	return s[row*Cols+col]
}

// Diff returns the indexes of cells that differ between s and o.
func (s Snapshot) Diff(o Snapshot) []int {
	var diff []int
	for i := range max(len(s), len(o)) {
		if i >= len(s) || i >= len(o) || s[i] != o[i] {
			diff = append(diff, i)
		}
	}
	return diff
}

// Text renders the glyphs, one line per row, trailing blanks trimmed.
func (s Snapshot) Text() string {
	var b strings.Builder
	for row := 0; row*Cols < len(s); row++ {
		line := make([]rune, 0, Cols)
		for _, c := range s[row*Cols : min((row+1)*Cols, len(s))] {
			line = append(line, c.Rune())
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		b.WriteByte('\n')
	}
	return b.String()
}
