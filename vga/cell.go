// Package vga models the colour text-mode display memory: 80x25 cells of a
// glyph byte and an attribute byte.
package vga

import "fmt"

type Color uint8

const (
	Black Color = iota
	Blue
	Green
	Cyan
	Red
	Magenta
	Brown
	LightGray
	DarkGray
	LightBlue
	LightGreen
	LightCyan
	LightRed
	LightMagenta
	Yellow
	White
)

var palette = [16][3]uint8{
	{0x00, 0x00, 0x00}, {0x00, 0x00, 0xaa}, {0x00, 0xaa, 0x00}, {0x00, 0xaa, 0xaa},
	{0xaa, 0x00, 0x00}, {0xaa, 0x00, 0xaa}, {0xaa, 0x55, 0x00}, {0xaa, 0xaa, 0xaa},
	{0x55, 0x55, 0x55}, {0x55, 0x55, 0xff}, {0x55, 0xff, 0x55}, {0x55, 0xff, 0xff},
	{0xff, 0x55, 0x55}, {0xff, 0x55, 0xff}, {0xff, 0xff, 0x55}, {0xff, 0xff, 0xff},
}

func (c Color) RGB() (r, g, b uint8) {
	p := palette[c&0xf]
	return p[0], p[1], p[2]
}

// Attr is the high byte of a cell: foreground in the low nibble, background
// in bits 4-6, blink in bit 7.
type Attr uint8

func NewAttr(fg, bg Color) Attr {
	return Attr(bg&0x7)<<4 | Attr(fg&0xf)
}

func (a Attr) Foreground() Color {
	return Color(a & 0xf)
}

func (a Attr) Background() Color {
	return Color(a>>4) & 0x7
}

func (a Attr) Blink() bool {
	return a&0x80 != 0
}

type Cell uint16

func NewCell(ch byte, attr Attr) Cell {
	return Cell(attr)<<8 | Cell(ch)
}

func (c Cell) Char() byte {
	return byte(c)
}

func (c Cell) Attr() Attr {
	return Attr(c >> 8)
}

// Rune returns the printable form of the glyph.
func (c Cell) Rune() rune {
	ch := c.Char()
	if ch == 0 {
		return ' '
	} else if ch < 0x20 || ch > 0x7e {
		return '.'
	}
	return rune(ch)
}

func (c Cell) String() string {
	return fmt.Sprintf("%q@%02x", c.Rune(), uint8(c.Attr()))
}
