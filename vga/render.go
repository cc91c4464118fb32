package vga

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fogleman/gg"
)

const (
	GlyphWidth  = 8
	GlyphHeight = 16
	baseline    = 12
)

// Image draws the snapshot the way the adapter would show it.
func (s Snapshot) Image() *gg.Context {
	rows := (len(s) + Cols - 1) / Cols
	dc := gg.NewContext(Cols*GlyphWidth, rows*GlyphHeight)
	dc.SetRGB255(0, 0, 0)
	dc.Clear()
	for i, c := range s {
		x := float64(i%Cols) * GlyphWidth
		y := float64(i/Cols) * GlyphHeight
		r, g, b := c.Attr().Background().RGB()
		dc.SetRGB255(int(r), int(g), int(b))
		dc.DrawRectangle(x, y, GlyphWidth, GlyphHeight)
		dc.Fill()
		if ch := c.Rune(); ch != ' ' {
			r, g, b = c.Attr().Foreground().RGB()
			dc.SetRGB255(int(r), int(g), int(b))
			dc.DrawString(string(ch), x, y+baseline)
		}
	}
	return dc
}

func (s Snapshot) RenderPNG(w io.Writer) error {
	return s.Image().EncodePNG(w)
}

var ansiColor = [8]int{0, 4, 2, 6, 1, 5, 3, 7}

func sgr(a Attr) string {
	fg := a.Foreground()
	code := 30 + ansiColor[fg&0x7]
	if fg >= DarkGray {
		code += 60
	}
	return fmt.Sprintf("\x1b[%d;%dm", code, 40+ansiColor[a.Background()])
}

// WriteANSI prints the snapshot with terminal colour escapes, at most width
// columns per row.
func (s Snapshot) WriteANSI(w io.Writer, width int) error {
	if width <= 0 || width > Cols {
		width = Cols
	}
	bw := bufio.NewWriter(w)
	for row := 0; row*Cols < len(s); row++ {
		var last Attr
		for col := 0; col < width && row*Cols+col < len(s); col++ {
			c := s.At(row, col)
			if col == 0 || c.Attr() != last {
				last = c.Attr()
				bw.WriteString(sgr(last))
			}
			bw.WriteRune(c.Rune())
		}
		bw.WriteString("\x1b[0m\n")
	}
	return bw.Flush()
}
