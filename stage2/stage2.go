// Package stage2 is the entry point of the second boot stage. It runs on the
// stack the first stage left at 0x7c00, reports that it got control and stops.
package stage2

import (
	"github.com/wnxd/stage2/boot"
	"github.com/wnxd/stage2/halt"
	"github.com/wnxd/stage2/vga"
)

// The heartbeat: "OK" in white on green in the two top left cells.
const (
	CellO vga.Cell = 0x2f4f
	CellK vga.Cell = 0x2f4b

	heartbeat = uint32(CellK)<<16 | uint32(CellO)
)

// Main writes the heartbeat with a single 32-bit store and halts. It never
// returns.
func Main(env *boot.Env, h halt.Halter) {
	if err := env.Display().Pointer().WriteUint32(heartbeat); err != nil {
		PanicFmt(h)
	}
	h.Halt()
	for {
	}
}

// EHPersonality is the unwinding personality. Nothing unwinds.
func EHPersonality() {}

// PanicFmt is where fatal errors end up. It never returns.
func PanicFmt(h halt.Halter) {
	h.Halt()
	for {
	}
}
