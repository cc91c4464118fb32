package stage2

import (
	"bytes"
	"slices"
	"testing"
	"time"

	"github.com/wnxd/stage2/boot"
	"github.com/wnxd/stage2/halt"
	"github.com/wnxd/stage2/vga"
)

func newEnv(t *testing.T) *boot.Env {
	t.Helper()
	env, err := boot.NewMachine(&boot.Handoff{MemoryMap: boot.DefaultMemoryMap(8 << 20), Dirty: true})
	if err != nil {
		t.Fatalf("NewMachine: %v", err)
	}
	t.Cleanup(func() { env.Close() })
	return env
}

func runMain(t *testing.T, env *boot.Env) {
	t.Helper()
	if o := halt.Run(func() { Main(env, halt.Bounded{N: 1}) }, time.Second); o != halt.Halted {
		t.Fatalf("Main: %v, want %v", o, halt.Halted)
	}
}

func TestHeartbeatCells(t *testing.T) {
	if CellO.Rune() != 'O' || CellK.Rune() != 'K' {
		t.Errorf("glyphs = %c%c", CellO.Rune(), CellK.Rune())
	}
	want := vga.NewAttr(vga.White, vga.Green)
	if CellO.Attr() != want || CellK.Attr() != want {
		t.Errorf("attrs = %#x %#x, want %#x", CellO.Attr(), CellK.Attr(), want)
	}
}

func TestMainHeartbeat(t *testing.T) {
	env := newEnv(t)
	display := env.Display()
	if err := display.WriteString(3, 0, "booting", vga.NewAttr(vga.LightGray, vga.Black)); err != nil {
		t.Fatal(err)
	}
	before, err := display.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	low, _ := env.Emulator().MemRead(0, boot.ConventionalEnd)

	runMain(t, env)

	after, err := display.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	if got := before.Diff(after); !slices.Equal(got, []int{0, 1}) {
		t.Errorf("changed cells = %v, want [0 1]", got)
	}
	if after[0] != 0x2f4f || after[1] != 0x2f4b {
		t.Errorf("cells = %#x %#x", after[0], after[1])
	}
	raw, _ := env.Emulator().MemRead(boot.DisplayAddr, 4)
	if !bytes.Equal(raw, []byte{0x4f, 0x2f, 0x4b, 0x2f}) {
		t.Errorf("display bytes = %x", raw)
	}
	if lowAfter, _ := env.Emulator().MemRead(0, boot.ConventionalEnd); !bytes.Equal(low, lowAfter) {
		t.Error("conventional memory changed")
	}
}

func TestMainTwice(t *testing.T) {
	env := newEnv(t)
	runMain(t, env)
	first, _ := env.Display().Snapshot()
	runMain(t, env)
	second, _ := env.Display().Snapshot()
	if d := first.Diff(second); len(d) != 0 {
		t.Errorf("second run changed cells %v", d)
	}
}

func TestMainNeverReturns(t *testing.T) {
	env := newEnv(t)
	if o := halt.Run(func() { Main(env, halt.Spin{}) }, 20*time.Millisecond); o != halt.Running {
		t.Errorf("Main with Spin: %v, want %v", o, halt.Running)
	}
}

func TestMainWithoutDisplay(t *testing.T) {
	env := newEnv(t)
	if err := env.Emulator().MemUnmap(boot.VideoBase, boot.VideoEnd-boot.VideoBase); err != nil {
		t.Fatal(err)
	}
	halted := false
	h := halt.Func(func() { halted = true })
	if o := halt.Run(func() { Main(env, h) }, time.Second); o != halt.Halted || !halted {
		t.Errorf("Main = %v, halted = %v", o, halted)
	}
}

func TestHooks(t *testing.T) {
	EHPersonality()
	if o := halt.Run(func() { PanicFmt(halt.Bounded{}) }, time.Second); o != halt.Halted {
		t.Errorf("PanicFmt = %v, want %v", o, halt.Halted)
	}
}
