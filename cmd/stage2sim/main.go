package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/mattn/go-tty"

	"github.com/wnxd/stage2/boot"
	"github.com/wnxd/stage2/halt"
	"github.com/wnxd/stage2/stage2"
	"github.com/wnxd/stage2/vga"
)

var mbrFlag = flag.String("mbr", "", "boot sector image copied to 0x7c00")
var memFlag = flag.Uint64("mem", 32, "usable RAM in MiB reported by the memory map")
var pngFlag = flag.String("png", "", "write a PNG of the display to this file")
var ttyFlag = flag.Bool("tty", false, "draw the display on the terminal")
var timeoutFlag = flag.Duration("timeout", 200*time.Millisecond, "how long to watch the entry point")
var verbose = flag.Bool("v", false, "log the memory map and partitions")

func main() {
	log.SetFlags(0)
	log.SetPrefix("stage2sim: ")
	flag.Parse()

	h := &boot.Handoff{MemoryMap: boot.DefaultMemoryMap(*memFlag << 20), Dirty: true}
	if *mbrFlag != "" {
		sector, err := os.ReadFile(*mbrFlag)
		if err != nil {
			log.Fatalf("unable to read boot sector: %v", err)
		}
		h.BootSector = sector
	}
	env, err := boot.NewMachine(h)
	if err != nil {
		log.Fatalf("unable to build machine: %v", err)
	}
	err = run(env)
	if e := env.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		log.Fatalf("%v", err)
	}
}

func run(env *boot.Env) error {
	if err := env.Display().Clear(); err != nil {
		return err
	}
	if *verbose {
		if err := report(env); err != nil {
			return err
		}
	}

	outcome := halt.Run(func() { stage2.Main(env, halt.Spin{}) }, *timeoutFlag)
	if outcome != halt.Running {
		return fmt.Errorf("entry point %s, it should halt forever", outcome)
	}
	snap, err := env.Display().Snapshot()
	if err != nil {
		return err
	}

	if *pngFlag != "" {
		if err = writePNG(*pngFlag, snap); err != nil {
			return err
		}
	}
	if *ttyFlag {
		return drawTTY(snap)
	}
	_, err = os.Stdout.WriteString(snap.Text())
	return err
}

func report(env *boot.Env) error {
	entries, err := env.MemoryMap()
	if err != nil {
		return fmt.Errorf("memory map: %w", err)
	}
	for _, e := range entries {
		log.Printf("e820 %016x-%016x %v", e.Base, e.End(), e.Type)
	}
	regions, err := env.Regions()
	if err != nil {
		return fmt.Errorf("regions: %w", err)
	}
	for _, r := range regions {
		log.Printf("region %v", r)
	}
	log.Printf("available %d KiB", regions.Available()>>10)
	if *mbrFlag == "" {
		return nil
	}
	table, err := env.Partitions()
	if err != nil {
		log.Printf("partitions: %v", err)
		return nil
	}
	for i, e := range table {
		if !e.Empty() {
			log.Printf("partition %d %v", i, e)
		}
	}
	return nil
}

func writePNG(path string, snap vga.Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = snap.RenderPNG(f); err != nil {
		f.Close()
		return fmt.Errorf("unable to render display: %w", err)
	}
	return f.Close()
}

func drawTTY(snap vga.Snapshot) error {
	t, err := tty.Open()
	if err != nil {
		return err
	}
	defer t.Close()
	width, _, err := t.Size()
	if err != nil {
		log.Printf("%v", err)
		width = vga.Cols
	}
	return snap.WriteANSI(t.Output(), width)
}
