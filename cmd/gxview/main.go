package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/intuitionamiga/gx3d"
	"github.com/intuitionamiga/gx3d/internal/scene"
)

func main() {
	script := flag.String("script", "", "Lua scene script (default: built-in demo)")
	termMode := flag.Bool("term", false, "Render to the terminal with ANSI half blocks instead of a window")
	threaded := flag.Bool("threaded", false, "Rasterise on a worker goroutine")
	frames := flag.Int("frames", 0, "Stop after this many frames (0 runs until closed)")
	scale := flag.Int("scale", 3, "Window scale factor")
	debug := flag.Bool("debug", false, "Log engine events at debug level")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gxview [options]\n\nRuns a scene through the GX 3D engine and shows the result.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  gxview\n")
		fmt.Fprintf(os.Stderr, "  gxview -script scenes/spin.lua -threaded\n")
		fmt.Fprintf(os.Stderr, "  gxview -term -frames 300\n")
	}
	flag.Parse()

	if *scale < 1 || *scale > 8 {
		fmt.Fprintf(os.Stderr, "error: -scale must be between 1 and 8\n")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	texVRAM := gx3d.NewFlatVRAM(0x80000)
	palVRAM := gx3d.NewFlatVRAM(0x20000)
	engine, err := gx3d.NewGXEngine(
		gx3d.WithVRAM(texVRAM, palVRAM),
		gx3d.WithThreadedRenderer(*threaded),
		gx3d.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	b := scene.New(engine)
	var sc Scene = newDemoScene(texVRAM)
	if *script != "" {
		ls, err := newLuaScene(*script, b, engine, texVRAM)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		defer ls.Close()
		sc = ls
	}

	d := newDriver(engine, b, sc)
	if err := d.setup(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *termMode {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		err = runTerminal(ctx, d, *frames, os.Stdout)
	} else {
		err = runWindow(d, *frames, *scale)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
