package gx3d

import "log/slog"

// Option configures a GXEngine during creation.
//
// Example:
//
//	tex, pal := gx3d.NewFlatVRAM(0x80000), gx3d.NewFlatVRAM(0x20000)
//	gx, err := gx3d.NewGXEngine(gx3d.WithVRAM(tex, pal), gx3d.WithThreadedRenderer(true))
type Option func(*engineOptions)

type engineOptions struct {
	texVRAM  VRAMReader
	palVRAM  VRAMReader
	vramSet  bool
	threaded bool
	logger   *slog.Logger

	onIRQ   func(asserted bool)
	onDMA   func()
	onStall func(stalled bool)
}

func defaultOptions() engineOptions {
	return engineOptions{}
}

// WithVRAM sets the texture (512 KiB) and texture palette (128 KiB) spaces
// the rasteriser samples from. Bank mapping is the caller's concern.
// Without it the engine allocates blank FlatVRAM spaces.
func WithVRAM(tex, pal VRAMReader) Option {
	return func(o *engineOptions) {
		o.texVRAM = tex
		o.palVRAM = pal
		o.vramSet = true
	}
}

// WithThreadedRenderer renders frames on a background goroutine. GetLine
// then blocks until the requested scanline is done.
func WithThreadedRenderer(enabled bool) Option {
	return func(o *engineOptions) {
		o.threaded = enabled
	}
}

// WithLogger sends this engine's log records to l instead of the
// package logger (see SetLogger).
func WithLogger(l *slog.Logger) Option {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithIRQHandler is called whenever the GXFIFO interrupt line changes.
func WithIRQHandler(fn func(asserted bool)) Option {
	return func(o *engineOptions) {
		o.onIRQ = fn
	}
}

// WithDMAHandler is called when the FIFO drops below half full, the point
// where a geometry DMA would be triggered.
func WithDMAHandler(fn func()) Option {
	return func(o *engineOptions) {
		o.onDMA = fn
	}
}

// WithStallHandler is told when the producer must stop (true) and when it
// may continue (false).
func WithStallHandler(fn func(stalled bool)) Option {
	return func(o *engineOptions) {
		o.onStall = fn
	}
}
