package main

import (
	"fmt"

	"github.com/intuitionamiga/gx3d"
	"github.com/intuitionamiga/gx3d/internal/scene"
)

// One display frame at the 33.5 MHz bus clock, 263 lines of 2130 cycles.
const frameCycles = gx3d.GX_SCANLINES_PER_FRAME * 2130

const (
	screenW = gx3d.GX_SCREEN_WIDTH
	screenH = gx3d.GX_SCREEN_HEIGHT
)

// Scene emits the geometry of one frame.
type Scene interface {
	// Draw returns the SWAP_BUFFERS attributes for the frame.
	Draw(b *scene.Builder, frame int) (flushAttr uint32, err error)
}

// driver steps the engine one display frame at a time and keeps the last
// finished picture as 8-bit RGBA.
type driver struct {
	e     *gx3d.GXEngine
	b     *scene.Builder
	scene Scene
	frame int
	rgba  []byte
}

func newDriver(e *gx3d.GXEngine, b *scene.Builder, s Scene) *driver {
	return &driver{e: e, b: b, scene: s, rgba: make([]byte, screenW*screenH*4)}
}

// setup programs an opaque dark clear colour so the window never shows
// undefined alpha, and turns texturing on.
func (d *driver) setup() error {
	d.e.HandleWrite(gx3d.GX_REG_CLEAR_COLOR, scene.RGB15(2, 3, 6)|31<<16|63<<24)
	d.e.HandleWrite(gx3d.GX_REG_CLEAR_DEPTH, 0x7FFF)
	d.e.HandleWrite(gx3d.GX_REG_DISP3DCNT, d.e.HandleRead(gx3d.GX_REG_DISP3DCNT)|gx3d.GX_DISP_TEXTURE)
	return nil
}

func (d *driver) step() error {
	attr, err := d.scene.Draw(d.b, d.frame)
	if err != nil {
		return fmt.Errorf("frame %d: %w", d.frame, err)
	}
	d.b.Flush(attr)
	d.e.RunFrame(frameCycles)

	for y := 0; y < screenH; y++ {
		d.e.LineRGBA(y, d.rgba[y*screenW*4:(y+1)*screenW*4])
	}
	d.frame++
	return nil
}

func (d *driver) status() string {
	polys, _ := d.e.RenderPolygons()
	return fmt.Sprintf("frame %d  polys %d  verts %d  GXSTAT %08X  DISP3DCNT %04X",
		d.frame, len(polys), len(d.e.RenderVertices()),
		d.e.HandleRead(gx3d.GX_REG_GXSTAT), d.e.HandleRead(gx3d.GX_REG_DISP3DCNT))
}
