package gx3d

import (
	"errors"
	"testing"
)

// roughly one display frame of geometry engine time
const testFrameCycles = 560190

func newTestEngine(t *testing.T, opts ...Option) *GXEngine {
	t.Helper()
	e, err := NewGXEngine(opts...)
	if err != nil {
		t.Fatalf("NewGXEngine: %v", err)
	}
	t.Cleanup(e.Close)
	// power-on clear depth is 0, which no polygon can pass
	e.HandleWrite(GX_REG_CLEAR_DEPTH, 0x7FFF)
	return e
}

// drawnPixels counts pixels with non-zero alpha.
func drawnPixels(lines [][]uint32) int {
	n := 0
	for _, line := range lines {
		for _, c := range line {
			if c>>24&0x1F != 0 {
				n++
			}
		}
	}
	return n
}

func (e *GXEngine) testCmd(op uint8, params ...uint32) {
	if len(params) == 0 {
		e.WriteCommand(op, 0)
		return
	}
	for _, p := range params {
		e.WriteCommand(op, p)
	}
}

func (e *GXEngine) testVertex(x, y, z int16) {
	e.testCmd(GX_CMD_VTX_16, uint32(uint16(x))|uint32(uint16(y))<<16, uint32(uint16(z)))
}

func polyAttr(id, alpha, mode uint32) uint32 {
	return GX_ATTR_FRONT_VISIBLE | GX_ATTR_BACK_VISIBLE |
		mode<<GX_ATTR_MODE_SHIFT | alpha<<GX_ATTR_ALPHA_SHIFT | id<<GX_ATTR_ID_SHIFT
}

// testQuad draws a square of half size 0.5 centred in the view at depth z.
func (e *GXEngine) testQuad(attr, color uint32, z int16) {
	e.testCmd(GX_CMD_POLYGON_ATTR, attr)
	e.testCmd(GX_CMD_COLOR, color)
	e.testCmd(GX_CMD_BEGIN_VTXS, GX_PRIM_QUADS)
	e.testVertex(-0x800, -0x800, z)
	e.testVertex(0x800, -0x800, z)
	e.testVertex(0x800, 0x800, z)
	e.testVertex(-0x800, 0x800, z)
	e.testCmd(GX_CMD_END_VTXS)
}

func (e *GXEngine) testTriangle(attr, color uint32, z int16) {
	e.testCmd(GX_CMD_POLYGON_ATTR, attr)
	e.testCmd(GX_CMD_COLOR, color)
	e.testCmd(GX_CMD_BEGIN_VTXS, GX_PRIM_TRIANGLES)
	e.testVertex(-0x800, -0x800, z)
	e.testVertex(0x800, -0x800, z)
	e.testVertex(0, 0x800, z)
	e.testCmd(GX_CMD_END_VTXS)
}

func (e *GXEngine) testFrame() {
	e.testCmd(GX_CMD_SWAP_BUFFERS)
	e.RunFrame(testFrameCycles)
}

func pixelRGBA(c uint32) (r, g, b, a uint32) {
	return c & 0x3F, (c >> 8) & 0x3F, (c >> 16) & 0x3F, (c >> 24) & 0x1F
}

func TestEngine_NilVRAM(t *testing.T) {
	_, err := NewGXEngine(WithVRAM(nil, NewFlatVRAM(0x20000)))
	if !errors.Is(err, ErrNoVRAM) {
		t.Fatalf("err %v, want ErrNoVRAM", err)
	}
}

func TestEngine_FlatQuad(t *testing.T) {
	e := newTestEngine(t)
	e.testQuad(polyAttr(5, 31, GX_MODE_MODULATE), 0x001F, 0)
	e.testFrame()

	if polys, _ := e.RenderPolygons(); len(polys) != 1 {
		t.Fatalf("rendered %d polygons", len(polys))
	}

	depth := e.fb.Depth[pixelAddr(128, 96)]
	for y := 50; y < 140; y++ {
		line := e.GetLine(y)
		for x := 70; x < 180; x++ {
			r, g, b, a := pixelRGBA(line[x])
			if r != 63 || g != 0 || b != 0 || a != 31 {
				t.Fatalf("pixel (%d,%d) = %d,%d,%d,%d", x, y, r, g, b, a)
			}
			if d := e.fb.Depth[pixelAddr(x, y)]; d != depth {
				t.Fatalf("pixel (%d,%d) depth %#x, want %#x", x, y, d, depth)
			}
			if id := (e.fb.Attr[pixelAddr(x, y)] >> 24) & 0x3F; id != 5 {
				t.Fatalf("pixel (%d,%d) polygon ID %d", x, y, id)
			}
		}
	}

	if _, _, _, a := pixelRGBA(e.GetLine(10)[10]); a != 0 {
		t.Fatal("outside the quad must keep the clear colour")
	}
}

func TestEngine_NearerTriangleWins(t *testing.T) {
	const near, far = -0x800, 0x800
	cases := []struct {
		name  string
		order []int16
	}{
		{"back to front", []int16{far, near}},
		{"front to back", []int16{near, far}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			for _, z := range tc.order {
				id, color := uint32(1), uint32(0x7C00) // far: blue
				if z == near {
					id, color = 2, 0x001F // near: red
				}
				e.testTriangle(polyAttr(id, 31, GX_MODE_MODULATE), color, z)
			}
			e.testFrame()

			r, _, b, _ := pixelRGBA(e.GetLine(96)[128])
			if r != 63 || b != 0 {
				t.Fatalf("centre pixel r=%d b=%d, want the near triangle", r, b)
			}
			if id := (e.fb.Attr[pixelAddr(128, 96)] >> 24) & 0x3F; id != 2 {
				t.Fatalf("polygon ID %d, want 2", id)
			}
		})
	}
}

func TestEngine_ShadowSkipsSameID(t *testing.T) {
	cases := []struct {
		name     string
		shadowID uint32
		wantRed  uint32
	}{
		{"same ID as the receiver", 5, 63},
		{"other ID", 6, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.testQuad(polyAttr(5, 31, GX_MODE_MODULATE), 0x001F, 0)
			// the mask sits behind the receiver and fails the depth test
			e.testQuad(polyAttr(0, 15, GX_MODE_SHADOW), 0, 0x800)
			e.testQuad(polyAttr(tc.shadowID, 15, GX_MODE_SHADOW), 0, -0x800)
			e.testFrame()

			r, _, _, _ := pixelRGBA(e.GetLine(96)[128])
			if r != tc.wantRed {
				t.Fatalf("red %d, want %d", r, tc.wantRed)
			}
		})
	}
}

func TestEngine_Deterministic(t *testing.T) {
	render := func() [][]uint32 {
		e := newTestEngine(t)
		e.testTriangle(polyAttr(1, 31, GX_MODE_MODULATE), 0x7C1F, 0x400)
		e.testQuad(polyAttr(2, 20, GX_MODE_MODULATE), 0x03E0, 0)
		e.testFrame()
		out := make([][]uint32, GX_SCREEN_HEIGHT)
		for y := range out {
			out[y] = append([]uint32(nil), e.GetLine(y)...)
		}
		return out
	}

	a, b := render(), render()
	if n := drawnPixels(a); n < 64*64 {
		t.Fatalf("only %d pixels drawn", n)
	}
	for y := range a {
		for x := range a[y] {
			if a[y][x] != b[y][x] {
				t.Fatalf("pixel (%d,%d) differs between runs", x, y)
			}
		}
	}
}

func TestEngine_ThreadedMatchesInline(t *testing.T) {
	inline := newTestEngine(t)
	threaded := newTestEngine(t, WithThreadedRenderer(true))

	for frame := 0; frame < 3; frame++ {
		for _, e := range []*GXEngine{inline, threaded} {
			e.testTriangle(polyAttr(1, 31, GX_MODE_MODULATE), 0x7C1F, int16(frame*0x100))
			e.testQuad(polyAttr(2, 20, GX_MODE_MODULATE), 0x03E0, 0)
			e.testFrame()
		}
		lines := make([][]uint32, GX_SCREEN_HEIGHT)
		for y := range lines {
			lines[y] = inline.GetLine(y)
		}
		if n := drawnPixels(lines); n < 64*64 {
			t.Fatalf("frame %d: only %d pixels drawn", frame, n)
		}
		for y := 0; y < GX_SCREEN_HEIGHT; y++ {
			want := lines[y]
			got := threaded.GetLine(y)
			for x := range want {
				if got[x] != want[x] {
					t.Fatalf("frame %d pixel (%d,%d): threaded %#x inline %#x", frame, x, y, got[x], want[x])
				}
			}
		}
	}
}

func TestEngine_SwapHaltsUntilVBlank(t *testing.T) {
	e := newTestEngine(t)
	e.testCmd(GX_CMD_SWAP_BUFFERS)
	e.testCmd(GX_CMD_COLOR, 0x7FFF)

	e.Run(10000)
	if e.Status()&GX_STAT_BUSY == 0 {
		t.Fatal("engine must report busy while a swap is pending")
	}
	if e.vtx.VertexColor != [3]uint8{} {
		t.Fatal("commands after SWAP_BUFFERS ran before VBlank")
	}

	e.VBlank()
	e.Run(10000)
	if e.vtx.VertexColor != [3]uint8{31, 31, 31} {
		t.Fatalf("colour %v after VBlank", e.vtx.VertexColor)
	}
	if e.Status()&GX_STAT_BUSY != 0 {
		t.Fatal("idle engine reports busy")
	}
}

func TestEngine_StallDrainsThroughSwap(t *testing.T) {
	e := newTestEngine(t)
	e.testCmd(GX_CMD_SWAP_BUFFERS)
	for i := 0; i < 300; i++ {
		e.testCmd(GX_CMD_NOP)
	}
	if e.queue.Stalled() {
		t.Fatal("direct writes must drain the stall")
	}
	if e.flushRequest {
		t.Fatal("the pending swap should have been taken early")
	}
	if e.queue.Len() > GX_CMD_PIPE_SIZE+GX_CMD_FIFO_SIZE {
		t.Fatalf("queue holds %d entries", e.queue.Len())
	}
}

func TestEngine_OverflowFlag(t *testing.T) {
	e := newTestEngine(t)
	e.fb.Current().NumPolygons = GX_MAX_POLYGONS
	e.testTriangle(polyAttr(1, 31, GX_MODE_MODULATE), 0x7FFF, 0)
	e.Run(10000)

	if e.HandleRead(GX_REG_DISP3DCNT)&GX_DISP_RAM_OVERFLOW == 0 {
		t.Fatal("geometry RAM overflow must raise DISP3DCNT bit 13")
	}
	e.HandleWrite(GX_REG_DISP3DCNT, GX_DISP_RAM_OVERFLOW)
	if e.HandleRead(GX_REG_DISP3DCNT)&GX_DISP_RAM_OVERFLOW != 0 {
		t.Fatal("writing 1 acknowledges the overflow")
	}
}

func TestEngine_LineRGBA(t *testing.T) {
	e := newTestEngine(t)
	e.testQuad(polyAttr(1, 31, GX_MODE_MODULATE), 0x7FFF, 0)
	e.testFrame()

	buf := make([]byte, GX_SCREEN_WIDTH*4)
	e.LineRGBA(96, buf)
	px := buf[128*4 : 128*4+4]
	if px[0] != 0xFF || px[1] != 0xFF || px[2] != 0xFF || px[3] != 0xFF {
		t.Fatalf("white pixel %v", px)
	}
}
