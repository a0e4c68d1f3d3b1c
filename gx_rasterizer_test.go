package gx3d

import "testing"

func TestRasterizer_DepthTest(t *testing.T) {
	const dst = 0x400000
	cases := []struct {
		name    string
		fn      depthFunc
		z       int32
		dstattr uint32
		want    bool
	}{
		{"less passes nearer", depthLess, dst - 1, 0, true},
		{"less fails tie", depthLess, dst, 0, false},
		{"equal Z lower bound", depthEqualZ, dst - 0x200, 0, true},
		{"equal Z upper bound", depthEqualZ, dst + 0x200, 0, true},
		{"equal Z outside", depthEqualZ, dst + 0x201, 0, false},
		{"equal Z outside below", depthEqualZ, dst - 0x201, 0, false},
		{"equal W bound", depthEqualW, dst + 0xFF, 0, true},
		{"equal W outside", depthEqualW, dst - 0x100, 0, false},
		{"front wins tie over opaque back face", depthLessFrontFacing, dst, GX_PIX_BACKFACING, true},
		{"front loses tie over translucent back face", depthLessFrontFacing, dst, GX_PIX_BACKFACING | GX_PIX_TRANSLUCENT, false},
		{"front loses tie over front face", depthLessFrontFacing, dst, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := depthTest(tc.fn, dst, tc.z, tc.dstattr, 0); got != tc.want {
				t.Fatalf("depthTest = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRasterizer_DepthTestEdgeQuirk(t *testing.T) {
	const dst = 0x1000
	cases := []struct {
		name    string
		z       int32
		dstattr uint32
		edge    uint32
		want    bool
	}{
		{"tie against X-major top edge", dst, GX_PIX_XMAJOR_TOP, 0, true},
		{"tie against Y-major left edge", dst, GX_PIX_YMAJOR_LEFT, GX_PIX_EDGE_RIGHT, true},
		{"same edge keeps strict test", dst, GX_PIX_XMAJOR_TOP, GX_PIX_XMAJOR_TOP, false},
		{"farther pixel never wins", dst + 1, GX_PIX_XMAJOR_TOP, 0, false},
		{"plain destination", dst, 0, 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := depthTestEdgeQuirk(dst, tc.z, tc.dstattr, tc.edge); got != tc.want {
				t.Fatalf("depthTestEdgeQuirk = %v, want %v", got, tc.want)
			}
			if got := depthTest(depthLess, dst, tc.z, tc.dstattr, tc.edge); got != tc.want {
				t.Fatalf("depthTest = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRasterizer_TranslucentIDBlendsOnce(t *testing.T) {
	const (
		blue     = 63<<16 | 31<<24
		red15    = 63 | 15<<24
		once     = 31 | 31<<16 | 31<<24
		twice    = 47 | 15<<16 | 31<<24
		firstID  = 3
		transBit = GX_PIX_TRANSLUCENT
	)
	cases := []struct {
		name     string
		secondID uint32
		want     uint32
	}{
		{"same translucent ID", firstID, once},
		{"other translucent ID", 4, twice},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewSoftRenderer(NewFrameBufferSet(), nil, nil)
			r.rs.DispCnt = GX_DISP_ALPHA_BLEND
			n := pixelAddr(10, 10)
			r.fb.Color[n] = blue

			r.plotTranslucentPixel(n, red15, 0, false, firstID<<24, false)
			if r.fb.Color[n] != once {
				t.Fatalf("first blend %#x, want %#x", r.fb.Color[n], once)
			}
			if attr := r.fb.Attr[n]; attr&transBit == 0 || attr&GX_PIX_TRANS_ID != firstID<<16 {
				t.Fatalf("attr %#x", attr)
			}

			r.plotTranslucentPixel(n, red15, 0, false, tc.secondID<<24, false)
			if r.fb.Color[n] != tc.want {
				t.Fatalf("second blend %#x, want %#x", r.fb.Color[n], tc.want)
			}
		})
	}
}

func TestRasterizer_TranslucentDepthWrite(t *testing.T) {
	r := NewSoftRenderer(NewFrameBufferSet(), nil, nil)
	n := pixelAddr(3, 3)
	r.fb.Depth[n] = 0x7FFFFF

	r.plotTranslucentPixel(n, 63|15<<24, 0x1234, false, 1<<24, false)
	if r.fb.Depth[n] != 0x7FFFFF {
		t.Fatal("translucent pixel wrote depth without the attribute bit")
	}
	r.plotTranslucentPixel(n, 63|15<<24, 0x1234, true, 2<<24, false)
	if r.fb.Depth[n] != 0x1234 {
		t.Fatalf("depth %#x after depth-writing translucent pixel", r.fb.Depth[n])
	}
}

func TestRasterizer_DepthEqualDrawsOnlyAtSameDepth(t *testing.T) {
	cases := []struct {
		name    string
		z       int16
		wantRed uint32
	}{
		{"same depth", 0, 0},
		{"behind", 0x100, 63},
		{"in front", -0x100, 63},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.testQuad(polyAttr(1, 31, GX_MODE_MODULATE), 0x001F, 0)
			e.testQuad(polyAttr(2, 31, GX_MODE_MODULATE)|GX_ATTR_DEPTH_EQUAL, 0x7C00, tc.z)
			e.testFrame()

			r, _, _, _ := pixelRGBA(e.GetLine(96)[128])
			if r != tc.wantRed {
				t.Fatalf("red %d, want %d", r, tc.wantRed)
			}
		})
	}
}

func TestRasterizer_AntialiasPushesDownEdges(t *testing.T) {
	e := newTestEngine(t)
	e.HandleWrite(GX_REG_CLEAR_COLOR, 0x7C00|31<<16)
	e.HandleWrite(GX_REG_DISP3DCNT, GX_DISP_ANTIALIAS)
	e.testQuad(polyAttr(1, 31, GX_MODE_MODULATE), 0x001F, 0)
	e.testFrame()

	fb := e.fb
	clearColor := fb.Color[pixelAddr(10, 10)]
	if clearColor>>24 == 0 {
		t.Fatal("clear colour must be opaque")
	}

	// left edge on the middle row
	left := -1
	for x := 0; x < GX_SCREEN_WIDTH; x++ {
		if fb.Attr[pixelAddr(x, 96)]&GX_PIX_EDGE_LEFT != 0 {
			left = x
			break
		}
	}
	if left < 0 {
		t.Fatal("no left edge pixel on row 96")
	}
	if under := fb.Color[pixelAddr(left, 96)+GX_BUFFER_SIZE]; under != clearColor {
		t.Fatalf("layer 1 under the left edge %#x, want the clear colour %#x", under, clearColor)
	}

	// top row interior pixels carry full coverage
	top := -1
	for y := 0; y < GX_SCREEN_HEIGHT; y++ {
		if fb.Attr[pixelAddr(128, y)]&GX_PIX_EDGE_TOP != 0 {
			top = y
			break
		}
	}
	if top < 0 {
		t.Fatal("no top edge pixel in column 128")
	}
	n := pixelAddr(128, top)
	if fb.Attr[n]&GX_PIX_COVER_MASK != GX_PIX_COVER_MASK {
		t.Fatalf("top row coverage %#x", fb.Attr[n]&GX_PIX_COVER_MASK)
	}
	if fb.Color[n+GX_BUFFER_SIZE] != clearColor {
		t.Fatalf("layer 1 under the top edge %#x", fb.Color[n+GX_BUFFER_SIZE])
	}

	// interior pixels are not pushed down
	if under := fb.Color[pixelAddr(128, 96)+GX_BUFFER_SIZE]; under != 0 {
		t.Fatalf("layer 1 under the interior %#x", under)
	}
}

func TestRasterizer_ShadowMaskStencil(t *testing.T) {
	mask := polyAttr(0, 15, GX_MODE_SHADOW)
	cases := []struct {
		name string
		draw func(e *GXEngine)
		want uint8
	}{
		{"mask behind receiver", func(e *GXEngine) {
			e.testQuad(mask, 0, 0x800)
		}, 1},
		{"mask in front of receiver", func(e *GXEngine) {
			e.testQuad(mask, 0, -0x800)
		}, 0},
		{"consecutive masks accumulate", func(e *GXEngine) {
			e.testQuad(mask, 0, 0x800)
			e.testQuad(mask, 0, -0x800)
		}, 1},
		{"mask after a shadow restarts", func(e *GXEngine) {
			e.testQuad(mask, 0, 0x800)
			e.testQuad(polyAttr(6, 15, GX_MODE_SHADOW), 0, -0x800)
			e.testQuad(mask, 0, -0x800)
		}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			e.testQuad(polyAttr(5, 31, GX_MODE_MODULATE), 0x001F, 0)
			tc.draw(e)
			e.testFrame()

			// the last two mask rows are left in the stencil
			for _, row := range []int{0, 1} {
				if got := e.fb.Stencil[row*GX_SCREEN_WIDTH+128]; got != tc.want {
					t.Fatalf("stencil row %d = %d, want %d", row, got, tc.want)
				}
			}
		})
	}
}

func TestRasterizer_ClearStencilFlag(t *testing.T) {
	e := newTestEngine(t)
	mask := polyAttr(0, 15, GX_MODE_SHADOW)
	e.testQuad(polyAttr(5, 31, GX_MODE_MODULATE), 0x001F, 0)
	e.testQuad(mask, 0, 0x800)
	e.testQuad(mask, 0, 0x800)
	e.testQuad(polyAttr(6, 15, GX_MODE_SHADOW), 0, -0x800)
	e.testQuad(mask, 0, 0x800)
	e.testFrame()

	polys, _ := e.RenderPolygons()
	want := []bool{false, true, false, false, true}
	if len(polys) != len(want) {
		t.Fatalf("%d polygons", len(polys))
	}
	for i, p := range polys {
		if p.ClearStencil != want[i] {
			t.Fatalf("polygon %d ClearStencil %v, want %v", i, p.ClearStencil, want[i])
		}
	}
}

func TestRasterizer_ShadowStencilLayers(t *testing.T) {
	const blue = 63<<16 | 31<<24
	cases := []struct {
		name      string
		stencil   uint8
		wantTop   uint32 // red of the receiver
		wantUnder uint32 // blue of layer 1
	}{
		{"no stencil", 0, 63, 63},
		{"bit 0 shades the top layer", 1, 0, 63},
		{"bit 1 shades the layer underneath", 2, 63, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEngine(t)
			for i := range e.fb.Stencil {
				e.fb.Stencil[i] = tc.stencil
			}
			under := pixelAddr(128, 96) + GX_BUFFER_SIZE
			e.fb.Color[under] = blue
			e.fb.Depth[under] = 0xFFFFFF
			e.fb.Attr[under] = 0

			e.testQuad(polyAttr(5, 31, GX_MODE_MODULATE), 0x001F, 0)
			e.testQuad(polyAttr(6, 15, GX_MODE_SHADOW), 0, -0x800)
			e.testFrame()

			r, _, _, _ := pixelRGBA(e.GetLine(96)[128])
			if r != tc.wantTop {
				t.Fatalf("top red %d, want %d", r, tc.wantTop)
			}
			if b := (e.fb.Color[under] >> 16) & 0x3F; b != tc.wantUnder {
				t.Fatalf("layer 1 blue %d, want %d", b, tc.wantUnder)
			}
		})
	}
}
