package gx3d

import "testing"

func TestFrameBuffer_SortRenderListIsStable(t *testing.T) {
	keys := []uint32{0x3010, 0x2010, 0x3010, 0x2010, 0x13010, 0x12010, 0x13010, 0x3010}

	cases := []struct {
		name        string
		translucent int // polygons from this index on are translucent
		manual      bool
		want        []int32
	}{
		{"all opaque", len(keys), false, []int32{1, 3, 0, 2, 7, 5, 4, 6}},
		{"translucent sorted", 4, false, []int32{1, 3, 0, 2, 7, 5, 4, 6}},
		{"manual translucent order", 4, true, []int32{1, 3, 0, 2, 4, 5, 6, 7}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fb := NewFrameBufferSet()
			ram := fb.Current()
			for i, k := range keys {
				ram.Polygons[i].SortKey = k
				ram.Polygons[i].Translucent = i >= tc.translucent
			}
			ram.NumPolygons = len(keys)
			ram.NumOpaquePolygons = min(tc.translucent, len(keys))

			fb.BuildRenderList()
			if tc.translucent < len(keys) {
				// opaque polygons come first before any sorting
				for i, idx := range fb.RenderList() {
					if ram.Polygons[idx].Translucent != (i >= tc.translucent) {
						t.Fatalf("render list %v mixes opaque and translucent", fb.RenderList())
					}
				}
			}
			fb.SortRenderList(tc.manual)

			got := fb.RenderList()
			if len(got) != len(tc.want) {
				t.Fatalf("order %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("order %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFrameBuffer_SortKeepsOpaqueAheadOfTranslucent(t *testing.T) {
	fb := NewFrameBufferSet()
	ram := fb.Current()
	// a translucent polygon submitted first with the lowest key
	ram.Polygons[0] = Polygon{SortKey: 0x0100, Translucent: true}
	ram.Polygons[1] = Polygon{SortKey: 0x5000}
	ram.NumPolygons = 2
	ram.NumOpaquePolygons = 1

	fb.BuildRenderList()
	fb.SortRenderList(true)
	if got := fb.RenderList(); got[0] != 1 || got[1] != 0 {
		t.Fatalf("order %v, want [1 0]", got)
	}
}

func TestFrameBuffer_SwapEmptiesNewHalf(t *testing.T) {
	fb := NewFrameBufferSet()
	first := fb.Current()
	first.NumPolygons, first.NumVertices = 3, 9
	fb.BuildRenderList()
	fb.Swap()

	if fb.Current() == first {
		t.Fatal("swap must change the write half")
	}
	if fb.RenderRAM() != first || fb.RenderRAM().NumPolygons != 3 {
		t.Fatal("the render half must keep the sorted frame")
	}
	fb.Current().NumPolygons = 1
	fb.Swap()
	if fb.Current() != first || first.NumPolygons != 0 || first.NumVertices != 0 {
		t.Fatalf("swapped-in half not cleared: %d polygons", first.NumPolygons)
	}
}

func TestFrameBuffer_ClearFromRegisters(t *testing.T) {
	fb := NewFrameBufferSet()
	rs := renderState{
		ClearAttr1: 0x7C00 | GX_PIX_FOG | 31<<16 | 7<<24,
		ClearAttr2: 0x7FFF,
	}
	fb.Clear(&rs, nil)

	n := pixelAddr(0, 0)
	if fb.Color[n] != 63<<16|31<<24 {
		t.Fatalf("colour %#x", fb.Color[n])
	}
	if fb.Depth[n] != 0xFFFFFF {
		t.Fatalf("depth %#x", fb.Depth[n])
	}
	if fb.Attr[n] != 7<<24|GX_PIX_FOG {
		t.Fatalf("attr %#x", fb.Attr[n])
	}
	// the border keeps depth and ID but no colour or fog
	if fb.Color[0] != 0 || fb.Depth[0] != 0xFFFFFF || fb.Attr[0] != 7<<24 {
		t.Fatalf("border %#x %#x %#x", fb.Color[0], fb.Depth[0], fb.Attr[0])
	}
	if line := fb.Line(GX_SCREEN_HEIGHT - 1); len(line) != GX_SCREEN_WIDTH || line[GX_SCREEN_WIDTH-1] != fb.Color[n] {
		t.Fatal("last row not cleared")
	}
}

func TestFrameBuffer_ClearFromRearBitmap(t *testing.T) {
	tex := NewFlatVRAM(0x80000)
	tex.Write16(0x40000, 0x801F)
	tex.Write16(0x60000, 0x8010)

	fb := NewFrameBufferSet()
	rs := renderState{DispCnt: GX_DISP_REAR_BITMAP, ClearAttr1: 2 << 24}
	fb.Clear(&rs, tex)

	n := pixelAddr(0, 0)
	if fb.Color[n] != 63|31<<24 {
		t.Fatalf("colour %#x", fb.Color[n])
	}
	if fb.Depth[n] != depthFromRegister(0x10) {
		t.Fatalf("depth %#x", fb.Depth[n])
	}
	if fb.Attr[n] != 2<<24|GX_PIX_FOG {
		t.Fatalf("attr %#x", fb.Attr[n])
	}
	if fb.Color[pixelAddr(1, 0)]>>24 != 0 {
		t.Fatal("bitmap pixel without bit 15 must be transparent")
	}
}
