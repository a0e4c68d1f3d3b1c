package gx3d

import "testing"

const opaqueBoth = GX_ATTR_FRONT_VISIBLE | GX_ATTR_BACK_VISIBLE | 31<<GX_ATTR_ALPHA_SHIFT

type assemblerFixture struct {
	pa  PolygonAssembler
	ram *GeometryRAM
	st  polygonState
}

func newAssembler(t *testing.T, mode, attr uint32) *assemblerFixture {
	t.Helper()
	f := &assemblerFixture{ram: newGeometryRAM()}
	f.pa.Reset()
	f.pa.Begin(mode, attr)
	f.st = polygonState{ram: f.ram}
	return f
}

func (f *assemblerFixture) add(verts ...Vertex) (result, nverts int) {
	for _, v := range verts {
		result, nverts = f.pa.AddVertex(v, f.st)
	}
	return result, nverts
}

// counter-clockwise in clip space, front facing
var frontTriangle = []Vertex{
	clipVertex(-0x800, -0x800, 0, 0x1000),
	clipVertex(0x800, -0x800, 0, 0x1000),
	clipVertex(0, 0x800, 0, 0x1000),
}

func reversed(vs []Vertex) []Vertex {
	out := make([]Vertex, len(vs))
	for i, v := range vs {
		out[len(vs)-1-i] = v
	}
	return out
}

func TestPolygon_Culling(t *testing.T) {
	cases := []struct {
		name   string
		attr   uint32
		verts  []Vertex
		want   int
		facing bool
	}{
		{"front visible", GX_ATTR_FRONT_VISIBLE | 31<<GX_ATTR_ALPHA_SHIFT, frontTriangle, assembleCommitted, true},
		{"front culled", GX_ATTR_BACK_VISIBLE | 31<<GX_ATTR_ALPHA_SHIFT, frontTriangle, assembleDropped, false},
		{"back visible", GX_ATTR_BACK_VISIBLE | 31<<GX_ATTR_ALPHA_SHIFT, reversed(frontTriangle), assembleCommitted, false},
		{"back culled", GX_ATTR_FRONT_VISIBLE | 31<<GX_ATTR_ALPHA_SHIFT, reversed(frontTriangle), assembleDropped, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAssembler(t, GX_PRIM_TRIANGLES, tc.attr)
			res, n := f.add(tc.verts...)
			if res != tc.want {
				t.Fatalf("result %d, want %d", res, tc.want)
			}
			if res != assembleCommitted {
				if f.ram.NumPolygons != 0 {
					t.Fatal("dropped polygon reached geometry RAM")
				}
				return
			}
			if n != 3 || f.ram.NumPolygons != 1 || f.ram.NumVertices != 3 {
				t.Fatalf("n=%d polys=%d verts=%d", n, f.ram.NumPolygons, f.ram.NumVertices)
			}
			if f.ram.Polygons[0].FacingView != tc.facing {
				t.Fatalf("FacingView = %v", f.ram.Polygons[0].FacingView)
			}
		})
	}
}

func TestPolygon_StripSharesVertices(t *testing.T) {
	f := newAssembler(t, GX_PRIM_TRI_STRIP, opaqueBoth)
	f.add(
		clipVertex(-0x800, -0x800, 0, 0x1000),
		clipVertex(0x800, -0x800, 0, 0x1000),
		clipVertex(-0x800, 0x800, 0, 0x1000),
		clipVertex(0x800, 0x800, 0, 0x1000),
	)
	if f.ram.NumPolygons != 2 {
		t.Fatalf("polygons %d, want 2", f.ram.NumPolygons)
	}
	if f.ram.NumVertices != 4 {
		t.Fatalf("vertices %d, want 4 (two shared)", f.ram.NumVertices)
	}
	second := &f.ram.Polygons[1]
	if second.Vertices[0] != 2 || second.Vertices[1] != 1 || second.Vertices[2] != 3 {
		t.Fatalf("second polygon vertices %v", second.Vertices[:3])
	}
	if !second.FacingView {
		t.Fatal("odd strip triangle keeps the winding")
	}
}

func TestPolygon_ClippedVerticesAreNotShared(t *testing.T) {
	f := newAssembler(t, GX_PRIM_TRI_STRIP, opaqueBoth)
	f.add(
		clipVertex(-0x800, -0x800, 0, 0x1000),
		clipVertex(0x2000, -0x800, 0, 0x1000), // off the right side
		clipVertex(-0x800, 0x800, 0, 0x1000),
		clipVertex(0x800, 0x800, 0, 0x1000),
	)
	if f.ram.NumPolygons != 2 {
		t.Fatalf("polygons %d, want 2", f.ram.NumPolygons)
	}
	first := &f.ram.Polygons[0]
	if first.NumVertices != 4 {
		t.Fatalf("clipped triangle has %d vertices, want 4", first.NumVertices)
	}
	// the second polygon had to store its own copies
	if f.ram.NumVertices <= first.NumVertices+1 {
		t.Fatalf("vertices %d: clipped polygon must not be shared", f.ram.NumVertices)
	}
}

func TestPolygon_Overflow(t *testing.T) {
	f := newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
	f.ram.NumPolygons = GX_MAX_POLYGONS
	if res, _ := f.add(frontTriangle...); res != assembleOverflow {
		t.Fatalf("result %d, want overflow", res)
	}

	f = newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
	f.ram.NumVertices = GX_MAX_VERTICES - 2
	if res, _ := f.add(frontTriangle...); res != assembleOverflow {
		t.Fatalf("vertex RAM: result %d, want overflow", res)
	}
	if f.ram.NumVertices != GX_MAX_VERTICES-2 {
		t.Fatal("overflowing polygon must not store vertices")
	}
}

func TestPolygon_BoundsAndSortKey(t *testing.T) {
	f := newAssembler(t, GX_PRIM_TRIANGLES, GX_ATTR_FRONT_VISIBLE|15<<GX_ATTR_ALPHA_SHIFT)
	f.add(frontTriangle...)
	p := &f.ram.Polygons[0]

	if p.YTop != 48 || p.YBottom != 144 {
		t.Fatalf("y range %d..%d, want 48..144", p.YTop, p.YBottom)
	}
	if p.XTop != 128 || p.XBottom != 192 {
		t.Fatalf("x top %d bottom %d", p.XTop, p.XBottom)
	}
	if !p.Translucent {
		t.Fatal("alpha 15 is translucent")
	}
	if p.SortKey != 0x10000|144<<8|48 {
		t.Fatalf("sort key %#x", p.SortKey)
	}
	if f.ram.NumOpaquePolygons != 0 {
		t.Fatal("translucent polygon counted as opaque")
	}
}

func TestPolygon_DepthAndW(t *testing.T) {
	cases := []struct {
		name    string
		wbuffer bool
		wantZ   int32
	}{
		{"z-buffer", false, 0x7FFE00},
		{"w-buffer", true, 0x1000},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
			f.st.wbuffer = tc.wbuffer
			f.add(frontTriangle...)
			p := &f.ram.Polygons[0]
			for i := 0; i < 3; i++ {
				if p.FinalW[i] != 0x1000 || p.FinalZ[i] != tc.wantZ {
					t.Fatalf("vertex %d: W %#x Z %#x", i, p.FinalW[i], p.FinalZ[i])
				}
			}
		})
	}

	// W wider than 16 bits is normalised
	f := newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
	f.add(
		clipVertex(-0x8000, -0x8000, 0, 0x10000),
		clipVertex(0x8000, -0x8000, 0, 0x10000),
		clipVertex(0, 0x8000, 0, 0x10000),
	)
	if w := f.ram.Polygons[0].FinalW[0]; w != 0x8000 {
		t.Fatalf("normalised W %#x, want 0x8000", w)
	}
}

func TestPolygon_FarPlane(t *testing.T) {
	far := []Vertex{
		clipVertex(-0x800, -0x800, 0, 0x1000),
		clipVertex(0x800, -0x800, 0, 0x1000),
		clipVertex(0, 0x800, 0x2000, 0x1000),
	}

	f := newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
	if res, _ := f.add(far...); res != assembleDropped {
		t.Fatalf("result %d: crossing the far plane without far clip drops", res)
	}

	f = newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth|GX_ATTR_FAR_CLIP)
	if res, n := f.add(far...); res != assembleCommitted || n != 4 {
		t.Fatalf("result %d n %d: far clip keeps the near part", res, n)
	}
}

func TestPolygon_ZeroDot(t *testing.T) {
	dot := []Vertex{
		clipVertex(0, 0, 0, 0x1000),
		clipVertex(1, 0, 0, 0x1000),
		clipVertex(0, -1, 0, 0x1000),
	}

	f := newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth)
	f.pa.ZeroDotWLimit = 0x100
	if res, _ := f.add(dot...); res != assembleDropped {
		t.Fatalf("result %d: distant 1-dot polygon is rejected", res)
	}

	f = newAssembler(t, GX_PRIM_TRIANGLES, opaqueBoth|GX_ATTR_ONE_DOT)
	f.pa.ZeroDotWLimit = 0x100
	if res, _ := f.add(dot...); res != assembleCommitted {
		t.Fatalf("result %d: attribute bit 13 keeps 1-dot polygons", res)
	}
}

func TestPolygon_ShadowMaskClearsStencilOnce(t *testing.T) {
	mask := uint32(GX_ATTR_FRONT_VISIBLE | GX_ATTR_BACK_VISIBLE | 15<<GX_ATTR_ALPHA_SHIFT | GX_MODE_SHADOW<<GX_ATTR_MODE_SHIFT)
	f := newAssembler(t, GX_PRIM_TRIANGLES, mask)
	f.add(frontTriangle...)
	f.add(frontTriangle...)

	if !f.ram.Polygons[0].IsShadowMask || !f.ram.Polygons[0].ClearStencil {
		t.Fatal("first shadow mask clears the stencil")
	}
	if f.ram.Polygons[1].ClearStencil {
		t.Fatal("consecutive shadow masks share the stencil")
	}

	f.pa.Begin(GX_PRIM_TRIANGLES, mask|1<<GX_ATTR_ID_SHIFT)
	f.add(frontTriangle...)
	if !f.ram.Polygons[2].IsShadow {
		t.Fatal("shadow with ID 1 is a shadow polygon")
	}
}

func TestPolygon_Viewport(t *testing.T) {
	var pa PolygonAssembler
	pa.Reset()
	pa.SetViewport(0x7F7F0000) // x 0..127, y 0..127
	if pa.Viewport[4] != 128 || pa.Viewport[5] != 128 {
		t.Fatalf("viewport size %dx%d", pa.Viewport[4], pa.Viewport[5])
	}
	if pa.Viewport[3] != 64 || pa.Viewport[1] != 191 {
		t.Fatalf("screen y %d..%d", pa.Viewport[3], pa.Viewport[1])
	}
}
