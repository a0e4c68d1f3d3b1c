// gx_polygon.go - GX Primitive Assembly, Culling, Clipping and Commit

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later

/*
gx_polygon.go - GX Primitive Assembly, Culling, Clipping and Commit

Transformed vertices are collected into triangles, quads, triangle strips
or quad strips. Each completed primitive goes through:

 1. facing test and culling in clip space
 2. strip continuation (share two vertices with the previous polygon when
    neither was produced by clipping)
 3. clipping against the view volume (Z, then Y, then X)
 4. viewport projection, 1-dot rejection
 5. commit to the current geometry RAM half with its bounds, normalised W,
    per-vertex depth and sort key

Geometry RAM holds at most 6144 vertices and 2048 polygons per frame. A
polygon that does not fit is dropped and DISP3DCNT bit 13 is raised.
*/

package gx3d

import "log/slog"

// Polygon is a committed polygon. Vertices index into the VertexRAM of the
// same geometry RAM half; strip polygons share vertices with their
// predecessor.
type Polygon struct {
	Vertices    [GX_MAX_POLYGON_VERTICES]int32
	NumVertices int

	FinalZ [GX_MAX_POLYGON_VERTICES]int32
	FinalW [GX_MAX_POLYGON_VERTICES]int32

	Attr       uint32
	TexParam   uint32
	TexPalette uint32

	FacingView   bool
	Translucent  bool
	IsShadowMask bool
	IsShadow     bool
	ClearStencil bool
	Degenerate   bool
	IsLine       bool
	WBuffer      bool

	VTop, VBottom int
	YTop, YBottom int32
	XTop, XBottom int32

	SortKey uint32
}

// GeometryRAM is one half of the double-buffered vertex and polygon RAM.
type GeometryRAM struct {
	Vertices []Vertex
	Polygons []Polygon

	NumVertices       int
	NumPolygons       int
	NumOpaquePolygons int
}

func newGeometryRAM() *GeometryRAM {
	return &GeometryRAM{
		Vertices: make([]Vertex, GX_MAX_VERTICES),
		Polygons: make([]Polygon, GX_MAX_POLYGONS),
	}
}

func (r *GeometryRAM) Clear() {
	r.NumVertices = 0
	r.NumPolygons = 0
	r.NumOpaquePolygons = 0
}

// Vertex returns the i-th vertex of p.
func (r *GeometryRAM) Vertex(p *Polygon, i int) *Vertex {
	return &r.Vertices[p.Vertices[i]]
}

// polygonState is the engine state a polygon picks up at commit time.
type polygonState struct {
	log        *slog.Logger // nil logs to the package logger
	ram        *GeometryRAM
	texParam   uint32
	texPalette uint32
	wbuffer    bool
}

// Assembly outcomes reported back to the engine.
const (
	assembleNone = iota
	assembleCommitted
	assembleDropped
	assembleOverflow
)

// PolygonAssembler turns the vertex stream into committed polygons.
type PolygonAssembler struct {
	Mode    uint32 // primitive type from BEGIN_VTXS
	CurAttr uint32 // polygon attribute latched at BEGIN_VTXS

	temp            [4]Vertex
	vertexNum       int
	vertexNumInPoly int
	numConsecutive  int
	lastStrip       int32 // polygon index in the current half, -1 for none

	prevShadowMask bool

	// x0, y0, x1, y1, width, height; y is flipped so row 0 is the top
	Viewport [6]int32

	ZeroDotWLimit uint32
}

func (pa *PolygonAssembler) Reset() {
	*pa = PolygonAssembler{lastStrip: -1, ZeroDotWLimit: 0xFFFFFF}
	pa.SetViewport(0xBFFF0000)
}

// Begin starts a new primitive list.
func (pa *PolygonAssembler) Begin(mode, attr uint32) {
	pa.Mode = mode & 3
	pa.CurAttr = attr
	pa.vertexNum = 0
	pa.vertexNumInPoly = 0
	pa.numConsecutive = 0
	pa.lastStrip = -1
}

// SetViewport decodes VIEWPORT. Screen Y grows downwards while the
// parameter's Y grows upwards.
func (pa *PolygonAssembler) SetViewport(p uint32) {
	pa.Viewport[0] = int32(p & 0xFF)
	pa.Viewport[1] = int32((191 - ((p >> 8) & 0xFF)) & 0xFF)
	pa.Viewport[2] = int32((p >> 16) & 0xFF)
	pa.Viewport[3] = int32((191 - (p >> 24)) & 0xFF)
	pa.Viewport[4] = (pa.Viewport[2] - pa.Viewport[0] + 1) & 0x1FF
	pa.Viewport[5] = (pa.Viewport[1] - pa.Viewport[3] + 1) & 0xFF
}

// FrameSwapped forgets strip and shadow state tied to the old RAM half.
func (pa *PolygonAssembler) FrameSwapped() {
	pa.lastStrip = -1
	pa.prevShadowMask = false
}

// AddVertex appends a transformed vertex and commits a polygon when the
// primitive is complete.
func (pa *PolygonAssembler) AddVertex(v Vertex, st polygonState) (result, nverts int) {
	pa.temp[pa.vertexNumInPoly] = v
	pa.vertexNum++
	pa.vertexNumInPoly++

	switch pa.Mode {
	case GX_PRIM_TRIANGLES:
		if pa.vertexNumInPoly == 3 {
			pa.vertexNumInPoly = 0
			result, nverts = pa.submit(st)
			pa.numConsecutive++
		}
	case GX_PRIM_QUADS:
		if pa.vertexNumInPoly == 4 {
			pa.vertexNumInPoly = 0
			result, nverts = pa.submit(st)
			pa.numConsecutive++
		}
	case GX_PRIM_TRI_STRIP:
		if pa.numConsecutive&1 != 0 {
			// odd triangles swap their first two vertices to keep winding
			pa.temp[0], pa.temp[1] = pa.temp[1], pa.temp[0]
			pa.vertexNumInPoly = 2
			result, nverts = pa.submit(st)
			pa.numConsecutive++
			pa.temp[1] = pa.temp[2]
		} else if pa.vertexNum >= 3 {
			pa.vertexNumInPoly = 2
			result, nverts = pa.submit(st)
			pa.numConsecutive++
			pa.temp[0] = pa.temp[1]
			pa.temp[1] = pa.temp[2]
		}
	case GX_PRIM_QUAD_STRIP:
		if pa.vertexNum >= 4 && pa.vertexNumInPoly == 4 {
			pa.temp[2], pa.temp[3] = pa.temp[3], pa.temp[2]
			pa.vertexNumInPoly = 2
			result, nverts = pa.submit(st)
			pa.numConsecutive++
			pa.temp[0] = pa.temp[3]
			pa.temp[1] = pa.temp[2]
		}
	}
	return result, nverts
}

// facing computes the clip space facing of the first three vertices.
// Negative is front facing, positive back facing, zero edge-on.
func facing(v0, v1, v2 *Vertex) int64 {
	ax := int64(v0.Position[0]) - int64(v1.Position[0])
	ay := int64(v0.Position[1]) - int64(v1.Position[1])
	aw := int64(v0.Position[3]) - int64(v1.Position[3])
	bx := int64(v2.Position[0]) - int64(v1.Position[0])
	by := int64(v2.Position[1]) - int64(v1.Position[1])
	bw := int64(v2.Position[3]) - int64(v1.Position[3])

	nx, ny, nz := cullNormalReduce(ay*bw-aw*by, aw*bx-ax*bw, ax*by-ay*bx)
	return int64(v1.Position[0])*nx + int64(v1.Position[1])*ny + int64(v1.Position[3])*nz
}

func samePosition(a, b *Vertex) bool {
	return a.Position == b.Position
}

// submit runs the polygon pipeline on temp[0:n].
func (pa *PolygonAssembler) submit(st polygonState) (int, int) {
	nverts := 3
	if pa.Mode&1 != 0 {
		nverts = 4
	}
	attr := pa.CurAttr
	log := st.log
	if log == nil {
		log = Logger()
	}

	dot := facing(&pa.temp[0], &pa.temp[1], &pa.temp[2])
	facingView := dot <= 0
	if (dot < 0 && attr&GX_ATTR_FRONT_VISIBLE == 0) || (dot > 0 && attr&GX_ATTR_BACK_VISIBLE == 0) {
		pa.lastStrip = -1
		return assembleDropped, 0
	}

	// Strip continuation
	var clipped clipBuffer
	var reused [2]int32
	clipstart, lastPolyVerts := 0, 0
	if pa.Mode >= GX_PRIM_TRI_STRIP && pa.lastStrip >= 0 {
		var id0, id1 int
		if pa.Mode == GX_PRIM_TRI_STRIP {
			if pa.numConsecutive&1 != 0 {
				id0, id1 = 2, 1
			} else {
				id0, id1 = 0, 2
			}
			lastPolyVerts = 3
		} else {
			id0, id1 = 3, 2
			lastPolyVerts = 4
		}

		last := &st.ram.Polygons[pa.lastStrip]
		v0 := st.ram.Vertex(last, id0)
		v1 := st.ram.Vertex(last, id1)
		if last.NumVertices == lastPolyVerts && !v0.Clipped && !v1.Clipped {
			reused[0] = last.Vertices[id0]
			reused[1] = last.Vertices[id1]
			clipped[0] = *v0
			clipped[1] = *v1
			clipstart = 2
		}
	}
	for i := clipstart; i < nverts; i++ {
		clipped[i] = pa.temp[i]
	}

	isLine := false
	for i := 0; i < nverts && !isLine; i++ {
		for j := i + 1; j < nverts; j++ {
			if samePosition(&clipped[i], &clipped[j]) {
				isLine = true
				break
			}
		}
	}

	nverts = clipPolygon(&clipped, nverts, clipstart, attr&GX_ATTR_FAR_CLIP != 0, true)
	if nverts == 0 {
		pa.lastStrip = -1
		log.Debug("gx3d: polygon clipped away", "attr", attr)
		return assembleDropped, 0
	}

	// Projection. Shared vertices were projected with their first polygon.
	degenerate := false
	for i := clipstart; i < nverts; i++ {
		if pa.project(&clipped[i]) {
			degenerate = true
		}
	}

	if pa.isZeroDot(&clipped, nverts, attr) {
		pa.lastStrip = -1
		log.Debug("gx3d: 1-dot polygon rejected", "attr", attr)
		return assembleDropped, 0
	}

	ram := st.ram
	if ram.NumPolygons >= GX_MAX_POLYGONS || ram.NumVertices+nverts > GX_MAX_VERTICES {
		pa.lastStrip = -1
		return assembleOverflow, 0
	}

	polyIdx := int32(ram.NumPolygons)
	poly := &ram.Polygons[polyIdx]
	ram.NumPolygons++
	*poly = Polygon{
		Attr:         attr,
		TexParam:     st.texParam,
		TexPalette:   st.texPalette,
		FacingView:   facingView,
		Translucent:  isTranslucent(attr, st.texParam),
		IsShadowMask: isShadowMask(attr),
		IsShadow:     isShadow(attr),
		IsLine:       isLine,
		Degenerate:   degenerate,
		WBuffer:      st.wbuffer,
	}
	if poly.IsShadowMask {
		poly.ClearStencil = !pa.prevShadowMask
	}
	pa.prevShadowMask = poly.IsShadowMask
	if !poly.Translucent {
		ram.NumOpaquePolygons++
	}

	if clipstart > 0 {
		if nverts == lastPolyVerts {
			poly.Vertices[0] = reused[0]
			poly.Vertices[1] = reused[1]
		} else {
			ram.Vertices[ram.NumVertices] = clipped[0]
			ram.Vertices[ram.NumVertices+1] = clipped[1]
			poly.Vertices[0] = int32(ram.NumVertices)
			poly.Vertices[1] = int32(ram.NumVertices + 1)
			ram.NumVertices += 2
		}
		poly.NumVertices = 2
	}
	for i := clipstart; i < nverts; i++ {
		ram.Vertices[ram.NumVertices] = clipped[i]
		poly.Vertices[i] = int32(ram.NumVertices)
		ram.NumVertices++
		poly.NumVertices++
	}

	pa.finishPolygon(poly, ram)

	if pa.Mode >= GX_PRIM_TRI_STRIP {
		pa.lastStrip = polyIdx
	} else {
		pa.lastStrip = -1
	}
	return assembleCommitted, nverts
}

// project fills the screen space fields of v. It reports a W that
// truncates to zero, which makes the polygon degenerate.
func (pa *PolygonAssembler) project(v *Vertex) bool {
	for ch := 0; ch < 3; ch++ {
		v.FinalColor[ch] = finalColor(v.Color[ch])
	}

	w := truncateW(v.Position[3])
	if w == 0 {
		v.FinalPosition = [2]int32{}
		v.HiresPosition = [2]int32{}
		return true
	}

	vp := &pa.Viewport
	x := projectAxis(v.Position[0], w, vp[4], vp[0], false)
	y := projectAxis(-v.Position[1], w, vp[5], vp[3], false)
	v.FinalPosition = [2]int32{x & 0x1FF, y & 0xFF}

	hx := projectAxis(v.Position[0], w, vp[4], vp[0], true)
	hy := projectAxis(-v.Position[1], w, vp[5], vp[3], true)
	v.HiresPosition = [2]int32{hx & 0x1FFF, hy & 0xFFF}
	return false
}

// isZeroDot reports a polygon that covers a single dot and lies entirely
// beyond the DISP_1DOT_DEPTH distance, unless attribute bit 13 keeps it.
func (pa *PolygonAssembler) isZeroDot(verts *clipBuffer, nverts int, attr uint32) bool {
	if attr&GX_ATTR_ONE_DOT != 0 {
		return false
	}
	first := verts[0].FinalPosition
	for i := 0; i < nverts; i++ {
		v := &verts[i]
		if v.FinalPosition != first || uint32(v.Position[3]) <= pa.ZeroDotWLimit {
			return false
		}
	}
	return true
}

// finishPolygon computes bounds, normalised W, depth and sort key.
func (pa *PolygonAssembler) finishPolygon(poly *Polygon, ram *GeometryRAM) {
	ytop, ybot := int32(GX_SCREEN_HEIGHT), int32(0)
	xtop, xbot := int32(GX_SCREEN_WIDTH), int32(0)
	vtop, vbot := 0, 0
	var maxW uint32

	for i := 0; i < poly.NumVertices; i++ {
		v := ram.Vertex(poly, i)
		x, y := v.FinalPosition[0], v.FinalPosition[1]
		if y < ytop || (y == ytop && x < xtop) {
			xtop, ytop, vtop = x, y, i
		}
		if y > ybot || (y == ybot && x > xbot) {
			xbot, ybot, vbot = x, y, i
		}

		if truncateW(v.Position[3]) == 0 {
			poly.Degenerate = true
		}
		maxW = max(maxW, uint32(v.Position[3]))
	}

	poly.VTop, poly.VBottom = vtop, vbot
	poly.YTop, poly.YBottom = ytop, ybot
	poly.XTop, poly.XBottom = xtop, xbot

	poly.SortKey = uint32(ybot)<<8 | uint32(ytop)
	if poly.Translucent {
		poly.SortKey |= 0x10000
	}

	wsize := wSize(maxW)
	for i := 0; i < poly.NumVertices; i++ {
		v := ram.Vertex(poly, i)
		w, wshifted := normalizeW(uint32(v.Position[3]), wsize)
		poly.FinalW[i] = w
		if poly.WBuffer {
			poly.FinalZ[i] = wBufferDepth(wshifted)
		} else {
			poly.FinalZ[i] = zBufferDepth(v.Position[2], wshifted)
		}
	}
}
