// gx_rasterizer.go - GX Software Scanline Rasteriser

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
gx_rasterizer.go - GX Software Scanline Rasteriser

Polygons are drawn one scanline at a time, every polygon touching the line
in render list order, then the finished line one row above gets its final
pass (edge marking, fog, antialiasing). Running the final pass one row late
lets edge marking look at the row below.

Each scanline of a polygon is split in three parts:

	| left edge | interior | right edge |

Edge parts are as wide as the edge advances on that line (one pixel for
Y-major edges). Whether an edge part is drawn at all depends on its slope
for opaque polygons; antialiasing, edge marking and translucency force
every edge on.

Opaque pixels overwrite the destination. With antialiasing enabled the
old pixel is first pushed down into the second buffer layer so the final
pass can blend edge pixels with what lies beneath. Translucent pixels are
blended, and never twice by the same translucent polygon ID.

Shadow volumes use two passes. Shadow mask polygons (shadow mode, ID 0)
draw nothing and set stencil bits where they fail the depth test; shadow
polygons then draw only where the stencil is set.
*/

package gx3d

import "context"

// rasterPolygon is a polygon being walked down the screen.
type rasterPolygon struct {
	poly *Polygon
	ram  *GeometryRAM

	slopeL, slopeR slope
	xl, xr         int32

	curVL, curVR   int
	nextVL, nextVR int
}

func (rp *rasterPolygon) vertex(i int) *Vertex {
	return &rp.ram.Vertices[rp.poly.Vertices[i]]
}

// Depth test selection
type depthFunc uint8

const (
	depthLess depthFunc = iota
	depthLessFrontFacing
	depthEqualZ
	depthEqualW
)

func selectDepthFunc(p *Polygon) depthFunc {
	switch {
	case p.Attr&GX_ATTR_DEPTH_EQUAL != 0 && p.WBuffer:
		return depthEqualW
	case p.Attr&GX_ATTR_DEPTH_EQUAL != 0:
		return depthEqualZ
	case p.FacingView:
		return depthLessFrontFacing
	}
	return depthLess
}

// depthTest compares z against the destination. edge carries the edge
// flags of the pixel being drawn.
func depthTest(fn depthFunc, dstz, z int32, dstattr, edge uint32) bool {
	switch fn {
	case depthEqualZ:
		return uint32(dstz-z+0x200) <= 0x400
	case depthEqualW:
		return uint32(dstz-z+0xFF) <= 0x1FE
	case depthLessFrontFacing:
		// front facing pixels win ties against opaque back facing ones
		if dstattr&(GX_PIX_TRANSLUCENT|GX_PIX_BACKFACING) == GX_PIX_BACKFACING && z <= dstz {
			return true
		}
	}
	return z < dstz || depthTestEdgeQuirk(dstz, z, dstattr, edge)
}

// depthTestEdgeQuirk lets a pixel win a depth tie against a destination
// written by a top X-major or left Y-major edge that the incoming pixel
// does not lie on. Hardware behaviour here, especially together with
// antialiasing, is only partly understood.
func depthTestEdgeQuirk(dstz, z int32, dstattr, edge uint32) bool {
	conflict := dstattr & (GX_PIX_XMAJOR_TOP | GX_PIX_YMAJOR_LEFT) &^ edge
	return conflict != 0 && z <= dstz
}

// edgeCover tracks antialiasing coverage along one edge part.
type edgeCover struct {
	word  uint32
	xcov  int32
	right bool
}

func newEdgeCover(word uint32, right bool) edgeCover {
	c := edgeCover{word: word, right: right}
	if word&edgeCoverXMajor != 0 {
		c.xcov = int32(word>>12) & 0x3FF
		if c.xcov == 0x3FF {
			c.xcov = 0
		}
	}
	return c
}

// next returns the coverage of the pixel being plotted.
func (c *edgeCover) next() uint32 {
	if c.word&edgeCoverXMajor == 0 {
		return c.word
	}
	var cov int32
	if c.right {
		cov = max(0x1F-(c.xcov>>5), 0)
	} else {
		cov = min(c.xcov>>5, 31)
	}
	c.xcov += int32(c.word & 0x3FF)
	return uint32(cov)
}

// SoftRenderer rasterises a sorted polygon list into a FrameBufferSet.
type SoftRenderer struct {
	fb  *FrameBufferSet
	rs  renderState
	tex VRAMReader
	pal VRAMReader

	polys []rasterPolygon

	prevIsShadowMask bool
}

func NewSoftRenderer(fb *FrameBufferSet, tex, pal VRAMReader) *SoftRenderer {
	return &SoftRenderer{
		fb:    fb,
		tex:   tex,
		pal:   pal,
		polys: make([]rasterPolygon, 0, GX_MAX_POLYGONS),
	}
}

// RenderFrame clears the buffers and draws list (indices into ram) with
// the register state rs. lineDone, if set, is called as soon as each
// row is final. Cancelling ctx abandons the frame between scanlines.
func (r *SoftRenderer) RenderFrame(ctx context.Context, rs *renderState, ram *GeometryRAM, list []int32, lineDone func(y int)) error {
	r.rs = *rs
	r.fb.Clear(&r.rs, r.tex)

	r.polys = r.polys[:0]
	for _, idx := range list {
		p := &ram.Polygons[idx]
		if p.Degenerate {
			continue
		}
		r.polys = append(r.polys, rasterPolygon{})
		r.setupPolygon(&r.polys[len(r.polys)-1], p, ram)
	}

	r.renderScanline(0)
	for y := int32(1); y < GX_SCREEN_HEIGHT; y++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.renderScanline(y)
		r.scanlineFinalPass(y - 1)
		if lineDone != nil {
			lineDone(int(y - 1))
		}
	}
	r.scanlineFinalPass(GX_SCREEN_HEIGHT - 1)
	if lineDone != nil {
		lineDone(GX_SCREEN_HEIGHT - 1)
	}
	return nil
}

func (r *SoftRenderer) renderScanline(y int32) {
	r.prevIsShadowMask = false
	for i := range r.polys {
		rp := &r.polys[i]
		p := rp.poly
		if y < p.YTop {
			continue
		}
		if y < p.YBottom || (y == p.YTop && p.YBottom == p.YTop) {
			if p.IsShadowMask {
				r.renderShadowMaskScanline(rp, y)
			} else {
				r.renderPolygonScanline(rp, y)
			}
		}
	}
}

// Vertex walking order depends on the facing so the left cursor always
// walks down the left side of the screen.
func (rp *rasterPolygon) advance(i int, left bool) int {
	n := rp.poly.NumVertices
	if left == rp.poly.FacingView {
		i++
		if i >= n {
			i = 0
		}
	} else {
		i--
		if i < 0 {
			i = n - 1
		}
	}
	return i
}

func (r *SoftRenderer) setupLeftEdge(rp *rasterPolygon, y int32) {
	p := rp.poly
	for y >= rp.vertex(rp.nextVL).FinalPosition[1] && rp.curVL != p.VBottom {
		rp.curVL = rp.nextVL
		rp.nextVL = rp.advance(rp.curVL, true)
	}
	cur, next := rp.vertex(rp.curVL), rp.vertex(rp.nextVL)
	rp.xl = rp.slopeL.setup(cur.FinalPosition[0], next.FinalPosition[0],
		cur.FinalPosition[1], next.FinalPosition[1],
		p.FinalW[rp.curVL], p.FinalW[rp.nextVL], y)
}

func (r *SoftRenderer) setupRightEdge(rp *rasterPolygon, y int32) {
	p := rp.poly
	for y >= rp.vertex(rp.nextVR).FinalPosition[1] && rp.curVR != p.VBottom {
		rp.curVR = rp.nextVR
		rp.nextVR = rp.advance(rp.curVR, false)
	}
	cur, next := rp.vertex(rp.curVR), rp.vertex(rp.nextVR)
	rp.xr = rp.slopeR.setup(cur.FinalPosition[0], next.FinalPosition[0],
		cur.FinalPosition[1], next.FinalPosition[1],
		p.FinalW[rp.curVR], p.FinalW[rp.nextVR], y)
}

func (r *SoftRenderer) setupPolygon(rp *rasterPolygon, p *Polygon, ram *GeometryRAM) {
	rp.poly = p
	rp.ram = ram
	rp.slopeL = newSlope(false)
	rp.slopeR = newSlope(true)

	rp.curVL, rp.curVR = p.VTop, p.VTop
	rp.nextVL = rp.advance(rp.curVL, true)
	rp.nextVR = rp.advance(rp.curVR, false)

	if p.YBottom != p.YTop {
		r.setupLeftEdge(rp, p.YTop)
		r.setupRightEdge(rp, p.YTop)
		return
	}

	// Flat polygon: span from the leftmost to the rightmost of vertex 0,
	// vertex 1 and the last vertex.
	vtop, vbot := 0, 0
	for _, i := range [2]int{1, p.NumVertices - 1} {
		x := rp.vertex(i).FinalPosition[0]
		if x < rp.vertex(vtop).FinalPosition[0] {
			vtop = i
		}
		if x > rp.vertex(vbot).FinalPosition[0] {
			vbot = i
		}
	}
	rp.curVL, rp.nextVL = vtop, vtop
	rp.curVR, rp.nextVR = vbot, vbot
	rp.xl = rp.slopeL.setupDummy(rp.vertex(vtop).FinalPosition[0])
	rp.xr = rp.slopeR.setupDummy(rp.vertex(vbot).FinalPosition[0])
}

// span is the per-scanline state shared by the three parts of a polygon
// scanline.
type span struct {
	poly     *Polygon
	y        int32
	depth    depthFunc
	polyattr uint32
	interpX  interpolator

	zl, zr int32
	// colour and texcoords at the span ends: r, g, b, s, t
	al, ar [5]int32
}

func (r *SoftRenderer) stepEdges(rp *rasterPolygon) {
	rp.xl = rp.slopeL.step()
	rp.xr = rp.slopeR.step()
}

// walkEdges advances the edge cursors past any vertex reached at y.
func (r *SoftRenderer) walkEdges(rp *rasterPolygon, y int32) {
	p := rp.poly
	if p.YTop == p.YBottom {
		return
	}
	if y >= rp.vertex(rp.nextVL).FinalPosition[1] && rp.curVL != p.VBottom {
		r.setupLeftEdge(rp, y)
	}
	if y >= rp.vertex(rp.nextVR).FinalPosition[1] && rp.curVR != p.VBottom {
		r.setupRightEdge(rp, y)
	}
}

// edgeLayout is the outcome of comparing the two edges on one scanline.
type edgeLayout struct {
	swapped              bool
	xstart, xend         int32
	lFill, rFill         bool
	lLen, rLen           int32
	lCov, rCov           uint32
	lSlope, rSlope       *slope
	lCur, lNext          *Vertex
	rCur, rNext          *Vertex
	interpStart          *interpolator
	interpEnd            *interpolator
	wl, wr, zl, zr       int32
	forceFill, wireframe bool
}

func (r *SoftRenderer) layoutEdges(rp *rasterPolygon, y int32) edgeLayout {
	p := rp.poly
	polyalpha := (p.Attr >> GX_ATTR_ALPHA_SHIFT) & 0x1F

	var e edgeLayout
	e.wireframe = polyalpha == 0
	e.forceFill = polyalpha < 31 || e.wireframe || r.rs.DispCnt&(GX_DISP_ANTIALIAS|GX_DISP_EDGE_MARK) != 0

	e.xstart, e.xend = rp.xl, rp.xr
	e.wl = rp.slopeL.Interp.interpolate(p.FinalW[rp.curVL], p.FinalW[rp.nextVL])
	e.wr = rp.slopeR.Interp.interpolate(p.FinalW[rp.curVR], p.FinalW[rp.nextVR])
	e.zl = rp.slopeL.Interp.interpolateZ(p.FinalZ[rp.curVL], p.FinalZ[rp.nextVL], p.WBuffer)
	e.zr = rp.slopeR.Interp.interpolateZ(p.FinalZ[rp.curVR], p.FinalZ[rp.nextVR], p.WBuffer)

	if e.xstart > e.xend {
		// Edges crossed: draw right to left with the roles exchanged.
		e.swapped = true
		e.lSlope, e.rSlope = &rp.slopeR, &rp.slopeL
		e.lCur, e.lNext = rp.vertex(rp.curVR), rp.vertex(rp.nextVR)
		e.rCur, e.rNext = rp.vertex(rp.curVL), rp.vertex(rp.nextVL)
		e.xstart, e.xend = e.xend, e.xstart
		e.wl, e.wr = e.wr, e.wl
		e.zl, e.zr = e.zr, e.zl

		if e.forceFill {
			e.lFill, e.rFill = true, true
		} else {
			e.lFill = e.lSlope.Negative || !e.lSlope.XMajor
			e.rFill = (!e.rSlope.Negative && e.rSlope.XMajor) || e.rSlope.Increment == 0
		}
	} else {
		e.lSlope, e.rSlope = &rp.slopeL, &rp.slopeR
		e.lCur, e.lNext = rp.vertex(rp.curVL), rp.vertex(rp.nextVL)
		e.rCur, e.rNext = rp.vertex(rp.curVR), rp.vertex(rp.nextVR)

		// Opaque fill rules: left edges are filled when the slope is at
		// most 1, right edges when it is above 1, flat edges always. The
		// bottom scanline of X-major edges is filled unless both edges
		// meet there.
		if e.forceFill {
			e.lFill, e.rFill = true, true
		} else {
			bottom := y == p.YBottom-1 && e.lNext.FinalPosition[0] != e.rNext.FinalPosition[0]
			e.lFill = e.lSlope.Negative || !e.lSlope.XMajor || (bottom && e.lSlope.XMajor)
			e.rFill = (!e.rSlope.Negative && e.rSlope.XMajor) || e.rSlope.Increment == 0 ||
				(bottom && e.rSlope.XMajor)
		}
	}
	e.interpStart = &e.lSlope.Interp
	e.interpEnd = &e.rSlope.Interp
	e.lLen, e.lCov = e.lSlope.edgeParams(e.swapped)
	e.rLen, e.rCov = e.rSlope.edgeParams(e.swapped)
	return e
}

// yEdge returns the top/bottom edge flag of scanline y.
func yEdge(p *Polygon, y int32) uint32 {
	switch y {
	case p.YTop:
		return GX_PIX_EDGE_TOP
	case p.YBottom - 1:
		return GX_PIX_EDGE_BOTTOM
	}
	return 0
}

// partLimits returns the end of the left edge part and of the interior.
func (e *edgeLayout) partLimits() (leftEnd, innerEnd int32) {
	leftEnd = min(e.xstart+e.lLen, e.xend+1, GX_SCREEN_WIDTH)
	innerEnd = min(e.xend-e.rLen+1, e.xend+1, GX_SCREEN_WIDTH)
	return leftEnd, innerEnd
}

// quirkFlags marks pixels of top X-major and left Y-major edges for
// depthTestEdgeQuirk.
func quirkFlags(s *slope, yedge uint32, left bool) uint32 {
	var f uint32
	if s.XMajor && yedge == GX_PIX_EDGE_TOP {
		f |= GX_PIX_XMAJOR_TOP
	}
	if left && !s.XMajor {
		f |= GX_PIX_YMAJOR_LEFT
	}
	return f
}

func (r *SoftRenderer) renderShadowMaskScanline(rp *rasterPolygon, y int32) {
	p := rp.poly
	stencil := r.fb.Stencil[GX_SCREEN_WIDTH*(y&1):][:GX_SCREEN_WIDTH]
	if !r.prevIsShadowMask || p.ClearStencil {
		clear(stencil)
	}
	r.prevIsShadowMask = true

	r.walkEdges(rp, y)
	e := r.layoutEdges(rp, y)

	// Shadow masks take the polygon alpha even when textured, so the
	// alpha test can run once for the whole line.
	polyalpha := (p.Attr >> GX_ATTR_ALPHA_SHIFT) & 0x1F
	if e.wireframe {
		polyalpha = 31
	}
	if polyalpha <= r.rs.AlphaRef {
		r.stepEdges(rp)
		return
	}

	fn := selectDepthFunc(p)
	yedge := yEdge(p, y)
	interpX := interpolator{}
	interpX.setup(e.xstart, e.xend+1, e.wl, e.wr)
	leftEnd, innerEnd := e.partLimits()

	test := func(x int32, edge uint32) {
		addr := pixelAddr(int(x), int(y))
		dstattr := r.fb.Attr[addr]
		interpX.setX(x)
		z := interpX.interpolateZ(e.zl, e.zr, p.WBuffer)

		if !depthTest(fn, int32(r.fb.Depth[addr]), z, dstattr, edge) {
			stencil[x] = 1
		}
		if dstattr&GX_PIX_HORIZ_EDGES != 0 {
			addr += GX_BUFFER_SIZE
			if !depthTest(fn, int32(r.fb.Depth[addr]), z, r.fb.Attr[addr], edge) {
				stencil[x] |= 2
			}
		}
	}

	x := max(e.xstart, 0)
	if !e.lFill {
		x = leftEnd
	} else {
		for ; x < leftEnd; x++ {
			test(x, yedge|GX_PIX_EDGE_LEFT)
		}
	}
	if e.wireframe && yedge == 0 {
		x = max(x, innerEnd)
	} else {
		for ; x < innerEnd; x++ {
			test(x, yedge)
		}
	}
	if e.rFill {
		for xend := min(e.xend+1, GX_SCREEN_WIDTH); x < xend; x++ {
			test(x, yedge|GX_PIX_EDGE_RIGHT)
		}
	}

	r.stepEdges(rp)
}

func (r *SoftRenderer) renderPolygonScanline(rp *rasterPolygon, y int32) {
	p := rp.poly
	r.prevIsShadowMask = false

	r.walkEdges(rp, y)
	e := r.layoutEdges(rp, y)

	sp := span{
		poly:     p,
		y:        y,
		depth:    selectDepthFunc(p),
		polyattr: p.Attr & (GX_PIX_OPAQUE_ID | GX_PIX_FOG),
	}
	if !p.FacingView {
		sp.polyattr |= GX_PIX_BACKFACING
	}
	sp.zl, sp.zr = e.zl, e.zr

	// attributes along Y
	for i := 0; i < 3; i++ {
		sp.al[i] = e.interpStart.interpolate(e.lCur.FinalColor[i], e.lNext.FinalColor[i])
		sp.ar[i] = e.interpEnd.interpolate(e.rCur.FinalColor[i], e.rNext.FinalColor[i])
	}
	for i := 0; i < 2; i++ {
		sp.al[3+i] = e.interpStart.interpolate(int32(e.lCur.TexCoords[i]), int32(e.lNext.TexCoords[i]))
		sp.ar[3+i] = e.interpEnd.interpolate(int32(e.rCur.TexCoords[i]), int32(e.rNext.TexCoords[i]))
	}

	sp.interpX.setup(e.xstart, e.xend+1, e.wl, e.wr)
	yedge := yEdge(p, y)
	leftEnd, innerEnd := e.partLimits()

	x := max(e.xstart, 0)

	// left edge
	if !e.lFill {
		x = leftEnd
	} else {
		cov := newEdgeCover(e.lCov, false)
		edge := yedge | GX_PIX_EDGE_LEFT | quirkFlags(e.lSlope, yedge, true)
		for ; x < leftEnd; x++ {
			r.plotPixel(&sp, x, edge, &cov)
		}
	}

	// interior
	if e.wireframe && yedge == 0 {
		x = max(x, innerEnd)
	} else {
		for ; x < innerEnd; x++ {
			r.plotPixel(&sp, x, yedge, nil)
		}
	}

	// right edge
	if e.rFill {
		cov := newEdgeCover(e.rCov, true)
		edge := yedge | GX_PIX_EDGE_RIGHT | quirkFlags(e.rSlope, yedge, false)
		for xend := min(e.xend+1, GX_SCREEN_WIDTH); x < xend; x++ {
			r.plotPixel(&sp, x, edge, &cov)
		}
	}

	r.stepEdges(rp)
}

// plotPixel depth tests, shades and writes one pixel. cov is nil for
// interior pixels.
func (r *SoftRenderer) plotPixel(sp *span, x int32, edge uint32, cov *edgeCover) {
	p := sp.poly
	fb := r.fb
	addr := pixelAddr(int(x), int(sp.y))
	dstattr := fb.Attr[addr]

	if p.IsShadow {
		st := fb.Stencil[GX_SCREEN_WIDTH*(sp.y&1)+x]
		if st == 0 {
			return
		}
		if st&1 == 0 {
			addr += GX_BUFFER_SIZE
		}
		if st&2 == 0 {
			// keeps the shadow out from under antialiased edges
			dstattr &^= GX_PIX_HORIZ_EDGES
		}
	}

	sp.interpX.setX(x)
	z := sp.interpX.interpolateZ(sp.zl, sp.zr, p.WBuffer)

	// On failure against the top pixel, try the pixel underneath.
	if !depthTest(sp.depth, int32(fb.Depth[addr]), z, dstattr, edge) {
		if dstattr&GX_PIX_HORIZ_EDGES == 0 || addr >= GX_BUFFER_SIZE {
			return
		}
		addr += GX_BUFFER_SIZE
		dstattr = fb.Attr[addr]
		if !depthTest(sp.depth, int32(fb.Depth[addr]), z, dstattr, edge) {
			return
		}
	}

	var a [5]int32
	for i := range a {
		a[i] = sp.interpX.interpolate(sp.al[i], sp.ar[i])
	}
	color := r.shadePixel(p, uint32(a[0])>>3, uint32(a[1])>>3, uint32(a[2])>>3, int16(a[3]), int16(a[4]))
	alpha := color >> 24
	if alpha <= r.rs.AlphaRef {
		return
	}

	if alpha == 31 {
		if p.IsShadow && dstattr&GX_PIX_TRANSLUCENT == 0 && dstattr&GX_PIX_OPAQUE_ID == sp.polyattr&GX_PIX_OPAQUE_ID {
			return
		}
		attr := sp.polyattr | edge
		if r.rs.DispCnt&GX_DISP_ANTIALIAS != 0 && (cov != nil || attr&0xF != 0) {
			if cov != nil {
				attr |= cov.next() << GX_PIX_COVER_SHIFT
			} else {
				// full coverage so interior top/bottom rows stay solid
				attr |= GX_PIX_COVER_MASK
			}
			if addr < GX_BUFFER_SIZE {
				fb.Color[addr+GX_BUFFER_SIZE] = fb.Color[addr]
				fb.Depth[addr+GX_BUFFER_SIZE] = fb.Depth[addr]
				fb.Attr[addr+GX_BUFFER_SIZE] = fb.Attr[addr]
			}
		}
		fb.Depth[addr] = uint32(z)
		fb.Color[addr] = color
		fb.Attr[addr] = attr
		return
	}

	writeDepth := p.Attr&GX_ATTR_TRANS_DEPTH != 0
	r.plotTranslucentPixel(addr, color, z, writeDepth, sp.polyattr, p.IsShadow)
	if dstattr&GX_PIX_HORIZ_EDGES != 0 && addr < GX_BUFFER_SIZE {
		r.plotTranslucentPixel(addr+GX_BUFFER_SIZE, color, z, writeDepth, sp.polyattr, p.IsShadow)
	}
}

// plotTranslucentPixel blends color into the pixel at addr.
func (r *SoftRenderer) plotTranslucentPixel(addr int, color uint32, z int32, writeDepth bool, polyattr uint32, shadow bool) {
	fb := r.fb
	dstattr := fb.Attr[addr]
	attr := polyattr&(GX_PIX_FOG|GX_PIX_BACKFACING) |
		(polyattr>>8)&GX_PIX_TRANS_ID |
		GX_PIX_TRANSLUCENT |
		dstattr&(GX_PIX_OPAQUE_ID|0xC0000000|GX_PIX_COVER_MASK|0xF)

	if shadow && dstattr&GX_PIX_TRANSLUCENT == 0 {
		// shadows also check the opaque polygon ID
		if dstattr&GX_PIX_OPAQUE_ID == polyattr&GX_PIX_OPAQUE_ID {
			return
		}
	} else if dstattr&GX_PIX_TRANS_ID_FLG == attr&GX_PIX_TRANS_ID_FLG {
		return
	}

	if dstattr&GX_PIX_FOG == 0 {
		attr &^= GX_PIX_FOG
	}

	fb.Color[addr] = r.alphaBlend(color, fb.Color[addr], color>>24)
	if writeDepth {
		fb.Depth[addr] = uint32(z)
	}
	fb.Attr[addr] = attr
}

func (r *SoftRenderer) alphaBlend(src, dst, alpha uint32) uint32 {
	dstalpha := dst >> 24
	if dstalpha == 0 {
		return src
	}

	sr, sg, sb := src&0x3F, (src>>8)&0x3F, (src>>16)&0x3F
	if r.rs.DispCnt&GX_DISP_ALPHA_BLEND != 0 {
		dr, dg, db := dst&0x3F, (dst>>8)&0x3F, (dst>>16)&0x3F
		a := alpha + 1
		sr = (sr*a + dr*(32-a)) >> 5
		sg = (sg*a + dg*(32-a)) >> 5
		sb = (sb*a + db*(32-a)) >> 5
	}
	dstalpha = max(dstalpha, alpha)
	return sr | sg<<8 | sb<<16 | dstalpha<<24
}

// shadePixel combines the 6-bit vertex colour with the texture, toon
// table and polygon alpha.
func (r *SoftRenderer) shadePixel(p *Polygon, vr, vg, vb uint32, s, t int16) uint32 {
	mode := (p.Attr >> GX_ATTR_MODE_SHIFT) & 3
	polyalpha := (p.Attr >> GX_ATTR_ALPHA_SHIFT) & 0x1F
	highlight := r.rs.DispCnt&GX_DISP_HIGHLIGHT != 0

	if mode == GX_MODE_TOON {
		if highlight {
			// highlight: shade with the red component, add toon colour later
			vg, vb = vr, vr
		} else {
			vr, vg, vb = rgb15To6(uint32(r.rs.ToonTable[vr>>1]))
		}
	}

	var cr, cg, cb, ca uint32
	texfmt := (p.TexParam >> 26) & 7
	if r.rs.DispCnt&GX_DISP_TEXTURE != 0 && texfmt != GX_TEX_NONE && r.tex != nil && r.pal != nil {
		tcolor, talpha := TextureLookup(r.tex, r.pal, p.TexParam, p.TexPalette, s, t)
		tr, tg, tb := rgb15To6(uint32(tcolor))
		ta := uint32(talpha)

		if mode&1 != 0 {
			// decal
			switch ta {
			case 0:
				cr, cg, cb = vr, vg, vb
			case 31:
				cr, cg, cb = tr, tg, tb
			default:
				cr = (tr*ta + vr*(31-ta)) >> 5
				cg = (tg*ta + vg*(31-ta)) >> 5
				cb = (tb*ta + vb*(31-ta)) >> 5
			}
			ca = polyalpha
		} else {
			cr = ((tr+1)*(vr+1) - 1) >> 6
			cg = ((tg+1)*(vg+1) - 1) >> 6
			cb = ((tb+1)*(vb+1) - 1) >> 6
			ca = ((ta+1)*(polyalpha+1) - 1) >> 5
		}
	} else {
		cr, cg, cb, ca = vr, vg, vb, polyalpha
	}

	if mode == GX_MODE_TOON && highlight {
		hr, hg, hb := rgb15To6(uint32(r.rs.ToonTable[vr>>1]))
		cr = min(cr+hr, 63)
		cg = min(cg+hg, 63)
		cb = min(cb+hb, 63)
	}

	// wireframe polygons are always opaque
	if polyalpha == 0 {
		ca = 31
	}
	return cr | cg<<8 | cb<<16 | ca<<24
}
