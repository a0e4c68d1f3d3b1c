package gx3d

import "sort"

// renderState is the register snapshot the rasteriser works from. It is
// latched once per frame so register writes during rendering only affect
// the next frame.
type renderState struct {
	DispCnt    uint32
	AlphaRef   uint32
	ClearAttr1 uint32
	ClearAttr2 uint32
	FogColor   uint32
	FogOffset  uint32 // already scaled to 24-bit depth
	FogShift   uint32
	FogDensity [34]uint32
	ToonTable  [32]uint16
	EdgeTable  [8]uint16
}

// FrameBufferSet owns geometry RAM double buffering, the sorted render
// list and the two-layer render buffers.
//
// Each render buffer is 258x194 (one pixel of border for edge marking) and
// stored twice: layer 0 is the topmost pixel and layer 1, GX_BUFFER_SIZE
// further on, the pixel underneath it that antialiasing blends with.
type FrameBufferSet struct {
	ram [2]*GeometryRAM
	cur int

	renderRAM  *GeometryRAM
	renderList []int32

	Color []uint32
	Depth []uint32
	Attr  []uint32

	// Two alternating scanline rows of 2-bit shadow stencil
	Stencil [2 * GX_SCREEN_WIDTH]uint8
}

func NewFrameBufferSet() *FrameBufferSet {
	fb := &FrameBufferSet{
		ram:        [2]*GeometryRAM{newGeometryRAM(), newGeometryRAM()},
		renderList: make([]int32, 0, GX_MAX_POLYGONS),
		Color:      make([]uint32, 2*GX_BUFFER_SIZE),
		Depth:      make([]uint32, 2*GX_BUFFER_SIZE),
		Attr:       make([]uint32, 2*GX_BUFFER_SIZE),
	}
	fb.renderRAM = fb.ram[1]
	return fb
}

func (fb *FrameBufferSet) Reset() {
	fb.ram[0].Clear()
	fb.ram[1].Clear()
	fb.cur = 0
	fb.renderRAM = fb.ram[1]
	fb.renderList = fb.renderList[:0]
	clear(fb.Color)
	clear(fb.Depth)
	clear(fb.Attr)
	clear(fb.Stencil[:])
}

// Current is the half geometry commands write into.
func (fb *FrameBufferSet) Current() *GeometryRAM { return fb.ram[fb.cur] }

// RenderRAM is the half the rasteriser reads.
func (fb *FrameBufferSet) RenderRAM() *GeometryRAM { return fb.renderRAM }

// RenderList returns the render order as polygon indices into RenderRAM.
func (fb *FrameBufferSet) RenderList() []int32 { return fb.renderList }

// BuildRenderList orders the current half for rendering: opaque polygons
// first, translucent after, each group stable-sorted by sort key. With
// manualSort the translucent group keeps submission order.
func (fb *FrameBufferSet) BuildRenderList() {
	ram := fb.Current()
	list := fb.renderList[:0]
	for i := 0; i < ram.NumPolygons; i++ {
		if !ram.Polygons[i].Translucent {
			list = append(list, int32(i))
		}
	}
	for i := 0; i < ram.NumPolygons; i++ {
		if ram.Polygons[i].Translucent {
			list = append(list, int32(i))
		}
	}
	fb.renderList = list
	fb.renderRAM = ram
}

// SortRenderList applies the Y sort. manualSort leaves the translucent
// suffix in submission order.
func (fb *FrameBufferSet) SortRenderList(manualSort bool) {
	n := len(fb.renderList)
	if manualSort {
		n = fb.renderRAM.NumOpaquePolygons
	}
	polys := fb.renderRAM.Polygons
	part := fb.renderList[:n]
	sort.SliceStable(part, func(a, b int) bool {
		return polys[part[a]].SortKey < polys[part[b]].SortKey
	})
}

// Swap makes the other half current and empties it.
func (fb *FrameBufferSet) Swap() {
	fb.cur ^= 1
	fb.ram[fb.cur].Clear()
}

func pixelAddr(x, y int) int {
	return GX_FIRST_PIXEL_OFFSET + y*GX_SCANLINE_WIDTH + x
}

// Line returns the finished 256-pixel row y of the top layer.
func (fb *FrameBufferSet) Line(y int) []uint32 {
	start := pixelAddr(0, y)
	return fb.Color[start : start+GX_SCREEN_WIDTH]
}

// Clear fills the render buffers for a new frame, either from the clear
// colour registers or from the rear-plane bitmap in texture slots 2 and 3.
// The border always gets the clear depth and polygon ID so edge marking
// sees a consistent neighbour.
func (fb *FrameBufferSet) Clear(rs *renderState, tex VRAMReader) {
	clearZ := depthFromRegister(rs.ClearAttr2)
	polyID := rs.ClearAttr1 & GX_PIX_OPAQUE_ID

	setBorder := func(addr int) {
		fb.Color[addr] = 0
		fb.Depth[addr] = clearZ
		fb.Attr[addr] = polyID
	}
	for x := 0; x < GX_SCANLINE_WIDTH; x++ {
		setBorder(x)
		setBorder(GX_SCANLINE_WIDTH*(GX_NUM_SCANLINES-1) + x)
	}
	for y := 1; y < GX_NUM_SCANLINES-1; y++ {
		setBorder(y * GX_SCANLINE_WIDTH)
		setBorder(y*GX_SCANLINE_WIDTH + GX_SCANLINE_WIDTH - 1)
	}

	if rs.DispCnt&GX_DISP_REAR_BITMAP != 0 && tex != nil {
		xoff0 := uint8(rs.ClearAttr2 >> 16)
		yoff := uint8(rs.ClearAttr2 >> 24)
		for y := 0; y < GX_SCREEN_HEIGHT; y++ {
			xoff := xoff0
			for x := 0; x < GX_SCREEN_WIDTH; x++ {
				off := uint32(yoff)<<9 | uint32(xoff)<<1
				colorVal := uint32(tex.Read16(0x40000 + off))
				depthVal := uint32(tex.Read16(0x60000 + off))

				r, g, b := rgb15To6(colorVal)
				var a uint32
				if colorVal&0x8000 != 0 {
					a = 0x1F << 24
				}
				addr := pixelAddr(x, y)
				fb.Color[addr] = r | g<<8 | b<<16 | a
				fb.Depth[addr] = depthFromRegister(depthVal)
				fb.Attr[addr] = polyID | (depthVal & GX_PIX_FOG)
				xoff++
			}
			yoff++
		}
		return
	}

	r, g, b := rgb15To6(rs.ClearAttr1)
	a := (rs.ClearAttr1 >> 16) & 0x1F
	color := r | g<<8 | b<<16 | a<<24
	attr := polyID | (rs.ClearAttr1 & GX_PIX_FOG)
	for y := 0; y < GX_SCREEN_HEIGHT; y++ {
		start := pixelAddr(0, y)
		for x := start; x < start+GX_SCREEN_WIDTH; x++ {
			fb.Color[x] = color
			fb.Depth[x] = clearZ
			fb.Attr[x] = attr
		}
	}
}
