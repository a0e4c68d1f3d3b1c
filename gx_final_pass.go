package gx3d

// scanlineFinalPass runs edge marking, fog and antialiasing on row y once
// the row below it has been drawn.
func (r *SoftRenderer) scanlineFinalPass(y int32) {
	if r.rs.DispCnt&GX_DISP_EDGE_MARK != 0 {
		r.edgeMark(y)
	}
	if r.rs.DispCnt&GX_DISP_FOG != 0 {
		r.applyFog(y)
	}
	if r.rs.DispCnt&GX_DISP_ANTIALIAS != 0 {
		r.antialias(y)
	}
}

// edgeMark recolours edge pixels that are nearer than a 4-neighbour with a
// different opaque polygon ID. Only the topmost layer is marked.
func (r *SoftRenderer) edgeMark(y int32) {
	fb := r.fb
	for x := 0; x < GX_SCREEN_WIDTH; x++ {
		addr := pixelAddr(x, int(y))
		attr := fb.Attr[addr]
		if attr&0xF == 0 {
			continue
		}

		polyid := (attr & GX_PIX_OPAQUE_ID) >> 24
		z := fb.Depth[addr]
		differs := func(n int) bool {
			return polyid != (fb.Attr[n]&GX_PIX_OPAQUE_ID)>>24 && z < fb.Depth[n]
		}
		if !differs(addr-1) && !differs(addr+1) &&
			!differs(addr-GX_SCANLINE_WIDTH) && !differs(addr+GX_SCANLINE_WIDTH) {
			continue
		}

		er, eg, eb := rgb15To6(uint32(r.rs.EdgeTable[polyid>>3]))
		fb.Color[addr] = er | eg<<8 | eb<<16 | fb.Color[addr]&0xFF000000

		// marked edges lose their antialiasing coverage
		fb.Attr[addr] = attr&^GX_PIX_COVER_MASK | 0x1000
	}
}

// fogDensity returns the fog density (0..128) for the depth at addr. The
// depth above the fog offset is shifted right by two and left by the fog
// shift; bits 17 and up index the density table and the low 17 bits
// interpolate between neighbouring entries.
func (r *SoftRenderer) fogDensity(addr int) uint32 {
	z := r.fb.Depth[addr]

	var id, frac uint32
	if z >= r.rs.FogOffset {
		z -= r.rs.FogOffset
		z = (z >> 2) << r.rs.FogShift

		id = z >> 17
		if id >= 32 {
			id = 32
		} else {
			frac = z & 0x1FFFF
		}
	}

	density := (r.rs.FogDensity[id]*(0x20000-frac) + r.rs.FogDensity[id+1]*frac) >> 17
	if density >= 127 {
		density = 128
	}
	return density
}

// applyFog blends fog-enabled pixels towards the fog colour. The pixel
// underneath an edge is fogged too so antialiasing blends fogged colours.
func (r *SoftRenderer) applyFog(y int32) {
	fb := r.fb
	fogColor := r.rs.DispCnt&GX_DISP_FOG_ALPHA == 0
	fr, fg, fb6 := rgb15To6(r.rs.FogColor)
	fa := (r.rs.FogColor >> 16) & 0x1F

	fog := func(addr int) {
		density := r.fogDensity(addr)
		c := fb.Color[addr]
		cr, cg, cb, ca := c&0x3F, (c>>8)&0x3F, (c>>16)&0x3F, (c>>24)&0x1F
		if fogColor {
			cr = (fr*density + cr*(128-density)) >> 7
			cg = (fg*density + cg*(128-density)) >> 7
			cb = (fb6*density + cb*(128-density)) >> 7
		}
		ca = (fa*density + ca*(128-density)) >> 7
		fb.Color[addr] = cr | cg<<8 | cb<<16 | ca<<24
	}

	for x := 0; x < GX_SCREEN_WIDTH; x++ {
		addr := pixelAddr(x, int(y))
		attr := fb.Attr[addr]
		if attr&GX_PIX_FOG != 0 {
			fog(addr)
		}

		if attr&GX_PIX_HORIZ_EDGES == 0 {
			continue
		}
		addr += GX_BUFFER_SIZE
		if fb.Attr[addr]&GX_PIX_FOG != 0 {
			fog(addr)
		}
	}
}

// antialias blends edge pixels with the pixel underneath by the coverage
// recorded during rasterisation.
func (r *SoftRenderer) antialias(y int32) {
	fb := r.fb
	for x := 0; x < GX_SCREEN_WIDTH; x++ {
		addr := pixelAddr(x, int(y))
		attr := fb.Attr[addr]
		if attr&GX_PIX_HORIZ_EDGES == 0 {
			continue
		}

		coverage := (attr >> GX_PIX_COVER_SHIFT) & 0x1F
		if coverage == 0x1F {
			continue
		}
		if coverage == 0 {
			fb.Color[addr] = fb.Color[addr+GX_BUFFER_SIZE]
			continue
		}

		top := fb.Color[addr]
		bot := fb.Color[addr+GX_BUFFER_SIZE]
		tr, tg, tb, ta := top&0x3F, (top>>8)&0x3F, (top>>16)&0x3F, (top>>24)&0x1F
		br, bg, bb, ba := bot&0x3F, (bot>>8)&0x3F, (bot>>16)&0x3F, (bot>>24)&0x1F

		coverage++
		// colour only blends over a visible pixel; alpha always does
		if ba > 0 {
			tr = (tr*coverage + br*(32-coverage)) >> 5
			tg = (tg*coverage + bg*(32-coverage)) >> 5
			tb = (tb*coverage + bb*(32-coverage)) >> 5
		}
		ta = (ta*coverage + ba*(32-coverage)) >> 5

		fb.Color[addr] = tr | tg<<8 | tb<<16 | ta<<24
	}
}
