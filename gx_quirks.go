package gx3d

import "math/bits"

// Fixed-point behaviours that real software depends on. Each one lives in
// its own helper so it can be tested and corrected in isolation.

// applyColorBias re-applies the +0xFFF bias to a 5-bit channel scaled by
// 1<<12. The hardware does this after every clipping pass, so clipped
// colours round up.
func applyColorBias(c int32) int32 {
	return (c &^ 0xFFF) + 0xFFF
}

// finalColor turns a biased clip colour into the 9-bit value the
// rasteriser interpolates. Zero stays zero.
func finalColor(c int32) int32 {
	c >>= 12
	if c != 0 {
		c = (c << 4) + 0xF
	}
	return c
}

// cullNormalReduce shifts the three components right by four until all of
// them fit in 32 bits.
func cullNormalReduce(x, y, z int64) (int64, int64, int64) {
	for (x>>31)^(x>>63) != 0 || (y>>31)^(y>>63) != 0 || (z>>31)^(z>>63) != 0 {
		x >>= 4
		y >>= 4
		z >>= 4
	}
	return x, y, z
}

// truncateW keeps the low 24 bits of W for the viewport divide.
func truncateW(w int32) int32 {
	return w & 0xFFFFFF
}

// projectAxis maps a clip space coordinate to the viewport:
// ((pos + w) * extent) / 2w + origin. When W is wider than 16 bits the
// divider only sees the top bits, so numerator and denominator are shifted
// together. hires keeps four extra fractional bits.
func projectAxis(pos, w, extent, origin int32, hires bool) int32 {
	num := (int64(pos) + int64(w)) * int64(extent)
	den := int64(w) << 1
	if hires {
		num <<= 4
		origin <<= 4
	}
	if w > 0xFFFF {
		s := uint(bits.Len32(uint32(w)) - 16)
		num >>= s
		den >>= s
	}
	return int32(num/den) + origin
}

// wSize is the bit width of the largest W of a polygon.
func wSize(maxW uint32) int {
	return bits.Len32(maxW)
}

// normalizeW brings W into 16 bits for perspective interpolation. Polygons
// whose W already fits are left alone; otherwise W is rounded to nearest
// and saturated so the largest W lands in [0x8000, 0xFFFF]. wshifted is the
// rounded value scaled back to the original magnitude, used for depth.
func normalizeW(w uint32, wsize int) (norm, wshifted int32) {
	if wsize <= 16 {
		return int32(w), int32(w)
	}
	shift := uint(wsize - 16)
	n := (uint64(w) + (1 << (shift - 1))) >> shift
	if n > 0xFFFF {
		n = 0xFFFF
	}
	return int32(n), int32(n << shift)
}

// zBufferDepth is the 24-bit depth of a vertex in Z-buffer mode.
func zBufferDepth(z, wshifted int32) int32 {
	var d int64
	if wshifted != 0 {
		d = ((int64(z)*0x4000)/int64(wshifted) + 0x3FFF) * 0x200
	} else {
		d = 0x7FFE00
	}
	return int32(min(max(d, 0), 0xFFFFFF))
}

// wBufferDepth is the 24-bit depth of a vertex in W-buffer mode.
func wBufferDepth(wshifted int32) int32 {
	return min(max(wshifted, 0), 0xFFFFFF)
}

// depthFromRegister expands a 15-bit depth register (CLEAR_DEPTH,
// DISP_1DOT_DEPTH, rear-plane depth) to 24 bits.
func depthFromRegister(v uint32) uint32 {
	return (v&0x7FFF)*0x200 + 0x1FF
}

// isTranslucent: polygon alpha strictly between 0 and 31, or an alpha
// texture format used without decal mode.
func isTranslucent(attr, texParam uint32) bool {
	texfmt := (texParam >> 26) & 7
	alpha := (attr >> GX_ATTR_ALPHA_SHIFT) & 0x1F
	return ((texfmt == GX_TEX_A3I5 || texfmt == GX_TEX_A5I3) && attr&0x10 == 0) ||
		(alpha > 0 && alpha < 31)
}

// isShadowMask: shadow mode with polygon ID 0.
func isShadowMask(attr uint32) bool {
	return attr&0x3F000030 == 0x30
}

// isShadow: shadow mode with a non-zero polygon ID.
func isShadow(attr uint32) bool {
	return attr&0x30 == 0x30 && !isShadowMask(attr)
}

// rgb15To6 expands a 15-bit colour to three 6-bit channels. Non-zero
// channels get their low bit set.
func rgb15To6(c uint32) (r, g, b uint32) {
	r = (c << 1) & 0x3E
	if r != 0 {
		r++
	}
	g = (c >> 4) & 0x3E
	if g != 0 {
		g++
	}
	b = (c >> 9) & 0x3E
	if b != 0 {
		b++
	}
	return r, g, b
}
