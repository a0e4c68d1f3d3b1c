package gx3d

// interpolator approximates perspective-correct interpolation the way the
// rasteriser hardware does: a factor between 0 and 1 is computed from the
// two W values once per position and then used to lerp every attribute.
// The factor keeps 9 bits along Y and 8 bits along X. When both W are
// equal and their low bits are clear, plain linear interpolation is used
// instead, so 2D drawing loses no precision.
type interpolator struct {
	alongY bool

	x0, x1, xdiff, x int32

	shift  uint
	linear bool

	xrecipZ       int32
	w0n, w0d, w1d int32

	yfactor uint32
}

func (ip *interpolator) setup(x0, x1, w0, w1 int32) {
	ip.x0 = x0
	ip.x1 = x1
	ip.xdiff = x1 - x0

	if ip.xdiff != 0 {
		ip.xrecipZ = (1 << 22) / ip.xdiff
	} else {
		ip.xrecipZ = 0
	}

	// linear only when both W match and bits 0-6 (1-6 along Y) are clear
	mask := int32(0x7F)
	if ip.alongY {
		mask = 0x7E
	}
	ip.linear = w0 == w1 && w0&mask == 0 && w1&mask == 0

	if ip.alongY {
		if w0&1 != 0 && w1&1 == 0 {
			ip.w0n = w0 - 1
			ip.w0d = w0 + 1
			ip.w1d = w1
		} else {
			ip.w0n = w0 & 0xFFFE
			ip.w0d = w0 & 0xFFFE
			ip.w1d = w1 & 0xFFFE
		}
		ip.shift = 9
	} else {
		ip.w0n = w0
		ip.w0d = w0
		ip.w1d = w1
		ip.shift = 8
	}
}

func (ip *interpolator) setX(x int32) {
	x -= ip.x0
	ip.x = x
	if ip.xdiff == 0 || ip.linear {
		return
	}
	num := (int64(x) * int64(ip.w0n)) << ip.shift
	den := x*ip.w0d + (ip.xdiff-x)*ip.w1d
	if den == 0 {
		ip.yfactor = 0
	} else {
		ip.yfactor = uint32(int32(num / int64(den)))
	}
}

// interpolate returns the attribute at the current position between y0
// and y1.
func (ip *interpolator) interpolate(y0, y1 int32) int32 {
	if ip.xdiff == 0 || y0 == y1 {
		return y0
	}

	if !ip.linear {
		one := uint32(1) << ip.shift
		if y0 < y1 {
			return int32(uint32(y0) + (uint32(y1-y0)*ip.yfactor)>>ip.shift)
		}
		return int32(uint32(y1) + (uint32(y0-y1)*(one-ip.yfactor))>>ip.shift)
	}

	if y0 < y1 {
		return int32(int64(y0) + int64(y1-y0)*int64(ip.x)/int64(ip.xdiff))
	}
	return int32(int64(y1) + int64(y0-y1)*int64(ip.xdiff-ip.x)/int64(ip.xdiff))
}

// interpolateZ interpolates depth. W-buffer depth is perspective-correct;
// Z-buffer depth is linear with the hardware's reduced precision.
func (ip *interpolator) interpolateZ(z0, z1 int32, wbuffer bool) int32 {
	if ip.xdiff == 0 || z0 == z1 {
		return z0
	}

	if wbuffer {
		one := int64(1) << ip.shift
		yf := int64(ip.yfactor)
		if z0 < z1 {
			return int32(int64(z0) + (int64(z1-z0)*yf)>>ip.shift)
		}
		return int32(int64(z1) + (int64(z0-z1)*(one-yf))>>ip.shift)
	}

	var base, disp, factor int32
	if z0 < z1 {
		base, disp, factor = z0, z1-z0, ip.x
	} else {
		base, disp, factor = z1, z0-z1, ip.xdiff-ip.x
	}

	if ip.alongY {
		shift := uint(0)
		for disp > 0x3FF {
			disp >>= 1
			shift++
		}
		return base + int32(((int64(disp)*int64(factor)*int64(ip.xrecipZ))>>22)<<shift)
	}
	disp >>= 9
	return base + int32((int64(disp)*int64(factor)*int64(ip.xrecipZ))>>13)
}
