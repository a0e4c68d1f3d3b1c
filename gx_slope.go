package gx3d

// slope walks one polygon edge down the screen. X advances by an
// increment with an 18-bit fraction; edges steeper than 45 degrees are
// Y-major, flatter ones X-major and span several pixels per scanline.
type slope struct {
	right bool

	Increment int32
	Negative  bool
	XMajor    bool
	Interp    interpolator

	x0, xmin, xmax int32
	xlen, ylen     int32
	dx             int32
	y              int32

	xcovIncr int32
}

func newSlope(right bool) slope {
	return slope{right: right, Interp: interpolator{alongY: true}}
}

// setupDummy is used for flat polygons whose top and bottom are on the
// same scanline.
func (s *slope) setupDummy(x0 int32) int32 {
	s.dx = 0
	s.x0 = x0
	s.xmin = x0
	s.xmax = x0
	s.Increment = 0
	s.XMajor = false
	s.Interp.setup(0, 0, 0, 0)
	s.Interp.setX(0)
	s.xcovIncr = 0
	return x0
}

// setup starts the edge from (x0,y0) to (x1,y1) at scanline y and returns
// the X position for that scanline.
func (s *slope) setup(x0, x1, y0, y1, w0, w1, y int32) int32 {
	s.x0 = x0
	s.y = y

	switch {
	case x1 > x0:
		s.xmin, s.xmax, s.Negative = x0, x1-1, false
	case x1 < x0:
		s.xmin, s.xmax, s.Negative = x1, x0-1, true
	default:
		s.xmin, s.xmax, s.Negative = x0, x0, false
	}

	s.xlen = s.xmax + 1 - s.xmin
	s.ylen = y1 - y0

	// 1/y is computed first and then multiplied by x
	switch {
	case s.ylen == 0:
		s.Increment = 0
	case s.ylen == s.xlen && s.xlen != 1:
		s.Increment = 0x40000
	default:
		yrecip := (int32(1) << 18) / s.ylen
		s.Increment = (x1 - x0) * yrecip
		if s.Increment < 0 {
			s.Increment = -s.Increment
		}
	}

	s.XMajor = s.Increment > 0x40000

	switch {
	case s.XMajor && s.right:
		if s.Negative {
			s.dx = 0x20000 + 0x40000
		} else {
			s.dx = s.Increment - 0x20000
		}
	case s.XMajor:
		if s.Negative {
			s.dx = s.Increment - 0x20000 + 0x40000
		} else {
			s.dx = 0x20000
		}
	case s.Increment != 0:
		if s.Negative {
			s.dx = 0x40000
		} else {
			s.dx = 0
		}
	default:
		s.dx = 0
	}
	s.dx += (y - y0) * s.Increment

	x := s.xVal()

	var interpOffset int32
	if s.Increment >= 0x40000 && s.right != s.Negative {
		interpOffset = 1
	}
	s.Interp.setup(y0-interpOffset, y1-interpOffset, w0, w1)
	s.Interp.setX(y)

	if s.XMajor {
		s.xcovIncr = (s.ylen << 10) / s.xlen
	}
	return x
}

// step moves to the next scanline.
func (s *slope) step() int32 {
	s.dx += s.Increment
	s.y++
	x := s.xVal()
	s.Interp.setX(s.y)
	return x
}

func (s *slope) xVal() int32 {
	var ret int32
	if s.Negative {
		ret = s.x0 - (s.dx >> 18)
	} else {
		ret = s.x0 + (s.dx >> 18)
	}
	return min(max(ret, s.xmin), s.xmax)
}

// Edge coverage word. For X-major edges bit 31 is set, bits 12-21 hold the
// coverage of the first pixel and bits 0-9 the per-pixel increment; Y-major
// edges return a plain 5-bit coverage.
const edgeCoverXMajor = 1 << 31

// edgeParams returns how many pixels of the current scanline belong to
// the edge and their antialiasing coverage. swapped is set when the left
// and right edges cross, which breaks the length calculation: X-major
// edges are then drawn as if they were Y-major.
func (s *slope) edgeParams(swapped bool) (length int32, coverage uint32) {
	if s.XMajor {
		return s.edgeParamsXMajor(swapped)
	}
	return s.edgeParamsYMajor(swapped)
}

func (s *slope) edgeParamsXMajor(swapped bool) (length int32, coverage uint32) {
	if !swapped || s.right {
		if s.right != s.Negative {
			length = (s.dx >> 18) - ((s.dx - s.Increment) >> 18)
		} else {
			length = ((s.dx + s.Increment) >> 18) - (s.dx >> 18)
		}
	}

	startx := s.dx >> 18
	if s.Negative {
		startx = s.xlen - startx
	}
	if s.right {
		startx = startx - length + 1
	}

	startcov := (((startx << 10) + 0x1FF) * s.ylen) / s.xlen
	coverage = edgeCoverXMajor | uint32(startcov&0x3FF)<<12 | uint32(s.xcovIncr&0x3FF)

	if swapped {
		length = 1
	}
	return length, coverage
}

func (s *slope) edgeParamsYMajor(swapped bool) (length int32, coverage uint32) {
	if s.Increment == 0 {
		// vertical edges are inverted too when swapped
		if swapped {
			return 1, 0
		}
		return 1, 31
	}

	cov := ((s.dx >> 9) + (s.Increment >> 10)) >> 4
	if cov>>5 != s.dx>>18 {
		cov = 31
	}
	cov &= 0x1F
	if swapped {
		if s.right != s.Negative {
			cov = 0x1F - cov
		}
	} else if s.right == s.Negative {
		cov = 0x1F - cov
	}
	return 1, uint32(cov)
}
