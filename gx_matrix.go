package gx3d

// Matrix is a 4x4 matrix of signed 20.12 fixed-point values stored row by
// row. Vectors are rows multiplied from the left, so elements 12-14 hold
// the translation.
type Matrix [16]int32

// Identity returns the 20.12 identity matrix.
func Identity() Matrix {
	return Matrix{
		0x1000, 0, 0, 0,
		0, 0x1000, 0, 0,
		0, 0, 0x1000, 0,
		0, 0, 0, 0x1000,
	}
}

// Load4x3 builds a matrix from twelve parameters, the last column implied
// as (0, 0, 0, 1).
func Load4x3(s []int32) Matrix {
	var m Matrix
	for r := 0; r < 4; r++ {
		m[r*4+0] = s[r*3+0]
		m[r*4+1] = s[r*3+1]
		m[r*4+2] = s[r*3+2]
	}
	m[15] = 0x1000
	return m
}

// Mult4x4 sets m = s*m.
func (m *Matrix) Mult4x4(s *Matrix) {
	tmp := *m
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			acc := int64(s[r*4+0])*int64(tmp[c]) +
				int64(s[r*4+1])*int64(tmp[4+c]) +
				int64(s[r*4+2])*int64(tmp[8+c]) +
				int64(s[r*4+3])*int64(tmp[12+c])
			m[r*4+c] = int32(acc >> 12)
		}
	}
}

// Mult4x3 sets m = s*m where s is twelve values with the last column
// implied as (0, 0, 0, 1).
func (m *Matrix) Mult4x3(s []int32) {
	tmp := *m
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			acc := int64(s[r*3+0])*int64(tmp[c]) +
				int64(s[r*3+1])*int64(tmp[4+c]) +
				int64(s[r*3+2])*int64(tmp[8+c])
			if r == 3 {
				acc += 0x1000 * int64(tmp[12+c])
			}
			m[r*4+c] = int32(acc >> 12)
		}
	}
}

// Mult3x3 multiplies the upper 3x3 part. The translation row is untouched.
func (m *Matrix) Mult3x3(s []int32) {
	tmp := *m
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			acc := int64(s[r*3+0])*int64(tmp[c]) +
				int64(s[r*3+1])*int64(tmp[4+c]) +
				int64(s[r*3+2])*int64(tmp[8+c])
			m[r*4+c] = int32(acc >> 12)
		}
	}
}

// Scale scales the first three rows.
func (m *Matrix) Scale(s []int32) {
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			m[r*4+c] = int32((int64(s[r]) * int64(m[r*4+c])) >> 12)
		}
	}
}

// Translate applies a translation in front of m.
func (m *Matrix) Translate(s []int32) {
	for c := 0; c < 4; c++ {
		acc := int64(s[0])*int64(m[c]) +
			int64(s[1])*int64(m[4+c]) +
			int64(s[2])*int64(m[8+c]) +
			0x1000*int64(m[12+c])
		m[12+c] = int32(acc >> 12)
	}
}

// Transform multiplies the row vector (x, y, z, w) by m.
func (m *Matrix) Transform(x, y, z, w int64) [4]int32 {
	var out [4]int32
	for c := 0; c < 4; c++ {
		out[c] = int32((x*int64(m[c]) + y*int64(m[4+c]) + z*int64(m[8+c]) + w*int64(m[12+c])) >> 12)
	}
	return out
}

// Matrix modes (MTX_MODE parameter)
const (
	GX_MTX_PROJECTION = 0
	GX_MTX_POSITION   = 1
	GX_MTX_POS_VECTOR = 2
	GX_MTX_TEXTURE    = 3
)

// MatrixEngine owns the four current matrices, their stacks and the cached
// clip matrix. Position and Vector share one stack pointer and always move
// together on push, pop, store and restore.
type MatrixEngine struct {
	Mode uint32

	Proj Matrix
	Pos  Matrix
	Vec  Matrix
	Tex  Matrix

	clip      Matrix
	clipDirty bool

	projStack Matrix
	texStack  Matrix
	posStack  [32]Matrix
	vecStack  [32]Matrix

	// Stack pointers. Projection and Texture wrap mod 2, Position mod 64
	// with the low five bits selecting the slot.
	projSP uint32
	texSP  uint32
	posSP  uint32

	// Sticky overflow/underflow, GXSTAT bit 15
	Overflow bool
}

// Reset restores power-on state: identity everywhere, empty stacks.
func (me *MatrixEngine) Reset() {
	*me = MatrixEngine{}
	me.Proj = Identity()
	me.Pos = Identity()
	me.Vec = Identity()
	me.Tex = Identity()
	me.clipDirty = true
}

// ClipMatrix returns Projection x Position, recomputing it if either input
// changed since the last call.
func (me *MatrixEngine) ClipMatrix() *Matrix {
	if me.clipDirty {
		me.clip = me.Proj
		me.clip.Mult4x4(&me.Pos)
		me.clipDirty = false
	}
	return &me.clip
}

// ClipDirty reports whether the cached clip matrix is stale.
func (me *MatrixEngine) ClipDirty() bool { return me.clipDirty }

// ProjStackPointer and PosStackPointer are reported through GXSTAT.
func (me *MatrixEngine) ProjStackPointer() uint32 { return me.projSP & 1 }
func (me *MatrixEngine) PosStackPointer() uint32  { return me.posSP & 0x1F }

// AcknowledgeOverflow clears the sticky overflow flag. The hardware also
// resets the projection and texture stack pointers here.
func (me *MatrixEngine) AcknowledgeOverflow() {
	me.Overflow = false
	me.projSP = 0
	me.texSP = 0
}

// apply runs fn on whichever matrices the current mode targets. In
// Position&Vector mode both are updated.
func (me *MatrixEngine) apply(fn func(m *Matrix)) {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		fn(&me.Proj)
		me.clipDirty = true
	case GX_MTX_POSITION:
		fn(&me.Pos)
		me.clipDirty = true
	case GX_MTX_POS_VECTOR:
		fn(&me.Pos)
		fn(&me.Vec)
		me.clipDirty = true
	default:
		fn(&me.Tex)
	}
}

// applyPositionOnly is used by Scale and Translate, which never touch the
// Vector matrix.
func (me *MatrixEngine) applyPositionOnly(fn func(m *Matrix)) {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		fn(&me.Proj)
		me.clipDirty = true
	case GX_MTX_POSITION, GX_MTX_POS_VECTOR:
		fn(&me.Pos)
		me.clipDirty = true
	default:
		fn(&me.Tex)
	}
}

func (me *MatrixEngine) SetMode(mode uint32) { me.Mode = mode & 3 }

func (me *MatrixEngine) LoadIdentity() {
	me.apply(func(m *Matrix) { *m = Identity() })
}

func (me *MatrixEngine) Load4x4(s []int32) {
	var src Matrix
	copy(src[:], s)
	me.apply(func(m *Matrix) { *m = src })
}

func (me *MatrixEngine) Load4x3(s []int32) {
	src := Load4x3(s)
	me.apply(func(m *Matrix) { *m = src })
}

func (me *MatrixEngine) Mult4x4(s []int32) {
	var src Matrix
	copy(src[:], s)
	me.apply(func(m *Matrix) { m.Mult4x4(&src) })
}

func (me *MatrixEngine) Mult4x3(s []int32) {
	me.apply(func(m *Matrix) { m.Mult4x3(s) })
}

func (me *MatrixEngine) Mult3x3(s []int32) {
	me.apply(func(m *Matrix) { m.Mult3x3(s) })
}

func (me *MatrixEngine) Scale(s []int32) {
	me.applyPositionOnly(func(m *Matrix) { m.Scale(s) })
}

func (me *MatrixEngine) Translate(s []int32) {
	me.applyPositionOnly(func(m *Matrix) { m.Translate(s) })
}

// Push saves the current matrix. Overflow raises the sticky flag but the
// save still happens and the pointer wraps.
func (me *MatrixEngine) Push() {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		if me.projSP > 0 {
			me.Overflow = true
		}
		me.projStack = me.Proj
		me.projSP = (me.projSP + 1) & 1
	case GX_MTX_TEXTURE:
		if me.texSP > 0 {
			me.Overflow = true
		}
		me.texStack = me.Tex
		me.texSP = (me.texSP + 1) & 1
	default:
		if me.posSP > 30 {
			me.Overflow = true
		}
		me.posStack[me.posSP&0x1F] = me.Pos
		me.vecStack[me.posSP&0x1F] = me.Vec
		me.posSP = (me.posSP + 1) & 0x3F
	}
}

// Pop restores a saved matrix. For Position/Vector the parameter is a
// signed 6-bit count of levels to pop.
func (me *MatrixEngine) Pop(param uint32) {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		if me.projSP == 0 {
			me.Overflow = true
		}
		me.projSP = (me.projSP - 1) & 1
		me.Proj = me.projStack
		me.clipDirty = true
	case GX_MTX_TEXTURE:
		if me.texSP == 0 {
			me.Overflow = true
		}
		me.texSP = (me.texSP - 1) & 1
		me.Tex = me.texStack
	default:
		offset := int32(param<<26) >> 26
		me.posSP = uint32(int32(me.posSP)-offset) & 0x3F
		if me.posSP > 30 {
			me.Overflow = true
		}
		me.Pos = me.posStack[me.posSP&0x1F]
		me.Vec = me.vecStack[me.posSP&0x1F]
		me.clipDirty = true
	}
}

// Store copies the current matrix into a stack slot without moving the
// pointer. Slot 31 exists but flags overflow.
func (me *MatrixEngine) Store(param uint32) {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		me.projStack = me.Proj
	case GX_MTX_TEXTURE:
		me.texStack = me.Tex
	default:
		idx := param & 0x1F
		if idx == 31 {
			me.Overflow = true
		}
		me.posStack[idx] = me.Pos
		me.vecStack[idx] = me.Vec
	}
}

// Restore loads a stack slot into the current matrix.
func (me *MatrixEngine) Restore(param uint32) {
	switch me.Mode {
	case GX_MTX_PROJECTION:
		me.Proj = me.projStack
		me.clipDirty = true
	case GX_MTX_TEXTURE:
		me.Tex = me.texStack
	default:
		idx := param & 0x1F
		if idx == 31 {
			me.Overflow = true
		}
		me.Pos = me.posStack[idx]
		me.Vec = me.vecStack[idx]
		me.clipDirty = true
	}
}
