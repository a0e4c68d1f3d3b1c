// Package scene builds geometry command streams from floating point
// transforms and meshes. Matrices come from mgl32 and are converted to the
// engine's 20.12 fixed point on the way out.
package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/intuitionamiga/gx3d"
)

// Sink receives one command entry at a time. *gx3d.GXEngine is a Sink.
type Sink interface {
	WriteCommand(op uint8, param uint32)
}

// Fixed converts f to 20.12 fixed point, rounding to nearest.
func Fixed(f float32) int32 {
	return int32(math.Round(float64(f) * 4096))
}

// Fixed16 converts f to 4.12, saturating at the 16-bit limits.
func Fixed16(f float32) int16 {
	v := Fixed(f)
	return int16(min(max(v, math.MinInt16), math.MaxInt16))
}

// Fixed10 converts a unit component to the signed 1.9 form used by
// normals and light vectors.
func Fixed10(f float32) uint32 {
	v := int32(math.Round(float64(f) * 512))
	return uint32(min(max(v, -512), 511)) & 0x3FF
}

// MatrixParams returns the sixteen MTX_LOAD_4x4 parameters for m. mgl32
// stores column-major for column vectors; the engine multiplies row
// vectors, so the storage order is already the parameter order.
func MatrixParams(m mgl32.Mat4) [16]uint32 {
	var out [16]uint32
	for i, f := range m {
		out[i] = uint32(Fixed(f))
	}
	return out
}

// RGB15 packs 5-bit channels.
func RGB15(r, g, b uint8) uint32 {
	return uint32(r&0x1F) | uint32(g&0x1F)<<5 | uint32(b&0x1F)<<10
}

// Builder writes commands to a Sink.
type Builder struct {
	sink Sink
	mode uint32
}

func New(s Sink) *Builder {
	return &Builder{sink: s, mode: math.MaxUint32}
}

func (b *Builder) cmd(op uint8, params ...uint32) {
	if len(params) == 0 {
		b.sink.WriteCommand(op, 0)
		return
	}
	for _, p := range params {
		b.sink.WriteCommand(op, p)
	}
}

// MatrixMode selects the matrix later commands act on. Repeated selection
// of the same mode is skipped.
func (b *Builder) MatrixMode(mode uint32) {
	if mode == b.mode {
		return
	}
	b.mode = mode
	b.cmd(gx3d.GX_CMD_MTX_MODE, mode)
}

func (b *Builder) Identity() { b.cmd(gx3d.GX_CMD_MTX_IDENTITY) }

func (b *Builder) Load(m mgl32.Mat4) {
	p := MatrixParams(m)
	b.cmd(gx3d.GX_CMD_MTX_LOAD_4x4, p[:]...)
}

func (b *Builder) Mult(m mgl32.Mat4) {
	p := MatrixParams(m)
	b.cmd(gx3d.GX_CMD_MTX_MULT_4x4, p[:]...)
}

func (b *Builder) Push() { b.cmd(gx3d.GX_CMD_MTX_PUSH) }

// Pop discards n levels of the current stack.
func (b *Builder) Pop(n int) { b.cmd(gx3d.GX_CMD_MTX_POP, uint32(n)&0x3F) }

// Perspective loads a projection matrix; fovy is in degrees.
func (b *Builder) Perspective(fovy, aspect, near, far float32) {
	b.MatrixMode(gx3d.GX_MTX_PROJECTION)
	b.Load(mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far))
}

// Ortho loads an orthographic projection.
func (b *Builder) Ortho(left, right, bottom, top, near, far float32) {
	b.MatrixMode(gx3d.GX_MTX_PROJECTION)
	b.Load(mgl32.Ortho(left, right, bottom, top, near, far))
}

// LookAt loads the camera into the position and vector matrices.
func (b *Builder) LookAt(eye, center, up mgl32.Vec3) {
	b.MatrixMode(gx3d.GX_MTX_POS_VECTOR)
	b.Load(mgl32.LookAtV(eye, center, up))
}

// Rotate multiplies the position and vector matrices by a rotation of
// angle degrees about axis.
func (b *Builder) Rotate(angle float32, axis mgl32.Vec3) {
	if axis.Len() == 0 {
		return
	}
	b.MatrixMode(gx3d.GX_MTX_POS_VECTOR)
	b.Mult(mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize()))
}

func (b *Builder) Translate(x, y, z float32) {
	b.MatrixMode(gx3d.GX_MTX_POS_VECTOR)
	b.cmd(gx3d.GX_CMD_MTX_TRANS, uint32(Fixed(x)), uint32(Fixed(y)), uint32(Fixed(z)))
}

// Scale only affects the position matrix so lighting keeps unit normals.
func (b *Builder) Scale(x, y, z float32) {
	b.MatrixMode(gx3d.GX_MTX_POS_VECTOR)
	b.cmd(gx3d.GX_CMD_MTX_SCALE, uint32(Fixed(x)), uint32(Fixed(y)), uint32(Fixed(z)))
}

func (b *Builder) PolygonAttr(attr uint32) { b.cmd(gx3d.GX_CMD_POLYGON_ATTR, attr) }

func (b *Builder) Color(rgb15 uint32) { b.cmd(gx3d.GX_CMD_COLOR, rgb15&0x7FFF) }

func (b *Builder) Normal(n mgl32.Vec3) {
	b.cmd(gx3d.GX_CMD_NORMAL, Fixed10(n[0])|Fixed10(n[1])<<10|Fixed10(n[2])<<20)
}

func (b *Builder) TexCoord(s, t float32) {
	b.cmd(gx3d.GX_CMD_TEXCOORD, uint32(uint16(int16(s*16)))|uint32(uint16(int16(t*16)))<<16)
}

// TexImage selects the texture for following polygons; 0 disables it.
func (b *Builder) TexImage(param uint32) { b.cmd(gx3d.GX_CMD_TEXIMAGE_PARAM, param) }

// Vertex submits a VTX_16 vertex in model units.
func (b *Builder) Vertex(x, y, z float32) {
	b.cmd(gx3d.GX_CMD_VTX_16,
		uint32(uint16(Fixed16(x)))|uint32(uint16(Fixed16(y)))<<16,
		uint32(uint16(Fixed16(z))))
}

func (b *Builder) Begin(prim uint32) { b.cmd(gx3d.GX_CMD_BEGIN_VTXS, prim&3) }
func (b *Builder) End()              { b.cmd(gx3d.GX_CMD_END_VTXS) }

// Light sets direction and colour of light i (0-3). The direction goes
// through the vector matrix, so set it after the camera.
func (b *Builder) Light(i int, dir mgl32.Vec3, rgb15 uint32) {
	dir = dir.Normalize()
	idx := uint32(i&3) << 30
	b.cmd(gx3d.GX_CMD_LIGHT_VECTOR, Fixed10(dir[0])|Fixed10(dir[1])<<10|Fixed10(dir[2])<<20|idx)
	b.cmd(gx3d.GX_CMD_LIGHT_COLOR, rgb15&0x7FFF|idx)
}

// Material sets the four reflectances. With setVertexColor the diffuse
// colour also becomes the vertex colour.
func (b *Builder) Material(diffuse, ambient, specular, emission uint32, setVertexColor bool) {
	difAmb := diffuse&0x7FFF | (ambient&0x7FFF)<<16
	if setVertexColor {
		difAmb |= 1 << 15
	}
	b.cmd(gx3d.GX_CMD_DIF_AMB, difAmb)
	b.cmd(gx3d.GX_CMD_SPE_EMI, specular&0x7FFF|(emission&0x7FFF)<<16)
}

// Viewport sets the screen rectangle, y1 counted from the bottom.
func (b *Builder) Viewport(x1, y1, x2, y2 uint8) {
	b.cmd(gx3d.GX_CMD_VIEWPORT, uint32(x1)|uint32(y1)<<8|uint32(x2)<<16|uint32(y2)<<24)
}

// Flush ends the frame's geometry. attr takes GX_FLUSH_* bits.
func (b *Builder) Flush(attr uint32) {
	b.cmd(gx3d.GX_CMD_SWAP_BUFFERS, attr)
	b.mode = math.MaxUint32
}
