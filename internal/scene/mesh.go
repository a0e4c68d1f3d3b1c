package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/intuitionamiga/gx3d"
)

// Face is one quad of a mesh with a flat normal and colour.
type Face struct {
	Corners [4]mgl32.Vec3
	Normal  mgl32.Vec3
	Color   uint32 // RGB15
}

// Mesh is a list of quads drawn with one BEGIN_VTXS.
type Mesh struct {
	Faces []Face
}

// Cube returns an axis aligned cube of the given half size, counter
// clockwise seen from outside.
func Cube(half float32, colors [6]uint32) Mesh {
	h := half
	v := func(x, y, z float32) mgl32.Vec3 { return mgl32.Vec3{x * h, y * h, z * h} }
	return Mesh{Faces: []Face{
		{[4]mgl32.Vec3{v(-1, -1, 1), v(1, -1, 1), v(1, 1, 1), v(-1, 1, 1)}, mgl32.Vec3{0, 0, 1}, colors[0]},
		{[4]mgl32.Vec3{v(1, -1, -1), v(-1, -1, -1), v(-1, 1, -1), v(1, 1, -1)}, mgl32.Vec3{0, 0, -1}, colors[1]},
		{[4]mgl32.Vec3{v(1, -1, 1), v(1, -1, -1), v(1, 1, -1), v(1, 1, 1)}, mgl32.Vec3{1, 0, 0}, colors[2]},
		{[4]mgl32.Vec3{v(-1, -1, -1), v(-1, -1, 1), v(-1, 1, 1), v(-1, 1, -1)}, mgl32.Vec3{-1, 0, 0}, colors[3]},
		{[4]mgl32.Vec3{v(-1, 1, 1), v(1, 1, 1), v(1, 1, -1), v(-1, 1, -1)}, mgl32.Vec3{0, 1, 0}, colors[4]},
		{[4]mgl32.Vec3{v(-1, -1, -1), v(1, -1, -1), v(1, -1, 1), v(-1, -1, 1)}, mgl32.Vec3{0, -1, 0}, colors[5]},
	}}
}

// Draw emits the mesh as quads. With lit set each face sends its normal
// after the colour, otherwise only the colour.
func (b *Builder) Draw(m Mesh, lit bool) {
	b.Begin(gx3d.GX_PRIM_QUADS)
	for _, f := range m.Faces {
		if lit {
			b.Material(f.Color, f.Color>>1&0x3DEF, 0, 0, true)
			b.Normal(f.Normal)
		} else {
			b.Color(f.Color)
		}
		for _, c := range f.Corners {
			b.Vertex(c[0], c[1], c[2])
		}
	}
	b.End()
}
