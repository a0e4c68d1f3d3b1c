package main

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/intuitionamiga/gx3d"
	"github.com/intuitionamiga/gx3d/internal/scene"
	"github.com/intuitionamiga/gx3d/internal/texconv"
)

// demoScene spins a lit cube over a translucent chequered floor.
type demoScene struct {
	cube     scene.Mesh
	floorTex uint32
}

func newDemoScene(vram texconv.VRAMWriter) *demoScene {
	floor := texconv.Checker(32, 8, uint16(0x8000|scene.RGB15(28, 28, 30)), uint16(0x8000|scene.RGB15(12, 14, 20)))
	floor.Upload(vram, 0)

	return &demoScene{floorTex: floor.Param(0, true), cube: scene.Cube(0.6, [6]uint32{
		scene.RGB15(31, 8, 8),
		scene.RGB15(8, 31, 8),
		scene.RGB15(8, 8, 31),
		scene.RGB15(31, 31, 8),
		scene.RGB15(31, 8, 31),
		scene.RGB15(8, 31, 31),
	})}
}

func (s *demoScene) Draw(b *scene.Builder, frame int) (uint32, error) {
	angle := float32(frame % 360)

	b.Perspective(55, float32(screenW)/screenH, 0.25, 32)
	b.LookAt(mgl32.Vec3{0, 1.2, 3.5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	b.Light(0, mgl32.Vec3{-0.4, -0.6, -1}, scene.RGB15(31, 31, 31))

	b.PolygonAttr(gx3d.GX_ATTR_FRONT_VISIBLE | gx3d.GX_ATTR_BACK_VISIBLE |
		20<<gx3d.GX_ATTR_ALPHA_SHIFT | 2<<gx3d.GX_ATTR_ID_SHIFT)
	b.TexImage(s.floorTex)
	b.Color(scene.RGB15(31, 31, 31))
	b.Begin(gx3d.GX_PRIM_QUADS)
	b.TexCoord(0, 128)
	b.Vertex(-2, -0.8, 2)
	b.TexCoord(128, 128)
	b.Vertex(2, -0.8, 2)
	b.TexCoord(128, 0)
	b.Vertex(2, -0.8, -2)
	b.TexCoord(0, 0)
	b.Vertex(-2, -0.8, -2)
	b.End()
	b.TexImage(0)

	b.Push()
	b.Rotate(angle, mgl32.Vec3{0, 1, 0})
	b.Rotate(angle*0.5, mgl32.Vec3{1, 0, 0})
	b.PolygonAttr(1 | gx3d.GX_ATTR_FRONT_VISIBLE |
		31<<gx3d.GX_ATTR_ALPHA_SHIFT | 1<<gx3d.GX_ATTR_ID_SHIFT)
	b.Draw(s.cube, true)
	b.Pop(1)

	return 0, nil
}
