package gx3d

// boxTestFaces lists the cube corners of each face in winding order.
var boxTestFaces = [6][4]int{
	{0, 1, 2, 3}, // -Z
	{4, 5, 6, 7}, // +Z
	{0, 3, 4, 5}, // -X
	{1, 2, 7, 6}, // +X
	{0, 1, 6, 5}, // -Y
	{2, 3, 4, 7}, // +Y
}

// boxTest sets GXSTAT bit 1 when any face of the box survives clipping.
// The box is given as origin and size, 16-bit 1.3.12 each, packed
// x|y<<16, z|w<<16, h|d<<16.
func (e *GXEngine) boxTest(params []uint32) {
	e.gxStat &^= GX_STAT_BOXTEST_RESULT

	x0 := int64(int16(params[0]))
	y0 := int64(int16(params[0] >> 16))
	z0 := int64(int16(params[1]))
	x1 := x0 + int64(int16(params[1]>>16))
	y1 := y0 + int64(int16(params[2]))
	z1 := z0 + int64(int16(params[2]>>16))

	corners := [8][3]int64{
		{x0, y0, z0}, {x1, y0, z0}, {x1, y1, z0}, {x0, y1, z0},
		{x0, y1, z1}, {x0, y0, z1}, {x1, y0, z1}, {x1, y1, z1},
	}

	clip := e.mtx.ClipMatrix()
	var cube [8]Vertex
	for i, c := range corners {
		cube[i].Position = clip.Transform(c[0], c[1], c[2], 0x1000)
	}

	farClip := e.asm.CurAttr&GX_ATTR_FAR_CLIP != 0
	for _, f := range boxTestFaces {
		var face clipBuffer
		for i, idx := range f {
			face[i] = cube[idx]
		}
		if clipPolygon(&face, 4, 0, farClip, false) > 0 {
			e.gxStat |= GX_STAT_BOXTEST_RESULT
			return
		}
	}
}

// posTest loads a new current vertex and stores its clip-space position.
func (e *GXEngine) posTest(params []uint32) {
	e.vtx.CurVertex[0] = int16(params[0])
	e.vtx.CurVertex[1] = int16(params[0] >> 16)
	e.vtx.CurVertex[2] = int16(params[1])

	v := &e.vtx.CurVertex
	e.posTestResult = e.mtx.ClipMatrix().Transform(int64(v[0]), int64(v[1]), int64(v[2]), 0x1000)
}

// vecTest transforms a 10-bit normal by the directional matrix. Results
// are 4.12 with bit 12 extended into the sign.
func (e *GXEngine) vecTest(p uint32) {
	n := [3]int32{
		int32(signExtend10(p)),
		int32(signExtend10(p >> 10)),
		int32(signExtend10(p >> 20)),
	}
	m := &e.mtx.Vec
	for i := 0; i < 3; i++ {
		r := (n[0]*m[i] + n[1]*m[4+i] + n[2]*m[8+i]) >> 9
		if r&0x1000 != 0 {
			r |= 0xF000
		}
		e.vecTestResult[i] = int16(r)
	}
}
