package gx3d

// clipSegment returns the point where the edge from vin (outside) to vout
// (inside) crosses the plane pos[comp] == plane*W. Colour and texture
// coordinates are only interpolated when attribs is set.
func clipSegment(comp int, plane int64, vin, vout *Vertex, attribs bool) Vertex {
	factorNum := int64(vin.Position[3]) - plane*int64(vin.Position[comp])
	factorDen := factorNum - (int64(vout.Position[3]) - plane*int64(vout.Position[comp]))

	lerp := func(a, b int32) int32 {
		return a + int32(((int64(b)-int64(a))*factorNum)/factorDen)
	}

	var mid Vertex
	for i := 0; i < 3; i++ {
		if i != comp {
			mid.Position[i] = lerp(vin.Position[i], vout.Position[i])
		}
	}
	mid.Position[3] = lerp(vin.Position[3], vout.Position[3])
	mid.Position[comp] = int32(plane) * mid.Position[3]

	if attribs {
		for i := 0; i < 3; i++ {
			mid.Color[i] = lerp(vin.Color[i], vout.Color[i])
		}
		mid.TexCoords[0] = int16(lerp(int32(vin.TexCoords[0]), int32(vout.TexCoords[0])))
		mid.TexCoords[1] = int16(lerp(int32(vin.TexCoords[1]), int32(vout.TexCoords[1])))
	}

	mid.Clipped = true
	return mid
}

// clipBuffer holds a polygon while it is clipped. A convex quad gains at
// most one vertex per plane; the extra room absorbs self-intersecting
// input, whose surplus vertices are discarded.
type clipBuffer [16]Vertex

// clipAgainstPlane clips against pos[comp] <= W and then pos[comp] >= -W.
// Vertices before clipstart belong to the previous strip polygon and are
// kept as they are. With farClip false a polygon crossing the far plane is
// rejected outright.
func clipAgainstPlane(comp int, verts *clipBuffer, nverts, clipstart int, farClip, attribs bool) int {
	var temp clipBuffer
	c := clipstart
	copy(temp[:clipstart], verts[:clipstart])

	emit := func(dst *clipBuffer, v Vertex) {
		if c < GX_MAX_POLYGON_VERTICES {
			dst[c] = v
			c++
		}
	}

	for i := clipstart; i < nverts; i++ {
		prev := i - 1
		if prev < 0 {
			prev = nverts - 1
		}
		next := i + 1
		if next >= nverts {
			next = 0
		}

		vtx := verts[i]
		if vtx.Position[comp] > vtx.Position[3] {
			if comp == 2 && !farClip {
				return 0
			}
			if vp := &verts[prev]; vp.Position[comp] <= vp.Position[3] {
				emit(&temp, clipSegment(comp, 1, &vtx, vp, attribs))
			}
			if vn := &verts[next]; vn.Position[comp] <= vn.Position[3] {
				emit(&temp, clipSegment(comp, 1, &vtx, vn, attribs))
			}
		} else {
			emit(&temp, vtx)
		}
	}

	nverts = c
	c = clipstart
	for i := clipstart; i < nverts; i++ {
		prev := i - 1
		if prev < 0 {
			prev = nverts - 1
		}
		next := i + 1
		if next >= nverts {
			next = 0
		}

		vtx := temp[i]
		if vtx.Position[comp] < -vtx.Position[3] {
			if vp := &temp[prev]; vp.Position[comp] >= -vp.Position[3] {
				emit(verts, clipSegment(comp, -1, &vtx, vp, attribs))
			}
			if vn := &temp[next]; vn.Position[comp] >= -vn.Position[3] {
				emit(verts, clipSegment(comp, -1, &vtx, vn, attribs))
			}
		} else {
			emit(verts, vtx)
		}
	}

	for i := 0; i < c; i++ {
		for ch := 0; ch < 3; ch++ {
			verts[i].Color[ch] = applyColorBias(verts[i].Color[ch])
		}
	}
	return c
}

// clipPolygon clips in the hardware's order: Z, then Y, then X. A pass
// that leaves fewer than three vertices rejects the polygon. That covers
// the no-survivor case and also drops one- or two-vertex remnants, which
// convex input never produces.
func clipPolygon(verts *clipBuffer, nverts, clipstart int, farClip, attribs bool) int {
	for _, comp := range [3]int{2, 1, 0} {
		nverts = clipAgainstPlane(comp, verts, nverts, clipstart, farClip, attribs)
		if nverts < 3 {
			return 0
		}
	}
	return nverts
}
