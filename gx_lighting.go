package gx3d

// Lighting runs when a normal is submitted. It may also regenerate texture
// coordinates (generation mode 2), then replaces the vertex colour with the
// lit colour. lightMask is the enable bits of the latched polygon
// attribute. The returned cycle count is one per enabled light, at least
// one.
func (vp *VertexProcessor) Lighting(me *MatrixEngine, lightMask uint32) int32 {
	nx := int64(vp.Normal[0])
	ny := int64(vp.Normal[1])
	nz := int64(vp.Normal[2])

	if vp.TexParam>>30 == GX_TEXGEN_NORMAL {
		tex := &me.Tex
		vp.TexCoords[0] = int16(int64(vp.RawTexCoords[0]) + ((nx*int64(tex[0]) + ny*int64(tex[4]) + nz*int64(tex[8])) >> 21))
		vp.TexCoords[1] = int16(int64(vp.RawTexCoords[1]) + ((nx*int64(tex[1]) + ny*int64(tex[5]) + nz*int64(tex[9])) >> 21))
	}

	vec := &me.Vec
	var n [3]int64
	for i := 0; i < 3; i++ {
		n[i] = (nx*int64(vec[i]) + ny*int64(vec[4+i]) + nz*int64(vec[8+i])) >> 12
	}

	color := vp.MatEmission
	var cycles int32
	for i := 0; i < 4; i++ {
		if lightMask&(1<<i) == 0 {
			continue
		}
		l := &vp.LightDirection[i]
		lc := &vp.LightColor[i]

		diffuse := diffuseLevel(l, n)
		shine := shineLevel(l, n)
		if vp.UseShininessTable {
			shine = int64(vp.ShininessTable[shine>>1])
		}

		for ch := 0; ch < 3; ch++ {
			c := int64(lc[ch])
			color[ch] += uint32((int64(vp.MatSpecular[ch]) * c * shine) >> 13)
			color[ch] += uint32((int64(vp.MatDiffuse[ch]) * c * diffuse) >> 13)
			color[ch] += uint32((int64(vp.MatAmbient[ch]) * c) >> 5)
		}
		cycles++
	}

	for ch := 0; ch < 3; ch++ {
		vp.VertexColor[ch] = uint8(min(color[ch], 31))
	}
	return max(cycles, 1)
}

// diffuseLevel is -(L.N), saturated to 0..255.
func diffuseLevel(l *[3]int16, n [3]int64) int64 {
	d := -(int64(l[0])*n[0] + int64(l[1])*n[1] + int64(l[2])*n[2]) >> 10
	return min(max(d, 0), 255)
}

// shineLevel uses the half vector between the light and a viewer looking
// down -Z. Values past 255 mirror back and wrap to eight bits before
// squaring. The result is 2*s*s-1 in 8-bit units, floored at 0.
func shineLevel(l *[3]int16, n [3]int64) int64 {
	s := -((int64(l[0]>>1)*n[0] + int64(l[1]>>1)*n[1] + ((int64(l[2])-0x200)>>1)*n[2]) >> 10)
	if s < 0 {
		s = 0
	} else if s > 255 {
		s = (0x100 - s) & 0xFF
	}
	s = ((s * s) >> 7) - 0x100
	return max(s, 0)
}
