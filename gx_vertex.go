package gx3d

// Vertex is one vertex as it moves through assembly, clipping and
// projection.
type Vertex struct {
	// Clip space, 20.12
	Position [4]int32

	// 5-bit channels scaled by 1<<12 with a +0xFFF bias
	Color [3]int32

	// 12.4
	TexCoords [2]int16

	// Set on vertices synthesised by clipping; such vertices are never
	// shared with the next strip polygon.
	Clipped bool

	// Filled at commit time
	FinalPosition [2]int32 // X & 0x1FF, Y & 0xFF
	FinalColor    [3]int32 // 9-bit
	HiresPosition [2]int32 // 4 extra fractional bits
}

// VertexProcessor holds the per-vertex attribute state set by the colour,
// normal, texture and material commands.
type VertexProcessor struct {
	CurVertex [3]int16

	VertexColor  [3]uint8
	Normal       [3]int16
	RawTexCoords [2]int16
	TexCoords    [2]int16

	TexParam   uint32
	TexPalette uint32

	MatDiffuse  [3]uint32
	MatAmbient  [3]uint32
	MatSpecular [3]uint32
	MatEmission [3]uint32

	UseShininessTable bool
	ShininessTable    [128]uint8

	LightDirection [4][3]int16
	LightColor     [4][3]uint8
}

// Reset clears all attribute state.
func (vp *VertexProcessor) Reset() {
	*vp = VertexProcessor{}
}

// signExtend10 interprets the low ten bits of v as a signed value.
func signExtend10(v uint32) int16 {
	return int16(uint16(v&0x3FF)<<6) >> 6
}

func unpackColor5(v uint32) [3]uint32 {
	return [3]uint32{v & 0x1F, (v >> 5) & 0x1F, (v >> 10) & 0x1F}
}

func (vp *VertexProcessor) SetColor(param uint32) {
	c := unpackColor5(param)
	vp.VertexColor = [3]uint8{uint8(c[0]), uint8(c[1]), uint8(c[2])}
}

// SetNormal latches a 1.9 normal. Lighting runs separately.
func (vp *VertexProcessor) SetNormal(param uint32) {
	vp.Normal[0] = signExtend10(param)
	vp.Normal[1] = signExtend10(param >> 10)
	vp.Normal[2] = signExtend10(param >> 20)
}

// SetTexCoord latches 12.4 coordinates. In texcoord generation mode 1 they
// are multiplied by the texture matrix right away.
func (vp *VertexProcessor) SetTexCoord(param uint32, tex *Matrix) {
	vp.RawTexCoords[0] = int16(param)
	vp.RawTexCoords[1] = int16(param >> 16)
	if vp.TexParam>>30 == GX_TEXGEN_TEXCOORD {
		s := int64(vp.RawTexCoords[0])
		t := int64(vp.RawTexCoords[1])
		vp.TexCoords[0] = int16((s*int64(tex[0]) + t*int64(tex[4]) + int64(tex[8]) + int64(tex[12])) >> 12)
		vp.TexCoords[1] = int16((s*int64(tex[1]) + t*int64(tex[5]) + int64(tex[9]) + int64(tex[13])) >> 12)
	} else {
		vp.TexCoords = vp.RawTexCoords
	}
}

// Vertex position commands. Each updates some or all of CurVertex.

func (vp *VertexProcessor) SetVertex16(p0, p1 uint32) {
	vp.CurVertex[0] = int16(p0)
	vp.CurVertex[1] = int16(p0 >> 16)
	vp.CurVertex[2] = int16(p1)
}

func (vp *VertexProcessor) SetVertex10(p uint32) {
	vp.CurVertex[0] = int16((p & 0x3FF) << 6)
	vp.CurVertex[1] = int16(((p >> 10) & 0x3FF) << 6)
	vp.CurVertex[2] = int16(((p >> 20) & 0x3FF) << 6)
}

func (vp *VertexProcessor) SetVertexXY(p uint32) {
	vp.CurVertex[0] = int16(p)
	vp.CurVertex[1] = int16(p >> 16)
}

func (vp *VertexProcessor) SetVertexXZ(p uint32) {
	vp.CurVertex[0] = int16(p)
	vp.CurVertex[2] = int16(p >> 16)
}

func (vp *VertexProcessor) SetVertexYZ(p uint32) {
	vp.CurVertex[1] = int16(p)
	vp.CurVertex[2] = int16(p >> 16)
}

// SetVertexDiff adds signed 10-bit deltas (units of 1/4096) to the
// previous vertex.
func (vp *VertexProcessor) SetVertexDiff(p uint32) {
	vp.CurVertex[0] += signExtend10(p)
	vp.CurVertex[1] += signExtend10(p >> 10)
	vp.CurVertex[2] += signExtend10(p >> 20)
}

func (vp *VertexProcessor) SetDiffuseAmbient(p uint32) {
	vp.MatDiffuse = unpackColor5(p)
	vp.MatAmbient = unpackColor5(p >> 16)
	if p&0x8000 != 0 {
		vp.VertexColor = [3]uint8{uint8(vp.MatDiffuse[0]), uint8(vp.MatDiffuse[1]), uint8(vp.MatDiffuse[2])}
	}
}

func (vp *VertexProcessor) SetSpecularEmission(p uint32) {
	vp.MatSpecular = unpackColor5(p)
	vp.MatEmission = unpackColor5(p >> 16)
	vp.UseShininessTable = p&0x8000 != 0
}

// SetLightVector stores a light direction already multiplied by the
// vector matrix.
func (vp *VertexProcessor) SetLightVector(p uint32, vec *Matrix) {
	l := p >> 30
	x := int64(signExtend10(p))
	y := int64(signExtend10(p >> 10))
	z := int64(signExtend10(p >> 20))
	vp.LightDirection[l][0] = int16((x*int64(vec[0]) + y*int64(vec[4]) + z*int64(vec[8])) >> 12)
	vp.LightDirection[l][1] = int16((x*int64(vec[1]) + y*int64(vec[5]) + z*int64(vec[9])) >> 12)
	vp.LightDirection[l][2] = int16((x*int64(vec[2]) + y*int64(vec[6]) + z*int64(vec[10])) >> 12)
}

func (vp *VertexProcessor) SetLightColor(p uint32) {
	l := p >> 30
	c := unpackColor5(p)
	vp.LightColor[l] = [3]uint8{uint8(c[0]), uint8(c[1]), uint8(c[2])}
}

// SetShininess loads the 128-entry table from 32 parameter words.
func (vp *VertexProcessor) SetShininess(params []uint32) {
	for i, p := range params {
		vp.ShininessTable[i*4+0] = uint8(p)
		vp.ShininessTable[i*4+1] = uint8(p >> 8)
		vp.ShininessTable[i*4+2] = uint8(p >> 16)
		vp.ShininessTable[i*4+3] = uint8(p >> 24)
	}
}

// TransformVertex produces the clip space vertex for CurVertex.
func (vp *VertexProcessor) TransformVertex(me *MatrixEngine) Vertex {
	x := int64(vp.CurVertex[0])
	y := int64(vp.CurVertex[1])
	z := int64(vp.CurVertex[2])

	var v Vertex
	v.Position = me.ClipMatrix().Transform(x, y, z, 0x1000)
	for i := 0; i < 3; i++ {
		v.Color[i] = applyColorBias(int32(vp.VertexColor[i]) << 12)
	}

	if vp.TexParam>>30 == GX_TEXGEN_VERTEX {
		tex := &me.Tex
		v.TexCoords[0] = int16(((x*int64(tex[0]) + y*int64(tex[4]) + z*int64(tex[8])) >> 24) + int64(vp.RawTexCoords[0]))
		v.TexCoords[1] = int16(((x*int64(tex[1]) + y*int64(tex[5]) + z*int64(tex[9])) >> 24) + int64(vp.RawTexCoords[1]))
	} else {
		v.TexCoords = vp.TexCoords
	}
	return v
}
