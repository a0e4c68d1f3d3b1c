package gx3d

import "encoding/binary"

// VRAMReader gives the rasteriser read access to one VRAM space. Texture
// data lives in a 512 KiB space (four 128 KiB slots), palettes in a
// 128 KiB space. Addresses are byte offsets into that space; bank mapping
// is the caller's business.
type VRAMReader interface {
	Read8(addr uint32) uint8
	Read16(addr uint32) uint16
	Read32(addr uint32) uint32
}

// FlatVRAM is a VRAMReader over a plain little-endian byte slice whose
// length is a power of two. Addresses wrap.
type FlatVRAM struct {
	Data []byte
	mask uint32
}

// NewFlatVRAM allocates size bytes. size must be a power of two.
func NewFlatVRAM(size int) *FlatVRAM {
	return &FlatVRAM{Data: make([]byte, size), mask: uint32(size - 1)}
}

func (v *FlatVRAM) Read8(addr uint32) uint8 { return v.Data[addr&v.mask] }

func (v *FlatVRAM) Read16(addr uint32) uint16 {
	a := addr & v.mask &^ 1
	return binary.LittleEndian.Uint16(v.Data[a:])
}

func (v *FlatVRAM) Read32(addr uint32) uint32 {
	a := addr & v.mask &^ 3
	return binary.LittleEndian.Uint32(v.Data[a:])
}

func (v *FlatVRAM) Write8(addr uint32, val uint8) { v.Data[addr&v.mask] = val }

func (v *FlatVRAM) Write16(addr uint32, val uint16) {
	binary.LittleEndian.PutUint16(v.Data[addr&v.mask&^1:], val)
}

func (v *FlatVRAM) Write32(addr uint32, val uint32) {
	binary.LittleEndian.PutUint32(v.Data[addr&v.mask&^3:], val)
}

// wrapTexCoord applies clamp, repeat or mirrored repeat to a texel
// coordinate.
func wrapTexCoord(c, size int32, repeat, flip bool) int32 {
	if !repeat {
		return min(max(c, 0), size-1)
	}
	if flip && c&size != 0 {
		return (size - 1) - (c & (size - 1))
	}
	return c & (size - 1)
}

// blend5 mixes two 15-bit colours channel by channel as (a*wa + b*wb) >> shift.
func blend5(c0, c1 uint16, w0, w1 uint32, shift uint) uint16 {
	r0, g0, b0 := uint32(c0)&0x1F, uint32(c0)&0x3E0, uint32(c0)&0x7C00
	r1, g1, b1 := uint32(c1)&0x1F, uint32(c1)&0x3E0, uint32(c1)&0x7C00
	r := (r0*w0 + r1*w1) >> shift
	g := ((g0*w0 + g1*w1) >> shift) & 0x3E0
	b := ((b0*w0 + b1*w1) >> shift) & 0x7C00
	return uint16(r | g | b)
}

// TextureLookup samples the texture described by texParam/texPal at the
// 12.4 coordinates (s, t). It returns a 15-bit colour and a 5-bit alpha.
func TextureLookup(tex, pal VRAMReader, texParam, texPal uint32, s, t int16) (color uint16, alpha uint8) {
	vramaddr := (texParam & 0xFFFF) << 3
	width := int32(8) << ((texParam >> 20) & 7)
	height := int32(8) << ((texParam >> 23) & 7)

	ss := wrapTexCoord(int32(s>>4), width, texParam&(1<<16) != 0, texParam&(1<<18) != 0)
	tt := wrapTexCoord(int32(t>>4), height, texParam&(1<<17) != 0, texParam&(1<<19) != 0)
	texel := uint32(tt*width + ss)

	alpha0 := uint8(31)
	if texParam&(1<<29) != 0 {
		alpha0 = 0
	}
	indexed := func(pixel uint32) (uint16, uint8) {
		c := pal.Read16(texPal<<4 + pixel<<1)
		if pixel == 0 {
			return c, alpha0
		}
		return c, 31
	}

	switch (texParam >> 26) & 7 {
	case GX_TEX_A3I5:
		pixel := uint32(tex.Read8(vramaddr + texel))
		color = pal.Read16(texPal<<4 + (pixel&0x1F)<<1)
		alpha = uint8((pixel>>3)&0x1C + pixel>>6)

	case GX_TEX_4COLOR:
		pixel := uint32(tex.Read8(vramaddr+texel>>2)>>((ss&3)<<1)) & 3
		color = pal.Read16(texPal<<3 + pixel<<1)
		alpha = 31
		if pixel == 0 {
			alpha = alpha0
		}

	case GX_TEX_16COLOR:
		pixel := uint32(tex.Read8(vramaddr + texel>>1))
		if ss&1 != 0 {
			pixel >>= 4
		} else {
			pixel &= 0xF
		}
		color, alpha = indexed(pixel)

	case GX_TEX_256COLOR:
		color, alpha = indexed(uint32(tex.Read8(vramaddr + texel)))

	case GX_TEX_COMPRESSED:
		color, alpha = compressedTexel(tex, pal, vramaddr, texPal, ss, tt, width)

	case GX_TEX_A5I3:
		pixel := uint32(tex.Read8(vramaddr + texel))
		color = pal.Read16(texPal<<4 + (pixel&7)<<1)
		alpha = uint8(pixel >> 3)

	case GX_TEX_DIRECT:
		color = tex.Read16(vramaddr + texel<<1)
		if color&0x8000 != 0 {
			alpha = 31
		}
	}
	return color, alpha
}

// compressedTexel decodes 4x4 block compression. Each block is 32 bits of
// 2-bit texel codes in slot 0 or 2, plus a 16-bit palette info word in
// slot 1 at the matching position.
func compressedTexel(tex, pal VRAMReader, vramaddr, texPal uint32, s, t, width int32) (uint16, uint8) {
	vramaddr += uint32((t&0x3FC)*(width>>2) + (s & 0x3FC))
	vramaddr += uint32(t & 3)
	vramaddr &= 0x7FFFF

	slot1 := 0x20000 + (vramaddr&0x1FFFC)>>1
	if vramaddr >= 0x40000 {
		slot1 += 0x10000
	}

	var code uint32
	if vramaddr < 0x20000 || vramaddr >= 0x40000 {
		code = uint32(tex.Read8(vramaddr)>>(2*(s&3))) & 3
	}

	palinfo := uint32(tex.Read16(slot1))
	base := texPal<<4 + (palinfo&0x3FFF)<<2
	mode := palinfo >> 14

	switch code {
	case 0:
		return pal.Read16(base), 31
	case 1:
		return pal.Read16(base + 2), 31
	case 2:
		switch mode {
		case 1:
			return blend5(pal.Read16(base), pal.Read16(base+2), 1, 1, 1), 31
		case 3:
			return blend5(pal.Read16(base), pal.Read16(base+2), 5, 3, 3), 31
		}
		return pal.Read16(base + 4), 31
	default:
		switch mode {
		case 2:
			return pal.Read16(base + 6), 31
		case 3:
			return blend5(pal.Read16(base), pal.Read16(base+2), 3, 5, 3), 31
		}
		return 0, 0
	}
}
