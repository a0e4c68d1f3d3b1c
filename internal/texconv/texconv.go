// Package texconv converts ordinary images into direct-colour GX textures
// and the TEXIMAGE_PARAM word that describes them.
package texconv

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/intuitionamiga/gx3d"
)

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("image has no pixels")

// Texture is an A1BGR5 direct-colour texture, row-major.
type Texture struct {
	Width, Height int
	Texels        []uint16
}

// VRAMWriter is the write side of texture memory.
type VRAMWriter interface {
	Write16(addr uint32, val uint16)
}

// Options controls conversion.
type Options struct {
	// KeyBelow makes pixels whose channels are all under this value
	// transparent. Zero disables colour keying.
	KeyBelow uint8
	// MaxSize caps the scaled edge length (8..1024).
	MaxSize int
}

// texSize returns the smallest power-of-two edge in 8..limit covering n.
func texSize(n, limit int) int {
	s := 8
	for s < n && s < limit {
		s <<= 1
	}
	return s
}

func sizeShift(n int) uint32 {
	var s uint32
	for 8<<s < n {
		s++
	}
	return s
}

// Load decodes a PNG, BMP or WebP file and converts it.
func Load(path string, o Options) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, o)
}

func Decode(r io.Reader, o Options) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	t, err := FromImage(img, o)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return t, nil
}

// FromImage scales img to power-of-two edges when needed and packs it.
// Pixels below half alpha lose bit 15.
func FromImage(img image.Image, o Options) (*Texture, error) {
	b := img.Bounds()
	if b.Empty() {
		return nil, ErrEmptyImage
	}
	limit := o.MaxSize
	if limit < 8 || limit > 1024 {
		limit = 1024
	}
	w, h := texSize(b.Dx(), limit), texSize(b.Dy(), limit)

	nrgba := image.NewNRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(nrgba, nrgba.Bounds(), img, b.Min, draw.Src)
	} else {
		xdraw.ApproxBiLinear.Scale(nrgba, nrgba.Bounds(), img, b, xdraw.Src, nil)
	}

	t := &Texture{Width: w, Height: h, Texels: make([]uint16, w*h)}
	for i := range t.Texels {
		p := nrgba.Pix[i*4 : i*4+4]
		c := uint16(p[0]>>3) | uint16(p[1]>>3)<<5 | uint16(p[2]>>3)<<10
		keyed := o.KeyBelow > 0 && p[0] < o.KeyBelow && p[1] < o.KeyBelow && p[2] < o.KeyBelow
		if p[3] >= 0x80 && !keyed {
			c |= 0x8000
		}
		t.Texels[i] = c
	}
	return t, nil
}

// Size is the number of VRAM bytes the texture occupies.
func (t *Texture) Size() uint32 { return uint32(len(t.Texels)) * 2 }

// Upload copies the texels to addr, which must be 8-byte aligned.
func (t *Texture) Upload(v VRAMWriter, addr uint32) {
	for i, c := range t.Texels {
		v.Write16(addr+uint32(i)*2, c)
	}
}

// Param builds TEXIMAGE_PARAM for the texture at addr with texcoord
// generation from TEXCOORD.
func (t *Texture) Param(addr uint32, repeat bool) uint32 {
	p := (addr>>3)&0xFFFF |
		sizeShift(t.Width)<<20 | sizeShift(t.Height)<<23 |
		gx3d.GX_TEX_DIRECT<<26 | gx3d.GX_TEXGEN_TEXCOORD<<30
	if repeat {
		p |= 1<<16 | 1<<17
	}
	return p
}

// Bytes returns the texels as little-endian VRAM bytes.
func (t *Texture) Bytes() []byte {
	out := make([]byte, 0, t.Size())
	for _, c := range t.Texels {
		out = append(out, byte(c), byte(c>>8))
	}
	return out
}

// Checker builds a two-colour checkerboard of cell-sized squares.
func Checker(size, cell int, a, b uint16) *Texture {
	t := &Texture{Width: size, Height: size, Texels: make([]uint16, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := a
			if (x/cell+y/cell)&1 != 0 {
				c = b
			}
			t.Texels[y*size+x] = c
		}
	}
	return t
}
