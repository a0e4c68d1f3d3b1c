package texconv

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/intuitionamiga/gx3d"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestFromImage_Packing(t *testing.T) {
	img := solid(8, 8, color.NRGBA{0xFF, 0x80, 0x00, 0xFF})
	img.SetNRGBA(1, 0, color.NRGBA{0xFF, 0xFF, 0xFF, 0x10})
	img.SetNRGBA(2, 0, color.NRGBA{4, 4, 4, 0xFF})

	tex, err := FromImage(img, Options{KeyBelow: 16})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 8 || tex.Height != 8 {
		t.Fatalf("size %dx%d", tex.Width, tex.Height)
	}
	if want := uint16(0x8000 | 31 | 16<<5); tex.Texels[0] != want {
		t.Fatalf("texel %#x, want %#x", tex.Texels[0], want)
	}
	if tex.Texels[1]&0x8000 != 0 {
		t.Fatal("low alpha must be transparent")
	}
	if tex.Texels[2]&0x8000 != 0 {
		t.Fatal("near-black must be keyed out")
	}
}

func TestFromImage_ScalesToPowerOfTwo(t *testing.T) {
	tex, err := FromImage(solid(20, 5, color.NRGBA{0, 0, 0xFF, 0xFF}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 32 || tex.Height != 8 {
		t.Fatalf("size %dx%d", tex.Width, tex.Height)
	}
	if tex.Texels[len(tex.Texels)/2] != 0x8000|31<<10 {
		t.Fatalf("texel %#x", tex.Texels[len(tex.Texels)/2])
	}

	tex, err = FromImage(solid(300, 300, color.NRGBA{A: 0xFF}), Options{MaxSize: 64})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 64 {
		t.Fatalf("MaxSize ignored: %d", tex.Width)
	}

	if _, err := FromImage(image.NewNRGBA(image.Rect(0, 0, 0, 0)), Options{}); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("err %v", err)
	}
}

func TestDecode_PNG(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(16, 8, color.NRGBA{0, 0xFF, 0, 0xFF})); err != nil {
		t.Fatal(err)
	}
	tex, err := Decode(&buf, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 16 || tex.Texels[0] != 0x8000|31<<5 {
		t.Fatalf("%dx%d %#x", tex.Width, tex.Height, tex.Texels[0])
	}
	if _, err := Decode(bytes.NewReader([]byte("not an image")), Options{}); err == nil {
		t.Fatal("garbage decodes")
	}
}

func TestParam_RoundTripsThroughLookup(t *testing.T) {
	tex := Checker(16, 4, 0x801F, 0xFC00)
	param := tex.Param(0x100, true)

	if (param>>20)&7 != 1 || (param>>23)&7 != 1 || (param>>26)&7 != gx3d.GX_TEX_DIRECT {
		t.Fatalf("param %#x", param)
	}
	if param&0xFFFF != 0x20 || param&(1<<16) == 0 {
		t.Fatalf("param %#x", param)
	}

	vram := gx3d.NewFlatVRAM(0x1000)
	tex.Upload(vram, 0x100)
	if got := tex.Bytes(); len(got) != int(tex.Size()) || got[0] != 0x1F || got[1] != 0x80 {
		t.Fatalf("bytes % x", got[:2])
	}

	// texel (5,0) is in the second cell; coordinates are 12.4
	c, a := gx3d.TextureLookup(vram, vram, param, 0, 5<<4, 0)
	if c != 0xFC00 || a != 31 {
		t.Fatalf("lookup %#x/%d", c, a)
	}
	// repeat wraps s=21 back to 5
	if c, _ := gx3d.TextureLookup(vram, vram, param, 0, 21<<4, 0); c != 0xFC00 {
		t.Fatalf("repeat lookup %#x", c)
	}
	if c, a := gx3d.TextureLookup(vram, vram, param, 0, 0, 0); c != 0x801F || a != 31 {
		t.Fatalf("lookup %#x/%d", c, a)
	}
}
