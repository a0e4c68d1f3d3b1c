package gx3d

import "testing"

func TestQuirks_ColorBias(t *testing.T) {
	cases := []struct{ in, want int32 }{
		{0x1F000, 0x1FFFF},
		{0x12345, 0x12FFF},
		{0, 0xFFF},
	}
	for _, tc := range cases {
		if got := applyColorBias(tc.in); got != tc.want {
			t.Errorf("applyColorBias(%#x) = %#x, want %#x", tc.in, got, tc.want)
		}
	}
}

func TestQuirks_FinalColor(t *testing.T) {
	if got := finalColor(0x1FFFF); got != 0x1FF {
		t.Fatalf("full channel = %#x, want 0x1FF", got)
	}
	if got := finalColor(0xFFF); got != 0 {
		t.Fatalf("zero channel = %#x, want 0", got)
	}
	if got := finalColor(0x1FFF); got != 0x1F {
		t.Fatalf("channel 1 = %#x, want 0x1F", got)
	}
}

func TestQuirks_CullNormalReduce(t *testing.T) {
	x, y, z := cullNormalReduce(1<<40, 5, -(1 << 35))
	if x != 1<<28 || y != 0 || z != -(1<<23) {
		t.Fatalf("got (%#x, %d, %#x)", x, y, z)
	}

	// values already in range are untouched
	x, y, z = cullNormalReduce(-7, 1<<30, 3)
	if x != -7 || y != 1<<30 || z != 3 {
		t.Fatalf("in-range values changed: %d %d %d", x, y, z)
	}
}

func TestQuirks_TruncateW(t *testing.T) {
	if got := truncateW(0x12345678); got != 0x345678 {
		t.Fatalf("truncateW = %#x", got)
	}
}

func TestQuirks_ProjectAxis(t *testing.T) {
	cases := []struct {
		name                      string
		pos, w, extent, origin    int32
		hires                     bool
		want                      int32
	}{
		{"centre", 0, 0x1000, 256, 0, false, 128},
		{"left edge", -0x1000, 0x1000, 256, 0, false, 0},
		{"origin offset", 0, 0x1000, 128, 64, false, 128},
		{"hires", 0, 0x1000, 256, 0, true, 2048},
		{"wide W", 0, 0x20000, 256, 0, false, 128},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := projectAxis(tc.pos, tc.w, tc.extent, tc.origin, tc.hires); got != tc.want {
				t.Fatalf("got %d, want %d", got, tc.want)
			}
		})
	}
}

func TestQuirks_NormalizeW(t *testing.T) {
	cases := []struct {
		w              uint32
		norm, shifted  int32
	}{
		{0x1234, 0x1234, 0x1234},
		{0x12345, 0x91A3, 0x12346},
		// rounding up overflows 16 bits and saturates
		{0x1FFFF, 0xFFFF, 0x1FFFE},
	}
	for _, tc := range cases {
		norm, shifted := normalizeW(tc.w, wSize(tc.w))
		if norm != tc.norm || shifted != tc.shifted {
			t.Errorf("normalizeW(%#x) = %#x, %#x; want %#x, %#x", tc.w, norm, shifted, tc.norm, tc.shifted)
		}
	}
}

func TestQuirks_Depth(t *testing.T) {
	cases := []struct {
		name       string
		z, w, want int32
	}{
		{"near", 0, 0x1000, 0x7FFE00},
		{"far plane", 0x1000, 0x1000, 0xFFFE00},
		{"behind near plane clamps", -0x2000, 0x1000, 0},
		{"zero W", 0x100, 0, 0x7FFE00},
	}
	for _, tc := range cases {
		if got := zBufferDepth(tc.z, tc.w); got != tc.want {
			t.Errorf("%s: zBufferDepth = %#x, want %#x", tc.name, got, tc.want)
		}
	}

	if wBufferDepth(-5) != 0 || wBufferDepth(0x2000000) != 0xFFFFFF {
		t.Error("wBufferDepth must clamp to 24 bits")
	}
	if depthFromRegister(0x7FFF) != 0xFFFFFF || depthFromRegister(0) != 0x1FF {
		t.Error("depthFromRegister expansion")
	}
}

func TestQuirks_PolygonClasses(t *testing.T) {
	const a3i5 = GX_TEX_A3I5 << 26
	cases := []struct {
		name     string
		attr     uint32
		texParam uint32
		want     bool
	}{
		{"half alpha", 15 << GX_ATTR_ALPHA_SHIFT, 0, true},
		{"opaque", 31 << GX_ATTR_ALPHA_SHIFT, 0, false},
		{"wireframe", 0, 0, false},
		{"alpha texture", 31 << GX_ATTR_ALPHA_SHIFT, a3i5, true},
		{"alpha texture in decal", 31<<GX_ATTR_ALPHA_SHIFT | GX_MODE_DECAL<<GX_ATTR_MODE_SHIFT, a3i5, false},
	}
	for _, tc := range cases {
		if got := isTranslucent(tc.attr, tc.texParam); got != tc.want {
			t.Errorf("%s: isTranslucent = %v", tc.name, got)
		}
	}

	if !isShadowMask(0x30) || isShadowMask(0x30|1<<GX_ATTR_ID_SHIFT) {
		t.Error("shadow mask is shadow mode with ID 0")
	}
	if !isShadow(0x30|1<<GX_ATTR_ID_SHIFT) || isShadow(0x30) {
		t.Error("shadow is shadow mode with a non-zero ID")
	}
}

func TestQuirks_RGB15To6(t *testing.T) {
	cases := []struct {
		c       uint32
		r, g, b uint32
	}{
		{0x7FFF, 63, 63, 63},
		{0, 0, 0, 0},
		{0x001F, 63, 0, 0},
		{0x0001, 3, 0, 0},
		{0x7C00, 0, 0, 63},
	}
	for _, tc := range cases {
		r, g, b := rgb15To6(tc.c)
		if r != tc.r || g != tc.g || b != tc.b {
			t.Errorf("rgb15To6(%#x) = %d,%d,%d", tc.c, r, g, b)
		}
	}
}
