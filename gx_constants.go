// gx_constants.go - GX 3D Engine Command, Register and Status Definitions

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine

License: GPLv3 or later

/*
gx_constants.go - GX 3D Engine Command, Register and Status Definitions

Opcode numbers, parameter word counts and execution cycle costs for the
geometry command set, plus the memory-mapped register map and the bit
layout of the status, display control and polygon attribute words.

Fixed-point conventions used throughout the package:
- matrices and vertex positions are signed 20.12
- normals, light vectors and box test vectors are signed 1.9 (10-bit)
- texture coordinates are signed 12.4
- colours are 5 bits per channel on input and 6 bits after expansion
*/

package gx3d

// Screen geometry
const (
	GX_SCREEN_WIDTH  = 256
	GX_SCREEN_HEIGHT = 192

	// Render buffers carry a one pixel border on every side
	GX_SCANLINE_WIDTH     = GX_SCREEN_WIDTH + 2
	GX_NUM_SCANLINES      = GX_SCREEN_HEIGHT + 2
	GX_BUFFER_SIZE        = GX_SCANLINE_WIDTH * GX_NUM_SCANLINES
	GX_FIRST_PIXEL_OFFSET = GX_SCANLINE_WIDTH + 1
)

// Geometry RAM capacity per half
const (
	GX_MAX_VERTICES = 6144
	GX_MAX_POLYGONS = 2048

	// Clipping can grow a quad to ten vertices
	GX_MAX_POLYGON_VERTICES = 10
)

// Command queue depths
const (
	GX_CMD_PIPE_SIZE  = 4
	GX_CMD_FIFO_SIZE  = 256
	GX_CMD_STALL_SIZE = 64
	GX_MAX_PARAMS     = 32
)

// Geometry commands
const (
	GX_CMD_NOP            = 0x00
	GX_CMD_MTX_MODE       = 0x10
	GX_CMD_MTX_PUSH       = 0x11
	GX_CMD_MTX_POP        = 0x12
	GX_CMD_MTX_STORE      = 0x13
	GX_CMD_MTX_RESTORE    = 0x14
	GX_CMD_MTX_IDENTITY   = 0x15
	GX_CMD_MTX_LOAD_4x4   = 0x16
	GX_CMD_MTX_LOAD_4x3   = 0x17
	GX_CMD_MTX_MULT_4x4   = 0x18
	GX_CMD_MTX_MULT_4x3   = 0x19
	GX_CMD_MTX_MULT_3x3   = 0x1A
	GX_CMD_MTX_SCALE      = 0x1B
	GX_CMD_MTX_TRANS      = 0x1C
	GX_CMD_COLOR          = 0x20
	GX_CMD_NORMAL         = 0x21
	GX_CMD_TEXCOORD       = 0x22
	GX_CMD_VTX_16         = 0x23
	GX_CMD_VTX_10         = 0x24
	GX_CMD_VTX_XY         = 0x25
	GX_CMD_VTX_XZ         = 0x26
	GX_CMD_VTX_YZ         = 0x27
	GX_CMD_VTX_DIFF       = 0x28
	GX_CMD_POLYGON_ATTR   = 0x29
	GX_CMD_TEXIMAGE_PARAM = 0x2A
	GX_CMD_PLTT_BASE      = 0x2B
	GX_CMD_DIF_AMB        = 0x30
	GX_CMD_SPE_EMI        = 0x31
	GX_CMD_LIGHT_VECTOR   = 0x32
	GX_CMD_LIGHT_COLOR    = 0x33
	GX_CMD_SHININESS      = 0x34
	GX_CMD_BEGIN_VTXS     = 0x40
	GX_CMD_END_VTXS       = 0x41
	GX_CMD_SWAP_BUFFERS   = 0x50
	GX_CMD_VIEWPORT       = 0x60
	GX_CMD_BOX_TEST       = 0x70
	GX_CMD_POS_TEST       = 0x71
	GX_CMD_VEC_TEST       = 0x72
)

// gxCmdNumParams is the number of parameter words each opcode consumes.
// Zero-parameter commands still occupy one FIFO entry.
var gxCmdNumParams = [256]uint8{
	// 0x00
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x10
	1, 0, 1, 1, 1, 0, 16, 12, 16, 12, 9, 3, 3, 0, 0, 0,
	// 0x20
	1, 1, 1, 2, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0,
	// 0x30
	1, 1, 1, 1, 32, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x40
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x50
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x60
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x70
	3, 2, 1,
}

// gxCmdNumCycles is the execution cost of each opcode once all of its
// parameters have been read.
var gxCmdNumCycles = [256]int32{
	// 0x00
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x10
	1, 17, 36, 17, 36, 19, 34, 30, 35, 31, 28, 22, 22, 0, 0, 0,
	// 0x20
	1, 9, 1, 9, 8, 8, 8, 8, 8, 1, 1, 1, 0, 0, 0, 0,
	// 0x30
	4, 4, 6, 1, 32, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x40
	1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x50
	392, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x60
	1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	// 0x70
	103, 9, 5,
}

// Memory map
const (
	GX_REG_DISP3DCNT       = 0x04000060
	GX_REG_RDLINES_COUNT   = 0x04000320
	GX_REG_EDGE_COLOR      = 0x04000330 // 8 x 16-bit
	GX_REG_ALPHA_TEST_REF  = 0x04000340
	GX_REG_CLEAR_COLOR     = 0x04000350
	GX_REG_CLEAR_DEPTH     = 0x04000354
	GX_REG_CLRIMAGE_OFFSET = 0x04000356
	GX_REG_FOG_COLOR       = 0x04000358
	GX_REG_FOG_OFFSET      = 0x0400035C
	GX_REG_FOG_TABLE       = 0x04000360 // 32 x 8-bit
	GX_REG_TOON_TABLE      = 0x04000380 // 32 x 16-bit
	GX_REG_GXFIFO          = 0x04000400
	GX_REG_GXFIFO_END      = 0x0400043F
	GX_REG_CMD_PORT_BASE   = 0x04000440
	GX_REG_CMD_PORT_END    = 0x040005CB
	GX_REG_GXSTAT          = 0x04000600
	GX_REG_RAM_COUNT       = 0x04000604
	GX_REG_DISP_1DOT_DEPTH = 0x04000610
	GX_REG_POS_RESULT      = 0x04000620 // 4 x 32-bit
	GX_REG_VEC_RESULT      = 0x04000630 // 3 x 16-bit
	GX_REG_CLIPMTX_RESULT  = 0x04000640 // 16 x 32-bit
	GX_REG_VECMTX_RESULT   = 0x04000680 // 9 x 32-bit
	GX_REG_END             = 0x040006A3
)

// GXSTAT bits
const (
	GX_STAT_TEST_BUSY      = 1 << 0
	GX_STAT_BOXTEST_RESULT = 1 << 1
	GX_STAT_POS_SP_SHIFT   = 8
	GX_STAT_POS_SP_MASK    = 0x1F << GX_STAT_POS_SP_SHIFT
	GX_STAT_PROJ_SP        = 1 << 13
	GX_STAT_MTX_BUSY       = 1 << 14
	GX_STAT_MTX_OVERFLOW   = 1 << 15
	GX_STAT_FIFO_LEVEL     = 16
	GX_STAT_FIFO_FULL      = 1 << 24
	GX_STAT_FIFO_LESS_HALF = 1 << 25
	GX_STAT_FIFO_EMPTY     = 1 << 26
	GX_STAT_BUSY           = 1 << 27
	GX_STAT_IRQ_SHIFT      = 30
	GX_STAT_WRITE_MASK     = 0xC0000000
)

// GXFIFO IRQ conditions (GXSTAT bits 30-31)
const (
	GX_IRQ_NEVER     = 0
	GX_IRQ_LESS_HALF = 1
	GX_IRQ_EMPTY     = 2
)

// DISP3DCNT bits
const (
	GX_DISP_TEXTURE      = 1 << 0
	GX_DISP_HIGHLIGHT    = 1 << 1
	GX_DISP_ALPHA_TEST   = 1 << 2
	GX_DISP_ALPHA_BLEND  = 1 << 3
	GX_DISP_ANTIALIAS    = 1 << 4
	GX_DISP_EDGE_MARK    = 1 << 5
	GX_DISP_FOG_ALPHA    = 1 << 6
	GX_DISP_FOG          = 1 << 7
	GX_DISP_FOG_SHIFT    = 8
	GX_DISP_LINE_ACK     = 1 << 12
	GX_DISP_RAM_OVERFLOW = 1 << 13
	GX_DISP_REAR_BITMAP  = 1 << 14
	GX_DISP_WRITE_MASK   = 0x4FFF
)

// Polygon attribute bits
const (
	GX_ATTR_LIGHT_MASK    = 0xF
	GX_ATTR_MODE_SHIFT    = 4 // 0 modulate, 1 decal, 2 toon/highlight, 3 shadow
	GX_ATTR_BACK_VISIBLE  = 1 << 6
	GX_ATTR_FRONT_VISIBLE = 1 << 7
	GX_ATTR_TRANS_DEPTH   = 1 << 11
	GX_ATTR_FAR_CLIP      = 1 << 12
	GX_ATTR_ONE_DOT       = 1 << 13
	GX_ATTR_DEPTH_EQUAL   = 1 << 14
	GX_ATTR_FOG           = 1 << 15
	GX_ATTR_ALPHA_SHIFT   = 16
	GX_ATTR_ID_SHIFT      = 24
)

// Polygon shading modes (attribute bits 4-5)
const (
	GX_MODE_MODULATE = 0
	GX_MODE_DECAL    = 1
	GX_MODE_TOON     = 2
	GX_MODE_SHADOW   = 3
)

// BEGIN_VTXS primitive types
const (
	GX_PRIM_TRIANGLES  = 0
	GX_PRIM_QUADS      = 1
	GX_PRIM_TRI_STRIP  = 2
	GX_PRIM_QUAD_STRIP = 3
)

// SWAP_BUFFERS parameter bits
const (
	GX_FLUSH_MANUAL_SORT = 1 << 0
	GX_FLUSH_WBUFFER     = 1 << 1
)

// Texture formats (TEXIMAGE_PARAM bits 26-28)
const (
	GX_TEX_NONE       = 0
	GX_TEX_A3I5       = 1
	GX_TEX_4COLOR     = 2
	GX_TEX_16COLOR    = 3
	GX_TEX_256COLOR   = 4
	GX_TEX_COMPRESSED = 5
	GX_TEX_A5I3       = 6
	GX_TEX_DIRECT     = 7
)

// Texture coordinate generation (TEXIMAGE_PARAM bits 30-31)
const (
	GX_TEXGEN_NONE     = 0
	GX_TEXGEN_TEXCOORD = 1
	GX_TEXGEN_NORMAL   = 2
	GX_TEXGEN_VERTEX   = 3
)

// Attribute buffer layout (per pixel)
const (
	GX_PIX_EDGE_LEFT    = 1 << 0
	GX_PIX_EDGE_RIGHT   = 1 << 1
	GX_PIX_EDGE_TOP     = 1 << 2
	GX_PIX_EDGE_BOTTOM  = 1 << 3
	GX_PIX_BACKFACING   = 1 << 4
	GX_PIX_XMAJOR_TOP   = 1 << 6
	GX_PIX_YMAJOR_LEFT  = 1 << 7
	GX_PIX_COVER_SHIFT  = 8
	GX_PIX_COVER_MASK   = 0x1F << GX_PIX_COVER_SHIFT
	GX_PIX_FOG          = 1 << 15
	GX_PIX_TRANS_ID     = 0x3F << 16
	GX_PIX_TRANSLUCENT  = 1 << 22
	GX_PIX_OPAQUE_ID    = 0x3F << 24
	GX_PIX_HORIZ_EDGES  = GX_PIX_EDGE_LEFT | GX_PIX_EDGE_RIGHT
	GX_PIX_TRANS_ID_FLG = GX_PIX_TRANS_ID | GX_PIX_TRANSLUCENT
)

// Timing
const (
	GX_SCANLINES_PER_FRAME = 263
	GX_VCOUNT_RENDER_DONE  = 144
	GX_VCOUNT_RENDER_START = 215
	GX_ONE_DOT_DEFAULT     = 0x7FFF
	GX_SLOT_WINDOW_CYCLES  = 9
)
