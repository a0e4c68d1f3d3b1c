// gx_registers.go - GX 3D Engine: Register Interface

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
gx_registers.go - GX 3D Engine: Register Interface

Memory-mapped access to the render registers, the command ports and the
result registers. 32-bit accesses are native. 8 and 16-bit writes merge
into the stored register value; they are ignored on the command ports,
which only accept whole words.
*/

package gx3d

// RDLINES_COUNT always reports the minimum the renderer could fall to,
// the software renderer never runs out of line buffer time.
const gxRDLinesCount = 46

func inRange(addr, lo, hi uint32) bool { return addr >= lo && addr <= hi }

// HandleRead handles 32-bit register reads.
func (e *GXEngine) HandleRead(addr uint32) uint32 {
	addr &^= 3
	switch {
	case addr == GX_REG_GXSTAT:
		return e.Status()
	case addr == GX_REG_RAM_COUNT:
		polys, verts := e.RAMCount()
		return uint32(polys) | uint32(verts)<<16
	case addr == GX_REG_RDLINES_COUNT:
		return gxRDLinesCount
	case inRange(addr, GX_REG_POS_RESULT, GX_REG_POS_RESULT+15):
		return uint32(e.posTestResult[(addr-GX_REG_POS_RESULT)>>2])
	case addr == GX_REG_VEC_RESULT:
		return uint32(uint16(e.vecTestResult[0])) | uint32(uint16(e.vecTestResult[1]))<<16
	case addr == GX_REG_VEC_RESULT+4:
		return uint32(uint16(e.vecTestResult[2]))
	case inRange(addr, GX_REG_CLIPMTX_RESULT, GX_REG_CLIPMTX_RESULT+63):
		return uint32(e.mtx.ClipMatrix()[(addr-GX_REG_CLIPMTX_RESULT)>>2])
	case inRange(addr, GX_REG_VECMTX_RESULT, GX_REG_VECMTX_RESULT+35):
		i := (addr - GX_REG_VECMTX_RESULT) >> 2
		return uint32(e.mtx.Vec[(i/3)*4+i%3])
	}
	return e.storedValue(addr)
}

// HandleRead16 handles 16-bit register reads.
func (e *GXEngine) HandleRead16(addr uint32) uint16 {
	return uint16(e.HandleRead(addr) >> ((addr & 2) * 8))
}

// HandleRead8 handles 8-bit register reads.
func (e *GXEngine) HandleRead8(addr uint32) uint8 {
	return uint8(e.HandleRead(addr) >> ((addr & 3) * 8))
}

// storedValue returns the last value written to a render register in the
// form a 32-bit write would take it back.
func (e *GXEngine) storedValue(addr uint32) uint32 {
	switch {
	case addr == GX_REG_DISP3DCNT:
		return e.dispCnt
	case inRange(addr, GX_REG_EDGE_COLOR, GX_REG_EDGE_COLOR+15):
		i := (addr - GX_REG_EDGE_COLOR) >> 1
		return uint32(e.edgeTable[i]) | uint32(e.edgeTable[i+1])<<16
	case addr == GX_REG_ALPHA_TEST_REF:
		return e.alphaRef
	case addr == GX_REG_CLEAR_COLOR:
		return e.clearAttr1
	case addr == GX_REG_CLEAR_DEPTH:
		return e.clearAttr2
	case addr == GX_REG_FOG_COLOR:
		return e.fogColor
	case addr == GX_REG_FOG_OFFSET:
		return e.fogOffset
	case inRange(addr, GX_REG_FOG_TABLE, GX_REG_FOG_TABLE+31):
		i := addr - GX_REG_FOG_TABLE
		return uint32(e.fogDensity[i]) | uint32(e.fogDensity[i+1])<<8 |
			uint32(e.fogDensity[i+2])<<16 | uint32(e.fogDensity[i+3])<<24
	case inRange(addr, GX_REG_TOON_TABLE, GX_REG_TOON_TABLE+63):
		i := (addr - GX_REG_TOON_TABLE) >> 1
		return uint32(e.toonTable[i]) | uint32(e.toonTable[i+1])<<16
	case addr == GX_REG_GXSTAT:
		return e.gxStat & GX_STAT_WRITE_MASK
	case addr == GX_REG_DISP_1DOT_DEPTH:
		return e.zeroDot
	}
	return 0
}

// HandleWrite handles 32-bit register writes.
func (e *GXEngine) HandleWrite(addr uint32, value uint32) {
	addr &^= 3
	switch {
	case addr == GX_REG_DISP3DCNT:
		e.dispCnt = e.dispCnt&(GX_DISP_LINE_ACK|GX_DISP_RAM_OVERFLOW) | value&GX_DISP_WRITE_MASK
		// writing 1 acknowledges
		e.dispCnt &^= value & (GX_DISP_LINE_ACK | GX_DISP_RAM_OVERFLOW)

	case inRange(addr, GX_REG_EDGE_COLOR, GX_REG_EDGE_COLOR+15):
		i := (addr - GX_REG_EDGE_COLOR) >> 1
		e.edgeTable[i] = uint16(value)
		e.edgeTable[i+1] = uint16(value >> 16)

	case addr == GX_REG_ALPHA_TEST_REF:
		e.alphaRef = value & 0x1F
	case addr == GX_REG_CLEAR_COLOR:
		e.clearAttr1 = value & 0x3F1F7FFF
	case addr == GX_REG_CLEAR_DEPTH:
		// depth in the low half, rear-plane scroll offset in the high half
		e.clearAttr2 = value & 0xFFFF7FFF
	case addr == GX_REG_FOG_COLOR:
		e.fogColor = value & 0x001F7FFF
	case addr == GX_REG_FOG_OFFSET:
		e.fogOffset = value & 0x7FFF

	case inRange(addr, GX_REG_FOG_TABLE, GX_REG_FOG_TABLE+31):
		i := addr - GX_REG_FOG_TABLE
		for b := uint32(0); b < 4; b++ {
			e.fogDensity[i+b] = uint8(value>>(b*8)) & 0x7F
		}

	case inRange(addr, GX_REG_TOON_TABLE, GX_REG_TOON_TABLE+63):
		i := (addr - GX_REG_TOON_TABLE) >> 1
		e.toonTable[i] = uint16(value)
		e.toonTable[i+1] = uint16(value >> 16)

	case inRange(addr, GX_REG_GXFIFO, GX_REG_GXFIFO_END):
		e.WritePacked(value)
	case inRange(addr, GX_REG_CMD_PORT_BASE, GX_REG_CMD_PORT_END):
		e.WriteCommand(uint8((addr-GX_REG_GXFIFO)>>2), value)

	case addr == GX_REG_GXSTAT:
		if value&GX_STAT_MTX_OVERFLOW != 0 {
			e.mtx.AcknowledgeOverflow()
		}
		e.gxStat = e.gxStat&^GX_STAT_WRITE_MASK | value&GX_STAT_WRITE_MASK
		e.checkFIFO()

	case addr == GX_REG_DISP_1DOT_DEPTH:
		e.setZeroDotDepth(value)

	default:
		e.logger().Debug("gx3d: write to read-only or unmapped register",
			"addr", addr, "value", value)
	}
}

// HandleWrite16 handles 16-bit register writes.
func (e *GXEngine) HandleWrite16(addr uint32, value uint16) {
	shift := (addr & 2) * 8
	e.mergeWrite(addr, uint32(value)<<shift, 0xFFFF<<shift)
}

// HandleWrite8 handles 8-bit register writes.
func (e *GXEngine) HandleWrite8(addr uint32, value uint8) {
	shift := (addr & 3) * 8
	e.mergeWrite(addr, uint32(value)<<shift, 0xFF<<shift)
}

func (e *GXEngine) mergeWrite(addr, value, mask uint32) {
	addr &^= 3
	if inRange(addr, GX_REG_GXFIFO, GX_REG_CMD_PORT_END) {
		e.logger().Debug("gx3d: narrow write to command port ignored", "addr", addr)
		return
	}

	old := e.storedValue(addr)
	if addr == GX_REG_DISP3DCNT {
		// acknowledge bits are never carried over
		old &^= GX_DISP_LINE_ACK | GX_DISP_RAM_OVERFLOW
	}
	e.HandleWrite(addr, old&^mask|value&mask)
}
