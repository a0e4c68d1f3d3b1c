// gx_engine.go - GX 3D Engine: Command Dispatch, Frame Timing and Output

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
gx_engine.go - GX 3D Engine: Command Dispatch, Frame Timing and Output

GXEngine is the single context object of the 3D pipeline. It owns:

  - the command queue (pipe, FIFO, stall buffer)
  - the cycle model
  - the matrix engine and vertex processor
  - the polygon assembler
  - the frame buffer set with its double-buffered geometry RAM
  - the software rasteriser, optionally on a worker goroutine

Frame timing follows the display:

	Run(cycles)   execute queued commands for a slice of time
	VCount144()   wait for the frame being rendered (threaded mode)
	VBlank()      after SWAP_BUFFERS: sort, swap geometry RAM halves
	VCount215()   latch render registers and start rendering
	GetLine(y)    finished scanline, waits for it in threaded mode

SWAP_BUFFERS halts command execution until the next VBlank, as on
hardware. Everything except the command queue belongs to the goroutine
that drives these calls.
*/

package gx3d

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrNoVRAM is returned when WithVRAM is given a nil reader.
	ErrNoVRAM = errors.New("VRAM reader is nil")

	// ErrWorkerRunning is returned when the render worker is started twice.
	ErrWorkerRunning = errors.New("render worker already running")
)

// GXEngine is the 3D geometry engine and rasteriser.
type GXEngine struct {
	opts engineOptions

	queue    *CommandQueue
	mtx      MatrixEngine
	vtx      VertexProcessor
	asm      PolygonAssembler
	cyc      cyclePipelines
	fb       *FrameBufferSet
	renderer *SoftRenderer
	worker   *renderWorker

	// Parameters of the multi-word command being collected
	execParams [GX_MAX_PARAMS]uint32
	execCount  int

	// Cycles left in the current Run slice; negative is debt carried into
	// the next slice.
	budget int32

	polygonAttr uint32 // POLYGON_ATTR, applied at BEGIN_VTXS

	flushRequest    bool
	flushAttributes uint32

	gxStat  uint32 // IRQ mode and box test result; the rest is live
	dispCnt uint32
	irq     bool

	// Render registers, latched into rs at VCount215
	alphaRef   uint32
	clearAttr1 uint32
	clearAttr2 uint32
	fogColor   uint32
	fogOffset  uint32
	fogDensity [32]uint8
	toonTable  [32]uint16
	edgeTable  [8]uint16
	zeroDot    uint32
	rs         renderState

	posTestResult [4]int32
	vecTestResult [3]int16
}

// NewGXEngine creates an engine in its power-on state.
func NewGXEngine(opts ...Option) (*GXEngine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.vramSet && (o.texVRAM == nil || o.palVRAM == nil) {
		return nil, fmt.Errorf("gx3d: new engine: %w", ErrNoVRAM)
	}
	if !o.vramSet {
		o.texVRAM = NewFlatVRAM(0x80000)
		o.palVRAM = NewFlatVRAM(0x20000)
	}
	e := &GXEngine{opts: o, fb: NewFrameBufferSet()}
	e.queue = NewCommandQueue(o.onStall)
	e.renderer = NewSoftRenderer(e.fb, o.texVRAM, o.palVRAM)
	if o.threaded {
		e.worker = newRenderWorker(e.renderer, e.logger)
	}
	if err := e.Reset(); err != nil {
		return nil, err
	}
	return e, nil
}

// logger is the WithLogger logger, or the package logger when none was
// given.
func (e *GXEngine) logger() *slog.Logger {
	if e.opts.logger != nil {
		return e.opts.logger
	}
	return Logger()
}

// Reset restores power-on state. A frame being rendered is abandoned.
func (e *GXEngine) Reset() error {
	if e.worker != nil {
		e.worker.Stop()
	}

	e.queue.Reset()
	e.mtx.Reset()
	e.vtx.Reset()
	e.asm.Reset()
	e.cyc.Reset()
	e.fb.Reset()

	e.execCount = 0
	e.budget = 0
	e.polygonAttr = 0
	e.flushRequest = false
	e.flushAttributes = 0
	e.gxStat = 0
	e.dispCnt = 0
	e.irq = false

	e.alphaRef = 0
	e.clearAttr1 = 0
	e.clearAttr2 = 0
	e.fogColor = 0
	e.fogOffset = 0
	e.fogDensity = [32]uint8{}
	e.toonTable = [32]uint16{}
	e.edgeTable = [8]uint16{}
	e.setZeroDotDepth(GX_ONE_DOT_DEFAULT)
	e.rs = renderState{}
	e.posTestResult = [4]int32{}
	e.vecTestResult = [3]int16{}

	if e.worker != nil {
		return e.worker.Start()
	}
	return nil
}

// Close stops the render worker and releases producers blocked in Submit.
func (e *GXEngine) Close() {
	if e.worker != nil {
		e.worker.Stop()
	}
	e.queue.Close()
}

func (e *GXEngine) setZeroDotDepth(v uint32) {
	e.zeroDot = v & 0x7FFF
	e.asm.ZeroDotWLimit = depthFromRegister(v)
}

// Command input

// WriteCommand writes one entry through a direct command port. When the
// queue stalls, commands are executed right away until the producer may
// continue, which is how the CPU would have waited.
func (e *GXEngine) WriteCommand(op uint8, param uint32) {
	if e.queue.Write(CmdEntry{Command: op, Param: param}) {
		e.drainStall()
	}
	e.checkFIFO()
}

// WritePacked writes one word to the packed GXFIFO port.
func (e *GXEngine) WritePacked(val uint32) {
	e.queue.WritePacked(val)
	if e.queue.Stalled() {
		e.drainStall()
	}
	e.checkFIFO()
}

// WriteFIFO feeds a DMA burst into the packed GXFIFO port.
func (e *GXEngine) WriteFIFO(words []uint32) {
	for _, w := range words {
		e.WritePacked(w)
	}
}

// Submit enqueues one complete command from another goroutine, blocking
// while the queue is stalled. The goroutine driving Run keeps draining.
func (e *GXEngine) Submit(ctx context.Context, op uint8, params ...uint32) error {
	n := max(int(gxCmdNumParams[op]), 1)
	entries := make([]CmdEntry, n)
	for i := range entries {
		entries[i].Command = op
		if i < len(params) {
			entries[i].Param = params[i]
		}
	}
	return e.queue.Enqueue(ctx, entries...)
}

// drainStall executes commands until the stall buffer is empty. A pending
// SWAP_BUFFERS would keep the queue blocked until VBlank, so the swap is
// brought forward.
func (e *GXEngine) drainStall() {
	for e.queue.Stalled() {
		if e.flushRequest {
			e.logger().Debug("gx3d: queue stalled behind SWAP_BUFFERS, swapping early")
			e.VBlank()
		}
		if !e.executeOne() {
			return
		}
	}
}

// Execution

// Run executes queued commands for the given number of cycles.
func (e *GXEngine) Run(cycles int32) {
	e.budget += cycles
	for e.budget > 0 {
		if e.flushRequest {
			e.budget = 0
			return
		}
		if !e.executeOne() {
			// idle time still drains the pipelines
			e.cyc.AddCycles(e.budget)
			e.budget = 0
			return
		}
	}
}

// CycleCount is the total number of cycles the engine has accounted for.
func (e *GXEngine) CycleCount() int32 { return e.cyc.CycleCount }

func (e *GXEngine) executeOne() bool {
	entry, refilled, ok := e.queue.Read()
	if !ok {
		return false
	}
	before := e.cyc.CycleCount
	e.executeEntry(entry)
	e.budget -= e.cyc.CycleCount - before
	if refilled {
		e.checkFIFO()
	}
	return true
}

// executeEntry collects parameter words. A command runs once all of its
// parameters are in; each entry read costs a cycle.
func (e *GXEngine) executeEntry(entry CmdEntry) {
	op := entry.Command
	nparams := int(gxCmdNumParams[op])

	if nparams <= 1 {
		e.cyc.dispatchClass(op)
		e.execParams[0] = entry.Param
		e.runCommand(op, e.execParams[:1])
		return
	}

	if e.execCount == 0 {
		e.cyc.dispatchClass(op)
	} else {
		e.cyc.AddCycles(1)
	}
	e.execParams[e.execCount] = entry.Param
	e.execCount++
	if e.execCount < nparams {
		return
	}
	e.execCount = 0
	e.runCommand(op, e.execParams[:nparams])
}

func toFixed(params []uint32) []int32 {
	var buf [16]int32
	out := buf[:len(params)]
	for i, p := range params {
		out[i] = int32(p)
	}
	return out
}

// runCommand executes a complete command and charges its own cost.
func (e *GXEngine) runCommand(op uint8, params []uint32) {
	p := params[0]

	switch op {
	case GX_CMD_NOP:

	case GX_CMD_MTX_MODE:
		e.mtx.SetMode(p)
	case GX_CMD_MTX_PUSH:
		e.mtx.Push()
		e.queue.CommandDone(op)
	case GX_CMD_MTX_POP:
		e.mtx.Pop(p)
		e.queue.CommandDone(op)
	case GX_CMD_MTX_STORE:
		e.mtx.Store(p)
	case GX_CMD_MTX_RESTORE:
		e.mtx.Restore(p)
	case GX_CMD_MTX_IDENTITY:
		e.mtx.LoadIdentity()
	case GX_CMD_MTX_LOAD_4x4:
		e.mtx.Load4x4(toFixed(params))
	case GX_CMD_MTX_LOAD_4x3:
		e.mtx.Load4x3(toFixed(params))
	case GX_CMD_MTX_MULT_4x4:
		e.mtx.Mult4x4(toFixed(params))
	case GX_CMD_MTX_MULT_4x3:
		e.mtx.Mult4x3(toFixed(params))
	case GX_CMD_MTX_MULT_3x3:
		e.mtx.Mult3x3(toFixed(params))
	case GX_CMD_MTX_SCALE:
		e.mtx.Scale(toFixed(params))
	case GX_CMD_MTX_TRANS:
		e.mtx.Translate(toFixed(params))

	case GX_CMD_COLOR:
		e.vtx.SetColor(p)
	case GX_CMD_NORMAL:
		e.vtx.SetNormal(p)
		e.cyc.lightingDone(e.vtx.Lighting(&e.mtx, e.asm.CurAttr&GX_ATTR_LIGHT_MASK))
		return
	case GX_CMD_TEXCOORD:
		e.vtx.SetTexCoord(p, &e.mtx.Tex)

	case GX_CMD_VTX_16:
		e.vtx.SetVertex16(params[0], params[1])
		e.submitVertex()
		return
	case GX_CMD_VTX_10:
		e.vtx.SetVertex10(p)
		e.submitVertex()
		return
	case GX_CMD_VTX_XY:
		e.vtx.SetVertexXY(p)
		e.submitVertex()
		return
	case GX_CMD_VTX_XZ:
		e.vtx.SetVertexXZ(p)
		e.submitVertex()
		return
	case GX_CMD_VTX_YZ:
		e.vtx.SetVertexYZ(p)
		e.submitVertex()
		return
	case GX_CMD_VTX_DIFF:
		e.vtx.SetVertexDiff(p)
		e.submitVertex()
		return

	case GX_CMD_POLYGON_ATTR:
		e.polygonAttr = p
	case GX_CMD_TEXIMAGE_PARAM:
		e.vtx.TexParam = p
	case GX_CMD_PLTT_BASE:
		e.vtx.TexPalette = p & 0x1FFF

	case GX_CMD_DIF_AMB:
		e.vtx.SetDiffuseAmbient(p)
	case GX_CMD_SPE_EMI:
		e.vtx.SetSpecularEmission(p)
	case GX_CMD_LIGHT_VECTOR:
		e.vtx.SetLightVector(p, &e.mtx.Vec)
	case GX_CMD_LIGHT_COLOR:
		e.vtx.SetLightColor(p)
	case GX_CMD_SHININESS:
		e.vtx.SetShininess(params)

	case GX_CMD_BEGIN_VTXS:
		e.asm.Begin(p, e.polygonAttr)
	case GX_CMD_END_VTXS:

	case GX_CMD_SWAP_BUFFERS:
		e.flushRequest = true
		e.flushAttributes = p & (GX_FLUSH_MANUAL_SORT | GX_FLUSH_WBUFFER)
		e.cyc.flush()
	case GX_CMD_VIEWPORT:
		e.asm.SetViewport(p)

	case GX_CMD_BOX_TEST:
		e.boxTest(params)
		e.queue.CommandDone(op)
	case GX_CMD_POS_TEST:
		e.posTest(params)
		e.queue.CommandDone(op)
	case GX_CMD_VEC_TEST:
		e.vecTest(p)
		e.queue.CommandDone(op)

	default:
		e.logger().Warn("gx3d: unknown geometry command", "op", op, "param", p)
		return
	}

	e.cyc.AddCycles(max(gxCmdNumCycles[op]-int32(len(params)), 0))
}

// submitVertex transforms the current vertex and hands it to assembly.
func (e *GXEngine) submitVertex() {
	v := e.vtx.TransformVertex(&e.mtx)
	st := polygonState{
		log:        e.logger(),
		ram:        e.fb.Current(),
		texParam:   e.vtx.TexParam,
		texPalette: e.vtx.TexPalette,
		wbuffer:    e.flushAttributes&GX_FLUSH_WBUFFER != 0,
	}

	switch result, nverts := e.asm.AddVertex(v, st); result {
	case assembleCommitted:
		e.cyc.polygonCommitted(nverts)
	case assembleDropped:
		// rejected polygons still take a setup slot
		e.cyc.polygonCommitted(3)
	case assembleOverflow:
		if e.dispCnt&GX_DISP_RAM_OVERFLOW == 0 {
			e.logger().Warn("gx3d: geometry RAM overflow",
				"polygons", st.ram.NumPolygons, "vertices", st.ram.NumVertices)
		}
		e.dispCnt |= GX_DISP_RAM_OVERFLOW
	}
	e.cyc.vertexDone()
}

// checkFIFO re-evaluates the GXFIFO DMA request and IRQ line.
func (e *GXEngine) checkFIFO() {
	level := e.queue.FIFOLevel()
	if level < GX_CMD_FIFO_SIZE/2 && e.opts.onDMA != nil {
		e.opts.onDMA()
	}

	var assert bool
	switch e.gxStat >> GX_STAT_IRQ_SHIFT {
	case GX_IRQ_LESS_HALF:
		assert = level < GX_CMD_FIFO_SIZE/2
	case GX_IRQ_EMPTY:
		assert = level == 0
	}
	if assert != e.irq {
		e.irq = assert
		if e.opts.onIRQ != nil {
			e.opts.onIRQ(assert)
		}
	}
}

// Status returns the live GXSTAT value.
func (e *GXEngine) Status() uint32 {
	stat := e.gxStat & (GX_STAT_WRITE_MASK | GX_STAT_BOXTEST_RESULT)

	pushPop, tests := e.queue.Pending()
	if tests > 0 {
		stat |= GX_STAT_TEST_BUSY
	}
	if pushPop > 0 {
		stat |= GX_STAT_MTX_BUSY
	}
	stat |= e.mtx.PosStackPointer() << GX_STAT_POS_SP_SHIFT
	if e.mtx.ProjStackPointer() != 0 {
		stat |= GX_STAT_PROJ_SP
	}
	if e.mtx.Overflow {
		stat |= GX_STAT_MTX_OVERFLOW
	}

	level := uint32(e.queue.FIFOLevel())
	stat |= level << GX_STAT_FIFO_LEVEL
	if level < GX_CMD_FIFO_SIZE/2 {
		stat |= GX_STAT_FIFO_LESS_HALF
	}
	if level == 0 {
		stat |= GX_STAT_FIFO_EMPTY
	}
	if !e.queue.PipeEmpty() || e.budget < 0 || e.flushRequest {
		stat |= GX_STAT_BUSY
	}
	return stat
}

// Frame timing

// VCount144 waits for the frame in flight so render state can be reused.
func (e *GXEngine) VCount144() {
	if e.worker != nil {
		e.worker.WaitDone()
	}
}

// VBlank completes a pending SWAP_BUFFERS: the filled geometry RAM half is
// sorted into render order and the other half becomes current.
func (e *GXEngine) VBlank() {
	if !e.flushRequest {
		return
	}
	if e.worker != nil {
		e.worker.WaitDone()
	}
	e.fb.BuildRenderList()
	e.fb.SortRenderList(e.flushAttributes&GX_FLUSH_MANUAL_SORT != 0)
	e.fb.Swap()
	e.asm.FrameSwapped()
	e.flushRequest = false
}

// latchRenderState snapshots the render registers for the next frame.
func (e *GXEngine) latchRenderState() {
	rs := &e.rs
	rs.DispCnt = e.dispCnt
	rs.AlphaRef = 0
	if e.dispCnt&GX_DISP_ALPHA_TEST != 0 {
		rs.AlphaRef = e.alphaRef
	}
	rs.ClearAttr1 = e.clearAttr1
	rs.ClearAttr2 = e.clearAttr2
	rs.FogColor = e.fogColor
	rs.FogOffset = e.fogOffset * 0x200
	rs.FogShift = (e.dispCnt >> GX_DISP_FOG_SHIFT) & 0xF

	rs.FogDensity[0] = uint32(e.fogDensity[0])
	for i, d := range e.fogDensity {
		rs.FogDensity[i+1] = uint32(d)
	}
	rs.FogDensity[33] = uint32(e.fogDensity[31])

	rs.ToonTable = e.toonTable
	rs.EdgeTable = e.edgeTable
}

// VCount215 latches the render registers and renders the sorted list,
// inline or on the worker.
func (e *GXEngine) VCount215() {
	e.latchRenderState()
	ram, list := e.fb.RenderRAM(), e.fb.RenderList()
	if e.worker != nil {
		e.worker.Submit(renderJob{rs: e.rs, ram: ram, list: list})
		return
	}
	_ = e.renderer.RenderFrame(context.Background(), &e.rs, ram, list, nil)
}

// RunFrame drives one full display frame: the cycle budget is spread over
// the scanlines and the timing hooks fire at their lines.
func (e *GXEngine) RunFrame(cycles int32) {
	perLine := cycles / GX_SCANLINES_PER_FRAME
	for line := 0; line < GX_SCANLINES_PER_FRAME; line++ {
		e.Run(perLine)
		switch line {
		case GX_VCOUNT_RENDER_DONE:
			e.VCount144()
		case GX_SCREEN_HEIGHT:
			e.VBlank()
		case GX_VCOUNT_RENDER_START:
			e.VCount215()
		}
	}
}

// Output

// GetLine returns scanline y (0-191) as 256 pixels packed
// r | g<<8 | b<<16 | a<<24 with 6-bit colour and 5-bit alpha. In threaded
// mode it blocks until the line is final. The slice aliases the render
// buffer and is valid until the next frame starts rendering.
func (e *GXEngine) GetLine(y int) []uint32 {
	if e.worker != nil {
		e.worker.WaitLine(y)
	}
	return e.fb.Line(y)
}

// LineRGBA converts scanline y to 8-bit RGBA in dst, which must hold
// 1024 bytes.
func (e *GXEngine) LineRGBA(y int, dst []byte) {
	for x, c := range e.GetLine(y) {
		r, g, b, a := c&0x3F, (c>>8)&0x3F, (c>>16)&0x3F, (c>>24)&0x1F
		dst[x*4+0] = uint8(r<<2 | r>>4)
		dst[x*4+1] = uint8(g<<2 | g>>4)
		dst[x*4+2] = uint8(b<<2 | b>>4)
		dst[x*4+3] = uint8(a<<3 | a>>2)
	}
}

// RenderVertices is the vertex RAM of the frame last sorted for
// rendering, for use by an alternate renderer.
func (e *GXEngine) RenderVertices() []Vertex {
	ram := e.fb.RenderRAM()
	return ram.Vertices[:ram.NumVertices]
}

// RenderPolygons returns the polygon RAM of the frame last sorted for
// rendering and the render order as indices into it.
func (e *GXEngine) RenderPolygons() ([]Polygon, []int32) {
	ram := e.fb.RenderRAM()
	return ram.Polygons[:ram.NumPolygons], e.fb.RenderList()
}

// RAMCount returns the polygon and vertex counts of the half being filled.
func (e *GXEngine) RAMCount() (polygons, vertices int) {
	ram := e.fb.Current()
	return ram.NumPolygons, ram.NumVertices
}

// Queue exposes the command queue for producers that manage their own
// entries.
func (e *GXEngine) Queue() *CommandQueue { return e.queue }
