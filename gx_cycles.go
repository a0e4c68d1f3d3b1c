package gx3d

// cyclePipelines approximates geometry engine timing.
//
// Three latencies overlap with command execution: the vertex pipeline (a
// submitted vertex is still being transformed), the normal pipeline (a
// lighting calculation is in flight) and the polygon pipeline (a committed
// polygon is being set up). Polygon setup works in 9-cycle windows and
// holds the vertex unit for some of them; a vertex command that arrives
// while no slot is free waits for the next window that frees one.
//
// Hardware timing of the slot reservation is not fully understood. This
// model reserves nverts-2 windows per committed polygon, which keeps strips
// and isolated triangles close to measured throughput.
type cyclePipelines struct {
	CycleCount int32

	vertex  int32
	normal  int32
	polygon int32

	slotCounter int32  // cycles into the current window
	slotsFree   uint32 // bit 0 set: a vertex slot is available now
}

func (p *cyclePipelines) Reset() {
	*p = cyclePipelines{slotsFree: 1}
}

// AddCycles advances time by n cycles.
func (p *cyclePipelines) AddCycles(n int32) {
	if n <= 0 {
		return
	}
	p.CycleCount += n
	p.vertex = max(p.vertex-n, 0)
	p.normal = max(p.normal-n, 0)

	if p.polygon == 0 {
		return
	}
	p.slotCounter += n
	for p.slotCounter >= GX_SLOT_WINDOW_CYCLES && p.polygon > 0 {
		p.slotCounter -= GX_SLOT_WINDOW_CYCLES
		p.polygon = max(p.polygon-GX_SLOT_WINDOW_CYCLES, 0)
		p.slotsFree >>= 1
	}
	if p.polygon == 0 {
		p.slotsFree = 1
		p.slotCounter = 0
	}
}

// nextVertexSlot waits out windows until a vertex slot frees up.
func (p *cyclePipelines) nextVertexSlot() {
	for p.slotsFree&1 == 0 {
		p.AddCycles(GX_SLOT_WINDOW_CYCLES - p.slotCounter)
	}
}

// delayed4 is the default: a command may start 4 cycles after a vertex,
// which is always satisfied, so only a pending lighting result waits.
func (p *cyclePipelines) delayed4() {
	p.AddCycles(p.normal + 1)
	p.normal = 0
}

// delayed6 is for commands that may start 6 cycles after a vertex.
func (p *cyclePipelines) delayed6() {
	if p.vertex > 2 {
		p.AddCycles(p.vertex - 2 + 1)
	} else {
		p.AddCycles(p.normal + 1)
	}
	p.normal = 0
}

// delayed8 is for commands that must wait for the vertex pipeline.
func (p *cyclePipelines) delayed8() {
	if p.vertex > 0 {
		p.AddCycles(p.vertex + 1)
	} else {
		p.AddCycles(p.normal + 1)
	}
	p.normal = 0
}

// vertexSubmit claims a vertex slot.
func (p *cyclePipelines) vertexSubmit() {
	if p.slotsFree&1 == 0 {
		p.nextVertexSlot()
	} else {
		p.AddCycles(1)
	}
	p.normal = 0
}

// vertexDone starts the vertex pipeline latency.
func (p *cyclePipelines) vertexDone() {
	p.vertex = 7
	p.AddCycles(3)
}

// lightingDone starts the normal pipeline latency after a lighting pass
// that took cycles cycles.
func (p *cyclePipelines) lightingDone(cycles int32) {
	p.normal = 7
	p.AddCycles(cycles)
}

// stallPolygon waits for polygon setup to finish. delay is charged on top
// when a polygon was in flight; otherwise the command behaves like one
// that must wait nonstall cycles after a vertex.
func (p *cyclePipelines) stallPolygon(delay, nonstall int32) {
	if p.polygon > 0 {
		p.CycleCount += p.polygon + delay
		p.vertex = 0
		p.normal = 0
		p.polygon = 0
		p.slotCounter = 0
		p.slotsFree = 1
		return
	}
	if p.vertex > nonstall {
		p.AddCycles(p.vertex - nonstall + 1)
	} else {
		p.AddCycles(p.normal + 1)
	}
}

// polygonCommitted reserves vertex slots for the setup of a polygon with
// nverts vertices.
func (p *cyclePipelines) polygonCommitted(nverts int) {
	windows := int32(max(nverts-2, 1))
	p.polygon += windows * GX_SLOT_WINDOW_CYCLES
	p.slotCounter = 0
	p.slotsFree = 1 << uint(min(p.polygon/GX_SLOT_WINDOW_CYCLES, 31))
}

// flush drops all in-flight work; SWAP_BUFFERS resets the pipelines.
func (p *cyclePipelines) flush() {
	p.vertex = 0
	p.normal = 0
	p.polygon = 0
	p.slotCounter = 0
	p.slotsFree = 1
}

// dispatchClass selects the pipeline wait applied before an opcode runs.
func (p *cyclePipelines) dispatchClass(op uint8) {
	switch op {
	case GX_CMD_COLOR, GX_CMD_DIF_AMB, GX_CMD_SPE_EMI, GX_CMD_VEC_TEST:
		p.delayed6()
	case GX_CMD_POLYGON_ATTR, GX_CMD_TEXIMAGE_PARAM, GX_CMD_PLTT_BASE,
		GX_CMD_LIGHT_COLOR, GX_CMD_SHININESS, GX_CMD_END_VTXS,
		GX_CMD_VIEWPORT, GX_CMD_POS_TEST:
		p.delayed8()
	case GX_CMD_VTX_16, GX_CMD_VTX_10, GX_CMD_VTX_XY, GX_CMD_VTX_XZ,
		GX_CMD_VTX_YZ, GX_CMD_VTX_DIFF:
		p.vertexSubmit()
	case GX_CMD_BEGIN_VTXS:
		p.stallPolygon(1, 0)
	default:
		p.delayed4()
	}
}
