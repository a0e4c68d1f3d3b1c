package gx3d

import "testing"

func newPipelines() *cyclePipelines {
	p := &cyclePipelines{}
	p.Reset()
	return p
}

func TestCycles_PipelinesDecay(t *testing.T) {
	p := newPipelines()
	p.vertexDone()
	// the three cycles of the vertex command itself already count down
	if p.vertex != 4 || p.CycleCount != 3 {
		t.Fatalf("vertex %d cycles %d", p.vertex, p.CycleCount)
	}
	p.AddCycles(2)
	if p.vertex != 2 {
		t.Fatalf("vertex pipeline %d, want 2", p.vertex)
	}
	p.AddCycles(10)
	if p.vertex != 0 {
		t.Fatal("vertex pipeline must saturate at 0")
	}
}

func TestCycles_DelayClasses(t *testing.T) {
	cases := []struct {
		name string
		run  func(p *cyclePipelines)
		want int32
	}{
		{"delayed4 ignores vertex", func(p *cyclePipelines) { p.delayed4() }, 1},
		{"delayed6 waits vertex-2", func(p *cyclePipelines) { p.delayed6() }, 6},
		{"delayed8 waits vertex", func(p *cyclePipelines) { p.delayed8() }, 8},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := newPipelines()
			p.vertex = 7
			tc.run(p)
			if p.CycleCount != tc.want {
				t.Fatalf("cycles %d, want %d", p.CycleCount, tc.want)
			}
		})
	}
}

func TestCycles_VertexWaitsForSlot(t *testing.T) {
	p := newPipelines()
	p.polygonCommitted(4)
	if p.slotsFree&1 != 0 {
		t.Fatal("quad setup should hold the vertex slot")
	}
	p.vertexSubmit()
	if p.CycleCount != 18 {
		t.Fatalf("vertex waited %d cycles, want 18", p.CycleCount)
	}
	if p.polygon != 0 || p.slotsFree != 1 {
		t.Fatalf("polygon %d slots %b", p.polygon, p.slotsFree)
	}
}

func TestCycles_StallPolygon(t *testing.T) {
	p := newPipelines()
	p.polygonCommitted(3)
	p.stallPolygon(1, 0)
	if p.CycleCount != 10 || p.polygon != 0 {
		t.Fatalf("cycles %d polygon %d", p.CycleCount, p.polygon)
	}
}
