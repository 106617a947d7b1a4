package telemetry

import (
	"math"
	"testing"

	"github.com/pthm-cable/circles/systems"
)

func TestCollector_Window(t *testing.T) {
	c := NewCollector(60, 1.0/60)

	c.RecordTick(1, 0, false, systems.AllocationApplied)
	c.RecordTick(0, 1, true, systems.AllocationApplied)
	c.RecordTick(0, 0, true, systems.AllocationSaturated)
	c.RecordTick(0, 0, true, systems.AllocationIneligible)

	if c.ShouldFlush(59) {
		t.Error("flush requested before the window ended")
	}
	if !c.ShouldFlush(60) {
		t.Fatal("flush not requested at the window end")
	}

	groups := []GroupSample{
		{Color: "white", Power: 0.5, Radii: []float64{0.5}, Effective: []float64{0.5}},
		{Color: "blue"},
	}
	ws, gs := c.Flush(60, 2, 1, 1, groups)

	if ws.Merges != 1 || ws.Removed != 1 || ws.HeldTicks != 3 {
		t.Errorf("counts = %+v", ws)
	}
	if ws.AllocApplied != 1 || ws.AllocSaturated != 1 || ws.AllocNoDonors != 0 {
		t.Errorf("allocation counts = %+v", ws)
	}
	if math.Abs(ws.SimTimeSec-1) > 1e-9 || ws.Level != 2 || ws.Circles != 1 || ws.Groups != 1 {
		t.Errorf("window = %+v", ws)
	}
	if len(gs) != 1 || gs[0].Color != "white" {
		t.Errorf("group stats = %+v, want only white", gs)
	}

	// Counters reset with the window
	ws, _ = c.Flush(120, 2, 1, 1, nil)
	if ws.Merges != 0 || ws.HeldTicks != 0 || ws.WindowStartTick != 60 {
		t.Errorf("second window = %+v", ws)
	}
}

func TestCollector_FinishLevel(t *testing.T) {
	c := NewCollector(10, 0.5)

	c.RecordTick(2, 0, true, systems.AllocationApplied)
	c.Flush(10, 0, 2, 1, []GroupSample{
		{Color: "white", Power: 1, Radii: []float64{0.6, 0.3}, Effective: []float64{0.6, 0.3}},
	})
	rec := c.FinishLevel(40, 0, "first", true, 12)

	if rec.Ticks != 40 || rec.SimTime != 20 || rec.Merges != 2 || rec.HeldTicks != 1 {
		t.Errorf("record = %+v", rec)
	}
	if math.Abs(rec.MaxDrift-0.1) > 1e-12 {
		t.Errorf("max drift = %f, want 0.1", rec.MaxDrift)
	}

	rec = c.FinishLevel(50, 1, "second", false, 0)
	if rec.Ticks != 10 || rec.Merges != 0 || rec.MaxDrift != 0 {
		t.Errorf("totals not reset: %+v", rec)
	}
}
