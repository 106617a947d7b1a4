package telemetry

import (
	"math"

	"github.com/pthm-cable/circles/systems"
)

// Collector accumulates session events within tick windows and per level.
type Collector struct {
	windowTicks int32
	dt          float64

	windowStartTick int32
	window          WindowStats

	// Per level totals
	levelStartTick int32
	levelMerges    int
	levelHeld      int
	levelMaxDrift  float64
}

// NewCollector creates a collector that flushes every windowTicks ticks.
// dt is the simulated seconds per tick.
func NewCollector(windowTicks int, dt float64) *Collector {
	return &Collector{
		windowTicks: int32(max(windowTicks, 1)),
		dt:          dt,
	}
}

// RecordTick adds one tick's events.
func (c *Collector) RecordTick(merges, removed int, held bool, result systems.AllocationResult) {
	c.window.Merges += merges
	c.window.Removed += removed
	c.levelMerges += merges
	if !held {
		return
	}
	c.window.HeldTicks++
	c.levelHeld++
	switch result {
	case systems.AllocationApplied:
		c.window.AllocApplied++
	case systems.AllocationSaturated:
		c.window.AllocSaturated++
	case systems.AllocationNoDonors:
		c.window.AllocNoDonors++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowTicks
}

// Flush produces the window stats and one record per non-empty group, then
// resets the window counters. groupCount is the number of colors with circles.
func (c *Collector) Flush(currentTick int32, level, circles, groupCount int, groups []GroupSample) (WindowStats, []GroupStats) {
	ws := c.window
	ws.WindowStartTick = c.windowStartTick
	ws.WindowEndTick = currentTick
	ws.SimTimeSec = float64(currentTick) * c.dt
	ws.Level = level
	ws.Circles = circles
	ws.Groups = groupCount

	var gs []GroupStats
	for _, g := range groups {
		if len(g.Radii) == 0 {
			continue
		}
		s := SummarizeGroup(currentTick, level, g)
		c.levelMaxDrift = max(c.levelMaxDrift, math.Abs(s.Drift))
		gs = append(gs, s)
	}

	c.windowStartTick = currentTick
	c.window = WindowStats{}
	return ws, gs
}

// FinishLevel closes the per level totals and starts new ones at currentTick.
func (c *Collector) FinishLevel(currentTick int32, level int, name string, completed bool, seconds int) LevelRecord {
	ticks := currentTick - c.levelStartTick
	rec := LevelRecord{
		Level:     level,
		Name:      name,
		Completed: completed,
		Seconds:   seconds,
		Ticks:     ticks,
		SimTime:   float64(ticks) * c.dt,
		Merges:    c.levelMerges,
		HeldTicks: c.levelHeld,
		MaxDrift:  c.levelMaxDrift,
	}
	c.levelStartTick = currentTick
	c.levelMerges = 0
	c.levelHeld = 0
	c.levelMaxDrift = 0
	return rec
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int32 {
	return c.windowTicks
}
