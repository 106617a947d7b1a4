package components

import (
	"math"

	"github.com/pthm-cable/circles/config"
)

// Tuning holds the constants of the radius state machine.
type Tuning struct {
	ActualMinRadius float64 // absolute floor; a merging circle below it is gone
	RadiusChange    float64 // growth buffer consumed per tick
}

// TuningFromConfig returns the state machine constants from config.
func TuningFromConfig(c config.CircleConfig) Tuning {
	return Tuning{
		ActualMinRadius: c.ActualMinRadius,
		RadiusChange:    c.RadiusChange,
	}
}

// Circle is the radius state of one colored circle, independent of the body
// that carries it. Live entities and ghost copies share this state machine.
type Circle struct {
	Color        Color
	Radius       float64
	GrowthBuffer float64 // pending signed radius delta
	MergingAway  bool    // terminal: shrinking to removal
	FreshShard   bool    // exempt from the color floor until grown past it
	Gone         bool    // terminal: must be removed
}

// NewCircle returns the state for a circle spawned with the given radius.
// A radius below the color floor spawns a fresh shard that grows into it.
func NewCircle(color Color, radius float64, p *ColorProfile, t Tuning) Circle {
	c := Circle{Color: color, Radius: radius}
	if radius < p.MinRadius {
		c.FreshShard = true
		c.Radius = max(radius, t.ActualMinRadius)
		c.GrowthBuffer = p.MinRadius - c.Radius
	}
	return c
}

// Disabled reports whether the circle takes part in no further merges or
// allocations.
func (c *Circle) Disabled() bool {
	return c.MergingAway || c.Gone
}

// Clamp applies the radius floors that hold in the circle's current state.
func (c *Circle) Clamp(r float64, p *ColorProfile, t Tuning) float64 {
	if r < p.MinRadius && !c.MergingAway && !c.FreshShard {
		r = p.MinRadius
	}
	if r < t.ActualMinRadius {
		r = t.ActualMinRadius
	}
	return r
}

// Effective returns the radius counted toward the group power.
func (c *Circle) Effective(p *ColorProfile) float64 {
	return max(c.Radius, p.MinRadius)
}

// TickGrowth advances the growth state by one tick and reports whether the
// radius changed. The buffer moves the radius by at most RadiusChange per
// tick and never overshoots.
func (c *Circle) TickGrowth(p *ColorProfile, t Tuning) bool {
	if c.Gone {
		return false
	}

	if c.MergingAway {
		// A merging circle never regrows: leftover positive buffer drains
		// without effect before the shrink starts.
		if c.GrowthBuffer > 0 {
			c.GrowthBuffer = max(c.GrowthBuffer-t.RadiusChange, 0)
			return false
		}
		c.GrowthBuffer = 0
		next := c.Radius - t.RadiusChange
		if next >= t.ActualMinRadius {
			c.Radius = next
			return true
		}
		c.Gone = true
		return false
	}

	if c.GrowthBuffer == 0 {
		return false
	}

	var delta float64
	if math.Abs(c.GrowthBuffer) > t.RadiusChange {
		delta = math.Copysign(t.RadiusChange, c.GrowthBuffer)
		c.GrowthBuffer -= delta
	} else {
		delta = c.GrowthBuffer
		c.GrowthBuffer = 0
	}

	next := c.Radius + delta
	if c.GrowthBuffer == 0 || next >= p.MinRadius {
		c.FreshShard = false
	}
	c.Radius = c.Clamp(next, p, t)
	return true
}

// SpeedLimit returns the speed for the circle's current state.
func (c *Circle) SpeedLimit(p *ColorProfile) float64 {
	return SpeedLimit(p, c.Radius, c.FreshShard, c.GrowthBuffer)
}

// SpeedLimit returns the speed for a circle of the given radius. Smaller
// circles move faster. While a shard is growing or a buffer is pending the
// target radius is used, so the speed does not spike mid-animation.
func SpeedLimit(p *ColorProfile, radius float64, freshShard bool, growthBuffer float64) float64 {
	r := radius
	if freshShard || growthBuffer != 0 {
		r = radius + growthBuffer
	}
	if r < p.MinRadius {
		r = p.MinRadius
	}
	speed := p.SpeedCoefficient / r
	if speed < 0 {
		return 0
	}
	return speed
}
