package systems

import (
	"cmp"
	"slices"

	"gonum.org/v1/gonum/floats"
)

// allocEpsilon absorbs float drift in the saturation and donor checks.
const allocEpsilon = 1e-9

// AllocationResult says what a GrowthAllocator tick did.
type AllocationResult uint8

const (
	AllocationApplied    AllocationResult = iota
	AllocationIneligible                  // chosen disabled or alone in its group
	AllocationSaturated                   // chosen already holds all spare power
	AllocationNoDonors                    // donors cannot cover the growth
)

func (r AllocationResult) String() string {
	switch r {
	case AllocationApplied:
		return "applied"
	case AllocationIneligible:
		return "ineligible"
	case AllocationSaturated:
		return "saturated"
	case AllocationNoDonors:
		return "no_donors"
	}
	return "unknown"
}

// Allocation reports one allocator tick.
type Allocation struct {
	Result  AllocationResult
	Removed float64 // radius taken from donors
	Donors  int
}

// GrowthAllocator grows a held circle by taking radius from the other
// circles of its group, never pushing a donor below the color floor.
type GrowthAllocator struct {
	ChangeUp      float64 // chosen growth per tick
	MinChangeDown float64 // a donor must be able to give at least this much
}

// NewGrowthAllocator returns an allocator using the params' constants.
func NewGrowthAllocator(p *Params) GrowthAllocator {
	return GrowthAllocator{ChangeUp: p.ChangeUp, MinChangeDown: p.MinChangeDown}
}

type donor struct {
	e     *Entity
	slack float64 // radius above the color floor
}

// Apply runs one tick. members is the chosen circle's group and power its
// power before the tick. On success the chosen circle grows by exactly
// ChangeUp and the donors shrink by the same total.
func (a GrowthAllocator) Apply(chosen *Entity, members []*Entity, power float64) Allocation {
	if chosen == nil || chosen.Disabled() {
		return Allocation{Result: AllocationIneligible}
	}
	p := chosen.Profile()

	active := 0
	for _, m := range members {
		if !m.Disabled() && m.Color() == chosen.Color() {
			active++
		}
	}
	if active < 2 {
		return Allocation{Result: AllocationIneligible}
	}

	maxRadius := power - float64(active-1)*p.MinRadius
	if chosen.Radius()+a.ChangeUp > maxRadius+allocEpsilon {
		return Allocation{Result: AllocationSaturated}
	}

	var donors []donor
	total := 0.0
	for _, m := range members {
		if m == chosen || m.Disabled() || m.Color() != chosen.Color() {
			continue
		}
		if m.Radius()-a.MinChangeDown < p.MinRadius-allocEpsilon {
			continue
		}
		d := donor{e: m, slack: max(m.Radius()-p.MinRadius, 0)}
		donors = append(donors, d)
		total += d.slack
	}
	if len(donors) == 0 || total < a.ChangeUp-allocEpsilon {
		return Allocation{Result: AllocationNoDonors}
	}

	// Water-fill: the tightest donors go first and give at most their slack,
	// so any shortfall is spread over the donors that still have room.
	slices.SortStableFunc(donors, func(x, y donor) int {
		return cmp.Compare(x.slack, y.slack)
	})
	remaining := a.ChangeUp
	for i, d := range donors {
		cut := min(remaining/float64(len(donors)-i), d.slack)
		d.e.SetRadius(d.e.Radius() - cut)
		remaining -= cut
	}

	chosen.SetRadius(chosen.Radius() + a.ChangeUp)
	return Allocation{
		Result:  AllocationApplied,
		Removed: a.ChangeUp - remaining,
		Donors:  len(donors),
	}
}

// MeasurePower returns the summed effective radius of the members that are
// not gone. Outside of a running merge it equals the group's recorded power.
func MeasurePower(members []*Entity) float64 {
	radii := make([]float64, 0, len(members))
	for _, m := range members {
		if !m.Gone() {
			radii = append(radii, m.Effective())
		}
	}
	return floats.Sum(radii)
}
