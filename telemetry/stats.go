package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds the event counts of one stats window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	Level           int     `csv:"level"`

	Circles        int `csv:"circles"`
	Groups         int `csv:"groups"`
	Merges         int `csv:"merges"`
	Removed        int `csv:"removed"`
	HeldTicks      int `csv:"held_ticks"`
	AllocApplied   int `csv:"alloc_applied"`
	AllocSaturated int `csv:"alloc_saturated"`
	AllocNoDonors  int `csv:"alloc_no_donors"`
}

// GroupSample is the raw state of one color group at flush time.
type GroupSample struct {
	Color     string
	Power     float64   // recorded at level load
	Radii     []float64 // current radius per member
	Effective []float64 // floor-clamped radius per member
}

// GroupStats summarizes one color group at the end of a window.
type GroupStats struct {
	WindowEndTick int32   `csv:"window_end"`
	Level         int     `csv:"level"`
	Color         string  `csv:"color"`
	Members       int     `csv:"members"`
	Power         float64 `csv:"power"`
	Measured      float64 `csv:"measured_power"`
	Drift         float64 `csv:"drift"`
	RadiusMean    float64 `csv:"radius_mean"`
	RadiusStd     float64 `csv:"radius_std"`
	RadiusP50     float64 `csv:"radius_p50"`
	RadiusMax     float64 `csv:"radius_max"`
}

// LevelRecord is the outcome of one played level.
type LevelRecord struct {
	Level     int     `csv:"level"`
	Name      string  `csv:"name"`
	Completed bool    `csv:"completed"`
	Seconds   int     `csv:"seconds"`
	Ticks     int32   `csv:"ticks"`
	SimTime   float64 `csv:"sim_time"`
	Merges    int     `csv:"merges"`
	HeldTicks int     `csv:"held_ticks"`
	MaxDrift  float64 `csv:"max_drift"`
}

// Percentile calculates the p-th percentile of a sorted slice with linear
// interpolation. p is in [0, 1]. Returns 0 for an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case p <= 0:
		return sorted[0]
	case p >= 1:
		return sorted[n-1]
	}

	idx := p * float64(n-1)
	lo := int(idx)
	if lo+1 >= n {
		return sorted[n-1]
	}
	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}

// ComputeRadiusStats returns the population mean, standard deviation,
// median and maximum of radii.
func ComputeRadiusStats(radii []float64) (mean, std, p50, maxR float64) {
	if len(radii) == 0 {
		return 0, 0, 0, 0
	}
	mean, std = stat.PopMeanStdDev(radii, nil)
	sorted := slices.Clone(radii)
	slices.Sort(sorted)
	return mean, std, Percentile(sorted, 0.5), floats.Max(radii)
}

// SummarizeGroup turns a sample into a stats record.
func SummarizeGroup(tick int32, level int, g GroupSample) GroupStats {
	mean, std, p50, maxR := ComputeRadiusStats(g.Radii)
	measured := floats.Sum(g.Effective)
	return GroupStats{
		WindowEndTick: tick,
		Level:         level,
		Color:         g.Color,
		Members:       len(g.Radii),
		Power:         g.Power,
		Measured:      measured,
		Drift:         measured - g.Power,
		RadiusMean:    mean,
		RadiusStd:     std,
		RadiusP50:     p50,
		RadiusMax:     maxR,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("level", s.Level),
		slog.Int("circles", s.Circles),
		slog.Int("groups", s.Groups),
		slog.Int("merges", s.Merges),
		slog.Int("removed", s.Removed),
		slog.Int("held_ticks", s.HeldTicks),
		slog.Int("alloc_applied", s.AllocApplied),
		slog.Int("alloc_saturated", s.AllocSaturated),
		slog.Int("alloc_no_donors", s.AllocNoDonors),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// LogStats logs the group stats using slog.
func (s GroupStats) LogStats() {
	slog.Info("group",
		"level", s.Level,
		"color", s.Color,
		"members", s.Members,
		"power", s.Power,
		"drift", s.Drift,
		"radius_mean", s.RadiusMean,
		"radius_max", s.RadiusMax,
	)
}
