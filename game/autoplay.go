package game

import (
	"math"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
)

// Autoplay plays a level without input: it holds the largest circle of the
// first color that still has more than one circle not merging away.
type Autoplay struct{}

// Step updates the selection and hold state for the next tick.
func (Autoplay) Step(s *Session) {
	if s.Completed() {
		s.SetHeld(false)
		return
	}
	if sel := s.Selected(); sel != nil && !sel.Disabled() && s.Group(sel.Color()).Active() > 1 {
		s.SetHeld(true)
		return
	}

	for g := range s.Groups() {
		if g.Active() < 2 {
			continue
		}
		var best uint32
		bestR := -1.0
		for _, m := range g.Members {
			if !m.Disabled() && m.Radius() > bestR {
				best, bestR = m.ID, m.Radius()
			}
		}
		if best != 0 && s.Select(best) {
			s.SetHeld(true)
			return
		}
	}
	s.SetHeld(false)
}

// RunResult is the outcome of one autoplayed level.
type RunResult struct {
	Level     int     `csv:"level"`
	Name      string  `csv:"name"`
	Completed bool    `csv:"completed"`
	Ticks     int32   `csv:"ticks"`
	SimTime   float64 `csv:"sim_time"`
	Merges    int     `csv:"merges"`
	Drift     float64 `csv:"drift"` // largest power error at completion, pending growth included
}

// RunLevel autoplays level i in a fresh session until it completes or
// maxTicks ticks have run. Sessions share nothing, so levels can run in
// parallel.
func RunLevel(cfg *config.Config, library *levels.Library, factory physics.Factory, i int, maxTicks int32) (RunResult, error) {
	s, err := NewSession(cfg, library, factory)
	if err != nil {
		return RunResult{}, err
	}
	if err := s.LoadLevel(i); err != nil {
		return RunResult{}, err
	}

	res := RunResult{Level: i, Name: s.LevelName()}
	var ap Autoplay
	for s.Ticks() < maxTicks && !s.Completed() {
		ap.Step(s)
		r := s.Tick(cfg.Physics.StepTime)
		res.Merges += r.Merges
	}
	for g := range s.Groups() {
		if !s.Completed() {
			break
		}
		total := 0.0
		for _, m := range g.Members {
			total += m.Effective() + m.Circle.GrowthBuffer
		}
		if len(g.Members) > 0 {
			res.Drift = max(res.Drift, math.Abs(total-g.Power))
		}
	}
	res.Completed = s.Completed()
	res.Ticks = s.Ticks()
	res.SimTime = float64(res.Ticks) * cfg.Physics.StepTime
	return res, nil
}
