package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/game"
)

func TestParamVector_ApplyLeavesBaseAlone(t *testing.T) {
	base := config.Default()
	pv := NewParamVector()

	cfg := pv.ApplyToConfig(base, []float64{0.02, 0.005, 2})

	if cfg.Circle.RadiusChange != 0.02 || cfg.Circle.ChangeUp != 0.005 {
		t.Errorf("circle = %+v", cfg.Circle)
	}
	if got, want := cfg.Colors[0].Speed, 2*base.Colors[0].Speed; math.Abs(got-want) > 1e-12 {
		t.Errorf("speed = %f, want %f", got, want)
	}
	if base.Colors[0].Speed != config.Default().Colors[0].Speed {
		t.Error("applying parameters changed the base config")
	}

	start := pv.ExtractFromConfig(base)
	back := pv.Denormalize(pv.Normalize(start))
	for i := range start {
		if math.Abs(back[i]-start[i]) > 1e-12 {
			t.Errorf("%s: %f -> %f", pv.Specs[i].Name, start[i], back[i])
		}
	}
}

func TestComputeFitness(t *testing.T) {
	tests := []struct {
		name    string
		results []game.RunResult
		want    float64
	}{
		{"on target", []game.RunResult{{Completed: true, SimTime: 20}}, 0},
		{"twice as slow", []game.RunResult{{Completed: true, SimTime: 40}}, 1},
		{"unfinished", []game.RunResult{{SimTime: 20}, {Completed: true, SimTime: 20}}, incompletePenalty / 2},
		{"drift", []game.RunResult{{Completed: true, SimTime: 20, Drift: 0.001}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeFitness(tt.results, 20); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("computeFitness = %f, want %f", got, tt.want)
			}
		})
	}
}
