package main

import (
	"slices"

	"github.com/pthm-cable/circles/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Human-readable name
	Path string  // Config path for logging
	Min  float64 // Lower bound
	Max  float64 // Upper bound
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of pacing parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "radius_change", Path: "circle.radius_change", Min: 0.002, Max: 0.03},
			{Name: "change_up", Path: "circle.change_up", Min: 0.002, Max: 0.03},
			// Multiplies every color's speed coefficient
			{Name: "speed_scale", Path: "colors[].speed", Min: 0.25, Max: 4.0},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig returns a copy of base with the parameter values applied.
func (pv *ParamVector) ApplyToConfig(base *config.Config, values []float64) *config.Config {
	clamped := pv.Clamp(values)

	cfg := *base
	cfg.Colors = slices.Clone(base.Colors)

	// Order must match Specs order
	cfg.Circle.RadiusChange = clamped[0]
	cfg.Circle.ChangeUp = clamped[1]
	for i := range cfg.Colors {
		cfg.Colors[i].Speed *= clamped[2]
	}
	return &cfg
}

// ExtractFromConfig returns the starting values for a config: its own circle
// constants and an unscaled speed.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return pv.Clamp([]float64{
		cfg.Circle.RadiusChange,
		cfg.Circle.ChangeUp,
		1.0,
	})
}
