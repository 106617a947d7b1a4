// Package levels loads the level library: per level an intro line and the
// circles, obstacles and markers to spawn.
package levels

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/circles/components"
)

//go:embed levels.yaml
var embeddedYAML []byte

// ErrLevelNotFound is returned for an index outside the library.
var ErrLevelNotFound = errors.New("level not found")

// CircleSpec describes a circle spawned at level start.
type CircleSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Angle  float64 `yaml:"angle"` // heading in degrees
	Radius float64 `yaml:"radius"`
	Color  string  `yaml:"color"`
}

// ObstacleSpec describes a static circle the colored circles bounce off.
type ObstacleSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// MarkerSpec describes a drifting marker that nothing collides with.
type MarkerSpec struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
	Angle  float64 `yaml:"angle"`
	Speed  float64 `yaml:"speed"`
}

// Level is one entry of the library.
type Level struct {
	Name      string         `yaml:"name,omitempty"`
	Intro     string         `yaml:"intro,omitempty"`
	Circles   []CircleSpec   `yaml:"circles"`
	Obstacles []ObstacleSpec `yaml:"obstacles,omitempty"`
	Markers   []MarkerSpec   `yaml:"markers,omitempty"`
}

type libraryFile struct {
	Levels []Level `yaml:"levels"`
}

// Library is an ordered, read-only set of levels.
type Library struct {
	levels []Level
}

// Load reads a library from path, or the embedded library if path is empty.
// JSON files load too since YAML is a superset.
func Load(path string) (*Library, error) {
	if path == "" {
		return Parse(embeddedYAML)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level library: %w", err)
	}
	lib, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Parse decodes a library document.
func Parse(data []byte) (*Library, error) {
	var f libraryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing level library: %w", err)
	}
	if len(f.Levels) == 0 {
		return nil, errors.New("level library is empty")
	}
	return &Library{levels: f.Levels}, nil
}

// Len returns the number of levels.
func (l *Library) Len() int { return len(l.levels) }

// Exists reports whether i is a valid level index.
func (l *Library) Exists(i int) bool {
	return i >= 0 && i < len(l.levels)
}

// Level returns a copy of level i.
func (l *Library) Level(i int) (Level, error) {
	if !l.Exists(i) {
		return Level{}, fmt.Errorf("level %d: %w", i, ErrLevelNotFound)
	}
	lv := l.levels[i]
	lv.Circles = append([]CircleSpec(nil), lv.Circles...)
	lv.Obstacles = append([]ObstacleSpec(nil), lv.Obstacles...)
	lv.Markers = append([]MarkerSpec(nil), lv.Markers...)
	return lv, nil
}

// Validate checks every level against the palette: known colors, positive
// radii and at least one circle.
func (l *Library) Validate(palette *components.Palette) error {
	var errs []error
	for i, lv := range l.levels {
		if err := lv.Validate(palette); err != nil {
			errs = append(errs, fmt.Errorf("level %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Validate checks one level against the palette.
func (lv Level) Validate(palette *components.Palette) error {
	var errs []error
	if len(lv.Circles) == 0 {
		errs = append(errs, errors.New("no circles"))
	}
	for j, c := range lv.Circles {
		if _, ok := palette.Lookup(c.Color); !ok {
			errs = append(errs, fmt.Errorf("circle %d: unknown color %q", j, c.Color))
		}
		if c.Radius <= 0 {
			errs = append(errs, fmt.Errorf("circle %d: radius must be positive, got %g", j, c.Radius))
		}
	}
	for j, o := range lv.Obstacles {
		if o.Radius <= 0 {
			errs = append(errs, fmt.Errorf("obstacle %d: radius must be positive, got %g", j, o.Radius))
		}
	}
	for j, m := range lv.Markers {
		if m.Radius <= 0 {
			errs = append(errs, fmt.Errorf("marker %d: radius must be positive, got %g", j, m.Radius))
		}
	}
	return errors.Join(errs...)
}

// Power returns the recorded power per color: the sum of each circle's
// radius clamped up to its color floor. Unknown colors are skipped.
func (lv Level) Power(palette *components.Palette) [components.MaxColors]float64 {
	var power [components.MaxColors]float64
	for _, c := range lv.Circles {
		col, ok := palette.Lookup(c.Color)
		if !ok {
			continue
		}
		power[col] += max(c.Radius, palette.Profile(col).MinRadius)
	}
	return power
}
