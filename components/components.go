// Package components defines ECS components and per-circle value types.
package components

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pthm-cable/circles/config"
)

// Color indexes a circle color. Values are positions in the configured
// color table, so a group table can be a fixed array.
type Color uint8

// MaxColors is the size of per-color tables.
const MaxColors = config.MaxColors

// RGBA is a display color.
type RGBA struct {
	R, G, B, A uint8
}

// ColorProfile holds the static constants shared by every circle of a color.
type ColorProfile struct {
	Name             string
	MinRadius        float64 // floor for circles that are not merging away
	SpeedCoefficient float64 // speed = SpeedCoefficient / radius
	Display          RGBA
}

// Palette maps every configured color to its profile.
type Palette struct {
	profiles [config.MaxColors]ColorProfile
	count    int
}

// PaletteFromConfig builds a palette from the configured colors.
func PaletteFromConfig(colors []config.ColorConfig) (*Palette, error) {
	if len(colors) > config.MaxColors {
		return nil, fmt.Errorf("too many colors: %d > %d", len(colors), config.MaxColors)
	}
	p := &Palette{count: len(colors)}
	for i, c := range colors {
		rgba, err := ParseHex(c.Display)
		if err != nil {
			return nil, fmt.Errorf("color %q: %w", c.Name, err)
		}
		p.profiles[i] = ColorProfile{
			Name:             c.Name,
			MinRadius:        c.MinRadius,
			SpeedCoefficient: c.Speed,
			Display:          rgba,
		}
	}
	return p, nil
}

// Len returns the number of colors.
func (p *Palette) Len() int { return p.count }

// Profile returns the profile for a color. Unknown colors return nil.
func (p *Palette) Profile(c Color) *ColorProfile {
	if int(c) >= p.count {
		return nil
	}
	return &p.profiles[c]
}

// Lookup finds a color by name.
func (p *Palette) Lookup(name string) (Color, bool) {
	for i := 0; i < p.count; i++ {
		if strings.EqualFold(p.profiles[i].Name, name) {
			return Color(i), true
		}
	}
	return 0, false
}

// ParseHex parses #rrggbb or #rrggbbaa.
func ParseHex(s string) (RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) != 6 && len(h) != 8 {
		return RGBA{}, fmt.Errorf("invalid display color %q", s)
	}
	if len(h) == 6 {
		h += "ff"
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid display color %q: %w", s, err)
	}
	return RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}
