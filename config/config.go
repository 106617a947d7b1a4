// Package config provides configuration loading and access for the game.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all game configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Circle    CircleConfig    `yaml:"circle"`
	Colors    []ColorConfig   `yaml:"colors"`
	Preview   PreviewConfig   `yaml:"preview"`
	Session   SessionConfig   `yaml:"session"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Levels    LevelsConfig    `yaml:"levels"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the playfield dimensions in world units.
type WorldConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig holds rigid-body parameters shared by every circle body.
type PhysicsConfig struct {
	StepTime           float64 `yaml:"step_time"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	GridCellSize       float64 `yaml:"grid_cell_size"`
	MassPerRadius      float64 `yaml:"mass_per_radius"` // body mass = this * radius
	Density            float64 `yaml:"density"`
	Friction           float64 `yaml:"friction"`
	Restitution        float64 `yaml:"restitution"`
	LinearDamping      float64 `yaml:"linear_damping"`
	AngularDamping     float64 `yaml:"angular_damping"`
}

// CircleConfig holds the radius state machine constants.
type CircleConfig struct {
	ActualMinRadius float64 `yaml:"actual_min_radius"` // absolute floor, below it a circle is gone
	RadiusChange    float64 `yaml:"radius_change"`     // growth buffer consumed per tick
	ChangeUp        float64 `yaml:"change_up"`         // allocator growth per held tick
	MinChangeDown   float64 `yaml:"min_change_down"`   // smallest cut that keeps a donor eligible
	ComfortRadius   float64 `yaml:"comfort_radius"`    // extra pick radius around a circle
}

// ColorConfig defines the static profile of one circle color.
type ColorConfig struct {
	Name      string  `yaml:"name"`
	MinRadius float64 `yaml:"min_radius"`
	Speed     float64 `yaml:"speed"`   // speed = Speed / radius
	Display   string  `yaml:"display"` // #rrggbb or #rrggbbaa
}

// PreviewConfig holds predictive simulation parameters.
type PreviewConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Horizon   int     `yaml:"horizon"` // sandbox steps per preview
	Stride    int     `yaml:"stride"`  // sample every N steps
	Radius    float64 `yaml:"radius"`  // sample bodies within this distance of the pointer
	DotRadius float64 `yaml:"dot_radius"`
	Alpha     float64 `yaml:"alpha"`
}

// SessionConfig holds level session parameters.
type SessionConfig struct {
	StartLevel     int `yaml:"start_level"`
	IntroFrames    int `yaml:"intro_frames"`     // frames the intro message stays visible
	IntroFadeStart int `yaml:"intro_fade_start"` // frame the intro starts fading out
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	TickInterval    int `yaml:"tick_interval"`    // ticks between group stats records
	BookmarkHistory int `yaml:"bookmark_history"` // windows averaged for merge bursts
}

// LevelsConfig holds the level library location.
type LevelsConfig struct {
	Path string `yaml:"path"` // empty = embedded levels
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	ScreenW32     float32 // Screen.Width as float32
	ScreenH32     float32 // Screen.Height as float32
	PixelsPerUnit float32 // world-to-screen scale
	ColorIndex    map[string]int
}

// MaxColors bounds the color table so groups can live in a fixed array.
const MaxColors = 8

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults are invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	var errs []error
	if c.World.Width <= 0 || c.World.Height <= 0 {
		errs = append(errs, fmt.Errorf("world size must be positive, got %gx%g", c.World.Width, c.World.Height))
	}
	if c.Physics.StepTime <= 0 {
		errs = append(errs, fmt.Errorf("physics.step_time must be positive, got %g", c.Physics.StepTime))
	}
	if c.Circle.ActualMinRadius <= 0 {
		errs = append(errs, fmt.Errorf("circle.actual_min_radius must be positive, got %g", c.Circle.ActualMinRadius))
	}
	if c.Circle.RadiusChange <= 0 || c.Circle.ChangeUp <= 0 {
		errs = append(errs, errors.New("circle.radius_change and circle.change_up must be positive"))
	}
	if len(c.Colors) == 0 || len(c.Colors) > MaxColors {
		errs = append(errs, fmt.Errorf("between 1 and %d colors are required, got %d", MaxColors, len(c.Colors)))
	}
	seen := make(map[string]bool, len(c.Colors))
	for _, col := range c.Colors {
		if seen[col.Name] {
			errs = append(errs, fmt.Errorf("color %q defined twice", col.Name))
		}
		seen[col.Name] = true
		if col.MinRadius < c.Circle.ActualMinRadius {
			errs = append(errs, fmt.Errorf("color %q: min_radius %g below actual_min_radius", col.Name, col.MinRadius))
		}
		if col.Speed <= 0 {
			errs = append(errs, fmt.Errorf("color %q: speed must be positive", col.Name))
		}
	}
	if c.Preview.Horizon < 0 || c.Preview.Stride < 1 {
		errs = append(errs, fmt.Errorf("preview: horizon must be >= 0 and stride >= 1, got %d/%d", c.Preview.Horizon, c.Preview.Stride))
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	// Fit the world into the screen, keeping the aspect ratio
	sx := float64(c.Screen.Width) / c.World.Width
	sy := float64(c.Screen.Height) / c.World.Height
	c.Derived.PixelsPerUnit = float32(min(sx, sy))

	c.Derived.ColorIndex = make(map[string]int, len(c.Colors))
	for i, col := range c.Colors {
		c.Derived.ColorIndex[col.Name] = i
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
