// Package systems holds the per-tick rules that drive circles: growth, speed,
// toroidal wrap, same-color merges, held-circle growth and the ghost preview.
package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/physics"
)

// Bounds represents the playfield size in world units.
type Bounds struct {
	Width, Height float64
}

// Params holds the constants shared by live and ghost circles.
type Params struct {
	Tuning        components.Tuning
	MassPerRadius float64 // body mass = MassPerRadius * radius
	ChangeUp      float64
	MinChangeDown float64
	Bounds        Bounds
	Material      physics.BodyDef // template for new circle bodies
}

// ParamsFromConfig builds Params from the loaded configuration.
func ParamsFromConfig(cfg *config.Config) Params {
	p := cfg.Physics
	return Params{
		Tuning:        components.TuningFromConfig(cfg.Circle),
		MassPerRadius: p.MassPerRadius,
		ChangeUp:      cfg.Circle.ChangeUp,
		MinChangeDown: cfg.Circle.MinChangeDown,
		Bounds:        Bounds{Width: cfg.World.Width, Height: cfg.World.Height},
		Material: physics.BodyDef{
			Type:           physics.Dynamic,
			Role:           physics.RoleCircle,
			Density:        p.Density,
			Friction:       p.Friction,
			Restitution:    p.Restitution,
			LinearDamping:  p.LinearDamping,
			AngularDamping: p.AngularDamping,
			FixedRotation:  true,
		},
	}
}

// Wrap returns the toroidal position of a circle. A circle wraps once it is
// entirely past an edge and reappears just outside the opposite edge, so a
// wrapped position never wraps again.
func Wrap(pos r2.Vec, radius float64, b Bounds) (r2.Vec, bool) {
	out := pos
	switch {
	case pos.X-radius > b.Width:
		out.X = -radius
	case pos.X+radius < 0:
		out.X = b.Width + radius
	}
	switch {
	case pos.Y-radius > b.Height:
		out.Y = -radius
	case pos.Y+radius < 0:
		out.Y = b.Height + radius
	}
	return out, out != pos
}

// ApplyWrap teleports a body whose circle has left the playfield.
func ApplyWrap(eng physics.Engine, id physics.BodyID, radius float64, b Bounds) bool {
	st, ok := eng.Body(id)
	if !ok {
		return false
	}
	pos, moved := Wrap(st.Position, radius, b)
	if moved {
		eng.SetTransform(id, pos, st.Angle)
	}
	return moved
}

// SyncBody pushes a radius to the body: shape size and mass. It reports
// whether a shape was resized; a body without one only gets its mass.
func SyncBody(eng physics.Engine, id physics.BodyID, radius, massPerRadius float64) bool {
	resized := eng.SetRadius(id, radius)
	eng.SetMass(id, massPerRadius*radius)
	return resized
}

// ApplySpeed rescales the body velocity to speed along its current heading.
// A body that lost all velocity keeps the last heading it had.
func ApplySpeed(eng physics.Engine, id physics.BodyID, speed float64, heading *float64) {
	st, ok := eng.Body(id)
	if !ok {
		return
	}
	v := st.Velocity
	cur := r2.Norm(v)
	if cur > 0 {
		*heading = math.Atan2(v.Y, v.X)
		if cur == speed {
			return
		}
	}
	eng.SetLinearVelocity(id, r2.Vec{
		X: speed * math.Cos(*heading),
		Y: speed * math.Sin(*heading),
	})
}

// GrowCircle advances the radius state machine of c by one tick and syncs
// the body when the radius changed.
func GrowCircle(eng physics.Engine, id physics.BodyID, c *components.Circle, p *components.ColorProfile, params *Params) bool {
	if !c.TickGrowth(p, params.Tuning) {
		return false
	}
	SyncBody(eng, id, c.Radius, params.MassPerRadius)
	return true
}

// UpdateCircle runs one tick of circle rules on a body: growth, speed limit,
// then wrap. Gone circles are left for the caller to remove.
func UpdateCircle(eng physics.Engine, id physics.BodyID, c *components.Circle, p *components.ColorProfile, params *Params, heading *float64) {
	GrowCircle(eng, id, c, p, params)
	if c.Gone {
		return
	}
	// A stopped body keeps its last heading, it is not turned around.
	ApplySpeed(eng, id, c.SpeedLimit(p), heading)
	ApplyWrap(eng, id, c.Radius, params.Bounds)
}
