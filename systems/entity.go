package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/physics"
)

// Entity is a live circle: its radius state plus the physics body that
// carries it.
type Entity struct {
	ID     uint32
	Circle components.Circle

	profile *components.ColorProfile
	body    physics.BodyID
	engine  physics.Engine
	params  *Params
	heading float64 // radians, kept for bodies that stall
}

// NewEntity spawns a circle body at pos moving along degrees at its speed
// limit. A radius below the color floor spawns a fresh shard.
func NewEntity(id uint32, eng physics.Engine, params *Params, profile *components.ColorProfile, color components.Color, pos r2.Vec, degrees, radius float64) *Entity {
	e := &Entity{
		ID:      id,
		Circle:  components.NewCircle(color, radius, profile, params.Tuning),
		profile: profile,
		engine:  eng,
		params:  params,
		heading: degrees * math.Pi / 180,
	}

	speed := e.Circle.SpeedLimit(profile)
	def := params.Material
	def.Type = physics.Dynamic
	def.Role = physics.RoleCircle
	def.Owner = id
	def.Position = pos
	def.Angle = e.heading
	def.Velocity = r2.Vec{X: speed * math.Cos(e.heading), Y: speed * math.Sin(e.heading)}
	def.Radius = e.Circle.Radius
	def.Mass = params.MassPerRadius * e.Circle.Radius
	e.body = eng.CreateBody(def)
	return e
}

func (e *Entity) Body() physics.BodyID              { return e.body }
func (e *Entity) Profile() *components.ColorProfile { return e.profile }
func (e *Entity) Color() components.Color           { return e.Circle.Color }
func (e *Entity) Radius() float64                   { return e.Circle.Radius }
func (e *Entity) Disabled() bool                    { return e.Circle.Disabled() }
func (e *Entity) Gone() bool                        { return e.Circle.Gone }

// Effective returns the radius the entity contributes to its group power.
func (e *Entity) Effective() float64 {
	return e.Circle.Effective(e.profile)
}

// SpeedLimit returns the speed for the current radius state.
func (e *Entity) SpeedLimit() float64 {
	return e.Circle.SpeedLimit(e.profile)
}

// Position returns the body position, or the zero vector once the body is gone.
func (e *Entity) Position() r2.Vec {
	st, _ := e.engine.Body(e.body)
	return st.Position
}

// Heading returns the direction of travel in degrees. A stalled body keeps
// its last heading.
func (e *Entity) Heading() float64 { return e.heading * 180 / math.Pi }

// Velocity returns the body velocity.
func (e *Entity) Velocity() r2.Vec {
	st, _ := e.engine.Body(e.body)
	return st.Velocity
}

// Contains reports whether p lies within the circle grown by slack.
func (e *Entity) Contains(p r2.Vec, slack float64) bool {
	r := e.Circle.Radius + slack
	return r2.Norm2(r2.Sub(p, e.Position())) < r*r
}

// SetRadius clamps r to the floors that currently apply and syncs the body.
// The speed limit follows on the next Update.
func (e *Entity) SetRadius(r float64) {
	e.Circle.Radius = e.Circle.Clamp(r, e.profile, e.params.Tuning)
	SyncBody(e.engine, e.body, e.Circle.Radius, e.params.MassPerRadius)
}

// Update runs one tick: growth, speed, wrap. A circle that finished merging
// away is left for the caller to remove.
func (e *Entity) Update() {
	e.TickGrowth()
	if e.Gone() {
		return
	}
	e.ApplySpeed()
	e.ApplyBoundaryWrap()
}

// TickGrowth advances the radius state machine and reports whether the
// radius changed.
func (e *Entity) TickGrowth() bool {
	return GrowCircle(e.engine, e.body, &e.Circle, e.profile, e.params)
}

// ApplySpeed holds the body at the speed limit of its radius state.
func (e *Entity) ApplySpeed() {
	// A stopped body keeps its last heading, it is not turned around.
	ApplySpeed(e.engine, e.body, e.SpeedLimit(), &e.heading)
}

// ApplyBoundaryWrap wraps the body if it left the playfield.
func (e *Entity) ApplyBoundaryWrap() bool {
	return ApplyWrap(e.engine, e.body, e.Circle.Radius, e.params.Bounds)
}

// Release destroys the entity's body.
func (e *Entity) Release() {
	e.engine.DestroyBody(e.body)
}
