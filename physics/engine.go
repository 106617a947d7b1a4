// Package physics is the rigid-body seam the game drives: a minimal engine
// interface over circular bodies plus a small ECS-backed implementation.
package physics

import "gonum.org/v1/gonum/spatial/r2"

// BodyID identifies a body within one engine.
type BodyID uint32

// BodyType selects how a body is integrated.
type BodyType uint8

const (
	Static    BodyType = iota // never moves
	Kinematic                 // moves by its velocity, ignores forces and contacts
	Dynamic                   // fully simulated
)

// Role tags what a body represents. It is fixed at creation so callers never
// inspect user data to find out.
type Role uint8

const (
	RoleObstacle Role = iota // static scenery
	RoleCircle               // tracked colored circle
	RoleGhost                // non-interactive marker, no contacts
)

// String returns the role name.
func (r Role) String() string {
	switch r {
	case RoleObstacle:
		return "obstacle"
	case RoleCircle:
		return "circle"
	case RoleGhost:
		return "ghost"
	}
	return "unknown"
}

// BodyDef describes a body to create.
type BodyDef struct {
	Type  BodyType
	Role  Role
	Owner uint32 // id of the owning game object, 0 if none

	Position        r2.Vec
	Angle           float64
	Velocity        r2.Vec
	AngularVelocity float64

	Radius         float64 // 0 = no shape
	Density        float64
	Friction       float64
	Restitution    float64
	FixedRotation  bool
	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64

	Mass float64 // 0 = density * area
}

// BodyState is the public state of an existing body.
type BodyState struct {
	ID BodyID
	BodyDef
}

// HasShape reports whether a collision shape is attached.
func (s BodyState) HasShape() bool {
	return s.Radius > 0
}

// ContactFunc is called once when two shapes start touching.
type ContactFunc func(a, b BodyID)

// Engine is the capability set the game needs from a physics backend.
type Engine interface {
	CreateBody(def BodyDef) BodyID
	DestroyBody(id BodyID)
	Body(id BodyID) (BodyState, bool)
	// Bodies returns every body id in creation order.
	Bodies() []BodyID

	SetTransform(id BodyID, pos r2.Vec, angle float64)
	SetLinearVelocity(id BodyID, v r2.Vec)
	// SetRadius resizes the body's shape. It returns false when the body has
	// no shape to resize.
	SetRadius(id BodyID, r float64) bool
	SetMass(id BodyID, m float64)

	SetContactListener(fn ContactFunc)
	Step(dt float64)
}

// Factory creates an empty engine with the given gravity.
type Factory func(gravity r2.Vec) Engine
