package components

import "gonum.org/v1/gonum/spatial/r2"

// Position represents a body's world position.
type Position struct {
	X, Y float64
}

// Vec returns the position as a vector.
func (p Position) Vec() r2.Vec { return r2.Vec{X: p.X, Y: p.Y} }

// Velocity represents a body's linear velocity in world units per second.
type Velocity struct {
	X, Y float64
}

// Vec returns the velocity as a vector.
func (v Velocity) Vec() r2.Vec { return r2.Vec{X: v.X, Y: v.Y} }

// Rotation represents a body's orientation and angular velocity.
type Rotation struct {
	Angle  float64 // radians
	AngVel float64 // radians per second
}
