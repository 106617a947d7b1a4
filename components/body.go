package components

// Shape holds the collision circle of a body. A zero radius means the body
// has no shape attached.
type Shape struct {
	Radius float64
}

// Material holds the surface and damping settings of a body.
type Material struct {
	Density        float64
	Friction       float64
	Restitution    float64
	LinearDamping  float64
	AngularDamping float64
	GravityScale   float64
	FixedRotation  bool
}

// Mass holds a body's mass. Static and kinematic bodies ignore it.
type Mass struct {
	Value float64
}

// InverseMass returns 1/mass, or 0 for a massless body.
func (m Mass) InverseMass() float64 {
	if m.Value <= 0 {
		return 0
	}
	return 1 / m.Value
}
