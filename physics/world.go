package physics

import (
	"math"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/config"
)

// Contact solver tuning.
const (
	linearSlop       = 0.005 // allowed penetration before position correction
	correctionFactor = 0.8   // fraction of penetration removed per position iteration
)

// bodyInfo tags an ECS entity as a physics body.
type bodyInfo struct {
	ID    BodyID
	Type  BodyType
	Role  Role
	Owner uint32
}

// Settings holds solver parameters.
type Settings struct {
	VelocityIterations int
	PositionIterations int
	CellSize           float64 // minimum broad-phase cell size
}

// SettingsFromConfig returns solver settings from config.
func SettingsFromConfig(c config.PhysicsConfig) Settings {
	return Settings{
		VelocityIterations: c.VelocityIterations,
		PositionIterations: c.PositionIterations,
		CellSize:           c.GridCellSize,
	}
}

// NewFactory returns a Factory producing Worlds with the given settings.
func NewFactory(s Settings) Factory {
	return func(gravity r2.Vec) Engine {
		return NewWorld(gravity, s)
	}
}

// pair is an unordered body pair keyed low id first.
type pair struct {
	a, b BodyID
}

func makePair(a, b BodyID) pair {
	if a > b {
		a, b = b, a
	}
	return pair{a: a, b: b}
}

// candidate is a shaped body taking part in this step's contact solve.
type candidate struct {
	id          BodyID
	pos         *components.Position
	vel         *components.Velocity
	radius      float64
	invMass     float64
	restitution float64
}

// contact is an overlapping candidate pair.
type contact struct {
	i, j int
}

// World is a circle-only rigid-body engine storing bodies as ECS entities.
type World struct {
	world *ecs.World

	mapper *ecs.Map7[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Shape,
		components.Material,
		components.Mass,
		bodyInfo,
	]
	motion *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Rotation,
		components.Material,
		bodyInfo,
	]

	posMap   *ecs.Map1[components.Position]
	velMap   *ecs.Map1[components.Velocity]
	rotMap   *ecs.Map1[components.Rotation]
	shapeMap *ecs.Map1[components.Shape]
	matMap   *ecs.Map1[components.Material]
	massMap  *ecs.Map1[components.Mass]
	infoMap  *ecs.Map1[bodyInfo]

	entities map[BodyID]ecs.Entity
	order    []BodyID
	nextID   BodyID

	gravity  r2.Vec
	settings Settings

	grid       grid
	candidates []candidate
	contacts   []contact
	touching   map[pair]struct{}
	nextTouch  map[pair]struct{}
	begun      []pair
	onContact  ContactFunc
}

// NewWorld creates an empty world.
func NewWorld(gravity r2.Vec, s Settings) *World {
	world := ecs.NewWorld()

	return &World{
		world: world,
		mapper: ecs.NewMap7[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Shape,
			components.Material,
			components.Mass,
			bodyInfo,
		](world),
		motion: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Rotation,
			components.Material,
			bodyInfo,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		velMap:    ecs.NewMap1[components.Velocity](world),
		rotMap:    ecs.NewMap1[components.Rotation](world),
		shapeMap:  ecs.NewMap1[components.Shape](world),
		matMap:    ecs.NewMap1[components.Material](world),
		massMap:   ecs.NewMap1[components.Mass](world),
		infoMap:   ecs.NewMap1[bodyInfo](world),
		entities:  make(map[BodyID]ecs.Entity),
		gravity:   gravity,
		settings:  s,
		touching:  make(map[pair]struct{}),
		nextTouch: make(map[pair]struct{}),
	}
}

// CreateBody adds a body and returns its id.
func (w *World) CreateBody(def BodyDef) BodyID {
	w.nextID++
	id := w.nextID

	mass := def.Mass
	if mass <= 0 && def.Radius > 0 {
		mass = def.Density * math.Pi * def.Radius * def.Radius
	}

	pos := components.Position{X: def.Position.X, Y: def.Position.Y}
	vel := components.Velocity{X: def.Velocity.X, Y: def.Velocity.Y}
	rot := components.Rotation{Angle: def.Angle, AngVel: def.AngularVelocity}
	shape := components.Shape{Radius: def.Radius}
	mat := components.Material{
		Density:        def.Density,
		Friction:       def.Friction,
		Restitution:    def.Restitution,
		LinearDamping:  def.LinearDamping,
		AngularDamping: def.AngularDamping,
		GravityScale:   def.GravityScale,
		FixedRotation:  def.FixedRotation,
	}
	m := components.Mass{Value: mass}
	info := bodyInfo{ID: id, Type: def.Type, Role: def.Role, Owner: def.Owner}

	w.entities[id] = w.mapper.NewEntity(&pos, &vel, &rot, &shape, &mat, &m, &info)
	w.order = append(w.order, id)
	return id
}

// DestroyBody removes a body. Unknown ids are ignored.
func (w *World) DestroyBody(id BodyID) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	w.world.RemoveEntity(e)
	delete(w.entities, id)
	if i := slices.Index(w.order, id); i >= 0 {
		w.order = slices.Delete(w.order, i, i+1)
	}
	for p := range w.touching {
		if p.a == id || p.b == id {
			delete(w.touching, p)
		}
	}
}

// Body returns the public state of a body.
func (w *World) Body(id BodyID) (BodyState, bool) {
	e, ok := w.entities[id]
	if !ok {
		return BodyState{}, false
	}
	pos := w.posMap.Get(e)
	vel := w.velMap.Get(e)
	rot := w.rotMap.Get(e)
	shape := w.shapeMap.Get(e)
	mat := w.matMap.Get(e)
	mass := w.massMap.Get(e)
	info := w.infoMap.Get(e)

	return BodyState{
		ID: id,
		BodyDef: BodyDef{
			Type:            info.Type,
			Role:            info.Role,
			Owner:           info.Owner,
			Position:        pos.Vec(),
			Angle:           rot.Angle,
			Velocity:        vel.Vec(),
			AngularVelocity: rot.AngVel,
			Radius:          shape.Radius,
			Density:         mat.Density,
			Friction:        mat.Friction,
			Restitution:     mat.Restitution,
			FixedRotation:   mat.FixedRotation,
			LinearDamping:   mat.LinearDamping,
			AngularDamping:  mat.AngularDamping,
			GravityScale:    mat.GravityScale,
			Mass:            mass.Value,
		},
	}, true
}

// Bodies returns every body id in creation order.
func (w *World) Bodies() []BodyID {
	return slices.Clone(w.order)
}

// SetTransform teleports a body.
func (w *World) SetTransform(id BodyID, p r2.Vec, angle float64) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	pos := w.posMap.Get(e)
	pos.X, pos.Y = p.X, p.Y
	w.rotMap.Get(e).Angle = angle
}

// SetLinearVelocity sets a body's velocity.
func (w *World) SetLinearVelocity(id BodyID, v r2.Vec) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	vel := w.velMap.Get(e)
	vel.X, vel.Y = v.X, v.Y
}

// SetRadius resizes a body's shape.
func (w *World) SetRadius(id BodyID, r float64) bool {
	e, ok := w.entities[id]
	if !ok {
		return false
	}
	shape := w.shapeMap.Get(e)
	if shape.Radius <= 0 {
		return false
	}
	shape.Radius = r
	return true
}

// SetMass overrides a body's mass.
func (w *World) SetMass(id BodyID, m float64) {
	e, ok := w.entities[id]
	if !ok {
		return
	}
	w.massMap.Get(e).Value = m
}

// SetContactListener sets the begin-contact callback.
func (w *World) SetContactListener(fn ContactFunc) {
	w.onContact = fn
}

// Step advances the world by dt seconds. Begin-contact callbacks run after
// the solver, in creation order of the first body of each pair.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.integrate(dt)
	w.solveContacts()

	if w.onContact != nil {
		for _, p := range w.begun {
			w.onContact(p.a, p.b)
		}
	}
}

// integrate moves kinematic and dynamic bodies by their velocity.
func (w *World) integrate(dt float64) {
	query := w.motion.Query()
	for query.Next() {
		pos, vel, rot, mat, info := query.Get()

		if info.Type == Static {
			continue
		}

		if info.Type == Dynamic {
			vel.X += w.gravity.X * mat.GravityScale * dt
			vel.Y += w.gravity.Y * mat.GravityScale * dt

			// Same damping model as Box2D: v *= 1 / (1 + dt*c)
			damp := 1 / (1 + dt*mat.LinearDamping)
			vel.X *= damp
			vel.Y *= damp
			rot.AngVel *= 1 / (1 + dt*mat.AngularDamping)
		}

		pos.X += vel.X * dt
		pos.Y += vel.Y * dt

		if !mat.FixedRotation {
			rot.Angle += rot.AngVel * dt
		}
	}
}

// solveContacts finds overlapping shapes, resolves them and records the
// pairs that started touching this step.
func (w *World) solveContacts() {
	w.collectCandidates()
	w.findContacts()

	for range max(w.settings.VelocityIterations, 1) {
		for _, c := range w.contacts {
			resolveVelocity(&w.candidates[c.i], &w.candidates[c.j])
		}
	}
	for range max(w.settings.PositionIterations, 1) {
		for _, c := range w.contacts {
			resolvePosition(&w.candidates[c.i], &w.candidates[c.j])
		}
	}

	clear(w.nextTouch)
	w.begun = w.begun[:0]
	for _, c := range w.contacts {
		p := pair{a: w.candidates[c.i].id, b: w.candidates[c.j].id}
		w.nextTouch[makePair(p.a, p.b)] = struct{}{}
		if _, was := w.touching[makePair(p.a, p.b)]; !was {
			w.begun = append(w.begun, p)
		}
	}
	w.touching, w.nextTouch = w.nextTouch, w.touching
}

// collectCandidates gathers shaped, interacting bodies in creation order.
func (w *World) collectCandidates() {
	w.candidates = w.candidates[:0]
	for _, id := range w.order {
		e := w.entities[id]
		info := w.infoMap.Get(e)
		shape := w.shapeMap.Get(e)
		if info.Role == RoleGhost || shape.Radius <= 0 {
			continue
		}
		invMass := 0.0
		if info.Type == Dynamic {
			invMass = w.massMap.Get(e).InverseMass()
		}
		w.candidates = append(w.candidates, candidate{
			id:          id,
			pos:         w.posMap.Get(e),
			vel:         w.velMap.Get(e),
			radius:      shape.Radius,
			invMass:     invMass,
			restitution: w.matMap.Get(e).Restitution,
		})
	}
}

// findContacts fills w.contacts with overlapping candidate pairs.
func (w *World) findContacts() {
	w.contacts = w.contacts[:0]
	if len(w.candidates) < 2 {
		return
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	maxR := 0.0
	for _, c := range w.candidates {
		minX = min(minX, c.pos.X)
		minY = min(minY, c.pos.Y)
		maxX = max(maxX, c.pos.X)
		maxY = max(maxY, c.pos.Y)
		maxR = max(maxR, c.radius)
	}
	w.grid.reset(minX, minY, maxX, maxY, max(w.settings.CellSize, 2*maxR))
	for i, c := range w.candidates {
		w.grid.insert(i, c.pos.X, c.pos.Y)
	}

	for i := range w.candidates {
		a := &w.candidates[i]
		w.grid.neighbors(a.pos.X, a.pos.Y, func(j int) {
			if j <= i {
				return
			}
			b := &w.candidates[j]
			dx := b.pos.X - a.pos.X
			dy := b.pos.Y - a.pos.Y
			rs := a.radius + b.radius
			if dx*dx+dy*dy < rs*rs {
				w.contacts = append(w.contacts, contact{i: i, j: j})
			}
		})
	}
}

// contactNormal returns the unit normal from a to b and their distance.
func contactNormal(a, b *candidate) (r2.Vec, float64) {
	d := r2.Sub(b.pos.Vec(), a.pos.Vec())
	dist := r2.Norm(d)
	if dist < 1e-12 {
		return r2.Vec{X: 1}, 0
	}
	return r2.Scale(1/dist, d), dist
}

// resolveVelocity applies a restitution impulse along the contact normal.
func resolveVelocity(a, b *candidate) {
	invSum := a.invMass + b.invMass
	if invSum == 0 {
		return
	}
	n, _ := contactNormal(a, b)
	rel := r2.Sub(b.vel.Vec(), a.vel.Vec())
	vn := r2.Dot(rel, n)
	if vn >= 0 {
		return
	}
	e := max(a.restitution, b.restitution)
	j := -(1 + e) * vn / invSum

	a.vel.X -= j * a.invMass * n.X
	a.vel.Y -= j * a.invMass * n.Y
	b.vel.X += j * b.invMass * n.X
	b.vel.Y += j * b.invMass * n.Y
}

// resolvePosition pushes overlapping shapes apart, weighted by inverse mass.
func resolvePosition(a, b *candidate) {
	invSum := a.invMass + b.invMass
	if invSum == 0 {
		return
	}
	n, dist := contactNormal(a, b)
	pen := a.radius + b.radius - dist
	if pen <= linearSlop {
		return
	}
	corr := (pen - linearSlop) * correctionFactor / invSum

	a.pos.X -= n.X * corr * a.invMass
	a.pos.Y -= n.Y * corr * a.invMass
	b.pos.X += n.X * corr * b.invMass
	b.pos.Y += n.Y * corr * b.invMass
}
