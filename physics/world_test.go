package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

var testSettings = Settings{VelocityIterations: 6, PositionIterations: 2, CellSize: 1}

func ball(x, y, vx, vy, r float64) BodyDef {
	return BodyDef{
		Type:        Dynamic,
		Role:        RoleCircle,
		Position:    r2.Vec{X: x, Y: y},
		Velocity:    r2.Vec{X: vx, Y: vy},
		Radius:      r,
		Density:     1,
		Restitution: 1,
		Mass:        1,
	}
}

func TestCreateBodyRoundTrip(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	def := ball(1, 2, 3, 4, 0.5)
	def.Owner = 7
	def.Angle = 0.25
	def.LinearDamping = 0.1
	def.FixedRotation = true
	id := w.CreateBody(def)

	st, ok := w.Body(id)
	if !ok {
		t.Fatal("body not found")
	}
	if st.BodyDef != def {
		t.Errorf("state = %+v, want %+v", st.BodyDef, def)
	}

	noMass := ball(0, 0, 0, 0, 0.5)
	noMass.Mass = 0
	st, _ = w.Body(w.CreateBody(noMass))
	if want := math.Pi * 0.25; math.Abs(st.Mass-want) > 1e-12 {
		t.Errorf("derived mass = %f, want %f", st.Mass, want)
	}
}

func TestStepIntegration(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	dyn := w.CreateBody(ball(0, 0, 1, 2, 0.1))

	static := ball(5, 5, 1, 1, 0.1)
	static.Type = Static
	st := w.CreateBody(static)

	kin := ball(-5, -5, 1, 0, 0.1)
	kin.Type = Kinematic
	k := w.CreateBody(kin)

	w.Step(0.5)

	if b, _ := w.Body(dyn); b.Position != (r2.Vec{X: 0.5, Y: 1}) {
		t.Errorf("dynamic position = %v", b.Position)
	}
	if b, _ := w.Body(st); b.Position != (r2.Vec{X: 5, Y: 5}) {
		t.Errorf("static body moved to %v", b.Position)
	}
	if b, _ := w.Body(k); b.Position != (r2.Vec{X: -4.5, Y: -5}) {
		t.Errorf("kinematic position = %v", b.Position)
	}
}

func TestHeadOnCollisionSwapsVelocities(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	a := w.CreateBody(ball(0, 0, 1, 0, 0.5))
	b := w.CreateBody(ball(1.05, 0, -1, 0, 0.5))

	var contacts [][2]BodyID
	w.SetContactListener(func(x, y BodyID) {
		contacts = append(contacts, [2]BodyID{x, y})
	})

	for range 5 {
		w.Step(0.1)
	}

	if len(contacts) != 1 {
		t.Fatalf("got %d begin contacts, want 1", len(contacts))
	}
	if contacts[0] != [2]BodyID{a, b} {
		t.Errorf("contact order = %v, want [%d %d]", contacts[0], a, b)
	}

	sa, _ := w.Body(a)
	sb, _ := w.Body(b)
	if math.Abs(sa.Velocity.X+1) > 1e-9 || math.Abs(sb.Velocity.X-1) > 1e-9 {
		t.Errorf("velocities after collision = %v, %v; want swapped", sa.Velocity, sb.Velocity)
	}
	if sa.Position.X >= sb.Position.X {
		t.Errorf("bodies passed through each other: %v, %v", sa.Position, sb.Position)
	}
}

func TestGhostBodiesDoNotCollide(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	w.CreateBody(ball(0, 0, 0, 0, 0.5))
	ghost := ball(0.2, 0, 0, 0, 0.5)
	ghost.Role = RoleGhost
	g := w.CreateBody(ghost)

	called := false
	w.SetContactListener(func(_, _ BodyID) { called = true })
	w.Step(0.1)

	if called {
		t.Error("contact reported for ghost body")
	}
	if st, _ := w.Body(g); st.Position.X != 0.2 {
		t.Errorf("ghost body pushed to %v", st.Position)
	}
}

func TestDestroyBody(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	a := w.CreateBody(ball(0, 0, 0, 0, 0.5))
	b := w.CreateBody(ball(3, 0, 0, 0, 0.5))
	c := w.CreateBody(ball(6, 0, 0, 0, 0.5))

	w.DestroyBody(b)
	w.DestroyBody(b) // unknown ids are ignored

	ids := w.Bodies()
	if len(ids) != 2 || ids[0] != a || ids[1] != c {
		t.Errorf("bodies = %v, want [%d %d]", ids, a, c)
	}
	if _, ok := w.Body(b); ok {
		t.Error("destroyed body still reachable")
	}
}

func TestSetRadiusWithoutShape(t *testing.T) {
	w := NewWorld(r2.Vec{}, testSettings)

	shapeless := ball(0, 0, 0, 0, 0)
	id := w.CreateBody(shapeless)
	if w.SetRadius(id, 1) {
		t.Error("SetRadius succeeded on a body without a shape")
	}

	id = w.CreateBody(ball(0, 0, 0, 0, 0.5))
	if !w.SetRadius(id, 0.7) {
		t.Fatal("SetRadius failed")
	}
	if st, _ := w.Body(id); st.Radius != 0.7 {
		t.Errorf("radius = %f, want 0.7", st.Radius)
	}
}

func TestSnapshotRestoreIsIndependent(t *testing.T) {
	live := NewWorld(r2.Vec{}, testSettings)
	live.CreateBody(ball(0, 0, 1, 0, 0.5))
	live.CreateBody(ball(2, 0, -1, 0, 0.25))

	snap := Capture(live)

	sandbox := NewWorld(r2.Vec{}, testSettings)
	ids := snap.Restore(sandbox, nil)
	if len(ids) != 2 {
		t.Fatalf("restored %d bodies, want 2", len(ids))
	}
	if restored := Capture(sandbox); !restored.Equal(snap) {
		t.Fatalf("restored snapshot differs: %v", snap.Diff(restored))
	}

	for range 30 {
		sandbox.Step(0.1)
	}

	if after := Capture(live); !after.Equal(snap) {
		t.Errorf("live world changed by sandbox steps: %v", snap.Diff(after))
	}
	if moved := Capture(sandbox); moved.Equal(snap) {
		t.Error("sandbox did not advance")
	}
}

func TestSnapshotRestoreAdjust(t *testing.T) {
	live := NewWorld(r2.Vec{}, testSettings)
	marker := ball(0, 0, 1, 0, 0.5)
	marker.Role = RoleGhost
	marker.Type = Kinematic
	live.CreateBody(marker)

	sandbox := NewWorld(r2.Vec{}, testSettings)
	ids := Capture(live).Restore(sandbox, func(def *BodyDef) {
		if def.Role == RoleGhost {
			def.Type = Static
		}
	})

	for _, id := range ids {
		st, _ := sandbox.Body(id)
		if st.Type != Static {
			t.Errorf("ghost body type = %d, want static", st.Type)
		}
	}
}
