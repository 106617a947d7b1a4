package systems

import (
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/physics"
)

func (f *fixture) predictor() *Predictor {
	return NewPredictor(f.factory, f.palette, f.params, f.cfg.Physics.StepTime)
}

func (f *fixture) marker(x, y float64) physics.BodyID {
	return f.engine.CreateBody(physics.BodyDef{
		Type:     physics.Kinematic,
		Role:     physics.RoleGhost,
		Position: r2.Vec{X: x, Y: y},
		Velocity: r2.Vec{X: 1},
		Radius:   0.1,
	})
}

func TestPredictor_RunLeavesLiveStateAlone(t *testing.T) {
	f := newFixture(t)
	a := f.spawn(white, 5, 4.5, 0, 0.3)
	b := f.spawn(white, 6, 4.5, 180, 0.2)
	f.marker(1, 1)
	entities := []*Entity{a, b}

	liveContacts := 0
	f.engine.SetContactListener(func(_, _ physics.BodyID) { liveContacts++ })

	snap := TakeSnapshot(f.engine, slices.Values(entities))
	before := physics.Capture(f.engine)
	circleA, circleB := a.Circle, b.Circle

	out := f.predictor().Run(snap, 181)

	if after := physics.Capture(f.engine); !after.Equal(before) {
		t.Errorf("live bodies changed: %v", before.Diff(after))
	}
	if a.Circle != circleA || b.Circle != circleB {
		t.Errorf("live circles changed: %+v %+v", a.Circle, b.Circle)
	}
	if liveContacts != 0 {
		t.Errorf("live listener saw %d contacts", liveContacts)
	}

	// The ghost pair merged and the donor finished shrinking
	if len(out.Circles) != 1 {
		t.Fatalf("%d ghost circles left, want 1", len(out.Circles))
	}
	for _, gc := range out.Circles {
		if gc.Circle.Radius < 0.49 {
			t.Errorf("ghost survivor radius = %f, want about 0.5", gc.Circle.Radius)
		}
	}
}

func TestPredictor_MarkersAreStatic(t *testing.T) {
	f := newFixture(t)
	f.marker(1, 1)

	out := f.predictor().Run(TakeSnapshot(f.engine, slices.Values([]*Entity(nil))), 60)

	if len(out.World.Bodies) != 1 {
		t.Fatalf("%d bodies in sandbox, want 1", len(out.World.Bodies))
	}
	st := out.World.Bodies[0]
	if st.Type != physics.Static || st.Position != (r2.Vec{X: 1, Y: 1}) {
		t.Errorf("marker = %v at %v, want static at (1, 1)", st.Type, st.Position)
	}
}

func TestPredictor_SampleNear(t *testing.T) {
	f := newFixture(t)
	e := f.spawn(white, 8, 4.5, 0, 0.3)
	far := f.spawn(white, 2, 2, 90, 0.3) // outside the sample radius

	p := f.predictor()
	seq := p.SampleNear(TakeSnapshot(f.engine, slices.Values([]*Entity{e, far})), 181, r2.Vec{X: 8, Y: 4.5}, 2, 10)

	var steps []int
	for s := range seq {
		if s.Color != white {
			t.Errorf("sample color = %d, want white", s.Color)
		}
		if r2.Norm(r2.Sub(s.Position, r2.Vec{X: 8, Y: 4.5})) >= 2 {
			t.Errorf("sample %v outside radius", s.Position)
		}
		steps = append(steps, s.Step)
	}

	if len(steps) != 19 {
		t.Fatalf("got %d samples, want 19", len(steps))
	}
	for i, s := range steps {
		if s != i*10 {
			t.Errorf("sample %d at step %d, want %d", i, s, i*10)
		}
	}

	for range seq {
		t.Fatal("sequence yielded on a second range")
	}
}

func TestPredictor_SampleNearSkipsShards(t *testing.T) {
	f := newFixture(t)
	shard := f.spawn(white, 8, 4.5, 0, 0.01)
	snap := TakeSnapshot(f.engine, slices.Values([]*Entity{shard}))

	var first *Sample
	for s := range f.predictor().SampleNear(snap, 181, r2.Vec{X: 8, Y: 4.5}, 2, 10) {
		first = &s
		break
	}
	if first == nil {
		t.Fatal("no samples once the shard settled")
	}
	if first.Step != 10 {
		t.Errorf("first sample at step %d, want 10", first.Step)
	}
}
