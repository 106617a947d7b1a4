package systems

import (
	"iter"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/physics"
)

// GhostCircle is the copied state of one tracked circle.
type GhostCircle struct {
	Circle  components.Circle
	Heading float64
}

// GhostSnapshot is a value copy of the live world and its circles, keyed by
// body id. Running it never touches the live engine.
type GhostSnapshot struct {
	World   physics.Snapshot
	Circles map[physics.BodyID]GhostCircle
}

// TakeSnapshot copies every body of eng and the circle state of entities.
func TakeSnapshot(eng physics.Engine, entities iter.Seq[*Entity]) GhostSnapshot {
	s := GhostSnapshot{
		World:   physics.Capture(eng),
		Circles: make(map[physics.BodyID]GhostCircle),
	}
	for e := range entities {
		s.Circles[e.body] = GhostCircle{Circle: e.Circle, Heading: e.heading}
	}
	return s
}

// Sample is a predicted position of a circle at a future step.
type Sample struct {
	Step     int
	Position r2.Vec
	Color    components.Color
}

// Predictor fast-forwards ghost snapshots in throwaway engines.
type Predictor struct {
	factory  physics.Factory
	palette  *components.Palette
	params   *Params
	stepTime float64
}

// NewPredictor creates a predictor that builds sandboxes with factory.
func NewPredictor(factory physics.Factory, palette *components.Palette, params *Params, stepTime float64) *Predictor {
	return &Predictor{
		factory:  factory,
		palette:  palette,
		params:   params,
		stepTime: stepTime,
	}
}

// sandbox is one restored ghost world. It is dropped when a run ends.
type sandbox struct {
	engine  physics.Engine
	order   []physics.BodyID // tracked circles in creation order
	circles map[physics.BodyID]*GhostCircle
}

// restore builds a sandbox from snap with zero gravity. Markers become static
// and contacts merge ghost circles only.
func (p *Predictor) restore(snap GhostSnapshot) *sandbox {
	eng := p.factory(r2.Vec{})
	ids := snap.World.Restore(eng, func(def *physics.BodyDef) {
		if def.Role == physics.RoleGhost {
			def.Type = physics.Static
		}
	})

	sb := &sandbox{
		engine:  eng,
		circles: make(map[physics.BodyID]*GhostCircle, len(snap.Circles)),
	}
	for _, b := range snap.World.Bodies {
		gc, ok := snap.Circles[b.ID]
		if !ok || b.Role != physics.RoleCircle {
			continue
		}
		id := ids[b.ID]
		sb.circles[id] = &gc
		sb.order = append(sb.order, id)
	}

	merges := NewMergeEngine(func(id physics.BodyID) (*components.Circle, bool) {
		gc, ok := sb.circles[id]
		if !ok {
			return nil, false
		}
		return &gc.Circle, true
	})
	eng.SetContactListener(func(a, b physics.BodyID) { merges.HandleContact(a, b) })
	return sb
}

// step applies circle rules to every tracked circle, calling visit after each
// update, then steps physics. It stops early when visit returns false.
func (p *Predictor) step(sb *sandbox, visit func(physics.BodyID, *GhostCircle) bool) bool {
	for _, id := range sb.order {
		gc := sb.circles[id]
		if gc.Circle.Gone {
			continue
		}
		UpdateCircle(sb.engine, id, &gc.Circle, p.palette.Profile(gc.Circle.Color), p.params, &gc.Heading)
		if gc.Circle.Gone {
			sb.engine.DestroyBody(id)
			continue
		}
		if visit != nil && !visit(id, gc) {
			return false
		}
	}
	sb.engine.Step(p.stepTime)
	return true
}

// Run fast-forwards snap by steps ticks and returns the resulting state.
// Body ids in the result belong to the discarded sandbox.
func (p *Predictor) Run(snap GhostSnapshot, steps int) GhostSnapshot {
	sb := p.restore(snap)
	for range steps {
		p.step(sb, nil)
	}

	out := GhostSnapshot{
		World:   physics.Capture(sb.engine),
		Circles: make(map[physics.BodyID]GhostCircle, len(sb.order)),
	}
	for _, id := range sb.order {
		if gc := sb.circles[id]; !gc.Circle.Gone {
			out.Circles[id] = *gc
		}
	}
	return out
}

// SampleNear fast-forwards snap for horizon steps and yields the position of
// every settled circle within radius of point on each stride-th step.
// Shards and merging circles are skipped. The sequence runs its sandbox once;
// ranging over it again yields nothing.
func (p *Predictor) SampleNear(snap GhostSnapshot, horizon int, point r2.Vec, radius float64, stride int) iter.Seq[Sample] {
	used := false
	stride = max(stride, 1)
	return func(yield func(Sample) bool) {
		if used {
			return
		}
		used = true

		sb := p.restore(snap)
		r2sq := radius * radius
		for i := range horizon {
			sampled := i%stride == 0
			ok := p.step(sb, func(id physics.BodyID, gc *GhostCircle) bool {
				if !sampled || gc.Circle.FreshShard || gc.Circle.MergingAway {
					return true
				}
				st, ok := sb.engine.Body(id)
				if !ok || r2.Norm2(r2.Sub(st.Position, point)) >= r2sq {
					return true
				}
				return yield(Sample{Step: i, Position: st.Position, Color: gc.Circle.Color})
			})
			if !ok {
				return
			}
		}
	}
}
