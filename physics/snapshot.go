package physics

import (
	"fmt"
	"slices"
)

// Snapshot is a value copy of every body in an engine. It shares no state
// with the engine it was captured from.
type Snapshot struct {
	Bodies []BodyState
}

// Capture copies the public state of every body in creation order.
func Capture(e Engine) Snapshot {
	ids := e.Bodies()
	s := Snapshot{Bodies: make([]BodyState, 0, len(ids))}
	for _, id := range ids {
		if st, ok := e.Body(id); ok {
			s.Bodies = append(s.Bodies, st)
		}
	}
	return s
}

// Restore creates every snapshot body in dst, passing each definition through
// adjust first when it is non-nil. It returns snapshot id -> new id.
func (s Snapshot) Restore(dst Engine, adjust func(*BodyDef)) map[BodyID]BodyID {
	ids := make(map[BodyID]BodyID, len(s.Bodies))
	for _, b := range s.Bodies {
		def := b.BodyDef
		if adjust != nil {
			adjust(&def)
		}
		ids[b.ID] = dst.CreateBody(def)
	}
	return ids
}

// Equal reports whether two snapshots hold identical bodies.
func (s Snapshot) Equal(o Snapshot) bool {
	return slices.Equal(s.Bodies, o.Bodies)
}

// Diff describes how o differs from s, one line per differing body.
func (s Snapshot) Diff(o Snapshot) []string {
	var out []string
	if len(s.Bodies) != len(o.Bodies) {
		out = append(out, fmt.Sprintf("body count %d != %d", len(s.Bodies), len(o.Bodies)))
	}
	for i := range min(len(s.Bodies), len(o.Bodies)) {
		a, b := s.Bodies[i], o.Bodies[i]
		if a == b {
			continue
		}
		switch {
		case a.ID != b.ID:
			out = append(out, fmt.Sprintf("body %d: id %d != %d", i, a.ID, b.ID))
		case a.Position != b.Position:
			out = append(out, fmt.Sprintf("body %d: position %v != %v", a.ID, a.Position, b.Position))
		case a.Velocity != b.Velocity:
			out = append(out, fmt.Sprintf("body %d: velocity %v != %v", a.ID, a.Velocity, b.Velocity))
		case a.Radius != b.Radius:
			out = append(out, fmt.Sprintf("body %d: radius %g != %g", a.ID, a.Radius, b.Radius))
		default:
			out = append(out, fmt.Sprintf("body %d: %+v != %+v", a.ID, a.BodyDef, b.BodyDef))
		}
	}
	return out
}
