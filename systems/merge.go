package systems

import (
	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/physics"
)

// Interaction is the outcome of two circles touching.
type Interaction uint8

const (
	InteractionNone Interaction = iota
	InteractionMerge
)

func (i Interaction) String() string {
	if i == InteractionMerge {
		return "merge"
	}
	return "none"
}

// InteractionOf returns what happens when circles of colors a and b touch.
// Only equal colors interact.
func InteractionOf(a, b components.Color) Interaction {
	if a == b {
		return InteractionMerge
	}
	return InteractionNone
}

// Merge makes recipient absorb donor: the donor's radius and pending buffer
// move into the recipient's buffer and the donor starts merging away. The
// group power is unchanged. Disabled circles and the circle itself are
// ignored.
func Merge(recipient, donor *components.Circle) Interaction {
	if recipient == donor || recipient.Disabled() || donor.Disabled() {
		return InteractionNone
	}
	if InteractionOf(recipient.Color, donor.Color) != InteractionMerge {
		return InteractionNone
	}
	recipient.GrowthBuffer += donor.Radius + donor.GrowthBuffer
	donor.GrowthBuffer = 0
	donor.MergingAway = true
	return InteractionMerge
}

// CircleLookup resolves the circle carried by a body. It returns false for
// bodies that are not tracked circles.
type CircleLookup func(physics.BodyID) (*components.Circle, bool)

type contact struct {
	a, b physics.BodyID
}

// MergeEngine turns begin contacts into merges. The first body of a contact
// is the recipient.
type MergeEngine struct {
	lookup  CircleLookup
	pending []contact
	merges  int
}

// NewMergeEngine creates a merge engine over the given lookup.
func NewMergeEngine(lookup CircleLookup) *MergeEngine {
	return &MergeEngine{lookup: lookup}
}

// HandleContact applies a contact immediately.
func (m *MergeEngine) HandleContact(a, b physics.BodyID) Interaction {
	ca, ok := m.lookup(a)
	if !ok {
		return InteractionNone
	}
	cb, ok := m.lookup(b)
	if !ok {
		return InteractionNone
	}
	res := Merge(ca, cb)
	if res == InteractionMerge {
		m.merges++
	}
	return res
}

// Queue records a contact for the next Flush. It has the physics.ContactFunc
// signature so it can be installed as the contact listener directly.
func (m *MergeEngine) Queue(a, b physics.BodyID) {
	m.pending = append(m.pending, contact{a, b})
}

// Flush applies queued contacts in arrival order and returns how many merged.
func (m *MergeEngine) Flush() int {
	n := 0
	for _, c := range m.pending {
		if m.HandleContact(c.a, c.b) == InteractionMerge {
			n++
		}
	}
	m.pending = m.pending[:0]
	return n
}

// Pending returns the number of queued contacts.
func (m *MergeEngine) Pending() int { return len(m.pending) }

// Merges returns the total number of merges applied.
func (m *MergeEngine) Merges() int { return m.merges }
