package game

import (
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// CircleState is the dump form of one circle.
type CircleState struct {
	ID           uint32  `yaml:"id"`
	Color        string  `yaml:"color"`
	X            float64 `yaml:"x"`
	Y            float64 `yaml:"y"`
	Radius       float64 `yaml:"radius"`
	Heading      float64 `yaml:"heading"`
	GrowthBuffer float64 `yaml:"growth_buffer,omitempty"`
	MergingAway  bool    `yaml:"merging_away,omitempty"`
	FreshShard   bool    `yaml:"fresh_shard,omitempty"`
}

// GroupState is the dump form of one color group.
type GroupState struct {
	Color    string  `yaml:"color"`
	Members  int     `yaml:"members"`
	Power    float64 `yaml:"power"`
	Measured float64 `yaml:"measured"`
}

// SessionState is a readable dump of the running level, used for bug
// reports and level authoring.
type SessionState struct {
	Level     int           `yaml:"level"`
	Name      string        `yaml:"name,omitempty"`
	Tick      int32         `yaml:"tick"`
	Seconds   int           `yaml:"seconds"`
	Completed bool          `yaml:"completed"`
	Selected  uint32        `yaml:"selected,omitempty"`
	Groups    []GroupState  `yaml:"groups"`
	Circles   []CircleState `yaml:"circles"`
}

// State captures the current level state.
func (s *Session) State() SessionState {
	st := SessionState{
		Level:     s.level,
		Name:      s.levelName,
		Tick:      s.tick,
		Seconds:   s.seconds,
		Completed: s.completed,
	}
	if s.selected != nil {
		st.Selected = s.selected.ID
	}
	for g := range s.Groups() {
		if len(g.Members) == 0 {
			continue
		}
		st.Groups = append(st.Groups, GroupState{
			Color:    s.palette.Profile(g.Color).Name,
			Members:  len(g.Members),
			Power:    g.Power,
			Measured: g.Measured(),
		})
	}
	for e := range s.Entities() {
		p := e.Position()
		st.Circles = append(st.Circles, CircleState{
			ID:           e.ID,
			Color:        e.Profile().Name,
			X:            p.X,
			Y:            p.Y,
			Radius:       e.Radius(),
			Heading:      e.Heading(),
			GrowthBuffer: e.Circle.GrowthBuffer,
			MergingAway:  e.Circle.MergingAway,
			FreshShard:   e.Circle.FreshShard,
		})
	}
	return st
}

// YAML encodes the state.
func (st SessionState) YAML() ([]byte, error) {
	data, err := yaml.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("marshaling session state: %w", err)
	}
	return data, nil
}

// CircleView is the inspector panel of one circle.
type CircleView struct {
	ID        uint32
	Color     string
	Position  string
	Heading   float64 `inspect:"angle"`
	Speed     float64
	Radius    float64
	Effective float64
	Share     float64 `inspect:"bar"` // of the group power
	Buffer    float64 `inspect:"label,fmt:%+.4f"`
	Shard     bool
	Merging   bool
}

// View returns the inspector view of the selected circle, or nil.
func (s *Session) View() *CircleView {
	e := s.selected
	if e == nil {
		return nil
	}
	p, v := e.Position(), e.Velocity()
	view := &CircleView{
		ID:        e.ID,
		Color:     e.Profile().Name,
		Position:  fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y),
		Heading:   math.Atan2(v.Y, v.X),
		Speed:     math.Hypot(v.X, v.Y),
		Radius:    e.Radius(),
		Effective: e.Effective(),
		Buffer:    e.Circle.GrowthBuffer,
		Shard:     e.Circle.FreshShard,
		Merging:   e.Circle.MergingAway,
	}
	if power := s.groups[e.Color()].Power; power > 0 {
		view.Share = view.Effective / power
	}
	return view
}
