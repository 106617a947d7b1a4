package game

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
	"github.com/pthm-cable/circles/systems"
)

// Group is the set of live circles of one color and the power they share.
// Power is recorded at level load and never recomputed.
type Group struct {
	Color   components.Color
	Members []*systems.Entity
	Power   float64
}

// Active returns the number of members that are not merging away.
func (g *Group) Active() int {
	n := 0
	for _, m := range g.Members {
		if !m.Disabled() {
			n++
		}
	}
	return n
}

// Measured returns the current summed effective radius of the members.
func (g *Group) Measured() float64 {
	return systems.MeasurePower(g.Members)
}

// TickReport describes what one session tick did.
type TickReport struct {
	Merges     int
	Removed    int
	Allocated  bool
	Allocation systems.Allocation
	Completed  bool // level completed on this tick
}

// Session owns one level at a time: its engine, circles, groups, selection
// and timer.
type Session struct {
	cfg       *config.Config
	library   *levels.Library
	palette   *components.Palette
	params    systems.Params
	factory   physics.Factory
	alloc     systems.GrowthAllocator
	predictor *systems.Predictor

	engine physics.Engine
	merges *systems.MergeEngine
	groups [components.MaxColors]Group
	order  []*systems.Entity // creation order
	byBody map[physics.BodyID]*systems.Entity
	nextID uint32

	markers []physics.BodyID

	level     int
	levelName string
	intro     string
	selected  *systems.Entity
	held      bool
	completed bool

	tick    int32
	frames  int
	timer   float64
	seconds int
}

// NewSession creates a session with no level loaded.
func NewSession(cfg *config.Config, library *levels.Library, factory physics.Factory) (*Session, error) {
	palette, err := components.PaletteFromConfig(cfg.Colors)
	if err != nil {
		return nil, fmt.Errorf("building palette: %w", err)
	}
	s := &Session{
		cfg:     cfg,
		library: library,
		palette: palette,
		params:  systems.ParamsFromConfig(cfg),
		factory: factory,
		level:   -1,
	}
	s.alloc = systems.NewGrowthAllocator(&s.params)
	s.predictor = systems.NewPredictor(factory, palette, &s.params, cfg.Physics.StepTime)
	return s, nil
}

// LoadLevel replaces the current level with level i. On error the current
// level is left untouched.
func (s *Session) LoadLevel(i int) error {
	lv, err := s.library.Level(i)
	if err != nil {
		slog.Error("level load failed", "level", i, "error", err)
		return err
	}
	if err := lv.Validate(s.palette); err != nil {
		err = fmt.Errorf("level %d: %w", i, err)
		slog.Error("level load failed", "level", i, "error", err)
		return err
	}

	s.clear()
	s.setup(lv)

	power := lv.Power(s.palette)
	for c := range s.palette.Len() {
		s.groups[c] = Group{Color: components.Color(c), Power: power[c]}
	}

	for _, spec := range lv.Circles {
		color, _ := s.palette.Lookup(spec.Color)
		s.nextID++
		s.add(systems.NewEntity(s.nextID, s.engine, &s.params, s.palette.Profile(color), color,
			r2.Vec{X: spec.X, Y: spec.Y}, spec.Angle, spec.Radius))
	}

	s.level = i
	slog.Info("level loaded",
		"level", i,
		"name", lv.Name,
		"circles", len(lv.Circles),
		"obstacles", len(lv.Obstacles),
		"markers", len(lv.Markers),
	)
	return nil
}

// setup creates the engine and the scenery of lv: obstacles and markers.
func (s *Session) setup(lv levels.Level) {
	s.engine = s.factory(r2.Vec{})
	s.merges = systems.NewMergeEngine(s.lookup)
	s.engine.SetContactListener(s.merges.Queue)
	s.levelName = lv.Name
	s.intro = lv.Intro

	for _, o := range lv.Obstacles {
		s.engine.CreateBody(physics.BodyDef{
			Type:        physics.Static,
			Role:        physics.RoleObstacle,
			Position:    r2.Vec{X: o.X, Y: o.Y},
			Radius:      o.Radius,
			Density:     s.cfg.Physics.Density,
			Friction:    s.cfg.Physics.Friction,
			Restitution: s.cfg.Physics.Restitution,
		})
	}
	for _, m := range lv.Markers {
		rad := m.Angle * math.Pi / 180
		s.markers = append(s.markers, s.engine.CreateBody(physics.BodyDef{
			Type:     physics.Kinematic,
			Role:     physics.RoleGhost,
			Position: r2.Vec{X: m.X, Y: m.Y},
			Velocity: r2.Vec{X: m.Speed * math.Cos(rad), Y: m.Speed * math.Sin(rad)},
			Radius:   m.Radius,
		}))
	}
}

// add registers a new circle with its group.
func (s *Session) add(e *systems.Entity) {
	s.groups[e.Color()].Members = append(s.groups[e.Color()].Members, e)
	s.order = append(s.order, e)
	s.byBody[e.Body()] = e
}

// Restore rebuilds a level from a state dump. Scenery and intro come from
// the level library; circles, group powers, selection and timer from st.
// On error the current level is left untouched.
func (s *Session) Restore(st SessionState) error {
	lv, err := s.library.Level(st.Level)
	if err != nil {
		return fmt.Errorf("restoring state: %w", err)
	}
	colors := make([]components.Color, len(st.Circles))
	for i, cs := range st.Circles {
		c, ok := s.palette.Lookup(cs.Color)
		if !ok {
			return fmt.Errorf("restoring state: circle %d: unknown color %q", cs.ID, cs.Color)
		}
		if cs.Radius <= 0 {
			return fmt.Errorf("restoring state: circle %d: radius %g", cs.ID, cs.Radius)
		}
		colors[i] = c
	}
	var power [components.MaxColors]float64
	var recorded [components.MaxColors]bool
	for _, gs := range st.Groups {
		c, ok := s.palette.Lookup(gs.Color)
		if !ok {
			return fmt.Errorf("restoring state: unknown group color %q", gs.Color)
		}
		power[c], recorded[c] = gs.Power, true
	}

	s.clear()
	s.setup(lv)
	for i, cs := range st.Circles {
		c := colors[i]
		e := systems.NewEntity(cs.ID, s.engine, &s.params, s.palette.Profile(c), c,
			r2.Vec{X: cs.X, Y: cs.Y}, cs.Heading, cs.Radius)
		e.Circle.GrowthBuffer = cs.GrowthBuffer
		e.Circle.FreshShard = cs.FreshShard
		e.Circle.MergingAway = cs.MergingAway
		e.SetRadius(cs.Radius)
		s.nextID = max(s.nextID, cs.ID)
		s.add(e)
	}
	for c := range s.palette.Len() {
		g := &s.groups[c]
		g.Color = components.Color(c)
		g.Power = power[c]
		if !recorded[c] {
			// Older dumps without groups: pending growth counts toward power
			for _, m := range g.Members {
				g.Power += m.Effective() + m.Circle.GrowthBuffer
			}
		}
	}

	s.level = st.Level
	s.tick = st.Tick
	s.frames = int(st.Tick)
	s.seconds = st.Seconds
	s.completed = st.Completed
	if st.Selected != 0 {
		s.Select(st.Selected)
	}
	slog.Info("state restored", "level", st.Level, "tick", st.Tick, "circles", len(st.Circles))
	return nil
}

// wrapMarkers moves markers that drifted off the playfield to the opposite
// edge.
func (s *Session) wrapMarkers() {
	for _, id := range s.markers {
		if st, ok := s.engine.Body(id); ok {
			systems.ApplyWrap(s.engine, id, st.Radius, s.params.Bounds)
		}
	}
}

// SwitchLevel loads the next or previous level. It is a no-op returning
// levels.ErrLevelNotFound when there is no such level.
func (s *Session) SwitchLevel(forward bool) error {
	next := s.level - 1
	if forward {
		next = s.level + 1
	}
	if !s.library.Exists(next) {
		return fmt.Errorf("switching from level %d: %w", s.level, levels.ErrLevelNotFound)
	}
	return s.LoadLevel(next)
}

// Restart reloads the current level.
func (s *Session) Restart() error {
	if s.level < 0 {
		return errors.New("no level loaded")
	}
	return s.LoadLevel(s.level)
}

// clear drops every circle, the engine and the per-level state.
func (s *Session) clear() {
	s.engine = nil
	s.merges = nil
	s.groups = [components.MaxColors]Group{}
	s.order = nil
	s.byBody = make(map[physics.BodyID]*systems.Entity)
	s.markers = nil
	s.intro = ""
	s.levelName = ""
	s.selected = nil
	s.held = false
	s.completed = false
	s.tick = 0
	s.frames = 0
	s.timer = 0
	s.seconds = 0
}

func (s *Session) lookup(id physics.BodyID) (*components.Circle, bool) {
	e, ok := s.byBody[id]
	if !ok {
		return nil, false
	}
	return &e.Circle, true
}

// Tick advances the level by one fixed step. dt is the wall time the frame
// took and drives only the seconds counter.
func (s *Session) Tick(dt float64) TickReport {
	var r TickReport
	if s.engine == nil {
		return r
	}

	s.engine.Step(s.cfg.Physics.StepTime)
	s.wrapMarkers()
	for _, e := range s.order {
		e.Update()
	}
	r.Merges = s.merges.Flush()
	r.Removed = s.removeGone()

	if s.selected != nil && s.selected.Disabled() {
		s.selected = nil
	}
	if s.held && s.selected != nil {
		g := &s.groups[s.selected.Color()]
		r.Allocation = s.alloc.Apply(s.selected, g.Members, g.Power)
		r.Allocated = true
	}

	if !s.completed && s.checkCompletion() {
		s.completed = true
		r.Completed = true
		slog.Info("level completed", "level", s.level, "seconds", s.seconds, "ticks", s.tick)
	}

	s.frames++
	s.timer += dt
	if s.timer >= 1 && !s.completed {
		s.timer--
		s.seconds++
	}
	s.tick++
	return r
}

// removeGone releases circles that finished merging away.
func (s *Session) removeGone() int {
	removed := 0
	for c := range s.palette.Len() {
		g := &s.groups[c]
		kept := g.Members[:0]
		for _, m := range g.Members {
			if !m.Gone() {
				kept = append(kept, m)
				continue
			}
			delete(s.byBody, m.Body())
			m.Release()
			if s.selected == m {
				s.selected = nil
			}
			removed++
		}
		clear(g.Members[len(kept):])
		g.Members = kept
	}
	if removed > 0 {
		kept := s.order[:0]
		for _, e := range s.order {
			if !e.Gone() {
				kept = append(kept, e)
			}
		}
		clear(s.order[len(kept):])
		s.order = kept
	}
	return removed
}

// checkCompletion reports whether every color is down to one circle.
func (s *Session) checkCompletion() bool {
	for c := range s.palette.Len() {
		if len(s.groups[c].Members) > 1 {
			return false
		}
	}
	return true
}

// Select picks the circle with the given entity id. Disabled circles cannot
// be selected.
func (s *Session) Select(id uint32) bool {
	for _, e := range s.order {
		if e.ID == id && !e.Disabled() {
			s.selected = e
			return true
		}
	}
	return false
}

// SelectAt picks the circle nearest to p among those whose comfort area
// contains it. When nothing is hit the selection is kept.
func (s *Session) SelectAt(p r2.Vec) bool {
	var best *systems.Entity
	bestDist := math.Inf(1)
	for _, e := range s.order {
		if e.Disabled() || !e.Contains(p, s.cfg.Circle.ComfortRadius) {
			continue
		}
		if d := r2.Norm(r2.Sub(p, e.Position())); d < bestDist {
			best, bestDist = e, d
		}
	}
	if best == nil {
		return false
	}
	s.selected = best
	return true
}

// SetHeld sets whether the selected circle is being held.
func (s *Session) SetHeld(held bool) { s.held = held }

// Selected returns the selected circle, or nil.
func (s *Session) Selected() *systems.Entity { return s.selected }

// Entities yields the live circles in creation order.
func (s *Session) Entities() iter.Seq[*systems.Entity] {
	return func(yield func(*systems.Entity) bool) {
		for _, e := range s.order {
			if !yield(e) {
				return
			}
		}
	}
}

// Groups yields the group of every configured color.
func (s *Session) Groups() iter.Seq[*Group] {
	return func(yield func(*Group) bool) {
		for c := range s.palette.Len() {
			if !yield(&s.groups[c]) {
				return
			}
		}
	}
}

// Group returns the group of a color.
func (s *Session) Group(c components.Color) *Group {
	return &s.groups[c]
}

// Bodies returns the state of every body in the level, circles included.
func (s *Session) Bodies() []physics.BodyState {
	if s.engine == nil {
		return nil
	}
	return physics.Capture(s.engine).Bodies
}

// Preview predicts where circles near p will be over the preview horizon.
func (s *Session) Preview(p r2.Vec) iter.Seq[systems.Sample] {
	pc := s.cfg.Preview
	if !pc.Enabled || s.engine == nil {
		return func(func(systems.Sample) bool) {}
	}
	snap := systems.TakeSnapshot(s.engine, s.Entities())
	return s.predictor.SampleNear(snap, pc.Horizon, p, pc.Radius, pc.Stride)
}

// IntroMessage returns the level intro while it is visible.
func (s *Session) IntroMessage() string {
	if s.frames >= s.cfg.Session.IntroFrames {
		return ""
	}
	return s.intro
}

// IntroAlpha returns the intro opacity in [0, 1]. It stays opaque, then fades
// out linearly to the end of the intro.
func (s *Session) IntroAlpha() float64 {
	sc := s.cfg.Session
	switch {
	case s.intro == "" || s.frames >= sc.IntroFrames:
		return 0
	case s.frames <= sc.IntroFadeStart:
		return 1
	}
	return float64(sc.IntroFrames-s.frames) / float64(sc.IntroFrames-sc.IntroFadeStart)
}

func (s *Session) Level() int                   { return s.level }
func (s *Session) LevelName() string            { return s.levelName }
func (s *Session) Completed() bool              { return s.completed }
func (s *Session) Held() bool                   { return s.held }
func (s *Session) Seconds() int                 { return s.seconds }
func (s *Session) Ticks() int32                 { return s.tick }
func (s *Session) Palette() *components.Palette { return s.palette }
func (s *Session) HasNext() bool                { return s.library.Exists(s.level + 1) }
