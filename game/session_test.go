package game

import (
	"bytes"
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
	"github.com/pthm-cable/circles/systems"
)

const testLevels = `
levels:
  - name: pair
    intro: hello
    circles:
      - {x: 4, y: 4.5, angle: 0, radius: 0.5, color: white}
      - {x: 12, y: 4.5, angle: 180, radius: 0.5, color: white}
  - name: solo
    circles:
      - {x: 4, y: 4.5, angle: 0, radius: 0.3, color: white}
      - {x: 12, y: 4.5, angle: 0, radius: 0.3, color: blue}
`

const markerLevels = `
levels:
  - name: drift
    circles:
      - {x: 4, y: 1, angle: 90, radius: 0.3, color: white}
    markers:
      - {x: 15.5, y: 8, radius: 0.4, angle: 0, speed: 6}
`

func newTestSession(t *testing.T) *Session {
	t.Helper()
	return newSessionFrom(t, testLevels)
}

func newSessionFrom(t *testing.T, src string) *Session {
	t.Helper()
	cfg := config.Default()
	lib, err := levels.Parse([]byte(src))
	if err != nil {
		t.Fatalf("parsing levels: %v", err)
	}
	s, err := NewSession(cfg, lib, physics.NewFactory(physics.SettingsFromConfig(cfg.Physics)))
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if err := s.LoadLevel(0); err != nil {
		t.Fatalf("LoadLevel(0): %v", err)
	}
	return s
}

func members(s *Session) []*systems.Entity {
	var out []*systems.Entity
	for e := range s.Entities() {
		out = append(out, e)
	}
	return out
}

func TestSession_LoadLevel(t *testing.T) {
	s := newTestSession(t)

	if s.Level() != 0 || s.LevelName() != "pair" {
		t.Errorf("level = %d %q, want 0 \"pair\"", s.Level(), s.LevelName())
	}
	if n := len(members(s)); n != 2 {
		t.Fatalf("circles = %d, want 2", n)
	}
	g := s.Group(0)
	if len(g.Members) != 2 || math.Abs(g.Power-1.0) > 1e-12 {
		t.Errorf("white group = %d members, power %f", len(g.Members), g.Power)
	}
	if got := len(s.Bodies()); got != 2 {
		t.Errorf("bodies = %d, want 2", got)
	}
}

func TestSession_UnknownLevelKeepsState(t *testing.T) {
	s := newTestSession(t)
	s.Select(members(s)[0].ID)

	err := s.LoadLevel(7)
	if !errors.Is(err, levels.ErrLevelNotFound) {
		t.Fatalf("LoadLevel(7) error = %v, want ErrLevelNotFound", err)
	}
	if s.Level() != 0 || len(members(s)) != 2 || s.Selected() == nil {
		t.Error("failed load changed the running level")
	}

	if err := s.SwitchLevel(false); !errors.Is(err, levels.ErrLevelNotFound) {
		t.Errorf("SwitchLevel(false) from first level error = %v", err)
	}
	if err := s.SwitchLevel(true); err != nil {
		t.Fatalf("SwitchLevel(true): %v", err)
	}
	if err := s.SwitchLevel(true); !errors.Is(err, levels.ErrLevelNotFound) {
		t.Errorf("SwitchLevel(true) past the end error = %v", err)
	}
	if s.Level() != 1 || s.HasNext() {
		t.Errorf("level = %d, has next %v", s.Level(), s.HasNext())
	}
}

func TestSession_HeldTickMovesPower(t *testing.T) {
	s := newTestSession(t)
	es := members(s)
	if !s.Select(es[0].ID) {
		t.Fatal("Select failed")
	}
	s.SetHeld(true)

	r := s.Tick(1.0 / 60)

	if !r.Allocated || r.Allocation.Result != systems.AllocationApplied {
		t.Fatalf("allocation = %+v", r.Allocation)
	}
	if math.Abs(es[0].Radius()-0.51) > 1e-9 || math.Abs(es[1].Radius()-0.49) > 1e-9 {
		t.Errorf("radii = %f, %f; want 0.51, 0.49", es[0].Radius(), es[1].Radius())
	}
	if got := s.Group(0).Measured(); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("measured power = %f, want 1.0", got)
	}

	// Released selection leaves radii alone
	s.SetHeld(false)
	r = s.Tick(1.0 / 60)
	if r.Allocated || math.Abs(es[0].Radius()-0.51) > 1e-9 {
		t.Errorf("tick without hold allocated: %+v, radius %f", r, es[0].Radius())
	}
}

func TestSession_CompletionLatchesAndStopsTimer(t *testing.T) {
	s := newTestSession(t)
	if err := s.LoadLevel(1); err != nil {
		t.Fatal(err)
	}

	r := s.Tick(0.6)
	if !r.Completed || !s.Completed() {
		t.Fatal("single-circle colors should complete on the first tick")
	}
	r = s.Tick(0.6)
	if r.Completed {
		t.Error("completion reported twice")
	}
	if !s.Completed() {
		t.Error("completion did not latch")
	}
	if s.Seconds() != 0 {
		t.Errorf("seconds = %d after completion, want 0", s.Seconds())
	}
}

func TestSession_Timer(t *testing.T) {
	s := newTestSession(t)

	for range 8 {
		s.Tick(0.25)
	}
	if s.Seconds() != 2 {
		t.Errorf("seconds = %d, want 2", s.Seconds())
	}
	if s.Ticks() != 8 {
		t.Errorf("ticks = %d, want 8", s.Ticks())
	}

	if err := s.Restart(); err != nil {
		t.Fatal(err)
	}
	if s.Seconds() != 0 || s.Ticks() != 0 {
		t.Error("restart kept the timer")
	}
}

func TestSession_IntroFades(t *testing.T) {
	s := newTestSession(t)
	dt := 1.0 / 60

	tests := []struct {
		frames int
		alpha  float64
		msg    string
	}{
		{0, 1, "hello"},
		{100, 1, "hello"},
		{125, 0.5, "hello"},
		{150, 0, ""},
	}
	done := 0
	for _, tt := range tests {
		for ; done < tt.frames; done++ {
			s.Tick(dt)
		}
		if got := s.IntroAlpha(); math.Abs(got-tt.alpha) > 1e-9 {
			t.Errorf("frame %d: alpha = %f, want %f", tt.frames, got, tt.alpha)
		}
		if got := s.IntroMessage(); got != tt.msg {
			t.Errorf("frame %d: message = %q, want %q", tt.frames, got, tt.msg)
		}
	}

	if err := s.LoadLevel(1); err != nil {
		t.Fatal(err)
	}
	if s.IntroAlpha() != 0 {
		t.Error("level without intro has a visible intro")
	}
}

func TestSession_SelectAt(t *testing.T) {
	s := newTestSession(t)
	es := members(s)

	tests := []struct {
		name string
		p    r2.Vec
		hit  bool
		want uint32
	}{
		{"center", r2.Vec{X: 4, Y: 4.5}, true, es[0].ID},
		{"miss keeps selection", r2.Vec{X: 8, Y: 4.5}, false, es[0].ID},
		{"comfort area", r2.Vec{X: 12.6, Y: 4.5}, true, es[1].ID},
		{"outside comfort area", r2.Vec{X: 12.8, Y: 4.5}, false, es[1].ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SelectAt(tt.p); got != tt.hit {
				t.Errorf("SelectAt(%v) = %v, want %v", tt.p, got, tt.hit)
			}
			if sel := s.Selected(); sel == nil || sel.ID != tt.want {
				t.Errorf("selected = %v, want %d", sel, tt.want)
			}
		})
	}
}

func TestSession_PreviewLeavesLevelAlone(t *testing.T) {
	s := newTestSession(t)
	for range 30 {
		s.Tick(1.0 / 60)
	}

	before, err := s.State().YAML()
	if err != nil {
		t.Fatal(err)
	}
	bodies := physics.Capture(s.engine)

	n := 0
	for sample := range s.Preview(r2.Vec{X: 4, Y: 4.5}) {
		if sample.Color != 0 {
			t.Errorf("sample of color %d, want white only", sample.Color)
		}
		n++
	}
	if n != 19 {
		t.Errorf("samples = %d, want 19", n)
	}

	after, err := s.State().YAML()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, after) {
		t.Errorf("preview changed the session state:\n%s\n---\n%s", before, after)
	}
	if diff := bodies.Diff(physics.Capture(s.engine)); len(diff) > 0 {
		t.Errorf("preview changed live bodies: %v", diff)
	}
}

func TestSession_StateYAML(t *testing.T) {
	s := newTestSession(t)
	s.Select(members(s)[1].ID)

	data, err := s.State().YAML()
	if err != nil {
		t.Fatal(err)
	}
	var st SessionState
	if err := yaml.Unmarshal(data, &st); err != nil {
		t.Fatalf("state is not valid YAML: %v", err)
	}
	if st.Name != "pair" || len(st.Circles) != 2 || st.Selected != 2 {
		t.Errorf("state = %+v", st)
	}
	if len(st.Groups) != 1 || st.Groups[0].Color != "white" || st.Groups[0].Members != 2 {
		t.Errorf("groups = %+v", st.Groups)
	}
}

func TestSession_MarkersWrap(t *testing.T) {
	s := newSessionFrom(t, markerLevels)
	w := s.cfg.World.Width

	marker := func() physics.BodyState {
		t.Helper()
		for _, b := range s.Bodies() {
			if b.Role == physics.RoleGhost {
				return b
			}
		}
		t.Fatal("marker body missing")
		return physics.BodyState{}
	}

	wrapped := false
	for range 30 {
		s.Tick(s.cfg.Physics.StepTime)
		m := marker()
		if m.Position.X < -m.Radius-1e-9 || m.Position.X > w+m.Radius+1e-9 {
			t.Fatalf("marker at x=%f left the playfield", m.Position.X)
		}
		if m.Position.X < 1 {
			wrapped = true
		}
	}
	if !wrapped {
		t.Error("marker never reappeared on the left edge")
	}
	if m := marker(); m.Velocity.X <= 0 {
		t.Errorf("marker velocity = %v, want it still moving right", m.Velocity)
	}
}

func TestSession_Restore(t *testing.T) {
	s := newTestSession(t)
	for range 160 {
		s.Tick(s.cfg.Physics.StepTime)
	}
	es := members(s)
	es[0].Circle.GrowthBuffer = 0.05
	s.Select(es[1].ID)

	data, err := s.State().YAML()
	if err != nil {
		t.Fatal(err)
	}
	var want SessionState
	if err := yaml.Unmarshal(data, &want); err != nil {
		t.Fatal(err)
	}

	r := newTestSession(t)
	if err := r.SwitchLevel(true); err != nil {
		t.Fatal(err)
	}
	if err := r.Restore(want); err != nil {
		t.Fatalf("Restore: %v", err)
	}

	got := r.State()
	if got.Level != 0 || got.Name != "pair" || got.Tick != want.Tick || got.Selected != want.Selected {
		t.Errorf("restored header = %+v", got)
	}
	if len(got.Groups) != 1 || math.Abs(got.Groups[0].Power-want.Groups[0].Power) > 1e-12 {
		t.Errorf("restored groups = %+v, want %+v", got.Groups, want.Groups)
	}
	if len(got.Circles) != len(want.Circles) {
		t.Fatalf("restored %d circles, want %d", len(got.Circles), len(want.Circles))
	}
	for i, c := range got.Circles {
		w := want.Circles[i]
		if c.ID != w.ID || c.Color != w.Color {
			t.Errorf("circle %d = %+v, want %+v", i, c, w)
		}
		for _, f := range []struct {
			name      string
			got, want float64
		}{
			{"x", c.X, w.X},
			{"y", c.Y, w.Y},
			{"radius", c.Radius, w.Radius},
			{"heading", c.Heading, w.Heading},
			{"growth buffer", c.GrowthBuffer, w.GrowthBuffer},
		} {
			if math.Abs(f.got-f.want) > 1e-9 {
				t.Errorf("circle %d %s = %f, want %f", c.ID, f.name, f.got, f.want)
			}
		}
	}
	if r.nextID < 2 {
		t.Errorf("nextID = %d, restored ids would be reused", r.nextID)
	}
	if r.IntroMessage() != "" {
		t.Errorf("intro shown after restoring tick %d", want.Tick)
	}
}

func TestSession_RestoreRejectsBadState(t *testing.T) {
	tests := []struct {
		name string
		edit func(*SessionState)
	}{
		{"unknown level", func(st *SessionState) { st.Level = 9 }},
		{"unknown circle color", func(st *SessionState) { st.Circles[0].Color = "mauve" }},
		{"zero radius", func(st *SessionState) { st.Circles[1].Radius = 0 }},
		{"unknown group color", func(st *SessionState) { st.Groups[0].Color = "mauve" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			st := s.State()
			tt.edit(&st)

			if err := s.SwitchLevel(true); err != nil {
				t.Fatal(err)
			}
			if err := s.Restore(st); err == nil {
				t.Fatal("Restore accepted a bad state")
			}
			if s.Level() != 1 || s.LevelName() != "solo" || len(members(s)) != 2 {
				t.Error("failed restore changed the running level")
			}
		})
	}
}

func TestSession_View(t *testing.T) {
	s := newTestSession(t)
	if s.View() != nil {
		t.Fatal("view without a selection")
	}

	es := members(s)
	s.Select(es[1].ID)
	v := s.View()
	if v == nil || v.ID != es[1].ID || v.Color != "white" {
		t.Fatalf("view = %+v", v)
	}
	if math.Abs(v.Share-0.5) > 1e-9 {
		t.Errorf("share = %f, want 0.5", v.Share)
	}
	// Second circle starts heading left
	if math.Abs(math.Abs(v.Heading)-math.Pi) > 1e-6 || v.Speed <= 0 {
		t.Errorf("heading = %f, speed = %f", v.Heading, v.Speed)
	}
}

func TestAutoplay_CompletesLevel(t *testing.T) {
	s := newTestSession(t)
	var ap Autoplay

	const maxTicks = 3000
	for range maxTicks {
		ap.Step(s)
		s.Tick(1.0 / 60)
		if s.Completed() {
			break
		}
	}
	if !s.Completed() {
		t.Fatalf("level not completed after %d ticks", maxTicks)
	}
	// Let the survivor absorb what is left of its growth buffer
	for range 120 {
		s.Tick(1.0 / 60)
	}
	g := s.Group(0)
	if len(g.Members) != 1 {
		t.Fatalf("members = %d, want 1", len(g.Members))
	}
	if got := g.Measured(); math.Abs(got-g.Power) > 1e-6 {
		t.Errorf("survivor power = %f, want %f", got, g.Power)
	}

	s.SetHeld(true)
	ap.Step(s)
	if s.Held() {
		t.Error("autoplay still holding after completion")
	}
}

func TestAutoplay_IgnoresMergingCircles(t *testing.T) {
	s := newTestSession(t)
	es := members(s)
	es[1].Circle.MergingAway = true

	if got := s.Group(0).Active(); got != 1 {
		t.Fatalf("active = %d, want 1", got)
	}
	var ap Autoplay
	ap.Step(s)
	if s.Held() {
		t.Error("autoplay held a color with a single active circle")
	}
}

func TestRunLevel(t *testing.T) {
	cfg := config.Default()
	lib, err := levels.Parse([]byte(testLevels))
	if err != nil {
		t.Fatal(err)
	}
	factory := physics.NewFactory(physics.SettingsFromConfig(cfg.Physics))

	res, err := RunLevel(cfg, lib, factory, 0, 3000)
	if err != nil {
		t.Fatal(err)
	}
	if !res.Completed || res.Merges != 1 || res.Name != "pair" {
		t.Errorf("result = %+v", res)
	}
	if res.Drift > 1e-6 {
		t.Errorf("drift = %g", res.Drift)
	}

	res, err = RunLevel(cfg, lib, factory, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Completed || res.Ticks != 10 {
		t.Errorf("capped run = %+v", res)
	}

	if _, err := RunLevel(cfg, lib, factory, 4, 10); !errors.Is(err, levels.ErrLevelNotFound) {
		t.Errorf("missing level error = %v", err)
	}
}
