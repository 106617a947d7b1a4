package game

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/levels"
)

func TestGame_HeadlessAutoplayRun(t *testing.T) {
	cfg := config.Default()
	lib, err := levels.Parse([]byte(testLevels))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()

	g, err := NewGame(cfg, lib, Options{
		OutputDir:      dir,
		Headless:       true,
		Autoplay:       true,
		StepsPerUpdate: 50,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	for !g.Done() && g.Tick() < 5000 {
		g.UpdateHeadless()
	}
	g.Unload()

	if !g.Done() {
		t.Fatalf("run not finished after %d ticks", g.Tick())
	}
	if g.Session().Level() != 1 {
		t.Errorf("finished on level %d, want 1", g.Session().Level())
	}

	data, err := os.ReadFile(filepath.Join(dir, "levels.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("levels.csv has %d lines, want header and 2 records:\n%s", len(lines), data)
	}
	for _, l := range lines[1:] {
		if !strings.Contains(l, ",true,") {
			t.Errorf("level not completed: %s", l)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "windows.csv")); err != nil {
		t.Error(err)
	}
}

func TestNewGame_BadStartLevel(t *testing.T) {
	lib, err := levels.Parse([]byte(testLevels))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewGame(config.Default(), lib, Options{Headless: true, StartLevel: 9}); err == nil {
		t.Error("NewGame accepted a missing start level")
	}
}

func TestNewGame_Restore(t *testing.T) {
	lib, err := levels.Parse([]byte(testLevels))
	if err != nil {
		t.Fatal(err)
	}
	st := SessionState{
		Level: 1,
		Tick:  120,
		Circles: []CircleState{
			{ID: 4, Color: "blue", X: 8, Y: 4.5, Radius: 0.4, Heading: 90},
		},
	}
	g, err := NewGame(config.Default(), lib, Options{Headless: true, StartLevel: 0, Restore: &st})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	defer g.Unload()

	if g.session.Level() != 1 || g.session.Ticks() != 120 {
		t.Errorf("session at level %d tick %d, want level 1 tick 120", g.session.Level(), g.session.Ticks())
	}
	es := members(g.session)
	if len(es) != 1 || es[0].ID != 4 {
		t.Fatalf("restored circles = %d", len(es))
	}
	// No group power in the dump: it is rebuilt from the circle
	if p := g.session.Group(es[0].Color()).Power; math.Abs(p-0.4) > 1e-12 {
		t.Errorf("rebuilt power = %f, want 0.4", p)
	}
}
