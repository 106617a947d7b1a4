package game

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/atotto/clipboard"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/circles/camera"
	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/inspector"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
	"github.com/pthm-cable/circles/systems"
	"github.com/pthm-cable/circles/telemetry"
	"github.com/pthm-cable/circles/ui"
)

// Options configures a game run.
type Options struct {
	OutputDir      string // directory for CSV logs and config snapshot, empty = none
	Headless       bool
	Autoplay       bool // play levels without input, advancing on completion
	StartLevel     int
	StepsPerUpdate int // session ticks per Update call
	LogStats       bool
	SnapshotDir    string // state snapshots taken on bookmarks, empty = none
	// Restore resumes from a saved state instead of loading StartLevel.
	Restore *SessionState
	// Factory overrides the physics backend. nil uses physics.World.
	Factory physics.Factory
}

// Game drives a Session from a frame loop and owns the run's telemetry.
type Game struct {
	cfg      *config.Config
	session  *Session
	autoplay *Autoplay
	camera   *camera.Camera
	hud      *ui.HUD
	inspect  *inspector.Inspector

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	bookmarks     *telemetry.BookmarkDetector
	snapshotDir   string
	logStats      bool

	tick           int32
	paused         bool
	done           bool
	stepsPerUpdate int

	// Preview dots for the current held selection, refreshed every draw
	preview []systems.Sample

	// Status line shown for a short while after an action
	status      string
	statusTicks int
}

// NewGame creates a game and loads its start level.
func NewGame(cfg *config.Config, library *levels.Library, opts Options) (*Game, error) {
	factory := opts.Factory
	if factory == nil {
		factory = physics.NewFactory(physics.SettingsFromConfig(cfg.Physics))
	}
	session, err := NewSession(cfg, library, factory)
	if err != nil {
		return nil, err
	}

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		om.Close()
		return nil, fmt.Errorf("writing config snapshot: %w", err)
	}

	g := &Game{
		cfg:            cfg,
		session:        session,
		collector:      telemetry.NewCollector(cfg.Telemetry.TickInterval, cfg.Physics.StepTime),
		perfCollector:  telemetry.NewPerfCollector(cfg.Telemetry.TickInterval),
		outputManager:  om,
		bookmarks:      telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistory),
		snapshotDir:    opts.SnapshotDir,
		logStats:       opts.LogStats,
		stepsPerUpdate: max(opts.StepsPerUpdate, 1),
	}
	g.camera = camera.New(cfg.Derived.ScreenW32, cfg.Derived.ScreenH32,
		float32(cfg.World.Width), float32(cfg.World.Height))
	if !opts.Headless {
		g.hud = ui.NewHUD()
		g.inspect = inspector.NewInspector()
	}
	if opts.Autoplay {
		g.autoplay = &Autoplay{}
	}

	if opts.Restore != nil {
		err = session.Restore(*opts.Restore)
	} else {
		err = session.LoadLevel(opts.StartLevel)
	}
	if err != nil {
		om.Close()
		return nil, err
	}
	return g, nil
}

// Update runs one frame: input, then the session ticks.
func (g *Game) Update() {
	g.perfCollector.StartTick()
	g.perfCollector.StartPhase(telemetry.PhaseInput)
	g.handleInput()

	if !g.paused {
		for range g.stepsPerUpdate {
			g.step()
		}
	}

	g.perfCollector.StartPhase(telemetry.PhasePreview)
	g.preview = g.preview[:0]
	if g.session.Held() && g.session.Selected() != nil {
		g.preview = slices.AppendSeq(g.preview, g.session.Preview(g.toWorld(rl.GetMousePosition())))
	}
	if g.statusTicks > 0 {
		g.statusTicks--
	}
	g.perfCollector.EndTick()
	g.perfCollector.RecordFrame()
}

// UpdateHeadless runs session ticks without input or graphics. Without
// autoplay nothing is ever held, so circles only drift and merge.
func (g *Game) UpdateHeadless() {
	for range g.stepsPerUpdate {
		if g.done {
			return
		}
		g.perfCollector.StartTick()
		g.step()
		g.perfCollector.EndTick()
	}
	g.perfCollector.RecordFrame()
}

// step advances the session by one tick and records it.
func (g *Game) step() {
	if g.autoplay != nil {
		g.autoplay.Step(g.session)
	}

	g.perfCollector.StartPhase(telemetry.PhaseSession)
	r := g.session.Tick(g.cfg.Physics.StepTime)
	g.tick++

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.collector.RecordTick(r.Merges, r.Removed, r.Allocated, r.Allocation.Result)
	g.flushTelemetry()

	if r.Completed {
		slog.Info("level completed",
			"level", g.session.Level(),
			"name", g.session.LevelName(),
			"seconds", g.session.Seconds(),
			"ticks", g.session.Ticks(),
		)
		if g.autoplay != nil {
			g.advance()
		}
	}
}

// advance moves to the next level, or ends the run after the last one.
func (g *Game) advance() {
	if !g.session.HasNext() {
		g.finishLevel()
		g.done = true
		return
	}
	g.switchLevel(true)
}

// switchLevel records the current level and moves to a neighboring one.
func (g *Game) switchLevel(forward bool) {
	if forward && !g.session.HasNext() || !forward && g.session.Level() == 0 {
		return
	}
	g.finishLevel()
	if err := g.session.SwitchLevel(forward); err != nil {
		g.setStatus("level switch failed")
	}
}

// restart records the current attempt and reloads the level.
func (g *Game) restart() {
	g.finishLevel()
	if err := g.session.Restart(); err != nil {
		g.setStatus("restart failed")
	}
}

// finishLevel writes the outcome of the current level.
func (g *Game) finishLevel() {
	rec := g.collector.FinishLevel(g.tick, g.session.Level(), g.session.LevelName(),
		g.session.Completed(), g.session.Seconds())
	if g.logStats {
		slog.Info("level", "record", rec)
	}
	if err := g.outputManager.WriteLevel(rec); err != nil {
		slog.Error("failed to write level record", "error", err)
	}
	g.bookmarks.Reset()
}

// flushTelemetry writes the stats window when it is due.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	var samples []telemetry.GroupSample
	circles, groups := 0, 0
	for grp := range g.session.Groups() {
		s := telemetry.GroupSample{
			Color: g.session.Palette().Profile(grp.Color).Name,
			Power: grp.Power,
		}
		for _, m := range grp.Members {
			s.Radii = append(s.Radii, m.Radius())
			s.Effective = append(s.Effective, m.Effective())
		}
		circles += len(grp.Members)
		if len(grp.Members) > 0 {
			groups++
		}
		samples = append(samples, s)
	}

	ws, gs := g.collector.Flush(g.tick, g.session.Level(), circles, groups, samples)
	perfStats := g.perfCollector.Stats()

	if g.logStats {
		ws.LogStats()
		for _, s := range gs {
			s.LogStats()
		}
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteWindow(ws, gs); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, ws.WindowEndTick); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(ws) {
		g.recordBookmark(bm)
	}
}

// recordBookmark logs and writes a bookmark, with a state snapshot when
// snapshots are enabled.
func (g *Game) recordBookmark(bm telemetry.Bookmark) {
	bm.LogBookmark()
	if err := g.outputManager.WriteBookmark(bm); err != nil {
		slog.Error("failed to write bookmark", "error", err)
	}
	if g.snapshotDir == "" {
		return
	}
	path, err := telemetry.SaveSnapshot(&telemetry.Snapshot{
		Tick:     bm.Tick,
		Level:    bm.Level,
		Bookmark: &bm,
		State:    g.session.State(),
	}, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	slog.Info("snapshot saved", "path", path)
}

// copyState puts the session state dump on the clipboard.
func (g *Game) copyState() {
	data, err := g.session.State().YAML()
	if err == nil {
		err = clipboard.WriteAll(string(data))
	}
	if err != nil {
		slog.Error("failed to copy state", "error", err)
		g.setStatus("copy failed")
		return
	}
	g.setStatus("state copied")
}

func (g *Game) setStatus(s string) {
	g.status = s
	g.statusTicks = 120
}

// Session returns the running session.
func (g *Game) Session() *Session { return g.session }

// Done reports whether an autoplay run has finished the last level.
func (g *Game) Done() bool { return g.done }

// Tick returns the number of session ticks run so far.
func (g *Game) Tick() int32 { return g.tick }

// Unload records the level in progress and closes the output files.
func (g *Game) Unload() {
	if !g.done {
		g.finishLevel()
	}
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
