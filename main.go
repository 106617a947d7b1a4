package main

import (
	"flag"
	"log/slog"
	"os"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/game"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelsPath := flag.String("levels", "", "Path to a level library (empty = config levels.path or embedded)")
	headless := flag.Bool("headless", false, "Run without graphics")
	autoplay := flag.Bool("autoplay", false, "Play levels automatically, advancing on completion")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	snapshotDir := flag.String("snapshot-dir", "", "Save a state snapshot on every bookmark to this directory")
	loadSnapshot := flag.String("load-snapshot", "", "Resume from a saved state snapshot (overrides -start-level)")
	startLevel := flag.Int("start-level", -1, "Level to start on (-1 = use config)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = unlimited)")
	stepsPerUpdate := flag.Int("steps-per-update", 1, "Session ticks per update call (higher = faster headless runs)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	path := cfg.Levels.Path
	if *levelsPath != "" {
		path = *levelsPath
	}
	library, err := levels.Load(path)
	if err != nil {
		slog.Error("failed to load levels", "error", err)
		os.Exit(1)
	}

	start := cfg.Session.StartLevel
	if *startLevel >= 0 {
		start = *startLevel
	}

	opts := game.Options{
		OutputDir:      *outputDir,
		Headless:       *headless,
		Autoplay:       *autoplay,
		StartLevel:     start,
		StepsPerUpdate: *stepsPerUpdate,
		LogStats:       *logStats,
		SnapshotDir:    *snapshotDir,
	}

	if *loadSnapshot != "" {
		var st game.SessionState
		snap, err := telemetry.LoadSnapshot(*loadSnapshot, &st)
		if err != nil {
			slog.Error("failed to load snapshot", "error", err)
			os.Exit(1)
		}
		slog.Info("snapshot loaded", "path", *loadSnapshot, "level", st.Level, "tick", snap.Tick)
		opts.Restore = &st
		start = st.Level
	}

	if *headless {
		g, err := game.NewGame(cfg, library, opts)
		if err != nil {
			slog.Error("failed to start", "error", err)
			os.Exit(1)
		}
		defer g.Unload()

		slog.Info("starting headless run",
			"levels", library.Len(),
			"start_level", start,
			"autoplay", *autoplay,
			"max_ticks", *maxTicks,
			"steps_per_update", *stepsPerUpdate,
		)

		for !g.Done() {
			g.UpdateHeadless()

			if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
				slog.Info("max ticks reached", "tick", g.Tick())
				return
			}
		}
		slog.Info("all levels played", "tick", g.Tick())
		return
	}

	// Graphical mode
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Save Me Circles")
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGame(cfg, library, opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		return
	}
	defer g.Unload()

	for !rl.WindowShouldClose() && !g.Done() {
		g.Update()
		g.Draw()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			break
		}
	}
}
