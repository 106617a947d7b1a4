// Command levelcheck validates a level library and autoplays every level
// headless, printing one CSV row per level.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/circles/components"
	"github.com/pthm-cable/circles/config"
	"github.com/pthm-cable/circles/game"
	"github.com/pthm-cable/circles/levels"
	"github.com/pthm-cable/circles/physics"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	levelsPath := flag.String("levels", "", "Path to a level library (empty = config levels.path or embedded)")
	maxTicks := flag.Int("max-ticks", 36000, "Give up on a level after N ticks")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := run(*configPath, *levelsPath, int32(*maxTicks)); err != nil {
		slog.Error("level check failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, levelsPath string, maxTicks int32) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if levelsPath == "" {
		levelsPath = cfg.Levels.Path
	}
	library, err := levels.Load(levelsPath)
	if err != nil {
		return err
	}
	palette, err := components.PaletteFromConfig(cfg.Colors)
	if err != nil {
		return err
	}
	if err := library.Validate(palette); err != nil {
		return fmt.Errorf("invalid level library: %w", err)
	}

	for i := range library.Len() {
		lv, _ := library.Level(i)
		power := lv.Power(palette)
		args := []any{"level", i, "name", lv.Name}
		for c := range palette.Len() {
			if power[c] > 0 {
				args = append(args, palette.Profile(components.Color(c)).Name, power[c])
			}
		}
		slog.Info("power", args...)
	}

	// Every level runs in its own session and engine
	factory := physics.NewFactory(physics.SettingsFromConfig(cfg.Physics))
	results := make([]game.RunResult, library.Len())
	errs := make([]error, library.Len())
	var wg sync.WaitGroup
	for i := range library.Len() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = game.RunLevel(cfg, library, factory, i, maxTicks)
		}()
	}
	wg.Wait()

	failed := 0
	for i, err := range errs {
		if err != nil {
			return fmt.Errorf("level %d: %w", i, err)
		}
		if !results[i].Completed {
			failed++
			slog.Warn("level not completed", "level", i, "name", results[i].Name, "ticks", results[i].Ticks)
		}
	}

	if err := gocsv.Marshal(results, os.Stdout); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d levels not completed by autoplay", failed, library.Len())
	}
	return nil
}
