package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/circles/config"
)

// csvFile is one append-only CSV output. The header is written with the
// first record.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

func createCSV(dir, name string) (*csvFile, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvFile{f: f}, nil
}

// write appends records. T is the record struct type with csv tags.
func write[T any](c *csvFile, records []T) error {
	if len(records) == 0 {
		return nil
	}
	if !c.headerWritten {
		if err := gocsv.Marshal(records, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, c.f)
}

// OutputManager writes run output: windows.csv, groups.csv, levels.csv,
// perf.csv, bookmarks.csv and a config snapshot.
type OutputManager struct {
	dir       string
	windows   *csvFile
	groups    *csvFile
	levels    *csvFile
	perf      *csvFile
	bookmarks *csvFile
}

// NewOutputManager creates the output directory and its files.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	for _, out := range []struct {
		dst  **csvFile
		name string
	}{
		{&om.windows, "windows.csv"},
		{&om.groups, "groups.csv"},
		{&om.levels, "levels.csv"},
		{&om.perf, "perf.csv"},
		{&om.bookmarks, "bookmarks.csv"},
	} {
		if *out.dst, err = createCSV(dir, out.name); err != nil {
			om.Close()
			return nil, err
		}
	}
	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteWindow writes a window record and its group records.
func (om *OutputManager) WriteWindow(ws WindowStats, gs []GroupStats) error {
	if om == nil {
		return nil
	}
	if err := write(om.windows, []WindowStats{ws}); err != nil {
		return fmt.Errorf("writing window stats: %w", err)
	}
	if err := write(om.groups, gs); err != nil {
		return fmt.Errorf("writing group stats: %w", err)
	}
	return nil
}

// WriteLevel writes a level outcome to levels.csv.
func (om *OutputManager) WriteLevel(rec LevelRecord) error {
	if om == nil {
		return nil
	}
	if err := write(om.levels, []LevelRecord{rec}); err != nil {
		return fmt.Errorf("writing level record: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := write(om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark to bookmarks.csv.
func (om *OutputManager) WriteBookmark(bm Bookmark) error {
	if om == nil {
		return nil
	}
	if err := write(om.bookmarks, []Bookmark{bm}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, c := range []*csvFile{om.windows, om.groups, om.levels, om.perf, om.bookmarks} {
		if c != nil {
			errs = append(errs, c.f.Close())
		}
	}
	return errors.Join(errs...)
}
