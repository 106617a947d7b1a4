package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/circles/config"
)

func TestNewOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// nil manager accepts writes
	if err := om.WriteLevel(LevelRecord{}); err != nil {
		t.Errorf("WriteLevel on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManager_WritesFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}

	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	for i := range 3 {
		rec := LevelRecord{Level: i, Name: "lvl", Completed: i < 2, Ticks: int32(100 * i)}
		if err := om.WriteLevel(rec); err != nil {
			t.Fatalf("WriteLevel: %v", err)
		}
	}
	if err := om.WriteWindow(WindowStats{WindowEndTick: 60}, []GroupStats{{Color: "white"}}); err != nil {
		t.Fatalf("WriteWindow: %v", err)
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkStalled, Tick: 600, Level: 1, Description: "quiet, long"}); err != nil {
		t.Fatalf("WriteBookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var bms []Bookmark
	data, err := os.ReadFile(filepath.Join(dir, "bookmarks.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if err := gocsv.UnmarshalBytes(data, &bms); err != nil {
		t.Fatalf("reading bookmarks.csv: %v", err)
	}
	if len(bms) != 1 || bms[0].Type != BookmarkStalled || bms[0].Description != "quiet, long" {
		t.Errorf("bookmarks = %+v", bms)
	}

	var levels []LevelRecord
	data, err = os.ReadFile(filepath.Join(dir, "levels.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(data), "level,name") != 1 {
		t.Errorf("levels.csv header count wrong:\n%s", data)
	}
	if err := gocsv.UnmarshalBytes(data, &levels); err != nil {
		t.Fatalf("reading levels.csv: %v", err)
	}
	if len(levels) != 3 || levels[2].Ticks != 200 || levels[2].Completed {
		t.Errorf("levels = %+v", levels)
	}

	for _, name := range []string{"config.yaml", "windows.csv", "groups.csv", "perf.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}
