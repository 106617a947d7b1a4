package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot wraps a state dump with the moment it was taken.
type Snapshot struct {
	Version  int       `yaml:"version"`
	Tick     int32     `yaml:"tick"`
	Level    int       `yaml:"level"`
	Bookmark *Bookmark `yaml:"bookmark,omitempty"`
	State    any       `yaml:"state"`
}

// SaveSnapshot writes a snapshot to dir as YAML.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	name := fmt.Sprintf("snapshot_L%d_%d", snapshot.Level, snapshot.Tick)
	if snapshot.Bookmark != nil {
		name += "_" + string(snapshot.Bookmark.Type)
	}
	path := filepath.Join(dir, name+".yaml")

	snapshot.Version = SnapshotVersion
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot from disk, decoding its state into state.
func LoadSnapshot(path string, state any) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var raw struct {
		Version  int       `yaml:"version"`
		Tick     int32     `yaml:"tick"`
		Level    int       `yaml:"level"`
		Bookmark *Bookmark `yaml:"bookmark"`
		State    yaml.Node `yaml:"state"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if raw.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", raw.Version, SnapshotVersion)
	}
	if err := raw.State.Decode(state); err != nil {
		return nil, fmt.Errorf("decode snapshot state: %w", err)
	}

	return &Snapshot{
		Version:  raw.Version,
		Tick:     raw.Tick,
		Level:    raw.Level,
		Bookmark: raw.Bookmark,
		State:    state,
	}, nil
}
