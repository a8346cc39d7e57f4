package datasource

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// SnapshotSource serves readings exported by other modules into a YAML
// file:
//
//	readings:
//	  otd_rate:
//	    value: 93.5
//	    at: 2026-03-01T00:00:00Z
//	  org-1/branch-1/scrap_rate:
//	    value: 2.1
//
// A tenant-qualified key wins over the bare key.
type SnapshotSource struct {
	readings map[string]snapshotEntry
}

type snapshotFile struct {
	Readings map[string]snapshotEntry `yaml:"readings"`
}

type snapshotEntry struct {
	Value *float64   `yaml:"value"`
	At    *time.Time `yaml:"at"`
}

func LoadSnapshot(path string) (*SnapshotSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	src, err := ParseSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return src, nil
}

func ParseSnapshot(data []byte) (*SnapshotSource, error) {
	var f snapshotFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	readings := make(map[string]snapshotEntry, len(f.Readings))
	for key, entry := range f.Readings {
		readings[strings.TrimSpace(key)] = entry
	}
	return &SnapshotSource{readings: readings}, nil
}

func (s *SnapshotSource) Read(_ context.Context, q Query) (Reading, bool, error) {
	key := strings.TrimSpace(q.Text)
	entry, ok := s.readings[q.OrganizationID+"/"+q.BranchID+"/"+key]
	if !ok {
		entry, ok = s.readings[key]
	}
	if !ok || entry.Value == nil {
		return Reading{}, false, nil
	}
	var at time.Time
	if entry.At != nil {
		at = entry.At.UTC()
	}
	return Reading{Value: *entry.Value, At: at}, true, nil
}
