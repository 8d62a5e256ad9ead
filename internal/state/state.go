// Package state persists the CLI's last rendered query results. The engine
// itself keeps everything in memory; snapshots exist so dropdown-style
// consumers can re-read the last answer without refetching.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Ivevan/dorsu-connect-calendar/internal/engine"
	"github.com/Ivevan/dorsu-connect-calendar/internal/event"
)

// Snapshot is the serialized result of one CLI query.
type Snapshot struct {
	GeneratedAt time.Time `json:"generatedAt"`
	Command     string    `json:"command"`
	Month       string    `json:"month,omitempty"`
	Day         string    `json:"day,omitempty"`

	Count  int                `json:"count"`
	Color  string             `json:"color,omitempty"`
	Events []event.Unified    `json:"events,omitempty"`
	Cells  []engine.DayCell   `json:"cells,omitempty"`
	Agenda []engine.YearGroup `json:"agenda,omitempty"`
}

func Save(path string, snapshot Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	return writeFileAtomically(path, append(payload, '\n'))
}

func Load(path string) (Snapshot, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, true, nil
}

func writeFileAtomically(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
