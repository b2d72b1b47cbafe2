// Package workdir manages the output directory a run writes its artifacts
// into: reports at the root, optional timestamped snapshot sessions under
// runs/.
package workdir

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) Path() string {
	return m.path
}

// EnsureStructure creates the output root and the runs/ subdirectory.
func (m *Manager) EnsureStructure() error {
	if strings.TrimSpace(m.path) == "" {
		return errors.New("output directory not set")
	}
	if err := os.MkdirAll(m.path, 0o755); err != nil {
		return err
	}
	return os.MkdirAll(filepath.Join(m.path, "runs"), 0o755)
}

// ArtifactPath resolves a report filename inside the output root.
func (m *Manager) ArtifactPath(name string) string {
	return filepath.Join(m.path, name)
}

type RunSession struct {
	Path string
}

// NewRunSession creates a timestamped folder under runs/ for per-run
// snapshots and returns the session handle.
func (m *Manager) NewRunSession(now time.Time) (RunSession, error) {
	dir := filepath.Join(m.path, "runs", now.Format("2006-01-02_150405"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return RunSession{}, err
	}
	return RunSession{Path: dir}, nil
}

// SaveJSON writes a payload as pretty JSON into the session folder.
func (m *Manager) SaveJSON(sess RunSession, filename string, v any) error {
	if strings.TrimSpace(sess.Path) == "" {
		return errors.New("empty session path")
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(sess.Path, filename), append(b, '\n'), 0o600)
}
