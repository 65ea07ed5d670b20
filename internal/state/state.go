package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/sim"
)

// DefaultDir holds the last saved run, relative to the working directory.
const DefaultDir = ".steploom"

const stateFile = "last-run.json"

// RunStatus represents the outcome of a saved run.
type RunStatus string

const (
	StatusRunning   RunStatus = "running"
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

// RunRecord is the persistent record of one simulation.
type RunRecord struct {
	Input       string             `json:"input"`
	StartedAt   time.Time          `json:"started_at"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty"`
	Status      RunStatus          `json:"status"`
	Error       string             `json:"error,omitempty"`
	Workers     int                `json:"workers"`
	Constraints []graph.Constraint `json:"constraints"`
	Result      *sim.Result        `json:"result,omitempty"`

	path string
}

func resolve(dir string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, stateFile)
}

// New creates a running record under dir ("" means DefaultDir) and persists it.
func New(dir, input string, workers int, constraints []graph.Constraint) (*RunRecord, error) {
	path := resolve(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	r := &RunRecord{
		Input:       input,
		StartedAt:   time.Now(),
		Status:      StatusRunning,
		Workers:     workers,
		Constraints: constraints,
		path:        path,
	}

	if err := r.Save(); err != nil {
		return nil, err
	}
	return r, nil
}

// Load reads the saved record from dir.
func Load(dir string) (*RunRecord, error) {
	path := resolve(dir)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	var r RunRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	r.path = path
	return &r, nil
}

// Exists checks if a saved record exists in dir.
func Exists(dir string) bool {
	_, err := os.Stat(resolve(dir))
	return err == nil
}

// Save persists the record to disk.
func (r *RunRecord) Save() error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(r.path, data, 0644)
}

// Complete stores the simulation result and saves.
func (r *RunRecord) Complete(res *sim.Result) error {
	now := time.Now()
	r.FinishedAt = &now
	r.Status = StatusCompleted
	r.Result = res
	return r.Save()
}

// Fail records why the run stopped and saves.
func (r *RunRecord) Fail(cause error) error {
	now := time.Now()
	r.FinishedAt = &now
	r.Status = StatusFailed
	r.Error = cause.Error()
	return r.Save()
}

// Graph rebuilds the dependency graph the run was computed from.
func (r *RunRecord) Graph() *graph.DependencyGraph {
	return graph.Build(r.Constraints)
}

// Clean removes the state directory.
func Clean(dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	return os.RemoveAll(dir)
}
