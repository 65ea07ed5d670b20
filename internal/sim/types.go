package sim

import (
	"log/slog"
)

// DurationFunc returns how many ticks a task occupies a worker.
type DurationFunc func(task string) int

// Config holds simulation configuration.
type Config struct {
	Workers  int
	Duration DurationFunc
	Logger   *slog.Logger // optional; debug records per assignment and completion
}

// Result is the outcome of a completed simulation.
type Result struct {
	Ticks   int      `json:"ticks"`
	Workers int      `json:"workers"`
	Order   []string `json:"order"` // tasks in the order they finished
	Spans   []Span   `json:"spans"` // one per task, same order as Order
}

// Span records when a task held a worker: ticks [Start, Finish).
type Span struct {
	Task   string `json:"task"`
	Worker int    `json:"worker"`
	Start  int    `json:"start"`
	Finish int    `json:"finish"`
}

// inProgress is a task currently held by a worker slot.
type inProgress struct {
	task      string
	worker    int
	start     int
	remaining int
}
