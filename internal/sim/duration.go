package sim

import (
	"errors"
	"fmt"

	"github.com/joshharrison/steploom/internal/graph"
)

var (
	// ErrInvalidDuration is matched when a duration function yields a non-positive value.
	ErrInvalidDuration = errors.New("invalid task duration")
	// ErrInvalidWorkers is returned for a worker count below one.
	ErrInvalidWorkers = errors.New("worker count must be positive")
)

// DurationError names the task whose duration was rejected.
type DurationError struct {
	Task  string
	Value int
}

func (e *DurationError) Error() string {
	return fmt.Sprintf("%s: task %q has duration %d", ErrInvalidDuration, e.Task, e.Value)
}

func (e *DurationError) Is(target error) bool {
	return target == ErrInvalidDuration
}

// Durations evaluates fn once per task in g and checks every value is positive.
func Durations(g *graph.DependencyGraph, fn DurationFunc) (map[string]int, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: no duration function", ErrInvalidDuration)
	}
	out := make(map[string]int, g.TaskCount())
	for _, id := range g.Tasks() {
		d := fn(id)
		if d <= 0 {
			return nil, &DurationError{Task: id, Value: d}
		}
		out[id] = d
	}
	return out, nil
}

// AlphabetDuration returns base plus the task's position in the alphabet,
// taken from its first byte: A and a are 1, Z and z are 26. Other bytes count
// from 'A', so digits and punctuation usually come out non-positive.
func AlphabetDuration(base int) DurationFunc {
	return func(task string) int {
		return base + Position(task)
	}
}

// Position is the alphabet position used by AlphabetDuration.
func Position(task string) int {
	if task == "" {
		return 0
	}
	c := task[0]
	switch {
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 1
	default:
		return int(c) - 'A' + 1
	}
}

// FixedDuration gives every task the same duration.
func FixedDuration(n int) DurationFunc {
	return func(string) int { return n }
}

// TableDuration looks tasks up in table and falls back to fallback for the rest.
func TableDuration(table map[string]int, fallback DurationFunc) DurationFunc {
	return func(task string) int {
		if d, ok := table[task]; ok {
			return d
		}
		if fallback == nil {
			return 0
		}
		return fallback(task)
	}
}
