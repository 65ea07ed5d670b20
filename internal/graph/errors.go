package graph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycleDetected is matched by every error reporting a dependency cycle.
var ErrCycleDetected = errors.New("dependency cycle detected")

// CycleError reports that a run could not place every task.
type CycleError struct {
	Placed int      // tasks that were scheduled or completed before the run stalled
	Total  int      // distinct tasks in the graph
	Cycle  []string // one concrete cycle, if DetectCycle found it
}

// NewCycleError builds a CycleError for g, attaching a concrete cycle path.
func NewCycleError(g *DependencyGraph, placed int) *CycleError {
	return &CycleError{
		Placed: placed,
		Total:  g.TaskCount(),
		Cycle:  g.DetectCycle(),
	}
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("%s (%d of %d tasks placed)", ErrCycleDetected, e.Placed, e.Total)
	if len(e.Cycle) > 0 {
		msg += ": " + strings.Join(e.Cycle, " -> ")
	}
	return msg
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycleDetected
}
