package topo

import (
	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/queue"
)

// Schedule returns the single-worker execution order for g.
// It is Kahn's algorithm with a min-heap as the ready set, so when several
// tasks are runnable the smallest ID always goes first and the result is the
// lexicographically smallest valid order.
func Schedule(g *graph.DependencyGraph) ([]string, error) {
	inDegree := g.Counts()

	ready := queue.New(g.Roots()...)
	order := make([]string, 0, g.TaskCount())

	for {
		node, ok := ready.Pop()
		if !ok {
			break
		}
		order = append(order, node)

		for _, dep := range g.Dependents[node] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready.Push(dep)
			}
		}
	}

	if len(order) < g.TaskCount() {
		return nil, graph.NewCycleError(g, len(order))
	}

	return order, nil
}
