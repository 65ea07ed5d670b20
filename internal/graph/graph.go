package graph

import (
	"sort"
)

// Build constructs a DependencyGraph from a list of constraints.
// Duplicate constraints are kept: each one appends the dependent again and
// adds one to its in-degree, so consumers that decrement once per list entry
// stay balanced.
func Build(constraints []Constraint) *DependencyGraph {
	g := &DependencyGraph{
		Dependents: make(map[string][]string),
		InDegree:   make(map[string]int),
	}

	for _, c := range constraints {
		g.Dependents[c.Dependency] = append(g.Dependents[c.Dependency], c.Dependent)
		g.InDegree[c.Dependent]++

		// Make sure both roles appear in both maps
		if _, ok := g.Dependents[c.Dependent]; !ok {
			g.Dependents[c.Dependent] = nil
		}
		if _, ok := g.InDegree[c.Dependency]; !ok {
			g.InDegree[c.Dependency] = 0
		}
	}

	return g
}

// TaskCount returns the number of distinct tasks in the graph.
func (g *DependencyGraph) TaskCount() int {
	return len(g.InDegree)
}

// Counts returns a fresh copy of the in-degree map. Every algorithm run
// takes its own copy because it decrements the counts to zero.
func (g *DependencyGraph) Counts() map[string]int {
	counts := make(map[string]int, len(g.InDegree))
	for id, n := range g.InDegree {
		counts[id] = n
	}
	return counts
}

// Tasks returns every task in identifier order.
func (g *DependencyGraph) Tasks() []string {
	ids := make([]string, 0, len(g.InDegree))
	for id := range g.InDegree {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Roots returns the tasks with no dependencies, sorted.
func (g *DependencyGraph) Roots() []string {
	var roots []string
	for id, n := range g.InDegree {
		if n == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

// Leaves returns the tasks nothing depends on, sorted.
func (g *DependencyGraph) Leaves() []string {
	var leaves []string
	for id, deps := range g.Dependents {
		if len(deps) == 0 {
			leaves = append(leaves, id)
		}
	}
	sort.Strings(leaves)
	return leaves
}

// Predecessors returns the reverse adjacency: task -> tasks it waits on.
// Each list is sorted and keeps duplicates from repeated constraints.
func (g *DependencyGraph) Predecessors() map[string][]string {
	rev := make(map[string][]string, len(g.InDegree))
	for id := range g.InDegree {
		rev[id] = nil
	}
	for from, tos := range g.Dependents {
		for _, to := range tos {
			rev[to] = append(rev[to], from)
		}
	}
	for id := range rev {
		sort.Strings(rev[id])
	}
	return rev
}

// DetectCycle returns the cycle path if one exists, or nil if the graph is acyclic.
// The path starts and ends on the same task, e.g. [a b a].
// Tasks and their dependents are visited in sorted order, so the result is stable.
func (g *DependencyGraph) DetectCycle() []string {
	done := make(map[string]bool)
	onPath := make(map[string]int) // task -> index in path
	var path []string

	var visit func(task string) []string
	visit = func(task string) []string {
		onPath[task] = len(path)
		path = append(path, task)

		for _, next := range g.DistinctDependents(task) {
			if i, ok := onPath[next]; ok {
				return append(append([]string(nil), path[i:]...), next)
			}
			if !done[next] {
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}

		path = path[:len(path)-1]
		delete(onPath, task)
		done[task] = true
		return nil
	}

	for _, id := range g.Tasks() {
		if !done[id] {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

// DistinctDependents returns the dependents of task in sorted order, with
// repeated constraints collapsed to one entry.
func (g *DependencyGraph) DistinctDependents(task string) []string {
	var out []string
	seen := make(map[string]bool, len(g.Dependents[task]))
	for _, d := range g.Dependents[task] {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Strings(out)
	return out
}
