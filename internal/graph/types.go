package graph

// Constraint says Dependency must finish before Dependent can begin.
type Constraint struct {
	Dependency string `json:"before"`
	Dependent  string `json:"after"`
}

// DependencyGraph is the static structure built from a constraint set.
// Consumers that need to consume in-degrees must work on Counts().
type DependencyGraph struct {
	Dependents map[string][]string // task -> tasks waiting on it
	InDegree   map[string]int      // task -> number of unsatisfied dependencies
}
