package cpm

import (
	"fmt"
	"sort"

	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/sim"
	"github.com/joshharrison/steploom/internal/topo"
)

// Analyze performs critical path method analysis on a dependency graph.
// TotalDuration is the finish time with unlimited workers, a lower bound for
// any sim.Run over the same graph and durations.
func Analyze(g *graph.DependencyGraph, duration sim.DurationFunc) (*CPMResult, error) {
	order, err := topo.Schedule(g)
	if err != nil {
		return nil, fmt.Errorf("topological sort: %w", err)
	}

	durations, err := sim.Durations(g, duration)
	if err != nil {
		return nil, err
	}

	preds := g.Predecessors()

	result := &CPMResult{
		Tasks:     make(map[string]*TaskSchedule, len(order)),
		TopoOrder: order,
	}
	for _, id := range order {
		result.Tasks[id] = &TaskSchedule{TaskID: id, Duration: durations[id]}
	}

	// Forward pass: ES = max(EF of all predecessors)
	for _, id := range order {
		ts := result.Tasks[id]
		for _, pred := range preds[id] {
			if ef := result.Tasks[pred].EF; ef > ts.ES {
				ts.ES = ef
			}
		}
		ts.EF = ts.ES + ts.Duration
		if ts.EF > result.TotalDuration {
			result.TotalDuration = ts.EF
		}
	}

	// Backward pass in reverse topological order: LF = min(LS of successors)
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		ts := result.Tasks[id]

		ts.LF = result.TotalDuration
		for _, succ := range g.Dependents[id] {
			if ls := result.Tasks[succ].LS; ls < ts.LF {
				ts.LF = ls
			}
		}
		ts.LS = ts.LF - ts.Duration
		ts.Slack = ts.LS - ts.ES
		ts.IsCritical = ts.Slack == 0
	}

	// Critical tasks in topological order
	for _, id := range order {
		if result.Tasks[id].IsCritical {
			result.CriticalPath = append(result.CriticalPath, id)
		}
	}

	result.Waves = computeWaves(result)

	return result, nil
}

// computeWaves groups tasks by their earliest start time.
func computeWaves(result *CPMResult) []Wave {
	esGroups := make(map[int][]string)
	for _, id := range result.TopoOrder {
		es := result.Tasks[id].ES
		esGroups[es] = append(esGroups[es], id)
	}

	esValues := make([]int, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		taskIDs := esGroups[es]
		sort.Strings(taskIDs)

		hasCritical := false
		for _, id := range taskIDs {
			result.Tasks[id].Wave = i
			if result.Tasks[id].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within a wave
		sort.SliceStable(taskIDs, func(a, b int) bool {
			return result.Tasks[taskIDs[a]].IsCritical && !result.Tasks[taskIDs[b]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      es,
			TaskIDs:    taskIDs,
			IsCritical: hasCritical,
		}
	}

	return waves
}
