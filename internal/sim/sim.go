package sim

import (
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/queue"
)

// Run simulates cfg.Workers workers draining g and returns the elapsed ticks.
//
// Each tick runs three phases in order:
//  1. Assign: idle workers take the smallest-ID ready tasks.
//  2. Work: every held task, including ones assigned this tick, loses one tick.
//  3. Complete: finished tasks free their worker and release dependents.
//
// Dependents released in Complete join the ready queue but are first eligible
// in the next tick's Assign. The run ends as soon as nothing is ready and no
// worker is busy.
func Run(g *graph.DependencyGraph, cfg Config) (*Result, error) {
	if cfg.Workers <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, cfg.Workers)
	}

	durations, err := Durations(g, cfg.Duration)
	if err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	p := newPool(g, cfg.Workers, durations, logger)

	// An acyclic graph never needs more ticks than running every task back to back.
	limit := 1
	for _, d := range durations {
		limit += d
	}

	for !p.drained() {
		if p.tick > limit {
			return nil, graph.NewCycleError(g, len(p.order))
		}
		p.assign()
		p.work()
		p.complete()
		p.tick++
	}

	// Tasks stuck behind a cycle never become ready, so the pool drains early.
	if len(p.order) < g.TaskCount() {
		return nil, graph.NewCycleError(g, len(p.order))
	}

	logger.Debug("simulation finished", "ticks", p.tick, "workers", cfg.Workers, "tasks", len(p.order))

	return &Result{
		Ticks:   p.tick,
		Workers: cfg.Workers,
		Order:   p.order,
		Spans:   p.spans,
	}, nil
}

// pool is the simulation state, owned by a single Run.
type pool struct {
	g         *graph.DependencyGraph
	durations map[string]int
	inDegree  map[string]int
	ready     *queue.Ready
	busy      []bool       // worker slot -> holding a task
	held      []inProgress // len(held) == number of busy slots
	idle      int
	tick      int
	order     []string
	spans     []Span
	logger    *slog.Logger
}

func newPool(g *graph.DependencyGraph, workers int, durations map[string]int, logger *slog.Logger) *pool {
	return &pool{
		g:         g,
		durations: durations,
		inDegree:  g.Counts(),
		ready:     queue.New(g.Roots()...),
		busy:      make([]bool, workers),
		held:      make([]inProgress, 0, workers),
		idle:      workers,
		order:     make([]string, 0, g.TaskCount()),
		spans:     make([]Span, 0, g.TaskCount()),
		logger:    logger,
	}
}

func (p *pool) drained() bool {
	return p.ready.Len() == 0 && len(p.held) == 0
}

func (p *pool) assign() {
	for p.idle > 0 {
		task, ok := p.ready.Pop()
		if !ok {
			return
		}
		slot := p.freeSlot()
		p.busy[slot] = true
		p.idle--
		p.held = append(p.held, inProgress{
			task:      task,
			worker:    slot,
			start:     p.tick,
			remaining: p.durations[task],
		})
		p.logger.Debug("task assigned",
			"tick", p.tick, "task", task, "worker", slot,
			"remaining", p.durations[task], "idle", p.idle)
	}
}

func (p *pool) freeSlot() int {
	for i, b := range p.busy {
		if !b {
			return i
		}
	}
	// idle > 0 guarantees a free slot
	panic("sim: no free worker slot")
}

func (p *pool) work() {
	for i := range p.held {
		p.held[i].remaining--
	}
}

func (p *pool) complete() {
	var done []inProgress
	for i := 0; i < len(p.held); {
		if p.held[i].remaining > 0 {
			i++
			continue
		}
		done = append(done, p.held[i])
		last := len(p.held) - 1
		p.held[i] = p.held[last]
		p.held = p.held[:last]
	}

	// Same-tick completions are recorded in ID order.
	sort.Slice(done, func(i, j int) bool { return done[i].task < done[j].task })

	for _, ip := range done {
		p.busy[ip.worker] = false
		p.idle++
		p.order = append(p.order, ip.task)
		p.spans = append(p.spans, Span{
			Task:   ip.task,
			Worker: ip.worker,
			Start:  ip.start,
			Finish: p.tick + 1,
		})
		p.logger.Debug("task completed", "tick", p.tick, "task", ip.task, "worker", ip.worker, "idle", p.idle)

		for _, dep := range p.g.Dependents[ip.task] {
			p.inDegree[dep]--
			if p.inDegree[dep] == 0 {
				p.ready.Push(dep)
			}
		}
	}
}
