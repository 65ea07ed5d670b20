package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/steploom/internal/cpm"
	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/sim"
	"github.com/joshharrison/steploom/internal/ui"
)

// Reporter renders the results computed for one graph. Any of Order, Sim
// and Analysis may be nil; the print methods only show what was computed.
type Reporter struct {
	Graph    *graph.DependencyGraph
	Order    []string
	Sim      *sim.Result
	Analysis *cpm.CPMResult
}

// New creates a new Reporter for g.
func New(g *graph.DependencyGraph) *Reporter {
	return &Reporter{Graph: g}
}

// PrintOrder writes the single-worker order.
func (r *Reporter) PrintOrder(w io.Writer) {
	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Execution Order"))
	fmt.Fprintln(w, ui.Cyan("═══════════════"))
	fmt.Fprintf(w, "Tasks:  %s (%d roots)\n", ui.Bold(r.Graph.TaskCount()), len(r.Graph.Roots()))
	fmt.Fprintf(w, "Order:  %s\n", ui.BoldYellow(strings.Join(r.Order, "")))
	if joined := strings.Join(r.Order, ""); len(joined) != len(r.Order) {
		// Multi-character IDs: the concatenation above is ambiguous
		fmt.Fprintf(w, "        %s\n", ui.Dim(strings.Join(r.Order, " → ")))
	}
}

// PrintSimulation writes the worker-pool summary and, if timeline is set,
// one row per tick showing what each worker holds.
func (r *Reporter) PrintSimulation(w io.Writer, timeline bool) {
	res := r.Sim
	fmt.Fprintf(w, "🚀 %s\n", ui.BoldCyan("Worker Pool Simulation"))
	fmt.Fprintln(w, ui.Cyan("══════════════════════"))
	fmt.Fprintf(w, "Workers:    %s\n", ui.Bold(res.Workers))
	fmt.Fprintf(w, "Tasks:      %s\n", ui.Bold(len(res.Order)))
	fmt.Fprintf(w, "Total time: %s ticks\n", ui.BoldGreen(res.Ticks))
	fmt.Fprintf(w, "Finished:   %s\n", ui.BoldYellow(strings.Join(res.Order, "")))
	if r.Analysis != nil {
		fmt.Fprintf(w, "Lower bound: %s ticks %s\n", ui.Bold(r.Analysis.TotalDuration), ui.Dim("(unlimited workers)"))
	}
	fmt.Fprintln(w)

	for _, s := range res.Spans {
		fmt.Fprintf(w, "  %s %-12s worker %d  %s\n",
			ui.StatusIcon("done"), ui.TaskPrefix(s.Task), s.Worker+1,
			ui.Dim(fmt.Sprintf("[%d → %d]", s.Start, s.Finish)))
	}

	if timeline {
		fmt.Fprintln(w)
		r.printTimeline(w)
	}
}

// printTimeline renders the classic per-tick worker table.
func (r *Reporter) printTimeline(w io.Writer) {
	res := r.Sim
	width := 1
	for _, id := range r.Graph.Tasks() {
		if len(id) > width {
			width = len(id)
		}
	}

	header := fmt.Sprintf("%6s", "Tick")
	for i := 0; i < res.Workers; i++ {
		header += fmt.Sprintf("  %-*s", width+2, fmt.Sprintf("W%d", i+1))
	}
	fmt.Fprintf(w, "%s  %s\n", ui.BoldWhite(header), ui.BoldWhite("Done"))

	var done []string
	for tick := 0; tick < res.Ticks; tick++ {
		slots := make([]string, res.Workers)
		for i := range slots {
			slots[i] = "."
		}
		for _, s := range res.Spans {
			if s.Start <= tick && tick < s.Finish {
				slots[s.Worker] = s.Task
			}
		}

		row := fmt.Sprintf("%6d", tick)
		for _, id := range slots {
			row += fmt.Sprintf("  %-*s", width+2, id)
		}
		fmt.Fprintf(w, "%s  %s\n", row, ui.Dim(strings.Join(done, "")))

		for _, s := range res.Spans {
			if s.Finish == tick+1 {
				done = append(done, s.Task)
			}
		}
	}
}

// PrintAnalysis writes the critical path summary and the parallel waves.
func (r *Reporter) PrintAnalysis(w io.Writer) {
	a := r.Analysis

	maxWaveWidth := 0
	for _, wave := range a.Waves {
		if len(wave.TaskIDs) > maxWaveWidth {
			maxWaveWidth = len(wave.TaskIDs)
		}
	}

	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Critical Path Analysis"))
	fmt.Fprintln(w, ui.Cyan("══════════════════════"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Tasks:     %s, %s roots\n", ui.Bold(r.Graph.TaskCount()), ui.Bold(len(r.Graph.Roots())))
	fmt.Fprintf(w, "⚡ Critical path: %s (%d tasks, %d ticks)\n",
		ui.BoldYellow(strings.Join(a.CriticalPath, " → ")), len(a.CriticalPath), a.TotalDuration)
	fmt.Fprintf(w, "Waves:     %s\n", ui.Bold(len(a.Waves)))
	fmt.Fprintf(w, "Parallel:  %s tasks in widest wave\n", ui.Bold(maxWaveWidth))
	fmt.Fprintln(w)

	for _, wave := range a.Waves {
		fmt.Fprintf(w, "🌊 %s %d (%d tasks, %s):\n", ui.BoldWhite("Wave"), wave.Index+1, len(wave.TaskIDs),
			ui.Dim(fmt.Sprintf("earliest start %d", wave.Start)))
		for _, id := range wave.TaskIDs {
			ts := a.Tasks[id]
			crit := ""
			if ts.IsCritical {
				crit = "  " + ui.BoldYellow("⚡ critical")
			}
			fmt.Fprintf(w, "  %s  %s%s\n", ui.BoldMagenta(id),
				ui.Dim(fmt.Sprintf("dur %d, es %d, ls %d, slack %d", ts.Duration, ts.ES, ts.LS, ts.Slack)), crit)
		}
		fmt.Fprintln(w)
	}
}

// PrintASCII writes the graph wave by wave with each task's outgoing edges.
func (r *Reporter) PrintASCII(w io.Writer) {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Task Dependency Graph"))
	fmt.Fprintln(w, ui.Cyan("═════════════════════"))
	fmt.Fprintln(w)

	for _, wave := range r.Analysis.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d %s\n", ui.Cyan("──"), wave.Index+1, ui.Cyan("──────────────────────────────"))
		for _, id := range wave.TaskIDs {
			crit := " "
			if r.Analysis.Tasks[id].IsCritical {
				crit = ui.StatusIcon("critical")
			}
			fmt.Fprintf(w, "  %s [%s]\n", crit, ui.BoldMagenta(id))

			for _, dep := range r.Graph.DistinctDependents(id) {
				fmt.Fprintf(w, "      %s %s\n", ui.Dim("└──→"), ui.Magenta(dep))
			}
		}
		fmt.Fprintln(w)
	}
}

// PrintDOT writes the graph in Graphviz DOT format, critical edges in red.
// Repeated constraints are drawn as one edge.
// Output is sorted so it is stable across runs.
func (r *Reporter) PrintDOT(w io.Writer) {
	critical := func(id string) bool {
		if r.Analysis == nil {
			return false
		}
		ts, ok := r.Analysis.Tasks[id]
		return ok && ts.IsCritical
	}
	// An edge is on the critical path only when it carries no slack.
	tight := func(from, to string) bool {
		return critical(from) && critical(to) &&
			r.Analysis.Tasks[to].ES == r.Analysis.Tasks[from].EF
	}

	fmt.Fprintln(w, "digraph steploom {")
	fmt.Fprintln(w, "  rankdir=LR;")
	fmt.Fprintln(w, "  node [shape=box, style=rounded];")
	fmt.Fprintln(w)

	for _, id := range r.Graph.Tasks() {
		attrs := fmt.Sprintf("label=%q", id)
		if critical(id) {
			attrs += `, style="rounded,bold", color=red`
		}
		fmt.Fprintf(w, "  %q [%s];\n", id, attrs)
	}

	fmt.Fprintln(w)

	for _, from := range r.Graph.Tasks() {
		for _, to := range r.Graph.DistinctDependents(from) {
			style := ""
			if tight(from, to) {
				style = ` [color=red, penwidth=2]`
			}
			fmt.Fprintf(w, "  %q -> %q%s;\n", from, to, style)
		}
	}

	fmt.Fprintln(w, "}")
}

// JSON returns machine-readable output of everything computed.
func (r *Reporter) JSON() ([]byte, error) {
	type output struct {
		Tasks    []string       `json:"tasks"`
		Order    []string       `json:"order,omitempty"`
		Sim      *sim.Result    `json:"simulation,omitempty"`
		Analysis *cpm.CPMResult `json:"analysis,omitempty"`
	}

	return json.MarshalIndent(output{
		Tasks:    r.Graph.Tasks(),
		Order:    r.Order,
		Sim:      r.Sim,
		Analysis: r.Analysis,
	}, "", "  ")
}
