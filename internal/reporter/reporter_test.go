package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/joshharrison/steploom/internal/cpm"
	"github.com/joshharrison/steploom/internal/graph"
	"github.com/joshharrison/steploom/internal/sim"
	"github.com/joshharrison/steploom/internal/topo"
)

func makeReporter(t *testing.T) *Reporter {
	t.Helper()

	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	g := graph.Build([]graph.Constraint{
		{Dependency: "C", Dependent: "A"},
		{Dependency: "C", Dependent: "F"},
		{Dependency: "A", Dependent: "B"},
		{Dependency: "A", Dependent: "D"},
		{Dependency: "B", Dependent: "E"},
		{Dependency: "D", Dependent: "E"},
		{Dependency: "F", Dependent: "E"},
	})
	dur := sim.AlphabetDuration(0)

	order, err := topo.Schedule(g)
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	res, err := sim.Run(g, sim.Config{Workers: 2, Duration: dur})
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	analysis, err := cpm.Analyze(g, dur)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	rpt := New(g)
	rpt.Order = order
	rpt.Sim = res
	rpt.Analysis = analysis
	return rpt
}

func TestPrintOrder(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintOrder(&buf)

	output := buf.String()
	if !strings.Contains(output, "Order:  CABDFE") {
		t.Errorf("expected order line, got:\n%s", output)
	}
	if strings.Contains(output, "→") {
		t.Error("single-letter IDs should not print the arrow form")
	}
}

func TestPrintOrder_MultiCharIDs(t *testing.T) {
	rpt := makeReporter(t)
	rpt.Order = []string{"fetch", "build"}

	var buf bytes.Buffer
	rpt.PrintOrder(&buf)
	if !strings.Contains(buf.String(), "fetch → build") {
		t.Errorf("expected arrow form for multi-character IDs, got:\n%s", buf.String())
	}
}

func TestPrintSimulation(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintSimulation(&buf, true)

	output := buf.String()
	for _, want := range []string{
		"Total time: 15 ticks",
		"Finished:   CABFDE",
		"Lower bound: 14 ticks",
		"[F]",
		"worker 2",
		"[3 → 9]",
		"Tick",
		"W2",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, output)
		}
	}

	// 15 timeline rows, tick 0 through 14
	if !strings.Contains(output, "    14") {
		t.Error("expected a timeline row for tick 14")
	}
	if strings.Contains(output, "    15  ") {
		t.Error("timeline should stop before tick 15")
	}
}

func TestPrintAnalysis(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintAnalysis(&buf)

	output := buf.String()
	if !strings.Contains(output, "C → F → E") {
		t.Errorf("expected critical path, got:\n%s", output)
	}
	if !strings.Contains(output, "Wave 4") {
		t.Error("expected four waves")
	}
	if !strings.Contains(output, "⚡ critical") {
		t.Error("expected critical markers")
	}
}

func TestPrintASCII(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintASCII(&buf)

	output := buf.String()
	if !strings.Contains(output, "[C]") || !strings.Contains(output, "└──→ A") {
		t.Errorf("expected C with an edge to A, got:\n%s", output)
	}
}

func TestPrintDOT(t *testing.T) {
	rpt := makeReporter(t)

	var buf bytes.Buffer
	rpt.PrintDOT(&buf)

	output := buf.String()
	if !strings.HasPrefix(output, "digraph steploom {") {
		t.Errorf("expected digraph header, got:\n%s", output)
	}
	if !strings.Contains(output, `"C" -> "F" [color=red, penwidth=2];`) {
		t.Error("expected critical edge C -> F in red")
	}
	if !strings.Contains(output, `"C" -> "A";`) {
		t.Error("expected plain edge C -> A")
	}

	var again bytes.Buffer
	rpt.PrintDOT(&again)
	if again.String() != output {
		t.Error("expected DOT output to be stable")
	}
}

func TestJSON(t *testing.T) {
	rpt := makeReporter(t)

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var decoded struct {
		Order      []string `json:"order"`
		Simulation struct {
			Ticks int `json:"ticks"`
		} `json:"simulation"`
		Analysis struct {
			TotalDuration int `json:"total_duration"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(decoded.Order, "") != "CABDFE" {
		t.Errorf("expected order CABDFE, got %v", decoded.Order)
	}
	if decoded.Simulation.Ticks != 15 {
		t.Errorf("expected 15 ticks, got %d", decoded.Simulation.Ticks)
	}
	if decoded.Analysis.TotalDuration != 14 {
		t.Errorf("expected lower bound 14, got %d", decoded.Analysis.TotalDuration)
	}
}

func TestJSON_OmitsMissingResults(t *testing.T) {
	rpt := New(graph.Build([]graph.Constraint{{Dependency: "A", Dependent: "B"}}))

	data, err := rpt.JSON()
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.Contains(string(data), "simulation") || strings.Contains(string(data), "analysis") {
		t.Errorf("expected only tasks, got %s", data)
	}
}

func TestPrintDOT_OnlyTightEdgesAreCritical(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	// A -> B -> C is the critical chain; the A -> C shortcut has slack.
	g := graph.Build([]graph.Constraint{
		{Dependency: "A", Dependent: "B"},
		{Dependency: "B", Dependent: "C"},
		{Dependency: "A", Dependent: "C"},
	})
	analysis, err := cpm.Analyze(g, sim.FixedDuration(1))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	rpt := New(g)
	rpt.Analysis = analysis

	var buf bytes.Buffer
	rpt.PrintDOT(&buf)

	output := buf.String()
	if !strings.Contains(output, `"A" -> "B" [color=red, penwidth=2];`) {
		t.Error("expected A -> B in red")
	}
	if !strings.Contains(output, `"B" -> "C" [color=red, penwidth=2];`) {
		t.Error("expected B -> C in red")
	}
	if !strings.Contains(output, `"A" -> "C";`) {
		t.Errorf("expected A -> C as a plain edge, got:\n%s", output)
	}
}

func TestPrintDOT_RepeatedConstraintDrawnOnce(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })

	g := graph.Build([]graph.Constraint{
		{Dependency: "A", Dependent: "B"},
		{Dependency: "A", Dependent: "B"},
	})
	analysis, err := cpm.Analyze(g, sim.FixedDuration(1))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	rpt := New(g)
	rpt.Analysis = analysis

	var dot bytes.Buffer
	rpt.PrintDOT(&dot)
	if n := strings.Count(dot.String(), `"A" -> "B"`); n != 1 {
		t.Errorf("expected one A -> B edge, got %d:\n%s", n, dot.String())
	}

	var ascii bytes.Buffer
	rpt.PrintASCII(&ascii)
	if n := strings.Count(ascii.String(), "└──→ B"); n != 1 {
		t.Errorf("expected one edge to B, got %d:\n%s", n, ascii.String())
	}
}
