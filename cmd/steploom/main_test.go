package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const classic = `Step C must be finished before step A can begin.
Step C must be finished before step F can begin.
Step A must be finished before step B can begin.
Step A must be finished before step D can begin.
Step B must be finished before step E can begin.
Step D must be finished before step E can begin.
Step F must be finished before step E can begin.
`

func writeInput(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append(args, "--no-color", "--config", writeInput(t, ""), "--env-file", writeInput(t, "")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestOrderCommand(t *testing.T) {
	out, _, err := run(t, "order", writeInput(t, classic))
	if err != nil {
		t.Fatalf("order: %v", err)
	}
	if !strings.Contains(out, "CABDFE") {
		t.Errorf("expected CABDFE, got:\n%s", out)
	}
}

func TestSimulateCommand(t *testing.T) {
	out, _, err := run(t, "simulate", writeInput(t, classic), "--workers", "2", "--base", "0")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out, "Total time: 15 ticks") {
		t.Errorf("expected 15 ticks, got:\n%s", out)
	}
}

func TestSimulateCommand_JSON(t *testing.T) {
	out, _, err := run(t, "simulate", writeInput(t, classic), "--json", "--log-level", "error")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}

	var decoded struct {
		Simulation struct {
			Ticks   int `json:"ticks"`
			Workers int `json:"workers"`
		} `json:"simulation"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if decoded.Simulation.Workers != 5 || decoded.Simulation.Ticks != 253 {
		t.Errorf("expected 5 workers and 253 ticks, got %+v", decoded.Simulation)
	}
}

func TestSimulateCommand_DebugLogs(t *testing.T) {
	_, stderr, err := run(t, "simulate", writeInput(t, classic), "--log-level", "debug", "--log-format", "json")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"task assigned"`) {
		t.Errorf("expected debug records on stderr, got:\n%s", stderr)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	out, _, err := run(t, "analyze", writeInput(t, classic), "--base", "0")
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if !strings.Contains(out, "C → F → E") {
		t.Errorf("expected critical path, got:\n%s", out)
	}
}

func TestVizCommand(t *testing.T) {
	out, _, err := run(t, "viz", writeInput(t, classic), "--format", "dot")
	if err != nil {
		t.Fatalf("viz: %v", err)
	}
	if !strings.HasPrefix(out, "digraph steploom {") {
		t.Errorf("expected DOT output, got:\n%s", out)
	}

	if _, _, err := run(t, "viz", writeInput(t, classic), "--format", "svg"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestCycleFails(t *testing.T) {
	_, _, err := run(t, "simulate", writeInput(t, "A -> B\nB -> A\n"))
	if err == nil || !strings.Contains(err.Error(), "cycle") {
		t.Errorf("expected cycle error, got %v", err)
	}

	_, _, err = run(t, "order", writeInput(t, "A -> B\nB -> A\n"))
	if err == nil {
		t.Error("expected order to fail on a cycle")
	}
}

func TestInvalidWorkersFlag(t *testing.T) {
	_, _, err := run(t, "simulate", writeInput(t, classic), "--workers", "0")
	if err == nil || !strings.Contains(err.Error(), "workers") {
		t.Errorf("expected workers validation error, got %v", err)
	}
}

func TestEmptyInput(t *testing.T) {
	if _, _, err := run(t, "order", writeInput(t, "")); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestSaveAndLast(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")

	if _, _, err := run(t, "last", "--state-dir", dir); err == nil {
		t.Fatal("expected error with no saved run")
	}

	path := writeInput(t, classic)
	if _, _, err := run(t, "simulate", path, "--workers", "2", "--base", "0", "--save", "--state-dir", dir); err != nil {
		t.Fatalf("simulate: %v", err)
	}

	out, _, err := run(t, "last", "--state-dir", dir)
	if err != nil {
		t.Fatalf("last: %v", err)
	}
	if !strings.Contains(out, "Total time: 15 ticks") {
		t.Errorf("expected saved 15 ticks, got:\n%s", out)
	}
	if !strings.Contains(out, path) {
		t.Errorf("expected input name %s in output, got:\n%s", path, out)
	}
}

func TestLastReportsFailedRun(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")

	if _, _, err := run(t, "simulate", writeInput(t, "A -> B\nB -> A\n"), "--save", "--state-dir", dir); err == nil {
		t.Fatal("expected cycle error")
	}

	_, _, err := run(t, "last", "--state-dir", dir)
	if err == nil || !strings.Contains(err.Error(), "failed") {
		t.Errorf("expected failed run error, got %v", err)
	}
}

func TestCleanCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")

	out, _, err := run(t, "clean", "--state-dir", dir)
	if err != nil {
		t.Fatalf("clean (empty): %v", err)
	}
	if !strings.Contains(out, "Nothing to clean") {
		t.Errorf("expected nothing-to-clean message, got:\n%s", out)
	}

	if _, _, err := run(t, "simulate", writeInput(t, classic), "--save", "--state-dir", dir); err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if _, _, err := run(t, "clean", "--state-dir", dir); err != nil {
		t.Fatalf("clean: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed, stat err = %v", dir, err)
	}
	if _, _, err := run(t, "last", "--state-dir", dir); err == nil {
		t.Error("expected last to fail after clean")
	}
}

func TestRootPrintsBannerAndHelp(t *testing.T) {
	out, stderr, err := run(t)
	if err != nil {
		t.Fatalf("root: %v", err)
	}
	if !strings.Contains(stderr, "S T E P L O O M") {
		t.Errorf("expected banner on stderr, got:\n%s", stderr)
	}
	if strings.Contains(out, "S T E P L O O M") {
		t.Error("banner should not be written to stdout")
	}
	if !strings.Contains(out, "simulate") {
		t.Errorf("expected help listing subcommands on stdout, got:\n%s", out)
	}
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("STEPLOOM_WORKERS", "1")
	t.Setenv("STEPLOOM_BASE_DURATION", "60")

	out, _, err := run(t, "simulate", writeInput(t, classic), "--workers", "2", "--base", "0")
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out, "Workers:    2") {
		t.Errorf("expected --workers to beat STEPLOOM_WORKERS, got:\n%s", out)
	}
	if !strings.Contains(out, "Total time: 15 ticks") {
		t.Errorf("expected --base to beat STEPLOOM_BASE_DURATION, got:\n%s", out)
	}

	out, _, err = run(t, "simulate", writeInput(t, classic))
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if !strings.Contains(out, "Workers:    1") {
		t.Errorf("expected STEPLOOM_WORKERS to apply without flags, got:\n%s", out)
	}
}
