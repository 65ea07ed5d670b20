package ui

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold        = color.New(color.Bold).SprintFunc()
	Dim         = color.New(color.Faint).SprintFunc()
	Cyan        = color.New(color.FgCyan).SprintFunc()
	Green       = color.New(color.FgGreen).SprintFunc()
	Red         = color.New(color.FgRed).SprintFunc()
	Yellow      = color.New(color.FgYellow).SprintFunc()
	Magenta     = color.New(color.FgMagenta).SprintFunc()
	BoldCyan    = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldGreen   = color.New(color.Bold, color.FgGreen).SprintFunc()
	BoldRed     = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow  = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldMagenta = color.New(color.Bold, color.FgMagenta).SprintFunc()
	BoldWhite   = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// SetColor forces colored output on or off, overriding terminal detection.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}

// PrintBanner renders the steploom banner to w.
func PrintBanner(w io.Writer) {
	frame := color.New(color.FgCyan)
	steps := color.New(color.FgYellow)
	brand := color.New(color.Bold, color.FgMagenta)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   +--------------------------+")
	steps.Fprintln(w, "   |  ▁▁▂▂▃▃▄▄▅▅▆▆▇▇██▇▇▆▆▅▅  |")
	brand.Fprintln(w, "   |  S T E P L O O M         |")
	frame.Fprintln(w, "   +--------------------------+")
	fmt.Fprintln(w)
}

// taskColors is a palette of distinct bold colors for differentiating tasks.
var taskColors = []func(a ...interface{}) string{
	BoldMagenta,
	BoldCyan,
	BoldYellow,
	BoldGreen,
	color.New(color.Bold, color.FgHiBlue).SprintFunc(),
	color.New(color.Bold, color.FgHiRed).SprintFunc(),
}

// taskColorIndex hashes a task ID to a palette index.
func taskColorIndex(taskID string) int {
	var h uint32
	for _, c := range taskID {
		h = h*31 + uint32(c)
	}
	return int(h % uint32(len(taskColors)))
}

// Task returns the task ID in its palette color.
// Each task ID always gets the same color.
func Task(taskID string) string {
	return taskColors[taskColorIndex(taskID)](taskID)
}

// TaskPrefix returns a colored [task-id] prefix string.
func TaskPrefix(taskID string) string {
	return Dim("[") + Task(taskID) + Dim("]")
}

// StatusIcon returns a colored icon for a worker slot or task state.
func StatusIcon(status string) string {
	switch status {
	case "done":
		return Green("✓")
	case "busy":
		return Cyan("●")
	case "critical":
		return BoldYellow("⚡")
	case "cycle":
		return Red("✗")
	default:
		return Dim("◌")
	}
}
