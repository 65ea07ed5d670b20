// Package input turns constraint text into graph.Constraint records.
//
// Three formats are accepted and detected automatically:
//
//	Step C must be finished before step A can begin.
//	C -> A
//	[{"before": "C", "after": "A"}]
//
// The line formats may be mixed in one file; blank lines and lines starting
// with '#' are skipped. JSON may also be an object with a "constraints" array.
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/joshharrison/steploom/internal/graph"
)

var (
	sentenceRe = regexp.MustCompile(`^Step (\S+) must be finished before step (\S+) can begin\.?$`)
	arrowRe    = regexp.MustCompile(`^(\S+)\s*->\s*(\S+)$`)
)

// Parse reads constraints from r.
func Parse(r io.Reader) ([]graph.Constraint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read constraints: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '[' || trimmed[0] == '{') {
		return ParseJSON(trimmed)
	}
	return ParseLines(bytes.NewReader(data))
}

// ParseFile reads constraints from path, or from stdin when path is "" or "-".
func ParseFile(path string) ([]graph.Constraint, error) {
	if path == "" || path == "-" {
		return Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open constraints: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// ParseLines reads the sentence and arrow formats, one constraint per line.
func ParseLines(r io.Reader) ([]graph.Constraint, error) {
	var out []graph.Constraint
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		c, err := ParseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		out = append(out, c)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan constraints: %w", err)
	}
	return out, nil
}

// ParseLine parses a single sentence or arrow constraint.
func ParseLine(line string) (graph.Constraint, error) {
	if m := sentenceRe.FindStringSubmatch(line); m != nil {
		return graph.Constraint{Dependency: m[1], Dependent: m[2]}, nil
	}
	if m := arrowRe.FindStringSubmatch(line); m != nil {
		return graph.Constraint{Dependency: m[1], Dependent: m[2]}, nil
	}
	return graph.Constraint{}, fmt.Errorf("unrecognised constraint %q", line)
}

// ParseJSON reads a JSON array of {"before", "after"} objects. The keys
// "dependency" and "dependent" are accepted as aliases.
func ParseJSON(data []byte) ([]graph.Constraint, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse constraints: invalid JSON")
	}

	list := gjson.ParseBytes(data)
	if list.IsObject() {
		list = list.Get("constraints")
		if !list.Exists() {
			return nil, fmt.Errorf("parse constraints: object has no \"constraints\" array")
		}
	}
	if !list.IsArray() {
		return nil, fmt.Errorf("parse constraints: expected an array, got %s", list.Type)
	}

	var (
		out     []graph.Constraint
		itemErr error
		idx     int
	)
	list.ForEach(func(_, item gjson.Result) bool {
		before := firstString(item, "before", "dependency")
		after := firstString(item, "after", "dependent")
		if before == "" || after == "" {
			itemErr = fmt.Errorf("constraint %d: needs non-empty \"before\" and \"after\"", idx)
			return false
		}
		out = append(out, graph.Constraint{Dependency: before, Dependent: after})
		idx++
		return true
	})
	if itemErr != nil {
		return nil, itemErr
	}
	return out, nil
}

func firstString(item gjson.Result, keys ...string) string {
	for _, k := range keys {
		if v := item.Get(k); v.Exists() {
			return strings.TrimSpace(v.String())
		}
	}
	return ""
}
