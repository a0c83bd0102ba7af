package parser

import (
	"fmt"
	"sort"
)

// Edit replaces the bytes [Offset, Offset+Length) of line Line.
type Edit struct {
	Line        int
	Offset      int
	Length      int
	Replacement string
}

// WidenToQuotes grows [start, end) of line by one quote character on each
// side when the span sits directly inside a string literal, so that the
// replacement drops the literal's quotes too.
func WidenToQuotes(line string, start, end int) (int, int) {
	if start > 0 && (line[start-1] == '"' || line[start-1] == '\'') {
		start--
	}
	if end < len(line) && (line[end] == '"' || line[end] == '\'') {
		end++
	}
	return start, end
}

// ReplaceSpan substitutes a reference for the span at [offset, offset+length)
// of line, widening the replaced range over surrounding quotes.
func ReplaceSpan(line string, offset, length int, replacement string) (string, error) {
	if offset < 0 || length <= 0 || offset+length > len(line) {
		return "", fmt.Errorf("span [%d,%d) out of range for line of %d bytes", offset, offset+length, len(line))
	}
	start, end := WidenToQuotes(line, offset, offset+length)
	return line[:start] + replacement + line[end:], nil
}

// Reconstruct applies edits to content and returns the rewritten text.
// Edits on the same line are applied right to left so earlier offsets stay
// valid.
func Reconstruct(content string, edits []Edit) (string, error) {
	lines := SplitLines(content)

	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Line != sorted[j].Line {
			return sorted[i].Line < sorted[j].Line
		}
		return sorted[i].Offset > sorted[j].Offset
	})

	for _, e := range sorted {
		if e.Line < 0 || e.Line >= len(lines) {
			return "", fmt.Errorf("edit line %d out of range (%d lines)", e.Line, len(lines))
		}
		replaced, err := ReplaceSpan(lines[e.Line], e.Offset, e.Length, e.Replacement)
		if err != nil {
			return "", fmt.Errorf("line %d: %w", e.Line, err)
		}
		lines[e.Line] = replaced
	}

	return JoinLines(lines), nil
}
