package parser

import "strings"

// IsFullCommentLine reports whether the trimmed line starts a line or block
// comment, or continues a block comment with a leading asterisk.
func IsFullCommentLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "//") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "*")
}

// FindCommentStart returns the byte index of the first "//" that is not
// inside a quoted string. Quote tracking is a plain state machine; exotic
// nesting of escaped quotes can misplace the boundary.
func FindCommentStart(line string) (int, bool) {
	inSingle := false
	inDouble := false
	escaped := false

	for i := 0; i < len(line)-1; i++ {
		ch := line[i]

		if escaped {
			escaped = false
			continue
		}

		switch {
		case ch == '\\':
			escaped = true
		case ch == '"' && !inSingle:
			inDouble = !inDouble
		case ch == '\'' && !inDouble:
			inSingle = !inSingle
		case ch == '/' && line[i+1] == '/' && !inSingle && !inDouble:
			return i, true
		}
	}

	return -1, false
}

// ExtractSearchableText returns the part of line that may hold candidate
// spans. With includeComments the line is returned unchanged; otherwise
// full comment lines yield "" and trailing line comments are cut off.
func ExtractSearchableText(line string, includeComments bool) string {
	if includeComments {
		return line
	}
	if IsFullCommentLine(line) {
		return ""
	}
	if idx, ok := FindCommentStart(line); ok {
		return line[:idx]
	}
	return line
}
