package parser

import (
	"fmt"
	"os"
	"strings"

	"cjk-extractor/internal/textutil"
)

var _ Parser = (*SourceParser)(nil)

// SourceParser scans text files line by line for candidate spans.
type SourceParser struct {
	extensions      []string
	includeComments bool
}

// NewSourceParser creates a parser accepting files whose path ends with one
// of the given extensions.
func NewSourceParser(extensions []string, includeComments bool) *SourceParser {
	return &SourceParser{
		extensions:      extensions,
		includeComments: includeComments,
	}
}

// CanParse reports whether path ends with a configured extension.
func (p *SourceParser) CanParse(path string) bool {
	for _, ext := range p.extensions {
		if ext != "" && strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func (p *SourceParser) Parse(filePath string) (*FileInfo, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}

	return &FileInfo{
		FilePath: filePath,
		Matches:  p.ParseText(string(data)),
	}, nil
}

// ParseText scans already loaded content.
func (p *SourceParser) ParseText(content string) []Match {
	if !textutil.ContainsChinese(content) {
		return nil
	}
	var matches []Match
	for lineIndex, line := range SplitLines(content) {
		matches = append(matches, FindSpansInLine(line, lineIndex, p.includeComments)...)
	}
	return matches
}

// SplitLines splits content on "\n" only. A trailing "\r" stays on its line,
// which keeps Join(SplitLines(s)) == s.
func SplitLines(content string) []string {
	return strings.Split(content, "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
