package parser

// Span is a candidate run of natural-language text within a single string.
type Span struct {
	// Text is the matched substring.
	Text string
	// Offset is the byte offset of Text within the scanned string.
	Offset int
	// Column is the 0-based offset of Text in UTF-16 code units.
	Column int
}

// Match is a span located within a source line.
type Match struct {
	Text string `json:"text" yaml:"text"`
	// Line is the 0-based line index in the source file.
	Line int `json:"line" yaml:"line"`
	// Column is the 0-based UTF-16 column relative to the untrimmed line.
	Column int `json:"column" yaml:"column"`
	// Offset is the byte offset relative to the untrimmed line.
	Offset int `json:"-" yaml:"-"`
	// LineText is the trimmed source line, kept for display.
	LineText string `json:"lineText" yaml:"lineText"`
}

// FileInfo aggregates all matches found in one file.
type FileInfo struct {
	FilePath string  `json:"filePath" yaml:"filePath"`
	Matches  []Match `json:"matches" yaml:"matches"`
}

// Parser is the interface for source scanners used by the tree walker.
type Parser interface {
	// CanParse returns true if this parser handles the given file path.
	CanParse(path string) bool
	// Parse extracts candidate spans from a file.
	Parse(filePath string) (*FileInfo, error)
}
