// Package report renders scan results for the terminal and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"cjk-extractor/internal/filewalker"
	"cjk-extractor/internal/parser"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTSV  = "tsv"
)

// ValidFormats lists accepted --format values.
var ValidFormats = []string{FormatText, FormatJSON, FormatYAML, FormatTSV}

// DiagnosticMessage is attached to every span reported by the check command.
const DiagnosticMessage = "Chinese text found, consider adding a translation"

// ValidateFormat checks if the given format is supported.
func ValidateFormat(format string) error {
	for _, f := range ValidFormats {
		if strings.EqualFold(format, f) {
			return nil
		}
	}
	return fmt.Errorf("invalid format: %s. Valid formats are: %s", format, strings.Join(ValidFormats, ", "))
}

// Summary counts the result of one scan.
type Summary struct {
	Files   int `json:"files" yaml:"files"`
	Matches int `json:"matches" yaml:"matches"`
}

// Summarize counts files and matches.
func Summarize(files []parser.FileInfo) Summary {
	return Summary{Files: len(files), Matches: filewalker.CountMatches(files)}
}

func (s Summary) String() string {
	return fmt.Sprintf("Found %d files with %d Chinese spans", s.Files, s.Matches)
}

type document struct {
	Summary Summary           `json:"summary" yaml:"summary"`
	Files   []parser.FileInfo `json:"files" yaml:"files"`
}

// Writer renders reports in one format.
type Writer struct {
	Format string
	// Color enables terminal styling of the text format.
	Color bool
	// Root, when set, makes text and TSV paths relative to it.
	Root string
}

// NewWriter creates a writer for format, enabling colour when out is a
// terminal.
func NewWriter(format string, out io.Writer) *Writer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Writer{Format: strings.ToLower(format), Color: color}
}

// WriteScan renders a full scan result.
func (w *Writer) WriteScan(out io.Writer, files []parser.FileInfo) error {
	switch w.Format {
	case FormatJSON:
		return writeJSON(out, document{Summary: Summarize(files), Files: nonNil(files)})
	case FormatYAML:
		return writeYAML(out, document{Summary: Summarize(files), Files: nonNil(files)})
	case FormatTSV:
		return w.writeTSV(out, files)
	default:
		return w.writeText(out, files)
	}
}

// WriteDiagnostics renders one compiler-style line per match:
// path:line:column: message: text. Lines and columns are 1-based.
func (w *Writer) WriteDiagnostics(out io.Writer, files []parser.FileInfo) error {
	if w.Format != FormatText && w.Format != "" {
		return w.WriteScan(out, files)
	}
	for _, f := range files {
		for _, m := range f.Matches {
			if _, err := fmt.Fprintf(out, "%s:%d:%d: %s: %s\n",
				w.displayPath(f.FilePath), m.Line+1, m.Column+1, DiagnosticMessage, m.Text); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintln(out, Summarize(files))
	return err
}

func (w *Writer) writeText(out io.Writer, files []parser.FileInfo) error {
	fileStyle := lipgloss.NewStyle()
	countStyle := lipgloss.NewStyle()
	posStyle := lipgloss.NewStyle()
	if w.Color {
		fileStyle = fileStyle.Foreground(lipgloss.Color("14")).Bold(true)
		countStyle = countStyle.Foreground(lipgloss.Color("11"))
		posStyle = posStyle.Foreground(lipgloss.Color("8"))
	}

	for _, f := range files {
		header := fmt.Sprintf("%s %s",
			fileStyle.Render(w.displayPath(f.FilePath)),
			countStyle.Render(fmt.Sprintf("(%d)", len(f.Matches))))
		if _, err := fmt.Fprintln(out, header); err != nil {
			return err
		}
		for _, m := range f.Matches {
			pos := posStyle.Render(fmt.Sprintf("%d:%d", m.Line+1, m.Column+1))
			if _, err := fmt.Fprintf(out, "  %s  %s\n", pos, m.Text); err != nil {
				return err
			}
		}
	}

	_, err := fmt.Fprintln(out, Summarize(files))
	return err
}

func (w *Writer) writeTSV(out io.Writer, files []parser.FileInfo) error {
	if _, err := fmt.Fprintln(out, "file\tline\tcolumn\ttext\tline_text"); err != nil {
		return err
	}
	for _, f := range files {
		for _, m := range f.Matches {
			if _, err := fmt.Fprintf(out, "%s\t%d\t%d\t%s\t%s\n",
				w.displayPath(f.FilePath),
				m.Line+1,
				m.Column+1,
				EscapeTSV(m.Text),
				EscapeTSV(m.LineText),
			); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) displayPath(path string) string {
	if w.Root == "" {
		return path
	}
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

// EscapeTSV replaces tabs and newlines in a string for TSV safety.
func EscapeTSV(s string) string {
	s = strings.ReplaceAll(s, "\t", "\\t")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	return s
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode YAML: %w", err)
	}
	return enc.Close()
}

func nonNil(files []parser.FileInfo) []parser.FileInfo {
	if files == nil {
		return []parser.FileInfo{}
	}
	return files
}
