package parser

import (
	"errors"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"

	"cjk-extractor/internal/textutil"
)

// ErrNoSpan is returned when no candidate span covers a requested position.
var ErrNoSpan = errors.New("no span at position")

// spanPunctuation lists the non-alphanumeric characters a span may run
// through once it has started.
const spanPunctuation = "，。！？、；：\"\"''（）【】《》〈〉「」『』〔〕［］｛｝～—–-_"

func isASCIIAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// isSpanSpace matches the ECMAScript whitespace set, which has U+FEFF and
// lacks U+0085 (NEL).
func isSpanSpace(r rune) bool {
	if r == '\u0085' {
		return false
	}
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// continuesSpan reports whether r may extend a span after its first ideograph.
func continuesSpan(r rune) bool {
	return textutil.IsIdeograph(r) ||
		isASCIIAlnum(r) ||
		isSpanSpace(r) ||
		strings.ContainsRune(spanPunctuation, r)
}

// Spans yields candidate spans of text from left to right. A span is an
// optional run of ASCII letters and digits, an ideograph, then the longest
// run of characters accepted by continuesSpan. Each call starts a fresh
// cursor, so the sequence can be ranged over any number of times.
func Spans(text string) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		column := 0
		i := 0
		for i < len(text) {
			// Leading alphanumerics only count when an ideograph follows them.
			j := i
			for j < len(text) && isASCIIAlnum(rune(text[j])) {
				j++
			}
			r, size := utf8.DecodeRuneInString(text[j:])
			if j >= len(text) || !textutil.IsIdeograph(r) {
				// No start is possible anywhere in [i, j]; resume after j.
				end := j
				if j < len(text) {
					end = j + size
				}
				column += textutil.UTF16Len(text[i:end])
				i = end
				continue
			}

			end := j + size
			for end < len(text) {
				next, n := utf8.DecodeRuneInString(text[end:])
				if !continuesSpan(next) {
					break
				}
				end += n
			}

			span := Span{Text: text[i:end], Offset: i, Column: column}
			if !yield(span) {
				return
			}
			column += textutil.UTF16Len(span.Text)
			i = end
		}
	}
}

// FindSpans returns all candidate spans of text.
func FindSpans(text string) []Span {
	var spans []Span
	for s := range Spans(text) {
		spans = append(spans, s)
	}
	return spans
}

// FindSpansInLine scans one source line, honouring the comment policy.
// Offsets are relative to the original line because comment stripping only
// ever removes a suffix.
func FindSpansInLine(line string, lineIndex int, includeComments bool) []Match {
	searchable := ExtractSearchableText(line, includeComments)
	if searchable == "" {
		return nil
	}

	lineText := strings.TrimSpace(line)
	var matches []Match
	for s := range Spans(searchable) {
		matches = append(matches, Match{
			Text:     s.Text,
			Line:     lineIndex,
			Column:   s.Column,
			Offset:   s.Offset,
			LineText: lineText,
		})
	}
	return matches
}

// SpanAt returns the match in line covering the given UTF-16 column.
func SpanAt(line string, lineIndex, column int, includeComments bool) (Match, error) {
	for _, m := range FindSpansInLine(line, lineIndex, includeComments) {
		if column >= m.Column && column < m.Column+textutil.UTF16Len(m.Text) {
			return m, nil
		}
	}
	return Match{}, ErrNoSpan
}

// TrimSpan removes trailing whitespace and ASCII quotes a greedy span may
// have swallowed from the surrounding string literal.
func TrimSpan(text string) string {
	return strings.TrimRightFunc(text, func(r rune) bool {
		return isSpanSpace(r) || r == '"' || r == '\''
	})
}
