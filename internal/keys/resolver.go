package keys

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"cjk-extractor/internal/ident"
	"cjk-extractor/internal/textutil"
)

// DefaultNamespace is the receiver name used in generated references.
const DefaultNamespace = "Ikey"

// Reference is one <Namespace>.<module>.k<Key>.tr token found in a line.
// Line is left zero by the resolver; whole-file callers fill it in.
type Reference struct {
	Token       string `json:"token" yaml:"token"`
	ModuleToken string `json:"module" yaml:"module"`
	KeyToken    string `json:"key" yaml:"key"`
	Line        int    `json:"line" yaml:"line"`
	Offset      int    `json:"-" yaml:"-"`
	Column      int    `json:"column" yaml:"column"`
	Length      int    `json:"length" yaml:"length"`
}

// Hint is a reference that resolved to display text.
type Hint struct {
	Reference
	Module string `json:"prefix" yaml:"prefix"`
	Key    string `json:"snakeKey" yaml:"snakeKey"`
	Text   string `json:"text" yaml:"text"`
}

// RenderOptions carries per-session presentation state.
type RenderOptions struct {
	// Folded replaces reference tokens with their text instead of
	// annotating them.
	Folded bool
}

// Resolver maps in-source reference tokens back to literal text.
type Resolver struct {
	namespace string
	table     *Table
	pattern   *regexp.Regexp
}

// NewResolver creates a resolver for references rooted at namespace.
func NewResolver(namespace string, table *Table) *Resolver {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if table == nil {
		table = NewTable(nil)
	}
	return &Resolver{
		namespace: namespace,
		table:     table,
		pattern:   regexp.MustCompile(regexp.QuoteMeta(namespace) + `\.(\w+)\.k([A-Z][a-zA-Z]+)\.tr`),
	}
}

// Namespace returns the reference receiver name.
func (r *Resolver) Namespace() string {
	return r.namespace
}

// Resolve looks up the text for a module token and capitalized key token.
// Both are snake-normalized first, so "userProfile" and "user_profile"
// address the same module. A miss is not an error.
func (r *Resolver) Resolve(moduleToken, keyToken string) (string, bool) {
	_, _, text, ok := r.table.Lookup(moduleToken, keyToken)
	return text, ok
}

// ResolveToken resolves a full reference token such as
// "Ikey.userProfile.kBillsTitle.tr".
func (r *Resolver) ResolveToken(token string) (string, bool) {
	sub := r.pattern.FindStringSubmatch(token)
	if sub == nil || sub[0] != token {
		return "", false
	}
	return r.Resolve(sub[1], sub[2])
}

// Reference builds the token that addresses prefix/key.
func (r *Resolver) Reference(prefix, key string) string {
	return fmt.Sprintf("%s.%s.k%s.tr", r.namespace, ident.ToCamel(prefix), ident.ToPascal(key))
}

// References yields every reference token in line, left to right. Each
// call matches afresh; nothing is carried between calls.
func (r *Resolver) References(line string) iter.Seq[Reference] {
	return func(yield func(Reference) bool) {
		for _, loc := range r.pattern.FindAllStringSubmatchIndex(line, -1) {
			ref := Reference{
				Token:       line[loc[0]:loc[1]],
				ModuleToken: line[loc[2]:loc[3]],
				KeyToken:    line[loc[4]:loc[5]],
				Offset:      loc[0],
				Column:      textutil.UTF16Len(line[:loc[0]]),
				Length:      textutil.UTF16Len(line[loc[0]:loc[1]]),
			}
			if !yield(ref) {
				return
			}
		}
	}
}

// Hints returns the resolvable references of line. Unresolvable ones are
// dropped silently.
func (r *Resolver) Hints(line string) []Hint {
	var hints []Hint
	for ref := range r.References(line) {
		m, key, text, ok := r.table.Lookup(ref.ModuleToken, ref.KeyToken)
		if !ok {
			continue
		}
		hints = append(hints, Hint{
			Reference: ref,
			Module:    m.Prefix,
			Key:       key,
			Text:      text,
		})
	}
	return hints
}

// Render returns line with hints applied. Folded output shows the text in
// place of each token; unfolded output keeps the token and appends the text.
func Render(line string, hints []Hint, opts RenderOptions) string {
	if len(hints) == 0 {
		return line
	}

	var b strings.Builder
	last := 0
	for _, h := range hints {
		end := h.Offset + len(h.Token)
		b.WriteString(line[last:h.Offset])
		if opts.Folded {
			b.WriteString(`"` + h.Text + `"`)
		} else {
			b.WriteString(h.Token)
			b.WriteString(" /* " + h.Text + " */")
		}
		last = end
	}
	b.WriteString(line[last:])
	return b.String()
}
