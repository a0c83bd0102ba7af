package keys

import (
	"errors"
	"fmt"
	"regexp"

	"cjk-extractor/internal/ident"
)

var (
	// ErrInvalidKey indicates a key that is not lowercase snake_case.
	ErrInvalidKey = errors.New("invalid translation key")

	// ErrInvalidPrefix indicates a module prefix that is not lowercase snake_case.
	ErrInvalidPrefix = errors.New("invalid module prefix")
)

// snakePattern accepts lowercase words joined by single underscores.
var snakePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// ValidateIdentifier reports whether s survives the snake/Pascal/camel
// round trip, which is what generated constants and references rely on.
func ValidateIdentifier(s string) bool {
	if !snakePattern.MatchString(s) {
		return false
	}
	return ident.ToSnake(ident.ToPascal(s)) == s && ident.ToSnake(ident.ToCamel(s)) == s
}

// Table is the ordered module sequence of a project.
type Table struct {
	Modules []Module
}

// NewTable wraps modules in a table.
func NewTable(modules []Module) *Table {
	return &Table{Modules: modules}
}

// Find returns the first module whose normalized prefix equals the
// normalized token. Normalization is many-to-one, so the first match wins.
func (t *Table) Find(moduleToken string) (*Module, bool) {
	want := ident.ToSnake(moduleToken)
	for i := range t.Modules {
		if ident.ToSnake(t.Modules[i].Prefix) == want {
			return &t.Modules[i], true
		}
	}
	return nil, false
}

// Lookup resolves a module token and a capitalized key token the way
// references are resolved: both are snake-normalized and the first matching
// module wins. It returns the module, the stored key and its text.
func (t *Table) Lookup(moduleToken, keyToken string) (*Module, string, string, bool) {
	m, ok := t.Find(moduleToken)
	if !ok {
		return nil, "", "", false
	}
	key := ident.ToSnake(keyToken)
	text, ok := m.Content.Get(key)
	if !ok {
		return nil, "", "", false
	}
	return m, key, text, true
}

// Prefixes lists module prefixes in table order.
func (t *Table) Prefixes() []string {
	out := make([]string, 0, len(t.Modules))
	for _, m := range t.Modules {
		out = append(out, m.Prefix)
	}
	return out
}

// Add stores text under prefix/key. The target module is the one Find
// returns for prefix, so a legacy "userProfile" module receives keys added
// as "user_profile". A new module is appended only when none matches. It
// reports whether the module was created.
func (t *Table) Add(prefix, key, text string) (bool, error) {
	if !ValidateIdentifier(prefix) {
		return false, fmt.Errorf("%w: %q", ErrInvalidPrefix, prefix)
	}
	if !ValidateIdentifier(key) {
		return false, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	if m, ok := t.Find(prefix); ok {
		m.Content.Set(key, text)
		return false, nil
	}

	t.Modules = append(t.Modules, Module{
		Prefix:  prefix,
		Content: NewContent(Entry{Key: key, Text: text}),
	})
	return true, nil
}

// Validate returns every module prefix or key that would not produce a
// well-formed constant.
func (t *Table) Validate() []error {
	var errs []error
	seen := make(map[string]string)
	for _, m := range t.Modules {
		if !ValidateIdentifier(m.Prefix) {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidPrefix, m.Prefix))
		}
		norm := ident.ToSnake(m.Prefix)
		if other, ok := seen[norm]; ok {
			errs = append(errs, fmt.Errorf("module %q shadowed by %q after normalization", m.Prefix, other))
		} else {
			seen[norm] = m.Prefix
		}
		for _, e := range m.Content.Entries() {
			if !ValidateIdentifier(e.Key) {
				errs = append(errs, fmt.Errorf("%w: %q in module %q", ErrInvalidKey, e.Key, m.Prefix))
			}
		}
	}
	return errs
}

// Count returns the number of keys across all modules.
func (t *Table) Count() int {
	n := 0
	for i := range t.Modules {
		n += t.Modules[i].Content.Len()
	}
	return n
}
