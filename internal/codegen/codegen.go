// Package codegen renders the Dart source file that declares one constant
// per translation key.
package codegen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cjk-extractor/internal/ident"
	"cjk-extractor/internal/keys"

	"github.com/rs/zerolog/log"
)

const (
	// DefaultLibrary is the Dart library name of the generated file.
	DefaultLibrary = "i18n_const_key"
	// DefaultAggregator is the class exposing one field per module.
	DefaultAggregator = "I18nKey"
)

// Generator builds the constant-key source file.
type Generator struct {
	Library    string
	Aggregator string
}

// NewGenerator creates a generator with the default library and class names.
func NewGenerator() *Generator {
	return &Generator{
		Library:    DefaultLibrary,
		Aggregator: DefaultAggregator,
	}
}

// Render returns the file content for modules.
func (g *Generator) Render(modules []keys.Module) string {
	var b strings.Builder

	fmt.Fprintf(&b, "library %s;\n\n", g.Library)

	for _, m := range modules {
		fmt.Fprintf(&b, "class %s {\n", ident.ToPascal(m.Prefix))
		for _, e := range m.Content.Entries() {
			fmt.Fprintf(&b, "    static const k%s = \"%s_%s\";\n",
				ident.ToPascal(e.Key), m.Prefix, ident.ToSnake(e.Key))
		}
		b.WriteString("}\n\n")
	}

	fmt.Fprintf(&b, "class %s {\n", g.Aggregator)
	for _, m := range modules {
		fmt.Fprintf(&b, "    static final %s = %s();\n", ident.ToCamel(m.Prefix), ident.ToPascal(m.Prefix))
	}
	b.WriteString("}\n")

	return b.String()
}

// Write renders modules to path, creating parent directories.
func (g *Generator) Write(path string, modules []keys.Module) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create const key directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(g.Render(modules)), 0o644); err != nil {
		return fmt.Errorf("write const key file: %w", err)
	}

	log.Info().Str("path", path).Int("modules", len(modules)).Msg("Generated const key file")
	return nil
}
