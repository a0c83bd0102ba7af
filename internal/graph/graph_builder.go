package graph

import (
	"context"
	"fmt"

	"cjk-extractor/internal/filewalker"
	"cjk-extractor/internal/ident"
	"cjk-extractor/internal/keys"
	"cjk-extractor/internal/parser"
	"cjk-extractor/internal/textutil"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// Snapshot is everything one export writes to the graph.
type Snapshot struct {
	Modules    []keys.Module
	References []filewalker.FileReferences
	Spans      []parser.FileInfo
}

// ExportStats counts what an export wrote.
type ExportStats struct {
	Modules    int
	Keys       int
	Files      int
	References int
	Unresolved int
	Spans      int
}

// GraphBuilder writes the module table and source references to Neo4j.
type GraphBuilder struct {
	driver neo4j.DriverWithContext
}

// NewGraphBuilder creates a new graph builder.
func NewGraphBuilder(driver neo4j.DriverWithContext) *GraphBuilder {
	return &GraphBuilder{driver: driver}
}

// Connect opens a driver and verifies connectivity.
func Connect(ctx context.Context, uri, user, password string) (neo4j.DriverWithContext, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("create Neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("verify Neo4j connectivity: %w", err)
	}
	log.Info().Str("uri", uri).Msg("Connected to Neo4j")
	return driver, nil
}

// EnsureSchema creates constraints on the Neo4j database.
func (gb *GraphBuilder) EnsureSchema(ctx context.Context) error {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	constraints := []string{
		"CREATE CONSTRAINT IF NOT EXISTS FOR (m:Module) REQUIRE m.prefix IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (k:Key) REQUIRE (k.prefix, k.key) IS UNIQUE",
		"CREATE CONSTRAINT IF NOT EXISTS FOR (f:File) REQUIRE f.path IS UNIQUE",
	}

	for _, c := range constraints {
		if _, err := session.Run(ctx, c, nil); err != nil {
			return fmt.Errorf("create constraint: %w", err)
		}
	}

	log.Info().Msg("Graph schema ensured")
	return nil
}

// Export replaces the stored graph with snap.
func (gb *GraphBuilder) Export(ctx context.Context, snap Snapshot) (ExportStats, error) {
	session := gb.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer session.Close(ctx)

	if _, err := session.Run(ctx, `
		MATCH (n) WHERE n:Module OR n:Key OR n:File OR n:Span
		DETACH DELETE n
	`, nil); err != nil {
		return ExportStats{}, fmt.Errorf("clear graph: %w", err)
	}

	moduleRows, keyRows := tableRows(snap.Modules)
	refRows, unresolved := referenceRows(keys.NewTable(snap.Modules), snap.References)
	spans := spanRows(snap.Spans)

	stats := ExportStats{
		Modules:    len(moduleRows),
		Keys:       len(keyRows),
		Files:      len(fileRows(snap)),
		References: len(refRows),
		Unresolved: unresolved,
		Spans:      len(spans),
	}

	steps := []struct {
		name  string
		query string
		rows  []map[string]any
	}{
		{"modules", `
			UNWIND $rows AS row
			MERGE (m:Module {prefix: row.prefix})
			SET m.position = row.position, m.field = row.field, m.class = row.class
		`, moduleRows},
		{"keys", `
			UNWIND $rows AS row
			MATCH (m:Module {prefix: row.prefix})
			MERGE (k:Key {prefix: row.prefix, key: row.key})
			SET k.text = row.text, k.constant = row.constant
			MERGE (m)-[:HAS_KEY]->(k)
		`, keyRows},
		{"files", `
			UNWIND $rows AS row
			MERGE (:File {path: row.path})
		`, fileRows(snap)},
		{"references", `
			UNWIND $rows AS row
			MATCH (f:File {path: row.path})
			MATCH (k:Key {prefix: row.prefix, key: row.key})
			CREATE (f)-[:REFERENCES {line: row.line, column: row.column, token: row.token}]->(k)
		`, refRows},
		{"spans", `
			UNWIND $rows AS row
			MATCH (f:File {path: row.path})
			CREATE (f)-[:CONTAINS]->(:Span {text: row.text, hash: row.hash, line: row.line, column: row.column})
		`, spans},
	}

	for _, step := range steps {
		if len(step.rows) == 0 {
			continue
		}
		if _, err := session.Run(ctx, step.query, map[string]any{"rows": step.rows}); err != nil {
			return stats, fmt.Errorf("export %s: %w", step.name, err)
		}
	}

	log.Info().
		Int("modules", stats.Modules).
		Int("keys", stats.Keys).
		Int("files", stats.Files).
		Int("references", stats.References).
		Int("unresolved", stats.Unresolved).
		Int("spans", stats.Spans).
		Msg("Exported reference graph")
	return stats, nil
}

func tableRows(modules []keys.Module) (moduleRows, keyRows []map[string]any) {
	for i, m := range modules {
		moduleRows = append(moduleRows, map[string]any{
			"prefix":   m.Prefix,
			"position": i,
			"field":    ident.ToCamel(m.Prefix),
			"class":    ident.ToPascal(m.Prefix),
		})
		for _, e := range m.Content.Entries() {
			keyRows = append(keyRows, map[string]any{
				"prefix":   m.Prefix,
				"key":      e.Key,
				"text":     e.Text,
				"constant": m.Prefix + ident.Delimiter + ident.ToSnake(e.Key),
			})
		}
	}
	return moduleRows, keyRows
}

// referenceRows resolves each reference token to its stored prefix and key.
// Tokens that do not resolve are counted, not exported.
func referenceRows(table *keys.Table, files []filewalker.FileReferences) ([]map[string]any, int) {
	var rows []map[string]any
	unresolved := 0
	for _, f := range files {
		for _, ref := range f.References {
			m, key, _, ok := table.Lookup(ref.ModuleToken, ref.KeyToken)
			if !ok {
				unresolved++
				continue
			}
			rows = append(rows, map[string]any{
				"path":   f.FilePath,
				"prefix": m.Prefix,
				"key":    key,
				"line":   ref.Line,
				"column": ref.Column,
				"token":  ref.Token,
			})
		}
	}
	return rows, unresolved
}

func spanRows(files []parser.FileInfo) []map[string]any {
	var rows []map[string]any
	for _, f := range files {
		for _, m := range f.Matches {
			rows = append(rows, map[string]any{
				"path":   f.FilePath,
				"text":   m.Text,
				"hash":   textutil.Hash(parser.TrimSpan(m.Text)),
				"line":   m.Line,
				"column": m.Column,
			})
		}
	}
	return rows
}

// fileRows lists each file seen in either references or spans once, in
// first-seen order.
func fileRows(snap Snapshot) []map[string]any {
	seen := make(map[string]bool)
	var rows []map[string]any
	add := func(path string) {
		if seen[path] {
			return
		}
		seen[path] = true
		rows = append(rows, map[string]any{"path": path})
	}
	for _, f := range snap.References {
		add(f.FilePath)
	}
	for _, f := range snap.Spans {
		add(f.FilePath)
	}
	return rows
}
