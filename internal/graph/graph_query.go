package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/rs/zerolog/log"
)

// KeyResult is one translation key read back from the graph.
type KeyResult struct {
	Prefix string `json:"prefix" yaml:"prefix"`
	Key    string `json:"key" yaml:"key"`
	Text   string `json:"text" yaml:"text"`
}

// Usage is one place a key is referenced.
type Usage struct {
	Path   string `json:"path" yaml:"path"`
	Line   int    `json:"line" yaml:"line"`
	Column int    `json:"column" yaml:"column"`
}

// GraphQuerier answers questions about the exported reference graph.
type GraphQuerier struct {
	driver neo4j.DriverWithContext
}

// NewGraphQuerier creates a new graph querier.
func NewGraphQuerier(driver neo4j.DriverWithContext) *GraphQuerier {
	return &GraphQuerier{driver: driver}
}

// UnusedKeys returns keys that no file references, in table order.
func (gq *GraphQuerier) UnusedKeys(ctx context.Context) ([]KeyResult, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (m:Module)-[:HAS_KEY]->(k:Key)
		WHERE NOT ()-[:REFERENCES]->(k)
		RETURN k.prefix AS prefix, k.key AS key, k.text AS text
		ORDER BY m.position, k.key
	`, nil)
	if err != nil {
		return nil, fmt.Errorf("query unused keys: %w", err)
	}

	var keys []KeyResult
	for result.Next(ctx) {
		record := result.Record()
		prefix, _ := record.Get("prefix")
		key, _ := record.Get("key")
		text, _ := record.Get("text")

		keys = append(keys, KeyResult{
			Prefix: fmt.Sprintf("%v", prefix),
			Key:    fmt.Sprintf("%v", key),
			Text:   fmt.Sprintf("%v", text),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read unused keys: %w", err)
	}

	log.Debug().Int("count", len(keys)).Msg("Unused key query complete")
	return keys, nil
}

// Usages returns every reference to prefix/key ordered by path and line.
func (gq *GraphQuerier) Usages(ctx context.Context, prefix, key string) ([]Usage, error) {
	session := gq.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, `
		MATCH (f:File)-[r:REFERENCES]->(k:Key {prefix: $prefix, key: $key})
		RETURN f.path AS path, r.line AS line, r.column AS column
		ORDER BY path, line, column
	`, map[string]any{"prefix": prefix, "key": key})
	if err != nil {
		return nil, fmt.Errorf("query usages: %w", err)
	}

	var usages []Usage
	for result.Next(ctx) {
		record := result.Record()
		path, _ := record.Get("path")
		line, _ := record.Get("line")
		column, _ := record.Get("column")

		usages = append(usages, Usage{
			Path:   fmt.Sprintf("%v", path),
			Line:   toInt(line),
			Column: toInt(column),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read usages: %w", err)
	}
	return usages, nil
}

// Neo4j returns integers as int64.
func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
