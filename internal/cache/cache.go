package cache

import (
	"context"
	"fmt"
	"sync"

	"cjk-extractor/internal/keys"
	"cjk-extractor/internal/worker"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// insertBatchSize bounds the number of queued inserts per round trip.
const insertBatchSize = 500

var schema = []string{
	`CREATE TABLE IF NOT EXISTS translate_modules (
		prefix   TEXT PRIMARY KEY,
		position INT  NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS translate_entries (
		prefix   TEXT NOT NULL REFERENCES translate_modules(prefix) ON DELETE CASCADE,
		key      TEXT NOT NULL,
		position INT  NOT NULL,
		text     TEXT NOT NULL,
		PRIMARY KEY (prefix, key)
	)`,
}

// TableCache mirrors the translation table in PostgreSQL and keeps the last
// loaded or saved copy in memory.
type TableCache struct {
	pool *pgxpool.Pool

	mu      sync.RWMutex
	modules []keys.Module
}

// NewTableCache creates a cache backed by PostgreSQL.
func NewTableCache(pool *pgxpool.Pool) *TableCache {
	return &TableCache{pool: pool}
}

// Connect opens and pings a pool for databaseURL.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping PostgreSQL: %w", err)
	}
	log.Info().Msg("Connected to PostgreSQL")
	return pool, nil
}

// EnsureSchema creates the mirror tables if they do not exist.
func (c *TableCache) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := c.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}

// Table returns the in-memory copy as a table.
func (c *TableCache) Table() *keys.Table {
	c.mu.RLock()
	defer c.mu.RUnlock()

	modules := make([]keys.Module, len(c.modules))
	copy(modules, c.modules)
	return keys.NewTable(modules)
}

// Get returns the cached text for prefix/key.
func (c *TableCache) Get(prefix, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for i := range c.modules {
		if c.modules[i].Prefix == prefix {
			return c.modules[i].Content.Get(key)
		}
	}
	return "", false
}

// Preload loads the whole table from PostgreSQL into memory.
func (c *TableCache) Preload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `SELECT prefix FROM translate_modules ORDER BY position`)
	if err != nil {
		return fmt.Errorf("query modules: %w", err)
	}
	prefixes, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scan modules: %w", err)
	}

	table := keys.NewTable(make([]keys.Module, 0, len(prefixes)))
	index := make(map[string]int, len(prefixes))
	for _, p := range prefixes {
		index[p] = len(table.Modules)
		table.Modules = append(table.Modules, keys.Module{Prefix: p})
	}

	rows, err = c.pool.Query(ctx, `SELECT prefix, key, text FROM translate_entries ORDER BY prefix, position`)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var prefix, key, text string
		if err := rows.Scan(&prefix, &key, &text); err != nil {
			return fmt.Errorf("scan entry: %w", err)
		}
		i, ok := index[prefix]
		if !ok {
			continue
		}
		table.Modules[i].Content.Set(key, text)
		count++
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read entries: %w", err)
	}

	c.mu.Lock()
	c.modules = table.Modules
	c.mu.Unlock()

	log.Info().Int("modules", len(table.Modules)).Int("keys", count).Msg("Preloaded translation table")
	return nil
}

// Save replaces the stored table with modules in one transaction.
func (c *TableCache) Save(ctx context.Context, modules []keys.Module) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM translate_modules`); err != nil {
		return fmt.Errorf("clear modules: %w", err)
	}

	type row struct {
		prefix, key, text string
		position          int
	}
	var entries []row

	modBatch := &pgx.Batch{}
	for i, m := range modules {
		modBatch.Queue(`INSERT INTO translate_modules (prefix, position) VALUES ($1, $2)`, m.Prefix, i)
		for j, e := range m.Content.Entries() {
			entries = append(entries, row{prefix: m.Prefix, key: e.Key, text: e.Text, position: j})
		}
	}
	if err := tx.SendBatch(ctx, modBatch).Close(); err != nil {
		return fmt.Errorf("insert modules: %w", err)
	}

	for _, chunk := range worker.Batch(entries, insertBatchSize) {
		b := &pgx.Batch{}
		for _, r := range chunk {
			b.Queue(`INSERT INTO translate_entries (prefix, key, position, text) VALUES ($1, $2, $3, $4)`,
				r.prefix, r.key, r.position, r.text)
		}
		if err := tx.SendBatch(ctx, b).Close(); err != nil {
			return fmt.Errorf("insert entries: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit table: %w", err)
	}

	c.mu.Lock()
	c.modules = modules
	c.mu.Unlock()

	log.Info().Int("modules", len(modules)).Int("keys", len(entries)).Msg("Stored translation table in PostgreSQL")
	return nil
}
