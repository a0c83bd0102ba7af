package keys

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// Load reads the translation table from a JSON file. A missing or
// unparsable file yields an empty table: callers keep working with no
// modules instead of failing.
func Load(path string) *Table {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Debug().Str("path", path).Msg("Translation table not found, starting empty")
		} else {
			log.Warn().Err(err).Str("path", path).Msg("Failed to read translation table")
		}
		return NewTable(nil)
	}

	modules, err := Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Failed to parse translation table")
		return NewTable(nil)
	}

	log.Debug().Str("path", path).Int("modules", len(modules)).Msg("Loaded translation table")
	return NewTable(modules)
}

// Decode parses the JSON array of modules.
func Decode(data []byte) ([]Module, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var modules []Module
	if err := json.Unmarshal(data, &modules); err != nil {
		return nil, fmt.Errorf("decode translation table: %w", err)
	}
	return modules, nil
}

// Encode renders modules as indented JSON without HTML escaping.
func Encode(modules []Module) ([]byte, error) {
	if modules == nil {
		modules = []Module{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(modules); err != nil {
		return nil, fmt.Errorf("encode translation table: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the whole table to path, creating parent directories.
func Save(path string, t *Table) error {
	data, err := Encode(t.Modules)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create table directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write translation table: %w", err)
	}

	log.Info().Str("path", path).Int("modules", len(t.Modules)).Int("keys", t.Count()).Msg("Saved translation table")
	return nil
}
