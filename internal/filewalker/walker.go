package filewalker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cjk-extractor/internal/keys"
	"cjk-extractor/internal/parser"
	"cjk-extractor/internal/worker"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// Options configures one walk. It is not modified during the walk.
type Options struct {
	// ExcludeDirs holds directory names ("build"), path suffixes
	// ("lib/i18n") or doublestar globs ("**/gen/*") to prune.
	ExcludeDirs     []string
	IncludeComments bool
	// FileExtensions are matched as plain path suffixes.
	FileExtensions []string
	Workers        int
}

// DefaultOptions mirrors the built-in scan configuration.
func DefaultOptions() Options {
	return Options{
		ExcludeDirs:    []string{".git", "build", "node_modules", ".dart_tool"},
		FileExtensions: []string{".dart"},
		Workers:        8,
	}
}

// Walker traverses directory trees and scans matching files.
type Walker struct {
	opts   Options
	parser parser.Parser
}

// NewWalker creates a Walker for the given options.
func NewWalker(opts Options) *Walker {
	return &Walker{
		opts:   opts,
		parser: parser.NewSourceParser(opts.FileExtensions, opts.IncludeComments),
	}
}

// Parser returns the source parser used for individual files.
func (w *Walker) Parser() parser.Parser {
	return w.parser
}

// Scan walks root and returns the files that contain at least one span, in
// discovery order.
func (w *Walker) Scan(ctx context.Context, root string) ([]parser.FileInfo, error) {
	files, err := w.Walk(ctx, root)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool[string, *parser.FileInfo](w.opts.Workers,
		func(ctx context.Context, path string) (*parser.FileInfo, error) {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return w.parser.Parse(path)
		},
	)

	var result []parser.FileInfo
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(task.Err).Str("file", task.Input).Msg("Failed to scan file")
			continue
		}
		if len(task.Result.Matches) > 0 {
			result = append(result, *task.Result)
		}
	}

	log.Info().Int("files", len(result)).Int("matches", CountMatches(result)).Str("root", root).Msg("Scan complete")
	return result, nil
}

// FileReferences lists the reference tokens found in one file.
type FileReferences struct {
	FilePath   string
	References []keys.Reference
}

// References walks root and collects reference tokens recognised by resolver.
func (w *Walker) References(ctx context.Context, root string, resolver *keys.Resolver) ([]FileReferences, error) {
	files, err := w.Walk(ctx, root)
	if err != nil {
		return nil, err
	}

	pool := worker.NewPool[string, []keys.Reference](w.opts.Workers,
		func(ctx context.Context, path string) ([]keys.Reference, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read source file: %w", err)
			}
			var refs []keys.Reference
			for i, line := range parser.SplitLines(string(data)) {
				for ref := range resolver.References(line) {
					ref.Line = i
					refs = append(refs, ref)
				}
			}
			return refs, nil
		},
	)

	var result []FileReferences
	for _, task := range pool.Execute(ctx, files) {
		if task.Err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn().Err(task.Err).Str("file", task.Input).Msg("Failed to read file")
			continue
		}
		if len(task.Result) > 0 {
			result = append(result, FileReferences{FilePath: task.Input, References: task.Result})
		}
	}
	return result, nil
}

// Walk returns every file under root that the parser accepts, pruning
// excluded directories before descending into them. Unreadable directories
// are logged and skipped.
func (w *Walker) Walk(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	var files []string
	if err := w.walkDir(ctx, root, root, &files); err != nil {
		return nil, err
	}

	log.Debug().Int("count", len(files)).Str("root", root).Msg("Discovered files")
	return files, nil
}

func (w *Walker) walkDir(ctx context.Context, root, dir string, files *[]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn().Err(err).Str("path", dir).Msg("Error reading directory")
		return nil
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		fullPath := filepath.Join(dir, entry.Name())
		switch {
		case entry.IsDir():
			if w.IsExcluded(root, fullPath, entry.Name()) {
				log.Debug().Str("path", fullPath).Msg("Skipping excluded directory")
				continue
			}
			if err := w.walkDir(ctx, root, fullPath, files); err != nil {
				return err
			}
		case entry.Type().IsRegular():
			if w.parser.CanParse(fullPath) {
				*files = append(*files, fullPath)
			}
		}
	}
	return nil
}

// IsExcluded reports whether the directory at fullPath (named name) matches
// an exclusion entry. Entries with a path separator match trailing or inner
// path segments; bare names match the directory name only; entries with
// glob metacharacters match the path relative to root.
func (w *Walker) IsExcluded(root, fullPath, name string) bool {
	for _, exclude := range w.opts.ExcludeDirs {
		if exclude == "" {
			continue
		}
		switch {
		case isGlob(exclude):
			rel, err := filepath.Rel(root, fullPath)
			if err != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			pattern := filepath.ToSlash(exclude)
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return true
			}
			if ok, _ := doublestar.Match(pattern, name); ok {
				return true
			}
		case strings.ContainsAny(exclude, `/\`):
			sep := string(filepath.Separator)
			normExclude := normalizeSeparators(exclude)
			normPath := normalizeSeparators(fullPath)
			if strings.HasSuffix(normPath, sep+normExclude) || strings.Contains(normPath, sep+normExclude+sep) {
				return true
			}
		default:
			if name == exclude {
				return true
			}
		}
	}
	return false
}

func isGlob(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func normalizeSeparators(p string) string {
	return strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' {
			return filepath.Separator
		}
		return r
	}, p)
}

// CountMatches sums the matches of all files.
func CountMatches(files []parser.FileInfo) int {
	n := 0
	for _, f := range files {
		n += len(f.Matches)
	}
	return n
}
