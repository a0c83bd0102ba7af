package cli

import (
	"fmt"
	"os"
	"strconv"

	"cjk-extractor/internal/keys"
	"cjk-extractor/internal/parser"
	"cjk-extractor/internal/textutil"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func hintsCmd(opts *globalOptions) *cobra.Command {
	var folded bool

	cmd := &cobra.Command{
		Use:   "hints <file>",
		Short: "Show the text behind each translation reference in a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHints(cmd, opts, args[0], folded)
		},
	}
	cmd.Flags().BoolVar(&folded, "folded", false, "Replace references with their text instead of annotating them")
	return cmd
}

// runHints handles the `hints` command.
func runHints(cmd *cobra.Command, opts *globalOptions, path string, folded bool) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}

	resolver := keys.NewResolver(cfg.Namespace, keys.Load(cfg.TranslateFile))
	renderOpts := keys.RenderOptions{Folded: folded}

	out := cmd.OutOrStdout()
	count := 0
	for i, line := range parser.SplitLines(string(data)) {
		hints := resolver.Hints(line)
		if len(hints) == 0 {
			continue
		}
		count += len(hints)
		if _, err := fmt.Fprintf(out, "%d: %s\n", i+1, keys.Render(line, hints, renderOpts)); err != nil {
			return err
		}
	}

	log.Debug().Str("file", path).Int("hints", count).Msg("Resolved references")
	return nil
}

func addCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file> <line> <column> <module> <key>",
		Short: "Move the span at a position into the translation table",
		Long: `Stores the Chinese span covering <line>:<column> (both 1-based, column in
UTF-16 code units) as <module>.<key>, replaces it in the source with a
reference, saves the table and regenerates the constant-key file.`,
		Args: cobra.ExactArgs(5),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil || line < 1 {
				return fmt.Errorf("invalid line %q", args[1])
			}
			column, err := strconv.Atoi(args[2])
			if err != nil || column < 1 {
				return fmt.Errorf("invalid column %q", args[2])
			}
			return runAdd(cmd, opts, args[0], line-1, column-1, args[3], args[4])
		},
	}
}

// runAdd handles the `add` command. line and column are 0-based.
func runAdd(cmd *cobra.Command, opts *globalOptions, path string, line, column int, prefix, key string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat source file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read source file: %w", err)
	}
	content := string(data)

	lines := parser.SplitLines(content)
	if line >= len(lines) {
		return fmt.Errorf("line %d out of range (%d lines)", line+1, len(lines))
	}

	if textutil.ByteOffset(lines[line], column) < 0 {
		return fmt.Errorf("column %d out of range for line %d", column+1, line+1)
	}

	match, err := parser.SpanAt(lines[line], line, column, cfg.IncludeComments)
	if err != nil {
		return fmt.Errorf("find span at %d:%d: %w", line+1, column+1, err)
	}
	text := parser.TrimSpan(match.Text)

	table := keys.Load(cfg.TranslateFile)
	created, err := table.Add(prefix, key, text)
	if err != nil {
		return fmt.Errorf("add translation: %w", err)
	}

	resolver := keys.NewResolver(cfg.Namespace, table)
	ref := resolver.Reference(prefix, key)
	if _, ok := resolver.ResolveToken(ref); !ok {
		return fmt.Errorf("reference %s does not resolve in the translation table", ref)
	}
	updated, err := parser.Reconstruct(content, []parser.Edit{{
		Line:        line,
		Offset:      match.Offset,
		Length:      len(text),
		Replacement: ref,
	}})
	if err != nil {
		return fmt.Errorf("rewrite source: %w", err)
	}

	// The table is saved first so a failed save leaves the source untouched.
	if err := saveTable(cfg, table); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write source file: %w", err)
	}

	log.Info().
		Str("file", path).
		Str("module", prefix).
		Str("key", key).
		Str("text", textutil.Truncate(text, 30)).
		Bool("new_module", created).
		Msg("Added translation")

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s = %q\n", ref, text)
	return err
}

func generateCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the constant-key file from the translation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}

			table := keys.Load(cfg.TranslateFile)
			for _, verr := range table.Validate() {
				log.Warn().Err(verr).Msg("Table entry will not produce a usable constant")
			}
			return newGenerator(cfg).Write(cfg.ConstKeyFile, table.Modules)
		},
	}
}
