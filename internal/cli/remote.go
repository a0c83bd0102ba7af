package cli

import (
	"fmt"

	"cjk-extractor/internal/cache"
	"cjk-extractor/internal/graph"
	"cjk-extractor/internal/keys"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func dbCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Mirror the translation table to and from PostgreSQL",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Replace the stored table with the local translation file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(cmd, opts, true)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "pull",
		Short: "Overwrite the local translation file with the stored table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDB(cmd, opts, false)
		},
	})

	return cmd
}

// runDB handles `db push` and `db pull`.
func runDB(cmd *cobra.Command, opts *globalOptions, push bool) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	pool, err := cache.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	tableCache := cache.NewTableCache(pool)
	if err := tableCache.EnsureSchema(ctx); err != nil {
		return err
	}

	if push {
		table := keys.Load(cfg.TranslateFile)
		if err := tableCache.Save(ctx, table.Modules); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d modules with %d keys\n", len(table.Modules), table.Count())
		return err
	}

	if err := tableCache.Preload(ctx); err != nil {
		return err
	}
	table := tableCache.Table()
	if err := saveTable(cfg, table); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Pulled %d modules with %d keys\n", len(table.Modules), table.Count())
	return err
}

func graphCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph [directory]",
		Short: "Export modules, keys, references and spans to Neo4j",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphExport(cmd, opts, args)
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "unused",
		Short: "List keys that no exported file references",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphUnused(cmd, opts)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "usages <module> <key>",
		Short: "List the files and positions referencing a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphUsages(cmd, opts, args[0], args[1])
		},
	})

	return cmd
}

// runGraphExport handles the `graph` command.
func runGraphExport(cmd *cobra.Command, opts *globalOptions, args []string) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	root, err := rootArg(args)
	if err != nil {
		return err
	}

	table := keys.Load(cfg.TranslateFile)
	walker := newWalker(cfg)

	spans, err := walker.Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}
	refs, err := walker.References(ctx, root, keys.NewResolver(cfg.Namespace, table))
	if err != nil {
		return fmt.Errorf("collect references in %s: %w", root, err)
	}

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	builder := graph.NewGraphBuilder(driver)
	if err := builder.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	stats, err := builder.Export(ctx, graph.Snapshot{
		Modules:    table.Modules,
		References: refs,
		Spans:      spans,
	})
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(),
		"Exported %d modules, %d keys, %d files, %d references (%d unresolved), %d spans\n",
		stats.Modules, stats.Keys, stats.Files, stats.References, stats.Unresolved, stats.Spans)
	return err
}

// runGraphUnused handles the `graph unused` command.
func runGraphUnused(cmd *cobra.Command, opts *globalOptions) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	unused, err := graph.NewGraphQuerier(driver).UnusedKeys(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, k := range unused {
		if _, err := fmt.Fprintf(out, "%s.%s\t%s\n", k.Prefix, k.Key, k.Text); err != nil {
			return err
		}
	}
	log.Info().Int("count", len(unused)).Msg("Unused keys")
	return nil
}

// runGraphUsages handles the `graph usages` command.
func runGraphUsages(cmd *cobra.Command, opts *globalOptions, prefix, key string) error {
	ctx, cancel := setupContext(cmd.Context())
	defer cancel()

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	driver, err := graph.Connect(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		return err
	}
	defer driver.Close(ctx)

	usages, err := graph.NewGraphQuerier(driver).Usages(ctx, prefix, key)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, u := range usages {
		if _, err := fmt.Fprintf(out, "%s:%d:%d\n", u.Path, u.Line+1, u.Column+1); err != nil {
			return err
		}
	}
	return nil
}
