package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"cjk-extractor/internal/codegen"
	"cjk-extractor/internal/config"
	"cjk-extractor/internal/filewalker"
	"cjk-extractor/internal/keys"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	configFile      string
	logLevel        string
	includeComments bool
	exclude         []string
	extensions      []string
	workers         int
}

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "cjk-extractor",
		Short: "Find hard-coded Chinese text and move it into translation keys",
		Long: `Scans source trees for runs of Chinese text outside comments, resolves
existing Ikey.<module>.k<Key>.tr references back to their text, and maintains
the translation table and the generated constant-key file.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := zerolog.ParseLevel(opts.logLevel)
			if err != nil {
				return fmt.Errorf("parse log level: %w", err)
			}
			zerolog.SetGlobalLevel(level)
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", config.DefaultProjectFile, "Project configuration file")
	flags.StringVar(&opts.logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	flags.BoolVar(&opts.includeComments, "include-comments", false, "Also report Chinese text inside comments")
	flags.StringSliceVar(&opts.exclude, "exclude", nil, "Directory names, path suffixes or globs to skip")
	flags.StringSliceVar(&opts.extensions, "ext", nil, "File extensions to scan")
	flags.IntVar(&opts.workers, "workers", 0, "Number of files scanned concurrently")

	rootCmd.AddCommand(scanCmd(opts))
	rootCmd.AddCommand(checkCmd(opts))
	rootCmd.AddCommand(hintsCmd(opts))
	rootCmd.AddCommand(addCmd(opts))
	rootCmd.AddCommand(generateCmd(opts))
	rootCmd.AddCommand(dbCmd(opts))
	rootCmd.AddCommand(graphCmd(opts))
	rootCmd.AddCommand(watchCmd(opts))

	return rootCmd
}

// loadConfig resolves defaults, project file and environment, then applies
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("include-comments") {
		cfg.IncludeComments = opts.includeComments
	}
	if flags.Changed("exclude") {
		cfg.ExcludeDirs = opts.exclude
	}
	if flags.Changed("ext") {
		cfg.FileExtensions = opts.extensions
	}
	if flags.Changed("workers") && opts.workers > 0 {
		cfg.WorkerCount = opts.workers
	}
	return cfg, nil
}

func newWalker(cfg *config.Config) *filewalker.Walker {
	return filewalker.NewWalker(filewalker.Options{
		ExcludeDirs:     cfg.ExcludeDirs,
		IncludeComments: cfg.IncludeComments,
		FileExtensions:  cfg.FileExtensions,
		Workers:         cfg.WorkerCount,
	})
}

func newGenerator(cfg *config.Config) *codegen.Generator {
	gen := codegen.NewGenerator()
	if cfg.AggregatorClass != "" {
		gen.Aggregator = cfg.AggregatorClass
	}
	return gen
}

// saveTable writes the table and, when enabled, regenerates the constant
// file from it.
func saveTable(cfg *config.Config, table *keys.Table) error {
	if err := keys.Save(cfg.TranslateFile, table); err != nil {
		return err
	}
	if !cfg.GenerateConstKeyFile {
		return nil
	}
	return newGenerator(cfg).Write(cfg.ConstKeyFile, table.Modules)
}

// rootArg returns the absolute directory named by args, or the working
// directory.
func rootArg(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	return root, nil
}

// setupContext creates a cancellable context with signal handling.
func setupContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer signal.Stop(sigCh)
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
