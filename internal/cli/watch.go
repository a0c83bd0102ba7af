package cli

import (
	"cjk-extractor/internal/parser"
	"cjk-extractor/internal/report"
	"cjk-extractor/internal/watch"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func watchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [directory]",
		Short: "Report spans in files as they are written",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			w, err := watch.New(root, newWalker(cfg), watch.DefaultDebounce)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			writer := report.NewWriter(report.FormatText, out)
			writer.Root = root

			return w.Run(ctx, func(c watch.Change) {
				switch {
				case c.Removed:
					log.Debug().Str("file", c.Path).Msg("File removed")
				case c.File == nil:
				case len(c.File.Matches) == 0:
					log.Info().Str("file", c.Path).Msg("No Chinese text")
				default:
					if err := writer.WriteDiagnostics(out, []parser.FileInfo{*c.File}); err != nil {
						log.Warn().Err(err).Msg("Failed to write report")
					}
				}
			})
		},
	}
}
