package cli

import (
	"errors"
	"fmt"

	"cjk-extractor/internal/filewalker"
	"cjk-extractor/internal/report"

	"github.com/spf13/cobra"
)

// ErrSpansFound is returned by check when the tree still contains
// untranslated text.
var ErrSpansFound = errors.New("untranslated Chinese text found")

func scanCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "List Chinese text spans outside comments",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, args, format, false)
		},
	}
	cmd.Flags().StringVar(&format, "format", report.FormatText, "Output format: text, json, yaml or tsv")
	return cmd
}

func checkCmd(opts *globalOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "check [directory]",
		Short: "Report spans as diagnostics and fail when any are found",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts, args, format, true)
		},
	}
	cmd.Flags().StringVar(&format, "format", report.FormatText, "Output format: text, json, yaml or tsv")
	return cmd
}

// runScan handles the `scan` and `check` commands.
func runScan(cmd *cobra.Command, opts *globalOptions, args []string, format string, diagnostics bool) error {
	if err := report.ValidateFormat(format); err != nil {
		return err
	}

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

	files, err := newWalker(cfg).Scan(ctx, root)
	if err != nil {
		return fmt.Errorf("scan %s: %w", root, err)
	}

	w := report.NewWriter(format, cmd.OutOrStdout())
	w.Root = root

	if !diagnostics {
		return w.WriteScan(cmd.OutOrStdout(), files)
	}

	if err := w.WriteDiagnostics(cmd.OutOrStdout(), files); err != nil {
		return err
	}
	if n := filewalker.CountMatches(files); n > 0 {
		return fmt.Errorf("%w: %d spans in %d files", ErrSpansFound, n, len(files))
	}
	return nil
}
