// Package commands implements CLI command handlers for pyprune.
package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/pyprune/pkg/config"
	"github.com/Sumatoshi-tech/pyprune/pkg/discovery"
	"github.com/Sumatoshi-tech/pyprune/pkg/observability"
	"github.com/Sumatoshi-tech/pyprune/pkg/runner"
)

// cleanExecutor runs the batch pipeline; injectable for tests.
type cleanExecutor func(ctx context.Context, files []string, opts runner.Options, logger *slog.Logger) (*runner.Report, error)

// ErrFilesFailed is returned when at least one file hit an I/O or
// internal-consistency failure. Parse skips do not trigger it.
var ErrFilesFailed = errors.New("files failed")

// CleanCommand holds configuration and dependencies for the clean command.
type CleanCommand struct {
	configPath string
	format     string
	excludes   []string
	dryRun     bool
	aggressive bool
	diff       bool
	noColor    bool
	quiet      bool

	exec cleanExecutor
}

// NewCleanCommand creates the clean command.
func NewCleanCommand() *cobra.Command {
	return newCleanCommandWithDeps(runClean)
}

func newCleanCommandWithDeps(exec cleanExecutor) *cobra.Command {
	cc := &CleanCommand{
		format: runner.FormatText,
		exec:   exec,
	}

	cmd := &cobra.Command{
		Use:   "clean [paths...]",
		Short: "Remove unused imports from Python files",
		Long: `Remove import statements whose bound names are never referenced.

Files that fail to parse are reported and skipped; the rest of the batch
continues. By default bare 'import module' statements are kept (they may
exist for side effects alone); --aggressive removes those too.`,
		Args: cobra.MinimumNArgs(1),
		RunE: cc.run,
	}

	cmd.Flags().BoolVarP(&cc.dryRun, "dry-run", "n", false, "Report removals without modifying any file")
	cmd.Flags().BoolVar(&cc.aggressive, "aggressive", false, "Also remove bare unused 'import module' statements")
	cmd.Flags().BoolVar(&cc.diff, "diff", false, "Include diffs in dry-run output")
	cmd.Flags().StringVar(&cc.format, "format", runner.FormatText, "Output format: text, json, yaml")
	cmd.Flags().BoolVar(&cc.noColor, "no-color", false, "Disable colored output")
	cmd.Flags().BoolVarP(&cc.quiet, "quiet", "q", false, "Only log errors")
	cmd.Flags().StringVarP(&cc.configPath, "config", "c", "", "Config file path (default: .pyprune.yaml)")
	cmd.Flags().StringSliceVar(&cc.excludes, "exclude", nil, "Additional base-name patterns to skip during directory walks")

	return cmd
}

func (cc *CleanCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cc.configPath)
	if err != nil {
		return err
	}

	cc.applyFlagOverrides(cmd, cfg)

	logger := observability.NewLogger(cmd.ErrOrStderr(), observability.LoggerConfig{
		Level: cfg.Logging.Level,
		JSON:  cfg.Logging.Format == "json",
		Quiet: cc.quiet,
	})

	finder := discovery.NewFinder(cfg.Exclude, cfg.MaxFileSizeBytes(), logger)

	files, err := finder.Resolve(args)
	if err != nil {
		return err
	}

	logger.Debug("resolved files", "count", len(files))

	report, err := cc.exec(cmd.Context(), files, runner.Options{
		Aggressive: cfg.Aggressive,
		DryRun:     cc.dryRun,
		Diff:       cfg.Diff,
	}, logger)
	if err != nil {
		return err
	}

	err = runner.WriteReport(report, cc.format, cc.noColor, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if report.Failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrFilesFailed, report.Failed, report.Scanned)
	}

	return nil
}

// applyFlagOverrides lets explicit flags win over config file values.
func (cc *CleanCommand) applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("aggressive") {
		cfg.Aggressive = cc.aggressive
	}

	if cmd.Flags().Changed("diff") {
		cfg.Diff = cc.diff
	}

	cfg.Exclude = append(cfg.Exclude, cc.excludes...)
}

// runClean is the production executor.
func runClean(ctx context.Context, files []string, opts runner.Options, logger *slog.Logger) (*runner.Report, error) {
	return runner.New(logger, opts).Run(ctx, files)
}
