// Package runner drives the per-file clean pipeline: read, analyze, plan,
// rewrite, write. Every failure is file-scoped; one broken file never
// aborts the batch.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/Sumatoshi-tech/pyprune/pkg/analyzer"
	"github.com/Sumatoshi-tech/pyprune/pkg/pysrc"
	"github.com/Sumatoshi-tech/pyprune/pkg/rewriter"
)

// Status classifies a per-file outcome.
type Status string

// Per-file outcomes.
const (
	// StatusClean means no unused imports were found.
	StatusClean Status = "clean"
	// StatusRewritten means unused imports were removed and the file was
	// written back.
	StatusRewritten Status = "rewritten"
	// StatusWouldRewrite is the dry-run counterpart of StatusRewritten.
	StatusWouldRewrite Status = "would-rewrite"
	// StatusSkipped means the file could not be parsed and was left
	// untouched.
	StatusSkipped Status = "skipped"
	// StatusFailed means an I/O or internal-consistency failure; the file
	// was left untouched.
	StatusFailed Status = "failed"
)

// RemovedImport describes one removed import binding.
type RemovedImport struct {
	Name      string `json:"name"                yaml:"name"`
	Qualified string `json:"qualified,omitempty" yaml:"qualified,omitempty"`
	Line      int    `json:"line"                yaml:"line"`
	Statement string `json:"statement"           yaml:"statement"`
}

// FileResult is the outcome for one file.
type FileResult struct {
	Path    string          `json:"path"              yaml:"path"`
	Status  Status          `json:"status"            yaml:"status"`
	Removed []RemovedImport `json:"removed,omitempty" yaml:"removed,omitempty"`
	Error   string          `json:"error,omitempty"   yaml:"error,omitempty"`
	Diff    string          `json:"diff,omitempty"    yaml:"diff,omitempty"`

	bytesBefore int
	bytesAfter  int
}

// Report aggregates a batch run.
type Report struct {
	Files     []FileResult  `json:"files"    yaml:"files"`
	Scanned   int           `json:"scanned"  yaml:"scanned"`
	Rewritten int           `json:"rewritten" yaml:"rewritten"`
	Clean     int           `json:"clean"    yaml:"clean"`
	Skipped   int           `json:"skipped"  yaml:"skipped"`
	Failed    int           `json:"failed"   yaml:"failed"`
	Removed   int           `json:"removed"  yaml:"removed"`
	Saved     int64         `json:"saved_bytes" yaml:"saved_bytes"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	DryRun    bool          `json:"dry_run"  yaml:"dry_run"`
}

// Options controls a run.
type Options struct {
	// Aggressive extends removal to bare unused module imports.
	Aggressive bool
	// DryRun suppresses all file writes.
	DryRun bool
	// Diff attaches a patch-format diff to dry-run results.
	Diff bool
}

// Runner processes batches of Python files.
type Runner struct {
	parser *pysrc.Parser
	logger *slog.Logger
	opts   Options
}

// New creates a Runner. A nil logger uses slog.Default.
func New(logger *slog.Logger, opts Options) *Runner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Runner{
		parser: pysrc.NewParser(),
		logger: logger,
		opts:   opts,
	}
}

// Run processes every file sequentially and aggregates the outcomes.
// Parse failures count as skips; they do not make the run itself fail.
func (r *Runner) Run(ctx context.Context, files []string) (*Report, error) {
	startedAt := time.Now()

	report := &Report{DryRun: r.opts.DryRun}

	for _, path := range files {
		err := ctx.Err()
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}

		result := r.processFile(ctx, path)
		report.add(result)
	}

	report.Duration = time.Since(startedAt)

	return report, nil
}

// add folds one result into the report totals.
func (rep *Report) add(result FileResult) {
	rep.Files = append(rep.Files, result)
	rep.Scanned++
	rep.Removed += len(result.Removed)
	rep.Saved += int64(result.bytesBefore - result.bytesAfter)

	switch result.Status {
	case StatusRewritten, StatusWouldRewrite:
		rep.Rewritten++
	case StatusClean:
		rep.Clean++
	case StatusSkipped:
		rep.Skipped++
	case StatusFailed:
		rep.Failed++
	}
}

// processFile runs the full pipeline for one file. The file is either left
// fully unchanged or replaced whole; never partially written.
func (r *Runner) processFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path, Status: StatusClean}

	content, err := os.ReadFile(path)
	if err != nil {
		r.logger.Error("read failed", "path", path, "error", err)

		return failed(result, err)
	}

	outcome, err := Clean(ctx, r.parser, path, content, r.opts)
	if err != nil {
		var parseErr *pysrc.ParseError
		if errors.As(err, &parseErr) {
			r.logger.Warn("parse failed, file skipped", "path", path, "error", parseErr)
			result.Status = StatusSkipped
			result.Error = parseErr.Error()

			return result
		}

		r.logger.Error("clean failed", "path", path, "error", err)

		return failed(result, err)
	}

	if !outcome.Changed {
		r.logger.Debug("no unused imports", "path", path)

		return result
	}

	result.Removed = outcome.Removed
	result.bytesBefore = len(content)
	result.bytesAfter = len(outcome.Content)

	if r.opts.DryRun {
		result.Status = StatusWouldRewrite
		if r.opts.Diff {
			result.Diff = patchText(path, content, outcome.Content)
		}

		r.logger.Info("would rewrite", "path", path, "removed", len(outcome.Removed))

		return result
	}

	err = writeFileAtomic(path, outcome.Content)
	if err != nil {
		r.logger.Error("write failed", "path", path, "error", err)

		return failed(result, err)
	}

	result.Status = StatusRewritten
	r.logger.Info("rewritten", "path", path, "removed", len(outcome.Removed))

	return result
}

// failed marks a result as failed with the error message attached.
func failed(result FileResult, err error) FileResult {
	result.Status = StatusFailed
	result.Error = err.Error()

	return result
}

// Outcome is the result of cleaning one source text in memory.
type Outcome struct {
	// Content is the rewritten source; equal to the input when !Changed.
	Content []byte
	// Removed lists the removed bindings in source order.
	Removed []RemovedImport
	// Changed reports whether any import was removed.
	Changed bool
}

// Clean runs analyze → plan → rewrite on an in-memory source text. This is
// the core contract shared by the CLI runner and the MCP tools.
func Clean(ctx context.Context, parser *pysrc.Parser, filename string, content []byte, opts Options) (*Outcome, error) {
	module, err := parser.Parse(ctx, filename, content)
	if err != nil {
		return nil, err
	}

	defer module.Close()

	analysis := analyzer.Analyze(module)

	plan := analyzer.BuildPlan(analysis, analyzer.Options{Aggressive: opts.Aggressive})
	if plan.Empty() {
		return &Outcome{Content: content}, nil
	}

	rewritten, err := rewriter.Rewrite(content, plan)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Content: rewritten,
		Removed: removedImports(plan),
		Changed: true,
	}, nil
}

// removedImports flattens the plan into report entries.
func removedImports(plan *analyzer.Plan) []RemovedImport {
	var removed []RemovedImport

	for _, action := range plan.Actions {
		for _, binding := range action.Removed {
			removed = append(removed, RemovedImport{
				Name:      binding.Name,
				Qualified: binding.Qualified,
				Line:      action.Stmt.StartLine,
				Statement: action.Stmt.Text,
			})
		}
	}

	return removed
}

// patchText renders a patch-format diff between the original and rewritten
// text.
func patchText(path string, before, after []byte) string {
	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(string(before), string(after))

	if len(patches) == 0 {
		return ""
	}

	return fmt.Sprintf("--- %s\n%s", path, dmp.PatchToText(patches))
}

// writeFileAtomic replaces path with data via a temp file and rename in the
// same directory, preserving the original file mode.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".pyprune-*")
	if err != nil {
		return fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	tmpName := tmp.Name()

	_, writeErr := tmp.Write(data)

	chmodErr := tmp.Chmod(info.Mode().Perm())
	closeErr := tmp.Close()

	err = errors.Join(writeErr, chmodErr, closeErr)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("write %s: %w", tmpName, err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("rename %s: %w", path, err)
	}

	return nil
}
