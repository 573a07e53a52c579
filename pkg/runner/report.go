package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ErrUnknownFormat indicates an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format (expected text, json or yaml)")

// WriteReport renders the report in the requested format.
func WriteReport(report *Report, format string, noColor bool, w io.Writer) error {
	switch format {
	case FormatText:
		return writeText(report, noColor, w)
	case FormatJSON:
		return writeJSON(report, w)
	case FormatYAML:
		return writeYAML(report, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// writeText renders the human-readable report: per-file removal details,
// dry-run diffs, and a summary table.
func writeText(report *Report, noColor bool, w io.Writer) error {
	if noColor {
		color.NoColor = true
	}

	for _, file := range report.Files {
		err := writeFileText(&file, w)
		if err != nil {
			return err
		}
	}

	writeSummaryTable(report, w)

	return nil
}

// writeFileText renders one file's outcome.
func writeFileText(file *FileResult, w io.Writer) error {
	if file.Status == StatusClean {
		return nil
	}

	_, err := fmt.Fprintf(w, "%s %s\n", statusLabel(file.Status), file.Path)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	for _, removed := range file.Removed {
		_, err = fmt.Fprintf(w, "  line %d: %s (%s)\n", removed.Line, removed.Name, removed.Qualified)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if file.Error != "" {
		_, err = fmt.Fprintf(w, "  %s\n", file.Error)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if file.Diff != "" {
		_, err = fmt.Fprintf(w, "%s\n", file.Diff)
		if err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	return nil
}

// statusLabel colors a status marker for terminal output.
func statusLabel(status Status) string {
	switch status {
	case StatusRewritten:
		return color.New(color.FgGreen).Sprint("rewritten")
	case StatusWouldRewrite:
		return color.New(color.FgCyan).Sprint("would rewrite")
	case StatusSkipped:
		return color.New(color.FgYellow).Sprint("skipped")
	case StatusFailed:
		return color.New(color.FgRed).Sprint("failed")
	default:
		return string(status)
	}
}

// writeSummaryTable renders the batch totals.
func writeSummaryTable(report *Report, w io.Writer) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	tw.AppendHeader(table.Row{"Scanned", "Rewritten", "Clean", "Skipped", "Failed", "Imports removed", "Saved"})
	tw.AppendRow(table.Row{
		report.Scanned,
		report.Rewritten,
		report.Clean,
		report.Skipped,
		report.Failed,
		report.Removed,
		humanize.Bytes(savedBytes(report)),
	})

	tw.Render()
}

// savedBytes clamps the saved-byte total for display.
func savedBytes(report *Report) uint64 {
	if report.Saved <= 0 {
		return 0
	}

	return uint64(report.Saved)
}

// writeJSON renders the report as indented JSON.
func writeJSON(report *Report, w io.Writer) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report json: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s\n", data)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}

// writeYAML renders the report as YAML.
func writeYAML(report *Report, w io.Writer) error {
	data, err := yaml.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report yaml: %w", err)
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
