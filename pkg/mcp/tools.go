package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/pyprune/pkg/pysrc"
	"github.com/Sumatoshi-tech/pyprune/pkg/runner"
)

// Tool name constants.
const (
	ToolNameClean = "pyprune_clean"
	ToolNameScan  = "pyprune_scan"
)

// Tool descriptions.
const (
	cleanToolDescription = "Remove unused import statements from Python source code. " +
		"Returns the cleaned source and the list of removed import names."
	scanToolDescription = "Report unused import statements in Python source code " +
		"without modifying it."
)

// MaxCodeInputBytes is the maximum allowed size for inline code input (1 MB).
const MaxCodeInputBytes = 1 << 20

// Sentinel errors for tool input validation.
var (
	// ErrEmptyCode indicates the code parameter is empty.
	ErrEmptyCode = errors.New("code parameter is required and must not be empty")
	// ErrCodeTooLarge indicates the code input exceeds the size limit.
	ErrCodeTooLarge = errors.New("code input exceeds maximum size")
)

// CleanInput is the input schema for the pyprune_clean and pyprune_scan
// tools.
type CleanInput struct {
	Code       string `json:"code"                 jsonschema:"python source code to analyze"`
	Aggressive bool   `json:"aggressive,omitempty" jsonschema:"also remove bare unused import statements"`
}

// CleanOutput is the structured result of a clean call.
type CleanOutput struct {
	Code    string                 `json:"code,omitempty"`
	Removed []runner.RemovedImport `json:"removed"`
	Changed bool                   `json:"changed"`
}

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// toolset holds the shared parser behind the tool handlers.
type toolset struct {
	parser *pysrc.Parser
}

// newToolset creates the shared handler state.
func newToolset() *toolset {
	return &toolset{parser: pysrc.NewParser()}
}

// handleClean processes pyprune_clean tool calls.
func (t *toolset) handleClean(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CleanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	outcome, err := t.clean(ctx, input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(CleanOutput{
		Code:    string(outcome.Content),
		Removed: outcome.Removed,
		Changed: outcome.Changed,
	})
}

// handleScan processes pyprune_scan tool calls.
func (t *toolset) handleScan(
	ctx context.Context,
	_ *mcpsdk.CallToolRequest,
	input CleanInput,
) (*mcpsdk.CallToolResult, ToolOutput, error) {
	outcome, err := t.clean(ctx, input)
	if err != nil {
		return errorResult(err)
	}

	return jsonResult(CleanOutput{
		Removed: outcome.Removed,
		Changed: outcome.Changed,
	})
}

// clean validates the input and runs the in-memory pipeline.
func (t *toolset) clean(ctx context.Context, input CleanInput) (*runner.Outcome, error) {
	if input.Code == "" {
		return nil, ErrEmptyCode
	}

	if len(input.Code) > MaxCodeInputBytes {
		return nil, fmt.Errorf("%w (%d bytes)", ErrCodeTooLarge, len(input.Code))
	}

	outcome, err := runner.Clean(ctx, t.parser, "input.py", []byte(input.Code), runner.Options{
		Aggressive: input.Aggressive,
	})
	if err != nil {
		return nil, fmt.Errorf("clean code: %w", err)
	}

	return outcome, nil
}

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}
