// Package rewriter applies a removal plan to Python source text. Edits
// touch import statements only; every other byte of the input survives
// unchanged.
package rewriter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/Sumatoshi-tech/pyprune/pkg/analyzer"
)

// RewriteError reports an internal consistency failure: the plan references
// a statement span that does not match the source text. This indicates an
// analyzer/rewriter desync and must never happen in correct operation; the
// caller leaves the file untouched rather than risk corrupt output.
type RewriteError struct {
	StartByte uint
	Text      string
}

// Error implements the error interface.
func (e *RewriteError) Error() string {
	return fmt.Sprintf("rewriter: statement %q not found at byte %d", e.Text, e.StartByte)
}

// Rewrite produces a new source text with the plan's edits applied. It is a
// pure function: the same inputs always yield the same output, and applying
// the tool to its own output changes nothing.
func Rewrite(source []byte, plan *analyzer.Plan) ([]byte, error) {
	err := verify(source, plan)
	if err != nil {
		return nil, err
	}

	// Apply edits back to front so earlier spans keep their offsets.
	out := append([]byte(nil), source...)

	for idx := len(plan.Actions) - 1; idx >= 0; idx-- {
		action := plan.Actions[idx]

		if action.Delete {
			out = deleteStatement(out, action.Stmt)
		} else {
			out = narrowStatement(out, action)
		}
	}

	return out, nil
}

// verify checks every planned span against the source before any edit is
// made, so a desync can never leave a half-rewritten result.
func verify(source []byte, plan *analyzer.Plan) error {
	for _, action := range plan.Actions {
		stmt := action.Stmt

		if stmt.EndByte > uint(len(source)) || stmt.StartByte > stmt.EndByte ||
			string(source[stmt.StartByte:stmt.EndByte]) != stmt.Text {
			return &RewriteError{StartByte: stmt.StartByte, Text: stmt.Text}
		}
	}

	return nil
}

// deleteStatement removes a statement's source span. When the statement
// owns its lines the full line block goes, including the trailing line
// terminator and any trailing comment. Inside a semicolon-compound line
// only the statement and its separator are removed.
func deleteStatement(source []byte, stmt *analyzer.Statement) []byte {
	start := int(stmt.StartByte)
	end := int(stmt.EndByte)

	lineStart := bytes.LastIndexByte(source[:start], '\n') + 1

	lineEnd := len(source)
	if idx := bytes.IndexByte(source[end:], '\n'); idx >= 0 {
		lineEnd = end + idx + 1
	}

	prefix := source[lineStart:start]
	rest := source[end:lineEnd]

	if isBlank(prefix) && isLineTail(rest) {
		return splice(source, lineStart, lineEnd, nil)
	}

	// Compound line: `import os; x = 1` or `x = 1; import os`.
	if cut := tailSeparator(rest); cut > 0 {
		return splice(source, start, end+cut, nil)
	}

	return splice(source, leadSeparator(source[lineStart:start], lineStart, start), end, nil)
}

// narrowStatement replaces a statement span with a normalized single-line
// statement keeping only the used bindings, in their original order and
// spelling.
func narrowStatement(source []byte, action analyzer.Action) []byte {
	stmt := action.Stmt

	spellings := make([]string, 0, len(action.Keep))
	for _, binding := range action.Keep {
		spellings = append(spellings, binding.Spelling)
	}

	var text string

	if stmt.Kind == analyzer.KindImport {
		text = "import " + strings.Join(spellings, ", ")
	} else {
		text = "from " + stmt.Module + " import " + strings.Join(spellings, ", ")
	}

	return splice(source, int(stmt.StartByte), int(stmt.EndByte), []byte(text))
}

// splice replaces source[start:end] with replacement.
func splice(source []byte, start, end int, replacement []byte) []byte {
	out := make([]byte, 0, len(source)-(end-start)+len(replacement))
	out = append(out, source[:start]...)
	out = append(out, replacement...)
	out = append(out, source[end:]...)

	return out
}

// isBlank reports whether b contains only spaces and tabs.
func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return false
		}
	}

	return true
}

// isLineTail reports whether the text after a statement holds nothing the
// statement does not own: whitespace, a comment, or the line terminator.
func isLineTail(b []byte) bool {
	trimmed := bytes.TrimLeft(b, " \t")
	if len(trimmed) == 0 {
		return true
	}

	return trimmed[0] == '#' || trimmed[0] == '\n' || (trimmed[0] == '\r' && len(trimmed) > 1 && trimmed[1] == '\n')
}

// tailSeparator returns how many bytes of a following `;` separator to
// consume, or 0 when the statement is not followed by one.
func tailSeparator(rest []byte) int {
	cut := 0

	for cut < len(rest) && (rest[cut] == ' ' || rest[cut] == '\t') {
		cut++
	}

	if cut < len(rest) && rest[cut] == ';' {
		cut++

		for cut < len(rest) && (rest[cut] == ' ' || rest[cut] == '\t') {
			cut++
		}

		return cut
	}

	return 0
}

// leadSeparator returns the start offset extended backwards over a
// preceding `;` separator, for statements at the end of a compound line.
func leadSeparator(prefix []byte, lineStart, start int) int {
	idx := len(prefix)

	for idx > 0 && (prefix[idx-1] == ' ' || prefix[idx-1] == '\t') {
		idx--
	}

	if idx > 0 && prefix[idx-1] == ';' {
		return lineStart + idx - 1
	}

	return start
}
