// Package pysrc parses Python source text with the tree-sitter Python
// grammar and exposes the syntax tree pieces pyprune needs: statement
// spans, identifier nodes, and precise parse-failure positions.
package pysrc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/alexaandru/go-sitter-forest/python"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

// Sentinel errors for parser operations.
var (
	errNoRootNode = errors.New("pysrc: no root node")
	errPoolType   = errors.New("pysrc: pool returned unexpected type")
)

var (
	pythonLang     *sitter.Language
	pythonLangOnce sync.Once
)

// language returns the shared tree-sitter Python language handle.
func language() *sitter.Language {
	pythonLangOnce.Do(func() {
		pythonLang = sitter.NewLanguage(python.GetLanguage())
	})

	return pythonLang
}

// ParseError reports that a source file is not syntactically valid Python.
// Line and Column are 1-based and point at the first error or missing node.
type ParseError struct {
	Filename string
	Line     int
	Column   int
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error", e.Filename, e.Line, e.Column)
}

// Parser turns Python source text into Modules. It is safe for concurrent
// use; underlying tree-sitter parsers are pooled.
type Parser struct {
	pool sync.Pool
}

// NewParser creates a Parser backed by a pool of tree-sitter parsers.
func NewParser() *Parser {
	return &Parser{
		pool: sync.Pool{
			New: func() any {
				tsParser := sitter.NewParser()
				tsParser.SetLanguage(language())

				return tsParser
			},
		},
	}
}

// Parse parses content as Python source. A tree containing error or missing
// nodes yields a *ParseError; pyprune never rewrites files it cannot fully
// understand. The returned Module must be closed by the caller.
func (p *Parser) Parse(ctx context.Context, filename string, content []byte) (*Module, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}

	defer p.pool.Put(tsParser)

	tree, err := tsParser.ParseString(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("pysrc: parse %s: %w", filename, err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return nil, errNoRootNode
	}

	if root.HasError() {
		parseErr := locateError(filename, root)
		tree.Close()

		return nil, parseErr
	}

	return &Module{
		Filename: filename,
		Source:   content,
		Root:     root,
		tree:     tree,
	}, nil
}

// locateError builds a ParseError pointing at the first error or missing
// node under root.
func locateError(filename string, root sitter.Node) *ParseError {
	found := root
	located := false

	Walk(root, func(n sitter.Node) bool {
		if located {
			return false
		}

		if n.Type() == "ERROR" || n.IsMissing() {
			found = n
			located = true

			return false
		}

		return n.HasError()
	})

	point := found.StartPoint()

	return &ParseError{
		Filename: filename,
		Line:     int(point.Row) + 1,
		Column:   int(point.Column) + 1,
	}
}

// Module is a parsed Python source file. It owns the underlying tree-sitter
// tree; Close releases it.
type Module struct {
	Filename string
	Source   []byte
	Root     sitter.Node

	tree      *sitter.Tree
	closeOnce sync.Once
}

// Close releases the underlying syntax tree. Safe to call more than once.
func (m *Module) Close() {
	m.closeOnce.Do(func() {
		if m.tree != nil {
			m.tree.Close()
		}
	})
}

// Text returns the source text covered by n.
func (m *Module) Text(n sitter.Node) string {
	start := n.StartByte()
	end := n.EndByte()

	if end <= uint(len(m.Source)) && start <= end {
		return string(m.Source[start:end])
	}

	return ""
}

// Walk visits n and its named descendants in pre-order. fn returns whether
// to descend into the visited node's children.
func Walk(n sitter.Node, fn func(sitter.Node) bool) {
	if !fn(n) {
		return
	}

	for idx := range n.NamedChildCount() {
		Walk(n.NamedChild(idx), fn)
	}
}
