// Package analyzer computes which import bindings of a Python module are
// never referenced. Imports anywhere in the file, including those nested in
// functions or conditionals, are flattened into a single binding set; two
// same-named imports in different scopes are not distinguished. That
// approximation can only keep more imports than strictly necessary, never
// remove a used one.
package analyzer

import (
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/Sumatoshi-tech/pyprune/pkg/pysrc"
)

// Tree-sitter Python node types the analyzer dispatches on.
const (
	nodeImport       = "import_statement"
	nodeImportFrom   = "import_from_statement"
	nodeImportFuture = "future_import_statement"

	nodeIdentifier    = "identifier"
	nodeDottedName    = "dotted_name"
	nodeAliasedImport = "aliased_import"
	nodeWildcard      = "wildcard_import"
	nodeAttribute     = "attribute"
	nodeKeywordArg    = "keyword_argument"
	nodeAssignment    = "assignment"
	nodeAugAssignment = "augmented_assignment"
	nodeCall          = "call"
	nodeString        = "string"
	nodeStringContent = "string_content"
)

// dunderAll is the conventional re-export list name.
const dunderAll = "__all__"

// Kind classifies an import statement.
type Kind int

// Statement kinds.
const (
	// KindImport is a plain `import module[.sub] [as alias]` statement.
	KindImport Kind = iota
	// KindFrom is a `from module import name [as alias]` statement.
	KindFrom
	// KindFuture is a `from __future__ import ...` statement. Future
	// imports change compiler behavior and are never removable.
	KindFuture
)

// Binding is one name an import statement introduces into file scope.
type Binding struct {
	// Name is the identifier usable in code: the alias if present, else
	// the first segment of a dotted module path, else the imported name.
	Name string
	// Spelling is the original clause text, e.g. "bar as b".
	Spelling string
	// Qualified is the full dotted path for reporting, e.g. "foo.bar".
	Qualified string
	// Star marks `from module import *`.
	Star bool
	// Aliased marks bindings introduced with `as`.
	Aliased bool
}

// Statement is one import statement and the bindings it introduces.
type Statement struct {
	Kind      Kind
	Module    string
	Text      string
	StartByte uint
	EndByte   uint
	StartLine int
	EndLine   int
	Bindings  []Binding
}

// Analysis holds everything BuildPlan needs: the import statements, the set
// of identifiers referenced outside import statements, and the names listed
// in __all__.
type Analysis struct {
	Statements []*Statement
	Usage      map[string]struct{}
	Exported   map[string]struct{}
}

// Used reports whether name is referenced in code or listed in __all__.
func (a *Analysis) Used(name string) bool {
	if _, ok := a.Usage[name]; ok {
		return true
	}

	_, ok := a.Exported[name]

	return ok
}

// Analyze walks the module tree once, collecting import statements and the
// usage set.
func Analyze(m *pysrc.Module) *Analysis {
	analysis := &Analysis{
		Usage:    make(map[string]struct{}),
		Exported: make(map[string]struct{}),
	}

	collect(m, m.Root, analysis)

	return analysis
}

// collect dispatches on node type, separating import statements from the
// identifier references of the remaining code.
func collect(m *pysrc.Module, n sitter.Node, analysis *Analysis) {
	switch n.Type() {
	case nodeImport, nodeImportFrom, nodeImportFuture:
		analysis.Statements = append(analysis.Statements, newStatement(m, n))

		return
	case nodeIdentifier:
		analysis.Usage[m.Text(n)] = struct{}{}

		return
	case nodeAttribute:
		// Only the base of an attribute chain is a name reference; the
		// attribute identifier itself never resolves against imports.
		collectField(m, n, "object", analysis)

		return
	case nodeKeywordArg:
		// f(name=value): the keyword name is not a reference.
		collectField(m, n, "value", analysis)

		return
	case nodeAssignment, nodeAugAssignment:
		collectExportedAssignment(m, n, analysis)
	case nodeCall:
		collectExportedCall(m, n, analysis)
	}

	for idx := range n.NamedChildCount() {
		collect(m, n.NamedChild(idx), analysis)
	}
}

// collectField recurses into a single field child, if present.
func collectField(m *pysrc.Module, n sitter.Node, field string, analysis *Analysis) {
	child := n.ChildByFieldName(field)
	if !child.IsNull() {
		collect(m, child, analysis)
	}
}

// collectExportedAssignment records string constants assigned (or appended
// with +=) to __all__ as exported names.
func collectExportedAssignment(m *pysrc.Module, n sitter.Node, analysis *Analysis) {
	left := n.ChildByFieldName("left")
	if left.IsNull() || left.Type() != nodeIdentifier || m.Text(left) != dunderAll {
		return
	}

	right := n.ChildByFieldName("right")
	if !right.IsNull() {
		collectStringConstants(m, right, analysis.Exported)
	}
}

// collectExportedCall records string constants passed to
// __all__.append/extend calls as exported names.
func collectExportedCall(m *pysrc.Module, n sitter.Node, analysis *Analysis) {
	function := n.ChildByFieldName("function")
	if function.IsNull() || function.Type() != nodeAttribute {
		return
	}

	object := function.ChildByFieldName("object")
	if object.IsNull() || object.Type() != nodeIdentifier || m.Text(object) != dunderAll {
		return
	}

	arguments := n.ChildByFieldName("arguments")
	if !arguments.IsNull() {
		collectStringConstants(m, arguments, analysis.Exported)
	}
}

// collectStringConstants adds the content of every string literal under n
// to the given set.
func collectStringConstants(m *pysrc.Module, n sitter.Node, set map[string]struct{}) {
	pysrc.Walk(n, func(child sitter.Node) bool {
		if child.Type() != nodeStringContent {
			return true
		}

		if text := m.Text(child); text != "" {
			set[text] = struct{}{}
		}

		return false
	})
}

// newStatement builds a Statement from an import node.
func newStatement(m *pysrc.Module, n sitter.Node) *Statement {
	stmt := &Statement{
		Kind:      statementKind(n),
		Text:      m.Text(n),
		StartByte: n.StartByte(),
		EndByte:   n.EndByte(),
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}

	switch stmt.Kind {
	case KindImport:
		collectImportBindings(m, n, stmt)
	case KindFrom, KindFuture:
		collectFromBindings(m, n, stmt)
	}

	return stmt
}

// statementKind maps a node type to a statement kind.
func statementKind(n sitter.Node) Kind {
	switch n.Type() {
	case nodeImportFrom:
		return KindFrom
	case nodeImportFuture:
		return KindFuture
	default:
		return KindImport
	}
}

// collectImportBindings extracts bindings from `import a.b, c as d`.
func collectImportBindings(m *pysrc.Module, n sitter.Node, stmt *Statement) {
	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)

		switch child.Type() {
		case nodeDottedName:
			qualified := m.Text(child)
			stmt.Bindings = append(stmt.Bindings, Binding{
				Name:      leadingIdentifier(qualified),
				Spelling:  qualified,
				Qualified: qualified,
			})
		case nodeAliasedImport:
			stmt.Bindings = append(stmt.Bindings, aliasedBinding(m, child, ""))
		}
	}
}

// collectFromBindings extracts bindings from
// `from mod import a, b as c` and `from mod import *`.
func collectFromBindings(m *pysrc.Module, n sitter.Node, stmt *Statement) {
	module := n.ChildByFieldName("module_name")
	if !module.IsNull() {
		stmt.Module = m.Text(module)
	}

	for idx := range n.NamedChildCount() {
		child := n.NamedChild(idx)
		if !module.IsNull() && child.StartByte() == module.StartByte() {
			continue
		}

		switch child.Type() {
		case nodeDottedName:
			name := m.Text(child)
			stmt.Bindings = append(stmt.Bindings, Binding{
				Name:      trailingIdentifier(name),
				Spelling:  name,
				Qualified: joinModule(stmt.Module, name),
			})
		case nodeAliasedImport:
			stmt.Bindings = append(stmt.Bindings, aliasedBinding(m, child, stmt.Module))
		case nodeWildcard:
			stmt.Bindings = append(stmt.Bindings, Binding{
				Name:      "*",
				Spelling:  "*",
				Qualified: joinModule(stmt.Module, "*"),
				Star:      true,
			})
		}
	}
}

// aliasedBinding extracts a `name as alias` clause.
func aliasedBinding(m *pysrc.Module, n sitter.Node, module string) Binding {
	name := n.ChildByFieldName("name")
	alias := n.ChildByFieldName("alias")

	binding := Binding{Aliased: true}

	if !name.IsNull() {
		binding.Qualified = joinModule(module, m.Text(name))
		binding.Spelling = m.Text(name)
	}

	if !alias.IsNull() {
		binding.Name = m.Text(alias)
		binding.Spelling += " as " + binding.Name
	}

	return binding
}

// leadingIdentifier returns the first segment of a dotted path. For
// `import foo.bar` the usable identifier in code is `foo`.
func leadingIdentifier(dotted string) string {
	if idx := strings.IndexByte(dotted, '.'); idx >= 0 {
		return dotted[:idx]
	}

	return dotted
}

// trailingIdentifier returns the last segment of a dotted path.
func trailingIdentifier(dotted string) string {
	if idx := strings.LastIndexByte(dotted, '.'); idx >= 0 {
		return dotted[idx+1:]
	}

	return dotted
}

// joinModule joins a module path and an imported name for reporting.
func joinModule(module, name string) string {
	if module == "" {
		return name
	}

	return module + "." + name
}
