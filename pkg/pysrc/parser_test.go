package pysrc //nolint:testpackage // testing internal implementation.

import (
	"context"
	"testing"

	sitter "github.com/alexaandru/go-tree-sitter-bare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_ParseValidSource(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	module, err := parser.Parse(context.Background(), "ok.py", []byte("import os\nprint(os.sep)\n"))
	require.NoError(t, err)

	defer module.Close()

	assert.Equal(t, "module", module.Root.Type())
	assert.Positive(t, module.Root.NamedChildCount())
}

func TestParser_SyntaxErrorPosition(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	_, err := parser.Parse(context.Background(), "broken.py", []byte("x = 1\ndef f(:\n"))
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)

	assert.Equal(t, "broken.py", parseErr.Filename)
	assert.Equal(t, 2, parseErr.Line)
	assert.Contains(t, parseErr.Error(), "syntax error")
}

func TestParser_EmptySource(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	module, err := parser.Parse(context.Background(), "empty.py", []byte(""))
	require.NoError(t, err)

	defer module.Close()

	assert.Zero(t, module.Root.NamedChildCount())
}

func TestModule_Text(t *testing.T) {
	t.Parallel()

	source := []byte("import os\n")
	parser := NewParser()

	module, err := parser.Parse(context.Background(), "t.py", source)
	require.NoError(t, err)

	defer module.Close()

	stmt := module.Root.NamedChild(0)
	assert.Equal(t, "import_statement", stmt.Type())
	assert.Equal(t, "import os", module.Text(stmt))
}

func TestModule_CloseTwice(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	module, err := parser.Parse(context.Background(), "t.py", []byte("x = 1\n"))
	require.NoError(t, err)

	module.Close()
	module.Close()
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	parser := NewParser()

	module, err := parser.Parse(context.Background(), "t.py", []byte("x = y\n"))
	require.NoError(t, err)

	defer module.Close()

	var types []string

	Walk(module.Root, func(n sitter.Node) bool {
		types = append(types, n.Type())

		return true
	})

	assert.Equal(t, "module", types[0])
	assert.Contains(t, types, "identifier")
}
