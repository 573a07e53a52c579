package rewriter //nolint:testpackage // testing internal implementation.

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/pyprune/pkg/analyzer"
	"github.com/Sumatoshi-tech/pyprune/pkg/pysrc"
)

// clean is a test helper running the full analyze → plan → rewrite
// pipeline on source text.
func clean(t *testing.T, source string, opts analyzer.Options) string {
	t.Helper()

	module, err := pysrc.NewParser().Parse(context.Background(), "test.py", []byte(source))
	require.NoError(t, err)

	defer module.Close()

	plan := analyzer.BuildPlan(analyzer.Analyze(module), opts)

	out, err := Rewrite([]byte(source), plan)
	require.NoError(t, err)

	return string(out)
}

func TestRewrite_Scenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		source     string
		want       string
		aggressive bool
	}{
		{
			name:   "bare imports kept by default",
			source: "import os\nimport sys\nprint(sys.path)\n",
			want:   "import os\nimport sys\nprint(sys.path)\n",
		},
		{
			name:       "bare import removed aggressively",
			source:     "import os\nimport sys\nprint(sys.path)\n",
			want:       "import sys\nprint(sys.path)\n",
			aggressive: true,
		},
		{
			name:   "from import narrowed",
			source: "from collections import OrderedDict, defaultdict\nd = defaultdict(int)\n",
			want:   "from collections import defaultdict\nd = defaultdict(int)\n",
		},
		{
			name:   "star import kept",
			source: "from mod import *\n",
			want:   "from mod import *\n",
		},
		{
			name:   "aliased import removed",
			source: "import numpy as np\nx = 1\n",
			want:   "x = 1\n",
		},
		{
			name:   "alias spelling preserved when narrowing",
			source: "from os import path as p, sep\nprint(p)\n",
			want:   "from os import path as p\nprint(p)\n",
		},
		{
			name:   "multiline from import collapsed",
			source: "from os import (\n    path,\n    sep,\n)\nprint(path)\n",
			want:   "from os import path\nprint(path)\n",
		},
		{
			name:   "trailing comment removed with statement",
			source: "from os import sep  # separator\nx = 1\n",
			want:   "x = 1\n",
		},
		{
			name:   "indented import removed inside function",
			source: "def f():\n    from os import sep\n    return 1\n",
			want:   "def f():\n    return 1\n",
		},
		{
			name:       "compound line keeps following statement",
			source:     "import os; x = 1\n",
			want:       "x = 1\n",
			aggressive: true,
		},
		{
			name:       "compound line keeps preceding statement",
			source:     "x = 1; import os\n",
			want:       "x = 1\n",
			aggressive: true,
		},
		{
			name:   "surrounding blank lines untouched",
			source: "import sys\n\nfrom os import sep\n\nprint(sys.argv)\n",
			want:   "import sys\n\n\nprint(sys.argv)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := clean(t, tt.source, analyzer.Options{Aggressive: tt.aggressive})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	t.Parallel()

	sources := []string{
		"from collections import OrderedDict, defaultdict\nd = defaultdict(int)\n",
		"import os\nimport sys\nprint(sys.path)\n",
		"from os import (\n    path,\n    sep,\n)\nprint(path)\n",
		"import numpy as np\nimport json as j\nprint(j.dumps({}))\n",
	}

	for _, source := range sources {
		once := clean(t, source, analyzer.Options{Aggressive: true})
		twice := clean(t, once, analyzer.Options{Aggressive: true})

		assert.Equal(t, once, twice, "second application must be a no-op for %q", source)
	}
}

func TestRewrite_NonImportBytesUntouched(t *testing.T) {
	t.Parallel()

	source := "import os\n\n# comment stays   \ndef f( a , b ):\n    return a+b  # odd spacing\n"
	got := clean(t, source, analyzer.Options{Aggressive: true})

	assert.Equal(t, "\n# comment stays   \ndef f( a , b ):\n    return a+b  # odd spacing\n", got)
}

func TestRewrite_EmptyPlanReturnsInput(t *testing.T) {
	t.Parallel()

	source := []byte("x = 1\n")

	out, err := Rewrite(source, &analyzer.Plan{})
	require.NoError(t, err)
	assert.Equal(t, source, out)
}

func TestRewrite_DesyncFails(t *testing.T) {
	t.Parallel()

	plan := &analyzer.Plan{
		Actions: []analyzer.Action{
			{
				Stmt: &analyzer.Statement{
					Kind:      analyzer.KindImport,
					Text:      "import os",
					StartByte: 0,
					EndByte:   9,
				},
				Delete: true,
			},
		},
	}

	_, err := Rewrite([]byte("import sys\n"), plan)

	var rewriteErr *RewriteError
	require.ErrorAs(t, err, &rewriteErr)
	assert.Equal(t, "import os", rewriteErr.Text)
}

func TestRewrite_SpanBeyondSourceFails(t *testing.T) {
	t.Parallel()

	plan := &analyzer.Plan{
		Actions: []analyzer.Action{
			{
				Stmt: &analyzer.Statement{
					Text:      "import os",
					StartByte: 100,
					EndByte:   109,
				},
				Delete: true,
			},
		},
	}

	_, err := Rewrite([]byte("x = 1\n"), plan)

	var rewriteErr *RewriteError
	require.ErrorAs(t, err, &rewriteErr)
}
