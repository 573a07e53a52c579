package analyzer //nolint:testpackage // testing internal implementation.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan_BareImportsKeptByDefault(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "import os\nimport sys\nprint(sys.path)\n")

	plan := BuildPlan(analysis, Options{})
	assert.True(t, plan.Empty(), "bare imports must survive default mode")

	plan = BuildPlan(analysis, Options{Aggressive: true})
	require.Len(t, plan.Actions, 1)
	assert.True(t, plan.Actions[0].Delete)
	assert.Equal(t, []string{"os"}, plan.RemovedNames())
}

func TestBuildPlan_FromImportSubset(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "from collections import OrderedDict, defaultdict\nd = defaultdict(int)\n")

	plan := BuildPlan(analysis, Options{})
	require.Len(t, plan.Actions, 1)

	action := plan.Actions[0]
	assert.False(t, action.Delete)
	require.Len(t, action.Keep, 1)
	assert.Equal(t, "defaultdict", action.Keep[0].Name)
	assert.Equal(t, []string{"OrderedDict"}, plan.RemovedNames())
}

func TestBuildPlan_AliasedImportRemovableByDefault(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "import numpy as np\nx = 1\n")

	plan := BuildPlan(analysis, Options{})
	require.Len(t, plan.Actions, 1)
	assert.True(t, plan.Actions[0].Delete)
	assert.Equal(t, []string{"np"}, plan.RemovedNames())
}

func TestBuildPlan_StarImportNeverRemoved(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "from mod import *\n")

	assert.True(t, BuildPlan(analysis, Options{}).Empty())
	assert.True(t, BuildPlan(analysis, Options{Aggressive: true}).Empty())
}

func TestBuildPlan_FutureImportNeverRemoved(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "from __future__ import annotations\n")

	assert.True(t, BuildPlan(analysis, Options{}).Empty())
	assert.True(t, BuildPlan(analysis, Options{Aggressive: true}).Empty())
}

func TestBuildPlan_DunderAllPreserved(t *testing.T) {
	t.Parallel()

	analysis := analyze(t, "from mod import helper\n__all__ = ['helper']\n")

	assert.True(t, BuildPlan(analysis, Options{}).Empty())
}

func TestBuildPlan_MixedStatement(t *testing.T) {
	t.Parallel()

	// One used name, one unused alias in the same plain import.
	analysis := analyze(t, "import os, json as j\nprint(os.sep)\n")

	plan := BuildPlan(analysis, Options{})
	require.Len(t, plan.Actions, 1)

	action := plan.Actions[0]
	assert.False(t, action.Delete)
	require.Len(t, action.Keep, 1)
	assert.Equal(t, "os", action.Keep[0].Name)
	assert.Equal(t, []string{"j"}, plan.RemovedNames())
}
