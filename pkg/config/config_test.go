package config //nolint:testpackage // testing internal implementation.

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig creates a temp config file with the given content.
func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".pyprune.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)

	assert.False(t, cfg.Aggressive)
	assert.False(t, cfg.Diff)
	assert.Contains(t, cfg.Exclude, "__pycache__")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Positive(t, cfg.MaxFileSizeBytes())
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
aggressive: true
diff: true
max_file_size: 4MB
exclude:
  - generated
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.Aggressive)
	assert.True(t, cfg.Diff)
	assert.Equal(t, []string{"generated"}, cfg.Exclude)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, int64(4000000), cfg.MaxFileSizeBytes())
}

func TestLoad_UnknownKeyRejected(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "agressive: true\n")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrSchemaViolation)
}

func TestLoad_InvalidLevel(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "logging:\n  level: loud\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_InvalidMaxFileSize(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "max_file_size: huge\n")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
