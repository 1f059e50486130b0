package pawbasic

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigYAML(t *testing.T) {
	path := writeFile(t, "pawbasic.yaml", `
precision: precise
throw_on_error: true
max_call_depth: 10
log_categories: [flow, scope]
`)
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, "precise", cfg.Precision)
	assert.True(t, cfg.ThrowOnError)
	assert.Equal(t, 10, cfg.MaxCallDepth)
	assert.Equal(t, []LogCategory{CatFlow, CatScope}, cfg.LogCategories)
	assert.True(t, cfg.ShowErrorContext, "unset keys keep their defaults")

	mode, err := cfg.NumberMode()
	require.NoError(t, err)
	assert.Equal(t, PreciseNumbers, mode)
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, "pawbasic.toml", `
precision = "fast"
strict_types = true
context_lines = 4
`)
	cfg, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.StrictTypes)
	assert.Equal(t, 4, cfg.ContextLines)
	assert.Equal(t, 256, cfg.MaxCallDepth)
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfigFile(writeFile(t, "settings.json", "{}"))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = LoadConfigFile(writeFile(t, "bad.yaml", "precision: huge\n"))
	assert.ErrorContains(t, err, "unknown precision")

	_, err = LoadConfigFile(writeFile(t, "broken.toml", "precision = \n"))
	assert.Error(t, err)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read config")
}

func TestInterpreterUsesLoadedConfig(t *testing.T) {
	cfg, err := LoadConfigFile(writeFile(t, "c.yml", "precision: precise\n"))
	require.NoError(t, err)
	interp := New(cfg)
	v, err := interp.Evaluate("1 / 3 * 3 = 1")
	require.NoError(t, err)
	assert.Equal(t, PreciseNumbers, interp.Mode())
	assert.Equal(t, "FALSE", v.String(), "division rounds to a fixed number of digits")
}
