package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory so no stray .env or
// .oniria.yaml is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("ONIRIA_CONFIG_PATH", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("ONIRIA_GEMINI_API_KEY", "")
	return dir
}

func TestDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load(nil)
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".oniria"), cfg.DataDir)
	assert.Equal(t, "sqlite", cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Empty(t, cfg.Gemini.APIKey)
	assert.Equal(t, 30*time.Second, cfg.Gemini.Timeout)
}

func TestEnvAndFileAndFlags(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".oniria.yaml"), []byte(
		"backend: blob\nlog_level: debug\ngemini:\n  model: gemini-test\n  timeout: 5s\n"), 0o644))
	t.Setenv("ONIRIA_LOG_LEVEL", "warn")
	t.Setenv("GEMINI_API_KEY", "from-env")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("data-dir", "", "")
	fs.String("backend", "", "")
	require.NoError(t, fs.Parse([]string{"--data-dir", filepath.Join(dir, "data")}))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "data"), cfg.DataDir)
	assert.Equal(t, "blob", cfg.Backend, "unset flag does not override the file")
	assert.Equal(t, "warn", cfg.LogLevel, "env overrides the file")
	assert.Equal(t, "gemini-test", cfg.Gemini.Model)
	assert.Equal(t, 5*time.Second, cfg.Gemini.Timeout)
	assert.Equal(t, "from-env", cfg.Gemini.APIKey)
}

func TestInvalid(t *testing.T) {
	isolate(t)
	t.Setenv("ONIRIA_BACKEND", "postgres")

	_, err := Load(nil)
	assert.ErrorContains(t, err, "invalid config")
}
