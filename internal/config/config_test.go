package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForRepo(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		t.Setenv(envLogLevel, "")
		cfg, err := ForRepo(t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Setenv(envLogLevel, "")
		dir := t.TempDir()
		data := `{"log_level":"debug","diff":{"context_lines":1},"cache":{"objects":-4}}`
		require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(data), 0644))

		cfg, err := ForRepo(dir)
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, 1, cfg.Diff.ContextLines)
		assert.Equal(t, 256, cfg.Cache.Objects)
		assert.Contains(t, cfg.Add.IgnoreDirs, RepoDir)
	})

	t.Run("env wins over file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{"log_level":"debug"}`), 0644))
		t.Setenv(envLogLevel, "error")

		cfg, err := ForRepo(dir)
		require.NoError(t, err)
		assert.Equal(t, "error", cfg.LogLevel)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{`), 0644))

		_, err := ForRepo(dir)
		assert.Error(t, err)
	})
}
