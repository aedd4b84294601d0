package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	forgeerr "github.com/mstvb/forge/internal/errors"
	"github.com/mstvb/forge/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempDir runs the test from a fresh working directory.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(logging.Nop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLIWorkflow(t *testing.T) {
	dir := inTempDir(t)

	out, err := run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Initialized empty forge repository")

	out, err = run(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("A\n"), 0644))

	out, err = run(t, "add", "f.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "Staged 1 file(s)")

	out, err = run(t, "commit", "first")
	require.NoError(t, err)
	assert.Contains(t, out, "first")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "f.txt"), []byte("B\n"), 0644))

	out, err = run(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Modified files:")
	assert.Contains(t, out, "f.txt")

	out, err = run(t, "diff")
	require.NoError(t, err)
	assert.Contains(t, out, "MODIFIED")
	assert.Contains(t, out, "+1")
	assert.Contains(t, out, "-1")

	out, err = run(t, "diff", "--details")
	require.NoError(t, err)
	assert.Contains(t, out, "-A")
	assert.Contains(t, out, "+B")

	out, err = run(t, "show", "--path", "f.txt")
	require.NoError(t, err)
	assert.Contains(t, out, "A\n")

	_, err = run(t, "restore", "f.txt")
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(dir, "f.txt"))
	require.NoError(t, err)
	assert.Equal(t, "A\n", string(data))

	out, err = run(t, "log")
	require.NoError(t, err)
	assert.Contains(t, out, "first")

	_, err = run(t, "back", "no such message")
	assert.True(t, forgeerr.Is(err, forgeerr.KindNoMatchFound))
	assert.Equal(t, 0, exitCode(err))
}

func TestCLIWithoutRepository(t *testing.T) {
	inTempDir(t)

	_, err := run(t, "status")
	require.Error(t, err)
	assert.True(t, forgeerr.Is(err, forgeerr.KindRepositoryNotFound))
	assert.Equal(t, 1, exitCode(err))
}

func TestCLIArgumentErrors(t *testing.T) {
	inTempDir(t)
	_, err := run(t, "init")
	require.NoError(t, err)

	_, err = run(t, "add")
	assert.Error(t, err)

	_, err = run(t, "commit")
	assert.Error(t, err)

	_, err = run(t, "show")
	assert.Error(t, err)

	_, err = run(t, "commit", "nothing staged")
	assert.True(t, forgeerr.Is(err, forgeerr.KindEmptyIndex))
}
