package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denysvitali/audio-renamer/pkg/renamer"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
}

func TestRenameCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.wav", "a.wav", "c.txt")

	out, err := runCommand(t, "rename", dir, "--extension", ".wav", "--prefix", "X", "--order", "name", "--preflight=true")
	require.NoError(t, err)
	assert.Equal(t, "Renamed 'a.wav' to 'X1.wav'\nRenamed 'b.wav' to 'X2.wav'\n", out)

	for _, name := range []string{"X1.wav", "X2.wav", "c.txt"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRenameCommand_MissingFolder(t *testing.T) {
	out, err := runCommand(t, "rename", filepath.Join(t.TempDir(), "missing"), "--extension", ".wav", "--prefix", "X", "--order", "listing", "--preflight=true")
	require.Error(t, err)
	assert.ErrorIs(t, err, renamer.ErrPathNotFound)
	assert.Equal(t, 2, renamer.ExitCode(err))
	assert.Empty(t, out)
}

func TestPlanCommand(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.wav", "b.wav")

	out, err := runCommand(t, "plan", dir, "--extension", ".wav", "--prefix", "X", "--order", "name", "--preflight=true")
	require.NoError(t, err)
	assert.Equal(t, "Plan for \"rename\" operation:\n  - a.wav -> X1.wav\n  - b.wav -> X2.wav\n", out)
	assert.FileExists(t, filepath.Join(dir, "a.wav"))

	require.NoError(t, os.Mkdir(filepath.Join(dir, "X2.wav"), 0o755))
	out, err = runCommand(t, "plan", dir, "--extension", ".wav", "--prefix", "X", "--order", "name", "--preflight=true")
	assert.ErrorIs(t, err, renamer.ErrRenameConflict)
	assert.Equal(t, 4, renamer.ExitCode(err))
	assert.Contains(t, out, "Conflicts:\n  - b.wav -> X2.wav: target exists\n")
}

func TestGetLogger_FollowsLogFlags(t *testing.T) {
	t.Cleanup(func() {
		require.NoError(t, rootCmd.PersistentFlags().Set("log-level", "info"))
		require.NoError(t, rootCmd.PersistentFlags().Set("log-json", "false"))
		setupLogging()
	})
	dir := t.TempDir()
	writeFiles(t, dir, "a.wav")

	_, err := runCommand(t, "plan", dir, "--extension", ".wav", "--prefix", "X", "--order", "name", "--log-level", "debug", "--log-json")
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, GetLogger().GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, GetLogger().Formatter)
}
