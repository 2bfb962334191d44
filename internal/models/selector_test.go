package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("ggml"), 0o644))
}

func TestSelectedModelPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeModel(t, dir, "ggml-base.en.bin")
	writeModel(t, dir, "ggml-tiny.bin")
	writeModel(t, dir, "README.md")

	s := NewDirSelector(dir, "base.en")
	path, ok := s.SelectedModelPath()
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "ggml-base.en.bin"), path)
	assert.False(t, s.IsLoading())
}

func TestSelectedModelAbsent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeModel(t, dir, "ggml-tiny.bin")

	s := NewDirSelector(dir, "base.en")
	_, ok := s.SelectedModelPath()
	assert.False(t, ok)
}

func TestMissingModelsDir(t *testing.T) {
	t.Parallel()

	s := NewDirSelector(filepath.Join(t.TempDir(), "nope"), "base.en")
	_, ok := s.SelectedModelPath()
	assert.False(t, ok)
	assert.False(t, s.IsLoading())
}

func TestAvailableListsModelNames(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeModel(t, dir, "ggml-base.en.bin")
	writeModel(t, dir, "ggml-small.bin")

	s := NewDirSelector(dir, "base.en")
	assert.ElementsMatch(t, []string{"base.en", "small"}, s.Available())
}

func TestIsLoadingBeforeFirstScan(t *testing.T) {
	t.Parallel()

	s := NewDirSelector(t.TempDir(), "base.en")
	assert.True(t, s.IsLoading())
}
