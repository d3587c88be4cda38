package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsolate(t *testing.T) {
	t.Setenv("AZP_MATRIX_TESTUTIL", "set")

	home := Isolate(t, "AZP_MATRIX_TESTUTIL")
	assert.Equal(t, home, os.Getenv("HOME"))
	assert.Empty(t, os.Getenv("AZP_MATRIX_TESTUTIL"))
}

func TestRepoPath(t *testing.T) {
	assert.FileExists(t, RepoPath(t, "go.mod"))
	assert.DirExists(t, RepoPath(t, "internal", "testutil"))
}

func TestWriteFile(t *testing.T) {
	path := WriteFile(t, t.TempDir(), filepath.Join("a", "b.yml"), "x: 1\n")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "x: 1\n", string(data))
}

func TestMatrixPipeline(t *testing.T) {
	got := MatrixPipeline("devel/{0}", "rhel/9.1", "linux/fedora38")
	assert.Contains(t, got, "testFormat: devel/{0}\n")
	assert.Contains(t, got, "- test: rhel/9.1\n")
	assert.Contains(t, got, "- test: linux/fedora38\n")
}
