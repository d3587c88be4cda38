package sanity

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azp-tools/matrix/internal/workspace"
)

func checkout(t *testing.T, name string) workspace.Project {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	return workspace.Project{
		Ref: workspace.ProjectRef{Namespace: "ns", Name: name, Branch: "main"},
		Dir: dir,
	}
}

func TestOptionsArgs(t *testing.T) {
	assert.Equal(t, []string{"sanity", "--docker", "-v"}, Options{}.Args())
	assert.Equal(t,
		[]string{"sanity", "--docker", "-v", "--test", "pep8", "--test", "yamllint"},
		Options{Tests: []string{"pep8", "yamllint"}}.Args())
}

func TestRun(t *testing.T) {
	a, b := checkout(t, "a"), checkout(t, "b")

	var stdout bytes.Buffer
	failures, err := Run(context.Background(), []workspace.Project{a, b}, Options{
		Executable: "echo",
		Stdout:     &stdout,
		Stderr:     &stdout,
	})
	require.NoError(t, err)
	assert.Empty(t, failures)

	want := "---[ " + a.Dir + " ]---\nsanity --docker -v\n---[ " + a.Dir + " ]---\n" +
		"---[ " + b.Dir + " ]---\nsanity --docker -v\n---[ " + b.Dir + " ]---\n"
	assert.Equal(t, want, stdout.String())
}

func TestRunKeepsGoingWithoutCheck(t *testing.T) {
	a, b := checkout(t, "a"), checkout(t, "b")

	var stdout bytes.Buffer
	failures, err := Run(context.Background(), []workspace.Project{a, b}, Options{
		Executable: "false",
		Stdout:     &stdout,
		Stderr:     &stdout,
	})
	require.NoError(t, err)
	require.Len(t, failures, 2)
	assert.Equal(t, "a", failures[0].Project.Ref.Name)
	assert.Equal(t, "b", failures[1].Project.Ref.Name)
}

func TestRunCheckStopsAtFirstFailure(t *testing.T) {
	a, b := checkout(t, "a"), checkout(t, "b")

	var stdout bytes.Buffer
	failures, err := Run(context.Background(), []workspace.Project{a, b}, Options{
		Executable: "false",
		Check:      true,
		Stdout:     &stdout,
		Stderr:     &stdout,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ns.a:main")
	require.Len(t, failures, 1)
	assert.NotContains(t, stdout.String(), b.Dir)
}

func TestRunMissingExecutable(t *testing.T) {
	_, err := Run(context.Background(), nil, Options{Executable: "azp-matrix-no-such-binary"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found in PATH")
}

func TestRunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var stdout bytes.Buffer
	_, err := Run(ctx, []workspace.Project{checkout(t, "a")}, Options{
		Executable: "echo",
		Stdout:     &stdout,
		Stderr:     &stdout,
	})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, stdout.String())
}
