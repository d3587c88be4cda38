package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/workspace"
)

func TestNewCheckCmd(t *testing.T) {
	c := NewCheckCmd(&GlobalConfig{})

	assert.Equal(t, "check", c.Use)
	assert.NotEmpty(t, c.Short)
	assert.NotEmpty(t, c.Long)
	assert.NotNil(t, c.Flags().Lookup("keep-going"))
}

func TestCheck_Markdown(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.general", "main", "linux/fedora36", "rhel/9.1", "sanity/1")
	env.collection(t, "community.crypto", "main", "linux/fedora38", "rhel/9.1", "rhel/9.2", "linux/ubuntu2204")
	env.collection(t, "community.docs", "main", "sanity/1")

	stdout, _, err := env.run("check", "--no-header")
	require.NoError(t, err)

	want := "- [X] community.crypto:main - Current\n" +
		"- [X] community.docs:main - Skipped\n" +
		"- [ ] community.general:main - Update\n" +
		"  - [ ] Replace: fedora36 with fedora38\n" +
		"  - [ ] Add: rhel/9.2\n" +
		"  - [ ] Consider: ubuntu2204\n"
	assert.Equal(t, want, stdout)
}

func TestCheck_PartialCoverageConsidersOtherGroups(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.crypto", "main", "linux/fedora38")

	stdout, _, err := env.run("check", "--no-header")
	require.NoError(t, err)

	want := "- [ ] community.crypto:main - Update\n" +
		"  - [ ] Consider: rhel/9.1\n" +
		"  - [ ] Consider: rhel/9.2\n" +
		"  - [ ] Consider: ubuntu2204\n"
	assert.Equal(t, want, stdout)
}

func TestCheck_HeaderByDefault(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.crypto", "main", "linux/fedora38", "rhel/9.1", "rhel/9.2", "linux/ubuntu2204")

	stdout, _, err := env.run("check")
	require.NoError(t, err)
	assert.Contains(t, stdout, "devel")
	assert.Contains(t, stdout, "- [X] community.crypto:main - Current\n")
}

func TestCheck_JSON(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.general", "main", "rhel/9.1")

	stdout, _, err := env.run("check", "-o", "json")
	require.NoError(t, err)

	var views []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "community.general:main", views[0]["project"])
	assert.Equal(t, "Update", views[0]["status"])
}

func TestCheck_Filters(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.general", "main", "rhel/9.1")
	env.collection(t, "community.general", "stable-8", "rhel/9.1")
	env.collection(t, "community.crypto", "main", "linux/fedora38")

	stdout, _, err := env.run("check", "--no-header", "--project", "community/general", "--branch", "stable-8")
	require.NoError(t, err)
	assert.Equal(t, "- [ ] community.general:stable-8 - Update\n  - [ ] Add: rhel/9.2\n  - [ ] Consider: fedora38\n  - [ ] Consider: ubuntu2204\n", stdout)
}

func TestCheck_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.general", "main", "rhel/9.1")

	_, _, err := env.run("check", "--project", "community/missing")
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitNotFound, oerrors.ExitCodeFromError(err))
}

func TestCheck_NoProjects(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("check")
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestCheck_FailFast(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.broken", "main", "linux/plan9")
	env.collection(t, "community.general", "main", "rhel/9.1")

	stdout, _, err := env.run("check", "--workers", "1")
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, oerrors.ExitAuditError, oerrors.ExitCodeFromError(err))
	assert.Contains(t, err.Error(), "community.broken:main")
	assert.Contains(t, err.Error(), "unknown platform: plan9")
}

func TestCheck_KeepGoing(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.broken", "main", "linux/plan9")
	env.collection(t, "community.crypto", "main", "linux/fedora38", "rhel/9.1", "rhel/9.2", "linux/ubuntu2204")

	stdout, _, err := env.run("check", "--no-header", "--keep-going")
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitAuditError, oerrors.ExitCodeFromError(err))
	assert.Equal(t,
		"- [ ] community.broken:main - Error: unknown platform: plan9\n"+
			"- [X] community.crypto:main - Current\n",
		stdout)
}

func TestCheck_InvalidOutput(t *testing.T) {
	env := newTestEnv(t)
	env.collection(t, "community.crypto", "main", "linux/fedora38")

	_, _, err := env.run("check", "-o", "xml")
	require.Error(t, err)
}

func TestFilterProjects(t *testing.T) {
	p := func(ns, name, branch string) workspace.Project {
		return workspace.Project{Ref: workspace.ProjectRef{Namespace: ns, Name: name, Branch: branch}}
	}
	projects := []workspace.Project{
		p("community", "crypto", "main"),
		p("community", "general", "main"),
		p("community", "general", "stable-8"),
	}

	got, err := filterProjects(projects, nil, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = filterProjects(projects, []string{"community.general"}, nil)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = filterProjects(projects, nil, []string{"main"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = filterProjects(projects, []string{"general"}, nil)
	require.Error(t, err)
}
