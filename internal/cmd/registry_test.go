package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/platform"
)

func TestRegistryShow(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("registry", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "PLATFORM")
	assert.Contains(t, stdout, "fedora38")
	assert.Contains(t, stdout, "deprecated")
}

func TestRegistryShow_JSON(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("registry", "show", "-o", "json")
	require.NoError(t, err)

	var records []platform.Record
	require.NoError(t, json.Unmarshal([]byte(stdout), &records))
	require.Len(t, records, 5)
	assert.Equal(t, platform.ID("fedora38"), records[0].ID)
	assert.Equal(t, "expected", records[0].Table)
	assert.Equal(t, platform.ID("fedora36"), records[4].ID)
	assert.Equal(t, platform.ID("fedora38"), records[4].Replacement)
}

func TestRegistryShow_Raw(t *testing.T) {
	isolate(t)

	stdout, _, err := execute("registry", "show", "--raw")
	require.NoError(t, err)
	assert.Equal(t, string(platform.DefaultYAML()), stdout)
}

func TestRegistryShow_MarkdownUnsupported(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run("registry", "show", "-o", "markdown")
	require.Error(t, err)
}

func TestRegistryVet(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run("registry", "vet")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Registry is valid: "+env.registry)
	assert.Contains(t, stdout, "5 platforms")
}

func TestRegistryVet_Default(t *testing.T) {
	isolate(t)

	stdout, _, err := execute("registry", "vet")
	require.NoError(t, err)
	assert.Contains(t, stdout, platform.DefaultLocation)
}

func TestRegistryVet_Invalid(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`expected:
  - {id: fedora38, group: fedora}
deprecated:
  - {id: fedora36, group: fedora, replacement: fedora40}
`), 0o644))

	_, stderr, err := execute("registry", "vet", path)
	require.Error(t, err)
	assert.Contains(t, stderr, "registry validation failed")

	var exitErr *oerrors.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, oerrors.ExitValidationError, exitErr.Code)
	assert.True(t, exitErr.Printed)
}

func TestRegistryVet_Missing(t *testing.T) {
	isolate(t)

	_, _, err := execute("registry", "vet", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, oerrors.ExitNotFound, oerrors.ExitCodeFromError(err))
}
