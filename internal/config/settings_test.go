package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/testutil"
)

func isolate(t *testing.T) string {
	t.Helper()
	return testutil.Isolate(t, EnvConfig, EnvReposDir, EnvRegistryFile)
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	s, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, SourceDefault, s.ConfigPath.Source)
	assert.Equal(t, SourceDefault, s.ReposDir.Source)
	assert.Equal(t, filepath.Join(home, ".ansible", "azp-tools", "repos"), s.Config.ReposDir)
	assert.Empty(t, s.Config.RegistryFile)
	assert.Equal(t, 4, s.Config.Workers)
}

func TestLoad_Precedence(t *testing.T) {
	home := isolate(t)

	cfgPath := filepath.Join(home, ".config", "azp-matrix", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(cfgPath), 0o700))
	require.NoError(t, os.WriteFile(cfgPath, []byte("reposDir: ~/from-config\nregistryFile: /cfg/platforms.yaml\n"), 0o600))

	s, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, SourceConfig, s.ReposDir.Source)
	assert.Equal(t, filepath.Join(home, "from-config"), s.Config.ReposDir)
	assert.Equal(t, "/cfg/platforms.yaml", s.Config.RegistryFile)

	t.Setenv(EnvReposDir, "/env/repos")
	s, err = Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, SourceEnv, s.ReposDir.Source)
	assert.Equal(t, "/env/repos", s.Config.ReposDir)
	assert.Equal(t, "~/from-config", s.ReposDir.Shadowed[SourceConfig])

	s, err = Load(LoadOptions{ReposDirFlag: "/flag/repos", RegistryFileFlag: "/flag/platforms.yaml"})
	require.NoError(t, err)
	assert.Equal(t, SourceFlag, s.ReposDir.Source)
	assert.Equal(t, "/flag/repos", s.Config.ReposDir)
	assert.Equal(t, "/flag/platforms.yaml", s.Config.RegistryFile)
	assert.Equal(t, "/cfg/platforms.yaml", s.RegistryFile.Shadowed[SourceConfig])
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	isolate(t)

	_, err := Load(LoadOptions{ConfigFlag: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrNotFound)
}

func TestLoad_InvalidConfig(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "unknownKey: 1\n")

	_, err := Load(LoadOptions{ConfigFlag: path})
	require.Error(t, err)
	assert.ErrorIs(t, err, oerrors.ErrValidation)
	assert.ErrorIs(t, err, oerrors.ErrConfig)
}
