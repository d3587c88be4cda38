package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/azp-tools/matrix/internal/config"
	"github.com/azp-tools/matrix/internal/testutil"
	"github.com/azp-tools/matrix/internal/workspace"
)

const testRegistryYAML = `expected:
  - {id: fedora38, group: fedora}
  - {id: rhel/9.1, group: rhel}
  - {id: rhel/9.2, group: rhel}
  - {id: ubuntu2204, group: ubuntu}
deprecated:
  - {id: fedora36, group: fedora, replacement: fedora38}
`

// isolate points HOME at a temp dir and clears every AZP_MATRIX variable.
func isolate(t *testing.T) string {
	t.Helper()
	var vars []string
	for _, suffix := range []string{
		"CONFIG", "REPOS_DIR", "REGISTRY_FILE", "CORE_PROJECT", "DEVELOPMENT_BRANCH",
		"KNOWN_BRANCHES", "WORKERS", "CONTINUE_ON_ERROR", "LOG_TIMESTAMPS",
	} {
		vars = append(vars, config.EnvPrefix+"_"+suffix)
	}
	return testutil.Isolate(t, vars...)
}

// testEnv is an isolated home with a repos dir and a registry file.
type testEnv struct {
	home     string
	repos    string
	registry string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := isolate(t)
	env := &testEnv{
		home:     home,
		repos:    filepath.Join(home, "repos"),
		registry: testutil.WriteFile(t, home, "platforms.yaml", testRegistryYAML),
	}
	require.NoError(t, os.MkdirAll(env.repos, 0o755))
	return env
}

// collection writes a collection checkout whose pipeline runs tests on the
// development branch. It returns the pipeline path.
func (e *testEnv) collection(t *testing.T, name, branch string, tests ...string) string {
	t.Helper()
	ns, n, err := workspace.ParseName(name)
	require.NoError(t, err)

	dir := filepath.Join(e.repos, workspace.CollectionsDir, ns+"."+n, branch,
		"ansible_collections", ns, n, workspace.PipelineDir)
	return testutil.WriteFile(t, dir, workspace.PipelineFile, testutil.MatrixPipeline("devel/{0}", tests...))
}

// run executes the root command with the env's repos dir and registry.
func (e *testEnv) run(args ...string) (string, string, error) {
	return execute(append([]string{"--repos-dir", e.repos, "--registry-file", e.registry}, args...)...)
}

func execute(args ...string) (string, string, error) {
	root := NewRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append(args, "--timestamps=false"))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
