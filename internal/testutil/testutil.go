// Package testutil provides test helpers shared across packages.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Isolate points HOME at a fresh temp dir and clears vars for the test.
func Isolate(t *testing.T, vars ...string) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range vars {
		t.Setenv(v, "")
	}
	return home
}

// RepoPath returns the absolute path of parts under the module root.
func RepoPath(t *testing.T, parts ...string) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return filepath.Join(append([]string{dir}, parts...)...)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find module root from %s", wd)
		}
		dir = parent
	}
}

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// MatrixPipeline renders a pipeline with one "Docker devel" stage holding a
// single matrix job over tests.
func MatrixPipeline(format string, tests ...string) string {
	var b strings.Builder
	b.WriteString("stages:\n  - stage: Docker\n    displayName: Docker devel\n    jobs:\n")
	b.WriteString("      - template: templates/matrix.yml\n        parameters:\n")
	fmt.Fprintf(&b, "          testFormat: %s\n          targets:\n", format)
	for _, test := range tests {
		fmt.Fprintf(&b, "            - test: %s\n", test)
	}
	return b.String()
}
