package platform

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

func TestDefault(t *testing.T) {
	reg, err := Default()
	require.NoError(t, err)

	_, m := reg.Lookup("rhel/8.3")
	assert.Equal(t, Expected, m)

	repl, ok := reg.Replacement("osx/10.11")
	require.True(t, ok)
	assert.Equal(t, ID("macos/11.1"), repl)
}

func TestLoad_EmptyPathUsesDefault(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)

	def, err := Default()
	require.NoError(t, err)
	assert.Equal(t, def.Records(), reg.Records())
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "platforms.yaml")
	content := `
expected:
  - id: fedora37
    group: fedora
  - id: rhel/9.1
    group: rhel
deprecated:
  - id: fedora30
    group: fedora
    replacement: fedora37
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	reg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, oerrors.ErrNotFound))
}

func TestParse_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty document", ``},
		{"missing expected", "deprecated: []\n"},
		{"unknown top-level key", "expected: []\nretired: []\n"},
		{"entry without group", "expected:\n  - id: fedora37\n"},
		{"unknown entry key", "expected:\n  - {id: fedora37, group: fedora, replacement: fedora38}\n"},
		{"malformed id", "expected:\n  - {id: 'rhel/9/1', group: rhel}\n"},
		{"not yaml", "expected: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "platforms.yaml")
			require.Error(t, err)
			assert.True(t, errors.Is(err, oerrors.ErrValidation), "got %v", err)

			var detail *oerrors.DetailError
			require.True(t, errors.As(err, &detail))
			assert.Equal(t, "platforms.yaml", detail.Location)
		})
	}
}

func TestParse_InvariantViolation(t *testing.T) {
	content := `
expected:
  - {id: fedora37, group: fedora}
deprecated:
  - {id: fedora37, group: fedora}
`
	_, err := Parse([]byte(content), "platforms.yaml")
	require.Error(t, err)

	var cfgErr *DeprecationConfigError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, ID("fedora37"), cfgErr.ID)

	var detail *oerrors.DetailError
	require.True(t, errors.As(err, &detail))
	assert.Equal(t, "invalid platform registry", detail.Type)
}

func TestDefaultYAML_IsCopy(t *testing.T) {
	a := DefaultYAML()
	a[0] = 'X'
	assert.NotEqual(t, a[0], DefaultYAML()[0])
}
