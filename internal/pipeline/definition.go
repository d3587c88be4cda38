// Package pipeline loads Azure Pipelines definitions and extracts the raw test
// targets from their test matrix jobs.
package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

// Definition is the subset of an azure-pipelines.yml document the audit reads.
type Definition struct {
	Stages []Stage `yaml:"stages"`

	// Path is the file the definition was loaded from, if any.
	Path string `yaml:"-"`
}

// Stage is one pipeline stage.
type Stage struct {
	Stage       string `yaml:"stage"`
	DisplayName string `yaml:"displayName"`
	Jobs        []Job  `yaml:"jobs"`
}

// Name returns the stage display name, falling back to the stage identifier.
func (s Stage) Name() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Stage
}

// Job is a templated job reference.
type Job struct {
	Template   string     `yaml:"template"`
	Parameters Parameters `yaml:"parameters"`
}

// Parameters are the matrix template parameters.
type Parameters struct {
	// TestFormat is a format string with {0} for the test name and, when
	// groups are present, {1} for the group. Defaults to "{0}".
	TestFormat string   `yaml:"testFormat"`
	Targets    []Target `yaml:"targets"`

	// Groups are arbitrary scalar tokens; pipelines use both numbers and strings.
	Groups []any `yaml:"groups"`
}

// Target is one matrix entry.
type Target struct {
	Name string `yaml:"name"`
	Test string `yaml:"test"`
}

// TestName returns the test field, falling back to the name field.
func (t Target) TestName() string {
	if t.Test != "" {
		return t.Test
	}
	return t.Name
}

// Load reads and parses a pipeline definition file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, oerrors.NewNotFoundError("pipeline definition does not exist", path, "")
		}
		return nil, fmt.Errorf("reading pipeline definition: %w", err)
	}

	return Parse(data, path)
}

// Parse decodes a pipeline definition and checks the stage/job structure.
func Parse(data []byte, path string) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, &StructureError{Path: path, Message: err.Error()}
	}
	def.Path = path

	if def.Stages == nil {
		return nil, &StructureError{Path: path, Field: "stages", Message: "missing stages sequence"}
	}
	for i, stage := range def.Stages {
		if stage.Jobs == nil {
			return nil, &StructureError{
				Path:    path,
				Field:   fmt.Sprintf("stages[%d].jobs", i),
				Message: fmt.Sprintf("stage %q has no jobs sequence", stage.Name()),
			}
		}
	}

	return &def, nil
}
