package pipeline

import (
	"fmt"
	"path"
	"strconv"
	"strings"
)

// Default template paths used by collection pipelines.
const (
	DefaultMatrixTemplate   = "templates/matrix.yml"
	DefaultCoverageTemplate = "templates/coverage.yml"
)

// RawTarget is one expanded test string and the stage it came from.
type RawTarget struct {
	Test  string `json:"test" yaml:"test"`
	Stage string `json:"stage" yaml:"stage"`
}

// ExtractOptions controls which stages and templates are read.
type ExtractOptions struct {
	// MatrixTemplate is the only template whose targets are expanded.
	MatrixTemplate string

	// CoverageTemplate jobs are skipped.
	CoverageTemplate string

	// SkipStages are glob patterns (path.Match syntax) matched against stage
	// names. Matching stages configure dependencies rather than run tests.
	SkipStages []string
}

// DefaultExtractOptions returns the options for the standard collection layout.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		MatrixTemplate:   DefaultMatrixTemplate,
		CoverageTemplate: DefaultCoverageTemplate,
		SkipStages:       []string{"Dependencies"},
	}
}

// Validate checks that templates are set and skip patterns are well-formed.
func (o ExtractOptions) Validate() error {
	if o.MatrixTemplate == "" {
		return fmt.Errorf("matrix template must be set")
	}
	for _, p := range o.SkipStages {
		if _, err := path.Match(p, ""); err != nil {
			return fmt.Errorf("invalid skip stage pattern %q: %w", p, err)
		}
	}
	return nil
}

func (o ExtractOptions) skipStage(name string) bool {
	for _, p := range o.SkipStages {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}

// Extract walks every stage and job of def and returns the expanded test
// strings in insertion order. Duplicates are kept.
func Extract(def *Definition, opts ExtractOptions) ([]RawTarget, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	var targets []RawTarget

	for si, stage := range def.Stages {
		stageName := stage.Name()
		if opts.skipStage(stageName) {
			continue
		}

		for ji, job := range stage.Jobs {
			if opts.CoverageTemplate != "" && job.Template == opts.CoverageTemplate {
				continue
			}
			if job.Template != opts.MatrixTemplate {
				return nil, &UnrecognizedTemplateError{Path: def.Path, Stage: stageName, Template: job.Template}
			}

			field := fmt.Sprintf("stages[%d].jobs[%d].parameters", si, ji)
			expanded, err := expandJob(job.Parameters, stageName)
			if err != nil {
				return nil, &StructureError{Path: def.Path, Field: field, Message: err.Error()}
			}
			targets = append(targets, expanded...)
		}
	}

	return targets, nil
}

// expandJob emits one RawTarget per target, or per (group, target) pair when
// groups are present.
func expandJob(params Parameters, stage string) ([]RawTarget, error) {
	if len(params.Targets) == 0 {
		return nil, fmt.Errorf("targets must be a non-empty sequence")
	}

	names := make([]string, len(params.Targets))
	for i, t := range params.Targets {
		names[i] = t.TestName()
		if names[i] == "" {
			return nil, fmt.Errorf("targets[%d] has neither test nor name", i)
		}
	}

	format := params.TestFormat
	if format == "" {
		format = DefaultTestFormat
	}

	var out []RawTarget

	if len(params.Groups) > 0 {
		out = make([]RawTarget, 0, len(params.Groups)*len(names))
		for _, g := range params.Groups {
			group := groupToken(g)
			for _, name := range names {
				test, err := formatTest(format, name, group)
				if err != nil {
					return nil, err
				}
				out = append(out, RawTarget{Test: test, Stage: stage})
			}
		}
		return out, nil
	}

	out = make([]RawTarget, 0, len(names))
	for _, name := range names {
		test, err := formatTest(format, name)
		if err != nil {
			return nil, err
		}
		out = append(out, RawTarget{Test: test, Stage: stage})
	}
	return out, nil
}

// groupToken renders a decoded group scalar. Floats keep a fractional part,
// so a group written as 1.0 stays "1.0".
func groupToken(g any) string {
	switch v := g.(type) {
	case float64:
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(g)
	}
}
