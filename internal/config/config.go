// Package config provides configuration loading and management.
package config

import (
	"slices"

	"github.com/azp-tools/matrix/internal/audit"
	"github.com/azp-tools/matrix/internal/classify"
	"github.com/azp-tools/matrix/internal/pipeline"
)

// DefaultCoreProject is the core project checked out under the repos dir.
const DefaultCoreProject = "ansible/ansible"

// TemplatesConfig names the pipeline job templates.
type TemplatesConfig struct {
	// Matrix is the job template whose targets are expanded.
	Matrix string `mapstructure:"matrix" json:"matrix,omitempty" yaml:"matrix,omitempty"`

	// Coverage is the job template that is skipped.
	Coverage string `mapstructure:"coverage" json:"coverage,omitempty" yaml:"coverage,omitempty"`
}

// ClassifierConfig tunes test target classification.
type ClassifierConfig struct {
	SkipTestTypes  []string `mapstructure:"skipTestTypes" json:"skipTestTypes,omitempty" yaml:"skipTestTypes,omitempty"`
	IgnorePatterns []string `mapstructure:"ignorePatterns" json:"ignorePatterns,omitempty" yaml:"ignorePatterns,omitempty"`
	StripSuffixes  []string `mapstructure:"stripSuffixes" json:"stripSuffixes,omitempty" yaml:"stripSuffixes,omitempty"`
}

// LogConfig contains logging-related settings.
type LogConfig struct {
	// Timestamps controls whether timestamps are shown in log output.
	// Default: true. Override with --timestamps flag.
	Timestamps *bool `mapstructure:"timestamps" json:"timestamps,omitempty" yaml:"timestamps,omitempty"`
}

// Config represents the azp-matrix CLI configuration.
// Loaded from ~/.config/azp-matrix/config.yaml, validated against the embedded CUE schema.
type Config struct {
	// ReposDir is the root of the checked-out repositories.
	// Env: AZP_MATRIX_REPOS_DIR, Default: ~/.ansible/azp-tools/repos
	ReposDir string `mapstructure:"reposDir" json:"reposDir,omitempty" yaml:"reposDir,omitempty"`

	// RegistryFile is a platform registry YAML file. Empty uses the built-in registry.
	// Env: AZP_MATRIX_REGISTRY_FILE
	RegistryFile string `mapstructure:"registryFile" json:"registryFile,omitempty" yaml:"registryFile,omitempty"`

	// CoreProject is "namespace/name" of the core project.
	// Env: AZP_MATRIX_CORE_PROJECT
	CoreProject string `mapstructure:"coreProject" json:"coreProject,omitempty" yaml:"coreProject,omitempty"`

	// DevelopmentBranch is the only branch whose targets are reconciled.
	// Env: AZP_MATRIX_DEVELOPMENT_BRANCH
	DevelopmentBranch string `mapstructure:"developmentBranch" json:"developmentBranch,omitempty" yaml:"developmentBranch,omitempty"`

	// KnownBranches are the valid branch segments of collection targets.
	// Env: AZP_MATRIX_KNOWN_BRANCHES (comma separated)
	KnownBranches []string `mapstructure:"knownBranches" json:"knownBranches,omitempty" yaml:"knownBranches,omitempty"`

	// SkipStages are glob patterns of stage names that are not read.
	SkipStages []string `mapstructure:"skipStages" json:"skipStages,omitempty" yaml:"skipStages,omitempty"`

	Templates  TemplatesConfig  `mapstructure:"templates" json:"templates,omitempty" yaml:"templates,omitempty"`
	Classifier ClassifierConfig `mapstructure:"classifier" json:"classifier,omitempty" yaml:"classifier,omitempty"`

	// Workers bounds how many projects are audited concurrently.
	// Env: AZP_MATRIX_WORKERS, Default: 4
	Workers int `mapstructure:"workers" json:"workers,omitempty" yaml:"workers,omitempty"`

	// ContinueOnError keeps auditing after a project fails.
	// Env: AZP_MATRIX_CONTINUE_ON_ERROR
	ContinueOnError bool `mapstructure:"continueOnError" json:"continueOnError,omitempty" yaml:"continueOnError,omitempty"`

	Log LogConfig `mapstructure:"log" json:"log,omitempty" yaml:"log,omitempty"`
}

// DefaultConfig returns a Config with all default values populated.
// Used by `azp-matrix config init` to generate the initial config file.
func DefaultConfig() *Config {
	cls := classify.DefaultOptions()
	ext := pipeline.DefaultExtractOptions()

	return &Config{
		ReposDir:          DefaultReposDir,
		CoreProject:       DefaultCoreProject,
		DevelopmentBranch: cls.DevelopmentBranch,
		KnownBranches:     cls.KnownBranches,
		SkipStages:        ext.SkipStages,
		Templates: TemplatesConfig{
			Matrix:   ext.MatrixTemplate,
			Coverage: ext.CoverageTemplate,
		},
		Classifier: ClassifierConfig{
			SkipTestTypes:  cls.SkipTestTypes,
			IgnorePatterns: cls.IgnorePatterns,
			StripSuffixes:  cls.StripSuffixes,
		},
		Workers: audit.DefaultWorkers,
	}
}

// WithDefaults returns a copy of c with unset values filled from DefaultConfig.
// Lists set to an explicit empty list stay empty.
func (c *Config) WithDefaults() *Config {
	d := DefaultConfig()
	out := *c

	if out.ReposDir == "" {
		out.ReposDir = d.ReposDir
	}
	if out.CoreProject == "" {
		out.CoreProject = d.CoreProject
	}
	if out.DevelopmentBranch == "" {
		out.DevelopmentBranch = d.DevelopmentBranch
	}
	if out.KnownBranches == nil {
		out.KnownBranches = d.KnownBranches
	}
	if out.SkipStages == nil {
		out.SkipStages = d.SkipStages
	}
	if out.Templates.Matrix == "" {
		out.Templates.Matrix = d.Templates.Matrix
	}
	if out.Templates.Coverage == "" {
		out.Templates.Coverage = d.Templates.Coverage
	}
	if out.Classifier.SkipTestTypes == nil {
		out.Classifier.SkipTestTypes = d.Classifier.SkipTestTypes
	}
	if out.Classifier.IgnorePatterns == nil {
		out.Classifier.IgnorePatterns = d.Classifier.IgnorePatterns
	}
	if out.Classifier.StripSuffixes == nil {
		out.Classifier.StripSuffixes = d.Classifier.StripSuffixes
	}
	if out.Workers == 0 {
		out.Workers = d.Workers
	}

	return &out
}

// ClassifyOptions returns the classifier options for collections.
func (c *Config) ClassifyOptions() classify.Options {
	known := c.KnownBranches
	if c.DevelopmentBranch != "" && !slices.Contains(known, c.DevelopmentBranch) {
		known = append([]string{c.DevelopmentBranch}, known...)
	}
	return classify.Options{
		DevelopmentBranch: c.DevelopmentBranch,
		KnownBranches:     known,
		SkipTestTypes:     c.Classifier.SkipTestTypes,
		IgnorePatterns:    c.Classifier.IgnorePatterns,
		StripSuffixes:     c.Classifier.StripSuffixes,
	}
}

// ExtractOptions returns the pipeline extraction options.
func (c *Config) ExtractOptions() pipeline.ExtractOptions {
	return pipeline.ExtractOptions{
		MatrixTemplate:   c.Templates.Matrix,
		CoverageTemplate: c.Templates.Coverage,
		SkipStages:       c.SkipStages,
	}
}
