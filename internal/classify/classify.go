// Package classify turns raw matrix test strings into platform ids.
package classify

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"unicode"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/azp-tools/matrix/internal/pipeline"
	"github.com/azp-tools/matrix/internal/platform"
)

// DefaultDevelopmentBranch is the ansible-core branch the audit targets.
const DefaultDevelopmentBranch = "devel"

// integrationMarker is an optional leading token on integration targets.
const integrationMarker = "i"

// Options configures a Classifier.
type Options struct {
	// CoreProject is set when auditing the core project itself; its targets
	// carry no branch segment and always belong to the development branch.
	CoreProject bool

	// DevelopmentBranch is the only branch whose targets are classified.
	DevelopmentBranch string

	// KnownBranches are the valid leading branch segments of collection targets.
	KnownBranches []string

	// SkipTestTypes are test types that never name a platform.
	SkipTestTypes []string

	// IgnorePatterns are glob patterns for other known non-platform tokens.
	IgnorePatterns []string

	// StripSuffixes are variant tags removed from the end of a platform id.
	// At most one suffix is removed.
	StripSuffixes []string
}

// DefaultOptions returns the options for collection pipelines.
func DefaultOptions() Options {
	return Options{
		DevelopmentBranch: DefaultDevelopmentBranch,
		KnownBranches: []string{
			"devel",
			"2.9", "2.10", "2.11", "2.12", "2.13", "2.14",
			"2.15", "2.16", "2.17", "2.18", "2.19", "2.20",
		},
		SkipTestTypes: []string{
			"sanity", "units", "unit",
			"aws", "azure", "cloud", "hcloud",
			"generic", "windows", "galaxy", "network", "extra",
		},
		IgnorePatterns: []string{"*lint*"},
		StripSuffixes:  []string{"-pypi-latest"},
	}
}

// Outcome is the kind of classification result.
type Outcome int

const (
	// OutcomeSkip means the target is irrelevant to the reconciliation.
	OutcomeSkip Outcome = iota
	// OutcomePlatform means a platform id was extracted.
	OutcomePlatform
)

func (o Outcome) String() string {
	if o == OutcomePlatform {
		return "platform"
	}
	return "skip"
}

// Result is the classification of one raw target.
type Result struct {
	Target   pipeline.RawTarget
	Branch   string
	Outcome  Outcome
	Family   Family
	Platform platform.ID

	// SkipReason explains an OutcomeSkip.
	SkipReason string

	// Warning is set when the stage name references a different branch than
	// the target. It never fails classification.
	Warning string
}

// Classifier classifies raw targets. It is immutable and safe for concurrent use.
type Classifier struct {
	opts      Options
	known     sets.Set[string]
	skipTypes sets.Set[string]
}

// New validates opts and creates a Classifier.
func New(opts Options) (*Classifier, error) {
	if opts.DevelopmentBranch == "" {
		return nil, fmt.Errorf("development branch must be set")
	}
	for _, p := range opts.IgnorePatterns {
		if _, err := path.Match(p, ""); err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", p, err)
		}
	}

	return &Classifier{
		opts:      opts,
		known:     sets.New(opts.KnownBranches...),
		skipTypes: sets.New(opts.SkipTestTypes...),
	}, nil
}

// Options returns the options the classifier was built with.
func (c *Classifier) Options() Options {
	return c.opts
}

// Classify parses one raw target into a branch and a platform id, or a skip.
func (c *Classifier) Classify(target pipeline.RawTarget) (Result, error) {
	res := Result{Target: target}

	test, _, _ := strings.Cut(target.Test, "@")
	parts := strings.Split(test, "/")

	var testParts []string
	if c.opts.CoreProject {
		res.Branch = c.opts.DevelopmentBranch
		testParts = parts
	} else {
		if !c.known.Has(parts[0]) {
			return res, &UnexpectedBranchError{
				Test:   target.Test,
				Branch: parts[0],
				Known:  slices.Clone(c.opts.KnownBranches),
			}
		}
		res.Branch = parts[0]
		testParts = parts[1:]
	}

	res.Warning = c.checkStage(target.Stage, res.Branch)

	if res.Branch != c.opts.DevelopmentBranch {
		res.SkipReason = fmt.Sprintf("branch %s", res.Branch)
		return res, nil
	}

	if len(testParts) > 0 && testParts[0] == integrationMarker {
		testParts = testParts[1:]
	}
	if len(testParts) == 0 || testParts[0] == "" {
		return res, &TestNameNotExtractedError{Test: target.Test}
	}

	testType := testParts[0]
	if c.skipTypes.Has(testType) {
		res.SkipReason = fmt.Sprintf("test type %s", testType)
		return res, nil
	}

	family, ok := ParseFamily(testType)
	if !ok {
		if c.ignored(testType) {
			res.SkipReason = fmt.Sprintf("ignored %s", testType)
			return res, nil
		}
		return res, &TestNameNotExtractedError{Test: target.Test, Token: testType}
	}
	if len(testParts) < 2 || testParts[1] == "" {
		return res, &TestNameNotExtractedError{Test: target.Test, Token: testType}
	}

	res.Outcome = OutcomePlatform
	res.Family = family
	res.Platform = c.normalize(family.PlatformID(testParts[1]))
	return res, nil
}

// Found is the deduplicated platform set of one project/branch.
type Found struct {
	Platforms sets.Set[platform.ID]

	// Warnings are the distinct branch/stage mismatch warnings, in first-seen order.
	Warnings []string

	// Classified counts targets that yielded a platform; Skipped the rest.
	Classified int
	Skipped    int
}

// ClassifyAll classifies every target and stops at the first error.
func (c *Classifier) ClassifyAll(targets []pipeline.RawTarget) (*Found, error) {
	found := &Found{Platforms: sets.New[platform.ID]()}
	seenWarnings := sets.New[string]()

	for _, t := range targets {
		res, err := c.Classify(t)
		if err != nil {
			return nil, err
		}
		if res.Warning != "" && !seenWarnings.Has(res.Warning) {
			seenWarnings.Insert(res.Warning)
			found.Warnings = append(found.Warnings, res.Warning)
		}
		if res.Outcome == OutcomePlatform {
			found.Platforms.Insert(res.Platform)
			found.Classified++
		} else {
			found.Skipped++
		}
	}

	return found, nil
}

// checkStage returns a warning when the stage name references a known branch
// but not the target's branch.
func (c *Classifier) checkStage(stage, branch string) string {
	tokens := stageTokens(stage)
	if len(tokens) == 0 || !tokens.HasAny(c.opts.KnownBranches...) {
		return ""
	}
	if tokens.Has(branch) {
		return ""
	}
	return fmt.Sprintf("stage %q does not match branch %q", stage, branch)
}

func (c *Classifier) ignored(token string) bool {
	for _, p := range c.opts.IgnorePatterns {
		if ok, _ := path.Match(p, token); ok {
			return true
		}
	}
	return false
}

func (c *Classifier) normalize(id platform.ID) platform.ID {
	s := string(id)
	for _, suffix := range c.opts.StripSuffixes {
		if suffix != "" && len(s) > len(suffix) && strings.HasSuffix(s, suffix) {
			return platform.ID(strings.TrimSuffix(s, suffix))
		}
	}
	return id
}

// stageTokens splits a stage name into words. Dots and dashes stay inside a
// word so "2.14" is one token; underscores separate words as in stage ids
// like "Remote_2.14".
func stageTokens(stage string) sets.Set[string] {
	words := strings.FieldsFunc(stage, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-'
	})
	return sets.New(words...)
}
