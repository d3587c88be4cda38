// Package audit runs the extract, classify and reconcile pipeline over a set
// of discovered projects.
package audit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azp-tools/matrix/internal/classify"
	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/pipeline"
	"github.com/azp-tools/matrix/internal/platform"
	"github.com/azp-tools/matrix/internal/reconcile"
	"github.com/azp-tools/matrix/internal/workspace"
)

// DefaultWorkers is the default number of projects audited concurrently.
const DefaultWorkers = 4

// Options configures an Auditor.
type Options struct {
	Registry *platform.Registry
	Extract  pipeline.ExtractOptions

	// Classify is used for collections. The core project gets a copy with
	// CoreProject set.
	Classify classify.Options

	// Workers bounds concurrency. Values below 1 mean 1.
	Workers int

	// ContinueOnError records per-project failures in the results instead of
	// stopping at the first one.
	ContinueOnError bool
}

// Result is the outcome of one project/branch.
type Result struct {
	Ref      workspace.ProjectRef
	Pipeline string

	Report *reconcile.Report

	// Targets is the number of raw targets extracted; Classified and Skipped
	// split them by outcome.
	Targets    int
	Classified int
	Skipped    int

	// Warnings are branch/stage mismatches.
	Warnings []string

	// Err is set for a failed project when ContinueOnError is on.
	Err error

	Duration time.Duration
}

// Failed reports whether the project failed.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Auditor audits projects against a registry. It is safe for concurrent use.
type Auditor struct {
	opts       Options
	collection *classify.Classifier
	core       *classify.Classifier
}

// New validates opts and builds an Auditor.
func New(opts Options) (*Auditor, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("audit: platform registry is required")
	}
	if err := opts.Extract.Validate(); err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	collOpts := opts.Classify
	collOpts.CoreProject = false
	collection, err := classify.New(collOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	coreOpts := opts.Classify
	coreOpts.CoreProject = true
	core, err := classify.New(coreOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Auditor{opts: opts, collection: collection, core: core}, nil
}

// AuditProject reconciles one parsed pipeline definition. Errors are
// returned as *ProjectError.
func (a *Auditor) AuditProject(p workspace.Project, def *pipeline.Definition) (*Result, error) {
	start := time.Now()
	log := output.ProjectLogger(p.Ref.String())
	res := &Result{Ref: p.Ref, Pipeline: p.Pipeline}

	targets, err := pipeline.Extract(def, a.opts.Extract)
	if err != nil {
		return nil, &ProjectError{Ref: p.Ref, Path: p.Pipeline, Err: err}
	}
	res.Targets = len(targets)

	classifier := a.collection
	if p.Core {
		classifier = a.core
	}
	found, err := classifier.ClassifyAll(targets)
	if err != nil {
		return nil, &ProjectError{Ref: p.Ref, Path: p.Pipeline, Err: err}
	}
	res.Classified = found.Classified
	res.Skipped = found.Skipped
	res.Warnings = found.Warnings
	for _, w := range found.Warnings {
		log.Warn(w)
	}

	report, err := reconcile.Reconcile(found.Platforms, a.opts.Registry)
	if err != nil {
		return nil, &ProjectError{Ref: p.Ref, Path: p.Pipeline, Err: err}
	}
	res.Report = report
	res.Duration = time.Since(start)

	log.Debug("reconciled",
		"targets", res.Targets,
		"platforms", found.Platforms.Len(),
		"skipped", res.Skipped,
		"status", report.Status,
		"duration", res.Duration,
	)
	return res, nil
}

// Run loads and audits every project with at most Workers in flight. Results
// keep the input order.
//
// Without ContinueOnError the first failure cancels outstanding work and is
// returned. With it, failures are recorded in Result.Err and Run returns an
// error wrapping ErrAudit once all projects are done.
func (a *Auditor) Run(ctx context.Context, projects []workspace.Project) ([]Result, error) {
	results := make([]Result, len(projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Workers)

	for i, p := range projects {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := a.loadAndAudit(p)
			if err != nil {
				if !a.opts.ContinueOnError {
					return err
				}
				output.ProjectLogger(p.Ref.String()).Error("audit failed", "err", err)
				results[i] = Result{Ref: p.Ref, Pipeline: p.Pipeline, Err: err}
				return nil
			}
			results[i] = *res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	failed := 0
	for i := range results {
		if results[i].Failed() {
			failed++
		}
	}
	if failed > 0 {
		return results, fmt.Errorf("%w: %d of %d projects failed", oerrors.ErrAudit, failed, len(results))
	}
	return results, nil
}

func (a *Auditor) loadAndAudit(p workspace.Project) (*Result, error) {
	def, err := pipeline.Load(p.Pipeline)
	if err != nil {
		return nil, &ProjectError{Ref: p.Ref, Path: p.Pipeline, Err: err}
	}
	return a.AuditProject(p, def)
}

// ProjectError is a fatal error for one project/branch.
type ProjectError struct {
	Ref  workspace.ProjectRef
	Path string
	Err  error
}

func (e *ProjectError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%s): %v", e.Ref, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Ref, e.Err)
}

// Unwrap matches both ErrAudit and the underlying cause.
func (e *ProjectError) Unwrap() []error {
	return []error{oerrors.ErrAudit, e.Err}
}

// Summary counts results by status.
type Summary struct {
	Total   int
	Skipped int
	Current int
	Update  int
	Failed  int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for i := range results {
		r := &results[i]
		switch {
		case r.Failed():
			s.Failed++
		case r.Report == nil:
		case r.Report.Status == reconcile.StatusSkipped:
			s.Skipped++
		case r.Report.Status == reconcile.StatusCurrent:
			s.Current++
		default:
			s.Update++
		}
	}
	return s
}
