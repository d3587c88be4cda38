package cmd

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/audit"
	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/report"
	"github.com/azp-tools/matrix/internal/workspace"
)

// checkOptions holds the flags for the check command.
type checkOptions struct {
	output    string
	noHeader  bool
	keepGoing bool
	workers   int
	projects  []string
	branches  []string

	workersSet bool
}

// NewCheckCmd creates the check command.
func NewCheckCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &checkOptions{}

	c := &cobra.Command{
		Use:   "check",
		Short: "Audit pipeline test matrices",
		Long: `Audit the pipeline test matrix of every checked-out project.

For each collection branch and the core project's development branch, the
pipeline definition is read, its test targets are classified, and the
platforms found are reconciled against the platform registry.

Examples:
  # Audit everything under the repos directory
  azp-matrix check

  # Audit one collection, as a table
  azp-matrix check --project community/general -o table

  # Report every project even if some fail
  azp-matrix check --keep-going -o json`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			opts.workersSet = c.Flags().Changed("workers")
			return runCheck(c.Context(), c.OutOrStdout(), cfg, opts)
		},
	}

	c.Flags().StringVarP(&opts.output, "output", "o", string(output.FormatMarkdown),
		fmt.Sprintf("Output format: %v", output.ValidFormats()))
	c.Flags().BoolVar(&opts.noHeader, "no-header", false, "Omit the explanatory header from markdown output")
	c.Flags().BoolVar(&opts.keepGoing, "keep-going", false, "Report failed projects instead of stopping at the first one (env: AZP_MATRIX_CONTINUE_ON_ERROR)")
	c.Flags().IntVar(&opts.workers, "workers", audit.DefaultWorkers, "Number of projects audited concurrently (env: AZP_MATRIX_WORKERS)")
	c.Flags().StringArrayVar(&opts.projects, "project", nil, "Only audit this namespace/name (repeatable)")
	c.Flags().StringArrayVar(&opts.branches, "branch", nil, "Only audit this branch (repeatable)")

	return c
}

func runCheck(ctx context.Context, w io.Writer, cfg *GlobalConfig, opts *checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	format, err := output.ParseFormat(opts.output)
	if err != nil {
		return err
	}

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	c := settings.Config

	projects, err := workspace.Discover(c.ReposDir, workspace.Options{
		CoreProject:     c.CoreProject,
		CoreBranches:    []string{c.DevelopmentBranch},
		RequirePipeline: true,
	})
	if err != nil {
		return err
	}
	projects, err = filterProjects(projects, opts.projects, opts.branches)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return oerrors.NewNotFoundError("no pipeline definitions found", c.ReposDir,
			"Check out the projects first; `azp-matrix paths --globs` shows the expected layout")
	}

	workers := c.Workers
	if opts.workersSet {
		workers = opts.workers
	}

	auditor, err := audit.New(audit.Options{
		Registry:        reg,
		Extract:         c.ExtractOptions(),
		Classify:        c.ClassifyOptions(),
		Workers:         workers,
		ContinueOnError: c.ContinueOnError || opts.keepGoing,
	})
	if err != nil {
		return err
	}

	output.Debug("auditing", "projects", len(projects), "workers", workers, "registry", reg.Len())

	var results []audit.Result
	runErr := output.RunWithSpinner(ctx, fmt.Sprintf("Auditing %d projects", len(projects)),
		func(ctx context.Context) error {
			var err error
			results, err = auditor.Run(ctx, projects)
			return err
		})
	if results == nil {
		return runErr
	}

	if err := report.Render(w, results, report.Options{
		Format:            format,
		Header:            !opts.noHeader,
		DevelopmentBranch: c.DevelopmentBranch,
	}); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	s := audit.Summarize(results)
	output.Info(output.StyleSummary.Render(fmt.Sprintf("Audited %d projects", s.Total)),
		"update", s.Update, "current", s.Current, "skipped", s.Skipped, "failed", s.Failed)

	return runErr
}

// filterProjects keeps the projects named by names ("ns/name" or "ns.name")
// and branches. Empty filters keep everything. A name that matches no
// discovered project is an error.
func filterProjects(projects []workspace.Project, names, branches []string) ([]workspace.Project, error) {
	type key struct{ namespace, name string }

	wanted := make(map[key]bool, len(names))
	for _, n := range names {
		namespace, name, err := workspace.ParseName(n)
		if err != nil {
			return nil, err
		}
		wanted[key{namespace, name}] = false
	}

	var out []workspace.Project
	for _, p := range projects {
		k := key{p.Ref.Namespace, p.Ref.Name}
		if len(wanted) > 0 {
			if _, ok := wanted[k]; !ok {
				continue
			}
			wanted[k] = true
		}
		if len(branches) > 0 && !slices.Contains(branches, p.Ref.Branch) {
			continue
		}
		out = append(out, p)
	}

	for _, n := range names {
		namespace, name, _ := workspace.ParseName(n)
		if !wanted[key{namespace, name}] {
			return nil, oerrors.NewNotFoundError("project not found", n,
				"Run `azp-matrix paths` to list the discovered projects")
		}
	}
	return out, nil
}
