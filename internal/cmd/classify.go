package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/classify"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/pipeline"
	"github.com/azp-tools/matrix/internal/platform"
	"github.com/azp-tools/matrix/internal/workspace"
)

type classifyOptions struct {
	project string
	stage   string
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &classifyOptions{}

	c := &cobra.Command{
		Use:   "classify <target>...",
		Short: "Classify raw test targets",
		Long: `Classify raw test target strings the way check does and show the
platform each one maps to and its registry table.

Collection targets start with a branch segment; pass the core project with
--project to classify targets without one.

Examples:
  azp-matrix classify devel/rhel/9.1 2.14/freebsd/13.2
  azp-matrix classify --project ansible/ansible linux/fedora37/1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runClassify(c.OutOrStdout(), cfg, opts, args)
		},
	}

	c.Flags().StringVar(&opts.project, "project", "", "Project the targets belong to (namespace/name)")
	c.Flags().StringVar(&opts.stage, "stage", "", "Stage name the targets appear in")

	return c
}

func runClassify(w io.Writer, cfg *GlobalConfig, opts *classifyOptions, targets []string) error {
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	reg, err := cfg.Registry()
	if err != nil {
		return err
	}

	clsOpts := settings.Config.ClassifyOptions()
	if opts.project != "" {
		core, err := sameProject(opts.project, settings.Config.CoreProject)
		if err != nil {
			return err
		}
		clsOpts.CoreProject = core
	}

	classifier, err := classify.New(clsOpts)
	if err != nil {
		return err
	}

	effective := classifier.Options()
	output.Debug("classifying", "targets", len(targets), "core", effective.CoreProject,
		"developmentBranch", effective.DevelopmentBranch, "knownBranches", effective.KnownBranches)

	tbl := output.NewTable("TARGET", "BRANCH", "OUTCOME", "PLATFORM", "TABLE", "NOTE").StatusColumn(2)
	var failed []error
	for _, t := range targets {
		res, err := classifier.Classify(pipeline.RawTarget{Test: t, Stage: opts.stage})
		if err != nil {
			failed = append(failed, err)
			tbl.Row(t, res.Branch, output.StatusError, "", "", err.Error())
			continue
		}

		note := res.SkipReason
		if res.Branch != "" && res.Branch != effective.DevelopmentBranch {
			note = fmt.Sprintf("%s (only %s is audited)", note, effective.DevelopmentBranch)
		}
		if res.Warning != "" {
			note = res.Warning
		}
		if res.Outcome != classify.OutcomePlatform {
			tbl.Row(t, res.Branch, res.Outcome.String(), "", "", note)
			continue
		}

		_, membership := reg.Lookup(res.Platform)
		if membership == platform.Deprecated {
			if to, ok := reg.Replacement(res.Platform); ok {
				note = fmt.Sprintf("replace with %s", to)
			}
		}
		tbl.Row(t, res.Branch, res.Outcome.String(), string(res.Platform), membership.String(), note)
	}

	if _, err := fmt.Fprintln(w, tbl.String()); err != nil {
		return err
	}

	if len(failed) > 0 {
		return fmt.Errorf("%d of %d targets could not be classified: %w",
			len(failed), len(targets), errors.Join(failed...))
	}
	return nil
}

// sameProject reports whether two project names refer to the same project.
func sameProject(a, b string) (bool, error) {
	ans, an, err := workspace.ParseName(a)
	if err != nil {
		return false, err
	}
	bns, bn, err := workspace.ParseName(b)
	if err != nil {
		return false, err
	}
	return ans == bns && an == bn, nil
}
