package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/sanity"
	"github.com/azp-tools/matrix/internal/workspace"
)

type sanityOptions struct {
	check      bool
	tests      []string
	executable string
	projects   []string
}

// NewSanityCmd creates the sanity command.
func NewSanityCmd(cfg *GlobalConfig) *cobra.Command {
	opts := &sanityOptions{}

	c := &cobra.Command{
		Use:   "sanity",
		Short: "Run sanity tests in every collection checkout",
		Long: `Run "ansible-test sanity --docker -v" in every collection checkout on
its main or master branch.

Examples:
  # Run all sanity tests, continuing past failures
  azp-matrix sanity

  # Run one sanity test and stop at the first failing collection
  azp-matrix sanity --check --test pep8`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runSanity(c.Context(), c.OutOrStdout(), c.ErrOrStderr(), cfg, opts)
		},
	}

	c.Flags().BoolVar(&opts.check, "check", false, "Stop at the first failing collection")
	c.Flags().StringArrayVar(&opts.tests, "test", nil, "Only run this sanity test (repeatable)")
	c.Flags().StringVar(&opts.executable, "ansible-test", sanity.DefaultExecutable, "Test runner executable")
	c.Flags().StringArrayVar(&opts.projects, "project", nil, "Only test this namespace/name (repeatable)")

	return c
}

func runSanity(ctx context.Context, stdout, stderr io.Writer, cfg *GlobalConfig, opts *sanityOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	settings, err := cfg.Settings()
	if err != nil {
		return err
	}

	projects, err := workspace.Discover(settings.Config.ReposDir, workspace.Options{
		CollectionBranches: sanity.DefaultBranches,
	})
	if err != nil {
		return err
	}
	projects, err = filterProjects(projects, opts.projects, nil)
	if err != nil {
		return err
	}

	failures, err := sanity.Run(ctx, projects, sanity.Options{
		Executable: opts.executable,
		Tests:      opts.tests,
		Check:      opts.check,
		Stdout:     stdout,
		Stderr:     stderr,
	})
	if err != nil {
		return err
	}

	if len(failures) > 0 {
		output.Warn(fmt.Sprintf("sanity tests failed in %d of %d collections", len(failures), len(projects)))
		return nil
	}
	output.Info(output.FormatCheckmark(fmt.Sprintf("sanity tests passed in %d collections", len(projects))))
	return nil
}
