package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/workspace"
)

// NewPathsCmd creates the paths command.
func NewPathsCmd(cfg *GlobalConfig) *cobra.Command {
	var globs bool

	c := &cobra.Command{
		Use:   "paths",
		Short: "List pipeline definition files",
		Long: `List the pipeline definition file of every checked-out project and
branch, one path per line.

With --globs, print the shell glob patterns instead.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runPaths(c.OutOrStdout(), cfg, globs)
		},
	}

	c.Flags().BoolVar(&globs, "globs", false, "Print glob patterns instead of paths")

	return c
}

func runPaths(w io.Writer, cfg *GlobalConfig, globs bool) error {
	settings, err := cfg.Settings()
	if err != nil {
		return err
	}
	c := settings.Config

	if globs {
		for _, g := range workspace.Globs(c.ReposDir, c.CoreProject) {
			fmt.Fprintln(w, g)
		}
		return nil
	}

	projects, err := workspace.Discover(c.ReposDir, workspace.Options{
		CoreProject:     c.CoreProject,
		RequirePipeline: true,
	})
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Fprintln(w, p.Pipeline)
	}
	return nil
}
