package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/version"
)

// NewVersionCmd creates the version command.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Show azp-matrix version information.

Displays:
  - azp-matrix version, commit, and build date
  - CUE SDK version (embedded in CLI)`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(c.OutOrStdout(), version.Get().String())
			return err
		},
	}
}
