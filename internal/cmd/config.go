package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/config"
	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/output"
)

// NewConfigCmd creates the config command group.
func NewConfigCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
		Long:  `Commands for managing the azp-matrix configuration file.`,
	}

	c.AddCommand(newConfigInitCmd(cfg))
	c.AddCommand(newConfigVetCmd(cfg))

	return c
}

func newConfigInitCmd(cfg *GlobalConfig) *cobra.Command {
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write the default configuration",
		Long: `Write the default configuration file.

The file goes to the resolved config path:
  --config flag > AZP_MATRIX_CONFIG env > ~/.config/azp-matrix/config.yaml

Examples:
  # Initialize configuration
  azp-matrix config init

  # Overwrite existing configuration
  azp-matrix config init --force`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path, err := config.ResolveConfigPath(cfg.ConfigFlag)
			if err != nil {
				return oerrors.Wrap(oerrors.ErrNotFound, "could not determine home directory")
			}
			if err := config.WriteDefault(path.Value, force); err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), output.FormatCheckmark("Configuration written to "+path.Value))
			return nil
		},
	}

	c.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return c
}

func newConfigVetCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet",
		Short: "Validate the configuration file",
		Long: `Validate the configuration file against the internal schema.

The config path is resolved using precedence:
  --config flag > AZP_MATRIX_CONFIG env > ~/.config/azp-matrix/config.yaml`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			path, err := config.ResolveConfigPath(cfg.ConfigFlag)
			if err != nil {
				return fmt.Errorf("resolving config path: %w", err)
			}
			expanded, err := config.ExpandPath(path.Value)
			if err != nil {
				return fmt.Errorf("expanding config path: %w", err)
			}

			exists, err := config.FileExists(expanded)
			if err != nil {
				return fmt.Errorf("checking config file: %w", err)
			}
			if !exists {
				return oerrors.NewExitError(
					fmt.Errorf("config file not found: %s", expanded),
					oerrors.ExitNotFound,
				)
			}

			validator, err := config.NewValidator()
			if err != nil {
				return fmt.Errorf("creating validator: %w", err)
			}

			if err := validator.ValidateFile(expanded); err != nil {
				var validationErrs config.ValidationErrors
				if errors.As(err, &validationErrs) {
					fmt.Fprintln(c.ErrOrStderr(), "Error: config validation failed")
					fmt.Fprintf(c.ErrOrStderr(), "  File: %s\n\n", expanded)
					for _, e := range validationErrs {
						fmt.Fprintf(c.ErrOrStderr(), "  %s: %s\n", e.Field, e.Message)
					}
					return &oerrors.ExitError{Err: err, Code: oerrors.ExitValidationError, Printed: true}
				}
				return fmt.Errorf("validating config: %w", err)
			}

			fmt.Fprintf(c.OutOrStdout(), "Config file is valid: %s\n", expanded)
			return nil
		},
	}
}
