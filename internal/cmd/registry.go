package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	oerrors "github.com/azp-tools/matrix/internal/errors"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/platform"
)

// NewRegistryCmd creates the registry command group.
func NewRegistryCmd(cfg *GlobalConfig) *cobra.Command {
	c := &cobra.Command{
		Use:   "registry",
		Short: "Inspect the platform registry",
		Long: `Inspect the platform registry: the expected, deprecated and special
platforms pipelines are reconciled against.

The registry is built in unless registryFile is configured or
--registry-file is passed.`,
	}

	c.AddCommand(newRegistryShowCmd(cfg))
	c.AddCommand(newRegistryVetCmd(cfg))

	return c
}

func newRegistryShowCmd(cfg *GlobalConfig) *cobra.Command {
	var (
		format string
		raw    bool
	)

	c := &cobra.Command{
		Use:   "show",
		Short: "Show the platform registry",
		Long: `Show every registry entry with its group, table, kind and replacement.

--raw prints the built-in registry source, a starting point for a custom
registry file.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			if raw {
				_, err := c.OutOrStdout().Write(platform.DefaultYAML())
				return err
			}
			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			return writeRecords(c.OutOrStdout(), reg.Records(), format)
		},
	}

	c.Flags().StringVarP(&format, "output", "o", string(output.FormatTable), "Output format: table, json, yaml")
	c.Flags().BoolVar(&raw, "raw", false, "Print the built-in registry source")

	return c
}

func writeRecords(w io.Writer, records []platform.Record, format string) error {
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	switch f {
	case output.FormatTable:
		tbl := output.NewTable("PLATFORM", "GROUP", "TABLE", "KIND", "REPLACEMENT")
		for _, r := range records {
			tbl.Row(string(r.ID), string(r.Group), r.Table, string(r.Kind), string(r.Replacement))
		}
		_, err := fmt.Fprintln(w, tbl.String())
		return err
	case output.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	case output.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format %q for registry show", f)
	}
}

func newRegistryVetCmd(cfg *GlobalConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "vet [file]",
		Short: "Validate a platform registry file",
		Long: `Validate a platform registry file against the registry schema and the
cross-table rules: every platform appears in one table only, and every
replacement is an expected platform.

Without an argument the configured registry is validated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			} else {
				settings, err := cfg.Settings()
				if err != nil {
					return err
				}
				path = settings.Config.RegistryFile
			}
			return runRegistryVet(c.OutOrStdout(), c.ErrOrStderr(), path)
		},
	}
}

func runRegistryVet(stdout, stderr io.Writer, path string) error {
	location := path
	if location == "" {
		location = platform.DefaultLocation
	}

	reg, err := platform.Load(path)
	if err != nil {
		fmt.Fprintln(stderr, "Error: registry validation failed")
		fmt.Fprintf(stderr, "  File: %s\n\n", location)
		fmt.Fprintln(stderr, err)
		code := oerrors.ExitCodeFromError(err)
		if code == oerrors.ExitGeneralError {
			code = oerrors.ExitValidationError
		}
		return &oerrors.ExitError{Err: err, Code: code, Printed: true}
	}

	fmt.Fprintln(stdout, output.FormatCheckmark(
		fmt.Sprintf("Registry is valid: %s (%d platforms)", location, reg.Len())))
	return nil
}
