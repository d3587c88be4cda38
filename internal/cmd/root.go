// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/azp-tools/matrix/internal/config"
	"github.com/azp-tools/matrix/internal/output"
	"github.com/azp-tools/matrix/internal/platform"
)

// GlobalConfig holds CLI-wide flags and the configuration resolved during
// PersistentPreRunE. It is passed explicitly into every sub-command
// constructor.
type GlobalConfig struct {
	ConfigFlag       string
	ReposDirFlag     string
	RegistryFileFlag string
	Verbose          bool
	Timestamps       bool

	settings *config.Settings
	loadErr  error
}

// Settings returns the resolved configuration, or the error that loading it
// produced. Commands that need no configuration never call it, so an invalid
// config file does not block `config vet` or `config init`.
func (g *GlobalConfig) Settings() (*config.Settings, error) {
	if g.settings == nil && g.loadErr == nil {
		g.load()
	}
	return g.settings, g.loadErr
}

// Registry loads the configured platform registry.
func (g *GlobalConfig) Registry() (*platform.Registry, error) {
	settings, err := g.Settings()
	if err != nil {
		return nil, err
	}
	return platform.Load(settings.Config.RegistryFile)
}

func (g *GlobalConfig) load() {
	g.settings, g.loadErr = config.Load(config.LoadOptions{
		ConfigFlag:       g.ConfigFlag,
		ReposDirFlag:     g.ReposDirFlag,
		RegistryFileFlag: g.RegistryFileFlag,
	})
}

// NewRootCmd creates the root command for the azp-matrix CLI.
func NewRootCmd() *cobra.Command {
	cfg := &GlobalConfig{}

	rootCmd := &cobra.Command{
		Use:   "azp-matrix",
		Short: "Audit CI test matrices against the supported platform list",
		Long: `azp-matrix reads the Azure Pipelines definitions of locally checked-out
collections and the core project, extracts the platforms each one tests on
its development branch, and reports which platforms to remove, replace, add
or consider.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd, cfg)
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ConfigFlag, "config", "", "Path to config file (env: AZP_MATRIX_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&cfg.ReposDirFlag, "repos-dir", "", "Root of the checked-out repositories (env: AZP_MATRIX_REPOS_DIR)")
	rootCmd.PersistentFlags().StringVar(&cfg.RegistryFileFlag, "registry-file", "", "Platform registry file (env: AZP_MATRIX_REGISTRY_FILE)")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.Timestamps, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewCheckCmd(cfg))
	rootCmd.AddCommand(NewClassifyCmd(cfg))
	rootCmd.AddCommand(NewPathsCmd(cfg))
	rootCmd.AddCommand(NewSanityCmd(cfg))
	rootCmd.AddCommand(NewRegistryCmd(cfg))
	rootCmd.AddCommand(NewConfigCmd(cfg))
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals loads the environment and configuration, then sets up logging.
func initializeGlobals(cmd *cobra.Command, cfg *GlobalConfig) error {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg.load()

	logCfg := output.LogConfig{
		Verbose: cfg.Verbose,
	}

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(cfg.Timestamps)
	} else if cfg.settings != nil && cfg.settings.Config.Log.Timestamps != nil {
		logCfg.Timestamps = cfg.settings.Config.Log.Timestamps
	}

	output.SetupLogging(logCfg)

	if cfg.loadErr != nil {
		// Don't fail here; commands that need the config report it.
		output.Debug("config load error", "error", cfg.loadErr)
		return nil
	}
	cfg.settings.LogResolved()

	return nil
}
