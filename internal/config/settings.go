package config

import (
	"fmt"

	oerrors "github.com/azp-tools/matrix/internal/errors"
)

// LoadOptions carries the global flag values that take part in resolution.
type LoadOptions struct {
	ConfigFlag       string
	ReposDirFlag     string
	RegistryFileFlag string
}

// Settings is the fully resolved CLI configuration.
type Settings struct {
	// Config has defaults applied and ReposDir / RegistryFile replaced by
	// their resolved, expanded values.
	Config *Config

	ConfigPath   ResolvedValue
	ReposDir     ResolvedValue
	RegistryFile ResolvedValue
}

// Load resolves the config path, loads and validates the file, overlays the
// environment and resolves reposDir and registryFile.
func Load(opts LoadOptions) (*Settings, error) {
	configPath, err := ResolveConfigPath(opts.ConfigFlag)
	if err != nil {
		return nil, fmt.Errorf("%w: resolving config path: %w", oerrors.ErrConfig, err)
	}

	if configPath.Source != SourceDefault {
		exists, err := FileExists(configPath.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", oerrors.ErrConfig, err)
		}
		if !exists {
			return nil, oerrors.NewNotFoundError("config file not found", configPath.Value,
				fmt.Sprintf("Set by %s; create it with: azp-matrix config init", configPath.Source))
		}
	}

	cfg, err := NewLoader().Load(configPath.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", oerrors.ErrConfig, err)
	}

	reposDir := Resolve(ResolveOptions{
		Key:          "reposDir",
		FlagValue:    opts.ReposDirFlag,
		EnvVar:       EnvReposDir,
		ConfigValue:  cfg.ReposDir,
		DefaultValue: DefaultReposDir,
	})
	if reposDir.Value, err = ExpandPath(reposDir.Value); err != nil {
		return nil, fmt.Errorf("%w: expanding reposDir: %w", oerrors.ErrConfig, err)
	}

	registryFile := Resolve(ResolveOptions{
		Key:         "registryFile",
		FlagValue:   opts.RegistryFileFlag,
		EnvVar:      EnvRegistryFile,
		ConfigValue: cfg.RegistryFile,
	})
	if registryFile.Value, err = ExpandPath(registryFile.Value); err != nil {
		return nil, fmt.Errorf("%w: expanding registryFile: %w", oerrors.ErrConfig, err)
	}

	merged := cfg.WithDefaults()
	merged.ReposDir = reposDir.Value
	merged.RegistryFile = registryFile.Value

	return &Settings{
		Config:       merged,
		ConfigPath:   configPath,
		ReposDir:     reposDir,
		RegistryFile: registryFile,
	}, nil
}

// LogResolved logs where each resolved value came from.
func (s *Settings) LogResolved() {
	LogResolvedValues(s.ConfigPath, s.ReposDir, s.RegistryFile)
}
