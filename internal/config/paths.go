package config

import (
	"os"
	"path/filepath"
)

const (
	appName = "azp-matrix"

	// DefaultReposDir is where the repositories are checked out.
	DefaultReposDir = "~/.ansible/azp-tools/repos"

	// EnvPrefix prefixes every environment variable the CLI reads.
	EnvPrefix = "AZP_MATRIX"

	// EnvConfig overrides the config file location.
	EnvConfig = EnvPrefix + "_CONFIG"
)

// Paths contains standard filesystem paths for azp-matrix.
type Paths struct {
	// ConfigFile is the path to the config file (~/.config/azp-matrix/config.yaml).
	ConfigFile string

	// HomeDir is the azp-matrix config directory (~/.config/azp-matrix).
	HomeDir string
}

// DefaultPaths returns the default paths for azp-matrix.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	appHome := filepath.Join(homeDir, ".config", appName)

	return &Paths{
		ConfigFile: filepath.Join(appHome, "config.yaml"),
		HomeDir:    appHome,
	}, nil
}

// ExpandPath expands ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return homeDir, nil
	}

	// Handle ~/path/to/something
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:]), nil
	}

	// ~username is not supported, return as-is
	return path, nil
}
