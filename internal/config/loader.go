package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader reads the config file and overlays environment variables.
//
// reposDir and registryFile are not bound here; their env variables take part
// in flag > env > config > default resolution instead.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("coreProject", EnvPrefix+"_CORE_PROJECT")
	_ = v.BindEnv("developmentBranch", EnvPrefix+"_DEVELOPMENT_BRANCH")
	_ = v.BindEnv("knownBranches", EnvPrefix+"_KNOWN_BRANCHES")
	_ = v.BindEnv("workers", EnvPrefix+"_WORKERS")
	_ = v.BindEnv("continueOnError", EnvPrefix+"_CONTINUE_ON_ERROR")
	_ = v.BindEnv("log.timestamps", EnvPrefix+"_LOG_TIMESTAMPS")

	return &Loader{v: v}
}

// Load reads configFile, validates it against the schema and unmarshals it
// with environment overrides applied. A missing file is not an error; the
// returned Config then only carries environment values.
func (l *Loader) Load(configFile string) (*Config, error) {
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return nil, fmt.Errorf("expanding config path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = nil
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if len(data) > 0 {
		validator, err := NewValidator()
		if err != nil {
			return nil, err
		}
		if err := validator.ValidateBytes(data); err != nil {
			return nil, fmt.Errorf("%s: %w", expandedPath, err)
		}

		l.v.SetConfigType("yaml")
		if err := l.v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// LoadWithDefaults loads configuration and applies defaults.
func (l *Loader) LoadWithDefaults(configFile string) (*Config, error) {
	cfg, err := l.Load(configFile)
	if err != nil {
		return nil, err
	}

	return cfg.WithDefaults(), nil
}

// FileExists checks if the config file exists.
func FileExists(configFile string) (bool, error) {
	expandedPath, err := ExpandPath(configFile)
	if err != nil {
		return false, err
	}

	_, err = os.Stat(expandedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}
