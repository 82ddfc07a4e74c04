package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML config file, expands environment variables, unmarshals
// it into a Config and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("cannot read config file %q: %w", path, err)
	}

	expanded := ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("invalid YAML in %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return &cfg, nil
}

// Resolve picks the config path: the explicit flag value, then the
// EnvConfigPath variable. An empty result means run with defaults.
func Resolve(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	return os.Getenv(EnvConfigPath)
}

// LoadOrDefault loads the resolved config path, or returns an empty Config
// when no path is configured.
func LoadOrDefault(flagPath string) (*Config, error) {
	path := Resolve(flagPath)
	if path == "" {
		return &Config{}, nil
	}
	return Load(path)
}
