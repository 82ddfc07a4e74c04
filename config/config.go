// Package config handles YAML config file loading for the host.
//
// Every value is optional. With no file at all the host speaks the bare
// protocol: stderr logging at info, the default payload limit, no mirror.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/pithecene-io/ccshost/log"
)

// EnvConfigPath names the environment variable consulted when --config is
// not given. Browsers launch the host without flags, so this is the usual
// way to point it at a file.
const EnvConfigPath = "CCSHOST_CONFIG"

// DefaultMirrorTimeout bounds a single mirror write.
const DefaultMirrorTimeout = 10 * time.Second

// Mirror backend names.
const (
	MirrorBackendNone = ""
	MirrorBackendFS   = "fs"
	MirrorBackendS3   = "s3"
)

// Config represents a ccshost.yaml configuration file.
type Config struct {
	Log             LogConfig    `yaml:"log"`
	MaxPayloadBytes int64        `yaml:"max_payload_bytes"`
	Mirror          MirrorConfig `yaml:"mirror"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is debug, info, warn or error. Empty means info.
	Level string `yaml:"level"`
	// File, when set, receives log output instead of stderr.
	File string `yaml:"file"`
}

// MirrorConfig holds the optional secondary store for saved files.
type MirrorConfig struct {
	Backend     string   `yaml:"backend"`
	Path        string   `yaml:"path"`
	Region      string   `yaml:"region"`
	Endpoint    string   `yaml:"endpoint"`
	S3PathStyle bool     `yaml:"s3_path_style"`
	Timeout     Duration `yaml:"timeout,omitempty"`
}

// Enabled reports whether a mirror backend is configured.
func (m MirrorConfig) Enabled() bool {
	return m.Backend != MirrorBackendNone
}

// EffectiveTimeout returns the configured timeout or DefaultMirrorTimeout.
func (m MirrorConfig) EffectiveTimeout() time.Duration {
	if m.Timeout.Duration > 0 {
		return m.Timeout.Duration
	}
	return DefaultMirrorTimeout
}

// Duration wraps time.Duration for YAML string parsing (e.g. "10s", "5m").
type Duration struct {
	time.Duration
}

// UnmarshalYAML parses a duration string like "10s" or "5m30s".
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Validate checks field values. It does not touch the filesystem or network.
func (c *Config) Validate() error {
	var errs []error

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.MaxPayloadBytes < 0 {
		errs = append(errs, fmt.Errorf("max_payload_bytes: must not be negative, got %d", c.MaxPayloadBytes))
	}
	if c.MaxPayloadBytes > int64(^uint32(0)) {
		errs = append(errs, fmt.Errorf("max_payload_bytes: exceeds the 32-bit frame length, got %d", c.MaxPayloadBytes))
	}
	if c.Mirror.Timeout.Duration < 0 {
		errs = append(errs, errors.New("mirror.timeout: must not be negative"))
	}

	switch c.Mirror.Backend {
	case MirrorBackendNone:
	case MirrorBackendFS, MirrorBackendS3:
		if c.Mirror.Path == "" {
			errs = append(errs, fmt.Errorf("mirror.path: required for backend %q", c.Mirror.Backend))
		}
	default:
		errs = append(errs, fmt.Errorf("mirror.backend: unknown backend %q (want fs or s3)", c.Mirror.Backend))
	}

	return errors.Join(errs...)
}
