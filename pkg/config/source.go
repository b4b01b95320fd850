// pkg/config/source.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrConfigFileNotFound is returned when an explicitly requested config file is missing.
var ErrConfigFileNotFound = errors.New("config file not found")

// ConfigSource represents a configuration source that can load values into koanf.
// Sources are loaded in priority order (lowest first), with higher priority sources
// overriding lower priority values.
//
// Built-in sources and their priorities:
//   - DefaultSource (10): Hardcoded default values
//   - FileSource (20): YAML config file given with --config
//   - EnvSource (30): Environment variables (IPSNIFFER_*)
//   - FlagSource (40): Command-line flags
type ConfigSource interface {
	// Name returns a human-readable name for this source (for logging/debugging)
	Name() string

	// Priority returns the load priority. Lower values are loaded first,
	// higher values override lower ones.
	Priority() int

	// Load loads configuration values into the provided koanf instance.
	Load(k *koanf.Koanf) error
}

// DefaultSource provides hardcoded default configuration values.
// Priority: 10 (lowest, loaded first)
type DefaultSource struct{}

func (s *DefaultSource) Name() string  { return "defaults" }
func (s *DefaultSource) Priority() int { return 10 }

func (s *DefaultSource) Load(k *koanf.Koanf) error {
	if err := k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil); err != nil {
		return fmt.Errorf("error loading defaults: %w", err)
	}
	return nil
}

// FileSource loads configuration from a YAML file.
// Priority: 20
type FileSource struct {
	Path string // Empty means no file was requested
}

func (s *FileSource) Name() string  { return "file:" + s.Path }
func (s *FileSource) Priority() int { return 20 }

func (s *FileSource) Load(k *koanf.Koanf) error {
	if s.Path == "" {
		return nil
	}

	if _, err := os.Stat(s.Path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigFileNotFound, s.Path)
		}
		return fmt.Errorf("error checking config file %s: %w", s.Path, err)
	}

	if err := k.Load(file.Provider(s.Path), yaml.Parser()); err != nil {
		return fmt.Errorf("error loading config file %s: %w", s.Path, err)
	}
	return nil
}

// EnvSource loads configuration from environment variables.
// Variables must carry the prefix. Underscores map to dashes so that keys
// line up with flag names:
//
//	IPSNIFFER_ADDRESS   -> address
//	IPSNIFFER_LOG_LEVEL -> log-level
//
// Priority: 30
type EnvSource struct {
	Prefix string // Environment variable prefix (default: "IPSNIFFER_")
}

func (s *EnvSource) Name() string  { return "env" }
func (s *EnvSource) Priority() int { return 30 }

func (s *EnvSource) Load(k *koanf.Koanf) error {
	prefix := s.Prefix
	if prefix == "" {
		prefix = EnvPrefix
	}

	if err := k.Load(env.Provider(prefix, ".", func(key string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(key, prefix)), "_", "-")
	}), nil); err != nil {
		return fmt.Errorf("error loading environment variables: %w", err)
	}
	return nil
}

// FlagSource loads configuration from command-line flags.
// Only flags the user changed override earlier sources; unchanged flags
// fill in keys that are still missing.
// Priority: 40 (highest, overrides all other sources)
type FlagSource struct {
	Flags *pflag.FlagSet
}

func (s *FlagSource) Name() string  { return "flags" }
func (s *FlagSource) Priority() int { return 40 }

func (s *FlagSource) Load(k *koanf.Koanf) error {
	if s.Flags == nil {
		return nil
	}
	if err := k.Load(posflag.Provider(s.Flags, ".", k), nil); err != nil {
		return fmt.Errorf("error loading command-line flags: %w", err)
	}
	return nil
}

// DefaultSources returns the standard configuration sources.
// Order: defaults -> file -> env -> flags
func DefaultSources(configPath string, flags *pflag.FlagSet) []ConfigSource {
	return []ConfigSource{
		&DefaultSource{},
		&FileSource{Path: configPath},
		&EnvSource{Prefix: EnvPrefix},
		&FlagSource{Flags: flags},
	}
}
