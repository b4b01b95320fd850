// pkg/config/config.go
package config

import (
	"errors"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

const (
	// DefaultAddress is used when no address is supplied.
	DefaultAddress = "127.0.0.1"
	// DefaultStartPort is the first port of the default sweep.
	DefaultStartPort = 1
	// DefaultEndPort is the default exclusive upper bound.
	DefaultEndPort = 65535
	// EnvPrefix is the environment variable prefix for configuration keys.
	EnvPrefix = "IPSNIFFER_"
)

// Manager handles loading and accessing application configuration.
type Manager struct {
	koanfInstance *koanf.Koanf
	currentConfig Config
	mu            sync.RWMutex
}

// NewManager creates a Manager backed by a fresh koanf instance.
func NewManager() *Manager {
	return &Manager{
		koanfInstance: koanf.New("."),
		currentConfig: DefaultConfig(),
	}
}

// DefaultConfig returns a new Config struct populated with hardcoded default values.
func DefaultConfig() Config {
	return Config{
		Address:     DefaultAddress,
		Start:       DefaultStartPort,
		End:         DefaultEndPort,
		Timeout:     0,
		Concurrency: 0,
		Output:      "text",
		NoColor:     false,
		LogLevel:    "error",
	}
}

// DefaultConfigAsMap converts the DefaultConfig struct to a map for koanf's
// confmap.Provider so that every key exists before other sources load.
func DefaultConfigAsMap() map[string]interface{} {
	def := DefaultConfig()
	return map[string]interface{}{
		"address":     def.Address,
		"start":       def.Start,
		"end":         def.End,
		"timeout":     def.Timeout,
		"concurrency": def.Concurrency,
		"output":      def.Output,
		"no-color":    def.NoColor,
		"log-level":   def.LogLevel,
	}
}

// Load merges defaults, the optional config file, IPSNIFFER_* environment
// variables and changed command-line flags, in that order, then validates.
func (m *Manager) Load(flags *pflag.FlagSet, configFile string) error {
	return m.LoadSources(DefaultSources(configFile, flags)...)
}

// LoadSources loads the given sources by ascending priority, unmarshals the
// merged tree and validates it. On error the previous config is kept.
func (m *Manager) LoadSources(sources ...ConfigSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sorted := make([]ConfigSource, len(sources))
	copy(sorted, sources)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority() < sorted[j].Priority()
	})

	k := koanf.New(".")
	for _, src := range sorted {
		if err := src.Load(k); err != nil {
			return err
		}
		log.Debug().Str("source", src.Name()).Int("priority", src.Priority()).Msg("config source loaded")
	}

	if err := normalize(k); err != nil {
		return err
	}

	var newCfg Config
	if err := k.UnmarshalWithConf("", &newCfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("error unmarshaling final config: %w", err)
	}
	if err := Validate(newCfg); err != nil {
		return err
	}

	m.koanfInstance = k
	m.currentConfig = newCfg
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentConfig
}

// Koanf exposes the merged koanf tree (read-only use).
func (m *Manager) Koanf() *koanf.Koanf {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.koanfInstance
}

// normalize coerces loosely typed values (env vars and YAML scalars arrive
// as strings) into the types Config expects, so that a bad value surfaces
// as a field error instead of a decoder dump.
func normalize(k *koanf.Koanf) error {
	if k.Exists("address") {
		_ = k.Set("address", addressString(k.Get("address")))
	}

	for _, key := range []string{"start", "end", "concurrency"} {
		if !k.Exists(key) {
			continue
		}
		n, err := cast.ToIntE(k.Get(key))
		if err != nil {
			return &ValidationError{Field: key, Reason: fmt.Sprintf("must be an integer, got %q", cast.ToString(k.Get(key)))}
		}
		_ = k.Set(key, n)
	}

	if k.Exists("timeout") {
		d, err := toDuration(k.Get("timeout"))
		if err != nil {
			return &ValidationError{Field: "timeout", Reason: fmt.Sprintf("must be a duration with a unit (e.g. 500ms), got %q", cast.ToString(k.Get("timeout")))}
		}
		_ = k.Set("timeout", d)
	}

	if k.Exists("no-color") {
		b, err := cast.ToBoolE(k.Get("no-color"))
		if err != nil {
			return &ValidationError{Field: "no-color", Reason: "must be a boolean"}
		}
		_ = k.Set("no-color", b)
	}
	return nil
}

// addressString flattens IP-typed values (net.IP is a []byte) so the
// decoder sees a string.
func addressString(v interface{}) string {
	switch a := v.(type) {
	case net.IP:
		if a == nil {
			return ""
		}
		return a.String()
	case fmt.Stringer:
		return a.String()
	default:
		return cast.ToString(v)
	}
}

var errMissingUnit = errors.New("missing unit in duration")

// toDuration accepts duration strings and time.Duration values. A bare
// number is only allowed when it is zero, since "timeout: 5" in YAML
// would otherwise silently mean five nanoseconds.
func toDuration(v interface{}) (time.Duration, error) {
	switch d := v.(type) {
	case time.Duration:
		return d, nil
	case string:
		if d == "" {
			return 0, nil
		}
		return time.ParseDuration(d)
	}

	n, err := cast.ToFloat64E(v)
	if err != nil {
		return 0, err
	}
	if n != 0 {
		return 0, errMissingUnit
	}
	return 0, nil
}
