// pkg/config/types.go
package config

import "time"

// Config is the root configuration for a sweep.
// Keys are flat and match the CLI flag names so that posflag, env and
// file sources all address the same koanf paths.
type Config struct {
	Address     string        `description:"Target IP address" koanf:"address" validate:"required,ip"`
	Start       int           `description:"First port to scan" koanf:"start" validate:"min=1,max=65535"`
	End         int           `description:"Exclusive upper port bound" koanf:"end" validate:"min=0,max=65535"`
	Timeout     time.Duration `description:"Per-connection timeout (0 = platform default)" koanf:"timeout" validate:"min=0"`
	Concurrency int           `description:"Max in-flight connection attempts (0 = unbounded)" koanf:"concurrency" validate:"min=0"`
	Output      string        `description:"Output format: text | json" koanf:"output" validate:"oneof=text json"`
	NoColor     bool          `description:"Disable colored output" koanf:"no-color"`
	LogLevel    string        `description:"Log level set to ipsniffer logs" koanf:"log-level"`
}
