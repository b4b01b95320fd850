// pkg/config/flags.go
package config

import "github.com/spf13/pflag"

// BindFlags defines command-line flags corresponding to configuration settings.
// Flag names equal the koanf keys so FlagSource can map them one to one.
// The address is bound as a plain string and checked by the validator, so
// an unparsable address is reported like any other bad field.
// This function should be called when setting up Cobra commands.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()

	flags.StringP("address", "a", defaults.Address, "IP address to sniff")
	flags.Uint16P("start", "s", uint16(defaults.Start), "First port to scan")
	flags.Uint16P("end", "e", uint16(defaults.End), "Port to stop at (not scanned)")
	flags.DurationP("timeout", "t", defaults.Timeout, "Per-connection timeout (0 uses the system default)")
	flags.IntP("concurrency", "n", defaults.Concurrency, "Maximum simultaneous connection attempts (0 = unbounded)")
	flags.StringP("output", "o", defaults.Output, "Output format: text or json")
	flags.Bool("no-color", defaults.NoColor, "Disable colored output")
	flags.String("log-level", defaults.LogLevel, "Log level (trace, debug, info, warn, error)")
}
