package format

import (
	"os"
	"strconv"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// FromCommand builds a Formatter using the cobra error writer and common flags.
func FromCommand(cmd *cobra.Command) Formatter {
	stderr := cmd.ErrOrStderr()

	outputMode := ModeText
	if flag := cmd.Flags().Lookup("output"); flag != nil {
		outputMode = ParseMode(flag.Value.String())
	}

	color := IsTerminal(stderr)
	if flag := cmd.Flags().Lookup("no-color"); flag != nil {
		if val, err := strconv.ParseBool(flag.Value.String()); err == nil && val {
			color = false
		}
	}

	return New(stderr, outputMode, color)
}

// IsTerminal reports whether w is a terminal (or a Cygwin/MSYS pty).
// Buffers and pipes are never terminals.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
