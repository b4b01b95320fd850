// pkg/cli/version.go
// Package cli provides CLI commands for the application.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	v "github.com/vulntor/ipsniffer/pkg/version"
)

func NewVersionCommand(cliExecutable string) *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			info := v.Get()
			fmt.Fprintf(out, "%s version: %s\n", cliExecutable, info.Version)
			if short {
				return
			}
			if info.Commit != "" {
				fmt.Fprintf(out, "Commit: %s\n", info.Commit)
			}
			fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
			fmt.Fprintf(out, "Platform: %s\n", info.Platform)
			if !info.Release {
				fmt.Fprintln(out, "Development build")
			}
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version number")

	return cmd
}
