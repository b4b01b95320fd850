// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/ipsniffer/cmd/ipsniffer/internal/format"
	"github.com/vulntor/ipsniffer/pkg/appctx"
	"github.com/vulntor/ipsniffer/pkg/cli"
	"github.com/vulntor/ipsniffer/pkg/config"
	"github.com/vulntor/ipsniffer/pkg/logging"
	"github.com/vulntor/ipsniffer/pkg/scanexec"
)

const cliExecutable = "ipsniffer"

// NewCommand constructs the top-level ipsniffer command. The root command
// itself runs the sweep; flags are resolved through the config manager.
func NewCommand() *cobra.Command {
	var (
		configFile     string
		verbosityCount int
	)

	cmd := &cobra.Command{
		Use:   cliExecutable,
		Short: "ipsniffer is a fast concurrent TCP port sniffer",
		Long: `ipsniffer connects to every port in [start, end) on a single IP address
at the same time and lists the ports that accepted the connection.

A "." is printed as each open port is found, followed by a blank line and
one "<port> is open" line per open port in ascending order.`,
		Example: `  ipsniffer -a 192.168.1.10
  ipsniffer -a 10.0.0.1 -s 20 -e 1025
  ipsniffer -a ::1 -o json`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return scanexec.NewInvalidArgumentError(fmt.Errorf("unexpected argument %q", args[0]))
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			mgr := config.NewManager()
			if err := mgr.Load(cmd.Flags(), configFile); err != nil {
				return scanexec.NewInvalidArgumentError(err)
			}

			cfg := mgr.Get()
			stderr := cmd.ErrOrStderr()
			logging.SetLogWriter(zerolog.ConsoleWriter{
				Out:        stderr,
				TimeFormat: time.RFC3339,
				NoColor:    cfg.NoColor || !format.IsTerminal(stderr),
			})
			if err := logging.ConfigureGlobalLogging(cfg.LogLevel, verbosityCount); err != nil {
				return scanexec.NewInvalidArgumentError(err)
			}
			log.Debug().
				Str("config", configFile).
				Strs("keys", mgr.Koanf().Keys()).
				Msg("configuration loaded")

			ctx := appctx.WithConfig(cmd.Context(), mgr)
			cmd.SetContext(ctx)
			if root := cmd.Root(); root != nil && root != cmd {
				root.SetContext(ctx)
			}
			return nil
		},
		RunE: runScanCommand,
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	cmd.PersistentFlags().CountVarP(&verbosityCount, "verbosity", "v", "Increase diagnostic verbosity (repeatable)")
	config.BindFlags(cmd.Flags())

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return scanexec.NewInvalidArgumentError(err)
	})

	cmd.AddCommand(cli.NewVersionCommand(cliExecutable))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code.
// Failures not already reported by the scan output are printed to stderr;
// argument errors are followed by the usage text.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	failed, err := cmd.ExecuteContextC(ctx)
	if err == nil {
		return scanexec.ExitOK
	}
	if failed == nil {
		failed = cmd
	}

	var rep *reportedError
	if !errors.As(err, &rep) {
		formatter := format.FromCommand(failed)
		_ = formatter.PrintTotalFailureSummary("scan", err, scanexec.ErrorCode(err), scanexec.Suggestions(err))
		if scanexec.IsInvalidArgument(err) && !formatter.IsJSON() {
			fmt.Fprintln(stderr)
			fmt.Fprint(stderr, failed.UsageString())
		}
	}

	return scanexec.ExitCode(err)
}

// reportedError marks an error the output pipeline has already rendered.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }
