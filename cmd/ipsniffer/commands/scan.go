// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"errors"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vulntor/ipsniffer/pkg/appctx"
	"github.com/vulntor/ipsniffer/pkg/scanexec"
)

// newService builds the sweep service. Tests replace it to inject a dialer.
var newService = scanexec.NewService

func runScanCommand(cmd *cobra.Command, _ []string) error {
	logger := log.With().Str("command", "scan").Logger()

	mgr, ok := appctx.Config(cmd.Context())
	if !ok {
		return errors.New("config manager missing from context")
	}
	cfg := mgr.Get()

	verbosity, _ := cmd.Flags().GetCount("verbosity")
	out := setupOutputPipeline(cmd, cfg, verbosity)

	logger.Info().
		Str("address", cfg.Address).
		Int("start", cfg.Start).
		Int("end", cfg.End).
		Msg("Starting sweep")

	_, err := newService().WithOutput(out).RunFromContext(cmd.Context())
	if err == nil {
		return nil
	}
	if scanexec.IsInvalidArgument(err) {
		return err
	}

	logger.Debug().Err(err).Msg("Sweep did not complete")
	out.Error(err)
	return &reportedError{err: err}
}
