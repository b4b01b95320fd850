// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package commands

import (
	"github.com/spf13/cobra"

	"github.com/vulntor/ipsniffer/cmd/ipsniffer/internal/format"
	"github.com/vulntor/ipsniffer/pkg/config"
	"github.com/vulntor/ipsniffer/pkg/output"
	"github.com/vulntor/ipsniffer/pkg/output/subscribers"
)

// setupOutputPipeline creates and configures the output pipeline from the
// resolved config.
//
// Selection:
//   - output=json: JSONFormatter (JSON Lines on stdout)
//   - output=text: HumanFormatter (progress markers and the port listing)
//   - -v/-vv/-vvv: DiagnosticSubscriber (sweep diagnostics on stderr, text mode only)
//
// Color is used only when the target stream is a terminal and --no-color
// is not set.
func setupOutputPipeline(cmd *cobra.Command, cfg config.Config, verbosityCount int) output.Output {
	stream := output.NewOutputEventStream()
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	if cfg.Output == "json" {
		stream.Subscribe(subscribers.NewJSONFormatter(stdout))
	} else {
		colorEnabled := !cfg.NoColor && format.IsTerminal(stdout)
		stream.Subscribe(subscribers.NewHumanFormatter(stdout, stderr, colorEnabled))
	}

	if cfg.Output != "json" && verbosityCount > 0 {
		level := output.OutputLevel(min(verbosityCount, int(output.LevelTrace)))
		colorEnabled := !cfg.NoColor && format.IsTerminal(stderr)
		stream.Subscribe(subscribers.NewDiagnosticSubscriber(level, stderr, colorEnabled))
	}

	return output.NewDefaultOutput(stream)
}
