// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package scanexec

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vulntor/ipsniffer/pkg/appctx"
	"github.com/vulntor/ipsniffer/pkg/config"
	"github.com/vulntor/ipsniffer/pkg/logging"
	"github.com/vulntor/ipsniffer/pkg/output"
	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// Params captures the resolved inputs of a single sweep.
type Params struct {
	Address      netip.Addr
	Ports        scanner.PortRange
	Timeout      time.Duration
	Concurrency  int
	OutputFormat string
}

// ParamsFromConfig converts a validated config into sweep parameters.
func ParamsFromConfig(cfg config.Config) (Params, error) {
	addr, err := netip.ParseAddr(cfg.Address)
	if err != nil {
		return Params{}, NewInvalidAddressError(cfg.Address, err)
	}
	return Params{
		Address:      addr.Unmap(),
		Ports:        scanner.PortRange{Start: cfg.Start, End: cfg.End},
		Timeout:      cfg.Timeout,
		Concurrency:  cfg.Concurrency,
		OutputFormat: cfg.Output,
	}, nil
}

// Service runs a sweep and reports it through an output.Output.
type Service struct {
	out    output.Output
	dialer scanner.Dialer
	logger zerolog.Logger
}

// NewService builds a Service that discards all output.
func NewService() *Service {
	return &Service{
		out:    output.Discard(),
		logger: logging.NewLogger("scanexec", zerolog.GlobalLevel()),
	}
}

// WithOutput attaches the renderer for progress and results.
func (s *Service) WithOutput(out output.Output) *Service {
	if out != nil {
		s.out = out
	}
	return s
}

// WithDialer overrides the network dialer (useful for tests).
func (s *Service) WithDialer(d scanner.Dialer) *Service {
	s.dialer = d
	return s
}

// Run executes the sweep described by params. On cancellation the partial
// result is still reported and returned together with an interrupted error.
func (s *Service) Run(ctx context.Context, params Params) (*scanner.Result, error) {
	if !params.Address.IsValid() {
		return nil, NewInvalidArgumentError(scanner.ErrNoAddress)
	}
	if err := params.Ports.Validate(); err != nil {
		return nil, NewInvalidArgumentError(err)
	}

	sweepID := uuid.NewString()
	logger := s.logger.With().Str("sweep_id", sweepID).Logger()

	s.out.SweepStarted(output.SweepInfo{
		ID:          sweepID,
		Target:      params.Address.String(),
		Range:       params.Ports,
		Concurrency: params.Concurrency,
		Timeout:     params.Timeout,
	})
	if params.Ports.Empty() {
		s.out.Diag(output.LevelVerbose, "Port range %s is empty, nothing to scan", params.Ports)
	}

	sc := scanner.New(scanner.Config{
		Address:     params.Address,
		Ports:       params.Ports,
		Timeout:     params.Timeout,
		Concurrency: params.Concurrency,
	}).WithDialer(s.dialer).WithProgressSink(s.out).
		WithLogger(logging.NewLogger("scanner", zerolog.GlobalLevel()).With().Str("sweep_id", sweepID).Logger())

	res, err := sc.Run(ctx)
	if res != nil {
		s.out.SweepComplete(res)
	}

	switch {
	case err == nil:
		logger.Debug().Int("open", len(res.Open)).Msg("Sweep completed")
		return res, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		logger.Debug().Err(err).Msg("Sweep interrupted")
		return res, WithErrorCode(fmt.Errorf("%w: %w", ErrInterrupted, err), errorCodeInterrupted)
	default:
		return res, fmt.Errorf("sweep %s: %w", params.Address, err)
	}
}

// RunFromContext loads parameters from the config manager stored on ctx
// and runs the sweep. This is the entry point used by the CLI.
func (s *Service) RunFromContext(ctx context.Context) (*scanner.Result, error) {
	mgr, ok := appctx.Config(ctx)
	if !ok {
		return nil, errors.New("config manager missing from context")
	}
	params, err := ParamsFromConfig(mgr.Get())
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, params)
}
