// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package scanner

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/vulntor/ipsniffer/pkg/logging"
)

// ErrNoAddress is returned when a sweep is started without a target address.
var ErrNoAddress = errors.New("no target address")

// Config describes a single sweep.
type Config struct {
	Address netip.Addr
	Ports   PortRange

	// Timeout bounds each connection attempt. Zero keeps the platform default.
	Timeout time.Duration

	// Concurrency caps the number of in-flight connection attempts.
	// Zero starts every scan task at once.
	Concurrency int
}

// Result summarizes a finished (or interrupted) sweep.
type Result struct {
	Address   netip.Addr    `json:"address"`
	Range     PortRange     `json:"range"`
	Open      OpenPorts     `json:"open"`
	Attempted int           `json:"attempted"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Scanner runs a TCP connect sweep over a port range: one scan task per
// port, all results funneled through a single channel to the collector.
type Scanner struct {
	cfg    Config
	dialer Dialer
	sink   ProgressSink
	logger zerolog.Logger
}

// New builds a Scanner with a net.Dialer honoring cfg.Timeout.
func New(cfg Config) *Scanner {
	return &Scanner{
		cfg:    cfg,
		dialer: &net.Dialer{Timeout: cfg.Timeout},
		sink:   nopSink{},
		logger: logging.NewLogger("scanner", zerolog.GlobalLevel()),
	}
}

// WithDialer replaces the network dialer (useful for tests).
func (s *Scanner) WithDialer(d Dialer) *Scanner {
	if d != nil {
		s.dialer = d
	}
	return s
}

// WithProgressSink attaches a sink that receives one call per open port.
func (s *Scanner) WithProgressSink(sink ProgressSink) *Scanner {
	if sink != nil {
		s.sink = sink
	}
	return s
}

// WithLogger overrides the component logger.
func (s *Scanner) WithLogger(logger zerolog.Logger) *Scanner {
	s.logger = logger
	return s
}

// Run executes the sweep and blocks until every spawned scan task has
// finished. The returned open ports are sorted ascending.
//
// If ctx is cancelled the remaining ports are not attempted; the partial
// result is returned together with the context error.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	if !s.cfg.Address.IsValid() {
		return nil, ErrNoAddress
	}
	if err := s.cfg.Ports.Validate(); err != nil {
		return nil, err
	}

	targets := s.cfg.Ports.Targets(s.cfg.Address)
	s.logger.Debug().
		Str("address", s.cfg.Address.String()).
		Stringer("range", s.cfg.Ports).
		Int("ports", len(targets)).
		Int("concurrency", s.cfg.Concurrency).
		Dur("timeout", s.cfg.Timeout).
		Msg("sweep started")

	started := time.Now()
	results := make(chan uint16, len(targets))

	var sem *semaphore.Weighted
	if s.cfg.Concurrency > 0 {
		sem = semaphore.NewWeighted(int64(s.cfg.Concurrency))
	}

	var wg sync.WaitGroup
	attempted := 0
	for _, target := range targets {
		if ctx.Err() != nil {
			break
		}
		if sem != nil {
			if err := sem.Acquire(ctx, 1); err != nil {
				break
			}
		}

		attempted++
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			if sem != nil {
				defer sem.Release(1)
			}
			scanPort(ctx, s.dialer, t, results, s.sink, s.logger)
		}(target)
	}

	// Each task holds one count on wg in place of a sender handle; the
	// channel closes once the last one is released.
	go func() {
		wg.Wait()
		close(results)
	}()

	res := &Result{
		Address:   s.cfg.Address,
		Range:     s.cfg.Ports,
		Open:      collect(results),
		Attempted: attempted,
		Elapsed:   time.Since(started),
	}

	s.logger.Debug().
		Int("attempted", res.Attempted).
		Int("open", len(res.Open)).
		Dur("elapsed", res.Elapsed).
		Msg("sweep finished")

	if err := ctx.Err(); err != nil {
		return res, err
	}
	return res, nil
}

// collect drains results until the channel is closed and sorts once.
func collect(results <-chan uint16) OpenPorts {
	open := OpenPorts{}
	for port := range results {
		open = append(open, port)
	}
	slices.Sort(open)
	return open
}
