// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package scanner

import (
	"context"
	"net"

	"github.com/rs/zerolog"
)

// Dialer opens network connections. *net.Dialer satisfies it.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// ProgressSink is notified once per open port while the sweep is running.
// Calls arrive concurrently from scan tasks in no particular order.
type ProgressSink interface {
	PortOpen(target Target)
}

// ProgressFunc adapts a plain function to ProgressSink.
type ProgressFunc func(target Target)

// PortOpen calls f(target).
func (f ProgressFunc) PortOpen(target Target) { f(target) }

type nopSink struct{}

func (nopSink) PortOpen(Target) {}

// scanPort is the scan task: a single bare TCP connect to target.
// On success the progress sink is notified before the port is sent on
// results. Any dial error means "not open" and is dropped.
func scanPort(ctx context.Context, d Dialer, target Target, results chan<- uint16, sink ProgressSink, logger zerolog.Logger) {
	conn, err := d.DialContext(ctx, "tcp", target.String())
	if err != nil {
		logger.Trace().Err(err).Uint16("port", target.Port).Msg("port not open")
		return
	}
	if err := conn.Close(); err != nil {
		logger.Trace().Err(err).Uint16("port", target.Port).Msg("close failed")
	}

	sink.PortOpen(target)
	// results is sized to the sweep and closed only after every task returns,
	// so this send can neither block forever nor panic.
	results <- target.Port
}
