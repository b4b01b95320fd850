// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"time"

	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// EventType identifies what happened during a sweep.
type EventType string

const (
	// EventSweepStarted is emitted once before any scan task starts.
	EventSweepStarted EventType = "sweep_started"
	// EventPortOpen is emitted by a scan task for every open port.
	EventPortOpen EventType = "port_open"
	// EventSweepComplete carries the sorted result after the collector finishes.
	EventSweepComplete EventType = "sweep_complete"
	// EventDiag is a diagnostic message gated by verbosity.
	EventDiag EventType = "diag"
	// EventError reports a failure to the user.
	EventError EventType = "error"
)

// OutputLevel is the verbosity threshold of a diagnostic event.
type OutputLevel int

const (
	LevelNormal  OutputLevel = iota // always shown
	LevelVerbose                    // -v
	LevelDebug                      // -vv
	LevelTrace                      // -vvv
)

// SweepInfo describes a sweep before it starts.
type SweepInfo struct {
	ID          string
	Target      string
	Range       scanner.PortRange
	Concurrency int
	Timeout     time.Duration
}

// OutputEvent is a single notification dispatched to subscribers.
type OutputEvent struct {
	Type      EventType
	Level     OutputLevel
	Message   string
	Target    scanner.Target
	Sweep     *SweepInfo
	Result    *scanner.Result
	Err       error
	Timestamp time.Time
}
