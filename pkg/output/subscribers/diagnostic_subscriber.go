// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/vulntor/ipsniffer/pkg/output"
)

// Lipgloss styles for diagnostic messages
var (
	// Sweep start/finish style - green
	sweepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	// Port discovery style - cyan
	portDiscoveryStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39"))

	// Interrupted / error style - red
	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	// Generic diagnostic style - gray
	diagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// DiagnosticSubscriber renders sweep diagnostics to stderr based on the
// -v count. It never writes to the scan output stream.
//
// Verbosity levels:
//   - LevelVerbose (1): sweep start and summary
//   - LevelDebug (2): every open port as it is found
//   - LevelTrace (3): everything emitted as EventDiag
type DiagnosticSubscriber struct {
	level        output.OutputLevel
	writer       io.Writer
	colorEnabled bool
	mu           sync.Mutex
}

// NewDiagnosticSubscriber creates a new DiagnosticSubscriber.
func NewDiagnosticSubscriber(level output.OutputLevel, writer io.Writer, colorEnabled bool) *DiagnosticSubscriber {
	return &DiagnosticSubscriber{
		level:        level,
		writer:       writer,
		colorEnabled: colorEnabled,
	}
}

// Name returns the subscriber identifier.
func (s *DiagnosticSubscriber) Name() string {
	return "diagnostic-subscriber"
}

// ShouldHandle reports whether the event's verbosity is within the
// subscriber's level.
func (s *DiagnosticSubscriber) ShouldHandle(event output.OutputEvent) bool {
	switch event.Type {
	case output.EventDiag:
		return event.Level <= s.level
	case output.EventSweepStarted, output.EventSweepComplete:
		return s.level >= output.LevelVerbose
	case output.EventPortOpen:
		return s.level >= output.LevelDebug
	default:
		return false
	}
}

// Handle renders the event as a single line.
func (s *DiagnosticSubscriber) Handle(event output.OutputEvent) {
	var (
		line  string
		style = diagStyle
	)

	switch event.Type {
	case output.EventSweepStarted:
		info := event.Sweep
		concurrency := "unbounded"
		if info.Concurrency > 0 {
			concurrency = fmt.Sprint(info.Concurrency)
		}
		timeout := "system default"
		if info.Timeout > 0 {
			timeout = info.Timeout.String()
		}
		line = fmt.Sprintf("Sweep started: %s ports %s (%d ports, concurrency %s, timeout %s)",
			info.Target, info.Range, info.Range.Len(), concurrency, timeout)
		if info.ID != "" {
			line += " id=" + info.ID
		}
		style = sweepStyle
	case output.EventPortOpen:
		line = "Open port: " + event.Target.String()
		style = portDiscoveryStyle
	case output.EventSweepComplete:
		res := event.Result
		line = fmt.Sprintf("Sweep finished: %d/%d ports open in %s",
			len(res.Open), res.Attempted, res.Elapsed.Round(time.Millisecond))
		style = sweepStyle
		if res.Attempted < res.Range.Len() {
			style = failStyle
		}
	default:
		line = event.Message
	}

	line = fmt.Sprintf("%s %s %s", getLevelPrefix(levelOf(event)), event.Timestamp.Format("15:04:05"), line)
	if s.colorEnabled {
		line = style.Render(line)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintln(s.writer, line)
}

func levelOf(event output.OutputEvent) output.OutputLevel {
	switch event.Type {
	case output.EventSweepStarted, output.EventSweepComplete:
		return output.LevelVerbose
	case output.EventPortOpen:
		return output.LevelDebug
	default:
		return event.Level
	}
}

// getLevelPrefix returns the display prefix for a given output level.
func getLevelPrefix(level output.OutputLevel) string {
	switch level {
	case output.LevelVerbose:
		return "[VERBOSE]"
	case output.LevelDebug:
		return "[DEBUG]"
	case output.LevelTrace:
		return "[TRACE]"
	default:
		return "[INFO]"
	}
}
