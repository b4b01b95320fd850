// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/fatih/color"

	"github.com/vulntor/ipsniffer/pkg/output"
	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// ProgressMarker is written once per open port while the sweep runs.
const ProgressMarker = "."

// HumanFormatter renders the classic text output: a "." per open port as
// it is discovered, then a blank line and one "<port> is open" line per
// port in ascending order. Errors go to stderr.
type HumanFormatter struct {
	stdout       io.Writer
	stderr       io.Writer
	colorEnabled bool

	// mu makes each marker write atomic; the order of markers from
	// different scan tasks is still arbitrary.
	mu sync.Mutex

	portColor  *color.Color
	errorColor *color.Color
}

// NewHumanFormatter creates a HumanFormatter. colorEnabled should only be
// true when stdout is a terminal.
func NewHumanFormatter(stdout, stderr io.Writer, colorEnabled bool) *HumanFormatter {
	f := &HumanFormatter{
		stdout:       stdout,
		stderr:       stderr,
		colorEnabled: colorEnabled,
		portColor:    color.New(color.FgGreen, color.Bold),
		errorColor:   color.New(color.FgRed),
	}
	if colorEnabled {
		// fatih/color disables itself when os.Stdout is not a TTY; the
		// caller has already decided for the writer we were given.
		f.portColor.EnableColor()
		f.errorColor.EnableColor()
	}
	return f
}

func (f *HumanFormatter) Name() string {
	return "human-formatter"
}

func (f *HumanFormatter) ShouldHandle(event output.OutputEvent) bool {
	switch event.Type {
	case output.EventPortOpen, output.EventSweepComplete, output.EventError:
		return true
	default:
		return false
	}
}

func (f *HumanFormatter) Handle(event output.OutputEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch event.Type {
	case output.EventPortOpen:
		_, _ = io.WriteString(f.stdout, ProgressMarker)
	case output.EventSweepComplete:
		f.writeListing(event.Result)
	case output.EventError:
		if f.colorEnabled {
			_, _ = f.errorColor.Fprintf(f.stderr, "Error: %s\n", event.Message)
		} else {
			_, _ = fmt.Fprintf(f.stderr, "Error: %s\n", event.Message)
		}
	}
}

func (f *HumanFormatter) writeListing(res *scanner.Result) {
	var open scanner.OpenPorts
	if res != nil {
		open = res.Open
	}
	if !f.colorEnabled {
		_ = open.WriteListing(f.stdout)
		return
	}

	fmt.Fprintln(f.stdout)
	for _, port := range open {
		fmt.Fprintf(f.stdout, "%s is open\n", f.portColor.Sprint(strconv.Itoa(int(port))))
	}
}
