// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// OutputMode defines the output format for CLI commands
type OutputMode string

const (
	// ModeJSON outputs data as JSON
	ModeJSON OutputMode = "json"
	// ModeText outputs human-readable text
	ModeText OutputMode = "text"
)

// ParseMode maps an --output value to an OutputMode. Unknown values fall
// back to text.
func ParseMode(s string) OutputMode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeJSON)) {
		return ModeJSON
	}
	return ModeText
}

// Formatter prints CLI failures. Everything it writes goes to stderr so
// that stdout only ever carries scan output.
type Formatter interface {
	// PrintTotalFailureSummary outputs an error with hints for its code.
	PrintTotalFailureSummary(operation string, err error, errorCode string, suggestions []string) error

	// IsJSON reports whether the formatter is in JSON mode.
	IsJSON() bool
}

type formatter struct {
	stderr io.Writer
	mode   OutputMode
	color  bool
}

// New creates a new Formatter
func New(stderr io.Writer, mode OutputMode, color bool) Formatter {
	return &formatter{
		stderr: stderr,
		mode:   mode,
		color:  color,
	}
}

func (f *formatter) IsJSON() bool {
	return f.mode == ModeJSON
}

func (f *formatter) printJSON(data any) error {
	return json.NewEncoder(f.stderr).Encode(data)
}

// PrintTotalFailureSummary prints total failure with error and suggestions
// Example output:
//
//	✗ Failed to scan: invalid argument: invalid address "foo"
//
//	💡 Suggestions:
//	  → Scan a host:                ipsniffer -a 192.168.1.10
func (f *formatter) PrintTotalFailureSummary(operation string, err error, errorCode string, suggestions []string) error {
	if err == nil {
		return nil
	}

	if f.mode == ModeJSON {
		return f.printJSON(map[string]any{
			"event":      "error",
			"success":    false,
			"operation":  operation,
			"error":      err.Error(),
			"error_code": errorCode,
		})
	}

	var sb strings.Builder

	errorMsg := fmt.Sprintf("✗ Failed to %s: %v", operation, err)
	if f.color {
		sb.WriteString(color.RedString("%s\n", errorMsg))
	} else {
		sb.WriteString(errorMsg + "\n")
	}

	if len(suggestions) > 0 {
		sb.WriteString("\n💡 Suggestions:\n")
		for _, s := range suggestions {
			sb.WriteString(fmt.Sprintf("  → %s\n", s))
		}
	}

	_, writeErr := io.WriteString(f.stderr, sb.String())
	return writeErr
}
