// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package subscribers

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/vulntor/ipsniffer/pkg/output"
	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// JSONFormatter writes one JSON object per line (JSON Lines) to stdout.
type JSONFormatter struct {
	enc *json.Encoder
	mu  sync.Mutex
}

type portOpenLine struct {
	Event string `json:"event"`
	Port  uint16 `json:"port"`
}

type sweepCompleteLine struct {
	Event     string   `json:"event"`
	Address   string   `json:"address"`
	Start     int      `json:"start"`
	End       int      `json:"end"`
	Attempted int      `json:"attempted"`
	Open      []uint16 `json:"open"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

type errorLine struct {
	Event string `json:"event"`
	Error string `json:"error"`
}

// NewJSONFormatter creates a JSONFormatter writing to w.
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{enc: json.NewEncoder(w)}
}

func (f *JSONFormatter) Name() string {
	return "json-formatter"
}

func (f *JSONFormatter) ShouldHandle(event output.OutputEvent) bool {
	switch event.Type {
	case output.EventPortOpen, output.EventSweepComplete, output.EventError:
		return true
	default:
		return false
	}
}

func (f *JSONFormatter) Handle(event output.OutputEvent) {
	var line any
	switch event.Type {
	case output.EventPortOpen:
		line = portOpenLine{Event: string(event.Type), Port: event.Target.Port}
	case output.EventSweepComplete:
		line = completeLine(event.Result)
	case output.EventError:
		line = errorLine{Event: string(event.Type), Error: event.Message}
	default:
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	_ = f.enc.Encode(line)
}

func completeLine(res *scanner.Result) sweepCompleteLine {
	line := sweepCompleteLine{Event: string(output.EventSweepComplete), Open: []uint16{}}
	if res == nil {
		return line
	}
	line.Address = res.Address.String()
	line.Start = res.Range.Start
	line.End = res.Range.End
	line.Attempted = res.Attempted
	line.Open = append(line.Open, res.Open...)
	line.ElapsedMS = res.Elapsed.Milliseconds()
	return line
}
