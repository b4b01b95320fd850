// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package output

import (
	"fmt"
	"time"

	"github.com/vulntor/ipsniffer/pkg/scanner"
)

// Output is the domain-facing API used by the scan service. It turns
// calls into OutputEvents on a stream.
type Output interface {
	scanner.ProgressSink

	SweepStarted(info SweepInfo)
	SweepComplete(res *scanner.Result)
	Diag(level OutputLevel, format string, args ...any)
	Error(err error)
}

// DefaultOutput emits every call onto an OutputEventStream.
type DefaultOutput struct {
	stream *OutputEventStream
	now    func() time.Time
}

// NewDefaultOutput wraps stream.
func NewDefaultOutput(stream *OutputEventStream) *DefaultOutput {
	return &DefaultOutput{stream: stream, now: time.Now}
}

// Discard returns an Output with no subscribers.
func Discard() *DefaultOutput {
	return NewDefaultOutput(NewOutputEventStream())
}

// PortOpen implements scanner.ProgressSink.
func (o *DefaultOutput) PortOpen(target scanner.Target) {
	o.stream.Emit(OutputEvent{
		Type:      EventPortOpen,
		Target:    target,
		Timestamp: o.now(),
	})
}

func (o *DefaultOutput) SweepStarted(info SweepInfo) {
	o.stream.Emit(OutputEvent{
		Type:      EventSweepStarted,
		Sweep:     &info,
		Timestamp: o.now(),
	})
}

func (o *DefaultOutput) SweepComplete(res *scanner.Result) {
	o.stream.Emit(OutputEvent{
		Type:      EventSweepComplete,
		Result:    res,
		Timestamp: o.now(),
	})
}

func (o *DefaultOutput) Diag(level OutputLevel, format string, args ...any) {
	o.stream.Emit(OutputEvent{
		Type:      EventDiag,
		Level:     level,
		Message:   fmt.Sprintf(format, args...),
		Timestamp: o.now(),
	})
}

func (o *DefaultOutput) Error(err error) {
	if err == nil {
		return
	}
	o.stream.Emit(OutputEvent{
		Type:      EventError,
		Err:       err,
		Message:   err.Error(),
		Timestamp: o.now(),
	})
}
