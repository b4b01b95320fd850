// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package scanner

import (
	"fmt"
	"net/netip"
)

const (
	// MinPort is the lowest TCP port a sweep may start at.
	MinPort = 1
	// MaxPort is the highest valid TCP port number.
	MaxPort = 65535
)

// Target is a single (address, port) pair handed to exactly one scan task.
type Target struct {
	Addr netip.Addr
	Port uint16
}

// String returns the dialable host:port form, bracketing IPv6 addresses.
func (t Target) String() string {
	return netip.AddrPortFrom(t.Addr, t.Port).String()
}

// PortRange is the half-open interval [Start, End) of ports to sweep.
// The bounds are ints so that End may be MaxPort+1 without overflow.
type PortRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of ports in the range. An inverted range is empty.
func (r PortRange) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// Empty reports whether the range contains no ports.
func (r PortRange) Empty() bool {
	return r.Len() == 0
}

// Validate checks that both bounds are representable TCP ports.
// End may be one past MaxPort so the full range can be expressed.
func (r PortRange) Validate() error {
	if r.Start < MinPort || r.Start > MaxPort+1 {
		return fmt.Errorf("start port %d out of range [%d, %d]", r.Start, MinPort, MaxPort)
	}
	if r.End < 0 || r.End > MaxPort+1 {
		return fmt.Errorf("end port %d out of range [0, %d]", r.End, MaxPort+1)
	}
	return nil
}

// Targets expands the range into one Target per port for addr.
func (r PortRange) Targets(addr netip.Addr) []Target {
	targets := make([]Target, 0, r.Len())
	for p := r.Start; p < r.End; p++ {
		targets = append(targets, Target{Addr: addr, Port: uint16(p)})
	}
	return targets
}

func (r PortRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Start, r.End)
}
