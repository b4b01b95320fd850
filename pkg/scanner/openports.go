// Copyright 2025 Vulntor Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");

package scanner

import (
	"fmt"
	"io"
)

// OpenPorts is the ascending list of ports that accepted a connection.
type OpenPorts []uint16

// Line formats a single listing entry.
func Line(port uint16) string {
	return fmt.Sprintf("%d is open", port)
}

// WriteListing writes the final listing: a blank line, then one
// "<port> is open" line per port.
func (o OpenPorts) WriteListing(w io.Writer) error {
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	for _, port := range o {
		if _, err := fmt.Fprintln(w, Line(port)); err != nil {
			return err
		}
	}
	return nil
}
