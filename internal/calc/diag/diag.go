// Package diag collects the warnings and suspect fields raised during one
// calculation. A Diagnostics value is created per call and only grows.
package diag

import (
	"fmt"
	"sort"
)

type Diagnostics struct {
	warnings []string
	suspects map[string]struct{}
}

func New() *Diagnostics {
	return &Diagnostics{suspects: make(map[string]struct{})}
}

// Warn appends a formatted warning.
func (d *Diagnostics) Warn(format string, args ...any) {
	d.warnings = append(d.warnings, fmt.Sprintf(format, args...))
}

// Suspect flags fields as likely sources of a unit or entry error.
func (d *Diagnostics) Suspect(fields ...string) {
	for _, f := range fields {
		d.suspects[f] = struct{}{}
	}
}

// Flag appends a warning and marks field as suspect.
func (d *Diagnostics) Flag(field, format string, args ...any) {
	d.Warn(format, args...)
	d.Suspect(field)
}

// Merge appends other's warnings, each prefixed, and its suspects.
func (d *Diagnostics) Merge(prefix string, other *Diagnostics) {
	if other == nil {
		return
	}
	for _, w := range other.warnings {
		d.warnings = append(d.warnings, prefix+w)
	}
	for s := range other.suspects {
		d.suspects[s] = struct{}{}
	}
}

func (d *Diagnostics) Warnings() []string {
	out := make([]string, len(d.warnings))
	copy(out, d.warnings)
	return out
}

// Suspects returns the flagged fields in sorted order.
func (d *Diagnostics) Suspects() []string {
	out := make([]string, 0, len(d.suspects))
	for s := range d.suspects {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (d *Diagnostics) HasSuspects() bool { return len(d.suspects) > 0 }

func (d *Diagnostics) IsSuspect(field string) bool {
	_, ok := d.suspects[field]
	return ok
}
