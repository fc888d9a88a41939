// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// WarningType names a recoverable per-step condition: capacity overflow
// or a parameter value that was silently repaired rather than rejected.
type WarningType int

const (
	WarnContactFull WarningType = iota
	WarnConstraintFull
	WarnBadSolRef
)

func (w WarningType) String() string {
	switch w {
	case WarnContactFull:
		return "contact buffer full"
	case WarnConstraintFull:
		return "constraint buffer full"
	case WarnBadSolRef:
		return "solref auto-repaired"
	default:
		return "unknown warning"
	}
}

// Warning is one recoverable condition raised during a step. Info carries
// a number describing it (a row index, a contact capacity, or a count of
// dropped rows), or -1 when not applicable.
type Warning struct {
	Type WarningType
	Info int
}

func (d *Data) warn(t WarningType, info int) {
	d.Warnings = append(d.Warnings, Warning{Type: t, Info: info})
	d.Model.logger().Warn(t.String(), "info", info)
}

// hasWarning reports whether any warning of type t was raised this step.
func (d *Data) hasWarning(t WarningType) bool {
	for _, w := range d.Warnings {
		if w.Type == t {
			return true
		}
	}
	return false
}
