// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// Build runs the full per-step assembly pipeline: count, reserve the
// row arena, instantiate every family's rows, flatten them into the
// Jacobian, approximate each row's diagonal, cook impedance and
// regularization, and compute the reference acceleration. Callers that
// need the dual-space projection call Project afterward; Update is run
// per solver iteration against the assembled system.
//
// contactCapacity and rowCapacity bound the step's arena; pass 0 for
// either to leave that buffer unbounded.
func (d *Data) Build(contactCapacity, rowCapacity int) error {
	d.Reset()
	d.enforceContactCapacity(contactCapacity)

	c := d.count()
	if rowCapacity <= 0 {
		rowCapacity = c.nefc
	}
	d.arena.reserve(rowCapacity)

	if err := d.Instantiate(); err != nil {
		return err
	}
	if !d.hasWarning(WarnConstraintFull) {
		if err := d.checkCounts(c); err != nil {
			return err
		}
	}
	d.Assemble()

	diag := d.diagApprox()
	d.makeImpedance(diag)
	d.Reference()
	return nil
}
