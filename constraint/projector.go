// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"gonum.org/v1/gonum/mat"
)

// Project builds the dual-space projection matrix AR = J*M^-1*J' +
// diag(R), the system a PGS or noslip solver iterates against.
// Only called when Model.IsDual(); requires Data.Mass to be set.
//
// The solve M^-1*J' is always performed densely through
// massmatrix.MassMatrix regardless of whether the Jacobian itself is
// stored sparse or dense: AR itself is a dense nefc x nefc matrix (a
// contact manifold couples densely through the body's shared mass), so
// a sparse factorization of AR would still materialize a dense result
// for any of the handful of rows touching the same bodies.
func (d *Data) Project() error {
	if d.Mass == nil {
		return ErrMassMatrixMissing
	}
	nv, n := d.Model.NV, len(d.rows)
	if n == 0 {
		d.ARDense = nil
		return nil
	}

	jt := mat.NewDense(nv, n, nil)
	for i, r := range d.rows {
		for k, col := range r.chain {
			jt.Set(col, i, r.jvals[k])
		}
	}

	y, err := d.Mass.SolveM2(jt)
	if err != nil {
		return wrapf(err, "constraint: projector half-solve failed")
	}

	ar := mat.NewDense(n, n, nil)
	ar.Mul(jt.T(), y)
	for i := 0; i < n; i++ {
		ar.Set(i, i, ar.At(i, i)+d.EfcR[i])
	}

	d.ARDense = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			d.ARDense[i*n+j] = ar.At(i, j)
		}
	}
	return nil
}
