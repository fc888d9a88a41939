// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// Reference computes each row's constraint-space velocity and reference
// acceleration from the cooked K/B/impedance tuple: vel = J*qvel, and
// aref = -B*vel - K*impedance*(pos-margin), the critically-damped
// spring-like pull back toward the constraint manifold the solver
// integrates against. EfcKBIP's fourth slot (the impedance derivative)
// is left unread here; it only feeds a Hessian-based solver's curvature
// term, outside this package's scope.
func (d *Data) Reference() {
	n := len(d.rows)
	d.EfcVel = make([]float64, n)
	d.mulJacVec(d.Qvel, d.EfcVel)

	d.EfcAref = make([]float64, n)
	for i := 0; i < n; i++ {
		K := d.EfcKBIP[4*i+0]
		B := d.EfcKBIP[4*i+1]
		imp := d.EfcKBIP[4*i+2]
		d.EfcAref[i] = -B*d.EfcVel[i] - K*imp*(d.EfcPos[i]-d.EfcMargin[i])
	}
}
