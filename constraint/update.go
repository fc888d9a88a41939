// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import "math"

// Update classifies every row's activity state against the candidate
// residual jar (one entry per row, typically J*qacc - aref) and fills in
// EfcForce, EfcState, and QfrcConstraint = J'*EfcForce. When wantCost is
// set it also returns the total constraint cost. wantHessian additionally
// fills in each elliptic contact's cone Hessian (Contact.H); needed only
// by solvers that use second-order information.
func (d *Data) Update(jar []float64, wantCost, wantHessian bool) float64 {
	n := len(d.rows)
	d.EfcForce = make([]float64, n)
	d.EfcState = make([]ConstraintState, n)
	for i := range d.QfrcConstraint {
		d.QfrcConstraint[i] = 0
	}

	cost := 0.0
	i := 0
	for i < n {
		r := &d.rows[i]
		switch r.typ {
		case CnstrEquality:
			c := d.updateQuadratic(i, jar[i])
			cost += c
			i++

		case CnstrFrictionDof, CnstrFrictionTendon:
			c := d.updateFriction(i, jar[i], r.frictionloss)
			cost += c
			i++

		case CnstrLimitJoint, CnstrLimitTendon, CnstrContactFrictionless, CnstrContactPyramidal:
			c := d.updateUnilateral(i, jar[i])
			cost += c
			i++

		case CnstrContactElliptic:
			dim := d.Contacts[r.id].Dim
			c := d.updateElliptic(i, dim, jar[i:i+dim], wantHessian)
			cost += c
			i += dim

		default:
			i++
		}
	}

	d.mulJacTVec(d.EfcForce, d.QfrcConstraint)
	if !wantCost {
		return 0
	}
	return cost
}

func (d *Data) updateQuadratic(i int, jar float64) float64 {
	D := d.EfcD[i]
	d.EfcState[i] = StateQuadratic
	d.EfcForce[i] = -D * jar
	return 0.5 * D * jar * jar
}

func (d *Data) updateFriction(i int, jar, floss float64) float64 {
	R, D := d.EfcR[i], d.EfcD[i]
	switch {
	case jar <= -R*floss:
		d.EfcState[i] = StateLinearNeg
		d.EfcForce[i] = floss
		return -0.5*R*floss*floss - floss*jar
	case jar >= R*floss:
		d.EfcState[i] = StateLinearPos
		d.EfcForce[i] = -floss
		return -0.5*R*floss*floss + floss*jar
	default:
		d.EfcState[i] = StateQuadratic
		d.EfcForce[i] = -D * jar
		return 0.5 * D * jar * jar
	}
}

func (d *Data) updateUnilateral(i int, jar float64) float64 {
	if jar >= 0 {
		d.EfcState[i] = StateSatisfied
		d.EfcForce[i] = 0
		return 0
	}
	D := d.EfcD[i]
	d.EfcState[i] = StateQuadratic
	d.EfcForce[i] = -D * jar
	return 0.5 * D * jar * jar
}

// updateElliptic applies the three-zone soft-complementarity rule for
// one elliptic friction cone block: top zone (inside the cone) is
// satisfied with zero force, bottom zone (normal residual negative enough
// that the whole cone is active) falls back to independent per-row
// quadratic forces, and the middle zone applies
// the scaled cone projection and records the CONE state plus Hessian.
func (d *Data) updateElliptic(i, dim int, jar []float64, wantHessian bool) float64 {
	c := &d.Contacts[d.rows[i].id]
	mu := c.Mu

	U := make([]float64, dim)
	U[0] = jar[0] * mu
	for j := 1; j < dim; j++ {
		U[j] = jar[j] * c.Friction[j-1]
	}
	N := U[0]
	T := 0.0
	for j := 1; j < dim; j++ {
		T += U[j] * U[j]
	}
	T = math.Sqrt(T)

	switch {
	case N >= mu*T || (T <= 0 && N >= 0):
		for j := 0; j < dim; j++ {
			d.EfcState[i+j] = StateSatisfied
			d.EfcForce[i+j] = 0
		}
		return 0

	case mu*N+T <= 0 || (T <= 0 && N < 0):
		cost := 0.0
		for j := 0; j < dim; j++ {
			D := d.EfcD[i+j]
			d.EfcState[i+j] = StateQuadratic
			d.EfcForce[i+j] = -D * jar[j]
			cost += 0.5 * D * jar[j] * jar[j]
		}
		return cost

	default:
		Dm := d.EfcD[i] / (mu * mu * (1 + mu*mu))
		NmT := N - mu*T
		cost := 0.5 * Dm * NmT * NmT
		d.EfcState[i] = StateCone
		d.EfcForce[i] = -Dm * NmT * mu
		for j := 1; j < dim; j++ {
			d.EfcState[i+j] = StateCone
			d.EfcForce[i+j] = -d.EfcForce[i] / T * U[j] * c.Friction[j-1]
		}
		if wantHessian {
			fillConeHessian(c, dim, mu, N, T, Dm, U)
		}
		return cost
	}
}

// fillConeHessian builds the dim x dim second derivative of the middle
// zone's cost with respect to jar, scaled by the per-direction friction
// coefficients and symmetrized.
func fillConeHessian(c *Contact, dim int, mu, N, T, Dm float64, U []float64) {
	H := make([]float64, dim*dim)
	H[0] = 1
	for j := 1; j < dim; j++ {
		H[j] = -mu / T * U[j]
	}
	for k := 1; k < dim; k++ {
		for j := 1; j < dim; j++ {
			v := mu * N / (T * T * T) * U[j] * U[k]
			if j == k {
				v += mu*mu - mu*N/T
			}
			H[k*dim+j] = v
		}
	}
	scale := make([]float64, dim)
	scale[0] = mu
	for j := 1; j < dim; j++ {
		scale[j] = c.Friction[j-1]
	}
	for r := 0; r < dim; r++ {
		for col := 0; col < dim; col++ {
			H[r*dim+col] *= scale[r] * scale[col] * Dm
		}
	}
	for r := 0; r < dim; r++ {
		for col := 0; col < r; col++ {
			H[r*dim+col] = H[col*dim+r]
		}
	}
	copy(c.H[:dim*dim], H)
}
