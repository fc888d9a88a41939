// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import "math"

// impedanceSigmoid maps a normalized penetration/approach x in [0,1] to
// an impedance value between solimp[0] (x<=0, fully satisfied) and
// solimp[1] (x>=1, fully violated) through a two-piece power curve
// pinned at solimp[3] (the midpoint) with exponent solimp[4]. It returns
// the impedance and its derivative with respect to x.
func impedanceSigmoid(solimp [5]float64, x float64) (imp, impDx float64) {
	d0, d1, midpoint, power := solimp[0], solimp[1], solimp[3], solimp[4]
	switch {
	case x <= 0:
		return d0, 0
	case x >= 1:
		return d1, 0
	}
	var y, yDx float64
	switch {
	case power == 1:
		y, yDx = x, 1
	case x <= midpoint:
		a := 1.0
		if midpoint > MinVal {
			a = 1 / math.Pow(midpoint, power-1)
		}
		y = a * math.Pow(x, power)
		yDx = a * power * math.Pow(x, power-1)
	default:
		b := 1.0
		if 1-midpoint > MinVal {
			b = 1 / math.Pow(1-midpoint, power-1)
		}
		y = 1 - b*math.Pow(1-x, power)
		yDx = b * power * math.Pow(1-x, power-1)
	}
	return d0 + y*(d1-d0), yDx * (d1 - d0)
}

// cookImpedance evaluates the impedance curve at a row's current
// position relative to its margin, returning the impedance and its
// derivative with respect to pos (not x). Grounded on getimpedance:
// x is the signed, width-normalized distance past the margin, folded
// into its absolute value (sgn recovers the sign for the derivative).
func cookImpedance(pos, margin float64, solimp [5]float64) (imp, impP float64) {
	if solimp[0] == solimp[1] || solimp[2] <= MinVal {
		return 0.5 * (solimp[0] + solimp[1]), 0
	}
	width := solimp[2]
	x := (pos - margin) / width
	sgn := 1.0
	if x < 0 {
		x = -x
		sgn = -1
	}
	imp, impDx := impedanceSigmoid(solimp, x)
	return imp, impDx * sgn / width
}

// computeKB turns a resolved solref into stiffness/damping. Standard
// form (ref[0] > 0) treats ref as (timeconst, dampratio); direct form
// (ref[0] <= 0) treats ref as (-K, -B). Friction rows (pure damping,
// no restoring stiffness) always get K=0.
func computeKB(ref [2]float64, friction bool) (K, B float64) {
	if ref[0] <= 0 {
		B = -ref[1]
		if friction {
			return 0, B
		}
		return -ref[0], B
	}
	timeconst := math.Max(ref[0], MinVal)
	B = 2 / timeconst
	if friction {
		return 0, B
	}
	if dampratio := ref[1]; dampratio > 0 {
		K = 1 / (timeconst * timeconst * dampratio * dampratio)
	}
	return K, B
}

func isFrictionRow(t ConstraintType) bool {
	return t == CnstrFrictionDof || t == CnstrFrictionTendon
}

// makeImpedance cooks R, D, and the (K, B, impedance, impedance') tuple
// for every row, given the rows' diagApprox estimates, then resolves the
// frictional-contact cross-coupling that spreads a contact's normal
// regularization across its tangential/torsional/rolling rows.
func (d *Data) makeImpedance(diag []float64) {
	opts := &d.Model.Options
	n := len(d.rows)
	d.EfcR = make([]float64, n)
	d.EfcD = make([]float64, n)
	d.EfcKBIP = make([]float64, 4*n)
	d.EfcDiagApprox = make([]float64, n)

	for i := range d.rows {
		r := &d.rows[i]
		friction := isFrictionRow(r.typ) || (r.elliptic && r.blockPos > 0)

		ref := refSafe(opts, assignRef(opts, resolveRowRef(*r)))
		imp := d.repairSolImp(assignImp(opts, r.solimp))
		margin := assignMargin(opts, r.margin)

		impVal, impDeriv := cookImpedance(r.pos, margin, imp)
		K, B := computeKB(ref, friction)
		R := math.Max(MinVal, (1-impVal)*diag[i]/math.Max(impVal, MinVal))
		D := 1 / R

		d.EfcR[i] = R
		d.EfcD[i] = D
		d.EfcKBIP[4*i+0] = K
		d.EfcKBIP[4*i+1] = B
		d.EfcKBIP[4*i+2] = impVal
		d.EfcKBIP[4*i+3] = impDeriv
		if impVal < MaxImp {
			d.EfcDiagApprox[i] = R * impVal / (1 - impVal)
		} else {
			d.EfcDiagApprox[i] = diag[i]
		}
	}

	d.coupleContactFriction()
}

// coupleContactFriction rescales each contact block's friction-direction
// R/D by the friction-coefficient ratios and Options.ImpRatio, and
// derives the contact's regularized friction coefficient Mu, matching
// how the reference solver spreads a single normal regularization across
// a multi-row friction cone.
func (d *Data) coupleContactFriction() {
	opts := &d.Model.Options
	impratio := math.Max(opts.ImpRatio, MinVal)

	i := 0
	for i < len(d.rows) {
		r := &d.rows[i]
		switch r.typ {
		case CnstrContactElliptic:
			c := &d.Contacts[r.id]
			dim := c.Dim
			R0 := d.EfcR[i]
			R1 := R0 / impratio
			c.Mu = c.Friction[0] * math.Sqrt(R1/R0)
			for j := 1; j < dim; j++ {
				if j == 1 {
					d.EfcR[i+1] = R1
				} else {
					fric := c.Friction[j-1]
					d.EfcR[i+j] = R1 * c.Friction[0] * c.Friction[0] / math.Max(fric*fric, MinVal)
				}
				d.EfcD[i+j] = 1 / d.EfcR[i+j]
			}
			i += dim

		case CnstrContactPyramidal:
			c := &d.Contacts[r.id]
			dim := c.Dim
			pairs := 2 * (dim - 1)
			R0 := d.EfcR[i]
			R1 := R0 / impratio
			c.Mu = c.Friction[0] * math.Sqrt(R1/R0)
			Rpy := 2 * c.Mu * c.Mu * R0
			for k := 0; k < pairs; k++ {
				d.EfcR[i+k] = Rpy
				d.EfcD[i+k] = 1 / Rpy
			}
			i += pairs

		default:
			i++
		}
	}
}
