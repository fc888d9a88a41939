// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"github.com/gazed/rigidconstraint/kinematics"
	"github.com/gazed/rigidconstraint/math/lin"
)

// Instantiate walks every active equality, friction, limit, and contact
// constraint and appends its rows to d.rows. Callers run count first
// (to reserve the arena) and Reset between steps.
func (d *Data) Instantiate() error {
	o := &d.Model.Options
	if o.disabled(DisableConstraint) {
		return nil
	}
	if !o.disabled(DisableEquality) {
		if err := d.instantiateEquality(); err != nil {
			return err
		}
	}
	if !o.disabled(DisableFrictionLoss) {
		d.instantiateFriction()
	}
	if !o.disabled(DisableLimit) {
		if err := d.instantiateLimit(); err != nil {
			return err
		}
	}
	if !o.disabled(DisableContact) {
		d.instantiateContact()
	}
	d.NE = countType(d.rows, CnstrEquality)
	d.NF = countType(d.rows, CnstrFrictionDof) + countType(d.rows, CnstrFrictionTendon)
	d.NL = countType(d.rows, CnstrLimitJoint) + countType(d.rows, CnstrLimitTendon)
	d.NC = countType(d.rows, CnstrContactFrictionless) + countType(d.rows, CnstrContactPyramidal) + countType(d.rows, CnstrContactElliptic)
	d.Nefc = len(d.rows)
	return nil
}

func countType(rows []row, t ConstraintType) int {
	n := 0
	for _, r := range rows {
		if r.typ == t {
			n++
		}
	}
	return n
}

// addRow appends a finished row, honoring the arena's row budget.
func (d *Data) addRow(r row) {
	if !d.arena.alloc(1) {
		d.warn(WarnConstraintFull, len(d.rows))
		return
	}
	d.rows = append(d.rows, r)
}

func (d *Data) worldPoint(body int, local lin.V3) lin.V3 {
	var out lin.V3
	lin.RotVecMat(&out, &local, &d.XMat[body])
	out.Add(&out, &d.XPos[body])
	return out
}

func (d *Data) bodyOf(id int) kinematics.Body {
	b := d.Model.Bodies[id]
	return kinematics.Body{DofAdr: b.DofAdr, DofNum: b.DofNum}
}

// instantiateEquality emits EQUALITY rows for CONNECT, WELD, JOINT and
// TENDON equality constraints, grounded on mj_instantiateEquality.
func (d *Data) instantiateEquality() error {
	m := d.Model
	dofParent := m.dofParents()

	for i, eq := range m.Equalities {
		if !eq.Active {
			continue
		}
		switch eq.Type {
		case EqConnect:
			anchor0 := lin.V3{X: eq.Data[0], Y: eq.Data[1], Z: eq.Data[2]}
			anchor1 := lin.V3{X: eq.Data[3], Y: eq.Data[4], Z: eq.Data[5]}
			pos0 := d.worldPoint(eq.Obj1ID, anchor0)
			pos1 := d.worldPoint(eq.Obj2ID, anchor1)
			var cpos lin.V3
			cpos.Sub(&pos0, &pos1)

			chain, jp, _, _ := kinematics.JacDifPair(d.DofAxes, dofParent,
				d.bodyOf(eq.Obj2ID), d.bodyOf(eq.Obj1ID), pos1, pos0, false)

			d.emitVectorRows(CnstrEquality, i, chain, jp, cpos, 0, 0, eq.SolRef, eq.SolImp)

		case EqWeld:
			anchor0 := lin.V3{X: eq.Data[3], Y: eq.Data[4], Z: eq.Data[5]}
			anchor1 := lin.V3{X: eq.Data[0], Y: eq.Data[1], Z: eq.Data[2]}
			pos0 := d.worldPoint(eq.Obj1ID, anchor0)
			pos1 := d.worldPoint(eq.Obj2ID, anchor1)
			var cpos lin.V3
			cpos.Sub(&pos0, &pos1)

			chain, jp, jr, nv := kinematics.JacDifPair(d.DofAxes, dofParent,
				d.bodyOf(eq.Obj2ID), d.bodyOf(eq.Obj1ID), pos1, pos0, true)

			relpose := lin.Q{X: eq.Data[7], Y: eq.Data[8], Z: eq.Data[9], W: eq.Data[6]}
			var quat, quat1, quat2 lin.Q
			lin.MulQuat(&quat, &d.XQuat[eq.Obj1ID], &relpose)
			lin.NegQuat(&quat1, &d.XQuat[eq.Obj2ID])
			lin.MulQuat(&quat2, &quat1, &quat)
			crot := lin.V3{X: quat2.X, Y: quat2.Y, Z: quat2.Z}

			torquescale := eq.Data[10]
			for j := 0; j < nv; j++ {
				var q2, q3 lin.Q
				lin.MulQuatAxis(&q2, &quat1, &jr[j])
				lin.MulQuat(&q3, &q2, &quat)
				jr[j] = lin.V3{X: 0.5 * q3.X * torquescale, Y: 0.5 * q3.Y * torquescale, Z: 0.5 * q3.Z * torquescale}
			}

			d.emitVectorRows(CnstrEquality, i, chain, jp, cpos, 0, 0, eq.SolRef, eq.SolImp)
			d.emitVectorRows(CnstrEquality, i, chain, jr, crot, 0, 0, eq.SolRef, eq.SolImp)

		case EqJoint, EqTendon:
			if err := d.instantiateScalarEquality(i, eq); err != nil {
				return err
			}
		default:
			return wrapf(ErrUnknownEqType, "equality %d has type %d", i, eq.Type)
		}
	}
	return nil
}

// emitVectorRows turns a 3-vector of (position error, Jacobian column)
// pairs into three independent scalar rows, one per axis.
func (d *Data) emitVectorRows(t ConstraintType, id int, chain []int, jac []lin.V3, errv lin.V3, margin, frictionloss float64, ref [2]float64, imp [5]float64) {
	comps := []struct {
		pos float64
		pick func(lin.V3) float64
	}{
		{errv.X, func(v lin.V3) float64 { return v.X }},
		{errv.Y, func(v lin.V3) float64 { return v.Y }},
		{errv.Z, func(v lin.V3) float64 { return v.Z }},
	}
	for _, c := range comps {
		jvals := make([]float64, len(chain))
		for k, v := range jac {
			jvals[k] = c.pick(v)
		}
		d.addRow(row{
			typ: t, id: id, chain: chain, jvals: jvals,
			pos: c.pos, margin: margin, frictionloss: frictionloss,
			solref: ref, solimp: imp,
		})
	}
}

func (d *Data) instantiateScalarEquality(id int, eq Equality) error {
	m := d.Model
	var chain0, chain1 []int
	var jac0, jac1 []float64
	var pos0, pos1, ref0, ref1 float64

	load := func(objID int) ([]int, []float64, float64, float64) {
		if eq.Type == EqJoint {
			j := m.Joints[objID]
			return []int{j.DofAdr}, []float64{1}, d.Qpos[j.QposAdr], 0
		}
		t := m.Tendons[objID]
		chain := append([]int(nil), d.TenJ.ColInd[d.TenJ.RowAdr[objID]:d.TenJ.RowAdr[objID]+d.TenJ.RowNNZ[objID]]...)
		jac := append([]float64(nil), d.TenJ.Data[d.TenJ.RowAdr[objID]:d.TenJ.RowAdr[objID]+d.TenJ.RowNNZ[objID]]...)
		return chain, jac, d.TenLength[objID], t.Length0
	}

	chain0, jac0, pos0, ref0 = load(eq.Obj1ID)

	var cpos float64
	var chain []int
	var jvals []float64

	if eq.Obj2ID >= 0 {
		chain1, jac1, pos1, ref1 = load(eq.Obj2ID)
		dif := pos1 - ref1
		data := eq.Data
		cpos = pos0 - ref0 - data[0] - (data[1]*dif + data[2]*dif*dif + data[3]*dif*dif*dif + data[4]*dif*dif*dif*dif)
		deriv := data[1] + 2*data[2]*dif + 3*data[3]*dif*dif + 4*data[4]*dif*dif*dif
		jvals, chain, _ = combineVals(jac0, chain0, jac1, chain1, -deriv)
	} else {
		cpos = pos0 - ref0 - eq.Data[0]
		chain, jvals = chain0, jac0
	}

	d.addRow(row{
		typ: CnstrEquality, id: id, chain: chain, jvals: jvals,
		pos: cpos, solref: eq.SolRef, solimp: eq.SolImp,
	})
	return nil
}

// combineVals is sparse.Combine specialized to separate value and dof-index
// slices used outside the sparse package's CSR row type.
func combineVals(aVal []float64, aInd []int, bVal []float64, bInd []int, alpha float64) ([]float64, []int, int) {
	i, j, k := 0, 0, 0
	n := len(aInd) + len(bInd)
	outVal := make([]float64, 0, n)
	outInd := make([]int, 0, n)
	for i < len(aInd) && j < len(bInd) {
		switch {
		case aInd[i] == bInd[j]:
			outInd = append(outInd, aInd[i])
			outVal = append(outVal, aVal[i]+alpha*bVal[j])
			i++
			j++
		case aInd[i] < bInd[j]:
			outInd = append(outInd, aInd[i])
			outVal = append(outVal, aVal[i])
			i++
		default:
			outInd = append(outInd, bInd[j])
			outVal = append(outVal, alpha*bVal[j])
			j++
		}
		k++
	}
	for ; i < len(aInd); i++ {
		outInd = append(outInd, aInd[i])
		outVal = append(outVal, aVal[i])
	}
	for ; j < len(bInd); j++ {
		outInd = append(outInd, bInd[j])
		outVal = append(outVal, alpha*bVal[j])
	}
	return outVal, outInd, len(outInd)
}

// instantiateFriction emits one row per dof/tendon with positive
// frictionloss, a pure-damping constraint with no positional error.
func (d *Data) instantiateFriction() {
	m := d.Model
	for i, dof := range m.Dofs {
		if dof.FrictionLoss <= 0 {
			continue
		}
		d.addRow(row{
			typ: CnstrFrictionDof, id: i,
			chain: []int{i}, jvals: []float64{1},
			frictionloss: dof.FrictionLoss, solref: dof.SolRef, solimp: dof.SolImp,
		})
	}
	for i, t := range m.Tendons {
		if t.FrictionLoss <= 0 {
			continue
		}
		chain := append([]int(nil), d.TenJ.ColInd[d.TenJ.RowAdr[i]:d.TenJ.RowAdr[i]+d.TenJ.RowNNZ[i]]...)
		jac := append([]float64(nil), d.TenJ.Data[d.TenJ.RowAdr[i]:d.TenJ.RowAdr[i]+d.TenJ.RowNNZ[i]]...)
		d.addRow(row{
			typ: CnstrFrictionTendon, id: i,
			chain: chain, jvals: jac,
			frictionloss: t.FrictionLoss, solref: t.SolRefFri, solimp: t.SolImpFri,
		})
	}
}

// instantiateLimit emits LIMIT rows for joints and tendons whose
// position has crossed into the margin of its [range[0], range[1]]
// band, grounded on mj_instantiateLimit. SLIDE/HINGE joints and tendons
// are bilateral: each side of the range is checked independently and
// may each contribute a row. BALL joints are limited by the angle of
// their axis-angle deviation against the larger of the two range
// bounds, contributing at most one 3-wide row.
func (d *Data) instantiateLimit() error {
	m := d.Model
	for i, j := range m.Joints {
		if !j.Limited {
			continue
		}
		switch j.Type {
		case Slide, Hinge:
			value := d.Qpos[j.QposAdr]
			for _, side := range limitSides {
				dist := limitSide(side, value, j.Range)
				if dist >= j.Margin {
					continue
				}
				d.addRow(row{
					typ: CnstrLimitJoint, id: i,
					chain: []int{j.DofAdr}, jvals: []float64{-float64(side)},
					pos: dist, margin: j.Margin, solref: j.SolRef, solimp: j.SolImp,
				})
			}

		case Ball:
			axis, value := ballAngleAxis(d.Qpos, j.QposAdr)
			upper := j.Range[0]
			if j.Range[1] > upper {
				upper = j.Range[1]
			}
			dist := upper - value
			if dist >= j.Margin {
				continue
			}
			d.addRow(row{
				typ: CnstrLimitJoint, id: i,
				chain: []int{j.DofAdr, j.DofAdr + 1, j.DofAdr + 2},
				jvals: []float64{-axis.X, -axis.Y, -axis.Z},
				pos: dist, margin: j.Margin, solref: j.SolRef, solimp: j.SolImp,
			})

		case Free:
			// free joints contribute no limit rows
		default:
			return wrapf(ErrUnknownJointType, "joint %d has type %d", i, j.Type)
		}
	}
	for i, t := range m.Tendons {
		if !t.Limited {
			continue
		}
		length := d.TenLength[i]
		for _, side := range limitSides {
			dist := limitSide(side, length, t.Range)
			if dist >= t.Margin {
				continue
			}
			chain := append([]int(nil), d.TenJ.ColInd[d.TenJ.RowAdr[i]:d.TenJ.RowAdr[i]+d.TenJ.RowNNZ[i]]...)
			jac := append([]float64(nil), d.TenJ.Data[d.TenJ.RowAdr[i]:d.TenJ.RowAdr[i]+d.TenJ.RowNNZ[i]]...)
			for k := range jac {
				jac[k] *= -float64(side)
			}
			d.addRow(row{
				typ: CnstrLimitTendon, id: i,
				chain: chain, jvals: jac,
				pos: dist, margin: t.Margin, solref: t.SolRefLim, solimp: t.SolImpLim,
			})
		}
	}
	return nil
}

// limitSides enumerates the two bounds of a bilateral range check:
// -1 is the lower bound, +1 the upper.
var limitSides = [2]int{-1, 1}

// limitSide returns the signed distance (negative: penetrating) from
// value to the side'th bound of rng, side in {-1, 1}.
func limitSide(side int, value float64, rng [2]float64) float64 {
	idx := (side + 1) / 2
	return float64(side) * (rng[idx] - value)
}

// ballAngleAxis converts the unit quaternion stored at qpos[adr:adr+4]
// (w, x, y, z) into a unit rotation axis and its angle, grounded on
// mju_quat2Vel followed by mju_normalize3.
func ballAngleAxis(qpos []float64, adr int) (axis lin.V3, angle float64) {
	q := lin.Q{W: qpos[adr], X: qpos[adr+1], Y: qpos[adr+2], Z: qpos[adr+3]}
	lin.QuatToVel(&axis, &q, 1)
	angle = axis.Len()
	lin.Normalize3(&axis)
	return axis, angle
}

// instantiateContact emits one row block per included contact: a single
// row for frictionless contacts, dim rows for elliptic cones, and
// 2*(dim-1) rows for pyramidal cones.
func (d *Data) instantiateContact() {
	m := d.Model
	pyramidal := m.IsPyramidal()
	for ci := range d.Contacts {
		c := &d.Contacts[ci]
		if c.Exclude != ContactInclude {
			c.EfcAddress = -1
			continue
		}
		dist := c.Dist - c.Margin
		chain, jn, _, _ := kinematics.JacDifPair(d.DofAxes, m.dofParents(),
			d.bodyOf(c.Body1), d.bodyOf(c.Body2), c.Point, c.Point, false)

		normal := lin.V3{X: c.Frame.Xx, Y: c.Frame.Xy, Z: c.Frame.Xz}
		tan1 := lin.V3{X: c.Frame.Yx, Y: c.Frame.Yy, Z: c.Frame.Yz}
		tan2 := lin.V3{X: c.Frame.Zx, Y: c.Frame.Zy, Z: c.Frame.Zz}

		project := func(axis lin.V3) []float64 {
			out := make([]float64, len(jn))
			for k, v := range jn {
				out[k] = v.X*axis.X + v.Y*axis.Y + v.Z*axis.Z
			}
			return out
		}

		switch {
		case c.Dim <= 1:
			d.addRow(row{
				typ: CnstrContactFrictionless, id: ci,
				chain: chain, jvals: project(normal),
				pos: -dist, margin: c.Margin, solref: c.SolRef, solimp: c.SolImp,
			})
			c.EfcAddress = len(d.rows) - 1

		case !pyramidal:
			axes := []lin.V3{normal, tan1, tan2}
			first := len(d.rows)
			for bp := 0; bp < c.Dim; bp++ {
				axis := axes[bp%3]
				rowPos := -dist
				if bp > 0 {
					rowPos = 0
				}
				d.addRow(row{
					typ: CnstrContactElliptic, id: ci,
					chain: chain, jvals: project(axis),
					pos: rowPos, margin: c.Margin,
					solref: c.SolRef, solimp: c.SolImp,
					solreffriction: c.SolRefFriction,
					elliptic:       true, blockPos: bp,
				})
			}
			c.EfcAddress = first

		default: // pyramidal
			first := len(d.rows)
			n := normal
			dirs := []lin.V3{tan1, tan2}
			for dir := 0; dir < c.Dim-1; dir++ {
				var t lin.V3 // torsional/rolling directions have no world axis
				if dir < len(dirs) {
					t = dirs[dir]
				}
				var plus, minus lin.V3
				plus.Add(&n, &t)
				minus.Sub(&n, &t)
				for _, axis := range []lin.V3{plus, minus} {
					d.addRow(row{
						typ: CnstrContactPyramidal, id: ci,
						chain: chain, jvals: project(axis),
						pos: -dist, margin: c.Margin,
						solref: c.SolRef, solimp: c.SolImp,
						blockPos: len(d.rows) - first,
					})
				}
			}
			c.EfcAddress = first
		}
	}
}
