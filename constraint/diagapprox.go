// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// diagApprox estimates each row's diagonal of J*M^-1*J' from the
// per-body/per-dof/per-tendon inverse-weight cache the model carries,
// avoiding an O(nv) probe of the real mass matrix per row. It is the
// starting point impedance cooking regularizes into R.
func (d *Data) diagApprox() []float64 {
	m := d.Model
	out := make([]float64, len(d.rows))
	d.weldcnt = 0

	for i := range d.rows {
		r := &d.rows[i]
		if r.typ != CnstrEquality || m.Equalities[r.id].Type != EqWeld {
			d.weldcnt = 0
		}

		switch r.typ {
		case CnstrEquality:
			out[i] = d.diagApproxEquality(r)
		case CnstrFrictionDof:
			out[i] = m.Dofs[r.id].InvWeight0
		case CnstrFrictionTendon:
			out[i] = m.Tendons[r.id].InvWeight0
		case CnstrLimitJoint:
			out[i] = m.Dofs[m.Joints[r.id].DofAdr].InvWeight0
		case CnstrLimitTendon:
			out[i] = m.Tendons[r.id].InvWeight0
		case CnstrContactFrictionless, CnstrContactPyramidal, CnstrContactElliptic:
			out[i] = d.diagApproxContact(r)
		}
	}
	return out
}

func (d *Data) diagApproxEquality(r *row) float64 {
	m := d.Model
	eq := m.Equalities[r.id]
	switch eq.Type {
	case EqConnect:
		return m.Bodies[eq.Obj1ID].InvWeight0[0] + m.Bodies[eq.Obj2ID].InvWeight0[0]
	case EqWeld:
		comp := 0 // translational
		if d.weldcnt > 2 {
			comp = 1 // rotational
		}
		d.weldcnt++
		return m.Bodies[eq.Obj1ID].InvWeight0[comp] + m.Bodies[eq.Obj2ID].InvWeight0[comp]
	case EqJoint:
		v := m.Dofs[m.Joints[eq.Obj1ID].DofAdr].InvWeight0
		if eq.Obj2ID >= 0 {
			v += m.Dofs[m.Joints[eq.Obj2ID].DofAdr].InvWeight0
		}
		return v
	case EqTendon:
		v := m.Tendons[eq.Obj1ID].InvWeight0
		if eq.Obj2ID >= 0 {
			v += m.Tendons[eq.Obj2ID].InvWeight0
		}
		return v
	}
	return 0
}

// diagApproxContact returns one contact row's estimate, computed from the
// contact's two body weights and the row's position within its block.
func (d *Data) diagApproxContact(r *row) float64 {
	m := d.Model
	c := &d.Contacts[r.id]
	tran := m.Bodies[c.Body1].InvWeight0[0] + m.Bodies[c.Body2].InvWeight0[0]
	rot := m.Bodies[c.Body1].InvWeight0[1] + m.Bodies[c.Body2].InvWeight0[1]

	switch r.typ {
	case CnstrContactFrictionless:
		return tran
	case CnstrContactElliptic:
		if r.blockPos < 3 {
			return tran
		}
		return rot
	case CnstrContactPyramidal:
		dir := r.blockPos / 2 // which of the dim-1 friction directions this pyramidal pair belongs to
		fri := c.Friction[dir]
		base := tran
		if dir >= 2 {
			base = rot
		}
		return tran + fri*fri*base
	}
	return tran
}
