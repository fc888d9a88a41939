// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

// rowsPerEquality is the number of scalar rows one active equality
// constraint of the given type contributes.
func rowsPerEquality(t EqType) int {
	switch t {
	case EqConnect:
		return 3
	case EqWeld:
		return 6
	case EqJoint, EqTendon:
		return 1
	}
	return 0
}

// rowsPerContact is the number of scalar rows one included contact
// contributes, given its cone mode and friction dimension.
func rowsPerContact(pyramidal bool, dim int) int {
	if dim <= 1 {
		return 1 // frictionless
	}
	if pyramidal {
		return 2 * (dim - 1)
	}
	return dim // elliptic
}

// counts is the dry-run tally the arena is sized from before
// instantiation fills in the actual rows.
type counts struct {
	ne, nf, nl, nc, nefc, nnzJ int
}

// count walks the same activity predicates instantiate uses, without
// building any rows, so the arena can be reserved up front.
func (d *Data) count() counts {
	m := d.Model
	o := &m.Options
	var c counts

	if o.disabled(DisableConstraint) {
		return c
	}

	if !o.disabled(DisableEquality) {
		for _, eq := range m.Equalities {
			if eq.Active {
				c.ne += rowsPerEquality(eq.Type)
			}
		}
	}

	if !o.disabled(DisableFrictionLoss) {
		for _, dof := range m.Dofs {
			if dof.FrictionLoss > 0 {
				c.nf++
			}
		}
		for _, t := range m.Tendons {
			if t.FrictionLoss > 0 {
				c.nf++
			}
		}
	}

	if !o.disabled(DisableLimit) {
		for _, j := range m.Joints {
			if !j.Limited {
				continue
			}
			switch j.Type {
			case Slide, Hinge:
				value := d.Qpos[j.QposAdr]
				for _, side := range limitSides {
					if limitSide(side, value, j.Range) < j.Margin {
						c.nl++
					}
				}
			case Ball:
				_, value := ballAngleAxis(d.Qpos, j.QposAdr)
				upper := j.Range[0]
				if j.Range[1] > upper {
					upper = j.Range[1]
				}
				if upper-value < j.Margin {
					c.nl++
				}
			}
		}
		for i, t := range m.Tendons {
			if !t.Limited {
				continue
			}
			length := d.TenLength[i]
			for _, side := range limitSides {
				if limitSide(side, length, t.Range) < t.Margin {
					c.nl++
				}
			}
		}
	}

	if !o.disabled(DisableContact) {
		pyr := m.IsPyramidal()
		for _, ct := range d.Contacts {
			if ct.Exclude == ContactInclude {
				c.nc += rowsPerContact(pyr, ct.Dim)
			}
		}
	}

	c.nefc = c.ne + c.nf + c.nl + c.nc
	return c
}

// checkCounts returns ErrCountMismatch when the rows Instantiate actually
// built disagree with the dry-run tally c. This is a fatal internal
// invariant, not a recoverable condition: the two tallies walk the same
// activity predicates, so any divergence means the counter and the
// instantiator have drifted out of sync. Skipped by the caller when the
// arena truncated the step, since that is an intentional, already-warned
// divergence rather than a bug.
func (d *Data) checkCounts(c counts) error {
	if d.NE != c.ne || d.NF != c.nf || d.NL != c.nl || d.NC != c.nc || d.Nefc != c.nefc {
		return wrapf(ErrCountMismatch,
			"counted ne=%d nf=%d nl=%d nc=%d nefc=%d, instantiated ne=%d nf=%d nl=%d nc=%d nefc=%d",
			c.ne, c.nf, c.nl, c.nc, c.nefc, d.NE, d.NF, d.NL, d.NC, d.Nefc)
	}
	return nil
}
