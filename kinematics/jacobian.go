// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematics

import "github.com/gazed/rigidconstraint/math/lin"

// Body carries the per-body data JacDifPair needs: its own direct dof
// range and, through dofParent, its ancestor chain.
type Body struct {
	DofAdr int
	DofNum int
}

// JacDifPair computes the Jacobian difference J(b2, p2) - J(b1, p1) for
// two world-space points p1 (on body b1) and p2 (on body b2), projected
// onto the union of the two bodies' ancestor dof chains. axes must be
// indexed by global dof id. Jr is nil unless wantRot is set.
//
// Returns the ascending dof chain and the per-chain-entry Jacobian
// difference columns; NV is len(chain).
func JacDifPair(axes []DofAxis, dofParent []int, b1, b2 Body, p1, p2 lin.V3, wantRot bool) (chain []int, Jp []lin.V3, Jr []lin.V3, NV int) {
	c1 := AncestorChain(dofParent, b1.DofAdr, b1.DofNum) // descending
	c2 := AncestorChain(dofParent, b2.DofAdr, b2.DofNum) // descending

	chain = make([]int, 0, len(c1)+len(c2))
	Jp = make([]lin.V3, 0, len(c1)+len(c2))
	if wantRot {
		Jr = make([]lin.V3, 0, len(c1)+len(c2))
	}

	i, j := 0, 0
	emit := func(d int, in1, in2 bool) {
		var jp lin.V3
		var jr lin.V3
		if in1 {
			p, r := axes[d].JacCol(p1)
			jp.Sub(&jp, &p)
			if wantRot {
				jr.Sub(&jr, &r)
			}
		}
		if in2 {
			p, r := axes[d].JacCol(p2)
			jp.Add(&jp, &p)
			if wantRot {
				jr.Add(&jr, &r)
			}
		}
		chain = append(chain, d)
		Jp = append(Jp, jp)
		if wantRot {
			Jr = append(Jr, jr)
		}
	}

	// walk descending, building the union and its contributions; the
	// result is appended in descending order and reversed at the end so
	// callers get strictly increasing dof indices.
	for i < len(c1) && j < len(c2) {
		switch {
		case c1[i] == c2[j]:
			emit(c1[i], true, true)
			i++
			j++
		case c1[i] > c2[j]:
			emit(c1[i], true, false)
			i++
		default:
			emit(c2[j], false, true)
			j++
		}
	}
	for ; i < len(c1); i++ {
		emit(c1[i], true, false)
	}
	for ; j < len(c2); j++ {
		emit(c2[j], false, true)
	}

	reverseV3(Jp)
	if wantRot {
		reverseV3(Jr)
	}
	reverse(chain)
	return chain, Jp, Jr, len(chain)
}

func reverseV3(s []lin.V3) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

// ScatterDense writes the sparse (chain, values) pair into a dense
// length-nv row, leaving all other entries untouched (the caller is
// expected to start from a zeroed row).
func ScatterDense(row []float64, chain []int, values []lin.V3, component func(lin.V3) float64) {
	for k, d := range chain {
		row[d] = component(values[k])
	}
}
