// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package kinematics provides the per-body-pair Jacobian primitives the
// constraint core assembles its rows from: the DOF ancestor-chain merge
// used to size and lay out a sparse Jacobian row, and the Jacobian
// difference between two body-anchored points.
//
// The per-DOF world-space screw axis (DofAxis) is treated the same way
// the constraint core treats xpos/xmat/xquat: a per-step input produced
// by the kinematic stage of the surrounding engine (forward kinematics,
// joint-axis placement) and simply consumed here.
package kinematics

import "github.com/gazed/rigidconstraint/math/lin"

// DofAxis is the world-space screw axis of one degree of freedom,
// evaluated once per step alongside xpos/xmat/xquat.
type DofAxis struct {
	Point lin.V3 // point on the world-space axis; unused for translational dofs
	Axis  lin.V3 // unit world-space axis
	Rot   bool   // true for a rotational (hinge/ball) dof, false for slide
}

// JacCol returns the translational, and (if Rot) rotational, Jacobian
// column this dof contributes to a point p in world space.
func (a DofAxis) JacCol(p lin.V3) (jp, jr lin.V3) {
	if a.Rot {
		var diff lin.V3
		diff.Sub(&p, &a.Point)
		jp.Cross(&a.Axis, &diff)
		return jp, a.Axis
	}
	return a.Axis, lin.V3{}
}

// AncestorChain walks dofParent from the last dof directly owned by a
// body (dofAdr+dofNum-1) up to the root, returning the dof indices in
// descending order. A body with no dofs (a purely fixed/welded body)
// returns an empty chain.
func AncestorChain(dofParent []int, dofAdr, dofNum int) []int {
	if dofNum <= 0 {
		return nil
	}
	chain := make([]int, 0, dofNum+4)
	for d := dofAdr + dofNum - 1; d >= dofAdr; d-- {
		chain = append(chain, d)
	}
	// continue past the body's own dofs into its ancestors.
	for d := dofParent[dofAdr]; d >= 0; d = dofParent[d] {
		chain = append(chain, d)
	}
	return chain
}

// MergeChain merges the ancestor dof chains of b1 and b2 into a single
// strictly-increasing (ascending) slice of dof indices, following the
// merge-sort-style union described for the constraint Jacobian: at each
// step the larger of the two chain heads is emitted and that chain is
// advanced; equal heads are emitted once and both chains advance.
func MergeChain(dofParent []int, dofAdr1, dofNum1, dofAdr2, dofNum2 int) []int {
	c1 := AncestorChain(dofParent, dofAdr1, dofNum1) // descending
	c2 := AncestorChain(dofParent, dofAdr2, dofNum2) // descending

	merged := make([]int, 0, len(c1)+len(c2))
	i, j := 0, 0
	for i < len(c1) && j < len(c2) {
		switch {
		case c1[i] == c2[j]:
			merged = append(merged, c1[i])
			i++
			j++
		case c1[i] > c2[j]:
			merged = append(merged, c1[i])
			i++
		default:
			merged = append(merged, c2[j])
			j++
		}
	}
	merged = append(merged, c1[i:]...)
	merged = append(merged, c2[j:]...)

	// merged is descending; callers (and CSR storage) want ascending.
	reverse(merged)
	return merged
}

// MergeChainSimple handles the common case where both bodies are marked
// "simple" (each has no joints beyond its own direct dofs, so its
// ancestor chain is exactly its own contiguous dof range). The union is
// then a plain concatenation of the two contiguous, individually sorted
// ranges, merged in ascending order without walking dofParent at all.
func MergeChainSimple(dofAdr1, dofNum1, dofAdr2, dofNum2 int) []int {
	merged := make([]int, 0, dofNum1+dofNum2)
	i, j := dofAdr1, dofAdr2
	end1, end2 := dofAdr1+dofNum1, dofAdr2+dofNum2
	for i < end1 && j < end2 {
		switch {
		case i == j:
			merged = append(merged, i)
			i++
			j++
		case i < j:
			merged = append(merged, i)
			i++
		default:
			merged = append(merged, j)
			j++
		}
	}
	for ; i < end1; i++ {
		merged = append(merged, i)
	}
	for ; j < end2; j++ {
		merged = append(merged, j)
	}
	return merged
}

func reverse(s []int) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
