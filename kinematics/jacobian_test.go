// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package kinematics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/gazed/rigidconstraint/math/lin"
)

// single slide dof 0 moves body 1 along X; single slide dof 1 moves
// body 2 along Y. Both are roots (no ancestors), so the chains never
// overlap.
func TestJacDifPairTranslational(t *testing.T) {
	dofParent := []int{-1, -1}
	axes := []DofAxis{
		{Axis: lin.V3{X: 1}},
		{Axis: lin.V3{Y: 1}},
	}
	b1 := Body{DofAdr: 0, DofNum: 1}
	b2 := Body{DofAdr: 1, DofNum: 1}

	chain, jp, jr, nv := JacDifPair(axes, dofParent, b1, b2, lin.V3{}, lin.V3{}, false)
	assert.Equal(t, 2, nv)
	assert.Equal(t, []int{0, 1}, chain)
	assert.Nil(t, jr)
	assert.Equal(t, lin.V3{X: -1}, jp[0])
	assert.Equal(t, lin.V3{Y: 1}, jp[1])
}

// a shared ancestor dof should cancel out of the difference when both
// bodies apply it identically (connecting a body to itself).
func TestJacDifPairSharedAncestorCancels(t *testing.T) {
	dofParent := []int{-1}
	axes := []DofAxis{{Axis: lin.V3{X: 1}}}
	b := Body{DofAdr: 0, DofNum: 1}

	chain, jp, _, nv := JacDifPair(axes, dofParent, b, b, lin.V3{X: 5}, lin.V3{X: 5}, false)
	assert.Equal(t, 1, nv)
	assert.Equal(t, []int{0}, chain)
	assert.Equal(t, lin.V3{}, jp[0])
}

func TestJacDifPairRotational(t *testing.T) {
	dofParent := []int{-1}
	axes := []DofAxis{{Axis: lin.V3{Z: 1}, Rot: true, Point: lin.V3{}}}
	b1 := Body{DofAdr: 0, DofNum: 1}
	b2 := Body{DofAdr: 0, DofNum: 0} // body 2 has no dofs: static reference

	chain, jp, jr, nv := JacDifPair(axes, dofParent, b1, b2, lin.V3{X: 1}, lin.V3{X: 1}, true)
	assert.Equal(t, 1, nv)
	assert.Equal(t, []int{0}, chain)
	// axis(Z) x (p-point) = (0,0,1) x (1,0,0) = (0,1,0); negated since
	// only b1 contributes.
	assert.InDelta(t, 0, jp[0].X, 1e-12)
	assert.InDelta(t, -1, jp[0].Y, 1e-12)
	assert.Equal(t, lin.V3{Z: -1}, jr[0])
}
