// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazed/rigidconstraint/kinematics"
	"github.com/gazed/rigidconstraint/math/lin"
)

// a free point mass connected to a fixed world anchor 0.1 away along X.
func newConnectScenario() *Data {
	m := &Model{
		NV: 3,
		Bodies: []Body{
			{DofAdr: 0, DofNum: 0, ParentID: -1, InvWeight0: [2]float64{0, 0}},
			{DofAdr: 0, DofNum: 3, ParentID: 0, InvWeight0: [2]float64{1, 1}},
		},
		Dofs: []Dof{
			{ParentID: -1, InvWeight0: 1},
			{ParentID: -1, InvWeight0: 1},
			{ParentID: -1, InvWeight0: 1},
		},
		Equalities: []Equality{{
			Type: EqConnect, Obj1ID: 0, Obj2ID: 1, Active: true,
			SolRef: [2]float64{0.02, 1},
			SolImp: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		}},
		Options: Options{Timestep: 0.002, ImpRatio: 1},
	}
	identity := lin.M3{Xx: 1, Yy: 1, Zz: 1}
	d := NewData(m)
	d.Qpos = []float64{0, 0, 0}
	d.Qvel = []float64{0, 0, 0}
	d.XPos = []lin.V3{{}, {X: 0.1}}
	d.XMat = []lin.M3{identity, identity}
	d.XQuat = []lin.Q{{W: 1}, {W: 1}}
	d.DofAxes = []kinematics.DofAxis{
		{Axis: lin.V3{X: 1}},
		{Axis: lin.V3{Y: 1}},
		{Axis: lin.V3{Z: 1}},
	}
	return d
}

func TestConnectEqualityAssemblesThreeRows(t *testing.T) {
	d := newConnectScenario()
	require.NoError(t, d.Build(0, 0))

	assert.Equal(t, 3, d.NE)
	assert.Equal(t, 3, d.Nefc)
	assert.False(t, d.Sparse)
	assert.InDelta(t, -0.1, d.EfcPos[0], 1e-9)
	assert.InDelta(t, -1, d.JDense[0*3+0], 1e-9)
	assert.InDelta(t, 0, d.JDense[1*3+0], 1e-9)
}

func TestConnectEqualityReferenceAndUpdate(t *testing.T) {
	d := newConnectScenario()
	require.NoError(t, d.Build(0, 0))

	jar := make([]float64, d.Nefc)
	copy(jar, d.EfcAref)
	cost := d.Update(jar, true, false)
	assert.GreaterOrEqual(t, cost, 0.0)
	for _, s := range d.EfcState {
		assert.Equal(t, StateQuadratic, s)
	}
	// with jar = +aref, row 0's force is -D*aref < 0; its Jacobian entry on
	// dof 0 is -1, so the generalized force pushes body 1 along +X.
	assert.Greater(t, d.QfrcConstraint[0], 0.0)
}

func TestConnectEqualitySparseDenseParity(t *testing.T) {
	dense := newConnectScenario()
	dense.Model.Options.Jacobian = JacDense
	require.NoError(t, dense.Build(0, 0))

	sparse := newConnectScenario()
	sparse.Model.Options.Jacobian = JacSparse
	require.NoError(t, sparse.Build(0, 0))

	for i := 0; i < dense.Nefc; i++ {
		for c := 0; c < dense.Model.NV; c++ {
			var sparseVal float64
			for k := 0; k < sparse.J.RowNNZ[i]; k++ {
				col := sparse.J.ColInd[sparse.J.RowAdr[i]+k]
				if col == c {
					sparseVal = sparse.J.Data[sparse.J.RowAdr[i]+k]
				}
			}
			assert.InDelta(t, dense.JDense[i*dense.Model.NV+c], sparseVal, 1e-9)
		}
	}
}
