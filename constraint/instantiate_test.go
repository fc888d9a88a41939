// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gazed/rigidconstraint/kinematics"
	"github.com/gazed/rigidconstraint/math/lin"
)

func newHingeLimitScenario(qpos float64) *Data {
	m := &Model{
		NV:   1,
		Dofs: []Dof{{InvWeight0: 1}},
		Joints: []Joint{{
			Type: Hinge, QposAdr: 0, DofAdr: 0,
			Limited: true, Range: [2]float64{-1, 1}, Margin: 0.01,
			SolRef: [2]float64{0.02, 1}, SolImp: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		}},
		Options: Options{Timestep: 0.002},
	}
	d := NewData(m)
	d.Qpos = []float64{qpos}
	d.Qvel = []float64{0}
	return d
}

func TestLimitJointSignAndPosMatchWorkedExample(t *testing.T) {
	d := newHingeLimitScenario(1.005)
	require.NoError(t, d.Build(0, 0))

	assert.Equal(t, 1, d.NL)
	assert.Equal(t, CnstrLimitJoint, d.EfcType[0])
	assert.InDelta(t, -1, d.JDense[0], 1e-9)
	assert.InDelta(t, -0.005, d.EfcPos[0], 1e-9)

	// zero acceleration: jar = J*0 - aref.
	jar := make([]float64, d.Nefc)
	for i := range jar {
		jar[i] = -d.EfcAref[i]
	}
	d.Update(jar, false, false)
	assert.Equal(t, StateQuadratic, d.EfcState[0])
}

func TestLimitJointBothSidesCanViolateWhenMarginIsWide(t *testing.T) {
	m := &Model{
		NV:   1,
		Dofs: []Dof{{InvWeight0: 1}},
		Joints: []Joint{{
			Type: Hinge, QposAdr: 0, DofAdr: 0,
			Limited: true, Range: [2]float64{-0.1, 0.1}, Margin: 1,
		}},
		Options: Options{Timestep: 0.002},
	}
	d := NewData(m)
	d.Qpos = []float64{0}
	d.Qvel = []float64{0}
	require.NoError(t, d.Build(0, 0))

	assert.Equal(t, 2, d.NL)
}

func TestLimitBallJointEmitsSingleThreeWideRow(t *testing.T) {
	m := &Model{
		NV: 3,
		Dofs: []Dof{
			{InvWeight0: 1, SolRef: [2]float64{0.02, 1}, SolImp: [5]float64{0.9, 0.95, 0.001, 0.5, 2}},
			{InvWeight0: 1},
			{InvWeight0: 1},
		},
		Joints: []Joint{{
			Type: Ball, QposAdr: 0, DofAdr: 0,
			Limited: true, Range: [2]float64{0, 0.5}, Margin: 0.01,
			SolRef: [2]float64{0.02, 1}, SolImp: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		}},
		Options: Options{Timestep: 0.002},
	}
	// rotation of 0.6 rad about X, past the 0.5 rad upper range.
	half := 0.3
	d := NewData(m)
	d.Qpos = []float64{math.Cos(half), math.Sin(half), 0, 0}
	d.Qvel = []float64{0, 0, 0}
	require.NoError(t, d.Build(0, 0))

	assert.Equal(t, 1, d.NL)
	assert.Equal(t, 1, d.Nefc)
	assert.Nil(t, d.J)
	require.Len(t, d.JDense, 3)
}

func TestEllipticFrictionRowFallsBackToContactSolrefWhenSolRefFrictionIsZero(t *testing.T) {
	m := &Model{Options: Options{Timestep: 0.002, ImpRatio: 1}}
	d := &Data{Model: m}
	d.Contacts = []Contact{{Dim: 2, Friction: [5]float64{0.5, 0.5, 0.5, 0.5, 0.5}}}
	d.rows = []row{
		{
			typ: CnstrContactElliptic, id: 0, pos: -0.001, margin: 0,
			solref: [2]float64{0.02, 1}, solimp: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
			elliptic: true, blockPos: 0,
		},
		{
			typ: CnstrContactElliptic, id: 0, pos: 0, margin: 0,
			solref: [2]float64{0.02, 1}, solimp: [5]float64{0.9, 0.95, 0.001, 0.5, 2},
			solreffriction: [2]float64{0, 0},
			elliptic:       true, blockPos: 1,
		},
	}
	d.makeImpedance([]float64{1.0, 1.0})

	// friction rows always force K=0, but B must come from the contact's
	// own solref since solreffriction was left at its zero default.
	assert.Equal(t, 0.0, d.EfcKBIP[4*1+0])
	assert.InDelta(t, 2/0.02, d.EfcKBIP[4*1+1], 1e-6)
}

func TestCountMismatchIsFatal(t *testing.T) {
	m := &Model{}
	d := &Data{Model: m}
	err := d.checkCounts(counts{ne: 1})
	require.Error(t, err)
}

// end-to-end: an elliptic contact whose SolRefFriction is left at its
// zero default must still cook a real K/B for its tangential rows from
// the contact's own SolRef, not from the zero vector.
func TestEllipticContactTangentialRowUsesContactSolrefEndToEnd(t *testing.T) {
	m := &Model{
		NV: 3,
		Bodies: []Body{
			{DofAdr: 0, DofNum: 0, ParentID: -1},
			{DofAdr: 0, DofNum: 3, ParentID: 0, InvWeight0: [2]float64{1, 1}},
		},
		Dofs:    []Dof{{ParentID: -1}, {ParentID: -1}, {ParentID: -1}},
		Options: Options{Cone: ConeElliptic, Timestep: 0.002, ImpRatio: 1},
	}
	identity := lin.M3{Xx: 1, Yy: 1, Zz: 1}
	d := NewData(m)
	d.Qpos = []float64{0, 0, 0}
	d.Qvel = []float64{0, 0, 0}
	d.XPos = []lin.V3{{}, {}}
	d.XMat = []lin.M3{identity, identity}
	d.XQuat = []lin.Q{{W: 1}, {W: 1}}
	d.DofAxes = []kinematics.DofAxis{
		{Axis: lin.V3{X: 1}},
		{Axis: lin.V3{Y: 1}},
		{Axis: lin.V3{Z: 1}},
	}
	d.Contacts = []Contact{{
		Dist: -0.001, Margin: 0, Dim: 3,
		Frame: identity, Point: lin.V3{},
		Friction: [5]float64{1, 1, 1, 1, 1},
		SolRef:   [2]float64{0.02, 1},
		SolImp:   [5]float64{0.9, 0.95, 0.001, 0.5, 2},
		Body1:    0, Body2: 1,
	}}
	require.NoError(t, d.Build(0, 0))

	require.Equal(t, 3, d.NC)
	assert.Equal(t, 0.0, d.EfcKBIP[4*1+0]) // friction row: K forced to 0
	assert.InDelta(t, 2/0.02, d.EfcKBIP[4*1+1], 1e-6)
}
