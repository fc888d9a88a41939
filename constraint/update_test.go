// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newSingleRowData(typ ConstraintType, R, D, frictionloss float64) *Data {
	m := &Model{NV: 1}
	d := &Data{Model: m}
	d.rows = []row{{typ: typ, chain: []int{0}, jvals: []float64{1}, frictionloss: frictionloss}}
	d.Assemble()
	d.EfcR = []float64{R}
	d.EfcD = []float64{D}
	d.QfrcConstraint = make([]float64, 1)
	return d
}

func TestUpdateEqualityAlwaysQuadratic(t *testing.T) {
	d := newSingleRowData(CnstrEquality, 2, 0.5, 0)
	cost := d.Update([]float64{1.0}, true, false)
	assert.Equal(t, StateQuadratic, d.EfcState[0])
	assert.InDelta(t, -0.5, d.EfcForce[0], 1e-9)
	assert.InDelta(t, 0.25, cost, 1e-9)
}

func TestUpdateFrictionDeadZone(t *testing.T) {
	d := newSingleRowData(CnstrFrictionDof, 1, 1, 0.5)
	d.Update([]float64{0.1}, false, false)
	assert.Equal(t, StateQuadratic, d.EfcState[0])
}

func TestUpdateFrictionLinearPos(t *testing.T) {
	d := newSingleRowData(CnstrFrictionDof, 1, 1, 0.1)
	d.Update([]float64{5}, false, false)
	assert.Equal(t, StateLinearPos, d.EfcState[0])
	assert.Equal(t, -0.1, d.EfcForce[0])
}

func TestUpdateUnilateralSatisfied(t *testing.T) {
	d := newSingleRowData(CnstrLimitJoint, 1, 1, 0)
	d.Update([]float64{0.5}, false, false)
	assert.Equal(t, StateSatisfied, d.EfcState[0])
	assert.Equal(t, 0.0, d.EfcForce[0])
}

func TestUpdateUnilateralViolated(t *testing.T) {
	d := newSingleRowData(CnstrLimitJoint, 2, 0.5, 0)
	d.Update([]float64{-1}, false, false)
	assert.Equal(t, StateQuadratic, d.EfcState[0])
	assert.InDelta(t, 0.5, d.EfcForce[0], 1e-9)
}

func TestUpdateEllipticTopZoneSatisfied(t *testing.T) {
	m := &Model{NV: 3}
	d := &Data{Model: m}
	d.Contacts = []Contact{{Dim: 3, Mu: 1, Friction: [5]float64{1}}}
	d.rows = []row{
		{typ: CnstrContactElliptic, id: 0, chain: []int{0}, jvals: []float64{1}, elliptic: true, blockPos: 0},
		{typ: CnstrContactElliptic, id: 0, chain: []int{1}, jvals: []float64{1}, elliptic: true, blockPos: 1},
		{typ: CnstrContactElliptic, id: 0, chain: []int{2}, jvals: []float64{1}, elliptic: true, blockPos: 2},
	}
	d.Assemble()
	d.EfcR = []float64{1, 1, 1}
	d.EfcD = []float64{1, 1, 1}
	d.QfrcConstraint = make([]float64, 3)

	// large positive normal residual, small tangential (N large, T small): top zone.
	d.Update([]float64{10, 0.01, 0.01}, false, false)
	assert.Equal(t, StateSatisfied, d.EfcState[0])
	assert.Equal(t, 0.0, d.EfcForce[0])
}

func TestUpdateEllipticBottomZoneQuadratic(t *testing.T) {
	m := &Model{NV: 3}
	d := &Data{Model: m}
	d.Contacts = []Contact{{Dim: 3, Mu: 1, Friction: [5]float64{1}}}
	d.rows = []row{
		{typ: CnstrContactElliptic, id: 0, chain: []int{0}, jvals: []float64{1}, elliptic: true, blockPos: 0},
		{typ: CnstrContactElliptic, id: 0, chain: []int{1}, jvals: []float64{1}, elliptic: true, blockPos: 1},
		{typ: CnstrContactElliptic, id: 0, chain: []int{2}, jvals: []float64{1}, elliptic: true, blockPos: 2},
	}
	d.Assemble()
	d.EfcR = []float64{1, 1, 1}
	d.EfcD = []float64{1, 1, 1}
	d.QfrcConstraint = make([]float64, 3)

	// large negative normal residual, small tangential: bottom zone.
	d.Update([]float64{-10, 0.01, 0.01}, false, false)
	assert.Equal(t, StateQuadratic, d.EfcState[0])
}
