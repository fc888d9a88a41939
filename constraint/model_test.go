// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPyramidalElliptic(t *testing.T) {
	m := &Model{Options: Options{Cone: ConePyramidal}}
	assert.True(t, m.IsPyramidal())
	m.Options.Cone = ConeElliptic
	assert.False(t, m.IsPyramidal())
}

func TestIsSparseAuto(t *testing.T) {
	small := &Model{NV: 10, Options: Options{Jacobian: JacAuto}}
	assert.False(t, small.IsSparse())

	large := &Model{NV: 60, Options: Options{Jacobian: JacAuto}}
	assert.True(t, large.IsSparse())

	forced := &Model{NV: 2, Options: Options{Jacobian: JacSparse}}
	assert.True(t, forced.IsSparse())
}

func TestIsDual(t *testing.T) {
	m := &Model{Options: Options{Solver: SolverNewton, NoslipIterations: 0}}
	assert.False(t, m.IsDual())
	m.Options.NoslipIterations = 2
	assert.True(t, m.IsDual())
	m.Options.NoslipIterations = 0
	m.Options.Solver = SolverPGS
	assert.True(t, m.IsDual())
}
