// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package massmatrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSolveM2Identity(t *testing.T) {
	m := mat.NewSymDense(3, []float64{
		2, 0, 0,
		0, 3, 0,
		0, 0, 4,
	})
	mm, err := New(m)
	require.NoError(t, err)

	x := mat.NewDense(3, 2, []float64{
		2, 0,
		0, 3,
		4, 0,
	})
	y, err := mm.SolveM2(x)
	require.NoError(t, err)
	assert.InDelta(t, 1, y.At(0, 0), 1e-9)
	assert.InDelta(t, 0, y.At(1, 0), 1e-9)
	assert.InDelta(t, 1, y.At(2, 0), 1e-9)
	assert.InDelta(t, 0, y.At(0, 1), 1e-9)
	assert.InDelta(t, 1, y.At(1, 1), 1e-9)
}

func TestSolveVec(t *testing.T) {
	m := mat.NewSymDense(2, []float64{
		4, 0,
		0, 9,
	})
	mm, err := New(m)
	require.NoError(t, err)
	out, err := mm.SolveVec([]float64{8, 18})
	require.NoError(t, err)
	assert.InDelta(t, 2, out[0], 1e-9)
	assert.InDelta(t, 2, out[1], 1e-9)
}

func TestNewRejectsNonPositiveDefinite(t *testing.T) {
	m := mat.NewSymDense(2, []float64{
		0, 0,
		0, 0,
	})
	_, err := New(m)
	assert.Error(t, err)
}
