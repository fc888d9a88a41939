// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package massmatrix holds the Cholesky factorization of the generalized
// mass matrix M and the solve M^-1*X the dual-space projector needs to turn
// a constraint Jacobian into AR = J*M^-1*J' + diag(R).
//
// The factorization itself is produced upstream (the mass-matrix build
// and LDL factorization are, like forward kinematics, out of the
// constraint core's scope) and handed to this package as a plain dense
// matrix, matching how the teacher's body.go caches a precomputed
// m.iitw (world inverse inertia tensor) instead of refactorizing it
// every call.
package massmatrix

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// MassMatrix wraps the Cholesky factorization L (M = L*L') of an nv x nv
// generalized mass matrix.
type MassMatrix struct {
	NV   int
	chol *mat.Cholesky
}

// New factorizes the symmetric mass matrix m. Returns an error if m is
// not positive definite (a fatal model error: mass matrices are always
// SPD for a well-formed articulated system).
func New(m *mat.SymDense) (*MassMatrix, error) {
	nv := m.SymmetricDim()
	var chol mat.Cholesky
	if ok := chol.Factorize(m); !ok {
		return nil, errors.New("massmatrix: mass matrix is not positive definite")
	}
	return &MassMatrix{NV: nv, chol: &chol}, nil
}

// SolveM2 returns Y = M^-1 * X for a dense nv x n right-hand side X,
// reusing the cached Cholesky factor. With X = J', multiplying J by Y
// (plus diag(R)) gives the dual-space projection matrix AR = J*M^-1*J'.
func (mm *MassMatrix) SolveM2(x *mat.Dense) (*mat.Dense, error) {
	r, c := x.Dims()
	if r != mm.NV {
		return nil, errors.Errorf("massmatrix: SolveM2 expected %d rows, got %d", mm.NV, r)
	}
	y := mat.NewDense(r, c, nil)
	if err := mm.chol.SolveTo(y, x); err != nil {
		return nil, errors.Wrap(err, "massmatrix: SolveM2 failed")
	}
	return y, nil
}

// SolveVec returns M^-1 * v for a single nv-length vector v.
func (mm *MassMatrix) SolveVec(v []float64) ([]float64, error) {
	x := mat.NewDense(mm.NV, 1, append([]float64(nil), v...))
	y, err := mm.SolveM2(x)
	if err != nil {
		return nil, err
	}
	out := make([]float64, mm.NV)
	for i := 0; i < mm.NV; i++ {
		out[i] = y.At(i, 0)
	}
	return out, nil
}
