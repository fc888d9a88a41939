// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import "github.com/gazed/rigidconstraint/sparse"

// Assemble flattens the rows built by Instantiate into the efc_* arrays
// and the dense or sparse constraint Jacobian, resolving Sparse from
// Model.IsSparse. Call after Instantiate and before diagApprox/makeImpedance.
func (d *Data) Assemble() {
	d.Sparse = d.Model.IsSparse()
	n := len(d.rows)

	d.EfcType = make([]ConstraintType, n)
	d.EfcID = make([]int, n)
	d.EfcPos = make([]float64, n)
	d.EfcMargin = make([]float64, n)
	d.EfcFrictionLoss = make([]float64, n)

	for i, r := range d.rows {
		d.EfcType[i] = r.typ
		d.EfcID[i] = r.id
		d.EfcPos[i] = r.pos
		d.EfcMargin[i] = r.margin
		d.EfcFrictionLoss[i] = r.frictionloss
	}

	if d.Sparse {
		d.assembleSparse(n)
	} else {
		d.assembleDense(n)
	}
}

func (d *Data) assembleDense(n int) {
	nv := d.Model.NV
	dense := make([]float64, n*nv)
	for i, r := range d.rows {
		row := dense[i*nv : i*nv+nv]
		for k, col := range r.chain {
			row[col] = r.jvals[k]
		}
	}
	d.JDense = dense
	d.NNZJ = n * nv
}

func (d *Data) assembleSparse(n int) {
	rownnz := make([]int, n)
	for i, r := range d.rows {
		rownnz[i] = len(r.chain)
	}
	rowadr, total := sparse.PrefixSum(rownnz)

	data := make([]float64, total)
	colind := make([]int, total)
	for i, r := range d.rows {
		copy(data[rowadr[i]:], r.jvals)
		copy(colind[rowadr[i]:], r.chain)
	}

	d.J = &sparse.CSR{
		NV: d.Model.NV, NR: n,
		Data: data, ColInd: colind,
		RowNNZ: rownnz, RowAdr: rowadr,
		RowSuper: sparse.Supernodes(rownnz, rowadr, colind, n),
	}
	d.JT = sparse.Transpose(d.J)
	d.NNZJ = total
}

// mulJacVec computes res = J*vec, dispatching on Sparse.
func (d *Data) mulJacVec(vec, res []float64) {
	if d.Sparse {
		sparse.MulVec(d.J, vec, res)
	} else {
		sparse.MulVecDense(d.JDense, len(d.rows), d.Model.NV, vec, res)
	}
}

// mulJacTVec computes res += J'*vec, dispatching on Sparse. res is not
// cleared first.
func (d *Data) mulJacTVec(vec, res []float64) {
	if d.Sparse {
		sparse.MulTVec(d.J, vec, res)
	} else {
		sparse.MulTVecDense(d.JDense, len(d.rows), d.Model.NV, vec, res)
	}
}
