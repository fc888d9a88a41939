// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package sparse provides the compressed-sparse-row primitives the
// constraint core needs to assemble and combine Jacobian rows: prefix-sum
// row addressing, sorted-index merge of two sparse vectors, transpose,
// supernode detection, and sparse/dense matrix-vector products.
//
// Package sparse is provided as part of the constraint core.
package sparse

// CSR is a row-major compressed-sparse-row matrix with NV columns. Rows
// are stored back to back in Data/ColInd; RowAdr[r] is the offset of row
// r's first entry and RowNNZ[r] is its entry count. Column indices within
// a row are strictly increasing.
type CSR struct {
	NV       int     // number of columns (e.g. nv degrees of freedom)
	NR       int     // number of rows
	Data     []float64
	ColInd   []int
	RowNNZ   []int
	RowAdr   []int
	RowSuper []int // contiguous rows below r, inclusive, sharing r's sparsity pattern
}

// PrefixSum turns a per-row nonzero count into row start addresses.
// Returns the addresses and the total nonzero count.
func PrefixSum(rownnz []int) ([]int, int) {
	rowadr := make([]int, len(rownnz))
	total := 0
	for r, n := range rownnz {
		rowadr[r] = total
		total += n
	}
	return rowadr, total
}

// CombineCount returns the number of nonzeros in the union of two sorted
// index sets, i.e. the size of a := a + alpha*b without materializing it.
func CombineCount(aInd []int, aNNZ int, bInd []int, bNNZ int) int {
	i, j, count := 0, 0, 0
	for i < aNNZ && j < bNNZ {
		switch {
		case aInd[i] == bInd[j]:
			i++
			j++
		case aInd[i] < bInd[j]:
			i++
		default:
			j++
		}
		count++
	}
	count += (aNNZ - i) + (bNNZ - j)
	return count
}

// Combine computes a := a + alpha*b for two sparse vectors given as
// (value, sorted index, count) triples, returning the merged value and
// index slices in sorted order. Matches mju_combineSparse's semantics.
func Combine(aVal []float64, aInd []int, aNNZ int, bVal []float64, bInd []int, bNNZ int, alpha float64) ([]float64, []int, int) {
	n := CombineCount(aInd, aNNZ, bInd, bNNZ)
	outVal := make([]float64, n)
	outInd := make([]int, n)
	i, j, k := 0, 0, 0
	for i < aNNZ && j < bNNZ {
		switch {
		case aInd[i] == bInd[j]:
			outInd[k] = aInd[i]
			outVal[k] = aVal[i] + alpha*bVal[j]
			i++
			j++
		case aInd[i] < bInd[j]:
			outInd[k] = aInd[i]
			outVal[k] = aVal[i]
			i++
		default:
			outInd[k] = bInd[j]
			outVal[k] = alpha * bVal[j]
			j++
		}
		k++
	}
	for ; i < aNNZ; i++ {
		outInd[k] = aInd[i]
		outVal[k] = aVal[i]
		k++
	}
	for ; j < bNNZ; j++ {
		outInd[k] = bInd[j]
		outVal[k] = alpha * bVal[j]
		k++
	}
	return outVal, outInd, n
}

// Supernodes groups contiguous rows that share an identical sparsity
// pattern (same column indices). RowSuper[r] holds the number of rows,
// starting at r, in r's supernode; rows inside a supernode other than the
// first hold 0.
func Supernodes(rownnz []int, rowadr []int, colind []int, nr int) []int {
	super := make([]int, nr)
	r := 0
	for r < nr {
		length := 1
		for r+length < nr && samePattern(rownnz, rowadr, colind, r, r+length) {
			length++
		}
		super[r] = length
		for k := 1; k < length; k++ {
			super[r+k] = 0
		}
		r += length
	}
	return super
}

func samePattern(rownnz, rowadr, colind []int, a, b int) bool {
	if rownnz[a] != rownnz[b] {
		return false
	}
	ar, br := rowadr[a], rowadr[b]
	for k := 0; k < rownnz[a]; k++ {
		if colind[ar+k] != colind[br+k] {
			return false
		}
	}
	return true
}

// Transpose builds the transpose of c, a CSR matrix with c.NV rows and
// c.NR columns.
func Transpose(c *CSR) *CSR {
	t := &CSR{NV: c.NR, NR: c.NV}
	t.RowNNZ = make([]int, c.NV)
	for _, col := range c.ColInd[:sumNNZ(c)] {
		t.RowNNZ[col]++
	}
	t.RowAdr, _ = PrefixSum(t.RowNNZ)
	total := 0
	for _, n := range t.RowNNZ {
		total += n
	}
	t.Data = make([]float64, total)
	t.ColInd = make([]int, total)
	cursor := append([]int(nil), t.RowAdr...)
	for r := 0; r < c.NR; r++ {
		base := c.RowAdr[r]
		for k := 0; k < c.RowNNZ[r]; k++ {
			col := c.ColInd[base+k]
			dst := cursor[col]
			t.ColInd[dst] = r
			t.Data[dst] = c.Data[base+k]
			cursor[col]++
		}
	}
	t.RowSuper = Supernodes(t.RowNNZ, t.RowAdr, t.ColInd, t.NR)
	return t
}

func sumNNZ(c *CSR) int {
	total := 0
	for _, n := range c.RowNNZ {
		total += n
	}
	return total
}

// MulVec computes res = c*vec where vec has c.NV elements. res must have
// c.NR elements.
func MulVec(c *CSR, vec []float64, res []float64) {
	for r := 0; r < c.NR; r++ {
		base := c.RowAdr[r]
		sum := 0.0
		for k := 0; k < c.RowNNZ[r]; k++ {
			sum += c.Data[base+k] * vec[c.ColInd[base+k]]
		}
		res[r] = sum
	}
}

// MulTVec computes res += c'*vec where vec has c.NR elements. res must
// have c.NV elements and is not cleared first.
func MulTVec(c *CSR, vec []float64, res []float64) {
	for r := 0; r < c.NR; r++ {
		base := c.RowAdr[r]
		v := vec[r]
		if v == 0 {
			continue
		}
		for k := 0; k < c.RowNNZ[r]; k++ {
			res[c.ColInd[base+k]] += c.Data[base+k] * v
		}
	}
}

// MulVecDense computes res = J*vec for a dense row-major nr x nv matrix J.
func MulVecDense(dense []float64, nr, nv int, vec []float64, res []float64) {
	for r := 0; r < nr; r++ {
		row := dense[r*nv : r*nv+nv]
		sum := 0.0
		for c := 0; c < nv; c++ {
			sum += row[c] * vec[c]
		}
		res[r] = sum
	}
}

// MulTVecDense computes res += J'*vec for a dense row-major nr x nv matrix
// J. res must have nv elements and is not cleared first.
func MulTVecDense(dense []float64, nr, nv int, vec []float64, res []float64) {
	for r := 0; r < nr; r++ {
		v := vec[r]
		if v == 0 {
			continue
		}
		row := dense[r*nv : r*nv+nv]
		for c := 0; c < nv; c++ {
			res[c] += row[c] * v
		}
	}
}
