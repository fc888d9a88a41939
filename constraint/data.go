// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import (
	"github.com/gazed/rigidconstraint/kinematics"
	"github.com/gazed/rigidconstraint/massmatrix"
	"github.com/gazed/rigidconstraint/math/lin"
	"github.com/gazed/rigidconstraint/sparse"
)

// row is one not-yet-finalized constraint row: a sparse Jacobian entry
// plus the per-row parameters needed to cook its impedance and
// regularization. Rows are produced by the instantiator and consumed by
// the transposer/diagApprox/impedance/reference stages before being
// flattened into Data's efc_* arrays.
type row struct {
	typ ConstraintType
	id  int // owning dof/joint/tendon/equality/contact index

	chain []int     // ascending dof indices this row touches
	jvals []float64 // translational/scalar jacobian entries, len(chain)

	pos          float64
	margin       float64
	frictionloss float64

	solref         [2]float64
	solimp         [5]float64
	solreffriction [2]float64 // copied onto every elliptic contact row; read only for tangential rows (blockPos > 0)

	elliptic bool // true for rows belonging to an elliptic contact block
	blockPos int  // index of this row within its contact's row block
}

// ConstraintType tags the family a constraint row belongs to.
type ConstraintType int

const (
	CnstrEquality ConstraintType = iota
	CnstrFrictionDof
	CnstrFrictionTendon
	CnstrLimitJoint
	CnstrLimitTendon
	CnstrContactFrictionless
	CnstrContactPyramidal
	CnstrContactElliptic
)

// ConstraintState is the per-row activity classification produced by
// Update.
type ConstraintState int

const (
	StateQuadratic ConstraintState = iota
	StateLinearNeg
	StateLinearPos
	StateSatisfied
	StateCone
)

// Data holds one step's kinematic inputs, the assembled constraint
// system, and its evaluation outputs. A Data is reused across steps by
// calling Reset and re-running the pipeline (count, the arena reserve,
// Instantiate, ..., Update) against fresh inputs.
type Data struct {
	Model *Model

	// Per-step kinematic inputs, produced upstream by forward
	// kinematics and simply consumed here (see package kinematics).
	Qpos      []float64
	Qvel      []float64
	XPos      []lin.V3
	XMat      []lin.M3
	XQuat     []lin.Q
	TenLength []float64
	TenJ      *sparse.CSR // nv columns, one row per tendon
	DofAxes   []kinematics.DofAxis

	// Optional: required only when Model.IsDual() is true.
	Mass *massmatrix.MassMatrix

	Contacts []Contact

	arena rowArena
	rows  []row // finalized rows, ascending by family then id

	Sparse bool // resolved Jacobian layout for this step

	NE, NF, NL, NC, Nefc, NNZJ int

	EfcType         []ConstraintType
	EfcID           []int
	JDense          []float64 // Nefc*NV, valid when !Sparse
	J               *sparse.CSR
	JT              *sparse.CSR // transpose, sparse mode only
	EfcPos          []float64
	EfcMargin       []float64
	EfcFrictionLoss []float64
	EfcDiagApprox   []float64
	EfcR            []float64
	EfcD            []float64
	EfcKBIP         []float64 // stride 4: K, B, Impedance, ImpedanceDeriv
	EfcVel          []float64
	EfcAref         []float64
	EfcForce        []float64
	EfcState        []ConstraintState

	ARDense []float64 // Nefc*Nefc row-major, dense dual-space projection
	AR      *sparse.CSR

	QfrcConstraint []float64

	Warnings []Warning

	weldcnt int // running count of consecutive WELD-equality rows, shared by adjacent weld equalities
}

// NewData allocates a Data bound to model. qpos/qvel and the body frame
// arrays are expected to already be sized to the model before the
// pipeline runs.
func NewData(model *Model) *Data {
	return &Data{
		Model:          model,
		QfrcConstraint: make([]float64, model.NV),
	}
}

// Reset clears per-step outputs so the same Data can be reused for the
// next step's count/Instantiate/... pipeline.
func (d *Data) Reset() {
	d.rows = d.rows[:0]
	d.NE, d.NF, d.NL, d.NC, d.Nefc, d.NNZJ = 0, 0, 0, 0, 0, 0
	d.EfcType = nil
	d.EfcID = nil
	d.JDense = nil
	d.J = nil
	d.JT = nil
	d.EfcPos = nil
	d.EfcMargin = nil
	d.EfcFrictionLoss = nil
	d.EfcDiagApprox = nil
	d.EfcR = nil
	d.EfcD = nil
	d.EfcKBIP = nil
	d.EfcVel = nil
	d.EfcAref = nil
	d.EfcForce = nil
	d.EfcState = nil
	d.ARDense = nil
	d.AR = nil
	d.Warnings = d.Warnings[:0]
	d.weldcnt = 0
	for i := range d.QfrcConstraint {
		d.QfrcConstraint[i] = 0
	}
}
