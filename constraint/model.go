// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

// Package constraint builds and evaluates the per-step constraint system
// of a rigid-body simulation: the sparse or dense Jacobian together with
// per-row reference, impedance, and regularization parameters, and the
// force/cost of a candidate generalized acceleration against it.
//
// Package constraint is the evaluation core of the simulation; it does
// not integrate state, detect contacts, or run the iterative solver that
// consumes the system it assembles.
package constraint

import "log/slog"

// Numeric floors mirrored from the reference solver so that regularized
// quantities never divide by (near) zero.
const (
	MinVal = 1e-15
	MinImp = 0.0001
	MaxImp = 0.9999
)

// JointType is the kind of articulation a joint provides.
type JointType int

const (
	Slide JointType = iota
	Hinge
	Ball
	Free
)

// EqType is the kind of equality constraint.
type EqType int

const (
	EqConnect EqType = iota
	EqWeld
	EqJoint
	EqTendon
)

// ConeMode selects the friction cone linearization.
type ConeMode int

const (
	ConePyramidal ConeMode = iota
	ConeElliptic
)

// JacobianMode selects the constraint Jacobian layout.
type JacobianMode int

const (
	JacDense JacobianMode = iota
	JacSparse
	JacAuto
)

// autoSparseThreshold is the nv at or above which JacAuto selects sparse.
const autoSparseThreshold = 60

// SolverType is the iterative solver family the dual-space projector is
// built for.
type SolverType int

const (
	SolverPGS SolverType = iota
	SolverCG
	SolverNewton
)

// Disable and enable feature bits.
const (
	DisableConstraint = 1 << iota
	DisableEquality
	DisableFrictionLoss
	DisableLimit
	DisableContact
	DisableRefSafe
)

const (
	EnableOverride = 1 << iota
)

// Body is the static, read-only kinematic description of one body.
type Body struct {
	DofAdr     int
	DofNum     int
	ParentID   int
	Simple     bool
	InvWeight0 [2]float64 // [0] translational, [1] rotational
}

// Dof is the static description of one generalized degree of freedom.
type Dof struct {
	ParentID     int // -1 for a root dof
	Madr         int
	InvWeight0   float64
	FrictionLoss float64
	SolRef       [2]float64
	SolImp       [5]float64
}

// Joint is the static description of one joint.
type Joint struct {
	Type    JointType
	QposAdr int
	DofAdr  int
	Limited bool
	Range   [2]float64
	Margin  float64
	SolRef  [2]float64
	SolImp  [5]float64
}

// Tendon is the static description of one tendon.
type Tendon struct {
	Limited      bool
	Range        [2]float64
	Margin       float64
	FrictionLoss float64
	SolRefLim    [2]float64
	SolImpLim    [5]float64
	SolRefFri    [2]float64
	SolImpFri    [5]float64
	InvWeight0   float64
	Length0      float64
}

// Equality is the static description of one equality constraint spec.
type Equality struct {
	Type   EqType
	Obj1ID int
	Obj2ID int // -1 when the constraint has a single object
	Active bool
	Data   [11]float64
	SolRef [2]float64
	SolImp [5]float64
}

// Options are the global, read-only simulation options that affect
// constraint assembly.
type Options struct {
	Cone             ConeMode
	Jacobian         JacobianMode
	Solver           SolverType
	NoslipIterations int
	Timestep         float64
	ImpRatio         float64
	OSolRef          [2]float64
	OSolImp          [5]float64
	OMargin          float64
	Disable          uint32
	Enable           uint32
}

func (o *Options) disabled(bit uint32) bool { return o.Disable&bit != 0 }
func (o *Options) enabled(bit uint32) bool  { return o.Enable&bit != 0 }

// Model is the read-only kinematic and parametric description of the
// articulated system. A Model is immutable for the lifetime of the steps
// that reference it and may be shared across concurrently-stepped Data
// instances.
type Model struct {
	NV         int
	Bodies     []Body
	Dofs       []Dof
	Joints     []Joint
	Tendons    []Tendon
	Equalities []Equality
	Options    Options

	// Logger receives recoverable-warning diagnostics (capacity
	// overflow, parameter auto-repair). Defaults to slog.Default()
	// when nil.
	Logger *slog.Logger
}

func (m *Model) logger() *slog.Logger {
	if m.Logger != nil {
		return m.Logger
	}
	return slog.Default()
}

// IsPyramidal reports whether the friction cone is linearized pyramidally.
func (m *Model) IsPyramidal() bool { return m.Options.Cone == ConePyramidal }

// IsSparse reports whether the constraint Jacobian is laid out sparsely
// for this model, resolving JacAuto against nv.
func (m *Model) IsSparse() bool {
	switch m.Options.Jacobian {
	case JacSparse:
		return true
	case JacDense:
		return false
	default: // JacAuto
		return m.NV >= autoSparseThreshold
	}
}

// IsDual reports whether a dual-space projection (AR) is required by the
// configured solver.
func (m *Model) IsDual() bool {
	return m.Options.Solver == SolverPGS || m.Options.NoslipIterations > 0
}

// dofParents returns each dof's parent dof index (-1 for a root), the
// dofParent slice kinematics.AncestorChain and JacDifPair walk. It is
// just a thin accessor kept here so callers do not reach into Model
// internals.
func (m *Model) dofParents() []int {
	p := make([]int, len(m.Dofs))
	for i, d := range m.Dofs {
		p[i] = d.ParentID
	}
	return p
}
