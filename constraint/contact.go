// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import "github.com/gazed/rigidconstraint/math/lin"

// ContactExclude flags why a detected contact does not get a constraint
// row, mirroring the reference solver's exclude codes.
type ContactExclude int

const (
	ContactInclude    ContactExclude = iota // an ordinary included contact
	ContactMarginOnly                       // distance exceeds margin but within inclusion range
	ContactNoDof                            // neither body has a free dof
	ContactUser                             // excluded by a caller-provided filter
)

// Contact is one narrow-phase result: the geometric and material
// parameters a contact constraint row is instantiated from. Detection
// (broad/narrow phase collision) happens upstream; this package only
// turns an already-detected contact into constraint rows.
type Contact struct {
	Dist     float64 // signed separation; negative is penetrating
	Margin   float64 // inclusion margin
	Dim      int     // 1 (frictionless), 3, 4, or 6 friction-cone dimension
	Frame    lin.M3  // rows are normal, tangent1, tangent2 in world space
	Point    lin.V3  // contact point in world space
	Friction [5]float64

	SolRef         [2]float64
	SolRefFriction [2]float64
	SolImp         [5]float64

	Body1, Body2 int
	Exclude      ContactExclude

	// filled in by the cooking stages below
	EfcAddress int // row address of this contact's first row, -1 if excluded
	Mu         float64
	H          [36]float64 // dim x dim cone Hessian, row-major
}
