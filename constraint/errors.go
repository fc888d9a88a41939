// Copyright © 2024 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package constraint

import "github.com/pkg/errors"

// Fatal model errors: malformed input the caller must fix before the
// step can proceed. Recoverable conditions (capacity overflow, parameter
// repair) go through Data.warn instead.
var (
	ErrNegativeNV        = errors.New("constraint: model.NV is negative")
	ErrDofChainBroken    = errors.New("constraint: dof parent chain is cyclic or out of range")
	ErrUnknownJointType  = errors.New("constraint: joint has an unrecognized type")
	ErrUnknownEqType     = errors.New("constraint: equality has an unrecognized type")
	ErrMassMatrixMissing = errors.New("constraint: dual-space projection requested but Data.Mass is nil")
	ErrCountMismatch     = errors.New("constraint: instantiated row counts disagree with the dry-run count")
)

func wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}
