// Copyright © 2013-2015 Galvanized Logic Inc.
// Use is governed by a BSD-style license found in the LICENSE file.

package lin

// rigidmath.go adds a handful of free-function wrappers over the existing
// V3/Q/M3 methods, named to match the small set of rigid-body primitives
// that a constraint-assembly core expects from its math layer: rotating a
// vector by a matrix, composing quaternions, negating a quaternion, and
// recovering an angular velocity from a quaternion delta.

// RotVecMat sets out to m*v and returns it. Equivalent to out.MultMv(m, v)
// but named to match the body-frame rotation used when mapping a local
// anchor point into world space.
func RotVecMat(out *V3, v *V3, m *M3) *V3 {
	return out.MultMv(m, v)
}

// MulQuat sets out to a*b (quaternion composition, a applied after b is
// NOT assumed; this follows Q.Mult: rotation of s applied to r) and
// returns it.
func MulQuat(out, a, b *Q) *Q {
	return out.Mult(a, b)
}

// NegQuat sets out to the conjugate of q (negated vector part, same
// scalar part) and returns it. For a unit quaternion this is the inverse.
func NegQuat(out, q *Q) *Q {
	return out.Inv(q)
}

// MulQuatAxis sets out to the product of quaternion q and the pure
// quaternion (axis, 0), i.e. q * (axis.X, axis.Y, axis.Z, 0), and returns
// the axis components of the result as the vector part of out.
func MulQuatAxis(out *Q, q *Q, axis *V3) *Q {
	return out.MultQV(q, axis)
}

// Normalize3 scales v in place to unit length and returns it. A
// zero-length vector is left unchanged (matches V3.Unit).
func Normalize3(v *V3) *V3 {
	return v.Unit()
}

// QuatToVel recovers the angular velocity vector that would rotate a body
// from identity to q over dt seconds, using the axis-angle decomposition
// of q. Returns the zero vector for dt <= 0.
func QuatToVel(out *V3, q *Q, dt float64) *V3 {
	if dt <= 0 {
		return out.SetS(0, 0, 0)
	}
	ax, ay, az, angle := q.Aa()
	angle = Nang(angle)
	return out.SetS(ax*angle/dt, ay*angle/dt, az*angle/dt)
}
