package odom

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Vector3 is a 3-vector in metres.
type Vector3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vector3) Add(w Vector3) Vector3 { return Vector3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vector3) Sub(w Vector3) Vector3 { return Vector3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns f·v.
func (v Vector3) Scale(f float64) Vector3 { return Vector3{f * v.X, f * v.Y, f * v.Z} }

// Dot returns the dot product v·w.
func (v Vector3) Dot(w Vector3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v×w.
func (v Vector3) Cross(w Vector3) Vector3 {
	return Vector3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vector3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// SquaredNorm returns the squared Euclidean length of v.
func (v Vector3) SquaredNorm() float64 { return v.Dot(v) }

// RotX rotates v about the x axis by ang.
func RotX(v Vector3, ang Angle) Vector3 {
	y := v.Y
	return Vector3{
		X: v.X,
		Y: ang.Cos()*y - ang.Sin()*v.Z,
		Z: ang.Sin()*y + ang.Cos()*v.Z,
	}
}

// RotY rotates v about the y axis by ang.
func RotY(v Vector3, ang Angle) Vector3 {
	x := v.X
	return Vector3{
		X: ang.Cos()*x + ang.Sin()*v.Z,
		Y: v.Y,
		Z: ang.Cos()*v.Z - ang.Sin()*x,
	}
}

// RotZ rotates v about the z axis by ang.
func RotZ(v Vector3, ang Angle) Vector3 {
	x := v.X
	return Vector3{
		X: ang.Cos()*x - ang.Sin()*v.Y,
		Y: ang.Sin()*x + ang.Cos()*v.Y,
		Z: v.Z,
	}
}

// RotateZXY applies intrinsic rotations in the order Z, then X, then Y.
// The solver, de-skew and pose accumulation all rely on exactly this order;
// RotateYXZ with negated angles is its inverse.
func RotateZXY(v Vector3, az, ax, ay Angle) Vector3 {
	return RotY(RotX(RotZ(v, az), ax), ay)
}

// RotateYXZ applies intrinsic rotations in the order Y, then X, then Z.
func RotateYXZ(v Vector3, ay, ax, az Angle) Vector3 {
	return RotZ(RotX(RotY(v, ay), ax), az)
}

// Twist is a six-degree-of-freedom rigid-body pose: three Euler angles and a
// translation. Rotations compose in the RotateZXY/RotateYXZ convention above.
type Twist struct {
	RotX, RotY, RotZ Angle
	Pos              Vector3
}

// eulerMatrix builds the 3x3 rotation matrix Rz(yaw)·Ry(pitch)·Rx(roll).
// With the odometry's axis permutation a Twist maps in as roll=RotY,
// pitch=RotX, yaw=RotZ.
func eulerMatrix(roll, pitch, yaw float64) *mat.Dense {
	sr, cr := math.Sin(roll), math.Cos(roll)
	sp, cp := math.Sin(pitch), math.Cos(pitch)
	sy, cy := math.Sin(yaw), math.Cos(yaw)

	return mat.NewDense(3, 3, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
}

// eulerAngles extracts (roll, pitch, yaw) from a rotation matrix built by
// eulerMatrix. Pitch is confined to (-pi/2, pi/2).
func eulerAngles(r mat.Matrix) (roll, pitch, yaw float64) {
	roll = math.Atan2(r.At(2, 1), r.At(2, 2))
	pitch = math.Asin(-r.At(2, 0))
	yaw = math.Atan2(r.At(1, 0), r.At(0, 0))
	return roll, pitch, yaw
}

// RotationMatrix returns the pose's 3x3 rotation matrix in the affine
// composition convention used for accumulation and trajectory export.
func (t Twist) RotationMatrix() *mat.Dense {
	return eulerMatrix(t.RotY.Rad(), t.RotX.Rad(), t.RotZ.Rad())
}

// AccumulateRotation composes the running rotation (cx, cy, cz) with an
// incremental rotation (lx, ly, lz) as last·current in affine-matrix form and
// extracts the Euler angles in the same order. The hand-expanded trigonometric
// version of this composition disagrees on wrap-around and must not be used.
func AccumulateRotation(cx, cy, cz, lx, ly, lz Angle) (ox, oy, oz Angle) {
	current := eulerMatrix(cy.Rad(), cx.Rad(), cz.Rad())
	last := eulerMatrix(ly.Rad(), lx.Rad(), lz.Rad())

	var combined mat.Dense
	combined.Mul(last, current)

	roll, pitch, yaw := eulerAngles(&combined)
	return NewAngle(pitch), NewAngle(roll), NewAngle(yaw)
}
