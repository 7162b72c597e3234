package odom

import (
	"math"
	"testing"
)

func vecsClose(a, b Vector3, tol float64) bool {
	return math.Abs(a.X-b.X) < tol && math.Abs(a.Y-b.Y) < tol && math.Abs(a.Z-b.Z) < tol
}

func TestAxisRotations(t *testing.T) {
	quarter := AngleFromDeg(90)

	if got := RotZ(Vector3{1, 0, 0}, quarter); !vecsClose(got, Vector3{0, 1, 0}, 1e-12) {
		t.Errorf("RotZ 90deg of x = %+v, want +y", got)
	}
	if got := RotX(Vector3{0, 1, 0}, quarter); !vecsClose(got, Vector3{0, 0, 1}, 1e-12) {
		t.Errorf("RotX 90deg of y = %+v, want +z", got)
	}
	if got := RotY(Vector3{0, 0, 1}, quarter); !vecsClose(got, Vector3{1, 0, 0}, 1e-12) {
		t.Errorf("RotY 90deg of z = %+v, want +x", got)
	}
}

// RotateYXZ with negated angles in reverse order undoes RotateZXY. The
// de-skew and end-of-sweep re-projection depend on this pairing.
func TestRotateZXYInverse(t *testing.T) {
	az := NewAngle(0.4)
	ax := NewAngle(-0.25)
	ay := NewAngle(1.1)

	v := Vector3{1.5, -2.0, 0.7}
	rotated := RotateZXY(v, az, ax, ay)
	back := RotateYXZ(rotated, ay.Neg(), ax.Neg(), az.Neg())

	if !vecsClose(back, v, 1e-12) {
		t.Errorf("round trip = %+v, want %+v", back, v)
	}
}

func TestEulerMatrixRoundTrip(t *testing.T) {
	roll, pitch, yaw := 0.3, -0.4, 1.2
	r := eulerMatrix(roll, pitch, yaw)

	gr, gp, gy := eulerAngles(r)
	if math.Abs(gr-roll) > 1e-12 || math.Abs(gp-pitch) > 1e-12 || math.Abs(gy-yaw) > 1e-12 {
		t.Errorf("eulerAngles = (%v, %v, %v), want (%v, %v, %v)", gr, gp, gy, roll, pitch, yaw)
	}
}

func TestRotationMatrixIsOrthonormal(t *testing.T) {
	tw := Twist{RotX: NewAngle(0.2), RotY: NewAngle(-0.7), RotZ: NewAngle(1.9)}
	r := tw.RotationMatrix()

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var dot float64
			for k := 0; k < 3; k++ {
				dot += r.At(k, i) * r.At(k, j)
			}
			want := 0.0
			if i == j {
				want = 1.0
			}
			if math.Abs(dot-want) > 1e-12 {
				t.Errorf("RtR[%d][%d] = %v, want %v", i, j, dot, want)
			}
		}
	}
}

func TestAccumulateRotationIdentity(t *testing.T) {
	cx, cy, cz := NewAngle(0.15), NewAngle(-0.3), NewAngle(0.8)

	ox, oy, oz := AccumulateRotation(cx, cy, cz, Angle{}, Angle{}, Angle{})
	if math.Abs(ox.Rad()-cx.Rad()) > 1e-12 ||
		math.Abs(oy.Rad()-cy.Rad()) > 1e-12 ||
		math.Abs(oz.Rad()-cz.Rad()) > 1e-12 {
		t.Errorf("identity increment changed rotation: (%v, %v, %v)", ox.Rad(), oy.Rad(), oz.Rad())
	}
}

// The composed angles must reproduce the matrix product last*current.
func TestAccumulateRotationMatchesMatrixProduct(t *testing.T) {
	cx, cy, cz := NewAngle(0.1), NewAngle(0.25), NewAngle(-0.4)
	lx, ly, lz := NewAngle(-0.05), NewAngle(0.3), NewAngle(0.12)

	ox, oy, oz := AccumulateRotation(cx, cy, cz, lx, ly, lz)

	current := eulerMatrix(cy.Rad(), cx.Rad(), cz.Rad())
	last := eulerMatrix(ly.Rad(), lx.Rad(), lz.Rad())
	got := eulerMatrix(oy.Rad(), ox.Rad(), oz.Rad())

	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var want float64
			for k := 0; k < 3; k++ {
				want += last.At(i, k) * current.At(k, j)
			}
			if math.Abs(got.At(i, j)-want) > 1e-12 {
				t.Errorf("combined[%d][%d] = %v, want %v", i, j, got.At(i, j), want)
			}
		}
	}
}
