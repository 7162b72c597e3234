package odom

import (
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// AppendPose appends a pose to the named trajectory file as a 3x4 row-major
// matrix: each rotation row followed by that row's translation entry,
// space-separated and newline-terminated (the KITTI odometry layout).
func AppendPose(path string, rot mat.Matrix, trans Vector3) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open trajectory file: %w", err)
	}
	defer f.Close()

	t := [3]float64{trans.X, trans.Y, trans.Z}
	line := fmt.Sprintf("%g %g %g %g %g %g %g %g %g %g %g %g\n",
		rot.At(0, 0), rot.At(0, 1), rot.At(0, 2), t[0],
		rot.At(1, 0), rot.At(1, 1), rot.At(1, 2), t[1],
		rot.At(2, 0), rot.At(2, 1), rot.At(2, 2), t[2])
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append trajectory pose: %w", err)
	}
	return nil
}

// AppendTwist appends t's pose, converting its Euler angles to a rotation
// matrix in the affine composition convention.
func AppendTwist(path string, t Twist) error {
	return AppendPose(path, t.RotationMatrix(), t.Pos)
}
