package odom

import "math"

// Angle wraps a rotation angle so that radians, degrees, sine and cosine are
// always derived from the same stored value. Downstream code never re-derives
// trigonometry from raw floats. The zero value is a zero angle.
type Angle struct {
	rad float64
}

// NewAngle returns an Angle holding rad radians.
func NewAngle(rad float64) Angle {
	return Angle{rad: rad}
}

// AngleFromDeg returns an Angle holding deg degrees.
func AngleFromDeg(deg float64) Angle {
	return Angle{rad: deg * math.Pi / 180}
}

// Rad returns the angle in radians.
func (a Angle) Rad() float64 { return a.rad }

// Deg returns the angle in degrees.
func (a Angle) Deg() float64 { return a.rad * 180 / math.Pi }

// Sin returns the sine of the angle.
func (a Angle) Sin() float64 { return math.Sin(a.rad) }

// Cos returns the cosine of the angle.
func (a Angle) Cos() float64 { return math.Cos(a.rad) }

// Add returns the sum of two angles.
func (a Angle) Add(b Angle) Angle { return Angle{rad: a.rad + b.rad} }

// Neg returns the negated angle.
func (a Angle) Neg() Angle { return Angle{rad: -a.rad} }

// Scale returns the angle multiplied by f.
func (a Angle) Scale(f float64) Angle { return Angle{rad: f * a.rad} }

func rad2deg(rad float64) float64 { return rad * 180 / math.Pi }
