package odom

import "math"

// Point is a single LiDAR return. The Channel scalar carries two encoded
// fields: the integer part is the scan-ring index within the sweep, and the
// fractional part is the relative timestamp within the sweep, normalised so
// that fraction*10 lies in [0, 1]. De-skew, the ring-band filter in
// correspondence search and end-of-sweep re-projection all decode it.
type Point struct {
	X, Y, Z float64
	Channel float64
}

// Ring returns the scan-ring index encoded in the channel scalar.
func (p Point) Ring() int { return int(p.Channel) }

// SweepFraction returns the point's position within the sweep in [0, 1],
// decoded from the fractional part of the channel scalar.
func (p Point) SweepFraction() float64 {
	return 10 * (p.Channel - math.Trunc(p.Channel))
}

// Vec returns the point's coordinates as a Vector3, dropping the channel.
func (p Point) Vec() Vector3 { return Vector3{p.X, p.Y, p.Z} }

// Finite reports whether all of the point's coordinates are finite.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0) &&
		!math.IsNaN(p.Z) && !math.IsInf(p.Z, 0)
}

// SquaredDiff returns the squared Euclidean distance between two points,
// ignoring the channel scalar.
func SquaredDiff(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return dx*dx + dy*dy + dz*dz
}

// Cloud is an ordered sequence of points. Previous-sweep clouds are kept in
// approximately ring-sorted order; the correspondence search depends on that.
type Cloud []Point

// RemoveNonFinite filters points with NaN or infinite coordinates in place
// and returns the compacted cloud. Order of the surviving points is kept.
func (c Cloud) RemoveNonFinite() Cloud {
	out := c[:0]
	for _, p := range c {
		if p.Finite() {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of the cloud.
func (c Cloud) Clone() Cloud {
	out := make(Cloud, len(c))
	copy(out, c)
	return out
}
