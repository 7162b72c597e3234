package odom

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/banshee-data/lidar-odometry/internal/monitoring"
)

const (
	// syncTolerance is the maximum timestamp skew tolerated between the
	// less-flat stream and each of the other five input streams.
	syncTolerance = 5 * time.Millisecond
	// minCornerPoints and minSurfacePoints gate the solver: the previous
	// sweep must carry more than these many corner and surface points.
	minCornerPoints  = 10
	minSurfacePoints = 100
	// minCorrespondences is the smallest accepted-residual count worth a
	// solver step.
	minCorrespondences = 10
	// searchCadence re-runs correspondence search every this many iterations;
	// iterations in between reuse the cached index pairs.
	searchCadence = 5
)

// Odometry estimates the frame-to-frame motion of a rotating 3D laser range
// finder from pre-extracted feature clouds and IMU hints, and accumulates the
// incremental transforms into a global pose. It is single-threaded: Process
// is the only mutator and a host drives it tick by tick.
type Odometry struct {
	params Params

	systemInited bool
	frameCount   int

	// transform is the incremental motion from the end of the previous sweep
	// to the end of the current sweep, re-estimated each tick.
	transform Twist
	// transformSum is the accumulated global pose since start.
	transformSum Twist

	imu IMUTrans

	sharp, lessSharp, flat, lessFlat, fullRes Cloud

	lastCorner  Cloud
	lastSurface Cloud

	cornerIndex  *NeighborIndex
	surfaceIndex *NeighborIndex

	timeSharp, timeLessSharp, timeFlat, timeLessFlat, timeFullRes, timeIMU time.Time
	newSharp, newLessSharp, newFlat, newLessFlat, newFullRes, newIMU       bool

	// Correspondence caches, -1 meaning no valid correspondence. Refreshed
	// every searchCadence iterations.
	cornerIdx1, cornerIdx2       []int
	surfIdx1, surfIdx2, surfIdx3 []int

	selected []Point
	coeffs   []coeff

	degenerate bool
	converged  bool
	projector  *mat.Dense
}

// New returns an odometry core with the given tuning parameters.
func New(params Params) *Odometry {
	return &Odometry{params: params}
}

// SetSharpCloud installs the current sweep's sharp edge features.
func (o *Odometry) SetSharpCloud(c Cloud, stamp time.Time) {
	o.sharp = c
	o.timeSharp = stamp
	o.newSharp = true
}

// SetLessSharpCloud installs the current sweep's less-sharp edge features.
func (o *Odometry) SetLessSharpCloud(c Cloud, stamp time.Time) {
	o.lessSharp = c
	o.timeLessSharp = stamp
	o.newLessSharp = true
}

// SetFlatCloud installs the current sweep's flat surface features.
func (o *Odometry) SetFlatCloud(c Cloud, stamp time.Time) {
	o.flat = c
	o.timeFlat = stamp
	o.newFlat = true
}

// SetLessFlatCloud installs the current sweep's less-flat surface features.
func (o *Odometry) SetLessFlatCloud(c Cloud, stamp time.Time) {
	o.lessFlat = c
	o.timeLessFlat = stamp
	o.newLessFlat = true
}

// SetFullCloud installs the current sweep's full-resolution cloud.
func (o *Odometry) SetFullCloud(c Cloud, stamp time.Time) {
	o.fullRes = c
	o.timeFullRes = stamp
	o.newFullRes = true
}

// SetIMUTrans installs the current sweep's inertial hints.
func (o *Odometry) SetIMUTrans(imu IMUTrans, stamp time.Time) {
	o.imu = imu
	o.timeIMU = stamp
	o.newIMU = true
}

// hasNewData reports whether all six input streams have been refreshed since
// the last tick and agree in time with the less-flat stream within the sync
// tolerance.
func (o *Odometry) hasNewData() bool {
	if !o.newSharp || !o.newLessSharp || !o.newFlat || !o.newLessFlat ||
		!o.newFullRes || !o.newIMU {
		return false
	}
	aligned := func(t time.Time) bool {
		d := t.Sub(o.timeLessFlat)
		if d < 0 {
			d = -d
		}
		return d < syncTolerance
	}
	return aligned(o.timeSharp) && aligned(o.timeLessSharp) &&
		aligned(o.timeFlat) && aligned(o.timeFullRes) && aligned(o.timeIMU)
}

// reset clears the fresh-data flags after a consumed tick.
func (o *Odometry) reset() {
	o.newSharp = false
	o.newLessSharp = false
	o.newFlat = false
	o.newLessFlat = false
	o.newFullRes = false
	o.newIMU = false
}

// Process runs one odometry tick. It returns false when the inputs are not
// yet complete and aligned, and on the seeding first tick; it returns true
// once the state has advanced by a sweep, whether or not a solve happened.
func (o *Odometry) Process() bool {
	if !o.hasNewData() {
		return false
	}
	o.reset()

	if !o.systemInited {
		o.lessSharp, o.lastCorner = o.lastCorner, o.lessSharp
		o.lessFlat, o.lastSurface = o.lastSurface, o.lessFlat

		o.lastCorner = o.lastCorner.RemoveNonFinite()
		o.lastSurface = o.lastSurface.RemoveNonFinite()
		o.cornerIndex = NewNeighborIndex(o.lastCorner)
		o.surfaceIndex = NewNeighborIndex(o.lastSurface)

		o.transformSum.RotX = o.transformSum.RotX.Add(o.imu.PitchStart)
		o.transformSum.RotZ = o.transformSum.RotZ.Add(o.imu.RollStart)

		o.systemInited = true
		return false
	}

	o.frameCount++
	o.degenerate = false
	o.converged = false
	o.projector = nil

	// IMU prior on the between-sweep translation; rotation starts at zero.
	o.transform = Twist{Pos: o.imu.VeloFromStart.Scale(-o.params.ScanPeriod)}

	if len(o.lastCorner) > minCornerPoints && len(o.lastSurface) > minSurfacePoints {
		o.solve()
	}

	if o.transform.RotX.Deg() > 1 || o.transform.RotY.Deg() > 1 || o.transform.RotZ.Deg() > 1 {
		monitoring.Logf("odom: large incremental rotation %.3f, %.3f, %.3f deg",
			o.transform.RotX.Deg(), o.transform.RotY.Deg(), o.transform.RotZ.Deg())
	}

	rx, ry, rz := AccumulateRotation(
		o.transformSum.RotX, o.transformSum.RotY, o.transformSum.RotZ,
		o.transform.RotX.Neg(), o.transform.RotY.Neg(), o.transform.RotZ.Neg())

	v := o.transform.Pos.Sub(o.imu.ShiftFromStart)
	v = RotateZXY(v, rz, rx, ry)
	trans := o.transformSum.Pos.Sub(v)

	rx, ry, rz = pluginIMURotation(rx, ry, rz,
		o.imu.PitchStart, o.imu.YawStart, o.imu.RollStart,
		o.imu.PitchEnd, o.imu.YawEnd, o.imu.RollEnd)

	o.transformSum = Twist{RotX: rx, RotY: ry, RotZ: rz, Pos: trans}

	o.transformToEnd(o.lessSharp)
	o.transformToEnd(o.lessFlat)

	o.lessSharp, o.lastCorner = o.lastCorner, o.lessSharp
	o.lessFlat, o.lastSurface = o.lastSurface, o.lessFlat

	o.lastCorner = o.lastCorner.RemoveNonFinite()
	o.lastSurface = o.lastSurface.RemoveNonFinite()
	o.cornerIndex = NewNeighborIndex(o.lastCorner)
	o.surfaceIndex = NewNeighborIndex(o.lastSurface)

	return true
}

// queryPoint returns the query point in the frame correspondence search and
// residual evaluation operate in: the start-of-sweep frame, or the raw point
// when RawQueries preserves upstream LOAM's behaviour.
func (o *Odometry) queryPoint(p Point) Point {
	if o.params.RawQueries {
		return p
	}
	return o.transformToStart(p)
}

// solve runs the damped normal-equation iterations for the current tick.
func (o *Odometry) solve() {
	o.sharp = o.sharp.RemoveNonFinite()
	o.flat = o.flat.RemoveNonFinite()

	sharpNum := len(o.sharp)
	flatNum := len(o.flat)

	o.cornerIdx1 = resizeIndexCache(o.cornerIdx1, sharpNum)
	o.cornerIdx2 = resizeIndexCache(o.cornerIdx2, sharpNum)
	o.surfIdx1 = resizeIndexCache(o.surfIdx1, flatNum)
	o.surfIdx2 = resizeIndexCache(o.surfIdx2, flatNum)
	o.surfIdx3 = resizeIndexCache(o.surfIdx3, flatNum)

	for iter := 0; iter < o.params.MaxIterations; iter++ {
		o.selected = o.selected[:0]
		o.coeffs = o.coeffs[:0]

		for i := 0; i < sharpNum; i++ {
			sel := o.queryPoint(o.sharp[i])

			if iter%searchCadence == 0 {
				o.cornerIdx1[i], o.cornerIdx2[i] = o.searchEdge(sel)
			}
			if o.cornerIdx2[i] < 0 {
				continue
			}
			co, ok := edgeCoeff(sel,
				o.lastCorner[o.cornerIdx1[i]], o.lastCorner[o.cornerIdx2[i]], iter)
			if ok {
				o.selected = append(o.selected, o.sharp[i])
				o.coeffs = append(o.coeffs, co)
			}
		}

		for i := 0; i < flatNum; i++ {
			sel := o.queryPoint(o.flat[i])

			if iter%searchCadence == 0 {
				o.surfIdx1[i], o.surfIdx2[i], o.surfIdx3[i] = o.searchPlane(sel)
			}
			if o.surfIdx2[i] < 0 || o.surfIdx3[i] < 0 {
				continue
			}
			co, ok := planeCoeff(sel,
				o.lastSurface[o.surfIdx1[i]], o.lastSurface[o.surfIdx2[i]],
				o.lastSurface[o.surfIdx3[i]], iter)
			if ok {
				o.selected = append(o.selected, o.flat[i])
				o.coeffs = append(o.coeffs, co)
			}
		}

		n := len(o.selected)
		if n < minCorrespondences {
			continue
		}

		a := mat.NewDense(n, 6, nil)
		b := mat.NewVecDense(n, nil)
		for i := range o.selected {
			row, rhs := o.jacobianRow(o.selected[i], o.coeffs[i])
			a.SetRow(i, row[:])
			b.SetVec(i, rhs)
		}

		x, ata, ok := solveNormalEquations(a, b)
		if !ok {
			continue
		}

		if iter == 0 {
			o.projector, o.degenerate = degeneracyProjector(ata)
			if o.degenerate {
				monitoring.Logf("odom: degenerate geometry, confining pose update")
			}
		}
		if o.degenerate && o.projector != nil {
			var projected mat.VecDense
			projected.MulVec(o.projector, x)
			x = &projected
		}

		o.transform.RotX = NewAngle(o.transform.RotX.Rad() + x.AtVec(0))
		o.transform.RotY = NewAngle(o.transform.RotY.Rad() + x.AtVec(1))
		o.transform.RotZ = NewAngle(o.transform.RotZ.Rad() + x.AtVec(2))
		o.transform.Pos.X += x.AtVec(3)
		o.transform.Pos.Y += x.AtVec(4)
		o.transform.Pos.Z += x.AtVec(5)
		o.sanitizeTransform()

		deltaR := math.Sqrt(sq(rad2deg(x.AtVec(0))) +
			sq(rad2deg(x.AtVec(1))) +
			sq(rad2deg(x.AtVec(2))))
		deltaT := math.Sqrt(sq(x.AtVec(3)*100) +
			sq(x.AtVec(4)*100) +
			sq(x.AtVec(5)*100))

		if deltaR < o.params.DeltaRAbort && deltaT < o.params.DeltaTAbort {
			o.converged = true
			monitoring.Logf("odom: optimisation done: %d correspondences, %d iterations, dR=%.4f deg dT=%.4f cm",
				n, iter, deltaR, deltaT)
			break
		}
	}

	if !o.converged {
		monitoring.Logf("odom: optimisation incomplete after %d iterations", o.params.MaxIterations)
	}
}

// sanitizeTransform replaces non-finite pose components with zero so a bad
// iteration cannot poison subsequent ticks.
func (o *Odometry) sanitizeTransform() {
	if !isFinite(o.transform.RotX.Rad()) {
		o.transform.RotX = Angle{}
	}
	if !isFinite(o.transform.RotY.Rad()) {
		o.transform.RotY = Angle{}
	}
	if !isFinite(o.transform.RotZ.Rad()) {
		o.transform.RotZ = Angle{}
	}
	if !isFinite(o.transform.Pos.X) {
		o.transform.Pos.X = 0
	}
	if !isFinite(o.transform.Pos.Y) {
		o.transform.Pos.Y = 0
	}
	if !isFinite(o.transform.Pos.Z) {
		o.transform.Pos.Z = 0
	}
}

// Pose returns the accumulated global pose.
func (o *Odometry) Pose() Twist { return o.transformSum }

// Increment returns the incremental transform estimated on the last tick.
func (o *Odometry) Increment() Twist { return o.transform }

// CornerCloud returns the previous-sweep less-sharp cloud. After a successful
// tick this is the current sweep's edge features de-skewed to sweep end.
func (o *Odometry) CornerCloud() Cloud { return o.lastCorner }

// SurfaceCloud returns the previous-sweep less-flat cloud. After a successful
// tick this is the current sweep's surface features de-skewed to sweep end.
func (o *Odometry) SurfaceCloud() Cloud { return o.lastSurface }

// Degenerate reports whether the last tick's geometry was rank deficient.
func (o *Odometry) Degenerate() bool { return o.degenerate }

// Converged reports whether the last tick's solve met the update thresholds
// within the iteration budget.
func (o *Odometry) Converged() bool { return o.converged }

// Initialized reports whether the first sweep has seeded the core.
func (o *Odometry) Initialized() bool { return o.systemInited }

// FrameCount returns the number of solved ticks since start.
func (o *Odometry) FrameCount() int { return o.frameCount }

// RegisteredCloud de-skews the full-resolution cloud to sweep end and returns
// it, decimated so downstream consumers get every IORatio-th sweep. The
// second return is false on skipped frames.
func (o *Odometry) RegisteredCloud() (Cloud, bool) {
	if o.params.IORatio < 2 || o.frameCount%o.params.IORatio == 1 {
		o.transformToEnd(o.fullRes)
		return o.fullRes, true
	}
	return nil, false
}

func resizeIndexCache(s []int, n int) []int {
	if cap(s) < n {
		return make([]int, n)
	}
	return s[:n]
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func sq(v float64) float64 { return v * v }
