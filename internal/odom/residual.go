package odom

import "math"

// coeff is one accepted residual: the unit direction of the residual gradient
// scaled by the robustness weight, and the weighted distance itself.
type coeff struct {
	X, Y, Z float64
	D       float64
}

// weightedIterations is the number of leading solver iterations that run with
// unit robustness weight before down-weighting large residuals.
const weightedIterations = 5

// edgeCoeff evaluates the point-to-line residual for query point sel against
// the line through tripod1 and tripod2. The distance is the perpendicular
// distance |(q−A)×(q−B)|/|A−B|; the direction components satisfy
// (la, lb, lc)·q − d being the linearised distance along the gradient.
// Returns false when the correspondence is discarded (zero distance or
// weight at or below 0.1).
func edgeCoeff(sel, tripod1, tripod2 Point, iter int) (coeff, bool) {
	x0, y0, z0 := sel.X, sel.Y, sel.Z
	x1, y1, z1 := tripod1.X, tripod1.Y, tripod1.Z
	x2, y2, z2 := tripod2.X, tripod2.Y, tripod2.Z

	cxy := (x0-x1)*(y0-y2) - (x0-x2)*(y0-y1)
	cxz := (x0-x1)*(z0-z2) - (x0-x2)*(z0-z1)
	cyz := (y0-y1)*(z0-z2) - (y0-y2)*(z0-z1)

	a012 := math.Sqrt(cxy*cxy + cxz*cxz + cyz*cyz)
	l12 := math.Sqrt((x1-x2)*(x1-x2) + (y1-y2)*(y1-y2) + (z1-z2)*(z1-z2))
	if a012 == 0 || l12 == 0 {
		return coeff{}, false
	}

	la := ((y1-y2)*cxy + (z1-z2)*cxz) / a012 / l12
	lb := -((x1-x2)*cxy - (z1-z2)*cyz) / a012 / l12
	lc := -((x1-x2)*cxz + (y1-y2)*cyz) / a012 / l12
	ld2 := a012 / l12

	s := 1.0
	if iter >= weightedIterations {
		s = 1 - 1.8*math.Abs(ld2)
	}
	if s <= 0.1 || ld2 == 0 {
		return coeff{}, false
	}

	return coeff{X: s * la, Y: s * lb, Z: s * lc, D: s * ld2}, true
}

// planeCoeff evaluates the point-to-plane residual for query point sel
// against the plane through tripod1, tripod2 and tripod3. The stored
// direction is the unit plane normal and D the signed weighted distance.
// Returns false when the correspondence is discarded.
func planeCoeff(sel, tripod1, tripod2, tripod3 Point, iter int) (coeff, bool) {
	pa := (tripod2.Y-tripod1.Y)*(tripod3.Z-tripod1.Z) -
		(tripod3.Y-tripod1.Y)*(tripod2.Z-tripod1.Z)
	pb := (tripod2.Z-tripod1.Z)*(tripod3.X-tripod1.X) -
		(tripod3.Z-tripod1.Z)*(tripod2.X-tripod1.X)
	pc := (tripod2.X-tripod1.X)*(tripod3.Y-tripod1.Y) -
		(tripod3.X-tripod1.X)*(tripod2.Y-tripod1.Y)
	pd := -(pa*tripod1.X + pb*tripod1.Y + pc*tripod1.Z)

	ps := math.Sqrt(pa*pa + pb*pb + pc*pc)
	if ps == 0 {
		return coeff{}, false
	}
	pa /= ps
	pb /= ps
	pc /= ps
	pd /= ps

	pd2 := pa*sel.X + pb*sel.Y + pc*sel.Z + pd

	s := 1.0
	if iter >= weightedIterations {
		s = 1 - 1.8*math.Abs(pd2)/math.Sqrt(sel.Vec().Norm())
	}
	if s <= 0.1 || pd2 == 0 {
		return coeff{}, false
	}

	return coeff{X: s * pa, Y: s * pb, Z: s * pc, D: s * pd2}, true
}

// jacobianRow assembles one row of the 6-column Jacobian over
// (rot_x, rot_y, rot_z, t_x, t_y, t_z) from the analytic partial derivatives
// of the composed ZXY rotation applied to the raw query point, plus the
// damped right-hand side.
func (o *Odometry) jacobianRow(pointOri Point, co coeff) (row [6]float64, rhs float64) {
	srx, crx := o.transform.RotX.Sin(), o.transform.RotX.Cos()
	sry, cry := o.transform.RotY.Sin(), o.transform.RotY.Cos()
	srz, crz := o.transform.RotZ.Sin(), o.transform.RotZ.Cos()
	tx := o.transform.Pos.X
	ty := o.transform.Pos.Y
	tz := o.transform.Pos.Z

	arx := (-pointOri.X*(crx*sry*srz)+
		pointOri.Y*(crx*crz*sry)+
		pointOri.Z*(srx*sry)+
		tx*(crx*sry*srz)-
		ty*(crx*crz*sry)-
		tz*(srx*sry))*co.X +
		(pointOri.X*(srx*srz)-
			pointOri.Y*(crz*srx)+
			pointOri.Z*crx-
			tx*(srx*srz)+
			ty*(crz*srx)-
			tz*crx)*co.Y +
		(pointOri.X*(crx*cry*srz)-
			pointOri.Y*(crx*cry*crz)-
			pointOri.Z*(cry*srx)-
			tx*(crx*cry*srz)+
			ty*(crx*cry*crz)+
			tz*(cry*srx))*co.Z

	ary := (-pointOri.X*(crz*sry+cry*srx*srz)-
		pointOri.Y*(sry*srz-cry*crz*srx)-
		pointOri.Z*(crx*cry)+
		tx*(crz*sry+cry*srx*srz)+
		ty*(sry*srz-cry*crz*srx)+
		tz*(crx*cry))*co.X +
		(pointOri.X*(cry*crz-srx*sry*srz)+
			pointOri.Y*(cry*srz+crz*srx*sry)-
			pointOri.Z*(crx*sry)-
			tx*(cry*crz-srx*sry*srz)-
			ty*(cry*srz+crz*srx*sry)+
			tz*(crx*sry))*co.Z

	arz := (-pointOri.X*(cry*srz+crz*srx*sry)+
		pointOri.Y*(cry*crz-srx*sry*srz)+
		tx*(cry*srz+crz*srx*sry)-
		ty*(cry*crz-srx*sry*srz))*co.X +
		(-pointOri.X*(crx*crz)-
			pointOri.Y*(crx*srz)+
			tx*crx*crz+
			ty*crx*srz)*co.Y +
		(pointOri.X*(cry*crz*srx-sry*srz)+
			pointOri.Y*(crz*sry+cry*srx*srz)+
			tx*(sry*srz-cry*crz*srx)-
			ty*(crz*sry+cry*srx*srz))*co.Z

	atx := -(cry*crz-srx*sry*srz)*co.X +
		(crx*srz)*co.Y -
		(crz*sry+cry*srx*srz)*co.Z
	aty := -(cry*srz+crz*srx*sry)*co.X -
		(crx*crz)*co.Y -
		(sry*srz-cry*crz*srx)*co.Z
	atz := (crx*sry)*co.X -
		srx*co.Y -
		(crx*cry)*co.Z

	row = [6]float64{arx, ary, arz, atx, aty, atz}
	rhs = -stepDamping * co.D
	return row, rhs
}
