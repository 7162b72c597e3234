package odom

import "math"

// transformToStart re-projects a point of the current sweep into the
// start-of-sweep frame. The point's sweep fraction s interpolates the
// incremental transform: translation is subtracted first, then the inverse
// rotation is applied in the ZXY order. The channel value is preserved.
func (o *Odometry) transformToStart(p Point) Point {
	s := p.SweepFraction()

	v := p.Vec().Sub(o.transform.Pos.Scale(s))
	v = RotateZXY(v,
		o.transform.RotZ.Scale(-s),
		o.transform.RotX.Scale(-s),
		o.transform.RotY.Scale(-s))

	return Point{X: v.X, Y: v.Y, Z: v.Z, Channel: p.Channel}
}

// transformToEnd re-projects every point of cloud to the end-of-sweep frame
// in place. Each point is first moved to the start frame by undoing its
// interpolated share of the incremental transform, then carried forward by
// the full transform, and finally corrected for IMU attitude drift between
// sweep start and sweep end. The channel's fractional part is stripped to
// mark the point as canonical at sweep end.
func (o *Odometry) transformToEnd(cloud Cloud) {
	for i := range cloud {
		p := &cloud[i]
		s := p.SweepFraction()

		v := p.Vec().Sub(o.transform.Pos.Scale(s))
		v = RotateZXY(v,
			o.transform.RotZ.Scale(-s),
			o.transform.RotX.Scale(-s),
			o.transform.RotY.Scale(-s))

		v = RotateYXZ(v, o.transform.RotY, o.transform.RotX, o.transform.RotZ)

		v = v.Add(o.transform.Pos.Sub(o.imu.ShiftFromStart))
		v = RotateZXY(v, o.imu.RollStart, o.imu.PitchStart, o.imu.YawStart)
		v = RotateYXZ(v, o.imu.YawEnd.Neg(), o.imu.PitchEnd.Neg(), o.imu.RollEnd.Neg())

		p.X, p.Y, p.Z = v.X, v.Y, v.Z
		p.Channel = math.Trunc(p.Channel)
	}
}

// pluginIMURotation corrects the accumulated body rotation (bcx, bcy, bcz)
// for IMU attitude drift between sweep start (blx, bly, blz) and sweep end
// (alx, aly, alz). It is the closed-form composition of the three rotations
// from the LOAM reference formulation.
func pluginIMURotation(bcx, bcy, bcz, blx, bly, blz, alx, aly, alz Angle) (acx, acy, acz Angle) {
	sbcx, cbcx := bcx.Sin(), bcx.Cos()
	sbcy, cbcy := bcy.Sin(), bcy.Cos()
	sbcz, cbcz := bcz.Sin(), bcz.Cos()

	sblx, cblx := blx.Sin(), blx.Cos()
	sbly, cbly := bly.Sin(), bly.Cos()
	sblz, cblz := blz.Sin(), blz.Cos()

	salx, calx := alx.Sin(), alx.Cos()
	saly, caly := aly.Sin(), aly.Cos()
	salz, calz := alz.Sin(), alz.Cos()

	srx := -sbcx*(salx*sblx+calx*caly*cblx*cbly+calx*cblx*saly*sbly) -
		cbcx*cbcz*(calx*saly*(cbly*sblz-cblz*sblx*sbly)-
			calx*caly*(sbly*sblz+cbly*cblz*sblx)+cblx*cblz*salx) -
		cbcx*sbcz*(calx*caly*(cblz*sbly-cbly*sblx*sblz)-
			calx*saly*(cbly*cblz+sblx*sbly*sblz)+cblx*salx*sblz)
	acx = NewAngle(-math.Asin(srx))

	srycrx := (cbcy*sbcz-cbcz*sbcx*sbcy)*(calx*saly*(cbly*sblz-cblz*sblx*sbly)-
		calx*caly*(sbly*sblz+cbly*cblz*sblx)+cblx*cblz*salx) -
		(cbcy*cbcz+sbcx*sbcy*sbcz)*(calx*caly*(cblz*sbly-cbly*sblx*sblz)-
			calx*saly*(cbly*cblz+sblx*sbly*sblz)+cblx*salx*sblz) +
		cbcx*sbcy*(salx*sblx+calx*caly*cblx*cbly+calx*cblx*saly*sbly)
	crycrx := (cbcz*sbcy-cbcy*sbcx*sbcz)*(calx*caly*(cblz*sbly-cbly*sblx*sblz)-
		calx*saly*(cbly*cblz+sblx*sbly*sblz)+cblx*salx*sblz) -
		(sbcy*sbcz+cbcy*cbcz*sbcx)*(calx*saly*(cbly*sblz-cblz*sblx*sbly)-
			calx*caly*(sbly*sblz+cbly*cblz*sblx)+cblx*cblz*salx) +
		cbcx*cbcy*(salx*sblx+calx*caly*cblx*cbly+calx*cblx*saly*sbly)
	acy = NewAngle(math.Atan2(srycrx/acx.Cos(), crycrx/acx.Cos()))

	srzcrx := sbcx*(cblx*cbly*(calz*saly-caly*salx*salz)-
		cblx*sbly*(caly*calz+salx*saly*salz)+calx*salz*sblx) -
		cbcx*cbcz*((caly*calz+salx*saly*salz)*(cbly*sblz-cblz*sblx*sbly)+
			(calz*saly-caly*salx*salz)*(sbly*sblz+cbly*cblz*sblx)-
			calx*cblx*cblz*salz) +
		cbcx*sbcz*((caly*calz+salx*saly*salz)*(cbly*cblz+sblx*sbly*sblz)+
			(calz*saly-caly*salx*salz)*(cblz*sbly-cbly*sblx*sblz)+
			calx*cblx*salz*sblz)
	crzcrx := sbcx*(cblx*sbly*(caly*salz-calz*salx*saly)-
		cblx*cbly*(saly*salz+caly*calz*salx)+calx*calz*sblx) +
		cbcx*cbcz*((saly*salz+caly*calz*salx)*(sbly*sblz+cbly*cblz*sblx)+
			(caly*salz-calz*salx*saly)*(cbly*sblz-cblz*sblx*sbly)+
			calx*calz*cblx*cblz) -
		cbcx*sbcz*((saly*salz+caly*calz*salx)*(cblz*sbly-cbly*sblx*sblz)+
			(caly*salz-calz*salx*saly)*(cbly*cblz+sblx*sbly*sblz)-
			calx*calz*cblx*sblz)
	acz = NewAngle(math.Atan2(srzcrx/acx.Cos(), crzcrx/acx.Cos()))

	return acx, acy, acz
}
