package odom

// Params holds the tuning parameters of the odometry core.
type Params struct {
	// ScanPeriod is the nominal sweep duration in seconds.
	ScanPeriod float64
	// MaxIterations bounds the non-linear solver per tick.
	MaxIterations int
	// DeltaRAbort is the rotation-update convergence threshold in degrees.
	DeltaRAbort float64
	// DeltaTAbort is the translation-update convergence threshold in
	// centimetres.
	DeltaTAbort float64
	// IORatio decimates the registered full-resolution cloud: it is exported
	// when IORatio < 2 or frameCount mod IORatio == 1.
	IORatio int
	// RawQueries matches correspondence queries on raw current-sweep points
	// instead of de-skewing them to the start of the sweep first. This
	// reproduces the numerical output of upstream LOAM, which skipped the
	// de-skew before search.
	RawQueries bool
}

// DefaultParams returns the stock tuning for a 10 Hz sensor.
func DefaultParams() Params {
	return Params{
		ScanPeriod:    0.1,
		MaxIterations: 25,
		DeltaRAbort:   0.1,
		DeltaTAbort:   0.1,
		IORatio:       2,
	}
}

// IMUTrans bundles the inertial pre-integration hints for one sweep: the
// sensor attitude at sweep start and end, the velocity change from sweep
// start, and the translation drift accumulated by integrating the IMU within
// the sweep.
type IMUTrans struct {
	RollStart, PitchStart, YawStart Angle
	RollEnd, PitchEnd, YawEnd       Angle

	// ShiftFromStart is the position drift from sweep start to sweep end.
	ShiftFromStart Vector3
	// VeloFromStart is the velocity change from sweep start to sweep end.
	VeloFromStart Vector3
}
