package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. The odometry core routes solver diagnostics
// (incomplete optimisation, degenerate geometry, large rotations) through it
// so hosts and tests can redirect or mute them.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
