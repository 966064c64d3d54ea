package attitude

import "math"

// Complementary filter for roll/pitch.
//
// Gyro integration tracks fast motion but drifts; accel tilt is drift-free but
// noisy under vibration. The blend weight below favors the integrated gyro
// 49:1 against the instantaneous accel estimate. There is no bias correction
// term, so gyro drift accumulates over long runs; for short flights the accel
// term pulls the estimate back slowly enough to ride out boost vibration.

// alpha is a design parameter, not a tunable. Changing it changes the
// crossover frequency of the filter.
const alpha = 0.98

// State holds the current roll/pitch estimate in degrees.
//
// Angles are a running estimate and are not wrapped to +/-180.
type State struct {
	RollDeg  float64
	PitchDeg float64
}

// TiltFromAccel computes roll and pitch from the gravity vector alone.
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// math.Atan2(0, 0) is 0, so a fully degenerate input yields level attitude
// rather than an error.
func TiltFromAccel(ax, ay, az float64) (rollDeg, pitchDeg float64) {
	rollDeg = math.Atan2(ay, az) * 180 / math.Pi
	pitchDeg = math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * 180 / math.Pi
	return rollDeg, pitchDeg
}

// Seed returns the accel-only state used before the first filter update.
// No gyro integration is applied to the seed.
func Seed(ax, ay, az float64) State {
	roll, pitch := TiltFromAccel(ax, ay, az)
	return State{RollDeg: roll, PitchDeg: pitch}
}

// Update advances the estimate by one sample.
//
// Accel is in m/s², gyro rates in deg/s, dt in seconds of true elapsed wall
// time since the previous update. The caller owns dt sanity; there is no
// special casing of dt <= 0 here (dt = 0 degenerates to a pure blend of the
// previous state against the accel tilt, which is the documented fixed point).
func (s State) Update(ax, ay, az, gx, gy, gz, dt float64) State {
	rollAcc, pitchAcc := TiltFromAccel(ax, ay, az)

	// gz (yaw rate) is not used for roll/pitch.
	rollGyro := s.RollDeg + gx*dt
	pitchGyro := s.PitchDeg + gy*dt

	return State{
		RollDeg:  alpha*rollGyro + (1-alpha)*rollAcc,
		PitchDeg: alpha*pitchGyro + (1-alpha)*pitchAcc,
	}
}
