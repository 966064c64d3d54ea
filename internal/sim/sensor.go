package sim

import (
	"math"
	"time"

	"flightlogger/internal/flightlog"
)

// SensorSim is a deterministic bench stand-in for the IMU + barometer pair.
// It flies a gentle sinusoidal climb with a matching attitude wobble so the
// whole fusion/logging pipeline can run on a desk with no hardware.
type SensorSim struct {
	// P0HPa is the ground pressure; defaults to ISA sea level.
	P0HPa float64
	// ClimbAmpM is the altitude excursion amplitude in meters.
	ClimbAmpM float64
	// RollAmpDeg/PitchAmpDeg bound the attitude wobble.
	RollAmpDeg  float64
	PitchAmpDeg float64
	Period      time.Duration

	// Now is a test seam; defaults to time.Now.
	Now func() time.Time
}

const gravity = 9.80665

func (s *SensorSim) Sample() (flightlog.Sample, error) {
	p0 := s.P0HPa
	if p0 <= 0 {
		p0 = 1013.25
	}
	amp := s.ClimbAmpM
	if amp <= 0 {
		amp = 150.0
	}
	rollAmp := s.RollAmpDeg
	if rollAmp == 0 {
		rollAmp = 8.0
	}
	pitchAmp := s.PitchAmpDeg
	if pitchAmp == 0 {
		pitchAmp = 5.0
	}
	period := s.Period
	if period <= 0 {
		period = 60 * time.Second
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	phase := float64(now().UnixNano()%period.Nanoseconds()) / float64(period.Nanoseconds())
	w := 2 * math.Pi * phase
	omega := 2 * math.Pi / period.Seconds()

	// Altitude sinusoid mapped back to pressure through the inverse of the
	// international barometric formula, so the logger's converter recovers
	// the profile exactly.
	altM := amp * math.Sin(w)
	pHPa := p0 * math.Pow(1.0-altM/44330.0, 5.255)

	// Attitude wobble. Accel is the gravity vector tilted by (roll, pitch);
	// gyro rates are the analytic derivatives, so the complementary filter
	// sees physically consistent inputs.
	rollRad := rollAmp * math.Sin(w) * math.Pi / 180
	pitchRad := pitchAmp * math.Cos(w) * math.Pi / 180
	// Rates in deg/s.
	rollRate := rollAmp * omega * math.Cos(w)
	pitchRate := -pitchAmp * omega * math.Sin(w)

	return flightlog.Sample{
		Ax:          -gravity * math.Sin(pitchRad),
		Ay:          gravity * math.Sin(rollRad) * math.Cos(pitchRad),
		Az:          gravity * math.Cos(rollRad) * math.Cos(pitchRad),
		Gx:          rollRate,
		Gy:          pitchRate,
		Gz:          0,
		PressureHPa: pHPa,
	}, nil
}
