package flightlog

import (
	"fmt"
	"math"

	"flightlogger/internal/baro"
)

// Sample is one synchronized set of sensor readings, produced once per loop
// iteration and immutable once read.
type Sample struct {
	// Accel in m/s².
	Ax, Ay, Az float64
	// Gyro in deg/s.
	Gx, Gy, Gz float64
	// Static pressure in hPa.
	PressureHPa float64
}

// Source supplies one Sample per poll. Implementations are expected to be
// fast and synchronous (one bus transaction set per call).
type Source interface {
	Sample() (Sample, error)
}

// Header is the fixed CSV header row, written exactly once at file creation.
const Header = "alt_m,accel_g,roll_deg,pitch_deg"

// Record is one fused telemetry row. Records are immutable once written and
// never re-read or revised.
type Record struct {
	Alt      baro.Altitude
	AccelG   float64
	RollDeg  float64
	PitchDeg float64
}

// Fields renders the CSV columns: altitude and angles to 2 decimals, g-force
// to 3. An invalid altitude renders as "nan" rather than a garbage number.
func (r Record) Fields() []string {
	alt := "nan"
	if r.Alt.Valid {
		alt = fmt.Sprintf("%.2f", r.Alt.Meters)
	}
	return []string{
		alt,
		fmt.Sprintf("%.3f", r.AccelG),
		fmt.Sprintf("%.2f", r.RollDeg),
		fmt.Sprintf("%.2f", r.PitchDeg),
	}
}

// StatusLine is the once-per-second human-readable summary. It is purely
// observational and independent of the log file.
func (r Record) StatusLine() string {
	alt := math.NaN()
	if r.Alt.Valid {
		alt = r.Alt.Meters
	}
	return fmt.Sprintf("alt=%.2f m, a=%.3f g, roll=%.1f°, pitch=%.1f°",
		alt, r.AccelG, r.RollDeg, r.PitchDeg)
}
