package baro

import (
	"fmt"
	"math"
)

// Relative altitude from the international barometric formula, referenced to
// a baseline captured at boot rather than sea level. Altitude 0 means "same
// pressure as at startup".

// Baseline is the boot pressure reference in hPa. Captured once, never
// mutated afterwards.
type Baseline struct {
	P0HPa float64
}

// CaptureBaseline validates one pressure reading as the zero reference.
// A non-positive reading makes every later altitude meaningless, so this is
// a hard startup error, not a sentinel.
func CaptureBaseline(pHPa float64) (Baseline, error) {
	if pHPa <= 0 || math.IsNaN(pHPa) {
		return Baseline{}, fmt.Errorf("baro: invalid baseline pressure %.2f hPa", pHPa)
	}
	return Baseline{P0HPa: pHPa}, nil
}

// Altitude is a tagged altitude sample. A degenerate pressure reading mid-run
// (p <= 0, or a non-real fractional power) must not crash the loop, so the
// converter reports Valid=false instead of propagating NaN silently.
type Altitude struct {
	Meters float64
	Valid  bool
}

// Altitude converts one pressure reading to meters above the baseline:
//
//	alt = 44330 * (1 - (p/p0)^(1/5.255))
func (b Baseline) Altitude(pHPa float64) Altitude {
	if pHPa <= 0 || math.IsNaN(pHPa) {
		return Altitude{}
	}
	m := 44330.0 * (1.0 - math.Pow(pHPa/b.P0HPa, 1.0/5.255))
	if math.IsNaN(m) || math.IsInf(m, 0) {
		return Altitude{}
	}
	return Altitude{Meters: m, Valid: true}
}
