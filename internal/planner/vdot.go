package planner

import (
	"fmt"
	"math"
)

// Intensity codes follow Daniels' training-zone taxonomy.
const (
	CodeEasy       = "E"
	CodeMarathon   = "M"
	CodeThreshold  = "T"
	CodeInterval   = "I"
	CodeRepetition = "R"
)

// Coefficients of Daniels' VO2-cost-of-running equation:
// VO2 = -4.60 + 0.182258*v + 0.000104*v^2, v in m/min.
const (
	vo2CostConstant  = -4.60
	vo2CostLinear    = 0.182258
	vo2CostQuadratic = 0.000104
)

// Fractional %VO2max ranges per intensity code. The fast bound of a band
// comes from the upper fraction (higher %VO2max means faster pace).
var intensityFractions = map[string][2]float64{
	CodeEasy:      {0.59, 0.74},
	CodeMarathon:  {0.75, 0.84},
	CodeThreshold: {0.83, 0.88},
	CodeInterval:  {0.95, 1.00},
}

// Repetition pace is not cleanly %VO2max-based; it is derived as a fraction
// of the I-band fast bound instead.
const (
	repetitionFastFraction = 0.92
	repetitionSlowFraction = 0.97
)

// PaceBand is a per-code pace range in seconds per kilometre. Fast is always
// less than or equal to Slow.
type PaceBand struct {
	Code         string `bson:"code" json:"code"`
	FastSecPerKm int    `bson:"fastSecPerKm" json:"fastSecPerKm"`
	SlowSecPerKm int    `bson:"slowSecPerKm" json:"slowSecPerKm"`
	Display      string `bson:"display" json:"display"`
}

// PaceBandForCode converts a VDOT fitness score into the pace band for one
// intensity code. Returns nil when vdot is non-positive, the code is unknown,
// or the pace quadratic has no usable root; callers treat a nil band as
// "pace data unavailable".
func PaceBandForCode(vdot float64, code string) *PaceBand {
	if vdot <= 0 || math.IsNaN(vdot) || math.IsInf(vdot, 0) {
		return nil
	}
	if code == CodeRepetition {
		return repetitionBand(vdot)
	}
	fractions, ok := intensityFractions[code]
	if !ok {
		return nil
	}
	slow, okSlow := secPerKmAtVO2(vdot * fractions[0])
	fast, okFast := secPerKmAtVO2(vdot * fractions[1])
	if !okSlow || !okFast {
		return nil
	}
	return newPaceBand(code, fast, slow)
}

func repetitionBand(vdot float64) *PaceBand {
	interval := PaceBandForCode(vdot, CodeInterval)
	if interval == nil {
		return nil
	}
	fast := int(math.Round(float64(interval.FastSecPerKm) * repetitionFastFraction))
	slow := int(math.Round(float64(interval.FastSecPerKm) * repetitionSlowFraction))
	return newPaceBand(CodeRepetition, fast, slow)
}

func newPaceBand(code string, fast, slow int) *PaceBand {
	if fast <= 0 || slow <= 0 {
		return nil
	}
	if fast > slow {
		fast, slow = slow, fast
	}
	return &PaceBand{
		Code:         code,
		FastSecPerKm: fast,
		SlowSecPerKm: slow,
		Display:      fmt.Sprintf("%s - %s /km", FormatPace(fast), FormatPace(slow)),
	}
}

// secPerKmAtVO2 inverts the cost-of-running quadratic for a target VO2 and
// converts the resulting speed (m/min) to seconds per kilometre.
func secPerKmAtVO2(targetVO2 float64) (int, bool) {
	// 0.000104*v^2 + 0.182258*v - (4.60 + targetVO2) = 0
	discriminant := vo2CostLinear*vo2CostLinear - 4*vo2CostQuadratic*(vo2CostConstant-targetVO2)
	if discriminant < 0 || math.IsNaN(discriminant) {
		return 0, false
	}
	speed := (-vo2CostLinear + math.Sqrt(discriminant)) / (2 * vo2CostQuadratic)
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return 0, false
	}
	sec := 60000.0 / speed
	if sec <= 0 || math.IsInf(sec, 0) {
		return 0, false
	}
	return int(math.Round(sec)), true
}

// FormatPace renders seconds-per-km as "m:ss".
func FormatPace(secPerKm int) string {
	if secPerKm < 0 {
		secPerKm = 0
	}
	return fmt.Sprintf("%d:%02d", secPerKm/60, secPerKm%60)
}
