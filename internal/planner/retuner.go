package planner

import (
	"fmt"
	"math"
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// Rationale tag appended when the retuner swaps a duration family.
const LoadRetuned = "load_retuned"

// Calibration constants for the load retuning pass. These encode calibration
// against the existing template catalog; do not re-derive them without new
// calibration data.
const (
	loadRetuneMinDelta       = 0.6  // minimum |target - current| before retuning
	loadRetuneMinImprovement = 0.05 // minimum gain over doing nothing
	rawTargetLoadScale       = 0.56 // scales raw historical load onto the planner's scale

	intensityFactorFloor    = 2.5
	intensityFactorCeiling  = 9.0
	intensityFactorBaseline = 5.0
	tierFactorAdjustment    = 0.4
)

// intensityFactor estimates a session's training stress multiplier from its
// intent, tier and name keywords, clamped to [2.5, 9.0].
func intensityFactor(t *domain.SessionTemplate) float64 {
	factor := intensityFactorBaseline
	haystack := strings.ToLower(t.Intent + " " + t.Name)
	switch {
	case strings.Contains(haystack, "recovery"):
		factor = 3.5
	case strings.Contains(haystack, "vo2"), strings.Contains(haystack, "interval"):
		factor = 8.0
	case strings.Contains(haystack, "threshold"), strings.Contains(haystack, "tempo"), strings.Contains(haystack, "cruise"):
		factor = 7.0
	case strings.Contains(haystack, "marathon"):
		factor = 6.0
	case strings.Contains(haystack, "hill"):
		factor = 7.0
	case strings.Contains(haystack, "strides"), strings.Contains(haystack, "opener"):
		factor = 4.5
	case strings.Contains(haystack, "long"):
		factor = 5.5
	case strings.Contains(haystack, "easy"), strings.Contains(haystack, "aerobic"):
		factor = 4.0
	}
	switch strings.ToLower(t.Tier) {
	case "hard":
		factor += tierFactorAdjustment
	case "easy":
		factor -= tierFactorAdjustment
	}
	if factor < intensityFactorFloor {
		factor = intensityFactorFloor
	}
	if factor > intensityFactorCeiling {
		factor = intensityFactorCeiling
	}
	return factor
}

// EstimateWeekLoad sums duration x intensity factor over the resolved
// selections, divided by 10 to land on the calibrated weekly-load scale.
// Unresolved slots contribute nothing.
func EstimateWeekLoad(selections []WeekSelection) float64 {
	var total float64
	for i := range selections {
		if t := selections[i].Template; t != nil {
			total += t.DurationMin * intensityFactor(t)
		}
	}
	return total / 10.0
}

// ScaleRawTargetLoad maps a raw historical weekly load onto the planner's
// load scale.
func ScaleRawTargetLoad(raw float64) float64 {
	return raw * rawTargetLoadScale
}

// durationShiftCap limits how far a single retune swap may move an easy or
// recovery session's duration, by phase.
func durationShiftCap(phase domain.PlanPhase) float64 {
	switch phase {
	case domain.PhaseBase, domain.PhaseRecovery, domain.PhaseTaper:
		return 10
	case domain.PhaseBuild:
		return 15
	default:
		return 20
	}
}

// RetuneWeekLoad nudges at most one easy/recovery selection toward a
// duration family that brings the estimated week load closer to the target.
// It is a greedy single-step correction, not an optimizer: one swap per week,
// gated on the calibrated minimum delta and minimum improvement, so every
// change stays auditable for the coach. Returns whether a swap was applied.
func RetuneWeekLoad(selections []WeekSelection, catalog *Catalog, ctx WeekContext, targetLoad float64) bool {
	current := EstimateWeekLoad(selections)
	if math.Abs(targetLoad-current) < loadRetuneMinDelta {
		return false
	}
	shiftCap := durationShiftCap(ctx.Phase)
	baseline := math.Abs(targetLoad - current)

	bestIdx := -1
	var bestCandidate *domain.SessionTemplate
	bestDistance := baseline

	for i := range selections {
		t := selections[i].Template
		if t == nil || !isRetunableIntent(t.Intent) {
			continue
		}
		for _, candidate := range catalog.Templates() {
			if candidate.ID == t.ID {
				continue
			}
			if candidate.Intent != t.Intent || candidate.IsTreadmill != t.IsTreadmill {
				continue
			}
			if math.Abs(candidate.DurationMin-t.DurationMin) > shiftCap {
				continue
			}
			c := candidate
			newLoad := current - t.DurationMin*intensityFactor(t)/10.0 + c.DurationMin*intensityFactor(&c)/10.0
			distance := math.Abs(targetLoad - newLoad)
			if baseline-distance >= loadRetuneMinImprovement && distance < bestDistance {
				bestIdx = i
				bestCandidate = &c
				bestDistance = distance
			}
		}
	}

	if bestIdx < 0 || bestCandidate == nil {
		return false
	}
	prev := selections[bestIdx].Template
	selections[bestIdx].Template = bestCandidate
	selections[bestIdx].Rationale = append(selections[bestIdx].Rationale, fmt.Sprintf(
		"%s: swapped %s (%.0f min) for %s (%.0f min) to move week load %.2f toward target %.2f",
		LoadRetuned, prev.Name, prev.DurationMin, bestCandidate.Name, bestCandidate.DurationMin,
		EstimateWeekLoad(selections), targetLoad))
	return true
}

func isRetunableIntent(intent string) bool {
	lower := strings.ToLower(intent)
	return strings.Contains(lower, "easy") || strings.Contains(lower, "aerobic") || strings.Contains(lower, "recovery")
}
