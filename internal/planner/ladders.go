package planner

import (
	"strideworks/plan-engine/internal/domain"
)

// LadderKind identifies one of the four progression ladders.
type LadderKind string

const (
	LadderThreshold    LadderKind = "threshold_minutes"
	LadderVO2          LadderKind = "vo2_minutes"
	LadderMarathonPace LadderKind = "marathon_pace_minutes"
	LadderShortRace    LadderKind = "short_race_fallback"
)

// ProgressionStep is the resolved ladder position for one week.
type ProgressionStep struct {
	Step              int              `json:"step"` // 1-based
	StepsTotal        int              `json:"stepsTotal"`
	TargetMainMinutes float64          `json:"targetMainMinutes"`
	RaceFocus         string           `json:"raceFocus"`
	Phase             domain.PlanPhase `json:"phase"`
}

// Ladder tables keyed by (race bucket, phase). Values are target main-set
// minutes, ascending by construction; step boundaries are deliberately
// coarse so weekly deltas stay readable for the coach. Buckets without a
// dedicated row fall back to the general row, and phases without a row fall
// back to the bucket's Build row.
var thresholdLadders = ladderTable{
	RaceFocus5K: {
		domain.PhaseBase:  {12, 15, 18},
		domain.PhaseBuild: {15, 18, 20, 24},
		domain.PhasePeak:  {18, 20, 24, 26},
		domain.PhaseTaper: {10, 12, 15},
	},
	RaceFocus10K: {
		domain.PhaseBase:  {15, 18, 20},
		domain.PhaseBuild: {18, 20, 24, 28},
		domain.PhasePeak:  {20, 24, 28, 30},
		domain.PhaseTaper: {12, 15, 18},
	},
	RaceFocusHalf: {
		domain.PhaseBase:  {18, 20, 24},
		domain.PhaseBuild: {20, 24, 28, 32},
		domain.PhasePeak:  {24, 28, 32, 36},
		domain.PhaseTaper: {15, 18, 20},
	},
	RaceFocusMarathon: {
		domain.PhaseBase:  {20, 24, 28},
		domain.PhaseBuild: {24, 28, 32, 36},
		domain.PhasePeak:  {28, 32, 36, 40},
		domain.PhaseTaper: {15, 18, 20},
	},
	RaceFocusGeneral: {
		domain.PhaseBase:  {12, 15, 18},
		domain.PhaseBuild: {15, 18, 20, 24},
		domain.PhasePeak:  {18, 20, 24},
		domain.PhaseTaper: {10, 12, 15},
	},
}

var vo2Ladders = ladderTable{
	RaceFocus5K: {
		domain.PhaseBase:  {8, 10, 12},
		domain.PhaseBuild: {12, 15, 18, 20},
		domain.PhasePeak:  {15, 18, 20, 22},
		domain.PhaseTaper: {8, 10, 12},
	},
	RaceFocus10K: {
		domain.PhaseBase:  {8, 10, 12},
		domain.PhaseBuild: {10, 12, 15, 18},
		domain.PhasePeak:  {12, 15, 18, 20},
		domain.PhaseTaper: {8, 10, 12},
	},
	RaceFocusHalf: {
		domain.PhaseBase:  {6, 8, 10},
		domain.PhaseBuild: {8, 10, 12, 15},
		domain.PhasePeak:  {10, 12, 15, 16},
		domain.PhaseTaper: {6, 8, 10},
	},
	RaceFocusMarathon: {
		domain.PhaseBase:  {6, 8, 10},
		domain.PhaseBuild: {8, 10, 12},
		domain.PhasePeak:  {8, 10, 12, 15},
		domain.PhaseTaper: {6, 8},
	},
	RaceFocusGeneral: {
		domain.PhaseBase:  {6, 8, 10},
		domain.PhaseBuild: {8, 10, 12, 15},
		domain.PhasePeak:  {10, 12, 15},
		domain.PhaseTaper: {6, 8, 10},
	},
}

var marathonPaceLadders = ladderTable{
	RaceFocusHalf: {
		domain.PhaseBase:  {15, 20, 25},
		domain.PhaseBuild: {20, 25, 30, 35},
		domain.PhasePeak:  {25, 30, 35, 40},
		domain.PhaseTaper: {15, 20},
	},
	RaceFocusMarathon: {
		domain.PhaseBase:  {20, 25, 30},
		domain.PhaseBuild: {25, 30, 40, 50},
		domain.PhasePeak:  {30, 40, 50, 60},
		domain.PhaseTaper: {15, 20, 25},
	},
	RaceFocusGeneral: {
		domain.PhaseBase:  {15, 20, 25},
		domain.PhaseBuild: {20, 25, 30},
		domain.PhasePeak:  {25, 30, 35},
		domain.PhaseTaper: {15, 20},
	},
}

var shortRaceLadders = ladderTable{
	RaceFocus5K: {
		domain.PhaseBase:  {10, 12, 15},
		domain.PhaseBuild: {12, 15, 18, 20},
		domain.PhasePeak:  {15, 18, 20, 22},
		domain.PhaseTaper: {8, 10, 12},
	},
	RaceFocus10K: {
		domain.PhaseBase:  {12, 15, 18},
		domain.PhaseBuild: {15, 18, 20, 24},
		domain.PhasePeak:  {18, 20, 24, 26},
		domain.PhaseTaper: {10, 12, 15},
	},
	RaceFocusGeneral: {
		domain.PhaseBase:  {10, 12, 15},
		domain.PhaseBuild: {12, 15, 18},
		domain.PhasePeak:  {15, 18, 20},
		domain.PhaseTaper: {8, 10, 12},
	},
}

type ladderTable map[string]map[domain.PlanPhase][]float64

var ladders = map[LadderKind]ladderTable{
	LadderThreshold:    thresholdLadders,
	LadderVO2:          vo2Ladders,
	LadderMarathonPace: marathonPaceLadders,
	LadderShortRace:    shortRaceLadders,
}

// ResolveLadder picks the ladder step for the week: index
// floor(progress * (len-1)), clamped to the ladder bounds. This is a plain
// table lookup with no interpolation.
func ResolveLadder(kind LadderKind, ctx WeekContext) ProgressionStep {
	steps := ladderSteps(kind, ctx.RaceFocus, ctx.Phase)
	idx := int(ctx.Progress() * float64(len(steps)-1))
	if idx < 0 {
		idx = 0
	}
	if idx > len(steps)-1 {
		idx = len(steps) - 1
	}
	return ProgressionStep{
		Step:              idx + 1,
		StepsTotal:        len(steps),
		TargetMainMinutes: steps[idx],
		RaceFocus:         ctx.RaceFocus,
		Phase:             ctx.Phase,
	}
}

func ladderSteps(kind LadderKind, raceFocus string, phase domain.PlanPhase) []float64 {
	table, ok := ladders[kind]
	if !ok {
		return []float64{15}
	}
	phases, ok := table[raceFocus]
	if !ok {
		phases = table[RaceFocusGeneral]
	}
	if phases == nil {
		return []float64{15}
	}
	steps, ok := phases[phase]
	if !ok || len(steps) == 0 {
		steps = phases[domain.PhaseBuild]
	}
	if len(steps) == 0 {
		return []float64{15}
	}
	return steps
}
