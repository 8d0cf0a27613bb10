package planner

import (
	"testing"

	"strideworks/plan-engine/internal/domain"
)

func buildWeekContext(focus string, phase domain.PlanPhase, week, total int) WeekContext {
	return WeekContext{
		Phase:           phase,
		RaceFocus:       focus,
		WeekNumber:      week,
		TotalWeeks:      total,
		SessionsPerWeek: 5,
	}
}

func TestResolveLadderStepBounds(t *testing.T) {
	early := ResolveLadder(LadderThreshold, buildWeekContext(RaceFocus10K, domain.PhaseBuild, 0, 8))
	if early.Step != 1 {
		t.Errorf("week 0 should clamp to step 1, got %d", early.Step)
	}
	late := ResolveLadder(LadderThreshold, buildWeekContext(RaceFocus10K, domain.PhaseBuild, 20, 8))
	if late.Step != late.StepsTotal {
		t.Errorf("overshot week should clamp to final step %d, got %d", late.StepsTotal, late.Step)
	}
}

func TestResolveLadderMonotonic(t *testing.T) {
	prev := 0.0
	for week := 1; week <= 8; week++ {
		step := ResolveLadder(LadderThreshold, buildWeekContext(RaceFocus10K, domain.PhaseBuild, week, 8))
		if step.TargetMainMinutes < prev {
			t.Fatalf("week %d target %.0f regressed below %.0f", week, step.TargetMainMinutes, prev)
		}
		prev = step.TargetMainMinutes
	}
}

func TestResolveLadderFallbacks(t *testing.T) {
	// Unknown bucket falls back to the general row.
	unknown := ResolveLadder(LadderThreshold, buildWeekContext("ultra", domain.PhaseBuild, 2, 8))
	general := ResolveLadder(LadderThreshold, buildWeekContext(RaceFocusGeneral, domain.PhaseBuild, 2, 8))
	if unknown.TargetMainMinutes != general.TargetMainMinutes {
		t.Errorf("unknown bucket target %.0f, want general %.0f", unknown.TargetMainMinutes, general.TargetMainMinutes)
	}

	// The short-race ladder has no marathon row; it must fall back to general.
	marathon := ResolveLadder(LadderShortRace, buildWeekContext(RaceFocusMarathon, domain.PhaseBuild, 2, 8))
	shortGeneral := ResolveLadder(LadderShortRace, buildWeekContext(RaceFocusGeneral, domain.PhaseBuild, 2, 8))
	if marathon.TargetMainMinutes != shortGeneral.TargetMainMinutes {
		t.Errorf("marathon short-race target %.0f, want general %.0f", marathon.TargetMainMinutes, shortGeneral.TargetMainMinutes)
	}

	// A phase without a ladder row resolves through the Build row.
	recovery := ResolveLadder(LadderVO2, buildWeekContext(RaceFocus5K, domain.PhaseRecovery, 2, 8))
	if recovery.StepsTotal == 0 || recovery.TargetMainMinutes <= 0 {
		t.Errorf("recovery phase should resolve via build row, got %+v", recovery)
	}
}

func TestResolveLadderStepMetadata(t *testing.T) {
	step := ResolveLadder(LadderMarathonPace, buildWeekContext(RaceFocusMarathon, domain.PhasePeak, 10, 12))
	if step.RaceFocus != RaceFocusMarathon {
		t.Errorf("step race focus = %s, want %s", step.RaceFocus, RaceFocusMarathon)
	}
	if step.Phase != domain.PhasePeak {
		t.Errorf("step phase = %s, want %s", step.Phase, domain.PhasePeak)
	}
	if step.Step < 1 || step.Step > step.StepsTotal {
		t.Errorf("step %d out of range 1..%d", step.Step, step.StepsTotal)
	}
}
