package planner

import (
	"strings"
	"testing"

	"strideworks/plan-engine/internal/domain"
)

func selection(token string, t *domain.SessionTemplate) WeekSelection {
	return WeekSelection{Token: token, Template: t}
}

func hasRationaleTag(sel WeekSelection, tag string) bool {
	for _, r := range sel.Rationale {
		if strings.Contains(r, tag) {
			return true
		}
	}
	return false
}

func TestCorrectWeekMixOnlyRunsInBuildAndPeak(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocus5K, domain.PhaseBase, 2, 8)
	selections := []WeekSelection{
		selection("Threshold", catalog.FindByName("Tempo 20")),
		selection("Race Pace", catalog.FindByName("Cruise Intervals 4x8")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[1].Template.Name != "Cruise Intervals 4x8" {
		t.Errorf("base week should be left alone, got %s", out[1].Template.Name)
	}
	if len(out[1].Rationale) != 0 {
		t.Errorf("base week should carry no corrector rationale: %v", out[1].Rationale)
	}
}

func TestCorrectWeekMixDiversifiesShortRaceWeek(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocus5K, domain.PhaseBuild, 4, 8)
	selections := []WeekSelection{
		selection("Threshold", catalog.FindByName("Tempo 20")),
		selection("Race Pace", catalog.FindByName("Cruise Intervals 4x8")),
		selection("Easy Run", catalog.FindByName("Aerobic Base 50")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[1].Template == nil || out[1].Template.Name != "VO2 5x3" {
		t.Fatalf("expected the race-pace slot swapped to VO2 work, got %v", out[1].Template)
	}
	if !hasRationaleTag(out[1], MixPolicyDiversified) {
		t.Errorf("swap should be tagged %s: %v", MixPolicyDiversified, out[1].Rationale)
	}
	// The first threshold slot is untouched.
	if out[0].Template.Name != "Tempo 20" {
		t.Errorf("non-matching slot changed: %s", out[0].Template.Name)
	}
}

func TestCorrectWeekMixDiversifyNeedsSwappableToken(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocus5K, domain.PhaseBuild, 4, 8)
	// Two threshold sessions but no race-pace or interval token to swap.
	selections := []WeekSelection{
		selection("Threshold", catalog.FindByName("Tempo 20")),
		selection("Tempo Session", catalog.FindByName("Cruise Intervals 4x8")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[0].Template.Name != "Tempo 20" || out[1].Template.Name != "Cruise Intervals 4x8" {
		t.Errorf("no slot should change without a swappable token: %v", out)
	}
}

func TestCorrectWeekMixSkipsBalancedShortRaceWeek(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocus10K, domain.PhaseBuild, 4, 8)
	// One threshold plus one VO2 is already a balanced quality mix.
	selections := []WeekSelection{
		selection("Threshold", catalog.FindByName("Tempo 20")),
		selection("VO2 Intervals", catalog.FindByName("VO2 5x3")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[1].Template.Name != "VO2 5x3" || len(out[1].Rationale) != 0 {
		t.Errorf("balanced week should be left alone: %+v", out[1])
	}
}

func TestCorrectWeekMixRestoresEnduranceSpecificity(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocusMarathon, domain.PhaseBuild, 4, 12)
	// A marathon build week where race-pace selection fell back to threshold
	// work leaves the week with no M stimulus at all.
	selections := []WeekSelection{
		selection("Easy Run", catalog.FindByName("Aerobic Base 50")),
		selection("Race Pace", catalog.FindByName("Tempo 20")),
		selection("Long Run", catalog.FindByName("Long Run 100")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[1].Template == nil || out[1].Template.Name != "Marathon Pace 30" {
		t.Fatalf("expected the race-pace slot swapped to M work, got %v", out[1].Template)
	}
	if !hasRationaleTag(out[1], MixPolicySpecificity) {
		t.Errorf("swap should be tagged %s: %v", MixPolicySpecificity, out[1].Rationale)
	}
}

func TestCorrectWeekMixEnduranceKeepsMWeeksAlone(t *testing.T) {
	catalog := testCatalog()
	ctx := buildWeekContext(RaceFocusMarathon, domain.PhaseBuild, 4, 12)
	selections := []WeekSelection{
		selection("Race Pace", catalog.FindByName("Marathon Pace 30")),
		selection("Long Run", catalog.FindByName("Long Run 100")),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[0].Template.Name != "Marathon Pace 30" || len(out[0].Rationale) != 0 {
		t.Errorf("week with M work should be left alone: %+v", out[0])
	}
}

func TestCorrectWeekMixLongRunSwapMatchesDuration(t *testing.T) {
	longFinish := testTemplate("Marathon Long Finish", "marathon_endurance", "medium", 100, 30, "M")
	shortMP := testTemplate("Marathon Pace 30", "marathon_pace", "medium", 60, 30, "M")
	longRun := testTemplate("Long Run 100", "long_run", "easy", 100, 80, "E")
	catalog := NewCatalog([]domain.SessionTemplate{shortMP, longRun, longFinish})

	ctx := buildWeekContext(RaceFocusMarathon, domain.PhaseBuild, 4, 12)
	selections := []WeekSelection{
		selection("Long Run with Marathon Pace Finish", catalog.FindByName("Long Run 100")),
		selection("Easy Run", nil),
	}

	out := CorrectWeekMix(selections, catalog, ctx)
	if out[0].Template == nil || out[0].Template.Name != "Marathon Long Finish" {
		t.Fatalf("long-run swap should stay duration-matched, got %v", out[0].Template)
	}
}
