package planner

import (
	"math"
	"reflect"
	"testing"
	"time"

	"strideworks/plan-engine/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func previewRequest(totalWeeks int) PlanRequest {
	return PlanRequest{
		CoachID:         primitive.NewObjectID(),
		AthleteID:       primitive.NewObjectID(),
		RaceGoal:        "10K race in June",
		TotalWeeks:      totalWeeks,
		SessionsPerWeek: 5,
		StartDate:       time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), // a Monday
	}
}

func TestCompilePlanPreviewDeterministic(t *testing.T) {
	vdot := 52.0
	profile := &domain.AthleteProfile{VDOT: &vdot}
	assembler := NewAssembler(testCatalog(), nil, profile)
	req := previewRequest(10)

	first := assembler.CompilePlanPreview(req)
	second := assembler.CompilePlanPreview(req)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical requests must compile to identical previews")
	}
	if len(first) != 10 {
		t.Fatalf("compiled %d weeks, want 10", len(first))
	}
}

func TestCompilePlanPreviewWeekShape(t *testing.T) {
	assembler := NewAssembler(testCatalog(), nil, nil)
	req := previewRequest(8)

	weeks := assembler.CompilePlanPreview(req)
	for i, w := range weeks {
		if w.Week.WeekNumber != i+1 {
			t.Errorf("week %d numbered %d", i, w.Week.WeekNumber)
		}
		wantStart := req.StartDate.AddDate(0, 0, 7*i)
		if !w.Week.WeekStart.Equal(wantStart) {
			t.Errorf("week %d start %v, want %v", i+1, w.Week.WeekStart, wantStart)
		}
		if !w.Week.WeekEnd.Equal(wantStart.AddDate(0, 0, 6)) {
			t.Errorf("week %d end %v", i+1, w.Week.WeekEnd)
		}
		if len(w.Assignments) != 5 {
			t.Errorf("week %d has %d assignments, want 5", i+1, len(w.Assignments))
		}
		if len(w.Week.SessionsOrder) != 5 {
			t.Errorf("week %d sessions order %v", i+1, w.Week.SessionsOrder)
		}
	}
}

func TestCompilePlanPreviewEmptyCatalogDegrades(t *testing.T) {
	assembler := NewAssembler(NewCatalog(nil), nil, nil)
	weeks := assembler.CompilePlanPreview(previewRequest(4))

	for _, w := range weeks {
		for _, a := range w.Assignments {
			if a.SessionName != a.PlanningToken {
				t.Errorf("degraded assignment name %q should equal its token %q", a.SessionName, a.PlanningToken)
			}
			if a.SelectionReason != ReasonNoCanonicalLib {
				t.Errorf("selection reason = %q, want %q", a.SelectionReason, ReasonNoCanonicalLib)
			}
			if a.SourceTemplateID != nil {
				t.Error("degraded assignment must not reference a template")
			}
			if a.CompiledStructure != nil {
				t.Error("degraded assignment must not carry compiled structure")
			}
		}
	}
}

func TestCompilePlanPreviewRawLoadTarget(t *testing.T) {
	raw := 100.0
	req := previewRequest(4)
	req.RawWeeklyLoad = &raw
	assembler := NewAssembler(testCatalog(), nil, nil)

	weeks := assembler.CompilePlanPreview(req)
	for i, w := range weeks {
		if math.Abs(w.Week.TargetLoad-56) > 1e-9 {
			t.Errorf("week %d target load = %v, want 56", i+1, w.Week.TargetLoad)
		}
	}
}

func TestBuildPhaseSchedule12Weeks(t *testing.T) {
	phases := buildPhaseSchedule(12)
	want := []domain.PlanPhase{
		domain.PhaseBase, domain.PhaseBase, domain.PhaseBase, domain.PhaseRecovery,
		domain.PhaseBuild, domain.PhaseBuild, domain.PhaseBuild,
		domain.PhasePeak, domain.PhasePeak, domain.PhasePeak,
		domain.PhaseTaper, domain.PhaseTaper,
	}
	if !reflect.DeepEqual(phases, want) {
		t.Errorf("schedule = %v, want %v", phases, want)
	}
}

func TestBuildPhaseScheduleShortPlans(t *testing.T) {
	phases := buildPhaseSchedule(4)
	want := []domain.PlanPhase{domain.PhaseBase, domain.PhaseBase, domain.PhaseBuild, domain.PhaseTaper}
	if !reflect.DeepEqual(phases, want) {
		t.Errorf("4-week schedule = %v, want %v", phases, want)
	}

	if phases := buildPhaseSchedule(1); len(phases) != 1 || phases[0] != domain.PhaseBase {
		t.Errorf("1-week schedule = %v", phases)
	}
}

func TestPhaseOrdinal(t *testing.T) {
	phases := buildPhaseSchedule(12)
	// Week 6 is the second of three contiguous build weeks.
	step, total := phaseOrdinal(phases, 5)
	if step != 2 || total != 3 {
		t.Errorf("ordinal = (%d, %d), want (2, 3)", step, total)
	}
	// The recovery cutback week is its own block of one.
	step, total = phaseOrdinal(phases, 3)
	if step != 1 || total != 1 {
		t.Errorf("recovery ordinal = (%d, %d), want (1, 1)", step, total)
	}
}

func TestClampSessionsPerWeek(t *testing.T) {
	cases := map[int]int{0: 4, -3: 4, 2: 3, 3: 3, 5: 5, 7: 7, 9: 7}
	for in, want := range cases {
		if got := clampSessionsPerWeek(in); got != want {
			t.Errorf("clamp(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBaseTokensFor(t *testing.T) {
	tokens := baseTokensFor(domain.PhaseBuild, 5)
	want := []string{"Easy Run", "Quality Session", "Easy Run", "Long Run", "Recovery Run"}
	if !reflect.DeepEqual(tokens, want) {
		t.Errorf("build tokens = %v, want %v", tokens, want)
	}

	taper := baseTokensFor(domain.PhaseTaper, 3)
	if taper[1] != "Race Pace Openers" {
		t.Errorf("taper mix = %v", taper)
	}

	recovery := baseTokensFor(domain.PhaseRecovery, 4)
	for _, token := range recovery {
		if token == "Quality Session" {
			t.Errorf("recovery week must not schedule quality: %v", recovery)
		}
	}

	if got := baseTokensFor(domain.PhaseBase, 9); len(got) != 7 {
		t.Errorf("oversized request returned %d tokens", len(got))
	}
}

func TestPlaceSessionDaysDefaultLongRunLast(t *testing.T) {
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	tokens := []string{"Easy Run", "Quality Session", "Easy Run", "Long Run", "Recovery Run"}

	days := placeSessionDays(tokens, weekStart, nil, nil)
	if !days[3].Equal(weekStart.AddDate(0, 0, 6)) {
		t.Errorf("long run placed on %v, want the last training day", days[3])
	}
	wantOffsets := []int{0, 1, 3, 5}
	for i, idx := range []int{0, 1, 2, 4} {
		want := weekStart.AddDate(0, 0, wantOffsets[i])
		if !days[idx].Equal(want) {
			t.Errorf("token %d placed on %v, want %v", idx, days[idx], want)
		}
	}
}

func TestPlaceSessionDaysHonoursLongRunDay(t *testing.T) {
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	tokens := []string{"Easy Run", "Long Run", "Recovery Run"}
	sunday := time.Sunday

	days := placeSessionDays(tokens, weekStart, nil, &sunday)
	if !days[1].Equal(weekStart.AddDate(0, 0, 6)) {
		t.Errorf("long run placed on %v, want Sunday", days[1])
	}

	wednesday := time.Wednesday
	days = placeSessionDays(tokens, weekStart, nil, &wednesday)
	if !days[1].Equal(weekStart.AddDate(0, 0, 2)) {
		t.Errorf("long run placed on %v, want Wednesday", days[1])
	}
}

func TestPlaceSessionDaysPreferredDays(t *testing.T) {
	weekStart := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday
	tokens := []string{"Easy Run", "Quality Session", "Easy Run"}
	preferred := []time.Weekday{time.Tuesday, time.Thursday, time.Saturday}

	days := placeSessionDays(tokens, weekStart, preferred, nil)
	want := []int{1, 3, 5}
	for i := range days {
		if !days[i].Equal(weekStart.AddDate(0, 0, want[i])) {
			t.Errorf("token %d placed on %v, want offset %d", i, days[i], want[i])
		}
	}
}

func TestWeekdayOffset(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	if got := weekdayOffset(monday, time.Sunday); got != 6 {
		t.Errorf("offset to Sunday = %d, want 6", got)
	}
	if got := weekdayOffset(monday, time.Monday); got != 0 {
		t.Errorf("offset to Monday = %d, want 0", got)
	}
}
