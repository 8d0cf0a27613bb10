package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"strideworks/plan-engine/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanRequest is everything the assembler needs to compile a plan preview.
// Identical requests against the same catalog snapshot and ruleset produce
// identical output: coaches re-preview plans repeatedly before committing.
type PlanRequest struct {
	CoachID         primitive.ObjectID `json:"coachId"`
	AthleteID       primitive.ObjectID `json:"athleteId"`
	RaceGoal        string             `json:"raceGoal"`
	TotalWeeks      int                `json:"totalWeeks"`
	SessionsPerWeek int                `json:"sessionsPerWeek"`
	StartDate       time.Time          `json:"startDate"`
	PreferredDays   []time.Weekday     `json:"preferredDays,omitempty"`
	LongRunDay      *time.Weekday      `json:"longRunDay,omitempty"`
	RawWeeklyLoad   *float64           `json:"rawWeeklyLoad,omitempty"`
}

// WeekDetail is the compiled output for one plan week.
type WeekDetail struct {
	Week        domain.PlanWeek        `json:"week"`
	Assignments []domain.DayAssignment `json:"assignments"`
	Policy      WeekPolicy             `json:"policy"`
	RuleIDs     []string               `json:"ruleIds,omitempty"`
	Rationale   []string               `json:"rationale,omitempty"`
}

// Maximum rationale entries kept per day assignment for the coach-facing
// audit trail.
const maxAssignmentRationale = 8

// Assembler compiles full plan previews from immutable inputs. It holds no
// mutable state; one assembler serves one planning call.
type Assembler struct {
	catalog  *Catalog
	ruleset  *domain.Ruleset
	profile  *domain.AthleteProfile
	engine   *PolicyEngine
	selector *Selector
}

// NewAssembler wires the pipeline over one catalog snapshot, one active
// ruleset and one athlete profile. Profile may be nil; sessions then compile
// without pace bands.
func NewAssembler(catalog *Catalog, ruleset *domain.Ruleset, profile *domain.AthleteProfile) *Assembler {
	return &Assembler{
		catalog:  catalog,
		ruleset:  ruleset,
		profile:  profile,
		engine:   NewPolicyEngine(ruleset),
		selector: NewSelector(catalog),
	}
}

// CompilePlanPreview runs the full pipeline for every week of the plan:
// phase schedule, token orchestration, day placement, template selection,
// mix correction, load retuning and session compilation. It is pure: no
// writes, no wall-clock reads, deterministic output.
func (a *Assembler) CompilePlanPreview(req PlanRequest) []WeekDetail {
	totalWeeks := req.TotalWeeks
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	sessions := clampSessionsPerWeek(req.SessionsPerWeek)
	raceFocus := RaceFocusFromGoal(req.RaceGoal)
	phases := buildPhaseSchedule(totalWeeks)
	start := req.StartDate.UTC().Truncate(24 * time.Hour)

	weeks := make([]WeekDetail, 0, totalWeeks)
	for weekNumber := 1; weekNumber <= totalWeeks; weekNumber++ {
		ctx := WeekContext{
			Phase:           phases[weekNumber-1],
			RaceFocus:       raceFocus,
			WeekNumber:      weekNumber,
			TotalWeeks:      totalWeeks,
			SessionsPerWeek: sessions,
		}
		ctx.PhaseStep, ctx.PhaseWeeksTotal = phaseOrdinal(phases, weekNumber-1)
		weekStart := start.AddDate(0, 0, 7*(weekNumber-1))
		weeks = append(weeks, a.compileWeek(req, ctx, weekStart))
	}
	return weeks
}

func (a *Assembler) compileWeek(req PlanRequest, ctx WeekContext, weekStart time.Time) WeekDetail {
	baseTokens := baseTokensFor(ctx.Phase, ctx.SessionsPerWeek)
	policy := a.engine.WeekPolicy(ctx.RaceFocus, ctx.Phase, ctx.WeekNumber, ctx.TotalWeeks)
	var tokenRules []domain.TokenRule
	if a.ruleset != nil {
		tokenRules = a.ruleset.TokenOrchestrationRules
	}
	orch := ApplyTokenRules(tokenRules, baseTokens, ctx)

	weekRationale := append([]string(nil), policy.Rationale...)
	weekRationale = append(weekRationale, orch.Rationale...)
	if orch.QualityFocusHint != "" && orch.QualityFocusHint != policy.QualityFocus {
		weekRationale = append(weekRationale, fmt.Sprintf(
			"scheduled mix leans %q while the policy table expected %q", orch.QualityFocusHint, policy.QualityFocus))
	}

	targetLoad := a.weekTargetLoad(req, ctx, baseTokens)

	selections := make([]WeekSelection, len(orch.Tokens))
	for i, token := range orch.Tokens {
		template, selReason := a.selector.SelectTemplateForToken(token, ctx)
		selections[i] = WeekSelection{
			Token:    token,
			Template: template,
			Reason:   selReason,
			Rationale: []string{
				fmt.Sprintf("token %q resolved via %s", token, selReason),
			},
		}
	}
	selections = CorrectWeekMix(selections, a.catalog, ctx)
	RetuneWeekLoad(selections, a.catalog, ctx, targetLoad)

	days := placeSessionDays(orch.Tokens, weekStart, req.PreferredDays, req.LongRunDay)

	assignments := make([]domain.DayAssignment, len(selections))
	for i := range selections {
		assignments[i] = a.compileAssignment(req, ctx, policy, &selections[i], days[i])
	}

	week := domain.PlanWeek{
		PlanID:        primitive.NilObjectID,
		CoachID:       req.CoachID,
		AthleteID:     req.AthleteID,
		WeekNumber:    ctx.WeekNumber,
		Phase:         ctx.Phase,
		WeekStart:     weekStart,
		WeekEnd:       weekStart.AddDate(0, 0, 6),
		SessionsOrder: orch.Tokens,
		TargetLoad:    targetLoad,
	}
	return WeekDetail{
		Week:        week,
		Assignments: assignments,
		Policy:      policy,
		RuleIDs:     orch.RuleIDs,
		Rationale:   weekRationale,
	}
}

func (a *Assembler) compileAssignment(req PlanRequest, ctx WeekContext, policy WeekPolicy, sel *WeekSelection, day time.Time) domain.DayAssignment {
	assignment := domain.DayAssignment{
		CoachID:       req.CoachID,
		AthleteID:     req.AthleteID,
		SessionDay:    day,
		SessionName:   sel.Token, // degraded fallback when nothing matched
		PlanningToken: sel.Token,
		Status:        domain.AssignmentPlanned,
	}
	assignment.SelectionReason = sel.Reason
	assignment.SelectionRationale = capRationale(sel.Rationale)

	if sel.Template == nil {
		return assignment
	}
	t := sel.Template
	assignment.SessionName = t.Name
	id := t.ID
	assignment.SourceTemplateID = &id

	var vdot *float64
	if a.profile != nil {
		vdot = a.profile.VDOT
	}
	context := map[string]interface{}{
		"race_goal":     req.RaceGoal,
		"race_focus":    ctx.RaceFocus,
		"phase":         string(ctx.Phase),
		"week_number":   ctx.WeekNumber,
		"quality_focus": policy.QualityFocus,
	}
	// The compile timestamp comes from the plan start date so that identical
	// preview requests stay byte-identical.
	assignment.CompiledStructure, assignment.CompilerMeta = CompileSession(
		t.Structure, t.Name, t.Intent, vdot, req.StartDate.UTC(), context)
	return assignment
}

// weekTargetLoad calibrates the week's load target from the default token
// mix, so target and estimate live on the same numeric scale. A supplied raw
// historical load is rescaled instead.
func (a *Assembler) weekTargetLoad(req PlanRequest, ctx WeekContext, baseTokens []string) float64 {
	if req.RawWeeklyLoad != nil {
		return ScaleRawTargetLoad(*req.RawWeeklyLoad)
	}
	var total float64
	for _, token := range baseTokens {
		duration, factor := nominalTokenLoad(token, ctx)
		total += duration * factor
	}
	return total / 10.0
}

// nominalTokenLoad gives a rough (duration, intensity factor) estimate for
// an abstract token before any template is chosen.
func nominalTokenLoad(token string, ctx WeekContext) (float64, float64) {
	lower := strings.ToLower(token)
	switch {
	case strings.Contains(lower, "long run"):
		return longRunMinutes(ctx), 5.5
	case strings.Contains(lower, "recovery"):
		return recoveryRunMinutes(ctx), 3.5
	case strings.Contains(lower, "quality"), strings.Contains(lower, "threshold"),
		strings.Contains(lower, "tempo"), strings.Contains(lower, "vo2"),
		strings.Contains(lower, "interval"):
		return 45, 7.0
	case strings.Contains(lower, "race pace"), strings.Contains(lower, "openers"):
		return 40, 5.0
	case strings.Contains(lower, "strides"), strings.Contains(lower, "hill"):
		return 40, 4.5
	default:
		return easyRunMinutes(ctx), 4.0
	}
}

func clampSessionsPerWeek(n int) int {
	if n < 3 {
		if n <= 0 {
			return 4
		}
		return 3
	}
	if n > 7 {
		return 7
	}
	return n
}

// buildPhaseSchedule lays out Base -> Build -> Peak -> Taper segments sized
// to the plan length, then marks every 4th base/build week as a Recovery
// cutback week.
func buildPhaseSchedule(totalWeeks int) []domain.PlanPhase {
	taper := 0
	switch {
	case totalWeeks >= 8:
		taper = 2
	case totalWeeks >= 4:
		taper = 1
	}
	peak := 0
	switch {
	case totalWeeks >= 12:
		peak = 3
	case totalWeeks >= 8:
		peak = 2
	case totalWeeks >= 5:
		peak = 1
	}
	remaining := totalWeeks - taper - peak
	base := (remaining*45 + 99) / 100 // ceil(remaining * 0.45)
	if base < 1 {
		base = remaining
	}
	build := remaining - base

	phases := make([]domain.PlanPhase, 0, totalWeeks)
	appendN := func(phase domain.PlanPhase, n int) {
		for i := 0; i < n; i++ {
			phases = append(phases, phase)
		}
	}
	appendN(domain.PhaseBase, base)
	appendN(domain.PhaseBuild, build)
	appendN(domain.PhasePeak, peak)
	appendN(domain.PhaseTaper, taper)

	for i := range phases {
		weekNumber := i + 1
		if weekNumber%4 == 0 && (phases[i] == domain.PhaseBase || phases[i] == domain.PhaseBuild) {
			phases[i] = domain.PhaseRecovery
		}
	}
	return phases
}

// phaseOrdinal returns the 1-based position of the week within its
// contiguous phase block and the block's total length.
func phaseOrdinal(phases []domain.PlanPhase, idx int) (int, int) {
	phase := phases[idx]
	start := idx
	for start > 0 && phases[start-1] == phase {
		start--
	}
	end := idx
	for end < len(phases)-1 && phases[end+1] == phase {
		end++
	}
	return idx - start + 1, end - start + 1
}

// baseTokensFor returns the default abstract session mix for the phase
// before orchestration rules rewrite it.
func baseTokensFor(phase domain.PlanPhase, sessionsPerWeek int) []string {
	var tokens []string
	switch phase {
	case domain.PhaseRecovery:
		tokens = []string{"Easy Run", "Recovery Run", "Easy Run", "Long Run", "Recovery Run", "Easy Run", "Easy Run"}
	case domain.PhaseTaper:
		tokens = []string{"Easy Run", "Race Pace Openers", "Recovery Run", "Easy Run", "Strides Session", "Easy Run", "Recovery Run"}
	default:
		tokens = []string{"Easy Run", "Quality Session", "Easy Run", "Long Run", "Recovery Run", "Strides Session", "Easy Run"}
	}
	if sessionsPerWeek > len(tokens) {
		sessionsPerWeek = len(tokens)
	}
	return append([]string(nil), tokens[:sessionsPerWeek]...)
}

// Default training-day offsets from the week start, by session count.
var defaultDayOffsets = map[int][]int{
	3: {1, 3, 6},
	4: {1, 3, 5, 6},
	5: {0, 1, 3, 5, 6},
	6: {0, 1, 2, 3, 5, 6},
	7: {0, 1, 2, 3, 4, 5, 6},
}

// placeSessionDays assigns a date to every token. The long-run token goes to
// the preferred long-run day when supplied (defaulting to the last training
// day); the remaining tokens fill the other training days in order.
func placeSessionDays(tokens []string, weekStart time.Time, preferredDays []time.Weekday, longRunDay *time.Weekday) []time.Time {
	offsets := dayOffsets(len(tokens), weekStart, preferredDays)

	longRunIdx := -1
	for i, token := range tokens {
		if strings.Contains(strings.ToLower(token), "long run") {
			longRunIdx = i
			break
		}
	}

	days := make([]time.Time, len(tokens))
	if longRunIdx < 0 {
		for i := range tokens {
			days[i] = weekStart.AddDate(0, 0, offsets[i])
		}
		return days
	}

	longOffset := offsets[len(offsets)-1]
	if longRunDay != nil {
		longOffset = weekdayOffset(weekStart, *longRunDay)
	}
	days[longRunIdx] = weekStart.AddDate(0, 0, longOffset)

	next := 0
	for i := range tokens {
		if i == longRunIdx {
			continue
		}
		if next < len(offsets) && offsets[next] == longOffset {
			next++
		}
		offset := 0
		if next < len(offsets) {
			offset = offsets[next]
			next++
		}
		days[i] = weekStart.AddDate(0, 0, offset)
	}
	return days
}

func dayOffsets(count int, weekStart time.Time, preferredDays []time.Weekday) []int {
	if len(preferredDays) >= count {
		offsets := make([]int, 0, count)
		for _, day := range preferredDays[:count] {
			offsets = append(offsets, weekdayOffset(weekStart, day))
		}
		sort.Ints(offsets)
		return offsets
	}
	if offsets, ok := defaultDayOffsets[count]; ok {
		return offsets
	}
	offsets := make([]int, count)
	for i := range offsets {
		offsets[i] = i % 7
	}
	return offsets
}

func weekdayOffset(weekStart time.Time, day time.Weekday) int {
	return (int(day) - int(weekStart.Weekday()) + 7) % 7
}

func capRationale(entries []string) []string {
	if len(entries) <= maxAssignmentRationale {
		return entries
	}
	return entries[:maxAssignmentRationale]
}
