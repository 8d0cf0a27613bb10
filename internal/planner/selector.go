package planner

import (
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// Selection reason codes shared by every family. Family handlers namespace
// their reasons with a family prefix so audit trails can explain which rule
// chain produced the pick.
const (
	ReasonAlreadyCanonical = "already_canonical"
	ReasonNoCanonicalLib   = "no_canonical_library"
	ReasonNoSelectorRule   = "no_selector_rule"
	reasonSuffixBestFit    = "best_fit"
	reasonSuffixNoMatch    = "no_match"
)

// Selector resolves abstract planning tokens to canonical templates. The
// family dispatch is an explicit ordered list of (predicate, handler) pairs
// evaluated in fixed order; the first family whose predicate accepts the
// token handles it.
type Selector struct {
	catalog  *Catalog
	families []familyRule
}

type familyRule struct {
	name   string
	match  func(token string) bool
	handle func(s *Selector, token string, ctx WeekContext) (*domain.SessionTemplate, string)
}

// NewSelector builds a selector over a canonical catalog snapshot.
func NewSelector(catalog *Catalog) *Selector {
	return &Selector{
		catalog:  catalog,
		families: selectorFamilies(),
	}
}

// SelectTemplateForToken maps one planning token to the best canonical
// template, or to nil with a reason code. Absence of a match is a normal
// outcome, never an error: the catalog may legitimately not contain a
// matching family yet.
func (s *Selector) SelectTemplateForToken(token string, ctx WeekContext) (*domain.SessionTemplate, string) {
	if s.catalog.Empty() {
		return nil, ReasonNoCanonicalLib
	}
	// Regenerated plans carry already-resolved template names as tokens.
	if t := s.catalog.FindByName(token); t != nil {
		return t, ReasonAlreadyCanonical
	}
	lower := strings.ToLower(token)
	for _, family := range s.families {
		if family.match(lower) {
			return family.handle(s, token, ctx)
		}
	}
	return nil, ReasonNoSelectorRule
}

// selectorFamilies returns the dispatch table. Order matters: "recovery run"
// must hit the recovery family before the easy-run family, and race-pace
// phrasing must win over the generic taper family.
func selectorFamilies() []familyRule {
	return []familyRule{
		{name: "long_run", match: tokenContains("long run"), handle: (*Selector).selectLongRun},
		{name: "recovery", match: tokenContains("recovery"), handle: (*Selector).selectRecovery},
		{name: "easy_run", match: tokenContains("easy run"), handle: (*Selector).selectEasyRun},
		{name: "threshold", match: tokenContainsAny("tempo", "threshold"), handle: (*Selector).selectThreshold},
		{name: "vo2", match: tokenContainsAny("vo2", "interval"), handle: (*Selector).selectVO2},
		{name: "race_pace", match: tokenContainsAny("race pace", "marathon pace"), handle: (*Selector).selectRacePace},
		{name: "hill", match: tokenContains("hill"), handle: (*Selector).selectHill},
		{name: "strides", match: tokenContainsAny("strides", "neuromuscular"), handle: (*Selector).selectStrides},
		{name: "taper", match: tokenContainsAny("taper", "openers"), handle: (*Selector).selectOpeners},
	}
}

func tokenContains(sub string) func(string) bool {
	return func(token string) bool { return strings.Contains(token, sub) }
}

func tokenContainsAny(subs ...string) func(string) bool {
	return func(token string) bool {
		for _, sub := range subs {
			if strings.Contains(token, sub) {
				return true
			}
		}
		return false
	}
}

func intentContainsAny(subs ...string) func(string) bool {
	return func(intent string) bool {
		for _, sub := range subs {
			if strings.Contains(intent, sub) {
				return true
			}
		}
		return false
	}
}

func reason(prefix, suffix string) string {
	return prefix + suffix
}

func resolved(t *domain.SessionTemplate, prefix string) (*domain.SessionTemplate, string) {
	if t == nil {
		return nil, reason(prefix, reasonSuffixNoMatch)
	}
	return t, reason(prefix, reasonSuffixBestFit)
}

// --- phase duration heuristics ---

// easyRunMinutes scales the easy-run target with the phase: steady in base,
// growing through build/peak with plan progress, short in recovery and taper.
func easyRunMinutes(ctx WeekContext) float64 {
	switch ctx.Phase {
	case domain.PhaseBase:
		return 55
	case domain.PhaseBuild, domain.PhasePeak:
		if ctx.Progress() < 0.5 {
			return 50
		}
		return 60
	case domain.PhaseRecovery:
		return 40
	case domain.PhaseTaper:
		return 35
	default:
		return 50
	}
}

func longRunMinutes(ctx WeekContext) float64 {
	switch ctx.Phase {
	case domain.PhaseBase:
		return 80
	case domain.PhaseBuild:
		if ctx.Progress() < 0.5 {
			return 90
		}
		return 100
	case domain.PhasePeak:
		return 105
	case domain.PhaseRecovery:
		return 75
	case domain.PhaseTaper:
		return 60
	default:
		return 90
	}
}

func recoveryRunMinutes(ctx WeekContext) float64 {
	if ctx.Phase == domain.PhaseTaper {
		return 30
	}
	return 40
}

// --- family handlers ---

func (s *Selector) selectLongRun(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	targetDur := longRunMinutes(ctx)
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("long"),
		excludeCodes:  []string{CodeThreshold, CodeInterval, CodeRepetition},
	})
	return resolved(pickBest(candidates, targetDur-15, targetDur), "long_run_")
}

func (s *Selector) selectRecovery(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	targetDur := recoveryRunMinutes(ctx)
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("recovery"),
		excludeCodes:  []string{CodeMarathon, CodeThreshold, CodeInterval, CodeRepetition},
	})
	return resolved(pickBest(candidates, targetDur, targetDur), "recovery_")
}

func (s *Selector) selectEasyRun(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	targetDur := easyRunMinutes(ctx)
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("easy", "aerobic"),
		excludeCodes:  []string{CodeMarathon, CodeThreshold, CodeInterval, CodeRepetition},
	})
	return resolved(pickBest(candidates, targetDur, targetDur), "easy_run_")
}

func (s *Selector) selectThreshold(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	step := ResolveLadder(LadderThreshold, ctx)
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("threshold", "tempo", "cruise"),
		requireCodes:  []string{CodeThreshold},
		excludeCodes:  []string{CodeInterval},
	})
	return resolved(pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+25), "threshold_cruise_")
}

func (s *Selector) selectVO2(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	step := ResolveLadder(LadderVO2, ctx)
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("vo2", "interval"),
		requireCodes:  []string{CodeInterval},
		excludeCodes:  []string{CodeMarathon},
	})
	return resolved(pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+30), "vo2_")
}

// selectRacePace is the three-way branch: taper weeks sharpen with openers,
// endurance goals get marathon-pace work sized from the M ladder, and short
// races fall back to threshold or VO2 sessions. 5k/10k race pace is not a
// distinct physiological zone worth a dedicated template family, so that
// fallback is deliberate catalog policy, not a gap.
func (s *Selector) selectRacePace(token string, ctx WeekContext) (*domain.SessionTemplate, string) {
	if ctx.Phase == domain.PhaseTaper {
		return s.selectOpeners(token, ctx)
	}
	if IsEnduranceFocus(ctx.RaceFocus) {
		step := ResolveLadder(LadderMarathonPace, ctx)
		candidates := s.catalog.filter(templateFilter{
			intentAllowed: intentContainsAny("marathon"),
			requireCodes:  []string{CodeMarathon},
		})
		return resolved(pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+25), "race_pace_marathon_")
	}
	return s.selectShortRaceFallback(ctx)
}

// selectShortRaceFallback sizes the session from the short-race ladder and
// alternates stimulus: the first half of the ladder leans threshold, the
// second half VO2.
func (s *Selector) selectShortRaceFallback(ctx WeekContext) (*domain.SessionTemplate, string) {
	step := ResolveLadder(LadderShortRace, ctx)
	if step.Step*2 <= step.StepsTotal {
		candidates := s.catalog.filter(templateFilter{
			intentAllowed: intentContainsAny("threshold", "tempo", "cruise"),
			requireCodes:  []string{CodeThreshold},
			excludeCodes:  []string{CodeInterval},
		})
		return resolved(pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+25), "threshold_fallback_")
	}
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("vo2", "interval"),
		requireCodes:  []string{CodeInterval},
	})
	return resolved(pickBest(candidates, step.TargetMainMinutes, step.TargetMainMinutes+30), "vo2_fallback_")
}

func (s *Selector) selectHill(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("hill"),
	})
	return resolved(pickBest(candidates, 20, 50), "hill_")
}

func (s *Selector) selectStrides(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("strides", "neuro"),
	})
	return resolved(pickBest(candidates, 10, 40), "strides_")
}

func (s *Selector) selectOpeners(_ string, ctx WeekContext) (*domain.SessionTemplate, string) {
	candidates := s.catalog.filter(templateFilter{
		intentAllowed: intentContainsAny("opener", "race_prep", "sharpen"),
	})
	if len(candidates) == 0 {
		// Tolerate catalogs that file openers by name rather than intent.
		candidates = s.catalog.filter(templateFilter{
			nameAnyOf: []string{"openers", "sharpener"},
		})
	}
	return resolved(pickBest(candidates, 10, 35), "race_pace_openers_")
}
