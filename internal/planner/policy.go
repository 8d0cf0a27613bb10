package planner

import (
	"fmt"
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// Race-distance buckets derived from the free-text race goal.
const (
	RaceFocus5K       = "5k"
	RaceFocus10K      = "10k"
	RaceFocusHalf     = "half_marathon"
	RaceFocusMarathon = "marathon"
	RaceFocusGeneral  = "general"
)

// RaceFocusBuckets is the closed vocabulary of race buckets, used by ruleset
// validation as well as the policy engine.
var RaceFocusBuckets = []string{RaceFocus5K, RaceFocus10K, RaceFocusHalf, RaceFocusMarathon, RaceFocusGeneral}

// PlanPhases is the closed vocabulary of plan phases.
var PlanPhases = []domain.PlanPhase{domain.PhaseBase, domain.PhaseBuild, domain.PhasePeak, domain.PhaseTaper, domain.PhaseRecovery}

// RaceFocusFromGoal buckets a free-text race goal by substring. "half" wins
// over "marathon" containment; anything unrecognised is "general".
func RaceFocusFromGoal(goal string) string {
	g := strings.ToLower(goal)
	switch {
	case strings.Contains(g, "half"):
		return RaceFocusHalf
	case strings.Contains(g, "marathon"):
		return RaceFocusMarathon
	case strings.Contains(g, "5k"):
		return RaceFocus5K
	case strings.Contains(g, "10k"):
		return RaceFocus10K
	default:
		return RaceFocusGeneral
	}
}

// IsShortRaceFocus reports whether the bucket is a short race (5k/10k).
func IsShortRaceFocus(focus string) bool {
	return focus == RaceFocus5K || focus == RaceFocus10K
}

// IsEnduranceFocus reports whether the bucket is half marathon or marathon.
func IsEnduranceFocus(focus string) bool {
	return focus == RaceFocusHalf || focus == RaceFocusMarathon
}

// WeekContext is the planning context threaded through every pipeline stage
// for one week.
type WeekContext struct {
	Phase           domain.PlanPhase
	RaceFocus       string
	WeekNumber      int
	TotalWeeks      int
	PhaseStep       int // 1-based ordinal of this week within its phase block
	PhaseWeeksTotal int
	SessionsPerWeek int
}

// Progress returns week progress through the plan in [0,1]; TotalWeeks is
// clamped to at least 1 so a malformed request degrades instead of dividing
// by zero.
func (c WeekContext) Progress() float64 {
	total := c.TotalWeeks
	if total < 1 {
		total = 1
	}
	p := float64(c.WeekNumber) / float64(total)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// WeekPolicy is the policy engine's answer: the intended quality mix for the
// week plus the rationale trail explaining it.
type WeekPolicy struct {
	QualityFocus         string   `json:"qualityFocus"`
	ShortRaceMixMode     string   `json:"shortRaceMixMode,omitempty"`
	PreferMFinishLongRun bool     `json:"preferMFinishLongRun,omitempty"`
	Rationale            []string `json:"rationale,omitempty"`
}

// Fallback focus used when no rule covers a (bucket, phase) pair. A missing
// rule is a soft gap, never an error.
const balancedQualityFocus = "balanced"

// PolicyEngine answers quality-mix questions from the versioned rule table of
// the active ruleset.
type PolicyEngine struct {
	rules   map[string]map[string]domain.QualityPolicyRule
	version string
}

// NewPolicyEngine builds an engine over the ruleset's policy table. A nil
// ruleset yields an engine that always answers with the balanced fallback.
func NewPolicyEngine(rs *domain.Ruleset) *PolicyEngine {
	engine := &PolicyEngine{}
	if rs != nil {
		engine.rules = rs.QualityPolicyRules
		engine.version = rs.Meta.PolicyVersion
	}
	return engine
}

// WeekPolicy returns the intended quality mix for (raceFocus, phase) at the
// given point in the plan, with a human-readable rationale trail.
func (e *PolicyEngine) WeekPolicy(raceFocus string, phase domain.PlanPhase, weekNumber, totalWeeks int) WeekPolicy {
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	rule, ok := e.lookup(raceFocus, string(phase))
	if !ok {
		return WeekPolicy{
			QualityFocus: balancedQualityFocus,
			Rationale: []string{
				fmt.Sprintf("no quality rule for %s/%s, defaulting to balanced stimulus mix", raceFocus, phase),
			},
		}
	}
	policy := WeekPolicy{
		QualityFocus:     rule.QualityFocus,
		ShortRaceMixMode: rule.ShortRaceMixMode,
	}
	if rule.PreferMFinishLongRun != nil {
		policy.PreferMFinishLongRun = *rule.PreferMFinishLongRun
	}
	policy.Rationale = append(policy.Rationale,
		fmt.Sprintf("quality focus %q for %s %s (week %d of %d, policy %s)",
			rule.QualityFocus, raceFocus, phase, weekNumber, totalWeeks, e.versionLabel()))
	if rule.Rationale != "" {
		policy.Rationale = append(policy.Rationale, rule.Rationale)
	}
	return policy
}

func (e *PolicyEngine) lookup(bucket, phase string) (domain.QualityPolicyRule, bool) {
	if e.rules == nil {
		return domain.QualityPolicyRule{}, false
	}
	phases, ok := e.rules[bucket]
	if !ok {
		// A general-bucket rule covers goals without a dedicated table.
		phases, ok = e.rules[RaceFocusGeneral]
		if !ok {
			return domain.QualityPolicyRule{}, false
		}
	}
	rule, ok := phases[phase]
	return rule, ok
}

func (e *PolicyEngine) versionLabel() string {
	if e.version == "" {
		return "unversioned"
	}
	return e.version
}
