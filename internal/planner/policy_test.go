package planner

import (
	"testing"

	"strideworks/plan-engine/internal/domain"
)

func TestRaceFocusFromGoal(t *testing.T) {
	cases := []struct {
		goal string
		want string
	}{
		{"Half Marathon PB", RaceFocusHalf},
		{"sub-3 marathon", RaceFocusMarathon},
		{"spring 5k", RaceFocus5K},
		{"10K race in June", RaceFocus10K},
		{"get fit again", RaceFocusGeneral},
		{"", RaceFocusGeneral},
		// "half" must win even though the goal also contains "marathon".
		{"HALF-MARATHON debut", RaceFocusHalf},
	}
	for _, tc := range cases {
		if got := RaceFocusFromGoal(tc.goal); got != tc.want {
			t.Errorf("RaceFocusFromGoal(%q) = %s, want %s", tc.goal, got, tc.want)
		}
	}
}

func TestWeekContextProgressClamped(t *testing.T) {
	if p := (WeekContext{WeekNumber: 4, TotalWeeks: 8}).Progress(); p != 0.5 {
		t.Errorf("progress = %v, want 0.5", p)
	}
	if p := (WeekContext{WeekNumber: 20, TotalWeeks: 8}).Progress(); p != 1 {
		t.Errorf("overshot progress = %v, want 1", p)
	}
	if p := (WeekContext{WeekNumber: 3, TotalWeeks: 0}).Progress(); p != 1 {
		t.Errorf("zero total weeks should clamp, got %v", p)
	}
}

func TestWeekPolicyBalancedFallback(t *testing.T) {
	engine := NewPolicyEngine(nil)
	policy := engine.WeekPolicy(RaceFocus5K, domain.PhaseBuild, 3, 8)
	if policy.QualityFocus != balancedQualityFocus {
		t.Errorf("quality focus = %q, want %q", policy.QualityFocus, balancedQualityFocus)
	}
	if len(policy.Rationale) == 0 {
		t.Error("fallback policy should still carry a rationale")
	}
}

func TestWeekPolicyLookup(t *testing.T) {
	prefM := true
	rs := &domain.Ruleset{
		Meta: domain.RulesetMeta{PolicyVersion: "policy-test"},
		QualityPolicyRules: map[string]map[string]domain.QualityPolicyRule{
			RaceFocusHalf: {
				string(domain.PhaseBuild): {
					QualityFocus:         "threshold_primary",
					PreferMFinishLongRun: &prefM,
					Rationale:            "threshold-led half build",
				},
			},
			RaceFocusGeneral: {
				string(domain.PhaseBuild): {QualityFocus: "balanced"},
			},
		},
	}
	engine := NewPolicyEngine(rs)

	policy := engine.WeekPolicy(RaceFocusHalf, domain.PhaseBuild, 4, 12)
	if policy.QualityFocus != "threshold_primary" {
		t.Errorf("quality focus = %q, want threshold_primary", policy.QualityFocus)
	}
	if !policy.PreferMFinishLongRun {
		t.Error("expected PreferMFinishLongRun to carry through")
	}
	if len(policy.Rationale) < 2 {
		t.Errorf("expected engine rationale plus rule rationale, got %v", policy.Rationale)
	}
}

func TestWeekPolicyGeneralBucketFallback(t *testing.T) {
	rs := &domain.Ruleset{
		QualityPolicyRules: map[string]map[string]domain.QualityPolicyRule{
			RaceFocusGeneral: {
				string(domain.PhaseBuild): {QualityFocus: "balanced", Rationale: "general mix"},
			},
		},
	}
	engine := NewPolicyEngine(rs)

	// 5k has no table of its own; the general bucket covers it.
	policy := engine.WeekPolicy(RaceFocus5K, domain.PhaseBuild, 2, 8)
	if policy.QualityFocus != "balanced" {
		t.Errorf("quality focus = %q, want balanced via general bucket", policy.QualityFocus)
	}

	// A phase absent even from general degrades to the balanced fallback.
	missing := engine.WeekPolicy(RaceFocus5K, domain.PhaseTaper, 8, 8)
	if missing.QualityFocus != balancedQualityFocus {
		t.Errorf("missing phase focus = %q, want %q", missing.QualityFocus, balancedQualityFocus)
	}
}
