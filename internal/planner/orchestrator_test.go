package planner

import (
	"reflect"
	"testing"

	"strideworks/plan-engine/internal/domain"
)

func replaceFirstRule(name, needle, replacement string) domain.TokenRule {
	return domain.TokenRule{
		Name:      name,
		Rationale: name + " applied",
		Action:    &domain.TokenRuleAction{ReplaceFirst: []string{needle, replacement}},
	}
}

func TestApplyTokenRulesReplaceFirst(t *testing.T) {
	base := []string{"Easy Run", "Quality Session", "Long Run"}
	rules := []domain.TokenRule{replaceFirstRule("quality_to_threshold", "quality", "Threshold")}

	result := ApplyTokenRules(rules, base, WeekContext{Phase: domain.PhaseBuild})
	want := []string{"Easy Run", "Threshold", "Long Run"}
	if !reflect.DeepEqual(result.Tokens, want) {
		t.Fatalf("tokens = %v, want %v", result.Tokens, want)
	}
	if len(result.RuleIDs) != 1 || result.RuleIDs[0] != "quality_to_threshold" {
		t.Errorf("rule ids = %v", result.RuleIDs)
	}
	if len(result.Rationale) != 1 {
		t.Errorf("rationale = %v, want one entry", result.Rationale)
	}
}

func TestApplyTokenRulesDoesNotMutateInput(t *testing.T) {
	base := []string{"Easy Run", "Quality Session"}
	rules := []domain.TokenRule{replaceFirstRule("rewrite", "quality", "Threshold")}

	ApplyTokenRules(rules, base, WeekContext{})
	if base[1] != "Quality Session" {
		t.Fatalf("input slice was mutated: %v", base)
	}
}

func TestApplyTokenRulesMissingNeedleSkipsSilently(t *testing.T) {
	base := []string{"Easy Run", "Long Run"}
	rules := []domain.TokenRule{replaceFirstRule("rewrite", "quality", "Threshold")}

	result := ApplyTokenRules(rules, base, WeekContext{})
	if !reflect.DeepEqual(result.Tokens, base) {
		t.Errorf("tokens = %v, want unchanged %v", result.Tokens, base)
	}
	if len(result.RuleIDs) != 0 || len(result.Rationale) != 0 {
		t.Errorf("skipped rule must not contribute audit entries: %v %v", result.RuleIDs, result.Rationale)
	}
}

func TestApplyTokenRulesOrderMatters(t *testing.T) {
	base := []string{"Quality Session", "Easy Run"}
	rules := []domain.TokenRule{
		replaceFirstRule("first", "quality", "Threshold"),
		replaceFirstRule("second", "threshold", "VO2 Intervals"),
	}

	result := ApplyTokenRules(rules, base, WeekContext{})
	if result.Tokens[0] != "VO2 Intervals" {
		t.Errorf("later rule should see the earlier rewrite, got %v", result.Tokens)
	}
	if !reflect.DeepEqual(result.RuleIDs, []string{"first", "second"}) {
		t.Errorf("rule ids = %v", result.RuleIDs)
	}
}

func TestRuleGuards(t *testing.T) {
	two := 2
	five := 5
	even := true
	ctx := WeekContext{
		Phase:           domain.PhaseBuild,
		RaceFocus:       RaceFocus10K,
		PhaseStep:       2,
		SessionsPerWeek: 5,
	}

	cases := []struct {
		name string
		rule domain.TokenRule
		want bool
	}{
		{"phase match", domain.TokenRule{Phase: string(domain.PhaseBuild)}, true},
		{"phase mismatch", domain.TokenRule{Phase: string(domain.PhasePeak)}, false},
		{"focus match", domain.TokenRule{RaceFocuses: []string{RaceFocus5K, RaceFocus10K}}, true},
		{"focus mismatch", domain.TokenRule{RaceFocuses: []string{RaceFocusMarathon}}, false},
		{"step eq match", domain.TokenRule{PhaseStepEq: &two}, true},
		{"step gte match", domain.TokenRule{PhaseStepGte: &two}, true},
		{"sessions gte match", domain.TokenRule{SessionsPerWeekGte: &five}, true},
		{"even step match", domain.TokenRule{PhaseStepEven: &even}, true},
	}
	for _, tc := range cases {
		if got := ruleApplies(tc.rule, ctx); got != tc.want {
			t.Errorf("%s: ruleApplies = %v, want %v", tc.name, got, tc.want)
		}
	}

	oddCtx := ctx
	oddCtx.PhaseStep = 3
	if ruleApplies(domain.TokenRule{PhaseStepEven: &even}, oddCtx) {
		t.Error("even-step guard should reject step 3")
	}
	sparse := ctx
	sparse.SessionsPerWeek = 4
	if ruleApplies(domain.TokenRule{SessionsPerWeekGte: &five}, sparse) {
		t.Error("sessions guard should reject 4 < 5")
	}
}

func TestQualityFocusHintLastApplierWins(t *testing.T) {
	base := []string{"Quality Session", "Easy Run"}
	rules := []domain.TokenRule{
		{
			Name:             "first",
			QualityFocusHint: "threshold_primary",
			Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Threshold"}},
		},
		{
			Name:             "second",
			QualityFocusHint: "vo2_primary",
			Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"easy run", "VO2 Intervals"}},
		},
	}

	result := ApplyTokenRules(rules, base, WeekContext{})
	if result.QualityFocusHint != "vo2_primary" {
		t.Errorf("hint = %q, want vo2_primary from the last applied rule", result.QualityFocusHint)
	}
}
