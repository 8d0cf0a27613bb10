package ruleset

import (
	"strings"
	"testing"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
)

func problemsContain(problems []string, sub string) bool {
	for _, p := range problems {
		if strings.Contains(p, sub) {
			return true
		}
	}
	return false
}

func TestValidateDefaultRuleset(t *testing.T) {
	if problems := Validate(DefaultRuleset()); len(problems) > 0 {
		t.Fatalf("default ruleset must validate cleanly: %v", problems)
	}
}

func TestValidateNilRuleset(t *testing.T) {
	problems := Validate(nil)
	if len(problems) != 1 || problems[0] != "ruleset is empty" {
		t.Errorf("problems = %v", problems)
	}
}

func TestValidatePolicyRules(t *testing.T) {
	rs := &domain.Ruleset{
		QualityPolicyRules: map[string]map[string]domain.QualityPolicyRule{
			"ultra": {
				"base": {QualityFocus: "balanced"},
			},
			planner.RaceFocus5K: {
				"pre_season": {QualityFocus: "balanced"},
				"build":      {QualityFocus: "   "},
			},
		},
	}
	problems := Validate(rs)
	if !problemsContain(problems, `unknown race bucket "ultra"`) {
		t.Errorf("missing unknown-bucket problem: %v", problems)
	}
	if !problemsContain(problems, `unknown phase "pre_season"`) {
		t.Errorf("missing unknown-phase problem: %v", problems)
	}
	if !problemsContain(problems, "quality_focus must not be empty") {
		t.Errorf("missing empty-focus problem: %v", problems)
	}
}

func TestValidateTokenRules(t *testing.T) {
	one := 1
	zero := 0
	rs := &domain.Ruleset{
		TokenOrchestrationRules: []domain.TokenRule{
			{Name: ""},
			{Name: "dup", Action: &domain.TokenRuleAction{ReplaceFirst: []string{"a", "b"}}},
			{Name: "dup"},
			{Name: "bad_bucket", RaceFocuses: []string{"ultra"}},
			{Name: "bad_phase", Phase: "offseason"},
			{Name: "bad_arity", Action: &domain.TokenRuleAction{ReplaceFirst: []string{"only_needle"}}},
			{Name: "blank_needle", Action: &domain.TokenRuleAction{ReplaceFirst: []string{" ", "x"}}},
			{Name: "bad_step", PhaseStepEq: &zero},
			{Name: "ok", Phase: "build", PhaseStepGte: &one, Action: &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Threshold"}}},
		},
	}
	problems := Validate(rs)
	wants := []string{
		"rule name is required",
		`duplicate rule name "dup"`,
		`unknown race bucket "ultra"`,
		`unknown phase "offseason"`,
		"replace_first needs exactly [needle, new_token]",
		"replace_first needle and new_token must not be empty",
		"phase_step_eq must be at least 1",
	}
	for _, want := range wants {
		if !problemsContain(problems, want) {
			t.Errorf("missing problem %q in %v", want, problems)
		}
	}
	if problemsContain(problems, `"ok"`) {
		t.Errorf("well-formed rule flagged: %v", problems)
	}
}
