package ruleset

import (
	"fmt"
	"strings"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
)

// Validate checks a candidate ruleset against the closed vocabularies of
// race buckets and phases and the structural requirements of both rule
// tables. It returns human-readable problems; an empty slice means the
// ruleset is acceptable. Saving is all-or-nothing: any problem rejects the
// whole ruleset.
func Validate(rs *domain.Ruleset) []string {
	if rs == nil {
		return []string{"ruleset is empty"}
	}
	var problems []string
	problems = append(problems, validatePolicyRules(rs)...)
	problems = append(problems, validateTokenRules(rs)...)
	return problems
}

func validatePolicyRules(rs *domain.Ruleset) []string {
	var problems []string
	for bucket, phases := range rs.QualityPolicyRules {
		if !knownBucket(bucket) {
			problems = append(problems, fmt.Sprintf("quality_policy_rules: unknown race bucket %q", bucket))
			continue
		}
		for phase, rule := range phases {
			if !knownPhase(phase) {
				problems = append(problems, fmt.Sprintf("quality_policy_rules[%s]: unknown phase %q", bucket, phase))
				continue
			}
			if strings.TrimSpace(rule.QualityFocus) == "" {
				problems = append(problems, fmt.Sprintf("quality_policy_rules[%s][%s]: quality_focus must not be empty", bucket, phase))
			}
		}
	}
	return problems
}

func validateTokenRules(rs *domain.Ruleset) []string {
	var problems []string
	seen := map[string]bool{}
	for i, rule := range rs.TokenOrchestrationRules {
		label := fmt.Sprintf("token_orchestration_rules[%d]", i)
		name := strings.TrimSpace(rule.Name)
		if name == "" {
			problems = append(problems, label+": rule name is required")
		} else {
			if seen[name] {
				problems = append(problems, fmt.Sprintf("%s: duplicate rule name %q", label, name))
			}
			seen[name] = true
			label = fmt.Sprintf("token_orchestration_rules[%q]", name)
		}
		for _, focus := range rule.RaceFocuses {
			if !knownBucket(focus) {
				problems = append(problems, fmt.Sprintf("%s: unknown race bucket %q", label, focus))
			}
		}
		if rule.Phase != "" && !knownPhase(rule.Phase) {
			problems = append(problems, fmt.Sprintf("%s: unknown phase %q", label, rule.Phase))
		}
		if rule.Action != nil && len(rule.Action.ReplaceFirst) > 0 {
			if len(rule.Action.ReplaceFirst) != 2 {
				problems = append(problems, fmt.Sprintf("%s: replace_first needs exactly [needle, new_token]", label))
			} else if strings.TrimSpace(rule.Action.ReplaceFirst[0]) == "" || strings.TrimSpace(rule.Action.ReplaceFirst[1]) == "" {
				problems = append(problems, fmt.Sprintf("%s: replace_first needle and new_token must not be empty", label))
			}
		}
		if rule.PhaseStepEq != nil && *rule.PhaseStepEq < 1 {
			problems = append(problems, fmt.Sprintf("%s: phase_step_eq must be at least 1", label))
		}
		if rule.PhaseStepGte != nil && *rule.PhaseStepGte < 1 {
			problems = append(problems, fmt.Sprintf("%s: phase_step_gte must be at least 1", label))
		}
		if rule.SessionsPerWeekGte != nil && *rule.SessionsPerWeekGte < 1 {
			problems = append(problems, fmt.Sprintf("%s: sessions_per_week_gte must be at least 1", label))
		}
	}
	return problems
}

func knownBucket(bucket string) bool {
	for _, b := range planner.RaceFocusBuckets {
		if b == bucket {
			return true
		}
	}
	return false
}

func knownPhase(phase string) bool {
	for _, p := range planner.PlanPhases {
		if string(p) == phase {
			return true
		}
	}
	return false
}
