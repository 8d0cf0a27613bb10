package planner

import (
	"strings"

	"strideworks/plan-engine/internal/domain"
)

// OrchestrationResult is the outcome of running the token rewrite rules over
// a week's base session-type list. Tokens is a fresh slice; the input list is
// never mutated.
type OrchestrationResult struct {
	Tokens           []string
	RuleIDs          []string
	Rationale        []string
	QualityFocusHint string
}

// ApplyTokenRules threads the week's token list through the ordered rule
// table. Rules are evaluated in table order on every call; a rule whose
// guards match the context applies its action against the current list. A
// matching rule whose needle finds no token is skipped silently and
// contributes no rationale.
func ApplyTokenRules(rules []domain.TokenRule, base []string, ctx WeekContext) OrchestrationResult {
	result := OrchestrationResult{Tokens: append([]string(nil), base...)}
	for _, rule := range rules {
		if !ruleApplies(rule, ctx) {
			continue
		}
		next, applied := applyRuleAction(rule, result.Tokens)
		if !applied {
			continue
		}
		result.Tokens = next
		result.RuleIDs = append(result.RuleIDs, rule.Name)
		if rule.Rationale != "" {
			result.Rationale = append(result.Rationale, rule.Rationale)
		}
		if rule.QualityFocusHint != "" {
			result.QualityFocusHint = rule.QualityFocusHint
		}
	}
	return result
}

// ruleApplies evaluates all of the rule's guards against the week context.
func ruleApplies(rule domain.TokenRule, ctx WeekContext) bool {
	if len(rule.RaceFocuses) > 0 {
		found := false
		for _, focus := range rule.RaceFocuses {
			if focus == ctx.RaceFocus {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if rule.Phase != "" && rule.Phase != string(ctx.Phase) {
		return false
	}
	if rule.PhaseStepEq != nil && ctx.PhaseStep != *rule.PhaseStepEq {
		return false
	}
	if rule.PhaseStepGte != nil && ctx.PhaseStep < *rule.PhaseStepGte {
		return false
	}
	if rule.SessionsPerWeekGte != nil && ctx.SessionsPerWeek < *rule.SessionsPerWeekGte {
		return false
	}
	if rule.PhaseStepEven != nil {
		isEven := ctx.PhaseStep%2 == 0
		if isEven != *rule.PhaseStepEven {
			return false
		}
	}
	return true
}

// applyRuleAction produces a new token list with the rule's action applied.
// Only replace_first is supported: the first token whose lowercase text
// contains the needle is replaced.
func applyRuleAction(rule domain.TokenRule, tokens []string) ([]string, bool) {
	if rule.Action == nil || len(rule.Action.ReplaceFirst) != 2 {
		return tokens, false
	}
	needle := strings.ToLower(rule.Action.ReplaceFirst[0])
	replacement := rule.Action.ReplaceFirst[1]
	if needle == "" || replacement == "" {
		return tokens, false
	}
	for i, token := range tokens {
		if strings.Contains(strings.ToLower(token), needle) {
			next := append([]string(nil), tokens...)
			next[i] = replacement
			return next, true
		}
	}
	return tokens, false
}
