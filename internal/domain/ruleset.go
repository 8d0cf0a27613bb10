package domain

// Ruleset is the coach-editable rule package driving week planning: the
// quality-policy table consumed by the policy engine and the ordered token
// orchestration rules applied before template selection. It round-trips
// through JSON in the ruleset store.
type Ruleset struct {
	Meta                    RulesetMeta                             `json:"meta"`
	QualityPolicyRules      map[string]map[string]QualityPolicyRule `json:"quality_policy_rules"`
	TokenOrchestrationRules []TokenRule                             `json:"token_orchestration_rules"`
}

// RulesetMeta versions the rule tables. Saving a changed ruleset without
// bumping the relevant version is allowed but produces an advisory warning.
type RulesetMeta struct {
	PolicyVersion          string `json:"policy_version"`
	OrchestrationVersion   string `json:"orchestration_version"`
	LaddersVersion         string `json:"ladders_version"`
	PolicyRuleCount        int    `json:"policy_rule_count"`
	OrchestrationRuleCount int    `json:"orchestration_rule_count"`
}

// QualityPolicyRule is one entry of the (race bucket, phase) policy table.
type QualityPolicyRule struct {
	QualityFocus         string `json:"quality_focus"`
	ShortRaceMixMode     string `json:"short_race_mix_mode,omitempty"`
	PreferMFinishLongRun *bool  `json:"prefer_m_finish_long_run,omitempty"`
	Rationale            string `json:"rationale,omitempty"`
}

// TokenRuleAction is the rewrite a matched orchestration rule performs.
// ReplaceFirst is a [needle, newToken] pair: the first token whose lowercase
// text contains needle is replaced by newToken.
type TokenRuleAction struct {
	ReplaceFirst []string `json:"replace_first,omitempty"`
}

// TokenRule is one ordered, conditionally-guarded token rewrite rule. All
// non-nil predicates must hold for the rule to apply. An empty RaceFocuses
// list matches every race bucket; an empty Phase matches every phase.
type TokenRule struct {
	Name               string           `json:"name"`
	RaceFocuses        []string         `json:"race_focuses,omitempty"`
	Phase              string           `json:"phase,omitempty"`
	PhaseStepEq        *int             `json:"phase_step_eq,omitempty"`
	PhaseStepGte       *int             `json:"phase_step_gte,omitempty"`
	SessionsPerWeekGte *int             `json:"sessions_per_week_gte,omitempty"`
	PhaseStepEven      *bool            `json:"phase_step_even,omitempty"`
	QualityFocusHint   string           `json:"quality_focus_hint,omitempty"`
	Rationale          string           `json:"rationale,omitempty"`
	Action             *TokenRuleAction `json:"action,omitempty"`
}

// Clone returns a deep copy of the ruleset so callers can mutate a candidate
// without touching the loaded original.
func (r *Ruleset) Clone() *Ruleset {
	if r == nil {
		return nil
	}
	out := &Ruleset{
		Meta:               r.Meta,
		QualityPolicyRules: make(map[string]map[string]QualityPolicyRule, len(r.QualityPolicyRules)),
	}
	for bucket, phases := range r.QualityPolicyRules {
		cp := make(map[string]QualityPolicyRule, len(phases))
		for phase, rule := range phases {
			if rule.PreferMFinishLongRun != nil {
				v := *rule.PreferMFinishLongRun
				rule.PreferMFinishLongRun = &v
			}
			cp[phase] = rule
		}
		out.QualityPolicyRules[bucket] = cp
	}
	out.TokenOrchestrationRules = make([]TokenRule, len(r.TokenOrchestrationRules))
	for i, tr := range r.TokenOrchestrationRules {
		out.TokenOrchestrationRules[i] = tr.clone()
	}
	return out
}

func (t TokenRule) clone() TokenRule {
	out := t
	out.RaceFocuses = append([]string(nil), t.RaceFocuses...)
	if t.PhaseStepEq != nil {
		v := *t.PhaseStepEq
		out.PhaseStepEq = &v
	}
	if t.PhaseStepGte != nil {
		v := *t.PhaseStepGte
		out.PhaseStepGte = &v
	}
	if t.SessionsPerWeekGte != nil {
		v := *t.SessionsPerWeekGte
		out.SessionsPerWeekGte = &v
	}
	if t.PhaseStepEven != nil {
		v := *t.PhaseStepEven
		out.PhaseStepEven = &v
	}
	if t.Action != nil {
		a := &TokenRuleAction{ReplaceFirst: append([]string(nil), t.Action.ReplaceFirst...)}
		out.Action = a
	}
	return out
}
