package ruleset

import (
	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
)

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

// DefaultRuleset is the built-in rule package used until a coach saves an
// edited one. Callers receive a fresh copy on every call.
func DefaultRuleset() *domain.Ruleset {
	rs := &domain.Ruleset{
		Meta: domain.RulesetMeta{
			PolicyVersion:        "policy-v3",
			OrchestrationVersion: "orch-v2",
			LaddersVersion:       "ladders-v1",
		},
		QualityPolicyRules: map[string]map[string]domain.QualityPolicyRule{
			planner.RaceFocus5K: {
				string(domain.PhaseBase):  {QualityFocus: "aerobic_strides", Rationale: "base weeks stay aerobic with neuromuscular touches"},
				string(domain.PhaseBuild): {QualityFocus: "threshold_vo2_blend", ShortRaceMixMode: "alternate", Rationale: "5k build alternates threshold and VO2 stimulus"},
				string(domain.PhasePeak):  {QualityFocus: "vo2_primary", ShortRaceMixMode: "vo2_lead", Rationale: "peak weeks sharpen VO2max for 5k demands"},
				string(domain.PhaseTaper): {QualityFocus: "race_sharpening", Rationale: "taper keeps legs quick without accumulating fatigue"},
			},
			planner.RaceFocus10K: {
				string(domain.PhaseBase):  {QualityFocus: "aerobic_strides", Rationale: "base weeks stay aerobic with neuromuscular touches"},
				string(domain.PhaseBuild): {QualityFocus: "threshold_vo2_blend", ShortRaceMixMode: "alternate", Rationale: "10k build blends cruise intervals with VO2 work"},
				string(domain.PhasePeak):  {QualityFocus: "threshold_vo2_blend", ShortRaceMixMode: "vo2_lead", Rationale: "10k peak keeps both systems loaded"},
				string(domain.PhaseTaper): {QualityFocus: "race_sharpening", Rationale: "taper keeps legs quick without accumulating fatigue"},
			},
			planner.RaceFocusHalf: {
				string(domain.PhaseBase):  {QualityFocus: "aerobic_threshold_intro", Rationale: "half base introduces light threshold volume"},
				string(domain.PhaseBuild): {QualityFocus: "threshold_primary", PreferMFinishLongRun: boolPtr(true), Rationale: "half build is threshold-led with M-finish long runs"},
				string(domain.PhasePeak):  {QualityFocus: "race_pace_specificity", PreferMFinishLongRun: boolPtr(true), Rationale: "peak weeks rehearse goal pace"},
				string(domain.PhaseTaper): {QualityFocus: "race_sharpening", Rationale: "taper trades volume for freshness"},
			},
			planner.RaceFocusMarathon: {
				string(domain.PhaseBase):  {QualityFocus: "aerobic_volume", Rationale: "marathon base is volume first"},
				string(domain.PhaseBuild): {QualityFocus: "marathon_pace_threshold", PreferMFinishLongRun: boolPtr(true), Rationale: "build couples M-pace blocks with threshold support"},
				string(domain.PhasePeak):  {QualityFocus: "race_pace_specificity", PreferMFinishLongRun: boolPtr(true), Rationale: "peak long runs finish at marathon effort"},
				string(domain.PhaseTaper): {QualityFocus: "race_sharpening", Rationale: "taper trades volume for freshness"},
			},
			planner.RaceFocusGeneral: {
				string(domain.PhaseBase):  {QualityFocus: "balanced", Rationale: "general fitness keeps the mix balanced"},
				string(domain.PhaseBuild): {QualityFocus: "balanced", Rationale: "general fitness keeps the mix balanced"},
				string(domain.PhasePeak):  {QualityFocus: "balanced", Rationale: "general fitness keeps the mix balanced"},
			},
		},
		TokenOrchestrationRules: []domain.TokenRule{
			{
				Name:             "base_quality_to_strides",
				Phase:            string(domain.PhaseBase),
				QualityFocusHint: "aerobic_strides",
				Rationale:        "base-phase quality slot runs as strides to protect aerobic development",
				Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Strides Session"}},
			},
			{
				Name:             "build_quality_to_threshold",
				Phase:            string(domain.PhaseBuild),
				QualityFocusHint: "threshold_primary",
				Rationale:        "build-phase quality slot becomes dedicated threshold work",
				Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Threshold"}},
			},
			{
				Name:               "build_second_quality_easy_to_threshold",
				Phase:              string(domain.PhaseBuild),
				PhaseStepGte:       intPtr(2),
				SessionsPerWeekGte: intPtr(5),
				QualityFocusHint:   "threshold_primary",
				Rationale:          "second build week onward trades one easy run for extra threshold volume",
				Action:             &domain.TokenRuleAction{ReplaceFirst: []string{"easy run", "Threshold"}},
			},
			{
				Name:             "peak_quality_to_race_pace",
				RaceFocuses:      []string{planner.RaceFocusHalf, planner.RaceFocusMarathon},
				Phase:            string(domain.PhasePeak),
				QualityFocusHint: "race_pace_specificity",
				Rationale:        "endurance peak weeks rehearse race pace in the quality slot",
				Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Race Pace"}},
			},
			{
				Name:             "peak_quality_to_vo2_short_race",
				RaceFocuses:      []string{planner.RaceFocus5K, planner.RaceFocus10K},
				Phase:            string(domain.PhasePeak),
				QualityFocusHint: "vo2_primary",
				Rationale:        "short-race peak weeks sharpen VO2max in the quality slot",
				Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "VO2 Intervals"}},
			},
			{
				Name:               "peak_even_step_second_vo2",
				RaceFocuses:        []string{planner.RaceFocus5K, planner.RaceFocus10K},
				Phase:              string(domain.PhasePeak),
				PhaseStepEven:      boolPtr(true),
				SessionsPerWeekGte: intPtr(5),
				QualityFocusHint:   "vo2_primary",
				Rationale:          "alternating peak weeks add a second interval touch for short races",
				Action:             &domain.TokenRuleAction{ReplaceFirst: []string{"easy run", "VO2 Intervals"}},
			},
			{
				Name:             "peak_quality_to_race_pace_general",
				RaceFocuses:      []string{planner.RaceFocusGeneral},
				Phase:            string(domain.PhasePeak),
				QualityFocusHint: "balanced",
				Rationale:        "general plans keep peak quality as a mixed tempo session",
				Action:           &domain.TokenRuleAction{ReplaceFirst: []string{"quality", "Tempo Run"}},
			},
		},
	}
	rs.Meta.PolicyRuleCount = countPolicyRules(rs)
	rs.Meta.OrchestrationRuleCount = len(rs.TokenOrchestrationRules)
	return rs
}

func countPolicyRules(rs *domain.Ruleset) int {
	n := 0
	for _, phases := range rs.QualityPolicyRules {
		n += len(phases)
	}
	return n
}
