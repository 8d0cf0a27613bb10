package ruleset

import (
	"fmt"
	"reflect"
	"sort"

	"strideworks/plan-engine/internal/domain"
)

// Diff is a structured comparison between a candidate ruleset and a
// baseline. Warnings are advisory consistency checks, never blockers.
type Diff struct {
	HasChanges             bool     `json:"hasChanges"`
	AddedTokenRules        []string `json:"addedTokenRules,omitempty"`
	RemovedTokenRules      []string `json:"removedTokenRules,omitempty"`
	ChangedTokenRules      []string `json:"changedTokenRules,omitempty"`
	AddedPolicyEntries     []string `json:"addedPolicyEntries,omitempty"`
	RemovedPolicyEntries   []string `json:"removedPolicyEntries,omitempty"`
	ChangedPolicyEntries   []string `json:"changedPolicyEntries,omitempty"`
	OrchestrationReordered bool     `json:"orchestrationReordered,omitempty"`
	Warnings               []string `json:"warnings,omitempty"`
}

// Rule-count swings larger than this trigger an advisory warning on save.
const ruleCountWarningDelta = 5

// ComputeDiff compares candidate against baseline. Either side may be nil,
// which counts as an empty ruleset.
func ComputeDiff(candidate, baseline *domain.Ruleset) Diff {
	if candidate == nil {
		candidate = &domain.Ruleset{}
	}
	if baseline == nil {
		baseline = &domain.Ruleset{}
	}
	var d Diff
	diffTokenRules(&d, candidate, baseline)
	diffPolicyEntries(&d, candidate, baseline)
	d.HasChanges = len(d.AddedTokenRules) > 0 || len(d.RemovedTokenRules) > 0 ||
		len(d.ChangedTokenRules) > 0 || len(d.AddedPolicyEntries) > 0 ||
		len(d.RemovedPolicyEntries) > 0 || len(d.ChangedPolicyEntries) > 0 ||
		d.OrchestrationReordered
	d.Warnings = advisoryWarnings(&d, candidate, baseline)
	return d
}

func diffTokenRules(d *Diff, candidate, baseline *domain.Ruleset) {
	baseByName := map[string]domain.TokenRule{}
	var baseOrder []string
	for _, rule := range baseline.TokenOrchestrationRules {
		baseByName[rule.Name] = rule
		baseOrder = append(baseOrder, rule.Name)
	}
	candByName := map[string]domain.TokenRule{}
	var candOrder []string
	for _, rule := range candidate.TokenOrchestrationRules {
		candByName[rule.Name] = rule
		candOrder = append(candOrder, rule.Name)
	}

	for _, name := range candOrder {
		baseRule, ok := baseByName[name]
		if !ok {
			d.AddedTokenRules = append(d.AddedTokenRules, name)
			continue
		}
		if !reflect.DeepEqual(candByName[name], baseRule) {
			d.ChangedTokenRules = append(d.ChangedTokenRules, name)
		}
	}
	for _, name := range baseOrder {
		if _, ok := candByName[name]; !ok {
			d.RemovedTokenRules = append(d.RemovedTokenRules, name)
		}
	}

	// Rule order is significant for orchestration; a pure reorder of shared
	// rules is a real change.
	shared := func(order []string, other map[string]domain.TokenRule) []string {
		var out []string
		for _, name := range order {
			if _, ok := other[name]; ok {
				out = append(out, name)
			}
		}
		return out
	}
	d.OrchestrationReordered = !reflect.DeepEqual(shared(candOrder, baseByName), shared(baseOrder, candByName))
}

func diffPolicyEntries(d *Diff, candidate, baseline *domain.Ruleset) {
	keys := map[string]bool{}
	for bucket, phases := range candidate.QualityPolicyRules {
		for phase := range phases {
			keys[bucket+"/"+phase] = true
		}
	}
	for bucket, phases := range baseline.QualityPolicyRules {
		for phase := range phases {
			keys[bucket+"/"+phase] = true
		}
	}
	sorted := make([]string, 0, len(keys))
	for key := range keys {
		sorted = append(sorted, key)
	}
	sort.Strings(sorted)

	for _, key := range sorted {
		bucket, phase := splitPolicyKey(key)
		candRule, candOK := lookupPolicy(candidate, bucket, phase)
		baseRule, baseOK := lookupPolicy(baseline, bucket, phase)
		switch {
		case candOK && !baseOK:
			d.AddedPolicyEntries = append(d.AddedPolicyEntries, key)
		case !candOK && baseOK:
			d.RemovedPolicyEntries = append(d.RemovedPolicyEntries, key)
		case candOK && baseOK && !policyRuleEqual(candRule, baseRule):
			d.ChangedPolicyEntries = append(d.ChangedPolicyEntries, key)
		}
	}
}

func splitPolicyKey(key string) (string, string) {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[:i], key[i+1:]
		}
	}
	return key, ""
}

func lookupPolicy(rs *domain.Ruleset, bucket, phase string) (domain.QualityPolicyRule, bool) {
	phases, ok := rs.QualityPolicyRules[bucket]
	if !ok {
		return domain.QualityPolicyRule{}, false
	}
	rule, ok := phases[phase]
	return rule, ok
}

func policyRuleEqual(a, b domain.QualityPolicyRule) bool {
	if a.QualityFocus != b.QualityFocus || a.ShortRaceMixMode != b.ShortRaceMixMode || a.Rationale != b.Rationale {
		return false
	}
	av, bv := false, false
	if a.PreferMFinishLongRun != nil {
		av = *a.PreferMFinishLongRun
	}
	if b.PreferMFinishLongRun != nil {
		bv = *b.PreferMFinishLongRun
	}
	return av == bv
}

// advisoryWarnings flags saves that change rules without a version bump, or
// swing the rule counts suspiciously far. These accompany a successful save.
func advisoryWarnings(d *Diff, candidate, baseline *domain.Ruleset) []string {
	var warnings []string
	if !d.HasChanges {
		return warnings
	}
	policyChanged := len(d.AddedPolicyEntries)+len(d.RemovedPolicyEntries)+len(d.ChangedPolicyEntries) > 0
	tokenChanged := len(d.AddedTokenRules)+len(d.RemovedTokenRules)+len(d.ChangedTokenRules) > 0 || d.OrchestrationReordered
	if policyChanged && candidate.Meta.PolicyVersion == baseline.Meta.PolicyVersion {
		warnings = append(warnings, "policy rules changed without a policy_version bump")
	}
	if tokenChanged && candidate.Meta.OrchestrationVersion == baseline.Meta.OrchestrationVersion {
		warnings = append(warnings, "orchestration rules changed without an orchestration_version bump")
	}
	if delta := abs(len(candidate.TokenOrchestrationRules) - len(baseline.TokenOrchestrationRules)); delta > ruleCountWarningDelta {
		warnings = append(warnings, fmt.Sprintf("orchestration rule count changed by %d rules; double-check the submitted ruleset", delta))
	}
	if delta := abs(countPolicyRules(candidate) - countPolicyRules(baseline)); delta > ruleCountWarningDelta {
		warnings = append(warnings, fmt.Sprintf("policy rule count changed by %d entries; double-check the submitted ruleset", delta))
	}
	return warnings
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
