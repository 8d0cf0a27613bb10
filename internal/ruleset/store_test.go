package ruleset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
)

func tempStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "ruleset.json"))
}

func TestFileStoreLoadMissingFileServesDefaults(t *testing.T) {
	store := tempStore(t)
	rs, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defaults := DefaultRuleset()
	if rs.Meta.PolicyVersion != defaults.Meta.PolicyVersion {
		t.Errorf("policy version = %q, want %q", rs.Meta.PolicyVersion, defaults.Meta.PolicyVersion)
	}
	if len(rs.TokenOrchestrationRules) != len(defaults.TokenOrchestrationRules) {
		t.Errorf("rule count = %d, want %d", len(rs.TokenOrchestrationRules), len(defaults.TokenOrchestrationRules))
	}
}

func TestFileStoreSaveRoundTrip(t *testing.T) {
	store := tempStore(t)
	candidate := DefaultRuleset()
	candidate.Meta.PolicyVersion = "policy-v4"

	result, err := store.Save(candidate)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if result.Snapshot == nil {
		t.Fatal("successful save must return a snapshot")
	}
	if result.Snapshot.Meta.OrchestrationRuleCount != len(candidate.TokenOrchestrationRules) {
		t.Errorf("orchestration rule count = %d, want %d",
			result.Snapshot.Meta.OrchestrationRuleCount, len(candidate.TokenOrchestrationRules))
	}
	if result.ReplacedPayload != nil {
		t.Error("first save has no previous revision to report")
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if loaded.Meta.PolicyVersion != "policy-v4" {
		t.Errorf("reloaded policy version = %q", loaded.Meta.PolicyVersion)
	}
}

func TestFileStoreSaveRejectsInvalidRuleset(t *testing.T) {
	store := tempStore(t)
	candidate := DefaultRuleset()
	candidate.QualityPolicyRules["ultra"] = map[string]domain.QualityPolicyRule{
		"base": {QualityFocus: "balanced"},
	}

	result, err := store.Save(candidate)
	if !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("err = %v, want ErrValidationFailed", err)
	}
	if len(result.Errors) == 0 {
		t.Error("rejected save must report the validation problems")
	}
	// Nothing may be persisted by a rejected save.
	if _, statErr := os.Stat(store.path); !os.IsNotExist(statErr) {
		t.Error("rejected save wrote the ruleset file")
	}
}

func TestFileStoreSaveWarnsWithoutVersionBump(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Save(DefaultRuleset()); err != nil {
		t.Fatalf("initial save: %v", err)
	}

	candidate := DefaultRuleset()
	rule := candidate.QualityPolicyRules[planner.RaceFocusMarathon][string(domain.PhaseBuild)]
	rule.Rationale = "tweaked wording"
	candidate.QualityPolicyRules[planner.RaceFocusMarathon][string(domain.PhaseBuild)] = rule

	result, err := store.Save(candidate)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w == "policy rules changed without a policy_version bump" {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings = %v, want a policy_version bump warning", result.Warnings)
	}
}

func TestFileStoreRollback(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Save(DefaultRuleset()); err != nil {
		t.Fatalf("first save: %v", err)
	}

	candidate := DefaultRuleset()
	candidate.Meta.PolicyVersion = "policy-v4"
	candidate.Meta.OrchestrationVersion = "orch-v3"
	candidate.TokenOrchestrationRules = candidate.TokenOrchestrationRules[:3]
	result, err := store.Save(candidate)
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(result.ReplacedPayload) == 0 {
		t.Fatal("second save should report the replaced revision")
	}

	restored, err := store.Rollback()
	if err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if restored.Meta.PolicyVersion != "policy-v3" {
		t.Errorf("rollback restored version %q, want policy-v3", restored.Meta.PolicyVersion)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if len(loaded.TokenOrchestrationRules) != len(DefaultRuleset().TokenOrchestrationRules) {
		t.Errorf("rollback did not restore the rule table: %d rules", len(loaded.TokenOrchestrationRules))
	}
}

func TestFileStoreRollbackWithoutBackup(t *testing.T) {
	store := tempStore(t)
	if _, err := store.Rollback(); !errors.Is(err, ErrNoBackup) {
		t.Fatalf("err = %v, want ErrNoBackup", err)
	}
}
