package domain

import (
	"strings"
	"testing"
)

func wellFormedTemplate() SessionTemplate {
	return SessionTemplate{
		Name:        "Tempo 20",
		Intent:      IntentThreshold,
		DurationMin: 45,
		Structure: []Block{
			{Phase: BlockWarmup, DurationMin: 12, Target: map[string]interface{}{"intensity_code": "E"}},
			{Phase: BlockMainSet, DurationMin: 20, Target: map[string]interface{}{"intensity_code": "T"}},
			{Phase: BlockCooldown, DurationMin: 10, Target: map[string]interface{}{"intensity_code": "E"}},
		},
	}
}

func TestValidateStructureWellFormed(t *testing.T) {
	tpl := wellFormedTemplate()
	if problems := tpl.ValidateStructure(); len(problems) > 0 {
		t.Fatalf("expected no problems, got %v", problems)
	}
}

func TestValidateStructureMissingBlocks(t *testing.T) {
	tpl := wellFormedTemplate()
	tpl.Structure = tpl.Structure[:2] // drop the cooldown

	problems := tpl.ValidateStructure()
	found := false
	for _, p := range problems {
		if strings.Contains(p, `missing a "cooldown" block`) {
			found = true
		}
	}
	if !found {
		t.Errorf("problems = %v, want a missing-cooldown problem", problems)
	}
}

func TestValidateStructureDurationWindow(t *testing.T) {
	tpl := wellFormedTemplate()
	tpl.DurationMin = 90 // blocks sum to 42, well under 75% of 90

	problems := tpl.ValidateStructure()
	found := false
	for _, p := range problems {
		if strings.Contains(p, "outside 75%-125%") {
			found = true
		}
	}
	if !found {
		t.Errorf("problems = %v, want a duration-window problem", problems)
	}

	// Sum within the tolerance band passes.
	tpl.DurationMin = 50
	for _, p := range tpl.ValidateStructure() {
		if strings.Contains(p, "outside 75%-125%") {
			t.Errorf("42 of 50 min is inside the window: %v", p)
		}
	}
}

func TestValidateStructureRejectsBadFields(t *testing.T) {
	tpl := wellFormedTemplate()
	tpl.Name = "   "
	tpl.DurationMin = 0
	tpl.Structure[1].DurationMin = -5

	problems := tpl.ValidateStructure()
	wants := []string{
		"template name is required",
		"template duration must be positive",
		`block "main_set" has negative duration`,
	}
	for _, want := range wants {
		found := false
		for _, p := range problems {
			if strings.Contains(p, want) {
				found = true
			}
		}
		if !found {
			t.Errorf("missing problem %q in %v", want, problems)
		}
	}
}

func TestMainSetMinutesAndCodes(t *testing.T) {
	tpl := wellFormedTemplate()
	tpl.Structure = append(tpl.Structure, Block{
		Phase: BlockMainSet, DurationMin: 8, Target: map[string]interface{}{"intensity_code": "I"},
	})

	if got := tpl.MainSetMinutes(); got != 28 {
		t.Errorf("main set minutes = %v, want 28", got)
	}
	codes := tpl.MainSetCodes()
	if len(codes) != 2 || codes[0] != "T" || codes[1] != "I" {
		t.Errorf("main set codes = %v, want [T I]", codes)
	}
}

func TestPrimaryIntensityCodePrefersHardestStimulus(t *testing.T) {
	tpl := wellFormedTemplate()
	tpl.Structure = append(tpl.Structure, Block{
		Phase: BlockMainSet, DurationMin: 8, Target: map[string]interface{}{"intensity_code": "I"},
	})
	if got := tpl.PrimaryIntensityCode(); got != "I" {
		t.Errorf("primary code = %q, want I", got)
	}

	untagged := SessionTemplate{
		Name:   "Mystery",
		Intent: "easy_aerobic",
		Structure: []Block{
			{Phase: BlockMainSet, DurationMin: 30},
		},
	}
	if got := untagged.PrimaryIntensityCode(); got != "" {
		t.Errorf("untagged primary code = %q, want empty", got)
	}
}
