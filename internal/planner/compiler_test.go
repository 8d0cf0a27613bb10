package planner

import (
	"testing"
	"time"

	"strideworks/plan-engine/internal/domain"
)

func vdotPtr(v float64) *float64 { return &v }

func blockCode(t *testing.T, b domain.Block) string {
	t.Helper()
	code, _ := b.Target["intensity_code"].(string)
	return code
}

func TestCompileSessionStampsCodesAndBands(t *testing.T) {
	blocks := []domain.Block{
		{Phase: domain.BlockWarmup, DurationMin: 10},
		{Phase: domain.BlockMainSet, DurationMin: 20, Target: map[string]interface{}{"intensity_code": "T"}},
		{Phase: domain.BlockCooldown, DurationMin: 10},
	}
	at := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	compiled, meta := CompileSession(blocks, "Tempo 20", "lactate_threshold", vdotPtr(50), at, nil)
	if len(compiled) != 3 {
		t.Fatalf("compiled %d blocks, want 3", len(compiled))
	}
	if code := blockCode(t, compiled[0]); code != CodeEasy {
		t.Errorf("warmup code = %q, want E", code)
	}
	if code := blockCode(t, compiled[1]); code != CodeThreshold {
		t.Errorf("main set code = %q, want T", code)
	}
	if code := blockCode(t, compiled[2]); code != CodeEasy {
		t.Errorf("cooldown code = %q, want E", code)
	}
	for i, b := range compiled {
		if _, ok := b.Target["vdot_pace_band"]; !ok {
			t.Errorf("block %d missing pace band with vdot present", i)
		}
	}
	if meta["methodology"] != "daniels_vdot" {
		t.Errorf("methodology = %v", meta["methodology"])
	}
	if meta["compiled_at"] != "2026-03-02T00:00:00Z" {
		t.Errorf("compiled_at = %v", meta["compiled_at"])
	}
	if _, ok := meta["context"]; ok {
		t.Error("empty context must not be stamped into meta")
	}
}

func TestCompileSessionWithoutVDOTSkipsBands(t *testing.T) {
	blocks := []domain.Block{
		{Phase: domain.BlockMainSet, DurationMin: 30, Target: map[string]interface{}{"intensity_code": "M"}},
	}
	compiled, _ := CompileSession(blocks, "MP 30", "marathon_pace", nil, time.Now(), nil)
	if code := blockCode(t, compiled[0]); code != CodeMarathon {
		t.Errorf("main set code = %q, want M", code)
	}
	if _, ok := compiled[0].Target["vdot_pace_band"]; ok {
		t.Error("pace band stamped without a vdot")
	}
}

func TestCompileSessionDoesNotMutateInput(t *testing.T) {
	blocks := []domain.Block{
		{Phase: domain.BlockMainSet, DurationMin: 20, Target: map[string]interface{}{"pace_zone": "Z4"}},
	}
	CompileSession(blocks, "Tempo", "lactate_threshold", vdotPtr(48), time.Now(), nil)
	if _, ok := blocks[0].Target["intensity_code"]; ok {
		t.Error("input block target was mutated")
	}
	if _, ok := blocks[0].Target["vdot_pace_band"]; ok {
		t.Error("input block target was mutated with a pace band")
	}
}

func TestCompileSessionContextCarriedIntoMeta(t *testing.T) {
	context := map[string]interface{}{"phase": "build", "weekNumber": 3}
	_, meta := CompileSession(nil, "Easy Run", "easy_aerobic", nil, time.Now(), context)
	got, ok := meta["context"].(map[string]interface{})
	if !ok {
		t.Fatal("context missing from meta")
	}
	if got["phase"] != "build" {
		t.Errorf("context phase = %v", got["phase"])
	}
}

func TestInferBlockCodePriority(t *testing.T) {
	cases := []struct {
		name        string
		block       domain.Block
		sessionName string
		intent      string
		want        string
	}{
		{
			"explicit code wins over everything",
			domain.Block{Phase: domain.BlockMainSet, Target: map[string]interface{}{"intensity_code": "I", "pace_zone": "Z2"}},
			"Easy Run", "easy_aerobic", CodeInterval,
		},
		{
			"invalid explicit code is ignored",
			domain.Block{Phase: domain.BlockMainSet, Target: map[string]interface{}{"intensity_code": "Z9"}},
			"Tempo", "lactate_threshold", CodeThreshold,
		},
		{
			"warmup is forced easy",
			domain.Block{Phase: domain.BlockWarmup, Target: map[string]interface{}{"pace_zone": "Z4"}},
			"VO2 5x3", "vo2max", CodeEasy,
		},
		{
			"intent beats pace zone",
			domain.Block{Phase: domain.BlockMainSet, Target: map[string]interface{}{"pace_zone": "Z3"}},
			"Steady 40", "easy_aerobic", CodeEasy,
		},
		{
			"session name fills in for blank intent",
			domain.Block{Phase: domain.BlockMainSet},
			"Hill Repeats", "", CodeRepetition,
		},
		{
			"pace zone is the last resort",
			domain.Block{Phase: domain.BlockMainSet, Target: map[string]interface{}{"pace_zone": "Z5"}},
			"Session A", "", CodeInterval,
		},
		{
			"nothing to infer",
			domain.Block{Phase: domain.BlockMainSet},
			"Session A", "", "",
		},
	}
	for _, tc := range cases {
		if got := inferBlockCode(tc.block, tc.sessionName, tc.intent); got != tc.want {
			t.Errorf("%s: code = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestCodeForPaceZoneZ3Ambiguity(t *testing.T) {
	if got := codeForPaceZone("Z3", "marathon_pace"); got != CodeMarathon {
		t.Errorf("Z3 default = %q, want M", got)
	}
	if got := codeForPaceZone("z3", "threshold_cruise"); got != CodeThreshold {
		t.Errorf("Z3 with threshold intent = %q, want T", got)
	}
	if got := codeForPaceZone("Z2", ""); got != CodeEasy {
		t.Errorf("Z2 = %q, want E", got)
	}
	if got := codeForPaceZone("", ""); got != "" {
		t.Errorf("blank zone = %q, want empty", got)
	}
}
