package planner

import (
	"strings"
	"time"

	"strideworks/plan-engine/internal/domain"
)

// Methodology tag stamped into compiler metadata.
const compileMethodology = "daniels_vdot"

// Ordered keyword table mapping template intent (or, failing that, session
// name) to an intensity code. Order matters: "recovery" must win before a
// broader keyword could claim the session, and "long" maps to E because long
// runs are easy-paced unless a block says otherwise.
var intentCodeKeywords = []struct {
	keyword string
	code    string
}{
	{"recovery", CodeEasy},
	{"easy", CodeEasy},
	{"aerobic", CodeEasy},
	{"long", CodeEasy},
	{"marathon", CodeMarathon},
	{"threshold", CodeThreshold},
	{"tempo", CodeThreshold},
	{"cruise", CodeThreshold},
	{"vo2", CodeInterval},
	{"interval", CodeInterval},
	{"repetition", CodeRepetition},
	{"strides", CodeRepetition},
	{"speed", CodeRepetition},
	{"hill", CodeRepetition},
	{"opener", CodeRepetition},
}

// codeForIntent returns the intensity code suggested by an intent or name
// string, or "" when no keyword matches.
func codeForIntent(s string) string {
	lower := strings.ToLower(s)
	for _, entry := range intentCodeKeywords {
		if strings.Contains(lower, entry.keyword) {
			return entry.code
		}
	}
	return ""
}

func isValidCode(code string) bool {
	switch code {
	case CodeEasy, CodeMarathon, CodeThreshold, CodeInterval, CodeRepetition:
		return true
	}
	return false
}

// CompileSession stamps every block of a template's structure with an
// intensity code and, when a VDOT is available, a concrete pace band. It
// returns fresh blocks (inputs are never mutated) plus the compiler metadata
// persisted alongside the compiled structure for audit.
//
// Code inference priority per block: an already-present valid code, then the
// warmup/cooldown phase (forced E), then the template intent keywords, then
// the session name keywords, then the block's declared pace zone. Intent is
// deliberately consulted before the pace-zone label: legacy templates whose
// main set defaulted to Z3 must not be mis-tagged as marathon-pace work when
// their intent says easy or recovery.
func CompileSession(blocks []domain.Block, sessionName, intent string, vdot *float64, compiledAt time.Time, context map[string]interface{}) ([]domain.Block, map[string]interface{}) {
	compiled := make([]domain.Block, len(blocks))
	for i, block := range blocks {
		compiled[i] = compileBlock(block, sessionName, intent, vdot)
	}
	meta := map[string]interface{}{
		"methodology": compileMethodology,
		"compiled_at": compiledAt.UTC().Format(time.RFC3339),
	}
	if len(context) > 0 {
		meta["context"] = context
	}
	return compiled, meta
}

func compileBlock(block domain.Block, sessionName, intent string, vdot *float64) domain.Block {
	out := block
	out.Target = make(map[string]interface{}, len(block.Target)+2)
	for k, v := range block.Target {
		out.Target[k] = v
	}

	code := inferBlockCode(block, sessionName, intent)
	if code == "" {
		return out
	}
	out.Target["intensity_code"] = code
	if vdot != nil {
		if band := PaceBandForCode(*vdot, code); band != nil {
			out.Target["vdot_pace_band"] = band
		}
	}
	return out
}

func inferBlockCode(block domain.Block, sessionName, intent string) string {
	if code := block.IntensityCode(); isValidCode(code) {
		return code
	}
	if block.Phase == domain.BlockWarmup || block.Phase == domain.BlockCooldown {
		return CodeEasy
	}
	if code := codeForIntent(intent); code != "" {
		return code
	}
	if code := codeForIntent(sessionName); code != "" {
		return code
	}
	return codeForPaceZone(block.PaceZone(), intent)
}

// codeForPaceZone maps declared pace-zone labels to codes. Z3 is ambiguous:
// it was a historical main-set default, so it only counts as marathon pace
// unless the intent leans threshold.
func codeForPaceZone(zone, intent string) string {
	switch strings.ToLower(zone) {
	case "z1", "z2":
		return CodeEasy
	case "z3":
		if strings.Contains(strings.ToLower(intent), "threshold") || strings.Contains(strings.ToLower(intent), "tempo") {
			return CodeThreshold
		}
		return CodeMarathon
	case "z4":
		return CodeThreshold
	case "z5":
		return CodeInterval
	default:
		return ""
	}
}
