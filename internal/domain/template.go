package domain

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TemplateStatus tracks the lifecycle of a session template in the catalog.
type TemplateStatus string

const (
	TemplateStatusActive     TemplateStatus = "active"
	TemplateStatusCanonical  TemplateStatus = "canonical"
	TemplateStatusDuplicate  TemplateStatus = "duplicate"
	TemplateStatusDeprecated TemplateStatus = "deprecated"
)

// BlockPhase identifies the structural role of a block within a session.
type BlockPhase string

const (
	BlockWarmup   BlockPhase = "warmup"
	BlockMainSet  BlockPhase = "main_set"
	BlockCooldown BlockPhase = "cooldown"
	BlockStrides  BlockPhase = "strides"
	BlockDrills   BlockPhase = "drills"
)

// Template intent values used across the catalog. Free-form strings are
// allowed in stored templates; the planner matches by substring, so variants
// like "threshold_cruise" still land in the right family.
const (
	IntentEasyAerobic  = "easy_aerobic"
	IntentRecovery     = "recovery"
	IntentLongRun      = "long_run"
	IntentThreshold    = "lactate_threshold"
	IntentVO2          = "vo2max"
	IntentMarathonPace = "marathon_pace"
	IntentStrides      = "strides"
	IntentHills        = "hill_strength"
	IntentRaceOpeners  = "race_openers"
)

// Block is one structural segment of a session template. Target is a
// free-form map; recognised keys are "pace_zone", "hr_zone", "rpe_range" and,
// after compilation, "intensity_code" and "vdot_pace_band".
type Block struct {
	Phase       BlockPhase             `bson:"phase" json:"phase"`
	DurationMin float64                `bson:"durationMin" json:"durationMin"`
	Target      map[string]interface{} `bson:"target,omitempty" json:"target,omitempty"`
}

// IntensityCode returns the explicit intensity code stamped on the block
// target, or "" when none is present.
func (b Block) IntensityCode() string {
	if b.Target == nil {
		return ""
	}
	if code, ok := b.Target["intensity_code"].(string); ok {
		return code
	}
	return ""
}

// PaceZone returns the declared pace zone label (e.g. "Z2"), or "".
func (b Block) PaceZone() string {
	if b.Target == nil {
		return ""
	}
	if zone, ok := b.Target["pace_zone"].(string); ok {
		return zone
	}
	return ""
}

// SessionTemplate is a reusable workout definition in the coach's library.
type SessionTemplate struct {
	ID                    primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CoachID               primitive.ObjectID  `bson:"coachId" json:"coachId"`
	Name                  string              `bson:"name" json:"name"` // Unique display name
	Category              string              `bson:"category,omitempty" json:"category,omitempty"`
	Intent                string              `bson:"intent" json:"intent"`
	EnergySystem          string              `bson:"energySystem,omitempty" json:"energySystem,omitempty"`
	Tier                  string              `bson:"tier,omitempty" json:"tier,omitempty"` // e.g. "easy", "medium", "hard"
	IsTreadmill           bool                `bson:"isTreadmill" json:"isTreadmill"`
	DurationMin           float64             `bson:"durationMin" json:"durationMin"`
	Structure             []Block             `bson:"structure" json:"structure"`
	Status                TemplateStatus      `bson:"status" json:"status"`
	DuplicateOfTemplateID *primitive.ObjectID `bson:"duplicateOfTemplateId,omitempty" json:"duplicateOfTemplateId,omitempty"`
	CreatedAt             time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt             time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// MainSetMinutes sums the durations of the template's main_set blocks.
func (t *SessionTemplate) MainSetMinutes() float64 {
	var total float64
	for _, b := range t.Structure {
		if b.Phase == BlockMainSet {
			total += b.DurationMin
		}
	}
	return total
}

// MainSetCodes returns the explicit intensity codes stamped on main_set
// blocks, in structure order, without duplicates.
func (t *SessionTemplate) MainSetCodes() []string {
	var codes []string
	seen := map[string]bool{}
	for _, b := range t.Structure {
		if b.Phase != BlockMainSet {
			continue
		}
		code := b.IntensityCode()
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}
	return codes
}

// PrimaryIntensityCode picks the dominant training code of the template:
// explicit main_set codes win (hardest stimulus first), otherwise "".
// Callers that need a code for untagged templates fall back to intent
// keyword inference.
func (t *SessionTemplate) PrimaryIntensityCode() string {
	codes := t.MainSetCodes()
	if len(codes) == 0 {
		return ""
	}
	for _, preferred := range []string{"I", "T", "M", "R", "E"} {
		for _, code := range codes {
			if code == preferred {
				return code
			}
		}
	}
	return codes[0]
}

// Structural tolerance: block durations must sum to within this fraction of
// the declared template duration.
const (
	structureSumMinRatio = 0.75
	structureSumMaxRatio = 1.25
)

// ValidateStructure checks the catalog invariants for a template's block
// structure: warmup, main_set and cooldown must all be present, and the block
// durations must sum to within 75%-125% of the declared duration. Returns
// human-readable problems, empty when the template is well formed.
func (t *SessionTemplate) ValidateStructure() []string {
	var problems []string
	if strings.TrimSpace(t.Name) == "" {
		problems = append(problems, "template name is required")
	}
	if t.DurationMin <= 0 {
		problems = append(problems, "template duration must be positive")
	}
	required := map[BlockPhase]bool{BlockWarmup: false, BlockMainSet: false, BlockCooldown: false}
	var sum float64
	for _, b := range t.Structure {
		if _, ok := required[b.Phase]; ok {
			required[b.Phase] = true
		}
		if b.DurationMin < 0 {
			problems = append(problems, fmt.Sprintf("block %q has negative duration", b.Phase))
		}
		sum += b.DurationMin
	}
	for _, phase := range []BlockPhase{BlockWarmup, BlockMainSet, BlockCooldown} {
		if !required[phase] {
			problems = append(problems, fmt.Sprintf("structure is missing a %q block", phase))
		}
	}
	if t.DurationMin > 0 {
		if sum < t.DurationMin*structureSumMinRatio || sum > t.DurationMin*structureSumMaxRatio {
			problems = append(problems, fmt.Sprintf(
				"block durations sum to %.0f min, outside 75%%-125%% of the declared %.0f min", sum, t.DurationMin))
		}
	}
	return problems
}
