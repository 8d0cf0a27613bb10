package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanPhase is the physiological phase a training week belongs to.
type PlanPhase string

const (
	PhaseBase     PlanPhase = "Base"
	PhaseBuild    PlanPhase = "Build"
	PhasePeak     PlanPhase = "Peak"
	PhaseTaper    PlanPhase = "Taper"
	PhaseRecovery PlanPhase = "Recovery"
)

// AssignmentStatus tracks whether the athlete has logged the session.
type AssignmentStatus string

const (
	AssignmentPlanned   AssignmentStatus = "planned"
	AssignmentCompleted AssignmentStatus = "completed"
)

// PlanWeek is one week of a compiled training plan. SessionsOrder holds the
// abstract planning tokens for the week in schedule order; the per-day
// resolution lives on the DayAssignments.
type PlanWeek struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID        primitive.ObjectID `bson:"planId" json:"planId"`
	CoachID       primitive.ObjectID `bson:"coachId" json:"coachId"`
	AthleteID     primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	WeekNumber    int                `bson:"weekNumber" json:"weekNumber"` // 1-based
	Phase         PlanPhase          `bson:"phase" json:"phase"`
	WeekStart     time.Time          `bson:"weekStart" json:"weekStart"`
	WeekEnd       time.Time          `bson:"weekEnd" json:"weekEnd"`
	SessionsOrder []string           `bson:"sessionsOrder" json:"sessionsOrder"`
	TargetLoad    float64            `bson:"targetLoad" json:"targetLoad"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// DayAssignment is one prescribed session on a concrete day. SessionName is
// the resolved template name, or the raw planning token when no canonical
// template matched. CompiledStructure carries the pace-banded blocks shown to
// the athlete.
type DayAssignment struct {
	ID                 primitive.ObjectID     `bson:"_id,omitempty" json:"id"`
	PlanWeekID         primitive.ObjectID     `bson:"planWeekId" json:"planWeekId"`
	CoachID            primitive.ObjectID     `bson:"coachId" json:"coachId"`
	AthleteID          primitive.ObjectID     `bson:"athleteId" json:"athleteId"`
	SessionDay         time.Time              `bson:"sessionDay" json:"sessionDay"`
	SessionName        string                 `bson:"sessionName" json:"sessionName"`
	SourceTemplateID   *primitive.ObjectID    `bson:"sourceTemplateId,omitempty" json:"sourceTemplateId,omitempty"`
	PlanningToken      string                 `bson:"planningToken" json:"planningToken"`
	SelectionReason    string                 `bson:"templateSelectionReason" json:"templateSelectionReason"`
	SelectionRationale []string               `bson:"templateSelectionRationale,omitempty" json:"templateSelectionRationale,omitempty"`
	CompiledStructure  []Block                `bson:"compiledStructure,omitempty" json:"compiledStructure,omitempty"`
	CompilerMeta       map[string]interface{} `bson:"compilerMeta,omitempty" json:"compilerMeta,omitempty"`
	Status             AssignmentStatus       `bson:"status" json:"status"`
	CreatedAt          time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time              `bson:"updatedAt" json:"updatedAt"`
}
