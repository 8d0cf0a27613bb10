package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AthleteProfile carries the physiological numbers the session compiler
// needs. The current VDOT estimate is computed externally (from benchmark
// runs / training history) and stored here; this service never derives it.
type AthleteProfile struct {
	ID                    primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AthleteID             primitive.ObjectID `bson:"athleteId" json:"athleteId"`
	MaxHR                 int                `bson:"maxHr,omitempty" json:"maxHr,omitempty"`
	RestingHR             int                `bson:"restingHr,omitempty" json:"restingHr,omitempty"`
	ThresholdPaceSecPerKm int                `bson:"thresholdPaceSecPerKm,omitempty" json:"thresholdPaceSecPerKm,omitempty"`
	EasyPaceSecPerKm      int                `bson:"easyPaceSecPerKm,omitempty" json:"easyPaceSecPerKm,omitempty"`
	VDOT                  *float64           `bson:"vdot,omitempty" json:"vdot,omitempty"`
	UpdatedAt             time.Time          `bson:"updatedAt" json:"updatedAt"`
}
