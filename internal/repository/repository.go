package repository

import (
	"context"

	"strideworks/plan-engine/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddAthleteIDToCoach(ctx context.Context, coachID, athleteID primitive.ObjectID) error
	GetAthletesByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	SetCoachForAthlete(ctx context.Context, athleteID, coachID primitive.ObjectID) error
}

// TemplateRepository defines the interface for the session template catalog.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.SessionTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionTemplate, error)
	GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.SessionTemplate, error)
	// ListCanonical returns canonical-status templates ordered by duration
	// ascending then id ascending. Template selection breaks score ties by
	// catalog position, so this ordering must stay stable.
	ListCanonical(ctx context.Context) ([]domain.SessionTemplate, error)
	Update(ctx context.Context, template *domain.SessionTemplate) error
	SetStatus(ctx context.Context, id, coachID primitive.ObjectID, status domain.TemplateStatus, duplicateOf *primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error
}

// AthleteProfileRepository defines the interface for athlete physiology data.
type AthleteProfileRepository interface {
	GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.AthleteProfile, error)
	Upsert(ctx context.Context, profile *domain.AthleteProfile) error
}

// PlanRepository defines the interface for persisted plan weeks and their
// day assignments.
type PlanRepository interface {
	CreatePlan(ctx context.Context, weeks []domain.PlanWeek, assignments [][]domain.DayAssignment) (primitive.ObjectID, error)
	GetWeeksByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanWeek, error)
	GetWeeksByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.PlanWeek, error)
	GetAssignmentsByWeekID(ctx context.Context, weekID primitive.ObjectID) ([]domain.DayAssignment, error)
	GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (*domain.DayAssignment, error)
	UpdateAssignmentStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error
	UpdateAssignmentCompilation(ctx context.Context, assignment *domain.DayAssignment) error
}
