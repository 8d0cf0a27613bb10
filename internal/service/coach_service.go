package service

import (
	"context"
	"errors"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrAthleteNotFound        = errors.New("athlete user not found")
	ErrAthleteNotRole         = errors.New("user found but is not an athlete")
	ErrAthleteAlreadyAssigned = errors.New("athlete is already assigned to a coach")
	ErrAthleteNotManaged      = errors.New("athlete is not managed by this coach")
)

// CoachService covers roster management and athlete physiology profiles.
type CoachService interface {
	AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error)
	GetManagedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error)
	GetAthleteProfile(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.AthleteProfile, error)
	UpsertAthleteProfile(ctx context.Context, coachID primitive.ObjectID, profile *domain.AthleteProfile) error
}

// coachService implements the CoachService interface.
type coachService struct {
	userRepo    repository.UserRepository
	profileRepo repository.AthleteProfileRepository
}

// NewCoachService creates a new instance of coachService.
func NewCoachService(userRepo repository.UserRepository, profileRepo repository.AthleteProfileRepository) CoachService {
	return &coachService{
		userRepo:    userRepo,
		profileRepo: profileRepo,
	}
}

// AddAthleteByEmail finds an athlete by email and assigns them to the coach.
func (s *coachService) AddAthleteByEmail(ctx context.Context, coachID primitive.ObjectID, athleteEmail string) (*domain.User, error) {
	if coachID == primitive.NilObjectID || athleteEmail == "" {
		return nil, errors.New("coach ID and athlete email are required")
	}

	athlete, err := s.userRepo.GetByEmail(ctx, athleteEmail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}

	if athlete.Role != domain.RoleAthlete {
		return nil, ErrAthleteNotRole
	}

	if athlete.CoachID != nil && *athlete.CoachID != primitive.NilObjectID {
		if *athlete.CoachID == coachID {
			// Already managed by this coach.
			return athlete, nil
		}
		return nil, ErrAthleteAlreadyAssigned
	}

	// Update both sides of the relationship.
	if err := s.userRepo.AddAthleteIDToCoach(ctx, coachID, athlete.ID); err != nil {
		return nil, err
	}
	if err := s.userRepo.SetCoachForAthlete(ctx, athlete.ID, coachID); err != nil {
		return nil, err
	}

	athlete.CoachID = &coachID
	return athlete, nil
}

// GetManagedAthletes retrieves the coach's roster.
func (s *coachService) GetManagedAthletes(ctx context.Context, coachID primitive.ObjectID) ([]domain.User, error) {
	if coachID == primitive.NilObjectID {
		return nil, errors.New("coach ID is required")
	}
	athletes, err := s.userRepo.GetAthletesByCoachID(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range athletes {
		athletes[i].PasswordHash = ""
	}
	return athletes, nil
}

// GetAthleteProfile retrieves the physiology profile of a managed athlete.
func (s *coachService) GetAthleteProfile(ctx context.Context, coachID, athleteID primitive.ObjectID) (*domain.AthleteProfile, error) {
	if err := s.verifyManaged(ctx, coachID, athleteID); err != nil {
		return nil, err
	}
	return s.profileRepo.GetByAthleteID(ctx, athleteID)
}

// UpsertAthleteProfile creates or updates the profile of a managed athlete.
// The VDOT estimate stored here drives every pace band the compiler emits.
func (s *coachService) UpsertAthleteProfile(ctx context.Context, coachID primitive.ObjectID, profile *domain.AthleteProfile) error {
	if profile == nil {
		return errors.New("profile is required")
	}
	if profile.VDOT != nil && (*profile.VDOT < 20 || *profile.VDOT > 90) {
		return errors.New("vdot must be between 20 and 90")
	}
	if err := s.verifyManaged(ctx, coachID, profile.AthleteID); err != nil {
		return err
	}
	return s.profileRepo.Upsert(ctx, profile)
}

func (s *coachService) verifyManaged(ctx context.Context, coachID, athleteID primitive.ObjectID) error {
	athlete, err := s.userRepo.GetByID(ctx, athleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAthleteNotFound
		}
		return err
	}
	if athlete.Role != domain.RoleAthlete {
		return ErrAthleteNotRole
	}
	if athlete.CoachID == nil || *athlete.CoachID != coachID {
		return ErrAthleteNotManaged
	}
	return nil
}
