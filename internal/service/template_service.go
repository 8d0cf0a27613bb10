package service

import (
	"context"
	"errors"
	"fmt"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrTemplateNotFound     = errors.New("session template not found")
	ErrTemplateAccessDenied = errors.New("access denied to this session template")
	ErrTemplateInvalid      = errors.New("session template failed structural validation")
)

// TemplateService manages the coach's session template library and its
// canonical lifecycle. Only canonical templates are visible to the planner.
type TemplateService interface {
	Create(ctx context.Context, coachID primitive.ObjectID, template *domain.SessionTemplate) (*domain.SessionTemplate, error)
	GetByID(ctx context.Context, requesterID, templateID primitive.ObjectID) (*domain.SessionTemplate, error)
	ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.SessionTemplate, error)
	ListCanonical(ctx context.Context) ([]domain.SessionTemplate, error)
	Update(ctx context.Context, coachID primitive.ObjectID, template *domain.SessionTemplate) (*domain.SessionTemplate, error)
	Promote(ctx context.Context, coachID, templateID primitive.ObjectID) error
	MarkDuplicate(ctx context.Context, coachID, templateID, canonicalID primitive.ObjectID) error
	Deprecate(ctx context.Context, coachID, templateID primitive.ObjectID) error
	Delete(ctx context.Context, coachID, templateID primitive.ObjectID) error
}

// templateService implements the TemplateService interface.
type templateService struct {
	templateRepo repository.TemplateRepository
}

// NewTemplateService creates a new instance of templateService.
func NewTemplateService(templateRepo repository.TemplateRepository) TemplateService {
	return &templateService{templateRepo: templateRepo}
}

// Create validates and stores a new template. New templates always start as
// active; promotion to canonical is a separate, explicit step.
func (s *templateService) Create(ctx context.Context, coachID primitive.ObjectID, template *domain.SessionTemplate) (*domain.SessionTemplate, error) {
	if template == nil {
		return nil, errors.New("template is required")
	}
	template.CoachID = coachID
	template.Status = domain.TemplateStatusActive
	template.DuplicateOfTemplateID = nil

	if problems := template.ValidateStructure(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, problems)
	}

	id, err := s.templateRepo.Create(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = id
	return template, nil
}

// GetByID retrieves a template; canonical templates are readable by anyone,
// other statuses only by their owner.
func (s *templateService) GetByID(ctx context.Context, requesterID, templateID primitive.ObjectID) (*domain.SessionTemplate, error) {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	if template.Status != domain.TemplateStatusCanonical && template.CoachID != requesterID {
		return nil, ErrTemplateAccessDenied
	}
	return template, nil
}

// ListByCoach retrieves every template owned by the coach.
func (s *templateService) ListByCoach(ctx context.Context, coachID primitive.ObjectID) ([]domain.SessionTemplate, error) {
	return s.templateRepo.GetByCoachID(ctx, coachID)
}

// ListCanonical retrieves the canonical library the planner selects from.
func (s *templateService) ListCanonical(ctx context.Context) ([]domain.SessionTemplate, error) {
	return s.templateRepo.ListCanonical(ctx)
}

// Update revalidates and stores edits to an owned template.
func (s *templateService) Update(ctx context.Context, coachID primitive.ObjectID, template *domain.SessionTemplate) (*domain.SessionTemplate, error) {
	if template == nil || template.ID == primitive.NilObjectID {
		return nil, errors.New("template with ID is required")
	}
	template.CoachID = coachID

	if problems := template.ValidateStructure(); len(problems) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrTemplateInvalid, problems)
	}

	if err := s.templateRepo.Update(ctx, template); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}
	return s.templateRepo.GetByID(ctx, template.ID)
}

// Promote marks a template canonical, making it visible to the planner.
// The template must pass structural validation at promotion time.
func (s *templateService) Promote(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	template, err := s.templateRepo.GetByID(ctx, templateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if template.CoachID != coachID {
		return ErrTemplateAccessDenied
	}
	if problems := template.ValidateStructure(); len(problems) > 0 {
		return fmt.Errorf("%w: %v", ErrTemplateInvalid, problems)
	}
	return s.setStatus(ctx, coachID, templateID, domain.TemplateStatusCanonical, nil)
}

// MarkDuplicate retires a template in favour of an existing canonical one.
// Future selections resolve to the canonical template instead.
func (s *templateService) MarkDuplicate(ctx context.Context, coachID, templateID, canonicalID primitive.ObjectID) error {
	if templateID == canonicalID {
		return errors.New("template cannot be a duplicate of itself")
	}
	canonical, err := s.templateRepo.GetByID(ctx, canonicalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTemplateNotFound
		}
		return err
	}
	if canonical.Status != domain.TemplateStatusCanonical {
		return errors.New("duplicate target must be a canonical template")
	}
	return s.setStatus(ctx, coachID, templateID, domain.TemplateStatusDuplicate, &canonicalID)
}

// Deprecate removes a template from circulation without deleting its history.
func (s *templateService) Deprecate(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	return s.setStatus(ctx, coachID, templateID, domain.TemplateStatusDeprecated, nil)
}

// Delete permanently removes an owned template.
func (s *templateService) Delete(ctx context.Context, coachID, templateID primitive.ObjectID) error {
	err := s.templateRepo.Delete(ctx, templateID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}

func (s *templateService) setStatus(ctx context.Context, coachID, templateID primitive.ObjectID, status domain.TemplateStatus, duplicateOf *primitive.ObjectID) error {
	err := s.templateRepo.SetStatus(ctx, templateID, coachID, status, duplicateOf)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrTemplateNotFound
	}
	return err
}
