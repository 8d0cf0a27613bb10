package service

import (
	"context"
	"errors"
	"log"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
	"strideworks/plan-engine/internal/repository"
	"strideworks/plan-engine/internal/ruleset"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanRequestInvalid     = errors.New("plan request is invalid")
	ErrAssignmentNotFound     = errors.New("assignment not found")
	ErrAssignmentAccessDenied = errors.New("access denied to this assignment")
	ErrPlanAccessDenied       = errors.New("access denied to this plan")
)

// PlannerService compiles and persists training plans. Every planning call
// re-reads the active ruleset and the canonical catalog, so coach edits to
// either take effect on the next preview without a restart.
type PlannerService interface {
	PreviewPlan(ctx context.Context, req planner.PlanRequest) ([]planner.WeekDetail, error)
	CreatePlan(ctx context.Context, req planner.PlanRequest) (primitive.ObjectID, []planner.WeekDetail, error)
	GetPlanWeeks(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID) ([]domain.PlanWeek, error)
	GetWeekAssignments(ctx context.Context, requester *domain.User, weekID primitive.ObjectID) ([]domain.DayAssignment, error)
	CompleteAssignment(ctx context.Context, athleteID, assignmentID primitive.ObjectID) error
	RecompileAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID) (*domain.DayAssignment, error)
}

// plannerService implements the PlannerService interface.
type plannerService struct {
	templateRepo repository.TemplateRepository
	profileRepo  repository.AthleteProfileRepository
	planRepo     repository.PlanRepository
	userRepo     repository.UserRepository
	rulesetStore ruleset.Store
}

// NewPlannerService creates a new instance of plannerService.
func NewPlannerService(
	templateRepo repository.TemplateRepository,
	profileRepo repository.AthleteProfileRepository,
	planRepo repository.PlanRepository,
	userRepo repository.UserRepository,
	rulesetStore ruleset.Store,
) PlannerService {
	return &plannerService{
		templateRepo: templateRepo,
		profileRepo:  profileRepo,
		planRepo:     planRepo,
		userRepo:     userRepo,
		rulesetStore: rulesetStore,
	}
}

// PreviewPlan compiles a full plan without persisting anything. Identical
// requests against unchanged catalog and ruleset return identical output.
func (s *plannerService) PreviewPlan(ctx context.Context, req planner.PlanRequest) ([]planner.WeekDetail, error) {
	assembler, err := s.buildAssembler(ctx, req)
	if err != nil {
		return nil, err
	}
	return assembler.CompilePlanPreview(req), nil
}

// CreatePlan compiles the plan and persists its weeks and day assignments.
func (s *plannerService) CreatePlan(ctx context.Context, req planner.PlanRequest) (primitive.ObjectID, []planner.WeekDetail, error) {
	assembler, err := s.buildAssembler(ctx, req)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	details := assembler.CompilePlanPreview(req)

	weeks := make([]domain.PlanWeek, len(details))
	assignments := make([][]domain.DayAssignment, len(details))
	for i, detail := range details {
		weeks[i] = detail.Week
		assignments[i] = detail.Assignments
	}

	planID, err := s.planRepo.CreatePlan(ctx, weeks, assignments)
	if err != nil {
		return primitive.NilObjectID, nil, err
	}
	for i := range details {
		details[i].Week = weeks[i]
		details[i].Assignments = assignments[i]
	}
	return planID, details, nil
}

func (s *plannerService) buildAssembler(ctx context.Context, req planner.PlanRequest) (*planner.Assembler, error) {
	if req.CoachID == primitive.NilObjectID || req.AthleteID == primitive.NilObjectID {
		return nil, ErrPlanRequestInvalid
	}
	if req.TotalWeeks < 1 || req.TotalWeeks > 52 {
		return nil, ErrPlanRequestInvalid
	}
	if req.StartDate.IsZero() {
		return nil, ErrPlanRequestInvalid
	}

	athlete, err := s.userRepo.GetByID(ctx, req.AthleteID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAthleteNotFound
		}
		return nil, err
	}
	if athlete.CoachID == nil || *athlete.CoachID != req.CoachID {
		return nil, ErrAthleteNotManaged
	}

	templates, err := s.templateRepo.ListCanonical(ctx)
	if err != nil {
		return nil, err
	}

	rs, err := s.rulesetStore.Load()
	if err != nil {
		return nil, err
	}

	// A missing profile is fine; sessions compile without pace bands.
	profile, err := s.profileRepo.GetByAthleteID(ctx, req.AthleteID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		profile = nil
	}

	return planner.NewAssembler(planner.NewCatalog(templates), rs, profile), nil
}

// GetPlanWeeks returns an athlete's plan weeks. Athletes see their own plans;
// coaches see plans of athletes they manage.
func (s *plannerService) GetPlanWeeks(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID) ([]domain.PlanWeek, error) {
	if err := s.authorizeAthleteAccess(ctx, requester, athleteID); err != nil {
		return nil, err
	}
	return s.planRepo.GetWeeksByAthleteID(ctx, athleteID)
}

// GetWeekAssignments returns the day assignments of one plan week.
func (s *plannerService) GetWeekAssignments(ctx context.Context, requester *domain.User, weekID primitive.ObjectID) ([]domain.DayAssignment, error) {
	assignments, err := s.planRepo.GetAssignmentsByWeekID(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if len(assignments) > 0 {
		if err := s.authorizeAthleteAccess(ctx, requester, assignments[0].AthleteID); err != nil {
			return nil, err
		}
	}
	return assignments, nil
}

// CompleteAssignment lets the owning athlete mark a session done.
func (s *plannerService) CompleteAssignment(ctx context.Context, athleteID, assignmentID primitive.ObjectID) error {
	assignment, err := s.planRepo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAssignmentNotFound
		}
		return err
	}
	if assignment.AthleteID != athleteID {
		return ErrAssignmentAccessDenied
	}
	return s.planRepo.UpdateAssignmentStatus(ctx, assignmentID, domain.AssignmentCompleted)
}

// RecompileAssignment rebuilds one assignment's compiled structure from its
// source template and the athlete's current profile. Coaches use this after a
// VDOT update or a template edit; the planning token and selection audit stay
// untouched.
func (s *plannerService) RecompileAssignment(ctx context.Context, coachID, assignmentID primitive.ObjectID) (*domain.DayAssignment, error) {
	assignment, err := s.planRepo.GetAssignmentByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	if assignment.CoachID != coachID {
		return nil, ErrAssignmentAccessDenied
	}
	if assignment.SourceTemplateID == nil {
		// Token never resolved to a template; nothing to recompile.
		return assignment, nil
	}

	template, err := s.templateRepo.GetByID(ctx, *assignment.SourceTemplateID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	var vdot *float64
	profile, err := s.profileRepo.GetByAthleteID(ctx, assignment.AthleteID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if profile != nil {
		vdot = profile.VDOT
	}

	compileCtx := map[string]interface{}{}
	if prev, ok := assignment.CompilerMeta["context"].(map[string]interface{}); ok {
		compileCtx = prev
	}
	assignment.SessionName = template.Name
	assignment.CompiledStructure, assignment.CompilerMeta = planner.CompileSession(
		template.Structure, template.Name, template.Intent, vdot, assignment.SessionDay.UTC(), compileCtx)

	if err := s.planRepo.UpdateAssignmentCompilation(ctx, assignment); err != nil {
		return nil, err
	}
	log.Printf("INFO: Recompiled assignment %s from template %q", assignmentID.Hex(), template.Name)
	return assignment, nil
}

func (s *plannerService) authorizeAthleteAccess(ctx context.Context, requester *domain.User, athleteID primitive.ObjectID) error {
	if requester == nil {
		return ErrPlanAccessDenied
	}
	if requester.IsAthlete() {
		if requester.ID != athleteID {
			return ErrPlanAccessDenied
		}
		return nil
	}
	if requester.IsCoach() {
		athlete, err := s.userRepo.GetByID(ctx, athleteID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrAthleteNotFound
			}
			return err
		}
		if athlete.CoachID == nil || *athlete.CoachID != requester.ID {
			return ErrAthleteNotManaged
		}
		return nil
	}
	return ErrPlanAccessDenied
}
