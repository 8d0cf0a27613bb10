package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/planner"
	"strideworks/plan-engine/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlannerHandler holds the planner service dependency.
type PlannerHandler struct {
	plannerService service.PlannerService
}

// NewPlannerHandler creates a new PlannerHandler.
func NewPlannerHandler(plannerService service.PlannerService) *PlannerHandler {
	return &PlannerHandler{plannerService: plannerService}
}

// --- Request/Response Structs ---

// PlanCompileRequest is the coach-facing payload for previewing or creating
// a plan. Days are 0-6 with Sunday as 0, matching time.Weekday.
type PlanCompileRequest struct {
	AthleteID       string   `json:"athleteId" binding:"required"`
	RaceGoal        string   `json:"raceGoal" binding:"required"`
	TotalWeeks      int      `json:"totalWeeks" binding:"required,min=1,max=52"`
	SessionsPerWeek int      `json:"sessionsPerWeek" binding:"required,min=3,max=7"`
	StartDate       string   `json:"startDate" binding:"required"` // YYYY-MM-DD
	PreferredDays   []int    `json:"preferredDays" binding:"omitempty,dive,min=0,max=6"`
	LongRunDay      *int     `json:"longRunDay" binding:"omitempty,min=0,max=6"`
	RawWeeklyLoad   *float64 `json:"rawWeeklyLoad" binding:"omitempty,gt=0"`
}

type PlanCreateResponse struct {
	PlanID string               `json:"planId"`
	Weeks  []planner.WeekDetail `json:"weeks"`
}

// --- Handler Methods ---

// PreviewPlan compiles a plan without saving it.
func (h *PlannerHandler) PreviewPlan(c *gin.Context) {
	req, ok := h.bindPlanRequest(c)
	if !ok {
		return
	}

	weeks, err := h.plannerService.PreviewPlan(c.Request.Context(), req)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

// CreatePlan compiles and persists a plan for a managed athlete.
func (h *PlannerHandler) CreatePlan(c *gin.Context) {
	req, ok := h.bindPlanRequest(c)
	if !ok {
		return
	}

	planID, weeks, err := h.plannerService.CreatePlan(c.Request.Context(), req)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, PlanCreateResponse{
		PlanID: planID.Hex(),
		Weeks:  weeks,
	})
}

// GetAthletePlanWeeks returns an athlete's plan weeks. Athletes read their
// own; coaches read those of managed athletes.
func (h *PlannerHandler) GetAthletePlanWeeks(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	weeks, err := h.plannerService.GetPlanWeeks(c.Request.Context(), requester, athleteID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeks)
}

// GetWeekAssignments returns the compiled day assignments of one plan week.
func (h *PlannerHandler) GetWeekAssignments(c *gin.Context) {
	requester, ok := requesterFromContext(c)
	if !ok {
		return
	}
	weekID, ok := pathObjectID(c, "weekId")
	if !ok {
		return
	}

	assignments, err := h.plannerService.GetWeekAssignments(c.Request.Context(), requester, weekID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// CompleteAssignment lets the owning athlete mark a session done.
func (h *PlannerHandler) CompleteAssignment(c *gin.Context) {
	athleteID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	if err := h.plannerService.CompleteAssignment(c.Request.Context(), athleteID, assignmentID); err != nil {
		handlePlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RecompileAssignment rebuilds one assignment from its template and the
// athlete's current profile.
func (h *PlannerHandler) RecompileAssignment(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	assignmentID, ok := pathObjectID(c, "assignmentId")
	if !ok {
		return
	}

	assignment, err := h.plannerService.RecompileAssignment(c.Request.Context(), coachID, assignmentID)
	if err != nil {
		handlePlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// --- Helpers ---

func (h *PlannerHandler) bindPlanRequest(c *gin.Context) (planner.PlanRequest, bool) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return planner.PlanRequest{}, false
	}

	var req PlanCompileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return planner.PlanRequest{}, false
	}

	athleteID, err := primitive.ObjectIDFromHex(req.AthleteID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid athleteId format")
		return planner.PlanRequest{}, false
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "startDate must be YYYY-MM-DD")
		return planner.PlanRequest{}, false
	}

	planReq := planner.PlanRequest{
		CoachID:         coachID,
		AthleteID:       athleteID,
		RaceGoal:        req.RaceGoal,
		TotalWeeks:      req.TotalWeeks,
		SessionsPerWeek: req.SessionsPerWeek,
		StartDate:       startDate,
		RawWeeklyLoad:   req.RawWeeklyLoad,
	}
	for _, d := range req.PreferredDays {
		planReq.PreferredDays = append(planReq.PreferredDays, time.Weekday(d))
	}
	if req.LongRunDay != nil {
		day := time.Weekday(*req.LongRunDay)
		planReq.LongRunDay = &day
	}
	return planReq, true
}

// requesterFromContext rebuilds the minimal requester identity (ID and role)
// set by the auth middleware.
func requesterFromContext(c *gin.Context) (*domain.User, bool) {
	id, ok := requesterObjectID(c)
	if !ok {
		return nil, false
	}
	role, err := getUserRoleFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "User role missing from context")
		return nil, false
	}
	return &domain.User{ID: id, Role: role}, true
}

func handlePlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanRequestInvalid):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrAthleteNotFound),
		errors.Is(err, service.ErrAssignmentNotFound),
		errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAthleteNotManaged),
		errors.Is(err, service.ErrPlanAccessDenied),
		errors.Is(err, service.ErrAssignmentAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Plan operation failed")
	}
}
