package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CoachHandler holds the coach service dependency.
type CoachHandler struct {
	coachService service.CoachService
}

// NewCoachHandler creates a new CoachHandler.
func NewCoachHandler(coachService service.CoachService) *CoachHandler {
	return &CoachHandler{coachService: coachService}
}

// --- Request/Response Structs ---

type AddAthleteRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type AthleteProfileRequest struct {
	MaxHR                 int      `json:"maxHr" binding:"omitempty,min=100,max=230"`
	RestingHR             int      `json:"restingHr" binding:"omitempty,min=25,max=110"`
	ThresholdPaceSecPerKm int      `json:"thresholdPaceSecPerKm" binding:"omitempty,min=150,max=600"`
	EasyPaceSecPerKm      int      `json:"easyPaceSecPerKm" binding:"omitempty,min=180,max=720"`
	VDOT                  *float64 `json:"vdot" binding:"omitempty"`
}

type AthleteProfileResponse struct {
	AthleteID             string    `json:"athleteId"`
	MaxHR                 int       `json:"maxHr,omitempty"`
	RestingHR             int       `json:"restingHr,omitempty"`
	ThresholdPaceSecPerKm int       `json:"thresholdPaceSecPerKm,omitempty"`
	EasyPaceSecPerKm      int       `json:"easyPaceSecPerKm,omitempty"`
	VDOT                  *float64  `json:"vdot,omitempty"`
	UpdatedAt             time.Time `json:"updatedAt"`
}

// --- Handler Methods ---

// AddAthlete assigns an existing athlete account to the calling coach.
func (h *CoachHandler) AddAthlete(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}

	var req AddAthleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	athlete, err := h.coachService.AddAthleteByEmail(c.Request.Context(), coachID, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAthleteNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrAthleteNotRole), errors.Is(err, service.ErrAthleteAlreadyAssigned):
			abortWithError(c, http.StatusConflict, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to add athlete")
		}
		return
	}

	c.JSON(http.StatusOK, MapUserToResponse(athlete))
}

// ListAthletes returns the coach's roster.
func (h *CoachHandler) ListAthletes(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}

	athletes, err := h.coachService.GetManagedAthletes(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list athletes")
		return
	}

	resp := make([]UserResponse, len(athletes))
	for i := range athletes {
		resp[i] = MapUserToResponse(&athletes[i])
	}
	c.JSON(http.StatusOK, resp)
}

// GetAthleteProfile returns the physiology profile of a managed athlete.
func (h *CoachHandler) GetAthleteProfile(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	profile, err := h.coachService.GetAthleteProfile(c.Request.Context(), coachID, athleteID)
	if err != nil {
		handleAthleteAccessError(c, err)
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}

// UpsertAthleteProfile creates or replaces the profile of a managed athlete.
func (h *CoachHandler) UpsertAthleteProfile(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	athleteID, ok := pathObjectID(c, "athleteId")
	if !ok {
		return
	}

	var req AthleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	profile := &domain.AthleteProfile{
		AthleteID:             athleteID,
		MaxHR:                 req.MaxHR,
		RestingHR:             req.RestingHR,
		ThresholdPaceSecPerKm: req.ThresholdPaceSecPerKm,
		EasyPaceSecPerKm:      req.EasyPaceSecPerKm,
		VDOT:                  req.VDOT,
	}

	if err := h.coachService.UpsertAthleteProfile(c.Request.Context(), coachID, profile); err != nil {
		if errors.Is(err, service.ErrAthleteNotFound) ||
			errors.Is(err, service.ErrAthleteNotRole) ||
			errors.Is(err, service.ErrAthleteNotManaged) {
			handleAthleteAccessError(c, err)
			return
		}
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, mapProfileToResponse(profile))
}

// --- Helpers ---

func mapProfileToResponse(profile *domain.AthleteProfile) AthleteProfileResponse {
	if profile == nil {
		return AthleteProfileResponse{}
	}
	return AthleteProfileResponse{
		AthleteID:             profile.AthleteID.Hex(),
		MaxHR:                 profile.MaxHR,
		RestingHR:             profile.RestingHR,
		ThresholdPaceSecPerKm: profile.ThresholdPaceSecPerKm,
		EasyPaceSecPerKm:      profile.EasyPaceSecPerKm,
		VDOT:                  profile.VDOT,
		UpdatedAt:             profile.UpdatedAt,
	}
}

func handleAthleteAccessError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAthleteNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrAthleteNotRole):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrAthleteNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to access athlete data")
	}
}

// requesterObjectID extracts the authenticated user's ID from the context.
func requesterObjectID(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "User identity missing from context")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Invalid user identity in context")
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathObjectID parses an ObjectID path parameter.
func pathObjectID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(param))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid %s format", param))
		return primitive.NilObjectID, false
	}
	return id, true
}
