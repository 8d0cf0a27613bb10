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

// TemplateHandler holds the template service dependency.
type TemplateHandler struct {
	templateService service.TemplateService
}

// NewTemplateHandler creates a new TemplateHandler.
func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

// --- Request/Response Structs ---

type BlockRequest struct {
	Phase       domain.BlockPhase      `json:"phase" binding:"required,oneof=warmup main_set cooldown strides drills"`
	DurationMin float64                `json:"durationMin" binding:"required,gt=0"`
	Target      map[string]interface{} `json:"target"`
}

type TemplateRequest struct {
	Name         string         `json:"name" binding:"required"`
	Category     string         `json:"category"`
	Intent       string         `json:"intent" binding:"required"`
	EnergySystem string         `json:"energySystem"`
	Tier         string         `json:"tier" binding:"omitempty,oneof=easy medium hard"`
	IsTreadmill  bool           `json:"isTreadmill"`
	DurationMin  float64        `json:"durationMin" binding:"required,gt=0"`
	Structure    []BlockRequest `json:"structure" binding:"required,min=1,dive"`
}

type MarkDuplicateRequest struct {
	CanonicalID string `json:"canonicalId" binding:"required"`
}

type TemplateResponse struct {
	ID                    string                `json:"id"`
	CoachID               string                `json:"coachId"`
	Name                  string                `json:"name"`
	Category              string                `json:"category,omitempty"`
	Intent                string                `json:"intent"`
	EnergySystem          string                `json:"energySystem,omitempty"`
	Tier                  string                `json:"tier,omitempty"`
	IsTreadmill           bool                  `json:"isTreadmill"`
	DurationMin           float64               `json:"durationMin"`
	Structure             []domain.Block        `json:"structure"`
	Status                domain.TemplateStatus `json:"status"`
	DuplicateOfTemplateID *string               `json:"duplicateOfTemplateId,omitempty"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
}

// --- Handler Methods ---

// CreateTemplate stores a new session template for the calling coach.
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template, err := h.templateService.Create(c.Request.Context(), coachID, mapRequestToTemplate(&req))
	if err != nil {
		if errors.Is(err, service.ErrTemplateInvalid) {
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to create template")
		return
	}

	c.JSON(http.StatusCreated, mapTemplateToResponse(template))
}

// GetTemplate returns one template by ID.
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	requesterID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	template, err := h.templateService.GetByID(c.Request.Context(), requesterID, templateID)
	if err != nil {
		handleTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapTemplateToResponse(template))
}

// ListMyTemplates returns every template owned by the calling coach.
func (h *TemplateHandler) ListMyTemplates(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}

	templates, err := h.templateService.ListByCoach(c.Request.Context(), coachID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list templates")
		return
	}
	c.JSON(http.StatusOK, mapTemplatesToResponse(templates))
}

// ListCanonical returns the canonical library the planner selects from.
func (h *TemplateHandler) ListCanonical(c *gin.Context) {
	templates, err := h.templateService.ListCanonical(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to list canonical templates")
		return
	}
	c.JSON(http.StatusOK, mapTemplatesToResponse(templates))
}

// UpdateTemplate revalidates and stores edits to an owned template.
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	var req TemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	template := mapRequestToTemplate(&req)
	template.ID = templateID
	updated, err := h.templateService.Update(c.Request.Context(), coachID, template)
	if err != nil {
		handleTemplateError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapTemplateToResponse(updated))
}

// PromoteTemplate marks a template canonical.
func (h *TemplateHandler) PromoteTemplate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	if err := h.templateService.Promote(c.Request.Context(), coachID, templateID); err != nil {
		handleTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkDuplicate retires a template in favour of a canonical one.
func (h *TemplateHandler) MarkDuplicate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}

	var req MarkDuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	canonicalID, err := primitive.ObjectIDFromHex(req.CanonicalID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid canonicalId format")
		return
	}

	if err := h.templateService.MarkDuplicate(c.Request.Context(), coachID, templateID, canonicalID); err != nil {
		handleTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeprecateTemplate retires a template without a canonical replacement.
func (h *TemplateHandler) DeprecateTemplate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	if err := h.templateService.Deprecate(c.Request.Context(), coachID, templateID); err != nil {
		handleTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DeleteTemplate permanently removes an owned template.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	coachID, ok := requesterObjectID(c)
	if !ok {
		return
	}
	templateID, ok := pathObjectID(c, "templateId")
	if !ok {
		return
	}
	if err := h.templateService.Delete(c.Request.Context(), coachID, templateID); err != nil {
		handleTemplateError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Helpers ---

func handleTemplateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTemplateNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTemplateAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrTemplateInvalid):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Template operation failed")
	}
}

func mapRequestToTemplate(req *TemplateRequest) *domain.SessionTemplate {
	structure := make([]domain.Block, len(req.Structure))
	for i, b := range req.Structure {
		structure[i] = domain.Block{
			Phase:       b.Phase,
			DurationMin: b.DurationMin,
			Target:      b.Target,
		}
	}
	return &domain.SessionTemplate{
		Name:         req.Name,
		Category:     req.Category,
		Intent:       req.Intent,
		EnergySystem: req.EnergySystem,
		Tier:         req.Tier,
		IsTreadmill:  req.IsTreadmill,
		DurationMin:  req.DurationMin,
		Structure:    structure,
	}
}

func mapTemplateToResponse(t *domain.SessionTemplate) TemplateResponse {
	if t == nil {
		return TemplateResponse{}
	}
	resp := TemplateResponse{
		ID:           t.ID.Hex(),
		CoachID:      t.CoachID.Hex(),
		Name:         t.Name,
		Category:     t.Category,
		Intent:       t.Intent,
		EnergySystem: t.EnergySystem,
		Tier:         t.Tier,
		IsTreadmill:  t.IsTreadmill,
		DurationMin:  t.DurationMin,
		Structure:    t.Structure,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.DuplicateOfTemplateID != nil {
		hex := t.DuplicateOfTemplateID.Hex()
		resp.DuplicateOfTemplateID = &hex
	}
	return resp
}

func mapTemplatesToResponse(templates []domain.SessionTemplate) []TemplateResponse {
	resp := make([]TemplateResponse, len(templates))
	for i := range templates {
		resp[i] = mapTemplateToResponse(&templates[i])
	}
	return resp
}
