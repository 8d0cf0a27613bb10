package api

import (
	"errors"
	"fmt"
	"net/http"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/ruleset"
	"strideworks/plan-engine/internal/service"

	"github.com/gin-gonic/gin"
)

// RulesetHandler holds the ruleset service dependency.
type RulesetHandler struct {
	rulesetService service.RulesetService
}

// NewRulesetHandler creates a new RulesetHandler.
func NewRulesetHandler(rulesetService service.RulesetService) *RulesetHandler {
	return &RulesetHandler{rulesetService: rulesetService}
}

// --- Handler Methods ---

// GetActive returns the ruleset the planner is currently using.
func (h *RulesetHandler) GetActive(c *gin.Context) {
	rs, err := h.rulesetService.GetActive(c.Request.Context())
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load ruleset")
		return
	}
	c.JSON(http.StatusOK, rs)
}

// PreviewDiff compares a candidate ruleset against the active one without
// saving anything.
func (h *RulesetHandler) PreviewDiff(c *gin.Context) {
	var candidate domain.Ruleset
	if err := c.ShouldBindJSON(&candidate); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid ruleset payload: %v", err))
		return
	}

	diff, err := h.rulesetService.PreviewDiff(c.Request.Context(), &candidate)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to compute ruleset diff")
		return
	}
	c.JSON(http.StatusOK, diff)
}

// Save validates and persists a candidate ruleset. Validation problems reject
// the whole candidate; warnings accompany a successful save.
func (h *RulesetHandler) Save(c *gin.Context) {
	var candidate domain.Ruleset
	if err := c.ShouldBindJSON(&candidate); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid ruleset payload: %v", err))
		return
	}

	result, err := h.rulesetService.Save(c.Request.Context(), &candidate)
	if err != nil {
		if errors.Is(err, ruleset.ErrValidationFailed) {
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, result)
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to save ruleset")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Rollback restores the previous ruleset revision.
func (h *RulesetHandler) Rollback(c *gin.Context) {
	rs, err := h.rulesetService.Rollback(c.Request.Context())
	if err != nil {
		if errors.Is(err, ruleset.ErrNoBackup) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to roll back ruleset")
		return
	}
	c.JSON(http.StatusOK, rs)
}
