package api

import (
	"net/http"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	coachService service.CoachService,
	templateService service.TemplateService,
	plannerService service.PlannerService,
	rulesetService service.RulesetService,
) {
	authHandler := NewAuthHandler(authService)
	coachHandler := NewCoachHandler(coachService)
	templateHandler := NewTemplateHandler(templateService)
	plannerHandler := NewPlannerHandler(plannerService)
	rulesetHandler := NewRulesetHandler(rulesetService)

	authMiddleware := AuthMiddleware(jwtSecret)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Template Library ---
		templateGroup := protected.Group("/templates")
		{
			// The canonical library is readable by both roles; athletes see
			// what their sessions are built from.
			templateGroup.GET("/canonical", templateHandler.ListCanonical)

			templateGroup.POST("", RoleMiddleware(domain.RoleCoach), templateHandler.CreateTemplate)
			templateGroup.GET("", RoleMiddleware(domain.RoleCoach), templateHandler.ListMyTemplates)
			templateGroup.GET("/:templateId", templateHandler.GetTemplate)
			templateGroup.PUT("/:templateId", RoleMiddleware(domain.RoleCoach), templateHandler.UpdateTemplate)
			templateGroup.POST("/:templateId/promote", RoleMiddleware(domain.RoleCoach), templateHandler.PromoteTemplate)
			templateGroup.POST("/:templateId/duplicate-of", RoleMiddleware(domain.RoleCoach), templateHandler.MarkDuplicate)
			templateGroup.POST("/:templateId/deprecate", RoleMiddleware(domain.RoleCoach), templateHandler.DeprecateTemplate)
			templateGroup.DELETE("/:templateId", RoleMiddleware(domain.RoleCoach), templateHandler.DeleteTemplate)
		}

		// --- Coach Roster & Profiles ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/athletes", coachHandler.AddAthlete)
			coachGroup.GET("/athletes", coachHandler.ListAthletes)
			coachGroup.GET("/athletes/:athleteId/profile", coachHandler.GetAthleteProfile)
			coachGroup.PUT("/athletes/:athleteId/profile", coachHandler.UpsertAthleteProfile)
		}

		// --- Plan Compilation & Persistence ---
		planGroup := protected.Group("/plans")
		{
			planGroup.POST("/preview", RoleMiddleware(domain.RoleCoach), plannerHandler.PreviewPlan)
			planGroup.POST("", RoleMiddleware(domain.RoleCoach), plannerHandler.CreatePlan)
		}

		protected.GET("/athletes/:athleteId/weeks", plannerHandler.GetAthletePlanWeeks)
		protected.GET("/weeks/:weekId/assignments", plannerHandler.GetWeekAssignments)
		protected.POST("/assignments/:assignmentId/complete", RoleMiddleware(domain.RoleAthlete), plannerHandler.CompleteAssignment)
		protected.POST("/assignments/:assignmentId/recompile", RoleMiddleware(domain.RoleCoach), plannerHandler.RecompileAssignment)

		// --- Planning Ruleset ---
		rulesetGroup := protected.Group("/ruleset")
		rulesetGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			rulesetGroup.GET("", rulesetHandler.GetActive)
			rulesetGroup.POST("/diff", rulesetHandler.PreviewDiff)
			rulesetGroup.PUT("", rulesetHandler.Save)
			rulesetGroup.POST("/rollback", rulesetHandler.Rollback)
		}
	}
}
