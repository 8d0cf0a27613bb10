package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"strideworks/plan-engine/internal/api"
	"strideworks/plan-engine/internal/config"
	"strideworks/plan-engine/internal/repository/mongo"
	"strideworks/plan-engine/internal/ruleset"
	"strideworks/plan-engine/internal/service"
	"strideworks/plan-engine/internal/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting Plan Engine Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureTemplateIndexes(ctx, appDB.Collection("session_templates"))
		mongo.EnsureAthleteProfileIndexes(ctx, appDB.Collection("athlete_profiles"))
		mongo.EnsurePlanIndexes(ctx, appDB.Collection("plan_weeks"), appDB.Collection("day_assignments"))
		log.Println("Index creation process completed.")
	}()

	// --- Ruleset Store & Snapshot Archiving ---
	rulesetStore := ruleset.NewFileStore(cfg.Planner.RulesetPath)
	var archiver storage.SnapshotArchiver = storage.NoopArchiver{}
	if cfg.Planner.ArchiveSnapshots {
		log.Println("Initializing S3 snapshot archiver...")
		archiver, err = storage.NewS3Archiver(cfg.S3)
		if err != nil {
			log.Fatalf("FATAL: Failed to initialize S3 archiver: %v", err)
		}
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	templateRepo := mongo.NewMongoTemplateRepository(appDB)
	profileRepo := mongo.NewMongoAthleteProfileRepository(appDB)
	planRepo := mongo.NewMongoPlanRepository(appDB)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	coachService := service.NewCoachService(userRepo, profileRepo)
	templateService := service.NewTemplateService(templateRepo)
	plannerService := service.NewPlannerService(templateRepo, profileRepo, planRepo, userRepo, rulesetStore)
	rulesetService := service.NewRulesetService(rulesetStore, archiver)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, coachService, templateService, plannerService, rulesetService)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
