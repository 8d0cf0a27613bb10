package mongo

import (
	"context"
	"errors"
	"time"

	"strideworks/plan-engine/internal/domain"
	"strideworks/plan-engine/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	planWeekCollectionName   = "plan_weeks"
	assignmentCollectionName = "day_assignments"
)

// mongoPlanRepository implements repository.PlanRepository using MongoDB.
// Weeks and assignments live in separate collections tied together by
// planWeekId; plan-level grouping is by the shared planId.
type mongoPlanRepository struct {
	weeks       *mongo.Collection
	assignments *mongo.Collection
}

// NewMongoPlanRepository creates a new instance of mongoPlanRepository.
func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		weeks:       db.Collection(planWeekCollectionName),
		assignments: db.Collection(assignmentCollectionName),
	}
}

// CreatePlan persists a compiled plan: one PlanWeek per entry in weeks, with
// assignments[i] holding the day assignments of weeks[i]. IDs and timestamps
// are assigned here; the caller's structs are updated in place. Returns the
// shared plan ID.
func (r *mongoPlanRepository) CreatePlan(ctx context.Context, weeks []domain.PlanWeek, assignments [][]domain.DayAssignment) (primitive.ObjectID, error) {
	if len(weeks) == 0 {
		return primitive.NilObjectID, errors.New("plan must contain at least one week")
	}
	if len(assignments) != len(weeks) {
		return primitive.NilObjectID, errors.New("assignments must align with weeks")
	}

	planID := primitive.NewObjectID()
	now := time.Now().UTC()

	weekDocs := make([]interface{}, 0, len(weeks))
	var assignmentDocs []interface{}
	for i := range weeks {
		weeks[i].ID = primitive.NewObjectID()
		weeks[i].PlanID = planID
		weeks[i].CreatedAt = now
		weeks[i].UpdatedAt = now
		weekDocs = append(weekDocs, weeks[i])

		for j := range assignments[i] {
			assignments[i][j].ID = primitive.NewObjectID()
			assignments[i][j].PlanWeekID = weeks[i].ID
			if assignments[i][j].Status == "" {
				assignments[i][j].Status = domain.AssignmentPlanned
			}
			assignments[i][j].CreatedAt = now
			assignments[i][j].UpdatedAt = now
			assignmentDocs = append(assignmentDocs, assignments[i][j])
		}
	}

	if _, err := r.weeks.InsertMany(ctx, weekDocs); err != nil {
		return primitive.NilObjectID, err
	}
	if len(assignmentDocs) > 0 {
		if _, err := r.assignments.InsertMany(ctx, assignmentDocs); err != nil {
			return primitive.NilObjectID, err
		}
	}
	return planID, nil
}

// GetWeeksByPlanID retrieves all weeks of a plan in week order.
func (r *mongoPlanRepository) GetWeeksByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.PlanWeek, error) {
	return r.findWeeks(ctx, bson.M{"planId": planID})
}

// GetWeeksByAthleteID retrieves every plan week assigned to an athlete,
// newest plan first then week order.
func (r *mongoPlanRepository) GetWeeksByAthleteID(ctx context.Context, athleteID primitive.ObjectID) ([]domain.PlanWeek, error) {
	return r.findWeeks(ctx, bson.M{"athleteId": athleteID})
}

func (r *mongoPlanRepository) findWeeks(ctx context.Context, filter bson.M) ([]domain.PlanWeek, error) {
	var weeks []domain.PlanWeek
	findOptions := options.Find().SetSort(bson.D{
		{Key: "planId", Value: -1},
		{Key: "weekNumber", Value: 1},
	})

	cursor, err := r.weeks.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &weeks); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if weeks == nil {
		weeks = []domain.PlanWeek{}
	}
	return weeks, nil
}

// GetAssignmentsByWeekID retrieves a week's assignments in day order.
func (r *mongoPlanRepository) GetAssignmentsByWeekID(ctx context.Context, weekID primitive.ObjectID) ([]domain.DayAssignment, error) {
	var out []domain.DayAssignment
	filter := bson.M{"planWeekId": weekID}
	findOptions := options.Find().SetSort(bson.D{{Key: "sessionDay", Value: 1}})

	cursor, err := r.assignments.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if out == nil {
		out = []domain.DayAssignment{}
	}
	return out, nil
}

// GetAssignmentByID retrieves a single day assignment.
func (r *mongoPlanRepository) GetAssignmentByID(ctx context.Context, id primitive.ObjectID) (*domain.DayAssignment, error) {
	var assignment domain.DayAssignment
	filter := bson.M{"_id": id}

	err := r.assignments.FindOne(ctx, filter).Decode(&assignment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// UpdateAssignmentStatus marks an assignment planned or completed.
func (r *mongoPlanRepository) UpdateAssignmentStatus(ctx context.Context, id primitive.ObjectID, status domain.AssignmentStatus) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.assignments.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// UpdateAssignmentCompilation rewrites the compiled output of an assignment
// after a recompile (new VDOT, template edit).
func (r *mongoPlanRepository) UpdateAssignmentCompilation(ctx context.Context, assignment *domain.DayAssignment) error {
	if assignment.ID == primitive.NilObjectID {
		return errors.New("assignment ID is required")
	}

	filter := bson.M{"_id": assignment.ID}
	update := bson.M{
		"$set": bson.M{
			"sessionName":                assignment.SessionName,
			"sourceTemplateId":           assignment.SourceTemplateID,
			"templateSelectionReason":    assignment.SelectionReason,
			"templateSelectionRationale": assignment.SelectionRationale,
			"compiledStructure":          assignment.CompiledStructure,
			"compilerMeta":               assignment.CompilerMeta,
			"updatedAt":                  time.Now().UTC(),
		},
	}

	result, err := r.assignments.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates necessary indexes for the plan collections.
// Call this once during application startup.
func EnsurePlanIndexes(ctx context.Context, weeks, assignments *mongo.Collection) {
	weekIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planId", Value: 1}, {Key: "weekNumber", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := weeks.Indexes().CreateMany(ctx, weekIndexes); err != nil {
		// Non-fatal.
	}

	assignmentIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "planWeekId", Value: 1}, {Key: "sessionDay", Value: 1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}, {Key: "sessionDay", Value: 1}},
			Options: options.Index(),
		},
	}
	if _, err := assignments.Indexes().CreateMany(ctx, assignmentIndexes); err != nil {
		// Non-fatal.
	}
}
