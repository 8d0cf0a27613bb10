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

const templateCollectionName = "session_templates"

// mongoTemplateRepository implements repository.TemplateRepository using MongoDB.
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

// NewMongoTemplateRepository creates a new instance of mongoTemplateRepository.
func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// Create inserts a new session template.
func (r *mongoTemplateRepository) Create(ctx context.Context, template *domain.SessionTemplate) (primitive.ObjectID, error) {
	if template.Name == "" || template.CoachID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template name and coach ID are required")
	}
	if template.Status == "" {
		template.Status = domain.TemplateStatusActive
	}

	template.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("template with this name already exists")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a template by its MongoDB ObjectID.
func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.SessionTemplate, error) {
	var template domain.SessionTemplate
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&template)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// GetByCoachID retrieves all templates owned by a coach, regardless of status.
func (r *mongoTemplateRepository) GetByCoachID(ctx context.Context, coachID primitive.ObjectID) ([]domain.SessionTemplate, error) {
	var templates []domain.SessionTemplate
	filter := bson.M{"coachId": coachID}
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if templates == nil {
		templates = []domain.SessionTemplate{}
	}
	return templates, nil
}

// ListCanonical retrieves every canonical-status template, ordered by duration
// ascending then _id ascending. Template selection breaks score ties on
// catalog position, so the sort must stay deterministic.
func (r *mongoTemplateRepository) ListCanonical(ctx context.Context) ([]domain.SessionTemplate, error) {
	var templates []domain.SessionTemplate
	filter := bson.M{"status": domain.TemplateStatusCanonical}
	findOptions := options.Find().SetSort(bson.D{
		{Key: "durationMin", Value: 1},
		{Key: "_id", Value: 1},
	})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	if templates == nil {
		templates = []domain.SessionTemplate{}
	}
	return templates, nil
}

// Update replaces the mutable fields of a template owned by the given coach.
func (r *mongoTemplateRepository) Update(ctx context.Context, template *domain.SessionTemplate) error {
	if template.ID == primitive.NilObjectID || template.CoachID == primitive.NilObjectID {
		return errors.New("template ID and coach ID are required for update")
	}

	filter := bson.M{"_id": template.ID, "coachId": template.CoachID}
	update := bson.M{
		"$set": bson.M{
			"name":         template.Name,
			"category":     template.Category,
			"intent":       template.Intent,
			"energySystem": template.EnergySystem,
			"tier":         template.Tier,
			"isTreadmill":  template.IsTreadmill,
			"durationMin":  template.DurationMin,
			"structure":    template.Structure,
			"updatedAt":    time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetStatus moves a template through its lifecycle (active, canonical,
// duplicate, deprecated). When marking a duplicate, duplicateOf records the
// canonical template it shadows.
func (r *mongoTemplateRepository) SetStatus(ctx context.Context, id, coachID primitive.ObjectID, status domain.TemplateStatus, duplicateOf *primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if status == domain.TemplateStatusDuplicate && duplicateOf != nil {
		set["duplicateOfTemplateId"] = *duplicateOf
	} else {
		update["$unset"] = bson.M{"duplicateOfTemplateId": ""}
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a template owned by the given coach.
func (r *mongoTemplateRepository) Delete(ctx context.Context, id primitive.ObjectID, coachID primitive.ObjectID) error {
	filter := bson.M{"_id": id, "coachId": coachID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureTemplateIndexes creates necessary indexes for the session_templates
// collection. Call this once during application startup.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "coachId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "durationMin", Value: 1}},
			Options: options.Index(),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal; the canonical listing just loses its covering index.
	}
}
