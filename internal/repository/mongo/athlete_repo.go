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

const athleteProfileCollectionName = "athlete_profiles"

// mongoAthleteProfileRepository implements repository.AthleteProfileRepository using MongoDB.
type mongoAthleteProfileRepository struct {
	collection *mongo.Collection
}

// NewMongoAthleteProfileRepository creates a new instance of mongoAthleteProfileRepository.
func NewMongoAthleteProfileRepository(db *mongo.Database) repository.AthleteProfileRepository {
	return &mongoAthleteProfileRepository{
		collection: db.Collection(athleteProfileCollectionName),
	}
}

// GetByAthleteID retrieves the profile for an athlete.
func (r *mongoAthleteProfileRepository) GetByAthleteID(ctx context.Context, athleteID primitive.ObjectID) (*domain.AthleteProfile, error) {
	var profile domain.AthleteProfile
	filter := bson.M{"athleteId": athleteID}

	err := r.collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the athlete's profile, keyed by athlete ID.
func (r *mongoAthleteProfileRepository) Upsert(ctx context.Context, profile *domain.AthleteProfile) error {
	if profile.AthleteID == primitive.NilObjectID {
		return errors.New("athlete ID is required")
	}

	profile.UpdatedAt = time.Now().UTC()
	filter := bson.M{"athleteId": profile.AthleteID}
	update := bson.M{
		"$set": bson.M{
			"maxHr":                 profile.MaxHR,
			"restingHr":             profile.RestingHR,
			"thresholdPaceSecPerKm": profile.ThresholdPaceSecPerKm,
			"easyPaceSecPerKm":      profile.EasyPaceSecPerKm,
			"vdot":                  profile.VDOT,
			"updatedAt":             profile.UpdatedAt,
		},
		"$setOnInsert": bson.M{"athleteId": profile.AthleteID},
	}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// EnsureAthleteProfileIndexes creates necessary indexes for the
// athlete_profiles collection. Call this once during application startup.
func EnsureAthleteProfileIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "athleteId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// Non-fatal.
	}
}
