package dal

import (
	"context"
	"errors"
	"time"

	"calorie-tracker/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProfileMongoDAO keeps one profile document per user, keyed by user_id.
type ProfileMongoDAO struct {
	profiles *mongo.Collection
}

func NewProfileMongoDAO(db *mongo.Database) *ProfileMongoDAO {
	return &ProfileMongoDAO{profiles: db.Collection("profiles")}
}

func (d *ProfileMongoDAO) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.Profile{}, ErrNotFound
	}

	var profile models.Profile
	err = d.profiles.FindOne(ctx, bson.M{"user_id": id}).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Profile{}, ErrNotFound
	}
	if err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

func (d *ProfileMongoDAO) SaveProfile(ctx context.Context, userID string, profile models.Profile) (models.Profile, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.Profile{}, err
	}
	profile.ID = primitive.NilObjectID
	profile.UserID = id
	profile.UpdatedAt = time.Now().UTC()

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var saved models.Profile
	err = d.profiles.FindOneAndUpdate(ctx, bson.M{"user_id": id}, bson.M{"$set": profile}, opts).Decode(&saved)
	if err != nil {
		return models.Profile{}, err
	}
	return saved, nil
}

var _ ProfileDAO = (*ProfileMongoDAO)(nil)
