package dal

import (
	"context"
	"errors"

	"calorie-tracker/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserMongoDAO struct {
	users    *mongo.Collection
	sessions *mongo.Collection
}

func NewUserMongoDAO(db *mongo.Database) *UserMongoDAO {
	return &UserMongoDAO{
		users:    db.Collection("users"),
		sessions: db.Collection("sessions"),
	}
}

func (d *UserMongoDAO) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return d.findOne(ctx, bson.M{"email": email})
}

func (d *UserMongoDAO) FindByID(ctx context.Context, userID string) (models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return models.User{}, ErrNotFound
	}
	return d.findOne(ctx, bson.M{"_id": id})
}

func (d *UserMongoDAO) findOne(ctx context.Context, filter bson.M) (models.User, error) {
	var user models.User
	err := d.users.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, ErrNotFound
	}
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (d *UserMongoDAO) Create(ctx context.Context, user models.User) (models.User, error) {
	result, err := d.users.InsertOne(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	user.ID = result.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (d *UserMongoDAO) CreateSession(ctx context.Context, session models.Session) error {
	_, err := d.sessions.InsertOne(ctx, session)
	return err
}

var _ UserDAO = (*UserMongoDAO)(nil)
