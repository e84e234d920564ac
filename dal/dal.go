// Package dal holds the data-access objects behind the tracking API: food
// and water entries in SQL, accounts and profiles in Mongo.
package dal

import (
	"context"
	"errors"

	"calorie-tracker/models"
)

// ErrNotFound is returned when a lookup or an owner-scoped delete matches
// nothing.
var ErrNotFound = errors.New("not found")

type FoodDAO interface {
	GetLifetimeFoodEntries(ctx context.Context, userID string) ([]models.FoodEntry, error)
	GetFoodEntriesInRange(ctx context.Context, userID string, start, finish models.Date) ([]models.FoodEntry, error)
	AddFoodItem(ctx context.Context, userID string, entry models.FoodEntry) (models.FoodEntry, error)
	RemoveFoodItem(ctx context.Context, userID string, entryID int64) error
	AddWaterEntry(ctx context.Context, userID string) (models.Date, error)
	RemoveWaterEntry(ctx context.Context, userID string, date models.Date) error
	GetWaterCountByDate(ctx context.Context, userID string, date models.Date) (int, error)
	GetWaterCountsInRange(ctx context.Context, userID string, start, finish models.Date) ([]models.WaterCount, error)
}

type UserDAO interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, userID string) (models.User, error)
	Create(ctx context.Context, user models.User) (models.User, error)
	CreateSession(ctx context.Context, session models.Session) error
}

type ProfileDAO interface {
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	SaveProfile(ctx context.Context, userID string, profile models.Profile) (models.Profile, error)
}
