package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Profile struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	UserID           primitive.ObjectID `bson:"user_id" json:"userId"`
	DisplayName      string             `bson:"display_name" json:"displayName" binding:"max=100"`
	HeightCm         float64            `bson:"height_cm" json:"heightCm" binding:"gte=0"`
	CurrentWeightKg  float64            `bson:"current_weight_kg" json:"currentWeightKg" binding:"gte=0"`
	GoalWeightKg     float64            `bson:"goal_weight_kg" json:"goalWeightKg" binding:"gte=0"`
	ActivityLevel    string             `bson:"activity_level" json:"activityLevel" binding:"omitempty,oneof=sedentary light moderate active very_active"`
	DailyCalorieGoal int                `bson:"daily_calorie_goal" json:"dailyCalorieGoal" binding:"gte=0"`
	DailyWaterGoal   int                `bson:"daily_water_goal" json:"dailyWaterGoal" binding:"gte=0"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updatedAt"`
}
