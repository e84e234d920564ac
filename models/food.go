package models

// FoodEntry is one logged food item. Nutrient values are per serving.
type FoodEntry struct {
	ID       int64   `db:"id" json:"id"`
	UserID   string  `db:"user_id" json:"userId"`
	Name     string  `db:"name" json:"name" binding:"required,max=200"`
	Calories float64 `db:"calories" json:"calories" binding:"gte=0"`
	Fat      float64 `db:"fat" json:"fat" binding:"gte=0"`
	Protein  float64 `db:"protein" json:"protein" binding:"gte=0"`
	Carbs    float64 `db:"carbs" json:"carbs" binding:"gte=0"`
	MealType string  `db:"meal_type" json:"mealType" binding:"required,oneof=breakfast lunch dinner snack"`
	Servings float64 `db:"servings" json:"servings" binding:"gte=0"`
	Date     Date    `db:"meal_date" json:"date"`
	NDBNo    int64   `db:"ndbno" json:"ndbno" binding:"gte=0"`
}

// Totals holds nutrient sums weighted by servings.
type Totals struct {
	Calories float64 `json:"calories"`
	Fat      float64 `json:"fat"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
}

func (t *Totals) Add(e FoodEntry) {
	t.Calories += e.Calories * e.Servings
	t.Fat += e.Fat * e.Servings
	t.Protein += e.Protein * e.Servings
	t.Carbs += e.Carbs * e.Servings
}
