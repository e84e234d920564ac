package dal

import (
	"context"
	"time"

	"calorie-tracker/models"

	"github.com/jmoiron/sqlx"
)

const foodColumns = "id, user_id, name, calories, fat, protein, carbs, meal_type, meal_date, servings, ndbno"

// FoodSQLDAO maps FoodDAO calls one-to-one onto parameterized statements.
// Queries are written with ? placeholders and rebound for the driver.
// Storage errors are returned as the driver reported them.
type FoodSQLDAO struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewFoodSQLDAO(db *sqlx.DB) *FoodSQLDAO {
	return &FoodSQLDAO{db: db, now: time.Now}
}

func (d *FoodSQLDAO) today() models.Date {
	return models.DateOf(d.now())
}

// GetLifetimeFoodEntries returns every entry the user has logged.
func (d *FoodSQLDAO) GetLifetimeFoodEntries(ctx context.Context, userID string) ([]models.FoodEntry, error) {
	foods := []models.FoodEntry{}
	query := d.db.Rebind("SELECT " + foodColumns + " FROM food_entries WHERE user_id = ?")
	if err := d.db.SelectContext(ctx, &foods, query, userID); err != nil {
		return nil, err
	}
	return foods, nil
}

// GetFoodEntriesInRange returns the user's entries dated start through
// finish, both ends included.
func (d *FoodSQLDAO) GetFoodEntriesInRange(ctx context.Context, userID string, start, finish models.Date) ([]models.FoodEntry, error) {
	foods := []models.FoodEntry{}
	query := d.db.Rebind("SELECT " + foodColumns + " FROM food_entries WHERE user_id = ? AND meal_date BETWEEN ? AND ?")
	if err := d.db.SelectContext(ctx, &foods, query, userID, start, finish); err != nil {
		return nil, err
	}
	return foods, nil
}

// AddFoodItem stores the entry under userID, dated today. Any date on the
// incoming entry is ignored.
func (d *FoodSQLDAO) AddFoodItem(ctx context.Context, userID string, entry models.FoodEntry) (models.FoodEntry, error) {
	entry.UserID = userID
	entry.Date = d.today()

	query := d.db.Rebind(`
		INSERT INTO food_entries (user_id, name, calories, fat, protein, carbs, meal_type, meal_date, servings, ndbno)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	err := d.db.GetContext(ctx, &entry.ID, query,
		entry.UserID, entry.Name, entry.Calories, entry.Fat, entry.Protein, entry.Carbs,
		entry.MealType, entry.Date, entry.Servings, entry.NDBNo)
	if err != nil {
		return models.FoodEntry{}, err
	}
	return entry, nil
}

// RemoveFoodItem deletes the entry only if userID owns it.
func (d *FoodSQLDAO) RemoveFoodItem(ctx context.Context, userID string, entryID int64) error {
	query := d.db.Rebind("DELETE FROM food_entries WHERE id = ? AND user_id = ?")
	result, err := d.db.ExecContext(ctx, query, entryID, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddWaterEntry records one 8 oz cup for today and returns the date the
// cup was stored under.
func (d *FoodSQLDAO) AddWaterEntry(ctx context.Context, userID string) (models.Date, error) {
	today := d.today()
	query := d.db.Rebind("INSERT INTO water_entries (user_id, entry_date) VALUES (?, ?)")
	if _, err := d.db.ExecContext(ctx, query, userID, today); err != nil {
		return models.Date{}, err
	}
	return today, nil
}

// RemoveWaterEntry takes back the most recent cup logged on date.
func (d *FoodSQLDAO) RemoveWaterEntry(ctx context.Context, userID string, date models.Date) error {
	query := d.db.Rebind(`
		DELETE FROM water_entries WHERE id = (
			SELECT id FROM water_entries WHERE user_id = ? AND entry_date = ? ORDER BY id DESC LIMIT 1
		)`)
	result, err := d.db.ExecContext(ctx, query, userID, date)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// GetWaterCountByDate returns how many cups the user logged on date.
func (d *FoodSQLDAO) GetWaterCountByDate(ctx context.Context, userID string, date models.Date) (int, error) {
	var count int
	query := d.db.Rebind("SELECT COUNT(*) FROM water_entries WHERE user_id = ? AND entry_date = ?")
	if err := d.db.GetContext(ctx, &count, query, userID, date); err != nil {
		return 0, err
	}
	return count, nil
}

// GetWaterCountsInRange returns one row per day with at least one cup,
// oldest first.
func (d *FoodSQLDAO) GetWaterCountsInRange(ctx context.Context, userID string, start, finish models.Date) ([]models.WaterCount, error) {
	counts := []models.WaterCount{}
	query := d.db.Rebind(`
		SELECT entry_date, COUNT(*) AS cups FROM water_entries
		WHERE user_id = ? AND entry_date BETWEEN ? AND ?
		GROUP BY entry_date
		ORDER BY entry_date`)
	if err := d.db.SelectContext(ctx, &counts, query, userID, start, finish); err != nil {
		return nil, err
	}
	return counts, nil
}

var _ FoodDAO = (*FoodSQLDAO)(nil)
