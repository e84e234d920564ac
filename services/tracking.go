package services

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"calorie-tracker/dal"
	"calorie-tracker/logger"
	"calorie-tracker/metrics"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
)

// maxRangeDays bounds range queries so one request cannot scan a user's
// whole history by accident.
const maxRangeDays = 366

// TrackingController serves /api/tracking. Every route runs for the user
// the auth middleware put on the context.
type TrackingController struct {
	users    dal.UserDAO
	profiles dal.ProfileDAO
	food     dal.FoodDAO
	now      func() time.Time
}

func NewTrackingController(users dal.UserDAO, profiles dal.ProfileDAO, food dal.FoodDAO) *TrackingController {
	return &TrackingController{users: users, profiles: profiles, food: food, now: time.Now}
}

func (t *TrackingController) Register(rg *gin.RouterGroup) {
	g := rg.Group("/tracking", t.requireAccount)
	g.GET("/food", t.ListFood)
	g.POST("/food", t.AddFood)
	g.DELETE("/food/:id", t.RemoveFood)
	g.GET("/water", t.WaterCount)
	g.POST("/water", t.AddWater)
	g.DELETE("/water", t.RemoveWater)
	g.GET("/water/range", t.WaterRange)
	g.GET("/summary", t.Summary)
}

// requireAccount turns away tokens whose account no longer exists.
func (t *TrackingController) requireAccount(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	_, err := t.users.FindByID(c.Request.Context(), userID)
	if errors.Is(err, dal.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unknown account"})
		return
	}
	if err != nil {
		logger.For(c).WithError(err).WithField("user_id", userID).Error("account lookup failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}
	c.Next()
}

func (t *TrackingController) today() models.Date {
	return models.DateOf(t.now())
}

// ListFood returns the lifetime log, or the inclusive start..finish range
// when both query parameters are present.
func (t *TrackingController) ListFood(c *gin.Context) {
	userID := c.GetString("user_id")
	start, finish := c.Query("start"), c.Query("finish")

	var (
		entries []models.FoodEntry
		err     error
	)
	if start == "" && finish == "" {
		entries, err = t.food.GetLifetimeFoodEntries(c.Request.Context(), userID)
	} else {
		from, to, ok := parseRange(c, start, finish)
		if !ok {
			return
		}
		entries, err = t.food.GetFoodEntriesInRange(c.Request.Context(), userID, from, to)
	}
	if err != nil {
		storageError(c, err, "fetch food entries")
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (t *TrackingController) AddFood(c *gin.Context) {
	userID := c.GetString("user_id")
	var entry models.FoodEntry
	if err := c.ShouldBindJSON(&entry); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}
	if entry.Servings == 0 {
		entry.Servings = 1
	}

	stored, err := t.food.AddFoodItem(c.Request.Context(), userID, entry)
	if err != nil {
		storageError(c, err, "add food entry")
		return
	}
	metrics.RecordTracking(metrics.FoodAdded)
	c.JSON(http.StatusCreated, stored)
}

func (t *TrackingController) RemoveFood(c *gin.Context) {
	userID := c.GetString("user_id")
	entryID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || entryID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid entry ID"})
		return
	}

	err = t.food.RemoveFoodItem(c.Request.Context(), userID, entryID)
	if errors.Is(err, dal.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found or not owned by user"})
		return
	}
	if err != nil {
		storageError(c, err, "delete food entry")
		return
	}
	metrics.RecordTracking(metrics.FoodRemoved)
	c.JSON(http.StatusOK, gin.H{"message": "Food entry deleted"})
}

type waterCountResponse struct {
	Date  models.Date `json:"date"`
	Count int         `json:"count"`
}

func (t *TrackingController) WaterCount(c *gin.Context) {
	date, ok := t.dateParam(c)
	if !ok {
		return
	}
	t.respondWaterCount(c, http.StatusOK, date)
}

func (t *TrackingController) AddWater(c *gin.Context) {
	stored, err := t.food.AddWaterEntry(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		storageError(c, err, "add water entry")
		return
	}
	metrics.RecordTracking(metrics.WaterAdded)
	t.respondWaterCount(c, http.StatusCreated, stored)
}

func (t *TrackingController) RemoveWater(c *gin.Context) {
	date, ok := t.dateParam(c)
	if !ok {
		return
	}
	err := t.food.RemoveWaterEntry(c.Request.Context(), c.GetString("user_id"), date)
	if errors.Is(err, dal.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "No water logged for " + date.String()})
		return
	}
	if err != nil {
		storageError(c, err, "delete water entry")
		return
	}
	metrics.RecordTracking(metrics.WaterRemoved)
	t.respondWaterCount(c, http.StatusOK, date)
}

func (t *TrackingController) respondWaterCount(c *gin.Context, status int, date models.Date) {
	count, err := t.food.GetWaterCountByDate(c.Request.Context(), c.GetString("user_id"), date)
	if err != nil {
		storageError(c, err, "count water entries")
		return
	}
	c.JSON(status, waterCountResponse{Date: date, Count: count})
}

func (t *TrackingController) WaterRange(c *gin.Context) {
	from, to, ok := parseRange(c, c.Query("start"), c.Query("finish"))
	if !ok {
		return
	}
	counts, err := t.food.GetWaterCountsInRange(c.Request.Context(), c.GetString("user_id"), from, to)
	if err != nil {
		storageError(c, err, "count water entries")
		return
	}
	c.JSON(http.StatusOK, counts)
}

type goals struct {
	Calories          int     `json:"calories"`
	Water             int     `json:"water"`
	RemainingCalories float64 `json:"remainingCalories"`
}

type dailySummary struct {
	Date    models.Date        `json:"date"`
	Totals  models.Totals      `json:"totals"`
	Water   int                `json:"water"`
	Entries []models.FoodEntry `json:"entries"`
	Goals   *goals             `json:"goals,omitempty"`
}

// Summary totals one day's food (weighted by servings) and water, and
// compares them against the profile's goals when a profile exists.
func (t *TrackingController) Summary(c *gin.Context) {
	ctx := c.Request.Context()
	userID := c.GetString("user_id")
	date, ok := t.dateParam(c)
	if !ok {
		return
	}

	entries, err := t.food.GetFoodEntriesInRange(ctx, userID, date, date)
	if err != nil {
		storageError(c, err, "fetch food entries")
		return
	}
	water, err := t.food.GetWaterCountByDate(ctx, userID, date)
	if err != nil {
		storageError(c, err, "count water entries")
		return
	}

	summary := dailySummary{Date: date, Water: water, Entries: entries}
	for _, e := range entries {
		summary.Totals.Add(e)
	}
	summary.Totals = roundTotals(summary.Totals)

	profile, err := t.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		summary.Goals = &goals{
			Calories:          profile.DailyCalorieGoal,
			Water:             profile.DailyWaterGoal,
			RemainingCalories: round2(float64(profile.DailyCalorieGoal) - summary.Totals.Calories),
		}
	case !errors.Is(err, dal.ErrNotFound):
		logger.For(c).WithError(err).WithField("user_id", userID).Warn("profile lookup failed, summary without goals")
	}
	c.JSON(http.StatusOK, summary)
}

// dateParam reads ?date=, defaulting to today.
func (t *TrackingController) dateParam(c *gin.Context) (models.Date, bool) {
	raw := c.Query("date")
	if raw == "" {
		return t.today(), true
	}
	date, err := models.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Date{}, false
	}
	return date, true
}

func parseRange(c *gin.Context, start, finish string) (models.Date, models.Date, bool) {
	if start == "" || finish == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both start and finish are required"})
		return models.Date{}, models.Date{}, false
	}
	from, err := models.ParseDate(start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Date{}, models.Date{}, false
	}
	to, err := models.ParseDate(finish)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Date{}, models.Date{}, false
	}
	if to.Before(from.Time) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "finish must not be before start"})
		return models.Date{}, models.Date{}, false
	}
	if to.Sub(from.Time) > maxRangeDays*24*time.Hour {
		c.JSON(http.StatusBadRequest, gin.H{"error": "range is limited to one year"})
		return models.Date{}, models.Date{}, false
	}
	return from, to, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func roundTotals(t models.Totals) models.Totals {
	return models.Totals{
		Calories: round2(t.Calories),
		Fat:      round2(t.Fat),
		Protein:  round2(t.Protein),
		Carbs:    round2(t.Carbs),
	}
}
