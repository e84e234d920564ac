package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"calorie-tracker/dal/daltest"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type trackingFixture struct {
	router   *gin.Engine
	food     *daltest.FoodDAO
	users    *daltest.UserDAO
	profiles *daltest.ProfileDAO
	userID   string
	today    models.Date
}

func newTrackingFixture(t *testing.T) *trackingFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &trackingFixture{
		food:     daltest.NewFoodDAO(),
		users:    daltest.NewUserDAO(),
		profiles: daltest.NewProfileDAO(),
		today:    models.NewDate(2024, time.July, 20),
	}
	user, err := f.users.Create(context.Background(), models.User{Email: "t@example.com"})
	require.NoError(t, err)
	f.userID = user.ID.Hex()
	f.setDay(f.today)

	controller := NewTrackingController(f.users, f.profiles, f.food)
	controller.now = func() time.Time { return f.today.Add(9 * time.Hour) }

	f.router = gin.New()
	api := f.router.Group("/api", func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("user_id", id)
		}
		c.Next()
	})
	controller.Register(api)
	return f
}

// setDay moves the storage clock, standing in for entries logged on other days.
func (f *trackingFixture) setDay(day models.Date) {
	f.food.Now = func() time.Time { return day.Add(12 * time.Hour) }
}

func (f *trackingFixture) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	return f.doAs(f.userID, method, path, body)
}

func (f *trackingFixture) doAs(userID, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

var apple = gin.H{
	"name":     "Apple",
	"calories": 95,
	"fat":      0.3,
	"protein":  0.5,
	"carbs":    25,
	"mealType": "snack",
	"ndbno":    9003,
	"date":     "2001-01-01",
}

func TestAddAndListFood(t *testing.T) {
	f := newTrackingFixture(t)

	w := f.do(http.MethodPost, "/api/tracking/food", apple)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.FoodEntry
	decode(t, w, &created)
	assert.NotZero(t, created.ID)
	assert.Equal(t, f.userID, created.UserID)
	assert.Equal(t, f.today, created.Date)
	assert.Equal(t, 1.0, created.Servings)

	w = f.do(http.MethodGet, "/api/tracking/food", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.FoodEntry
	decode(t, w, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
}

func TestAddFoodValidation(t *testing.T) {
	f := newTrackingFixture(t)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing name", gin.H{"calories": 10, "mealType": "lunch"}},
		{"unknown meal", gin.H{"name": "Soup", "mealType": "brunch"}},
		{"negative calories", gin.H{"name": "Soup", "mealType": "lunch", "calories": -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(http.MethodPost, "/api/tracking/food", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListFoodRange(t *testing.T) {
	f := newTrackingFixture(t)
	for _, day := range []int{10, 12, 14} {
		f.setDay(models.NewDate(2024, time.July, day))
		require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/tracking/food", apple).Code)
	}

	w := f.do(http.MethodGet, "/api/tracking/food?start=2024-07-12&finish=2024-07-14", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.FoodEntry
	decode(t, w, &entries)
	assert.Len(t, entries, 2)

	for _, query := range []string{
		"?start=2024-07-12",
		"?start=07/12/2024&finish=2024-07-14",
		"?start=2024-07-14&finish=2024-07-12",
		"?start=2020-01-01&finish=2024-07-12",
	} {
		assert.Equal(t, http.StatusBadRequest, f.do(http.MethodGet, "/api/tracking/food"+query, nil).Code, query)
	}
}

func TestRemoveFood(t *testing.T) {
	f := newTrackingFixture(t)
	var created models.FoodEntry
	decode(t, f.do(http.MethodPost, "/api/tracking/food", apple), &created)
	path := "/api/tracking/food/" + strconv.FormatInt(created.ID, 10)

	intruder, err := f.users.Create(context.Background(), models.User{Email: "x@example.com"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, f.doAs(intruder.ID.Hex(), http.MethodDelete, path, nil).Code)

	assert.Equal(t, http.StatusOK, f.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, path, nil).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(http.MethodDelete, "/api/tracking/food/abc", nil).Code)
}

func TestWater(t *testing.T) {
	f := newTrackingFixture(t)

	var resp waterCountResponse
	for i := 1; i <= 3; i++ {
		w := f.do(http.MethodPost, "/api/tracking/water", nil)
		require.Equal(t, http.StatusCreated, w.Code)
		decode(t, w, &resp)
		assert.Equal(t, i, resp.Count)
	}

	w := f.do(http.MethodGet, "/api/tracking/water?date=2024-07-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 3, resp.Count)
	assert.Equal(t, f.today, resp.Date)

	w = f.do(http.MethodDelete, "/api/tracking/water", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.Equal(t, 2, resp.Count)

	w = f.do(http.MethodGet, "/api/tracking/water?date=2024-07-19", nil)
	decode(t, w, &resp)
	assert.Zero(t, resp.Count)
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodDelete, "/api/tracking/water?date=2024-07-19", nil).Code)

	w = f.do(http.MethodGet, "/api/tracking/water/range?start=2024-07-14&finish=2024-07-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var counts []models.WaterCount
	decode(t, w, &counts)
	assert.Equal(t, []models.WaterCount{{Date: f.today, Count: 2}}, counts)
}

func TestAddWaterCountsTheStoredDay(t *testing.T) {
	f := newTrackingFixture(t)
	// The request starts just before midnight and the row lands just after.
	tomorrow := f.today.AddDays(1)
	f.setDay(tomorrow)

	w := f.do(http.MethodPost, "/api/tracking/water", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var resp waterCountResponse
	decode(t, w, &resp)
	assert.Equal(t, tomorrow, resp.Date)
	assert.Equal(t, 1, resp.Count)
}

func TestSummary(t *testing.T) {
	f := newTrackingFixture(t)
	meal := gin.H{"name": "Rice", "calories": 200, "fat": 0.5, "protein": 4, "carbs": 45, "mealType": "dinner", "servings": 1.5}
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/tracking/food", meal).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/tracking/food", apple).Code)
	require.Equal(t, http.StatusCreated, f.do(http.MethodPost, "/api/tracking/water", nil).Code)

	var summary dailySummary
	w := f.do(http.MethodGet, "/api/tracking/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &summary)
	assert.Equal(t, f.today, summary.Date)
	assert.InDelta(t, 395, summary.Totals.Calories, 0.001)
	assert.InDelta(t, 1.05, summary.Totals.Fat, 0.001)
	assert.Equal(t, 1, summary.Water)
	assert.Len(t, summary.Entries, 2)
	assert.Nil(t, summary.Goals)

	_, err := f.profiles.SaveProfile(context.Background(), f.userID, models.Profile{DailyCalorieGoal: 2000, DailyWaterGoal: 8})
	require.NoError(t, err)
	w = f.do(http.MethodGet, "/api/tracking/summary?date=2024-07-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary = dailySummary{}
	decode(t, w, &summary)
	require.NotNil(t, summary.Goals)
	assert.Equal(t, 8, summary.Goals.Water)
	assert.InDelta(t, 1605, summary.Goals.RemainingCalories, 0.001)

	f.profiles.Err = errors.New("mongo down")
	w = f.do(http.MethodGet, "/api/tracking/summary", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStorageFailureIs500(t *testing.T) {
	f := newTrackingFixture(t)
	f.food.Err = errors.New("database is locked")

	for _, req := range []struct{ method, path string }{
		{http.MethodGet, "/api/tracking/food"},
		{http.MethodPost, "/api/tracking/water"},
		{http.MethodGet, "/api/tracking/water"},
		{http.MethodDelete, "/api/tracking/food/1"},
	} {
		w := f.do(req.method, req.path, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, req.path)
		assert.NotContains(t, w.Body.String(), "database is locked")
	}
}

func TestTrackingRequiresAccount(t *testing.T) {
	f := newTrackingFixture(t)

	assert.Equal(t, http.StatusUnauthorized, f.doAs("", http.MethodGet, "/api/tracking/food", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, f.doAs("65f0c0ffee0000000000dead", http.MethodGet, "/api/tracking/food", nil).Code)

	f.users.Err = errors.New("mongo down")
	assert.Equal(t, http.StatusInternalServerError, f.do(http.MethodGet, "/api/tracking/food", nil).Code)
}
