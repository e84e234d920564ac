package router

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"calorie-tracker/auth"
	"calorie-tracker/config"
	"calorie-tracker/dal/daltest"
	"calorie-tracker/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, probes map[string]Probe) (*gin.Engine, *daltest.UserDAO) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.JwtSecret = []byte("router-test")

	log := logrus.New()
	log.Out = io.Discard

	users := daltest.NewUserDAO()
	r := Router(Dependencies{
		Config:   &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"http://localhost:5174"}}},
		Log:      log,
		Users:    users,
		Profiles: daltest.NewProfileDAO(),
		Food:     daltest.NewFoodDAO(),
		Probes:   probes,
	})
	return r, users
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTrackingFlowThroughRouter(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/register",
		strings.NewReader(`{"email":"flow@example.com","password":"long enough"}`)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var reg struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))

	authed := func(method, target, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+reg.Token)
		req.Header.Set("Content-Type", "application/json")
		return serve(r, req)
	}

	w = authed(http.MethodPost, "/api/tracking/food", `{"name":"Egg","calories":78,"protein":6,"fat":5,"carbs":0.6,"mealType":"breakfast","servings":2}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = authed(http.MethodGet, "/api/tracking/food", "")
	require.Equal(t, http.StatusOK, w.Code)
	var entries []models.FoodEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "Egg", entries[0].Name)

	w = authed(http.MethodPost, "/api/tracking/water", "")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAPIRequiresToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, target := range []string{"/api/tracking/food", "/api/tracking/water", "/api/profile"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, target)
	}
}

func TestProbes(t *testing.T) {
	r, _ := newTestRouter(t, map[string]Probe{
		"sql":   func(context.Context) error { return nil },
		"mongo": func(context.Context) error { return errors.New("server selection timeout") },
	})

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/read-probe", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/check-live", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp liveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "ok", resp.Checks["sql"])
	assert.Equal(t, "server selection timeout", resp.Checks["mongo"])
}

func TestMetricsAndShell(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "calorie_tracker_http")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/diary", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `id="app"`)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/tracking/food", nil)
	req.Header.Set("Origin", "http://localhost:5174")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:5174", w.Header().Get("Access-Control-Allow-Origin"))
}
