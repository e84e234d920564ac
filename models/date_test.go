package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateOfDropsTimeOfDay(t *testing.T) {
	loc := time.FixedZone("UTC-7", -7*3600)
	d := DateOf(time.Date(2024, time.March, 9, 23, 30, 0, 0, loc))

	assert.Equal(t, "2024-03-09", d.String())
	assert.Equal(t, time.UTC, d.Location())
	assert.Zero(t, d.Hour())
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Date Date `json:"date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-03-09T18:00:00.000Z"}`), &payload))
	assert.Equal(t, NewDate(2024, time.March, 9), payload.Date)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09"}`, string(out))

	require.NoError(t, json.Unmarshal([]byte(`{"date":""}`), &payload))
	assert.True(t, payload.Date.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"date":"09/03/2024"}`), &payload))
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want Date
	}{
		{"time", time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC), NewDate(2024, time.January, 2)},
		{"text", "2024-01-02", NewDate(2024, time.January, 2)},
		{"timestamp text", "2024-01-02 00:00:00+00:00", NewDate(2024, time.January, 2)},
		{"bytes", []byte("2024-01-02"), NewDate(2024, time.January, 2)},
		{"null", nil, Date{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			require.NoError(t, d.Scan(tt.src))
			assert.Equal(t, tt.want, d)
		})
	}

	var d Date
	assert.Error(t, d.Scan(42))
}

func TestDateValue(t *testing.T) {
	v, err := NewDate(2024, time.December, 31).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-12-31", v)
}

func TestTotalsWeightsByServings(t *testing.T) {
	var totals Totals
	totals.Add(FoodEntry{Calories: 100, Fat: 2, Protein: 10, Carbs: 5, Servings: 2})
	totals.Add(FoodEntry{Calories: 50, Fat: 1, Protein: 0, Carbs: 12, Servings: 0.5})

	assert.InDelta(t, 225, totals.Calories, 0.001)
	assert.InDelta(t, 4.5, totals.Fat, 0.001)
	assert.InDelta(t, 20, totals.Protein, 0.001)
	assert.InDelta(t, 16, totals.Carbs, 0.001)
}
