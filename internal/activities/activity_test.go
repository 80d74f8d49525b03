package activities_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2beens/trainlog/internal/activities"
)

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestActivityType_Sport(t *testing.T) {
	tests := map[activities.ActivityType]activities.ActivityType{
		activities.TypeSwim:        activities.TypeSwim,
		activities.TypeBike:        activities.TypeBike,
		activities.TypeRun:         activities.TypeRun,
		activities.TypeRecovery:    activities.TypeOther,
		activities.TypeStrength:    activities.TypeOther,
		activities.TypeAlternative: activities.TypeOther,
		activities.TypeCompetition: activities.TypeOther,
		activities.TypeOther:       activities.TypeOther,
		"hiking":                   activities.TypeOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, in.Sport(), "type %s", in)
	}
	assert.False(t, activities.ActivityType("hiking").Valid())
	assert.True(t, activities.TypeCompetition.Valid())
}

func TestIntensity_Level(t *testing.T) {
	assert.Equal(t, 1, activities.I1.Level())
	assert.Equal(t, 3, activities.I3.Level())
	assert.Equal(t, 7, activities.I7.Level())
	assert.Equal(t, 0, activities.Intensity("I8").Level())
	assert.Equal(t, 0, activities.Intensity("").Level())
	assert.False(t, activities.Intensity("i1").Valid())
}

func TestActivity_UnmarshalLenientFields(t *testing.T) {
	tests := []struct {
		name         string
		json         string
		wantDistance activities.Distance
		wantRating   activities.Rating
	}{
		{name: "numbers", json: `{"distance": 10.5, "rating": 4}`, wantDistance: 10.5, wantRating: 4},
		{name: "strings", json: `{"distance": "10", "rating": "5"}`, wantDistance: 10, wantRating: 5},
		{name: "string with unit", json: `{"distance": "7.5km"}`, wantDistance: 7.5},
		{name: "non numeric", json: `{"distance": "far", "rating": "great"}`},
		{name: "empty string", json: `{"distance": ""}`},
		{name: "null", json: `{"distance": null, "rating": null}`},
		{name: "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.json
			if raw == "" {
				raw = "{}"
			}
			var a activities.Activity
			require.NoError(t, json.Unmarshal([]byte(raw), &a))
			assert.Equal(t, tt.wantDistance, a.Distance)
			assert.Equal(t, tt.wantRating, a.Rating)
		})
	}
}

func TestActivity_UnmarshalMistypedFields(t *testing.T) {
	var a activities.Activity
	require.NoError(t, json.Unmarshal(
		[]byte(`{"id": 42, "date": true, "type": ["run"], "time": 90, "minutes": "45", "comment": null, "createdAt": "soon"}`),
		&a,
	))
	assert.Equal(t, "42", a.ID)
	assert.Empty(t, a.Date)
	assert.Empty(t, a.Type)
	assert.Equal(t, "90", a.Time)
	assert.Zero(t, a.DurationMinutes())
	assert.Equal(t, 45, a.Minutes)
	assert.Empty(t, a.Comment)
	assert.Zero(t, a.CreatedAt)

	// a non object decodes to an empty activity
	require.NoError(t, json.Unmarshal([]byte(`"text"`), &a))
	assert.Equal(t, activities.Activity{}, a)

	// still a syntax error
	require.Error(t, json.Unmarshal([]byte(`{"id": `), &a))
}

func TestActivity_MarshalDistanceAsNumber(t *testing.T) {
	a := activities.Activity{ID: "1", Distance: 10, Rating: 3}
	b, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"distance":10`)
	assert.Contains(t, string(b), `"rating":3`)
}

func TestActivity_Validate(t *testing.T) {
	valid := activities.Activity{
		Date:      "2024-03-05",
		Type:      activities.TypeRun,
		Intensity: activities.I3,
		Time:      "1:05",
		Distance:  10,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		modify func(a *activities.Activity)
	}{
		{"bad date", func(a *activities.Activity) { a.Date = "05.03.2024" }},
		{"missing date", func(a *activities.Activity) { a.Date = "" }},
		{"bad type", func(a *activities.Activity) { a.Type = "hiking" }},
		{"bad intensity", func(a *activities.Activity) { a.Intensity = "I9" }},
		{"bad time", func(a *activities.Activity) { a.Time = "1h30" }},
		{"too long hours", func(a *activities.Activity) { a.Time = "100:00" }},
		{"single digit minutes", func(a *activities.Activity) { a.Time = "1:5" }},
		{"negative distance", func(a *activities.Activity) { a.Distance = -1 }},
		{"bad feeling", func(a *activities.Activity) { a.Feeling = "great" }},
		{"rating too high", func(a *activities.Activity) { a.Rating = 6 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.modify(&a)
			err := a.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, activities.ErrInvalidActivity))
		})
	}
}

func TestActivity_ApplyDefaults(t *testing.T) {
	a := activities.Activity{}
	a.ApplyDefaults()
	assert.Equal(t, activities.FeelingAverage, a.Feeling)
	assert.Equal(t, activities.Rating(3), a.Rating)

	b := activities.Activity{Feeling: activities.FeelingBad, Rating: 1}
	b.ApplyDefaults()
	assert.Equal(t, activities.FeelingBad, b.Feeling)
	assert.Equal(t, activities.Rating(1), b.Rating)
}

func TestNewID(t *testing.T) {
	now := time.UnixMilli(1712900000123)
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := activities.NewID(now)
		assert.True(t, strings.HasPrefix(id, "1712900000123"))
		assert.Len(t, id, len("1712900000123")+9)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
