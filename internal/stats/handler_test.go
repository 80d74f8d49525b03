package stats_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

func newStatsRouter(t *testing.T) (*mux.Router, *MockrecordSource) {
	t.Helper()
	ctrl := gomock.NewController(t)
	source := NewMockrecordSource(ctrl)
	handler := stats.NewHandler(stats.NewAnalyzerWithClock(source, fixedClock(day("2024-04-12"))))
	r := mux.NewRouter()
	handler.SetupRoutes(r)
	return r, source
}

func TestHandler_HandleWeekly(t *testing.T) {
	tests := []struct {
		query     string
		wantWeeks int
	}{
		{query: "", wantWeeks: stats.DefaultWeeks},
		{query: "?weeks=0", wantWeeks: stats.DefaultWeeks},
		{query: "?weeks=8", wantWeeks: 8},
		{query: "?weeks=500", wantWeeks: stats.MaxWeeks},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r, source := newStatsRouter(t)
			source.EXPECT().GetAll(gomock.Any()).Return([]activities.Activity{
				record("2024-04-12", activities.TypeRun, activities.I3, "1:00", 10),
			}, nil)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/weekly"+tt.query, nil))
			require.Equal(t, http.StatusOK, rr.Code)

			var weeks []stats.WeekBucket
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &weeks))
			require.Len(t, weeks, tt.wantWeeks)
			assert.Equal(t, "2024-15", weeks[0].Key)
			assert.Equal(t, 6.0, weeks[0].ByType.Run.AvgPace)
		})
	}
}

func TestHandler_HandleWeekly_BadParam(t *testing.T) {
	r, _ := newStatsRouter(t)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/weekly?weeks=many", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_HandleSummary(t *testing.T) {
	r, source := newStatsRouter(t)
	source.EXPECT().GetAll(gomock.Any()).Return([]activities.Activity{
		record("2024-04-12", activities.TypeRun, activities.I3, "1:00", 10),
	}, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/summary", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	for _, field := range []string{
		"totalMinutes", "totalTime", "totalSessions", "activeSessions", "recoverySessions",
		"sickDays", "alternativeMinutes", "alternativeTime", "competitionDistance", "byIntensity",
		"specificMinutes", "generalMinutes", "specificPercent", "generalPercent",
	} {
		assert.Contains(t, body, field)
	}
	assert.Equal(t, 100.0, body["specificPercent"])
	assert.Equal(t, "1:00", body["totalTime"])
}

func TestHandler_HandleChart(t *testing.T) {
	r, source := newStatsRouter(t)
	source.EXPECT().GetAll(gomock.Any()).Return(nil, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/stats/chart", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var chart stats.ChartSeries
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &chart))
	assert.Len(t, chart.Labels, 7)
	assert.Equal(t, "Apr 7", chart.Labels[0])
}

func TestHandler_SourceError(t *testing.T) {
	for _, path := range []string{"/stats/weekly", "/stats/summary", "/stats/chart"} {
		r, source := newStatsRouter(t)
		source.EXPECT().GetAll(gomock.Any()).Return(nil, errors.New("store down"))

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusInternalServerError, rr.Code, path)
	}
}
