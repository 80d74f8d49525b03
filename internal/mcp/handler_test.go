package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

// mockContextService implements contextService for tests.
type mockContextService struct {
	weeks       []stats.WeekBucket
	weeksErr    error
	gotWeeks    int
	summary     *stats.Summary
	summaryErr  error
	list        []activities.Activity
	listErr     error
	gotFilter   ActivitiesFilter
	chart       *stats.ChartSeries
	chartErr    error
	gotIncluded bool
}

func (m *mockContextService) WeeklyStats(_ context.Context, weeks int, includeActivities bool) ([]stats.WeekBucket, error) {
	m.gotWeeks = weeks
	m.gotIncluded = includeActivities
	return m.weeks, m.weeksErr
}

func (m *mockContextService) TrainingSummary(context.Context) (*stats.Summary, error) {
	return m.summary, m.summaryErr
}

func (m *mockContextService) ListActivities(_ context.Context, filter ActivitiesFilter) ([]activities.Activity, error) {
	m.gotFilter = filter
	return m.list, m.listErr
}

func (m *mockContextService) WeekChart(context.Context) (*stats.ChartSeries, error) {
	return m.chart, m.chartErr
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected 1 content, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestHandler_GetWeeklyStatsTool(t *testing.T) {
	t.Run("returns_weeks", func(t *testing.T) {
		svc := &mockContextService{weeks: []stats.WeekBucket{{Key: "2024-15", Label: "Week 15", Year: 2024, Week: 15}}}
		fn := NewHandler(svc).GetWeeklyStatsTool()

		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, WeeklyStatsInput{Weeks: 6, IncludeActivities: true})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.IsError {
			t.Fatalf("unexpected IsError: %s", resultText(t, res))
		}
		if svc.gotWeeks != 6 || !svc.gotIncluded {
			t.Fatalf("service called with weeks=%d include=%t", svc.gotWeeks, svc.gotIncluded)
		}

		var got []stats.WeekBucket
		if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
			t.Fatalf("result is not json: %v", err)
		}
		if len(got) != 1 || got[0].Key != "2024-15" {
			t.Fatalf("got %+v", got)
		}
	})

	t.Run("returns_error_when_service_fails", func(t *testing.T) {
		fn := NewHandler(&mockContextService{weeksErr: errors.New("store down")}).GetWeeklyStatsTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, WeeklyStatsInput{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
		if text := resultText(t, res); text != "Error fetching weekly stats: store down" {
			t.Fatalf("content text = %q", text)
		}
	})
}

func TestHandler_GetTrainingSummaryTool(t *testing.T) {
	svc := &mockContextService{summary: &stats.Summary{TotalMinutes: 60, TotalTime: "1:00", SpecificPercent: 100}}
	fn := NewHandler(svc).GetTrainingSummaryTool()

	res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not json: %v", err)
	}
	if got["totalTime"] != "1:00" || got["specificPercent"] != 100.0 {
		t.Fatalf("got %+v", got)
	}

	svc.summaryErr = errors.New("corrupted")
	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	if !res.IsError {
		t.Fatalf("expected IsError")
	}
}

func TestHandler_GetActivitiesTool(t *testing.T) {
	t.Run("invalid_from_date", func(t *testing.T) {
		fn := NewHandler(&mockContextService{}).GetActivitiesTool()
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, ActivitiesInput{FromDate: "12/04/2024"})
		if !res.IsError || resultText(t, res) != "Invalid from_date: use YYYY-MM-DD" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("invalid_to_date", func(t *testing.T) {
		fn := NewHandler(&mockContextService{}).GetActivitiesTool()
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, ActivitiesInput{ToDate: "tomorrow"})
		if !res.IsError || resultText(t, res) != "Invalid to_date: use YYYY-MM-DD" {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("invalid_type", func(t *testing.T) {
		fn := NewHandler(&mockContextService{}).GetActivitiesTool()
		res, _, _ := fn(context.Background(), &mcp.CallToolRequest{}, ActivitiesInput{Type: "hiking"})
		if !res.IsError {
			t.Fatalf("expected IsError")
		}
	})

	t.Run("passes_filter", func(t *testing.T) {
		svc := &mockContextService{list: []activities.Activity{{ID: "1", Date: "2024-04-12", Type: activities.TypeRun}}}
		fn := NewHandler(svc).GetActivitiesTool()
		res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, ActivitiesInput{
			FromDate: "2024-04-01",
			ToDate:   "2024-04-30",
			Type:     "run",
		})
		if err != nil || res.IsError {
			t.Fatalf("unexpected failure: %v %+v", err, res)
		}

		wantFrom := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
		if svc.gotFilter.From == nil || !svc.gotFilter.From.Equal(wantFrom) {
			t.Fatalf("from = %v", svc.gotFilter.From)
		}
		if svc.gotFilter.To == nil || !svc.gotFilter.To.Equal(wantTo) {
			t.Fatalf("to = %v", svc.gotFilter.To)
		}
		if svc.gotFilter.Type != activities.TypeRun {
			t.Fatalf("type = %q", svc.gotFilter.Type)
		}

		var got []activities.Activity
		if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
			t.Fatalf("result is not json: %v", err)
		}
		if len(got) != 1 || got[0].ID != "1" {
			t.Fatalf("got %+v", got)
		}
	})
}

func TestHandler_GetWeekChartTool(t *testing.T) {
	svc := &mockContextService{chart: &stats.ChartSeries{Labels: []string{"Apr 7"}, Total: []float64{4}}}
	fn := NewHandler(svc).GetWeekChartTool()

	res, _, err := fn(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	if err != nil || res.IsError {
		t.Fatalf("unexpected failure: %v %+v", err, res)
	}
	var got stats.ChartSeries
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("result is not json: %v", err)
	}
	if len(got.Labels) != 1 || got.Labels[0] != "Apr 7" {
		t.Fatalf("got %+v", got)
	}

	svc.chartErr = errors.New("boom")
	res, _, _ = fn(context.Background(), &mcp.CallToolRequest{}, NoInput{})
	if !res.IsError {
		t.Fatalf("expected IsError")
	}
}
