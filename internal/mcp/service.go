package mcp

import (
	"context"
	"time"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

// ActivitiesRepo provides the stored activities (for dependency injection and testing).
type ActivitiesRepo interface {
	GetAll(ctx context.Context) ([]activities.Activity, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]activities.Activity, error)
}

// statsAnalyzer provides the aggregations (for dependency injection and testing).
type statsAnalyzer interface {
	Weekly(ctx context.Context, numWeeks int) ([]stats.WeekBucket, error)
	Summary(ctx context.Context) (*stats.Summary, error)
	Chart(ctx context.Context) (*stats.ChartSeries, error)
}

// contextService provides the training log data served by the MCP tools.
// Used by Handler for testability.
type contextService interface {
	WeeklyStats(ctx context.Context, weeks int, includeActivities bool) ([]stats.WeekBucket, error)
	TrainingSummary(ctx context.Context) (*stats.Summary, error)
	ListActivities(ctx context.Context, filter ActivitiesFilter) ([]activities.Activity, error)
	WeekChart(ctx context.Context) (*stats.ChartSeries, error)
}

type ActivitiesFilter struct {
	// From and To are inclusive; nil means open-ended
	From *time.Time
	To   *time.Time
	Type activities.ActivityType
}

// ContextService holds dependencies and implements the training log context logic.
type ContextService struct {
	activities ActivitiesRepo
	analyzer   statsAnalyzer
}

func NewContextService(activitiesRepo ActivitiesRepo, analyzer statsAnalyzer) *ContextService {
	return &ContextService{
		activities: activitiesRepo,
		analyzer:   analyzer,
	}
}

// WeeklyStats returns the most recent weeks, newest first. Unless includeActivities is set,
// the per-week activity lists are dropped to keep the result small.
func (s *ContextService) WeeklyStats(ctx context.Context, weeks int, includeActivities bool) ([]stats.WeekBucket, error) {
	buckets, err := s.analyzer.Weekly(ctx, stats.ClampWeeks(weeks))
	if err != nil {
		return nil, err
	}
	if !includeActivities {
		for i := range buckets {
			buckets[i].Activities = nil
		}
	}
	return buckets, nil
}

func (s *ContextService) TrainingSummary(ctx context.Context) (*stats.Summary, error) {
	return s.analyzer.Summary(ctx)
}

func (s *ContextService) WeekChart(ctx context.Context) (*stats.ChartSeries, error) {
	return s.analyzer.Chart(ctx)
}

func (s *ContextService) ListActivities(ctx context.Context, filter ActivitiesFilter) ([]activities.Activity, error) {
	var (
		list []activities.Activity
		err  error
	)
	if filter.From != nil || filter.To != nil {
		from := time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
		if filter.From != nil {
			from = *filter.From
		}
		if filter.To != nil {
			to = *filter.To
		}
		list, err = s.activities.ListByDateRange(ctx, from, to)
	} else {
		list, err = s.activities.GetAll(ctx)
	}
	if err != nil {
		return nil, err
	}

	if filter.Type == "" {
		return list, nil
	}
	filtered := make([]activities.Activity, 0, len(list))
	for _, a := range list {
		if a.Type == filter.Type {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}
