package stats

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=stats_mocks_test.go -package=stats_test

type recordSource interface {
	GetAll(ctx context.Context) ([]activities.Activity, error)
}

// Analyzer runs the aggregations over the full record set of a source.
type Analyzer struct {
	source recordSource
	now    func() time.Time
}

func NewAnalyzer(source recordSource) *Analyzer {
	return NewAnalyzerWithClock(source, time.Now)
}

func NewAnalyzerWithClock(source recordSource, now func() time.Time) *Analyzer {
	return &Analyzer{
		source: source,
		now:    now,
	}
}

func (a *Analyzer) Weekly(ctx context.Context, numWeeks int) (_ []WeekBucket, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.weekly")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("weeks", numWeeks))

	records, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	return WeeklyData(records, a.now(), numWeeks), nil
}

func (a *Analyzer) Summary(ctx context.Context) (_ *Summary, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.summary")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	records, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	summary := ComputeSummary(records)
	span.SetAttributes(attribute.Int("sessions", summary.TotalSessions))
	return &summary, nil
}

func (a *Analyzer) Chart(ctx context.Context) (_ *ChartSeries, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "analyzer.stats.chart")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	records, err := a.source.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	chart := WeekChart(records, a.now())
	return &chart, nil
}
