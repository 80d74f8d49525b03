package stats_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAnalyzer(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockrecordSource(ctrl)
	analyzer := stats.NewAnalyzerWithClock(source, fixedClock(day("2024-04-12")))
	ctx := context.Background()

	records := []activities.Activity{
		record("2024-04-12", activities.TypeRun, activities.I3, "1:00", 10),
		record("2024-04-01", activities.TypeSwim, activities.I1, "0:45", 2),
	}
	source.EXPECT().GetAll(gomock.Any()).Return(records, nil).Times(3)

	weeks, err := analyzer.Weekly(ctx, 2)
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, "2024-15", weeks[0].Key)
	assert.Len(t, weeks[0].Activities, 1)
	assert.Len(t, weeks[1].Activities, 1)

	summary, err := analyzer.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 105, summary.TotalMinutes)
	assert.Equal(t, 2, summary.ActiveSessions)

	chart, err := analyzer.Chart(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-04-07", chart.Dates[0])
	assert.Equal(t, 10.0, chart.Running[5])
}

func TestAnalyzer_SourceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := NewMockrecordSource(ctrl)
	analyzer := stats.NewAnalyzer(source)
	ctx := context.Background()

	errCorrupted := activities.ErrCorruptedData
	source.EXPECT().GetAll(gomock.Any()).Return(nil, errCorrupted).Times(3)

	_, err := analyzer.Weekly(ctx, 4)
	assert.True(t, errors.Is(err, errCorrupted))
	_, err = analyzer.Summary(ctx)
	assert.True(t, errors.Is(err, errCorrupted))
	_, err = analyzer.Chart(ctx)
	assert.True(t, errors.Is(err, errCorrupted))
}
