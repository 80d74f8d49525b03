package stats_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/stats"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func record(date string, t activities.ActivityType, in activities.Intensity, tm string, distance float64) activities.Activity {
	return activities.Activity{
		ID:        date + string(t) + string(in) + tm,
		Date:      date,
		Type:      t,
		Intensity: in,
		Time:      tm,
		Distance:  activities.Distance(distance),
	}
}

func TestWeeklyData_SingleRecordInCurrentWeek(t *testing.T) {
	now := time.Date(2024, 4, 12, 18, 30, 0, 0, time.UTC)
	records := []activities.Activity{
		record("2024-04-12", activities.TypeRun, activities.I3, "1:00", 10),
	}

	weeks := stats.WeeklyData(records, now, 1)
	require.Len(t, weeks, 1)

	week := weeks[0]
	assert.Equal(t, "2024-15", week.Key)
	assert.Equal(t, "Week 15", week.Label)
	assert.Equal(t, 2024, week.Year)
	assert.Equal(t, 15, week.Week)
	require.Len(t, week.Activities, 1)
	assert.Equal(t, stats.Totals{Duration: 60, Distance: 10}, week.Totals)
	assert.Equal(t, stats.Totals{Duration: 60, Distance: 10}, week.ByType.Run.Totals)
	assert.Equal(t, 6.0, week.ByType.Run.AvgPace)
	assert.Equal(t, stats.Totals{Duration: 60, Distance: 10}, week.ByIntensity[activities.I3])
	assert.Equal(t, stats.RunningIntensity{Moderate: 60}, week.RunningIntensity)
	assert.Len(t, week.ByIntensity, 7)
}

func TestWeeklyData_GroupingAndOrder(t *testing.T) {
	now := day("2024-04-12")
	records := []activities.Activity{
		record("2024-04-08", activities.TypeRun, activities.I1, "0:40", 8),
		record("2024-04-09", activities.TypeRun, activities.I2, "0:20", 4),
		record("2024-04-10", activities.TypeRun, activities.I6, "0:30", 6),
		record("2024-04-10", activities.TypeRun, "I9", "0:10", 0),
		record("2024-04-11", activities.TypeSwim, activities.I2, "1:00", 3),
		record("2024-04-05", activities.TypeBike, activities.I3, "2:00", 60),
		record("2024-03-27", activities.TypeStrength, activities.I2, "0:45", 0),
		record("2024-03-27", activities.TypeRecovery, activities.I1, "0:30", 0),
		// outside the 4 requested weeks
		record("2024-03-01", activities.TypeRun, activities.I3, "1:00", 10),
		// no valid date
		record("someday", activities.TypeRun, activities.I3, "1:00", 10),
	}

	weeks := stats.WeeklyData(records, now, 4)
	require.Len(t, weeks, 4)
	assert.Equal(t, []string{"2024-15", "2024-14", "2024-13", "2024-12"}, []string{
		weeks[0].Key, weeks[1].Key, weeks[2].Key, weeks[3].Key,
	})

	current := weeks[0]
	assert.Len(t, current.Activities, 5)
	assert.Equal(t, stats.Totals{Duration: 160, Distance: 21}, current.Totals)
	assert.Equal(t, stats.Totals{Duration: 100, Distance: 18}, current.ByType.Run.Totals)
	assert.InDelta(t, 100.0/18.0, current.ByType.Run.AvgPace, 1e-9)
	assert.Equal(t, stats.Totals{Duration: 60, Distance: 3}, current.ByType.Swim)
	assert.Equal(t, stats.RunningIntensity{Easy: 60, Moderate: 0, Hard: 40}, current.RunningIntensity)
	// unknown intensity counts in totals, not in the intensity breakdown
	assert.Equal(t, stats.Totals{Duration: 30, Distance: 6}, current.ByIntensity[activities.I6])
	_, hasUnknown := current.ByIntensity["I9"]
	assert.False(t, hasUnknown)

	previous := weeks[1]
	require.Len(t, previous.Activities, 1)
	assert.Equal(t, stats.Totals{Duration: 120, Distance: 60}, previous.ByType.Bike)
	assert.Zero(t, previous.ByType.Run.AvgPace)

	twoBack := weeks[2]
	assert.Len(t, twoBack.Activities, 2)
	assert.Equal(t, stats.Totals{Duration: 75, Distance: 0}, twoBack.ByType.Other)

	assert.Empty(t, weeks[3].Activities)
	assert.NotNil(t, weeks[3].Activities)
}

func TestWeeklyData_YearBoundary(t *testing.T) {
	now := day("2024-01-03")
	records := []activities.Activity{
		record("2024-01-01", activities.TypeRun, activities.I1, "0:30", 5),
		record("2023-12-27", activities.TypeRun, activities.I1, "0:30", 5),
		// week 53 of 2023, which is not any of the requested buckets
		record("2023-12-31", activities.TypeRun, activities.I1, "0:30", 5),
	}

	weeks := stats.WeeklyData(records, now, 2)
	require.Len(t, weeks, 2)
	assert.Equal(t, "2024-1", weeks[0].Key)
	assert.Equal(t, "2023-52", weeks[1].Key)
	assert.Len(t, weeks[0].Activities, 1)
	assert.Len(t, weeks[1].Activities, 1)
}

func TestWeeklyData_NoWeeks(t *testing.T) {
	records := []activities.Activity{record("2024-04-12", activities.TypeRun, activities.I3, "1:00", 10)}
	assert.Empty(t, stats.WeeklyData(records, day("2024-04-12"), 0))
	assert.Empty(t, stats.WeeklyData(records, day("2024-04-12"), -3))
}

func TestClampWeeks(t *testing.T) {
	assert.Equal(t, stats.DefaultWeeks, stats.ClampWeeks(0))
	assert.Equal(t, stats.DefaultWeeks, stats.ClampWeeks(-1))
	assert.Equal(t, 12, stats.ClampWeeks(12))
	assert.Equal(t, stats.MaxWeeks, stats.ClampWeeks(1000))
}
