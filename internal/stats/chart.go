package stats

import (
	"time"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
)

// ChartSeries holds per-day distances of one Sunday-start week, ready for a line chart.
type ChartSeries struct {
	Labels   []string  `json:"labels"`
	Dates    []string  `json:"dates"`
	Running  []float64 `json:"running"`
	Swimming []float64 `json:"swimming"`
	Biking   []float64 `json:"biking"`
	Total    []float64 `json:"total"`
}

// WeekChart builds the distance series of the week (Sunday to Saturday) containing now.
// Total also includes distance of other activity types.
func WeekChart(records []activities.Activity, now time.Time) ChartSeries {
	days := calendar.SundayWeek(now)
	series := ChartSeries{
		Labels:   make([]string, len(days)),
		Dates:    make([]string, len(days)),
		Running:  make([]float64, len(days)),
		Swimming: make([]float64, len(days)),
		Biking:   make([]float64, len(days)),
		Total:    make([]float64, len(days)),
	}

	dayIndex := make(map[string]int, len(days))
	for i, day := range days {
		series.Labels[i] = day.Format(calendar.ChartLabelLayout)
		series.Dates[i] = calendar.FormatDate(day)
		dayIndex[series.Dates[i]] = i
	}

	for _, record := range records {
		date, ok := record.ParsedDate()
		if !ok {
			continue
		}
		i, ok := dayIndex[calendar.FormatDate(date)]
		if !ok {
			continue
		}

		distance := float64(record.Distance)
		switch record.Type {
		case activities.TypeRun:
			series.Running[i] += distance
		case activities.TypeSwim:
			series.Swimming[i] += distance
		case activities.TypeBike:
			series.Biking[i] += distance
		}
		series.Total[i] += distance
	}

	return series
}
