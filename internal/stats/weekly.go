package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
)

const (
	DefaultWeeks = 4
	MaxWeeks     = 104
)

type Totals struct {
	Duration int     `json:"duration"`
	Distance float64 `json:"distance"`
}

func (t *Totals) add(minutes int, distance float64) {
	t.Duration += minutes
	t.Distance += distance
}

type RunTotals struct {
	Totals
	// AvgPace is minutes per distance unit, 0 without any run distance.
	AvgPace float64 `json:"avgPace"`
}

type TypeTotals struct {
	Swim  Totals    `json:"swim"`
	Bike  Totals    `json:"bike"`
	Run   RunTotals `json:"run"`
	Other Totals    `json:"other"`
}

func (t *TypeTotals) forSport(sport activities.ActivityType) *Totals {
	switch sport {
	case activities.TypeSwim:
		return &t.Swim
	case activities.TypeBike:
		return &t.Bike
	case activities.TypeRun:
		return &t.Run.Totals
	default:
		return &t.Other
	}
}

// RunningIntensity splits running minutes into I1-I2 (easy), I3 (moderate) and the rest (hard).
type RunningIntensity struct {
	Easy     int `json:"easy"`
	Moderate int `json:"moderate"`
	Hard     int `json:"hard"`
}

type WeekBucket struct {
	Key              string                          `json:"key"`
	Label            string                          `json:"label"`
	Year             int                             `json:"year"`
	Week             int                             `json:"week"`
	Totals           Totals                          `json:"totals"`
	Activities       []activities.Activity           `json:"activities"`
	ByType           TypeTotals                      `json:"byType"`
	ByIntensity      map[activities.Intensity]Totals `json:"byIntensity"`
	RunningIntensity RunningIntensity                `json:"runningIntensity"`
}

func newWeekBucket(date time.Time) WeekBucket {
	week := calendar.WeekNumber(date)
	byIntensity := make(map[activities.Intensity]Totals, len(activities.AllIntensities))
	for _, in := range activities.AllIntensities {
		byIntensity[in] = Totals{}
	}
	return WeekBucket{
		Key:         calendar.WeekKey(date),
		Label:       fmt.Sprintf("Week %d", week),
		Year:        date.Year(),
		Week:        week,
		Activities:  []activities.Activity{},
		ByIntensity: byIntensity,
	}
}

// WeeklyData groups records into the numWeeks most recent weeks, the current week
// (the one containing now) included. Records outside those weeks, or without a valid
// date, are left out. Buckets come back newest first.
func WeeklyData(records []activities.Activity, now time.Time, numWeeks int) []WeekBucket {
	if numWeeks <= 0 {
		return []WeekBucket{}
	}

	today := calendar.DateOf(now)
	weeks := make([]WeekBucket, 0, numWeeks)
	byKey := make(map[string]int, numWeeks)
	for i := 0; i < numWeeks; i++ {
		bucket := newWeekBucket(today.AddDate(0, 0, -7*i))
		byKey[bucket.Key] = len(weeks)
		weeks = append(weeks, bucket)
	}

	for _, record := range records {
		date, ok := record.ParsedDate()
		if !ok {
			continue
		}
		idx, ok := byKey[calendar.WeekKey(date)]
		if !ok {
			continue
		}

		week := &weeks[idx]
		week.Activities = append(week.Activities, record)

		minutes := record.DurationMinutes()
		distance := float64(record.Distance)

		week.Totals.add(minutes, distance)

		sport := record.Type.Sport()
		week.ByType.forSport(sport).add(minutes, distance)

		if totals, known := week.ByIntensity[record.Intensity]; known {
			totals.add(minutes, distance)
			week.ByIntensity[record.Intensity] = totals
		}

		if sport == activities.TypeRun {
			switch record.Intensity {
			case activities.I1, activities.I2:
				week.RunningIntensity.Easy += minutes
			case activities.I3:
				week.RunningIntensity.Moderate += minutes
			default:
				week.RunningIntensity.Hard += minutes
			}
		}
	}

	for i := range weeks {
		run := &weeks[i].ByType.Run
		if run.Distance > 0 {
			run.AvgPace = float64(run.Duration) / run.Distance
		}
	}

	sort.SliceStable(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year > weeks[j].Year
		}
		return weeks[i].Week > weeks[j].Week
	})

	return weeks
}

// ClampWeeks returns the number of weeks to report for a requested value.
func ClampWeeks(weeks int) int {
	switch {
	case weeks <= 0:
		return DefaultWeeks
	case weeks > MaxWeeks:
		return MaxWeeks
	default:
		return weeks
	}
}
