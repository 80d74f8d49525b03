package stats

import (
	"math"

	"github.com/2beens/trainlog/internal/activities"
	"github.com/2beens/trainlog/internal/calendar"
)

type IntensityTotals struct {
	Duration int     `json:"duration"`
	Distance float64 `json:"distance"`
	Time     string  `json:"time"`
}

// Summary is the all-time overview of the training log.
type Summary struct {
	TotalMinutes        int                                      `json:"totalMinutes"`
	TotalTime           string                                   `json:"totalTime"`
	TotalSessions       int                                      `json:"totalSessions"`
	ActiveSessions      int                                      `json:"activeSessions"`
	RecoverySessions    int                                      `json:"recoverySessions"`
	SickDays            int                                      `json:"sickDays"`
	AlternativeMinutes  int                                      `json:"alternativeMinutes"`
	AlternativeTime     string                                   `json:"alternativeTime"`
	CompetitionDistance float64                                  `json:"competitionDistance"`
	ByIntensity         map[activities.Intensity]IntensityTotals `json:"byIntensity"`
	SpecificMinutes     int                                      `json:"specificMinutes"`
	GeneralMinutes      int                                      `json:"generalMinutes"`
	SpecificPercent     int                                      `json:"specificPercent"`
	GeneralPercent      int                                      `json:"generalPercent"`
}

// ComputeSummary folds all records into a Summary. Each record is categorized by type
// first: recovery and strength/alternative count as general training, competition as
// specific (without being an active session), and everything else is an active session
// split by intensity (I1-I2 general, the rest specific).
func ComputeSummary(records []activities.Activity) Summary {
	summary := Summary{
		TotalSessions: len(records),
		ByIntensity:   make(map[activities.Intensity]IntensityTotals, len(activities.AllIntensities)),
	}
	for _, in := range activities.AllIntensities {
		summary.ByIntensity[in] = IntensityTotals{}
	}

	for _, record := range records {
		minutes := record.DurationMinutes()
		distance := float64(record.Distance)

		summary.TotalMinutes += minutes

		if totals, known := summary.ByIntensity[record.Intensity]; known {
			totals.Duration += minutes
			totals.Distance += distance
			summary.ByIntensity[record.Intensity] = totals
		}

		switch record.Type {
		case activities.TypeRecovery:
			summary.RecoverySessions++
			summary.GeneralMinutes += minutes
		case activities.TypeStrength, activities.TypeAlternative:
			summary.AlternativeMinutes += minutes
			summary.GeneralMinutes += minutes
		case activities.TypeCompetition:
			summary.CompetitionDistance += distance
			summary.SpecificMinutes += minutes
		default:
			summary.ActiveSessions++
			if record.Intensity == activities.I1 || record.Intensity == activities.I2 {
				summary.GeneralMinutes += minutes
			} else {
				summary.SpecificMinutes += minutes
			}
		}
	}

	summary.TotalTime = calendar.MinutesToTime(summary.TotalMinutes)
	summary.AlternativeTime = calendar.MinutesToTime(summary.AlternativeMinutes)
	for in, totals := range summary.ByIntensity {
		totals.Time = calendar.MinutesToTime(totals.Duration)
		summary.ByIntensity[in] = totals
	}

	if trainingMinutes := summary.SpecificMinutes + summary.GeneralMinutes; trainingMinutes > 0 {
		summary.SpecificPercent = int(math.Round(100 * float64(summary.SpecificMinutes) / float64(trainingMinutes)))
		summary.GeneralPercent = 100 - summary.SpecificPercent
	}

	return summary
}
