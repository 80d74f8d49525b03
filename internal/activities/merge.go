package activities

import (
	"github.com/2beens/trainlog/internal/calendar"
)

// ActivityPatch holds the fields of a partial update; nil fields are left as they are.
// ID and CreatedAt are not part of it, so they can never be changed.
type ActivityPatch struct {
	Date      *string       `json:"date,omitempty"`
	Type      *ActivityType `json:"type,omitempty"`
	Intensity *Intensity    `json:"intensity,omitempty"`
	Time      *string       `json:"time,omitempty"`
	Distance  *Distance     `json:"distance,omitempty"`
	Details   *string       `json:"details,omitempty"`
	Comment   *string       `json:"comment,omitempty"`
	Feeling   *Feeling      `json:"feeling,omitempty"`
	Rating    *Rating       `json:"rating,omitempty"`
}

func (p ActivityPatch) IsEmpty() bool {
	return p == ActivityPatch{}
}

// Merge applies patch on top of existing and returns the result. It has no side effects.
func Merge(existing Activity, patch ActivityPatch) Activity {
	merged := existing
	if patch.Date != nil {
		merged.Date = *patch.Date
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Intensity != nil {
		merged.Intensity = *patch.Intensity
	}
	if patch.Time != nil {
		merged.Time = *patch.Time
		merged.Minutes = calendar.TimeToMinutes(merged.Time)
	}
	if patch.Distance != nil {
		merged.Distance = *patch.Distance
	}
	if patch.Details != nil {
		merged.Details = *patch.Details
	}
	if patch.Comment != nil {
		merged.Comment = *patch.Comment
	}
	if patch.Feeling != nil {
		merged.Feeling = *patch.Feeling
	}
	if patch.Rating != nil {
		merged.Rating = *patch.Rating
	}
	return merged
}
