package activities

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/2beens/trainlog/internal/calendar"
)

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidActivity  = errors.New("invalid activity")
	ErrInvalidImport    = errors.New("invalid import")
	ErrInvalidBackup    = errors.New("invalid backup document")
	ErrCorruptedData    = errors.New("stored activities are corrupted")
)

const (
	DefaultFeeling = FeelingAverage
	DefaultRating  = Rating(3)
)

var timeRegex = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

type ActivityType string

const (
	TypeSwim        ActivityType = "swim"
	TypeBike        ActivityType = "bike"
	TypeRun         ActivityType = "run"
	TypeRecovery    ActivityType = "recovery"
	TypeStrength    ActivityType = "strength"
	TypeAlternative ActivityType = "alternative"
	TypeCompetition ActivityType = "competition"
	TypeOther       ActivityType = "other"
)

var AllTypes = []ActivityType{
	TypeSwim, TypeBike, TypeRun, TypeRecovery,
	TypeStrength, TypeAlternative, TypeCompetition, TypeOther,
}

func (t ActivityType) Valid() bool {
	for _, at := range AllTypes {
		if t == at {
			return true
		}
	}
	return false
}

// Sport folds the activity type into one of swim, bike, run or other.
func (t ActivityType) Sport() ActivityType {
	switch t {
	case TypeSwim, TypeBike, TypeRun:
		return t
	default:
		return TypeOther
	}
}

type Intensity string

const (
	I1 Intensity = "I1"
	I2 Intensity = "I2"
	I3 Intensity = "I3"
	I4 Intensity = "I4"
	I5 Intensity = "I5"
	I6 Intensity = "I6"
	I7 Intensity = "I7"
)

var AllIntensities = []Intensity{I1, I2, I3, I4, I5, I6, I7}

// Level returns 1..7 for I1..I7, and 0 for anything else.
func (i Intensity) Level() int {
	for idx, in := range AllIntensities {
		if i == in {
			return idx + 1
		}
	}
	return 0
}

func (i Intensity) Valid() bool {
	return i.Level() > 0
}

type Feeling string

const (
	FeelingGood    Feeling = "good"
	FeelingAverage Feeling = "average"
	FeelingBad     Feeling = "bad"
)

func (f Feeling) Valid() bool {
	switch f {
	case FeelingGood, FeelingAverage, FeelingBad:
		return true
	default:
		return false
	}
}

// Distance is a non-negative distance (km). When decoded from JSON it accepts both
// numbers and numeric strings ("10", "7.5km"); anything non-numeric becomes 0.
type Distance float64

func (d *Distance) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*d = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*d = Distance(parseLeadingFloat(s))
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*d = 0
		return nil
	}
	*d = Distance(f)
	return nil
}

var floatPrefixRegex = regexp.MustCompile(`^[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?`)

// parseLeadingFloat reads the leading decimal number of s, 0 if there is none.
func parseLeadingFloat(s string) float64 {
	m := floatPrefixRegex.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// Rating is a 1..5 score; 0 means not set. JSON accepts numbers and numeric strings.
type Rating int

func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = 0
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Rating(parseLeadingFloat(s))
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*r = 0
		return nil
	}
	*r = Rating(f)
	return nil
}

func (r Rating) Valid() bool {
	return r >= 1 && r <= 5
}

type Activity struct {
	ID        string       `json:"id"`
	Date      string       `json:"date"`
	Type      ActivityType `json:"type"`
	Intensity Intensity    `json:"intensity"`
	Time      string       `json:"time"`
	Minutes   int          `json:"minutes"`
	Distance  Distance     `json:"distance"`
	Details   string       `json:"details,omitempty"`
	Comment   string       `json:"comment,omitempty"`
	Feeling   Feeling      `json:"feeling,omitempty"`
	Rating    Rating       `json:"rating,omitempty"`
	CreatedAt int64        `json:"createdAt"`
}

// UnmarshalJSON decodes a stored or imported record leniently: a field of the wrong JSON
// type becomes its zero value instead of failing the whole collection. Numbers given
// for text fields keep their literal text, numeric strings are accepted for numbers.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		// not an object
		*a = Activity{}
		return nil
	}

	var distance Distance
	if err := distance.UnmarshalJSON(fields["distance"]); err != nil {
		distance = 0
	}
	var rating Rating
	if err := rating.UnmarshalJSON(fields["rating"]); err != nil {
		rating = 0
	}

	*a = Activity{
		ID:        looseString(fields["id"]),
		Date:      looseString(fields["date"]),
		Type:      ActivityType(looseString(fields["type"])),
		Intensity: Intensity(looseString(fields["intensity"])),
		Time:      looseString(fields["time"]),
		Minutes:   int(looseNumber(fields["minutes"])),
		Distance:  distance,
		Details:   looseString(fields["details"]),
		Comment:   looseString(fields["comment"]),
		Feeling:   Feeling(looseString(fields["feeling"])),
		Rating:    rating,
		CreatedAt: int64(looseNumber(fields["createdAt"])),
	}
	return nil
}

// looseString returns a JSON string as is and a JSON number as its literal text.
// Anything else is "".
func looseString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	}
	if _, err := strconv.ParseFloat(string(raw), 64); err == nil {
		return string(raw)
	}
	return ""
}

// looseNumber reads a JSON number or a numeric string; anything else is 0.
func looseNumber(raw json.RawMessage) float64 {
	text := looseString(raw)
	if text == "" {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return f
}

// DurationMinutes is the activity time in minutes, malformed time counts as 0.
func (a Activity) DurationMinutes() int {
	return calendar.TimeToMinutes(a.Time)
}

// ParsedDate returns the calendar date of the activity; ok is false when it does not parse.
func (a Activity) ParsedDate() (_ time.Time, ok bool) {
	d, err := calendar.ParseDate(a.Date)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func (a *Activity) ApplyDefaults() {
	if a.Feeling == "" {
		a.Feeling = DefaultFeeling
	}
	if a.Rating == 0 {
		a.Rating = DefaultRating
	}
}

func (a Activity) Validate() error {
	if _, err := calendar.ParseDate(a.Date); err != nil {
		return fmt.Errorf("%w: date: %s", ErrInvalidActivity, err)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown type [%s]", ErrInvalidActivity, a.Type)
	}
	if !a.Intensity.Valid() {
		return fmt.Errorf("%w: unknown intensity [%s]", ErrInvalidActivity, a.Intensity)
	}
	if !timeRegex.MatchString(a.Time) {
		return fmt.Errorf("%w: time [%s] must be H:MM or HH:MM", ErrInvalidActivity, a.Time)
	}
	if a.Distance < 0 {
		return fmt.Errorf("%w: negative distance", ErrInvalidActivity)
	}
	if a.Feeling != "" && !a.Feeling.Valid() {
		return fmt.Errorf("%w: unknown feeling [%s]", ErrInvalidActivity, a.Feeling)
	}
	if a.Rating != 0 && !a.Rating.Valid() {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidActivity)
	}
	return nil
}

// NewID returns a unix millis timestamp followed by a short random suffix.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return strconv.FormatInt(now.UnixMilli(), 10) + suffix
}
