package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/trainlog/internal/calendar"
	"github.com/2beens/trainlog/internal/kv"
	"github.com/2beens/trainlog/internal/telemetry/tracing"
)

const (
	ActivitiesKey = "training_logbook_activities"
	NotesKey      = "week_notes"
)

// Repo keeps the whole activity collection as one JSON array under ActivitiesKey.
// Every mutation reads, modifies and writes back the full collection.
type Repo struct {
	store kv.Store
	// serializes read-modify-write cycles on the collection
	mu  sync.Mutex
	now func() time.Time
}

func NewRepo(store kv.Store) *Repo {
	return &Repo{
		store: store,
		now:   time.Now,
	}
}

func (r *Repo) GetAll(ctx context.Context) (_ []Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.get-all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.load(ctx)
}

func (r *Repo) load(ctx context.Context) ([]Activity, error) {
	stored, found, err := r.store.Get(ctx, ActivitiesKey)
	if err != nil {
		return nil, fmt.Errorf("get stored activities: %w", err)
	}
	if !found || stored == "" {
		return []Activity{}, nil
	}

	raw := bytes.TrimSpace([]byte(stored))
	if len(raw) == 0 || raw[0] != '[' {
		return nil, ErrCorruptedData
	}

	var activities []Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCorruptedData, err)
	}
	if activities == nil {
		activities = []Activity{}
	}

	return activities, nil
}

func (r *Repo) persist(ctx context.Context, activities []Activity) error {
	if activities == nil {
		activities = []Activity{}
	}
	activitiesJson, err := json.Marshal(activities)
	if err != nil {
		return fmt.Errorf("marshal activities: %w", err)
	}
	if err := r.store.Set(ctx, ActivitiesKey, string(activitiesJson)); err != nil {
		return fmt.Errorf("store activities: %w", err)
	}
	return nil
}

// Save assigns a new id and creation time to the draft, appends it and persists the collection.
func (r *Repo) Save(ctx context.Context, draft Activity) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.save")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	activities, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	now := r.now()
	draft.ID = NewID(now)
	draft.CreatedAt = now.UnixMilli()
	draft.Minutes = draft.DurationMinutes()

	activities = append(activities, draft)
	if err := r.persist(ctx, activities); err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String("id", draft.ID))
	return &draft, nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	activities, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(activities, id)
	if idx == -1 {
		return nil, ErrActivityNotFound
	}
	return &activities[idx], nil
}

func (r *Repo) Update(ctx context.Context, id string, patch ActivityPatch) (*Activity, error) {
	return r.UpdateChecked(ctx, id, patch, nil)
}

// UpdateChecked merges patch into the activity with the given id. When check is not nil,
// it is called with the merged activity, and a non-nil result aborts the update.
func (r *Repo) UpdateChecked(
	ctx context.Context,
	id string,
	patch ActivityPatch,
	check func(Activity) error,
) (_ *Activity, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	activities, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := indexOf(activities, id)
	if idx == -1 {
		return nil, ErrActivityNotFound
	}

	updated := Merge(activities[idx], patch)
	if check != nil {
		if err := check(updated); err != nil {
			return nil, err
		}
	}

	activities[idx] = updated
	if err := r.persist(ctx, activities); err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *Repo) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("id", id))

	r.mu.Lock()
	defer r.mu.Unlock()

	activities, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(activities, id)
	if idx == -1 {
		return ErrActivityNotFound
	}

	activities = append(activities[:idx], activities[idx+1:]...)
	return r.persist(ctx, activities)
}

// ImportAll replaces the whole collection with the activities in raw, which must be a
// JSON array. Elements are decoded leniently, see Activity.UnmarshalJSON. Missing ids and
// creation times are filled in. On any error, the stored collection stays as it was.
func (r *Repo) ImportAll(ctx context.Context, raw []byte) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.import-all")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return 0, fmt.Errorf("%w: activities must be a json array", ErrInvalidImport)
	}

	var imported []Activity
	if err := json.Unmarshal(raw, &imported); err != nil {
		return 0, fmt.Errorf("%w: malformed json: %s", ErrInvalidImport, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for i := range imported {
		if imported[i].ID == "" {
			imported[i].ID = NewID(now)
		}
		if imported[i].CreatedAt == 0 {
			imported[i].CreatedAt = now.UnixMilli()
		}
	}

	if err := r.persist(ctx, imported); err != nil {
		return 0, err
	}

	span.SetAttributes(attribute.Int("count", len(imported)))
	return len(imported), nil
}

// Clear removes all activities.
func (r *Repo) Clear(ctx context.Context) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.activities.clear")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.Remove(ctx, ActivitiesKey)
}

// ClearAll removes activities and notes.
func (r *Repo) ClearAll(ctx context.Context) error {
	if err := r.Clear(ctx); err != nil {
		return fmt.Errorf("clear activities: %w", err)
	}
	if err := r.ClearNotes(ctx); err != nil {
		return fmt.Errorf("clear notes: %w", err)
	}
	return nil
}

func (r *Repo) ListByType(ctx context.Context, activityType ActivityType) ([]Activity, error) {
	activities, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := []Activity{}
	for _, a := range activities {
		if a.Type == activityType {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

// ListByDateRange returns the activities dated between from and to, both inclusive.
// Activities without a valid date are skipped.
func (r *Repo) ListByDateRange(ctx context.Context, from, to time.Time) ([]Activity, error) {
	activities, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	from, to = calendar.DateOf(from), calendar.DateOf(to)
	filtered := []Activity{}
	for _, a := range activities {
		d, ok := a.ParsedDate()
		if !ok {
			continue
		}
		if !d.Before(from) && !d.After(to) {
			filtered = append(filtered, a)
		}
	}
	return filtered, nil
}

func (r *Repo) GetNotes(ctx context.Context) (string, error) {
	notes, _, err := r.store.Get(ctx, NotesKey)
	if err != nil {
		return "", fmt.Errorf("get notes: %w", err)
	}
	return notes, nil
}

func (r *Repo) SaveNotes(ctx context.Context, notes string) error {
	if err := r.store.Set(ctx, NotesKey, notes); err != nil {
		return fmt.Errorf("save notes: %w", err)
	}
	return nil
}

func (r *Repo) ClearNotes(ctx context.Context) error {
	return r.store.Remove(ctx, NotesKey)
}

func indexOf(activities []Activity, id string) int {
	for i := range activities {
		if activities[i].ID == id {
			return i
		}
	}
	return -1
}
