package activities

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/trainlog/internal/calendar"
)

// Backup is the export document, and the accepted import format.
type Backup struct {
	Activities []Activity `json:"activities"`
	Notes      string     `json:"notes"`
}

// BackupFileName returns the name offered for a backup downloaded at the given time.
func BackupFileName(at time.Time) string {
	return fmt.Sprintf("training-log-%s.json", calendar.FormatDate(at))
}

func (r *Repo) Export(ctx context.Context) (*Backup, error) {
	activities, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	notes, err := r.GetNotes(ctx)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Activities: activities,
		Notes:      notes,
	}, nil
}

// Import restores a backup document. A document that is not valid JSON, or whose
// activities are missing or not an array, is rejected with ErrInvalidBackup and nothing
// is changed. Notes are overwritten only when the document carries a non-empty string.
func (r *Repo) Import(ctx context.Context, raw []byte) (int, error) {
	var doc struct {
		Activities json.RawMessage `json:"activities"`
		Notes      json.RawMessage `json:"notes"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidBackup, err)
	}

	activitiesRaw := bytes.TrimSpace(doc.Activities)
	if len(activitiesRaw) == 0 || activitiesRaw[0] != '[' {
		return 0, fmt.Errorf("%w: activities missing or not an array", ErrInvalidBackup)
	}

	var notes string
	if len(doc.Notes) > 0 {
		if err := json.Unmarshal(doc.Notes, &notes); err != nil {
			log.Tracef("backup import, ignoring non-string notes: %s", err)
			notes = ""
		}
	}

	count, err := r.ImportAll(ctx, activitiesRaw)
	if errors.Is(err, ErrInvalidImport) {
		return 0, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	} else if err != nil {
		return 0, err
	}

	if notes != "" {
		if err := r.SaveNotes(ctx, notes); err != nil {
			return count, err
		}
	}

	return count, nil
}
