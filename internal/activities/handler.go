package activities

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/trainlog/internal/calendar"
	"github.com/2beens/trainlog/internal/middleware"
	"github.com/2beens/trainlog/internal/telemetry/metrics"
	"github.com/2beens/trainlog/internal/telemetry/tracing"
	"github.com/2beens/trainlog/pkg"
)

const maxImportSize = 10 << 20 // 10 MB

type activitiesRepo interface {
	GetAll(ctx context.Context) ([]Activity, error)
	Save(ctx context.Context, draft Activity) (*Activity, error)
	GetByID(ctx context.Context, id string) (*Activity, error)
	UpdateChecked(ctx context.Context, id string, patch ActivityPatch, check func(Activity) error) (*Activity, error)
	Delete(ctx context.Context, id string) error
	ListByType(ctx context.Context, activityType ActivityType) ([]Activity, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]Activity, error)
	ClearAll(ctx context.Context) error
	GetNotes(ctx context.Context) (string, error)
	SaveNotes(ctx context.Context, notes string) error
	Export(ctx context.Context) (*Backup, error)
	Import(ctx context.Context, raw []byte) (int, error)
}

type ListResponse struct {
	Activities []Activity `json:"activities"`
	Total      int        `json:"total"`
}

type DeleteResponse struct {
	DeletedID string `json:"deletedId"`
}

type NotesPayload struct {
	Notes string `json:"notes"`
}

type ImportResponse struct {
	Imported int `json:"imported"`
}

type Handler struct {
	repo    activitiesRepo
	metrics *metrics.Manager
	now     func() time.Time
}

func NewHandler(repo activitiesRepo, metricsManager *metrics.Manager) *Handler {
	return &Handler{
		repo:    repo,
		metrics: metricsManager,
		now:     time.Now,
	}
}

// SetupRoutes registers the activity, notes and backup routes. When rateLimiter is not
// nil, the destructive bulk routes (/import, /data) are rate limited.
func (handler *Handler) SetupRoutes(
	r *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedPerMin int,
) {
	r.HandleFunc("/activities", handler.HandleList).Methods("GET", "OPTIONS").Name("list-activities")
	r.HandleFunc("/activities", handler.HandleAdd).Methods("POST", "OPTIONS").Name("new-activity")
	r.HandleFunc("/activities/{id}", handler.HandleGet).Methods("GET", "OPTIONS").Name("get-activity")
	r.HandleFunc("/activities/{id}", handler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-activity")
	r.HandleFunc("/activities/{id}", handler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-activity")
	r.HandleFunc("/notes", handler.HandleGetNotes).Methods("GET", "OPTIONS").Name("get-notes")
	r.HandleFunc("/notes", handler.HandleSaveNotes).Methods("PUT", "OPTIONS").Name("save-notes")
	r.HandleFunc("/export", handler.HandleExport).Methods("GET", "OPTIONS").Name("export")

	bulkRouter := r.NewRoute().Subrouter()
	bulkRouter.HandleFunc("/import", handler.HandleImport).Methods("POST", "OPTIONS").Name("import")
	bulkRouter.HandleFunc("/data", handler.HandleClearData).Methods("DELETE", "OPTIONS").Name("clear-data")
	if rateLimiter != nil {
		bulkRouter.Use(middleware.RateLimit(rateLimiter, "bulk", allowedPerMin, handler.metrics))
	}
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.list")
	defer span.End()

	query := r.URL.Query()
	fromStr, toStr := query.Get("from"), query.Get("to")

	var (
		activities []Activity
		err        error
	)
	if fromStr != "" || toStr != "" {
		from, to, parseErr := ParseDateRange(fromStr, toStr)
		if parseErr != nil {
			http.Error(w, parseErr.Error(), http.StatusBadRequest)
			return
		}
		activities, err = handler.repo.ListByDateRange(ctx, from, to)
	} else if typeFilter := query.Get("type"); typeFilter != "" {
		activities, err = handler.repo.ListByType(ctx, ActivityType(typeFilter))
	} else {
		activities, err = handler.repo.GetAll(ctx)
	}
	if err != nil {
		log.Errorf("list activities: %s", err)
		http.Error(w, "failed to get activities", http.StatusInternalServerError)
		return
	}

	// a date range can still be narrowed down by type
	if typeFilter := query.Get("type"); typeFilter != "" && (fromStr != "" || toStr != "") {
		activities = filterByType(activities, ActivityType(typeFilter))
	}

	if len(activities) == 0 {
		activities = []Activity{}
	}

	span.SetAttributes(attribute.Int("total", len(activities)))
	pkg.WriteJSON(w, ListResponse{
		Activities: activities,
		Total:      len(activities),
	}, http.StatusOK)
}

func (handler *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.new")
	defer span.End()

	if !strings.HasPrefix(r.Header.Get("Content-Type"), pkg.ContentType.JSON) {
		http.Error(w, "invalid content type", http.StatusBadRequest)
		return
	}

	var draft Activity
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		log.Tracef("new activity, unmarshal json params: %s", err)
		http.Error(w, "add activity failed", http.StatusBadRequest)
		return
	}

	draft.ApplyDefaults()
	if err := draft.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	saved, err := handler.repo.Save(ctx, draft)
	if err != nil {
		log.Errorf("failed to add new activity [%s] [%s]: %s", draft.Date, draft.Type, err)
		http.Error(w, "error, failed to add new activity", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterActivities.WithLabelValues("save").Inc()
	log.Debugf("new activity added: %s [%s] [%s]", saved.ID, saved.Date, saved.Type)
	pkg.WriteJSON(w, saved, http.StatusCreated)
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.get")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	activity, err := handler.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		log.Errorf("get activity %s: %s", id, err)
		http.Error(w, "failed to get activity", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, activity, http.StatusOK)
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.update")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	var patch ActivityPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		log.Tracef("update activity, unmarshal json params: %s", err)
		http.Error(w, "update activity failed", http.StatusBadRequest)
		return
	}
	if patch.IsEmpty() {
		http.Error(w, "error, nothing to update", http.StatusBadRequest)
		return
	}

	updated, err := handler.repo.UpdateChecked(ctx, id, patch, Activity.Validate)
	if err != nil {
		switch {
		case errors.Is(err, ErrActivityNotFound):
			http.Error(w, "activity not found", http.StatusNotFound)
		case errors.Is(err, ErrInvalidActivity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Errorf("failed to update activity %s: %s", id, err)
			http.Error(w, "error, failed to update activity", http.StatusInternalServerError)
		}
		return
	}

	handler.metrics.CounterActivities.WithLabelValues("update").Inc()
	pkg.WriteJSON(w, updated, http.StatusOK)
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.delete")
	defer span.End()

	id := mux.Vars(r)["id"]
	if id == "" {
		http.Error(w, "error, id empty", http.StatusBadRequest)
		return
	}

	if err := handler.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrActivityNotFound) {
			http.Error(w, "activity not found", http.StatusNotFound)
			return
		}
		log.Errorf("failed to delete activity %s: %s", id, err)
		http.Error(w, "error, activity not deleted, internal server error", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterActivities.WithLabelValues("delete").Inc()
	pkg.WriteJSON(w, DeleteResponse{DeletedID: id}, http.StatusOK)
}

func (handler *Handler) HandleClearData(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.activities.clear")
	defer span.End()

	if err := handler.repo.ClearAll(ctx); err != nil {
		log.Errorf("failed to clear data: %s", err)
		http.Error(w, "error, failed to clear data", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterActivities.WithLabelValues("clear").Inc()
	log.Warnln("all activities and notes cleared")
	pkg.WriteTextResponseOK(w, "cleared")
}

func (handler *Handler) HandleGetNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.get")
	defer span.End()

	notes, err := handler.repo.GetNotes(ctx)
	if err != nil {
		log.Errorf("get notes: %s", err)
		http.Error(w, "failed to get notes", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, NotesPayload{Notes: notes}, http.StatusOK)
}

func (handler *Handler) HandleSaveNotes(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.notes.save")
	defer span.End()

	var payload NotesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid notes payload", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SaveNotes(ctx, payload.Notes); err != nil {
		log.Errorf("save notes: %s", err)
		http.Error(w, "failed to save notes", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, payload, http.StatusOK)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.backup.export")
	defer span.End()

	backup, err := handler.repo.Export(ctx)
	if err != nil {
		log.Errorf("export: %s", err)
		http.Error(w, "failed to export data", http.StatusInternalServerError)
		return
	}

	backupJson, err := json.MarshalIndent(backup, "", "  ")
	if err != nil {
		log.Errorf("marshal backup: %s", err)
		http.Error(w, "failed to export data", http.StatusInternalServerError)
		return
	}

	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%s", BackupFileName(handler.now())),
	)
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, backupJson)
}

func (handler *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.backup.import")
	defer span.End()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	imported, err := handler.repo.Import(ctx, raw)
	if err != nil {
		handler.metrics.CounterImports.WithLabelValues("failed").Inc()
		if errors.Is(err, ErrInvalidBackup) {
			log.Tracef("import rejected: %s", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Errorf("import: %s", err)
		http.Error(w, "failed to import data", http.StatusInternalServerError)
		return
	}

	handler.metrics.CounterImports.WithLabelValues("ok").Inc()
	log.Infof("imported %d activities", imported)
	span.SetAttributes(attribute.Int("imported", imported))
	pkg.WriteJSON(w, ImportResponse{Imported: imported}, http.StatusOK)
}

// ParseDateRange parses optional from/to dates (YYYY-MM-DD); a missing bound is open-ended.
func ParseDateRange(fromStr, toStr string) (from, to time.Time, err error) {
	from = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	to = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
	if fromStr != "" {
		if from, err = calendar.ParseDate(fromStr); err != nil {
			return from, to, fmt.Errorf("invalid from date: %w", err)
		}
	}
	if toStr != "" {
		if to, err = calendar.ParseDate(toStr); err != nil {
			return from, to, fmt.Errorf("invalid to date: %w", err)
		}
	}
	return from, to, nil
}

func filterByType(activities []Activity, activityType ActivityType) []Activity {
	filtered := make([]Activity, 0, len(activities))
	for _, a := range activities {
		if a.Type == activityType {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
