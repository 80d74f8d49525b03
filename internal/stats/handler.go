package stats

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/trainlog/internal/telemetry/tracing"
	"github.com/2beens/trainlog/pkg"
)

type Handler struct {
	analyzer *Analyzer
}

func NewHandler(analyzer *Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
	}
}

func (handler *Handler) SetupRoutes(r *mux.Router) {
	r.HandleFunc("/stats/weekly", handler.HandleWeekly).Methods("GET", "OPTIONS").Name("stats-weekly")
	r.HandleFunc("/stats/summary", handler.HandleSummary).Methods("GET", "OPTIONS").Name("stats-summary")
	r.HandleFunc("/stats/chart", handler.HandleChart).Methods("GET", "OPTIONS").Name("stats-chart")
}

// HandleWeekly serves the weekly buckets; ?weeks=N defaults to 4 and is capped at 104.
func (handler *Handler) HandleWeekly(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.weekly")
	defer span.End()

	weeks := DefaultWeeks
	if weeksStr := r.URL.Query().Get("weeks"); weeksStr != "" {
		parsed, err := strconv.Atoi(weeksStr)
		if err != nil {
			http.Error(w, "error, weeks NaN", http.StatusBadRequest)
			return
		}
		weeks = ClampWeeks(parsed)
	}

	buckets, err := handler.analyzer.Weekly(ctx, weeks)
	if err != nil {
		log.Errorf("weekly stats: %s", err)
		http.Error(w, "failed to get weekly stats", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, buckets, http.StatusOK)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.summary")
	defer span.End()

	summary, err := handler.analyzer.Summary(ctx)
	if err != nil {
		log.Errorf("summary stats: %s", err)
		http.Error(w, "failed to get summary", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, summary, http.StatusOK)
}

func (handler *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats.chart")
	defer span.End()

	chart, err := handler.analyzer.Chart(ctx)
	if err != nil {
		log.Errorf("chart stats: %s", err)
		http.Error(w, "failed to get chart data", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSON(w, chart, http.StatusOK)
}
