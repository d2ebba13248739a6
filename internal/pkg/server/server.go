package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/anicoll/sunweg-integration/internal/pkg/model"
	"github.com/anicoll/sunweg-integration/internal/pkg/poller"
)

var (
	errNotPolled    = errors.New("no data polled yet")
	errNotFound     = errors.New("plant not found")
	errNoStatsStore = errors.New("production history is not available without a database")
)

type snapshotSource interface {
	Latest() *poller.Snapshot
}

type statsReader interface {
	GetProductionStats(ctx context.Context, plantID int, inverterID *int, from, to time.Time) ([]model.StoredProductionStats, error)
}

type server struct {
	snapshots snapshotSource
	stats     statsReader
	logger    *zap.Logger
}

// New builds the read-only HTTP API. stats may be nil.
func New(snapshots snapshotSource, stats statsReader) *server {
	return &server{snapshots: snapshots, stats: stats, logger: zap.L()}
}

// Handler routes the API. metrics is mounted on /metrics when not nil.
func (s *server) Handler(metrics http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/plants", func(r chi.Router) {
		r.Get("/", s.listPlants)
		r.Get("/{id}", s.getPlant)
		r.Get("/{id}/production", s.getProduction)
	})
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Latest()
	if snap == nil {
		handleError(w, http.StatusServiceUnavailable, errNotPolled)
		return
	}
	writeJSON(w, map[string]any{"status": "ok", "last_poll": snap.Time, "run_id": snap.RunID})
}

func (s *server) listPlants(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshots.Latest()
	if snap == nil {
		handleError(w, http.StatusServiceUnavailable, errNotPolled)
		return
	}
	writeJSON(w, snap.Plants)
}

func (s *server) getPlant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}
	snap := s.snapshots.Latest()
	if snap == nil {
		handleError(w, http.StatusServiceUnavailable, errNotPolled)
		return
	}
	plant, ok := snap.Plant(id)
	if !ok {
		handleError(w, http.StatusNotFound, errNotFound)
		return
	}
	writeJSON(w, plant)
}

// getProduction serves stored daily production for a month, defaulting to
// the current one. An inverter query parameter narrows it to one inverter.
func (s *server) getProduction(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		handleError(w, http.StatusNotImplemented, errNoStatsStore)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, http.StatusBadRequest, err)
		return
	}

	now := time.Now().UTC()
	year, month := now.Year(), int(now.Month())
	q := r.URL.Query()
	if v := q.Get("year"); v != "" {
		if year, err = strconv.Atoi(v); err != nil {
			handleError(w, http.StatusBadRequest, err)
			return
		}
	}
	if v := q.Get("month"); v != "" {
		if month, err = strconv.Atoi(v); err != nil || month < 1 || month > 12 {
			handleError(w, http.StatusBadRequest, errors.New("month must be between 1 and 12"))
			return
		}
	}
	var inverterID *int
	if v := q.Get("inverter"); v != "" {
		inv, err := strconv.Atoi(v)
		if err != nil {
			handleError(w, http.StatusBadRequest, err)
			return
		}
		inverterID = &inv
	}

	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)
	stats, err := s.stats.GetProductionStats(r.Context(), id, inverterID, from, to)
	if err != nil {
		s.logger.Error("failed to read production stats", zap.Int("plant_id", id), zap.Error(err))
		handleError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("failed to encode response", zap.Error(err))
	}
}

func handleError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
