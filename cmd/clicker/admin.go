package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AccelByte/extend-idle-progression/pkg/errors"
	"github.com/AccelByte/extend-idle-progression/pkg/repository"
	"github.com/AccelByte/extend-idle-progression/pkg/session"
)

const readyTimeout = 2 * time.Second

// sessionResponse is the JSON body of GET /api/v1/sessions/{id}.
type sessionResponse struct {
	ID                string  `json:"id"`
	Slot              string  `json:"slot"`
	Money             float64 `json:"money"`
	PassiveIncome     float64 `json:"passive_income"`
	Rank              string  `json:"rank"`
	NextRank          string  `json:"next_rank,omitempty"`
	NextRankThreshold float64 `json:"next_rank_threshold,omitempty"`
	TotalClicks       int64   `json:"total_clicks"`
	GameTimeMs        int64   `json:"game_time_ms"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// newAdminRouter serves health checks, Prometheus metrics, a view of open
// sessions and the catalog reload and slot delete operations.
func newAdminRouter(manager *session.Manager, repo repository.SnapshotRepository, gatherer prometheus.Gatherer, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(loggingMiddleware(log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", handleReadyz(repo))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/sessions/{id}", handleGetSession(manager))
		r.Post("/catalog/reload", handleReloadCatalog(manager))
		r.Delete("/slots", handleDeleteSlots(manager))
		r.Delete("/slots/{slot}", handleDeleteSlots(manager))
	})

	return r
}

func handleReadyz(repo repository.SnapshotRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if _, err := repo.ListSlots(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{
				Code:    errors.ErrCodeDatabaseError,
				Message: err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func handleGetSession(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s, err := manager.Get(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.HasCode(err, errors.ErrCodeSessionNotFound) {
				status = http.StatusNotFound
			}
			writeJSON(w, status, errorResponse{Code: errors.ErrCodeSessionNotFound, Message: err.Error()})
			return
		}

		st := s.Status()
		writeJSON(w, http.StatusOK, sessionResponse{
			ID:                s.ID,
			Slot:              s.Slot,
			Money:             st.Money,
			PassiveIncome:     st.PassiveIncome,
			Rank:              st.CurrentRank,
			NextRank:          st.NextRank,
			NextRankThreshold: st.NextRankThreshold,
			TotalClicks:       st.Stats.TotalClicks,
			GameTimeMs:        st.Now.Milliseconds(),
		})
	}
}

func handleReloadCatalog(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := manager.ReloadCatalog(); err != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Code:    errors.ErrCodeConfigInvalid,
				Message: err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}

// handleDeleteSlots deletes the slot in the path, or every ?slot= value on
// the collection route.
func handleDeleteSlots(manager *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slots := r.URL.Query()["slot"]
		if slot := chi.URLParam(r, "slot"); slot != "" {
			slots = []string{slot}
		}
		if len(slots) == 0 {
			writeError(w, errors.ErrValidationFailed("slot", "at least one slot is required"))
			return
		}

		if err := manager.DeleteSlots(r.Context(), slots...); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// writeError maps a ProgressionError code to an HTTP status. Anything else is
// a 500.
func writeError(w http.ResponseWriter, err error) {
	var pe *errors.ProgressionError
	if !stderrors.As(err, &pe) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Code: "INTERNAL", Message: err.Error()})
		return
	}

	status := http.StatusInternalServerError
	switch pe.Code {
	case errors.ErrCodeValidationFailed:
		status = http.StatusBadRequest
	case errors.ErrCodeSessionNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeSlotInUse:
		status = http.StatusConflict
	}
	writeJSON(w, status, errorResponse{Code: pe.Code, Message: err.Error()})
}

func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("Admin request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
