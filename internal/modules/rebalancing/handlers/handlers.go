// Package handlers provides HTTP handlers for rebalancing operations.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aristath/rebalancer/internal/modules/history"
	"github.com/aristath/rebalancer/internal/modules/portfolio"
	"github.com/aristath/rebalancer/internal/modules/rebalancing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxRequestBytes caps the size of an optimize request body
const maxRequestBytes = 4 << 20

// Optimizer computes rebalance plans. *rebalancing.Service satisfies it.
type Optimizer interface {
	Optimize(ctx context.Context, req rebalancing.Request) (*rebalancing.Outcome, error)
}

// RunReader reads recorded runs. *history.Repository satisfies it.
type RunReader interface {
	Get(ctx context.Context, id string) (*history.Run, error)
	List(ctx context.Context, limit int) ([]history.Summary, error)
}

// Handler handles rebalancing HTTP requests
type Handler struct {
	optimizer Optimizer
	runs      RunReader // nil when history is disabled
	log       zerolog.Logger
}

// NewHandler creates a new rebalancing handler
func NewHandler(
	optimizer Optimizer,
	runs RunReader,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		optimizer: optimizer,
		runs:      runs,
		log:       log.With().Str("handler", "rebalancing").Logger(),
	}
}

// HandleOptimize handles POST /api/rebalancing/optimize
//
// The body is a rebalance request in JSON, or YAML when the Content-Type says so.
// 200 carries an optimal plan, 422 means the solver produced no plan.
// A failed history write is reported in metadata.warning.
func (h *Handler) HandleOptimize(w http.ResponseWriter, r *http.Request) {
	format := portfolio.FormatJSON
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		format = portfolio.FormatYAML
	}

	req, err := portfolio.DecodeRequest(http.MaxBytesReader(w, r.Body, maxRequestBytes), format)
	if err != nil {
		h.log.Debug().Err(err).Msg("Rejected rebalance request")
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	out, err := h.optimizer.Optimize(r.Context(), req)
	if err != nil {
		if errors.Is(err, rebalancing.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		if out == nil {
			h.log.Error().Err(err).Msg("Failed to optimize rebalance request")
			h.writeError(w, http.StatusInternalServerError, err)
			return
		}
		// The plan is still returned when only the history write failed
		h.log.Warn().Err(err).Str("run_id", out.RunID).Msg("Rebalance run not recorded")
	}

	status := http.StatusOK
	if !out.Optimal() {
		status = http.StatusUnprocessableEntity
	}

	metadata := map[string]interface{}{
		"timestamp":   time.Now().Format(time.RFC3339),
		"status":      out.Status.String(),
		"trade_count": len(out.Plan.Trades()),
	}
	if err != nil {
		metadata["warning"] = err.Error()
	}

	response := map[string]interface{}{
		"data":     out,
		"metadata": metadata,
	}

	h.writeJSON(w, status, response)
}

// HandleListRuns handles GET /api/rebalancing/runs?limit=N
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("run history is disabled"))
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	runs, err := h.runs.List(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list rebalance runs")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	response := map[string]interface{}{
		"data": runs,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
			"count":     len(runs),
			"limit":     limit,
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleGetRun handles GET /api/rebalancing/runs/{id}
func (h *Handler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	if h.runs == nil {
		h.writeError(w, http.StatusServiceUnavailable, errors.New("run history is disabled"))
		return
	}

	run, err := h.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.log.Error().Err(err).Msg("Failed to get rebalance run")
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	response := map[string]interface{}{
		"data": run,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// writeError writes an error envelope
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
