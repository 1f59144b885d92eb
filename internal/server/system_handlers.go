package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/aristath/rebalancer/internal/database"
	"github.com/aristath/rebalancer/internal/modules/optimization/solver"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	historyDB   *database.DB // nil when run history is disabled
	engine      string

	// Replaceable in tests
	systemStats func() (float64, float64)
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, historyDB *database.DB, engine string) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		historyDB:   historyDB,
		engine:      engine,
	}
	h.systemStats = h.getSystemStats
	return h
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status         string   `json:"status"`
	UptimeSeconds  int64    `json:"uptime_seconds"`
	StartedAt      string   `json:"started_at"`
	CPUPercent     float64  `json:"cpu_percent"`
	MemoryPercent  float64  `json:"memory_percent"`
	Goroutines     int      `json:"goroutines"`
	SolverEngine   string   `json:"solver_engine"`
	Engines        []string `json:"engines"`
	HistoryEnabled bool     `json:"history_enabled"`
}

// DatabaseStatsResponse represents history database statistics
type DatabaseStatsResponse struct {
	Enabled     bool            `json:"enabled"`
	Path        string          `json:"path,omitempty"`
	Stats       *database.Stats `json:"stats,omitempty"`
	SizeMB      float64         `json:"size_mb"`
	LastChecked string          `json:"last_checked"`
}

// HandleSystemStatus returns uptime, resource usage and solver configuration
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	cpuPercent, memPercent := h.systemStats()

	response := SystemStatusResponse{
		Status:         "healthy",
		UptimeSeconds:  int64(time.Since(h.startupTime).Seconds()),
		StartedAt:      h.startupTime.Format(time.RFC3339),
		CPUPercent:     cpuPercent,
		MemoryPercent:  memPercent,
		Goroutines:     runtime.NumGoroutine(),
		SolverEngine:   h.engine,
		Engines:        solver.Engines(),
		HistoryEnabled: h.historyDB != nil,
	}

	h.writeJSON(w, http.StatusOK, response)
}

// HandleDatabaseStats returns history database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	response := DatabaseStatsResponse{
		Enabled:     h.historyDB != nil,
		LastChecked: time.Now().Format(time.RFC3339),
	}

	if h.historyDB != nil {
		stats, err := h.historyDB.GetStats()
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to get history database stats")
			h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		response.Path = h.historyDB.Path()
		response.Stats = stats
		response.SizeMB = float64(stats.SizeBytes) / 1024 / 1024
	}

	h.writeJSON(w, http.StatusOK, response)
}

// getSystemStats calculates CPU and RAM usage percentages
// Uses a short interval (100ms) to keep the endpoint responsive
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
