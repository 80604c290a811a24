package handlers

import (
	"context"
	"net/http"

	"feedback-backend/internal/auth"
	"feedback-backend/internal/service"
)

// StatsService is the dashboard aggregation API.
type StatsService interface {
	ComputeStats(ctx context.Context, caller *auth.Identity) (*service.Stats, error)
}

type StatsHandler struct {
	stats StatsService
}

func NewStatsHandler(stats StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// --- GET /stats ---

func (h *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.ComputeStats(r.Context(), auth.FromContext(r.Context()))
	if err != nil {
		writeError(w, r, err, "Failed to fetch statistics")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    stats,
	})
}
