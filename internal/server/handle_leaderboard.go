package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/cluehunt/internal/hunt"
)

type LeaderboardEntry struct {
	Name      string `json:"name"`
	TotalTime int64  `json:"totalTime"`
}

// handleLeaderboard returns the bare ranked array. ?limit overrides the
// configured size, capped by the service.
func handleLeaderboard(logger *slog.Logger, board *hunt.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "limit must be a positive integer")
				return
			}
			limit = n
		}

		entries, err := board.Top(r.Context(), limit)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		resp := make([]LeaderboardEntry, 0, len(entries))
		for _, e := range entries {
			resp = append(resp, LeaderboardEntry{Name: e.Name, TotalTime: e.TotalTime})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
