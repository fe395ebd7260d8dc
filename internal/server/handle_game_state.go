package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/cluehunt/internal/hunt"
)

type GameStateResponse struct {
	Started bool `json:"started"`
}

type ToggleRequest struct {
	Started *bool `json:"started"`
}

type ToggleResponse struct {
	OK      bool `json:"ok"`
	Started bool `json:"started"`
}

func handleGetGameState(logger *slog.Logger, admin *hunt.Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		started, err := admin.State(r.Context())
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, GameStateResponse{Started: started})
	}
}

func handleToggleGameState(logger *slog.Logger, admin *hunt.Admin) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ToggleRequest
		if err := readJSON(r, &req); err != nil || req.Started == nil {
			writeError(w, http.StatusBadRequest, "started must be boolean")
			return
		}

		started, err := admin.SetState(r.Context(), *req.Started)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ToggleResponse{OK: true, Started: started})
	}
}
