package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/cluehunt/internal/hunt"
)

// usersLeaderboardLimit is the size of the /api/users/leaderboard list.
const usersLeaderboardLimit = 50

type StartRequest struct {
	Name string `json:"name"`
}

// User is a session in the shape the stateless client expects.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	StartTime    time.Time  `json:"startTime"`
	EndTime      *time.Time `json:"endTime,omitempty"`
	TotalTime    *int64     `json:"totalTime,omitempty"`
	Completed    bool       `json:"completed"`
	CurrentIndex int        `json:"currentIndex"`
}

type UserResponse struct {
	OK   bool `json:"ok"`
	User User `json:"user"`
}

type UserLeaderboardEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	TotalTime int64     `json:"totalTime"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

type UserLeaderboardResponse struct {
	OK    bool                   `json:"ok"`
	Users []UserLeaderboardEntry `json:"users"`
}

func toUser(s hunt.Session) User {
	return User{
		ID:           s.ID,
		Name:         s.Name,
		StartTime:    s.StartTime,
		EndTime:      s.EndTime,
		TotalTime:    s.TotalTime,
		Completed:    s.Completed,
		CurrentIndex: s.Index,
	}
}

func handleUserStart(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, _, err := ctrl.Start(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, UserResponse{OK: true, User: toUser(sess)})
	}
}

func handleUserComplete(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := ctrl.Complete(r.Context(), chi.URLParam(r, "userID"))
		switch {
		case errors.Is(err, hunt.ErrSessionNotFound):
			writeError(w, http.StatusNotFound, "user not found")
			return
		case errors.Is(err, hunt.ErrSessionAlreadyCompleted):
			// The stateless client treats a repeat completion as a bad request.
			writeError(w, http.StatusBadRequest, "user already completed")
			return
		case err != nil:
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, UserResponse{OK: true, User: toUser(sess)})
	}
}

func handleGetUser(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := ctrl.Session(r.Context(), chi.URLParam(r, "userID"))
		if errors.Is(err, hunt.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, UserResponse{OK: true, User: toUser(sess)})
	}
}

func handleUserLeaderboard(logger *slog.Logger, board *hunt.Leaderboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := board.Top(r.Context(), usersLeaderboardLimit)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		users := make([]UserLeaderboardEntry, 0, len(entries))
		for _, e := range entries {
			users = append(users, UserLeaderboardEntry{
				ID:        e.SessionID,
				Name:      e.Name,
				TotalTime: e.TotalTime,
				StartTime: e.StartTime,
				EndTime:   e.EndTime,
			})
		}
		writeJSON(w, http.StatusOK, UserLeaderboardResponse{OK: true, Users: users})
	}
}
