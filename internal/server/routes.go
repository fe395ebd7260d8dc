package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Get("/docs", handleSwaggerUI())
	r.Get("/docs/*", handleSwaggerUI())

	r.Route("/api", func(r chi.Router) {
		r.Get("/game-state", handleGetGameState(logger, deps.Admin))
		r.With(requireAdminToken(logger, deps.AdminTokenHash)).
			Post("/game-state/toggle", handleToggleGameState(logger, deps.Admin))

		r.Get("/questions", handleQuestions(deps.Controller))
		r.Post("/validate", handleValidate(logger, deps.Controller))
		r.Get("/generate-clue", handleGenerateClue(logger, deps.Controller))

		r.Post("/users/start", handleUserStart(logger, deps.Controller))
		r.Post("/users/complete/{userID}", handleUserComplete(logger, deps.Controller))
		r.Get("/users/leaderboard", handleUserLeaderboard(logger, deps.Leaderboard))
		r.Get("/users/{userID}", handleGetUser(logger, deps.Controller))
		r.Get("/leaderboard", handleLeaderboard(logger, deps.Leaderboard))

		r.Post("/sessions", handleCreateSession(logger, deps.Controller))
		r.Get("/sessions/{sessionID}", handleGetSession(logger, deps.Controller))
		r.Post("/sessions/{sessionID}/answers", handleSubmitAnswer(logger, deps.Controller))

		r.Get("/events", handleEvents(logger, deps.Broker, deps.Admin))
		r.Get("/join-qr", handleJoinQR(logger, deps.PublicURL))

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			writeError(w, http.StatusNotFound, "not found")
		})
	})

	if dirExists(deps.AssetsDir) {
		logger.Info("serving assets", "dir", deps.AssetsDir)
		r.Handle("/public/*", http.StripPrefix("/public/", http.FileServer(http.Dir(deps.AssetsDir))))
	}

	if dirExists(deps.SPADir) {
		logger.Info("serving SPA", "dir", deps.SPADir)
		r.NotFound(handleSPA(deps.SPADir))
	}
}

func dirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}
