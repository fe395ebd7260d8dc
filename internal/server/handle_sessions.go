package server

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/cluehunt/internal/hunt"
	"github.com/playperu/cluehunt/internal/quiz"
)

type SessionResponse struct {
	OK      bool `json:"ok"`
	Session User `json:"session"`
}

type CreateSessionResponse struct {
	OK        bool                  `json:"ok"`
	Session   User                  `json:"session"`
	Questions []quiz.PublicQuestion `json:"questions"`
}

type SubmitAnswerRequest struct {
	QuestionID *int   `json:"questionId"`
	Answer     string `json:"answer"`
}

type SubmitAnswerResponse struct {
	OK        bool   `json:"ok"`
	Correct   bool   `json:"correct"`
	Index     int    `json:"index"`
	Completed bool   `json:"completed,omitempty"`
	TotalTime *int64 `json:"totalTime,omitempty"`
	// Clue is a data URL of the PNG for the question just solved.
	Clue string `json:"clue,omitempty"`
}

func handleCreateSession(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, questions, err := ctrl.Start(r.Context(), req.Name)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusCreated, CreateSessionResponse{
			OK:        true,
			Session:   toUser(sess),
			Questions: questions,
		})
	}
}

func handleGetSession(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := ctrl.Session(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, SessionResponse{OK: true, Session: toUser(sess)})
	}
}

func handleSubmitAnswer(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SubmitAnswerRequest
		if err := readJSON(r, &req); err != nil || req.QuestionID == nil {
			writeError(w, http.StatusBadRequest, "questionId is required")
			return
		}

		res, err := ctrl.SubmitAnswer(r.Context(), chi.URLParam(r, "sessionID"), *req.QuestionID, req.Answer)
		if err != nil {
			writeDomainError(w, r, logger, err)
			return
		}

		resp := SubmitAnswerResponse{
			OK:        true,
			Correct:   res.Correct,
			Index:     res.Index,
			Completed: res.Completed,
		}
		if res.Completed {
			total := res.TotalTime
			resp.TotalTime = &total
		}
		if res.Clue != nil {
			resp.Clue = "data:image/png;base64," + base64.StdEncoding.EncodeToString(res.Clue.PNG)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
