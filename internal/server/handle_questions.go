package server

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/playperu/cluehunt/internal/hunt"
)

type ValidateRequest struct {
	QuestionID *int   `json:"questionId"`
	Answer     string `json:"answer"`
}

type ValidateResponse struct {
	OK      bool `json:"ok"`
	Correct bool `json:"correct"`
}

func handleQuestions(ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ctrl.Bank().PublicList())
	}
}

// handleValidate checks one answer with no session attached.
func handleValidate(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ValidateRequest
		if err := readJSON(r, &req); err != nil || req.QuestionID == nil {
			writeError(w, http.StatusBadRequest, "invalid question id")
			return
		}

		correct, err := ctrl.Validate(*req.QuestionID, req.Answer)
		if err != nil {
			if statusFor(err) == http.StatusBadRequest {
				writeError(w, http.StatusBadRequest, "invalid question id")
				return
			}
			writeDomainError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ValidateResponse{OK: true, Correct: correct})
	}
}

// handleGenerateClue streams a freshly rendered clue. A missing or
// unparsable questionId means question 1.
func handleGenerateClue(logger *slog.Logger, ctrl *hunt.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(r.URL.Query().Get("questionId"))
		if err != nil || id == 0 {
			id = 1
		}

		cl, err := ctrl.ClueFor(id)
		if err != nil {
			logger.Error("clue generation failed", "question_id", id, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "image generation failed"})
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(cl.PNG)
	}
}
