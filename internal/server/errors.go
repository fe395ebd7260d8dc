package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/playperu/cluehunt/internal/hunt"
	"github.com/playperu/cluehunt/internal/quiz"
)

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, hunt.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, hunt.ErrNotFound), errors.Is(err, quiz.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, hunt.ErrConflict), errors.Is(err, hunt.ErrGameNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError reports err with its mapped status. Internal failures
// are logged and hidden behind a generic message.
func writeDomainError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, publicMessage(err))
}

// publicMessage drops the trailing error class from a wrapped sentinel,
// so "name is required: invalid input" reads "name is required".
func publicMessage(err error) string {
	msg := err.Error()
	for _, class := range []error{hunt.ErrInvalidInput, hunt.ErrNotFound, hunt.ErrConflict} {
		msg = strings.TrimSuffix(msg, ": "+class.Error())
	}
	return msg
}
