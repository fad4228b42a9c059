package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors to HTTP codes. ErrForbidden on a resource
// read deliberately reports the same message and code as a miss, so the
// response never reveals whether the resource exists.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrQuizNotFound):
		http.Error(w, "quiz not found", http.StatusNotFound)
	case errors.Is(err, quiz.ErrAttemptNotFound), errors.Is(err, quiz.ErrForbidden):
		http.Error(w, "attempt not found", http.StatusNotFound)
	case errors.Is(err, quiz.ErrValidation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
