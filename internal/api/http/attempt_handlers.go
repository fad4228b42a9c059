package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
	"github.com/campuslearn/campuslearn-platform/internal/rbac"
)

type submitRequest struct {
	Answers      map[string]string `json:"answers"`
	TimeTakenSec *int              `json:"time_taken_sec"`
}

// POST /quizzes/{quizID}/attempts
// One call scores and persists the attempt; nothing is stored before this,
// and the row is never updated afterward. A malformed payload (missing
// time_taken_sec) is rejected before scoring so no row is created.
func SubmitAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		userID := rbac.SubjectFromContext(r.Context())

		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.TimeTakenSec == nil {
			http.Error(w, "time_taken_sec required", http.StatusUnprocessableEntity)
			return
		}
		timeTaken := *req.TimeTakenSec
		if timeTaken < 0 {
			timeTaken = 0
		}

		// Students may only attempt published quizzes; a draft looks like a
		// miss, same as the catalog read.
		role := rbac.RoleFromContext(r.Context())
		if !rbac.Has(role, "quiz:edit") {
			q, err := store.GetQuiz(r.Context(), quizID)
			if err != nil {
				writeError(w, err)
				return
			}
			if !q.Published {
				writeError(w, quiz.ErrQuizNotFound)
				return
			}
		}

		a, err := store.CreateAttempt(r.Context(), userID, quizID, req.Answers, timeTaken)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": a.ID})
	}
}

// GET /quizzes/{quizID}/attempts/{attemptID}
// Readable by the attempt's owner or an elevated role. A non-owner gets the
// same "attempt not found" as a miss.
func GetAttemptHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		attemptID := chi.URLParam(r, "attemptID")
		sub := rbac.SubjectFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())

		a, err := store.GetAttempt(r.Context(), attemptID)
		if err != nil {
			writeError(w, err)
			return
		}
		if a.QuizID != quizID {
			writeError(w, quiz.ErrAttemptNotFound)
			return
		}
		if a.UserID != sub && !rbac.Has(role, "attempt:view-all") {
			writeError(w, quiz.ErrForbidden)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}
