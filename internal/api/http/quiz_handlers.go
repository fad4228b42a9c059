package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
	"github.com/campuslearn/campuslearn-platform/internal/rbac"
)

// GET /quizzes?q=...&limit=50&offset=0
// Students only see published quizzes; the store applies the scoping.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.ListQuizzes(r.Context(), quiz.ListOpts{
			Q:          strings.TrimSpace(r.URL.Query().Get("q")),
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
			Offset:     parseIntDefault(r.URL.Query().Get("offset"), 0),
			ViewerRole: rbac.RoleFromContext(r.Context()),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// GET /quizzes/{quizID} — student-safe view, answer keys stripped.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "quizID")
		role := rbac.RoleFromContext(r.Context())
		var (
			q   quiz.Quiz
			err error
		)
		if rbac.Has(role, "quiz:edit") {
			q, err = store.GetQuizFull(r.Context(), id)
		} else {
			q, err = store.GetQuiz(r.Context(), id)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		// Drafts are invisible to students even by direct id.
		if !q.Published && !rbac.Has(role, "quiz:edit") {
			writeError(w, quiz.ErrQuizNotFound)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

// POST /quizzes — authoring (lecturer/admin), validated.
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		for i := range q.Questions {
			if q.Questions[i].ID == "" {
				q.Questions[i].ID = uuid.NewString()
			}
			if q.Questions[i].Points == 0 {
				q.Questions[i].Points = 1
			}
		}
		if err := quiz.Validate(q); err != nil {
			writeError(w, err)
			return
		}
		if err := store.PutQuiz(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": q.ID})
	}
}
