package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campuslearn/campuslearn-platform/internal/results"
)

// GET /quizzes/{quizID}/results — attempts plus recomputed summary, for the
// quiz owner / admin dashboards.
func ResultsHandler(agg *results.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		rows, summary, err := agg.QuizResults(r.Context(), quizID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"attempts": rows,
			"summary":  summary,
		})
	}
}

// GET /quizzes/{quizID}/results/export — CSV download.
func ExportResultsHandler(agg *results.Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		rows, _, err := agg.QuizResults(r.Context(), quizID)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", results.Filename(quizID)))
		if err := results.WriteCSV(w, rows); err != nil {
			http.Error(w, "export failed", http.StatusInternalServerError)
		}
	}
}
