package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
	"github.com/campuslearn/campuslearn-platform/internal/rbac"
	"github.com/campuslearn/campuslearn-platform/internal/results"
	"github.com/campuslearn/campuslearn-platform/internal/users"
)

// asUser stamps subject+role into the context the way JWTMiddleware would.
func asUser(sub, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := rbac.WithSubject(r.Context(), sub)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestRouter(store quiz.Store, userStore users.Store, sub, role string) *chi.Mux {
	agg := results.NewAggregator(store, userStore)
	r := chi.NewRouter()
	r.Use(asUser(sub, role))
	r.Get("/quizzes/{quizID}", GetQuizHandler(store))
	r.Post("/quizzes", CreateQuizHandler(store))
	r.Post("/quizzes/{quizID}/attempts", SubmitAttemptHandler(store))
	r.Get("/quizzes/{quizID}/attempts/{attemptID}", GetAttemptHandler(store))
	r.Get("/quizzes/{quizID}/results", ResultsHandler(agg))
	r.Get("/quizzes/{quizID}/results/export", ExportResultsHandler(agg))
	return r
}

func seedStores(t *testing.T) (quiz.Store, users.Store) {
	t.Helper()
	ctx := context.Background()
	qs := quiz.NewInMemoryStore()
	us := users.NewInMemoryStore()
	err := qs.PutQuiz(ctx, quiz.Quiz{
		ID:        "quiz-1",
		Title:     "Databases",
		PassMark:  50,
		Published: true,
		Questions: []quiz.Question{
			{ID: "q1", Text: "ACID's A?", Options: []string{"Atomicity", "Avail", "Async", "Attr"}, CorrectAnswer: "Atomicity", Points: 1},
			{ID: "q2", Text: "SQL is...", Options: []string{"declarative", "imperative", "binary", "magic"}, CorrectAnswer: "declarative", Points: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	_ = us.Put(ctx, users.User{ID: "stu-1", Name: "Student One", Email: "s1@uni.edu", Role: "student"})
	return qs, us
}

func TestSubmitAttemptCreatesRow(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "stu-1", "student")

	body := `{"answers":{"q1":"Atomicity","q2":"imperative"},"time_taken_sec":73}`
	req := httptest.NewRequest("POST", "/quizzes/quiz-1/attempts", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["id"] == "" {
		t.Fatal("response must carry the new attempt id")
	}

	a, err := qs.GetAttempt(context.Background(), resp["id"])
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if a.Score != 50 || !a.Passed || a.UserID != "stu-1" || a.TimeTakenSec != 73 {
		t.Fatalf("persisted attempt = %+v", a)
	}
}

func TestSubmitAttemptMissingTimeTakenRejected(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "stu-1", "student")

	req := httptest.NewRequest("POST", "/quizzes/quiz-1/attempts", strings.NewReader(`{"answers":{"q1":"Atomicity"}}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	// Rejected before scoring: no attempt row created.
	attempts, _ := qs.ListAttempts(context.Background(), "quiz-1")
	if len(attempts) != 0 {
		t.Fatalf("attempts = %d, want 0", len(attempts))
	}
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "stu-1", "student")

	req := httptest.NewRequest("POST", "/quizzes/nope/attempts", strings.NewReader(`{"answers":{},"time_taken_sec":5}`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGetAttemptOwnershipDoesNotLeakExistence(t *testing.T) {
	qs, us := seedStores(t)
	a, err := qs.CreateAttempt(context.Background(), "stu-1", "quiz-1", map[string]string{"q1": "Atomicity"}, 30)
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}

	// Owner reads fine.
	owner := newTestRouter(qs, us, "stu-1", "student")
	w := httptest.NewRecorder()
	owner.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/quiz-1/attempts/"+a.ID, nil))
	if w.Code != http.StatusOK {
		t.Fatalf("owner status = %d", w.Code)
	}

	// Another student gets the exact same response as a genuine miss.
	other := newTestRouter(qs, us, "stu-2", "student")
	wForbidden := httptest.NewRecorder()
	other.ServeHTTP(wForbidden, httptest.NewRequest("GET", "/quizzes/quiz-1/attempts/"+a.ID, nil))
	wMissing := httptest.NewRecorder()
	other.ServeHTTP(wMissing, httptest.NewRequest("GET", "/quizzes/quiz-1/attempts/does-not-exist", nil))
	if wForbidden.Code != http.StatusNotFound {
		t.Fatalf("non-owner status = %d, want 404", wForbidden.Code)
	}
	if wForbidden.Code != wMissing.Code || wForbidden.Body.String() != wMissing.Body.String() {
		t.Fatalf("forbidden (%d %q) and missing (%d %q) must be indistinguishable",
			wForbidden.Code, wForbidden.Body.String(), wMissing.Code, wMissing.Body.String())
	}

	// Elevated role reads any attempt.
	lecturer := newTestRouter(qs, us, "lect-1", "lecturer")
	wLect := httptest.NewRecorder()
	lecturer.ServeHTTP(wLect, httptest.NewRequest("GET", "/quizzes/quiz-1/attempts/"+a.ID, nil))
	if wLect.Code != http.StatusOK {
		t.Fatalf("lecturer status = %d", wLect.Code)
	}
}

func TestDraftQuizInvisibleToStudents(t *testing.T) {
	qs, us := seedStores(t)
	err := qs.PutQuiz(context.Background(), quiz.Quiz{
		ID:        "draft-1",
		Title:     "Unreleased",
		PassMark:  50,
		Published: false,
		Questions: []quiz.Question{
			{ID: "q1", Text: "?", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a", Points: 1},
		},
	})
	if err != nil {
		t.Fatalf("seed draft: %v", err)
	}

	student := newTestRouter(qs, us, "stu-1", "student")

	// Direct read by id is a miss for students.
	w := httptest.NewRecorder()
	student.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/draft-1", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("student GET draft status = %d, want 404", w.Code)
	}

	// So is submitting against it; no row may be created.
	w = httptest.NewRecorder()
	student.ServeHTTP(w, httptest.NewRequest("POST", "/quizzes/draft-1/attempts",
		strings.NewReader(`{"answers":{"q1":"a"},"time_taken_sec":10}`)))
	if w.Code != http.StatusNotFound {
		t.Fatalf("student POST draft status = %d, want 404", w.Code)
	}
	attempts, _ := qs.ListAttempts(context.Background(), "draft-1")
	if len(attempts) != 0 {
		t.Fatalf("attempts on draft = %d, want 0", len(attempts))
	}

	// Authors still see and can exercise their drafts.
	lecturer := newTestRouter(qs, us, "lect-1", "lecturer")
	w = httptest.NewRecorder()
	lecturer.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/draft-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("lecturer GET draft status = %d, want 200", w.Code)
	}
}

func TestSubmitAttemptIgnoresFabricatedQuestionIDs(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "stu-1", "student")

	body := `{"answers":{"q1":"Atomicity","bogus-question":"whatever"},"time_taken_sec":31}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/quizzes/quiz-1/attempts", strings.NewReader(body)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	a, err := qs.GetAttempt(context.Background(), resp["id"])
	if err != nil {
		t.Fatalf("get attempt: %v", err)
	}
	if _, ok := a.Answers["bogus-question"]; ok {
		t.Fatalf("fabricated key persisted: %v", a.Answers)
	}
}

func TestGetQuizStudentViewStripsKeys(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "stu-1", "student")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/quiz-1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var q quiz.Quiz
	if err := json.Unmarshal(w.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, qu := range q.Questions {
		if qu.CorrectAnswer != "" {
			t.Fatalf("student payload leaked answer key: %+v", qu)
		}
	}
}

func TestCreateQuizValidation(t *testing.T) {
	qs, us := seedStores(t)
	r := newTestRouter(qs, us, "lect-1", "lecturer")

	bad := `{"title":"Broken","difficulty":"EASY","pass_mark":50,
		"questions":[{"text":"?","options":["a","b","c"],"correct_answer":"a","points":1}]}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/quizzes", strings.NewReader(bad)))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 for 3-option question", w.Code)
	}

	good := `{"title":"OK","difficulty":"EASY","pass_mark":50,
		"questions":[{"text":"?","options":["a","b","c","d"],"correct_answer":"a","points":1}]}`
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/quizzes", strings.NewReader(good)))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestResultsEndpointAndExport(t *testing.T) {
	qs, us := seedStores(t)
	ctx := context.Background()
	_, _ = qs.CreateAttempt(ctx, "stu-1", "quiz-1", map[string]string{"q1": "Atomicity", "q2": "declarative"}, 120)
	_, _ = qs.CreateAttempt(ctx, "stu-1", "quiz-1", map[string]string{}, 15)

	r := newTestRouter(qs, us, "lect-1", "lecturer")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/quiz-1/results", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("results status = %d", w.Code)
	}
	var payload struct {
		Attempts []results.Row   `json:"attempts"`
		Summary  results.Summary `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Summary.TotalAttempts != 2 || payload.Summary.HighestScore != 100 || payload.Summary.PassRate != 50 {
		t.Fatalf("summary = %+v", payload.Summary)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/quiz-1/results/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "quiz_results_quiz-1.csv") {
		t.Fatalf("content disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("Student,Email,Score,Result,Time Taken,Date")) {
		t.Fatalf("csv body = %q", w.Body.String())
	}
}

func TestRBACGuardsResults(t *testing.T) {
	qs, us := seedStores(t)
	agg := results.NewAggregator(qs, us)
	r := chi.NewRouter()
	r.Use(asUser("stu-1", "student"))
	r.With(rbac.Require("results:view")).
		Get("/quizzes/{quizID}/results", ResultsHandler(agg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/quizzes/quiz-1/results", nil))
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for student on results", w.Code)
	}
}
