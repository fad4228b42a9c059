package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"

	api "github.com/campuslearn/campuslearn-platform/internal/api/http"
	auth "github.com/campuslearn/campuslearn-platform/internal/auth/middleware"
	"github.com/campuslearn/campuslearn-platform/internal/config"
	"github.com/campuslearn/campuslearn-platform/internal/db"
	"github.com/campuslearn/campuslearn-platform/internal/quiz"
	"github.com/campuslearn/campuslearn-platform/internal/rbac"
	"github.com/campuslearn/campuslearn-platform/internal/results"
	"github.com/campuslearn/campuslearn-platform/internal/users"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	quizStore := quiz.NewSQLStore(dbh, cfg.DBDriver)
	userStore := users.NewSQLStore(dbh)
	agg := results.NewAggregator(quizStore, userStore)

	if err := seedAdmin(ctx, userStore, cfg); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, userStore))

	// Protected API (JWT → subject+role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizStore))

		// Student flow: submit-once, read-own
		pr.With(rbac.Require("attempt:create")).
			Post("/quizzes/{quizID}/attempts", api.SubmitAttemptHandler(quizStore))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).
			Get("/quizzes/{quizID}/attempts/{attemptID}", api.GetAttemptHandler(quizStore))

		// Lecturer/admin dashboards
		pr.With(rbac.Require("results:view")).
			Get("/quizzes/{quizID}/results", api.ResultsHandler(agg))
		pr.With(rbac.Require("results:export")).
			Get("/quizzes/{quizID}/results/export", api.ExportResultsHandler(agg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func seedAdmin(ctx context.Context, store users.Store, cfg config.Config) error {
	_, err := store.GetByEmail(ctx, cfg.AdminEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, users.ErrNotFound) {
		return err
	}
	return store.Put(ctx, users.User{
		ID:           uuid.NewString(),
		Name:         cfg.AdminName,
		Email:        cfg.AdminEmail,
		Role:         "admin",
		PasswordHash: cfg.AdminPassHash,
	})
}
