// Package results rolls many attempts into per-quiz summary statistics and
// the tabular projection used for export. Read-side only: nothing here
// mutates the attempt store, and a summary computed while submissions land
// mid-aggregation is acceptable (fresh on the next request).
package results

import (
	"context"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
	"github.com/campuslearn/campuslearn-platform/internal/users"
)

// Summary is derived, never persisted; recomputed from the full attempt set
// on every request.
type Summary struct {
	TotalAttempts int     `json:"total_attempts"`
	AvgScore      float64 `json:"avg_score"`
	PassRate      float64 `json:"pass_rate"`
	HighestScore  float64 `json:"highest_score"`
}

// Row is one attempt joined with the student's identity for display/export.
type Row struct {
	AttemptID    string  `json:"attempt_id"`
	StudentName  string  `json:"student_name"`
	StudentEmail string  `json:"student_email"`
	Score        float64 `json:"score"`
	Passed       bool    `json:"passed"`
	TimeTakenSec int     `json:"time_taken_sec"`
	CreatedAt    int64   `json:"created_at"`
}

// Summarize computes count, mean score, pass rate, and max score. All four
// are 0 for an empty attempt set; no division by zero.
func Summarize(attempts []quiz.Attempt) Summary {
	s := Summary{TotalAttempts: len(attempts)}
	if len(attempts) == 0 {
		return s
	}
	var sum float64
	var passed int
	for _, a := range attempts {
		sum += a.Score
		if a.Passed {
			passed++
		}
		if a.Score > s.HighestScore {
			s.HighestScore = a.Score
		}
	}
	n := float64(len(attempts))
	s.AvgScore = sum / n
	s.PassRate = float64(passed) / n * 100
	return s
}

type Aggregator struct {
	quizzes quiz.Store
	users   users.Store
}

func NewAggregator(quizzes quiz.Store, users users.Store) *Aggregator {
	return &Aggregator{quizzes: quizzes, users: users}
}

// QuizResults fetches every attempt for a quiz (unbounded by design) and
// returns the display rows plus the recomputed summary.
func (g *Aggregator) QuizResults(ctx context.Context, quizID string) ([]Row, Summary, error) {
	if _, err := g.quizzes.GetQuizFull(ctx, quizID); err != nil {
		return nil, Summary{}, err
	}
	attempts, err := g.quizzes.ListAttempts(ctx, quizID)
	if err != nil {
		return nil, Summary{}, err
	}
	rows := make([]Row, 0, len(attempts))
	for _, a := range attempts {
		name, email := a.UserID, ""
		if u, err := g.users.Get(ctx, a.UserID); err == nil {
			name, email = u.Name, u.Email
		}
		rows = append(rows, Row{
			AttemptID:    a.ID,
			StudentName:  name,
			StudentEmail: email,
			Score:        a.Score,
			Passed:       a.Passed,
			TimeTakenSec: a.TimeTakenSec,
			CreatedAt:    a.CreatedAt,
		})
	}
	return rows, Summarize(attempts), nil
}
