package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) error {
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO quizzes (id,title,description,difficulty,time_limit_min,pass_mark,published,course_id,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, description=EXCLUDED.description,
			difficulty=EXCLUDED.difficulty, time_limit_min=EXCLUDED.time_limit_min,
			pass_mark=EXCLUDED.pass_mark, published=EXCLUDED.published,
			course_id=EXCLUDED.course_id, questions_json=EXCLUDED.questions_json`,
		q.ID, q.Title, q.Description, string(q.Difficulty), q.TimeLimitMin, q.PassMark, q.Published, q.CourseID, string(qj), q.CreatedAt)
	return err
}

func (s *SQLStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := s.GetQuizFull(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	// Hide grading data when serving to students (parity with in-memory store).
	q.Questions = stripAnswerKeys(q.Questions)
	return q, nil
}

func (s *SQLStore) GetQuizFull(ctx context.Context, id string) (Quiz, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,description,difficulty,time_limit_min,pass_mark,published,course_id,questions_json,created_at
		FROM quizzes WHERE id=$1`, id)
	var q Quiz
	var diff, qjson string
	if err := row.Scan(&q.ID, &q.Title, &q.Description, &diff, &q.TimeLimitMin, &q.PassMark, &q.Published, &q.CourseID, &qjson, &q.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, ErrQuizNotFound
		}
		return Quiz{}, err
	}
	q.Difficulty = Difficulty(diff)
	if err := json.Unmarshal([]byte(qjson), &q.Questions); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error) {
	query := `SELECT id,title,difficulty,time_limit_min,pass_mark,published,questions_json,created_at FROM quizzes`
	conds := []string{}
	args := []any{}
	if opts.ViewerRole == "student" {
		published := `published=TRUE`
		if s.driver == "sqlite" {
			published = `published=1`
		}
		conds = append(conds, published)
	}
	if opts.Q != "" {
		args = append(args, "%"+strings.ToLower(opts.Q)+"%")
		conds = append(conds, fmt.Sprintf("LOWER(title) LIKE $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, opts.Limit, opts.Offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []QuizSummary{}
	for rows.Next() {
		var qs QuizSummary
		var diff, qjson string
		if err := rows.Scan(&qs.ID, &qs.Title, &diff, &qs.TimeLimitMin, &qs.PassMark, &qs.Published, &qjson, &qs.CreatedAt); err != nil {
			return nil, err
		}
		qs.Difficulty = Difficulty(diff)
		var questions []Question
		if err := json.Unmarshal([]byte(qjson), &questions); err == nil {
			qs.NumQuestions = len(questions)
		}
		out = append(out, qs)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAttempt(ctx context.Context, userID, quizID string, answers map[string]string, timeTakenSec int) (Attempt, error) {
	// Load the live question set WITH keys for scoring; the same set becomes
	// the attempt's snapshot.
	q, err := s.GetQuizFull(ctx, quizID)
	if err != nil {
		return Attempt{}, err
	}
	answers = filterAnswers(q.Questions, answers)
	res := Score(q, answers)

	aj, err := json.Marshal(answers)
	if err != nil {
		return Attempt{}, err
	}
	qj, err := json.Marshal(q.Questions)
	if err != nil {
		return Attempt{}, err
	}

	a := Attempt{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		UserID:       userID,
		Answers:      answers,
		Questions:    q.Questions,
		Score:        res.ScorePercent,
		Passed:       res.Passed,
		TimeTakenSec: timeTakenSec,
		CreatedAt:    time.Now().Unix(),
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO attempts (id,quiz_id,user_id,answers_json,questions_json,score,passed,time_taken_sec,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.QuizID, a.UserID, string(aj), string(qj), a.Score, a.Passed, a.TimeTakenSec, a.CreatedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,quiz_id,user_id,answers_json,questions_json,score,passed,time_taken_sec,created_at
		FROM attempts WHERE id=$1`, id)
	return scanAttempt(row)
}

func (s *SQLStore) ListAttempts(ctx context.Context, quizID string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id,quiz_id,user_id,answers_json,questions_json,score,passed,time_taken_sec,created_at
		FROM attempts WHERE quiz_id=$1 ORDER BY created_at DESC`, quizID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var ajson, qjson string
	if err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &ajson, &qjson, &a.Score, &a.Passed, &a.TimeTakenSec, &a.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrAttemptNotFound
		}
		return Attempt{}, err
	}
	if err := json.Unmarshal([]byte(ajson), &a.Answers); err != nil {
		a.Answers = map[string]string{}
	}
	if err := json.Unmarshal([]byte(qjson), &a.Questions); err != nil {
		a.Questions = nil
	}
	return a, nil
}
