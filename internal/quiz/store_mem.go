package quiz

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryStore mirrors the SQL store's semantics for offline runs and tests.
type memoryStore struct {
	mu       sync.RWMutex
	quizzes  map[string]Quiz
	attempts map[string]Attempt
}

func NewInMemoryStore() Store {
	return &memoryStore{
		quizzes:  map[string]Quiz{},
		attempts: map[string]Attempt{},
	}
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	m.quizzes[q.ID] = q
	return nil
}

func (m *memoryStore) GetQuiz(ctx context.Context, id string) (Quiz, error) {
	q, err := m.GetQuizFull(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	q.Questions = stripAnswerKeys(q.Questions)
	return q, nil
}

func (m *memoryStore) GetQuizFull(_ context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrQuizNotFound
	}
	return q, nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]QuizSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []QuizSummary{}
	for _, q := range m.quizzes {
		if opts.ViewerRole == "student" && !q.Published {
			continue
		}
		if opts.Q != "" && !strings.Contains(strings.ToLower(q.Title), strings.ToLower(opts.Q)) {
			continue
		}
		out = append(out, QuizSummary{
			ID:           q.ID,
			Title:        q.Title,
			Difficulty:   q.Difficulty,
			TimeLimitMin: q.TimeLimitMin,
			PassMark:     q.PassMark,
			Published:    q.Published,
			NumQuestions: len(q.Questions),
			CreatedAt:    q.CreatedAt,
		})
	}
	// Newest first, matching the SQL store's ordering.
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return paginate(out, opts.Limit, opts.Offset), nil
}

func (m *memoryStore) CreateAttempt(_ context.Context, userID, quizID string, answers map[string]string, timeTakenSec int) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.quizzes[quizID]
	if !ok {
		return Attempt{}, ErrQuizNotFound
	}
	answers = filterAnswers(q.Questions, answers)
	res := Score(q, answers)
	snapshot := make([]Question, len(q.Questions))
	copy(snapshot, q.Questions)
	a := Attempt{
		ID:           uuid.NewString(),
		QuizID:       quizID,
		UserID:       userID,
		Answers:      answers,
		Questions:    snapshot,
		Score:        res.ScorePercent,
		Passed:       res.Passed,
		TimeTakenSec: timeTakenSec,
		CreatedAt:    time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memoryStore) ListAttempts(_ context.Context, quizID string) ([]Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Attempt{}
	for _, a := range m.attempts {
		if a.QuizID == quizID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt > out[j].CreatedAt })
	return out, nil
}

func paginate(in []QuizSummary, limit, offset int) []QuizSummary {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []QuizSummary{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
