package quiz

import "context"

type ListOpts struct {
	Q      string
	Limit  int
	Offset int
	// Students only see published quizzes; lecturer/admin see everything.
	ViewerRole string
}

type Store interface {
	PutQuiz(ctx context.Context, q Quiz) error
	// GetQuiz is student-safe: correct answers and explanations stripped.
	GetQuiz(ctx context.Context, id string) (Quiz, error)
	// GetQuizFull returns the quiz with answer keys, for scoring and authoring.
	GetQuizFull(ctx context.Context, id string) (Quiz, error)
	ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error)

	// CreateAttempt loads the quiz's current question set, scores the answer
	// map, and persists a new append-only attempt row with a question
	// snapshot, all in one call. There is no update or delete for attempts.
	CreateAttempt(ctx context.Context, userID, quizID string, answers map[string]string, timeTakenSec int) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	ListAttempts(ctx context.Context, quizID string) ([]Attempt, error)
}

// filterAnswers drops keys that do not belong to the quiz's question set,
// so a persisted attempt's answer map is always a subset of the quiz's
// question ids no matter what the client submitted.
func filterAnswers(qs []Question, answers map[string]string) map[string]string {
	out := make(map[string]string, len(answers))
	for _, q := range qs {
		if v, ok := answers[q.ID]; ok {
			out[q.ID] = v
		}
	}
	return out
}

// stripAnswerKeys hides grading data from student-facing reads.
func stripAnswerKeys(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	for i := range out {
		out[i].CorrectAnswer = ""
		out[i].Explanation = ""
	}
	return out
}
