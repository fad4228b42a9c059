package quiz

// Difficulty buckets a quiz for catalog display and filtering.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
	// Exactly four ordered options. The correct answer is stored as the
	// literal option text, so authoring validation must keep it equal to
	// one of the options.
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer,omitempty"`
	Explanation   string   `json:"explanation,omitempty"`
	Points        int      `json:"points"`
}

type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Difficulty  Difficulty `json:"difficulty"`
	// Minutes; 0 = unlimited.
	TimeLimitMin int     `json:"time_limit_min"`
	PassMark     float64 `json:"pass_mark"`
	Published    bool    `json:"published"`
	CourseID     string  `json:"course_id,omitempty"`

	Questions []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// QuizSummary is the catalog-listing projection (no question bodies).
type QuizSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Difficulty   Difficulty `json:"difficulty"`
	TimeLimitMin int        `json:"time_limit_min"`
	PassMark     float64    `json:"pass_mark"`
	Published    bool       `json:"published"`
	NumQuestions int        `json:"num_questions"`
	CreatedAt    int64      `json:"created_at"`
}

// Attempt is one user's completed run through a quiz. Rows are created
// exactly once at submission and never mutated afterward.
type Attempt struct {
	ID      string            `json:"id"`
	QuizID  string            `json:"quiz_id"`
	UserID  string            `json:"user_id"`
	Answers map[string]string `json:"answers"` // question id -> selected option text

	// Snapshot of the question set at submission time, so later edits to
	// the quiz cannot reinterpret this attempt.
	Questions []Question `json:"questions,omitempty"`

	Score        float64 `json:"score"` // percentage
	Passed       bool    `json:"passed"`
	TimeTakenSec int     `json:"time_taken_sec"`
	CreatedAt    int64   `json:"created_at"`
}
