// Package session holds the client-side state of one in-progress quiz
// attempt: question cursor, answer selections, countdown, and the
// submission handshake. Nothing here is durable; the server only learns
// about the attempt when Submit succeeds.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/campuslearn/campuslearn-platform/internal/quiz"
)

type State int

const (
	StateLoading State = iota
	StateInProgress
	StateSubmitting
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "LOADING"
	case StateInProgress:
		return "IN_PROGRESS"
	case StateSubmitting:
		return "SUBMITTING"
	case StateSubmitted:
		return "SUBMITTED"
	}
	return "UNKNOWN"
}

type Direction int

const (
	Next Direction = iota
	Prev
)

// Fetcher loads the quiz definition the session runs against. The view it
// returns is student-safe (no answer keys).
type Fetcher interface {
	GetQuiz(ctx context.Context, id string) (quiz.Quiz, error)
}

// Submitter sends the finished answer map to the server, which scores and
// persists it. Returns the created attempt id.
type Submitter interface {
	SubmitAttempt(ctx context.Context, quizID string, answers map[string]string, timeTakenSec int) (string, error)
}

type Session struct {
	mu sync.Mutex

	fetcher   Fetcher
	submitter Submitter

	state     State
	quiz      quiz.Quiz
	cursor    int
	answers   map[string]string
	startedAt time.Time

	timed     bool
	remaining int // seconds
	expired   bool

	attemptID string

	ticker *time.Ticker
	stop   chan struct{}

	// Called when the user moves forward past an unanswered question.
	// A soft nudge only; never blocks navigation.
	OnUnansweredNext func(questionID string)
}

func New(fetcher Fetcher, submitter Submitter) *Session {
	return &Session{
		fetcher:   fetcher,
		submitter: submitter,
		state:     StateLoading,
		answers:   map[string]string{},
	}
}

// Start fetches the quiz and transitions to IN_PROGRESS. A fetch failure
// aborts the session: the state stays LOADING and the caller returns the
// user to the catalog.
func (s *Session) Start(ctx context.Context, quizID string) error {
	q, err := s.fetcher.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quiz = q
	s.cursor = 0
	s.answers = map[string]string{}
	s.startedAt = time.Now() // monotonic; elapsed survives wall-clock changes
	if q.TimeLimitMin > 0 {
		s.timed = true
		s.remaining = q.TimeLimitMin * 60
	}
	s.state = StateInProgress
	return nil
}

// StartTimer launches the one-second countdown. It owns the ticker and
// guarantees release on every exit path: submission, Close, or context
// cancellation. No-op for untimed quizzes.
func (s *Session) StartTimer(ctx context.Context) {
	s.mu.Lock()
	if !s.timed || s.ticker != nil || s.state != StateInProgress {
		s.mu.Unlock()
		return
	}
	s.ticker = time.NewTicker(time.Second)
	s.stop = make(chan struct{})
	ticker, stop := s.ticker, s.stop
	s.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Tick(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Tick decrements the countdown by one second. At zero it forces submission
// unconditionally, with whatever answers were selected; the idempotency
// guard in submit makes a racing manual click a no-op.
func (s *Session) Tick(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateInProgress || !s.timed || s.expired {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	s.remaining = 0
	s.expired = true
	s.mu.Unlock()

	_ = s.Submit(ctx) // a failed auto-submit is retryable; answers survive
}

// SelectAnswer overwrites the answer for a question. Any question may be
// revisited; the option text is not validated here (scoring treats an
// unknown string as incorrect).
func (s *Session) SelectAnswer(questionID, optionText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return
	}
	s.answers[questionID] = optionText
}

// Navigate moves the cursor one step, clamped to the question range.
// Returns true if the move was forward past an unanswered question.
func (s *Session) Navigate(dir Direction) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || len(s.quiz.Questions) == 0 {
		return false
	}
	warned := false
	switch dir {
	case Next:
		cur := s.quiz.Questions[s.cursor]
		if _, ok := s.answers[cur.ID]; !ok {
			warned = true
			if s.OnUnansweredNext != nil {
				s.OnUnansweredNext(cur.ID)
			}
		}
		if s.cursor < len(s.quiz.Questions)-1 {
			s.cursor++
		}
	case Prev:
		if s.cursor > 0 {
			s.cursor--
		}
	}
	return warned
}

// Submit sends the answer map to the server. Idempotent: while SUBMITTING
// or after SUBMITTED, further calls are no-ops, so the manual click and the
// timer expiry can never create two attempt rows. On failure the session
// reverts to IN_PROGRESS with the answer map intact so the user can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateSubmitting || s.state == StateSubmitted {
		s.mu.Unlock()
		return nil
	}
	if s.state != StateInProgress {
		s.mu.Unlock()
		return nil
	}
	s.state = StateSubmitting
	quizID := s.quiz.ID
	timeTaken := int(time.Since(s.startedAt).Seconds())
	answers := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}
	s.mu.Unlock()

	id, err := s.submitter.SubmitAttempt(ctx, quizID, answers, timeTaken)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.state = StateInProgress
		return err
	}
	s.state = StateSubmitted
	s.attemptID = id
	s.stopTimerLocked()
	return nil
}

// Close abandons the session: the countdown stops and, unless already
// submitted, the in-memory answer map is discarded. Nothing server-side
// needs cleanup because partial progress is never durable.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	if s.state != StateSubmitted {
		s.answers = map[string]string{}
	}
}

// ShouldConfirmLeave reports whether navigating away must prompt a
// "progress will be lost" confirmation.
func (s *Session) ShouldConfirmLeave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateInProgress || s.state == StateSubmitting
}

func (s *Session) stopTimerLocked() {
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.ticker = nil
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.remaining
}

func (s *Session) Expired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.expired
}

func (s *Session) AttemptID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attemptID
}

func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

func (s *Session) CurrentQuestion() (quiz.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateLoading || s.cursor >= len(s.quiz.Questions) {
		return quiz.Question{}, false
	}
	return s.quiz.Questions[s.cursor], true
}

// Answers returns a copy of the current answer map.
func (s *Session) Answers() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}
