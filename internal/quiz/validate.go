package quiz

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type quizRules struct {
	Title      string  `validate:"required"`
	Difficulty string  `validate:"oneof=EASY MEDIUM HARD"`
	TimeLimit  int     `validate:"min=0"`
	PassMark   float64 `validate:"gte=0,lte=100"`
}

type questionRules struct {
	Text          string   `validate:"required"`
	Options       []string `validate:"len=4,dive,required"`
	CorrectAnswer string   `validate:"required"`
	Points        int      `validate:"min=1"`
}

// Validate enforces the authoring-time invariants: pass mark within [0,100],
// exactly four non-empty options per question, a correct answer strictly
// equal to one of them, and positive point values.
func Validate(q Quiz) error {
	if err := validate.Struct(quizRules{
		Title:      q.Title,
		Difficulty: string(q.Difficulty),
		TimeLimit:  q.TimeLimitMin,
		PassMark:   q.PassMark,
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	for i, qu := range q.Questions {
		if err := validate.Struct(questionRules{
			Text:          qu.Text,
			Options:       qu.Options,
			CorrectAnswer: qu.CorrectAnswer,
			Points:        qu.Points,
		}); err != nil {
			return fmt.Errorf("%w: question %d: %v", ErrValidation, i+1, err)
		}
		found := false
		for _, opt := range qu.Options {
			if opt == qu.CorrectAnswer {
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("%w: question %d: correct answer must match one of the options", ErrValidation, i+1)
		}
	}
	return nil
}
