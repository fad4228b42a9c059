package quiz

// ScoreResult is the outcome of grading one submitted answer map.
type ScoreResult struct {
	PerQuestion  map[string]bool `json:"per_question"`
	ScorePercent float64         `json:"score_percent"`
	Passed       bool            `json:"passed"`
}

// Score grades an answer map against a quiz's question set. It is pure:
// no side effects, deterministic for identical inputs, invoked server-side
// once per submission.
//
// A question earns its points only when the selected option text strictly
// equals the stored correct answer; a missing key counts as incorrect. A
// quiz with zero total points scores 0 (cannot divide by zero, cannot be
// passed unless the pass mark is 0).
func Score(q Quiz, answers map[string]string) ScoreResult {
	per := make(map[string]bool, len(q.Questions))
	earned, total := 0, 0
	for _, qu := range q.Questions {
		total += qu.Points
		sel, ok := answers[qu.ID]
		correct := ok && sel == qu.CorrectAnswer
		per[qu.ID] = correct
		if correct {
			earned += qu.Points
		}
	}
	pct := 0.0
	if total > 0 {
		pct = float64(earned) / float64(total) * 100
	}
	return ScoreResult{
		PerQuestion:  per,
		ScorePercent: pct,
		Passed:       pct >= q.PassMark,
	}
}
