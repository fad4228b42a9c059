package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"
)

var csvHeader = []string{"Student", "Email", "Score", "Result", "Time Taken", "Date"}

// WriteCSV serializes result rows as comma-delimited text with a fixed
// header row, for offline analysis.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{
			r.StudentName,
			r.StudentEmail,
			strconv.FormatFloat(r.Score, 'f', 2, 64) + "%",
			passLabel(r.Passed),
			FormatTimeTaken(r.TimeTakenSec),
			time.Unix(r.CreatedAt, 0).UTC().Format("2006-01-02 15:04"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Filename names the export download for a quiz.
func Filename(quizID string) string {
	return "quiz_results_" + quizID + ".csv"
}

func passLabel(passed bool) string {
	if passed {
		return "Pass"
	}
	return "Fail"
}

// FormatTimeTaken renders seconds as "4m 05s".
func FormatTimeTaken(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%dm %02ds", sec/60, sec%60)
}
