// Package repetition scores questions by how overdue they are for review.
package repetition

import (
	"math"
	"sort"
	"time"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
)

// NewQuestionUrgency is the score of a question that was never answered.
const NewQuestionUrgency = 10.0

// Review intervals in days, indexed by repetition level.
var (
	CorrectIntervals   = []float64{3, 7, 14, 30, 90}
	IncorrectIntervals = []float64{1, 1, 3, 7, 14}
)

const millisPerDay = float64(24 * time.Hour / time.Millisecond)

// Interval returns the review interval in days for an entry.
// The interval table depends on whether the last attempt was correct.
func Interval(entry *progress.QuestionHistoryEntry) float64 {
	table := IncorrectIntervals
	if entry.LastCorrect {
		table = CorrectIntervals
	}
	level := min(max(entry.RepetitionLevel, 0), len(table)-1)
	return table[level]
}

// Score returns how overdue a question is: 0 when not yet due, growing by one per overdue day.
func Score(entry *progress.QuestionHistoryEntry, now time.Time) float64 {
	if entry == nil || entry.Attempts == 0 {
		return NewQuestionUrgency
	}
	days := float64(progress.Millis(now)-entry.LastAttempt) / millisPerDay
	return math.Max(0, days-Interval(entry))
}

// NextReview returns when an answered question becomes due again.
func NextReview(entry *progress.QuestionHistoryEntry) time.Time {
	if entry == nil || entry.Attempts == 0 {
		return time.Time{}
	}
	interval := time.Duration(Interval(entry) * float64(24*time.Hour))
	return progress.FromMillis(entry.LastAttempt).Add(interval)
}

// Order returns the questions sorted by descending urgency. Ties keep their input order.
func Order(questions []catalog.Question, history map[string]*progress.QuestionHistoryEntry, now time.Time) []catalog.Question {
	scores := make(map[string]float64, len(questions))
	for _, q := range questions {
		scores[q.ID] = Score(history[q.ID], now)
	}

	ordered := append([]catalog.Question(nil), questions...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return scores[ordered[i].ID] > scores[ordered[j].ID]
	})
	return ordered
}
