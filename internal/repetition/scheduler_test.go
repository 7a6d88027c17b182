package repetition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
)

func TestScore(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	daysAgo := func(days int) int64 {
		return progress.Millis(now.AddDate(0, 0, -days))
	}

	tests := []struct {
		name  string
		entry *progress.QuestionHistoryEntry
		want  float64
	}{
		{
			name:  "never answered",
			entry: nil,
			want:  NewQuestionUrgency,
		},
		{
			name:  "entry without attempts",
			entry: &progress.QuestionHistoryEntry{},
			want:  NewQuestionUrgency,
		},
		{
			name:  "correct at level 2 answered 20 days ago",
			entry: &progress.QuestionHistoryEntry{Attempts: 2, LastCorrect: true, RepetitionLevel: 2, LastAttempt: daysAgo(20)},
			want:  6,
		},
		{
			name:  "correct at level 2 answered 10 days ago is not due",
			entry: &progress.QuestionHistoryEntry{Attempts: 2, LastCorrect: true, RepetitionLevel: 2, LastAttempt: daysAgo(10)},
			want:  0,
		},
		{
			name:  "incorrect at level 0 answered 3 days ago",
			entry: &progress.QuestionHistoryEntry{Attempts: 1, LastCorrect: false, RepetitionLevel: 0, LastAttempt: daysAgo(3)},
			want:  2,
		},
		{
			name:  "level above the table uses the last interval",
			entry: &progress.QuestionHistoryEntry{Attempts: 9, LastCorrect: true, RepetitionLevel: 9, LastAttempt: daysAgo(100)},
			want:  10,
		},
		{
			name:  "answered just now",
			entry: &progress.QuestionHistoryEntry{Attempts: 1, LastCorrect: true, RepetitionLevel: 1, LastAttempt: progress.Millis(now)},
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.entry, now)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestNextReview(t *testing.T) {
	answeredAt := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	entry := &progress.QuestionHistoryEntry{Attempts: 1, LastCorrect: true, RepetitionLevel: 1, LastAttempt: progress.Millis(answeredAt)}

	assert.True(t, NextReview(entry).Equal(answeredAt.AddDate(0, 0, 7)))
	assert.True(t, NextReview(nil).IsZero())
}

func TestOrder(t *testing.T) {
	now := time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)
	questions := []catalog.Question{
		{ID: "recent"},
		{ID: "new-1"},
		{ID: "overdue"},
		{ID: "new-2"},
	}
	history := map[string]*progress.QuestionHistoryEntry{
		"recent":  {Attempts: 1, LastCorrect: true, RepetitionLevel: 1, LastAttempt: progress.Millis(now)},
		"overdue": {Attempts: 1, LastCorrect: false, RepetitionLevel: 0, LastAttempt: progress.Millis(now.AddDate(0, 0, -30))},
	}

	got := Order(questions, history, now)

	ids := make([]string, len(got))
	for i, q := range got {
		ids[i] = q.ID
	}
	assert.Equal(t, []string{"overdue", "new-1", "new-2", "recent"}, ids)
	assert.Equal(t, "recent", questions[0].ID, "input must not be reordered")
}
