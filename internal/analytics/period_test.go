package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/at-ishikawa/refresher/internal/progress"
)

func TestCalculatePeriodStatistics(t *testing.T) {
	at := func(year int, month time.Month, day int) int64 {
		return progress.Millis(time.Date(year, month, day, 12, 0, 0, 0, time.Local))
	}
	sessions := []progress.SessionRecord{
		{Timestamp: at(2024, 12, 30), Subject: "ds", TotalQuestions: 10, Score: 5, Accuracy: 50},
		{Timestamp: at(2025, 1, 3), Subject: "ds", TotalQuestions: 10, Score: 8, Accuracy: 80},
		{Timestamp: at(2025, 1, 9), Subject: "math", TotalQuestions: 5, Score: 5, Accuracy: 100},
		{Timestamp: at(2025, 2, 1), Subject: "ds", TotalQuestions: 10, Score: 6, Accuracy: 60},
		{Timestamp: 0, Subject: "ignored", TotalQuestions: 10},
	}

	tests := []struct {
		name  string
		year  int
		month int
		want  PeriodResult
	}{
		{
			name: "all periods newest first",
			want: PeriodResult{
				Periods: []PeriodStatistics{
					{Period: "2025-02", Sessions: 1, QuestionsAnswered: 10, CorrectAnswers: 6, AverageAccuracy: 60, SubjectsUnique: 1},
					{Period: "2025-01", Sessions: 2, QuestionsAnswered: 15, CorrectAnswers: 13, AverageAccuracy: 90, SubjectsUnique: 2},
					{Period: "2024-12", Sessions: 1, QuestionsAnswered: 10, CorrectAnswers: 5, AverageAccuracy: 50, SubjectsUnique: 1},
				},
				Aggregate: AggregateStatistics{Sessions: 4, QuestionsAnswered: 35, CorrectAnswers: 24, AverageAccuracy: 72.5, SubjectsUnique: 2},
			},
		},
		{
			name: "year filter",
			year: 2025,
			want: PeriodResult{
				Periods: []PeriodStatistics{
					{Period: "2025-02", Sessions: 1, QuestionsAnswered: 10, CorrectAnswers: 6, AverageAccuracy: 60, SubjectsUnique: 1},
					{Period: "2025-01", Sessions: 2, QuestionsAnswered: 15, CorrectAnswers: 13, AverageAccuracy: 90, SubjectsUnique: 2},
				},
				Aggregate: AggregateStatistics{Sessions: 3, QuestionsAnswered: 25, CorrectAnswers: 19, AverageAccuracy: 80, SubjectsUnique: 2},
			},
		},
		{
			name:  "year and month filter",
			year:  2025,
			month: 1,
			want: PeriodResult{
				Periods: []PeriodStatistics{
					{Period: "2025-01", Sessions: 2, QuestionsAnswered: 15, CorrectAnswers: 13, AverageAccuracy: 90, SubjectsUnique: 2},
				},
				Aggregate: AggregateStatistics{Sessions: 2, QuestionsAnswered: 15, CorrectAnswers: 13, AverageAccuracy: 90, SubjectsUnique: 2},
			},
		},
		{
			name:  "no matching sessions",
			year:  2023,
			month: 6,
			want:  PeriodResult{Periods: []PeriodStatistics{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePeriodStatistics(sessions, tt.year, tt.month)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesFilter(t *testing.T) {
	tests := []struct {
		name                     string
		year, month, fYear, fMon int
		want                     bool
	}{
		{"no filter", 2025, 1, 0, 0, true},
		{"year matches", 2025, 1, 2025, 0, true},
		{"year differs", 2024, 1, 2025, 0, false},
		{"month matches", 2025, 3, 2025, 3, true},
		{"month differs", 2025, 4, 2025, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matchesFilter(tt.year, tt.month, tt.fYear, tt.fMon))
		})
	}
}
