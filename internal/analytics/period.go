package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/at-ishikawa/refresher/internal/progress"
)

// PeriodStatistics holds session figures for one month.
type PeriodStatistics struct {
	Period            string  `json:"period"` // "2025-01"
	Sessions          int     `json:"sessions"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	CorrectAnswers    int     `json:"correctAnswers"`
	AverageAccuracy   float64 `json:"averageAccuracy"`
	SubjectsUnique    int     `json:"subjectsUnique"`
}

// AggregateStatistics holds totals across all periods. Unique subjects are counted across periods.
type AggregateStatistics struct {
	Sessions          int     `json:"sessions"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	CorrectAnswers    int     `json:"correctAnswers"`
	AverageAccuracy   float64 `json:"averageAccuracy"`
	SubjectsUnique    int     `json:"subjectsUnique"`
}

type PeriodResult struct {
	Periods   []PeriodStatistics  `json:"periods"`
	Aggregate AggregateStatistics `json:"aggregate"`
}

type periodData struct {
	sessions       int
	questions      int
	correct        int
	accuracySum    float64
	subjectsUnique map[string]struct{}
}

// CalculatePeriodStatistics groups sessions by month in the local time zone.
// year and month filter the sessions; 0 means no filter.
func CalculatePeriodStatistics(sessions []progress.SessionRecord, year, month int) PeriodResult {
	stats := make(map[string]*periodData)
	globalSubjects := make(map[string]struct{})

	for _, session := range sessions {
		if session.Timestamp == 0 {
			continue
		}
		at := progress.FromMillis(session.Timestamp).In(time.Local)
		if !matchesFilter(at.Year(), int(at.Month()), year, month) {
			continue
		}

		period := fmt.Sprintf("%d-%02d", at.Year(), int(at.Month()))
		data, ok := stats[period]
		if !ok {
			data = &periodData{subjectsUnique: make(map[string]struct{})}
			stats[period] = data
		}
		data.sessions++
		data.questions += session.TotalQuestions
		data.correct += session.Score
		data.accuracySum += session.Accuracy
		data.subjectsUnique[session.Subject] = struct{}{}
		globalSubjects[session.Subject] = struct{}{}
	}

	return buildResult(stats, globalSubjects)
}

func matchesFilter(sessionYear, sessionMonth, filterYear, filterMonth int) bool {
	if filterYear == 0 {
		return true
	}
	if sessionYear != filterYear {
		return false
	}
	if filterMonth == 0 {
		return true
	}
	return sessionMonth == filterMonth
}

func buildResult(stats map[string]*periodData, globalSubjects map[string]struct{}) PeriodResult {
	periods := make([]PeriodStatistics, 0, len(stats))

	var aggregate AggregateStatistics
	var accuracySum float64
	for period, data := range stats {
		periods = append(periods, PeriodStatistics{
			Period:            period,
			Sessions:          data.sessions,
			QuestionsAnswered: data.questions,
			CorrectAnswers:    data.correct,
			AverageAccuracy:   data.accuracySum / float64(data.sessions),
			SubjectsUnique:    len(data.subjectsUnique),
		})
		aggregate.Sessions += data.sessions
		aggregate.QuestionsAnswered += data.questions
		aggregate.CorrectAnswers += data.correct
		accuracySum += data.accuracySum
	}
	if aggregate.Sessions > 0 {
		aggregate.AverageAccuracy = accuracySum / float64(aggregate.Sessions)
	}
	aggregate.SubjectsUnique = len(globalSubjects)

	// newest first
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Period > periods[j].Period
	})

	return PeriodResult{
		Periods:   periods,
		Aggregate: aggregate,
	}
}
