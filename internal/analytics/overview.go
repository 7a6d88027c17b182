package analytics

import (
	"sort"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
)

// improvementWindow is the number of sessions compared against the window before it.
const improvementWindow = 5

type Overview struct {
	TotalQuestions     int     `json:"totalQuestions"`
	CorrectAnswers     int     `json:"correctAnswers"`
	Accuracy           float64 `json:"accuracy"`
	StreakCurrent      int     `json:"streakCurrent"`
	StreakBest         int     `json:"streakBest"`
	DaysActive         int     `json:"daysActive"`
	TotalSessions      int     `json:"totalSessions"`
	AverageSessionTime float64 `json:"averageSessionTime"`
	FavoriteSubject    string  `json:"favoriteSubject"`
	ImprovementRate    float64 `json:"improvementRate"`
}

// Overview summarizes the learner's totals for the dashboard.
func (e *Engine) Overview(snapshot *progress.Snapshot) Overview {
	overview := Overview{
		TotalQuestions:  snapshot.User.TotalQuestions,
		CorrectAnswers:  snapshot.User.CorrectAnswers,
		Accuracy:        snapshot.User.Accuracy(),
		StreakCurrent:   snapshot.User.StreakCurrent,
		StreakBest:      snapshot.User.StreakBest,
		DaysActive:      snapshot.User.DaysActive,
		TotalSessions:   len(snapshot.Sessions),
		FavoriteSubject: favoriteSubject(snapshot.Sessions),
		ImprovementRate: improvementRate(snapshot.Sessions),
	}
	if len(snapshot.Sessions) > 0 {
		var total int64
		for _, session := range snapshot.Sessions {
			total += session.Duration
		}
		overview.AverageSessionTime = float64(total) / float64(len(snapshot.Sessions))
	}
	return overview
}

// favoriteSubject returns the subject with the most sessions. Ties go to the subject seen first.
func favoriteSubject(sessions []progress.SessionRecord) string {
	counts := make(map[string]int)
	var order []string
	for _, session := range sessions {
		if counts[session.Subject] == 0 {
			order = append(order, session.Subject)
		}
		counts[session.Subject]++
	}

	var favorite string
	for _, subject := range order {
		if counts[subject] > counts[favorite] {
			favorite = subject
		}
	}
	return favorite
}

func improvementRate(sessions []progress.SessionRecord) float64 {
	if len(sessions) < improvementWindow {
		return 0
	}
	recent := sessions[len(sessions)-improvementWindow:]
	older := sessions[max(0, len(sessions)-2*improvementWindow) : len(sessions)-improvementWindow]
	if len(older) == 0 {
		return 0
	}
	return meanAccuracy(recent) - meanAccuracy(older)
}

func meanAccuracy(sessions []progress.SessionRecord) float64 {
	var sum float64
	for _, session := range sessions {
		sum += session.Accuracy
	}
	return sum / float64(len(sessions))
}

type SubjectSummary struct {
	Key               string  `json:"key"`
	Name              string  `json:"name"`
	Icon              string  `json:"icon"`
	Color             string  `json:"color"`
	Mastery           float64 `json:"mastery"`
	QuestionsAnswered int     `json:"questionsAnswered"`
	LastAttempt       int64   `json:"lastAttempt"`
}

// SubjectProgress returns one entry per catalog subject ordered by mastery, highest first.
// Subjects that were never attempted report zero mastery.
func SubjectProgress(subjects *catalog.Catalog, snapshot *progress.Snapshot) []SubjectSummary {
	result := make([]SubjectSummary, 0)
	for _, subject := range subjects.Subjects() {
		entry := SubjectSummary{
			Key:   subject.Key,
			Name:  subject.Name,
			Icon:  subject.Icon,
			Color: subject.Color,
		}
		if performance, ok := snapshot.Subjects[subject.Key]; ok {
			entry.Mastery = performance.Mastery()
			entry.QuestionsAnswered = performance.TotalQuestions
			entry.LastAttempt = performance.LastAttempt
		}
		result = append(result, entry)
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Mastery > result[j].Mastery
	})
	return result
}
