package quiz

import (
	"fmt"
	"maps"

	"github.com/at-ishikawa/refresher/internal/progress"
)

type Statistics struct {
	Score            int                            `json:"score"`
	TotalQuestions   int                            `json:"totalQuestions"`
	Accuracy         float64                        `json:"accuracy"`
	TotalTime        int64                          `json:"totalTime"`
	AverageTime      float64                        `json:"averageTime"`
	Fastest          int64                          `json:"fastestAnswer"`
	Slowest          int64                          `json:"slowestAnswer"`
	TopicScores      map[string]progress.ScoreTally `json:"topicScores"`
	DifficultyScores map[string]progress.ScoreTally `json:"difficultyScores"`
}

func (s Statistics) clone() Statistics {
	s.TopicScores = maps.Clone(s.TopicScores)
	s.DifficultyScores = maps.Clone(s.DifficultyScores)
	return s
}

func computeStatistics(answers []progress.AnswerRecord, score, total int) Statistics {
	statistics := Statistics{
		Score:            score,
		TotalQuestions:   total,
		TopicScores:      make(map[string]progress.ScoreTally),
		DifficultyScores: make(map[string]progress.ScoreTally),
	}
	if total > 0 {
		statistics.Accuracy = float64(score) / float64(total) * 100
	}

	for i, answer := range answers {
		statistics.TopicScores[answer.Topic] = tally(statistics.TopicScores[answer.Topic], answer.IsCorrect)
		statistics.DifficultyScores[answer.Difficulty] = tally(statistics.DifficultyScores[answer.Difficulty], answer.IsCorrect)

		statistics.TotalTime += answer.TimeSpent
		if i == 0 || answer.TimeSpent < statistics.Fastest {
			statistics.Fastest = answer.TimeSpent
		}
		statistics.Slowest = max(statistics.Slowest, answer.TimeSpent)
	}
	if len(answers) > 0 {
		statistics.AverageTime = float64(statistics.TotalTime) / float64(len(answers))
	}
	return statistics
}

func tally(t progress.ScoreTally, correct bool) progress.ScoreTally {
	t.Total++
	if correct {
		t.Correct++
	}
	return t
}

// FormatDuration renders milliseconds as "1m 5s" or "42s".
func FormatDuration(milliseconds float64) string {
	seconds := int64(milliseconds) / 1000
	minutes := seconds / 60
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}
