// Package analytics derives weak and strong topics, recommendations and dashboard figures from recorded progress.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/at-ishikawa/refresher/internal/progress"
)

type Thresholds struct {
	// WeakAccuracy is the topic accuracy (0-1) below which a topic is weak.
	WeakAccuracy float64 `mapstructure:"weak_accuracy"`
	// StrongAccuracy is the topic accuracy (0-1) from which a topic is strong.
	StrongAccuracy float64 `mapstructure:"strong_accuracy"`
	// MinAttempts is the number of answers a topic needs before it is classified.
	MinAttempts int `mapstructure:"min_attempts"`
	// MaxTopics caps each of the weak and strong lists.
	MaxTopics int `mapstructure:"max_topics"`
	// RecentSessions is how many of the latest sessions the progression check looks at.
	RecentSessions int `mapstructure:"recent_sessions"`
	// MinRecentSessions is how many sessions the progression check needs.
	MinRecentSessions int `mapstructure:"min_recent_sessions"`
	// ProgressionAccuracy is the mean recent accuracy (percent) that suggests harder questions.
	ProgressionAccuracy float64 `mapstructure:"progression_accuracy"`
	// InactiveDays is the number of days without activity that triggers a welcome back message.
	InactiveDays float64 `mapstructure:"inactive_days"`
	// MaxRecommendations caps the recommendation list.
	MaxRecommendations int `mapstructure:"max_recommendations"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		WeakAccuracy:        0.6,
		StrongAccuracy:      0.8,
		MinAttempts:         3,
		MaxTopics:           5,
		RecentSessions:      7,
		MinRecentSessions:   3,
		ProgressionAccuracy: 80,
		InactiveDays:        3,
		MaxRecommendations:  3,
	}
}

type Engine struct {
	thresholds Thresholds
}

func NewEngine(thresholds Thresholds) *Engine {
	return &Engine{thresholds: thresholds}
}

type topicTotals struct {
	total   int
	correct int
}

// Recompute builds the analytics for a snapshot. Topic names are aggregated across subjects.
func (e *Engine) Recompute(snapshot *progress.Snapshot, now time.Time) progress.Analytics {
	result := progress.NewAnalytics()

	totals := make(map[string]*topicTotals)
	for _, subject := range snapshot.Subjects {
		for topic, performance := range subject.TopicPerformance {
			t, ok := totals[topic]
			if !ok {
				t = &topicTotals{}
				totals[topic] = t
			}
			t.total += performance.Total
			t.correct += performance.Correct
		}
	}

	for topic, t := range totals {
		if t.total < e.thresholds.MinAttempts {
			continue
		}
		insight := progress.TopicInsight{
			Topic:    topic,
			Accuracy: float64(t.correct) / float64(t.total),
			Attempts: t.total,
		}
		switch {
		case insight.Accuracy < e.thresholds.WeakAccuracy:
			result.WeakTopics = append(result.WeakTopics, insight)
		case insight.Accuracy >= e.thresholds.StrongAccuracy:
			result.StrongTopics = append(result.StrongTopics, insight)
		}
	}

	sort.Slice(result.WeakTopics, func(i, j int) bool {
		a, b := result.WeakTopics[i], result.WeakTopics[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy < b.Accuracy
		}
		return a.Topic < b.Topic
	})
	sort.Slice(result.StrongTopics, func(i, j int) bool {
		a, b := result.StrongTopics[i], result.StrongTopics[j]
		if a.Accuracy != b.Accuracy {
			return a.Accuracy > b.Accuracy
		}
		return a.Topic < b.Topic
	})

	if len(result.WeakTopics) > 0 {
		weakest := result.WeakTopics[0]
		result.Recommendations = append(result.Recommendations, progress.Recommendation{
			Type:        progress.RecommendationImprovement,
			Title:       fmt.Sprintf("Focus on %s", weakest.Topic),
			Description: fmt.Sprintf("Your accuracy in %s is %.1f%%. Consider reviewing fundamentals.", weakest.Topic, weakest.Accuracy*100),
			Priority:    "high",
			Action:      "study_topic",
			Data:        weakest.Topic,
		})
	}

	recent := snapshot.Sessions[max(0, len(snapshot.Sessions)-e.thresholds.RecentSessions):]
	if len(recent) >= e.thresholds.MinRecentSessions && len(recent) > 0 {
		var sum float64
		for _, session := range recent {
			sum += session.Accuracy
		}
		if average := sum / float64(len(recent)); average >= e.thresholds.ProgressionAccuracy {
			result.Recommendations = append(result.Recommendations, progress.Recommendation{
				Type:        progress.RecommendationProgression,
				Title:       "Ready for Advanced Topics",
				Description: fmt.Sprintf("Your recent accuracy is %.1f%%. Consider challenging yourself with advanced questions.", average),
				Priority:    "medium",
				Action:      "increase_difficulty",
			})
		}
	}

	if days := DaysSince(snapshot.User.LastActive, now); days >= e.thresholds.InactiveDays {
		result.Recommendations = append(result.Recommendations, progress.Recommendation{
			Type:        progress.RecommendationEngagement,
			Title:       "Welcome Back!",
			Description: fmt.Sprintf("It's been %d days since your last session. Let's get back to learning!", int(math.Floor(days))),
			Priority:    "medium",
			Action:      "continue_learning",
		})
	}

	result.WeakTopics = result.WeakTopics[:min(len(result.WeakTopics), e.thresholds.MaxTopics)]
	result.StrongTopics = result.StrongTopics[:min(len(result.StrongTopics), e.thresholds.MaxTopics)]
	result.Recommendations = result.Recommendations[:min(len(result.Recommendations), e.thresholds.MaxRecommendations)]
	return result
}

// DaysSince returns the fractional days between an epoch-millisecond timestamp and now. 0 means never.
func DaysSince(ms int64, now time.Time) float64 {
	if ms == 0 {
		return 0
	}
	return float64(progress.Millis(now)-ms) / float64(24*time.Hour/time.Millisecond)
}
