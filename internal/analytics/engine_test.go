package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/refresher/internal/progress"
)

var testNow = time.Date(2025, 3, 20, 12, 0, 0, 0, time.UTC)

func snapshotWithTopics(subjects map[string]map[string][2]int) *progress.Snapshot {
	snapshot := progress.NewSnapshot(testNow)
	for key, topics := range subjects {
		performance := progress.NewSubjectPerformance()
		for topic, counts := range topics {
			performance.TopicPerformance[topic] = &progress.TopicPerformance{Total: counts[0], Correct: counts[1]}
		}
		snapshot.Subjects[key] = performance
	}
	return snapshot
}

func sessionsWithAccuracy(accuracies ...float64) []progress.SessionRecord {
	sessions := make([]progress.SessionRecord, len(accuracies))
	for i, accuracy := range accuracies {
		sessions[i] = progress.SessionRecord{Subject: "ds", Accuracy: accuracy}
	}
	return sessions
}

func TestEngine_Recompute_Topics(t *testing.T) {
	tests := []struct {
		name       string
		subjects   map[string]map[string][2]int
		wantWeak   []progress.TopicInsight
		wantStrong []progress.TopicInsight
	}{
		{
			name: "classifies topics with enough attempts",
			subjects: map[string]map[string][2]int{
				"ds": {"Sorting": {4, 1}, "Geometry": {3, 3}, "Trees": {2, 0}, "Graphs": {10, 7}},
			},
			wantWeak:   []progress.TopicInsight{{Topic: "Sorting", Accuracy: 0.25, Attempts: 4}},
			wantStrong: []progress.TopicInsight{{Topic: "Geometry", Accuracy: 1, Attempts: 3}},
		},
		{
			name: "topic names aggregate across subjects",
			subjects: map[string]map[string][2]int{
				"math":    {"Algebra": {2, 0}},
				"physics": {"Algebra": {2, 2}},
			},
			wantWeak:   []progress.TopicInsight{{Topic: "Algebra", Accuracy: 0.5, Attempts: 4}},
			wantStrong: []progress.TopicInsight{},
		},
		{
			name: "boundaries are weak below 0.6 and strong from 0.8",
			subjects: map[string]map[string][2]int{
				"ds": {"Sixty": {5, 3}, "Eighty": {5, 4}, "Below": {10, 5}},
			},
			wantWeak:   []progress.TopicInsight{{Topic: "Below", Accuracy: 0.5, Attempts: 10}},
			wantStrong: []progress.TopicInsight{{Topic: "Eighty", Accuracy: 0.8, Attempts: 5}},
		},
		{
			name: "ties are ordered by topic name and lists are capped",
			subjects: map[string]map[string][2]int{
				"ds": {
					"G": {4, 0}, "F": {4, 0}, "E": {4, 1}, "D": {4, 1},
					"C": {4, 2}, "B": {3, 0}, "A": {5, 2},
				},
			},
			wantWeak: []progress.TopicInsight{
				{Topic: "B", Accuracy: 0, Attempts: 3},
				{Topic: "F", Accuracy: 0, Attempts: 4},
				{Topic: "G", Accuracy: 0, Attempts: 4},
				{Topic: "D", Accuracy: 0.25, Attempts: 4},
				{Topic: "E", Accuracy: 0.25, Attempts: 4},
			},
			wantStrong: []progress.TopicInsight{},
		},
		{
			name:       "no data",
			subjects:   nil,
			wantWeak:   []progress.TopicInsight{},
			wantStrong: []progress.TopicInsight{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewEngine(DefaultThresholds()).Recompute(snapshotWithTopics(tt.subjects), testNow)
			assert.Equal(t, tt.wantWeak, got.WeakTopics)
			assert.Equal(t, tt.wantStrong, got.StrongTopics)
			assert.NotNil(t, got.Recommendations)
		})
	}
}

func TestEngine_Recompute_Recommendations(t *testing.T) {
	tests := []struct {
		name       string
		topics     map[string]map[string][2]int
		sessions   []progress.SessionRecord
		lastActive time.Time
		thresholds func(*Thresholds)
		want       []progress.Recommendation
	}{
		{
			name:   "weakest topic gets an improvement recommendation",
			topics: map[string]map[string][2]int{"ds": {"Sorting": {4, 1}, "Trees": {4, 2}}},
			want: []progress.Recommendation{{
				Type:        progress.RecommendationImprovement,
				Title:       "Focus on Sorting",
				Description: "Your accuracy in Sorting is 25.0%. Consider reviewing fundamentals.",
				Priority:    "high",
				Action:      "study_topic",
				Data:        "Sorting",
			}},
		},
		{
			name:     "high recent accuracy suggests harder content",
			sessions: sessionsWithAccuracy(80, 90, 100),
			want: []progress.Recommendation{{
				Type:        progress.RecommendationProgression,
				Title:       "Ready for Advanced Topics",
				Description: "Your recent accuracy is 90.0%. Consider challenging yourself with advanced questions.",
				Priority:    "medium",
				Action:      "increase_difficulty",
			}},
		},
		{
			name:     "two sessions are not enough for progression",
			sessions: sessionsWithAccuracy(100, 100),
			want:     []progress.Recommendation{},
		},
		{
			name:     "only the last seven sessions count",
			sessions: sessionsWithAccuracy(0, 0, 80, 80, 80, 80, 80, 80, 80),
			want: []progress.Recommendation{{
				Type:        progress.RecommendationProgression,
				Title:       "Ready for Advanced Topics",
				Description: "Your recent accuracy is 80.0%. Consider challenging yourself with advanced questions.",
				Priority:    "medium",
				Action:      "increase_difficulty",
			}},
		},
		{
			name:     "mean accuracy below eighty",
			sessions: sessionsWithAccuracy(79, 80, 80),
			want:     []progress.Recommendation{},
		},
		{
			name:       "inactive learner is welcomed back with floored days",
			lastActive: testNow.Add(-4*24*time.Hour - 12*time.Hour),
			want: []progress.Recommendation{{
				Type:        progress.RecommendationEngagement,
				Title:       "Welcome Back!",
				Description: "It's been 4 days since your last session. Let's get back to learning!",
				Priority:    "medium",
				Action:      "continue_learning",
			}},
		},
		{
			name:       "two days of inactivity is not enough",
			lastActive: testNow.Add(-2 * 24 * time.Hour),
			want:       []progress.Recommendation{},
		},
		{
			name:       "all recommendations in priority order",
			topics:     map[string]map[string][2]int{"ds": {"Sorting": {4, 1}}},
			sessions:   sessionsWithAccuracy(90, 90, 90),
			lastActive: testNow.Add(-3 * 24 * time.Hour),
			want: []progress.Recommendation{
				{
					Type:        progress.RecommendationImprovement,
					Title:       "Focus on Sorting",
					Description: "Your accuracy in Sorting is 25.0%. Consider reviewing fundamentals.",
					Priority:    "high",
					Action:      "study_topic",
					Data:        "Sorting",
				},
				{
					Type:        progress.RecommendationProgression,
					Title:       "Ready for Advanced Topics",
					Description: "Your recent accuracy is 90.0%. Consider challenging yourself with advanced questions.",
					Priority:    "medium",
					Action:      "increase_difficulty",
				},
				{
					Type:        progress.RecommendationEngagement,
					Title:       "Welcome Back!",
					Description: "It's been 3 days since your last session. Let's get back to learning!",
					Priority:    "medium",
					Action:      "continue_learning",
				},
			},
		},
		{
			name:       "recommendations are capped",
			topics:     map[string]map[string][2]int{"ds": {"Sorting": {4, 1}}},
			sessions:   sessionsWithAccuracy(90, 90, 90),
			lastActive: testNow.Add(-3 * 24 * time.Hour),
			thresholds: func(th *Thresholds) { th.MaxRecommendations = 1 },
			want: []progress.Recommendation{{
				Type:        progress.RecommendationImprovement,
				Title:       "Focus on Sorting",
				Description: "Your accuracy in Sorting is 25.0%. Consider reviewing fundamentals.",
				Priority:    "high",
				Action:      "study_topic",
				Data:        "Sorting",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snapshot := snapshotWithTopics(tt.topics)
			if tt.sessions != nil {
				snapshot.Sessions = tt.sessions
			}
			snapshot.User.LastActive = progress.Millis(tt.lastActive)

			thresholds := DefaultThresholds()
			if tt.thresholds != nil {
				tt.thresholds(&thresholds)
			}
			got := NewEngine(thresholds).Recompute(snapshot, testNow)
			assert.Equal(t, tt.want, got.Recommendations)
		})
	}
}

func TestEngine_Recompute_DoesNotModifySnapshot(t *testing.T) {
	snapshot := snapshotWithTopics(map[string]map[string][2]int{"ds": {"Sorting": {4, 1}}})
	snapshot.Sessions = sessionsWithAccuracy(90, 90, 90)
	before := snapshot.Clone()

	NewEngine(DefaultThresholds()).Recompute(snapshot, testNow)
	assert.Equal(t, before, snapshot.Clone())
}

func TestEngine_ImplementsAnalyzer(t *testing.T) {
	var analyzer progress.Analyzer = NewEngine(DefaultThresholds())
	require.NotNil(t, analyzer)
}

func TestDaysSince(t *testing.T) {
	tests := []struct {
		lastActive int64
		want       float64
	}{
		{lastActive: 0, want: 0},
		{lastActive: progress.Millis(testNow.Add(-36 * time.Hour)), want: 1.5},
		{lastActive: progress.Millis(testNow), want: 0},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.lastActive), func(t *testing.T) {
			assert.InDelta(t, tt.want, DaysSince(tt.lastActive, testNow), 1e-9)
		})
	}
}
