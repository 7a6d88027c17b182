package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	mock_progress "github.com/at-ishikawa/refresher/internal/mocks/progress"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestStore(t *testing.T, clock *fakeClock, opts ...Option) (*Store, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	opts = append([]Option{WithClock(clock.Now)}, opts...)
	return NewStore(context.Background(), storage, opts...), storage
}

func answer(id, topic string, correct bool, timeSpent int64, at time.Time) AnswerRecord {
	return AnswerRecord{
		QuestionID:    id,
		Question:      "question " + id,
		Topic:         topic,
		Difficulty:    "beginner",
		CorrectOption: 1,
		SelectedOption: func() int {
			if correct {
				return 1
			}
			return 0
		}(),
		IsCorrect: correct,
		TimeSpent: timeSpent,
		Timestamp: Millis(at),
	}
}

type recomputeCounter struct {
	calls int
}

func (c *recomputeCounter) Recompute(snapshot *Snapshot, _ time.Time) Analytics {
	c.calls++
	analytics := NewAnalytics()
	analytics.Recommendations = append(analytics.Recommendations, Recommendation{
		Type:  RecommendationEngagement,
		Title: fmt.Sprintf("%d sessions", len(snapshot.Sessions)),
	})
	return analytics
}

func TestStore_RecordAnswer(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	store, storage := newTestStore(t, clock)
	ctx := context.Background()

	store.RecordAnswer(ctx, "data_structures", answer("q1", "Arrays", true, 1000, clock.now))
	store.RecordAnswer(ctx, "data_structures", answer("q1", "Arrays", false, 2000, clock.now))
	store.RecordAnswer(ctx, "data_structures", answer("q2", "Arrays", true, 6000, clock.now))

	got, ok := store.SubjectPerformance("data_structures")
	require.True(t, ok)
	assert.Equal(t, 3, got.TotalQuestions)
	assert.Equal(t, 2, got.CorrectAnswers)
	assert.Equal(t, int64(9000), got.TotalTime)
	assert.Equal(t, Millis(clock.now), got.LastAttempt)

	assert.Equal(t, &TopicPerformance{Total: 3, Correct: 2, AverageTime: 3000, LastAttempt: Millis(clock.now)}, got.TopicPerformance["Arrays"])
	assert.Equal(t, &DifficultyPerformance{Total: 3, Correct: 2, AverageTime: 3000}, got.DifficultyPerformance["beginner"])
	assert.Equal(t, &QuestionHistoryEntry{
		Question:        "question q1",
		Attempts:        2,
		Correct:         1,
		LastCorrect:     false,
		LastAttempt:     Millis(clock.now),
		RepetitionLevel: 0,
		AverageTime:     1500,
	}, got.QuestionHistory["q1"])

	user := store.User()
	assert.Equal(t, 3, user.TotalQuestions)
	assert.Equal(t, 2, user.CorrectAnswers)
	assert.Equal(t, int64(9000), user.TotalTime)

	_, err := storage.Load(ctx)
	assert.NoError(t, err)
}

func TestStore_RecordAnswer_RepetitionLevelBounds(t *testing.T) {
	tests := []struct {
		name    string
		answers []bool
		want    int
	}{
		{name: "six correct answers stop at the maximum", answers: []bool{true, true, true, true, true, true}, want: MaxRepetitionLevel},
		{name: "wrong answer on a new question stays at zero", answers: []bool{false}, want: 0},
		{name: "wrong answer lowers the level by one", answers: []bool{true, true, true, false}, want: 2},
		{name: "repeated wrong answers never go negative", answers: []bool{true, false, false, false}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
			store, _ := newTestStore(t, clock)
			for _, correct := range tt.answers {
				store.RecordAnswer(context.Background(), "math", answer("q1", "Algebra", correct, 1000, clock.now))
			}
			got, ok := store.SubjectPerformance("math")
			require.True(t, ok)
			assert.Equal(t, tt.want, got.QuestionHistory["q1"].RepetitionLevel)
			assert.Equal(t, tt.answers[len(tt.answers)-1], got.QuestionHistory["q1"].LastCorrect)
		})
	}
}

func TestStore_RecordQuizCompletion_Caps(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	analyzer := &recomputeCounter{}
	store, _ := newTestStore(t, clock, WithAnalyzer(analyzer))
	ctx := context.Background()

	for i := 0; i < 55; i++ {
		store.RecordQuizCompletion(ctx, "math", QuizResult{Timestamp: int64(i + 1), Score: 1, TotalQuestions: 1, Accuracy: 100})
	}
	for i := 0; i < 50; i++ {
		store.RecordQuizCompletion(ctx, "algorithms", QuizResult{Timestamp: int64(100 + i), Score: 1, TotalQuestions: 1, Accuracy: 100})
	}

	math, ok := store.SubjectPerformance("math")
	require.True(t, ok)
	require.Len(t, math.QuizHistory, MaxQuizHistory)
	assert.Equal(t, int64(6), math.QuizHistory[0].Timestamp)
	assert.Equal(t, int64(55), math.QuizHistory[MaxQuizHistory-1].Timestamp)

	snapshot := store.Snapshot()
	require.Len(t, snapshot.Sessions, MaxSessions)
	assert.Equal(t, int64(6), snapshot.Sessions[0].Timestamp)
	assert.Equal(t, "algorithms", snapshot.Sessions[MaxSessions-1].Subject)

	assert.Equal(t, 105, analyzer.calls)
	assert.Equal(t, "100 sessions", store.Analytics().Recommendations[0].Title)
}

func TestStore_RecordQuizCompletion_SessionRecord(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(t, clock)

	store.RecordQuizCompletion(context.Background(), "data_structures", QuizResult{
		Timestamp:      Millis(clock.now),
		Score:          3,
		TotalQuestions: 4,
		Accuracy:       75,
		TotalTime:      40000,
		AverageTime:    9500,
		TopicScores: map[string]ScoreTally{
			"Trees":  {Correct: 1, Total: 2},
			"Arrays": {Correct: 2, Total: 2},
		},
		DifficultyScores: map[string]ScoreTally{"beginner": {Correct: 3, Total: 4}},
	})

	snapshot := store.Snapshot()
	assert.Equal(t, []SessionRecord{
		{
			Timestamp:           Millis(clock.now),
			Subject:             "data_structures",
			Score:               3,
			TotalQuestions:      4,
			Accuracy:            75,
			Duration:            40000,
			TopicsStudied:       []string{"Arrays", "Trees"},
			AverageResponseTime: 9500,
		},
	}, snapshot.Sessions)
	assert.Equal(t, map[string]ScoreTally{"beginner": {Correct: 3, Total: 4}}, snapshot.Subjects["data_structures"].QuizHistory[0].DifficultyBreakdown)
}

func TestStore_Snapshot_IsACopy(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(t, clock)
	store.RecordAnswer(context.Background(), "math", answer("q1", "Algebra", true, 1000, clock.now))

	snapshot := store.Snapshot()
	snapshot.Subjects["math"].TopicPerformance["Algebra"].Total = 100
	snapshot.User.TotalQuestions = 100

	got, _ := store.SubjectPerformance("math")
	assert.Equal(t, 1, got.TopicPerformance["Algebra"].Total)
	assert.Equal(t, 1, store.User().TotalQuestions)
}

func TestStore_ExportImport(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	source, _ := newTestStore(t, clock)
	ctx := context.Background()

	source.RecordAnswer(ctx, "math", answer("q1", "Algebra", true, 1200, clock.now))
	source.RecordAnswer(ctx, "math", answer("q2", "Calculus", false, 3400, clock.now))
	source.RecordQuizCompletion(ctx, "math", QuizResult{
		Timestamp:        Millis(clock.now),
		Score:            1,
		TotalQuestions:   2,
		Accuracy:         50,
		TotalTime:        4600,
		AverageTime:      2300,
		TopicScores:      map[string]ScoreTally{"Algebra": {Correct: 1, Total: 1}, "Calculus": {Correct: 0, Total: 1}},
		DifficultyScores: map[string]ScoreTally{"beginner": {Correct: 1, Total: 2}},
	})

	exported, err := source.Export()
	require.NoError(t, err)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(exported, &envelope))
	assert.Equal(t, ExportVersion, envelope["version"])
	assert.Equal(t, "2025-03-10T09:00:00Z", envelope["exportDate"])
	for _, key := range []string{"user", "subjects", "sessions", "analytics"} {
		assert.Contains(t, envelope, key)
	}

	target, targetStorage := newTestStore(t, clock)
	require.True(t, target.Import(ctx, exported))
	assert.Equal(t, source.Snapshot(), target.Snapshot())

	persisted, err := targetStorage.Load(ctx)
	require.NoError(t, err)
	var stored Snapshot
	require.NoError(t, json.Unmarshal(persisted, &stored))
	assert.Equal(t, source.User(), stored.User)
}

func TestStore_Import_Rejected(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{name: "missing version", blob: `{"user": {"totalQuestions": 5}, "subjects": {}}`},
		{name: "missing user", blob: `{"version": "1.0", "subjects": {}}`},
		{name: "not json", blob: `not json`},
		{name: "empty document", blob: `{}`},
		{name: "null subject", blob: `{"version": "1.0", "user": {}, "subjects": {"ds": null}}`},
		{
			name: "null topic and question entries",
			blob: `{"version": "1.0", "user": {}, "subjects": {"ds": {"topicPerformance": {"Sorting": null}, "questionHistory": {"q1": null}}}}`,
		},
		{
			name: "null difficulty entry",
			blob: `{"version": "1.0", "user": {}, "subjects": {"ds": {"difficultyPerformance": {"beginner": null}}}}`,
		},
		{
			name: "repetition level above the maximum",
			blob: `{"version": "1.0", "user": {}, "subjects": {"ds": {"questionHistory": {"q1": {"attempts": 1, "repetitionLevel": 9}}}}}`,
		},
		{
			name: "negative repetition level",
			blob: `{"version": "1.0", "user": {}, "subjects": {"ds": {"questionHistory": {"q1": {"attempts": 1, "repetitionLevel": -1}}}}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
			store, _ := newTestStore(t, clock)
			store.RecordAnswer(context.Background(), "math", answer("q1", "Algebra", true, 1000, clock.now))
			before := store.Snapshot()

			assert.False(t, store.Import(context.Background(), []byte(tt.blob)))
			assert.Equal(t, before, store.Snapshot())

			store.RecordAnswer(context.Background(), "ds", answer("q1", "Sorting", true, 1000, clock.now))
			assert.Equal(t, 1, store.Snapshot().Subjects["ds"].TopicPerformance["Sorting"].Total)
		})
	}
}

func TestNewStore_RepairsStoredNullEntries(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(ctx, []byte(`{"user": {}, "subjects": {"ds": {
		"topicPerformance": {"Sorting": null},
		"difficultyPerformance": {"beginner": null},
		"questionHistory": {"q1": null, "q2": {"attempts": 2, "repetitionLevel": 7}}}}}`)))

	store := NewStore(ctx, storage, WithClock(clock.Now))
	snapshot := store.Snapshot()
	assert.NotContains(t, snapshot.Subjects["ds"].TopicPerformance, "Sorting")
	assert.NotContains(t, snapshot.Subjects["ds"].QuestionHistory, "q1")
	assert.Equal(t, MaxRepetitionLevel, snapshot.Subjects["ds"].QuestionHistory["q2"].RepetitionLevel)

	store.RecordAnswer(ctx, "ds", answer("q1", "Sorting", false, 1000, clock.now))
	snapshot = store.Snapshot()
	assert.Equal(t, 1, snapshot.Subjects["ds"].TopicPerformance["Sorting"].Total)
	assert.Equal(t, 1, snapshot.Subjects["ds"].QuestionHistory["q1"].Attempts)
}

func TestStore_Import_FillsMissingCollections(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	store, _ := newTestStore(t, clock)

	blob := `{"version": "1.0", "user": {"totalQuestions": 3, "correctAnswers": 2, "lastActive": null},
		"subjects": {"math": {"totalQuestions": 3, "correctAnswers": 2}}}`
	require.True(t, store.Import(context.Background(), []byte(blob)))

	snapshot := store.Snapshot()
	assert.Equal(t, 3, snapshot.User.TotalQuestions)
	assert.Equal(t, int64(0), snapshot.User.LastActive)
	assert.NotNil(t, snapshot.Subjects["math"].TopicPerformance)
	assert.NotNil(t, snapshot.Subjects["math"].QuizHistory)
	assert.NotNil(t, snapshot.Sessions)
	assert.NotNil(t, snapshot.Analytics.Recommendations)
}

func TestStore_Reset(t *testing.T) {
	tests := []struct {
		name      string
		confirmer Confirmer
		want      bool
	}{
		{name: "confirmed", confirmer: ConfirmFunc(func(string) bool { return true }), want: true},
		{name: "declined", confirmer: ConfirmFunc(func(string) bool { return false }), want: false},
		{name: "no confirmer", confirmer: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
			store, storage := newTestStore(t, clock)
			store.RecordAnswer(context.Background(), "math", answer("q1", "Algebra", true, 1000, clock.now))
			before := store.Snapshot()

			clock.now = clock.now.Add(48 * time.Hour)
			got := store.Reset(context.Background(), tt.confirmer)
			assert.Equal(t, tt.want, got)

			if !tt.want {
				assert.Equal(t, before, store.Snapshot())
				return
			}
			assert.Equal(t, NewSnapshot(clock.now), store.Snapshot())

			reloaded := NewStore(context.Background(), storage, WithClock(clock.Now))
			assert.Equal(t, NewSnapshot(clock.now), reloaded.Snapshot())
		})
	}
}

func TestNewStore_LoadsPersistedState(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	storage := NewFileStorage(t.TempDir() + "/progress.json")
	ctx := context.Background()

	first := NewStore(ctx, storage, WithClock(clock.Now))
	first.RecordAnswer(ctx, "math", answer("q1", "Algebra", true, 1000, clock.now))

	second := NewStore(ctx, storage, WithClock(clock.Now))
	assert.Equal(t, first.Snapshot(), second.Snapshot())
}

func TestNewStore_CorruptedStateStartsFresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	storage := NewMemoryStorage()
	require.NoError(t, storage.Save(context.Background(), []byte("{broken")))

	store := NewStore(context.Background(), storage, WithClock(clock.Now))
	assert.Equal(t, NewSnapshot(clock.now), store.Snapshot())
}

func TestStore_PersistenceFailureKeepsMemoryState(t *testing.T) {
	ctrl := gomock.NewController(t)
	storage := mock_progress.NewMockStorage(ctrl)
	storage.EXPECT().Load(gomock.Any()).Return(nil, errors.New("disk unavailable"))
	storage.EXPECT().Save(gomock.Any(), gomock.Any()).Return(errors.New("quota exceeded")).Times(2)

	clock := &fakeClock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
	store := NewStore(context.Background(), storage, WithClock(clock.Now))
	store.RecordAnswer(context.Background(), "math", answer("q1", "Algebra", true, 1000, clock.now))
	store.RecordQuizCompletion(context.Background(), "math", QuizResult{Timestamp: Millis(clock.now), Score: 1, TotalQuestions: 1, Accuracy: 100})

	assert.Equal(t, 1, store.User().TotalQuestions)
	assert.Equal(t, 1, store.User().StreakCurrent)
}
