// Package progress records learner performance and persists it as a single versioned document.
package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// ExportVersion is written into exported documents and required on import.
const ExportVersion = "1.0"

// DefaultStreakPassAccuracy is the quiz accuracy (percent) that counts towards the daily streak.
const DefaultStreakPassAccuracy = 70.0

// Analyzer derives analytics from a snapshot. The snapshot must not be modified.
type Analyzer interface {
	Recompute(snapshot *Snapshot, now time.Time) Analytics
}

// Confirmer asks the user to approve a destructive operation.
type Confirmer interface {
	Confirm(message string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(message string) bool

func (f ConfirmFunc) Confirm(message string) bool {
	return f(message)
}

type Option func(*Store)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func WithAnalyzer(analyzer Analyzer) Option {
	return func(s *Store) {
		s.analyzer = analyzer
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithStreakPassAccuracy sets the accuracy (percent) a quiz needs to extend the streak.
func WithStreakPassAccuracy(accuracy float64) Option {
	return func(s *Store) {
		s.streakPassAccuracy = accuracy
	}
}

// Store owns the learner's performance snapshot. It is safe for concurrent use;
// every mutation and its save happen under one lock.
type Store struct {
	storage            Storage
	analyzer           Analyzer
	logger             *slog.Logger
	now                func() time.Time
	streakPassAccuracy float64

	mu   sync.RWMutex
	data *Snapshot
}

// NewStore loads the persisted snapshot from storage. A missing or unreadable document starts a fresh profile.
func NewStore(ctx context.Context, storage Storage, opts ...Option) *Store {
	s := &Store{
		storage:            storage,
		logger:             slog.Default(),
		now:                time.Now,
		streakPassAccuracy: DefaultStreakPassAccuracy,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.data = s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) *Snapshot {
	data, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to load progress, starting fresh", slog.Any("error", err))
		}
		return NewSnapshot(s.now())
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		s.logger.Error("stored progress is corrupted, starting fresh", slog.Any("error", err))
		return NewSnapshot(s.now())
	}
	snapshot.normalize()
	return &snapshot
}

// persist writes the whole snapshot. Failures are logged and the in-memory state stays authoritative.
func (s *Store) persist(ctx context.Context) {
	data, err := json.Marshal(s.data)
	if err != nil {
		s.logger.Error("failed to encode progress", slog.Any("error", err))
		return
	}
	if err := s.storage.Save(ctx, data); err != nil {
		s.logger.Error("failed to save progress", slog.Any("error", err))
	}
}

// RecordAnswer folds one answered question into the subject's aggregates.
func (s *Store) RecordAnswer(ctx context.Context, subjectKey string, answer AnswerRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject := s.subject(subjectKey)

	subject.TotalQuestions++
	if answer.IsCorrect {
		subject.CorrectAnswers++
	}
	subject.TotalTime += answer.TimeSpent
	subject.LastAttempt = answer.Timestamp

	topic, ok := subject.TopicPerformance[answer.Topic]
	if !ok {
		topic = NewTopicPerformance()
		subject.TopicPerformance[answer.Topic] = topic
	}
	topic.record(answer.IsCorrect, answer.TimeSpent, answer.Timestamp)

	difficulty, ok := subject.DifficultyPerformance[answer.Difficulty]
	if !ok {
		difficulty = NewDifficultyPerformance()
		subject.DifficultyPerformance[answer.Difficulty] = difficulty
	}
	difficulty.record(answer.IsCorrect, answer.TimeSpent)

	history, ok := subject.QuestionHistory[answer.QuestionID]
	if !ok {
		history = NewQuestionHistoryEntry(answer.Question)
		subject.QuestionHistory[answer.QuestionID] = history
	}
	history.record(answer.IsCorrect, answer.TimeSpent, answer.Timestamp)

	s.data.User.TotalQuestions++
	if answer.IsCorrect {
		s.data.User.CorrectAnswers++
	}
	s.data.User.TotalTime += answer.TimeSpent

	s.persist(ctx)
}

// RecordQuizCompletion appends the quiz to the subject and session histories,
// updates the streak and recomputes analytics.
func (s *Store) RecordQuizCompletion(ctx context.Context, subjectKey string, result QuizResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subject := s.subject(subjectKey)

	subject.QuizHistory = append(subject.QuizHistory, QuizCompletionRecord{
		Timestamp:           result.Timestamp,
		Score:               result.Score,
		TotalQuestions:      result.TotalQuestions,
		Accuracy:            result.Accuracy,
		TotalTime:           result.TotalTime,
		TopicBreakdown:      result.TopicScores,
		DifficultyBreakdown: result.DifficultyScores,
	})
	if overflow := len(subject.QuizHistory) - MaxQuizHistory; overflow > 0 {
		subject.QuizHistory = append(subject.QuizHistory[:0:0], subject.QuizHistory[overflow:]...)
	}

	topics := make([]string, 0, len(result.TopicScores))
	for topic := range result.TopicScores {
		topics = append(topics, topic)
	}
	slices.Sort(topics)
	s.data.Sessions = append(s.data.Sessions, SessionRecord{
		Timestamp:           result.Timestamp,
		Subject:             subjectKey,
		Score:               result.Score,
		TotalQuestions:      result.TotalQuestions,
		Accuracy:            result.Accuracy,
		Duration:            result.TotalTime,
		TopicsStudied:       topics,
		AverageResponseTime: result.AverageTime,
	})
	if overflow := len(s.data.Sessions) - MaxSessions; overflow > 0 {
		s.data.Sessions = append(s.data.Sessions[:0:0], s.data.Sessions[overflow:]...)
	}

	s.updateStreakAndActivity(result.Accuracy)

	if s.analyzer != nil {
		s.data.Analytics = s.analyzer.Recompute(s.data, s.now())
	}

	s.persist(ctx)
}

// Reset wipes all progress after the confirmer approves. It reports whether the reset happened.
func (s *Store) Reset(ctx context.Context, confirmer Confirmer) bool {
	if confirmer == nil || !confirmer.Confirm("Are you sure you want to reset all progress? This cannot be undone.") {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = NewSnapshot(s.now())
	s.persist(ctx)
	return true
}

type exportDocument struct {
	*Snapshot
	ExportDate string `json:"exportDate"`
	Version    string `json:"version"`
}

// Export serializes the full snapshot together with an export date and format version.
func (s *Store) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := json.MarshalIndent(exportDocument{
		Snapshot:   s.data,
		ExportDate: s.now().UTC().Format(time.RFC3339),
		Version:    ExportVersion,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("json.MarshalIndent() > %w", err)
	}
	return data, nil
}

type importDocument struct {
	Version   string                         `json:"version"`
	User      *UserState                     `json:"user"`
	Subjects  map[string]*SubjectPerformance `json:"subjects"`
	Sessions  []SessionRecord                `json:"sessions"`
	Analytics Analytics                      `json:"analytics"`
}

// Import replaces the whole snapshot with an exported document.
// Documents without a version marker or user state are rejected and nothing changes.
func (s *Store) Import(ctx context.Context, blob []byte) bool {
	var doc importDocument
	if err := json.Unmarshal(blob, &doc); err != nil {
		s.logger.Warn("failed to parse imported progress", slog.Any("error", err))
		return false
	}
	if doc.Version == "" || doc.User == nil {
		s.logger.Warn("imported progress is missing version or user data")
		return false
	}

	snapshot := &Snapshot{
		User:      *doc.User,
		Subjects:  doc.Subjects,
		Sessions:  doc.Sessions,
		Analytics: doc.Analytics,
	}
	if err := snapshot.validate(); err != nil {
		s.logger.Warn("imported progress is malformed", slog.Any("error", err))
		return false
	}
	snapshot.normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snapshot
	s.persist(ctx)
	return true
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *Store) User() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.User
}

func (s *Store) Analytics() Analytics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Analytics.clone()
}

// SubjectPerformance returns a copy of the subject's aggregates.
func (s *Store) SubjectPerformance(key string) (*SubjectPerformance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subject, ok := s.data.Subjects[key]
	if !ok {
		return nil, false
	}
	return subject.clone(), true
}

func (s *Store) subject(key string) *SubjectPerformance {
	subject, ok := s.data.Subjects[key]
	if !ok {
		subject = NewSubjectPerformance()
		s.data.Subjects[key] = subject
	}
	return subject
}
