// Package quiz runs a single quiz: it presents selected questions, records answers and summarizes the result.
package quiz

//go:generate mockgen -source=session.go -destination=../mocks/quiz/mock_session.go -package=mock_quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/selector"
)

var (
	ErrNoQuestions     = errors.New("subject has no questions matching the configuration")
	ErrInvalidState    = errors.New("operation is not allowed in the current quiz state")
	ErrInvalidOption   = errors.New("option index is out of range")
	ErrAlreadyAnswered = errors.New("current question is already answered")
	ErrNotAnswered     = errors.New("current question is not answered yet")
)

// ExitConfirmation is shown before abandoning a quiz with recorded answers.
const ExitConfirmation = "Are you sure you want to exit? Your progress will be lost."

type State int

const (
	StateIdle State = iota
	StateInProgress
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateCompleted:
		return "completed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Recorder receives answers and completed quizzes. *progress.Store satisfies it.
type Recorder interface {
	RecordAnswer(ctx context.Context, subjectKey string, answer progress.AnswerRecord)
	RecordQuizCompletion(ctx context.Context, subjectKey string, result progress.QuizResult)
	SubjectPerformance(key string) (*progress.SubjectPerformance, bool)
}

// QuestionSource picks the questions of a quiz. *selector.Selector satisfies it.
type QuestionSource interface {
	SelectQuestions(subject catalog.Subject, config selector.Config, performance *progress.SubjectPerformance) []catalog.Question
}

// SubjectFinder looks subjects up by key. *catalog.Catalog satisfies it.
type SubjectFinder interface {
	Subject(key string) (catalog.Subject, bool)
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// Position describes the question currently presented.
type Position struct {
	Question catalog.Question
	Index    int
	Total    int
	Answered bool
}

// AnswerOutcome is returned for every submitted answer.
type AnswerOutcome struct {
	IsCorrect     bool
	CorrectOption int
	Explanation   string
	TimeSpent     int64
	Last          bool
}

// Session is one quiz run. It is not safe for concurrent use.
type Session struct {
	subjects SubjectFinder
	source   QuestionSource
	recorder Recorder
	now      func() time.Time
	logger   *slog.Logger

	state             State
	subject           catalog.Subject
	config            selector.Config
	questions         []catalog.Question
	index             int
	answers           []progress.AnswerRecord
	score             int
	startedAt         time.Time
	questionStartedAt time.Time
	statistics        *Statistics
}

func NewSession(subjects SubjectFinder, source QuestionSource, recorder Recorder, opts ...Option) *Session {
	s := &Session{
		subjects: subjects,
		source:   source,
		recorder: recorder,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) Subject() catalog.Subject {
	return s.subject
}

func (s *Session) Config() selector.Config {
	return s.config
}

// Start selects the questions and presents the first one. The session must be idle.
// On failure the session stays idle.
func (s *Session) Start(ctx context.Context, subjectKey string, config selector.Config) error {
	if s.state != StateIdle {
		return fmt.Errorf("start quiz in state %s: %w", s.state, ErrInvalidState)
	}
	subject, ok := s.subjects.Subject(subjectKey)
	if !ok {
		return fmt.Errorf("subject %q: %w", subjectKey, catalog.ErrUnknownSubject)
	}

	config = config.WithDefaults()
	performance, _ := s.recorder.SubjectPerformance(subjectKey)
	questions := s.source.SelectQuestions(subject, config, performance)
	if len(questions) == 0 {
		return fmt.Errorf("subject %q: %w", subjectKey, ErrNoQuestions)
	}

	now := s.now()
	s.state = StateInProgress
	s.subject = subject
	s.config = config
	s.questions = questions
	s.index = 0
	s.answers = make([]progress.AnswerRecord, 0, len(questions))
	s.score = 0
	s.startedAt = now
	s.questionStartedAt = now
	s.statistics = nil

	s.logger.DebugContext(ctx, "quiz started",
		slog.String("subject", subjectKey),
		slog.Int("questions", len(questions)),
		slog.String("difficulty", config.Difficulty),
	)
	return nil
}

// Retake starts the completed quiz again with the same subject and configuration.
func (s *Session) Retake(ctx context.Context) error {
	if s.state != StateCompleted {
		return fmt.Errorf("retake quiz in state %s: %w", s.state, ErrInvalidState)
	}
	subjectKey, config := s.subject.Key, s.config
	s.state = StateIdle
	return s.Start(ctx, subjectKey, config)
}

func (s *Session) Current() (Position, error) {
	if s.state != StateInProgress {
		return Position{}, fmt.Errorf("current question in state %s: %w", s.state, ErrInvalidState)
	}
	return Position{
		Question: s.questions[s.index],
		Index:    s.index,
		Total:    len(s.questions),
		Answered: s.answered(),
	}, nil
}

func (s *Session) answered() bool {
	return len(s.answers) > s.index
}

// SubmitAnswer grades the selected option for the current question and forwards the answer to the recorder.
// Invalid input is rejected before anything changes.
func (s *Session) SubmitAnswer(ctx context.Context, option int) (AnswerOutcome, error) {
	if s.state != StateInProgress {
		return AnswerOutcome{}, fmt.Errorf("submit answer in state %s: %w", s.state, ErrInvalidState)
	}
	question := s.questions[s.index]
	if option < 0 || option >= len(question.Options) {
		return AnswerOutcome{}, fmt.Errorf("option %d of %d: %w", option, len(question.Options), ErrInvalidOption)
	}
	if s.answered() {
		return AnswerOutcome{}, ErrAlreadyAnswered
	}

	now := s.now()
	timeSpent := max(0, now.Sub(s.questionStartedAt).Milliseconds())
	record := progress.AnswerRecord{
		QuestionID:     question.ID,
		Question:       question.Question,
		Topic:          question.Topic,
		Difficulty:     string(question.Difficulty),
		SelectedOption: option,
		CorrectOption:  question.Correct,
		IsCorrect:      option == question.Correct,
		TimeSpent:      timeSpent,
		Timestamp:      progress.Millis(now),
	}
	s.answers = append(s.answers, record)
	if record.IsCorrect {
		s.score++
	}
	s.recorder.RecordAnswer(ctx, s.subject.Key, record)

	return AnswerOutcome{
		IsCorrect:     record.IsCorrect,
		CorrectOption: question.Correct,
		Explanation:   question.Explanation,
		TimeSpent:     timeSpent,
		Last:          s.index+1 == len(s.questions),
	}, nil
}

// Advance moves to the next question. After the last question the quiz completes,
// the result is forwarded to the recorder and the final statistics are returned.
func (s *Session) Advance(ctx context.Context) (*Statistics, error) {
	if s.state != StateInProgress {
		return nil, fmt.Errorf("advance in state %s: %w", s.state, ErrInvalidState)
	}
	if !s.answered() {
		return nil, ErrNotAnswered
	}

	if s.index+1 < len(s.questions) {
		s.index++
		s.questionStartedAt = s.now()
		return nil, nil
	}
	return s.complete(ctx), nil
}

func (s *Session) complete(ctx context.Context) *Statistics {
	now := s.now()
	statistics := computeStatistics(s.answers, s.score, len(s.questions))
	s.statistics = &statistics
	s.state = StateCompleted

	s.recorder.RecordQuizCompletion(ctx, s.subject.Key, progress.QuizResult{
		Timestamp:        progress.Millis(now),
		Score:            statistics.Score,
		TotalQuestions:   statistics.TotalQuestions,
		Accuracy:         statistics.Accuracy,
		TotalTime:        max(0, now.Sub(s.startedAt).Milliseconds()),
		AverageTime:      statistics.AverageTime,
		TopicScores:      statistics.TopicScores,
		DifficultyScores: statistics.DifficultyScores,
	})
	s.logger.DebugContext(ctx, "quiz completed",
		slog.String("subject", s.subject.Key),
		slog.Int("score", statistics.Score),
		slog.Int("total", statistics.TotalQuestions),
	)
	return s.Statistics()
}

// Exit abandons the quiz and returns to idle. A quiz with recorded answers is only abandoned
// when the confirmer approves; nothing of the abandoned quiz is recorded as completed.
// It reports whether the session is now idle.
func (s *Session) Exit(confirmer progress.Confirmer) bool {
	if s.state == StateInProgress && len(s.answers) > 0 {
		if confirmer == nil || !confirmer.Confirm(ExitConfirmation) {
			return false
		}
	}
	s.state = StateIdle
	s.questions = nil
	s.answers = nil
	s.index = 0
	s.score = 0
	s.statistics = nil
	return true
}

// Statistics returns the final statistics of a completed quiz, or nil.
func (s *Session) Statistics() *Statistics {
	if s.statistics == nil {
		return nil
	}
	c := s.statistics.clone()
	return &c
}

// Deadline returns when the configured time limit runs out.
func (s *Session) Deadline() (time.Time, bool) {
	if s.state != StateInProgress || s.config.TimeLimit == nil || *s.config.TimeLimit <= 0 {
		return time.Time{}, false
	}
	return s.startedAt.Add(time.Duration(*s.config.TimeLimit) * time.Second), true
}

// Answers returns the answers recorded so far.
func (s *Session) Answers() []progress.AnswerRecord {
	return append([]progress.AnswerRecord(nil), s.answers...)
}
