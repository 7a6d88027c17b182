// Package assistant answers chat messages for the learning lab. Generation is delegated to an
// inference.Client; every failure degrades to a catalog question or a canned response.
package assistant

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/inference"
	"github.com/at-ishikawa/refresher/internal/progress"
)

const (
	DefaultSubject = "data_structures"
	DefaultTimeout = 30 * time.Second
)

// ProgressReader exposes the learner data the assistant personalizes with. *progress.Store satisfies it.
type ProgressReader interface {
	User() progress.UserState
	Analytics() progress.Analytics
	SubjectPerformance(key string) (*progress.SubjectPerformance, bool)
}

// QuestionPicker picks one question for a subject. *selector.Selector satisfies it.
type QuestionPicker interface {
	PickOne(subject catalog.Subject, performance *progress.SubjectPerformance) (catalog.Question, bool)
}

type Option func(*Assistant)

// WithTimeout bounds every generation call.
func WithTimeout(timeout time.Duration) Option {
	return func(a *Assistant) {
		a.timeout = timeout
	}
}

func WithSeed(seed1, seed2 uint64) Option {
	return func(a *Assistant) {
		a.rand = rand.New(rand.NewPCG(seed1, seed2))
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		a.logger = logger
	}
}

func WithDefaultSubject(key string) Option {
	return func(a *Assistant) {
		a.defaultSubject = key
	}
}

type Reply struct {
	Text     string `json:"text"`
	Intent   Intent `json:"intent"`
	Fallback bool   `json:"fallback"`
	// Question is set for quiz replies so the caller can grade an answer.
	Question *catalog.Question `json:"question,omitempty"`
}

// Assistant is safe for concurrent use when its ProgressReader is. Model calls run without
// holding any lock; mu only guards the random sources.
type Assistant struct {
	client         inference.Client
	subjects       *catalog.Catalog
	picker         QuestionPicker
	progress       ProgressReader
	timeout        time.Duration
	logger         *slog.Logger
	defaultSubject string

	mu   sync.Mutex
	rand *rand.Rand
}

func New(client inference.Client, subjects *catalog.Catalog, picker QuestionPicker, learner ProgressReader, opts ...Option) *Assistant {
	if client == nil {
		client = inference.Unavailable{}
	}
	a := &Assistant{
		client:         client,
		subjects:       subjects,
		picker:         picker,
		progress:       learner,
		timeout:        DefaultTimeout,
		logger:         slog.Default(),
		defaultSubject: DefaultSubject,
		rand:           rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Status reports the state of the underlying model.
func (a *Assistant) Status() inference.Status {
	return a.client.Status()
}

// Respond answers a chat message. It never fails; when the model cannot help a fallback reply is returned.
func (a *Assistant) Respond(ctx context.Context, message string) Reply {
	intent := DetectIntent(message)
	switch intent {
	case IntentQuiz:
		return a.quizReply(ctx, message)
	case IntentStudyPlan:
		return a.studyPlanReply(ctx)
	default:
		text, ok := a.generate(ctx, generalPrompt(message), generalMaxTokens)
		if !ok {
			return Reply{Text: a.pick(cannedResponses), Intent: IntentGeneral, Fallback: true}
		}
		return Reply{Text: text, Intent: IntentGeneral}
	}
}

func (a *Assistant) quizReply(ctx context.Context, message string) Reply {
	subject, ok := a.subjects.FindMentioned(message)
	if !ok {
		subject, ok = a.subjects.Subject(a.defaultSubject)
	}
	if !ok {
		subjects := a.subjects.Subjects()
		if len(subjects) == 0 {
			return Reply{Text: a.pick(cannedResponses), Intent: IntentQuiz, Fallback: true}
		}
		subject = subjects[0]
	}
	performance, _ := a.progress.SubjectPerformance(subject.Key)

	if a.client.Status().Ready {
		difficulty := optimalDifficulty(performance)
		topic := a.weakTopicOf(subject)
		if text, ok := a.generate(ctx, questionPrompt(subject.Name, difficulty, topic), questionMaxTokens); ok {
			q, err := parseQuestion(text)
			if err == nil {
				q.Difficulty = difficulty
				q.Topic = topic
				if q.Topic == "" {
					q.Topic = subject.Name
				}
				q.Subject = subject.Key
				return Reply{Text: formatQuestion(q, subject.Name, true), Intent: IntentQuiz, Question: &q}
			}
			a.logger.WarnContext(ctx, "failed to parse generated question", slog.Any("error", err))
		}
	}

	a.mu.Lock()
	q, ok := a.picker.PickOne(subject, performance)
	a.mu.Unlock()
	if !ok {
		return Reply{Text: a.pick(cannedResponses), Intent: IntentQuiz, Fallback: true}
	}
	return Reply{Text: formatQuestion(q, subject.Name, false), Intent: IntentQuiz, Fallback: true, Question: &q}
}

func (a *Assistant) studyPlanReply(ctx context.Context) Reply {
	user := a.progress.User()
	analytics := a.progress.Analytics()
	summary := performanceSummary{
		TotalQuestions: user.TotalQuestions,
		CorrectAnswers: user.CorrectAnswers,
		Accuracy:       user.Accuracy(),
		WeakTopics:     topicNames(analytics.WeakTopics),
		StrongTopics:   topicNames(analytics.StrongTopics),
		Subjects:       make([]string, 0),
	}
	for _, subject := range a.subjects.Subjects() {
		summary.Subjects = append(summary.Subjects, subject.Name)
	}

	prompt, err := studyPlanPrompt(summary)
	if err != nil {
		a.logger.ErrorContext(ctx, "failed to build study plan prompt", slog.Any("error", err))
		return Reply{Text: fallbackStudyPlan, Intent: IntentStudyPlan, Fallback: true}
	}
	text, ok := a.generate(ctx, prompt, studyPlanMaxTokens)
	if !ok {
		return Reply{Text: fallbackStudyPlan, Intent: IntentStudyPlan, Fallback: true}
	}
	return Reply{Text: text, Intent: IntentStudyPlan}
}

// generate calls the model when it is ready. It reports false on any failure or an empty response.
func (a *Assistant) generate(ctx context.Context, prompt string, maxTokens int) (string, bool) {
	if !a.client.Status().Ready {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	text, err := a.client.Generate(ctx, prompt, maxTokens)
	if err != nil {
		a.logger.WarnContext(ctx, "text generation failed", slog.Any("error", err))
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	return text, true
}

// weakTopicOf returns the weakest analyzed topic that belongs to the subject.
func (a *Assistant) weakTopicOf(subject catalog.Subject) string {
	for _, weak := range a.progress.Analytics().WeakTopics {
		for _, topic := range subject.Topics {
			if topic == weak.Topic {
				return topic
			}
		}
	}
	return ""
}

// optimalDifficulty suggests a difficulty from the subject accuracy once there are enough answers.
func optimalDifficulty(performance *progress.SubjectPerformance) catalog.Difficulty {
	if performance == nil || performance.TotalQuestions < 5 {
		return catalog.DifficultyBeginner
	}
	accuracy := float64(performance.CorrectAnswers) / float64(performance.TotalQuestions)
	switch {
	case accuracy > 0.8:
		return catalog.DifficultyAdvanced
	case accuracy > 0.6:
		return catalog.DifficultyIntermediate
	default:
		return catalog.DifficultyBeginner
	}
}

func topicNames(insights []progress.TopicInsight) []string {
	names := make([]string, 0, len(insights))
	for _, insight := range insights {
		names = append(names, insight.Topic)
	}
	return names
}

func (a *Assistant) pick(options []string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return options[a.rand.IntN(len(options))]
}
