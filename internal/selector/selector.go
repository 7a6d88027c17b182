// Package selector picks the questions for a quiz from a subject's catalog and the learner's performance.
package selector

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/repetition"
)

const (
	DifficultyMixed      = "mixed"
	DefaultQuestionCount = 10
)

// Config is the caller-supplied quiz configuration.
type Config struct {
	QuestionCount    int    `json:"questionCount"`
	Difficulty       string `json:"difficulty"`
	AdaptiveLearning bool   `json:"adaptiveLearning"`
	// TimeLimit is in seconds. Nil means no limit.
	TimeLimit *int `json:"timeLimit"`
}

func DefaultConfig() Config {
	return Config{
		QuestionCount:    DefaultQuestionCount,
		Difficulty:       DifficultyMixed,
		AdaptiveLearning: true,
	}
}

// WithDefaults fills zero values with the defaults. AdaptiveLearning is left as given.
func (c Config) WithDefaults() Config {
	if c.QuestionCount <= 0 {
		c.QuestionCount = DefaultQuestionCount
	}
	if c.Difficulty == "" {
		c.Difficulty = DifficultyMixed
	}
	return c
}

type Option func(*Selector)

// WithSeed makes the shuffles reproducible.
func WithSeed(seed1, seed2 uint64) Option {
	return func(s *Selector) {
		s.rand = rand.New(rand.NewPCG(seed1, seed2))
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		s.now = now
	}
}

// WithTopicThresholds overrides the topic accuracies below which a topic is weak and from which it is strong.
func WithTopicThresholds(weakBelow, strongFrom float64) Option {
	return func(s *Selector) {
		s.weakBelow = weakBelow
		s.strongFrom = strongFrom
	}
}

// Selector is not safe for concurrent use because it owns its random source.
type Selector struct {
	rand        *rand.Rand
	now         func() time.Time
	weakBelow   float64
	strongFrom  float64
	strongShare float64
}

func New(opts ...Option) *Selector {
	s := &Selector{
		rand:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:         time.Now,
		weakBelow:   0.7,
		strongFrom:  0.8,
		strongShare: 0.3,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectQuestions returns config.QuestionCount questions, or every question of the subject when it has fewer.
// performance may be nil for a subject that was never practiced.
func (s *Selector) SelectQuestions(subject catalog.Subject, config Config, performance *progress.SubjectPerformance) []catalog.Question {
	config = config.WithDefaults()
	all := subject.Questions

	candidates := append([]catalog.Question(nil), all...)
	if config.AdaptiveLearning && performance != nil && len(performance.TopicPerformance) > 0 {
		candidates = s.prioritizeByTopic(candidates, performance)
	}

	if config.Difficulty != DifficultyMixed {
		filtered := candidates[:0:0]
		for _, q := range candidates {
			if string(q.Difficulty) == config.Difficulty {
				filtered = append(filtered, q)
			}
		}
		candidates = filtered
	}

	var history map[string]*progress.QuestionHistoryEntry
	if performance != nil {
		history = performance.QuestionHistory
	}
	candidates = repetition.Order(candidates, history, s.now())

	if len(candidates) < config.QuestionCount {
		included := make(map[string]bool, len(candidates))
		for _, q := range candidates {
			included[q.ID] = true
		}
		var remaining []catalog.Question
		for _, q := range all {
			if !included[q.ID] {
				remaining = append(remaining, q)
			}
		}
		s.shuffle(remaining)
		need := config.QuestionCount - len(candidates)
		candidates = append(candidates, remaining[:min(need, len(remaining))]...)
	}

	s.shuffle(candidates)
	return candidates[:min(config.QuestionCount, len(candidates))]
}

// PickOne returns a single adaptively chosen question.
func (s *Selector) PickOne(subject catalog.Subject, performance *progress.SubjectPerformance) (catalog.Question, bool) {
	config := DefaultConfig()
	config.QuestionCount = 1
	questions := s.SelectQuestions(subject, config, performance)
	if len(questions) == 0 {
		return catalog.Question{}, false
	}
	return questions[0], true
}

// prioritizeByTopic orders weak topics first, then unclassified ones, then a capped share of strong topics.
func (s *Selector) prioritizeByTopic(questions []catalog.Question, performance *progress.SubjectPerformance) []catalog.Question {
	var weak, other, strong []catalog.Question
	for _, q := range questions {
		accuracy, ok := performance.TopicAccuracy(q.Topic)
		switch {
		case ok && accuracy < s.weakBelow:
			weak = append(weak, q)
		case ok && accuracy >= s.strongFrom:
			strong = append(strong, q)
		default:
			other = append(other, q)
		}
	}
	s.shuffle(weak)
	s.shuffle(other)
	s.shuffle(strong)

	strongLimit := int(math.Ceil(float64(len(questions)) * s.strongShare))
	strong = strong[:min(strongLimit, len(strong))]

	result := make([]catalog.Question, 0, len(weak)+len(other)+len(strong))
	result = append(result, weak...)
	result = append(result, other...)
	return append(result, strong...)
}

func (s *Selector) shuffle(questions []catalog.Question) {
	s.rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})
}
