package progress

import (
	"errors"
	"fmt"
	"maps"
	"time"
)

const (
	// MaxRepetitionLevel is the highest spaced repetition level a question can reach.
	MaxRepetitionLevel = 5
	// MaxQuizHistory is the number of quiz completions kept per subject.
	MaxQuizHistory = 50
	// MaxSessions is the number of session records kept overall.
	MaxSessions = 100
)

// Millis converts t to epoch milliseconds. The zero time maps to 0.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis converts epoch milliseconds to a time. 0 maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

type UserState struct {
	TotalQuestions int   `json:"totalQuestions"`
	CorrectAnswers int   `json:"correctAnswers"`
	TotalTime      int64 `json:"totalTime"`
	StreakCurrent  int   `json:"streakCurrent"`
	StreakBest     int   `json:"streakBest"`
	DaysActive     int   `json:"daysActive"`
	LastActive     int64 `json:"lastActive"`
	StartDate      int64 `json:"startDate"`
}

func NewUserState(now time.Time) UserState {
	return UserState{
		StartDate: Millis(now),
	}
}

// Accuracy returns the overall percentage of correct answers.
func (u UserState) Accuracy() float64 {
	if u.TotalQuestions == 0 {
		return 0
	}
	return float64(u.CorrectAnswers) / float64(u.TotalQuestions) * 100
}

type TopicPerformance struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	AverageTime float64 `json:"averageTime"`
	LastAttempt int64   `json:"lastAttempt"`
}

func NewTopicPerformance() *TopicPerformance {
	return &TopicPerformance{}
}

func (p *TopicPerformance) record(isCorrect bool, timeSpent int64, at int64) {
	p.Total++
	if isCorrect {
		p.Correct++
	}
	p.AverageTime = runningMean(p.AverageTime, p.Total, float64(timeSpent))
	p.LastAttempt = at
}

// Accuracy returns the fraction of correct answers in [0, 1].
func (p TopicPerformance) Accuracy() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Total)
}

type DifficultyPerformance struct {
	Total       int     `json:"total"`
	Correct     int     `json:"correct"`
	AverageTime float64 `json:"averageTime"`
}

func NewDifficultyPerformance() *DifficultyPerformance {
	return &DifficultyPerformance{}
}

func (p *DifficultyPerformance) record(isCorrect bool, timeSpent int64) {
	p.Total++
	if isCorrect {
		p.Correct++
	}
	p.AverageTime = runningMean(p.AverageTime, p.Total, float64(timeSpent))
}

// QuestionHistoryEntry tracks the attempts on one question, keyed by question ID.
type QuestionHistoryEntry struct {
	Question        string  `json:"question"`
	Attempts        int     `json:"attempts"`
	Correct         int     `json:"correct"`
	LastCorrect     bool    `json:"lastCorrect"`
	LastAttempt     int64   `json:"lastAttempt"`
	RepetitionLevel int     `json:"repetitionLevel"`
	AverageTime     float64 `json:"averageTime"`
}

func NewQuestionHistoryEntry(question string) *QuestionHistoryEntry {
	return &QuestionHistoryEntry{Question: question}
}

func (e *QuestionHistoryEntry) record(isCorrect bool, timeSpent int64, at int64) {
	e.Attempts++
	if isCorrect {
		e.Correct++
		e.RepetitionLevel = min(e.RepetitionLevel+1, MaxRepetitionLevel)
	} else {
		e.RepetitionLevel = max(e.RepetitionLevel-1, 0)
	}
	e.LastCorrect = isCorrect
	e.LastAttempt = at
	e.AverageTime = runningMean(e.AverageTime, e.Attempts, float64(timeSpent))
}

type ScoreTally struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

type QuizCompletionRecord struct {
	Timestamp           int64                 `json:"timestamp"`
	Score               int                   `json:"score"`
	TotalQuestions      int                   `json:"totalQuestions"`
	Accuracy            float64               `json:"accuracy"`
	TotalTime           int64                 `json:"totalTime"`
	TopicBreakdown      map[string]ScoreTally `json:"topicBreakdown"`
	DifficultyBreakdown map[string]ScoreTally `json:"difficultyBreakdown"`
}

type SubjectPerformance struct {
	TotalQuestions        int                               `json:"totalQuestions"`
	CorrectAnswers        int                               `json:"correctAnswers"`
	TotalTime             int64                             `json:"totalTime"`
	LastAttempt           int64                             `json:"lastAttempt"`
	TopicPerformance      map[string]*TopicPerformance      `json:"topicPerformance"`
	DifficultyPerformance map[string]*DifficultyPerformance `json:"difficultyPerformance"`
	QuestionHistory       map[string]*QuestionHistoryEntry  `json:"questionHistory"`
	QuizHistory           []QuizCompletionRecord            `json:"quizHistory"`
}

func NewSubjectPerformance() *SubjectPerformance {
	return &SubjectPerformance{
		TopicPerformance:      make(map[string]*TopicPerformance),
		DifficultyPerformance: make(map[string]*DifficultyPerformance),
		QuestionHistory:       make(map[string]*QuestionHistoryEntry),
		QuizHistory:           make([]QuizCompletionRecord, 0),
	}
}

// Mastery returns the subject accuracy as a percentage.
func (s SubjectPerformance) Mastery() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalQuestions) * 100
}

// TopicAccuracy returns the accuracy of topic in [0, 1] and whether it has been attempted.
func (s SubjectPerformance) TopicAccuracy(topic string) (float64, bool) {
	p, ok := s.TopicPerformance[topic]
	if !ok || p.Total == 0 {
		return 0, false
	}
	return p.Accuracy(), true
}

// History returns the question history entry for id, or nil when the question was never answered.
func (s SubjectPerformance) History(id string) *QuestionHistoryEntry {
	return s.QuestionHistory[id]
}

func (s *SubjectPerformance) clone() *SubjectPerformance {
	c := *s
	c.TopicPerformance = make(map[string]*TopicPerformance, len(s.TopicPerformance))
	for k, v := range s.TopicPerformance {
		p := *v
		c.TopicPerformance[k] = &p
	}
	c.DifficultyPerformance = make(map[string]*DifficultyPerformance, len(s.DifficultyPerformance))
	for k, v := range s.DifficultyPerformance {
		p := *v
		c.DifficultyPerformance[k] = &p
	}
	c.QuestionHistory = make(map[string]*QuestionHistoryEntry, len(s.QuestionHistory))
	for k, v := range s.QuestionHistory {
		e := *v
		c.QuestionHistory[k] = &e
	}
	c.QuizHistory = make([]QuizCompletionRecord, len(s.QuizHistory))
	for i, r := range s.QuizHistory {
		r.TopicBreakdown = maps.Clone(r.TopicBreakdown)
		r.DifficultyBreakdown = maps.Clone(r.DifficultyBreakdown)
		c.QuizHistory[i] = r
	}
	return &c
}

type SessionRecord struct {
	Timestamp           int64    `json:"timestamp"`
	Subject             string   `json:"subject"`
	Score               int      `json:"score"`
	TotalQuestions      int      `json:"totalQuestions"`
	Accuracy            float64  `json:"accuracy"`
	Duration            int64    `json:"duration"`
	TopicsStudied       []string `json:"topicsStudied"`
	AverageResponseTime float64  `json:"averageResponseTime"`
}

type TopicInsight struct {
	Topic    string  `json:"topic"`
	Accuracy float64 `json:"accuracy"`
	Attempts int     `json:"attempts"`
}

type RecommendationType string

const (
	RecommendationImprovement RecommendationType = "improvement"
	RecommendationProgression RecommendationType = "progression"
	RecommendationEngagement  RecommendationType = "engagement"
)

type Recommendation struct {
	Type        RecommendationType `json:"type"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Priority    string             `json:"priority"`
	Action      string             `json:"action"`
	Data        string             `json:"data,omitempty"`
}

type Analytics struct {
	WeakTopics      []TopicInsight   `json:"weakTopics"`
	StrongTopics    []TopicInsight   `json:"strongTopics"`
	Recommendations []Recommendation `json:"recommendations"`
}

func NewAnalytics() Analytics {
	return Analytics{
		WeakTopics:      make([]TopicInsight, 0),
		StrongTopics:    make([]TopicInsight, 0),
		Recommendations: make([]Recommendation, 0),
	}
}

func (a Analytics) clone() Analytics {
	return Analytics{
		WeakTopics:      append(make([]TopicInsight, 0, len(a.WeakTopics)), a.WeakTopics...),
		StrongTopics:    append(make([]TopicInsight, 0, len(a.StrongTopics)), a.StrongTopics...),
		Recommendations: append(make([]Recommendation, 0, len(a.Recommendations)), a.Recommendations...),
	}
}

// Snapshot is the complete persisted state of one learner.
type Snapshot struct {
	User      UserState                      `json:"user"`
	Subjects  map[string]*SubjectPerformance `json:"subjects"`
	Sessions  []SessionRecord                `json:"sessions"`
	Analytics Analytics                      `json:"analytics"`
}

func NewSnapshot(now time.Time) *Snapshot {
	return &Snapshot{
		User:      NewUserState(now),
		Subjects:  make(map[string]*SubjectPerformance),
		Sessions:  make([]SessionRecord, 0),
		Analytics: NewAnalytics(),
	}
}

// Clone returns a deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		User:      s.User,
		Subjects:  make(map[string]*SubjectPerformance, len(s.Subjects)),
		Sessions:  make([]SessionRecord, len(s.Sessions)),
		Analytics: s.Analytics.clone(),
	}
	for k, v := range s.Subjects {
		c.Subjects[k] = v.clone()
	}
	for i, r := range s.Sessions {
		r.TopicsStudied = append(make([]string, 0, len(r.TopicsStudied)), r.TopicsStudied...)
		c.Sessions[i] = r
	}
	return c
}

var errNullEntry = errors.New("null entry")

// validate rejects documents whose records cannot be updated safely.
func (s *Snapshot) validate() error {
	for key, subject := range s.Subjects {
		if subject == nil {
			return fmt.Errorf("subject %q: %w", key, errNullEntry)
		}
		for topic, p := range subject.TopicPerformance {
			if p == nil {
				return fmt.Errorf("subject %q topic %q: %w", key, topic, errNullEntry)
			}
		}
		for difficulty, p := range subject.DifficultyPerformance {
			if p == nil {
				return fmt.Errorf("subject %q difficulty %q: %w", key, difficulty, errNullEntry)
			}
		}
		for id, entry := range subject.QuestionHistory {
			if entry == nil {
				return fmt.Errorf("subject %q question %q: %w", key, id, errNullEntry)
			}
			if entry.RepetitionLevel < 0 || entry.RepetitionLevel > MaxRepetitionLevel {
				return fmt.Errorf("subject %q question %q: repetition level %d is out of range", key, id, entry.RepetitionLevel)
			}
		}
	}
	return nil
}

// normalize fills collections that an imported document may have left nil.
// Null entries of a stored document are dropped and repetition levels are clamped.
func (s *Snapshot) normalize() {
	if s.Subjects == nil {
		s.Subjects = make(map[string]*SubjectPerformance)
	}
	for key, subject := range s.Subjects {
		if subject == nil {
			s.Subjects[key] = NewSubjectPerformance()
			continue
		}
		maps.DeleteFunc(subject.TopicPerformance, func(_ string, p *TopicPerformance) bool { return p == nil })
		maps.DeleteFunc(subject.DifficultyPerformance, func(_ string, p *DifficultyPerformance) bool { return p == nil })
		maps.DeleteFunc(subject.QuestionHistory, func(_ string, e *QuestionHistoryEntry) bool { return e == nil })
		for _, entry := range subject.QuestionHistory {
			entry.RepetitionLevel = min(max(entry.RepetitionLevel, 0), MaxRepetitionLevel)
		}
		if subject.TopicPerformance == nil {
			subject.TopicPerformance = make(map[string]*TopicPerformance)
		}
		if subject.DifficultyPerformance == nil {
			subject.DifficultyPerformance = make(map[string]*DifficultyPerformance)
		}
		if subject.QuestionHistory == nil {
			subject.QuestionHistory = make(map[string]*QuestionHistoryEntry)
		}
		if subject.QuizHistory == nil {
			subject.QuizHistory = make([]QuizCompletionRecord, 0)
		}
	}
	if s.Sessions == nil {
		s.Sessions = make([]SessionRecord, 0)
	}
	if s.Analytics.WeakTopics == nil {
		s.Analytics.WeakTopics = make([]TopicInsight, 0)
	}
	if s.Analytics.StrongTopics == nil {
		s.Analytics.StrongTopics = make([]TopicInsight, 0)
	}
	if s.Analytics.Recommendations == nil {
		s.Analytics.Recommendations = make([]Recommendation, 0)
	}
}

// AnswerRecord is one answered question as reported by a quiz session.
type AnswerRecord struct {
	QuestionID     string
	Question       string
	Topic          string
	Difficulty     string
	SelectedOption int
	CorrectOption  int
	IsCorrect      bool
	TimeSpent      int64
	Timestamp      int64
}

// QuizResult summarizes a finished quiz.
type QuizResult struct {
	Timestamp        int64
	Score            int
	TotalQuestions   int
	Accuracy         float64
	TotalTime        int64
	AverageTime      float64
	TopicScores      map[string]ScoreTally
	DifficultyScores map[string]ScoreTally
}

func runningMean(previous float64, n int, x float64) float64 {
	return (previous*float64(n-1) + x) / float64(n)
}
