package assistant

import (
	"context"

	"github.com/at-ishikawa/refresher/internal/catalog"
)

type Feedback struct {
	Message       string `json:"message"`
	Encouragement string `json:"encouragement"`
	Suggestion    string `json:"suggestion,omitempty"`
	LearningTip   string `json:"learningTip"`
	Generated     bool   `json:"generated"`
}

// Feedback comments on an answered question. timeSpent is in milliseconds.
func (a *Assistant) Feedback(ctx context.Context, q catalog.Question, selected int, correct bool, timeSpent int64) Feedback {
	if text, ok := a.generate(ctx, feedbackPrompt(q, selected, correct, timeSpent), feedbackMaxTokens); ok {
		encouragement, tip := parseFeedback(text)
		if encouragement == "" {
			encouragement = defaultEncouragement
		}
		if tip == "" {
			tip = defaultTip
		}
		return Feedback{
			Message:       q.Explanation,
			Encouragement: encouragement,
			LearningTip:   tip,
			Generated:     true,
		}
	}

	if correct {
		messages := praise
		if timeSpent < quickAnswer {
			messages = quickPraise
		}
		return Feedback{
			Encouragement: a.pick(messages),
			LearningTip:   learningTip(q.Topic, true),
		}
	}
	return Feedback{
		Message:     "Not quite right. The correct approach is: " + q.Explanation,
		Suggestion:  studySuggestion(q.Topic),
		LearningTip: learningTip(q.Topic, false),
	}
}
