package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/quiz"
)

type StartQuizRequest struct {
	Subject          string `json:"subject" validate:"required"`
	QuestionCount    int    `json:"questionCount" validate:"omitempty,min=1,max=50"`
	Difficulty       string `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced mixed"`
	AdaptiveLearning *bool  `json:"adaptiveLearning"`
	// TimeLimit is in seconds.
	TimeLimit *int `json:"timeLimit" validate:"omitempty,min=1"`
}

type AnswerRequest struct {
	Option *int `json:"option" validate:"required,min=0"`
}

type ConfirmRequest struct {
	Confirm bool `json:"confirm"`
}

type MessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type SubjectResponse struct {
	Key           string   `json:"key"`
	Name          string   `json:"name"`
	Icon          string   `json:"icon"`
	Description   string   `json:"description"`
	Difficulty    string   `json:"difficulty"`
	Color         string   `json:"color"`
	Topics        []string `json:"topics"`
	QuestionCount int      `json:"questionCount"`
}

func newSubjectResponse(s catalog.Subject) SubjectResponse {
	topics := s.Topics
	if topics == nil {
		topics = []string{}
	}
	return SubjectResponse{
		Key:           s.Key,
		Name:          s.Name,
		Icon:          s.Icon,
		Description:   s.Description,
		Difficulty:    s.Difficulty,
		Color:         s.Color,
		Topics:        topics,
		QuestionCount: len(s.Questions),
	}
}

// QuestionResponse never carries the correct option or the explanation.
type QuestionResponse struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
	Difficulty string   `json:"difficulty"`
	Topic      string   `json:"topic"`
}

type PositionResponse struct {
	Subject  string           `json:"subject"`
	State    string           `json:"state"`
	Question QuestionResponse `json:"question"`
	Index    int              `json:"index"`
	Total    int              `json:"total"`
	Answered bool             `json:"answered"`
	// Deadline is a unix timestamp in milliseconds, present when the quiz has a time limit.
	Deadline *int64 `json:"deadline,omitempty"`
}

func newPositionResponse(session *quiz.Session, p quiz.Position) PositionResponse {
	res := PositionResponse{
		Subject: session.Subject().Key,
		State:   session.State().String(),
		Question: QuestionResponse{
			ID:         p.Question.ID,
			Question:   p.Question.Question,
			Options:    p.Question.Options,
			Difficulty: string(p.Question.Difficulty),
			Topic:      p.Question.Topic,
		},
		Index:    p.Index,
		Total:    p.Total,
		Answered: p.Answered,
	}
	if deadline, ok := session.Deadline(); ok {
		ms := deadline.UnixMilli()
		res.Deadline = &ms
	}
	return res
}

type FeedbackResponse struct {
	Message       string `json:"message"`
	Encouragement string `json:"encouragement"`
	Suggestion    string `json:"suggestion,omitempty"`
	LearningTip   string `json:"learningTip"`
	Generated     bool   `json:"generated"`
}

type AnswerResponse struct {
	IsCorrect     bool             `json:"isCorrect"`
	CorrectOption int              `json:"correctOption"`
	Explanation   string           `json:"explanation"`
	TimeSpent     int64            `json:"timeSpent"`
	Last          bool             `json:"last"`
	Feedback      FeedbackResponse `json:"feedback"`
}

type NextResponse struct {
	Completed  bool              `json:"completed"`
	Position   *PositionResponse `json:"position,omitempty"`
	Statistics *quiz.Statistics  `json:"statistics,omitempty"`
}

type ExitResponse struct {
	Exited  bool   `json:"exited"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type requestValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newRequestValidator() (*requestValidator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, fmt.Errorf("failed to register default translations: %w", err)
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: validate, translator: trans}, nil
}

// check returns the translated messages of every failed rule.
func (v *requestValidator) check(req any) []string {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}
	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, e.Translate(v.translator))
	}
	return messages
}
