// Package server exposes the learning lab as a JSON HTTP API for the browser UI.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/at-ishikawa/refresher/internal/analytics"
	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/catalog"
	"github.com/at-ishikawa/refresher/internal/metrics"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
	"github.com/at-ishikawa/refresher/internal/selector"
)

// maxImportSize bounds the body of a progress import.
const maxImportSize = 10 << 20

type Dependencies struct {
	Catalog      *catalog.Catalog
	Store        *progress.Store
	Analytics    *analytics.Engine
	Assistant    *assistant.Assistant
	Session      *quiz.Session
	QuizDefaults selector.Config
	Metrics      *metrics.Metrics
	Logger       *slog.Logger
}

// Handler serves one local learner profile. mu serializes the quiz session and the
// progress operations that must not interleave with it. Assistant calls run outside mu
// so a slow model only delays its own request.
type Handler struct {
	catalog      *catalog.Catalog
	store        *progress.Store
	analytics    *analytics.Engine
	assistant    *assistant.Assistant
	quizDefaults selector.Config
	metrics      *metrics.Metrics
	logger       *slog.Logger
	validator    *requestValidator

	mu      sync.Mutex
	session *quiz.Session
}

func NewHandler(deps Dependencies) (*Handler, error) {
	v, err := newRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("newRequestValidator() > %w", err)
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		catalog:      deps.Catalog,
		store:        deps.Store,
		analytics:    deps.Analytics,
		assistant:    deps.Assistant,
		quizDefaults: deps.QuizDefaults.WithDefaults(),
		metrics:      deps.Metrics,
		logger:       logger,
		validator:    v,
		session:      deps.Session,
	}, nil
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	subjects := h.catalog.Subjects()
	res := make([]SubjectResponse, 0, len(subjects))
	for _, s := range subjects {
		res = append(res, newSubjectResponse(s))
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) GetSubject(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	subject, ok := h.catalog.Subject(key)
	if !ok {
		h.writeError(w, r, fmt.Errorf("subject %q: %w", key, catalog.ErrUnknownSubject))
		return
	}
	writeJSON(w, http.StatusOK, newSubjectResponse(subject))
}

func (h *Handler) StartQuiz(w http.ResponseWriter, r *http.Request) {
	var req StartQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg := h.quizDefaults
	if req.QuestionCount > 0 {
		cfg.QuestionCount = req.QuestionCount
	}
	if req.Difficulty != "" {
		cfg.Difficulty = req.Difficulty
	}
	if req.AdaptiveLearning != nil {
		cfg.AdaptiveLearning = *req.AdaptiveLearning
	}
	if req.TimeLimit != nil {
		cfg.TimeLimit = req.TimeLimit
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// a completed quiz is replaced, an unfinished one has to be exited first
	if h.session.State() == quiz.StateCompleted {
		h.session.Exit(nil)
	}
	if err := h.session.Start(r.Context(), req.Subject, cfg); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writePosition(w, r, http.StatusCreated)
}

func (h *Handler) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.writePosition(w, r, http.StatusOK)
}

func (h *Handler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	position, err := h.session.Current()
	if err != nil {
		h.mu.Unlock()
		h.writeError(w, r, err)
		return
	}
	outcome, err := h.session.SubmitAnswer(r.Context(), *req.Option)
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	feedback := h.assistant.Feedback(r.Context(), position.Question, *req.Option, outcome.IsCorrect, outcome.TimeSpent)
	writeJSON(w, http.StatusOK, AnswerResponse{
		IsCorrect:     outcome.IsCorrect,
		CorrectOption: outcome.CorrectOption,
		Explanation:   outcome.Explanation,
		TimeSpent:     outcome.TimeSpent,
		Last:          outcome.Last,
		Feedback:      FeedbackResponse(feedback),
	})
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	statistics, err := h.session.Advance(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if statistics != nil {
		writeJSON(w, http.StatusOK, NextResponse{Completed: true, Statistics: statistics})
		return
	}
	position, err := h.session.Current()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	res := newPositionResponse(h.session, position)
	writeJSON(w, http.StatusOK, NextResponse{Position: &res})
}

func (h *Handler) RetakeQuiz(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.session.Retake(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writePosition(w, r, http.StatusCreated)
}

func (h *Handler) QuizStatistics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	statistics := h.session.Statistics()
	if statistics == nil {
		h.writeError(w, r, fmt.Errorf("no completed quiz: %w", quiz.ErrInvalidState))
		return
	}
	writeJSON(w, http.StatusOK, statistics)
}

// ExitQuiz abandons the quiz. The client confirms the loss of recorded answers with confirm=true.
func (h *Handler) ExitQuiz(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	exited := h.session.Exit(progress.ConfirmFunc(func(string) bool {
		return req.Confirm
	}))
	res := ExitResponse{Exited: exited}
	if !exited {
		res.Message = quiz.ExitConfirmation
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.analytics.Overview(h.store.Snapshot()))
}

func (h *Handler) SubjectProgress(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, analytics.SubjectProgress(h.catalog, h.store.Snapshot()))
}

func (h *Handler) Analytics(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, h.store.Analytics())
}

// PeriodStatistics groups sessions by month. The optional year and month query parameters filter the periods.
func (h *Handler) PeriodStatistics(w http.ResponseWriter, r *http.Request) {
	year, err := intQuery(r, "year")
	if err != nil {
		h.writeBadRequest(w, err.Error())
		return
	}
	month, err := intQuery(r, "month")
	if err != nil || month < 0 || month > 12 {
		h.writeBadRequest(w, "month must be between 1 and 12")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	writeJSON(w, http.StatusOK, analytics.CalculatePeriodStatistics(h.store.Snapshot().Sessions, year, month))
}

func (h *Handler) ExportProgress(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	data, err := h.store.Export()
	h.mu.Unlock()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="concept-refresher-progress.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ImportProgress replaces all progress with an exported document. Invalid documents leave the progress unchanged.
func (h *Handler) ImportProgress(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		h.writeBadRequest(w, "failed to read the request body")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.store.Import(r.Context(), data) {
		h.writeBadRequest(w, "invalid progress document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"imported": true})
}

func (h *Handler) ResetProgress(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	reset := h.store.Reset(r.Context(), progress.ConfirmFunc(func(string) bool {
		return req.Confirm
	}))
	writeJSON(w, http.StatusOK, map[string]bool{"reset": reset})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if !h.decode(w, r, &req) {
		return
	}

	reply := h.assistant.Respond(r.Context(), req.Message)

	if h.metrics != nil {
		h.metrics.ObserveReply(reply)
	}
	writeJSON(w, http.StatusOK, reply)
}

func (h *Handler) AssistantStatus(w http.ResponseWriter, r *http.Request) {
	status := h.assistant.Status()
	if h.metrics != nil {
		h.metrics.SetModelReady(status.Ready)
	}
	writeJSON(w, http.StatusOK, status)
}

func (h *Handler) writePosition(w http.ResponseWriter, r *http.Request, status int) {
	position, err := h.session.Current()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, status, newPositionResponse(h.session, position))
}

// decode reads a JSON body into req and validates it. An empty body decodes to the zero value.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		h.writeBadRequest(w, "invalid JSON body")
		return false
	}
	if details := h.validator.check(req); len(details) > 0 {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: details})
		return false
	}
	return true
}

func (h *Handler) writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrUnknownSubject):
		status = http.StatusNotFound
	case errors.Is(err, quiz.ErrInvalidOption):
		status = http.StatusBadRequest
	case errors.Is(err, quiz.ErrNoQuestions):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, quiz.ErrInvalidState),
		errors.Is(err, quiz.ErrAlreadyAnswered),
		errors.Is(err, quiz.ErrNotAnswered):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "request failed", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func intQuery(r *http.Request, name string) (int, error) {
	value := r.URL.Query().Get(name)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return n, nil
}
