// Package metrics exposes Prometheus collectors for quiz activity, assistant replies and HTTP traffic.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/at-ishikawa/refresher/internal/assistant"
	"github.com/at-ishikawa/refresher/internal/progress"
	"github.com/at-ishikawa/refresher/internal/quiz"
)

const namespace = "refresher"

type Metrics struct {
	answers          *prometheus.CounterVec
	quizzesCompleted *prometheus.CounterVec
	quizAccuracy     *prometheus.HistogramVec
	replies          *prometheus.CounterVec
	modelReady       prometheus.Gauge
	requests         *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "answers_total",
			Help:      "Answered quiz questions by subject and result.",
		}, []string{"subject", "result"}),
		quizzesCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quizzes_completed_total",
			Help:      "Completed quizzes by subject.",
		}, []string{"subject"}),
		quizAccuracy: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quiz_accuracy_percent",
			Help:      "Accuracy of completed quizzes.",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		}, []string{"subject"}),
		replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assistant_replies_total",
			Help:      "Assistant replies by intent and whether a fallback was used.",
		}, []string{"intent", "fallback"}),
		modelReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "model_ready",
			Help:      "1 when the text generation model can serve requests.",
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	reg.MustRegister(
		m.answers,
		m.quizzesCompleted,
		m.quizAccuracy,
		m.replies,
		m.modelReady,
		m.requests,
		m.requestDuration,
	)
	return m
}

func (m *Metrics) ObserveReply(reply assistant.Reply) {
	m.replies.WithLabelValues(string(reply.Intent), strconv.FormatBool(reply.Fallback)).Inc()
}

func (m *Metrics) SetModelReady(ready bool) {
	if ready {
		m.modelReady.Set(1)
		return
	}
	m.modelReady.Set(0)
}

// Recorder counts answers and completed quizzes before forwarding them to next.
func (m *Metrics) Recorder(next quiz.Recorder) quiz.Recorder {
	return &recorder{next: next, metrics: m}
}

type recorder struct {
	next    quiz.Recorder
	metrics *Metrics
}

func (r *recorder) RecordAnswer(ctx context.Context, subjectKey string, answer progress.AnswerRecord) {
	result := "incorrect"
	if answer.IsCorrect {
		result = "correct"
	}
	r.metrics.answers.WithLabelValues(subjectKey, result).Inc()
	r.next.RecordAnswer(ctx, subjectKey, answer)
}

func (r *recorder) RecordQuizCompletion(ctx context.Context, subjectKey string, result progress.QuizResult) {
	r.metrics.quizzesCompleted.WithLabelValues(subjectKey).Inc()
	r.metrics.quizAccuracy.WithLabelValues(subjectKey).Observe(result.Accuracy)
	r.next.RecordQuizCompletion(ctx, subjectKey, result)
}

func (r *recorder) SubjectPerformance(key string) (*progress.SubjectPerformance, bool) {
	return r.next.SubjectPerformance(key)
}

// Middleware records request counts and latency labelled with the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
