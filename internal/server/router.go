package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter mounts the API routes. gatherer serves /metrics and may be nil to skip the endpoint.
func NewRouter(h *Handler, gatherer prometheus.Gatherer, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if h.metrics != nil {
		r.Use(h.metrics.Middleware)
	}
	r.Use(corsMiddleware(allowedOrigins))

	r.Get("/healthz", h.Health)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", h.ListSubjects)
		r.Get("/subjects/{key}", h.GetSubject)

		r.Route("/quiz", func(r chi.Router) {
			r.Post("/start", h.StartQuiz)
			r.Get("/current", h.CurrentQuestion)
			r.Post("/answer", h.SubmitAnswer)
			r.Post("/next", h.NextQuestion)
			r.Post("/retake", h.RetakeQuiz)
			r.Post("/exit", h.ExitQuiz)
			r.Get("/statistics", h.QuizStatistics)
		})

		r.Route("/progress", func(r chi.Router) {
			r.Get("/", h.Overview)
			r.Get("/subjects", h.SubjectProgress)
			r.Get("/analytics", h.Analytics)
			r.Get("/stats", h.PeriodStatistics)
			r.Get("/export", h.ExportProgress)
			r.Post("/import", h.ImportProgress)
			r.Post("/reset", h.ResetProgress)
		})

		r.Route("/assistant", func(r chi.Router) {
			r.Post("/messages", h.SendMessage)
			r.Get("/status", h.AssistantStatus)
		})
	})
	return r
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed[origin] || allowed["*"] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
