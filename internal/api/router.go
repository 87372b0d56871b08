package api

import (
	"net/http"
	"time"

	"mathquest/internal/api/handler"
	"mathquest/internal/api/middleware"
	"mathquest/internal/app/service"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires every HTTP route. limiter may be nil, in which case the
// generator-backed routes are not rate limited.
func NewRouter(
	sessionService *service.SessionService,
	problemService *service.ProblemService,
	historyService *service.HistoryService,
	topicService *service.TopicService,
	limiter middleware.Limiter,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger) // Chi's logger
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", health)

	var generatorLimit func(http.Handler) http.Handler
	if limiter != nil {
		generatorLimit = middleware.RateLimit(limiter)
	}

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Get("/health", health)

		sessionHandler := handler.NewSessionHandler(sessionService)
		v1.Route("/session", sessionHandler.RegisterRoutes)

		topicHandler := handler.NewTopicHandler(topicService)
		v1.Route("/topics", topicHandler.RegisterRoutes)

		// Problem routes share a prefix with the submission history listing.
		problemHandler := handler.NewProblemHandler(problemService, generatorLimit)
		historyHandler := handler.NewHistoryHandler(historyService)
		v1.Route("/problem", func(pr chi.Router) {
			problemHandler.RegisterRoutes(pr)
			historyHandler.RegisterRoutes(pr)
		})
	})

	return r
}

func health(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("OK"))
}
