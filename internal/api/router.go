package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lectio/lectio/internal/service"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *service.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(CORSMiddleware)
	r.Use(AuthMiddleware(authEnabled, token))

	// Document intake.
	r.Post("/upload", h.Upload)

	// Quiz generation and retrieval.
	r.Post("/generate-quiz", h.GenerateQuiz)
	r.Post("/generate-quiz-from-file", h.GenerateQuizFromFile)
	r.Get("/quizzes", h.ListQuizzes)
	r.Get("/quizzes/{id}", h.GetQuiz)

	// Learning notes.
	r.Post("/generate-learning-note", h.GenerateLearningNote)
	r.Get("/learning-note/{fileID}", h.GetLearningNote)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
