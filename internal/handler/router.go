package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/metrics"
	"github.com/BuzzLyutic/task-tracker/internal/middleware"
)

// NewRouter собирает все маршруты API. /tasks закрыт middleware.Authenticate.
// С m == nil /metrics не публикуется.
func NewRouter(auth *AuthHandler, tasks *TaskHandler, verifier middleware.TokenVerifier, logger *zap.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Post("/register", auth.Register)
	r.Post("/login", auth.Login)

	r.Route("/tasks", func(r chi.Router) {
		r.Use(middleware.Authenticate(verifier))
		r.Get("/", tasks.List)
		r.Post("/", tasks.Create)
		r.Put("/{id}", tasks.Update)
		r.Delete("/{id}", tasks.Delete)
	})

	return r
}
