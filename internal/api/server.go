package api

import (
	"log/slog"
	"net/http"

	"github.com/dgallion1/smartextract/internal/config"
	"github.com/dgallion1/smartextract/internal/llm"
	"github.com/dgallion1/smartextract/internal/pipeline"
	"github.com/dgallion1/smartextract/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Server is the HTTP API server for smartextract.
type Server struct {
	router   chi.Router
	sessions *session.Store
	service  *pipeline.Service
	stats    *llm.Stats
	model    string
	log      *slog.Logger
	cfg      config.Config
}

// NewServer creates and configures the HTTP server. stats may be nil when
// model calls are not instrumented.
func NewServer(sessions *session.Store, service *pipeline.Service, stats *llm.Stats, model string, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		sessions: sessions,
		service:  service,
		stats:    stats,
		model:    model,
		log:      log,
		cfg:      cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Get("/api/stats/llm", s.handleLLMStats)

		r.Route("/api/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)

			r.Route("/{sessionID}", func(r chi.Router) {
				r.Use(s.sessionCtx)

				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)

				r.Post("/extract", s.handleExtract)
				r.Post("/reorganize", s.handleReorganize)
				r.Get("/content", s.handleContent)
				r.Get("/organized/download", s.handleDownloadOrganized)
				r.Post("/organized/archive", s.handleArchiveOrganized)

				r.Post("/ask", s.handleAsk)
				r.Post("/quick/{action}", s.handleQuick)

				r.Get("/history", s.handleHistory)
				r.Post("/history/clear", s.handleClearHistory)
				r.Get("/history/{index}/chart", s.handleChart)
			})
		})
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
