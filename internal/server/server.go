package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lazypower/halflife/internal/logging"
	"github.com/lazypower/halflife/internal/store"
	"github.com/lazypower/halflife/internal/tracker"
)

// Server is the halflife HTTP API server.
type Server struct {
	tracker *tracker.Tracker
	db      *store.DB
	logger  *zap.Logger
	router  chi.Router
	version string
	started time.Time
}

// New creates a Server over the tracker. db is used for health checks and
// may be nil.
func New(t *tracker.Tracker, db *store.DB, version string, logger *zap.Logger) *Server {
	s := &Server{
		tracker: t,
		db:      db,
		logger:  logging.OrNop(logger),
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/intakes", s.handleListIntakes)
		r.Post("/intakes", s.handleAddIntake)
		r.Delete("/intakes/{id}", s.handleRemoveIntake)
		r.Put("/intakes/{id}/symptoms", s.handleSetSymptoms)
		r.Patch("/intakes/{id}", s.handleCorrectIntake)

		r.Get("/status", s.handleStatus)
		r.Get("/curve", s.handleCurve)
		r.Get("/insights", s.handleInsights)
		r.Get("/reports", s.handleReport)

		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)

		r.Get("/catalog", s.handleCatalog)
		r.Get("/symptoms", s.handleSymptoms)
		r.Post("/analyze", s.handleAnalyze)
	})

	s.router = r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
	}
	if s.db != nil {
		resp["db"] = s.db.Ping() == nil
		resp["db_path"] = s.db.Path
	}
	writeJSON(w, http.StatusOK, resp)
}
