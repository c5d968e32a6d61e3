package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"bambu.printjobs/internal/core/logger"
	"bambu.printjobs/internal/core/services"
)

// CachePrefix is where thumbnails are served; it matches domain.ThumbnailTemplate.
const CachePrefix = "/local/bambu_lab/cache"

type Options struct {
	// CacheDir, when set, is served under CachePrefix. Leave it empty when
	// the host platform serves thumbnails itself.
	CacheDir      string
	EnableMetrics bool
}

type Server struct {
	router    *chi.Mux
	jobs      *services.JobService
	invoker   *services.Invoker
	healthSvc *services.HealthService
	hub       *Hub
	opts      Options
}

func NewServer(jobs *services.JobService, invoker *services.Invoker, healthSvc *services.HealthService, hub *Hub, opts Options) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		jobs:      jobs,
		invoker:   invoker,
		healthSvc: healthSvc,
		hub:       hub,
		opts:      opts,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(requestLogContext)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if s.opts.EnableMetrics {
		s.router.Use(MetricsMiddleware)
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if s.opts.EnableMetrics {
		s.router.Handle("/metrics", MetricsHandler())
	}

	// Kubernetes probes
	s.router.Get("/health/live", s.handleLiveness)
	s.router.Get("/health/ready", s.handleReadiness)

	s.router.Get("/api/health", s.handleReadiness)
	s.router.Get("/api/health/detailed", s.handleDetailedHealth)
	s.router.Get("/api/ws", s.handleWS)

	s.router.Route("/api/printjobs", func(r chi.Router) {
		r.Get("/", s.handleListPrintJobs)
		r.Post("/press", s.handlePress)
	})

	if s.opts.CacheDir != "" {
		fileServer := http.StripPrefix(CachePrefix, http.FileServer(http.Dir(s.opts.CacheDir)))
		s.router.Handle(CachePrefix+"/*", fileServer)
	}
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func requestLogContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.ContextWithRequestID(r.Context(), middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string, err error) {
	body := map[string]string{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	writeJSON(w, code, body)
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	status, code := s.healthSvc.SimpleHealthCheck(r.Context())
	w.WriteHeader(code)
	w.Write([]byte(status))
}

func (s *Server) handleDetailedHealth(w http.ResponseWriter, r *http.Request) {
	report := s.healthSvc.CheckHealth(r.Context())

	statusCode := http.StatusOK
	if report.Status == services.HealthStatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, report)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ServeWs(s.hub, w, r)
}

func (s *Server) handleListPrintJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.jobs.ListPrintJobs(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Failed to list print jobs", "error", err)
		writeError(w, http.StatusBadGateway, "Failed to read state registry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

type PressRequest struct {
	EntityID string `json:"entity_id"`
}

// handlePress accepts the press and returns before the dispatch settles; the
// response never reports the dispatch outcome.
func (s *Server) handlePress(w http.ResponseWriter, r *http.Request) {
	var req PressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON", err)
		return
	}

	req.EntityID = strings.TrimSpace(req.EntityID)
	if req.EntityID == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", errors.New("entity_id is required"))
		return
	}

	job, err := s.jobs.GetPrintJob(r.Context(), req.EntityID)
	if err != nil {
		if errors.Is(err, services.ErrJobNotFound) {
			writeError(w, http.StatusNotFound, "Print job not found", nil)
			return
		}
		writeError(w, http.StatusBadGateway, "Failed to read state registry", err)
		return
	}

	inv := s.invoker.InvokePrint(r.Context(), *job)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":        "dispatched",
		"entity_id":     job.EntityID,
		"invocation_id": inv.ID,
	})
}
