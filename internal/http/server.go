package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Clark-Hu/movie-swipe/internal/config"
	"github.com/Clark-Hu/movie-swipe/internal/logging"
	"github.com/Clark-Hu/movie-swipe/internal/service"
)

// HealthChecker is satisfied by *store.Store.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server wires HTTP routing, middleware, and handlers.
type Server struct {
	cfg      config.Config
	health   HealthChecker
	svc      *service.Services
	validate *validator.Validate
	logger   zerolog.Logger
	router   chi.Router
	httpSrv  *http.Server
}

// New constructs the HTTP server with base middleware and routes.
func New(cfg config.Config, health HealthChecker, svc *service.Services) *Server {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(observeRequests)
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", requestIDHeader},
			ExposedHeaders: []string{"Location", requestIDHeader},
			MaxAge:         300,
		}))
	}

	s := &Server{
		cfg:      cfg,
		health:   health,
		svc:      svc,
		validate: newValidator(),
		logger:   logging.With("http"),
		router:   r,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/users", func(r chi.Router) {
		r.With(s.rateLimit()).Post("/", s.handleGetOrCreateUser)
		r.Get("/telegram/{externalID}", s.handleLookupUser)
		r.Route("/{userID}", func(r chi.Router) {
			r.Get("/feed", s.handleFeed)
			r.Get("/movies", s.handleUserMovies)
			r.Get("/likes", s.handleUserLikes)
		})
	})

	s.router.Route("/movies", func(r chi.Router) {
		r.Get("/", s.handleListMovies)
		r.With(s.rateLimit()).Post("/", s.handleAddMovie)
		r.With(s.rateLimit()).Post("/suggest", s.handleSuggestMovie)
		r.Route("/{externalID}", func(r chi.Router) {
			r.Get("/", s.handleGetMovie)
			r.With(s.rateLimit()).Post("/votes", s.handleVote)
		})
	})
}

// rateLimit throttles mutations per client IP. A zero limit disables it.
func (s *Server) rateLimit() func(http.Handler) http.Handler {
	if s.cfg.RateLimitRequests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		s.cfg.RateLimitRequests,
		s.cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			s.respondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
		}),
	)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.httpSrv.Addr).Msg("http server listening")
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info().Msg("shutting down http server")
		return s.httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.health == nil {
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database not configured")
		return
	}
	if err := s.health.HealthCheck(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("health check failed")
		s.respondError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "Database unreachable")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
