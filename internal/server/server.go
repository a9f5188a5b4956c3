// Package server exposes the card recommendation API over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/card-advisor/internal/ai"
	"github.com/spigell/card-advisor/internal/catalog"
)

const (
	defaultAddr         = ":8080"
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 60 * time.Second
	shutdownTimeout     = 15 * time.Second
	maxBodyBytes        = 1 << 20
)

type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// ChatRate is the number of chat requests per second allowed across all
	// clients. Zero disables the limit.
	ChatRate  float64
	ChatBurst int
	// MinimumScore is the lowest score /api/query reports as a match.
	MinimumScore int
}

type Server struct {
	httpServer  *http.Server
	router      *mux.Router
	catalog     *catalog.Catalog
	assistant   ai.Assistant
	chatLimiter *rate.Limiter
	minScore    int
	logger      *zap.Logger
}

// New builds the server. A nil assistant disables the chat route.
func New(cfg Config, c *catalog.Catalog, assistant ai.Assistant, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if c == nil {
		c = catalog.Empty()
	}
	if assistant == nil {
		assistant = ai.Disabled()
	}
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = defaultReadTimeout
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = defaultWriteTimeout
	}

	limit := rate.Inf
	if cfg.ChatRate > 0 {
		limit = rate.Limit(cfg.ChatRate)
	}
	burst := cfg.ChatBurst
	if burst <= 0 {
		burst = 1
	}

	s := &Server{
		catalog:     c,
		assistant:   assistant,
		chatLimiter: rate.NewLimiter(limit, burst),
		minScore:    cfg.MinimumScore,
		logger:      logger,
	}

	s.router = mux.NewRouter()
	s.router.Use(s.withRequestID, s.withLogging, s.withMetrics)
	s.registerRoutes(s.router)

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(r *mux.Router) {
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cards", s.handleCards).Methods(http.MethodGet)
	api.HandleFunc("/cards/{name}", s.handleCard).Methods(http.MethodGet)
	api.HandleFunc("/recommend", s.handleRecommend).Methods(http.MethodPost)
	api.HandleFunc("/query", s.handleQuery).Methods(http.MethodPost)
	api.Handle("/chat", s.withChatLimit(http.HandlerFunc(s.handleChat))).Methods(http.MethodPost)
}

// Handler returns the full middleware chain. CORS sits outside the router so
// preflight requests are answered before method matching.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.router)
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("http server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("encoding json response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
