// Package server provides the HTTP REST API for the job recommender.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/windrush/job-recommender/internal/cache"
	"github.com/windrush/job-recommender/internal/config"
	"github.com/windrush/job-recommender/internal/db"
	"github.com/windrush/job-recommender/internal/recommend"
	"github.com/windrush/job-recommender/internal/retrieval"
	"github.com/windrush/job-recommender/internal/scheduler"
	"github.com/windrush/job-recommender/internal/server/ratelimit"
)

// Server represents the HTTP server and its wired dependencies.
type Server struct {
	httpServer  *http.Server
	db          *db.DB
	service     *recommend.Service
	sweeper     *scheduler.Scheduler
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
}

// New connects to the database (and Redis when configured), wires the
// retrieval and recommendation layers, and builds the router.
func New(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	database, err := db.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	policy := recommend.NewNegativeSignalPolicy(database, retention)
	retriever := retrieval.New(database, logger,
		retrieval.WithStrictAvoidKeywords(cfg.StrictAvoidKeywords),
		retrieval.WithNegativeSignalPolicy(policy),
	)

	serviceOpts := []recommend.Option{
		recommend.WithFreshnessTTL(cfg.RecommendationTTL),
		recommend.WithRetention(retention),
		recommend.WithMinScore(cfg.MinScore),
	}
	if cfg.RedisURL != "" {
		client, err := cache.Connect(context.Background(), cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		serviceOpts = append(serviceOpts,
			recommend.WithCache(cache.New(client, cfg.RecommendationTTL, logger)))
	}

	s := &Server{
		db:          database,
		service:     recommend.New(database, database, database, retriever, logger, serviceOpts...),
		sweeper:     scheduler.New(database, retention, cfg.SweepIntervalHours, logger),
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		logger:      logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /users/{user_id}/preferences", s.handleGetPreferences)
	mux.HandleFunc("PUT /users/{user_id}/preferences", s.handleUpdatePreferences)

	mux.HandleFunc("POST /users/{user_id}/recommendations/generate", s.handleGenerate)
	mux.HandleFunc("GET /users/{user_id}/recommendations", s.handleListRecommendations)
	mux.HandleFunc("GET /users/{user_id}/recommendations/stats", s.handleStats)
	mux.HandleFunc("DELETE /users/{user_id}/recommendations/stale", s.handleClearStale)
	mux.HandleFunc("GET /users/{user_id}/recommendations/{id}", s.handleGetRecommendation)
	mux.HandleFunc("POST /users/{user_id}/recommendations/{id}/click", s.handleClick)
	mux.HandleFunc("POST /users/{user_id}/recommendations/{id}/applied", s.handleApplied)
	mux.HandleFunc("POST /users/{user_id}/recommendations/{id}/feedback", s.handleFeedback)

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Start() error {
	if err := s.sweeper.Start(context.Background()); err != nil {
		return fmt.Errorf("failed to start retention sweeper: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	s.logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.sweeper.Stop()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	s.db.Close()
	s.logger.Info("server stopped")
	return nil
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// extractClientID extracts the client identifier from the request.
// Uses the IP address from RemoteAddr; X-Forwarded-For is deliberately
// ignored since it is spoofable without a trusted proxy in front.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
