package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonathan/skillforge/internal/config"
	"github.com/jonathan/skillforge/internal/db"
	"github.com/jonathan/skillforge/internal/server/middleware"
	"github.com/jonathan/skillforge/internal/server/ratelimit"
	"github.com/jonathan/skillforge/internal/tracker"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	handler     http.Handler
	tracker     *tracker.Tracker
	hub         *db.Hub
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	authHandler *AuthHandler
	validate    *validator.Validate
	logger      *slog.Logger

	heartbeat   time.Duration
	streams     context.Context
	stopStreams context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

// Config holds server configuration
type Config struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// Heartbeat is the keep-alive interval of event streams; it also bounds
	// how long a logged-out stream stays open.
	Heartbeat time.Duration
}

// Deps are the server's collaborators.
type Deps struct {
	Tracker   *tracker.Tracker
	Users     UserStore
	Hub       *db.Hub // nil disables the event streams
	JWT       *config.JWTConfig
	Passwords *config.PasswordConfig
	RateLimit *ratelimit.Config // nil uses ratelimit.DefaultConfig
	Logger    *slog.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Tracker == nil || deps.Users == nil {
		return nil, errors.New("tracker and user store are required")
	}
	if deps.JWT == nil || deps.Passwords == nil {
		return nil, errors.New("JWT and password configuration are required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// model calls retry with backoff across several models
		cfg.WriteTimeout = 180 * time.Second
	}
	if cfg.Heartbeat == 0 {
		cfg.Heartbeat = 15 * time.Second
	}

	s := &Server{
		tracker:     deps.Tracker,
		hub:         deps.Hub,
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		jwtService:  NewJWTService(deps.JWT),
		validate:    validator.New(),
		logger:      deps.Logger,
		heartbeat:   cfg.Heartbeat,
	}
	s.streams, s.stopStreams = context.WithCancel(context.Background())
	s.authHandler = NewAuthHandler(NewUserService(deps.Users, deps.Passwords), s.jwtService, s.validate, s.logger)

	mux := http.NewServeMux()
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	private := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	private("POST /auth/logout", s.authHandler.Logout)

	private("GET /me", s.handleProfile)
	private("PATCH /me", s.authHandler.UpdateProfile)
	private("PUT /me/password", s.authHandler.UpdatePassword)
	private("GET /me/events", s.handleUserEvents)
	private("GET /leaderboard", s.handleLeaderboard)
	private("GET /leaderboard/events", s.handleLeaderboardEvents)

	private("POST /roadmaps", s.handleCreateRoadmap)
	private("GET /roadmaps", s.handleListRoadmaps)
	private("GET /roadmaps/{id}", s.handleGetRoadmap)
	private("DELETE /roadmaps/{id}", s.handleDeleteRoadmap)

	private("POST /roadmaps/{id}/subtopics/{sub}/start", s.handleStartSubtopic)
	private("PATCH /roadmaps/{id}/subtopics/{sub}", s.handleUpdateSubtopic)
	private("POST /roadmaps/{id}/subtopics/{sub}/resources", s.handleResources)
	private("POST /roadmaps/{id}/subtopics/{sub}/flashcards", s.handleFlashcards)
	private("POST /roadmaps/{id}/modules/{mod}/quiz", s.handleGenerateQuiz)
	private("POST /roadmaps/{id}/modules/{mod}/quiz/result", s.handleQuizResult)

	private("POST /roadmaps/{id}/feedback", s.handleFeedback)
	private("POST /roadmaps/{id}/analysis", s.handleAnalysis)
	private("POST /roadmaps/{id}/community", s.handleCommunity)
	private("POST /roadmaps/{id}/chat", s.handleChat)

	s.handler = s.withLogging(s.withCORS(s.withRateLimit(mux)))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(s.stopStreams)

	return s, nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// JWT returns the token service.
func (s *Server) JWT() *JWTService {
	return s.jwtService
}

// Start listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if err := s.Close(); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}

// Close ends open event streams and releases the rate limiters.
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		s.stopStreams()
		s.closeErr = s.rateLimiter.Stop()
	})
	return s.closeErr
}

// statusRecorder captures the response status for logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr)
	})
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(r.Context(), extractClientID(r), r.URL.Path, r.Method)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Policy", fmt.Sprintf("%d;w=%d", info.Limit, int(info.Window.Seconds())))
		}
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// rateLimitResponse writes a 429 Too Many Requests response.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":   "rate_limit_exceeded",
		"message": "Rate limit exceeded. Please try again later.",
		"limit":   info.Limit,
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds())
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Warn("rate limit exceeded", "client", extractClientID(r), "tier", info.Tier, "path", r.URL.Path)
	jsonResponse(w, http.StatusTooManyRequests, response)
}

// extractClientID returns the client IP from RemoteAddr. Forwarded headers
// are ignored since they are client controlled without a trusted proxy.
func extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// writeError maps err to a status and a client-safe message, logging the
// full error for server-side failures.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"error", err)
	}
	errorResponse(w, status, publicMessage(err, status))
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeError(w, r, s.logger, err)
}

// decodeJSON reads a size-limited JSON body into v and validates it.
func decodeJSON(w http.ResponseWriter, r *http.Request, validate *validator.Validate, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return &ErrValidation{Field: "body", Message: "invalid request body"}
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

// validationError converts validator errors, reporting the first failure.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return &ErrValidation{Field: verrs[0].Field(), Message: verrs[0].Tag()}
	}
	return &ErrValidation{Field: "body", Message: "invalid request"}
}

// userID returns the authenticated user, writing 401 when absent.
func (s *Server) userID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := middleware.GetUserID(r)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return uuid.Nil, false
	}
	return id, true
}
