// Package server is newsd, the NewsHub REST backend: article proxying over
// GNews, accounts, sessions and preference storage. Every response uses the
// {success, message, data} envelope.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abelbrown/newshub/internal/fetch"
	"github.com/abelbrown/newshub/internal/logging"
	"github.com/abelbrown/newshub/internal/model"
	"github.com/abelbrown/newshub/internal/otel"
	"github.com/abelbrown/newshub/internal/store"
)

// Version is reported by the index route.
const Version = "1.0.0"

// Repository is the account and preference storage newsd runs on. Both the
// SQLite store and the MongoDB store satisfy it.
type Repository interface {
	Ping(ctx context.Context) error

	CreateUser(ctx context.Context, name, email, passwordHash string) (store.User, error)
	UserByEmail(ctx context.Context, email string) (store.User, error)
	UserByID(ctx context.Context, id string) (store.User, error)
	UpdateProfile(ctx context.Context, id, name, email string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error)
	SessionUser(ctx context.Context, token string) (store.User, error)
	DeleteSession(ctx context.Context, token string) error

	LoadPreferences(ctx context.Context, owner string) (model.Preferences, error)
	SavePreferences(ctx context.Context, owner string, p model.Preferences) error
}

// Options configures a Server.
type Options struct {
	Repo          Repository
	Fetcher       fetch.Fetcher
	Events        *otel.Logger
	SessionTTL    time.Duration
	CacheTTL      time.Duration // 0 disables the article cache
	CacheSize     int
	AllowedOrigin string
	FeedLink      string // public base URL used in feed.xml
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	repo    Repository
	fetcher fetch.Fetcher
	cache   *articleCache
	events  *otel.Logger
	opts    Options
}

// New creates a new server instance
func New(opts Options) *Server {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 7 * 24 * time.Hour
	}
	if opts.AllowedOrigin == "" {
		opts.AllowedOrigin = "*"
	}
	s := &Server{
		router:  chi.NewRouter(),
		repo:    opts.Repo,
		fetcher: opts.Fetcher,
		cache:   newArticleCache(opts.CacheSize, opts.CacheTTL),
		events:  opts.Events,
		opts:    opts,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.cors)
	s.router.Use(s.trace)

	s.router.Get("/", s.handleIndex)
	s.router.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	s.router.Get("/api/health", s.handleHealth)

	s.router.Route("/api/articles", func(r chi.Router) {
		r.Get("/", s.handleArticles)
		r.Get("/search", s.handleSearch)
		r.Get("/feed.xml", s.handleFeedXML)
	})

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.With(s.authenticate).Get("/me", s.handleMe)
		r.With(s.authenticate).Post("/logout", s.handleLogout)
	})

	s.router.Route("/api/users", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handleUpdateProfile)
		r.Put("/change-password", s.handleChangePassword)
	})

	s.router.Route("/api/preferences", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.handleGetPreferences)
		r.Put("/", s.handlePutPreferences)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusNotFound, "Route "+r.URL.RequestURI()+" not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		fail(w, http.StatusMethodNotAllowed, "Method "+r.Method+" not allowed on "+r.URL.Path)
	})
}

// Router returns the Chi router
func (s *Server) Router() http.Handler {
	return s.router
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("newsd listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Personalized News Portal API",
		"version":   Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"endpoints": map[string]string{
			"auth":        "/api/auth",
			"users":       "/api/users",
			"articles":    "/api/articles",
			"preferences": "/api/preferences",
			"health":      "/api/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		fail(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Server is running healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
