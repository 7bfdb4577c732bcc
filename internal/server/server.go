// Package server собирает HTTP API DevNest: маршруты, middleware и фоновые задачи.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/devnest/internal/server/handlers"
	"github.com/iudanet/devnest/internal/server/middleware"
	"github.com/iudanet/devnest/internal/server/storage"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Hour
)

// Store все хранилища, нужные API
type Store interface {
	storage.UserStorage
	storage.PostStorage
	storage.SocialStorage
	storage.TokenStorage
	handlers.Pinger
}

// Config параметры API сервера
type Config struct {
	Version    string
	Style      handlers.AuthStyle
	JWT        handlers.JWTConfig
	RateWindow time.Duration
	RateLimit  int
}

// Server HTTP API поверх Store
type Server struct {
	store   Store
	logger  *slog.Logger
	limiter *middleware.RateLimiter
	handler http.Handler
	cfg     Config
}

// New создает сервер и регистрирует маршруты.
// Close нужно вызвать, даже если Run не запускался.
func New(cfg Config, store Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		logger:  logger,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow, logger),
	}
	s.handler = s.routes()

	return s
}

// Handler корневой http.Handler со всеми middleware
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Close останавливает фоновые горутины middleware
func (s *Server) Close() {
	s.limiter.Stop()
}

func (s *Server) routes() http.Handler {
	auth := handlers.NewAuthHandler(s.logger, s.store, s.store, s.cfg.JWT, s.cfg.Style)
	posts := handlers.NewPostHandler(s.logger, s.store, s.store)
	social := handlers.NewSocialHandler(s.logger, s.store, s.store)
	health := handlers.NewHealthHandler(s.logger, s.store, s.cfg.Version)

	required := middleware.AuthMiddleware(s.logger, s.cfg.JWT, s.store)
	optional := middleware.OptionalAuthMiddleware(s.logger, s.cfg.JWT, s.store)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc, mw ...func(http.Handler) http.Handler) {
		var handler http.Handler = h
		for i := len(mw) - 1; i >= 0; i-- {
			handler = mw[i](handler)
		}
		method, path, _ := strings.Cut(pattern, " ")
		mux.Handle(method+" "+apiPrefix+path, handler)
	}

	handle("GET /health", health.Health)

	handle("POST /auth/register", auth.Register, s.limiter.Middleware)
	handle("POST /auth/login", auth.Login, s.limiter.Middleware)
	handle("POST /auth/logout", auth.Logout, s.limiter.Middleware, required)

	handle("GET /posts", posts.ListPosts, optional)
	handle("POST /posts", posts.CreatePost, required)
	handle("GET /posts/{id}", posts.GetPost, optional)
	handle("GET /posts/{first}/{second}", posts.Subresource, optional)
	handle("POST /posts/{id}/comments", posts.AddComment, required)
	handle("GET /feed", posts.Feed, required)
	handle("GET /home", posts.Home, optional)

	handle("POST /likes/{id}", social.Like, required)
	handle("DELETE /likes/{id}", social.Unlike, required)

	handle("GET /profile/{username}", social.GetProfile, optional)
	handle("PATCH /profile/{username}", social.UpdateProfile, required)

	handle("POST /follow/{id}", social.Follow, required)
	handle("DELETE /follow/{id}", social.Unfollow, required)
	handle("GET /follow/{id}/followers", social.Followers, optional)
	handle("GET /follow/{id}/following", social.Following, optional)

	var root http.Handler = mux
	root = middleware.LoggingMiddleware(s.logger, apiPrefix+"/health")(root)
	root = middleware.RecoveryMiddleware(s.logger)(root)

	return root
}

// Run слушает addr до отмены ctx, затем корректно останавливает сервер.
// Параллельно раз в час удаляет из хранилища истекшие отозванные токены.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve как Run, но на готовом listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.logger.Handler(), slog.LevelWarn),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server listening", slog.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.janitor(gctx)
		return nil
	})

	return g.Wait()
}

// janitor периодически чистит истекшие записи об отозванных токенах
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.store.DeleteExpiredTokens(ctx)
			if err != nil {
				s.logger.Warn("failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.Debug("expired tokens deleted", slog.Int("count", n))
			}
		}
	}
}
