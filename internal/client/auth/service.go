package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/validation"
	pkgapi "github.com/iudanet/devnest/pkg/api"
)

// Client часть API клиента, нужная для аутентификации
type Client interface {
	Register(ctx context.Context, req pkgapi.RegisterRequest) (json.RawMessage, error)
	Login(ctx context.Context, req pkgapi.LoginRequest) (json.RawMessage, error)
	Logout(ctx context.Context) error
}

// Sessions единственный писатель локальной сессии
type Sessions interface {
	Establish(ctx context.Context, data []byte) (*models.Session, error)
	Load(ctx context.Context) (*models.Session, error)
	Clear(ctx context.Context) error
	Current() *models.Session
}

// AuthService предоставляет функции авторизации
type AuthService struct {
	apiClient Client
	sessions  Sessions
	logger    *slog.Logger
}

var _ Service = (*AuthService)(nil)

// NewService создает новый сервис авторизации
func NewService(apiClient Client, sessions Sessions, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		apiClient: apiClient,
		sessions:  sessions,
		logger:    logger,
	}
}

// Register регистрирует нового пользователя.
// Ответ проходит через тот же reconciler, что и login.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*models.Session, error) {
	// Валидация входных данных
	if err := validation.ValidateUsername(username); err != nil {
		return nil, fmt.Errorf("invalid username: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	raw, err := s.apiClient.Register(ctx, pkgapi.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	sess, err := s.sessions.Establish(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info("registered", slog.Bool("profile", !sess.Degraded()))
	return sess, nil
}

// Login выполняет аутентификацию пользователя
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Session, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("invalid password: %w", err)
	}

	raw, err := s.apiClient.Login(ctx, pkgapi.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	sess, err := s.sessions.Establish(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	s.logger.Info("logged in", slog.Bool("profile", !sess.Degraded()))
	return sess, nil
}

// Logout выполняет выход из системы
// Удаляет локальную сессию и опционально уведомляет сервер
func (s *AuthService) Logout(ctx context.Context) error {
	if s.sessions.Current() == nil {
		// Сессия могла быть не загружена
		if _, err := s.sessions.Load(ctx); err != nil {
			s.logger.Debug("no session found during logout", slog.Any("error", err))
		}
	}

	if s.sessions.Current() != nil {
		// Пытаемся уведомить сервер о logout (best effort)
		if err := s.apiClient.Logout(ctx); err != nil {
			s.logger.Warn("failed to logout on server", slog.Any("error", err))
		}
	}

	// Всегда удаляем локальные данные, даже если сервер недоступен
	if err := s.sessions.Clear(ctx); err != nil {
		return fmt.Errorf("failed to delete local session: %w", err)
	}

	return nil
}

// CurrentUser возвращает пользователя текущей сессии
func (s *AuthService) CurrentUser(ctx context.Context) (*models.UserIdentity, error) {
	sess := s.sessions.Current()
	if sess == nil {
		var err error
		sess, err = s.sessions.Load(ctx)
		if err != nil {
			return nil, err
		}
	}
	return sess.User, nil
}

// IsAuthenticated проверяет наличие токена
func (s *AuthService) IsAuthenticated(ctx context.Context) bool {
	_, err := s.CurrentUser(ctx)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		s.logger.Warn("failed to read session", slog.Any("error", err))
	}
	return err == nil
}
