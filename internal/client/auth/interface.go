package auth

import (
	"context"

	"github.com/iudanet/devnest/internal/models"
)

//go:generate moq -out service_mock.go . Service

// Service defines the main interface for authentication operations.
// Successful Register and Login replace the local session.
type Service interface {
	// Register регистрирует нового пользователя и сразу открывает сессию
	Register(ctx context.Context, username, email, password string) (*models.Session, error)

	// Login выполняет аутентификацию пользователя
	Login(ctx context.Context, email, password string) (*models.Session, error)

	// Logout уведомляет сервер (best effort) и всегда удаляет локальную сессию
	Logout(ctx context.Context) error

	// CurrentUser возвращает личность текущего пользователя.
	// Для сессии без профиля возвращает nil, nil.
	// Без сессии возвращает session.ErrNoSession.
	CurrentUser(ctx context.Context) (*models.UserIdentity, error)

	// IsAuthenticated checks if a session token exists
	IsAuthenticated(ctx context.Context) bool
}
