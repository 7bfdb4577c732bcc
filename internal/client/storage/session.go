package storage

import (
	"context"

	"github.com/iudanet/devnest/internal/models"
)

// SessionStorage defines interface for storing the client session.
// Storage keeps two logical keys, "token" and "user", that are always
// written and removed together.
type SessionStorage interface {
	// SaveSession fully overwrites the stored session (no merge).
	// A session without a user removes any previously stored user.
	SaveSession(ctx context.Context, s *models.Session) error

	// GetSession returns ErrSessionNotFound if no token is stored
	GetSession(ctx context.Context) (*models.Session, error)

	// DeleteSession removes both keys (logout, 401)
	DeleteSession(ctx context.Context) error

	// HasSession reports whether a token is stored
	HasSession(ctx context.Context) (bool, error)
}
