package storage

import (
	"context"

	"github.com/iudanet/devnest/internal/models"
)

// TokenStorage defines interface for revoked access tokens
type TokenStorage interface {
	// RevokeToken stores token jti as revoked
	// Repeated revocation of the same jti is not an error
	RevokeToken(ctx context.Context, token *models.RevokedToken) error

	// IsRevoked reports whether token with this jti was revoked
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// DeleteExpiredTokens removes revocations whose tokens have expired anyway
	// Returns number of deleted records
	DeleteExpiredTokens(ctx context.Context) (int, error)
}
