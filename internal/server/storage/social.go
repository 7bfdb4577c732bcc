package storage

import (
	"context"

	"github.com/iudanet/devnest/internal/models"
)

// SocialStorage defines interface for likes and follows.
// Like/Unlike и Follow/Unfollow идемпотентны и возвращают актуальный счетчик.
type SocialStorage interface {
	// Like marks post as liked by user, returns likes count
	// Returns ErrPostNotFound if post doesn't exist
	Like(ctx context.Context, userID, postID string) (int, error)

	// Unlike removes like, returns likes count
	// Returns ErrPostNotFound if post doesn't exist
	Unlike(ctx context.Context, userID, postID string) (int, error)

	// Follow subscribes follower to followee, returns followee's followers count
	// Returns ErrUserNotFound or ErrSelfFollow
	Follow(ctx context.Context, followerID, followeeID string) (int, error)

	// Unfollow removes subscription, returns followee's followers count
	// Returns ErrUserNotFound if followee doesn't exist
	Unfollow(ctx context.Context, followerID, followeeID string) (int, error)

	// IsFollowing reports whether follower is subscribed to followee
	IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error)

	// ListFollowers returns users subscribed to userID
	ListFollowers(ctx context.Context, userID string) ([]*models.UserView, error)

	// ListFollowing returns users userID is subscribed to
	ListFollowing(ctx context.Context, userID string) ([]*models.UserView, error)
}
