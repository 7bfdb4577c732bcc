package storage

import (
	"context"

	"github.com/iudanet/devnest/internal/models"
)

// PostStorage defines interface for posts and comments persistence.
// viewerID может быть пустым для анонимного зрителя, тогда HasLiked всегда false.
type PostStorage interface {
	// CreatePost stores a new post
	CreatePost(ctx context.Context, post *models.Post) error

	// GetPost retrieves post by ID
	// Returns ErrPostNotFound if post doesn't exist
	GetPost(ctx context.Context, postID, viewerID string) (*models.PostView, error)

	// ListPosts returns the newest posts of all users
	ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]*models.PostView, error)

	// ListFeed returns posts of users followed by userID plus userID's own posts
	ListFeed(ctx context.Context, userID string, limit, offset int) ([]*models.PostView, error)

	// ListUserPosts returns posts of a single author
	ListUserPosts(ctx context.Context, authorID, viewerID string, limit, offset int) ([]*models.PostView, error)

	// CreateComment stores a comment
	// Returns ErrPostNotFound if post doesn't exist
	CreateComment(ctx context.Context, comment *models.Comment) error

	// ListComments returns comments of a post, oldest first
	// Returns ErrPostNotFound if post doesn't exist
	ListComments(ctx context.Context, postID string) ([]*models.CommentView, error)
}
