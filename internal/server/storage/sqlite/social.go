package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
)

// Like marks post as liked by user, returns likes count
func (s *Storage) Like(ctx context.Context, userID, postID string) (int, error) {
	return s.toggleEdge(ctx, edgeOp{
		exists:   `SELECT 1 FROM posts WHERE id = ?`,
		notFound: storage.ErrPostNotFound,
		mutate:   `INSERT OR IGNORE INTO likes (user_id, post_id, created_at) VALUES (?, ?, ?)`,
		count:    `SELECT COUNT(*) FROM likes WHERE post_id = ?`,
		withTime: true,
	}, userID, postID)
}

// Unlike removes like, returns likes count
func (s *Storage) Unlike(ctx context.Context, userID, postID string) (int, error) {
	return s.toggleEdge(ctx, edgeOp{
		exists:   `SELECT 1 FROM posts WHERE id = ?`,
		notFound: storage.ErrPostNotFound,
		mutate:   `DELETE FROM likes WHERE user_id = ? AND post_id = ?`,
		count:    `SELECT COUNT(*) FROM likes WHERE post_id = ?`,
	}, userID, postID)
}

// Follow subscribes follower to followee, returns followee's followers count
func (s *Storage) Follow(ctx context.Context, followerID, followeeID string) (int, error) {
	if followerID == followeeID {
		return 0, storage.ErrSelfFollow
	}

	return s.toggleEdge(ctx, edgeOp{
		exists:   `SELECT 1 FROM users WHERE id = ?`,
		notFound: storage.ErrUserNotFound,
		mutate:   `INSERT OR IGNORE INTO follows (follower_id, followee_id, created_at) VALUES (?, ?, ?)`,
		count:    `SELECT COUNT(*) FROM follows WHERE followee_id = ?`,
		withTime: true,
	}, followerID, followeeID)
}

// Unfollow removes subscription, returns followee's followers count
func (s *Storage) Unfollow(ctx context.Context, followerID, followeeID string) (int, error) {
	return s.toggleEdge(ctx, edgeOp{
		exists:   `SELECT 1 FROM users WHERE id = ?`,
		notFound: storage.ErrUserNotFound,
		mutate:   `DELETE FROM follows WHERE follower_id = ? AND followee_id = ?`,
		count:    `SELECT COUNT(*) FROM follows WHERE followee_id = ?`,
	}, followerID, followeeID)
}

// edgeOp описывает идемпотентную вставку или удаление связи actor -> target
type edgeOp struct {
	notFound error
	exists   string // проверка существования target
	mutate   string // параметры: actor, target[, created_at]
	count    string // параметр: target
	withTime bool
}

func (s *Storage) toggleEdge(ctx context.Context, op edgeOp, actorID, targetID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var one int
	if err := tx.QueryRowContext(ctx, op.exists, targetID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, op.notFound
		}
		return 0, fmt.Errorf("failed to check target: %w", err)
	}

	args := []any{actorID, targetID}
	if op.withTime {
		args = append(args, time.Now().UTC())
	}

	if _, err := tx.ExecContext(ctx, op.mutate, args...); err != nil {
		return 0, fmt.Errorf("failed to update relation: %w", err)
	}

	var count int
	if err := tx.QueryRowContext(ctx, op.count, targetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return count, nil
}

// IsFollowing reports whether follower is subscribed to followee
func (s *Storage) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = ? AND followee_id = ?)`

	var following bool
	if err := s.db.QueryRowContext(ctx, query, followerID, followeeID).Scan(&following); err != nil {
		return false, fmt.Errorf("failed to check follow: %w", err)
	}

	return following, nil
}

// ListFollowers returns users subscribed to userID
func (s *Storage) ListFollowers(ctx context.Context, userID string) ([]*models.UserView, error) {
	query := `
		SELECT ` + authorColumns + `
		FROM follows x
		JOIN users u ON u.id = x.follower_id
		WHERE x.followee_id = ?
		ORDER BY x.created_at DESC, u.username ASC`

	return s.queryUsers(ctx, userID, query)
}

// ListFollowing returns users userID is subscribed to
func (s *Storage) ListFollowing(ctx context.Context, userID string) ([]*models.UserView, error) {
	query := `
		SELECT ` + authorColumns + `
		FROM follows x
		JOIN users u ON u.id = x.followee_id
		WHERE x.follower_id = ?
		ORDER BY x.created_at DESC, u.username ASC`

	return s.queryUsers(ctx, userID, query)
}

func (s *Storage) queryUsers(ctx context.Context, userID, query string) ([]*models.UserView, error) {
	if err := s.ensureExists(ctx, `SELECT 1 FROM users WHERE id = ?`, userID, storage.ErrUserNotFound); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.UserView, 0)
	for rows.Next() {
		view := &models.UserView{User: &models.User{}}
		if err := rows.Scan(authorDest(view)...); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return users, nil
}
