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

const userColumns = `id, username, email, name, bio, avatar_url, password_hash, created_at, last_login`

// CreateUser creates a new user in the storage
func (s *Storage) CreateUser(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, email, name, bio, avatar_url, password_hash, created_at, last_login)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.Name,
		user.Bio,
		user.AvatarURL,
		user.PasswordHash,
		user.CreatedAt.UTC(),
		user.LastLogin,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// GetUserByEmail retrieves user by email
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// GetUserByUsername retrieves user by username
func (s *Storage) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

// GetUserByID retrieves user by ID
func (s *Storage) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	return s.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, userID)
}

func (s *Storage) getUser(ctx context.Context, query string, arg string) (*models.User, error) {
	user := &models.User{}
	var lastLogin sql.NullTime

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Name,
		&user.Bio,
		&user.AvatarURL,
		&user.PasswordHash,
		&user.CreatedAt,
		&lastLogin,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}

	return user, nil
}

// UpdateProfile updates name, bio and avatar
func (s *Storage) UpdateProfile(ctx context.Context, user *models.User) error {
	query := `UPDATE users SET name = ?, bio = ?, avatar_url = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, user.Name, user.Bio, user.AvatarURL, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	return expectAffected(result, storage.ErrUserNotFound)
}

// UpdateLastLogin updates the last login timestamp
func (s *Storage) UpdateLastLogin(ctx context.Context, userID string, lastLogin time.Time) error {
	query := `UPDATE users SET last_login = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, lastLogin.UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return expectAffected(result, storage.ErrUserNotFound)
}

// GetUserStats returns followers, following and posts counters
func (s *Storage) GetUserStats(ctx context.Context, userID string) (models.UserStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM follows WHERE followee_id = u.id),
			(SELECT COUNT(*) FROM follows WHERE follower_id = u.id),
			(SELECT COUNT(*) FROM posts WHERE author_id = u.id)
		FROM users u
		WHERE u.id = ?
	`

	var stats models.UserStats
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.FollowersCount,
		&stats.FollowingCount,
		&stats.PostsCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserStats{}, storage.ErrUserNotFound
		}
		return models.UserStats{}, fmt.Errorf("failed to get user stats: %w", err)
	}

	return stats, nil
}

// expectAffected возвращает notFound, если запрос не изменил ни одной строки
func expectAffected(result sql.Result, notFound error) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return notFound
	}

	return nil
}
