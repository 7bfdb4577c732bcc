package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
)

// authorColumns столбцы автора со счетчиками подписок, алиас таблицы users = u
const authorColumns = `
	u.id, u.username, u.email, u.name, u.bio, u.avatar_url, u.created_at,
	(SELECT COUNT(*) FROM follows f WHERE f.followee_id = u.id),
	(SELECT COUNT(*) FROM follows f WHERE f.follower_id = u.id)`

// первый параметр запроса всегда viewerID
const postViewQuery = `
	SELECT p.id, p.author_id, p.content, p.created_at,` + authorColumns + `,
		(SELECT COUNT(*) FROM likes l WHERE l.post_id = p.id),
		(SELECT COUNT(*) FROM comments c WHERE c.post_id = p.id),
		EXISTS(SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = ?)
	FROM posts p
	JOIN users u ON u.id = p.author_id`

const newestFirst = ` ORDER BY p.created_at DESC, p.rowid DESC LIMIT ? OFFSET ?`

type rowScanner interface {
	Scan(dest ...any) error
}

// CreatePost stores a new post
func (s *Storage) CreatePost(ctx context.Context, post *models.Post) error {
	query := `INSERT INTO posts (id, author_id, content, created_at) VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query, post.ID, post.AuthorID, post.Content, post.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// GetPost retrieves post by ID
func (s *Storage) GetPost(ctx context.Context, postID, viewerID string) (*models.PostView, error) {
	row := s.db.QueryRowContext(ctx, postViewQuery+` WHERE p.id = ?`, viewerID, postID)

	view, err := scanPostView(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}

	return view, nil
}

// ListPosts returns the newest posts of all users
func (s *Storage) ListPosts(ctx context.Context, viewerID string, limit, offset int) ([]*models.PostView, error) {
	return s.queryPosts(ctx, postViewQuery+newestFirst, viewerID, limit, offset)
}

// ListFeed returns posts of users followed by userID plus userID's own posts
func (s *Storage) ListFeed(ctx context.Context, userID string, limit, offset int) ([]*models.PostView, error) {
	query := postViewQuery + `
		WHERE p.author_id = ?
			OR p.author_id IN (SELECT followee_id FROM follows WHERE follower_id = ?)` + newestFirst

	return s.queryPosts(ctx, query, userID, userID, userID, limit, offset)
}

// ListUserPosts returns posts of a single author
func (s *Storage) ListUserPosts(ctx context.Context, authorID, viewerID string, limit, offset int) ([]*models.PostView, error) {
	return s.queryPosts(ctx, postViewQuery+` WHERE p.author_id = ?`+newestFirst, viewerID, authorID, limit, offset)
}

func (s *Storage) queryPosts(ctx context.Context, query string, args ...any) ([]*models.PostView, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*models.PostView, 0)
	for rows.Next() {
		view, err := scanPostView(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return posts, nil
}

// CreateComment stores a comment
func (s *Storage) CreateComment(ctx context.Context, comment *models.Comment) error {
	if err := s.ensurePost(ctx, comment.PostID); err != nil {
		return err
	}

	query := `INSERT INTO comments (id, post_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		comment.ID,
		comment.PostID,
		comment.AuthorID,
		comment.Content,
		comment.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}

	return nil
}

// ListComments returns comments of a post, oldest first
func (s *Storage) ListComments(ctx context.Context, postID string) ([]*models.CommentView, error) {
	if err := s.ensurePost(ctx, postID); err != nil {
		return nil, err
	}

	query := `
		SELECT c.id, c.post_id, c.author_id, c.content, c.created_at,` + authorColumns + `
		FROM comments c
		JOIN users u ON u.id = c.author_id
		WHERE c.post_id = ?
		ORDER BY c.created_at ASC, c.rowid ASC`

	rows, err := s.db.QueryContext(ctx, query, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := make([]*models.CommentView, 0)
	for rows.Next() {
		view := &models.CommentView{Author: &models.UserView{User: &models.User{}}}
		c := &view.Comment

		dest := append([]any{&c.ID, &c.PostID, &c.AuthorID, &c.Content, &c.CreatedAt}, authorDest(view.Author)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, view)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return comments, nil
}

// ensurePost возвращает ErrPostNotFound, если поста нет
func (s *Storage) ensurePost(ctx context.Context, postID string) error {
	return s.ensureExists(ctx, `SELECT 1 FROM posts WHERE id = ?`, postID, storage.ErrPostNotFound)
}

func (s *Storage) ensureExists(ctx context.Context, query, id string, notFound error) error {
	var one int
	err := s.db.QueryRowContext(ctx, query, id).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		return fmt.Errorf("failed to check existence: %w", err)
	}
	return nil
}

func scanPostView(row rowScanner) (*models.PostView, error) {
	view := &models.PostView{Author: &models.UserView{User: &models.User{}}}
	p := &view.Post

	dest := []any{&p.ID, &p.AuthorID, &p.Content, &p.CreatedAt}
	dest = append(dest, authorDest(view.Author)...)
	dest = append(dest, &view.LikesCount, &view.CommentsCount, &view.HasLiked)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	return view, nil
}

// authorDest приемники для authorColumns
func authorDest(v *models.UserView) []any {
	u := v.User
	return []any{
		&u.ID, &u.Username, &u.Email, &u.Name, &u.Bio, &u.AvatarURL, &u.CreatedAt,
		&v.Stats.FollowersCount, &v.Stats.FollowingCount,
	}
}
