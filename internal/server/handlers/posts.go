package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
	"github.com/iudanet/devnest/internal/validation"
	"github.com/iudanet/devnest/pkg/api"
)

// PostHandler обрабатывает посты, ленты и комментарии
type PostHandler struct {
	posts storage.PostStorage
	users storage.UserStorage
	responder
}

// NewPostHandler создает новый handler для постов
func NewPostHandler(logger *slog.Logger, posts storage.PostStorage, users storage.UserStorage) *PostHandler {
	return &PostHandler{
		responder: newResponder(logger),
		posts:     posts,
		users:     users,
	}
}

// ListPosts обрабатывает GET /api/v1/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	limit, offset := page(r)

	posts, err := h.posts.ListPosts(r.Context(), viewerID(r.Context()), limit, offset)
	if err != nil {
		h.internalError(w, r, "failed to list posts", err)
		return
	}

	h.sendJSON(w, toAPIPosts(posts), http.StatusOK)
}

// Home обрабатывает GET /api/v1/home
// Публичная лента: последние посты всех пользователей, первая страница
func (h *PostHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context(), viewerID(r.Context()), defaultPageSize, 0)
	if err != nil {
		h.internalError(w, r, "failed to load home feed", err)
		return
	}

	h.sendJSON(w, toAPIPosts(posts), http.StatusOK)
}

// Feed обрабатывает GET /api/v1/feed
// Посты подписок и собственные посты, требует авторизации
func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	limit, offset := page(r)

	posts, err := h.posts.ListFeed(r.Context(), userID, limit, offset)
	if err != nil {
		h.internalError(w, r, "failed to load feed", err)
		return
	}

	h.sendJSON(w, toAPIPosts(posts), http.StatusOK)
}

// CreatePost обрабатывает POST /api/v1/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreatePostRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateContent(req.Content); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  userID,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: time.Now(),
	}

	if err := h.posts.CreatePost(ctx, post); err != nil {
		h.internalError(w, r, "failed to create post", err)
		return
	}

	view, err := h.posts.GetPost(ctx, post.ID, userID)
	if err != nil {
		h.internalError(w, r, "failed to load created post", err)
		return
	}

	h.logger.InfoContext(ctx, "post created", slog.String("post_id", post.ID), slog.String("user_id", userID))

	h.sendJSON(w, toAPIPost(view), http.StatusCreated)
}

// GetPost обрабатывает GET /api/v1/posts/{id}
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	view, err := h.posts.GetPost(r.Context(), r.PathValue("id"), viewerID(r.Context()))
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			h.sendError(w, "post not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get post", err)
		return
	}

	h.sendJSON(w, toAPIPost(view), http.StatusOK)
}

// Subresource обрабатывает GET /api/v1/posts/{first}/{second}.
// В ServeMux шаблоны /posts/user/{username} и /posts/{id}/comments пересекаются,
// поэтому GET с двумя сегментами разбирается здесь.
func (h *PostHandler) Subresource(w http.ResponseWriter, r *http.Request) {
	first, second := r.PathValue("first"), r.PathValue("second")

	switch {
	case first == "user":
		r.SetPathValue("username", second)
		h.UserPosts(w, r)
	case second == "comments":
		r.SetPathValue("id", first)
		h.Comments(w, r)
	default:
		h.sendError(w, "not found", http.StatusNotFound)
	}
}

// UserPosts обрабатывает GET /api/v1/posts/user/{username}
func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.users.GetUserByUsername(ctx, r.PathValue("username"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	limit, offset := page(r)

	posts, err := h.posts.ListUserPosts(ctx, user.ID, viewerID(ctx), limit, offset)
	if err != nil {
		h.internalError(w, r, "failed to list user posts", err)
		return
	}

	h.sendJSON(w, toAPIPosts(posts), http.StatusOK)
}

// Comments обрабатывает GET /api/v1/posts/{id}/comments
func (h *PostHandler) Comments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.posts.ListComments(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			h.sendError(w, "post not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to list comments", err)
		return
	}

	h.sendJSON(w, toAPIComments(comments), http.StatusOK)
}

// AddComment обрабатывает POST /api/v1/posts/{id}/comments
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CreateCommentRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if err := validation.ValidateContent(req.Content); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	comment := &models.Comment{
		ID:        uuid.New().String(),
		PostID:    r.PathValue("id"),
		AuthorID:  userID,
		Content:   strings.TrimSpace(req.Content),
		CreatedAt: time.Now(),
	}

	if err := h.posts.CreateComment(ctx, comment); err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			h.sendError(w, "post not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to create comment", err)
		return
	}

	author, err := h.users.GetUserByID(ctx, userID)
	if err != nil {
		h.internalError(w, r, "failed to load comment author", err)
		return
	}
	stats, err := h.users.GetUserStats(ctx, userID)
	if err != nil {
		h.internalError(w, r, "failed to load comment author", err)
		return
	}

	view := &models.CommentView{
		Comment: *comment,
		Author:  &models.UserView{User: author, Stats: stats},
	}

	h.sendJSON(w, toAPIComment(view), http.StatusCreated)
}
