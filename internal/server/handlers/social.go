package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
	"github.com/iudanet/devnest/internal/validation"
	"github.com/iudanet/devnest/pkg/api"
)

// SocialHandler обрабатывает лайки, подписки и профили
type SocialHandler struct {
	users  storage.UserStorage
	social storage.SocialStorage
	responder
}

// NewSocialHandler создает новый handler для социальных действий
func NewSocialHandler(logger *slog.Logger, users storage.UserStorage, social storage.SocialStorage) *SocialHandler {
	return &SocialHandler{
		responder: newResponder(logger),
		users:     users,
		social:    social,
	}
}

// Like обрабатывает POST /api/v1/likes/{id}
func (h *SocialHandler) Like(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, true)
}

// Unlike обрабатывает DELETE /api/v1/likes/{id}
func (h *SocialHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	h.like(w, r, false)
}

func (h *SocialHandler) like(w http.ResponseWriter, r *http.Request, liked bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	postID := r.PathValue("id")
	op := h.social.Unlike
	if liked {
		op = h.social.Like
	}

	count, err := op(ctx, userID, postID)
	if err != nil {
		if errors.Is(err, storage.ErrPostNotFound) {
			h.sendError(w, "post not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to update like", err)
		return
	}

	h.logger.DebugContext(ctx, "like updated",
		slog.String("post_id", postID),
		slog.Bool("liked", liked),
		slog.Int("likes", count))

	h.sendJSON(w, api.LikeResponse{PostID: postID, LikesCount: &count, HasLiked: liked}, http.StatusOK)
}

// Follow обрабатывает POST /api/v1/follow/{id}
func (h *SocialHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.follow(w, r, true)
}

// Unfollow обрабатывает DELETE /api/v1/follow/{id}
func (h *SocialHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.follow(w, r, false)
}

func (h *SocialHandler) follow(w http.ResponseWriter, r *http.Request, following bool) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	targetID := r.PathValue("id")
	op := h.social.Unfollow
	if following {
		op = h.social.Follow
	}

	count, err := op(ctx, userID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrUserNotFound):
			h.sendError(w, "user not found", http.StatusNotFound)
		case errors.Is(err, storage.ErrSelfFollow):
			h.sendError(w, err.Error(), http.StatusBadRequest)
		default:
			h.internalError(w, r, "failed to update follow", err)
		}
		return
	}

	h.logger.DebugContext(ctx, "follow updated",
		slog.String("target_id", targetID),
		slog.Bool("following", following),
		slog.Int("followers", count))

	h.sendJSON(w, api.FollowResponse{UserID: targetID, FollowersCount: &count, IsFollowing: following}, http.StatusOK)
}

// Followers обрабатывает GET /api/v1/follow/{id}/followers
func (h *SocialHandler) Followers(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.social.ListFollowers)
}

// Following обрабатывает GET /api/v1/follow/{id}/following
func (h *SocialHandler) Following(w http.ResponseWriter, r *http.Request) {
	h.listUsers(w, r, h.social.ListFollowing)
}

func (h *SocialHandler) listUsers(w http.ResponseWriter, r *http.Request, list func(context.Context, string) ([]*models.UserView, error)) {
	users, err := list(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user not found", http.StatusNotFound)
			return
		}
		h.internalError(w, r, "failed to list users", err)
		return
	}

	h.sendJSON(w, toAPIUsers(users), http.StatusOK)
}

// GetProfile обрабатывает GET /api/v1/profile/{username}
func (h *SocialHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.lookupUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profile(r.Context(), user)
	if err != nil {
		h.internalError(w, r, "failed to build profile", err)
		return
	}

	h.sendJSON(w, profile, http.StatusOK)
}

// UpdateProfile обрабатывает PATCH /api/v1/profile/{username}
// Редактировать можно только собственный профиль
func (h *SocialHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, ok := h.lookupUser(w, r)
	if !ok {
		return
	}

	if user.ID != userID {
		h.logger.WarnContext(ctx, "attempt to edit foreign profile",
			slog.String("user_id", userID),
			slog.String("target", user.Username))
		h.sendError(w, "you can only edit your own profile", http.StatusForbidden)
		return
	}

	var req api.UpdateProfileRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		user.AvatarURL = *req.AvatarURL
	}

	if err := validation.ValidateProfile(user.Name, user.Bio, user.AvatarURL); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.users.UpdateProfile(ctx, user); err != nil {
		h.internalError(w, r, "failed to update profile", err)
		return
	}

	h.logger.InfoContext(ctx, "profile updated", slog.String("user_id", userID))

	profile, err := h.profile(ctx, user)
	if err != nil {
		h.internalError(w, r, "failed to build profile", err)
		return
	}

	h.sendJSON(w, profile, http.StatusOK)
}

func (h *SocialHandler) lookupUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, err := h.users.GetUserByUsername(r.Context(), r.PathValue("username"))
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.sendError(w, "user not found", http.StatusNotFound)
			return nil, false
		}
		h.internalError(w, r, "failed to get user", err)
		return nil, false
	}
	return user, true
}

// profile собирает профиль относительно текущего зрителя
func (h *SocialHandler) profile(ctx context.Context, user *models.User) (*api.Profile, error) {
	stats, err := h.users.GetUserStats(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	profile := &api.Profile{
		User:       toAPIUser(&models.UserView{User: user, Stats: stats}),
		PostsCount: stats.PostsCount,
	}

	viewer := viewerID(ctx)
	switch {
	case viewer == user.ID:
		profile.IsMe = true
		profile.Email = user.Email
	case viewer != "":
		profile.IsFollowing, err = h.social.IsFollowing(ctx, viewer, user.ID)
		if err != nil {
			return nil, err
		}
	}

	return profile, nil
}
