package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
	"github.com/iudanet/devnest/internal/validation"
	"github.com/iudanet/devnest/pkg/api"
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	responder
	style     AuthStyle
	jwtConfig JWTConfig
	hashCost  int
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, jwtConfig JWTConfig, style AuthStyle) *AuthHandler {
	return &AuthHandler{
		responder:    newResponder(logger),
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		jwtConfig:    jwtConfig,
		style:        style,
		hashCost:     bcrypt.DefaultCost,
	}
}

// Register обрабатывает POST /api/v1/auth/register
// Регистрация нового пользователя, в ответе сразу выдается токен
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RegisterRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := validation.ValidateUsername(req.Username); err != nil {
		h.logger.WarnContext(ctx, "invalid username", slog.String("username", req.Username), slog.Any("error", err))
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		h.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.hashCost)
	if err != nil {
		h.internalError(w, r, "failed to hash password", err)
		return
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		Name:         req.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			h.logger.WarnContext(ctx, "user already exists", slog.String("username", req.Username))
			h.sendError(w, "username or email already taken", http.StatusConflict)
			return
		}
		h.internalError(w, r, "failed to create user", err)
		return
	}

	h.logger.InfoContext(ctx, "user registered successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.issue(w, r, user, http.StatusCreated)
}

// Login обрабатывает POST /api/v1/auth/login
// Аутентификация по email и паролю
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		h.sendError(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "login failed: user not found")
			h.sendError(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.internalError(w, r, "failed to get user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "login failed: invalid password", slog.String("user_id", user.ID))
		h.sendError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := h.userStorage.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Не критичная ошибка, логируем но не прерываем
		h.logger.WarnContext(ctx, "failed to update last login", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "user logged in successfully",
		slog.String("username", user.Username),
		slog.String("user_id", user.ID))

	h.issue(w, r, user, http.StatusOK)
}

// issue выпускает токен и отвечает телом в настроенном стиле
func (h *AuthHandler) issue(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	token, _, err := GenerateAccessToken(h.jwtConfig, user)
	if err != nil {
		h.internalError(w, r, "failed to generate access token", err)
		return
	}

	h.sendJSON(w, h.style.authBody(token, user, h.jwtConfig.TokenTTL), status)
}

// Logout обрабатывает POST /api/v1/auth/logout
// Отзывает текущий токен по jti, другие токены пользователя остаются валидными
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := GetClaims(ctx)
	if !ok {
		h.sendError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	revoked := &models.RevokedToken{
		ID:        claims.ID,
		UserID:    claims.Subject,
		RevokedAt: time.Now(),
		ExpiresAt: time.Now().Add(h.jwtConfig.TokenTTL),
	}
	if claims.ExpiresAt != nil {
		revoked.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := h.tokenStorage.RevokeToken(ctx, revoked); err != nil {
		h.internalError(w, r, "failed to revoke token", err)
		return
	}

	h.logger.InfoContext(ctx, "user logged out successfully", slog.String("user_id", claims.Subject))

	w.WriteHeader(http.StatusNoContent)
}
