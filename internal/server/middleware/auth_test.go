package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/handlers"
	"github.com/iudanet/devnest/pkg/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeTokens in-memory TokenStorage
type fakeTokens struct {
	revoked map[string]bool
	err     error
}

func (f *fakeTokens) RevokeToken(_ context.Context, t *models.RevokedToken) error {
	f.revoked[t.ID] = true
	return nil
}

func (f *fakeTokens) IsRevoked(_ context.Context, id string) (bool, error) {
	return f.revoked[id], f.err
}

func (f *fakeTokens) DeleteExpiredTokens(context.Context) (int, error) { return 0, nil }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:   []byte("test-secret-key"),
		TokenTTL: 15 * time.Minute,
	}
}

func issueToken(t *testing.T, cfg handlers.JWTConfig) (string, *handlers.CustomClaims) {
	t.Helper()

	token, claims, err := handlers.GenerateAccessToken(cfg, &models.User{ID: "user123", Username: "testuser"})
	require.NoError(t, err)
	return token, claims
}

// identityHandler отвечает user_id из контекста или "anonymous"
func identityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := handlers.GetUserID(r.Context())
		if !ok {
			userID = "anonymous"
		}
		username, _ := handlers.GetUsername(r.Context())
		_, _ = w.Write([]byte(userID + "/" + username))
	}
}

func TestAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	token, claims := issueToken(t, cfg)
	otherToken, _ := issueToken(t, handlers.JWTConfig{Secret: []byte("other"), TokenTTL: time.Minute})

	revokedToken, revokedClaims := issueToken(t, cfg)

	tests := []struct {
		name        string
		header      string
		wantMessage string
		wantCode    int
	}{
		{name: "valid token", header: "Bearer " + token, wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + token, wantCode: http.StatusOK},
		{name: "missing header", wantCode: http.StatusUnauthorized, wantMessage: "missing token"},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", wantCode: http.StatusUnauthorized, wantMessage: "invalid token format"},
		{name: "bearer without token", header: "Bearer ", wantCode: http.StatusUnauthorized, wantMessage: "invalid token format"},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantCode: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "wrong secret", header: "Bearer " + otherToken, wantCode: http.StatusUnauthorized, wantMessage: "invalid token"},
		{name: "revoked token", header: "Bearer " + revokedToken, wantCode: http.StatusUnauthorized, wantMessage: "token revoked"},
	}

	tokens := &fakeTokens{revoked: map[string]bool{revokedClaims.ID: true}}
	handler := AuthMiddleware(discardLogger(), cfg, tokens)(identityHandler())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			require.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, claims.Subject+"/testuser", w.Body.String())
				return
			}

			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			var resp api.ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestAuthMiddleware_RevocationCheckFails(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := issueToken(t, cfg)

	tokens := &fakeTokens{revoked: map[string]bool{}, err: errors.New("database is locked")}
	handler := AuthMiddleware(discardLogger(), cfg, tokens)(identityHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/feed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	cfg := testJWTConfig()
	token, _ := issueToken(t, cfg)
	revokedToken, revokedClaims := issueToken(t, cfg)

	tokens := &fakeTokens{revoked: map[string]bool{revokedClaims.ID: true}}
	handler := OptionalAuthMiddleware(discardLogger(), cfg, tokens)(identityHandler())

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "anonymous", want: "anonymous/"},
		{name: "valid token", header: "Bearer " + token, want: "user123/testuser"},
		{name: "invalid token is ignored", header: "Bearer nope", want: "anonymous/"},
		{name: "revoked token is ignored", header: "Bearer " + revokedToken, want: "anonymous/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
		})
	}
}
