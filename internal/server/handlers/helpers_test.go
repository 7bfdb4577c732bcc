package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage/sqlite"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelError,
	}
	handler := slog.NewTextHandler(os.Stdout, opts)
	return slog.New(handler)
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:   []byte("test-secret-key"),
		TokenTTL: 15 * time.Minute,
	}
}

func newTestStore(t *testing.T) *sqlite.Storage {
	t.Helper()

	s, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s
}

// seedUser создает пользователя с паролем "password123"
func seedUser(t *testing.T, s *sqlite.Storage, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.com",
		Name:         username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	require.NoError(t, s.CreateUser(context.Background(), user))

	return user
}

func seedPost(t *testing.T, s *sqlite.Storage, author *models.User, content string) *models.Post {
	t.Helper()

	post := &models.Post{
		ID:        uuid.New().String(),
		AuthorID:  author.ID,
		Content:   content,
		CreatedAt: time.Now(),
	}
	require.NoError(t, s.CreatePost(context.Background(), post))

	return post
}

// newRequest создает запрос; если user не nil, в контекст кладутся его claims
func newRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if user != nil {
		_, claims, err := GenerateAccessToken(testJWTConfig(), user)
		require.NoError(t, err)
		req = req.WithContext(WithClaims(req.Context(), claims))
	}

	return req
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v))
	return v
}
