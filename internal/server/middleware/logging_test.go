package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newBufferLogger() (*slog.Logger, *strings.Builder) {
	var logBuf strings.Builder
	logger := slog.New(slog.NewTextHandler(&logBuf, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	return logger, &logBuf
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		path           string
		wantLevel      string
		expectedStatus int
	}{
		{name: "GET 200", method: http.MethodGet, path: "/api/v1/posts", expectedStatus: http.StatusOK, wantLevel: "INFO"},
		{name: "POST 201", method: http.MethodPost, path: "/api/v1/posts", expectedStatus: http.StatusCreated, wantLevel: "INFO"},
		{name: "GET 404", method: http.MethodGet, path: "/api/v1/posts/missing", expectedStatus: http.StatusNotFound, wantLevel: "WARN"},
		{name: "POST 500", method: http.MethodPost, path: "/api/v1/likes/1", expectedStatus: http.StatusInternalServerError, wantLevel: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logBuf := newBufferLogger()

			handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.expectedStatus)
				_, _ = w.Write([]byte("body"))
			}))

			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = "192.168.1.1:12345"
			req.Header.Set("User-Agent", "TestAgent/1.0")
			req.Header.Set("Authorization", "Bearer secret-token-value")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			logOutput := logBuf.String()
			assert.Contains(t, logOutput, "HTTP request")
			assert.Contains(t, logOutput, tt.method)
			assert.Contains(t, logOutput, tt.path)
			assert.Contains(t, logOutput, "192.168.1.1:12345")
			assert.Contains(t, logOutput, "TestAgent/1.0")
			assert.Contains(t, logOutput, "level="+tt.wantLevel)
			assert.Contains(t, logOutput, "bytes_written=4")
			assert.NotContains(t, logOutput, "secret-token-value", "tokens must never be logged")
		})
	}
}

func TestLoggingMiddleware_RoutePattern(t *testing.T) {
	logger, logBuf := newBufferLogger()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/posts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	handler := LoggingMiddleware(logger)(mux)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts/42", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, logBuf.String(), `route="GET /api/v1/posts/{id}"`)
}

func TestLoggingMiddleware_SkipPaths(t *testing.T) {
	logger, logBuf := newBufferLogger()

	handler := LoggingMiddleware(logger, "/api/v1/health")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Empty(t, logBuf.String(), "health checks are not logged")

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/home", nil))
	assert.Contains(t, logBuf.String(), "/api/v1/home")
}

func TestResponseWriter_DefaultStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	n, err := rw.Write([]byte("Hello, World!"))

	assert.NoError(t, err)
	assert.Equal(t, 13, n)
	assert.Equal(t, int64(13), rw.written)
	assert.Equal(t, http.StatusOK, rw.statusCode)
	assert.Equal(t, rec, rw.Unwrap())
}
