package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized сервер ответил 401: токен отсутствует, истек или отозван
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork транспортная ошибка или таймаут
	ErrNetwork = errors.New("network error")
)

// APIError описывает non-2xx ответ сервера
type APIError struct {
	Message    string
	StatusCode int
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("server error (%d): %s", e.StatusCode, e.Message)
}

// Is позволяет проверять 401 через errors.Is(err, ErrUnauthorized)
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// StatusCode возвращает HTTP статус из цепочки ошибок или 0
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
