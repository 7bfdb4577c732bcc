package session

import "errors"

var (
	// ErrMissingToken ответ аутентификации не содержит токена. Сессия не сохраняется.
	ErrMissingToken = errors.New("auth response has no token")

	// ErrMalformedTokenPayload payload токена не удалось декодировать.
	// Не фатально: сессия сохраняется без профиля.
	ErrMalformedTokenPayload = errors.New("malformed token payload")

	// ErrSessionExpired сервер ответил 401, локальная сессия удалена
	ErrSessionExpired = errors.New("session expired, please log in again")

	// ErrNoSession локальной сессии нет
	ErrNoSession = errors.New("not logged in")
)
