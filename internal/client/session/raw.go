package session

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawAuthResponse недоверенный ответ /auth/login или /auth/register.
// Числа хранятся как json.Number.
type RawAuthResponse map[string]any

// ParseRawAuthResponse разбирает тело ответа. Тело, которое не является
// JSON объектом, не содержит токена.
func ParseRawAuthResponse(data []byte) (RawAuthResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode auth response: %w", ErrMissingToken, err)
	}
	if raw == nil {
		return nil, ErrMissingToken
	}
	return RawAuthResponse(raw), nil
}

// Shape известные формы ответа бэкенда
type Shape int

const (
	// ShapeTokenOnly только токен, личность берется из payload токена
	ShapeTokenOnly Shape = iota
	// ShapeNestedUser {token, user: {...}}
	ShapeNestedUser
	// ShapeFlattened поля пользователя на верхнем уровне рядом с токеном
	ShapeFlattened
)

func (s Shape) String() string {
	switch s {
	case ShapeNestedUser:
		return "nested_user"
	case ShapeFlattened:
		return "flattened"
	default:
		return "token_only"
	}
}

// Classify определяет форму ответа
func Classify(raw RawAuthResponse) Shape {
	if _, ok := raw["user"].(map[string]any); ok {
		return ShapeNestedUser
	}
	if _, ok := raw["id"]; ok && raw["id"] != nil {
		return ShapeFlattened
	}
	return ShapeTokenOnly
}

// tokenFields порядок приоритета полей с токеном
var tokenFields = []string{"token", "accessToken", "access_token"}

// ExtractToken возвращает первый непустой токен по приоритету
func ExtractToken(raw RawAuthResponse) (string, error) {
	for _, field := range tokenFields {
		if s, ok := raw[field].(string); ok && s != "" {
			return s, nil
		}
	}
	return "", ErrMissingToken
}

// stringField возвращает строковое значение поля. Числа приводятся к
// десятичной строке.
func stringField(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case string:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return fmt.Sprintf("%d", i)
		}
		return v.String()
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}

// firstString первое непустое значение из списка полей
func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringField(m, k); s != "" {
			return s
		}
	}
	return ""
}

// intField счетчик; отсутствующее или нечисловое значение дает 0
func intField(m map[string]any, keys ...string) int {
	for _, k := range keys {
		switch v := m[k].(type) {
		case json.Number:
			if i, err := v.Int64(); err == nil {
				return int(i)
			}
		case float64:
			return int(v)
		}
	}
	return 0
}
