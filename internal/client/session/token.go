package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
)

// segmentParser декодирует base64url сегменты с паддингом и без.
// Подпись не проверяется: это ответственность бэкенда.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// DecodeTokenPayload декодирует средний сегмент compact токена header.payload.signature
func DecodeTokenPayload(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedTokenPayload, len(parts))
	}

	// Стандартный алфавит base64 тоже принимаем
	seg := strings.NewReplacer("+", "-", "/", "_").Replace(parts[1])

	data, err := segmentParser.DecodeSegment(seg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTokenPayload, err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: payload is not valid UTF-8", ErrMalformedTokenPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var payload map[string]any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedTokenPayload, err)
	}
	if payload == nil {
		return nil, fmt.Errorf("%w: payload is not an object", ErrMalformedTokenPayload)
	}

	return payload, nil
}
