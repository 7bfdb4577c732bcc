package session

import (
	"strings"

	"github.com/iudanet/devnest/internal/models"
)

const fallbackUsername = "User"

// identityStrategy пытается получить личность из ответа.
// (nil, nil) означает, что стратегия неприменима.
type identityStrategy struct {
	resolve func(raw RawAuthResponse, token string) (*models.UserIdentity, error)
	shape   Shape
}

// strategies порядок важен: первая успешная побеждает
var strategies = []identityStrategy{
	{shape: ShapeNestedUser, resolve: fromNestedUser},
	{shape: ShapeFlattened, resolve: fromFlattened},
	{shape: ShapeTokenOnly, resolve: fromTokenPayload},
}

// fromNestedUser {token, user: {...}}
func fromNestedUser(raw RawAuthResponse, _ string) (*models.UserIdentity, error) {
	user, ok := raw["user"].(map[string]any)
	if !ok {
		return nil, nil
	}
	return identityFromObject(user), nil
}

// fromFlattened весь ответ является объектом пользователя
func fromFlattened(raw RawAuthResponse, _ string) (*models.UserIdentity, error) {
	if stringField(raw, "id") == "" {
		return nil, nil
	}
	return identityFromObject(raw), nil
}

// fromTokenPayload восстанавливает личность из payload токена
func fromTokenPayload(_ RawAuthResponse, token string) (*models.UserIdentity, error) {
	payload, err := DecodeTokenPayload(token)
	if err != nil {
		return nil, err
	}

	id := firstString(payload, "sub", "id", "userId")
	if id == "" {
		return nil, nil
	}

	email := stringField(payload, "email")

	username := firstString(payload, "username", "name")
	if username == "" {
		username = emailLocalPart(email)
	}
	if username == "" {
		username = fallbackUsername
	}

	return &models.UserIdentity{
		ID:       id,
		Username: username,
		Email:    email,
	}, nil
}

// identityFromObject применяет fallback username -> name -> "User".
// Объект без id не дает личности.
func identityFromObject(obj map[string]any) *models.UserIdentity {
	id := stringField(obj, "id")
	if id == "" {
		return nil
	}

	username := strings.TrimSpace(stringField(obj, "username"))
	if username == "" {
		username = strings.TrimSpace(stringField(obj, "name"))
	}
	if username == "" {
		username = fallbackUsername
	}

	return &models.UserIdentity{
		ID:             id,
		Username:       username,
		Email:          stringField(obj, "email"),
		FollowersCount: intField(obj, "followersCount", "followers_count"),
		FollowingCount: intField(obj, "followingCount", "following_count"),
	}
}

func emailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return strings.TrimSpace(local)
}
