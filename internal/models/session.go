package models

// UserIdentity личность пользователя, сохраненная на клиенте вместе с токеном.
// ID обязателен для валидной сессии, Username никогда не бывает пустым.
type UserIdentity struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// Session локальная сессия клиента.
// User == nil означает деградированную сессию: токен есть, профиля нет.
type Session struct {
	User  *UserIdentity `json:"user,omitempty"`
	Token string        `json:"token"`
}

// Degraded сообщает, что сессия содержит только токен
func (s *Session) Degraded() bool {
	return s.User == nil
}
