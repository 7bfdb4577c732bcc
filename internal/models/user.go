package models

import "time"

// User представляет пользователя в системе
type User struct {
	CreatedAt    time.Time  `json:"created_at"`           // время создания
	LastLogin    *time.Time `json:"last_login,omitempty"` // время последнего входа
	ID           string     `json:"id"`                   // UUID пользователя
	Username     string     `json:"username"`             // уникальный username
	Email        string     `json:"email"`                // уникальный email (логин)
	Name         string     `json:"name"`                 // отображаемое имя
	Bio          string     `json:"bio"`
	AvatarURL    string     `json:"avatar_url"`
	PasswordHash string     `json:"-"` // bcrypt хеш пароля
}

// UserStats счетчики пользователя
type UserStats struct {
	FollowersCount int
	FollowingCount int
	PostsCount     int
}

// UserView пользователь вместе со счетчиками
type UserView struct {
	User  *User
	Stats UserStats
}

// RevokedToken токен, отозванный через logout
type RevokedToken struct {
	ExpiresAt time.Time `json:"expires_at"` // после этого момента запись можно удалить
	RevokedAt time.Time `json:"revoked_at"`
	ID        string    `json:"id"` // jti токена
	UserID    string    `json:"user_id"`
}
