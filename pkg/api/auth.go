package api

// RegisterRequest представляет запрос на регистрацию нового пользователя
type RegisterRequest struct {
	Username string `json:"username"` // username пользователя
	Email    string `json:"email"`    // email пользователя
	Password string `json:"password"` // пароль в открытом виде (только по TLS)
}

// LoginRequest представляет запрос на аутентификацию
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse ответ с вложенным объектом пользователя (style "nested")
type AuthResponse struct {
	User  *User  `json:"user,omitempty"`
	Token string `json:"token"`
}

// FlattenedAuthResponse ответ, в котором поля пользователя лежат на верхнем уровне (style "flattened")
type FlattenedAuthResponse struct {
	AccessToken string `json:"accessToken"`
	User
}

// TokenResponse ответ только с токеном (style "token_only")
type TokenResponse struct {
	AccessToken string `json:"access_token"` // JWT access token
	TokenType   string `json:"token_type"`   // всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`   // время жизни access token в секундах
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
