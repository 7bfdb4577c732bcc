package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/pkg/api"
)

// AuthStyle форма тела ответа register/login
type AuthStyle string

const (
	// StyleNested {token, user: {...}}
	StyleNested AuthStyle = "nested"
	// StyleFlattened {accessToken, id, username, ...}
	StyleFlattened AuthStyle = "flattened"
	// StyleTokenOnly {access_token, token_type, expires_in}
	StyleTokenOnly AuthStyle = "token_only"
)

// ParseAuthStyle разбирает стиль из конфигурации, пустая строка означает nested
func ParseAuthStyle(s string) (AuthStyle, error) {
	switch style := AuthStyle(strings.ToLower(strings.TrimSpace(s))); style {
	case "":
		return StyleNested, nil
	case StyleNested, StyleFlattened, StyleTokenOnly:
		return style, nil
	default:
		return "", fmt.Errorf("unknown auth response style %q (want nested, flattened or token_only)", s)
	}
}

// authBody строит тело ответа в заданном стиле
func (s AuthStyle) authBody(token string, user *models.User, ttl time.Duration) any {
	view := toAPIUser(&models.UserView{User: user})
	view.Email = user.Email

	switch s {
	case StyleFlattened:
		return api.FlattenedAuthResponse{AccessToken: token, User: view}
	case StyleTokenOnly:
		return api.TokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(ttl.Seconds()),
		}
	default:
		return api.AuthResponse{Token: token, User: &view}
	}
}
