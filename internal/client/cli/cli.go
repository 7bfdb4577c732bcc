package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/iudanet/devnest/internal/client/auth"
	"github.com/iudanet/devnest/internal/client/iocli"
	"github.com/iudanet/devnest/internal/client/optimistic"
	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/client/social"
	"github.com/iudanet/devnest/pkg/api"
)

// EnvPassword переменная окружения с паролем для неинтерактивного входа
const EnvPassword = "DEVNEST_PASSWORD"

// SocialService социальные сценарии, используемые командами
type SocialService interface {
	LoadFeed(ctx context.Context) (*social.Timeline, error)
	LoadPublicFeed(ctx context.Context) (*social.Timeline, error)
	ListPosts(ctx context.Context) (*social.Timeline, error)
	CreatePost(ctx context.Context, tl *social.Timeline, content string) (*api.Post, error)
	GetPost(ctx context.Context, id string) (*api.Post, error)
	Comments(ctx context.Context, postID string) ([]api.Comment, error)
	AddComment(ctx context.Context, postID, content string) (*api.Comment, error)
	ToggleLike(ctx context.Context, tl *social.Timeline, postID string) (optimistic.State, error)
	LoadProfile(ctx context.Context, username string) (*social.ProfileView, error)
	ToggleFollow(ctx context.Context, view *social.ProfileView) (optimistic.State, error)
	UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Profile, error)
	Followers(ctx context.Context, username string) ([]api.User, error)
	Following(ctx context.Context, username string) ([]api.User, error)
}

var _ SocialService = (*social.Service)(nil)

// Cli обработчики команд devnest
type Cli struct {
	io            iocli.IO
	authService   auth.Service
	socialService SocialService
	getenv        func(string) string
}

// New создает Cli
func New(io iocli.IO, authService auth.Service, socialService SocialService) *Cli {
	return &Cli{
		io:            io,
		authService:   authService,
		socialService: socialService,
		getenv:        os.Getenv,
	}
}

// readPassword берет пароль из DEVNEST_PASSWORD или спрашивает без эха
func (c *Cli) readPassword(prompt string) (string, error) {
	if pw := c.getenv(EnvPassword); pw != "" {
		return pw, nil
	}
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	return password, nil
}

// explain печатает подсказку для известных ошибок и возвращает err
func (c *Cli) explain(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrSessionExpired):
		c.io.Errorf("⚠️  Session expired, please log in again: devnest login\n")
	case errors.Is(err, social.ErrNotAuthenticated), errors.Is(err, session.ErrNoSession):
		c.io.Errorf("Not logged in. Run 'devnest login' first.\n")
	case errors.Is(err, optimistic.ErrInFlight):
		c.io.Errorf("Previous request for this item is still in progress.\n")
	}
	return err
}
