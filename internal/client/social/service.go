// Package social implements the feed, post, profile and follow flows of the
// client on top of the backend API.
package social

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iudanet/devnest/internal/client/optimistic"
	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/validation"
	"github.com/iudanet/devnest/pkg/api"
)

var (
	// ErrNotAuthenticated действие требует входа
	ErrNotAuthenticated = errors.New("not authenticated, please log in")
	// ErrPostNotFound поста нет в локальной ленте
	ErrPostNotFound = errors.New("post not found in timeline")
	// ErrFollowSelf нельзя подписаться на себя
	ErrFollowSelf = errors.New("cannot follow yourself")
)

// Client часть API клиента для социальных операций
type Client interface {
	ListPosts(ctx context.Context) ([]api.Post, error)
	GetFeed(ctx context.Context) ([]api.Post, error)
	GetPublicFeed(ctx context.Context) ([]api.Post, error)
	GetUserPosts(ctx context.Context, username string) ([]api.Post, error)
	CreatePost(ctx context.Context, content string) (*api.Post, error)
	GetPost(ctx context.Context, id string) (*api.Post, error)
	LikePost(ctx context.Context, id string) (*api.LikeResponse, error)
	UnlikePost(ctx context.Context, id string) (*api.LikeResponse, error)
	GetComments(ctx context.Context, postID string) ([]api.Comment, error)
	AddComment(ctx context.Context, postID, content string) (*api.Comment, error)
	GetProfile(ctx context.Context, username string) (*api.Profile, error)
	UpdateProfile(ctx context.Context, username string, req api.UpdateProfileRequest) (*api.Profile, error)
	FollowUser(ctx context.Context, userID string) (*api.FollowResponse, error)
	UnfollowUser(ctx context.Context, userID string) (*api.FollowResponse, error)
	GetFollowers(ctx context.Context, userID string) ([]api.User, error)
	GetFollowing(ctx context.Context, userID string) ([]api.User, error)
}

// Sessions чтение сессии и обработка 401
type Sessions interface {
	Current() *models.Session
	Invalidate(ctx context.Context, err error) error
}

// Service социальные сценарии клиента
type Service struct {
	client   Client
	sessions Sessions
	logger   *slog.Logger
	likes    *optimistic.Coordinator[string]
	follows  *optimistic.Coordinator[string]
}

// NewService создает сервис. timeout ограничивает like/follow вызовы.
func NewService(client Client, sessions Sessions, timeout time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		client:   client,
		sessions: sessions,
		logger:   logger,
		likes:    optimistic.NewCoordinator[string](timeout, logger.With(slog.String("entity", "post"))),
		follows:  optimistic.NewCoordinator[string](timeout, logger.With(slog.String("entity", "user"))),
	}
}

// fail пропускает ошибку через обработку 401
func (s *Service) fail(ctx context.Context, err error) error {
	return s.sessions.Invalidate(ctx, err)
}

// LoadFeed лента подписок, требует сессию
func (s *Service) LoadFeed(ctx context.Context) (*Timeline, error) {
	if s.sessions.Current() == nil {
		return nil, ErrNotAuthenticated
	}
	posts, err := s.client.GetFeed(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return NewTimeline(posts), nil
}

// LoadPublicFeed публичная лента
func (s *Service) LoadPublicFeed(ctx context.Context) (*Timeline, error) {
	posts, err := s.client.GetPublicFeed(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return NewTimeline(posts), nil
}

// ListPosts все посты
func (s *Service) ListPosts(ctx context.Context) (*Timeline, error) {
	posts, err := s.client.ListPosts(ctx)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return NewTimeline(posts), nil
}

// CreatePost публикует пост и добавляет его в начало ленты (tl может быть nil)
func (s *Service) CreatePost(ctx context.Context, tl *Timeline, content string) (*api.Post, error) {
	if s.sessions.Current() == nil {
		return nil, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if err := validation.ValidateContent(content); err != nil {
		return nil, fmt.Errorf("invalid post: %w", err)
	}

	post, err := s.client.CreatePost(ctx, content)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	if tl != nil {
		tl.Prepend(*post)
	}
	return post, nil
}

// GetPost возвращает пост
func (s *Service) GetPost(ctx context.Context, id string) (*api.Post, error) {
	post, err := s.client.GetPost(ctx, id)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return post, nil
}

// Comments возвращает комментарии поста
func (s *Service) Comments(ctx context.Context, postID string) ([]api.Comment, error) {
	comments, err := s.client.GetComments(ctx, postID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return comments, nil
}

// AddComment добавляет комментарий
func (s *Service) AddComment(ctx context.Context, postID, content string) (*api.Comment, error) {
	if s.sessions.Current() == nil {
		return nil, ErrNotAuthenticated
	}
	content = strings.TrimSpace(content)
	if err := validation.ValidateContent(content); err != nil {
		return nil, fmt.Errorf("invalid comment: %w", err)
	}
	comment, err := s.client.AddComment(ctx, postID, content)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return comment, nil
}

// ToggleLike переключает лайк поста в ленте оптимистично
func (s *Service) ToggleLike(ctx context.Context, tl *Timeline, postID string) (optimistic.State, error) {
	if s.sessions.Current() == nil {
		return optimistic.State{}, ErrNotAuthenticated
	}
	if _, ok := tl.Get(postID); !ok {
		return optimistic.State{}, ErrPostNotFound
	}

	state, err := s.likes.Toggle(ctx, postID, likeTarget{tl: tl, id: postID},
		func(ctx context.Context, next optimistic.State) (*int, error) {
			var resp *api.LikeResponse
			var err error
			if next.Flag {
				resp, err = s.client.LikePost(ctx, postID)
			} else {
				resp, err = s.client.UnlikePost(ctx, postID)
			}
			if err != nil {
				return nil, err
			}
			return resp.LikesCount, nil
		})
	if err != nil && !errors.Is(err, optimistic.ErrInFlight) {
		return state, s.fail(ctx, err)
	}
	return state, err
}

// LoadProfile загружает профиль и посты пользователя параллельно.
// Ошибка загрузки постов не фатальна.
func (s *Service) LoadProfile(ctx context.Context, username string) (*ProfileView, error) {
	var (
		profile *api.Profile
		posts   []api.Post
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.client.GetProfile(gctx, username)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	g.Go(func() error {
		p, err := s.client.GetUserPosts(gctx, username)
		if err != nil {
			s.logger.Warn("failed to load user posts", slog.String("username", username), slog.Any("error", err))
			return nil
		}
		posts = p
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, s.fail(ctx, err)
	}

	return NewProfileView(*profile, posts), nil
}

// ToggleFollow переключает подписку оптимистично
func (s *Service) ToggleFollow(ctx context.Context, view *ProfileView) (optimistic.State, error) {
	if s.sessions.Current() == nil {
		return view.Load(), ErrNotAuthenticated
	}
	profile := view.Profile()
	if profile.IsMe {
		return view.Load(), ErrFollowSelf
	}

	userID := profile.ID
	state, err := s.follows.Toggle(ctx, userID, view,
		func(ctx context.Context, next optimistic.State) (*int, error) {
			var resp *api.FollowResponse
			var err error
			if next.Flag {
				resp, err = s.client.FollowUser(ctx, userID)
			} else {
				resp, err = s.client.UnfollowUser(ctx, userID)
			}
			if err != nil {
				return nil, err
			}
			return resp.FollowersCount, nil
		})
	if err != nil && !errors.Is(err, optimistic.ErrInFlight) {
		return state, s.fail(ctx, err)
	}
	return state, err
}

// UpdateProfile обновляет профиль текущего пользователя
func (s *Service) UpdateProfile(ctx context.Context, req api.UpdateProfileRequest) (*api.Profile, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, ErrNotAuthenticated
	}
	if sess.User == nil {
		return nil, fmt.Errorf("session has no profile, please log in again")
	}

	profile, err := s.client.UpdateProfile(ctx, sess.User.Username, req)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return profile, nil
}

// Followers подписчики пользователя
func (s *Service) Followers(ctx context.Context, username string) ([]api.User, error) {
	return s.connections(ctx, username, s.client.GetFollowers)
}

// Following подписки пользователя
func (s *Service) Following(ctx context.Context, username string) ([]api.User, error) {
	return s.connections(ctx, username, s.client.GetFollowing)
}

func (s *Service) connections(ctx context.Context, username string,
	fetch func(ctx context.Context, userID string) ([]api.User, error)) ([]api.User, error) {
	profile, err := s.client.GetProfile(ctx, username)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	users, err := fetch(ctx, profile.ID)
	if err != nil {
		return nil, s.fail(ctx, err)
	}
	return users, nil
}
