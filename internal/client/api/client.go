package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iudanet/devnest/pkg/api"
)

const (
	apiPrefix      = "/api/v1"
	defaultTimeout = 30 * time.Second
)

// TokenSource отдает текущий bearer токен или пустую строку
type TokenSource interface {
	Token() string
}

// Client представляет HTTP клиент для взаимодействия с сервером
type Client struct {
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	baseURL    string
}

// Option настраивает Client
type Option func(*Client)

// WithTimeout задает таймаут HTTP запросов
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithTokenSource подключает источник bearer токена
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithLogger задает логгер
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithHTTPClient подменяет http.Client (используется в тестах)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient создает новый API клиент
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  slog.New(slog.DiscardHandler),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("stopped after 10 redirects")
				}
				// Копируем заголовки Authorization при редиректе
				if len(via) > 0 && via[0].Header.Get("Authorization") != "" {
					req.Header.Set("Authorization", via[0].Header.Get("Authorization"))
				}
				return nil
			},
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register регистрирует пользователя и возвращает сырое тело ответа.
// Форма ответа зависит от бэкенда, разбором занимается session.Reconciler.
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return resp, nil
}

// Login выполняет аутентификацию и возвращает сырое тело ответа
func (c *Client) Login(ctx context.Context, req api.LoginRequest) (json.RawMessage, error) {
	var resp json.RawMessage
	if err := c.doRequest(ctx, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return resp, nil
}

// Logout отзывает текущий токен на сервере
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("logout request failed: %w", err)
	}
	return nil
}

// ListPosts возвращает все посты
func (c *Client) ListPosts(ctx context.Context) ([]api.Post, error) {
	return c.getPosts(ctx, "/posts")
}

// GetFeed возвращает ленту подписок текущего пользователя
func (c *Client) GetFeed(ctx context.Context) ([]api.Post, error) {
	return c.getPosts(ctx, "/feed")
}

// GetPublicFeed возвращает публичную ленту
func (c *Client) GetPublicFeed(ctx context.Context) ([]api.Post, error) {
	return c.getPosts(ctx, "/home")
}

// GetUserPosts возвращает посты пользователя
func (c *Client) GetUserPosts(ctx context.Context, username string) ([]api.Post, error) {
	return c.getPosts(ctx, "/posts/user/"+url.PathEscape(username))
}

func (c *Client) getPosts(ctx context.Context, path string) ([]api.Post, error) {
	var posts []api.Post
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &posts); err != nil {
		return nil, fmt.Errorf("get %s failed: %w", path, err)
	}
	return posts, nil
}

// CreatePost публикует новый пост
func (c *Client) CreatePost(ctx context.Context, content string) (*api.Post, error) {
	var post api.Post
	req := api.CreatePostRequest{Content: content}
	if err := c.doRequest(ctx, http.MethodPost, "/posts", req, &post); err != nil {
		return nil, fmt.Errorf("create post failed: %w", err)
	}
	return &post, nil
}

// GetPost возвращает пост по id
func (c *Client) GetPost(ctx context.Context, id string) (*api.Post, error) {
	var post api.Post
	if err := c.doRequest(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, fmt.Errorf("get post failed: %w", err)
	}
	return &post, nil
}

// LikePost ставит лайк. Ответ может быть пустым.
func (c *Client) LikePost(ctx context.Context, id string) (*api.LikeResponse, error) {
	return c.like(ctx, http.MethodPost, id)
}

// UnlikePost снимает лайк
func (c *Client) UnlikePost(ctx context.Context, id string) (*api.LikeResponse, error) {
	return c.like(ctx, http.MethodDelete, id)
}

func (c *Client) like(ctx context.Context, method, id string) (*api.LikeResponse, error) {
	var resp api.LikeResponse
	if err := c.doRequest(ctx, method, "/likes/"+url.PathEscape(id), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s like failed: %w", strings.ToLower(method), err)
	}
	return &resp, nil
}

// GetComments возвращает комментарии к посту
func (c *Client) GetComments(ctx context.Context, postID string) ([]api.Comment, error) {
	var comments []api.Comment
	path := "/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &comments); err != nil {
		return nil, fmt.Errorf("get comments failed: %w", err)
	}
	return comments, nil
}

// AddComment добавляет комментарий к посту
func (c *Client) AddComment(ctx context.Context, postID, content string) (*api.Comment, error) {
	var comment api.Comment
	path := "/posts/" + url.PathEscape(postID) + "/comments"
	if err := c.doRequest(ctx, http.MethodPost, path, api.CreateCommentRequest{Content: content}, &comment); err != nil {
		return nil, fmt.Errorf("add comment failed: %w", err)
	}
	return &comment, nil
}

// GetProfile возвращает профиль пользователя
func (c *Client) GetProfile(ctx context.Context, username string) (*api.Profile, error) {
	var profile api.Profile
	if err := c.doRequest(ctx, http.MethodGet, "/profile/"+url.PathEscape(username), nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile failed: %w", err)
	}
	return &profile, nil
}

// UpdateProfile обновляет профиль текущего пользователя
func (c *Client) UpdateProfile(ctx context.Context, username string, req api.UpdateProfileRequest) (*api.Profile, error) {
	var profile api.Profile
	if err := c.doRequest(ctx, http.MethodPatch, "/profile/"+url.PathEscape(username), req, &profile); err != nil {
		return nil, fmt.Errorf("update profile failed: %w", err)
	}
	return &profile, nil
}

// FollowUser подписывается на пользователя
func (c *Client) FollowUser(ctx context.Context, userID string) (*api.FollowResponse, error) {
	return c.follow(ctx, http.MethodPost, userID)
}

// UnfollowUser отписывается от пользователя
func (c *Client) UnfollowUser(ctx context.Context, userID string) (*api.FollowResponse, error) {
	return c.follow(ctx, http.MethodDelete, userID)
}

func (c *Client) follow(ctx context.Context, method, userID string) (*api.FollowResponse, error) {
	var resp api.FollowResponse
	if err := c.doRequest(ctx, method, "/follow/"+url.PathEscape(userID), nil, &resp); err != nil {
		return nil, fmt.Errorf("%s follow failed: %w", strings.ToLower(method), err)
	}
	return &resp, nil
}

// GetFollowers возвращает подписчиков пользователя
func (c *Client) GetFollowers(ctx context.Context, userID string) ([]api.User, error) {
	return c.getUsers(ctx, "/follow/"+url.PathEscape(userID)+"/followers")
}

// GetFollowing возвращает подписки пользователя
func (c *Client) GetFollowing(ctx context.Context, userID string) ([]api.User, error) {
	return c.getUsers(ctx, "/follow/"+url.PathEscape(userID)+"/following")
}

func (c *Client) getUsers(ctx context.Context, path string) ([]api.User, error) {
	var users []api.User
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &users); err != nil {
		return nil, fmt.Errorf("get %s failed: %w", path, err)
	}
	return users, nil
}

// doRequest выполняет HTTP запрос
func (c *Client) doRequest(ctx context.Context, method, path string, body, result any) error {
	fullURL := c.baseURL + apiPrefix + path

	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Bool("token_present", token != ""))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Читаем тело ответа
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %w", ErrNetwork, err)
	}

	c.logger.Debug("api response",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	// Проверяем статус код
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Message = errResp.Message
			if apiErr.Message == "" {
				apiErr.Message = errResp.Error
			}
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	// 204 и пустое тело считаем пустым результатом
	if result == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}

	if raw, ok := result.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], respBody...)
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
