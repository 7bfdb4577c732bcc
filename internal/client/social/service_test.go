package social

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/devnest/internal/client/api"
	"github.com/iudanet/devnest/internal/client/optimistic"
	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/client/storage/boltdb"
	"github.com/iudanet/devnest/internal/logging"
	"github.com/iudanet/devnest/pkg/api"
)

var errUnauthorized = &clientapi.APIError{StatusCode: 401, Message: "token expired"}

// fakeClient реализует Client; неиспользуемые методы возвращают ошибку
type fakeClient struct {
	feedErr       error
	likeErr       error
	followErr     error
	userPostsErr  error
	profileErr    error
	likeHook      func()
	likeCount     *int
	profile       *api.Profile
	feed          []api.Post
	users         []api.User
	likeCalls     atomic.Int32
	followCalls   atomic.Int32
	mu            sync.Mutex
	lastLikeFlag  bool
	lastFollowID  string
	createdCalled bool
}

func (f *fakeClient) ListPosts(ctx context.Context) ([]api.Post, error) { return f.feed, f.feedErr }
func (f *fakeClient) GetFeed(ctx context.Context) ([]api.Post, error)   { return f.feed, f.feedErr }
func (f *fakeClient) GetPublicFeed(ctx context.Context) ([]api.Post, error) {
	return f.feed, f.feedErr
}

func (f *fakeClient) GetUserPosts(ctx context.Context, username string) ([]api.Post, error) {
	if f.userPostsErr != nil {
		return nil, f.userPostsErr
	}
	return f.feed, nil
}

func (f *fakeClient) CreatePost(ctx context.Context, content string) (*api.Post, error) {
	f.createdCalled = true
	return &api.Post{ID: "new", Content: content}, nil
}

func (f *fakeClient) GetPost(ctx context.Context, id string) (*api.Post, error) {
	return &api.Post{ID: id}, nil
}

func (f *fakeClient) LikePost(ctx context.Context, id string) (*api.LikeResponse, error) {
	return f.like(true)
}

func (f *fakeClient) UnlikePost(ctx context.Context, id string) (*api.LikeResponse, error) {
	return f.like(false)
}

func (f *fakeClient) like(flag bool) (*api.LikeResponse, error) {
	f.likeCalls.Add(1)
	f.mu.Lock()
	f.lastLikeFlag = flag
	f.mu.Unlock()
	if f.likeHook != nil {
		f.likeHook()
	}
	if f.likeErr != nil {
		return nil, f.likeErr
	}
	return &api.LikeResponse{LikesCount: f.likeCount, HasLiked: flag}, nil
}

func (f *fakeClient) GetComments(ctx context.Context, postID string) ([]api.Comment, error) {
	return []api.Comment{{ID: "c1", Content: "hi"}}, nil
}

func (f *fakeClient) AddComment(ctx context.Context, postID, content string) (*api.Comment, error) {
	return &api.Comment{ID: "c2", Content: content}, nil
}

func (f *fakeClient) GetProfile(ctx context.Context, username string) (*api.Profile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, username string, req api.UpdateProfileRequest) (*api.Profile, error) {
	p := *f.profile
	p.Username = username
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	return &p, nil
}

func (f *fakeClient) FollowUser(ctx context.Context, userID string) (*api.FollowResponse, error) {
	return f.follow(userID)
}

func (f *fakeClient) UnfollowUser(ctx context.Context, userID string) (*api.FollowResponse, error) {
	return f.follow(userID)
}

func (f *fakeClient) follow(userID string) (*api.FollowResponse, error) {
	f.followCalls.Add(1)
	f.mu.Lock()
	f.lastFollowID = userID
	f.mu.Unlock()
	if f.followErr != nil {
		return nil, f.followErr
	}
	return &api.FollowResponse{UserID: userID}, nil
}

func (f *fakeClient) GetFollowers(ctx context.Context, userID string) ([]api.User, error) {
	return f.users, nil
}

func (f *fakeClient) GetFollowing(ctx context.Context, userID string) ([]api.User, error) {
	return f.users, nil
}

// newTestService создает сервис с реальным менеджером сессий
func newTestService(t *testing.T, client *fakeClient, loggedIn bool) (*Service, *session.Manager) {
	t.Helper()
	ctx := context.Background()
	store, err := boltdb.New(ctx, filepath.Join(t.TempDir(), "social.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	sessions := session.NewManager(store, nil, logging.Discard())
	if loggedIn {
		_, err := sessions.Establish(ctx, []byte(`{"token":"t","user":{"id":"me","username":"alice"}}`))
		require.NoError(t, err)
	}
	return NewService(client, sessions, time.Second, logging.Discard()), sessions
}

func TestService_LoadFeed(t *testing.T) {
	client := &fakeClient{feed: []api.Post{{ID: "p1"}, {ID: "p2"}}}
	svc, _ := newTestService(t, client, true)

	tl, err := svc.LoadFeed(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tl.Len())
}

func TestService_LoadFeed_NotAuthenticated(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{}, false)
	_, err := svc.LoadFeed(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestService_LoadFeed_UnauthorizedClearsSession(t *testing.T) {
	client := &fakeClient{feedErr: errUnauthorized}
	svc, sessions := newTestService(t, client, true)

	_, err := svc.LoadFeed(context.Background())
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Nil(t, sessions.Current())
}

func TestService_LoadPublicFeed_OtherErrorKeepsSession(t *testing.T) {
	client := &fakeClient{feedErr: clientapi.ErrNetwork}
	svc, sessions := newTestService(t, client, true)

	_, err := svc.LoadPublicFeed(context.Background())
	assert.ErrorIs(t, err, clientapi.ErrNetwork)
	assert.NotNil(t, sessions.Current())
}

func TestService_CreatePost(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(t, client, true)
	tl := NewTimeline([]api.Post{{ID: "old"}})

	post, err := svc.CreatePost(context.Background(), tl, "  hello world  ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", post.Content)

	posts := tl.Posts()
	require.Len(t, posts, 2)
	assert.Equal(t, "new", posts[0].ID)
	_, ok := tl.Get("old")
	assert.True(t, ok)
}

func TestService_CreatePost_Empty(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(t, client, true)

	_, err := svc.CreatePost(context.Background(), nil, "   ")
	require.Error(t, err)
	assert.False(t, client.createdCalled)
}

func TestService_ToggleLike_Revert(t *testing.T) {
	client := &fakeClient{likeErr: clientapi.ErrNetwork}
	svc, _ := newTestService(t, client, true)
	tl := NewTimeline([]api.Post{{ID: "p1", HasLiked: false, LikesCount: 4}})

	// Во время запроса видно оптимистичное состояние
	client.likeHook = func() {
		p, _ := tl.Get("p1")
		assert.True(t, p.HasLiked)
		assert.Equal(t, 5, p.LikesCount)
	}

	state, err := svc.ToggleLike(context.Background(), tl, "p1")
	assert.ErrorIs(t, err, clientapi.ErrNetwork)
	assert.Equal(t, optimistic.State{Flag: false, Count: 4}, state)

	p, _ := tl.Get("p1")
	assert.False(t, p.HasLiked)
	assert.Equal(t, 4, p.LikesCount)
}

func TestService_ToggleLike_AuthoritativeCount(t *testing.T) {
	count := 42
	client := &fakeClient{likeCount: &count}
	svc, _ := newTestService(t, client, true)
	tl := NewTimeline([]api.Post{{ID: "p1", HasLiked: true, LikesCount: 4}})

	state, err := svc.ToggleLike(context.Background(), tl, "p1")
	require.NoError(t, err)
	assert.Equal(t, optimistic.State{Flag: false, Count: 42}, state)
	assert.False(t, client.lastLikeFlag, "должен уйти unlike")
}

func TestService_ToggleLike_SingleInFlight(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(t, client, true)
	tl := NewTimeline([]api.Post{{ID: "p1"}})

	started := make(chan struct{})
	release := make(chan struct{})
	client.likeHook = func() {
		close(started)
		<-release
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.ToggleLike(context.Background(), tl, "p1")
		done <- err
	}()

	<-started
	_, err := svc.ToggleLike(context.Background(), tl, "p1")
	assert.ErrorIs(t, err, optimistic.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), client.likeCalls.Load())
}

func TestService_ToggleLike_Errors(t *testing.T) {
	svc, _ := newTestService(t, &fakeClient{}, false)
	_, err := svc.ToggleLike(context.Background(), NewTimeline(nil), "p1")
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	svc, _ = newTestService(t, &fakeClient{}, true)
	_, err = svc.ToggleLike(context.Background(), NewTimeline(nil), "p1")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestService_LoadProfile(t *testing.T) {
	client := &fakeClient{
		profile: &api.Profile{User: api.User{ID: "u2", Username: "bob", FollowersCount: 3}},
		feed:    []api.Post{{ID: "p1"}},
	}
	svc, _ := newTestService(t, client, true)

	view, err := svc.LoadProfile(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, "u2", view.Profile().ID)
	assert.Equal(t, 1, view.Posts.Len())
}

func TestService_LoadProfile_PostsFailureTolerated(t *testing.T) {
	client := &fakeClient{
		profile:      &api.Profile{User: api.User{ID: "u2", Username: "bob"}},
		userPostsErr: errors.New("boom"),
	}
	svc, _ := newTestService(t, client, true)

	view, err := svc.LoadProfile(context.Background(), "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, view.Posts.Len())
}

func TestService_LoadProfile_ProfileFailure(t *testing.T) {
	client := &fakeClient{profileErr: &clientapi.APIError{StatusCode: 404, Message: "user not found"}}
	svc, _ := newTestService(t, client, true)

	_, err := svc.LoadProfile(context.Background(), "ghost")
	assert.Equal(t, 404, clientapi.StatusCode(err))
}

func TestService_ToggleFollow(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(t, client, true)
	view := NewProfileView(api.Profile{User: api.User{ID: "u2", FollowersCount: 3}}, nil)

	state, err := svc.ToggleFollow(context.Background(), view)
	require.NoError(t, err)
	assert.Equal(t, optimistic.State{Flag: true, Count: 4}, state)
	assert.True(t, view.Profile().IsFollowing)
	assert.Equal(t, "u2", client.lastFollowID)
}

func TestService_ToggleFollow_RevertAndUnauthorized(t *testing.T) {
	client := &fakeClient{followErr: errUnauthorized}
	svc, sessions := newTestService(t, client, true)
	view := NewProfileView(api.Profile{User: api.User{ID: "u2", FollowersCount: 3}, IsFollowing: true}, nil)

	state, err := svc.ToggleFollow(context.Background(), view)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, optimistic.State{Flag: true, Count: 3}, state)
	assert.Equal(t, optimistic.State{Flag: true, Count: 3}, view.Load())
	assert.Nil(t, sessions.Current())
}

func TestService_ToggleFollow_Guards(t *testing.T) {
	client := &fakeClient{}
	svc, _ := newTestService(t, client, false)
	view := NewProfileView(api.Profile{User: api.User{ID: "u2"}}, nil)

	_, err := svc.ToggleFollow(context.Background(), view)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	svc, _ = newTestService(t, client, true)
	self := NewProfileView(api.Profile{User: api.User{ID: "me"}, IsMe: true}, nil)
	_, err = svc.ToggleFollow(context.Background(), self)
	assert.ErrorIs(t, err, ErrFollowSelf)

	assert.Equal(t, int32(0), client.followCalls.Load())
}

func TestService_UpdateProfile(t *testing.T) {
	client := &fakeClient{profile: &api.Profile{User: api.User{ID: "me"}}}
	svc, _ := newTestService(t, client, true)

	bio := "gopher"
	p, err := svc.UpdateProfile(context.Background(), api.UpdateProfileRequest{Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "gopher", p.Bio)
}

func TestService_FollowersAndComments(t *testing.T) {
	client := &fakeClient{
		profile: &api.Profile{User: api.User{ID: "u2"}},
		users:   []api.User{{ID: "u3", Username: "carol"}},
	}
	svc, _ := newTestService(t, client, true)
	ctx := context.Background()

	followers, err := svc.Followers(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, followers, 1)

	following, err := svc.Following(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "carol", following[0].Username)

	comments, err := svc.Comments(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, comments, 1)

	c, err := svc.AddComment(ctx, "p1", " nice ")
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Content)

	post, err := svc.GetPost(ctx, "p9")
	require.NoError(t, err)
	assert.Equal(t, "p9", post.ID)
}
