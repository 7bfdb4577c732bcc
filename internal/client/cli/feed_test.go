package cli

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/iudanet/devnest/internal/client/api"
	"github.com/iudanet/devnest/internal/client/optimistic"
	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/client/social"
	"github.com/iudanet/devnest/pkg/api"
)

func TestCli_Feed(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{timeline: social.NewTimeline([]api.Post{
		{ID: "p1", Content: "hello", Author: api.User{Username: "bob"}, LikesCount: 2, HasLiked: true},
	})}

	c := newTestCli(mockIO, nil, fs)
	require.NoError(t, c.Feed(context.Background(), FeedFollowing))

	assert.Contains(t, out.String(), "Your Feed")
	assert.Contains(t, out.String(), "[p1] @bob")
	assert.Contains(t, out.String(), "hello")
	assert.Contains(t, out.String(), "♥ 2")
}

func TestCli_Feed_Empty(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{timeline: social.NewTimeline(nil)}

	require.NoError(t, newTestCli(mockIO, nil, fs).Feed(context.Background(), FeedPublic))
	assert.Contains(t, out.String(), "Public Feed")
	assert.Contains(t, out.String(), "No posts yet.")
}

func TestCli_Feed_RetryHint(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{feedErr: fmt.Errorf("get /feed failed: %w", clientapi.ErrNetwork)}

	err := newTestCli(mockIO, nil, fs).Feed(context.Background(), FeedAll)
	assert.ErrorIs(t, err, clientapi.ErrNetwork)
	assert.Contains(t, out.Errors(), "retry")
}

func TestCli_Feed_SessionExpired(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{feedErr: session.ErrSessionExpired}

	err := newTestCli(mockIO, nil, fs).Feed(context.Background(), FeedFollowing)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Contains(t, out.Errors(), "Session expired")
	assert.NotContains(t, out.Errors(), "retry")
}

func TestCli_PostShowComment(t *testing.T) {
	ctx := context.Background()
	mockIO, out := newMockIO()
	fs := &fakeSocial{
		post:     &api.Post{ID: "p1", Content: "first", Author: api.User{Username: "bob"}, CommentsCount: 1},
		comments: []api.Comment{{ID: "c1", Content: "nice", Author: api.User{Username: "carol"}}},
	}
	c := newTestCli(mockIO, nil, fs)

	require.NoError(t, c.Post(ctx, "hello"))
	assert.Contains(t, out.String(), "Post published")

	require.NoError(t, c.Show(ctx, "p1"))
	assert.Contains(t, out.String(), "Comments (1)")
	assert.Contains(t, out.String(), "@carol: nice")

	require.NoError(t, c.Comment(ctx, "p1", "great"))
	assert.Contains(t, out.String(), "@alice: great")
}

func TestCli_Like(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{
		post:  &api.Post{ID: "p1", LikesCount: 4},
		state: optimistic.State{Flag: true, Count: 5},
	}

	require.NoError(t, newTestCli(mockIO, nil, fs).Like(context.Background(), "p1"))
	assert.Contains(t, out.String(), "Liked (5 likes)")
}

func TestCli_Like_Reverted(t *testing.T) {
	mockIO, out := newMockIO()
	fs := &fakeSocial{
		post:      &api.Post{ID: "p1", LikesCount: 4},
		state:     optimistic.State{Flag: false, Count: 4},
		toggleErr: clientapi.ErrNetwork,
	}

	err := newTestCli(mockIO, nil, fs).Like(context.Background(), "p1")
	assert.ErrorIs(t, err, clientapi.ErrNetwork)
	assert.Contains(t, out.Errors(), "nothing changed (4 likes)")
}
