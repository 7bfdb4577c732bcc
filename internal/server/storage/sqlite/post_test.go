package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/internal/server/storage"
)

func postIDs(posts []*models.PostView) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.Post.ID)
	}
	return ids
}

func TestPostStorage_GetPost(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")
	post := createTestPost(t, ctx, s, alice.ID, "first post", time.Now())

	_, err := s.Like(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = s.Follow(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	tests := []struct {
		name      string
		viewerID  string
		wantLiked bool
	}{
		{name: "anonymous viewer", viewerID: ""},
		{name: "viewer who liked", viewerID: bob.ID, wantLiked: true},
		{name: "author", viewerID: alice.ID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := s.GetPost(ctx, post.ID, tt.viewerID)
			require.NoError(t, err)

			assert.Equal(t, post.ID, view.Post.ID)
			assert.Equal(t, "first post", view.Post.Content)
			assert.Equal(t, alice.ID, view.Post.AuthorID)
			assert.Equal(t, "alice", view.Author.User.Username)
			assert.Equal(t, 1, view.Author.Stats.FollowersCount)
			assert.Equal(t, 1, view.LikesCount)
			assert.Equal(t, 0, view.CommentsCount)
			assert.Equal(t, tt.wantLiked, view.HasLiked)
		})
	}

	_, err = s.GetPost(ctx, "missing", "")
	assert.ErrorIs(t, err, storage.ErrPostNotFound)
}

func TestPostStorage_Lists(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")
	carol := createTestUser(t, ctx, s, "carol")

	base := time.Now().Add(-time.Hour)
	a1 := createTestPost(t, ctx, s, alice.ID, "a1", base)
	b1 := createTestPost(t, ctx, s, bob.ID, "b1", base.Add(time.Minute))
	c1 := createTestPost(t, ctx, s, carol.ID, "c1", base.Add(2*time.Minute))
	a2 := createTestPost(t, ctx, s, alice.ID, "a2", base.Add(3*time.Minute))

	// alice подписана только на bob
	_, err := s.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	t.Run("all posts newest first", func(t *testing.T) {
		posts, err := s.ListPosts(ctx, "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, c1.ID, b1.ID, a1.ID}, postIDs(posts))
	})

	t.Run("limit and offset", func(t *testing.T) {
		posts, err := s.ListPosts(ctx, "", 2, 1)
		require.NoError(t, err)
		assert.Equal(t, []string{c1.ID, b1.ID}, postIDs(posts))
	})

	t.Run("feed includes own and followed", func(t *testing.T) {
		posts, err := s.ListFeed(ctx, alice.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, b1.ID, a1.ID}, postIDs(posts))
	})

	t.Run("feed of user without follows", func(t *testing.T) {
		posts, err := s.ListFeed(ctx, carol.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{c1.ID}, postIDs(posts))
	})

	t.Run("user posts", func(t *testing.T) {
		posts, err := s.ListUserPosts(ctx, alice.ID, "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, []string{a2.ID, a1.ID}, postIDs(posts))
	})

	t.Run("empty list is not nil", func(t *testing.T) {
		posts, err := s.ListUserPosts(ctx, "nobody", "", 10, 0)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	})
}

func TestPostStorage_Comments(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	alice := createTestUser(t, ctx, s, "alice")
	bob := createTestUser(t, ctx, s, "bob")
	post := createTestPost(t, ctx, s, alice.ID, "post", time.Now())

	base := time.Now()
	for i, author := range []*models.User{bob, alice} {
		err := s.CreateComment(ctx, &models.Comment{
			ID:        uuid.New().String(),
			PostID:    post.ID,
			AuthorID:  author.ID,
			Content:   "comment by " + author.Username,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	comments, err := s.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "comment by bob", comments[0].Comment.Content)
	assert.Equal(t, "bob", comments[0].Author.User.Username)
	assert.Equal(t, "comment by alice", comments[1].Comment.Content)

	view, err := s.GetPost(ctx, post.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, view.CommentsCount)

	err = s.CreateComment(ctx, &models.Comment{
		ID:        uuid.New().String(),
		PostID:    "missing",
		AuthorID:  bob.ID,
		Content:   "x",
		CreatedAt: time.Now(),
	})
	assert.ErrorIs(t, err, storage.ErrPostNotFound)

	_, err = s.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrPostNotFound)
}
