package cli

import (
	"context"
	"errors"

	"github.com/iudanet/devnest/internal/client/session"
	"github.com/iudanet/devnest/internal/client/social"
)

// FeedMode источник ленты
type FeedMode int

const (
	// FeedFollowing посты подписок (требует входа)
	FeedFollowing FeedMode = iota
	// FeedPublic публичная лента
	FeedPublic
	// FeedAll все посты
	FeedAll
)

// Feed печатает ленту
func (c *Cli) Feed(ctx context.Context, mode FeedMode) error {
	var (
		tl  *social.Timeline
		err error
	)

	switch mode {
	case FeedPublic:
		c.io.Println("=== Public Feed ===")
		tl, err = c.socialService.LoadPublicFeed(ctx)
	case FeedAll:
		c.io.Println("=== All Posts ===")
		tl, err = c.socialService.ListPosts(ctx)
	default:
		c.io.Println("=== Your Feed ===")
		tl, err = c.socialService.LoadFeed(ctx)
	}
	c.io.Println()

	if err != nil {
		if !errors.Is(err, session.ErrSessionExpired) && !errors.Is(err, social.ErrNotAuthenticated) {
			c.io.Errorf("Failed to load feed: %v\n", err)
			c.io.Errorf("Run the command again to retry.\n")
			return err
		}
		return c.explain(err)
	}

	if tl.Len() == 0 {
		c.io.Println("No posts yet.")
		return nil
	}

	for _, p := range tl.Posts() {
		c.printPost(p)
		c.io.Println()
	}

	return nil
}
