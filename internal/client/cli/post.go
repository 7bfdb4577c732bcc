package cli

import (
	"context"

	"github.com/iudanet/devnest/internal/client/social"
	"github.com/iudanet/devnest/pkg/api"
)

// Post публикует пост
func (c *Cli) Post(ctx context.Context, content string) error {
	post, err := c.socialService.CreatePost(ctx, nil, content)
	if err != nil {
		return c.explain(err)
	}

	c.io.Println("✓ Post published!")
	c.printPost(*post)
	return nil
}

// Show печатает пост с комментариями
func (c *Cli) Show(ctx context.Context, postID string) error {
	post, err := c.socialService.GetPost(ctx, postID)
	if err != nil {
		return c.explain(err)
	}
	c.printPost(*post)
	c.io.Println()

	comments, err := c.socialService.Comments(ctx, postID)
	if err != nil {
		c.io.Errorf("Failed to load comments: %v\n", err)
		return c.explain(err)
	}

	c.io.Printf("Comments (%d):\n", len(comments))
	for _, cm := range comments {
		c.printComment(cm)
	}
	return nil
}

// Comment добавляет комментарий
func (c *Cli) Comment(ctx context.Context, postID, content string) error {
	comment, err := c.socialService.AddComment(ctx, postID, content)
	if err != nil {
		return c.explain(err)
	}
	c.io.Println("✓ Comment added!")
	c.printComment(*comment)
	return nil
}

// Like переключает лайк поста
func (c *Cli) Like(ctx context.Context, postID string) error {
	post, err := c.socialService.GetPost(ctx, postID)
	if err != nil {
		return c.explain(err)
	}

	tl := social.NewTimeline([]api.Post{*post})
	state, err := c.socialService.ToggleLike(ctx, tl, postID)
	if err != nil {
		c.io.Errorf("✗ Like failed, nothing changed (%d likes)\n", state.Count)
		return c.explain(err)
	}

	if state.Flag {
		c.io.Printf("♥ Liked (%d likes)\n", state.Count)
	} else {
		c.io.Printf("♡ Unliked (%d likes)\n", state.Count)
	}
	return nil
}

func (c *Cli) printComment(cm api.Comment) {
	c.io.Printf("  @%s: %s\n", cm.Author.Username, cm.Content)
}
