package cli

import (
	"context"

	"github.com/iudanet/devnest/pkg/api"
)

// Profile печатает профиль и посты пользователя
func (c *Cli) Profile(ctx context.Context, username string) error {
	view, err := c.socialService.LoadProfile(ctx, username)
	if err != nil {
		c.io.Errorf("Failed to load profile: %v\n", err)
		return c.explain(err)
	}

	p := view.Profile()
	c.io.Printf("=== @%s ===\n", p.Username)
	if p.Name != "" {
		c.io.Println(p.Name)
	}
	if p.Bio != "" {
		c.io.Println(p.Bio)
	}
	c.io.Printf("Posts: %d  Followers: %d  Following: %d\n", p.PostsCount, p.FollowersCount, p.FollowingCount)
	switch {
	case p.IsMe:
		c.io.Println("(this is you)")
	case p.IsFollowing:
		c.io.Println("✓ Following")
	}
	c.io.Println()

	posts := view.Posts.Posts()
	if len(posts) == 0 {
		c.io.Println("No posts yet.")
		return nil
	}
	for _, post := range posts {
		c.printPost(post)
		c.io.Println()
	}
	return nil
}

// Follow переключает подписку на пользователя
func (c *Cli) Follow(ctx context.Context, username string) error {
	view, err := c.socialService.LoadProfile(ctx, username)
	if err != nil {
		return c.explain(err)
	}

	state, err := c.socialService.ToggleFollow(ctx, view)
	if err != nil {
		c.io.Errorf("✗ Follow failed, nothing changed\n")
		return c.explain(err)
	}

	if state.Flag {
		c.io.Printf("✓ Following @%s (%d followers)\n", username, state.Count)
	} else {
		c.io.Printf("✓ Unfollowed @%s (%d followers)\n", username, state.Count)
	}
	return nil
}

// Followers печатает подписчиков
func (c *Cli) Followers(ctx context.Context, username string) error {
	users, err := c.socialService.Followers(ctx, username)
	if err != nil {
		return c.explain(err)
	}
	c.io.Printf("=== Followers of @%s ===\n", username)
	c.printUsers(users)
	return nil
}

// Following печатает подписки
func (c *Cli) Following(ctx context.Context, username string) error {
	users, err := c.socialService.Following(ctx, username)
	if err != nil {
		return c.explain(err)
	}
	c.io.Printf("=== @%s follows ===\n", username)
	c.printUsers(users)
	return nil
}

// EditProfile обновляет поля профиля; nil поле не меняется
func (c *Cli) EditProfile(ctx context.Context, req api.UpdateProfileRequest) error {
	if req.Name == nil && req.Bio == nil && req.AvatarURL == nil {
		c.io.Println("Nothing to update. Use --name, --bio or --avatar.")
		return nil
	}

	p, err := c.socialService.UpdateProfile(ctx, req)
	if err != nil {
		return c.explain(err)
	}

	c.io.Println("✓ Profile updated!")
	c.io.Printf("@%s", p.Username)
	if p.Name != "" {
		c.io.Printf(" (%s)", p.Name)
	}
	c.io.Println()
	if p.Bio != "" {
		c.io.Println(p.Bio)
	}
	return nil
}
