package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/devnest/internal/client/session"
)

// Status показывает состояние сессии
func (c *Cli) Status(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	user, err := c.authService.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'devnest login' to authenticate.")
			return nil
		}
		return fmt.Errorf("failed to check authentication: %w", err)
	}

	c.io.Println("Status: Authenticated")
	if user == nil {
		c.io.Println("⚠️  Profile details are unavailable for this session.")
		return nil
	}

	c.io.Printf("User ID:   %s\n", user.ID)
	c.io.Printf("Username:  @%s\n", user.Username)
	if user.Email != "" {
		c.io.Printf("Email:     %s\n", user.Email)
	}
	c.io.Printf("Followers: %d  Following: %d\n", user.FollowersCount, user.FollowingCount)

	return nil
}
