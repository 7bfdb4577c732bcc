package cli

import (
	"context"
	"fmt"
)

// Register регистрирует пользователя и сразу открывает сессию
func (c *Cli) Register(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	username, err := c.io.ReadInput("Username: ")
	if err != nil {
		return fmt.Errorf("failed to read username: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}

	password, err := c.readPassword("Password (min 6 chars): ")
	if err != nil {
		return err
	}

	if c.getenv(EnvPassword) == "" {
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		if password != confirm {
			c.io.Errorf("✗ Passwords do not match\n")
			return fmt.Errorf("passwords do not match")
		}
	}

	sess, err := c.authService.Register(ctx, username, email, password)
	if err != nil {
		c.io.Errorf("✗ %v\n", err)
		return err
	}

	c.io.Println()
	c.io.Println("✓ Registration successful!")
	if sess.User != nil {
		c.io.Printf("Logged in as @%s\n", sess.User.Username)
	} else {
		c.io.Println("Logged in (profile details unavailable).")
	}

	return nil
}
