package cli

import (
	"context"
	"fmt"
)

// Login выполняет вход. Пустой email запрашивается интерактивно.
func (c *Cli) Login(ctx context.Context, email string) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	if email == "" {
		var err error
		email, err = c.io.ReadInput("Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
	}

	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}

	sess, err := c.authService.Login(ctx, email, password)
	if err != nil {
		// Ошибка выводится рядом с формой
		c.io.Errorf("✗ %v\n", err)
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	if sess.User != nil {
		c.io.Printf("Welcome back, @%s\n", sess.User.Username)
	} else {
		c.io.Println("Profile details are unavailable for this session.")
	}

	return nil
}
