package cli

import (
	"github.com/iudanet/devnest/pkg/api"
)

const timeLayout = "2006-01-02 15:04"

func (c *Cli) printPost(p api.Post) {
	c.io.Printf("[%s] @%s", p.ID, p.Author.Username)
	if !p.CreatedAt.IsZero() {
		c.io.Printf(" · %s", p.CreatedAt.Local().Format(timeLayout))
	}
	c.io.Println()
	c.io.Println("  " + p.Content)
	c.io.Printf("  %s %d   💬 %d\n", likeMark(p.HasLiked), p.LikesCount, p.CommentsCount)
}

func (c *Cli) printUsers(users []api.User) {
	if len(users) == 0 {
		c.io.Println("Nobody here yet.")
		return
	}
	for _, u := range users {
		if u.Name != "" {
			c.io.Printf("@%s (%s)\n", u.Username, u.Name)
		} else {
			c.io.Printf("@%s\n", u.Username)
		}
	}
}

func likeMark(liked bool) string {
	if liked {
		return "♥"
	}
	return "♡"
}
