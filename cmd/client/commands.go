package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/iudanet/devnest/internal/client/cli"
	"github.com/iudanet/devnest/pkg/api"
)

func addCommands(root *cobra.Command) {
	root.AddCommand(
		registerCmd(),
		loginCmd(),
		logoutCmd(),
		statusCmd(),
		feedCmd(),
		postCmd(),
		showCmd(),
		commentCmd(),
		likeCmd(),
		profileCmd(),
		followCmd(),
		followersCmd(),
		followingCmd(),
		editProfileCmd(),
	)
}

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Register(cmd.Context())
		},
	}
}

func loginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Long: `Log in with email and password.

The password is read without echo, or from DEVNEST_PASSWORD when set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Login(cmd.Context(), email)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email (prompted when empty)")
	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and delete the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Logout(cmd.Context())
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Status(cmd.Context())
		},
	}
}

func feedCmd() *cobra.Command {
	var public, all bool
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Show posts from people you follow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mode := cli.FeedFollowing
			switch {
			case all:
				mode = cli.FeedAll
			case public:
				mode = cli.FeedPublic
			}
			return app.cli.Feed(cmd.Context(), mode)
		},
	}
	cmd.Flags().BoolVar(&public, "public", false, "Show the public feed")
	cmd.Flags().BoolVar(&all, "all", false, "Show all posts")
	cmd.MarkFlagsMutuallyExclusive("public", "all")
	return cmd
}

func postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post <text>",
		Short: "Publish a post",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Post(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <postID>",
		Short: "Show a post with its comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Show(cmd.Context(), args[0])
		},
	}
}

func commentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "comment <postID> <text>",
		Short: "Comment on a post",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Comment(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}

func likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <postID>",
		Short: "Like or unlike a post",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Like(cmd.Context(), args[0])
		},
	}
}

func profileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile <username>",
		Short: "Show a user profile and posts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Profile(cmd.Context(), args[0])
		},
	}
}

func followCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "follow <username>",
		Short: "Follow or unfollow a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Follow(cmd.Context(), args[0])
		},
	}
}

func followersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "followers <username>",
		Short: "List followers of a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Followers(cmd.Context(), args[0])
		},
	}
}

func followingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "following <username>",
		Short: "List users someone follows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.cli.Following(cmd.Context(), args[0])
		},
	}
}

func editProfileCmd() *cobra.Command {
	var name, bio, avatar string
	cmd := &cobra.Command{
		Use:   "edit-profile",
		Short: "Update your name, bio or avatar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.UpdateProfileRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("bio") {
				req.Bio = &bio
			}
			if cmd.Flags().Changed("avatar") {
				req.AvatarURL = &avatar
			}
			return app.cli.EditProfile(cmd.Context(), req)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&bio, "bio", "", "Short bio")
	cmd.Flags().StringVar(&avatar, "avatar", "", "Avatar URL")
	return cmd
}
