package handlers

import (
	"github.com/iudanet/devnest/internal/models"
	"github.com/iudanet/devnest/pkg/api"
)

// toAPIUser публичное представление пользователя, email не раскрывается
func toAPIUser(v *models.UserView) api.User {
	if v == nil || v.User == nil {
		return api.User{}
	}
	return api.User{
		ID:             v.User.ID,
		Username:       v.User.Username,
		Name:           v.User.Name,
		Bio:            v.User.Bio,
		AvatarURL:      v.User.AvatarURL,
		FollowersCount: v.Stats.FollowersCount,
		FollowingCount: v.Stats.FollowingCount,
	}
}

func toAPIUsers(views []*models.UserView) []api.User {
	users := make([]api.User, 0, len(views))
	for _, v := range views {
		users = append(users, toAPIUser(v))
	}
	return users
}

func toAPIPost(v *models.PostView) api.Post {
	return api.Post{
		ID:            v.Post.ID,
		Content:       v.Post.Content,
		CreatedAt:     v.Post.CreatedAt,
		Author:        toAPIUser(v.Author),
		LikesCount:    v.LikesCount,
		CommentsCount: v.CommentsCount,
		HasLiked:      v.HasLiked,
	}
}

func toAPIPosts(views []*models.PostView) []api.Post {
	posts := make([]api.Post, 0, len(views))
	for _, v := range views {
		posts = append(posts, toAPIPost(v))
	}
	return posts
}

func toAPIComment(v *models.CommentView) api.Comment {
	return api.Comment{
		ID:        v.Comment.ID,
		Content:   v.Comment.Content,
		CreatedAt: v.Comment.CreatedAt,
		Author:    toAPIUser(v.Author),
	}
}

func toAPIComments(views []*models.CommentView) []api.Comment {
	comments := make([]api.Comment, 0, len(views))
	for _, v := range views {
		comments = append(comments, toAPIComment(v))
	}
	return comments
}
