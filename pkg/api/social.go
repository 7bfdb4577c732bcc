package api

import "time"

// User публичное представление пользователя
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	Bio            string `json:"bio,omitempty"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	FollowersCount int    `json:"followersCount"`
	FollowingCount int    `json:"followingCount"`
}

// Profile пользователь с полями, вычисленными относительно текущего зрителя
type Profile struct {
	User
	PostsCount  int  `json:"postsCount"`
	IsFollowing bool `json:"isFollowing"`
	IsMe        bool `json:"isMe"`
}

// Post пост в ленте
type Post struct {
	CreatedAt     time.Time `json:"createdAt"`
	Author        User      `json:"author"`
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	LikesCount    int       `json:"likesCount"`
	CommentsCount int       `json:"commentsCount"`
	HasLiked      bool      `json:"hasLiked"`
}

// Comment комментарий к посту
type Comment struct {
	CreatedAt time.Time `json:"createdAt"`
	Author    User      `json:"author"`
	ID        string    `json:"id"`
	Content   string    `json:"content"`
}

// CreatePostRequest тело POST /posts
type CreatePostRequest struct {
	Content string `json:"content"`
}

// CreateCommentRequest тело POST /posts/{id}/comments
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// UpdateProfileRequest тело PATCH /profile/{username}
// nil поля не изменяются
type UpdateProfileRequest struct {
	Name      *string `json:"name,omitempty"`
	Bio       *string `json:"bio,omitempty"`
	AvatarURL *string `json:"avatarUrl,omitempty"`
}

// LikeResponse ответ на like/unlike.
// LikesCount может отсутствовать, тогда клиент оставляет свою оценку.
type LikeResponse struct {
	LikesCount *int   `json:"likesCount,omitempty"`
	PostID     string `json:"postId"`
	HasLiked   bool   `json:"hasLiked"`
}

// FollowResponse ответ на follow/unfollow
type FollowResponse struct {
	FollowersCount *int   `json:"followersCount,omitempty"`
	UserID         string `json:"userId"`
	IsFollowing    bool   `json:"isFollowing"`
}
