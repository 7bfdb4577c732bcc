package models

import "time"

// Post пост пользователя
type Post struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
}

// PostView пост вместе с автором и счетчиками, вычисленными для конкретного зрителя
type PostView struct {
	Author        *UserView
	Post          Post
	LikesCount    int
	CommentsCount int
	HasLiked      bool // лайкнул ли текущий зритель
}

// Comment комментарий к посту
type Comment struct {
	CreatedAt time.Time `json:"created_at"`
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Content   string    `json:"content"`
}

// CommentView комментарий вместе с автором
type CommentView struct {
	Author  *UserView
	Comment Comment
}
