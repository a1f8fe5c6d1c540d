package models

import "time"

type Post struct {
	ID            int64     `json:"id"`
	EducatorID    int64     `json:"educator_id"`
	Content       string    `json:"content"`
	ImageURL      *string   `json:"image_url"`
	LikesCount    int       `json:"likes_count"`
	CommentsCount int       `json:"comments_count"`
	ViewsCount    int       `json:"views_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FeedPost is a post with its author attached by the application-level join.
type FeedPost struct {
	Post
	Author *Educator `json:"author,omitempty"`
}

// PostReaction lives in the post_likes table; a plain like is a reaction of
// type "like".
type PostReaction struct {
	ID           int64     `json:"id"`
	PostID       int64     `json:"post_id"`
	EducatorID   int64     `json:"educator_id"`
	ReactionType string    `json:"reaction_type"`
	CreatedAt    time.Time `json:"created_at"`
}

// ReactionGroup aggregates reactions of one type for display.
type ReactionGroup struct {
	Type  string   `json:"type"`
	Emoji string   `json:"emoji"`
	Count int      `json:"count"`
	Users []string `json:"users"`
}

type PostComment struct {
	ID              int64     `json:"id"`
	PostID          int64     `json:"post_id"`
	EducatorID      int64     `json:"educator_id"`
	ParentCommentID *int64    `json:"parent_comment_id"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// CommentView is a comment with author identity attached.
type CommentView struct {
	PostComment
	AuthorName   string  `json:"author_name"`
	AuthorAvatar *string `json:"author_avatar"`
}

type PostView struct {
	ID         int64     `json:"id"`
	PostID     int64     `json:"post_id"`
	EducatorID int64     `json:"educator_id"`
	ViewedAt   time.Time `json:"viewed_at"`
}
