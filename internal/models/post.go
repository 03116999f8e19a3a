package models

import "time"

// Column widths of posts.title and posts.content.
const (
	PostTitleMaxLength   = 50
	PostContentMaxLength = 140
)

// Post is a short entry in a blog. Content is optional.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	BlogID    uint      `json:"blog_id" gorm:"not null;index"`
	Title     string    `json:"title" gorm:"size:50;not null"`
	Content   *string   `json:"content,omitempty" gorm:"size:140"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Blog *Blog `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (Post) TableName() string { return "posts" }

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title   string  `json:"title" validate:"required,title_len"`
	Content *string `json:"content,omitempty" validate:"omitempty,content_len"`
}
