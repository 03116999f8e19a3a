package models

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// BlogTitleMaxLength matches the width of blogs.title.
const BlogTitleMaxLength = 50

// Blog belongs to a user. UserID becomes NULL when the owner is deleted.
type Blog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"index"`
	Title     string    `json:"title" gorm:"size:50;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User *User `json:"-" gorm:"constraint:OnDelete:SET NULL"`
}

func (Blog) TableName() string { return "blogs" }

// OwnedBy reports whether userID owns the blog.
func (b *Blog) OwnedBy(userID uint) bool {
	return b.UserID != nil && *b.UserID == userID
}

// FirstBlogTitle is the title of the blog created together with a user,
// cut to BlogTitleMaxLength runes for long usernames.
func FirstBlogTitle(username string) string {
	title := fmt.Sprintf("User's blog %s", username)
	if utf8.RuneCountInString(title) <= BlogTitleMaxLength {
		return title
	}
	return string([]rune(title)[:BlogTitleMaxLength])
}
