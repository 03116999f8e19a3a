package models

import "time"

// ReadStatus marks a post as read by a user. One row per (user, post).
type ReadStatus struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_read_statuses_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_read_statuses_user_post"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Post *Post `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (ReadStatus) TableName() string { return "read_statuses" }

// CreateReadStatusRequest defines the request body for marking a post as read
type CreateReadStatusRequest struct {
	PostID uint `json:"post_id" validate:"required"`
}
