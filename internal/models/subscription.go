package models

import "time"

// Subscription links a user to a blog they follow. One row per (user, blog).
type Subscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index;uniqueIndex:idx_subscriptions_user_blog"`
	BlogID    uint      `json:"blog_id" gorm:"not null;index;uniqueIndex:idx_subscriptions_user_blog"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`

	User *User `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Blog *Blog `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

func (Subscription) TableName() string { return "subscriptions" }

// CreateSubscriptionRequest defines the request body for subscribing to a blog
type CreateSubscriptionRequest struct {
	BlogID uint `json:"blog_id" validate:"required"`
}
