package models

import "time"

// Column widths of users.username and users.email.
const (
	UsernameMaxLength = 50
	EmailMaxLength    = 254
)

// User is a registered author/reader. Username and email are globally unique.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:254;not null;uniqueIndex"`
	FirstName string    `json:"first_name" gorm:"size:50;not null"`
	LastName  string    `json:"last_name" gorm:"size:50;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (User) TableName() string { return "users" }

// CreateUserRequest defines the request body for creating a new user
type CreateUserRequest struct {
	Username  string `json:"username" validate:"required,username_len"`
	Email     string `json:"email" validate:"required,email,email_len"`
	FirstName string `json:"first_name" validate:"required,username_len"`
	LastName  string `json:"last_name" validate:"required,username_len"`
}

// ToUser converts the request into an unsaved User.
func (r CreateUserRequest) ToUser() *User {
	return &User{
		Username:  r.Username,
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
	}
}
