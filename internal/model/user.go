package model

import "time"

// Role distinguishes exam takers from test authors.
type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleAuthor  Role = "AUTHOR"
)

// User represents a platform account. Authentication is host-side glue;
// the attempt core only ever sees the numeric user ID.
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// LoginRequest is the payload for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}
