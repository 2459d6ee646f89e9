package model

import "time"

// Role enumerates account roles.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// User represents an account (admin or student).
type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	StudentID    *string   `json:"student_id,omitempty"` // School-issued ID, students only
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RegisterRequest is the payload for student self-registration.
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,min=2,max=100"`
	StudentID string `json:"student_id" binding:"omitempty,max=50"`
	Username  string `json:"username" binding:"required,min=3,max=80"`
	Password  string `json:"password" binding:"required,min=6,max=72"`
}

// LoginRequest is the payload for logging in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}
