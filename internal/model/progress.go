package model

import "time"

// StudentProgress tracks one student's viewing progress on one learning
// resource. Unique per (user, resource).
type StudentProgress struct {
	ID                 int       `json:"id"`
	UserID             int       `json:"user_id"`
	ResourceID         int       `json:"resource_id"`
	ProgressPercentage float64   `json:"progress_percentage"`
	LastPosition       int       `json:"last_position"`
	Completed          bool      `json:"completed"`
	TimeSpentSeconds   int       `json:"time_spent_seconds"`
	FirstAccessed      time.Time `json:"first_accessed"`
	LastAccessed       time.Time `json:"last_accessed"`
}

// UpdateProgressRequest is the client's progress report for a resource.
type UpdateProgressRequest struct {
	ProgressPercentage float64 `json:"progress_percentage" binding:"min=0,max=100"`
	LastPosition       int     `json:"last_position" binding:"omitempty,min=0"`
	Completed          bool    `json:"completed"`
	TimeSpentSeconds   int     `json:"time_spent_seconds" binding:"omitempty,min=0"`
}
