package models

import "time"

// Enrollment is a user's progression record through the course.
// There is at most one row per user; a repurchase replaces it.
type Enrollment struct {
	UserID         int64
	CurrentDay     int
	LastDeliveryAt *time.Time
	IsActive       bool
	CompletedAt    *time.Time
	CreatedAt      time.Time
}

// Completed reports whether the enrollment has moved past the final day.
func (e *Enrollment) Completed(totalDays int) bool {
	return e.CurrentDay > totalDays
}
