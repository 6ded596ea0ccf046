package domain

import "time"

// ActivityLog is an operational audit record of a user-visible action.
type ActivityLog struct {
	ID          int64
	UserID      *string
	UserName    string
	Action      string
	Description string
	IPAddress   string
	CreatedAt   time.Time
}
