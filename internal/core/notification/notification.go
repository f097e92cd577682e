package notification

import "time"

// Notification is a per-user inbox entry. The system writes them on
// courier assignments and status changes; managers can push one manually.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	FieldUserID = "user_id"
	FieldTitle  = "title"
	FieldBody   = "body"
)
