package schema

// NotificationTable represents the 'system.notification' table
type NotificationTable struct {
	Table     string
	ID        string
	UserID    string
	Title     string
	Body      string
	IsRead    string
	CreatedAt string
}

// Notification is the schema definition for system.notification
var Notification = NotificationTable{
	Table:     "system.notification",
	ID:        "id",
	UserID:    "userid",
	Title:     "title",
	Body:      "body",
	IsRead:    "isread",
	CreatedAt: "createdat",
}
