package notification

import "context"

// Repository defines the data access contract for notifications.
//
// Listing is scoped to one user, unread entries first. Mutations carry the
// owner's user ID so one operator can never touch another's inbox.
type Repository interface {
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]*Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	Create(ctx context.Context, n *Notification) error
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, id, userID string) error
}
