package status

import "context"

// Repository defines the data access contract for the status catalog.
type Repository interface {
	// ListStatuses returns every catalog entry for the entity type,
	// ordered by position.
	ListStatuses(ctx context.Context, entityType string) ([]*Status, error)

	// GetStatus returns one catalog entry by ID.
	GetStatus(ctx context.Context, id int) (*Status, error)

	// CreateStatus persists a new catalog entry.
	CreateStatus(ctx context.Context, s *Status) error

	// UpdateStatus persists changes to name, color, position, activity.
	UpdateStatus(ctx context.Context, s *Status) error

	// DeleteStatus removes a catalog entry. Existing parcels keep the
	// now-orphaned status string.
	DeleteStatus(ctx context.Context, id int) error
}
