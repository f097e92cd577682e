package colis

import (
	"context"
	"time"
)

// Repository defines the data access contract for parcels and their
// status history.
type Repository interface {
	// ListColis returns a filtered page of parcels plus the total count.
	ListColis(ctx context.Context, filter Filter, limit, offset int) ([]*Colis, int, error)

	// GetColis returns the parcel with the given code.
	//
	// Returns [apperr.NotFound] if no parcel carries this code.
	GetColis(ctx context.Context, id string) (*Colis, error)

	// CreateColis persists a new parcel.
	CreateColis(ctx context.Context, c *Colis) error

	// UpdateColis persists changes to mutable parcel fields. The status
	// column is owned by [SetStatus] so plain edits cannot bypass the
	// audit trail.
	UpdateColis(ctx context.Context, c *Colis) error

	// SetStatus writes the parcel's status and refreshes its updated
	// timestamp. It does not touch the history table.
	SetStatus(ctx context.Context, id, status string, at time.Time) error

	// DeleteColis removes the parcel row. History must already be gone:
	// callers go through the tracker's cascade.
	DeleteColis(ctx context.Context, id string) error

	// AppendHistory inserts one audit record for a status transition.
	AppendHistory(ctx context.Context, entry *HistoryEntry) error

	// ListHistory returns up to limit entries for the parcel, newest
	// first. Acting user names are resolved in the same query.
	ListHistory(ctx context.Context, colisID string, limit int) ([]*HistoryEntry, error)

	// DeleteHistory removes every history entry of the parcel. Returns
	// the number of rows removed.
	DeleteHistory(ctx context.Context, colisID string) (int64, error)
}
