package bon

import (
	"context"
	"time"
)

// Repository defines the data access contract for distribution vouchers.
//
// CreateBon inserts the voucher and its items atomically; a voucher with a
// half-written parcel list would corrupt a courier run.
type Repository interface {
	ListBons(ctx context.Context, filter Filter, limit, offset int) ([]*Bon, int, error)
	GetBon(ctx context.Context, id string) (*Bon, error)
	CreateBon(ctx context.Context, b *Bon, colisIDs []string) error
	UpdateBon(ctx context.Context, b *Bon) error
	SetStatus(ctx context.Context, id, status string, at time.Time) error

	AddItems(ctx context.Context, bonID string, colisIDs []string) error
	RemoveItem(ctx context.Context, bonID, colisID string) error
	CountItems(ctx context.Context, bonID string) (int, error)
	DetachAll(ctx context.Context, bonID string) (int64, error)

	DeleteBon(ctx context.Context, id string) error
}
