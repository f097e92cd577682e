package bon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/parcelia/backoffice/internal/platform/apperr"
	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/validate"
	"github.com/parcelia/backoffice/pkg/uuidv7"
)

// Catalog answers whether a status name is an active entry for the given
// entity type. Voucher statuses come from the "bon" catalog.
type Catalog interface {
	StatusExists(ctx context.Context, entityType, name string) (bool, error)
}

// Notifier tells a courier a voucher run was put in their name. Delivery
// is best-effort.
type Notifier interface {
	NotifyAssignment(ctx context.Context, courierID, bonID string) error
}

type Service struct {
	repo     Repository
	catalog  Catalog
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo Repository, catalog Catalog, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, notifier: notifier, logger: logger}
}

func (service *Service) ListBons(ctx context.Context, filter Filter, limit, offset int) ([]*Bon, int, error) {
	return service.repo.ListBons(ctx, filter, limit, offset)
}

func (service *Service) GetBon(ctx context.Context, id string) (*Bon, error) {
	return service.repo.GetBon(ctx, id)
}

// CreateBon opens a voucher over the given parcels. An empty parcel list is
// allowed; couriers sometimes get the paper before the parcels are scanned.
func (service *Service) CreateBon(ctx context.Context, b *Bon, colisIDs []string) error {
	validator := &validate.Validator{}
	validator.Required(FieldStatus, b.Status)
	if b.CourierID != nil && *b.CourierID != "" {
		validator.UUID(FieldCourierID, *b.CourierID)
	}
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.checkStatus(ctx, b.Status); err != nil {
		return err
	}

	if b.ID == "" {
		b.ID = uuidv7.New()
	}

	if err := service.repo.CreateBon(ctx, b, colisIDs); err != nil {
		return err
	}

	service.logger.Info("bon_created",
		slog.String("bon_id", b.ID),
		slog.Int("items", len(colisIDs)),
	)

	service.notifyAssignment(ctx, b)
	return nil
}

// UpdateBon reassigns the courier or rewrites the notes. Status moves
// through SetStatus.
func (service *Service) UpdateBon(ctx context.Context, id string, b *Bon) error {
	b.ID = id
	if b.CourierID != nil && *b.CourierID != "" {
		validator := &validate.Validator{}
		validator.UUID(FieldCourierID, *b.CourierID)
		if err := validator.Err(); err != nil {
			return err
		}
	}

	if err := service.repo.UpdateBon(ctx, b); err != nil {
		return err
	}

	service.logger.Info("bon_updated", slog.String("bon_id", b.ID))

	service.notifyAssignment(ctx, b)
	return nil
}

func (service *Service) notifyAssignment(ctx context.Context, b *Bon) {
	if service.notifier == nil || b.CourierID == nil || *b.CourierID == "" {
		return
	}
	if err := service.notifier.NotifyAssignment(ctx, *b.CourierID, b.ID); err != nil {
		service.logger.Warn("bon_assignment_notify_failed",
			slog.String("bon_id", b.ID),
			slog.String("courier_id", *b.CourierID),
			slog.Any("error", err),
		)
	}
}

func (service *Service) SetStatus(ctx context.Context, id, status string) error {
	validator := &validate.Validator{}
	validator.Required(FieldStatus, status)
	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.checkStatus(ctx, status); err != nil {
		return err
	}

	if err := service.repo.SetStatus(ctx, id, status, time.Now()); err != nil {
		return err
	}

	service.logger.Info("bon_status_changed",
		slog.String("bon_id", id),
		slog.String("status", status),
	)
	return nil
}

func (service *Service) AddItems(ctx context.Context, bonID string, colisIDs []string) error {
	if len(colisIDs) == 0 {
		return validate.RequiredError(FieldColisIDs, "must not be empty")
	}
	return service.repo.AddItems(ctx, bonID, colisIDs)
}

func (service *Service) RemoveItem(ctx context.Context, bonID, colisID string) error {
	return service.repo.RemoveItem(ctx, bonID, colisID)
}

// DeleteBon removes a voucher. A voucher still carrying parcels is kept
// unless force is set, in which case the items are detached first.
func (service *Service) DeleteBon(ctx context.Context, id string, force bool) error {
	count, err := service.repo.CountItems(ctx, id)
	if err != nil {
		return err
	}

	if count > 0 {
		if !force {
			return apperr.Conflict(fmt.Sprintf("Voucher still has %d attached parcels", count))
		}
		detached, err := service.repo.DetachAll(ctx, id)
		if err != nil {
			return err
		}
		service.logger.Info("bon_items_detached",
			slog.String("bon_id", id),
			slog.Int64("detached", detached),
		)
	}

	if err := service.repo.DeleteBon(ctx, id); err != nil {
		return err
	}

	service.logger.Info("bon_deleted", slog.String("bon_id", id))
	return nil
}

func (service *Service) checkStatus(ctx context.Context, status string) error {
	known, err := service.catalog.StatusExists(ctx, constants.StatusTypeBon, status)
	if err != nil {
		return err
	}
	if !known {
		return validate.RequiredError(FieldStatus, "is not part of the status catalog")
	}
	return nil
}
