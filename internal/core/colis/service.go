package colis

import (
	"context"
	"log/slog"

	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/validate"
)

type Service struct {
	repo      Repository
	directory ActorDirectory
	catalog   Catalog
	notifier  Notifier
	cfg       TrackerConfig
	logger    *slog.Logger
}

func NewService(repo Repository, directory ActorDirectory, catalog Catalog, notifier Notifier, cfg TrackerConfig, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		directory: directory,
		catalog:   catalog,
		notifier:  notifier,
		cfg:       cfg,
		logger:    logger,
	}
}

// Tracker creates a fresh detail-view tracker for one parcel. Each view
// owns its own tracker and its own fetched copy of the trail.
func (service *Service) Tracker() *Tracker {
	return NewTracker(service.repo, service.directory, service.catalog, service.notifier, service.cfg, service.logger)
}

func (service *Service) ListColis(ctx context.Context, filter Filter, limit, offset int) ([]*Colis, int, error) {
	return service.repo.ListColis(ctx, filter, limit, offset)
}

func (service *Service) GetColis(ctx context.Context, id string) (*Colis, error) {
	return service.repo.GetColis(ctx, id)
}

func (service *Service) GetHistory(ctx context.Context, colisID string, limit int) ([]*HistoryEntry, error) {
	if limit <= 0 {
		limit = service.cfg.HistoryLimit
	}
	return service.repo.ListHistory(ctx, colisID, limit)
}

func (service *Service) CreateColis(ctx context.Context, c *Colis) error {
	validator := &validate.Validator{}
	validator.Required(FieldID, c.ID).
		Code(FieldID, c.ID).
		Required(FieldAddress, c.Address).
		Required(FieldClient, c.ClientID).
		NonNegative(FieldPrice, c.Price).
		NonNegative(FieldFee, c.Fee)
	if c.ClientID != "" {
		validator.UUID(FieldClient, c.ClientID)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	// A brand-new parcel starts in the catalog's initial status when the
	// caller leaves it empty.
	if c.Status == "" {
		statuses, err := service.catalog.ActiveStatuses(ctx, constants.StatusTypeColis)
		if err != nil {
			return err
		}
		if len(statuses) == 0 {
			return validate.RequiredError(FieldStatus, "cannot default while the status catalog is empty")
		}
		c.Status = statuses[0]
	} else {
		known, err := service.catalog.StatusExists(ctx, constants.StatusTypeColis, c.Status)
		if err != nil {
			return err
		}
		if !known {
			return validate.RequiredError(FieldStatus, "is not part of the status catalog")
		}
	}

	if err := service.repo.CreateColis(ctx, c); err != nil {
		return err
	}

	service.logger.Info("colis_created", slog.String("colis_id", c.ID))
	return nil
}

func (service *Service) UpdateColis(ctx context.Context, id string, c *Colis) error {
	c.ID = id
	validator := &validate.Validator{}
	validator.Required(FieldAddress, c.Address).
		Required(FieldClient, c.ClientID).
		NonNegative(FieldPrice, c.Price).
		NonNegative(FieldFee, c.Fee)
	if c.ClientID != "" {
		validator.UUID(FieldClient, c.ClientID)
	}

	if err := validator.Err(); err != nil {
		return err
	}

	if err := service.repo.UpdateColis(ctx, c); err != nil {
		return err
	}

	service.logger.Info("colis_updated", slog.String("colis_id", c.ID))
	return nil
}
