package status

import (
	"context"
	"log/slog"

	"github.com/parcelia/backoffice/internal/platform/constants"
	"github.com/parcelia/backoffice/internal/platform/validate"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (service *Service) ListStatuses(ctx context.Context, entityType string) ([]*Status, error) {
	return service.repo.ListStatuses(ctx, entityType)
}

// StatusExists reports whether name is an active catalog entry for the
// entity type. This backs status validation on parcel and voucher writes.
func (service *Service) StatusExists(ctx context.Context, entityType, name string) (bool, error) {
	statuses, err := service.repo.ListStatuses(ctx, entityType)
	if err != nil {
		return false, err
	}

	for _, s := range statuses {
		if s.IsActive && s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ActiveStatuses returns the active status names for the entity type in
// catalog order. The first name doubles as the default for new records.
func (service *Service) ActiveStatuses(ctx context.Context, entityType string) ([]string, error) {
	statuses, err := service.repo.ListStatuses(ctx, entityType)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		if s.IsActive {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

func (service *Service) CreateStatus(ctx context.Context, s *Status) error {
	if err := service.validateStatus(s); err != nil {
		return err
	}

	if err := service.repo.CreateStatus(ctx, s); err != nil {
		return err
	}

	service.logger.Info("status_created",
		slog.String("entity_type", s.EntityType),
		slog.String("name", s.Name),
	)
	return nil
}

func (service *Service) UpdateStatus(ctx context.Context, id int, s *Status) error {
	s.ID = id
	if err := service.validateStatus(s); err != nil {
		return err
	}

	if err := service.repo.UpdateStatus(ctx, s); err != nil {
		return err
	}

	service.logger.Info("status_updated", slog.Int("status_id", s.ID))
	return nil
}

func (service *Service) DeleteStatus(ctx context.Context, id int) error {
	if err := service.repo.DeleteStatus(ctx, id); err != nil {
		return err
	}

	// Parcels holding this status keep the string; views render it with
	// a fallback badge.
	service.logger.Warn("status_deleted", slog.Int("status_id", id))
	return nil
}

func (service *Service) validateStatus(s *Status) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, s.Name).
		MaxLen(FieldName, s.Name, 100).
		OneOf(FieldEntityType, s.EntityType, constants.StatusTypeColis, constants.StatusTypeBon)

	return validator.Err()
}
