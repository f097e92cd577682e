package client

import (
	"context"
	"log/slog"

	"github.com/parcelia/backoffice/internal/platform/validate"
	"github.com/parcelia/backoffice/pkg/uuidv7"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (service *Service) ListClients(ctx context.Context, filter Filter, limit, offset int) ([]*Client, int, error) {
	return service.repo.ListClients(ctx, filter, limit, offset)
}

func (service *Service) GetClient(ctx context.Context, id string) (*Client, error) {
	return service.repo.GetClient(ctx, id)
}

func (service *Service) CreateClient(ctx context.Context, c *Client) error {
	if err := validateClient(c); err != nil {
		return err
	}

	if c.ID == "" {
		c.ID = uuidv7.New()
	}

	if err := service.repo.CreateClient(ctx, c); err != nil {
		return err
	}

	service.logger.Info("client_created",
		slog.String("client_id", c.ID),
		slog.String("name", c.Name),
	)
	return nil
}

func (service *Service) UpdateClient(ctx context.Context, id string, c *Client) error {
	c.ID = id
	if err := validateClient(c); err != nil {
		return err
	}

	if err := service.repo.UpdateClient(ctx, c); err != nil {
		return err
	}

	service.logger.Info("client_updated", slog.String("client_id", c.ID))
	return nil
}

func (service *Service) DeleteClient(ctx context.Context, id string) error {
	if err := service.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	service.logger.Info("client_deleted", slog.String("client_id", id))
	return nil
}

func validateClient(c *Client) error {
	validator := &validate.Validator{}
	validator.Required(FieldName, c.Name).
		MaxLen(FieldName, c.Name, 200).
		Required(FieldPhone, c.Phone)

	if c.Email != nil && *c.Email != "" {
		validator.Email(FieldEmail, *c.Email)
	}

	return validator.Err()
}
